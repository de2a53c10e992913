package pricing

import (
	"errors"

	"github.com/shopspring/decimal"

	"rentbook/internal/domain/shared/daterange"
	"rentbook/internal/domain/shared/money"
)

// DefaultHoursPerDay is the number of billable hours in a rental day for
// hourly-priced items.
const DefaultHoursPerDay = 8

var ErrInvalidFees = errors.New("pricing: fee configuration out of range")

// FeeConfig holds the receipt terms applied on top of the prorated base.
type FeeConfig struct {
	// ServicePct is the fraction of base charged as service fee.
	ServicePct decimal.Decimal
	// TaxPct is the fraction of base+service charged as tax.
	TaxPct decimal.Decimal
	// Deposit is a flat refundable amount, added untaxed and unrounded.
	Deposit     decimal.Decimal
	HoursPerDay int
}

func DefaultFees() FeeConfig {
	return FeeConfig{
		ServicePct:  decimal.RequireFromString("0.10"),
		TaxPct:      decimal.RequireFromString("0.07"),
		Deposit:     decimal.NewFromInt(50),
		HoursPerDay: DefaultHoursPerDay,
	}
}

func (f FeeConfig) Validate() error {
	if f.ServicePct.IsNegative() || f.TaxPct.IsNegative() || f.Deposit.IsNegative() {
		return ErrInvalidFees
	}
	if f.HoursPerDay < 0 || f.HoursPerDay > 24 {
		return ErrInvalidFees
	}
	return nil
}

func (f FeeConfig) hoursPerDay() int {
	if f.HoursPerDay <= 0 {
		return DefaultHoursPerDay
	}
	return f.HoursPerDay
}

// Breakdown is the itemized receipt for a stay. It is a value: recompute it on
// every range change rather than mutating it.
type Breakdown struct {
	Base    money.Money
	Service money.Money
	Tax     money.Money
	Deposit money.Money
	Total   money.Money
	Days    int
	Unit    RateUnit
	// BilledUnits is the quantity the rate was multiplied by: days, started
	// weeks or hours.
	BilledUnits int
	Fees        FeeConfig
}

// ComponentsSum re-adds the rounded lines. It can differ from Total by a cent
// because Total is rounded from unrounded intermediates.
func (b Breakdown) ComponentsSum() money.Money {
	sum := b.Base
	for _, m := range []money.Money{b.Service, b.Tax, b.Deposit} {
		sum, _ = sum.Add(m)
	}
	return sum
}

// BilledUnits converts a day count into the quantity billed for unit.
// Partial weeks bill as full weeks.
func BilledUnits(unit RateUnit, days, hoursPerDay int) int {
	switch unit {
	case UnitWeek:
		return (days + 6) / 7
	case UnitHour:
		return days * hoursPerDay
	default:
		return days
	}
}

// ComputeBreakdown prices the stay from start to end. It never fails: a zero
// or negative rate bills nothing and the total is the deposit. Callers must
// gate on daterange.IsValidRange first; an incomplete range bills one day.
func ComputeBreakdown(rate Rate, start, end daterange.Date, fees FeeConfig) Breakdown {
	days := daterange.InclusiveDayCount(start, end)
	unit := rate.Unit
	if !unit.Valid() {
		unit = UnitDay
	}
	units := BilledUnits(unit, days, fees.hoursPerDay())

	amount := rate.Amount
	if amount.IsNegative() {
		amount = decimal.Zero
	}
	base := amount.Mul(decimal.NewFromInt(int64(units)))
	service := base.Mul(fees.ServicePct)
	tax := base.Add(service).Mul(fees.TaxPct)
	total := base.Add(service).Add(tax).Add(fees.Deposit)

	usd := func(d decimal.Decimal) money.Money {
		return money.Must(d, money.DefaultCurrency)
	}
	return Breakdown{
		Base:        usd(base).RoundCents(),
		Service:     usd(service).RoundCents(),
		Tax:         usd(tax).RoundCents(),
		Deposit:     usd(fees.Deposit),
		Total:       usd(total).RoundCents(),
		Days:        days,
		Unit:        unit,
		BilledUnits: units,
		Fees:        fees,
	}
}

// ComputeForRange is ComputeBreakdown over a Range.
func ComputeForRange(rate Rate, r daterange.Range, fees FeeConfig) Breakdown {
	return ComputeBreakdown(rate, r.Start, r.End, fees)
}
