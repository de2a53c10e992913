package pricing

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rentbook/internal/domain/shared/daterange"
)

func TestParsePrice(t *testing.T) {
	tests := []struct {
		label  string
		amount string
		unit   RateUnit
		parsed bool
	}{
		{"$45/day", "45", UnitDay, true},
		{"$10/hr", "10", UnitHour, true},
		{"$12.50/Hour", "12.5", UnitHour, true},
		{"$80/week", "80", UnitWeek, true},
		{"$250", "250", UnitDay, true},
		{"$20/month", "20", UnitDay, true},
		{"  $7 / HR", "7", UnitHour, true},
		{"$1,200/day", "1", UnitDay, true},
		{"$0/day", "0", UnitDay, true},
		{"free", "0", UnitDay, false},
		{"", "0", UnitDay, false},
		{"$-5/day", "0", UnitDay, false},
		{"$1e30000000/day", "1", UnitDay, true},
		{"$2.5E3/hr", "2.5", UnitHour, true},
		{"$1000000001/day", "0", UnitDay, false},
	}
	for _, tt := range tests {
		t.Run(tt.label, func(t *testing.T) {
			rate := ParsePrice(tt.label)
			assert.True(t, decimal.RequireFromString(tt.amount).Equal(rate.Amount), "amount %s", rate.Amount)
			assert.Equal(t, tt.unit, rate.Unit)
			assert.Equal(t, tt.parsed, rate.Parsed)
		})
	}
}

func TestParsePriceStrict(t *testing.T) {
	rate, err := ParsePriceStrict("$15/hour")
	require.NoError(t, err)
	assert.Equal(t, UnitHour, rate.Unit)

	_, err = ParsePriceStrict("call us")
	assert.ErrorIs(t, err, ErrUnparsablePrice)

	_, err = ParsePriceStrict("$20/month")
	assert.ErrorIs(t, err, ErrUnknownUnit)

	rate, err = ParsePriceStrict("$250")
	require.NoError(t, err)
	assert.Equal(t, UnitDay, rate.Unit)
}

func TestExponentLabelsStayShort(t *testing.T) {
	rate := ParsePrice("$1e30000000/day")
	assert.Equal(t, "$1/day", rate.Label())

	_, err := ParsePriceStrict("$99999999999999999999/week")
	assert.ErrorIs(t, err, ErrUnparsablePrice)
}

func TestRateLabel(t *testing.T) {
	assert.Equal(t, "$45/day", ParsePrice("$45/day").Label())
	assert.Equal(t, "$12.50/hr", ParsePrice("$12.5/hr").Label())
	assert.Equal(t, "$80/week", ParsePrice("$80/WEEK").Label())
	assert.Equal(t, "$0/day", Rate{Amount: decimal.Zero}.Label())
}

func TestComputeBreakdownDailyScenario(t *testing.T) {
	b := ComputeBreakdown(
		ParsePrice("$12/day"),
		daterange.MustParse("2024-03-01"),
		daterange.MustParse("2024-03-04"),
		DefaultFees(),
	)

	assert.Equal(t, 3, b.Days)
	assert.Equal(t, 3, b.BilledUnits)
	assert.Equal(t, "$36.00", b.Base.String())
	assert.Equal(t, "$3.60", b.Service.String())
	assert.Equal(t, "$2.77", b.Tax.String())
	assert.Equal(t, "$50.00", b.Deposit.String())
	assert.Equal(t, "$92.37", b.Total.String())
}

func TestComputeBreakdownUnits(t *testing.T) {
	start := daterange.MustParse("2024-06-01")
	tests := []struct {
		name  string
		label string
		end   string
		units int
		base  string
	}{
		{"same day bills one day", "$45/day", "2024-06-01", 1, "$45.00"},
		{"hourly bills eight hours a day", "$10/hr", "2024-06-03", 16, "$160.00"},
		{"partial week rounds up", "$80/week", "2024-06-09", 2, "$160.00"},
		{"exact week", "$80/week", "2024-06-08", 1, "$80.00"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := ComputeBreakdown(ParsePrice(tt.label), start, daterange.MustParse(tt.end), DefaultFees())
			assert.Equal(t, tt.units, b.BilledUnits)
			assert.Equal(t, tt.base, b.Base.String())
		})
	}
}

func TestComputeBreakdownZeroRateIsDepositOnly(t *testing.T) {
	b := ComputeBreakdown(ParsePrice("n/a"), daterange.MustParse("2024-06-01"), daterange.MustParse("2024-06-05"), DefaultFees())
	assert.True(t, b.Base.IsZero())
	assert.True(t, b.Tax.IsZero())
	assert.Equal(t, "$50.00", b.Total.String())

	negative := Rate{Amount: decimal.NewFromInt(-3), Unit: UnitDay}
	b = ComputeBreakdown(negative, daterange.MustParse("2024-06-01"), daterange.MustParse("2024-06-05"), DefaultFees())
	assert.True(t, b.Base.IsZero())
}

func TestComputeBreakdownCustomFees(t *testing.T) {
	fees := FeeConfig{
		ServicePct:  decimal.RequireFromString("0.05"),
		TaxPct:      decimal.Zero,
		Deposit:     decimal.RequireFromString("12.345"),
		HoursPerDay: 10,
	}
	b := ComputeBreakdown(ParsePrice("$3/hr"), daterange.MustParse("2024-01-01"), daterange.MustParse("2024-01-02"), fees)
	assert.Equal(t, 10, b.BilledUnits)
	assert.Equal(t, "$30.00", b.Base.String())
	assert.Equal(t, "$1.50", b.Service.String())
	// The deposit is carried as configured; only the total is rounded.
	assert.True(t, decimal.RequireFromString("12.345").Equal(b.Deposit.Amount))
	assert.Equal(t, "$43.85", b.Total.String())
}

func TestComputeBreakdownTotalRoundsFromUnroundedTerms(t *testing.T) {
	fees := FeeConfig{
		ServicePct: decimal.RequireFromString("0.10"),
		TaxPct:     decimal.RequireFromString("0.07"),
	}
	// base 1.15, service 0.115, tax 0.08855: lines round to 1.15+0.12+0.09
	// while the total rounds 1.35355 to 1.35.
	rate := Rate{Amount: decimal.RequireFromString("1.15"), Unit: UnitDay, Parsed: true}
	b := ComputeBreakdown(rate, daterange.MustParse("2024-01-01"), daterange.MustParse("2024-01-01"), fees)
	assert.Equal(t, "$1.35", b.Total.String())
	assert.Equal(t, "$1.36", b.ComponentsSum().String())
}

func TestFeeConfigValidate(t *testing.T) {
	assert.NoError(t, DefaultFees().Validate())

	bad := DefaultFees()
	bad.TaxPct = decimal.NewFromInt(-1)
	assert.ErrorIs(t, bad.Validate(), ErrInvalidFees)

	bad = DefaultFees()
	bad.HoursPerDay = 25
	assert.ErrorIs(t, bad.Validate(), ErrInvalidFees)
}
