package mongo

import (
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"go.mongodb.org/mongo-driver/mongo"

	"rentbook/internal/app/uow"
	domainpricing "rentbook/internal/domain/pricing"
	"rentbook/internal/domain/shared/daterange"
	"rentbook/internal/domain/shared/money"
)

// Dates are stored as ISO strings so they sort and compare lexically.
type rangeDocument struct {
	Start string `bson:"start"`
	End   string `bson:"end"`
}

func newRangeDocument(r daterange.Range) rangeDocument {
	return rangeDocument{Start: r.Start.String(), End: r.End.String()}
}

func (d rangeDocument) toRange() (daterange.Range, error) {
	return daterange.ParseRange(d.Start, d.End)
}

type moneyDocument struct {
	Amount   string `bson:"amount"`
	Currency string `bson:"currency"`
}

func newMoneyDocument(m money.Money) moneyDocument {
	return moneyDocument{Amount: m.Amount.String(), Currency: m.Currency}
}

func (d moneyDocument) toMoney() (money.Money, error) {
	if d.Amount == "" {
		return money.Zero(money.DefaultCurrency), nil
	}
	amount, err := decimal.NewFromString(d.Amount)
	if err != nil {
		return money.Money{}, fmt.Errorf("mongo: amount %q: %w", d.Amount, err)
	}
	return money.New(amount, d.Currency)
}

type breakdownDocument struct {
	Base        moneyDocument `bson:"base"`
	Service     moneyDocument `bson:"service"`
	Tax         moneyDocument `bson:"tax"`
	Deposit     moneyDocument `bson:"deposit"`
	Total       moneyDocument `bson:"total"`
	Days        int           `bson:"days"`
	Unit        string        `bson:"unit"`
	BilledUnits int           `bson:"billed_units"`
	ServicePct  string        `bson:"service_pct"`
	TaxPct      string        `bson:"tax_pct"`
	HoursPerDay int           `bson:"hours_per_day"`
}

func newBreakdownDocument(b domainpricing.Breakdown) breakdownDocument {
	return breakdownDocument{
		Base:        newMoneyDocument(b.Base),
		Service:     newMoneyDocument(b.Service),
		Tax:         newMoneyDocument(b.Tax),
		Deposit:     newMoneyDocument(b.Deposit),
		Total:       newMoneyDocument(b.Total),
		Days:        b.Days,
		Unit:        string(b.Unit),
		BilledUnits: b.BilledUnits,
		ServicePct:  b.Fees.ServicePct.String(),
		TaxPct:      b.Fees.TaxPct.String(),
		HoursPerDay: b.Fees.HoursPerDay,
	}
}

func (d breakdownDocument) toBreakdown() (domainpricing.Breakdown, error) {
	out := domainpricing.Breakdown{
		Days:        d.Days,
		Unit:        domainpricing.RateUnit(d.Unit),
		BilledUnits: d.BilledUnits,
	}
	var errs []error
	for _, field := range []struct {
		src moneyDocument
		dst *money.Money
	}{
		{d.Base, &out.Base},
		{d.Service, &out.Service},
		{d.Tax, &out.Tax},
		{d.Deposit, &out.Deposit},
		{d.Total, &out.Total},
	} {
		m, err := field.src.toMoney()
		errs = append(errs, err)
		*field.dst = m
	}
	var err error
	out.Fees.ServicePct, err = decimalOrZero(d.ServicePct)
	errs = append(errs, err)
	out.Fees.TaxPct, err = decimalOrZero(d.TaxPct)
	errs = append(errs, err)
	out.Fees.Deposit = out.Deposit.Amount
	out.Fees.HoursPerDay = d.HoursPerDay
	return out, errors.Join(errs...)
}

func decimalOrZero(raw string) (decimal.Decimal, error) {
	if raw == "" {
		return decimal.Zero, nil
	}
	return decimal.NewFromString(raw)
}

func toMillis(t time.Time) int64 {
	if t.IsZero() {
		return 0
	}
	return t.UnixMilli()
}

func fromMillis(ms int64) time.Time {
	if ms == 0 {
		return time.Time{}
	}
	return time.UnixMilli(ms).UTC()
}

// saveResult maps an optimistic upsert outcome onto uow.ErrConcurrentUpdate.
func saveResult(res *mongo.UpdateResult, err error) error {
	if err != nil {
		if mongo.IsDuplicateKeyError(err) || isWriteConflict(err) {
			return uow.ErrConcurrentUpdate
		}
		return err
	}
	if res.MatchedCount == 0 && res.UpsertedCount == 0 {
		return uow.ErrConcurrentUpdate
	}
	return nil
}

const writeConflictCode = 112

// isWriteConflict reports a transaction that lost a race on the same
// document; the server labels it transient.
func isWriteConflict(err error) bool {
	var cmdErr mongo.CommandError
	if errors.As(err, &cmdErr) {
		return cmdErr.Code == writeConflictCode || cmdErr.HasErrorLabel("TransientTransactionError")
	}
	var we mongo.WriteException
	if errors.As(err, &we) {
		for _, e := range we.WriteErrors {
			if e.Code == writeConflictCode {
				return true
			}
		}
		return we.HasErrorLabel("TransientTransactionError")
	}
	return false
}
