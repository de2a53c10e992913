package dto

import (
	domainpricing "rentbook/internal/domain/pricing"
	"rentbook/internal/domain/shared/daterange"
)

type Rate struct {
	Amount string `json:"amount"`
	Unit   string `json:"unit"`
	Parsed bool   `json:"parsed"`
	Label  string `json:"label"`
}

func MapRate(rate domainpricing.Rate) Rate {
	return Rate{
		Amount: rate.Amount.String(),
		Unit:   string(rate.Unit),
		Parsed: rate.Parsed,
		Label:  rate.Label(),
	}
}

type FeeTerms struct {
	ServicePct  string `json:"service_pct"`
	TaxPct      string `json:"tax_pct"`
	Deposit     string `json:"deposit"`
	HoursPerDay int    `json:"hours_per_day,omitempty"`
}

// Breakdown is the receipt shown on the review screen.
type Breakdown struct {
	Base        MoneyDTO `json:"base"`
	Service     MoneyDTO `json:"service"`
	Tax         MoneyDTO `json:"tax"`
	Deposit     MoneyDTO `json:"deposit"`
	Total       MoneyDTO `json:"total"`
	Days        int      `json:"days"`
	Unit        string   `json:"unit"`
	BilledUnits int      `json:"billed_units"`
	Terms       FeeTerms `json:"terms"`
}

func MapBreakdown(b domainpricing.Breakdown) Breakdown {
	return Breakdown{
		Base:        MapMoney(b.Base),
		Service:     MapMoney(b.Service),
		Tax:         MapMoney(b.Tax),
		Deposit:     MapMoney(b.Deposit),
		Total:       MapMoney(b.Total),
		Days:        b.Days,
		Unit:        string(b.Unit),
		BilledUnits: b.BilledUnits,
		Terms: FeeTerms{
			ServicePct:  b.Fees.ServicePct.String(),
			TaxPct:      b.Fees.TaxPct.String(),
			Deposit:     b.Fees.Deposit.String(),
			HoursPerDay: b.Fees.HoursPerDay,
		},
	}
}

type DateRange struct {
	Start string `json:"start,omitempty"`
	End   string `json:"end,omitempty"`
	Days  int    `json:"days,omitempty"`
}

func MapRange(r daterange.Range) DateRange {
	out := DateRange{Start: r.Start.String(), End: r.End.String()}
	if r.Valid() {
		out.Days = r.Days()
	}
	return out
}

type Quote struct {
	ListingID   string    `json:"listing_id"`
	ListingName string    `json:"listing_name"`
	Rate        Rate      `json:"rate"`
	Range       DateRange `json:"range"`
	Breakdown   Breakdown `json:"breakdown"`
}
