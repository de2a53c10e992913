package pricing_test

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	pricinghandlers "rentbook/internal/app/handlers/pricing"
	"rentbook/internal/app/policies"
	domainlistings "rentbook/internal/domain/listings"
	domainpricing "rentbook/internal/domain/pricing"
	"rentbook/internal/infra/storage/memory"
)

func seed(t *testing.T, listings ...domainlistings.CreateListingParams) memory.Factory {
	t.Helper()
	factory := memory.Factory{
		ListingsRepo:     memory.NewListingRepository(),
		AvailabilityRepo: memory.NewAvailabilityRepository(),
		BookingRepo:      memory.NewBookingRepository(),
	}
	for _, params := range listings {
		params.Now = time.Date(2026, 10, 1, 0, 0, 0, 0, time.UTC)
		params.Activate = true
		l, err := domainlistings.NewListing(params)
		require.NoError(t, err)
		require.NoError(t, factory.ListingsRepo.Save(context.Background(), l))
	}
	return factory
}

func TestParsePriceNeverFails(t *testing.T) {
	h := pricinghandlers.ParsePriceHandler{}
	rate, err := h.Handle(context.Background(), pricinghandlers.ParsePriceQuery{Label: "$12.50/hr"})
	require.NoError(t, err)
	assert.Equal(t, "12.5", rate.Amount)
	assert.Equal(t, "hour", rate.Unit)
	assert.True(t, rate.Parsed)

	rate, err = h.Handle(context.Background(), pricinghandlers.ParsePriceQuery{Label: "ask me"})
	require.NoError(t, err)
	assert.False(t, rate.Parsed)
	assert.Equal(t, "0", rate.Amount)
}

func TestQuoteUsesPolicyAndOverrides(t *testing.T) {
	factory := seed(t,
		domainlistings.CreateListingParams{ID: "drill", Seller: "s1", Name: "Drill", Category: "Hardware", PriceLabel: "$12/day"},
		domainlistings.CreateListingParams{ID: "sander", Seller: "s1", Name: "Sander", Category: "Tools", PriceLabel: "$8/hr"},
	)
	h := &pricinghandlers.QuoteHandler{UoWFactory: factory, Fees: policies.StaticFees(domainpricing.DefaultFees())}

	quote, err := h.Handle(context.Background(), pricinghandlers.QuoteQuery{ListingID: "drill", Start: "2026-12-01", End: "2026-12-03"})
	require.NoError(t, err)
	assert.Equal(t, "92.37", quote.Breakdown.Total.Amount)
	assert.Equal(t, 3, quote.Range.Days)

	quote, err = h.Handle(context.Background(), pricinghandlers.QuoteQuery{ListingID: "sander", Start: "2026-12-01", End: "2026-12-01"})
	require.NoError(t, err)
	assert.Equal(t, 8, quote.Breakdown.BilledUnits)
	assert.Equal(t, "64.00", quote.Breakdown.Base.Amount)

	custom := domainpricing.FeeConfig{Deposit: decimal.Zero, HoursPerDay: 4}
	quote, err = h.Handle(context.Background(), pricinghandlers.QuoteQuery{ListingID: "sander", Start: "2026-12-01", End: "2026-12-01", Fees: &custom})
	require.NoError(t, err)
	assert.Equal(t, "32.00", quote.Breakdown.Total.Amount)
}

func TestQuoteRejections(t *testing.T) {
	factory := seed(t,
		domainlistings.CreateListingParams{ID: "bench", Seller: "s1", Name: "Work Bench", Category: "Tools", PriceLabel: "$180", Kind: domainlistings.KindBuy},
		domainlistings.CreateListingParams{ID: "drill", Seller: "s1", Name: "Drill", Category: "Hardware", PriceLabel: "$12/day"},
	)
	h := &pricinghandlers.QuoteHandler{UoWFactory: factory}

	_, err := h.Handle(context.Background(), pricinghandlers.QuoteQuery{ListingID: "bench", Start: "2026-12-01", End: "2026-12-02"})
	assert.ErrorIs(t, err, domainlistings.ErrNotRentable)

	_, err = h.Handle(context.Background(), pricinghandlers.QuoteQuery{ListingID: "drill", Start: "2026-12-01"})
	assert.Error(t, err, "an incomplete range is not quoted")

	_, err = h.Handle(context.Background(), pricinghandlers.QuoteQuery{ListingID: "drill", Start: "2026-12-1", End: "2026-12-02"})
	assert.Error(t, err)

	bad := domainpricing.FeeConfig{TaxPct: decimal.NewFromInt(-1)}
	_, err = h.Handle(context.Background(), pricinghandlers.QuoteQuery{ListingID: "drill", Start: "2026-12-01", End: "2026-12-02", Fees: &bad})
	assert.ErrorIs(t, err, domainpricing.ErrInvalidFees)
}
