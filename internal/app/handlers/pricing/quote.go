package pricing

import (
	"context"

	"rentbook/internal/app/dto"
	handlersupport "rentbook/internal/app/handlers/support"
	"rentbook/internal/app/policies"
	"rentbook/internal/app/queries"
	"rentbook/internal/app/uow"
	domainlistings "rentbook/internal/domain/listings"
	domainpricing "rentbook/internal/domain/pricing"
	"rentbook/internal/domain/shared/daterange"
)

const quoteKey = "pricing.quote"

// QuoteQuery prices a stay. Fees, when set, replaces the listing's fee terms
// for this quote only.
type QuoteQuery struct {
	ListingID string
	Start     string
	End       string
	Fees      *domainpricing.FeeConfig
}

func (q QuoteQuery) Key() string { return quoteKey }

// QuoteHandler prices a stay for a listing. The range must be complete and
// ordered; the pricing engine itself would bill an incomplete range as a day.
type QuoteHandler struct {
	UoWFactory uow.UoWFactory
	Fees       policies.FeePolicy
}

func (h *QuoteHandler) Handle(ctx context.Context, q QuoteQuery) (dto.Quote, error) {
	r, err := daterange.ParseRange(q.Start, q.End)
	if err != nil {
		return dto.Quote{}, err
	}
	if err := r.Validate(); err != nil {
		return dto.Quote{}, err
	}

	unit, execCtx, cleanup, err := handlersupport.BeginReadOnlyUnit(ctx, h.UoWFactory)
	if err != nil {
		return dto.Quote{}, err
	}
	if cleanup != nil {
		defer cleanup()
	}

	listing, err := unit.Listings().ByID(execCtx, domainlistings.ListingID(q.ListingID))
	if err != nil {
		return dto.Quote{}, err
	}
	if !listing.Rentable() {
		return dto.Quote{}, domainlistings.ErrNotRentable
	}
	policy := h.Fees
	if q.Fees != nil {
		if err := q.Fees.Validate(); err != nil {
			return dto.Quote{}, err
		}
		policy = policies.StaticFees(*q.Fees)
	}
	return BuildQuote(execCtx, listing, r, policy), nil
}

// BuildQuote prices r for listing under the listing's fee terms.
func BuildQuote(ctx context.Context, listing *domainlistings.Listing, r daterange.Range, fees policies.FeePolicy) dto.Quote {
	terms := domainpricing.DefaultFees()
	if fees != nil {
		terms = fees.FeesFor(ctx, listing)
	}
	rate := listing.Rate()
	return dto.Quote{
		ListingID:   string(listing.ID),
		ListingName: listing.Name,
		Rate:        dto.MapRate(rate),
		Range:       dto.MapRange(r),
		Breakdown:   dto.MapBreakdown(domainpricing.ComputeForRange(rate, r, terms)),
	}
}

var _ queries.Handler[QuoteQuery, dto.Quote] = (*QuoteHandler)(nil)
