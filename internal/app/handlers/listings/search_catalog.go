package listings

import (
	"context"

	"rentbook/internal/app/actor"
	"rentbook/internal/app/dto"
	handlersupport "rentbook/internal/app/handlers/support"
	"rentbook/internal/app/queries"
	"rentbook/internal/app/uow"
	domainlistings "rentbook/internal/domain/listings"
)

const searchCatalogKey = "listings.search"

type SearchCatalogQuery struct {
	Category string
	Kind     string
	Query    string
	SellerID string
	Sort     string
	Limit    int
	Offset   int
}

func (q SearchCatalogQuery) Key() string { return searchCatalogKey }

type SearchCatalogHandler struct {
	UoWFactory uow.UoWFactory
}

// Handle lists active items. A seller filtering on their own id also sees
// drafts.
func (h *SearchCatalogHandler) Handle(ctx context.Context, q SearchCatalogQuery) (dto.ListingCatalog, error) {
	params := domainlistings.SearchParams{
		Seller:     domainlistings.SellerID(q.SellerID),
		Category:   q.Category,
		Kind:       domainlistings.Kind(q.Kind),
		Query:      q.Query,
		OnlyActive: true,
		Sort:       domainlistings.CatalogSort(q.Sort),
		Limit:      q.Limit,
		Offset:     q.Offset,
	}
	if a, ok := actor.FromContext(ctx); ok && a.IsSeller() && q.SellerID != "" && q.SellerID == a.UserID {
		params.OnlyActive = false
	}
	params = params.Normalized()

	unit, execCtx, cleanup, err := handlersupport.BeginReadOnlyUnit(ctx, h.UoWFactory)
	if err != nil {
		return dto.ListingCatalog{}, err
	}
	if cleanup != nil {
		defer cleanup()
	}
	result, err := unit.Listings().Search(execCtx, params)
	if err != nil {
		return dto.ListingCatalog{}, err
	}
	return dto.MapCatalog(result, params), nil
}

var _ queries.Handler[SearchCatalogQuery, dto.ListingCatalog] = (*SearchCatalogHandler)(nil)
