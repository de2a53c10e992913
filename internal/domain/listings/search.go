package listings

import (
	"sort"
	"strings"
)

// CatalogSort defines a supported ordering.
type CatalogSort string

const (
	SortByPriceAsc  CatalogSort = "price_asc"
	SortByPriceDesc CatalogSort = "price_desc"
	SortByRating    CatalogSort = "rating_desc"
	SortByName      CatalogSort = "name"

	defaultSearchLimit = 24
	maxSearchLimit     = 60
)

// SearchParams describe catalog filters and paging options.
type SearchParams struct {
	Seller     SellerID
	Category   string
	Kind       Kind
	Query      string
	OnlyActive bool
	Sort       CatalogSort
	Limit      int
	Offset     int
}

// Normalized returns a sanitized copy of params.
func (p SearchParams) Normalized() SearchParams {
	normalized := p
	normalized.Seller = SellerID(strings.TrimSpace(string(normalized.Seller)))
	normalized.Category = strings.ToLower(strings.TrimSpace(normalized.Category))
	normalized.Query = strings.ToLower(strings.TrimSpace(normalized.Query))
	switch normalized.Kind {
	case KindRent, KindBuy:
	default:
		normalized.Kind = ""
	}
	if normalized.Limit <= 0 {
		normalized.Limit = defaultSearchLimit
	}
	if normalized.Limit > maxSearchLimit {
		normalized.Limit = maxSearchLimit
	}
	if normalized.Offset < 0 {
		normalized.Offset = 0
	}
	switch normalized.Sort {
	case SortByPriceAsc, SortByPriceDesc, SortByRating, SortByName:
	default:
		normalized.Sort = SortByName
	}
	return normalized
}

// Matches applies the filters of normalized params to one listing.
func (p SearchParams) Matches(l *Listing) bool {
	if l == nil {
		return false
	}
	if p.OnlyActive && l.State != ListingActive {
		return false
	}
	if p.Seller != "" && l.Seller != p.Seller {
		return false
	}
	if p.Category != "" && strings.ToLower(l.Category) != p.Category {
		return false
	}
	if p.Kind != "" && l.Kind != p.Kind {
		return false
	}
	if p.Query != "" {
		haystack := strings.ToLower(l.Name + " " + l.Description + " " + l.Category)
		if !strings.Contains(haystack, p.Query) {
			return false
		}
	}
	return true
}

// Apply filters, sorts and pages items in memory.
func (p SearchParams) Apply(items []*Listing) SearchResult {
	params := p.Normalized()
	matched := make([]*Listing, 0, len(items))
	for _, item := range items {
		if params.Matches(item) {
			matched = append(matched, item)
		}
	}
	SortListings(matched, params.Sort)

	total := len(matched)
	if params.Offset >= total {
		return SearchResult{Items: []*Listing{}, Total: total}
	}
	end := params.Offset + params.Limit
	if end > total {
		end = total
	}
	return SearchResult{Items: matched[params.Offset:end], Total: total}
}

// SortListings orders by the per-unit amount for price sorts; ties and the
// name sort fall back to name then id so pages are stable.
func SortListings(items []*Listing, order CatalogSort) {
	byName := func(a, b *Listing) bool {
		if a.Name != b.Name {
			return a.Name < b.Name
		}
		return a.ID < b.ID
	}
	sort.SliceStable(items, func(i, j int) bool {
		a, b := items[i], items[j]
		switch order {
		case SortByPriceAsc, SortByPriceDesc:
			cmp := a.Rate().Amount.Cmp(b.Rate().Amount)
			if cmp != 0 {
				if order == SortByPriceAsc {
					return cmp < 0
				}
				return cmp > 0
			}
		case SortByRating:
			if a.Rating != b.Rating {
				return a.Rating > b.Rating
			}
		}
		return byName(a, b)
	})
}

// SearchResult wraps search hits with meta.
type SearchResult struct {
	Items []*Listing
	Total int
}
