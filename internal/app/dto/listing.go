package dto

import (
	"time"

	domainlistings "rentbook/internal/domain/listings"
)

// ListingCard is the catalog representation of an item.
type ListingCard struct {
	ID           string  `json:"id"`
	Name         string  `json:"name"`
	Category     string  `json:"category"`
	Price        string  `json:"price"`
	Rate         Rate    `json:"rate"`
	Kind         string  `json:"kind"`
	ThumbnailURL string  `json:"thumbnail_url,omitempty"`
	Rating       float64 `json:"rating,omitempty"`
	State        string  `json:"state"`
}

type ListingDetail struct {
	ListingCard
	SellerID    string      `json:"seller_id"`
	Description string      `json:"description,omitempty"`
	Photos      []string    `json:"photos"`
	Unavailable []DateRange `json:"unavailable"`
	CreatedAt   time.Time   `json:"created_at"`
	UpdatedAt   time.Time   `json:"updated_at"`
}

type ListingCatalog struct {
	Items []ListingCard     `json:"items"`
	Meta  CatalogMetadata   `json:"meta"`
	Query CatalogFilterEcho `json:"filters"`
}

type CatalogMetadata struct {
	Total  int    `json:"total"`
	Count  int    `json:"count"`
	Limit  int    `json:"limit"`
	Offset int    `json:"offset"`
	Sort   string `json:"sort"`
}

// CatalogFilterEcho echoes back the applied filters.
type CatalogFilterEcho struct {
	Category string `json:"category,omitempty"`
	Kind     string `json:"kind,omitempty"`
	Query    string `json:"q,omitempty"`
	SellerID string `json:"seller_id,omitempty"`
}

type PhotoUploadResult struct {
	ListingID    string   `json:"listing_id"`
	Photos       []string `json:"photos"`
	ThumbnailURL string   `json:"thumbnail_url"`
}

func MapListingCard(l *domainlistings.Listing) ListingCard {
	return ListingCard{
		ID:           string(l.ID),
		Name:         l.Name,
		Category:     l.Category,
		Price:        l.PriceLabel,
		Rate:         MapRate(l.Rate()),
		Kind:         string(l.Kind),
		ThumbnailURL: l.Thumbnail(),
		Rating:       l.Rating,
		State:        string(l.State),
	}
}

func MapListingDetail(l *domainlistings.Listing) ListingDetail {
	unavailable := make([]DateRange, 0, len(l.Unavailable))
	for _, r := range l.Unavailable {
		unavailable = append(unavailable, MapRange(r))
	}
	return ListingDetail{
		ListingCard: MapListingCard(l),
		SellerID:    string(l.Seller),
		Description: l.Description,
		Photos:      append([]string{}, l.Photos...),
		Unavailable: unavailable,
		CreatedAt:   l.CreatedAt,
		UpdatedAt:   l.UpdatedAt,
	}
}

func MapCatalog(result domainlistings.SearchResult, params domainlistings.SearchParams) ListingCatalog {
	normalized := params.Normalized()
	items := make([]ListingCard, 0, len(result.Items))
	for _, listing := range result.Items {
		items = append(items, MapListingCard(listing))
	}
	return ListingCatalog{
		Items: items,
		Meta: CatalogMetadata{
			Total:  result.Total,
			Count:  len(items),
			Limit:  normalized.Limit,
			Offset: normalized.Offset,
			Sort:   string(normalized.Sort),
		},
		Query: CatalogFilterEcho{
			Category: normalized.Category,
			Kind:     string(normalized.Kind),
			Query:    normalized.Query,
			SellerID: string(normalized.Seller),
		},
	}
}
