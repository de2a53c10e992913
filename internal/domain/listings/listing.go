package listings

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"rentbook/internal/domain/pricing"
	"rentbook/internal/domain/shared/daterange"
	"rentbook/internal/domain/shared/events"
)

var (
	ErrNameRequired     = errors.New("listings: name is required")
	ErrCategoryRequired = errors.New("listings: category is required")
	ErrInvalidKind      = errors.New("listings: kind must be rent or buy")
	ErrInvalidState     = errors.New("listings: invalid state transition")
	ErrNotRentable      = errors.New("listings: item is for sale only")
	ErrNotFound         = errors.New("listings: not found")
	ErrInvalidRating    = errors.New("listings: rating must be between 0 and 5")
)

type ListingID string
type SellerID string

type ListingState string

const (
	ListingDraft  ListingState = "DRAFT"
	ListingActive ListingState = "ACTIVE"
)

// Kind tells whether an item is rented for a stay or bought outright.
type Kind string

const (
	KindRent Kind = "rent"
	KindBuy  Kind = "buy"
)

func ParseKind(raw string) (Kind, error) {
	switch Kind(strings.ToLower(strings.TrimSpace(raw))) {
	case KindRent, "":
		return KindRent, nil
	case KindBuy:
		return KindBuy, nil
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidKind, raw)
}

// Known catalog categories, in display order.
var Categories = []string{"Hardware", "Dress", "Kitchen", "Crafts", "Tools"}

// NormalizeCategory maps case variants of a known category onto its display
// name and leaves custom categories trimmed.
func NormalizeCategory(raw string) string {
	value := strings.TrimSpace(raw)
	for _, known := range Categories {
		if strings.EqualFold(known, value) {
			return known
		}
	}
	return value
}

type Listing struct {
	ID          ListingID
	Seller      SellerID
	Name        string
	Category    string
	PriceLabel  string
	Kind        Kind
	Description string
	Rating      float64
	Photos      []string
	// Unavailable holds the ranges the seller blocked up front.
	Unavailable []daterange.Range
	State       ListingState
	Version     int64
	CreatedAt   time.Time
	UpdatedAt   time.Time
	events.EventRecorder
}

type ListingRepository interface {
	ByID(ctx context.Context, id ListingID) (*Listing, error)
	Save(ctx context.Context, listing *Listing) error
	Search(ctx context.Context, params SearchParams) (SearchResult, error)
}

type CreateListingParams struct {
	ID          ListingID
	Seller      SellerID
	Name        string
	Category    string
	PriceLabel  string
	Kind        Kind
	Description string
	Rating      float64
	Photos      []string
	Unavailable []daterange.Range
	Activate    bool
	Now         time.Time
}

// NewListing validates seller input. Unlike the booking flow, which degrades a
// bad label to a zero rate, a new listing must carry a parseable price.
func NewListing(params CreateListingParams) (*Listing, error) {
	if strings.TrimSpace(string(params.ID)) == "" {
		return nil, errors.New("listings: id is required")
	}
	if strings.TrimSpace(string(params.Seller)) == "" {
		return nil, errors.New("listings: seller is required")
	}
	if strings.TrimSpace(params.Name) == "" {
		return nil, ErrNameRequired
	}
	category := NormalizeCategory(params.Category)
	if category == "" {
		return nil, ErrCategoryRequired
	}
	kind := params.Kind
	if kind == "" {
		kind = KindRent
	}
	if kind != KindRent && kind != KindBuy {
		return nil, ErrInvalidKind
	}
	if _, err := pricing.ParsePriceStrict(params.PriceLabel); err != nil {
		return nil, fmt.Errorf("listings: %w", err)
	}
	if params.Rating < 0 || params.Rating > 5 {
		return nil, ErrInvalidRating
	}
	unavailable := make([]daterange.Range, 0, len(params.Unavailable))
	for _, r := range params.Unavailable {
		if err := r.Validate(); err != nil {
			return nil, fmt.Errorf("listings: unavailable %s: %w", r, err)
		}
		unavailable = append(unavailable, r)
	}

	now := params.Now.UTC()
	listing := &Listing{
		ID:          params.ID,
		Seller:      params.Seller,
		Name:        strings.TrimSpace(params.Name),
		Category:    category,
		PriceLabel:  strings.TrimSpace(params.PriceLabel),
		Kind:        kind,
		Description: strings.TrimSpace(params.Description),
		Rating:      params.Rating,
		Photos:      append([]string(nil), params.Photos...),
		Unavailable: unavailable,
		State:       ListingDraft,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	listing.Record(ListingCreatedEvent{ListingID: listing.ID, SellerID: listing.Seller, Category: listing.Category, At: now})
	if params.Activate {
		if err := listing.Activate(now); err != nil {
			return nil, err
		}
	}
	return listing, nil
}

// Rate parses the display label. Stored labels were validated on creation,
// but fixtures and older records go through the lenient parser.
func (l *Listing) Rate() pricing.Rate {
	return pricing.ParsePrice(l.PriceLabel)
}

func (l *Listing) Rentable() bool {
	return l.Kind != KindBuy
}

func (l *Listing) EnsureRentable() error {
	if !l.Rentable() {
		return ErrNotRentable
	}
	if l.State != ListingActive {
		return ErrInvalidState
	}
	return nil
}

func (l *Listing) Activate(now time.Time) error {
	if l.State == ListingActive {
		return nil
	}
	l.State = ListingActive
	l.UpdatedAt = now.UTC()
	l.Record(ListingActivatedEvent{ListingID: l.ID, SellerID: l.Seller, At: l.UpdatedAt})
	return nil
}

func (l *Listing) AddPhoto(url string, now time.Time) {
	url = strings.TrimSpace(url)
	if url == "" {
		return
	}
	l.Photos = append(l.Photos, url)
	l.UpdatedAt = now.UTC()
	l.Record(ListingPhotoAddedEvent{ListingID: l.ID, URL: url, At: l.UpdatedAt})
}

// Thumbnail is the first photo, if any.
func (l *Listing) Thumbnail() string {
	if len(l.Photos) == 0 {
		return ""
	}
	return l.Photos[0]
}
