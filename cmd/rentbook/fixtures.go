package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"rentbook/internal/app/uow"
	domainavailability "rentbook/internal/domain/availability"
	"rentbook/internal/domain/listings"
	"rentbook/internal/domain/shared/daterange"
)

type listingFixture struct {
	ID          string         `json:"id"`
	Seller      string         `json:"seller"`
	Name        string         `json:"name"`
	Category    string         `json:"category"`
	Price       string         `json:"price"`
	Kind        string         `json:"kind"`
	Description string         `json:"description"`
	Rating      float64        `json:"rating"`
	Photos      []string       `json:"photos"`
	Unavailable []fixtureRange `json:"unavailable"`
}

type fixtureRange struct {
	Start string `json:"start"`
	End   string `json:"end"`
}

// loadListingFixtures seeds active listings and their calendars. Listings
// that already exist are left alone, so restarts against Mongo are safe.
func loadListingFixtures(ctx context.Context, factory uow.UoWFactory, path string, now time.Time, logger *slog.Logger) (int, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			logger.Info("listing fixtures file not found, skipping", "path", path)
			return 0, nil
		}
		return 0, fmt.Errorf("read fixtures: %w", err)
	}
	if len(data) == 0 {
		logger.Warn("listing fixtures file empty", "path", path)
		return 0, nil
	}
	var fixtures []listingFixture
	if err := json.Unmarshal(data, &fixtures); err != nil {
		return 0, fmt.Errorf("decode fixtures: %w", err)
	}

	imported := 0
	for _, fx := range fixtures {
		listing, err := fx.toListing(now)
		if err != nil {
			logger.Error("fixture invalid", "listing_id", fx.ID, "error", err)
			continue
		}
		err = importListing(ctx, factory, listing)
		switch {
		case errors.Is(err, uow.ErrConcurrentUpdate):
			logger.Debug("fixture already present", "listing_id", fx.ID)
		case err != nil:
			logger.Error("cannot store fixture listing", "listing_id", fx.ID, "error", err)
		default:
			imported++
		}
	}
	logger.Info("listing fixtures imported", "count", imported, "path", path)
	return imported, nil
}

func (fx listingFixture) toListing(now time.Time) (*listings.Listing, error) {
	kind, err := listings.ParseKind(fx.Kind)
	if err != nil {
		return nil, err
	}
	params := listings.CreateListingParams{
		ID:          listings.ListingID(fx.ID),
		Seller:      listings.SellerID(fx.Seller),
		Name:        fx.Name,
		Category:    fx.Category,
		PriceLabel:  fx.Price,
		Kind:        kind,
		Description: fx.Description,
		Rating:      fx.Rating,
		Photos:      append([]string(nil), fx.Photos...),
		Activate:    true,
		Now:         now,
	}
	for _, r := range fx.Unavailable {
		parsed, err := daterange.ParseRange(r.Start, r.End)
		if err != nil {
			return nil, err
		}
		params.Unavailable = append(params.Unavailable, parsed)
	}
	return listings.NewListing(params)
}

func importListing(ctx context.Context, factory uow.UoWFactory, listing *listings.Listing) (err error) {
	unit, err := factory.Begin(ctx, uow.TxOptions{})
	if err != nil {
		return err
	}
	execCtx := uow.Bind(ctx, unit)
	defer func() {
		if err != nil {
			_ = unit.Rollback(ctx)
		}
	}()
	listing.ClearEvents()
	if err = unit.Listings().Save(execCtx, listing); err != nil {
		return err
	}
	if listing.Rentable() {
		if err = unit.Availability().Save(execCtx, domainavailability.FromListing(listing)); err != nil {
			return err
		}
	}
	return unit.Commit(execCtx)
}

func defaultListingFixturesPath() string {
	candidates := []string{
		filepath.Join("data", "listings.json"),
		filepath.Join("..", "..", "data", "listings.json"),
	}
	for _, candidate := range candidates {
		if _, err := os.Stat(candidate); err == nil {
			return candidate
		}
	}
	return candidates[0]
}
