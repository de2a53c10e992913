package mongo

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"rentbook/internal/app/middleware"
	"rentbook/internal/app/uow"
	domainavailability "rentbook/internal/domain/availability"
	domainbooking "rentbook/internal/domain/booking"
	"rentbook/internal/domain/listings"
	domainpricing "rentbook/internal/domain/pricing"
	"rentbook/internal/domain/shared/daterange"
)

func TestBookingDocumentRoundTrip(t *testing.T) {
	created := time.Date(2024, 3, 1, 9, 30, 0, 0, time.UTC)
	r, err := daterange.ParseRange("2024-03-01", "2024-03-04")
	require.NoError(t, err)
	b := &domainbooking.Booking{
		ID:              "bk-1",
		ListingID:       "lst-1",
		ListingName:     "Drill",
		CustomerID:      "u-1",
		SellerID:        "s-1",
		Range:           r,
		Breakdown:       domainpricing.ComputeForRange(domainpricing.ParsePrice("$12/day"), r, domainpricing.DefaultFees()),
		Status:          domainbooking.StatusConfirmed,
		PaymentIntentID: "pi_1",
		CreatedAt:       created,
		UpdatedAt:       created,
		ConfirmedAt:     created,
		Version:         3,
	}

	raw, err := bson.Marshal(newBookingDocument(b))
	require.NoError(t, err)
	var doc bookingDocument
	require.NoError(t, bson.Unmarshal(raw, &doc))
	assert.Equal(t, "2024-03-01", doc.Range.Start)
	assert.Equal(t, "92.37", doc.Breakdown.Total.Amount)

	got, err := doc.toAggregate()
	require.NoError(t, err)
	assert.Equal(t, b.Range, got.Range)
	assert.Equal(t, "$92.37", got.Breakdown.Total.String())
	assert.Equal(t, "$50.00", got.Breakdown.Deposit.String())
	assert.Equal(t, 3, got.Breakdown.BilledUnits)
	assert.True(t, b.Breakdown.Fees.TaxPct.Equal(got.Breakdown.Fees.TaxPct))
	assert.Equal(t, created, got.ConfirmedAt)
	assert.True(t, got.CompletedAt.IsZero())
	assert.Equal(t, int64(3), got.Version)
}

func TestBookingDocumentRejectsBadAmount(t *testing.T) {
	doc := bookingDocument{
		Range:     rangeDocument{Start: "2024-03-01", End: "2024-03-02"},
		Breakdown: breakdownDocument{Total: moneyDocument{Amount: "lots", Currency: "USD"}},
	}
	_, err := doc.toAggregate()
	assert.Error(t, err)
}

func TestCalendarDocumentRoundTrip(t *testing.T) {
	r, err := daterange.ParseRange("2024-05-10", "2024-05-12")
	require.NoError(t, err)
	cal := &domainavailability.Calendar{
		ListingID: "lst-9",
		Blocks: []domainavailability.Block{
			{Range: r, Reason: domainavailability.ReasonBooking, Reference: "bk-1", CreatedAt: time.UnixMilli(1700000000000).UTC()},
		},
		Version: 1,
	}
	got, err := newCalendarDocument(cal).toAggregate()
	require.NoError(t, err)
	assert.Equal(t, cal.ListingID, got.ListingID)
	assert.Equal(t, cal.Blocks, got.Blocks)
	assert.False(t, got.CanReserve(r))
}

func TestListingDocumentDenormalizesRate(t *testing.T) {
	l := &listings.Listing{
		ID:         "lst-2",
		Seller:     "s-1",
		Name:       "Sewing Kit",
		Category:   "Crafts",
		PriceLabel: "$12.50/hr",
		Kind:       listings.KindRent,
		State:      listings.ListingActive,
	}
	doc, err := newListingDocument(l)
	require.NoError(t, err)
	assert.Equal(t, "crafts", doc.CategoryKey)
	assert.Equal(t, "12.5", doc.RateAmount.String())
	assert.Equal(t, "hour", doc.RateUnit)

	got, err := doc.toAggregate()
	require.NoError(t, err)
	assert.Equal(t, l.PriceLabel, got.PriceLabel)
	assert.Equal(t, l.State, got.State)
}

func TestSearchFilter(t *testing.T) {
	p := listings.SearchParams{Category: " Tools ", Query: "saw (9", OnlyActive: true, Kind: "bogus"}.Normalized()
	filter := searchFilter(p)
	assert.Equal(t, "ACTIVE", filter["state"])
	assert.Equal(t, "tools", filter["category_key"])
	assert.NotContains(t, filter, "kind")
	or, ok := filter["$or"].(bson.A)
	require.True(t, ok)
	assert.Len(t, or, 3)

	sort := searchSort(listings.SortByPriceDesc)
	assert.Equal(t, "rate_amount", sort[0].Key)
	assert.Equal(t, -1, sort[0].Value)
}

func TestSaveResult(t *testing.T) {
	assert.NoError(t, saveResult(&mongo.UpdateResult{MatchedCount: 1}, nil))
	assert.NoError(t, saveResult(&mongo.UpdateResult{UpsertedCount: 1}, nil))
	assert.ErrorIs(t, saveResult(&mongo.UpdateResult{}, nil), uow.ErrConcurrentUpdate)

	dup := mongo.WriteException{WriteErrors: mongo.WriteErrors{{Code: 11000}}}
	assert.ErrorIs(t, saveResult(nil, dup), uow.ErrConcurrentUpdate)

	boom := errors.New("boom")
	assert.ErrorIs(t, saveResult(nil, boom), boom)
}

func TestWriteConflictsAreConcurrentUpdates(t *testing.T) {
	conflict := mongo.CommandError{Code: 112, Name: "WriteConflict"}
	assert.ErrorIs(t, saveResult(nil, conflict), uow.ErrConcurrentUpdate)

	transient := mongo.CommandError{Code: 251, Labels: []string{"TransientTransactionError"}}
	assert.True(t, isWriteConflict(transient))

	inWrite := mongo.WriteException{WriteErrors: mongo.WriteErrors{{Code: 112}}}
	assert.True(t, isWriteConflict(inWrite))
	assert.False(t, isWriteConflict(mongo.CommandError{Code: 2}))
}

func TestIdempotencyDocumentExpiry(t *testing.T) {
	now := time.Date(2026, 10, 19, 9, 0, 0, 0, time.FixedZone("X", 3600))
	rec := middleware.IdempotencyRecord{Key: "booking.pay:u1:k1", Payload: []byte(`{"id":"bk"}`), OccurredAt: now}

	doc := newIdempotencyDocument(rec, now, time.Hour)
	assert.Equal(t, now.Add(time.Hour).UTC(), doc.ExpiresAt)
	assert.Equal(t, time.UTC, doc.OccurredAt.Location())
	back := doc.record()
	assert.Equal(t, rec.Key, back.Key)
	assert.Equal(t, rec.Payload, back.Payload)

	filter := liveKeyFilter(rec.Key, now)
	assert.Equal(t, rec.Key, filter[0].Value)
	assert.Equal(t, bson.D{{Key: "$gt", Value: now.UTC()}}, filter[1].Value)
}
