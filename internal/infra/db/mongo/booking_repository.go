package mongo

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	domainbooking "rentbook/internal/domain/booking"
	"rentbook/internal/domain/listings"
)

type BookingRepository struct {
	col *mongo.Collection
}

func NewBookingRepository(db *mongo.Database) *BookingRepository {
	return &BookingRepository{col: db.Collection("agg_booking")}
}

// EnsureIndexes backs the list queries.
func (r *BookingRepository) EnsureIndexes(ctx context.Context) error {
	_, err := r.col.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "customer_id", Value: 1}, {Key: "created_at", Value: 1}}},
		{Keys: bson.D{{Key: "seller_id", Value: 1}, {Key: "created_at", Value: 1}}},
		{Keys: bson.D{{Key: "status", Value: 1}}},
	})
	return err
}

func (r *BookingRepository) ByID(ctx context.Context, id domainbooking.BookingID) (*domainbooking.Booking, error) {
	var doc bookingDocument
	if err := r.col.FindOne(ctx, bson.M{"_id": string(id)}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domainbooking.ErrBookingNotFound
		}
		return nil, err
	}
	return doc.toAggregate()
}

func (r *BookingRepository) Save(ctx context.Context, b *domainbooking.Booking) error {
	doc := newBookingDocument(b)
	filter := bson.M{"_id": doc.ID, "version": b.Version}
	doc.Version = b.Version + 1
	res, err := r.col.UpdateOne(ctx, filter, bson.M{"$set": doc}, options.Update().SetUpsert(true))
	if err := saveResult(res, err); err != nil {
		return err
	}
	b.Version = doc.Version
	return nil
}

func (r *BookingRepository) ListByCustomer(ctx context.Context, customerID string) ([]*domainbooking.Booking, error) {
	return r.find(ctx, bson.M{"customer_id": customerID})
}

func (r *BookingRepository) ListBySeller(ctx context.Context, sellerID string) ([]*domainbooking.Booking, error) {
	return r.find(ctx, bson.M{"seller_id": sellerID})
}

func (r *BookingRepository) ListByStatus(ctx context.Context, status domainbooking.Status) ([]*domainbooking.Booking, error) {
	return r.find(ctx, bson.M{"status": string(status)})
}

func (r *BookingRepository) find(ctx context.Context, filter bson.M) ([]*domainbooking.Booking, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: 1}, {Key: "_id", Value: 1}})
	cur, err := r.col.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	var docs []bookingDocument
	if err := cur.All(ctx, &docs); err != nil {
		return nil, err
	}
	out := make([]*domainbooking.Booking, 0, len(docs))
	for _, doc := range docs {
		agg, err := doc.toAggregate()
		if err != nil {
			return nil, err
		}
		out = append(out, agg)
	}
	return out, nil
}

type bookingDocument struct {
	ID              string            `bson:"_id"`
	ListingID       string            `bson:"listing_id"`
	ListingName     string            `bson:"listing_name"`
	CustomerID      string            `bson:"customer_id"`
	SellerID        string            `bson:"seller_id"`
	Range           rangeDocument     `bson:"range"`
	Breakdown       breakdownDocument `bson:"breakdown"`
	Status          string            `bson:"status"`
	PaymentIntentID string            `bson:"payment_intent_id,omitempty"`
	CreatedAt       int64             `bson:"created_at"`
	UpdatedAt       int64             `bson:"updated_at"`
	ConfirmedAt     int64             `bson:"confirmed_at,omitempty"`
	CompletedAt     int64             `bson:"completed_at,omitempty"`
	Version         int64             `bson:"version"`
}

func newBookingDocument(b *domainbooking.Booking) bookingDocument {
	return bookingDocument{
		ID:              string(b.ID),
		ListingID:       string(b.ListingID),
		ListingName:     b.ListingName,
		CustomerID:      b.CustomerID,
		SellerID:        b.SellerID,
		Range:           newRangeDocument(b.Range),
		Breakdown:       newBreakdownDocument(b.Breakdown),
		Status:          string(b.Status),
		PaymentIntentID: b.PaymentIntentID,
		CreatedAt:       toMillis(b.CreatedAt),
		UpdatedAt:       toMillis(b.UpdatedAt),
		ConfirmedAt:     toMillis(b.ConfirmedAt),
		CompletedAt:     toMillis(b.CompletedAt),
		Version:         b.Version,
	}
}

func (d bookingDocument) toAggregate() (*domainbooking.Booking, error) {
	r, err := d.Range.toRange()
	if err != nil {
		return nil, err
	}
	breakdown, err := d.Breakdown.toBreakdown()
	if err != nil {
		return nil, err
	}
	return &domainbooking.Booking{
		ID:              domainbooking.BookingID(d.ID),
		ListingID:       listings.ListingID(d.ListingID),
		ListingName:     d.ListingName,
		CustomerID:      d.CustomerID,
		SellerID:        d.SellerID,
		Range:           r,
		Breakdown:       breakdown,
		Status:          domainbooking.Status(d.Status),
		PaymentIntentID: d.PaymentIntentID,
		CreatedAt:       fromMillis(d.CreatedAt),
		UpdatedAt:       fromMillis(d.UpdatedAt),
		ConfirmedAt:     fromMillis(d.ConfirmedAt),
		CompletedAt:     fromMillis(d.CompletedAt),
		Version:         d.Version,
	}, nil
}

var _ domainbooking.Repository = (*BookingRepository)(nil)
