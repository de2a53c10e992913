package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"rentbook/internal/app/middleware"
)

const (
	idempotencyCollection = "app_idempotency"
	defaultIdempotencyTTL = 7 * 24 * time.Hour
)

// IdempotencyStore keeps the first stored result per key. Mongo's TTL
// monitor removes expired documents; Get also ignores them in between
// monitor passes.
type IdempotencyStore struct {
	col *mongo.Collection
	ttl time.Duration
	now func() time.Time
}

func NewIdempotencyStore(ctx context.Context, db *mongo.Database, ttl time.Duration) (*IdempotencyStore, error) {
	if ttl <= 0 {
		ttl = defaultIdempotencyTTL
	}
	col := db.Collection(idempotencyCollection)
	_, err := col.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "expires_at", Value: 1}},
		Options: options.Index().SetExpireAfterSeconds(0),
	})
	if err != nil {
		return nil, fmt.Errorf("mongo: idempotency index: %w", err)
	}
	return &IdempotencyStore{col: col, ttl: ttl, now: time.Now}, nil
}

func (s *IdempotencyStore) Get(ctx context.Context, key string) (middleware.IdempotencyRecord, bool, error) {
	var doc idempotencyDocument
	err := s.col.FindOne(ctx, liveKeyFilter(key, s.now())).Decode(&doc)
	switch {
	case errors.Is(err, mongo.ErrNoDocuments):
		return middleware.IdempotencyRecord{}, false, nil
	case err != nil:
		return middleware.IdempotencyRecord{}, false, err
	}
	return doc.record(), true, nil
}

// Save inserts rec. A concurrent writer that stored the key first wins and
// the duplicate is dropped.
func (s *IdempotencyStore) Save(ctx context.Context, rec middleware.IdempotencyRecord) error {
	_, err := s.col.InsertOne(ctx, newIdempotencyDocument(rec, s.now(), s.ttl))
	if err != nil && !mongo.IsDuplicateKeyError(err) {
		return err
	}
	return nil
}

type idempotencyDocument struct {
	Key        string    `bson:"_id"`
	Payload    []byte    `bson:"payload"`
	OccurredAt time.Time `bson:"occurred_at"`
	ExpiresAt  time.Time `bson:"expires_at"`
}

func newIdempotencyDocument(rec middleware.IdempotencyRecord, now time.Time, ttl time.Duration) idempotencyDocument {
	return idempotencyDocument{
		Key:        rec.Key,
		Payload:    rec.Payload,
		OccurredAt: rec.OccurredAt.UTC(),
		ExpiresAt:  now.Add(ttl).UTC(),
	}
}

func (d idempotencyDocument) record() middleware.IdempotencyRecord {
	return middleware.IdempotencyRecord{Key: d.Key, Payload: d.Payload, OccurredAt: d.OccurredAt}
}

func liveKeyFilter(key string, now time.Time) bson.D {
	return bson.D{
		{Key: "_id", Value: key},
		{Key: "expires_at", Value: bson.D{{Key: "$gt", Value: now.UTC()}}},
	}
}

var _ middleware.IdempotencyStore = (*IdempotencyStore)(nil)
