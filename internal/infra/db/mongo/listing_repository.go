package mongo

import (
	"context"
	"errors"
	"regexp"
	"strings"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"rentbook/internal/domain/listings"
	"rentbook/internal/domain/shared/daterange"
)

type ListingRepository struct {
	col *mongo.Collection
}

func NewListingRepository(db *mongo.Database) *ListingRepository {
	return &ListingRepository{col: db.Collection("agg_listing")}
}

func (r *ListingRepository) EnsureIndexes(ctx context.Context) error {
	_, err := r.col.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "state", Value: 1}, {Key: "category_key", Value: 1}}},
		{Keys: bson.D{{Key: "seller_id", Value: 1}}},
		{Keys: bson.D{{Key: "name", Value: 1}, {Key: "_id", Value: 1}}},
	})
	return err
}

func (r *ListingRepository) ByID(ctx context.Context, id listings.ListingID) (*listings.Listing, error) {
	var doc listingDocument
	if err := r.col.FindOne(ctx, bson.M{"_id": string(id)}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, listings.ErrNotFound
		}
		return nil, err
	}
	return doc.toAggregate()
}

func (r *ListingRepository) Save(ctx context.Context, l *listings.Listing) error {
	doc, err := newListingDocument(l)
	if err != nil {
		return err
	}
	filter := bson.M{"_id": doc.ID, "version": l.Version}
	doc.Version = l.Version + 1
	res, err := r.col.UpdateOne(ctx, filter, bson.M{"$set": doc}, options.Update().SetUpsert(true))
	if err := saveResult(res, err); err != nil {
		return err
	}
	l.Version = doc.Version
	return nil
}

func (r *ListingRepository) Search(ctx context.Context, params listings.SearchParams) (listings.SearchResult, error) {
	p := params.Normalized()
	filter := searchFilter(p)

	total, err := r.col.CountDocuments(ctx, filter)
	if err != nil {
		return listings.SearchResult{}, err
	}
	opts := options.Find().
		SetSort(searchSort(p.Sort)).
		SetSkip(int64(p.Offset)).
		SetLimit(int64(p.Limit))
	cur, err := r.col.Find(ctx, filter, opts)
	if err != nil {
		return listings.SearchResult{}, err
	}
	var docs []listingDocument
	if err := cur.All(ctx, &docs); err != nil {
		return listings.SearchResult{}, err
	}
	items := make([]*listings.Listing, 0, len(docs))
	for _, doc := range docs {
		agg, err := doc.toAggregate()
		if err != nil {
			return listings.SearchResult{}, err
		}
		items = append(items, agg)
	}
	return listings.SearchResult{Items: items, Total: int(total)}, nil
}

// searchFilter expects normalized params.
func searchFilter(p listings.SearchParams) bson.M {
	filter := bson.M{}
	if p.OnlyActive {
		filter["state"] = string(listings.ListingActive)
	}
	if p.Seller != "" {
		filter["seller_id"] = string(p.Seller)
	}
	if p.Category != "" {
		filter["category_key"] = p.Category
	}
	if p.Kind != "" {
		filter["kind"] = string(p.Kind)
	}
	if p.Query != "" {
		pattern := primitive.Regex{Pattern: regexp.QuoteMeta(p.Query), Options: "i"}
		filter["$or"] = bson.A{
			bson.M{"name": pattern},
			bson.M{"description": pattern},
			bson.M{"category": pattern},
		}
	}
	return filter
}

func searchSort(order listings.CatalogSort) bson.D {
	tail := bson.D{{Key: "name", Value: 1}, {Key: "_id", Value: 1}}
	switch order {
	case listings.SortByPriceAsc:
		return append(bson.D{{Key: "rate_amount", Value: 1}}, tail...)
	case listings.SortByPriceDesc:
		return append(bson.D{{Key: "rate_amount", Value: -1}}, tail...)
	case listings.SortByRating:
		return append(bson.D{{Key: "rating", Value: -1}}, tail...)
	}
	return tail
}

type listingDocument struct {
	ID          string               `bson:"_id"`
	SellerID    string               `bson:"seller_id"`
	Name        string               `bson:"name"`
	Category    string               `bson:"category"`
	CategoryKey string               `bson:"category_key"`
	PriceLabel  string               `bson:"price_label"`
	RateAmount  primitive.Decimal128 `bson:"rate_amount"`
	RateUnit    string               `bson:"rate_unit"`
	Kind        string               `bson:"kind"`
	Description string               `bson:"description"`
	Rating      float64              `bson:"rating"`
	Photos      []string             `bson:"photos"`
	Unavailable []rangeDocument      `bson:"unavailable"`
	State       string               `bson:"state"`
	CreatedAt   int64                `bson:"created_at"`
	UpdatedAt   int64                `bson:"updated_at"`
	Version     int64                `bson:"version"`
}

func newListingDocument(l *listings.Listing) (listingDocument, error) {
	rate := l.Rate()
	amount, err := primitive.ParseDecimal128(rate.Amount.String())
	if err != nil {
		return listingDocument{}, err
	}
	unavailable := make([]rangeDocument, 0, len(l.Unavailable))
	for _, r := range l.Unavailable {
		unavailable = append(unavailable, newRangeDocument(r))
	}
	return listingDocument{
		ID:          string(l.ID),
		SellerID:    string(l.Seller),
		Name:        l.Name,
		Category:    l.Category,
		CategoryKey: strings.ToLower(l.Category),
		PriceLabel:  l.PriceLabel,
		RateAmount:  amount,
		RateUnit:    string(rate.Unit),
		Kind:        string(l.Kind),
		Description: l.Description,
		Rating:      l.Rating,
		Photos:      append([]string{}, l.Photos...),
		Unavailable: unavailable,
		State:       string(l.State),
		CreatedAt:   toMillis(l.CreatedAt),
		UpdatedAt:   toMillis(l.UpdatedAt),
		Version:     l.Version,
	}, nil
}

// toAggregate ignores the denormalized rate fields; the label stays the source.
func (d listingDocument) toAggregate() (*listings.Listing, error) {
	unavailable := make([]daterange.Range, 0, len(d.Unavailable))
	for _, doc := range d.Unavailable {
		r, err := doc.toRange()
		if err != nil {
			return nil, err
		}
		unavailable = append(unavailable, r)
	}
	return &listings.Listing{
		ID:          listings.ListingID(d.ID),
		Seller:      listings.SellerID(d.SellerID),
		Name:        d.Name,
		Category:    d.Category,
		PriceLabel:  d.PriceLabel,
		Kind:        listings.Kind(d.Kind),
		Description: d.Description,
		Rating:      d.Rating,
		Photos:      d.Photos,
		Unavailable: unavailable,
		State:       listings.ListingState(d.State),
		CreatedAt:   fromMillis(d.CreatedAt),
		UpdatedAt:   fromMillis(d.UpdatedAt),
		Version:     d.Version,
	}, nil
}

var _ listings.ListingRepository = (*ListingRepository)(nil)
