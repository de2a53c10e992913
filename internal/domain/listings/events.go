package listings

import "time"

// ListingCreatedEvent is recorded for every new listing, draft or active.
type ListingCreatedEvent struct {
	ListingID ListingID `json:"listing_id"`
	SellerID  SellerID  `json:"seller_id"`
	Category  string    `json:"category"`
	At        time.Time `json:"at"`
}

func (e ListingCreatedEvent) EventName() string     { return "listing.created" }
func (e ListingCreatedEvent) AggregateID() string   { return string(e.ListingID) }
func (e ListingCreatedEvent) OccurredAt() time.Time { return e.At }

type ListingActivatedEvent struct {
	ListingID ListingID `json:"listing_id"`
	SellerID  SellerID  `json:"seller_id"`
	At        time.Time `json:"at"`
}

func (e ListingActivatedEvent) EventName() string     { return "listing.activated" }
func (e ListingActivatedEvent) AggregateID() string   { return string(e.ListingID) }
func (e ListingActivatedEvent) OccurredAt() time.Time { return e.At }

type ListingPhotoAddedEvent struct {
	ListingID ListingID `json:"listing_id"`
	URL       string    `json:"url"`
	At        time.Time `json:"at"`
}

func (e ListingPhotoAddedEvent) EventName() string     { return "listing.photo_added" }
func (e ListingPhotoAddedEvent) AggregateID() string   { return string(e.ListingID) }
func (e ListingPhotoAddedEvent) OccurredAt() time.Time { return e.At }
