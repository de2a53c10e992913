package dto

import (
	"time"

	domainbooking "rentbook/internal/domain/booking"
)

type Booking struct {
	ID              string     `json:"id"`
	ListingID       string     `json:"listing_id"`
	ListingName     string     `json:"listing_name"`
	CustomerID      string     `json:"customer_id"`
	SellerID        string     `json:"seller_id"`
	Range           DateRange  `json:"range"`
	Breakdown       Breakdown  `json:"breakdown"`
	Status          string     `json:"status"`
	PaymentIntentID string     `json:"payment_intent_id,omitempty"`
	CreatedAt       time.Time  `json:"created_at"`
	ConfirmedAt     *time.Time `json:"confirmed_at,omitempty"`
	CompletedAt     *time.Time `json:"completed_at,omitempty"`
}

type BookingCollection struct {
	Items []Booking `json:"items"`
}

type CompletionResult struct {
	Completed []string `json:"completed"`
}

func MapBooking(b *domainbooking.Booking) Booking {
	return Booking{
		ID:              string(b.ID),
		ListingID:       string(b.ListingID),
		ListingName:     b.ListingName,
		CustomerID:      b.CustomerID,
		SellerID:        b.SellerID,
		Range:           MapRange(b.Range),
		Breakdown:       MapBreakdown(b.Breakdown),
		Status:          string(b.Status),
		PaymentIntentID: b.PaymentIntentID,
		CreatedAt:       b.CreatedAt,
		ConfirmedAt:     optionalTime(b.ConfirmedAt),
		CompletedAt:     optionalTime(b.CompletedAt),
	}
}

func optionalTime(t time.Time) *time.Time {
	if t.IsZero() {
		return nil
	}
	return &t
}
