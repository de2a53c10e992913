package booking

import (
	"context"
	"errors"
	"strings"
	"time"

	"rentbook/internal/domain/listings"
	"rentbook/internal/domain/pricing"
	"rentbook/internal/domain/shared/daterange"
	"rentbook/internal/domain/shared/events"
)

var (
	ErrInvalidState     = errors.New("booking: invalid state transition")
	ErrPaymentRequired  = errors.New("booking: payment intent required before confirmation")
	ErrBookingNotFound  = errors.New("booking: not found")
	ErrPastDates        = errors.New("booking: dates must not be in the past")
	ErrCustomerRequired = errors.New("booking: customer id required")
	ErrOwnListing       = errors.New("booking: sellers cannot book their own listing")
)

type BookingID string

type Status string

const (
	StatusDraft           Status = "draft"
	StatusAwaitingPayment Status = "awaiting_payment"
	StatusConfirmed       Status = "confirmed"
	StatusCompleted       Status = "completed"
	StatusCanceled        Status = "canceled"
)

type Booking struct {
	ID              BookingID
	ListingID       listings.ListingID
	ListingName     string
	CustomerID      string
	SellerID        string
	Range           daterange.Range
	Breakdown       pricing.Breakdown
	Status          Status
	PaymentIntentID string
	CreatedAt       time.Time
	UpdatedAt       time.Time
	ConfirmedAt     time.Time
	CompletedAt     time.Time
	Version         int64
	events.EventRecorder
}

type Repository interface {
	ByID(ctx context.Context, id BookingID) (*Booking, error)
	Save(ctx context.Context, booking *Booking) error
	ListByCustomer(ctx context.Context, customerID string) ([]*Booking, error)
	ListBySeller(ctx context.Context, sellerID string) ([]*Booking, error)
	ListByStatus(ctx context.Context, status Status) ([]*Booking, error)
}

type CreateParams struct {
	ID          BookingID
	ListingID   listings.ListingID
	ListingName string
	CustomerID  string
	SellerID    string
	Range       daterange.Range
	Breakdown   pricing.Breakdown
	CreatedAt   time.Time
}

// NewBooking opens a booking awaiting payment. The range must be complete and
// ordered; checks against today and the calendar belong to the caller.
func NewBooking(params CreateParams) (*Booking, error) {
	if strings.TrimSpace(params.CustomerID) == "" {
		return nil, ErrCustomerRequired
	}
	if params.SellerID != "" && params.SellerID == params.CustomerID {
		return nil, ErrOwnListing
	}
	if err := params.Range.Validate(); err != nil {
		return nil, err
	}
	now := params.CreatedAt.UTC()
	b := &Booking{
		ID:          params.ID,
		ListingID:   params.ListingID,
		ListingName: params.ListingName,
		CustomerID:  params.CustomerID,
		SellerID:    params.SellerID,
		Range:       params.Range,
		Breakdown:   params.Breakdown,
		Status:      StatusAwaitingPayment,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	b.Record(BookingRequested{
		BookingID:  b.ID,
		ListingID:  b.ListingID,
		CustomerID: b.CustomerID,
		Range:      b.Range,
		Total:      b.Breakdown.Total,
		At:         now,
	})
	return b, nil
}

func (b *Booking) Confirm(paymentIntentID string, now time.Time) error {
	if b.Status != StatusAwaitingPayment {
		return ErrInvalidState
	}
	if !b.Breakdown.Total.IsZero() && paymentIntentID == "" {
		return ErrPaymentRequired
	}
	b.PaymentIntentID = paymentIntentID
	b.Status = StatusConfirmed
	b.UpdatedAt = now.UTC()
	b.ConfirmedAt = b.UpdatedAt
	b.Record(BookingConfirmed{BookingID: b.ID, ListingID: b.ListingID, Range: b.Range, Total: b.Breakdown.Total, At: b.UpdatedAt})
	return nil
}

func (b *Booking) Complete(now time.Time) error {
	if b.Status != StatusConfirmed {
		return ErrInvalidState
	}
	b.Status = StatusCompleted
	b.UpdatedAt = now.UTC()
	b.CompletedAt = b.UpdatedAt
	b.Record(BookingCompleted{BookingID: b.ID, At: b.UpdatedAt})
	return nil
}

// Cancel reports whether the booking held calendar days, which the caller
// must release.
func (b *Booking) Cancel(reason string, now time.Time) (bool, error) {
	held := false
	switch b.Status {
	case StatusDraft, StatusAwaitingPayment:
	case StatusConfirmed:
		held = true
	default:
		return false, ErrInvalidState
	}
	b.Status = StatusCanceled
	b.UpdatedAt = now.UTC()
	b.Record(BookingCanceled{BookingID: b.ID, Reason: reason, At: b.UpdatedAt})
	return held, nil
}

// DueForCompletion is true once the last rented day is behind today.
func (b *Booking) DueForCompletion(today daterange.Date) bool {
	return b.Status == StatusConfirmed && b.Range.End.Before(today)
}

func (b *Booking) InvolvesUser(userID string) bool {
	return userID != "" && (b.CustomerID == userID || b.SellerID == userID)
}
