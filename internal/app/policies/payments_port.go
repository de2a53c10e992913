package policies

import (
	"context"

	"rentbook/internal/domain/shared/money"
)

// PaymentsPort creates the payment intent that confirms a booking.
type PaymentsPort interface {
	CreateIntent(ctx context.Context, bookingID string, amount money.Money) (string, error)
	Refund(ctx context.Context, intentID string) error
}
