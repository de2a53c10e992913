package payments

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"rentbook/internal/app/policies"
	"rentbook/internal/domain/shared/money"
)

var (
	ErrIntentNotFound  = errors.New("payments: intent not found")
	ErrAlreadyRefunded = errors.New("payments: intent already refunded")
	ErrInvalidAmount   = errors.New("payments: amount must be positive")
)

type Intent struct {
	ID        string
	BookingID string
	Amount    money.Money
	CreatedAt time.Time
	Refunded  bool
}

// Mock stands in for a card processor. Each call waits Delay, or until ctx is
// done, to mimic a network round trip.
type Mock struct {
	Delay  time.Duration
	Logger *slog.Logger

	mu      sync.Mutex
	intents map[string]*Intent
}

func NewMock(delay time.Duration, logger *slog.Logger) *Mock {
	if logger == nil {
		logger = slog.Default()
	}
	return &Mock{Delay: delay, Logger: logger, intents: make(map[string]*Intent)}
}

func (m *Mock) CreateIntent(ctx context.Context, bookingID string, amount money.Money) (string, error) {
	if !amount.Amount.IsPositive() {
		return "", ErrInvalidAmount
	}
	if err := m.wait(ctx); err != nil {
		return "", err
	}
	intent := &Intent{
		ID:        "pi_" + uuid.NewString(),
		BookingID: bookingID,
		Amount:    amount,
		CreatedAt: time.Now().UTC(),
	}
	m.mu.Lock()
	m.intents[intent.ID] = intent
	m.mu.Unlock()
	m.Logger.InfoContext(ctx, "payment intent created",
		slog.String("intent", intent.ID),
		slog.String("booking_id", bookingID),
		slog.String("amount", amount.String()),
	)
	return intent.ID, nil
}

func (m *Mock) Refund(ctx context.Context, intentID string) error {
	if err := m.wait(ctx); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	intent, ok := m.intents[intentID]
	if !ok {
		return fmt.Errorf("%w: %s", ErrIntentNotFound, intentID)
	}
	if intent.Refunded {
		return ErrAlreadyRefunded
	}
	intent.Refunded = true
	m.Logger.InfoContext(ctx, "payment refunded", slog.String("intent", intentID))
	return nil
}

// Intent returns a copy of a recorded intent.
func (m *Mock) Intent(id string) (Intent, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	intent, ok := m.intents[id]
	if !ok {
		return Intent{}, false
	}
	return *intent, true
}

func (m *Mock) wait(ctx context.Context) error {
	if m.Delay <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(m.Delay)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

var _ policies.PaymentsPort = (*Mock)(nil)
