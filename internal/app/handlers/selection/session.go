package selection

import (
	"context"
	"errors"
	"time"

	domainbooking "rentbook/internal/domain/booking"
)

var (
	ErrSessionNotFound = errors.New("selection: session not found")
	ErrSessionExpired  = errors.New("selection: session expired")
)

// DefaultTTL is how long an untouched picker session survives.
const DefaultTTL = 30 * time.Minute

// Session is one booking attempt's date picker.
type Session struct {
	ID        string
	ListingID string
	UserID    string
	Selector  *domainbooking.Selector
	CreatedAt time.Time
	ExpiresAt time.Time
}

func (s *Session) Expired(now time.Time) bool {
	return !s.ExpiresAt.IsZero() && !now.Before(s.ExpiresAt)
}

func (s *Session) Touch(now time.Time, ttl time.Duration) {
	s.ExpiresAt = now.Add(ttl)
}

// Store keeps sessions in process memory. Update and View run fn while
// holding the session exclusively, so taps on one session never interleave.
type Store interface {
	Create(ctx context.Context, session *Session) error
	Update(ctx context.Context, id string, fn func(*Session) error) error
	Delete(ctx context.Context, id string) (bool, error)
	// Sweep drops sessions expired at now and reports how many.
	Sweep(ctx context.Context, now time.Time) (int, error)
}
