package memory

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rentbook/internal/app/handlers/selection"
	domainbooking "rentbook/internal/domain/booking"
	"rentbook/internal/domain/shared/daterange"
)

func newSession(id string, expires time.Time) *selection.Session {
	return &selection.Session{
		ID:        id,
		ListingID: "drill",
		UserID:    "u1",
		Selector:  domainbooking.NewSelector(nil, daterange.Range{}),
		ExpiresAt: expires,
	}
}

func TestSessionStoreUpdateAndDelete(t *testing.T) {
	ctx := context.Background()
	store := NewSessionStore()
	require.NoError(t, store.Create(ctx, newSession("s1", now.Add(time.Hour))))

	err := store.Update(ctx, "s1", func(s *selection.Session) error {
		s.Selector.Tap(daterange.MustParse("2024-03-05"))
		return nil
	})
	require.NoError(t, err)

	var state domainbooking.SelectionState
	require.NoError(t, store.Update(ctx, "s1", func(s *selection.Session) error {
		state = s.Selector.State()
		return nil
	}))
	assert.Equal(t, domainbooking.SelectionStartOnly, state)

	boom := errors.New("boom")
	assert.ErrorIs(t, store.Update(ctx, "s1", func(*selection.Session) error { return boom }), boom)

	deleted, err := store.Delete(ctx, "s1")
	require.NoError(t, err)
	assert.True(t, deleted)
	deleted, _ = store.Delete(ctx, "s1")
	assert.False(t, deleted)
	assert.ErrorIs(t, store.Update(ctx, "s1", func(*selection.Session) error { return nil }), selection.ErrSessionNotFound)
}

func TestSessionStoreSweep(t *testing.T) {
	ctx := context.Background()
	store := NewSessionStore()
	require.NoError(t, store.Create(ctx, newSession("old", now.Add(-time.Minute))))
	require.NoError(t, store.Create(ctx, newSession("fresh", now.Add(time.Minute))))

	removed, err := store.Sweep(ctx, now)
	require.NoError(t, err)
	assert.Equal(t, 1, removed)
	assert.Equal(t, 1, store.Len())
}

func TestSessionStoreSerialisesUpdates(t *testing.T) {
	ctx := context.Background()
	store := NewSessionStore()
	require.NoError(t, store.Create(ctx, newSession("s1", now.Add(time.Hour))))

	counter := 0
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = store.Update(ctx, "s1", func(*selection.Session) error {
				counter++
				return nil
			})
		}()
	}
	wg.Wait()
	assert.Equal(t, 50, counter)
}
