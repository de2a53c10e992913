package middleware

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rentbook/internal/app/actor"
	"rentbook/internal/app/commands"
	"rentbook/internal/app/outbox"
	"rentbook/internal/app/uow"
	domainavailability "rentbook/internal/domain/availability"
	domainbooking "rentbook/internal/domain/booking"
	domainlistings "rentbook/internal/domain/listings"
)

type payCmd struct {
	Booking string
	IdemKey string
}

func (payCmd) Key() string              { return "test.pay" }
func (c payCmd) IdempotencyKey() string { return c.IdemKey }
func (payCmd) ResultPrototype() any     { return &payResult{} }
func (payCmd) Access() Access           { return AccessUser }

type payResult struct {
	Intent string `json:"intent"`
}

type memStore struct {
	mu    sync.Mutex
	items map[string]IdempotencyRecord
}

func (s *memStore) Get(ctx context.Context, key string) (IdempotencyRecord, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.items[key]
	return rec, ok, nil
}

func (s *memStore) Save(ctx context.Context, rec IdempotencyRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items[rec.Key] = rec
	return nil
}

func newPayBus(calls *int32, fail *atomic.Bool) *commands.InMemoryBus {
	bus := commands.NewInMemoryBus()
	commands.RegisterHandler[payCmd, *payResult](bus, "test.pay", commands.HandlerFunc[payCmd, *payResult](
		func(ctx context.Context, cmd payCmd) (*payResult, error) {
			n := atomic.AddInt32(calls, 1)
			if fail != nil && fail.Load() {
				return nil, errors.New("card declined")
			}
			return &payResult{Intent: cmd.Booking + "-" + string(rune('0'+n))}, nil
		}))
	return bus
}

func withUser(id string) context.Context {
	return actor.WithActor(context.Background(), actor.Actor{UserID: id, Role: actor.RoleBuyer})
}

func TestIdempotencyReplaysSuccess(t *testing.T) {
	var calls int32
	store := &memStore{items: map[string]IdempotencyRecord{}}
	bus := ChainCommands(newPayBus(&calls, nil), Idempotency(store, nil))

	first, err := commands.Dispatch[payCmd, *payResult](withUser("u1"), bus, payCmd{Booking: "bk", IdemKey: "k1"})
	require.NoError(t, err)
	second, err := commands.Dispatch[payCmd, *payResult](withUser("u1"), bus, payCmd{Booking: "bk", IdemKey: "k1"})
	require.NoError(t, err)

	assert.Equal(t, first.Intent, second.Intent)
	assert.EqualValues(t, 1, calls)

	_, err = commands.Dispatch[payCmd, *payResult](withUser("u2"), bus, payCmd{Booking: "bk", IdemKey: "k1"})
	require.NoError(t, err)
	assert.EqualValues(t, 2, calls, "keys are scoped per actor")

	_, err = commands.Dispatch[payCmd, *payResult](withUser("u1"), bus, payCmd{Booking: "bk"})
	require.NoError(t, err)
	assert.EqualValues(t, 3, calls, "empty key bypasses the store")
}

func TestIdempotencyDoesNotStoreFailures(t *testing.T) {
	var calls int32
	var fail atomic.Bool
	fail.Store(true)
	store := &memStore{items: map[string]IdempotencyRecord{}}
	bus := ChainCommands(newPayBus(&calls, &fail), Idempotency(store, nil))

	_, err := commands.Dispatch[payCmd, *payResult](withUser("u1"), bus, payCmd{Booking: "bk", IdemKey: "k1"})
	require.Error(t, err)

	fail.Store(false)
	res, err := commands.Dispatch[payCmd, *payResult](withUser("u1"), bus, payCmd{Booking: "bk", IdemKey: "k1"})
	require.NoError(t, err)
	assert.NotEmpty(t, res.Intent)
	assert.EqualValues(t, 2, calls)
}

func TestIdempotencyConcurrentSameKey(t *testing.T) {
	var calls int32
	store := &memStore{items: map[string]IdempotencyRecord{}}
	bus := ChainCommands(newPayBus(&calls, nil), Idempotency(store, nil))

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := commands.Dispatch[payCmd, *payResult](withUser("u1"), bus, payCmd{Booking: "bk", IdemKey: "same"})
			assert.NoError(t, err)
		}()
	}
	wg.Wait()
	assert.EqualValues(t, 1, calls)
}

func TestAuthorization(t *testing.T) {
	var calls int32
	bus := ChainCommands(newPayBus(&calls, nil), Authorization(RoleAuthorizer{}))

	_, err := bus.Dispatch(context.Background(), payCmd{Booking: "bk"})
	assert.ErrorIs(t, err, actor.ErrAnonymous)

	_, err = bus.Dispatch(withUser("u1"), payCmd{Booking: "bk"})
	assert.NoError(t, err)
}

type fakeUnit struct {
	opts                  uow.TxOptions
	committed, rolledBack bool
}

func (u *fakeUnit) Listings() domainlistings.ListingRepository  { return nil }
func (u *fakeUnit) Availability() domainavailability.Repository { return nil }
func (u *fakeUnit) Bookings() domainbooking.Repository          { return nil }
func (u *fakeUnit) Commit(context.Context) error {
	u.committed = true
	return nil
}
func (u *fakeUnit) Rollback(context.Context) error {
	u.rolledBack = true
	return nil
}

type fakeFactory struct{ units []*fakeUnit }

func (f *fakeFactory) Begin(ctx context.Context, opts uow.TxOptions) (uow.UnitOfWork, error) {
	u := &fakeUnit{opts: opts}
	f.units = append(f.units, u)
	return u, nil
}

func TestTransactionCommitsOrRollsBack(t *testing.T) {
	factory := &fakeFactory{}
	var fail atomic.Bool
	var calls int32
	bus := ChainCommands(newPayBus(&calls, &fail), Transaction(factory, nil))

	_, err := bus.Dispatch(withUser("u1"), payCmd{Booking: "bk"})
	require.NoError(t, err)
	fail.Store(true)
	_, err = bus.Dispatch(withUser("u1"), payCmd{Booking: "bk"})
	require.Error(t, err)

	require.Len(t, factory.units, 2)
	assert.True(t, factory.units[0].committed)
	assert.False(t, factory.units[0].rolledBack)
	assert.False(t, factory.units[1].committed)
	assert.True(t, factory.units[1].rolledBack)
}

func TestTransactionReadOnlyCommands(t *testing.T) {
	factory := &fakeFactory{}
	var fail atomic.Bool
	var calls int32
	bus := ChainCommands(newPayBus(&calls, &fail), Transaction(factory, ReadOnlyCommands("test.pay")))

	_, err := bus.Dispatch(withUser("u1"), payCmd{Booking: "bk"})
	require.NoError(t, err)
	require.Len(t, factory.units, 1)
	assert.True(t, factory.units[0].opts.ReadOnly)
	assert.False(t, ReadOnlyCommands("other")(payCmd{}).ReadOnly)
}

func TestChainSkipsNilStages(t *testing.T) {
	var order []string
	stage := func(name string) CommandMiddleware {
		return func(next commands.Bus) commands.Bus {
			return commandFunc(func(ctx context.Context, cmd commands.Command) (any, error) {
				order = append(order, name)
				return next.Dispatch(ctx, cmd)
			})
		}
	}
	var fail atomic.Bool
	var calls int32
	bus := ChainCommands(newPayBus(&calls, &fail), stage("outer"), nil, stage("inner"))

	_, err := bus.Dispatch(withUser("u1"), payCmd{Booking: "bk"})
	require.NoError(t, err)
	assert.Equal(t, []string{"outer", "inner"}, order)
}

type bufferedOutbox struct {
	flushes, discards int
	flushErr          error
}

func (b *bufferedOutbox) Add(context.Context, outbox.EventRecord) error { return nil }
func (b *bufferedOutbox) Flush(context.Context) error {
	b.flushes++
	return b.flushErr
}
func (b *bufferedOutbox) Discard(context.Context) { b.discards++ }

func TestOutboxFlushAfterSuccessDiscardAfterFailure(t *testing.T) {
	box := &bufferedOutbox{}
	var fail atomic.Bool
	var calls int32
	bus := ChainCommands(newPayBus(&calls, &fail), OutboxFlush(box, nil))

	_, err := bus.Dispatch(withUser("u1"), payCmd{Booking: "bk"})
	require.NoError(t, err)
	fail.Store(true)
	_, err = bus.Dispatch(withUser("u1"), payCmd{Booking: "bk"})
	require.Error(t, err)
	assert.Equal(t, 1, box.flushes)
	assert.Equal(t, 1, box.discards)

	fail.Store(false)
	box.flushErr = errors.New("broker down")
	res, err := bus.Dispatch(withUser("u1"), payCmd{Booking: "bk"})
	require.NoError(t, err, "a committed command is not failed by its flush")
	assert.NotNil(t, res)
}
