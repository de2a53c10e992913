package schedule

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rentbook/internal/app/commands"
)

type tickCmd struct{}

func (tickCmd) Key() string { return "test.tick" }

type countingBus struct {
	calls atomic.Int32
	err   error
}

func (b *countingBus) Dispatch(ctx context.Context, cmd commands.Command) (any, error) {
	b.calls.Add(1)
	return nil, b.err
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestRegisterRejectsBadSpec(t *testing.T) {
	s := New(&countingBus{}, quietLogger())
	err := s.Register(Job{Name: "bad", Spec: "every tuesday", Command: tickCmd{}})
	assert.Error(t, err)

	err = s.Register(Job{Name: "nil", Spec: "@hourly"})
	assert.Error(t, err)
}

func TestEmptySpecDisablesJob(t *testing.T) {
	s := New(&countingBus{}, quietLogger())
	require.NoError(t, s.Register(Job{Name: "off", Command: tickCmd{}}))
	assert.ErrorIs(t, s.RunNow(context.Background(), "off"), ErrUnknownJob)
}

func TestRunNowDispatches(t *testing.T) {
	bus := &countingBus{}
	s := New(bus, quietLogger())
	require.NoError(t, s.Register(Job{Name: "tick", Spec: "@daily", Command: tickCmd{}}))

	require.NoError(t, s.RunNow(context.Background(), "tick"))
	assert.EqualValues(t, 1, bus.calls.Load())

	bus.err = errors.New("boom")
	assert.EqualError(t, s.RunNow(context.Background(), "tick"), "boom")
}

func TestStartRunsOnSchedule(t *testing.T) {
	bus := &countingBus{}
	s := New(bus, quietLogger())
	require.NoError(t, s.Register(Job{Name: "tick", Spec: "@every 1s", Command: tickCmd{}}))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	s.Start(ctx)
	defer s.Stop()

	assert.Eventually(t, func() bool { return bus.calls.Load() > 0 }, 3*time.Second, 50*time.Millisecond)
}
