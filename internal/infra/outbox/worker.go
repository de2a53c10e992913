package outbox

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"
)

var ErrWorkerNotConfigured = errors.New("outbox: worker missing dependencies")

// Worker drains the Mongo outbox to the broker, retrying failed records on
// Backoff.
type Worker struct {
	Store    *Store
	Relay    Relay
	Interval time.Duration
	ID       string
	Backoff  []time.Duration
	Logger   *slog.Logger
}

func (w *Worker) Run(ctx context.Context) error {
	if w.Store == nil || w.Relay.Producer == nil {
		return ErrWorkerNotConfigured
	}
	id := w.workerID()
	ticker := time.NewTicker(w.interval())
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if err := w.drain(ctx, id); err != nil {
				return err
			}
		}
	}
}

// drain publishes every claimable record.
func (w *Worker) drain(ctx context.Context, id string) error {
	for {
		more, err := w.processOnce(ctx, id)
		if err != nil || !more {
			return err
		}
	}
}

func (w *Worker) processOnce(ctx context.Context, id string) (bool, error) {
	doc, err := w.Store.Claim(ctx, id)
	if err != nil || doc == nil {
		return false, err
	}
	if err := w.Relay.Publish(ctx, doc.Record()); err != nil {
		w.logger().WarnContext(ctx, "outbox publish failed",
			slog.String("event", doc.Name),
			slog.Int("attempts", doc.Attempts+1),
			slog.Any("err", err),
		)
		return true, w.Store.MarkFailed(ctx, doc.ID, w.nextRetry(doc.Attempts), err.Error())
	}
	return true, w.Store.MarkSent(ctx, doc.ID)
}

func (w *Worker) workerID() string {
	if w.ID != "" {
		return w.ID
	}
	return uuid.NewString()
}

func (w *Worker) interval() time.Duration {
	if w.Interval <= 0 {
		return 500 * time.Millisecond
	}
	return w.Interval
}

func (w *Worker) nextRetry(attempts int) time.Time {
	return time.Now().Add(NextBackoff(w.Backoff, attempts))
}

// NextBackoff picks the delay before retry number attempts+1. Past the end
// of the schedule the last step repeats.
func NextBackoff(schedule []time.Duration, attempts int) time.Duration {
	switch {
	case len(schedule) == 0:
		return 5 * time.Second
	case attempts < 0:
		return schedule[0]
	case attempts < len(schedule):
		return schedule[attempts]
	default:
		return schedule[len(schedule)-1]
	}
}

func (w *Worker) logger() *slog.Logger {
	if w.Logger != nil {
		return w.Logger
	}
	return slog.Default()
}
