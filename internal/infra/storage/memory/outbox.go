package memory

import (
	"context"
	"log/slog"
	"sync"

	appoutbox "rentbook/internal/app/outbox"
)

// Publisher relays one record to the broker.
type Publisher interface {
	Publish(ctx context.Context, record appoutbox.EventRecord) error
}

// Outbox buffers records until Flush. Without a publisher, flushed records
// are only logged.
type Outbox struct {
	mu        sync.Mutex
	records   []appoutbox.EventRecord
	publisher Publisher
	logger    *slog.Logger
}

func NewOutbox(publisher Publisher, logger *slog.Logger) *Outbox {
	if logger == nil {
		logger = slog.Default()
	}
	return &Outbox{publisher: publisher, logger: logger}
}

func (o *Outbox) Add(ctx context.Context, record appoutbox.EventRecord) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.records = append(o.records, record)
	return nil
}

// Flush publishes buffered records in order. A record that fails to publish
// is logged and dropped; the command that produced it has already committed.
func (o *Outbox) Flush(ctx context.Context) error {
	o.mu.Lock()
	pending := o.records
	o.records = nil
	o.mu.Unlock()

	for _, rec := range pending {
		if o.publisher == nil {
			o.logger.DebugContext(ctx, "event recorded", slog.String("event", rec.Name), slog.String("aggregate", rec.Aggregate))
			continue
		}
		if err := o.publisher.Publish(ctx, rec); err != nil {
			o.logger.ErrorContext(ctx, "event publish failed",
				slog.String("event", rec.Name),
				slog.String("id", rec.ID),
				slog.Any("err", err),
			)
		}
	}
	return nil
}

// Discard drops buffered records of a failed command.
func (o *Outbox) Discard(ctx context.Context) {
	o.mu.Lock()
	dropped := len(o.records)
	o.records = nil
	o.mu.Unlock()
	if dropped > 0 {
		o.logger.DebugContext(ctx, "outbox records discarded", slog.Int("count", dropped))
	}
}

// Pending returns a copy of the buffered records.
func (o *Outbox) Pending() []appoutbox.EventRecord {
	o.mu.Lock()
	defer o.mu.Unlock()
	return append([]appoutbox.EventRecord(nil), o.records...)
}

var _ appoutbox.Outbox = (*Outbox)(nil)
