// Package outbox turns domain events into broker records inside the
// command's unit of work.
package outbox

import (
	"context"
	"encoding/json"
	"fmt"
	"maps"
	"time"

	"github.com/google/uuid"

	"rentbook/internal/domain/shared/events"
)

// EventRecord is a domain event serialised for relay to the broker.
type EventRecord struct {
	ID         string
	Name       string
	Payload    []byte
	OccurredAt time.Time
	Aggregate  string
	Headers    map[string]string
}

// Outbox buffers records until the surrounding command finishes.
type Outbox interface {
	Add(ctx context.Context, record EventRecord) error
	Flush(ctx context.Context) error
}

type EventEncoder interface {
	Encode(ev events.DomainEvent) (EventRecord, error)
}

// HeaderEventName carries the event name on every record.
const HeaderEventName = "event-name"

// JSONEventEncoder stores the event as its JSON form. Headers are copied
// onto every record.
type JSONEventEncoder struct {
	IDGenerator func() string
	Headers     map[string]string
}

func (e JSONEventEncoder) Encode(ev events.DomainEvent) (EventRecord, error) {
	name := ev.EventName()
	payload, err := json.Marshal(ev)
	if err != nil {
		return EventRecord{}, fmt.Errorf("outbox: encode %s: %w", name, err)
	}
	newID := uuid.NewString
	if e.IDGenerator != nil {
		newID = e.IDGenerator
	}
	headers := maps.Clone(e.Headers)
	if headers == nil {
		headers = make(map[string]string, 1)
	}
	headers[HeaderEventName] = name
	return EventRecord{
		ID:         newID(),
		Name:       name,
		Payload:    payload,
		OccurredAt: ev.OccurredAt().UTC(),
		Aggregate:  ev.AggregateID(),
		Headers:    headers,
	}, nil
}

// Record encodes evs and adds them to box in order. A nil box drops them.
func Record(ctx context.Context, box Outbox, encoder EventEncoder, evs ...events.DomainEvent) error {
	if box == nil {
		return nil
	}
	if encoder == nil {
		encoder = JSONEventEncoder{}
	}
	for _, ev := range evs {
		rec, err := encoder.Encode(ev)
		if err != nil {
			return err
		}
		if err := box.Add(ctx, rec); err != nil {
			return fmt.Errorf("outbox: add %s: %w", rec.Name, err)
		}
	}
	return nil
}

// Recorder is implemented by aggregates embedding events.EventRecorder.
type Recorder interface {
	Drain() []events.DomainEvent
}

// DrainInto empties every aggregate's pending events into box. Aggregates
// are drained even when box is nil.
func DrainInto(ctx context.Context, box Outbox, encoder EventEncoder, aggregates ...Recorder) error {
	var pending []events.DomainEvent
	for _, agg := range aggregates {
		if agg != nil {
			pending = append(pending, agg.Drain()...)
		}
	}
	return Record(ctx, box, encoder, pending...)
}
