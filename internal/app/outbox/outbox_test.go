package outbox

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rentbook/internal/domain/shared/events"
)

type captured struct {
	records []EventRecord
}

func (c *captured) Add(ctx context.Context, r EventRecord) error {
	c.records = append(c.records, r)
	return nil
}

func (c *captured) Flush(context.Context) error { return nil }

type priced struct {
	ID    string
	Total string
	At    time.Time
}

func (e priced) EventName() string     { return "booking.requested" }
func (e priced) AggregateID() string   { return e.ID }
func (e priced) OccurredAt() time.Time { return e.At }

type aggregate struct {
	events.EventRecorder
}

func TestDrainInto(t *testing.T) {
	at := time.Date(2024, 4, 1, 10, 0, 0, 0, time.FixedZone("X", 3600))
	var agg aggregate
	agg.Record(priced{ID: "bk-1", Total: "92.37", At: at})

	box := &captured{}
	enc := JSONEventEncoder{
		IDGenerator: func() string { return "evt-1" },
		Headers:     map[string]string{"x-request-id": "req-9"},
	}
	require.NoError(t, DrainInto(context.Background(), box, enc, &agg, nil))

	require.Len(t, box.records, 1)
	rec := box.records[0]
	assert.Equal(t, "evt-1", rec.ID)
	assert.Equal(t, "booking.requested", rec.Name)
	assert.Equal(t, "bk-1", rec.Aggregate)
	assert.Equal(t, time.UTC, rec.OccurredAt.Location())
	assert.Equal(t, "req-9", rec.Headers["x-request-id"])
	assert.Equal(t, "booking.requested", rec.Headers["event-name"])

	var payload map[string]any
	require.NoError(t, json.Unmarshal(rec.Payload, &payload))
	assert.Equal(t, "92.37", payload["Total"])
	assert.Empty(t, agg.PendingEvents())
}

func TestRecordWithoutOutboxDropsEvents(t *testing.T) {
	assert.NoError(t, Record(context.Background(), nil, nil, priced{}))

	var agg aggregate
	agg.Record(priced{ID: "bk-2"})
	require.NoError(t, DrainInto(context.Background(), nil, nil, &agg))
	assert.Empty(t, agg.PendingEvents())
}

type failingBox struct{ captured }

func (failingBox) Add(context.Context, EventRecord) error { return errors.New("disk full") }

func TestRecordWrapsAddFailure(t *testing.T) {
	err := Record(context.Background(), &failingBox{}, nil, priced{ID: "bk-3"})
	assert.ErrorContains(t, err, "add booking.requested")
	assert.ErrorContains(t, err, "disk full")
}
