package events

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

type sample struct{ id string }

func (s sample) EventName() string     { return "sample.happened" }
func (s sample) AggregateID() string   { return s.id }
func (s sample) OccurredAt() time.Time { return time.Time{} }

func TestRecorderDrain(t *testing.T) {
	var r EventRecorder
	r.Record(nil)
	r.Record(sample{id: "a"})
	r.Record(sample{id: "b"})

	pending := r.PendingEvents()
	assert.Len(t, pending, 2)

	drained := r.Drain()
	assert.Len(t, drained, 2)
	assert.Equal(t, "b", drained[1].AggregateID())
	assert.Empty(t, r.PendingEvents())
}
