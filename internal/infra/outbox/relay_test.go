package outbox

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appoutbox "rentbook/internal/app/outbox"
)

type capturedMessage struct {
	topic   string
	key     string
	payload []byte
	headers map[string]string
}

type fakeProducer struct {
	sent []capturedMessage
}

func (p *fakeProducer) Publish(ctx context.Context, topic, key string, payload []byte, headers map[string]string) error {
	p.sent = append(p.sent, capturedMessage{topic: topic, key: key, payload: payload, headers: headers})
	return nil
}

func TestRelayPublishesCloudEvent(t *testing.T) {
	producer := &fakeProducer{}
	relay := Relay{Producer: producer, TopicPrefix: "dev."}
	at := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

	err := relay.Publish(context.Background(), appoutbox.EventRecord{
		ID:         "evt-1",
		Name:       "booking.confirmed",
		Payload:    []byte(`{"booking_id":"bk-1"}`),
		OccurredAt: at,
		Aggregate:  "bk-1",
		Headers:    map[string]string{"event-name": "booking.confirmed", "traceparent": "00-abc"},
	})
	require.NoError(t, err)
	require.Len(t, producer.sent, 1)

	msg := producer.sent[0]
	assert.Equal(t, "dev.booking.events.v1", msg.topic)
	assert.Equal(t, "bk-1", msg.key)
	assert.Equal(t, "application/cloudevents+json", msg.headers["content-type"])
	assert.Equal(t, "booking.confirmed", msg.headers["event-name"])

	var evt map[string]any
	require.NoError(t, json.Unmarshal(msg.payload, &evt))
	assert.Equal(t, "booking.confirmed.v1", evt["type"])
	assert.Equal(t, "app://rentbook", evt["source"])
	assert.Equal(t, "00-abc", evt["traceparent"])
	assert.Equal(t, map[string]any{"booking_id": "bk-1"}, evt["data"])
}

func TestRelayRejectsBadPayloadAndMissingProducer(t *testing.T) {
	err := Relay{}.Publish(context.Background(), appoutbox.EventRecord{Name: "x.y"})
	assert.ErrorIs(t, err, ErrRelayNotConfigured)

	err = Relay{Producer: &fakeProducer{}}.Publish(context.Background(), appoutbox.EventRecord{Name: "x.y", Payload: []byte("nope")})
	assert.Error(t, err)
}

func TestTopicFor(t *testing.T) {
	r := Relay{}
	assert.Equal(t, "listing.events.v1", r.TopicFor("listing.photo_added"))
	assert.Equal(t, "calendar.events.v1", r.TopicFor("calendar"))
}

func TestNextBackoff(t *testing.T) {
	schedule := []time.Duration{time.Second, 5 * time.Second, 30 * time.Second}
	assert.Equal(t, time.Second, NextBackoff(schedule, 0))
	assert.Equal(t, 30*time.Second, NextBackoff(schedule, 2))
	assert.Equal(t, 30*time.Second, NextBackoff(schedule, 9))
	assert.Equal(t, 5*time.Second, NextBackoff(nil, 3))
}
