package outbox

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"

	appoutbox "rentbook/internal/app/outbox"
)

var ErrRelayNotConfigured = errors.New("outbox: relay missing producer")

// Producer is the broker client, satisfied by kafka.Producer.
type Producer interface {
	Publish(ctx context.Context, topic string, key string, payload []byte, headers map[string]string) error
}

// Relay wraps event records in a CloudEvents envelope and publishes them to
// "<prefix><aggregate>.events.v1", keyed by aggregate id.
type Relay struct {
	Producer    Producer
	TopicPrefix string
	Source      string
}

func (r Relay) Publish(ctx context.Context, record appoutbox.EventRecord) error {
	if r.Producer == nil {
		return ErrRelayNotConfigured
	}
	payload, headers, err := r.envelope(record.Name, record.Payload, record.OccurredAt, record.Headers)
	if err != nil {
		return err
	}
	return r.Producer.Publish(ctx, r.TopicFor(record.Name), record.Aggregate, payload, headers)
}

func (r Relay) envelope(name string, data []byte, occurredAt time.Time, recordHeaders map[string]string) ([]byte, map[string]string, error) {
	body := map[string]any{}
	if err := json.Unmarshal(data, &body); err != nil {
		return nil, nil, err
	}
	evt := map[string]any{
		"specversion":     "1.0",
		"id":              uuid.NewString(),
		"type":            name + ".v1",
		"source":          r.source(),
		"time":            occurredAt,
		"datacontenttype": "application/json",
		"data":            body,
	}
	if trace, ok := recordHeaders["traceparent"]; ok {
		evt["traceparent"] = trace
	}
	payload, err := json.Marshal(evt)
	if err != nil {
		return nil, nil, err
	}
	headers := map[string]string{
		"content-type": "application/cloudevents+json",
	}
	for k, v := range recordHeaders {
		headers[k] = v
	}
	return payload, headers, nil
}

// TopicFor maps "booking.confirmed" to "<prefix>booking.events.v1".
func (r Relay) TopicFor(name string) string {
	base := name
	if idx := strings.IndexRune(name, '.'); idx > 0 {
		base = name[:idx]
	}
	return r.TopicPrefix + base + ".events.v1"
}

func (r Relay) source() string {
	if r.Source != "" {
		return r.Source
	}
	return "app://rentbook"
}
