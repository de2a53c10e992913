package memory

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appoutbox "rentbook/internal/app/outbox"
)

type recordingPublisher struct {
	names []string
	fail  bool
}

func (p *recordingPublisher) Publish(ctx context.Context, rec appoutbox.EventRecord) error {
	if p.fail {
		return errors.New("broker down")
	}
	p.names = append(p.names, rec.Name)
	return nil
}

func TestOutboxFlushPublishesInOrder(t *testing.T) {
	ctx := context.Background()
	pub := &recordingPublisher{}
	box := NewOutbox(pub, nil)
	require.NoError(t, box.Add(ctx, appoutbox.EventRecord{Name: "booking.requested"}))
	require.NoError(t, box.Add(ctx, appoutbox.EventRecord{Name: "booking.confirmed"}))
	assert.Len(t, box.Pending(), 2)

	require.NoError(t, box.Flush(ctx))
	assert.Equal(t, []string{"booking.requested", "booking.confirmed"}, pub.names)
	assert.Empty(t, box.Pending())
}

func TestOutboxFlushDropsOnPublishFailure(t *testing.T) {
	ctx := context.Background()
	box := NewOutbox(&recordingPublisher{fail: true}, nil)
	require.NoError(t, box.Add(ctx, appoutbox.EventRecord{Name: "listing.created"}))
	assert.NoError(t, box.Flush(ctx))
	assert.Empty(t, box.Pending())

	noPublisher := NewOutbox(nil, nil)
	require.NoError(t, noPublisher.Add(ctx, appoutbox.EventRecord{Name: "listing.created"}))
	assert.NoError(t, noPublisher.Flush(ctx))
}

func TestOutboxDiscardDropsFailedCommandRecords(t *testing.T) {
	ctx := context.Background()
	pub := &recordingPublisher{}
	box := NewOutbox(pub, nil)
	require.NoError(t, box.Add(ctx, appoutbox.EventRecord{Name: "booking.requested"}))
	box.Discard(ctx)
	require.NoError(t, box.Flush(ctx))
	assert.Empty(t, pub.names)
}
