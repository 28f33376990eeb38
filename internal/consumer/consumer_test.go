package consumer

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/weiawesome/wes-io-blog/internal/metrics"
)

const createEvent = `{
  "schema": {"type": "struct"},
  "payload": {
    "before": null,
    "after": {"id": 7, "user_id": "u1", "author_id": "a1", "created_at": "2024-05-01T10:00:00Z"},
    "source": {"table": "follows"},
    "op": "c",
    "ts_ms": 1714557600000
  }
}`

const deleteEvent = `{"payload": {"before": {"id": 7, "user_id": "u1", "author_id": "a1"}, "after": null, "op": "d", "ts_ms": 1}}`

type recordingHandler struct {
	events []*DebeziumMessage
	err    error
}

func (h *recordingHandler) HandleCDCEvent(_ context.Context, event *DebeziumMessage) error {
	h.events = append(h.events, event)
	return h.err
}

func TestDecodeDebezium(t *testing.T) {
	event, err := DecodeDebezium([]byte(createEvent))
	require.NoError(t, err)
	assert.Equal(t, OpCreate, event.Payload.Op)
	require.NotNil(t, event.Payload.After)
	assert.Equal(t, "u1", event.Payload.After.UserID)
	assert.Equal(t, "a1", event.Payload.After.AuthorID)
	assert.Nil(t, event.Payload.Before)

	event, err = DecodeDebezium([]byte(deleteEvent))
	require.NoError(t, err)
	assert.Equal(t, OpDelete, event.Payload.Op)
	assert.Equal(t, "a1", event.Payload.Before.AuthorID)

	_, err = DecodeDebezium(nil)
	assert.ErrorIs(t, err, ErrTombstone)

	_, err = DecodeDebezium([]byte("{not json"))
	assert.Error(t, err)
}

func TestProcessMessageDispatches(t *testing.T) {
	h := &recordingHandler{err: errors.New("redis down")}
	cc := &ConfluentConsumer{handler: h}

	assert.Equal(t, metrics.OutcomeError, cc.processMessage(context.Background(), []byte(createEvent)))
	assert.Equal(t, metrics.OutcomeSkipped, cc.processMessage(context.Background(), nil))
	assert.Equal(t, metrics.OutcomeError, cc.processMessage(context.Background(), []byte("garbage")))

	require.Len(t, h.events, 1, "tombstones and malformed records are not dispatched")
	assert.Equal(t, OpCreate, h.events[0].Payload.Op)

	h.err = nil
	assert.Equal(t, metrics.OutcomeApplied, cc.processMessage(context.Background(), []byte(createEvent)))
	assert.Len(t, h.events, 2)
}
