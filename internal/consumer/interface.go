package consumer

import (
	"context"
	"encoding/json"
	"errors"
)

// Debezium operation codes.
const (
	OpCreate   = "c"
	OpUpdate   = "u"
	OpDelete   = "d"
	OpSnapshot = "r"
)

// ErrTombstone is returned for the empty-value record Debezium emits after a delete.
var ErrTombstone = errors.New("debezium tombstone")

// DebeziumFollowRecord is a row of the follows table in a Debezium CDC event.
type DebeziumFollowRecord struct {
	ID        int64   `json:"id"`
	UserID    string  `json:"user_id"`
	AuthorID  string  `json:"author_id"`
	CreatedAt *string `json:"created_at"`
}

// DebeziumPayload is the payload field of a Debezium CDC message.
type DebeziumPayload struct {
	Before *DebeziumFollowRecord `json:"before"`
	After  *DebeziumFollowRecord `json:"after"`
	Op     string                `json:"op"`
	TsMs   int64                 `json:"ts_ms"`
}

// DebeziumMessage is the top-level Debezium CDC message envelope.
type DebeziumMessage struct {
	Payload DebeziumPayload `json:"payload"`
}

// DecodeDebezium parses a raw record value.
func DecodeDebezium(value []byte) (*DebeziumMessage, error) {
	if len(value) == 0 {
		return nil, ErrTombstone
	}
	var event DebeziumMessage
	if err := json.Unmarshal(value, &event); err != nil {
		return nil, err
	}
	return &event, nil
}

// CDCEventHandler processes a decoded Debezium CDC message.
type CDCEventHandler interface {
	HandleCDCEvent(ctx context.Context, event *DebeziumMessage) error
}

// HandlerFunc adapts a function to CDCEventHandler.
type HandlerFunc func(ctx context.Context, event *DebeziumMessage) error

// HandleCDCEvent calls f(ctx, event).
func (f HandlerFunc) HandleCDCEvent(ctx context.Context, event *DebeziumMessage) error {
	return f(ctx, event)
}

// CDCEventConsumer manages the Kafka consumer lifecycle.
type CDCEventConsumer interface {
	Start(ctx context.Context) error
	Close() error
}
