package consumer

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/confluentinc/confluent-kafka-go/v2/kafka"

	"github.com/weiawesome/wes-io-blog/internal/metrics"
	pkglog "github.com/weiawesome/wes-io-blog/pkg/log"
)

const pollTimeout = 100 * time.Millisecond

// ConfluentConsumer reads follows-table CDC events with confluent-kafka-go.
// Offsets are stored only after an event has been dispatched, so a crash
// replays at most the in-flight record.
type ConfluentConsumer struct {
	consumer *kafka.Consumer
	topic    string
	handler  CDCEventHandler
	started  atomic.Bool
	doneCh   chan struct{}
}

func NewConfluentConsumer(brokers, topic, groupID string, handler CDCEventHandler) (*ConfluentConsumer, error) {
	c, err := kafka.NewConsumer(&kafka.ConfigMap{
		"bootstrap.servers":        brokers,
		"group.id":                 groupID,
		"auto.offset.reset":        "latest",
		"enable.auto.commit":       true,
		"enable.auto.offset.store": false,
	})
	if err != nil {
		return nil, fmt.Errorf("create kafka consumer: %w", err)
	}

	return &ConfluentConsumer{
		consumer: c,
		topic:    topic,
		handler:  handler,
		doneCh:   make(chan struct{}),
	}, nil
}

// Start subscribes and consumes in a background goroutine until ctx is cancelled.
func (cc *ConfluentConsumer) Start(ctx context.Context) error {
	if !cc.started.CompareAndSwap(false, true) {
		return errors.New("kafka consumer already started")
	}
	if err := cc.consumer.Subscribe(cc.topic, nil); err != nil {
		cc.started.Store(false)
		return fmt.Errorf("subscribe to %s: %w", cc.topic, err)
	}

	l := pkglog.L()
	l.Info().Str(pkglog.FieldTopic, cc.topic).Msg("kafka CDC consumer started")

	go cc.consumeLoop(ctx)
	return nil
}

func (cc *ConfluentConsumer) consumeLoop(ctx context.Context) {
	defer close(cc.doneCh)
	l := pkglog.L().With().Str(pkglog.FieldTopic, cc.topic).Logger()

	for ctx.Err() == nil {
		msg, err := cc.consumer.ReadMessage(pollTimeout)
		if err != nil {
			var kerr kafka.Error
			if errors.As(err, &kerr) && kerr.Code() == kafka.ErrTimedOut {
				continue
			}
			l.Error().Err(err).Msg("kafka CDC consumer error")
			continue
		}

		cc.processMessage(context.WithoutCancel(ctx), msg.Value)
		if _, err := cc.consumer.StoreMessage(msg); err != nil {
			l.Warn().Err(err).Msg("failed to store CDC offset")
		}
	}
	l.Info().Msg("kafka CDC consumer shutting down")
}

// processMessage decodes and dispatches one record value and reports the
// outcome. Records that fail are dropped; the reconciler repairs the counts.
func (cc *ConfluentConsumer) processMessage(ctx context.Context, value []byte) string {
	l := pkglog.L()

	event, err := DecodeDebezium(value)
	if errors.Is(err, ErrTombstone) {
		metrics.CDCEvents.WithLabelValues("", metrics.OutcomeSkipped).Inc()
		return metrics.OutcomeSkipped
	}
	if err != nil {
		l.Error().Err(err).Msg("failed to unmarshal debezium CDC event")
		metrics.CDCEvents.WithLabelValues("", metrics.OutcomeError).Inc()
		return metrics.OutcomeError
	}

	op := event.Payload.Op
	l.Debug().Str(pkglog.FieldCDCOp, op).Int64("ts_ms", event.Payload.TsMs).Msg("received CDC event")

	outcome := metrics.OutcomeApplied
	if err := cc.handler.HandleCDCEvent(ctx, event); err != nil {
		l.Error().Err(err).Str(pkglog.FieldCDCOp, op).Msg("failed to handle CDC event")
		outcome = metrics.OutcomeError
	}
	metrics.CDCEvents.WithLabelValues(op, outcome).Inc()
	return outcome
}

// Close waits for the consume loop to exit, then closes the consumer.
// Cancel the Start context first.
func (cc *ConfluentConsumer) Close() error {
	if cc.started.Load() {
		<-cc.doneCh
	}
	if err := cc.consumer.Close(); err != nil {
		return fmt.Errorf("close kafka consumer: %w", err)
	}
	return nil
}

var _ CDCEventConsumer = (*ConfluentConsumer)(nil)
