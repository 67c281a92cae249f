// Package events fans match changes out over a watermill pub/sub topic so that
// streaming clients (SSE, future brokers) can follow a session without polling.
package events

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/message/router/middleware"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/google/uuid"

	"github.com/preston-bernstein/scorekeeper-service/internal/logging"
	"github.com/preston-bernstein/scorekeeper-service/internal/match"
	"github.com/preston-bernstein/scorekeeper-service/internal/metrics"
)

// TopicMatchChanged carries one Event per session operation.
const TopicMatchChanged = "match.changed"

const metadataOp = "op"

//go:generate mockgen -destination=mocks/mock_publisher.go -package=mocks . Publisher

// Publisher is the publishing half of a watermill pub/sub.
type Publisher interface {
	Publish(topic string, messages ...*message.Message) error
	Close() error
}

// Event is the wire form of a session change.
type Event struct {
	SessionID string       `json:"sessionId"`
	Revision  uint64       `json:"revision"`
	Change    match.Change `json:"change"`
	State     match.State  `json:"state"`
}

// Bus publishes session changes and hands decoded events to subscribers.
type Bus struct {
	publisher  Publisher
	subscriber message.Subscriber
	logger     *slog.Logger
	metrics    *metrics.Recorder
}

// NewBus wires an existing publisher/subscriber pair.
func NewBus(pub Publisher, sub message.Subscriber, logger *slog.Logger, recorder *metrics.Recorder) *Bus {
	return &Bus{publisher: pub, subscriber: sub, logger: logger, metrics: recorder}
}

// NewInProcessBus builds a Bus on watermill's in-memory gochannel pub/sub.
// buffer is the per-subscriber output buffer.
func NewInProcessBus(buffer int, logger *slog.Logger, recorder *metrics.Recorder) *Bus {
	var wmLogger watermill.LoggerAdapter = watermill.NopLogger{}
	if logger != nil {
		wmLogger = watermill.NewSlogLogger(logger)
	}
	pubSub := gochannel.NewGoChannel(gochannel.Config{OutputChannelBuffer: int64(buffer)}, wmLogger)
	return NewBus(pubSub, pubSub, logger, recorder)
}

// Attach publishes every operation on s until the returned func is called.
func (b *Bus) Attach(s *match.Session) (detach func()) {
	return s.Subscribe(b.Publish)
}

// Publish sends one change. Failures are logged and counted; they never reach the session.
func (b *Bus) Publish(state match.State, change match.Change) {
	payload, err := json.Marshal(Event{
		SessionID: state.SessionID,
		Revision:  state.Revision,
		Change:    change,
		State:     state,
	})
	if err != nil {
		b.metrics.RecordEventPublish(TopicMatchChanged, err)
		logging.Error(b.logger, "encode match event failed", err)
		return
	}

	msg := message.NewMessage(uuid.NewString(), payload)
	middleware.SetCorrelationID(state.SessionID, msg)
	msg.Metadata.Set(metadataOp, string(change.Op))

	err = b.publisher.Publish(TopicMatchChanged, msg)
	b.metrics.RecordEventPublish(TopicMatchChanged, err)
	if err != nil {
		logging.Error(b.logger, "publish match event failed", err,
			slog.String(logging.FieldTopic, TopicMatchChanged),
			slog.Uint64(logging.FieldRevision, state.Revision),
		)
	}
}

// Subscribe streams decoded events until ctx is cancelled or the bus is closed.
func (b *Bus) Subscribe(ctx context.Context) (<-chan Event, error) {
	if b.subscriber == nil {
		return nil, fmt.Errorf("events: no subscriber configured")
	}
	msgs, err := b.subscriber.Subscribe(ctx, TopicMatchChanged)
	if err != nil {
		return nil, fmt.Errorf("subscribe %s: %w", TopicMatchChanged, err)
	}

	out := make(chan Event)
	go func() {
		defer close(out)
		for msg := range msgs {
			var ev Event
			if err := json.Unmarshal(msg.Payload, &ev); err != nil {
				logging.Warn(b.logger, "dropping undecodable match event",
					slog.String("message_uuid", msg.UUID), "error", err)
				msg.Ack()
				continue
			}
			select {
			case out <- ev:
				msg.Ack()
			case <-ctx.Done():
				return
			}
		}
	}()
	return out, nil
}

// Close shuts the underlying pub/sub down. Subsequent publishes fail and are counted.
func (b *Bus) Close() error {
	err := b.publisher.Close()
	if b.subscriber != nil && any(b.subscriber) != any(b.publisher) {
		if subErr := b.subscriber.Close(); err == nil {
			err = subErr
		}
	}
	return err
}
