// Package events publishes and consumes post lifecycle events.
package events

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/blogdb/server/internal/mq"
	"github.com/blogdb/server/types"
	"github.com/sirupsen/logrus"
)

const attrEventType = "event_type"

// Publisher emits post events after a mutation has been stored.
type Publisher interface {
	Publish(ctx context.Context, event types.PostEvent) error
}

// Nop discards every event.
type Nop struct{}

func (Nop) Publish(context.Context, types.PostEvent) error { return nil }

// BrokerPublisher encodes events as JSON and sends them through an MQ.
type BrokerPublisher struct {
	queue *mq.MQ
}

func NewBrokerPublisher(queue *mq.MQ) *BrokerPublisher {
	return &BrokerPublisher{queue: queue}
}

func (p *BrokerPublisher) Publish(ctx context.Context, event types.PostEvent) error {
	data, err := json.Marshal(event)
	if err != nil {
		return err
	}
	if _, err := p.queue.Publish(ctx, data, map[string]string{attrEventType: string(event.Type)}); err != nil {
		return fmt.Errorf("publish %s: %w", event.Type, err)
	}
	return nil
}

// Consume decodes each message on queue and passes it to fn until ctx is done.
// Messages that fail to decode are logged, acknowledged and dropped.
func Consume(ctx context.Context, queue *mq.MQ, logger *logrus.Logger, fn func(context.Context, types.PostEvent) error) error {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return queue.Subscribe(ctx, func(ctx context.Context, msg mq.Message) error {
		event, err := Decode(msg.Data)
		if err != nil {
			logger.WithFields(logrus.Fields{
				"channel":    queue.Channel(),
				"message_id": msg.ID,
				"payload":    truncate(msg.Data, maxLoggedPayload),
			}).WithError(err).Warn("dropping undecodable post event")
			return nil
		}
		return fn(ctx, event)
	})
}

const maxLoggedPayload = 512

func truncate(data []byte, limit int) string {
	if len(data) <= limit {
		return string(data)
	}
	return string(data[:limit]) + "..."
}

// Decode parses a JSON encoded post event.
func Decode(data []byte) (types.PostEvent, error) {
	var event types.PostEvent
	if err := json.Unmarshal(data, &event); err != nil {
		return types.PostEvent{}, err
	}
	if event.Type == "" {
		return types.PostEvent{}, fmt.Errorf("event type missing")
	}
	return event, nil
}
