package mq

import (
	"context"
	"fmt"
	"strings"

	"github.com/blogdb/server/config"
)

// Message is a broker-agnostic payload delivered to subscribers.
type Message struct {
	ID         string
	Data       []byte
	Attributes map[string]string
}

// Handler processes a message. Returning an error nacks it for redelivery.
type Handler func(ctx context.Context, msg Message) error

// Backend is implemented by each broker client.
type Backend interface {
	Publish(ctx context.Context, channel string, data []byte, attrs map[string]string) (string, error)
	Subscribe(ctx context.Context, channel string, handler Handler) error
	Close() error
}

// MQ binds a backend to a single channel.
type MQ struct {
	backend Backend
	channel string
}

// New constructs an MQ wrapper publishing to and consuming from channel.
func New(backend Backend, channel string) *MQ {
	return &MQ{backend: backend, channel: channel}
}

// Open connects the backend selected by cfg.Backend.
// It returns nil, nil when messaging is disabled.
func Open(ctx context.Context, cfg config.MQConfig) (*MQ, error) {
	var (
		backend Backend
		err     error
	)
	switch strings.ToLower(strings.TrimSpace(cfg.Backend)) {
	case "", "none":
		return nil, nil
	case "rabbitmq":
		backend, err = NewRabbitMQClient(cfg.RabbitMQ)
	case "pubsub":
		backend, err = NewPubSubClient(ctx, cfg.PubSub)
	default:
		return nil, fmt.Errorf("unknown mq backend %q", cfg.Backend)
	}
	if err != nil {
		return nil, fmt.Errorf("connect %s: %w", cfg.Backend, err)
	}
	return New(backend, cfg.EventsChannel), nil
}

// Channel returns the bound channel name.
func (m *MQ) Channel() string {
	return m.channel
}

// Publish sends a message to the bound channel.
func (m *MQ) Publish(ctx context.Context, data []byte, attrs map[string]string) (string, error) {
	return m.backend.Publish(ctx, m.channel, data, attrs)
}

// Subscribe consumes messages from the bound channel until ctx is done.
func (m *MQ) Subscribe(ctx context.Context, handler Handler) error {
	return m.backend.Subscribe(ctx, m.channel, handler)
}

// Close closes the underlying backend.
func (m *MQ) Close() error {
	return m.backend.Close()
}
