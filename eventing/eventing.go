// Package eventing publishes extraction lifecycle notifications ("run
// completed", "run replayed") onto a Kafka topic for downstream consumers
// (e.g. a feature-store materialization job), using segmentio/kafka-go.
package eventing

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/segmentio/kafka-go"
)

// Notification is the payload published for each lifecycle event.
type Notification struct {
	RunID     uuid.UUID `json:"runId"`
	Event     string    `json:"event"`
	Dimension int       `json:"dimension"`
	Timestamp time.Time `json:"timestamp"`
}

// Publisher writes Notification messages to a Kafka topic.
type Publisher struct {
	writer *kafka.Writer
}

// NewPublisher constructs a Publisher targeting topic on the given
// brokers, using the default round-robin balancer.
func NewPublisher(brokers []string, topic string) *Publisher {
	return &Publisher{
		writer: &kafka.Writer{
			Addr:     kafka.TCP(brokers...),
			Topic:    topic,
			Balancer: &kafka.RoundRobin{},
		},
	}
}

// Publish sends n as a single message keyed by its run ID.
func (p *Publisher) Publish(ctx context.Context, n Notification) error {
	body, err := json.Marshal(n)
	if err != nil {
		return fmt.Errorf("eventing: marshal notification: %w", err)
	}
	msg := kafka.Message{
		Key:   []byte(n.RunID.String()),
		Value: body,
		Time:  n.Timestamp,
	}
	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("eventing: publish: %w", err)
	}
	return nil
}

// Close flushes and closes the underlying Kafka writer.
func (p *Publisher) Close() error {
	return p.writer.Close()
}
