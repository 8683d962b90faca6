package events

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/segmentio/kafka-go"

	"github.com/nagoyameshi/backend/internal/domain/entities"
	"github.com/nagoyameshi/backend/internal/domain/providers"
)

// TopicHeader carries the logical topic since every event shares one Kafka topic
const TopicHeader = "nagoyameshi-topic"

// MessageWriter is the subset of *kafka.Writer the publisher needs
type MessageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// KafkaPublisher publishes domain events to a Kafka topic keyed by aggregate id
type KafkaPublisher struct {
	writer MessageWriter
}

// NewKafkaWriter builds a writer for the given brokers and topic
func NewKafkaWriter(brokers []string, topic string) *kafka.Writer {
	return &kafka.Writer{
		Addr:                   kafka.TCP(brokers...),
		Topic:                  topic,
		Balancer:               &kafka.Hash{},
		AllowAutoTopicCreation: true,
	}
}

// NewKafkaPublisher wraps a Kafka writer
func NewKafkaPublisher(writer MessageWriter) providers.EventPublisher {
	return &KafkaPublisher{writer: writer}
}

// Publish writes the event; events of the same aggregate land on the same partition
func (p *KafkaPublisher) Publish(ctx context.Context, topic string, event *entities.DomainEvent) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	err = p.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(event.AggregateID),
		Value: payload,
		Headers: []kafka.Header{
			{Key: TopicHeader, Value: []byte(topic)},
			{Key: "event-type", Value: []byte(event.Type)},
		},
	})
	if err != nil {
		return fmt.Errorf("failed to write event to kafka: %w", err)
	}
	return nil
}

// Close flushes pending messages
func (p *KafkaPublisher) Close() error {
	return p.writer.Close()
}

// NoopPublisher discards events
type NoopPublisher struct{}

// Publish does nothing
func (NoopPublisher) Publish(context.Context, string, *entities.DomainEvent) error { return nil }

// Close does nothing
func (NoopPublisher) Close() error { return nil }
