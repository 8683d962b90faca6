package events

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"

	"github.com/nagoyameshi/backend/internal/domain/entities"
	"github.com/nagoyameshi/backend/internal/domain/providers"
	redisclient "github.com/nagoyameshi/backend/internal/infrastructure/clients/redis"
)

const subscriberBuffer = 100

// RedisEventBus implements the EventBus interface using Redis Pub/Sub
type RedisEventBus struct {
	client        *redisclient.Client
	subscriptions map[string]*redis.PubSub
	subscribers   map[string]map[chan *entities.DomainEvent]struct{}
	mu            sync.RWMutex
	ctx           context.Context
	cancel        context.CancelFunc
}

// NewRedisEventBus creates a new Redis-based event bus
func NewRedisEventBus(client *redisclient.Client) providers.EventBus {
	ctx, cancel := context.WithCancel(context.Background())
	return &RedisEventBus{
		client:        client,
		subscriptions: make(map[string]*redis.PubSub),
		subscribers:   make(map[string]map[chan *entities.DomainEvent]struct{}),
		ctx:           ctx,
		cancel:        cancel,
	}
}

// Publish publishes an event to all subscribers of topic
func (b *RedisEventBus) Publish(ctx context.Context, topic string, event *entities.DomainEvent) error {
	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	if err := b.client.Client().Publish(ctx, topic, data).Err(); err != nil {
		return fmt.Errorf("failed to publish event: %w", err)
	}

	log.Debug().Str("topic", topic).Str("event_id", event.ID).Str("type", string(event.Type)).Msg("published event")
	return nil
}

// Subscribe subscribes to events on a topic. The returned channel is closed
// when ctx is cancelled, the topic is unsubscribed or the bus is closed.
func (b *RedisEventBus) Subscribe(ctx context.Context, topic string) (<-chan *entities.DomainEvent, error) {
	b.mu.Lock()

	if _, exists := b.subscriptions[topic]; !exists {
		pubsub := b.client.Client().Subscribe(b.ctx, topic)
		// Wait for the confirmation so events published right after Subscribe are not lost.
		if _, err := pubsub.Receive(ctx); err != nil {
			b.mu.Unlock()
			_ = pubsub.Close()
			return nil, fmt.Errorf("failed to subscribe to %s: %w", topic, err)
		}
		b.subscriptions[topic] = pubsub
		go b.receiveMessages(topic, pubsub)
	}

	if b.subscribers[topic] == nil {
		b.subscribers[topic] = make(map[chan *entities.DomainEvent]struct{})
	}

	eventChan := make(chan *entities.DomainEvent, subscriberBuffer)
	b.subscribers[topic][eventChan] = struct{}{}
	subscriberCount := len(b.subscribers[topic])
	b.mu.Unlock()

	log.Info().Str("topic", topic).Int("subscribers", subscriberCount).Msg("subscribed to topic")

	go func() {
		select {
		case <-ctx.Done():
		case <-b.ctx.Done():
		}
		b.removeSubscriber(topic, eventChan)
	}()

	return eventChan, nil
}

// receiveMessages fans messages from one Redis subscription out to local subscribers
func (b *RedisEventBus) receiveMessages(topic string, pubsub *redis.PubSub) {
	defer b.cleanupTopic(topic, pubsub)

	ch := pubsub.Channel()
	for {
		select {
		case <-b.ctx.Done():
			return
		case msg, ok := <-ch:
			if !ok {
				return
			}

			var event entities.DomainEvent
			if err := json.Unmarshal([]byte(msg.Payload), &event); err != nil {
				log.Warn().Err(err).Str("topic", topic).Msg("dropping malformed event")
				continue
			}

			b.mu.RLock()
			for subscriber := range b.subscribers[topic] {
				select {
				case subscriber <- &event:
				default:
					log.Warn().Str("topic", topic).Str("event_id", event.ID).Msg("subscriber channel full, skipping event")
				}
			}
			b.mu.RUnlock()
		}
	}
}

func (b *RedisEventBus) removeSubscriber(topic string, eventChan chan *entities.DomainEvent) {
	b.mu.Lock()
	defer b.mu.Unlock()

	subscribers, exists := b.subscribers[topic]
	if !exists {
		return
	}
	if _, ok := subscribers[eventChan]; !ok {
		return
	}

	delete(subscribers, eventChan)
	close(eventChan)

	if len(subscribers) == 0 {
		delete(b.subscribers, topic)
		if pubsub, ok := b.subscriptions[topic]; ok {
			_ = pubsub.Close()
			delete(b.subscriptions, topic)
			log.Info().Str("topic", topic).Msg("closed subscription")
		}
	}
}

// cleanupTopic closes the subscribers of topic if pubsub is still the live
// subscription. A nil pubsub matches whatever is registered.
func (b *RedisEventBus) cleanupTopic(topic string, pubsub *redis.PubSub) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	current, ok := b.subscriptions[topic]
	if pubsub != nil && (!ok || current != pubsub) {
		return nil
	}

	for subscriber := range b.subscribers[topic] {
		close(subscriber)
	}
	delete(b.subscribers, topic)

	if ok {
		delete(b.subscriptions, topic)
		if err := current.Close(); err != nil {
			return fmt.Errorf("failed to close subscription %s: %w", topic, err)
		}
	}
	return nil
}

// Unsubscribe drops every subscriber of a topic
func (b *RedisEventBus) Unsubscribe(ctx context.Context, topic string) error {
	if err := b.cleanupTopic(topic, nil); err != nil {
		return err
	}
	log.Info().Str("topic", topic).Msg("unsubscribed from topic")
	return nil
}

// Close closes the event bus and all subscriptions
func (b *RedisEventBus) Close() error {
	b.cancel()

	b.mu.RLock()
	topics := make([]string, 0, len(b.subscriptions))
	for topic := range b.subscriptions {
		topics = append(topics, topic)
	}
	b.mu.RUnlock()

	var errs []error
	for _, topic := range topics {
		if err := b.cleanupTopic(topic, nil); err != nil {
			errs = append(errs, err)
		}
	}
	if err := errors.Join(errs...); err != nil {
		return fmt.Errorf("errors closing event bus: %w", err)
	}

	log.Info().Msg("event bus closed")
	return nil
}
