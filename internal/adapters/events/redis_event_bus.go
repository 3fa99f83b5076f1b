package events

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"

	"github.com/heidicalls/voicemail-triage/internal/domain/entities"
	"github.com/heidicalls/voicemail-triage/internal/domain/providers"
	redisclient "github.com/heidicalls/voicemail-triage/internal/infrastructure/clients/redis"
)

// RedisEventBus implements the EventBus interface using Redis pub/sub
type RedisEventBus struct {
	client        *redisclient.Client
	subscriptions map[string]*redis.PubSub
	subscribers   map[string][]chan *entities.TriageEvent
	mu            sync.RWMutex
	closed        bool
}

// NewRedisEventBus creates a new Redis-backed event bus
func NewRedisEventBus(client *redisclient.Client) providers.EventBus {
	return &RedisEventBus{
		client:        client,
		subscriptions: make(map[string]*redis.PubSub),
		subscribers:   make(map[string][]chan *entities.TriageEvent),
	}
}

// Publish sends an event to the given channel
func (b *RedisEventBus) Publish(ctx context.Context, channel string, event *entities.TriageEvent) error {
	b.mu.RLock()
	if b.closed {
		b.mu.RUnlock()
		return fmt.Errorf("event bus is closed")
	}
	b.mu.RUnlock()

	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	if err := b.client.Client().Publish(ctx, channel, payload).Err(); err != nil {
		return fmt.Errorf("failed to publish event: %w", err)
	}

	log.Debug().Str("channel", channel).Str("event_type", event.Type).
		Str("voicemail_id", event.VoicemailID).Msg("event published")
	return nil
}

// Subscribe returns a channel of events published to the given channel
func (b *RedisEventBus) Subscribe(ctx context.Context, channel string) (<-chan *entities.TriageEvent, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return nil, fmt.Errorf("event bus is closed")
	}

	events := make(chan *entities.TriageEvent, 16)
	b.subscribers[channel] = append(b.subscribers[channel], events)

	if _, exists := b.subscriptions[channel]; !exists {
		pubsub := b.client.Client().Subscribe(ctx, channel)
		if _, err := pubsub.Receive(ctx); err != nil {
			pubsub.Close()
			return nil, fmt.Errorf("failed to subscribe to channel %s: %w", channel, err)
		}
		b.subscriptions[channel] = pubsub
		go b.receiveMessages(channel, pubsub)
	}

	return events, nil
}

// Unsubscribe removes all subscribers from a channel
func (b *RedisEventBus) Unsubscribe(ctx context.Context, channel string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.cleanupChannel(channel)
	return nil
}

// Close shuts down the event bus and all subscriptions
func (b *RedisEventBus) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return nil
	}
	b.closed = true

	for channel := range b.subscriptions {
		b.cleanupChannel(channel)
	}
	return nil
}

// receiveMessages pumps Redis messages to the channel's subscribers
func (b *RedisEventBus) receiveMessages(channel string, pubsub *redis.PubSub) {
	for msg := range pubsub.Channel() {
		var event entities.TriageEvent
		if err := json.Unmarshal([]byte(msg.Payload), &event); err != nil {
			log.Warn().Err(err).Str("channel", channel).Msg("failed to unmarshal event, skipping")
			continue
		}

		b.mu.RLock()
		subscribers := b.subscribers[channel]
		b.mu.RUnlock()

		for _, sub := range subscribers {
			select {
			case sub <- &event:
			default:
				log.Warn().Str("channel", channel).Msg("subscriber buffer full, dropping event")
			}
		}
	}
}

// cleanupChannel closes the subscription and subscriber channels.
// Caller must hold the write lock.
func (b *RedisEventBus) cleanupChannel(channel string) {
	if pubsub, ok := b.subscriptions[channel]; ok {
		pubsub.Close()
		delete(b.subscriptions, channel)
	}
	for _, sub := range b.subscribers[channel] {
		close(sub)
	}
	delete(b.subscribers, channel)
}
