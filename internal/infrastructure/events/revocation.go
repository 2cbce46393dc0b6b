// Package events carries provider session revocations over Redis pub/sub.
package events

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/peekpark/peekpark/domain"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

// DefaultChannel is the pub/sub channel revocations are published on
const DefaultChannel = "auth:revocations"

// RedisRevocationFeed implements domain.RevocationFeed
type RedisRevocationFeed struct {
	client  *redis.Client
	channel string
	log     zerolog.Logger
}

var _ domain.RevocationFeed = (*RedisRevocationFeed)(nil)

func NewRedisRevocationFeed(client *redis.Client, channel string, logger zerolog.Logger) *RedisRevocationFeed {
	if channel == "" {
		channel = DefaultChannel
	}
	return &RedisRevocationFeed{
		client:  client,
		channel: channel,
		log:     logger.With().Str("component", "revocations").Logger(),
	}
}

// Publish implements domain.RevocationFeed
func (f *RedisRevocationFeed) Publish(ctx context.Context, event domain.RevocationEvent) error {
	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal revocation: %w", err)
	}
	if err := f.client.Publish(ctx, f.channel, data).Err(); err != nil {
		return fmt.Errorf("publish revocation: %w", err)
	}
	return nil
}

// Subscribe implements domain.RevocationFeed. It returns once the subscription is confirmed.
func (f *RedisRevocationFeed) Subscribe(ctx context.Context, fn func(domain.RevocationEvent)) (func(), error) {
	pubsub := f.client.Subscribe(ctx, f.channel)
	if _, err := pubsub.Receive(ctx); err != nil {
		pubsub.Close()
		return nil, fmt.Errorf("subscribe to %s: %w", f.channel, err)
	}

	done := make(chan struct{})
	go func() {
		defer close(done)
		for msg := range pubsub.Channel() {
			var event domain.RevocationEvent
			if err := json.Unmarshal([]byte(msg.Payload), &event); err != nil {
				f.log.Warn().Err(err).Msg("dropping malformed revocation")
				continue
			}
			fn(event)
		}
	}()

	var once sync.Once
	stop := func() {
		once.Do(func() {
			pubsub.Close()
			<-done
		})
	}
	return stop, nil
}
