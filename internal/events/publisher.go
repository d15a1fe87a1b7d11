package events

import (
	"context"
	"encoding/json"

	"car-rental-adjustments/internal/domain"
	"car-rental-adjustments/internal/logger"

	"github.com/redis/go-redis/v9"
)

// Publisher pushes lifecycle events to external observers. Publishing is
// best-effort from the engine's point of view: callers log failures and
// never roll back the primary state change.
type Publisher interface {
	Publish(ctx context.Context, event domain.Event) error
}

// redisPublisher appends events to a Redis list consumed by downstream
// workers and mirrors them on a pub/sub channel for live listeners.
type redisPublisher struct {
	client  *redis.Client
	queue   string
	channel string
}

func NewRedisPublisher(client *redis.Client, queue, channel string) Publisher {
	return &redisPublisher{client: client, queue: queue, channel: channel}
}

func (p *redisPublisher) Publish(ctx context.Context, event domain.Event) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return err
	}
	if err := p.client.RPush(ctx, p.queue, payload).Err(); err != nil {
		return err
	}
	if err := p.client.Publish(ctx, p.channel, payload).Err(); err != nil {
		// Queue write succeeded; the live mirror is best-effort.
		logger.Warn("event pub/sub mirror failed", "type", event.Type, "error", err)
	}
	return nil
}

// fanout publishes to every sink and reports the first failure after trying
// all of them.
type fanout struct {
	sinks []Publisher
}

func NewFanout(sinks ...Publisher) Publisher {
	return &fanout{sinks: sinks}
}

func (f *fanout) Publish(ctx context.Context, event domain.Event) error {
	var firstErr error
	for _, sink := range f.sinks {
		if err := sink.Publish(ctx, event); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
