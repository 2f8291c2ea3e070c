package realtime

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"

	"monetization-backend/pkg/logger"
)

// RedisPublisher publishes changes on a pub/sub channel so every API replica's
// hub sees writes made by any replica or by the worker.
type RedisPublisher struct {
	client  *redis.Client
	channel string
}

func NewRedisPublisher(client *redis.Client, channel string) *RedisPublisher {
	return &RedisPublisher{client: client, channel: channel}
}

func (p *RedisPublisher) Publish(ctx context.Context, change Change) error {
	payload, err := json.Marshal(change)
	if err != nil {
		return fmt.Errorf("marshal change: %w", err)
	}
	if err := p.client.Publish(ctx, p.channel, payload).Err(); err != nil {
		return fmt.Errorf("publish change: %w", err)
	}
	return nil
}

// Relay subscribes to the channel and forwards every change to the hub until ctx is done
func (p *RedisPublisher) Relay(ctx context.Context, hub *Hub) error {
	sub := p.client.Subscribe(ctx, p.channel)
	defer sub.Close()

	// Đợi subscribe xác nhận trước khi đọc message
	if _, err := sub.Receive(ctx); err != nil {
		return fmt.Errorf("subscribe %s: %w", p.channel, err)
	}

	logger.Info("Realtime relay subscribed", map[string]interface{}{"channel": p.channel})

	ch := sub.Channel()
	for {
		select {
		case <-ctx.Done():
			return nil
		case msg, ok := <-ch:
			if !ok {
				return nil
			}
			var change Change
			if err := json.Unmarshal([]byte(msg.Payload), &change); err != nil {
				logger.Error("Invalid change payload", err)
				continue
			}
			hub.Broadcast(change)
		}
	}
}
