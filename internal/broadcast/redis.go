package broadcast

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// RedisRelay republishes messages on a Redis channel for viewers attached
// to other processes.
type RedisRelay struct {
	client  *redis.Client
	channel string
}

// NewRedisRelay connects to addr and verifies the connection.
func NewRedisRelay(ctx context.Context, addr, password, channel string) (*RedisRelay, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to redis at %s; %w", addr, err)
	}
	return &RedisRelay{client: client, channel: channel}, nil
}

// NewRedisRelayWithClient wraps an existing client.
func NewRedisRelayWithClient(client *redis.Client, channel string) *RedisRelay {
	return &RedisRelay{client: client, channel: channel}
}

// Name implements Subscriber.
func (r *RedisRelay) Name() string { return "redis" }

// Send publishes msg as JSON.
func (r *RedisRelay) Send(ctx context.Context, msg Message) error {
	data, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("failed to encode message; %w", err)
	}
	if err := r.client.Publish(ctx, r.channel, data).Err(); err != nil {
		return fmt.Errorf("failed to publish to %s; %w", r.channel, err)
	}
	return nil
}

// Close closes the Redis client.
func (r *RedisRelay) Close() error {
	return r.client.Close()
}
