// Package queue adapts the shared Redis message list to the core's Queue
// interface. All server instances drain the same list, so each envelope is
// delivered to exactly one instance (competing consumers).
package queue

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

// Redis is the Redis-list-backed message queue.
type Redis struct {
	client *redis.Client
	key    string
	log    *zerolog.Logger
}

// NewRedis connects a queue adapter to the Redis list at key.
func NewRedis(addr, key string, logger *zerolog.Logger) *Redis {
	client := redis.NewClient(&redis.Options{Addr: addr})
	return &Redis{client: client, key: key, log: logger}
}

// Ping verifies the Redis connection.
func (q *Redis) Ping(ctx context.Context) error {
	return q.client.Ping(ctx).Err()
}

// Pop blocks until an envelope payload is available. Transport-level
// reconnection is handled inside the redis client; any error surfacing
// here means the queue is unavailable.
func (q *Redis) Pop(ctx context.Context) ([]byte, error) {
	res, err := q.client.BRPop(ctx, 0, q.key).Result()
	if err != nil {
		return nil, err
	}
	if len(res) != 2 {
		return nil, fmt.Errorf("unexpected brpop reply of %d elements", len(res))
	}
	return []byte(res[1]), nil
}

// Push appends an envelope payload for relay consumers. Used by the
// transport-facing publish endpoint, never by the core.
func (q *Redis) Push(ctx context.Context, payload []byte) error {
	if err := q.client.LPush(ctx, q.key, payload).Err(); err != nil {
		return fmt.Errorf("lpush envelope: %w", err)
	}
	return nil
}

// Close releases the Redis connection.
func (q *Redis) Close() error {
	return q.client.Close()
}
