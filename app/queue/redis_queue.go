package queue

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// RedisQueue is a FIFO list queue: producers LPUSH, consumers BRPOP
type RedisQueue struct {
	client *redis.Client
	key    string
	logger *zap.Logger
}

// NewRedisQueue creates a queue stored under prefix+name
func NewRedisQueue(client *redis.Client, prefix, name string, logger *zap.Logger) *RedisQueue {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RedisQueue{
		client: client,
		key:    prefix + "queue:" + name,
		logger: logger.Named("redis_queue"),
	}
}

// Key returns the redis list key
func (q *RedisQueue) Key() string {
	return q.key
}

// Dispatch pushes msg onto the list
func (q *RedisQueue) Dispatch(ctx context.Context, msg Message) error {
	raw, err := msg.Encode()
	if err != nil {
		return err
	}
	if err := q.client.LPush(ctx, q.key, raw).Err(); err != nil {
		return fmt.Errorf("lpush %s: %w", q.key, err)
	}
	q.logger.Debug("Job dispatched",
		zap.String("job_id", msg.JobID.String()),
		zap.String("job_type", msg.JobType),
		zap.Bool("redelivery", msg.Redelivery))
	return nil
}

// Dequeue pops the oldest message, blocking for up to timeout
func (q *RedisQueue) Dequeue(ctx context.Context, timeout time.Duration) (*Message, error) {
	res, err := q.client.BRPop(ctx, timeout, q.key).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		if errors.Is(err, redis.ErrClosed) {
			return nil, ErrQueueClosed
		}
		return nil, fmt.Errorf("brpop %s: %w", q.key, err)
	}
	// BRPOP replies with [key, value]
	if len(res) != 2 {
		return nil, fmt.Errorf("brpop %s: unexpected reply of %d elements", q.key, len(res))
	}

	msg, err := DecodeMessage([]byte(res[1]))
	if err != nil {
		q.logger.Warn("Dropping malformed queue message", zap.String("payload", res[1]), zap.Error(err))
		return nil, nil
	}
	return &msg, nil
}

// Len returns the number of queued messages
func (q *RedisQueue) Len(ctx context.Context) (int64, error) {
	return q.client.LLen(ctx, q.key).Result()
}

// Close is a no-op; the redis client is owned by the caller
func (q *RedisQueue) Close() error {
	return nil
}
