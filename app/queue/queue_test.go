package queue

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMessageCodec(t *testing.T) {
	msg := NewMessage(uuid.New(), "refinement")
	raw, err := msg.Encode()
	require.NoError(t, err)

	decoded, err := DecodeMessage(raw)
	require.NoError(t, err)
	assert.Equal(t, msg.JobID, decoded.JobID)
	assert.Equal(t, "refinement", decoded.JobType)
	assert.False(t, decoded.Redelivery)

	_, err = DecodeMessage([]byte(`{"job_type":"refinement"}`))
	assert.Error(t, err)

	_, err = DecodeMessage([]byte(`not json`))
	assert.Error(t, err)
}

func TestMemoryQueue(t *testing.T) {
	ctx := context.Background()
	q := NewMemoryQueue(4)

	first := NewMessage(uuid.New(), "initial_generation")
	second := NewMessage(uuid.New(), "subject_line_test")
	require.NoError(t, q.Dispatch(ctx, first))
	require.NoError(t, q.Dispatch(ctx, second))

	n, err := q.Len(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)

	got, err := q.Dequeue(ctx, time.Second)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, first.JobID, got.JobID)

	got, err = q.Dequeue(ctx, time.Second)
	require.NoError(t, err)
	assert.Equal(t, second.JobID, got.JobID)

	t.Run("TimeoutReturnsNil", func(t *testing.T) {
		got, err := q.Dequeue(ctx, 10*time.Millisecond)
		assert.NoError(t, err)
		assert.Nil(t, got)
	})

	t.Run("ContextCancel", func(t *testing.T) {
		cctx, cancel := context.WithCancel(ctx)
		cancel()
		_, err := q.Dequeue(cctx, time.Second)
		assert.ErrorIs(t, err, context.Canceled)
	})

	t.Run("Closed", func(t *testing.T) {
		require.NoError(t, q.Close())
		require.NoError(t, q.Close())
		assert.ErrorIs(t, q.Dispatch(ctx, first), ErrQueueClosed)
		_, err := q.Dequeue(ctx, time.Second)
		assert.ErrorIs(t, err, ErrQueueClosed)
	})
}

func TestRedisQueue(t *testing.T) {
	url := os.Getenv("TEST_REDIS_URL")
	if url == "" {
		t.Skip("TEST_REDIS_URL not set")
	}

	opt, err := redis.ParseURL(url)
	require.NoError(t, err)
	client := redis.NewClient(opt)
	defer client.Close()

	ctx := context.Background()
	q := NewRedisQueue(client, "mailwright-test:", uuid.NewString(), nil)
	defer client.Del(ctx, q.Key())

	first := NewMessage(uuid.New(), "initial_generation")
	second := NewMessage(uuid.New(), "optimization")
	require.NoError(t, q.Dispatch(ctx, first))
	require.NoError(t, q.Dispatch(ctx, second))

	n, err := q.Len(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)

	got, err := q.Dequeue(ctx, time.Second)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, first.JobID, got.JobID)

	got, err = q.Dequeue(ctx, time.Second)
	require.NoError(t, err)
	assert.Equal(t, second.JobID, got.JobID)

	// Malformed payloads are dropped rather than wedging the consumer
	require.NoError(t, client.LPush(ctx, q.Key(), "garbage").Err())
	got, err = q.Dequeue(ctx, time.Second)
	assert.NoError(t, err)
	assert.Nil(t, got)

	got, err = q.Dequeue(ctx, time.Second)
	assert.NoError(t, err)
	assert.Nil(t, got)
}
