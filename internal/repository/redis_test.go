package repository

import (
	"context"
	"testing"
	"time"

	"rentdesk/internal/models"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRedisTaskQueue(t *testing.T) {
	s, err := miniredis.Run()
	require.NoError(t, err)
	defer s.Close()

	client := redis.NewClient(&redis.Options{
		Addr: s.Addr(),
	})
	defer client.Close()

	queue := NewRedisTaskQueue(client)
	ctx := context.Background()

	t.Run("PushAndPop", func(t *testing.T) {
		task := models.NotifyTask{
			ID:        1,
			TaskType:  "booking_confirmed",
			BookingID: 42,
			Payload:   `{"booking_id":42}`,
			Status:    models.TaskStatusPending,
		}

		err := queue.Push(ctx, task)
		require.NoError(t, err)

		got, err := queue.Pop(ctx, time.Second)
		require.NoError(t, err)
		require.NotNil(t, got)
		assert.Equal(t, task.ID, got.ID)
		assert.Equal(t, task.TaskType, got.TaskType)
		assert.Equal(t, task.BookingID, got.BookingID)
		assert.Equal(t, task.Payload, got.Payload)
	})

	t.Run("PopOrder", func(t *testing.T) {
		require.NoError(t, queue.Push(ctx, models.NotifyTask{ID: 10}))
		require.NoError(t, queue.Push(ctx, models.NotifyTask{ID: 11}))

		first, err := queue.Pop(ctx, time.Second)
		require.NoError(t, err)
		second, err := queue.Pop(ctx, time.Second)
		require.NoError(t, err)

		assert.Equal(t, int64(10), first.ID)
		assert.Equal(t, int64(11), second.ID)
	})

	t.Run("PopEmpty", func(t *testing.T) {
		got, err := queue.Pop(ctx, 10*time.Millisecond)
		require.NoError(t, err)
		assert.Nil(t, got)
	})

	t.Run("DeadLetter", func(t *testing.T) {
		task := models.NotifyTask{ID: 99, TaskType: "booking_confirmed"}
		err := queue.PushDeadLetter(ctx, task)
		require.NoError(t, err)

		// The dead-letter list is separate from the work queue.
		got, err := queue.Pop(ctx, 10*time.Millisecond)
		require.NoError(t, err)
		assert.Nil(t, got)

		n, err := client.LLen(ctx, notifyDeadLetterKey).Result()
		require.NoError(t, err)
		assert.Equal(t, int64(1), n)
	})

	t.Run("NilClient", func(t *testing.T) {
		queue := NewRedisTaskQueue(nil)
		err := queue.Push(ctx, models.NotifyTask{ID: 1})
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "redis client is nil")
	})

	t.Run("Ping", func(t *testing.T) {
		assert.NoError(t, Ping(ctx, client))
	})

	t.Run("Close", func(t *testing.T) {
		assert.NoError(t, Close(client))
	})
}
