package database

import (
	"context"
	"testing"
	"time"

	"rentdesk/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNotifyQueueLifecycle(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	task := &models.NotifyTask{
		TaskType:  "booking_confirmed",
		BookingID: 1,
		Payload:   `{"booking_id":1}`,
		Status:    models.TaskStatusPending,
	}
	require.NoError(t, db.CreateNotifyTask(ctx, task))
	assert.NotZero(t, task.ID)

	pending, err := db.GetPendingNotifyTasks(ctx, 10)
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, task.ID, pending[0].ID)

	t.Run("RetryScheduledInFuture", func(t *testing.T) {
		next := time.Now().Add(time.Hour)
		require.NoError(t, db.UpdateNotifyTaskStatus(ctx, task.ID, models.TaskStatusRetry, "smtp timeout", &next))

		// Not yet due, so it must not be picked up.
		pending, err := db.GetPendingNotifyTasks(ctx, 10)
		require.NoError(t, err)
		assert.Empty(t, pending)
	})

	t.Run("RetryDueNow", func(t *testing.T) {
		past := time.Now().Add(-time.Minute)
		require.NoError(t, db.UpdateNotifyTaskStatus(ctx, task.ID, models.TaskStatusRetry, "smtp timeout", &past))

		pending, err := db.GetPendingNotifyTasks(ctx, 10)
		require.NoError(t, err)
		require.Len(t, pending, 1)
		assert.Equal(t, 2, pending[0].RetryCount)
		require.NotNil(t, pending[0].LastError)
		assert.Equal(t, "smtp timeout", *pending[0].LastError)
	})

	t.Run("Completed", func(t *testing.T) {
		require.NoError(t, db.UpdateNotifyTaskStatus(ctx, task.ID, models.TaskStatusCompleted, "", nil))

		pending, err := db.GetPendingNotifyTasks(ctx, 10)
		require.NoError(t, err)
		assert.Empty(t, pending)
	})
}
