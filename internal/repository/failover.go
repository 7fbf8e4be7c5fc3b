package repository

import (
	"context"
	"sync/atomic"
	"time"

	"rentdesk/internal/domain"
	"rentdesk/internal/models"

	"github.com/rs/zerolog"
)

// FailoverTaskQueue prefers the primary queue and drops to the fallback
// when the primary errors, retrying the primary after a cooldown.
type FailoverTaskQueue struct {
	primary   domain.TaskQueue
	fallback  domain.TaskQueue
	logger    *zerolog.Logger
	isDown    atomic.Bool
	lastCheck atomic.Int64
}

func NewFailoverTaskQueue(primary, fallback domain.TaskQueue, logger *zerolog.Logger) *FailoverTaskQueue {
	return &FailoverTaskQueue{
		primary:  primary,
		fallback: fallback,
		logger:   logger,
	}
}

func (q *FailoverTaskQueue) markDown(err error) {
	q.logger.Error().Err(err).Msg("Primary task queue failed, falling back to memory")
	q.isDown.Store(true)
	q.lastCheck.Store(time.Now().UnixNano())
}

func (q *FailoverTaskQueue) shouldRetryPrimary() bool {
	return time.Since(time.Unix(0, q.lastCheck.Load())) > time.Minute
}

func (q *FailoverTaskQueue) Push(ctx context.Context, task models.NotifyTask) error {
	if !q.isDown.Load() || q.shouldRetryPrimary() {
		err := q.primary.Push(ctx, task)
		if err == nil {
			q.isDown.Store(false)
			return nil
		}
		q.markDown(err)
	}
	return q.fallback.Push(ctx, task)
}

func (q *FailoverTaskQueue) Pop(ctx context.Context, timeout time.Duration) (*models.NotifyTask, error) {
	if !q.isDown.Load() || q.shouldRetryPrimary() {
		task, err := q.primary.Pop(ctx, timeout)
		if err == nil {
			q.isDown.Store(false)
			if task != nil {
				return task, nil
			}
			// Primary was empty; drain the fallback without blocking again.
			return q.fallback.Pop(ctx, time.Millisecond)
		}
		q.markDown(err)
	}
	return q.fallback.Pop(ctx, timeout)
}

func (q *FailoverTaskQueue) PushDeadLetter(ctx context.Context, task models.NotifyTask) error {
	if !q.isDown.Load() || q.shouldRetryPrimary() {
		err := q.primary.PushDeadLetter(ctx, task)
		if err == nil {
			q.isDown.Store(false)
			return nil
		}
		q.markDown(err)
	}
	return q.fallback.PushDeadLetter(ctx, task)
}
