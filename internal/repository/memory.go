package repository

import (
	"context"
	"fmt"
	"sync"
	"time"

	"rentdesk/internal/models"
)

// MemoryTaskQueue is the in-process fallback used when Redis is absent or
// down. Tasks here do not survive a restart; the persisted outbox covers
// that case.
type MemoryTaskQueue struct {
	mu         sync.Mutex
	tasks      chan models.NotifyTask
	deadLetter []models.NotifyTask
}

func NewMemoryTaskQueue(size int) *MemoryTaskQueue {
	if size <= 0 {
		size = models.WorkerQueueSize
	}
	return &MemoryTaskQueue{
		tasks: make(chan models.NotifyTask, size),
	}
}

func (q *MemoryTaskQueue) Push(ctx context.Context, task models.NotifyTask) error {
	select {
	case q.tasks <- task:
		return nil
	default:
		return fmt.Errorf("memory queue is full")
	}
}

func (q *MemoryTaskQueue) Pop(ctx context.Context, timeout time.Duration) (*models.NotifyTask, error) {
	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case task := <-q.tasks:
		return &task, nil
	case <-timer.C:
		return nil, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func (q *MemoryTaskQueue) PushDeadLetter(ctx context.Context, task models.NotifyTask) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.deadLetter = append(q.deadLetter, task)
	return nil
}

// DeadLetters returns a copy of the accumulated dead-letter tasks.
func (q *MemoryTaskQueue) DeadLetters() []models.NotifyTask {
	q.mu.Lock()
	defer q.mu.Unlock()
	out := make([]models.NotifyTask, len(q.deadLetter))
	copy(out, q.deadLetter)
	return out
}
