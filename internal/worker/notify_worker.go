package worker

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"rentdesk/internal/domain"
	"rentdesk/internal/metrics"
	"rentdesk/internal/models"

	"github.com/rs/zerolog"
)

const (
	TaskBookingConfirmed = "booking_confirmed"
	TaskBookingCancelled = "booking_cancelled"
)

// notifyTaskPayload is persisted in NotifyTask.Payload as JSON. The full
// booking snapshot rides along so delivery does not depend on a re-read.
type notifyTaskPayload struct {
	Booking *models.Booking `json:"booking"`
}

// NotifyWorker drains the notification outbox: tasks are persisted first,
// scheduled through the fast queue, and picked up by polling when the queue
// path loses them. Delivery failures back off exponentially and land in the
// dead letter after the final attempt.
type NotifyWorker struct {
	store        domain.NotifyQueueStore
	notifier     domain.Notifier
	queue        domain.TaskQueue
	retryPolicy  RetryPolicy
	pollInterval time.Duration
	batchSize    int
	logger       *zerolog.Logger
}

// NewNotifyWorker builds a worker with sane defaults.
func NewNotifyWorker(store domain.NotifyQueueStore, notifier domain.Notifier, queue domain.TaskQueue, retry RetryPolicy, logger *zerolog.Logger) *NotifyWorker {
	if retry.MaxRetries == 0 {
		retry.MaxRetries = models.DefaultMaxRetries
	}
	if retry.InitialDelay == 0 {
		retry.InitialDelay = 2 * time.Second
	}
	if retry.MaxDelay == 0 {
		retry.MaxDelay = 1 * time.Minute
	}
	if retry.BackoffFactor == 0 {
		retry.BackoffFactor = 2
	}

	return &NotifyWorker{
		store:        store,
		notifier:     notifier,
		queue:        queue,
		retryPolicy:  retry,
		pollInterval: 2 * time.Second,
		batchSize:    20,
		logger:       logger,
	}
}

func (w *NotifyWorker) SetPollInterval(d time.Duration) {
	if d > 0 {
		w.pollInterval = d
	}
}

func (w *NotifyWorker) SetBatchSize(n int) {
	if n > 0 {
		w.batchSize = n
	}
}

// EnqueueBookingConfirmed persists a confirmation task and schedules it.
func (w *NotifyWorker) EnqueueBookingConfirmed(ctx context.Context, booking *models.Booking) error {
	return w.enqueue(ctx, TaskBookingConfirmed, booking)
}

// EnqueueBookingCancelled persists a cancellation task and schedules it.
func (w *NotifyWorker) EnqueueBookingCancelled(ctx context.Context, booking *models.Booking) error {
	return w.enqueue(ctx, TaskBookingCancelled, booking)
}

func (w *NotifyWorker) enqueue(ctx context.Context, taskType string, booking *models.Booking) error {
	if booking == nil || booking.ID == 0 {
		return errors.New("booking id is required")
	}

	payloadBytes, err := json.Marshal(notifyTaskPayload{Booking: booking})
	if err != nil {
		return fmt.Errorf("encode payload: %w", err)
	}

	task := models.NotifyTask{
		TaskType:  taskType,
		BookingID: booking.ID,
		Payload:   string(payloadBytes),
		Status:    models.TaskStatusPending,
	}

	if err := w.store.CreateNotifyTask(ctx, &task); err != nil {
		return fmt.Errorf("persist notify task: %w", err)
	}

	// The queue is only the fast path; the polling loop will find the
	// persisted row even if this push is lost.
	if w.queue != nil {
		if err := w.queue.Push(ctx, task); err != nil {
			w.logger.Warn().Err(err).Int64("task_id", task.ID).Msg("queue push failed, task left to polling")
		}
	}

	return nil
}

// Start launches the main loop; stops when ctx is done.
func (w *NotifyWorker) Start(ctx context.Context) {
	w.logger.Info().Msg("notify worker started")
	defer w.logger.Info().Msg("notify worker stopped")

	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		if task := w.tryQueue(ctx); task != nil {
			w.processTask(ctx, task)
			continue
		}

		tasks, err := w.store.GetPendingNotifyTasks(ctx, w.batchSize)
		if err != nil {
			w.logger.Error().Err(err).Msg("fetch pending notify tasks")
			w.sleep(ctx)
			continue
		}
		if len(tasks) == 0 {
			w.sleep(ctx)
			continue
		}

		for i := range tasks {
			w.processTask(ctx, &tasks[i])
		}
	}
}

func (w *NotifyWorker) tryQueue(ctx context.Context) *models.NotifyTask {
	if w.queue == nil {
		return nil
	}
	task, err := w.queue.Pop(ctx, time.Second)
	if err != nil {
		if !errors.Is(err, context.Canceled) {
			w.logger.Error().Err(err).Msg("queue pop error")
		}
		return nil
	}
	return task
}

func (w *NotifyWorker) sleep(ctx context.Context) {
	select {
	case <-ctx.Done():
	case <-time.After(w.pollInterval):
	}
}

func (w *NotifyWorker) processTask(ctx context.Context, task *models.NotifyTask) {
	var payload notifyTaskPayload
	if err := json.Unmarshal([]byte(task.Payload), &payload); err != nil {
		w.failTask(ctx, task, fmt.Errorf("decode payload: %w", err))
		return
	}
	if payload.Booking == nil {
		w.failTask(ctx, task, errors.New("booking payload missing"))
		return
	}

	if err := w.deliver(ctx, task.TaskType, payload.Booking); err != nil {
		w.retryOrFail(ctx, task, err)
		return
	}

	if err := w.store.UpdateNotifyTaskStatus(ctx, task.ID, models.TaskStatusCompleted, "", nil); err != nil {
		w.logger.Error().Err(err).Int64("task_id", task.ID).Msg("mark completed")
	}
}

func (w *NotifyWorker) deliver(ctx context.Context, taskType string, booking *models.Booking) error {
	switch taskType {
	case TaskBookingConfirmed:
		return w.notifier.NotifyBookingConfirmed(ctx, booking)
	case TaskBookingCancelled:
		return w.notifier.NotifyBookingCancelled(ctx, booking)
	default:
		return fmt.Errorf("unknown task type: %s", taskType)
	}
}

func (w *NotifyWorker) retryOrFail(ctx context.Context, task *models.NotifyTask, cause error) {
	attempt := task.RetryCount + 1
	if attempt >= w.retryPolicy.MaxRetries {
		w.failTask(ctx, task, cause)
		return
	}

	nextTime := time.Now().Add(w.retryPolicy.NextDelay(attempt))
	w.logger.Warn().Err(cause).
		Int64("task_id", task.ID).
		Int("attempt", attempt).
		Time("next_retry_at", nextTime).
		Msg("notify delivery failed, scheduling retry")
	if err := w.store.UpdateNotifyTaskStatus(ctx, task.ID, models.TaskStatusRetry, cause.Error(), &nextTime); err != nil {
		w.logger.Error().Err(err).Int64("task_id", task.ID).Msg("mark retry")
	}
	metrics.IncNotify("retry")
}

func (w *NotifyWorker) failTask(ctx context.Context, task *models.NotifyTask, cause error) {
	w.logger.Error().Err(cause).Int64("task_id", task.ID).Msg("notify task failed permanently")
	if err := w.store.UpdateNotifyTaskStatus(ctx, task.ID, models.TaskStatusFailed, cause.Error(), nil); err != nil {
		w.logger.Error().Err(err).Int64("task_id", task.ID).Msg("mark failed")
	}
	metrics.IncNotify("failed")

	if w.queue != nil {
		if err := w.queue.PushDeadLetter(ctx, *task); err != nil {
			w.logger.Error().Err(err).Int64("task_id", task.ID).Msg("dead letter push")
		}
	}
}
