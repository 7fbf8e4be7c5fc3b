package domain

import (
	"context"
	"time"

	"rentdesk/internal/models"
)

// Repository is the record store the admission engine runs against.
type Repository interface {
	GetBooking(ctx context.Context, id int64) (*models.Booking, error)
	CreateBookingWithLock(ctx context.Context, booking *models.Booking) error
	CancelBookingForUser(ctx context.Context, id, userID int64) (*models.Booking, error)
	GetUserBookings(ctx context.Context, userID int64) ([]*models.Booking, error)
	GetBookingsByDateRange(ctx context.Context, start, end time.Time) ([]*models.Booking, error)
	FindConflicting(ctx context.Context, vehicleID int64, start, end time.Time) (*models.Booking, error)
	CheckAvailability(ctx context.Context, vehicleID int64, start, end time.Time) (bool, error)
	UpdateBookingStatus(ctx context.Context, id int64, status string) error
	GetVehicleByID(ctx context.Context, id int64) (*models.Vehicle, error)
	GetActiveVehicles(ctx context.Context) ([]*models.Vehicle, error)
}

// NotifyQueueStore persists notification tasks so they survive restarts.
type NotifyQueueStore interface {
	CreateNotifyTask(ctx context.Context, task *models.NotifyTask) error
	GetPendingNotifyTasks(ctx context.Context, limit int) ([]models.NotifyTask, error)
	UpdateNotifyTaskStatus(ctx context.Context, id int64, status, errMsg string, nextRetryAt *time.Time) error
}

// TaskQueue is the fast-path transport in front of the persisted outbox.
type TaskQueue interface {
	Push(ctx context.Context, task models.NotifyTask) error
	// Pop blocks up to timeout and returns nil when the queue is empty.
	Pop(ctx context.Context, timeout time.Duration) (*models.NotifyTask, error)
	PushDeadLetter(ctx context.Context, task models.NotifyTask) error
}

// Notifier delivers a booking notification to its recipients. Implementations
// must be safe for concurrent use; the worker handles retries.
type Notifier interface {
	NotifyBookingConfirmed(ctx context.Context, booking *models.Booking) error
	NotifyBookingCancelled(ctx context.Context, booking *models.Booking) error
}

// NotifyDispatcher schedules delivery without blocking the caller. Errors
// mean the task could not even be queued; delivery failures are internal.
type NotifyDispatcher interface {
	EnqueueBookingConfirmed(ctx context.Context, booking *models.Booking) error
	EnqueueBookingCancelled(ctx context.Context, booking *models.Booking) error
}

type EventPublisher interface {
	PublishJSON(eventType string, payload interface{}) error
}

// BookingService is the admission and cancellation surface the API exposes.
type BookingService interface {
	RequestBooking(ctx context.Context, req BookingRequest) (*models.Booking, error)
	CancelBooking(ctx context.Context, bookingID, userID int64) (*models.Booking, error)
	ListUserBookings(ctx context.Context, userID int64) ([]*models.Booking, error)
	GetBookingsByDateRange(ctx context.Context, start, end time.Time) ([]*models.Booking, error)
	CheckAvailability(ctx context.Context, vehicleID int64, start, end time.Time) (bool, error)
}

type VehicleService interface {
	GetActiveVehicles(ctx context.Context) ([]*models.Vehicle, error)
	GetVehicleByID(ctx context.Context, id int64) (*models.Vehicle, error)
}

// BookingRequest is the raw admission input before validation. Dates are
// strings on purpose: parse failures are part of the validation contract.
type BookingRequest struct {
	Channel   string
	VehicleID string
	StartDate string
	EndDate   string
	UserID    int64             // user channel
	Guest     *models.GuestInfo // guest channel
}
