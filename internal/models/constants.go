package models

const (
	StatusConfirmed = "confirmed"
	StatusCancelled = "cancelled"
)

const (
	ChannelUser  = "user"
	ChannelGuest = "guest"
)

// Confirmation code prefixes per booking channel.
const (
	CodePrefixUser  = "UB"
	CodePrefixGuest = "GB"
)

// DateLayout is the wire and storage format for booking dates.
const DateLayout = "2006-01-02"

const (
	// TaskStatusPending and friends are notify_queue task states.
	TaskStatusPending   = "pending"
	TaskStatusRetry     = "retry"
	TaskStatusCompleted = "completed"
	TaskStatusFailed    = "failed"
)

const (
	// WorkerQueueSize caps the in-memory notification queue.
	WorkerQueueSize = 128

	// DefaultMaxRetries for notification delivery before dead-lettering.
	DefaultMaxRetries = 5
)
