package events

import (
	"encoding/json"
	"sync"
	"time"

	"rentdesk/internal/models"
)

const (
	EventBookingCreated   = "booking_created"
	EventBookingCancelled = "booking_cancelled"
)

// BookingEventPayload is the minimal booking snapshot for event consumers.
type BookingEventPayload struct {
	BookingID        int64     `json:"booking_id"`
	Channel          string    `json:"channel"`
	UserID           int64     `json:"user_id,omitempty"`
	GuestName        string    `json:"guest_name,omitempty"`
	VehicleID        int64     `json:"vehicle_id"`
	VehicleName      string    `json:"vehicle_name"`
	StartDate        time.Time `json:"start_date"`
	EndDate          time.Time `json:"end_date"`
	TotalPrice       float64   `json:"total_price"`
	Status           string    `json:"status"`
	ConfirmationCode string    `json:"confirmation_code"`
}

// NewBookingPayload snapshots a booking for publishing.
func NewBookingPayload(b *models.Booking) BookingEventPayload {
	p := BookingEventPayload{
		BookingID:        b.ID,
		Channel:          b.Channel,
		UserID:           b.UserID,
		VehicleID:        b.VehicleID,
		VehicleName:      b.VehicleName,
		StartDate:        b.StartDate,
		EndDate:          b.EndDate,
		TotalPrice:       b.TotalPrice,
		Status:           b.Status,
		ConfirmationCode: b.ConfirmationCode,
	}
	if b.Guest != nil {
		p.GuestName = b.Guest.Name
	}
	return p
}

// Event represents a lightweight domain event.
type Event struct {
	Type      string
	Payload   []byte
	CreatedAt time.Time
}

// EventHandler reacts to an event.
type EventHandler func(event *Event) error

// EventBus provides in-process pub/sub for events.
type EventBus struct {
	subscribers map[string][]EventHandler
	mu          sync.RWMutex
}

// NewEventBus constructs an empty bus.
func NewEventBus() *EventBus {
	return &EventBus{subscribers: make(map[string][]EventHandler)}
}

// Subscribe registers a handler for a given event type.
func (b *EventBus) Subscribe(eventType string, handler EventHandler) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.subscribers[eventType] = append(b.subscribers[eventType], handler)
}

// Publish notifies subscribers of the event type.
func (b *EventBus) Publish(event *Event) {
	b.mu.RLock()
	handlers := append([]EventHandler(nil), b.subscribers[event.Type]...)
	b.mu.RUnlock()

	if event.CreatedAt.IsZero() {
		event.CreatedAt = time.Now()
	}

	for _, handler := range handlers {
		// Handlers run synchronously; caller decides concurrency model.
		_ = handler(event)
	}
}

// PublishJSON serializes the payload and publishes an event.
func (b *EventBus) PublishJSON(eventType string, payload interface{}) error {
	if b == nil {
		return nil
	}

	raw, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	b.Publish(&Event{Type: eventType, Payload: raw, CreatedAt: time.Now()})
	return nil
}
