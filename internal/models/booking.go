package models

import (
	"math"
	"time"
)

// GuestInfo is the embedded contact for guest-channel bookings. User-channel
// bookings carry a UserID instead and Guest stays nil.
type GuestInfo struct {
	Name  string `json:"name"`
	Email string `json:"email"`
	Phone string `json:"phone"`
}

type Booking struct {
	ID               int64      `json:"id"`
	Channel          string     `json:"channel"` // user, guest
	UserID           int64      `json:"user_id,omitempty"`
	Guest            *GuestInfo `json:"guest,omitempty"`
	VehicleID        int64      `json:"vehicle_id"`
	VehicleName      string     `json:"vehicle_name"`
	StartDate        time.Time  `json:"start_date"`
	EndDate          time.Time  `json:"end_date"` // exclusive: rental covers [StartDate, EndDate)
	TotalPrice       float64    `json:"total_price"`
	Status           string     `json:"status"` // confirmed, cancelled
	ConfirmationCode string     `json:"confirmation_code"`
	CreatedAt        time.Time  `json:"created_at"`
	UpdatedAt        time.Time  `json:"updated_at"`
	Version          int64      `json:"version"`
}

// Days returns the billable rental length, rounded up to whole days.
func (b *Booking) Days() int64 {
	return RentalDays(b.StartDate, b.EndDate)
}

func RentalDays(start, end time.Time) int64 {
	if !end.After(start) {
		return 0
	}
	return int64(math.Ceil(end.Sub(start).Hours() / 24))
}

// Overlaps reports whether the booking's range intersects [start, end).
// Back-to-back ranges sharing a boundary date do not overlap.
func (b *Booking) Overlaps(start, end time.Time) bool {
	return b.StartDate.Before(end) && b.EndDate.After(start)
}
