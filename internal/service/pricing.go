package service

import (
	"time"

	"rentdesk/internal/models"
)

// TotalPrice charges whole days at the flat daily rate. Durations are
// rounded up, so a rental ending mid-day still pays the started day.
// Callers guarantee start < end; a non-positive duration prices to zero.
func TotalPrice(start, end time.Time, dailyRate float64) float64 {
	return float64(models.RentalDays(start, end)) * dailyRate
}
