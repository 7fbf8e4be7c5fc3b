package database

import "errors"

var (
	// ErrRangeUnavailable means the requested date range overlaps an
	// existing confirmed booking for the same vehicle.
	ErrRangeUnavailable = errors.New("vehicle is already booked for the requested dates")

	// ErrVehicleNotFound means the referenced vehicle does not exist or is
	// not active.
	ErrVehicleNotFound = errors.New("vehicle not found")

	// ErrBookingNotFound covers both an absent booking and a booking that
	// does not belong to the requester; callers cannot tell the two apart.
	ErrBookingNotFound = errors.New("booking not found")
)
