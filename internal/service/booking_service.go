package service

import (
	"context"
	"errors"
	"strconv"
	"time"

	"rentdesk/internal/database"
	"rentdesk/internal/domain"
	"rentdesk/internal/events"
	"rentdesk/internal/metrics"
	"rentdesk/internal/models"

	"github.com/rs/zerolog"
)

// BookingService is the admission engine: it validates a request, resolves
// the vehicle, prices the rental, and commits the booking with the conflict
// check and insert in one transaction. Notification delivery is scheduled
// after commit and never affects the admission outcome.
type BookingService struct {
	repo       domain.Repository
	dispatcher domain.NotifyDispatcher
	eventBus   domain.EventPublisher
	logger     *zerolog.Logger
}

func NewBookingService(repo domain.Repository, dispatcher domain.NotifyDispatcher, eventBus domain.EventPublisher, logger *zerolog.Logger) *BookingService {
	return &BookingService{
		repo:       repo,
		dispatcher: dispatcher,
		eventBus:   eventBus,
		logger:     logger,
	}
}

func (s *BookingService) RequestBooking(ctx context.Context, req domain.BookingRequest) (*models.Booking, error) {
	if missing := missingFields(req); len(missing) > 0 {
		metrics.IncRejected("validation")
		return nil, newMissingFields(missing)
	}

	vehicleID, err := strconv.ParseInt(req.VehicleID, 10, 64)
	if err != nil || vehicleID <= 0 {
		metrics.IncRejected("validation")
		return nil, newInvalidInput("invalid vehicle ID: %s", req.VehicleID)
	}

	vehicle, err := s.repo.GetVehicleByID(ctx, vehicleID)
	if err != nil {
		if errors.Is(err, database.ErrVehicleNotFound) {
			metrics.IncRejected("not_found")
		}
		return nil, err
	}

	start, end, err := parseDateRange(req.StartDate, req.EndDate)
	if err != nil {
		metrics.IncRejected("validation")
		return nil, err
	}

	now := time.Now()
	booking := &models.Booking{
		Channel:          req.Channel,
		UserID:           req.UserID,
		Guest:            req.Guest,
		VehicleID:        vehicle.ID,
		VehicleName:      vehicle.Name,
		StartDate:        start,
		EndDate:          end,
		TotalPrice:       TotalPrice(start, end, vehicle.DailyRate),
		Status:           models.StatusConfirmed,
		ConfirmationCode: NewConfirmationCode(req.Channel, now),
	}

	if err := s.repo.CreateBookingWithLock(ctx, booking); err != nil {
		if errors.Is(err, database.ErrRangeUnavailable) {
			metrics.IncRejected("conflict")
		}
		return nil, err
	}

	s.logger.Info().
		Int64("booking_id", booking.ID).
		Str("channel", booking.Channel).
		Int64("vehicle_id", booking.VehicleID).
		Str("confirmation_code", booking.ConfirmationCode).
		Float64("total_price", booking.TotalPrice).
		Msg("booking confirmed")
	metrics.IncAdmitted(booking.Channel)

	s.publishEvent(events.EventBookingCreated, booking)
	s.scheduleNotify(ctx, booking, s.dispatcher.EnqueueBookingConfirmed)

	return booking, nil
}

// CancelBooking flips the caller's own user-channel booking to cancelled.
// A booking owned by someone else is reported as not found, never as a
// permission error. Cancelling twice succeeds both times.
func (s *BookingService) CancelBooking(ctx context.Context, bookingID, userID int64) (*models.Booking, error) {
	booking, err := s.repo.CancelBookingForUser(ctx, bookingID, userID)
	if err != nil {
		return nil, err
	}

	s.logger.Info().
		Int64("booking_id", booking.ID).
		Int64("user_id", userID).
		Msg("booking cancelled")

	s.publishEvent(events.EventBookingCancelled, booking)
	s.scheduleNotify(ctx, booking, s.dispatcher.EnqueueBookingCancelled)

	return booking, nil
}

func (s *BookingService) ListUserBookings(ctx context.Context, userID int64) ([]*models.Booking, error) {
	return s.repo.GetUserBookings(ctx, userID)
}

func (s *BookingService) GetBookingsByDateRange(ctx context.Context, start, end time.Time) ([]*models.Booking, error) {
	return s.repo.GetBookingsByDateRange(ctx, start, end)
}

func (s *BookingService) CheckAvailability(ctx context.Context, vehicleID int64, start, end time.Time) (bool, error) {
	return s.repo.CheckAvailability(ctx, vehicleID, start, end)
}

func missingFields(req domain.BookingRequest) []string {
	var missing []string
	if req.VehicleID == "" {
		missing = append(missing, "vehicleId")
	}
	if req.StartDate == "" {
		missing = append(missing, "startDate")
	}
	if req.EndDate == "" {
		missing = append(missing, "endDate")
	}
	if req.Channel == models.ChannelGuest {
		guest := req.Guest
		if guest == nil {
			guest = &models.GuestInfo{}
		}
		if guest.Name == "" {
			missing = append(missing, "name")
		}
		if guest.Email == "" {
			missing = append(missing, "email")
		}
		if guest.Phone == "" {
			missing = append(missing, "phone")
		}
	}
	return missing
}

func parseDateRange(startStr, endStr string) (time.Time, time.Time, error) {
	start, err := time.Parse(models.DateLayout, startStr)
	if err != nil {
		return time.Time{}, time.Time{}, newInvalidInput("invalid start date: %s", startStr)
	}
	end, err := time.Parse(models.DateLayout, endStr)
	if err != nil {
		return time.Time{}, time.Time{}, newInvalidInput("invalid end date: %s", endStr)
	}
	if !start.Before(end) {
		return time.Time{}, time.Time{}, newInvalidInput("invalid date range: start must be before end")
	}
	return start, end, nil
}

func (s *BookingService) publishEvent(eventType string, booking *models.Booking) {
	if s.eventBus == nil {
		return
	}
	if err := s.eventBus.PublishJSON(eventType, events.NewBookingPayload(booking)); err != nil {
		s.logger.Error().Err(err).Str("event_type", eventType).Int64("booking_id", booking.ID).Msg("publish event error")
	}
}

// scheduleNotify is fire-and-forget: an enqueue failure is logged and
// swallowed, it never rolls back or fails the committed booking.
func (s *BookingService) scheduleNotify(ctx context.Context, booking *models.Booking, enqueue func(context.Context, *models.Booking) error) {
	if s.dispatcher == nil {
		return
	}
	if err := enqueue(context.WithoutCancel(ctx), booking); err != nil {
		s.logger.Error().Err(err).Int64("booking_id", booking.ID).Msg("notification enqueue error")
	}
}
