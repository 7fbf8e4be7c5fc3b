package api

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"
	"time"

	"rentdesk/internal/domain"
	"rentdesk/internal/models"
)

type bookingRequestBody struct {
	VehicleID string            `json:"vehicleId"`
	StartDate string            `json:"startDate"`
	EndDate   string            `json:"endDate"`
	GuestInfo *models.GuestInfo `json:"guestInfo,omitempty"`
}

func (s *HTTPServer) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *HTTPServer) handleVehicles(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	vehicles, err := s.vehicles.GetActiveVehicles(r.Context())
	if err != nil {
		s.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"vehicles": vehicles})
}

// handleAvailability answers GET /api/v1/availability/{vehicleID}?start=&end=.
func (s *HTTPServer) handleAvailability(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	const prefix = "/api/v1/availability/"
	idStr := strings.TrimSpace(strings.TrimPrefix(r.URL.Path, prefix))
	vehicleID, err := strconv.ParseInt(idStr, 10, 64)
	if err != nil || vehicleID <= 0 {
		writeError(w, http.StatusBadRequest, "invalid vehicle ID")
		return
	}

	start, err := time.Parse(models.DateLayout, r.URL.Query().Get("start"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid start date; expected YYYY-MM-DD")
		return
	}
	end, err := time.Parse(models.DateLayout, r.URL.Query().Get("end"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid end date; expected YYYY-MM-DD")
		return
	}
	if !start.Before(end) {
		writeError(w, http.StatusBadRequest, "invalid date range")
		return
	}

	available, err := s.bookings.CheckAvailability(r.Context(), vehicleID, start, end)
	if err != nil {
		s.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"available": available})
}

// handleCreateBooking admits a booking for an authenticated user.
func (s *HTTPServer) handleCreateBooking(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	userID, err := s.auth.UserID(r)
	if err != nil {
		writeError(w, http.StatusUnauthorized, err.Error())
		return
	}

	var body bookingRequestBody
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	booking, err := s.bookings.RequestBooking(r.Context(), domain.BookingRequest{
		Channel:   models.ChannelUser,
		UserID:    userID,
		VehicleID: body.VehicleID,
		StartDate: body.StartDate,
		EndDate:   body.EndDate,
	})
	if err != nil {
		s.writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, map[string]any{
		"success":            true,
		"booking":            booking,
		"confirmationNumber": booking.ConfirmationCode,
	})
}

// handleCreateGuestBooking admits a booking without an account; contact
// details ride in guestInfo.
func (s *HTTPServer) handleCreateGuestBooking(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	var body bookingRequestBody
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	booking, err := s.bookings.RequestBooking(r.Context(), domain.BookingRequest{
		Channel:   models.ChannelGuest,
		VehicleID: body.VehicleID,
		StartDate: body.StartDate,
		EndDate:   body.EndDate,
		Guest:     body.GuestInfo,
	})
	if err != nil {
		s.writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, map[string]any{
		"success":            true,
		"booking":            booking,
		"confirmationNumber": booking.ConfirmationCode,
	})
}

// handleMyBookings lists the caller's own bookings, newest first.
func (s *HTTPServer) handleMyBookings(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	userID, err := s.auth.UserID(r)
	if err != nil {
		writeError(w, http.StatusUnauthorized, err.Error())
		return
	}

	bookings, err := s.bookings.ListUserBookings(r.Context(), userID)
	if err != nil {
		s.writeServiceError(w, err)
		return
	}
	if bookings == nil {
		bookings = []*models.Booking{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"bookings": bookings})
}

// handleBookingAction routes PUT /api/v1/bookings/{id}/cancel.
func (s *HTTPServer) handleBookingAction(w http.ResponseWriter, r *http.Request) {
	const prefix = "/api/v1/bookings/"
	rest := strings.TrimPrefix(r.URL.Path, prefix)
	parts := strings.Split(strings.Trim(rest, "/"), "/")
	if len(parts) != 2 || parts[1] != "cancel" {
		writeError(w, http.StatusNotFound, "not found")
		return
	}
	if r.Method != http.MethodPut {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	bookingID, err := strconv.ParseInt(parts[0], 10, 64)
	if err != nil || bookingID <= 0 {
		writeError(w, http.StatusBadRequest, "invalid booking ID")
		return
	}

	userID, err := s.auth.UserID(r)
	if err != nil {
		writeError(w, http.StatusUnauthorized, err.Error())
		return
	}

	booking, err := s.bookings.CancelBooking(r.Context(), bookingID, userID)
	if err != nil {
		s.writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"message": "Booking cancelled",
		"booking": booking,
	})
}

// handleExportBookings writes an XLSX of bookings for a period; staff only.
func (s *HTTPServer) handleExportBookings(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	adminName, err := s.auth.CheckAdminKey(r)
	if err != nil {
		writeError(w, http.StatusUnauthorized, err.Error())
		return
	}

	start, err := time.Parse(models.DateLayout, r.URL.Query().Get("start"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid start date; expected YYYY-MM-DD")
		return
	}
	end, err := time.Parse(models.DateLayout, r.URL.Query().Get("end"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid end date; expected YYYY-MM-DD")
		return
	}

	bookings, err := s.bookings.GetBookingsByDateRange(r.Context(), start, end)
	if err != nil {
		s.writeServiceError(w, err)
		return
	}

	filePath, err := s.exporter.ExportBookings(bookings, start, end)
	if err != nil {
		s.logger.Error().Err(err).Msg("export error")
		writeError(w, http.StatusInternalServerError, "export failed")
		return
	}

	s.logger.Info().Str("admin", adminName).Str("file_path", filePath).Msg("bookings exported")
	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"file":    filePath,
		"count":   len(bookings),
	})
}
