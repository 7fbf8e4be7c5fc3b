package service

import (
	"context"
	"io"
	"strings"
	"testing"
	"time"

	"rentdesk/internal/database"
	"rentdesk/internal/domain"
	"rentdesk/internal/models"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

type mockRepo struct {
	mock.Mock
}

func (m *mockRepo) GetBooking(ctx context.Context, id int64) (*models.Booking, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Booking), args.Error(1)
}
func (m *mockRepo) CreateBookingWithLock(ctx context.Context, b *models.Booking) error {
	return m.Called(ctx, b).Error(0)
}
func (m *mockRepo) CancelBookingForUser(ctx context.Context, id, userID int64) (*models.Booking, error) {
	args := m.Called(ctx, id, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Booking), args.Error(1)
}
func (m *mockRepo) GetUserBookings(ctx context.Context, userID int64) ([]*models.Booking, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Booking), args.Error(1)
}
func (m *mockRepo) GetBookingsByDateRange(ctx context.Context, s, e time.Time) ([]*models.Booking, error) {
	args := m.Called(ctx, s, e)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Booking), args.Error(1)
}
func (m *mockRepo) FindConflicting(ctx context.Context, vehicleID int64, s, e time.Time) (*models.Booking, error) {
	args := m.Called(ctx, vehicleID, s, e)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Booking), args.Error(1)
}
func (m *mockRepo) CheckAvailability(ctx context.Context, vehicleID int64, s, e time.Time) (bool, error) {
	args := m.Called(ctx, vehicleID, s, e)
	return args.Bool(0), args.Error(1)
}
func (m *mockRepo) UpdateBookingStatus(ctx context.Context, id int64, status string) error {
	return m.Called(ctx, id, status).Error(0)
}
func (m *mockRepo) GetVehicleByID(ctx context.Context, id int64) (*models.Vehicle, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Vehicle), args.Error(1)
}
func (m *mockRepo) GetActiveVehicles(ctx context.Context) ([]*models.Vehicle, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Vehicle), args.Error(1)
}

type mockEventBus struct {
	mock.Mock
}

func (m *mockEventBus) PublishJSON(et string, p interface{}) error { return m.Called(et, p).Error(0) }

type mockDispatcher struct {
	mock.Mock
}

func (m *mockDispatcher) EnqueueBookingConfirmed(ctx context.Context, b *models.Booking) error {
	return m.Called(ctx, b).Error(0)
}
func (m *mockDispatcher) EnqueueBookingCancelled(ctx context.Context, b *models.Booking) error {
	return m.Called(ctx, b).Error(0)
}

func newTestService() (*BookingService, *mockRepo, *mockEventBus, *mockDispatcher) {
	repo := new(mockRepo)
	bus := new(mockEventBus)
	dispatcher := new(mockDispatcher)
	logger := zerolog.New(io.Discard)
	return NewBookingService(repo, dispatcher, bus, &logger), repo, bus, dispatcher
}

func corolla() *models.Vehicle {
	return &models.Vehicle{ID: 1, Name: "Toyota Corolla", DailyRate: 100, IsActive: true}
}

func TestRequestBooking(t *testing.T) {
	ctx := context.Background()

	t.Run("UserChannel", func(t *testing.T) {
		svc, repo, bus, dispatcher := newTestService()

		repo.On("GetVehicleByID", ctx, int64(1)).Return(corolla(), nil).Once()
		repo.On("CreateBookingWithLock", ctx, mock.AnythingOfType("*models.Booking")).Return(nil).Once()
		bus.On("PublishJSON", mock.Anything, mock.Anything).Return(nil).Once()
		dispatcher.On("EnqueueBookingConfirmed", mock.Anything, mock.AnythingOfType("*models.Booking")).Return(nil).Once()

		booking, err := svc.RequestBooking(ctx, domain.BookingRequest{
			Channel:   models.ChannelUser,
			UserID:    42,
			VehicleID: "1",
			StartDate: "2025-06-01",
			EndDate:   "2025-06-04",
		})
		assert.NoError(t, err)
		assert.Equal(t, models.StatusConfirmed, booking.Status)
		assert.Equal(t, "Toyota Corolla", booking.VehicleName)
		assert.Equal(t, 300.0, booking.TotalPrice)
		assert.True(t, strings.HasPrefix(booking.ConfirmationCode, models.CodePrefixUser))
		repo.AssertExpectations(t)
		dispatcher.AssertExpectations(t)
	})

	t.Run("GuestChannel", func(t *testing.T) {
		svc, repo, bus, dispatcher := newTestService()

		repo.On("GetVehicleByID", ctx, int64(1)).Return(corolla(), nil).Once()
		repo.On("CreateBookingWithLock", ctx, mock.AnythingOfType("*models.Booking")).Return(nil).Once()
		bus.On("PublishJSON", mock.Anything, mock.Anything).Return(nil).Once()
		dispatcher.On("EnqueueBookingConfirmed", mock.Anything, mock.AnythingOfType("*models.Booking")).Return(nil).Once()

		booking, err := svc.RequestBooking(ctx, domain.BookingRequest{
			Channel:   models.ChannelGuest,
			VehicleID: "1",
			StartDate: "2025-06-10",
			EndDate:   "2025-06-12",
			Guest:     &models.GuestInfo{Name: "Alex Doe", Email: "alex@example.com", Phone: "+155501"},
		})
		assert.NoError(t, err)
		assert.True(t, strings.HasPrefix(booking.ConfirmationCode, models.CodePrefixGuest))
		assert.Equal(t, 200.0, booking.TotalPrice)
		repo.AssertExpectations(t)
	})

	t.Run("MissingFieldsReportedTogether", func(t *testing.T) {
		svc, repo, _, _ := newTestService()

		_, err := svc.RequestBooking(ctx, domain.BookingRequest{
			Channel:   models.ChannelGuest,
			VehicleID: "1",
			Guest:     &models.GuestInfo{Name: "Alex Doe", Email: "alex@example.com"},
		})
		var verr *ValidationError
		assert.ErrorAs(t, err, &verr)
		assert.ElementsMatch(t, []string{"startDate", "endDate", "phone"}, verr.Fields)
		repo.AssertNotCalled(t, "GetVehicleByID")
		repo.AssertNotCalled(t, "CreateBookingWithLock")
	})

	t.Run("MalformedVehicleID", func(t *testing.T) {
		svc, repo, _, _ := newTestService()

		for _, id := range []string{"abc", "-1", "0", "1.5"} {
			_, err := svc.RequestBooking(ctx, domain.BookingRequest{
				Channel:   models.ChannelUser,
				UserID:    42,
				VehicleID: id,
				StartDate: "2025-06-01",
				EndDate:   "2025-06-04",
			})
			var verr *ValidationError
			assert.ErrorAs(t, err, &verr, "id %q must be rejected", id)
		}
		repo.AssertNotCalled(t, "GetVehicleByID")
	})

	t.Run("UnknownVehicle", func(t *testing.T) {
		svc, repo, _, dispatcher := newTestService()

		repo.On("GetVehicleByID", ctx, int64(99)).Return(nil, database.ErrVehicleNotFound).Once()

		_, err := svc.RequestBooking(ctx, domain.BookingRequest{
			Channel:   models.ChannelUser,
			UserID:    42,
			VehicleID: "99",
			StartDate: "2025-06-01",
			EndDate:   "2025-06-04",
		})
		assert.ErrorIs(t, err, database.ErrVehicleNotFound)
		dispatcher.AssertNotCalled(t, "EnqueueBookingConfirmed")
	})

	t.Run("InvertedDateRange", func(t *testing.T) {
		svc, repo, _, _ := newTestService()

		repo.On("GetVehicleByID", ctx, int64(1)).Return(corolla(), nil)

		for _, r := range [][2]string{{"2025-06-04", "2025-06-01"}, {"2025-06-04", "2025-06-04"}} {
			_, err := svc.RequestBooking(ctx, domain.BookingRequest{
				Channel:   models.ChannelUser,
				UserID:    42,
				VehicleID: "1",
				StartDate: r[0],
				EndDate:   r[1],
			})
			var verr *ValidationError
			assert.ErrorAs(t, err, &verr)
		}
		repo.AssertNotCalled(t, "CreateBookingWithLock")
	})

	t.Run("ConflictSkipsNotification", func(t *testing.T) {
		svc, repo, bus, dispatcher := newTestService()

		repo.On("GetVehicleByID", ctx, int64(1)).Return(corolla(), nil).Once()
		repo.On("CreateBookingWithLock", ctx, mock.AnythingOfType("*models.Booking")).Return(database.ErrRangeUnavailable).Once()

		_, err := svc.RequestBooking(ctx, domain.BookingRequest{
			Channel:   models.ChannelUser,
			UserID:    42,
			VehicleID: "1",
			StartDate: "2025-06-01",
			EndDate:   "2025-06-04",
		})
		assert.ErrorIs(t, err, database.ErrRangeUnavailable)
		bus.AssertNotCalled(t, "PublishJSON")
		dispatcher.AssertNotCalled(t, "EnqueueBookingConfirmed")
		repo.AssertExpectations(t)
	})

	t.Run("EnqueueFailureDoesNotFailBooking", func(t *testing.T) {
		svc, repo, bus, dispatcher := newTestService()

		repo.On("GetVehicleByID", ctx, int64(1)).Return(corolla(), nil).Once()
		repo.On("CreateBookingWithLock", ctx, mock.AnythingOfType("*models.Booking")).Return(nil).Once()
		bus.On("PublishJSON", mock.Anything, mock.Anything).Return(nil).Once()
		dispatcher.On("EnqueueBookingConfirmed", mock.Anything, mock.AnythingOfType("*models.Booking")).
			Return(assert.AnError).Once()

		booking, err := svc.RequestBooking(ctx, domain.BookingRequest{
			Channel:   models.ChannelUser,
			UserID:    42,
			VehicleID: "1",
			StartDate: "2025-06-01",
			EndDate:   "2025-06-04",
		})
		assert.NoError(t, err)
		assert.NotNil(t, booking)
	})
}

func TestCancelBooking(t *testing.T) {
	ctx := context.Background()

	t.Run("Owner", func(t *testing.T) {
		svc, repo, bus, dispatcher := newTestService()
		cancelled := &models.Booking{ID: 7, UserID: 42, Status: models.StatusCancelled}

		repo.On("CancelBookingForUser", ctx, int64(7), int64(42)).Return(cancelled, nil).Once()
		bus.On("PublishJSON", mock.Anything, mock.Anything).Return(nil).Once()
		dispatcher.On("EnqueueBookingCancelled", mock.Anything, cancelled).Return(nil).Once()

		booking, err := svc.CancelBooking(ctx, 7, 42)
		assert.NoError(t, err)
		assert.Equal(t, models.StatusCancelled, booking.Status)
		repo.AssertExpectations(t)
		dispatcher.AssertExpectations(t)
	})

	t.Run("ForeignBookingLooksAbsent", func(t *testing.T) {
		svc, repo, _, dispatcher := newTestService()

		repo.On("CancelBookingForUser", ctx, int64(7), int64(99)).Return(nil, database.ErrBookingNotFound).Once()

		_, err := svc.CancelBooking(ctx, 7, 99)
		assert.ErrorIs(t, err, database.ErrBookingNotFound)
		dispatcher.AssertNotCalled(t, "EnqueueBookingCancelled")
	})
}

func TestListUserBookings(t *testing.T) {
	ctx := context.Background()
	svc, repo, _, _ := newTestService()
	bookings := []*models.Booking{{ID: 3}, {ID: 1}}

	repo.On("GetUserBookings", ctx, int64(42)).Return(bookings, nil).Once()

	result, err := svc.ListUserBookings(ctx, 42)
	assert.NoError(t, err)
	assert.Equal(t, bookings, result)
	repo.AssertExpectations(t)
}
