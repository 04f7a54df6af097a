package api

import (
	"context"
	"time"

	"github.com/Domenick1991/skyreserve/internal/domain"
	"github.com/Domenick1991/skyreserve/internal/service/auth"
	"github.com/Domenick1991/skyreserve/internal/service/booking"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/mock"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type MockBookingUseCase struct {
	mock.Mock
}

func (m *MockBookingUseCase) Reserve(ctx context.Context, input booking.ReserveInput) (*domain.BookingConfirmation, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.BookingConfirmation), args.Error(1)
}

func (m *MockBookingUseCase) ListUserBookings(ctx context.Context, userID int64) ([]domain.BookingConfirmation, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.BookingConfirmation), args.Error(1)
}

type MockFlightUseCase struct {
	mock.Mock
}

func (m *MockFlightUseCase) Search(ctx context.Context, filter domain.FlightFilter) (*domain.FlightPage, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.FlightPage), args.Error(1)
}

func (m *MockFlightUseCase) GetByID(ctx context.Context, id int64) (*domain.Flight, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Flight), args.Error(1)
}

type MockAuthUseCase struct {
	mock.Mock
}

func (m *MockAuthUseCase) Register(ctx context.Context, input auth.RegisterInput) (*auth.Result, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*auth.Result), args.Error(1)
}

func (m *MockAuthUseCase) Login(ctx context.Context, email, password string) (*auth.Result, error) {
	args := m.Called(ctx, email, password)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*auth.Result), args.Error(1)
}

func (m *MockAuthUseCase) ParseToken(token string) (int64, error) {
	args := m.Called(token)
	return args.Get(0).(int64), args.Error(1)
}

type MockLimiter struct {
	mock.Mock
}

func (m *MockLimiter) Allow(ctx context.Context, key string) (bool, time.Duration, error) {
	args := m.Called(ctx, key)
	return args.Bool(0), args.Get(1).(time.Duration), args.Error(2)
}

type stubPinger struct{ err error }

func (p stubPinger) Ping(context.Context) error { return p.err }

var departure = time.Date(2026, 5, 1, 9, 0, 0, 0, time.UTC)

func sampleFlight() domain.Flight {
	return domain.Flight{
		ID:             1,
		FlightNumber:   "BA117",
		Origin:         "London",
		Destination:    "New York",
		DepartureTime:  departure,
		ArrivalTime:    departure.Add(8 * time.Hour),
		PriceCents:     10000,
		TotalSeats:     3,
		SeatsAvailable: 3,
	}
}

func sampleConfirmation() *domain.BookingConfirmation {
	return &domain.BookingConfirmation{
		BookingID:       42,
		FlightID:        1,
		FlightNumber:    "BA117",
		Origin:          "London",
		Destination:     "New York",
		DepartureTime:   departure,
		ArrivalTime:     departure.Add(8 * time.Hour),
		SeatsBooked:     2,
		TotalPriceCents: 20000,
		Status:          domain.BookingStatusConfirmed,
		BookingDate:     departure.Add(-48 * time.Hour),
		UserID:          7,
		UserName:        "Ada",
	}
}
