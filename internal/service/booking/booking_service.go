package booking

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/Domenick1991/skyreserve/internal/domain"
	"github.com/Domenick1991/skyreserve/internal/kafka"
	"github.com/Domenick1991/skyreserve/internal/metrics"
	"github.com/Domenick1991/skyreserve/internal/repository"
	"go.uber.org/zap"
)

type BookingUseCase interface {
	Reserve(ctx context.Context, input ReserveInput) (*domain.BookingConfirmation, error)
	ListUserBookings(ctx context.Context, userID int64) ([]domain.BookingConfirmation, error)
}

type Cache interface {
	BumpCatalogVersion(ctx context.Context) error
}

type Producer interface {
	PublishWithRetry(ctx context.Context, topic, key string, value any, maxRetries int) error
}

// ReserveInput is one reservation request. UserID comes from the
// authenticated identity, never from the request body.
type ReserveInput struct {
	FlightID       int64
	UserID         int64
	SeatsRequested int
}

const (
	defaultMaxAttempts = 3
	defaultBackoff     = 25 * time.Millisecond
	publishAttempts    = 2
)

type BookingService struct {
	tx                 repository.Transactor
	flights            repository.FlightRepository
	bookings           repository.BookingRepository
	users              repository.UserRepository
	cache              Cache
	producer           Producer
	bookingTopic       string
	notificationsTopic string
	maxAttempts        int
	backoff            time.Duration
	now                func() time.Time
	log                *zap.Logger
}

type BookingServiceOption func(*BookingService)

func WithCache(cache Cache) BookingServiceOption {
	return func(s *BookingService) {
		s.cache = cache
	}
}

func WithProducer(producer Producer, bookingTopic string) BookingServiceOption {
	return func(s *BookingService) {
		s.producer = producer
		s.bookingTopic = bookingTopic
	}
}

func WithNotificationsTopic(topic string) BookingServiceOption {
	return func(s *BookingService) {
		s.notificationsTopic = topic
	}
}

// WithRetry sets how many times a reservation is attempted on lock conflicts
// and the base delay between attempts. The n-th retry waits n*backoff.
func WithRetry(maxAttempts int, backoff time.Duration) BookingServiceOption {
	return func(s *BookingService) {
		if maxAttempts > 0 {
			s.maxAttempts = maxAttempts
		}
		if backoff >= 0 {
			s.backoff = backoff
		}
	}
}

func WithClock(now func() time.Time) BookingServiceOption {
	return func(s *BookingService) {
		s.now = now
	}
}

func NewBookingService(
	tx repository.Transactor,
	flights repository.FlightRepository,
	bookings repository.BookingRepository,
	users repository.UserRepository,
	log *zap.Logger,
	opts ...BookingServiceOption,
) *BookingService {
	service := &BookingService{
		tx:          tx,
		flights:     flights,
		bookings:    bookings,
		users:       users,
		maxAttempts: defaultMaxAttempts,
		backoff:     defaultBackoff,
		now:         time.Now,
		log:         log.With(zap.String("service", "booking")),
	}
	for _, opt := range opts {
		opt(service)
	}
	return service
}

// Reserve books input.SeatsRequested seats on one flight for one user. The
// booking insert and the seat decrement commit together or not at all.
// Errors are *domain.ReservationError except for unclassified store failures.
func (s *BookingService) Reserve(ctx context.Context, input ReserveInput) (*domain.BookingConfirmation, error) {
	start := time.Now()

	confirmation, email, err := s.reserve(ctx, input)

	outcome := "confirmed"
	if err != nil {
		outcome = domain.KindOf(err).String()
	}
	metrics.ObserveReservation(outcome, input.SeatsRequested, time.Since(start))
	if err != nil {
		return nil, err
	}

	s.afterCommit(ctx, confirmation, email)
	return confirmation, nil
}

func (s *BookingService) reserve(ctx context.Context, input ReserveInput) (*domain.BookingConfirmation, string, error) {
	if input.SeatsRequested <= 0 {
		return nil, "", domain.InvalidRequest("seats must be a positive integer")
	}

	log := s.log.With(
		zap.Int64("flight_id", input.FlightID),
		zap.Int64("user_id", input.UserID),
		zap.Int("seats", input.SeatsRequested),
	)

	var lastErr error
	for attempt := 1; attempt <= s.maxAttempts; attempt++ {
		log.Debug("reservation attempt", zap.Int("attempt", attempt))

		confirmation, email, err := s.attempt(ctx, input)
		if err == nil {
			log.Info("reservation committed",
				zap.Int64("booking_id", confirmation.BookingID),
				zap.Int("attempt", attempt))
			return confirmation, email, nil
		}

		switch {
		case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
			return nil, "", domain.Transient(input.FlightID, err)
		case !retryable(err):
			if domain.KindOf(err) == domain.KindUnknown {
				log.Error("reservation failed", zap.Error(err))
			}
			return nil, "", err
		}

		lastErr = err
		if attempt == s.maxAttempts {
			break
		}

		metrics.ReservationRetried()
		log.Warn("transient store error, retrying", zap.Int("attempt", attempt), zap.Error(err))

		select {
		case <-ctx.Done():
			return nil, "", domain.Transient(input.FlightID, ctx.Err())
		case <-time.After(s.backoff * time.Duration(attempt)):
		}
	}

	log.Warn("reservation retries exhausted", zap.Int("attempts", s.maxAttempts), zap.Error(lastErr))
	return nil, "", domain.Transient(input.FlightID, lastErr)
}

// retryable reports whether a failed attempt left no effects and may be
// re-run from a fresh read.
func retryable(err error) bool {
	return errors.Is(err, repository.ErrConflict) || errors.Is(err, repository.ErrUnavailable)
}

// attempt runs one unit of work from a fresh locked read.
func (s *BookingService) attempt(ctx context.Context, input ReserveInput) (*domain.BookingConfirmation, string, error) {
	var (
		confirmation *domain.BookingConfirmation
		email        string
	)

	err := s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		flight, err := s.flights.GetForUpdate(ctx, input.FlightID)
		if errors.Is(err, repository.ErrNotFound) {
			return domain.FlightNotFound(input.FlightID)
		}
		if err != nil {
			return err
		}
		if err := flight.CheckInvariants(); err != nil {
			return fmt.Errorf("locked flight row: %w", err)
		}

		user, err := s.users.GetByID(ctx, input.UserID)
		if errors.Is(err, repository.ErrNotFound) {
			return domain.UserNotFound(input.UserID)
		}
		if err != nil {
			return err
		}

		if flight.SeatsAvailable < input.SeatsRequested {
			return domain.InsufficientSeats(flight.ID, input.SeatsRequested, flight.SeatsAvailable)
		}

		booking := &domain.Booking{
			UserID:          user.ID,
			FlightID:        flight.ID,
			SeatsBooked:     input.SeatsRequested,
			TotalPriceCents: flight.PriceCents * int64(input.SeatsRequested),
			Status:          domain.BookingStatusConfirmed,
			BookingDate:     s.now().UTC(),
		}
		if err := s.bookings.Create(ctx, booking); err != nil {
			return err
		}

		remaining, err := s.flights.DecrementSeats(ctx, flight.ID, input.SeatsRequested)
		if err != nil {
			return err
		}
		flight.SeatsAvailable = remaining

		confirmation = domain.NewBookingConfirmation(booking, flight, user)
		email = user.Email
		return nil
	})
	if err != nil {
		return nil, "", err
	}
	return confirmation, email, nil
}

// afterCommit runs the best-effort side effects of a committed reservation.
// Failures are logged and never change the result.
func (s *BookingService) afterCommit(ctx context.Context, c *domain.BookingConfirmation, email string) {
	ctx = context.WithoutCancel(ctx)
	log := s.log.With(zap.Int64("booking_id", c.BookingID))

	if s.cache != nil {
		if err := s.cache.BumpCatalogVersion(ctx); err != nil {
			log.Warn("failed to invalidate catalog cache", zap.Error(err))
		}
	}

	if s.producer == nil || s.bookingTopic == "" {
		return
	}
	event := kafka.NewBookingEvent(kafka.EventBookingConfirmed, c, email)
	key := strconv.FormatInt(c.BookingID, 10)

	if err := s.producer.PublishWithRetry(ctx, s.bookingTopic, key, event, publishAttempts); err != nil {
		log.Warn("failed to publish booking event", zap.String("topic", s.bookingTopic), zap.Error(err))
	}
	if s.notificationsTopic != "" {
		if err := s.producer.PublishWithRetry(ctx, s.notificationsTopic, key, event, publishAttempts); err != nil {
			log.Warn("failed to publish booking event", zap.String("topic", s.notificationsTopic), zap.Error(err))
		}
	}
}

func (s *BookingService) ListUserBookings(ctx context.Context, userID int64) ([]domain.BookingConfirmation, error) {
	if userID <= 0 {
		return nil, domain.InvalidRequest("user id must be positive")
	}
	return s.bookings.ListByUser(ctx, userID)
}

var _ BookingUseCase = (*BookingService)(nil)
