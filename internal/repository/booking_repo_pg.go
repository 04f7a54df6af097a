package repository

import (
	"context"

	"github.com/Domenick1991/skyreserve/internal/domain"
)

type BookingRepository interface {
	Create(ctx context.Context, booking *domain.Booking) error
	ListByUser(ctx context.Context, userID int64) ([]domain.BookingConfirmation, error)
}

type PGBookingRepository struct {
	db DB
}

func NewBookingRepository(db DB) BookingRepository {
	return &PGBookingRepository{db: db}
}

// Create inserts the booking and sets its generated ID.
func (r *PGBookingRepository) Create(ctx context.Context, booking *domain.Booking) error {
	err := conn(ctx, r.db).QueryRow(ctx, `INSERT INTO bookings (user_id, flight_id, seats_booked, total_price_cents, status, booking_date)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id`, booking.UserID, booking.FlightID, booking.SeatsBooked, booking.TotalPriceCents, booking.Status, booking.BookingDate).
		Scan(&booking.ID)
	if err != nil {
		return classify("insert booking", err)
	}
	return nil
}

func (r *PGBookingRepository) ListByUser(ctx context.Context, userID int64) ([]domain.BookingConfirmation, error) {
	rows, err := conn(ctx, r.db).Query(ctx, `SELECT b.id, b.flight_id, f.flight_number, f.origin, f.destination, f.departure_time, f.arrival_time,
			b.seats_booked, b.total_price_cents, b.status, b.booking_date, u.id, u.name
		FROM bookings b
		JOIN flights f ON f.id = b.flight_id
		JOIN users u ON u.id = b.user_id
		WHERE b.user_id = $1
		ORDER BY b.booking_date DESC, b.id DESC`, userID)
	if err != nil {
		return nil, classify("list bookings", err)
	}
	defer rows.Close()

	bookings := make([]domain.BookingConfirmation, 0)
	for rows.Next() {
		var c domain.BookingConfirmation
		if err := rows.Scan(&c.BookingID, &c.FlightID, &c.FlightNumber, &c.Origin, &c.Destination, &c.DepartureTime, &c.ArrivalTime,
			&c.SeatsBooked, &c.TotalPriceCents, &c.Status, &c.BookingDate, &c.UserID, &c.UserName); err != nil {
			return nil, classify("scan booking", err)
		}
		bookings = append(bookings, c)
	}
	if err := rows.Err(); err != nil {
		return nil, classify("list bookings", err)
	}
	return bookings, nil
}

var _ BookingRepository = (*PGBookingRepository)(nil)
