package kafka

import (
	"time"

	"github.com/Domenick1991/skyreserve/internal/domain"
	"github.com/google/uuid"
)

const EventBookingConfirmed = "booking_confirmed"

type BookingEvent struct {
	EventID       string    `json:"event_id"`
	Type          string    `json:"type"`
	BookingID     int64     `json:"booking_id"`
	UserID        int64     `json:"user_id"`
	UserName      string    `json:"user_name"`
	Email         string    `json:"email"`
	FlightID      int64     `json:"flight_id"`
	FlightNumber  string    `json:"flight_number"`
	Origin        string    `json:"origin"`
	Destination   string    `json:"destination"`
	DepartureTime time.Time `json:"departure_time"`
	SeatsBooked   int       `json:"seats_booked"`
	TotalPrice    string    `json:"total_price"`
	Status        string    `json:"status"`
	OccurredAt    time.Time `json:"occurred_at"`
}

func NewBookingEvent(eventType string, c *domain.BookingConfirmation, email string) BookingEvent {
	return BookingEvent{
		EventID:       uuid.NewString(),
		Type:          eventType,
		BookingID:     c.BookingID,
		UserID:        c.UserID,
		UserName:      c.UserName,
		Email:         email,
		FlightID:      c.FlightID,
		FlightNumber:  c.FlightNumber,
		Origin:        c.Origin,
		Destination:   c.Destination,
		DepartureTime: c.DepartureTime,
		SeatsBooked:   c.SeatsBooked,
		TotalPrice:    domain.FormatCents(c.TotalPriceCents),
		Status:        string(c.Status),
		OccurredAt:    time.Now().UTC(),
	}
}
