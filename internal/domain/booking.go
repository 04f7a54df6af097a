package domain

import "time"

type BookingStatus string

const (
	BookingStatusConfirmed BookingStatus = "confirmed"
)

type Booking struct {
	ID              int64
	UserID          int64
	FlightID        int64
	SeatsBooked     int
	TotalPriceCents int64
	Status          BookingStatus
	BookingDate     time.Time
}

// BookingConfirmation is what a committed reservation returns to the caller.
type BookingConfirmation struct {
	BookingID       int64
	FlightID        int64
	FlightNumber    string
	Origin          string
	Destination     string
	DepartureTime   time.Time
	ArrivalTime     time.Time
	SeatsBooked     int
	TotalPriceCents int64
	Status          BookingStatus
	BookingDate     time.Time
	UserID          int64
	UserName        string
}

func NewBookingConfirmation(b *Booking, f *Flight, u *User) *BookingConfirmation {
	return &BookingConfirmation{
		BookingID:       b.ID,
		FlightID:        f.ID,
		FlightNumber:    f.FlightNumber,
		Origin:          f.Origin,
		Destination:     f.Destination,
		DepartureTime:   f.DepartureTime,
		ArrivalTime:     f.ArrivalTime,
		SeatsBooked:     b.SeatsBooked,
		TotalPriceCents: b.TotalPriceCents,
		Status:          b.Status,
		BookingDate:     b.BookingDate,
		UserID:          u.ID,
		UserName:        u.Name,
	}
}
