package domain

import (
	"fmt"
	"time"
)

type Flight struct {
	ID             int64     `json:"id"`
	FlightNumber   string    `json:"flight_number"`
	Origin         string    `json:"origin"`
	Destination    string    `json:"destination"`
	DepartureTime  time.Time `json:"departure_time"`
	ArrivalTime    time.Time `json:"arrival_time"`
	PriceCents     int64     `json:"price_cents"`
	TotalSeats     int       `json:"total_seats"`
	SeatsAvailable int       `json:"seats_available"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// CheckInvariants reports the first violated row invariant, if any.
func (f *Flight) CheckInvariants() error {
	switch {
	case !f.ArrivalTime.After(f.DepartureTime):
		return fmt.Errorf("flight %d: arrival must be after departure", f.ID)
	case f.PriceCents < 0:
		return fmt.Errorf("flight %d: negative price", f.ID)
	case f.SeatsAvailable < 0 || f.SeatsAvailable > f.TotalSeats:
		return fmt.Errorf("flight %d: seats available %d outside 0..%d", f.ID, f.SeatsAvailable, f.TotalSeats)
	}
	return nil
}

// FormatCents renders an amount in minor units as a fixed two-decimal string.
func FormatCents(cents int64) string {
	sign := ""
	if cents < 0 {
		sign = "-"
		cents = -cents
	}
	return fmt.Sprintf("%s%d.%02d", sign, cents/100, cents%100)
}
