package email

import (
	"context"
	"testing"
	"time"

	"github.com/Domenick1991/skyreserve/internal/kafka"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func sampleEvent() kafka.BookingEvent {
	return kafka.BookingEvent{
		EventID:       "e-1",
		Type:          kafka.EventBookingConfirmed,
		BookingID:     42,
		UserName:      "Ada",
		Email:         "ada@example.com",
		FlightNumber:  "BA117",
		Origin:        "London",
		Destination:   "New York",
		DepartureTime: time.Date(2026, 5, 1, 9, 0, 0, 0, time.UTC),
		SeatsBooked:   2,
		TotalPrice:    "200.00",
		Status:        "confirmed",
	}
}

func TestSender_Compose(t *testing.T) {
	s := NewSender("noreply@skyreserve.test", zap.NewNop())

	msg, err := s.Compose(sampleEvent())
	require.NoError(t, err)

	assert.Equal(t, "ada@example.com", msg.To)
	assert.Equal(t, "Booking 42 confirmed: BA117", msg.Subject)
	assert.Contains(t, msg.Body, "London to New York, departing 2026-05-01 09:00 UTC")
	assert.Contains(t, msg.Body, "Seats: 2. Total: 200.00.")

	noRecipient := sampleEvent()
	noRecipient.Email = ""
	_, err = s.Compose(noRecipient)
	assert.Error(t, err)
}

func TestSender_Send(t *testing.T) {
	core, logs := observer.New(zap.DebugLevel)
	s := NewSender("noreply@skyreserve.test", zap.New(core))

	require.NoError(t, s.Send(context.Background(), sampleEvent()))

	other := sampleEvent()
	other.Type = "booking_cancelled"
	require.NoError(t, s.Send(context.Background(), other))

	sent := logs.FilterMessage("send email").All()
	require.Len(t, sent, 1)
	assert.Equal(t, "ada@example.com", sent[0].ContextMap()["to"])
}
