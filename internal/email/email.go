package email

import (
	"context"
	"fmt"
	"strings"

	"github.com/Domenick1991/skyreserve/internal/kafka"
	"go.uber.org/zap"
)

type Message struct {
	To      string
	Subject string
	Body    string
}

// Sender renders booking notifications. Delivery is a structured log line;
// there is no mail transport behind it.
type Sender struct {
	from string
	log  *zap.Logger
}

func NewSender(from string, log *zap.Logger) *Sender {
	return &Sender{from: from, log: log.With(zap.String("service", "email"))}
}

func (s *Sender) Compose(event kafka.BookingEvent) (Message, error) {
	if event.Email == "" {
		return Message{}, fmt.Errorf("booking %d: no recipient", event.BookingID)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Hello %s,\n\n", event.UserName)
	fmt.Fprintf(&b, "Your booking #%d is %s.\n", event.BookingID, event.Status)
	fmt.Fprintf(&b, "Flight %s, %s to %s, departing %s UTC.\n",
		event.FlightNumber, event.Origin, event.Destination, event.DepartureTime.UTC().Format("2006-01-02 15:04"))
	fmt.Fprintf(&b, "Seats: %d. Total: %s.\n", event.SeatsBooked, event.TotalPrice)

	return Message{
		To:      event.Email,
		Subject: fmt.Sprintf("Booking %d confirmed: %s", event.BookingID, event.FlightNumber),
		Body:    b.String(),
	}, nil
}

// Send delivers the notification for event. Events other than confirmations
// and events without a recipient are skipped.
func (s *Sender) Send(ctx context.Context, event kafka.BookingEvent) error {
	if event.Type != kafka.EventBookingConfirmed {
		s.log.Debug("skip event", zap.String("type", event.Type), zap.String("event_id", event.EventID))
		return nil
	}

	msg, err := s.Compose(event)
	if err != nil {
		s.log.Warn("skip notification", zap.String("event_id", event.EventID), zap.Error(err))
		return nil
	}

	s.log.Info("send email",
		zap.String("from", s.from),
		zap.String("to", msg.To),
		zap.String("subject", msg.Subject),
		zap.Int64("booking_id", event.BookingID),
	)
	return ctx.Err()
}
