package email

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/Yashchoudhary3/flight-app/internal/kafka"
)

// Sender renders booking confirmations. Outbound delivery is handled by
// a transactional-email provider; this writes the rendered message to
// the provider hand-off (stdout in development).
type Sender struct {
	out io.Writer
}

func NewSender() *Sender {
	return &Sender{out: os.Stdout}
}

func NewSenderTo(out io.Writer) *Sender {
	return &Sender{out: out}
}

func (s *Sender) Send(ctx context.Context, event kafka.BookingEvent) error {
	subject := "Your Flight Booking Confirmation"
	if event.Type == "booking_cancelled" {
		subject = "Your Booking Has Been Cancelled"
	}

	_, err := fmt.Fprintf(s.out,
		"To: %s\nSubject: %s\n\nFlight: %s (%s)\nFrom: %s (%s)\nTo: %s (%s)\nDeparture: %s\nPassengers: %d\nTotal: %.2f\nBooking Reference: %s\n\n",
		event.ContactEmail, subject,
		event.FlightNumber, event.Airline,
		event.FromLocation, event.FromAirport,
		event.ToLocation, event.ToAirport,
		event.DepartureTime.Format("Mon, 02 Jan 2006 15:04"),
		event.PassengerCount,
		float64(event.TotalPriceCents)/100,
		event.Reference)
	return err
}
