package domain

import (
	"time"

	"github.com/google/uuid"
)

type BookingStatus string

const (
	BookingStatusPending   BookingStatus = "pending"
	BookingStatusConfirmed BookingStatus = "confirmed"
	BookingStatusCancelled BookingStatus = "cancelled"
	BookingStatusCompleted BookingStatus = "completed"
)

func (s BookingStatus) Valid() bool {
	switch s {
	case BookingStatusPending, BookingStatusConfirmed, BookingStatusCancelled, BookingStatusCompleted:
		return true
	}
	return false
}

type SeatPreference string

const (
	SeatPreferenceWindow SeatPreference = "window"
	SeatPreferenceAisle  SeatPreference = "aisle"
	SeatPreferenceMiddle SeatPreference = "middle"
)

func (p SeatPreference) Valid() bool {
	switch p {
	case SeatPreferenceWindow, SeatPreferenceAisle, SeatPreferenceMiddle:
		return true
	}
	return false
}

// Booking owns its Passenger rows: PassengerCount always equals the
// number of passenger rows keyed to the booking.
type Booking struct {
	ID               uuid.UUID      `json:"id"`
	UserID           uuid.UUID      `json:"user_id"`
	FlightID         uuid.UUID      `json:"flight_id"`
	BookingReference string         `json:"booking_reference"`
	PassengerCount   int            `json:"passenger_count"`
	TotalPriceCents  int64          `json:"total_price_cents"`
	ContactEmail     string         `json:"contact_email"`
	ContactPhone     string         `json:"contact_phone"`
	SeatPreference   SeatPreference `json:"seat_preference,omitempty"`
	SpecialRequests  string         `json:"special_requests,omitempty"`
	Status           BookingStatus  `json:"status"`
	CreatedAt        time.Time      `json:"created_at"`
	UpdatedAt        time.Time      `json:"updated_at"`
}
