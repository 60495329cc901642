package domain

import (
	"time"

	"github.com/google/uuid"
)

type Passenger struct {
	ID             uuid.UUID  `json:"id"`
	BookingID      uuid.UUID  `json:"booking_id"`
	FirstName      string     `json:"first_name"`
	LastName       string     `json:"last_name"`
	DateOfBirth    *time.Time `json:"date_of_birth,omitempty"`
	PassportNumber string     `json:"passport_number,omitempty"`
	SeatNumber     string     `json:"seat_number,omitempty"`
	CreatedAt      time.Time  `json:"created_at"`
}
