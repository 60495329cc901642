package domain

import (
	"time"

	"github.com/google/uuid"
)

type FlightStatus string

const (
	FlightStatusScheduled FlightStatus = "scheduled"
	FlightStatusDelayed   FlightStatus = "delayed"
	FlightStatusCancelled FlightStatus = "cancelled"
	FlightStatusDeparted  FlightStatus = "departed"
	FlightStatusArrived   FlightStatus = "arrived"
)

func (s FlightStatus) Valid() bool {
	switch s {
	case FlightStatusScheduled, FlightStatusDelayed, FlightStatusCancelled, FlightStatusDeparted, FlightStatusArrived:
		return true
	}
	return false
}

type CabinClass string

const (
	CabinClassEconomy        CabinClass = "economy"
	CabinClassPremiumEconomy CabinClass = "premium_economy"
	CabinClassBusiness       CabinClass = "business"
	CabinClassFirst          CabinClass = "first"
)

func (c CabinClass) Valid() bool {
	switch c {
	case CabinClassEconomy, CabinClassPremiumEconomy, CabinClassBusiness, CabinClassFirst:
		return true
	}
	return false
}

// Flight is a single scheduled departure. AvailableSeats is the seat
// ledger: 0 <= AvailableSeats <= TotalSeats, mutated only through
// conditional updates in the repository.
type Flight struct {
	ID              uuid.UUID    `json:"id"`
	FlightNumber    string       `json:"flight_number"`
	Airline         string       `json:"airline"`
	FromAirport     string       `json:"from_airport"`
	ToAirport       string       `json:"to_airport"`
	FromLocation    string       `json:"from_location"`
	ToLocation      string       `json:"to_location"`
	DepartureTime   time.Time    `json:"departure_time"`
	ArrivalTime     time.Time    `json:"arrival_time"`
	DurationMinutes int          `json:"duration"`
	Class           CabinClass   `json:"class"`
	PriceCents      int64        `json:"price_cents"`
	TotalSeats      int          `json:"total_seats"`
	AvailableSeats  int          `json:"available_seats"`
	Status          FlightStatus `json:"status"`
	CreatedAt       time.Time    `json:"created_at"`
	UpdatedAt       time.Time    `json:"updated_at"`
}
