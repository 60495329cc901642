package repository

import "errors"

var (
	ErrNotFound           = errors.New("not found")
	ErrNotEnoughSeats     = errors.New("not enough available seats")
	ErrDuplicateReference = errors.New("booking reference already exists")
	ErrDuplicateFlight    = errors.New("flight already exists")
	ErrFlightHasBookings  = errors.New("flight has existing bookings")
)
