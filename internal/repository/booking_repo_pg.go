package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/Yashchoudhary3/flight-app/internal/domain"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const bookingColumns = `id, user_id, flight_id, booking_reference, passenger_count, total_price_cents,
	contact_email, contact_phone, seat_preference, special_requests, status, created_at, updated_at`

const passengerColumns = `id, booking_id, first_name, last_name, date_of_birth, passport_number, seat_number, created_at`

// reserveSeats is the seat ledger discipline: a conditional decrement
// that fails with zero rows affected instead of going negative.
const reserveSeats = `UPDATE flights SET available_seats = available_seats - $2, updated_at = now()
	WHERE id = $1 AND available_seats >= $2`

// releaseSeats clamps at total_seats so a release can never overshoot
// the flight's capacity.
const releaseSeats = `UPDATE flights SET available_seats = LEAST(available_seats + $2, total_seats), updated_at = now()
	WHERE id = $1`

// BookingDetail is the enriched read model: the booking row plus
// whatever joins were available at read time.
type BookingDetail struct {
	domain.Booking
	Flight     *domain.Flight     `json:"flight,omitempty"`
	User       *domain.User       `json:"user,omitempty"`
	Passengers []domain.Passenger `json:"passengers,omitempty"`
}

type BookingListParams struct {
	UserID *uuid.UUID
	Status domain.BookingStatus
	Page   int
	Limit  int
}

type BookingRepository interface {
	// Create inserts the booking and its passengers and decrements the
	// flight's seat ledger in a single transaction.
	Create(ctx context.Context, booking *domain.Booking, passengers []domain.Passenger) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Booking, error)
	// GetDetail is a tolerant read: the booking row is required, flight
	// and passenger enrichment is best-effort.
	GetDetail(ctx context.Context, id uuid.UUID) (*BookingDetail, error)
	ListPassengers(ctx context.Context, bookingID uuid.UUID) ([]domain.Passenger, error)
	List(ctx context.Context, params BookingListParams) ([]BookingDetail, int, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status domain.BookingStatus) (*domain.Booking, error)
	// Modify applies the full passenger reconciliation and the seat
	// ledger delta in one transaction.
	Modify(ctx context.Context, booking *domain.Booking, updates, inserts []domain.Passenger, removeIDs []uuid.UUID, seatDelta int) error
	// CancelDelete releases the booking's seats and hard-deletes the
	// booking row (passengers cascade) in one transaction.
	CancelDelete(ctx context.Context, bookingID, flightID uuid.UUID, seats int) error
}

type PGBookingRepository struct {
	db *pgxpool.Pool
}

func NewBookingRepository(db *pgxpool.Pool) BookingRepository {
	return &PGBookingRepository{db: db}
}

func (r *PGBookingRepository) Create(ctx context.Context, booking *domain.Booking, passengers []domain.Passenger) error {
	tx, err := r.db.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	res, err := tx.Exec(ctx, reserveSeats, booking.FlightID, booking.PassengerCount)
	if err != nil {
		return fmt.Errorf("reserve seats: %w", err)
	}
	if res.RowsAffected() == 0 {
		return ErrNotEnoughSeats
	}

	err = tx.QueryRow(ctx, `INSERT INTO bookings
		(id, user_id, flight_id, booking_reference, passenger_count, total_price_cents,
		 contact_email, contact_phone, seat_preference, special_requests, status)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11)
		RETURNING created_at, updated_at`,
		booking.ID, booking.UserID, booking.FlightID, booking.BookingReference,
		booking.PassengerCount, booking.TotalPriceCents, booking.ContactEmail,
		booking.ContactPhone, booking.SeatPreference, booking.SpecialRequests, booking.Status).
		Scan(&booking.CreatedAt, &booking.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return ErrDuplicateReference
		}
		return fmt.Errorf("insert booking: %w", err)
	}

	for i := range passengers {
		p := &passengers[i]
		if err := tx.QueryRow(ctx, `INSERT INTO passengers
			(id, booking_id, first_name, last_name, date_of_birth, passport_number, seat_number)
			VALUES ($1,$2,$3,$4,$5,$6,$7) RETURNING created_at`,
			p.ID, p.BookingID, p.FirstName, p.LastName, p.DateOfBirth, p.PassportNumber, p.SeatNumber).
			Scan(&p.CreatedAt); err != nil {
			return fmt.Errorf("insert passenger: %w", err)
		}
	}

	return tx.Commit(ctx)
}

func (r *PGBookingRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Booking, error) {
	row := r.db.QueryRow(ctx, "SELECT "+bookingColumns+" FROM bookings WHERE id=$1", id)
	b, err := scanBooking(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return b, nil
}

func (r *PGBookingRepository) GetDetail(ctx context.Context, id uuid.UUID) (*BookingDetail, error) {
	booking, err := r.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	detail := &BookingDetail{Booking: *booking}

	// Enrichment failures degrade to a partial view rather than failing
	// the read.
	row := r.db.QueryRow(ctx, "SELECT "+flightColumns+" FROM flights WHERE id=$1", booking.FlightID)
	if flight, err := scanFlight(row); err == nil {
		detail.Flight = flight
	}
	if passengers, err := r.ListPassengers(ctx, id); err == nil {
		detail.Passengers = passengers
	}
	return detail, nil
}

func (r *PGBookingRepository) ListPassengers(ctx context.Context, bookingID uuid.UUID) ([]domain.Passenger, error) {
	rows, err := r.db.Query(ctx,
		"SELECT "+passengerColumns+" FROM passengers WHERE booking_id=$1 ORDER BY created_at, id", bookingID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	passengers := make([]domain.Passenger, 0)
	for rows.Next() {
		var p domain.Passenger
		if err := rows.Scan(&p.ID, &p.BookingID, &p.FirstName, &p.LastName,
			&p.DateOfBirth, &p.PassportNumber, &p.SeatNumber, &p.CreatedAt); err != nil {
			return nil, err
		}
		passengers = append(passengers, p)
	}
	return passengers, rows.Err()
}

func (r *PGBookingRepository) List(ctx context.Context, params BookingListParams) ([]BookingDetail, int, error) {
	where := "TRUE"
	args := []interface{}{}
	if params.UserID != nil {
		args = append(args, *params.UserID)
		where += fmt.Sprintf(" AND b.user_id = $%d", len(args))
	}
	if params.Status != "" {
		args = append(args, params.Status)
		where += fmt.Sprintf(" AND b.status = $%d", len(args))
	}

	var total int
	if err := r.db.QueryRow(ctx, "SELECT count(*) FROM bookings b WHERE "+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count bookings: %w", err)
	}

	page := params.Page
	if page < 1 {
		page = 1
	}
	limit := params.Limit
	if limit < 1 {
		limit = 20
	}
	args = append(args, limit, (page-1)*limit)

	query := fmt.Sprintf(`SELECT
		b.id, b.user_id, b.flight_id, b.booking_reference, b.passenger_count, b.total_price_cents,
		b.contact_email, b.contact_phone, b.seat_preference, b.special_requests, b.status, b.created_at, b.updated_at,
		f.id, f.flight_number, f.airline, f.from_airport, f.to_airport, f.from_location, f.to_location,
		f.departure_time, f.arrival_time, f.duration_minutes, f.class, f.price_cents, f.total_seats,
		f.available_seats, f.status, f.created_at, f.updated_at,
		u.id, u.email, u.first_name, u.last_name, u.role
		FROM bookings b
		JOIN flights f ON f.id = b.flight_id
		JOIN users u ON u.id = b.user_id
		WHERE %s
		ORDER BY b.created_at DESC
		LIMIT $%d OFFSET $%d`, where, len(args)-1, len(args))

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("query bookings: %w", err)
	}
	defer rows.Close()

	details := make([]BookingDetail, 0)
	for rows.Next() {
		var d BookingDetail
		var f domain.Flight
		var u domain.User
		if err := rows.Scan(
			&d.ID, &d.UserID, &d.FlightID, &d.BookingReference, &d.PassengerCount, &d.TotalPriceCents,
			&d.ContactEmail, &d.ContactPhone, &d.SeatPreference, &d.SpecialRequests, &d.Status, &d.CreatedAt, &d.UpdatedAt,
			&f.ID, &f.FlightNumber, &f.Airline, &f.FromAirport, &f.ToAirport, &f.FromLocation, &f.ToLocation,
			&f.DepartureTime, &f.ArrivalTime, &f.DurationMinutes, &f.Class, &f.PriceCents, &f.TotalSeats,
			&f.AvailableSeats, &f.Status, &f.CreatedAt, &f.UpdatedAt,
			&u.ID, &u.Email, &u.FirstName, &u.LastName, &u.Role); err != nil {
			return nil, 0, err
		}
		d.Flight = &f
		d.User = &u
		details = append(details, d)
	}
	return details, total, rows.Err()
}

func (r *PGBookingRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status domain.BookingStatus) (*domain.Booking, error) {
	row := r.db.QueryRow(ctx,
		"UPDATE bookings SET status=$2, updated_at=now() WHERE id=$1 RETURNING "+bookingColumns, id, status)
	b, err := scanBooking(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return b, nil
}

func (r *PGBookingRepository) Modify(ctx context.Context, booking *domain.Booking, updates, inserts []domain.Passenger, removeIDs []uuid.UUID, seatDelta int) error {
	tx, err := r.db.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	if seatDelta > 0 {
		res, err := tx.Exec(ctx, reserveSeats, booking.FlightID, seatDelta)
		if err != nil {
			return fmt.Errorf("reserve seats: %w", err)
		}
		if res.RowsAffected() == 0 {
			return ErrNotEnoughSeats
		}
	} else if seatDelta < 0 {
		if _, err := tx.Exec(ctx, releaseSeats, booking.FlightID, -seatDelta); err != nil {
			return fmt.Errorf("release seats: %w", err)
		}
	}

	err = tx.QueryRow(ctx, `UPDATE bookings SET passenger_count=$2, total_price_cents=$3, updated_at=now()
		WHERE id=$1 RETURNING updated_at`,
		booking.ID, booking.PassengerCount, booking.TotalPriceCents).
		Scan(&booking.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrNotFound
		}
		return fmt.Errorf("update booking: %w", err)
	}

	for _, p := range updates {
		if _, err := tx.Exec(ctx, `UPDATE passengers SET first_name=$2, last_name=$3, date_of_birth=$4, passport_number=$5
			WHERE id=$1 AND booking_id=$6`,
			p.ID, p.FirstName, p.LastName, p.DateOfBirth, p.PassportNumber, booking.ID); err != nil {
			return fmt.Errorf("update passenger: %w", err)
		}
	}
	for _, p := range inserts {
		if _, err := tx.Exec(ctx, `INSERT INTO passengers
			(id, booking_id, first_name, last_name, date_of_birth, passport_number, seat_number)
			VALUES ($1,$2,$3,$4,$5,$6,$7)`,
			p.ID, booking.ID, p.FirstName, p.LastName, p.DateOfBirth, p.PassportNumber, p.SeatNumber); err != nil {
			return fmt.Errorf("insert passenger: %w", err)
		}
	}
	if len(removeIDs) > 0 {
		if _, err := tx.Exec(ctx, `DELETE FROM passengers WHERE booking_id=$1 AND id = ANY($2)`,
			booking.ID, removeIDs); err != nil {
			return fmt.Errorf("delete passengers: %w", err)
		}
	}

	return tx.Commit(ctx)
}

func (r *PGBookingRepository) CancelDelete(ctx context.Context, bookingID, flightID uuid.UUID, seats int) error {
	tx, err := r.db.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, releaseSeats, flightID, seats); err != nil {
		return fmt.Errorf("release seats: %w", err)
	}

	res, err := tx.Exec(ctx, `DELETE FROM bookings WHERE id=$1`, bookingID)
	if err != nil {
		return fmt.Errorf("delete booking: %w", err)
	}
	if res.RowsAffected() == 0 {
		return ErrNotFound
	}

	return tx.Commit(ctx)
}

func scanBooking(row rowScanner) (*domain.Booking, error) {
	var b domain.Booking
	err := row.Scan(&b.ID, &b.UserID, &b.FlightID, &b.BookingReference, &b.PassengerCount,
		&b.TotalPriceCents, &b.ContactEmail, &b.ContactPhone, &b.SeatPreference,
		&b.SpecialRequests, &b.Status, &b.CreatedAt, &b.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &b, nil
}

var _ BookingRepository = (*PGBookingRepository)(nil)
