package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/Yashchoudhary3/flight-app/internal/domain"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

const flightColumns = `id, flight_number, airline, from_airport, to_airport, from_location, to_location,
	departure_time, arrival_time, duration_minutes, class, price_cents, total_seats, available_seats,
	status, created_at, updated_at`

// FlightSearchParams filters and orders a flight search. From and To
// match airport codes case-insensitively as substrings; Date narrows to
// a single calendar day; Passengers requires that many available seats.
type FlightSearchParams struct {
	From       string
	To         string
	Date       *time.Time
	Class      domain.CabinClass
	Passengers int
	Sort       string
	Order      string
	Page       int
	Limit      int
}

type RouteCount struct {
	Route string `json:"route"`
	Count int    `json:"count"`
}

type FlightRepository interface {
	Search(ctx context.Context, params FlightSearchParams) ([]domain.Flight, int, error)
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Flight, error)
	Create(ctx context.Context, flight *domain.Flight) error
	Update(ctx context.Context, flight *domain.Flight) error
	Delete(ctx context.Context, id uuid.UUID) error
	Exists(ctx context.Context, flightNumber string, departure time.Time) (bool, error)
	HasBookings(ctx context.Context, id uuid.UUID) (bool, error)
	PopularRoutes(ctx context.Context, limit int) ([]RouteCount, error)
}

type PGFlightRepository struct {
	db *pgxpool.Pool
}

func NewFlightRepository(db *pgxpool.Pool) FlightRepository {
	return &PGFlightRepository{db: db}
}

// sortColumns whitelists user-supplied sort keys.
var sortColumns = map[string]string{
	"departure_time": "departure_time",
	"price":          "price_cents",
	"duration":       "duration_minutes",
}

func (r *PGFlightRepository) Search(ctx context.Context, params FlightSearchParams) ([]domain.Flight, int, error) {
	where := []string{"departure_time > now()"}
	args := []interface{}{}

	arg := func(v interface{}) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}

	if params.From != "" {
		where = append(where, fmt.Sprintf("from_airport ILIKE %s", arg("%"+params.From+"%")))
	}
	if params.To != "" {
		where = append(where, fmt.Sprintf("to_airport ILIKE %s", arg("%"+params.To+"%")))
	}
	if params.Date != nil {
		day := params.Date.Truncate(24 * time.Hour)
		where = append(where, fmt.Sprintf("departure_time >= %s", arg(day)))
		where = append(where, fmt.Sprintf("departure_time < %s", arg(day.Add(24*time.Hour))))
	}
	if params.Class != "" {
		where = append(where, fmt.Sprintf("class = %s", arg(string(params.Class))))
	}
	if params.Passengers > 0 {
		where = append(where, fmt.Sprintf("available_seats >= %s", arg(params.Passengers)))
	}

	cond := strings.Join(where, " AND ")

	var total int
	if err := r.db.QueryRow(ctx, "SELECT count(*) FROM flights WHERE "+cond, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count flights: %w", err)
	}

	sortCol, ok := sortColumns[params.Sort]
	if !ok {
		sortCol = "departure_time"
	}
	dir := "ASC"
	if strings.EqualFold(params.Order, "desc") {
		dir = "DESC"
	}

	page := params.Page
	if page < 1 {
		page = 1
	}
	limit := params.Limit
	if limit < 1 {
		limit = 20
	}

	query := fmt.Sprintf("SELECT %s FROM flights WHERE %s ORDER BY %s %s LIMIT %s OFFSET %s",
		flightColumns, cond, sortCol, dir, arg(limit), arg((page-1)*limit))

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("query flights: %w", err)
	}
	defer rows.Close()

	flights := make([]domain.Flight, 0)
	for rows.Next() {
		f, err := scanFlight(rows)
		if err != nil {
			return nil, 0, err
		}
		flights = append(flights, *f)
	}
	return flights, total, rows.Err()
}

func (r *PGFlightRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Flight, error) {
	row := r.db.QueryRow(ctx, "SELECT "+flightColumns+" FROM flights WHERE id=$1", id)
	f, err := scanFlight(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return f, nil
}

func (r *PGFlightRepository) Create(ctx context.Context, flight *domain.Flight) error {
	err := r.db.QueryRow(ctx, `INSERT INTO flights
		(id, flight_number, airline, from_airport, to_airport, from_location, to_location,
		 departure_time, arrival_time, duration_minutes, class, price_cents, total_seats, available_seats, status)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15)
		RETURNING created_at, updated_at`,
		flight.ID, flight.FlightNumber, flight.Airline, flight.FromAirport, flight.ToAirport,
		flight.FromLocation, flight.ToLocation, flight.DepartureTime, flight.ArrivalTime,
		flight.DurationMinutes, flight.Class, flight.PriceCents, flight.TotalSeats,
		flight.AvailableSeats, flight.Status).
		Scan(&flight.CreatedAt, &flight.UpdatedAt)
	if isUniqueViolation(err) {
		return ErrDuplicateFlight
	}
	return err
}

func (r *PGFlightRepository) Update(ctx context.Context, flight *domain.Flight) error {
	err := r.db.QueryRow(ctx, `UPDATE flights SET
		flight_number=$2, airline=$3, from_airport=$4, to_airport=$5, from_location=$6, to_location=$7,
		departure_time=$8, arrival_time=$9, duration_minutes=$10, class=$11, price_cents=$12,
		total_seats=$13, available_seats=$14, status=$15, updated_at=now()
		WHERE id=$1 RETURNING updated_at`,
		flight.ID, flight.FlightNumber, flight.Airline, flight.FromAirport, flight.ToAirport,
		flight.FromLocation, flight.ToLocation, flight.DepartureTime, flight.ArrivalTime,
		flight.DurationMinutes, flight.Class, flight.PriceCents, flight.TotalSeats,
		flight.AvailableSeats, flight.Status).
		Scan(&flight.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrNotFound
	}
	return err
}

func (r *PGFlightRepository) Delete(ctx context.Context, id uuid.UUID) error {
	res, err := r.db.Exec(ctx, `DELETE FROM flights WHERE id=$1`, id)
	if err != nil {
		return err
	}
	if res.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *PGFlightRepository) Exists(ctx context.Context, flightNumber string, departure time.Time) (bool, error) {
	var exists bool
	err := r.db.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM flights WHERE flight_number=$1 AND departure_time=$2)`,
		flightNumber, departure).Scan(&exists)
	return exists, err
}

func (r *PGFlightRepository) HasBookings(ctx context.Context, id uuid.UUID) (bool, error) {
	var exists bool
	err := r.db.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM bookings WHERE flight_id=$1)`, id).Scan(&exists)
	return exists, err
}

func (r *PGFlightRepository) PopularRoutes(ctx context.Context, limit int) ([]RouteCount, error) {
	rows, err := r.db.Query(ctx, `
		SELECT from_airport || ' - ' || to_airport AS route, count(*) AS cnt
		FROM flights
		WHERE departure_time > now()
		GROUP BY from_airport, to_airport
		ORDER BY cnt DESC
		LIMIT $1`, limit)
	if err != nil {
		return nil, fmt.Errorf("query popular routes: %w", err)
	}
	defer rows.Close()

	routes := make([]RouteCount, 0, limit)
	for rows.Next() {
		var rc RouteCount
		if err := rows.Scan(&rc.Route, &rc.Count); err != nil {
			return nil, err
		}
		routes = append(routes, rc)
	}
	return routes, rows.Err()
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanFlight(row rowScanner) (*domain.Flight, error) {
	var f domain.Flight
	err := row.Scan(&f.ID, &f.FlightNumber, &f.Airline, &f.FromAirport, &f.ToAirport,
		&f.FromLocation, &f.ToLocation, &f.DepartureTime, &f.ArrivalTime, &f.DurationMinutes,
		&f.Class, &f.PriceCents, &f.TotalSeats, &f.AvailableSeats, &f.Status,
		&f.CreatedAt, &f.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &f, nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

var _ FlightRepository = (*PGFlightRepository)(nil)
