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

const userColumns = `id, email, first_name, last_name, phone, date_of_birth, role, created_at, updated_at`

// BookingStats aggregates a user's booking history.
type BookingStats struct {
	TotalBookings   int   `json:"total_bookings"`
	TotalSpentCents int64 `json:"total_spent_cents"`
	Confirmed       int   `json:"confirmed_bookings"`
	Cancelled       int   `json:"cancelled_bookings"`
	AverageCents    int64 `json:"average_booking_cents"`
}

type UserRepository interface {
	GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error)
	List(ctx context.Context, role string, page, limit int) ([]domain.User, int, error)
	UpdateRole(ctx context.Context, id uuid.UUID, role string) (*domain.User, error)
	UpdateProfile(ctx context.Context, user *domain.User) error
	Stats(ctx context.Context, userID uuid.UUID) (*BookingStats, error)
}

type PGUserRepository struct {
	db *pgxpool.Pool
}

func NewUserRepository(db *pgxpool.Pool) UserRepository {
	return &PGUserRepository{db: db}
}

func (r *PGUserRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	row := r.db.QueryRow(ctx, "SELECT "+userColumns+" FROM users WHERE id=$1", id)
	u, err := scanUser(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return u, nil
}

func (r *PGUserRepository) List(ctx context.Context, role string, page, limit int) ([]domain.User, int, error) {
	where := "TRUE"
	args := []interface{}{}
	if role != "" {
		args = append(args, role)
		where = "role = $1"
	}

	var total int
	if err := r.db.QueryRow(ctx, "SELECT count(*) FROM users WHERE "+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count users: %w", err)
	}

	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 20
	}
	args = append(args, limit, (page-1)*limit)

	query := fmt.Sprintf("SELECT %s FROM users WHERE %s ORDER BY created_at DESC LIMIT $%d OFFSET $%d",
		userColumns, where, len(args)-1, len(args))

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("query users: %w", err)
	}
	defer rows.Close()

	users := make([]domain.User, 0)
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, 0, err
		}
		users = append(users, *u)
	}
	return users, total, rows.Err()
}

func (r *PGUserRepository) UpdateRole(ctx context.Context, id uuid.UUID, role string) (*domain.User, error) {
	row := r.db.QueryRow(ctx,
		"UPDATE users SET role=$2, updated_at=now() WHERE id=$1 RETURNING "+userColumns, id, role)
	u, err := scanUser(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return u, nil
}

func (r *PGUserRepository) UpdateProfile(ctx context.Context, user *domain.User) error {
	err := r.db.QueryRow(ctx, `UPDATE users SET first_name=$2, last_name=$3, phone=$4, date_of_birth=$5, updated_at=now()
		WHERE id=$1 RETURNING updated_at`,
		user.ID, user.FirstName, user.LastName, user.Phone, user.DateOfBirth).
		Scan(&user.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrNotFound
	}
	return err
}

func (r *PGUserRepository) Stats(ctx context.Context, userID uuid.UUID) (*BookingStats, error) {
	var s BookingStats
	err := r.db.QueryRow(ctx, `SELECT
		count(*),
		COALESCE(sum(total_price_cents), 0),
		count(*) FILTER (WHERE status = 'confirmed'),
		count(*) FILTER (WHERE status = 'cancelled')
		FROM bookings WHERE user_id=$1`, userID).
		Scan(&s.TotalBookings, &s.TotalSpentCents, &s.Confirmed, &s.Cancelled)
	if err != nil {
		return nil, fmt.Errorf("query booking stats: %w", err)
	}
	if s.TotalBookings > 0 {
		s.AverageCents = s.TotalSpentCents / int64(s.TotalBookings)
	}
	return &s, nil
}

func scanUser(row rowScanner) (*domain.User, error) {
	var u domain.User
	err := row.Scan(&u.ID, &u.Email, &u.FirstName, &u.LastName, &u.Phone, &u.DateOfBirth,
		&u.Role, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &u, nil
}

var _ UserRepository = (*PGUserRepository)(nil)
