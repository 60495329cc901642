package users

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Yashchoudhary3/flight-app/internal/domain"
	"github.com/Yashchoudhary3/flight-app/internal/repository"
	"github.com/google/uuid"
)

var ErrInvalidRole = errors.New("invalid role")

type UpdateProfileInput struct {
	FirstName   *string
	LastName    *string
	Phone       *string
	DateOfBirth *time.Time
}

type UserList struct {
	Users      []domain.User     `json:"users"`
	Pagination domain.Pagination `json:"pagination"`
}

type UserUseCase interface {
	Profile(ctx context.Context, userID uuid.UUID) (*domain.User, error)
	UpdateProfile(ctx context.Context, userID uuid.UUID, input UpdateProfileInput) (*domain.User, error)
	List(ctx context.Context, role string, page, limit int) (*UserList, error)
	SetRole(ctx context.Context, id uuid.UUID, role string) (*domain.User, error)
	Stats(ctx context.Context, userID uuid.UUID) (*repository.BookingStats, error)
}

type UserService struct {
	repo repository.UserRepository
}

func NewUserService(repo repository.UserRepository) *UserService {
	return &UserService{repo: repo}
}

func (s *UserService) Profile(ctx context.Context, userID uuid.UUID) (*domain.User, error) {
	return s.repo.GetByID(ctx, userID)
}

func (s *UserService) UpdateProfile(ctx context.Context, userID uuid.UUID, input UpdateProfileInput) (*domain.User, error) {
	user, err := s.repo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if input.FirstName != nil {
		user.FirstName = *input.FirstName
	}
	if input.LastName != nil {
		user.LastName = *input.LastName
	}
	if input.Phone != nil {
		user.Phone = *input.Phone
	}
	if input.DateOfBirth != nil {
		user.DateOfBirth = input.DateOfBirth
	}
	if err := s.repo.UpdateProfile(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

func (s *UserService) List(ctx context.Context, role string, page, limit int) (*UserList, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 20
	}
	users, total, err := s.repo.List(ctx, role, page, limit)
	if err != nil {
		return nil, err
	}
	return &UserList{Users: users, Pagination: domain.NewPagination(page, limit, total)}, nil
}

func (s *UserService) SetRole(ctx context.Context, id uuid.UUID, role string) (*domain.User, error) {
	if role != domain.RoleUser && role != domain.RoleAdmin {
		return nil, fmt.Errorf("%w: %q", ErrInvalidRole, role)
	}
	return s.repo.UpdateRole(ctx, id, role)
}

func (s *UserService) Stats(ctx context.Context, userID uuid.UUID) (*repository.BookingStats, error) {
	return s.repo.Stats(ctx, userID)
}

var _ UserUseCase = (*UserService)(nil)
