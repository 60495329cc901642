package flights

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/Yashchoudhary3/flight-app/internal/domain"
	"github.com/Yashchoudhary3/flight-app/internal/repository"
	"github.com/google/uuid"
)

var ErrInvalidInput = errors.New("invalid input")

type SearchQuery struct {
	From       string
	To         string
	Date       *time.Time
	ReturnDate *time.Time
	Passengers int
	Class      domain.CabinClass
	Sort       string
	Order      string
	Page       int
	Limit      int
}

type SearchResult struct {
	Flights       []domain.Flight   `json:"flights"`
	ReturnFlights []domain.Flight   `json:"returnFlights"`
	Pagination    domain.Pagination `json:"pagination"`
}

type CreateFlightInput struct {
	FlightNumber    string
	Airline         string
	FromAirport     string
	ToAirport       string
	FromLocation    string
	ToLocation      string
	DepartureTime   time.Time
	ArrivalTime     time.Time
	DurationMinutes int
	Class           domain.CabinClass
	PriceCents      int64
	Seats           int
}

// UpdateFlightInput carries a partial administrative update; nil fields
// are left untouched.
type UpdateFlightInput struct {
	FlightNumber    *string
	Airline         *string
	FromAirport     *string
	ToAirport       *string
	FromLocation    *string
	ToLocation      *string
	DepartureTime   *time.Time
	ArrivalTime     *time.Time
	DurationMinutes *int
	Class           *domain.CabinClass
	PriceCents      *int64
	TotalSeats      *int
	AvailableSeats  *int
	Status          *domain.FlightStatus
}

type FlightUseCase interface {
	Search(ctx context.Context, query SearchQuery) (*SearchResult, error)
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Flight, error)
	Create(ctx context.Context, input CreateFlightInput) (*domain.Flight, error)
	Update(ctx context.Context, id uuid.UUID, input UpdateFlightInput) (*domain.Flight, error)
	Delete(ctx context.Context, id uuid.UUID) error
	PopularRoutes(ctx context.Context) ([]repository.RouteCount, error)
}

// SearchCache stores serialized search results keyed by query.
type SearchCache interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, payload []byte) error
	Invalidate(ctx context.Context) error
}

// Broadcaster pushes flight state to connected stream subscribers.
type Broadcaster interface {
	Publish(v interface{})
}

type FlightService struct {
	repo        repository.FlightRepository
	cache       SearchCache
	broadcaster Broadcaster
}

func NewFlightService(repo repository.FlightRepository, cache SearchCache, broadcaster Broadcaster) *FlightService {
	return &FlightService{repo: repo, cache: cache, broadcaster: broadcaster}
}

func (s *FlightService) Search(ctx context.Context, query SearchQuery) (*SearchResult, error) {
	if query.Page < 1 {
		query.Page = 1
	}
	if query.Limit < 1 {
		query.Limit = 20
	}
	if query.Passengers < 0 || query.Passengers > 10 {
		return nil, fmt.Errorf("%w: passengers must be between 1 and 10", ErrInvalidInput)
	}
	if query.Class != "" && !query.Class.Valid() {
		return nil, fmt.Errorf("%w: unknown cabin class %q", ErrInvalidInput, query.Class)
	}

	key := searchKey(query)
	if s.cache != nil {
		if data, err := s.cache.Get(ctx, key); err == nil && data != nil {
			var cached SearchResult
			if err := json.Unmarshal(data, &cached); err == nil {
				return &cached, nil
			}
		}
	}

	flights, total, err := s.repo.Search(ctx, repository.FlightSearchParams{
		From:       query.From,
		To:         query.To,
		Date:       query.Date,
		Class:      query.Class,
		Passengers: query.Passengers,
		Sort:       query.Sort,
		Order:      query.Order,
		Page:       query.Page,
		Limit:      query.Limit,
	})
	if err != nil {
		return nil, err
	}

	result := &SearchResult{
		Flights:       flights,
		ReturnFlights: []domain.Flight{},
		Pagination:    domain.NewPagination(query.Page, query.Limit, total),
	}

	// Round trip: same filters with origin and destination swapped.
	if query.ReturnDate != nil && query.From != "" && query.To != "" {
		returnFlights, _, err := s.repo.Search(ctx, repository.FlightSearchParams{
			From:       query.To,
			To:         query.From,
			Date:       query.ReturnDate,
			Class:      query.Class,
			Passengers: query.Passengers,
			Sort:       query.Sort,
			Order:      query.Order,
			Page:       1,
			Limit:      query.Limit,
		})
		if err == nil {
			result.ReturnFlights = returnFlights
		}
	}

	if s.cache != nil {
		if payload, err := json.Marshal(result); err == nil {
			if err := s.cache.Set(ctx, key, payload); err != nil {
				log.Printf("flights: cache search results: %v", err)
			}
		}
	}
	return result, nil
}

func (s *FlightService) GetByID(ctx context.Context, id uuid.UUID) (*domain.Flight, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *FlightService) Create(ctx context.Context, input CreateFlightInput) (*domain.Flight, error) {
	if input.FlightNumber == "" || input.Airline == "" || input.FromAirport == "" || input.ToAirport == "" {
		return nil, fmt.Errorf("%w: flight number, airline and airports are required", ErrInvalidInput)
	}
	if !input.Class.Valid() {
		return nil, fmt.Errorf("%w: unknown cabin class %q", ErrInvalidInput, input.Class)
	}
	if input.Seats < 1 {
		return nil, fmt.Errorf("%w: seats must be positive", ErrInvalidInput)
	}
	if input.PriceCents < 0 {
		return nil, fmt.Errorf("%w: price must not be negative", ErrInvalidInput)
	}

	exists, err := s.repo.Exists(ctx, input.FlightNumber, input.DepartureTime)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, repository.ErrDuplicateFlight
	}

	flight := &domain.Flight{
		ID:              uuid.New(),
		FlightNumber:    input.FlightNumber,
		Airline:         input.Airline,
		FromAirport:     input.FromAirport,
		ToAirport:       input.ToAirport,
		FromLocation:    input.FromLocation,
		ToLocation:      input.ToLocation,
		DepartureTime:   input.DepartureTime,
		ArrivalTime:     input.ArrivalTime,
		DurationMinutes: input.DurationMinutes,
		Class:           input.Class,
		PriceCents:      input.PriceCents,
		TotalSeats:      input.Seats,
		AvailableSeats:  input.Seats,
		Status:          domain.FlightStatusScheduled,
	}
	if err := s.repo.Create(ctx, flight); err != nil {
		return nil, err
	}
	s.invalidateCache(ctx)
	return flight, nil
}

func (s *FlightService) Update(ctx context.Context, id uuid.UUID, input UpdateFlightInput) (*domain.Flight, error) {
	flight, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if input.FlightNumber != nil {
		flight.FlightNumber = *input.FlightNumber
	}
	if input.Airline != nil {
		flight.Airline = *input.Airline
	}
	if input.FromAirport != nil {
		flight.FromAirport = *input.FromAirport
	}
	if input.ToAirport != nil {
		flight.ToAirport = *input.ToAirport
	}
	if input.FromLocation != nil {
		flight.FromLocation = *input.FromLocation
	}
	if input.ToLocation != nil {
		flight.ToLocation = *input.ToLocation
	}
	if input.DepartureTime != nil {
		flight.DepartureTime = *input.DepartureTime
	}
	if input.ArrivalTime != nil {
		flight.ArrivalTime = *input.ArrivalTime
	}
	if input.DurationMinutes != nil {
		flight.DurationMinutes = *input.DurationMinutes
	}
	if input.Class != nil {
		if !input.Class.Valid() {
			return nil, fmt.Errorf("%w: unknown cabin class %q", ErrInvalidInput, *input.Class)
		}
		flight.Class = *input.Class
	}
	if input.PriceCents != nil {
		if *input.PriceCents < 0 {
			return nil, fmt.Errorf("%w: price must not be negative", ErrInvalidInput)
		}
		flight.PriceCents = *input.PriceCents
	}
	if input.TotalSeats != nil {
		flight.TotalSeats = *input.TotalSeats
	}
	if input.AvailableSeats != nil {
		flight.AvailableSeats = *input.AvailableSeats
	}
	if input.Status != nil {
		if !input.Status.Valid() {
			return nil, fmt.Errorf("%w: unknown flight status %q", ErrInvalidInput, *input.Status)
		}
		flight.Status = *input.Status
	}
	if flight.AvailableSeats < 0 || flight.AvailableSeats > flight.TotalSeats {
		return nil, fmt.Errorf("%w: available seats must be between 0 and %d", ErrInvalidInput, flight.TotalSeats)
	}

	if err := s.repo.Update(ctx, flight); err != nil {
		return nil, err
	}

	s.invalidateCache(ctx)
	if s.broadcaster != nil {
		s.broadcaster.Publish(flight)
	}
	return flight, nil
}

func (s *FlightService) Delete(ctx context.Context, id uuid.UUID) error {
	hasBookings, err := s.repo.HasBookings(ctx, id)
	if err != nil {
		return err
	}
	if hasBookings {
		return repository.ErrFlightHasBookings
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	s.invalidateCache(ctx)
	return nil
}

func (s *FlightService) PopularRoutes(ctx context.Context) ([]repository.RouteCount, error) {
	return s.repo.PopularRoutes(ctx, 10)
}

func (s *FlightService) invalidateCache(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Invalidate(ctx); err != nil {
		log.Printf("flights: invalidate search cache: %v", err)
	}
}

func searchKey(q SearchQuery) string {
	date, returnDate := "", ""
	if q.Date != nil {
		date = q.Date.Format("2006-01-02")
	}
	if q.ReturnDate != nil {
		returnDate = q.ReturnDate.Format("2006-01-02")
	}
	return fmt.Sprintf("%s|%s|%s|%s|%d|%s|%s|%s|%d|%d",
		q.From, q.To, date, returnDate, q.Passengers, q.Class, q.Sort, q.Order, q.Page, q.Limit)
}

var _ FlightUseCase = (*FlightService)(nil)
