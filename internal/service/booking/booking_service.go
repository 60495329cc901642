package booking

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/Yashchoudhary3/flight-app/internal/auth"
	"github.com/Yashchoudhary3/flight-app/internal/domain"
	"github.com/Yashchoudhary3/flight-app/internal/kafka"
	"github.com/Yashchoudhary3/flight-app/internal/repository"
	"github.com/google/uuid"
)

var (
	ErrInvalidInput     = errors.New("invalid input")
	ErrAccessDenied     = errors.New("access denied")
	ErrFlightDeparted   = errors.New("flight already departed")
	ErrAlreadyCancelled = errors.New("booking is already cancelled")
	ErrCancelCompleted  = errors.New("cannot cancel completed booking")
)

const (
	maxPassengers     = 10
	referenceAttempts = 3
)

type PassengerInput struct {
	ID             *uuid.UUID
	FirstName      string
	LastName       string
	DateOfBirth    *time.Time
	PassportNumber string
}

type CreateBookingInput struct {
	FlightID        uuid.UUID
	Passengers      []PassengerInput
	ContactEmail    string
	ContactPhone    string
	SeatPreference  domain.SeatPreference
	SpecialRequests string
}

// ModifyBookingInput carries a passenger reconciliation request. The
// new passenger count is derived from the list, keeping the
// count-equals-rows invariant by construction; PassengerCount, when
// set, must agree with the list.
type ModifyBookingInput struct {
	Passengers     []PassengerInput
	PassengerCount int
}

type BookingList struct {
	Bookings   []repository.BookingDetail `json:"bookings"`
	Pagination domain.Pagination          `json:"pagination"`
}

type BookingUseCase interface {
	Create(ctx context.Context, input CreateBookingInput, requester auth.Claims) (*repository.BookingDetail, error)
	GetByID(ctx context.Context, id uuid.UUID, requester auth.Claims) (*repository.BookingDetail, error)
	Modify(ctx context.Context, id uuid.UUID, input ModifyBookingInput, requester auth.Claims) (*repository.BookingDetail, error)
	Cancel(ctx context.Context, id uuid.UUID, requester auth.Claims) error
	SetStatus(ctx context.Context, id uuid.UUID, status domain.BookingStatus) (*domain.Booking, error)
	ListForUser(ctx context.Context, userID uuid.UUID, status domain.BookingStatus, page, limit int) (*BookingList, error)
	List(ctx context.Context, status domain.BookingStatus, page, limit int) (*BookingList, error)
}

type Producer interface {
	Publish(ctx context.Context, topic, key string, value interface{}) error
}

type BookingService struct {
	bookings repository.BookingRepository
	flights  repository.FlightRepository
	producer Producer
	topic    string
}

type BookingServiceOption func(*BookingService)

func WithProducer(producer Producer, topic string) BookingServiceOption {
	return func(s *BookingService) {
		s.producer = producer
		s.topic = topic
	}
}

func NewBookingService(bookings repository.BookingRepository, flights repository.FlightRepository, opts ...BookingServiceOption) *BookingService {
	service := &BookingService{
		bookings: bookings,
		flights:  flights,
	}
	for _, opt := range opts {
		opt(service)
	}
	return service
}

func (s *BookingService) Create(ctx context.Context, input CreateBookingInput, requester auth.Claims) (*repository.BookingDetail, error) {
	if err := validatePassengers(input.Passengers); err != nil {
		return nil, err
	}
	if input.ContactEmail == "" {
		return nil, fmt.Errorf("%w: contact email is required", ErrInvalidInput)
	}
	if input.ContactPhone == "" {
		return nil, fmt.Errorf("%w: contact phone is required", ErrInvalidInput)
	}
	if input.SeatPreference != "" && !input.SeatPreference.Valid() {
		return nil, fmt.Errorf("%w: unknown seat preference %q", ErrInvalidInput, input.SeatPreference)
	}

	flight, err := s.flights.GetByID(ctx, input.FlightID)
	if err != nil {
		return nil, err
	}
	if !flight.DepartureTime.After(time.Now()) {
		return nil, ErrFlightDeparted
	}

	count := len(input.Passengers)
	booking := &domain.Booking{
		ID:              uuid.New(),
		UserID:          requester.UserID,
		FlightID:        flight.ID,
		PassengerCount:  count,
		TotalPriceCents: flight.PriceCents * int64(count),
		ContactEmail:    input.ContactEmail,
		ContactPhone:    input.ContactPhone,
		SeatPreference:  input.SeatPreference,
		SpecialRequests: input.SpecialRequests,
		Status:          domain.BookingStatusConfirmed,
	}

	passengers := make([]domain.Passenger, 0, count)
	for _, p := range input.Passengers {
		passengers = append(passengers, domain.Passenger{
			ID:             uuid.New(),
			BookingID:      booking.ID,
			FirstName:      p.FirstName,
			LastName:       p.LastName,
			DateOfBirth:    p.DateOfBirth,
			PassportNumber: p.PassportNumber,
		})
	}

	// The reference is random; retry the whole transaction on the rare
	// collision with an existing booking.
	for attempt := 0; ; attempt++ {
		booking.BookingReference, err = newBookingReference()
		if err != nil {
			return nil, err
		}
		err = s.bookings.Create(ctx, booking, passengers)
		if err == nil {
			break
		}
		if errors.Is(err, repository.ErrDuplicateReference) && attempt < referenceAttempts-1 {
			continue
		}
		return nil, err
	}

	// The transaction moved the seat ledger; the response must show the
	// post-reservation count, not the snapshot loaded above.
	flight.AvailableSeats -= count

	s.publish(ctx, "booking_confirmed", booking, flight)

	return &repository.BookingDetail{Booking: *booking, Flight: flight, Passengers: passengers}, nil
}

func (s *BookingService) GetByID(ctx context.Context, id uuid.UUID, requester auth.Claims) (*repository.BookingDetail, error) {
	detail, err := s.bookings.GetDetail(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := authorize(detail.UserID, requester); err != nil {
		return nil, err
	}
	return detail, nil
}

func (s *BookingService) Modify(ctx context.Context, id uuid.UUID, input ModifyBookingInput, requester auth.Claims) (*repository.BookingDetail, error) {
	booking, err := s.bookings.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := authorize(booking.UserID, requester); err != nil {
		return nil, err
	}

	if input.Passengers == nil {
		if input.PassengerCount != 0 && input.PassengerCount != booking.PassengerCount {
			return nil, fmt.Errorf("%w: passenger list is required to change the passenger count", ErrInvalidInput)
		}
		return s.bookings.GetDetail(ctx, id)
	}
	if input.PassengerCount != 0 && input.PassengerCount != len(input.Passengers) {
		return nil, fmt.Errorf("%w: passenger_count does not match the passenger list", ErrInvalidInput)
	}
	if err := validatePassengers(input.Passengers); err != nil {
		return nil, err
	}

	current, err := s.bookings.ListPassengers(ctx, id)
	if err != nil {
		return nil, err
	}
	currentIDs := make(map[uuid.UUID]bool, len(current))
	for _, p := range current {
		currentIDs[p.ID] = true
	}

	// Reconcile by identity presence: known IDs update in place, new
	// entries insert, IDs missing from the request delete.
	var updates, inserts []domain.Passenger
	incoming := make(map[uuid.UUID]bool, len(input.Passengers))
	for _, p := range input.Passengers {
		passenger := domain.Passenger{
			BookingID:      id,
			FirstName:      p.FirstName,
			LastName:       p.LastName,
			DateOfBirth:    p.DateOfBirth,
			PassportNumber: p.PassportNumber,
		}
		if p.ID != nil {
			if !currentIDs[*p.ID] {
				return nil, fmt.Errorf("%w: passenger %s does not belong to this booking", ErrInvalidInput, *p.ID)
			}
			passenger.ID = *p.ID
			incoming[*p.ID] = true
			updates = append(updates, passenger)
		} else {
			passenger.ID = uuid.New()
			inserts = append(inserts, passenger)
		}
	}
	var removeIDs []uuid.UUID
	for _, p := range current {
		if !incoming[p.ID] {
			removeIDs = append(removeIDs, p.ID)
		}
	}

	newCount := len(input.Passengers)
	seatDelta := newCount - booking.PassengerCount
	if newCount != booking.PassengerCount {
		flight, err := s.flights.GetByID(ctx, booking.FlightID)
		if err != nil {
			return nil, err
		}
		booking.TotalPriceCents = flight.PriceCents * int64(newCount)
	}
	booking.PassengerCount = newCount

	if err := s.bookings.Modify(ctx, booking, updates, inserts, removeIDs, seatDelta); err != nil {
		return nil, err
	}

	return s.bookings.GetDetail(ctx, id)
}

func (s *BookingService) Cancel(ctx context.Context, id uuid.UUID, requester auth.Claims) error {
	booking, err := s.bookings.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if err := authorize(booking.UserID, requester); err != nil {
		return err
	}
	if booking.Status == domain.BookingStatusCancelled {
		return ErrAlreadyCancelled
	}
	if booking.Status == domain.BookingStatusCompleted {
		return ErrCancelCompleted
	}

	// The departure check is best-effort: an unloadable flight must not
	// block the cancellation.
	flight, err := s.flights.GetByID(ctx, booking.FlightID)
	if err == nil && !flight.DepartureTime.After(time.Now()) {
		return ErrFlightDeparted
	}

	if err := s.bookings.CancelDelete(ctx, booking.ID, booking.FlightID, booking.PassengerCount); err != nil {
		return err
	}

	s.publish(ctx, "booking_cancelled", booking, flight)
	return nil
}

func (s *BookingService) SetStatus(ctx context.Context, id uuid.UUID, status domain.BookingStatus) (*domain.Booking, error) {
	if !status.Valid() {
		return nil, fmt.Errorf("%w: unknown booking status %q", ErrInvalidInput, status)
	}
	return s.bookings.UpdateStatus(ctx, id, status)
}

func (s *BookingService) ListForUser(ctx context.Context, userID uuid.UUID, status domain.BookingStatus, page, limit int) (*BookingList, error) {
	return s.list(ctx, repository.BookingListParams{UserID: &userID, Status: status, Page: page, Limit: limit})
}

func (s *BookingService) List(ctx context.Context, status domain.BookingStatus, page, limit int) (*BookingList, error) {
	return s.list(ctx, repository.BookingListParams{Status: status, Page: page, Limit: limit})
}

func (s *BookingService) list(ctx context.Context, params repository.BookingListParams) (*BookingList, error) {
	if params.Page < 1 {
		params.Page = 1
	}
	if params.Limit < 1 {
		params.Limit = 20
	}
	if params.Status != "" && !params.Status.Valid() {
		return nil, fmt.Errorf("%w: unknown booking status %q", ErrInvalidInput, params.Status)
	}
	bookings, total, err := s.bookings.List(ctx, params)
	if err != nil {
		return nil, err
	}
	return &BookingList{
		Bookings:   bookings,
		Pagination: domain.NewPagination(params.Page, params.Limit, total),
	}, nil
}

// publish is fire-and-forget: a notification failure never fails the
// booking operation.
func (s *BookingService) publish(ctx context.Context, eventType string, booking *domain.Booking, flight *domain.Flight) {
	if s.producer == nil || s.topic == "" {
		return
	}
	event := kafka.BookingEvent{
		Type:            eventType,
		BookingID:       booking.ID,
		Reference:       booking.BookingReference,
		FlightID:        booking.FlightID,
		ContactEmail:    booking.ContactEmail,
		PassengerCount:  booking.PassengerCount,
		TotalPriceCents: booking.TotalPriceCents,
		Status:          string(booking.Status),
	}
	if flight != nil {
		event.FlightNumber = flight.FlightNumber
		event.Airline = flight.Airline
		event.FromLocation = flight.FromLocation
		event.FromAirport = flight.FromAirport
		event.ToLocation = flight.ToLocation
		event.ToAirport = flight.ToAirport
		event.DepartureTime = flight.DepartureTime
	}
	if err := s.producer.Publish(ctx, s.topic, booking.BookingReference, event); err != nil {
		log.Printf("WARNING: failed to publish %s event for booking %s: %v", eventType, booking.BookingReference, err)
	}
}

func authorize(ownerID uuid.UUID, requester auth.Claims) error {
	if ownerID != requester.UserID && requester.Role != domain.RoleAdmin {
		return ErrAccessDenied
	}
	return nil
}

func validatePassengers(passengers []PassengerInput) error {
	if len(passengers) < 1 || len(passengers) > maxPassengers {
		return fmt.Errorf("%w: passengers must be between 1 and %d", ErrInvalidInput, maxPassengers)
	}
	for _, p := range passengers {
		if p.FirstName == "" || p.LastName == "" {
			return fmt.Errorf("%w: passenger first and last name are required", ErrInvalidInput)
		}
	}
	return nil
}

var _ BookingUseCase = (*BookingService)(nil)
