package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/Yashchoudhary3/flight-app/internal/auth"
	"github.com/Yashchoudhary3/flight-app/internal/domain"
	"github.com/Yashchoudhary3/flight-app/internal/repository"
	"github.com/Yashchoudhary3/flight-app/internal/service/flights"
	"github.com/Yashchoudhary3/flight-app/internal/stream"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockFlightUseCase struct {
	mock.Mock
}

func (m *MockFlightUseCase) Search(ctx context.Context, query flights.SearchQuery) (*flights.SearchResult, error) {
	args := m.Called(ctx, query)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*flights.SearchResult), args.Error(1)
}

func (m *MockFlightUseCase) GetByID(ctx context.Context, id uuid.UUID) (*domain.Flight, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Flight), args.Error(1)
}

func (m *MockFlightUseCase) Create(ctx context.Context, input flights.CreateFlightInput) (*domain.Flight, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Flight), args.Error(1)
}

func (m *MockFlightUseCase) Update(ctx context.Context, id uuid.UUID, input flights.UpdateFlightInput) (*domain.Flight, error) {
	args := m.Called(ctx, id, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Flight), args.Error(1)
}

func (m *MockFlightUseCase) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockFlightUseCase) PopularRoutes(ctx context.Context) ([]repository.RouteCount, error) {
	args := m.Called(ctx)
	return args.Get(0).([]repository.RouteCount), args.Error(1)
}

func TestFlightHandler_search(t *testing.T) {
	mockService := &MockFlightUseCase{}
	handler := NewFlightHandler(mockService, nil)

	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest("GET", "/api/flights?from=SVO&to=JFK&date=2026-03-01&passengers=2", nil)

	result := &flights.SearchResult{
		Flights:       []domain.Flight{{ID: uuid.New(), FlightNumber: "SU100"}},
		ReturnFlights: []domain.Flight{},
		Pagination:    domain.NewPagination(1, 20, 1),
	}
	mockService.On("Search", c.Request.Context(), mock.MatchedBy(func(q flights.SearchQuery) bool {
		return q.From == "SVO" && q.To == "JFK" && q.Passengers == 2 &&
			q.Date != nil && q.Date.Format("2006-01-02") == "2026-03-01" &&
			q.Sort == "departure_time" && q.Order == "asc"
	})).Return(result, nil).Once()

	handler.search(c)

	assert.Equal(t, http.StatusOK, w.Code)

	var response flights.SearchResult
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	require.Len(t, response.Flights, 1)
	assert.Equal(t, "SU100", response.Flights[0].FlightNumber)
	assert.NotNil(t, response.ReturnFlights)

	mockService.AssertExpectations(t)
}

func TestFlightHandler_search_InvalidDate(t *testing.T) {
	handler := NewFlightHandler(&MockFlightUseCase{}, nil)

	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest("GET", "/api/flights?date=tomorrow", nil)

	handler.search(c)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestFlightHandler_get(t *testing.T) {
	mockService := &MockFlightUseCase{}
	handler := NewFlightHandler(mockService, nil)

	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)

	id := uuid.New()
	c.Request = httptest.NewRequest("GET", "/api/flights/"+id.String(), nil)
	c.Params = gin.Params{{Key: "id", Value: id.String()}}

	mockService.On("GetByID", c.Request.Context(), id).
		Return(&domain.Flight{ID: id, FlightNumber: "SU100"}, nil).Once()

	handler.get(c)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "SU100")
}

func TestFlightHandler_get_NotFound(t *testing.T) {
	mockService := &MockFlightUseCase{}
	handler := NewFlightHandler(mockService, nil)

	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)

	id := uuid.New()
	c.Request = httptest.NewRequest("GET", "/api/flights/"+id.String(), nil)
	c.Params = gin.Params{{Key: "id", Value: id.String()}}

	mockService.On("GetByID", c.Request.Context(), id).Return(nil, repository.ErrNotFound).Once()

	handler.get(c)

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestFlightHandler_create(t *testing.T) {
	mockService := &MockFlightUseCase{}
	handler := NewFlightHandler(mockService, nil)

	departure := time.Now().Add(24 * time.Hour).UTC().Truncate(time.Second)
	body := gin.H{
		"flight_number":  "SU100",
		"airline":        "Aeroflot",
		"from_airport":   "SVO",
		"to_airport":     "JFK",
		"departure_time": departure,
		"arrival_time":   departure.Add(10 * time.Hour),
		"duration":       600,
		"price_cents":    45000,
		"seats":          180,
		"class":          "economy",
	}
	claims := auth.Claims{UserID: uuid.New(), Role: domain.RoleAdmin}
	c, w := testContext(t, "POST", "/api/flights", body, claims)

	created := &domain.Flight{ID: uuid.New(), FlightNumber: "SU100", Status: domain.FlightStatusScheduled}
	mockService.On("Create", c.Request.Context(), mock.MatchedBy(func(input flights.CreateFlightInput) bool {
		return input.FlightNumber == "SU100" && input.Seats == 180 && input.Class == domain.CabinClassEconomy
	})).Return(created, nil).Once()

	handler.create(c)

	assert.Equal(t, http.StatusCreated, w.Code)
	mockService.AssertExpectations(t)
}

func TestFlightHandler_create_RejectsUnknownClass(t *testing.T) {
	handler := NewFlightHandler(&MockFlightUseCase{}, nil)

	departure := time.Now().Add(24 * time.Hour)
	body := gin.H{
		"flight_number":  "SU100",
		"airline":        "Aeroflot",
		"from_airport":   "SVO",
		"to_airport":     "JFK",
		"departure_time": departure,
		"arrival_time":   departure.Add(10 * time.Hour),
		"duration":       600,
		"seats":          180,
		"class":          "luxury",
	}
	c, w := testContext(t, "POST", "/api/flights", body, auth.Claims{Role: domain.RoleAdmin})

	handler.create(c)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestFlightHandler_update(t *testing.T) {
	mockService := &MockFlightUseCase{}
	handler := NewFlightHandler(mockService, nil)

	id := uuid.New()
	c, w := testContext(t, "PUT", "/api/flights/"+id.String(), gin.H{"status": "delayed"},
		auth.Claims{UserID: uuid.New(), Role: domain.RoleAdmin})
	c.Params = gin.Params{{Key: "id", Value: id.String()}}

	updated := &domain.Flight{ID: id, Status: domain.FlightStatusDelayed}
	mockService.On("Update", c.Request.Context(), id, mock.MatchedBy(func(input flights.UpdateFlightInput) bool {
		return input.Status != nil && *input.Status == domain.FlightStatusDelayed && input.FlightNumber == nil
	})).Return(updated, nil).Once()

	handler.update(c)

	assert.Equal(t, http.StatusOK, w.Code)
	mockService.AssertExpectations(t)
}

func TestFlightHandler_delete_WithBookings(t *testing.T) {
	mockService := &MockFlightUseCase{}
	handler := NewFlightHandler(mockService, nil)

	id := uuid.New()
	c, w := testContext(t, "DELETE", "/api/flights/"+id.String(), nil,
		auth.Claims{UserID: uuid.New(), Role: domain.RoleAdmin})
	c.Params = gin.Params{{Key: "id", Value: id.String()}}

	mockService.On("Delete", c.Request.Context(), id).Return(repository.ErrFlightHasBookings).Once()

	handler.delete(c)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

// streamRecorder adds the CloseNotifier and a race-free body read that
// a long-lived streaming handler needs on top of ResponseRecorder.
type streamRecorder struct {
	*httptest.ResponseRecorder
	mu     sync.Mutex
	closed chan bool
}

func newStreamRecorder() *streamRecorder {
	return &streamRecorder{ResponseRecorder: httptest.NewRecorder(), closed: make(chan bool, 1)}
}

func (r *streamRecorder) CloseNotify() <-chan bool { return r.closed }

func (r *streamRecorder) Write(p []byte) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.ResponseRecorder.Write(p)
}

func (r *streamRecorder) body() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.ResponseRecorder.Body.String()
}

func TestFlightHandler_stream(t *testing.T) {
	broadcaster := stream.NewBroadcaster()
	handler := NewFlightHandler(&MockFlightUseCase{}, broadcaster)

	gin.SetMode(gin.TestMode)
	w := newStreamRecorder()
	c, _ := gin.CreateTestContext(w)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	c.Request = httptest.NewRequest("GET", "/api/flights/stream", nil).WithContext(ctx)

	done := make(chan struct{})
	go func() {
		handler.stream(c)
		close(done)
	}()

	require.Eventually(t, func() bool { return broadcaster.Len() == 1 },
		time.Second, 5*time.Millisecond, "stream request never subscribed")

	broadcaster.Publish(domain.Flight{ID: uuid.New(), FlightNumber: "SU100", Status: domain.FlightStatusDelayed})

	require.Eventually(t, func() bool { return strings.Contains(w.body(), "SU100") },
		time.Second, 5*time.Millisecond, "published update never reached the stream")
	assert.Contains(t, w.body(), "event:message")

	// Client disconnect tears the subscription down.
	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("stream handler did not stop on disconnect")
	}
	assert.Equal(t, 0, broadcaster.Len())
	assert.Equal(t, "text/event-stream", w.Header().Get("Content-Type"))
}

func TestFlightHandler_popularRoutes(t *testing.T) {
	mockService := &MockFlightUseCase{}
	handler := NewFlightHandler(mockService, nil)

	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest("GET", "/api/flights/popular/routes", nil)

	mockService.On("PopularRoutes", c.Request.Context()).Return([]repository.RouteCount{
		{Route: "SVO - JFK", Count: 42},
	}, nil).Once()

	handler.popularRoutes(c)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "popularRoutes")
	assert.Contains(t, w.Body.String(), "SVO")
}
