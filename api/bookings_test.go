package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/Yashchoudhary3/flight-app/internal/auth"
	"github.com/Yashchoudhary3/flight-app/internal/domain"
	"github.com/Yashchoudhary3/flight-app/internal/repository"
	"github.com/Yashchoudhary3/flight-app/internal/service/booking"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockBookingUseCase struct {
	mock.Mock
}

func (m *MockBookingUseCase) Create(ctx context.Context, input booking.CreateBookingInput, requester auth.Claims) (*repository.BookingDetail, error) {
	args := m.Called(ctx, input, requester)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*repository.BookingDetail), args.Error(1)
}

func (m *MockBookingUseCase) GetByID(ctx context.Context, id uuid.UUID, requester auth.Claims) (*repository.BookingDetail, error) {
	args := m.Called(ctx, id, requester)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*repository.BookingDetail), args.Error(1)
}

func (m *MockBookingUseCase) Modify(ctx context.Context, id uuid.UUID, input booking.ModifyBookingInput, requester auth.Claims) (*repository.BookingDetail, error) {
	args := m.Called(ctx, id, input, requester)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*repository.BookingDetail), args.Error(1)
}

func (m *MockBookingUseCase) Cancel(ctx context.Context, id uuid.UUID, requester auth.Claims) error {
	args := m.Called(ctx, id, requester)
	return args.Error(0)
}

func (m *MockBookingUseCase) SetStatus(ctx context.Context, id uuid.UUID, status domain.BookingStatus) (*domain.Booking, error) {
	args := m.Called(ctx, id, status)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Booking), args.Error(1)
}

func (m *MockBookingUseCase) ListForUser(ctx context.Context, userID uuid.UUID, status domain.BookingStatus, page, limit int) (*booking.BookingList, error) {
	args := m.Called(ctx, userID, status, page, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*booking.BookingList), args.Error(1)
}

func (m *MockBookingUseCase) List(ctx context.Context, status domain.BookingStatus, page, limit int) (*booking.BookingList, error) {
	args := m.Called(ctx, status, page, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*booking.BookingList), args.Error(1)
}

func testContext(t *testing.T, method, target string, body interface{}, claims auth.Claims) (*gin.Context, *httptest.ResponseRecorder) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)

	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}
	c.Request = httptest.NewRequest(method, target, reader)
	c.Request.Header.Set("Content-Type", "application/json")
	c.Set(claimsContextKey, claims)
	return c, w
}

func TestBookingHandler_create(t *testing.T) {
	mockService := &MockBookingUseCase{}
	handler := NewBookingHandler(mockService)

	userID := uuid.New()
	claims := auth.Claims{UserID: userID, Role: domain.RoleUser}
	flightID := uuid.New()

	body := gin.H{
		"flight_id": flightID,
		"passengers": []gin.H{
			{"first_name": "Anna", "last_name": "Ivanova"},
		},
		"contact_email":   "anna@example.com",
		"contact_phone":   "+7000000000",
		"seat_preference": "window",
	}
	c, w := testContext(t, "POST", "/api/bookings", body, claims)

	detail := &repository.BookingDetail{
		Booking: domain.Booking{
			ID:               uuid.New(),
			UserID:           userID,
			FlightID:         flightID,
			BookingReference: "AB12CD34",
			PassengerCount:   1,
			Status:           domain.BookingStatusConfirmed,
		},
	}
	mockService.On("Create", c.Request.Context(), mock.MatchedBy(func(input booking.CreateBookingInput) bool {
		return input.FlightID == flightID && len(input.Passengers) == 1 &&
			input.SeatPreference == domain.SeatPreferenceWindow
	}), claims).Return(detail, nil).Once()

	handler.create(c)

	assert.Equal(t, http.StatusCreated, w.Code)

	var response struct {
		Booking repository.BookingDetail `json:"booking"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	assert.Equal(t, "AB12CD34", response.Booking.BookingReference)

	mockService.AssertExpectations(t)
}

func TestBookingHandler_create_BindingRejected(t *testing.T) {
	handler := NewBookingHandler(&MockBookingUseCase{})

	// No passengers and a malformed email never reach the service.
	body := gin.H{
		"flight_id":     uuid.New(),
		"passengers":    []gin.H{},
		"contact_email": "not-an-email",
		"contact_phone": "+7000000000",
	}
	c, w := testContext(t, "POST", "/api/bookings", body, auth.Claims{UserID: uuid.New()})

	handler.create(c)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestBookingHandler_create_NotEnoughSeats(t *testing.T) {
	mockService := &MockBookingUseCase{}
	handler := NewBookingHandler(mockService)

	body := gin.H{
		"flight_id": uuid.New(),
		"passengers": []gin.H{
			{"first_name": "Anna", "last_name": "Ivanova"},
		},
		"contact_email": "anna@example.com",
		"contact_phone": "+7000000000",
	}
	c, w := testContext(t, "POST", "/api/bookings", body, auth.Claims{UserID: uuid.New()})

	mockService.On("Create", mock.Anything, mock.Anything, mock.Anything).
		Return(nil, repository.ErrNotEnoughSeats).Once()

	handler.create(c)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "not enough")
}

func TestBookingHandler_get(t *testing.T) {
	mockService := &MockBookingUseCase{}
	handler := NewBookingHandler(mockService)

	id := uuid.New()
	claims := auth.Claims{UserID: uuid.New(), Role: domain.RoleUser}
	c, w := testContext(t, "GET", "/api/bookings/"+id.String(), nil, claims)
	c.Params = gin.Params{{Key: "id", Value: id.String()}}

	detail := &repository.BookingDetail{
		Booking: domain.Booking{ID: id, UserID: claims.UserID, BookingReference: "AB12CD34"},
	}
	mockService.On("GetByID", c.Request.Context(), id, claims).Return(detail, nil).Once()

	handler.get(c)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "AB12CD34")
	mockService.AssertExpectations(t)
}

func TestBookingHandler_get_InvalidID(t *testing.T) {
	handler := NewBookingHandler(&MockBookingUseCase{})

	c, w := testContext(t, "GET", "/api/bookings/nope", nil, auth.Claims{})
	c.Params = gin.Params{{Key: "id", Value: "nope"}}

	handler.get(c)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestBookingHandler_get_AccessDenied(t *testing.T) {
	mockService := &MockBookingUseCase{}
	handler := NewBookingHandler(mockService)

	id := uuid.New()
	c, w := testContext(t, "GET", "/api/bookings/"+id.String(), nil, auth.Claims{UserID: uuid.New()})
	c.Params = gin.Params{{Key: "id", Value: id.String()}}

	mockService.On("GetByID", mock.Anything, id, mock.Anything).
		Return(nil, booking.ErrAccessDenied).Once()

	handler.get(c)

	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestBookingHandler_cancel(t *testing.T) {
	mockService := &MockBookingUseCase{}
	handler := NewBookingHandler(mockService)

	id := uuid.New()
	claims := auth.Claims{UserID: uuid.New(), Role: domain.RoleUser}
	c, w := testContext(t, "POST", "/api/bookings/"+id.String()+"/cancel", nil, claims)
	c.Params = gin.Params{{Key: "id", Value: id.String()}}

	mockService.On("Cancel", c.Request.Context(), id, claims).Return(nil).Once()

	handler.cancel(c)

	assert.Equal(t, http.StatusOK, w.Code)
	mockService.AssertExpectations(t)
}

func TestBookingHandler_cancel_AlreadyCancelled(t *testing.T) {
	mockService := &MockBookingUseCase{}
	handler := NewBookingHandler(mockService)

	id := uuid.New()
	c, w := testContext(t, "POST", "/api/bookings/"+id.String()+"/cancel", nil, auth.Claims{UserID: uuid.New()})
	c.Params = gin.Params{{Key: "id", Value: id.String()}}

	mockService.On("Cancel", mock.Anything, id, mock.Anything).
		Return(booking.ErrAlreadyCancelled).Once()

	handler.cancel(c)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestBookingHandler_setStatus(t *testing.T) {
	mockService := &MockBookingUseCase{}
	handler := NewBookingHandler(mockService)

	id := uuid.New()
	claims := auth.Claims{UserID: uuid.New(), Role: domain.RoleAdmin}
	c, w := testContext(t, "PATCH", "/api/bookings/"+id.String()+"/status", gin.H{"status": "completed"}, claims)
	c.Params = gin.Params{{Key: "id", Value: id.String()}}

	updated := &domain.Booking{ID: id, Status: domain.BookingStatusCompleted}
	mockService.On("SetStatus", c.Request.Context(), id, domain.BookingStatusCompleted).Return(updated, nil).Once()

	handler.setStatus(c)

	assert.Equal(t, http.StatusOK, w.Code)
	mockService.AssertExpectations(t)
}

func TestBookingHandler_setStatus_RejectsUnknown(t *testing.T) {
	handler := NewBookingHandler(&MockBookingUseCase{})

	id := uuid.New()
	c, w := testContext(t, "PATCH", "/api/bookings/"+id.String()+"/status", gin.H{"status": "boarding"},
		auth.Claims{UserID: uuid.New(), Role: domain.RoleAdmin})
	c.Params = gin.Params{{Key: "id", Value: id.String()}}

	handler.setStatus(c)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestBookingHandler_myBookings(t *testing.T) {
	mockService := &MockBookingUseCase{}
	handler := NewBookingHandler(mockService)

	claims := auth.Claims{UserID: uuid.New(), Role: domain.RoleUser}
	c, w := testContext(t, "GET", "/api/bookings/my-bookings?status=confirmed&page=2&limit=5", nil, claims)

	list := &booking.BookingList{
		Bookings:   []repository.BookingDetail{},
		Pagination: domain.NewPagination(2, 5, 12),
	}
	mockService.On("ListForUser", c.Request.Context(), claims.UserID, domain.BookingStatusConfirmed, 2, 5).
		Return(list, nil).Once()

	handler.myBookings(c)

	assert.Equal(t, http.StatusOK, w.Code)

	var response booking.BookingList
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	assert.Equal(t, 3, response.Pagination.Pages)
	mockService.AssertExpectations(t)
}
