package api

import (
	"net/http"
	"strconv"
	"time"

	"github.com/Yashchoudhary3/flight-app/internal/domain"
	"github.com/Yashchoudhary3/flight-app/internal/service/booking"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type BookingHandler struct {
	service booking.BookingUseCase
}

func NewBookingHandler(service booking.BookingUseCase) *BookingHandler {
	return &BookingHandler{service: service}
}

func (h *BookingHandler) Register(router *gin.RouterGroup, authMW, adminMW gin.HandlerFunc) {
	router.POST("", authMW, h.create)
	router.GET("", authMW, adminMW, h.list)
	router.GET("/my-bookings", authMW, h.myBookings)
	router.GET("/:id", authMW, h.get)
	router.PATCH("/:id", authMW, h.modify)
	router.POST("/:id/cancel", authMW, h.cancel)
	router.PATCH("/:id/status", authMW, adminMW, h.setStatus)
}

type passengerPayload struct {
	ID             *uuid.UUID `json:"id"`
	FirstName      string     `json:"first_name" binding:"required"`
	LastName       string     `json:"last_name" binding:"required"`
	DateOfBirth    *time.Time `json:"date_of_birth"`
	PassportNumber string     `json:"passport_number"`
}

type createBookingRequest struct {
	FlightID        uuid.UUID          `json:"flight_id" binding:"required"`
	Passengers      []passengerPayload `json:"passengers" binding:"required,min=1,max=10,dive"`
	ContactEmail    string             `json:"contact_email" binding:"required,email"`
	ContactPhone    string             `json:"contact_phone" binding:"required"`
	SeatPreference  string             `json:"seat_preference" binding:"omitempty,oneof=window aisle middle"`
	SpecialRequests string             `json:"special_requests"`
}

type modifyBookingRequest struct {
	Passengers     []passengerPayload `json:"passengers" binding:"omitempty,min=1,max=10,dive"`
	PassengerCount int                `json:"passenger_count" binding:"omitempty,min=1,max=10"`
}

type setStatusRequest struct {
	Status domain.BookingStatus `json:"status" binding:"required,oneof=pending confirmed cancelled completed"`
}

func (h *BookingHandler) create(c *gin.Context) {
	var req createBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	detail, err := h.service.Create(c.Request.Context(), booking.CreateBookingInput{
		FlightID:        req.FlightID,
		Passengers:      toPassengerInputs(req.Passengers),
		ContactEmail:    req.ContactEmail,
		ContactPhone:    req.ContactPhone,
		SeatPreference:  domain.SeatPreference(req.SeatPreference),
		SpecialRequests: req.SpecialRequests,
	}, claimsFrom(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"message": "Booking created successfully", "booking": detail})
}

func (h *BookingHandler) myBookings(c *gin.Context) {
	claims := claimsFrom(c)
	page, limit := pageQuery(c)
	result, err := h.service.ListForUser(c.Request.Context(), claims.UserID,
		domain.BookingStatus(c.Query("status")), page, limit)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h *BookingHandler) list(c *gin.Context) {
	page, limit := pageQuery(c)
	result, err := h.service.List(c.Request.Context(), domain.BookingStatus(c.Query("status")), page, limit)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h *BookingHandler) get(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid booking id"})
		return
	}
	detail, err := h.service.GetByID(c.Request.Context(), id, claimsFrom(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"booking": detail})
}

func (h *BookingHandler) modify(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid booking id"})
		return
	}

	var req modifyBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	input := booking.ModifyBookingInput{PassengerCount: req.PassengerCount}
	if req.Passengers != nil {
		input.Passengers = toPassengerInputs(req.Passengers)
	}

	detail, err := h.service.Modify(c.Request.Context(), id, input, claimsFrom(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"booking": detail})
}

func (h *BookingHandler) cancel(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid booking id"})
		return
	}
	if err := h.service.Cancel(c.Request.Context(), id, claimsFrom(c)); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Booking cancelled and deleted successfully"})
}

func (h *BookingHandler) setStatus(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid booking id"})
		return
	}

	var req setStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	updated, err := h.service.SetStatus(c.Request.Context(), id, req.Status)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Booking status updated", "booking": updated})
}

func toPassengerInputs(payloads []passengerPayload) []booking.PassengerInput {
	inputs := make([]booking.PassengerInput, 0, len(payloads))
	for _, p := range payloads {
		inputs = append(inputs, booking.PassengerInput{
			ID:             p.ID,
			FirstName:      p.FirstName,
			LastName:       p.LastName,
			DateOfBirth:    p.DateOfBirth,
			PassportNumber: p.PassportNumber,
		})
	}
	return inputs
}

func pageQuery(c *gin.Context) (int, int) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	return page, limit
}
