package api

import (
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/Yashchoudhary3/flight-app/internal/domain"
	"github.com/Yashchoudhary3/flight-app/internal/service/flights"
	"github.com/Yashchoudhary3/flight-app/internal/stream"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type FlightHandler struct {
	service     flights.FlightUseCase
	broadcaster *stream.Broadcaster
}

func NewFlightHandler(service flights.FlightUseCase, broadcaster *stream.Broadcaster) *FlightHandler {
	return &FlightHandler{service: service, broadcaster: broadcaster}
}

func (h *FlightHandler) Register(router *gin.RouterGroup, authMW, adminMW gin.HandlerFunc) {
	router.GET("", h.search)
	router.GET("/stream", h.stream)
	router.GET("/popular/routes", h.popularRoutes)
	router.GET("/:id", h.get)
	router.POST("", authMW, adminMW, h.create)
	router.PUT("/:id", authMW, adminMW, h.update)
	router.DELETE("/:id", authMW, adminMW, h.delete)
}

type createFlightRequest struct {
	FlightNumber string            `json:"flight_number" binding:"required,min=3"`
	Airline      string            `json:"airline" binding:"required"`
	FromAirport  string            `json:"from_airport" binding:"required"`
	ToAirport    string            `json:"to_airport" binding:"required"`
	FromLocation string            `json:"from_location"`
	ToLocation   string            `json:"to_location"`
	Departure    time.Time         `json:"departure_time" binding:"required"`
	Arrival      time.Time         `json:"arrival_time" binding:"required"`
	Duration     int               `json:"duration" binding:"required,min=1"`
	PriceCents   int64             `json:"price_cents" binding:"min=0"`
	Seats        int               `json:"seats" binding:"required,min=1"`
	Class        domain.CabinClass `json:"class" binding:"required,oneof=economy premium_economy business first"`
}

type updateFlightRequest struct {
	FlightNumber   *string              `json:"flight_number"`
	Airline        *string              `json:"airline"`
	FromAirport    *string              `json:"from_airport"`
	ToAirport      *string              `json:"to_airport"`
	FromLocation   *string              `json:"from_location"`
	ToLocation     *string              `json:"to_location"`
	Departure      *time.Time           `json:"departure_time"`
	Arrival        *time.Time           `json:"arrival_time"`
	Duration       *int                 `json:"duration"`
	PriceCents     *int64               `json:"price_cents"`
	TotalSeats     *int                 `json:"total_seats"`
	AvailableSeats *int                 `json:"available_seats"`
	Class          *domain.CabinClass   `json:"class"`
	Status         *domain.FlightStatus `json:"status"`
}

func (h *FlightHandler) search(c *gin.Context) {
	query := flights.SearchQuery{
		From:  c.Query("from"),
		To:    c.Query("to"),
		Class: domain.CabinClass(c.Query("class")),
		Sort:  c.DefaultQuery("sort", "departure_time"),
		Order: c.DefaultQuery("order", "asc"),
	}

	var err error
	if query.Date, err = parseDateQuery(c, "date"); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid date"})
		return
	}
	if query.ReturnDate, err = parseDateQuery(c, "returnDate"); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid returnDate"})
		return
	}
	query.Passengers, _ = strconv.Atoi(c.DefaultQuery("passengers", "0"))
	query.Page, _ = strconv.Atoi(c.DefaultQuery("page", "1"))
	query.Limit, _ = strconv.Atoi(c.DefaultQuery("limit", "20"))

	result, err := h.service.Search(c.Request.Context(), query)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// stream is the flight status push channel. The subscription lives
// exactly as long as the request: it is registered here and removed
// when the client disconnects. There is no replay.
func (h *FlightHandler) stream(c *gin.Context) {
	sub := h.broadcaster.Subscribe()
	defer h.broadcaster.Unsubscribe(sub)

	c.Writer.Header().Set("Content-Type", "text/event-stream")
	c.Writer.Header().Set("Cache-Control", "no-cache")
	c.Writer.Header().Set("Connection", "keep-alive")

	c.Stream(func(w io.Writer) bool {
		select {
		case msg, ok := <-sub.C:
			if !ok {
				return false
			}
			c.SSEvent("message", string(msg))
			return true
		case <-c.Request.Context().Done():
			return false
		}
	})
}

func (h *FlightHandler) popularRoutes(c *gin.Context) {
	routes, err := h.service.PopularRoutes(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"popularRoutes": routes})
}

func (h *FlightHandler) get(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid flight id"})
		return
	}
	flight, err := h.service.GetByID(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"flight": flight})
}

func (h *FlightHandler) create(c *gin.Context) {
	var req createFlightRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	flight, err := h.service.Create(c.Request.Context(), flights.CreateFlightInput{
		FlightNumber:    req.FlightNumber,
		Airline:         req.Airline,
		FromAirport:     req.FromAirport,
		ToAirport:       req.ToAirport,
		FromLocation:    req.FromLocation,
		ToLocation:      req.ToLocation,
		DepartureTime:   req.Departure,
		ArrivalTime:     req.Arrival,
		DurationMinutes: req.Duration,
		Class:           req.Class,
		PriceCents:      req.PriceCents,
		Seats:           req.Seats,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"message": "Flight created successfully", "flight": flight})
}

func (h *FlightHandler) update(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid flight id"})
		return
	}

	var req updateFlightRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	flight, err := h.service.Update(c.Request.Context(), id, flights.UpdateFlightInput{
		FlightNumber:    req.FlightNumber,
		Airline:         req.Airline,
		FromAirport:     req.FromAirport,
		ToAirport:       req.ToAirport,
		FromLocation:    req.FromLocation,
		ToLocation:      req.ToLocation,
		DepartureTime:   req.Departure,
		ArrivalTime:     req.Arrival,
		DurationMinutes: req.Duration,
		Class:           req.Class,
		PriceCents:      req.PriceCents,
		TotalSeats:      req.TotalSeats,
		AvailableSeats:  req.AvailableSeats,
		Status:          req.Status,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Flight updated successfully", "flight": flight})
}

func (h *FlightHandler) delete(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid flight id"})
		return
	}
	if err := h.service.Delete(c.Request.Context(), id); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Flight deleted successfully"})
}

func parseDateQuery(c *gin.Context, name string) (*time.Time, error) {
	raw := c.Query(name)
	if raw == "" {
		return nil, nil
	}
	t, err := time.Parse("2006-01-02", raw)
	if err != nil {
		if t, err = time.Parse(time.RFC3339, raw); err != nil {
			return nil, err
		}
	}
	return &t, nil
}
