package api

import (
	"errors"
	"log"
	"net/http"

	"github.com/Yashchoudhary3/flight-app/internal/repository"
	"github.com/Yashchoudhary3/flight-app/internal/service/booking"
	"github.com/Yashchoudhary3/flight-app/internal/service/flights"
	"github.com/Yashchoudhary3/flight-app/internal/service/users"
	"github.com/gin-gonic/gin"
)

// respondError maps service errors onto the status taxonomy: 400 for
// validation, capacity, timing and state conflicts, 403 for ownership,
// 404 for missing rows, 500 for everything else. Internal detail is
// logged, never echoed.
func respondError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, repository.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
	case errors.Is(err, booking.ErrAccessDenied):
		c.JSON(http.StatusForbidden, gin.H{"error": "access denied"})
	case errors.Is(err, booking.ErrInvalidInput),
		errors.Is(err, flights.ErrInvalidInput),
		errors.Is(err, users.ErrInvalidRole),
		errors.Is(err, repository.ErrNotEnoughSeats),
		errors.Is(err, repository.ErrDuplicateFlight),
		errors.Is(err, repository.ErrFlightHasBookings),
		errors.Is(err, booking.ErrFlightDeparted),
		errors.Is(err, booking.ErrAlreadyCancelled),
		errors.Is(err, booking.ErrCancelCompleted):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	default:
		log.Printf("%s %s: %v", c.Request.Method, c.Request.URL.Path, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
	}
}
