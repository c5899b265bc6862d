package handlers

import (
	"errors"
	"net/http"

	bookingRepo "bengkelbot/database/repository/booking"
	"bengkelbot/models"
	"bengkelbot/services/schedule"

	"github.com/gin-gonic/gin"
)

var validStatuses = map[string]bool{
	models.StatusPending:    true,
	models.StatusConfirmed:  true,
	models.StatusInProgress: true,
	models.StatusInQueue:    true,
	models.StatusCompleted:  true,
	models.StatusCancelled:  true,
}

// ListBookingsHandler returns the bookings for one date, for the workshop
// dashboard.
func (hb *HandlerBundle) ListBookingsHandler(c *gin.Context) {
	date := c.Query("date")
	if date == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "date query parameter is required"})
		return
	}
	normalized, err := schedule.NormalizeDate(date, timeNow())
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid date", "details": err.Error()})
		return
	}

	bookings, err := hb.BookingRepo.ListByDate(c.Request.Context(), normalized)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list bookings", "details": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"date": normalized, "bookings": bookings})
}

// GetBookingHandler returns one booking by ID.
func (hb *HandlerBundle) GetBookingHandler(c *gin.Context) {
	booking, err := hb.BookingRepo.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, bookingRepo.ErrBookingNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "booking not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to fetch booking", "details": err.Error()})
		return
	}
	c.JSON(http.StatusOK, booking)
}

// UpdateBookingStatusHandler moves a booking through its lifecycle
// (confirm, start, queue, complete, cancel).
func (hb *HandlerBundle) UpdateBookingStatusHandler(c *gin.Context) {
	var input struct {
		Status string `json:"status" binding:"required"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid input", "details": err.Error()})
		return
	}
	if !validStatuses[input.Status] {
		c.JSON(http.StatusBadRequest, gin.H{"error": "unknown status", "status": input.Status})
		return
	}

	id := c.Param("id")
	if err := hb.BookingRepo.UpdateStatus(c.Request.Context(), id, input.Status); err != nil {
		if errors.Is(err, bookingRepo.ErrBookingNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "booking not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to update status", "details": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"id": id, "status": input.Status})
}

// CheckAvailabilityHandler exposes the capacity check to the dashboard.
// Date and time are normalized here so the engine only ever sees canonical
// values; unparseable input is rejected up front.
func (hb *HandlerBundle) CheckAvailabilityHandler(c *gin.Context) {
	var input models.BookingRequest
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid input", "details": err.Error()})
		return
	}

	date, err := schedule.NormalizeDate(input.Date, timeNow())
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid date", "details": err.Error()})
		return
	}
	input.Date = date

	tm, err := schedule.NormalizeTime(input.Time)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid time", "details": err.Error()})
		return
	}
	input.Time = tm

	res, err := hb.Engine.CheckAvailability(c.Request.Context(), input)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "availability check failed", "details": err.Error()})
		return
	}
	c.JSON(http.StatusOK, res)
}
