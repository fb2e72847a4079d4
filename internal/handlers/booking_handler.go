package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/joshua-takyi/fasttrack/internal/middleware"
	"github.com/joshua-takyi/fasttrack/internal/models"
)

// CreateBooking is the public booking form endpoint.
func CreateBooking(b BookingManager) gin.HandlerFunc {
	return func(c *gin.Context) {
		var in models.BookingInput
		if err := c.ShouldBindJSON(&in); err != nil {
			bindError(c, err)
			return
		}
		booking, err := b.Create(c.Request.Context(), &in)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusCreated, models.SuccessResponse(booking, "Booking created successfully"))
	}
}

func ListBookings(b BookingManager) gin.HandlerFunc {
	return func(c *gin.Context) {
		bookings, err := b.List(c.Request.Context(), c.Query("status"))
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, models.ListResponse(bookings, len(bookings)))
	}
}

func GetBooking(b BookingManager) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := paramID(c)
		if !ok {
			return
		}
		booking, err := b.Get(c.Request.Context(), id)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, models.SuccessResponse(booking, ""))
	}
}

func UpdateBookingStatus(b BookingManager) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := paramID(c)
		if !ok {
			return
		}
		var req struct {
			Status string `json:"status"`
		}
		if err := c.ShouldBindJSON(&req); err != nil {
			bindError(c, err)
			return
		}
		booking, err := b.TransitionStatus(c.Request.Context(), id, req.Status)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, models.SuccessResponse(booking, "Booking status updated"))
	}
}

// ConfirmBooking sets the confirmed time and returns the customer message together with a
// wa.me link the admin opens to send it.
func ConfirmBooking(b BookingManager) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := paramID(c)
		if !ok {
			return
		}
		var req struct {
			ConfirmedTime string `json:"confirmed_time"`
			Locale        string `json:"locale"`
		}
		if err := c.ShouldBindJSON(&req); err != nil {
			bindError(c, err)
			return
		}
		locale := req.Locale
		if locale == "" {
			locale = middleware.LocaleFrom(c)
		}
		confirmation, err := b.ConfirmWithTime(c.Request.Context(), id, req.ConfirmedTime, locale)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, models.SuccessResponse(confirmation, "Booking confirmed"))
	}
}

func BookingNotifications(b BookingManager) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := paramID(c)
		if !ok {
			return
		}
		logs, err := b.Notifications(c.Request.Context(), id)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, models.ListResponse(logs, len(logs)))
	}
}
