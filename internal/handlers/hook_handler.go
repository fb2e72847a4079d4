package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/joshua-takyi/fasttrack/internal/models"
	"github.com/joshua-takyi/fasttrack/internal/services"
)

// webhookPayload is the body a Supabase database webhook posts on row changes.
type webhookPayload struct {
	Type   string          `json:"type"`
	Table  string          `json:"table"`
	Record *models.Booking `json:"record"`
}

// BookingCreatedHook runs the notification dispatcher for a newly inserted booking and
// answers with the dispatcher envelope. A gateway failure is a 500.
func BookingCreatedHook(d Dispatcher) gin.HandlerFunc {
	return func(c *gin.Context) {
		var payload webhookPayload
		if err := c.ShouldBindJSON(&payload); err != nil || payload.Record == nil || payload.Record.ID <= 0 {
			c.JSON(http.StatusBadRequest, services.DispatchResult{Success: false, Error: "payload must contain a booking record"})
			return
		}
		if payload.Type != "" && !strings.EqualFold(payload.Type, "INSERT") {
			c.JSON(http.StatusOK, services.DispatchResult{Success: true, Message: "ignored " + payload.Type + " event", BookingID: payload.Record.ID})
			return
		}

		result, err := d.DispatchBookingCreated(c.Request.Context(), payload.Record)
		if err != nil {
			_ = c.Error(err)
			c.JSON(http.StatusInternalServerError, result)
			return
		}
		c.JSON(http.StatusOK, result)
	}
}
