package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/joshua-takyi/fasttrack/internal/helpers"
	"github.com/joshua-takyi/fasttrack/internal/middleware"
	"github.com/joshua-takyi/fasttrack/internal/models"
)

func Health(serviceName string) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "OK",
			"service": serviceName,
		})
	}
}

// BookingOptions lists the slots, areas and car types the booking form offers.
func BookingOptions() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, models.SuccessResponse(helpers.OptionsFor(middleware.LocaleFrom(c)), ""))
	}
}
