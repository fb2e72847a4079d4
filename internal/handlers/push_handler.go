package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/joshua-takyi/fasttrack/internal/middleware"
	"github.com/joshua-takyi/fasttrack/internal/models"
)

func sessionUserID(c *gin.Context) (uuid.UUID, bool) {
	session, ok := middleware.SessionFrom(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, models.ErrorResponse("unauthorized"))
		return uuid.Nil, false
	}
	id, err := uuid.Parse(session.UserID)
	if err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse("invalid user ID in token"))
		return uuid.Nil, false
	}
	return id, true
}

// Subscribe accepts either the browser PushSubscription JSON itself or
// {"subscription": {...}}.
func Subscribe(s Subscriptions) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := sessionUserID(c)
		if !ok {
			return
		}
		var body struct {
			Subscription json.RawMessage `json:"subscription"`
			Endpoint     string          `json:"endpoint"`
		}
		raw, err := c.GetRawData()
		if err != nil || json.Unmarshal(raw, &body) != nil {
			c.JSON(http.StatusBadRequest, models.ErrorResponse("invalid request payload"))
			return
		}
		token := body.Subscription
		if len(token) == 0 && body.Endpoint != "" {
			token = raw
		}

		saved, err := s.Subscribe(c.Request.Context(), userID, token)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, models.SuccessResponse(saved, "Push notifications enabled"))
	}
}

func Unsubscribe(s Subscriptions) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := sessionUserID(c)
		if !ok {
			return
		}
		if err := s.Unsubscribe(c.Request.Context(), userID); err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, models.SuccessResponse(nil, "Push notifications disabled"))
	}
}
