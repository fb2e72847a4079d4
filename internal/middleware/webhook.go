package middleware

import (
	"bytes"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"io"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
)

const (
	WebhookSignatureHeader = "X-Webhook-Signature"
	maxWebhookBody         = 1 << 20
)

// WebhookSignature checks X-Webhook-Signature, a base64 HMAC-SHA256 of the raw body keyed with
// secret, and puts the body back for the handler. With an empty secret every call is refused.
// Supabase Database Webhooks only send static headers, so the sender has to be a trigger that
// signs the body itself (pg_net plus pgcrypto's hmac()), or use NOTIFY_TRIGGER=queue instead.
func WebhookSignature(secret string, logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		if secret == "" {
			logger.Error("Webhook called but WEBHOOK_SECRET is not set")
			c.AbortWithStatusJSON(http.StatusServiceUnavailable, gin.H{"success": false, "error": "webhook is not configured"})
			return
		}

		body, err := io.ReadAll(io.LimitReader(c.Request.Body, maxWebhookBody))
		if err != nil {
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"success": false, "error": "failed to read body"})
			return
		}
		if !ValidSignature(secret, body, c.GetHeader(WebhookSignatureHeader)) {
			logger.Warn("Webhook signature mismatch", "client_ip", c.ClientIP())
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"success": false, "error": "invalid signature"})
			return
		}

		c.Request.Body = io.NopCloser(bytes.NewReader(body))
		c.Next()
	}
}

func SignBody(secret string, body []byte) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(body)
	return base64.StdEncoding.EncodeToString(mac.Sum(nil))
}

func ValidSignature(secret string, body []byte, signature string) bool {
	got, err := base64.StdEncoding.DecodeString(signature)
	if err != nil || len(got) == 0 {
		return false
	}
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(body)
	return hmac.Equal(got, mac.Sum(nil))
}
