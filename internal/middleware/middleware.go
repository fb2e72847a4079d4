package middleware

import (
	"context"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/joshua-takyi/fasttrack/internal/helpers"
	"github.com/supabase-community/gotrue-go/types"
)

const (
	ContextUserKey   = "user"
	ContextLocaleKey = "locale"
	requestIDKey     = "request_id"

	AdminLoginPath = "/admin/login"
)

// RequestID middleware adds a unique request ID to each request
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := c.GetHeader("X-Request-ID")
		if requestID == "" {
			requestID = uuid.New().String()
		}
		c.Set(requestIDKey, requestID)
		c.Header("X-Request-ID", requestID)
		c.Next()
	}
}

// StructuredLogger logs one line per request once the handler chain has run.
func StructuredLogger(logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		if raw := c.Request.URL.RawQuery; raw != "" {
			path = path + "?" + raw
		}

		c.Next()

		status := c.Writer.Status()
		attrs := []any{
			"request_id", c.GetString(requestIDKey),
			"method", c.Request.Method,
			"path", path,
			"status", status,
			"latency", time.Since(start),
			"client_ip", c.ClientIP(),
		}
		switch {
		case status >= http.StatusInternalServerError:
			logger.Error("HTTP Request", attrs...)
		case status >= http.StatusBadRequest:
			logger.Warn("HTTP Request", attrs...)
		default:
			logger.Info("HTTP Request", attrs...)
		}
	}
}

// ErrorHandler logs errors attached with c.Error and answers with a generic 500
// when the handler did not write a response itself.
func ErrorHandler(logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) == 0 {
			return
		}
		requestID := c.GetString(requestIDKey)
		logger.Error("Request error",
			"request_id", requestID,
			"error", c.Errors.Last().Error(),
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
		)
		if c.Writer.Written() {
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{
			"success":    false,
			"error":      "Internal server error",
			"request_id": requestID,
		})
	}
}

// Locale resolves the response language from ?locale= or Accept-Language.
func Locale() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(ContextLocaleKey, helpers.NegotiateLocale(c.Query("locale"), c.GetHeader("Accept-Language")))
		c.Next()
	}
}

func LocaleFrom(c *gin.Context) string {
	if l := c.GetString(ContextLocaleKey); l != "" {
		return l
	}
	return helpers.NegotiateLocale(c.Query("locale"), c.GetHeader("Accept-Language"))
}

// SessionResolver is the part of the user service the auth middleware needs.
type SessionResolver interface {
	ResolveSession(ctx context.Context, accessToken string) (*helpers.SessionClaims, error)
	RefreshToken(ctx context.Context, refreshToken string) (*types.TokenResponse, error)
}

// AdminAuth admits callers holding a valid Supabase access token whose profile role is admin.
// The token is read from the Authorization header or the access_token cookie. An expired
// cookie session is refreshed once with the refresh_token cookie.
func AdminAuth(users SessionResolver, secureCookies bool, logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := bearerToken(c)
		fromCookie := false
		if token == "" {
			token, _ = c.Cookie(AccessTokenCookie)
			fromCookie = true
		}
		if token == "" {
			denyUnauthorized(c, "authentication required")
			return
		}

		session, err := users.ResolveSession(c.Request.Context(), token)
		if err != nil && fromCookie {
			refreshToken, cookieErr := c.Cookie(RefreshTokenCookie)
			if cookieErr == nil && refreshToken != "" {
				resp, refreshErr := users.RefreshToken(c.Request.Context(), refreshToken)
				if refreshErr != nil {
					logger.Warn("Token refresh failed", "error", refreshErr)
				} else {
					SetSessionCookies(c, resp, secureCookies)
					logger.Info("Token refreshed", "user_id", resp.User.ID, "expires_in", resp.ExpiresIn)
					session, err = users.ResolveSession(c.Request.Context(), resp.AccessToken)
				}
			}
		}
		if err != nil {
			denyUnauthorized(c, "invalid or expired session")
			return
		}
		if !session.IsAdmin() {
			logger.Warn("Non-admin denied", "user_id", session.UserID, "path", c.Request.URL.Path)
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{
				"success":  false,
				"error":    "admin access required",
				"redirect": AdminLoginPath,
			})
			return
		}

		c.Set(ContextUserKey, session)
		c.Next()
	}
}

// SessionFrom returns the session stored by AdminAuth.
func SessionFrom(c *gin.Context) (*helpers.SessionClaims, bool) {
	v, ok := c.Get(ContextUserKey)
	if !ok {
		return nil, false
	}
	session, ok := v.(*helpers.SessionClaims)
	return session, ok
}

func bearerToken(c *gin.Context) string {
	h := c.GetHeader("Authorization")
	if len(h) > 7 && strings.EqualFold(h[:7], "Bearer ") {
		return strings.TrimSpace(h[7:])
	}
	return ""
}

func denyUnauthorized(c *gin.Context, msg string) {
	c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
		"success":  false,
		"error":    msg,
		"redirect": AdminLoginPath,
	})
}
