package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/joshua-takyi/fasttrack/internal/middleware"
	"github.com/joshua-takyi/fasttrack/internal/models"
)

// Login signs an admin in and stores the session in http-only cookies.
func Login(u Authenticator, secureCookies bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req models.LoginRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			bindError(c, err)
			return
		}
		resp, err := u.Login(c.Request.Context(), &req)
		if err != nil {
			respondError(c, err)
			return
		}
		middleware.SetSessionCookies(c, resp, secureCookies)
		c.JSON(http.StatusOK, models.SuccessResponse(gin.H{
			"user_id":    resp.User.ID,
			"email":      resp.User.Email,
			"expires_in": resp.ExpiresIn,
		}, "Login successful"))
	}
}

// Refresh rotates the session using the refresh_token cookie, or a JSON body for
// clients that keep tokens themselves.
func Refresh(u Authenticator, secureCookies bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		refreshToken, _ := c.Cookie(middleware.RefreshTokenCookie)
		if refreshToken == "" {
			var req struct {
				RefreshToken string `json:"refresh_token"`
			}
			_ = c.ShouldBindJSON(&req)
			refreshToken = req.RefreshToken
		}
		resp, err := u.RefreshToken(c.Request.Context(), refreshToken)
		if err != nil {
			middleware.ClearSessionCookies(c, secureCookies)
			respondError(c, err)
			return
		}
		middleware.SetSessionCookies(c, resp, secureCookies)
		c.JSON(http.StatusOK, models.SuccessResponse(gin.H{"expires_in": resp.ExpiresIn}, "Token refreshed"))
	}
}

// Logout revokes the Supabase session when possible and always clears the cookies.
func Logout(u Authenticator, secureCookies bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := u.Logout(c.Request.Context(), middleware.AccessToken(c)); err != nil {
			_ = c.Error(err)
		}
		middleware.ClearSessionCookies(c, secureCookies)
		c.JSON(http.StatusOK, models.SuccessResponse(nil, "Logged out successfully"))
	}
}

// Me returns the session resolved by AdminAuth.
func Me() gin.HandlerFunc {
	return func(c *gin.Context) {
		session, ok := middleware.SessionFrom(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, models.ErrorResponse("unauthorized"))
			return
		}
		c.JSON(http.StatusOK, models.SuccessResponse(gin.H{
			"user_id":   session.UserID,
			"email":     session.Email,
			"full_name": session.FullName,
			"role":      session.GetSafeRole(),
			"is_admin":  session.IsAdmin(),
		}, ""))
	}
}
