package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/supabase-community/gotrue-go/types"
)

const (
	AccessTokenCookie  = "access_token"
	RefreshTokenCookie = "refresh_token"

	refreshTokenMaxAge = 3600 * 24 * 30
)

// SetSessionCookies stores both tokens as http-only cookies scoped to the whole site.
func SetSessionCookies(c *gin.Context, resp *types.TokenResponse, secure bool) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(AccessTokenCookie, resp.AccessToken, resp.ExpiresIn, "/", "", secure, true)
	c.SetCookie(RefreshTokenCookie, resp.RefreshToken, refreshTokenMaxAge, "/", "", secure, true)
}

func ClearSessionCookies(c *gin.Context, secure bool) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(AccessTokenCookie, "", -1, "/", "", secure, true)
	c.SetCookie(RefreshTokenCookie, "", -1, "/", "", secure, true)
}

// AccessToken reads the caller's token from the Authorization header, then the cookie.
func AccessToken(c *gin.Context) string {
	if t := bearerToken(c); t != "" {
		return t
	}
	t, _ := c.Cookie(AccessTokenCookie)
	return t
}
