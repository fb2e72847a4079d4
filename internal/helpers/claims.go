package helpers

import "github.com/golang-jwt/jwt/v5"

const (
	RoleAdmin = "admin"
	RoleUser  = "user"
)

// CustomClaims is the shape of a Supabase access token.
type CustomClaims struct {
	Role        string `json:"role"`
	Email       string `json:"email"`
	AppMetadata struct {
		Provider  string   `json:"provider"`
		Providers []string `json:"providers"`
	} `json:"app_metadata"`
	UserMetadata map[string]interface{} `json:"user_metadata"`
	jwt.RegisteredClaims
}

// SessionClaims combines the verified token with the caller's profile row.
// Role comes from the profile, never from the token's "role" claim, which Supabase
// always sets to "authenticated".
type SessionClaims struct {
	*CustomClaims
	Role     string `json:"role"`
	UserID   string `json:"id"`
	Email    string `json:"email,omitempty"`
	FullName string `json:"full_name,omitempty"`
}

func (sc *SessionClaims) IsAdmin() bool {
	return sc.Role == RoleAdmin
}

func (sc *SessionClaims) GetSafeRole() string {
	if sc.Role == "" {
		return RoleUser
	}
	return sc.Role
}
