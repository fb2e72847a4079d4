package helpers

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"strings"
	"time"

	"github.com/MicahParks/keyfunc/v2"
	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"
	"github.com/golang-jwt/jwt/v5"
)

const (
	ServiceImageFolder = "fasttrack/services"
	imageTag           = "fasttrack"
)

var (
	ErrInvalidToken       = errors.New("invalid or expired token")
	ErrNoSigningKey       = errors.New("no key available for token signing method")
	ErrInvalidImageSource = errors.New("image must be an https URL or a base64 image data URI")
)

// TokenValidator verifies Supabase access tokens. Asymmetric tokens are checked against the
// project's JWKS, which is fetched once and refreshed in the background. HS256 tokens are
// checked against the project JWT secret.
type TokenValidator struct {
	jwks   *keyfunc.JWKS
	secret []byte
}

// NewTokenValidator builds a validator. A JWKS fetch failure is not fatal when a JWT secret
// is configured, since older projects only sign with HS256.
func NewTokenValidator(ctx context.Context, supabaseURL, jwtSecret string, logger *slog.Logger) (*TokenValidator, error) {
	v := &TokenValidator{secret: []byte(jwtSecret)}
	if supabaseURL == "" {
		if jwtSecret == "" {
			return nil, errors.New("token validator needs SUPABASE_URL or SUPABASE_JWT_SECRET")
		}
		return v, nil
	}

	jwksURL := strings.TrimRight(supabaseURL, "/") + "/auth/v1/.well-known/jwks.json"
	jwks, err := keyfunc.Get(jwksURL, keyfunc.Options{
		Ctx:               ctx,
		RefreshInterval:   time.Hour,
		RefreshTimeout:    10 * time.Second,
		RefreshUnknownKID: true,
		RefreshErrorHandler: func(err error) {
			logger.Warn("JWKS refresh failed", "error", err)
		},
	})
	if err != nil {
		if jwtSecret == "" {
			return nil, fmt.Errorf("failed to load JWKS from %s: %w", jwksURL, err)
		}
		logger.Warn("JWKS unavailable, only HS256 tokens will verify", "error", err)
		return v, nil
	}
	v.jwks = jwks
	return v, nil
}

// NewSecretTokenValidator only verifies HS256 tokens.
func NewSecretTokenValidator(jwtSecret string) *TokenValidator {
	return &TokenValidator{secret: []byte(jwtSecret)}
}

func (v *TokenValidator) keyFor(token *jwt.Token) (interface{}, error) {
	if _, ok := token.Method.(*jwt.SigningMethodHMAC); ok {
		if len(v.secret) == 0 {
			return nil, ErrNoSigningKey
		}
		return v.secret, nil
	}
	if v.jwks == nil {
		return nil, ErrNoSigningKey
	}
	return v.jwks.Keyfunc(token)
}

func (v *TokenValidator) Validate(tokenStr string) (*CustomClaims, error) {
	token, err := jwt.ParseWithClaims(tokenStr, &CustomClaims{}, v.keyFor,
		jwt.WithValidMethods([]string{"HS256", "RS256", "ES256"}),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	claims, ok := token.Claims.(*CustomClaims)
	if !ok || !token.Valid || claims.Subject == "" {
		return nil, ErrInvalidToken
	}
	return claims, nil
}

// Close stops the background JWKS refresh.
func (v *TokenValidator) Close() {
	if v.jwks != nil {
		v.jwks.EndBackground()
	}
}

// CloudinaryUploader stores service images.
type CloudinaryUploader struct {
	cld    *cloudinary.Cloudinary
	folder string
}

func NewCloudinaryUploader(cld *cloudinary.Cloudinary, folder string) *CloudinaryUploader {
	if folder == "" {
		folder = ServiceImageFolder
	}
	return &CloudinaryUploader{cld: cld, folder: folder}
}

// ValidImageSource reports whether source is an https URL or a base64 image data URI.
// Anything else would be read by the Cloudinary client as a local file path.
func ValidImageSource(source string) bool {
	if len(source) > 5 && strings.EqualFold(source[:5], "data:") {
		header, _, ok := strings.Cut(source[5:], ",")
		if !ok {
			return false
		}
		mediaType, encoding, ok := strings.Cut(header, ";")
		return ok && strings.HasPrefix(strings.ToLower(mediaType), "image/") &&
			strings.EqualFold(encoding, "base64")
	}
	u, err := url.Parse(source)
	if err != nil {
		return false
	}
	return u.Scheme == "https" && u.Host != ""
}

// UploadImage uploads a remote https image or a base64 data URI. Local paths are refused.
func (u *CloudinaryUploader) UploadImage(ctx context.Context, source string) (string, error) {
	if !ValidImageSource(source) {
		return "", ErrInvalidImageSource
	}
	res, err := u.cld.Upload.Upload(ctx, source, uploader.UploadParams{
		Folder: u.folder,
		Tags:   []string{imageTag},
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload image: %w", err)
	}
	if res.Error.Message != "" {
		return "", fmt.Errorf("failed to upload image: %s", res.Error.Message)
	}
	return res.SecureURL, nil
}
