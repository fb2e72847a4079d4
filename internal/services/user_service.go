package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"
	"github.com/joshua-takyi/fasttrack/internal/helpers"
	"github.com/joshua-takyi/fasttrack/internal/models"
	"github.com/supabase-community/gotrue-go/types"
)

type UserService struct {
	authRepo    models.AuthRepo
	profileRepo models.ProfileRepo
	verifier    TokenVerifier
	logger      *slog.Logger
}

func NewUserService(authRepo models.AuthRepo, profileRepo models.ProfileRepo, verifier TokenVerifier, logger *slog.Logger) *UserService {
	return &UserService{
		authRepo:    authRepo,
		profileRepo: profileRepo,
		verifier:    verifier,
		logger:      logger,
	}
}

// Login signs an admin in. A valid account without the admin role is signed out again.
func (us *UserService) Login(ctx context.Context, req *models.LoginRequest) (*types.TokenResponse, error) {
	req.Email = strings.TrimSpace(strings.ToLower(req.Email))
	verr, err := validationErrors(models.Validate.Struct(req))
	if err != nil {
		return nil, fmt.Errorf("failed to validate login: %w", err)
	}
	if err := verr.orNil(); err != nil {
		return nil, err
	}

	resp, err := us.authRepo.AuthenticateUser(ctx, req.Email, req.Password)
	if err != nil {
		us.logger.Warn("Login failed", "email", req.Email, "error", err)
		return nil, fmt.Errorf("%w: invalid email or password", ErrUnauthorized)
	}

	profile, err := us.profileRepo.GetProfile(ctx, resp.User.ID)
	if err != nil || profile.Role != helpers.RoleAdmin {
		if logoutErr := us.authRepo.Logout(ctx, resp.AccessToken); logoutErr != nil {
			us.logger.Warn("Failed to revoke non-admin session", "user_id", resp.User.ID, "error", logoutErr)
		}
		if err != nil && !errors.Is(err, models.ErrRecordNotFound) {
			return nil, storeErr("failed to load profile", err)
		}
		return nil, fmt.Errorf("%w: admin access required", ErrForbidden)
	}

	us.logger.Info("Admin logged in", "user_id", resp.User.ID)
	return resp, nil
}

func (us *UserService) RefreshToken(ctx context.Context, refreshToken string) (*types.TokenResponse, error) {
	if refreshToken == "" {
		return nil, fmt.Errorf("%w: refresh token is required", ErrUnauthorized)
	}
	resp, err := us.authRepo.RefreshToken(ctx, refreshToken)
	if err != nil {
		return nil, fmt.Errorf("%w: token refresh failed", ErrUnauthorized)
	}
	return resp, nil
}

func (us *UserService) Logout(ctx context.Context, accessToken string) error {
	if accessToken == "" {
		return nil
	}
	return us.authRepo.Logout(ctx, accessToken)
}

// ResolveSession verifies an access token and loads the caller's profile.
func (us *UserService) ResolveSession(ctx context.Context, accessToken string) (*helpers.SessionClaims, error) {
	claims, err := us.verifier.Validate(accessToken)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnauthorized, err)
	}
	userID, err := uuid.Parse(claims.Subject)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid subject", ErrUnauthorized)
	}

	session := &helpers.SessionClaims{
		CustomClaims: claims,
		UserID:       userID.String(),
		Email:        claims.Email,
		Role:         helpers.RoleUser,
	}
	profile, err := us.profileRepo.GetProfile(ctx, userID)
	switch {
	case errors.Is(err, models.ErrRecordNotFound):
		return session, nil
	case err != nil:
		return nil, storeErr("failed to load profile", err)
	}
	session.Role = profile.Role
	session.FullName = profile.FullName
	if profile.Email != "" {
		session.Email = profile.Email
	}
	return session, nil
}
