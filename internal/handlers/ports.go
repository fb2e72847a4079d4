package handlers

import (
	"context"
	"encoding/json"

	"github.com/google/uuid"
	"github.com/joshua-takyi/fasttrack/internal/events"
	"github.com/joshua-takyi/fasttrack/internal/models"
	"github.com/joshua-takyi/fasttrack/internal/services"
	"github.com/supabase-community/gotrue-go/types"
)

// The interfaces below are satisfied by the services package and let handlers be tested
// against fakes.

type BookingManager interface {
	Create(ctx context.Context, in *models.BookingInput) (*models.Booking, error)
	TransitionStatus(ctx context.Context, id int64, status string) (*models.Booking, error)
	ConfirmWithTime(ctx context.Context, id int64, confirmedTime, locale string) (*services.Confirmation, error)
	List(ctx context.Context, status string) ([]*models.Booking, error)
	Get(ctx context.Context, id int64) (*models.Booking, error)
	Notifications(ctx context.Context, id int64) ([]*models.NotificationLog, error)
}

type Catalog interface {
	ListPublic(ctx context.Context, locale string) ([]services.ServiceView, error)
	ListAll(ctx context.Context, locale string) ([]services.ServiceView, error)
	Create(ctx context.Context, in *models.ServiceInput) (*models.Service, error)
	Update(ctx context.Context, id int64, patch *models.ServicePatch) (*models.Service, error)
	Delete(ctx context.Context, id int64) error
}

type Dispatcher interface {
	DispatchBookingCreated(ctx context.Context, booking *models.Booking) (*services.DispatchResult, error)
}

type Subscriptions interface {
	Subscribe(ctx context.Context, userID uuid.UUID, token json.RawMessage) (*models.AdminPushSubscription, error)
	Unsubscribe(ctx context.Context, userID uuid.UUID) error
}

type Authenticator interface {
	Login(ctx context.Context, req *models.LoginRequest) (*types.TokenResponse, error)
	RefreshToken(ctx context.Context, refreshToken string) (*types.TokenResponse, error)
	Logout(ctx context.Context, accessToken string) error
}

// ChangeSubscriber hands out a change stream and a function that ends it.
type ChangeSubscriber interface {
	Subscribe(ctx context.Context) (<-chan events.Change, func(), error)
}
