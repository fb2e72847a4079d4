package services

import (
	"context"

	"github.com/joshua-takyi/fasttrack/internal/events"
	"github.com/joshua-takyi/fasttrack/internal/helpers"
	"github.com/joshua-takyi/fasttrack/internal/models"
	"github.com/joshua-takyi/fasttrack/internal/notify"
)

type ChangePublisher interface {
	Publish(ctx context.Context, c events.Change) error
}

type BookingEventPublisher interface {
	PublishBookingCreated(ctx context.Context, booking *models.Booking) error
}

// MessageSender delivers a WhatsApp message and returns the gateway's message id.
type MessageSender interface {
	Send(ctx context.Context, to, body string) (string, error)
}

type Pusher interface {
	Push(ctx context.Context, token string, n notify.PushNotification) error
}

type ImageUploader interface {
	UploadImage(ctx context.Context, source string) (string, error)
}

type TokenVerifier interface {
	Validate(token string) (*helpers.CustomClaims, error)
}
