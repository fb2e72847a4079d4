package services

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"
	"github.com/joshua-takyi/fasttrack/internal/models"
)

type SubscriptionService struct {
	subscriptionRepo models.SubscriptionRepo
	logger           *slog.Logger
}

func NewSubscriptionService(subscriptionRepo models.SubscriptionRepo, logger *slog.Logger) *SubscriptionService {
	return &SubscriptionService{subscriptionRepo: subscriptionRepo, logger: logger}
}

// Subscribe stores the admin's browser push subscription, replacing any earlier one.
func (ss *SubscriptionService) Subscribe(ctx context.Context, userID uuid.UUID, token json.RawMessage) (*models.AdminPushSubscription, error) {
	if userID == uuid.Nil {
		return nil, ErrUnauthorized
	}
	var probe struct {
		Endpoint string `json:"endpoint"`
		Keys     struct {
			P256dh string `json:"p256dh"`
			Auth   string `json:"auth"`
		} `json:"keys"`
	}
	if len(token) == 0 || json.Unmarshal(token, &probe) != nil {
		return nil, fieldError("subscription", "must be a push subscription object")
	}
	if !strings.HasPrefix(probe.Endpoint, "https://") || probe.Keys.P256dh == "" || probe.Keys.Auth == "" {
		return nil, fieldError("subscription", "must include an https endpoint and p256dh/auth keys")
	}

	saved, err := ss.subscriptionRepo.UpsertSubscription(ctx, &models.AdminPushSubscription{
		UserID:            userID,
		SubscriptionToken: string(token),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to save push subscription: %w", err)
	}
	ss.logger.Info("Push notifications enabled", "user_id", userID)
	return saved, nil
}

func (ss *SubscriptionService) Unsubscribe(ctx context.Context, userID uuid.UUID) error {
	if userID == uuid.Nil {
		return ErrUnauthorized
	}
	if err := ss.subscriptionRepo.DeleteSubscription(ctx, userID); err != nil {
		return fmt.Errorf("failed to delete push subscription: %w", err)
	}
	ss.logger.Info("Push notifications disabled", "user_id", userID)
	return nil
}
