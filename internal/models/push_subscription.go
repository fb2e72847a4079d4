package models

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// AdminPushSubscription stores one browser push subscription per admin.
// Re-subscribing from another device replaces the previous token.
type AdminPushSubscription struct {
	UserID            uuid.UUID `json:"user_id" gorm:"type:uuid;primaryKey"`
	SubscriptionToken string    `json:"subscription_token" gorm:"type:text;not null"`
	UpdatedAt         time.Time `json:"updated_at" gorm:"autoUpdateTime"`
}

func (AdminPushSubscription) TableName() string { return SubscriptionsTable }

type SubscriptionRepo interface {
	UpsertSubscription(ctx context.Context, sub *AdminPushSubscription) (*AdminPushSubscription, error)
	DeleteSubscription(ctx context.Context, userID uuid.UUID) error
	ListSubscriptions(ctx context.Context) ([]*AdminPushSubscription, error)
}
