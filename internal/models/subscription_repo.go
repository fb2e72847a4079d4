package models

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

func (su *SupabaseRepo) UpsertSubscription(ctx context.Context, sub *AdminPushSubscription) (*AdminPushSubscription, error) {
	row := map[string]interface{}{
		"user_id":            sub.UserID,
		"subscription_token": sub.SubscriptionToken,
		"updated_at":         time.Now().UTC(),
	}
	raw, status, err := su.supabaseClient.From(SubscriptionsTable).
		Upsert(row, "user_id", "representation", "").
		Execute()
	if err != nil {
		return nil, postgrestError("failed to save push subscription", status, raw, err)
	}

	var rows []*AdminPushSubscription
	if err := json.Unmarshal(raw, &rows); err != nil {
		return nil, fmt.Errorf("failed to unmarshal push subscription: %w", err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("no push subscription returned after upsert")
	}
	return rows[0], nil
}

func (su *SupabaseRepo) DeleteSubscription(ctx context.Context, userID uuid.UUID) error {
	raw, status, err := su.supabaseClient.From(SubscriptionsTable).
		Delete("minimal", "").
		Eq("user_id", userID.String()).
		Execute()
	if err != nil {
		return postgrestError("failed to delete push subscription", status, raw, err)
	}
	return nil
}

func (su *SupabaseRepo) ListSubscriptions(ctx context.Context) ([]*AdminPushSubscription, error) {
	raw, status, err := su.supabaseClient.From(SubscriptionsTable).
		Select("user_id,subscription_token,updated_at", "", false).
		Execute()
	if err != nil {
		return nil, postgrestError("failed to list push subscriptions", status, raw, err)
	}

	subs := []*AdminPushSubscription{}
	if err := json.Unmarshal(raw, &subs); err != nil {
		return nil, fmt.Errorf("failed to unmarshal push subscriptions: %w", err)
	}
	return subs, nil
}
