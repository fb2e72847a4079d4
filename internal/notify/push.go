package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"

	webpush "github.com/SherClockHolmes/webpush-go"
)

// PushNotification is the payload the admin service worker renders.
type PushNotification struct {
	Notification PushContent `json:"notification"`
}

type PushContent struct {
	Title string   `json:"title"`
	Body  string   `json:"body"`
	Icon  string   `json:"icon"`
	Badge string   `json:"badge"`
	Data  PushData `json:"data"`
}

type PushData struct {
	URL       string `json:"url"`
	BookingID int64  `json:"bookingId"`
}

func NewBookingPush(bookingID int64) PushNotification {
	return PushNotification{
		Notification: PushContent{
			Title: "Fast Track Wash",
			Body:  "New Fast Track Booking! 🚗✨ Tap to view.",
			Icon:  "/icon-192x192.svg",
			Badge: "/icon-192x192.svg",
			Data: PushData{
				URL:       "/admin",
				BookingID: bookingID,
			},
		},
	}
}

// WebPusher delivers notifications with VAPID-signed Web Push requests.
type WebPusher struct {
	options webpush.Options
}

func NewWebPusher(publicKey, privateKey, subscriber string, ttl int) *WebPusher {
	return &WebPusher{
		options: webpush.Options{
			Subscriber:      subscriber,
			VAPIDPublicKey:  publicKey,
			VAPIDPrivateKey: privateKey,
			TTL:             ttl,
		},
	}
}

// Push sends one notification. token is the browser PushSubscription serialized as JSON.
func (p *WebPusher) Push(ctx context.Context, token string, n PushNotification) error {
	var sub webpush.Subscription
	if err := json.Unmarshal([]byte(token), &sub); err != nil {
		return fmt.Errorf("invalid push subscription: %w", err)
	}
	if sub.Endpoint == "" {
		return fmt.Errorf("invalid push subscription: missing endpoint")
	}

	payload, err := json.Marshal(n)
	if err != nil {
		return fmt.Errorf("failed to encode push payload: %w", err)
	}

	opts := p.options
	resp, err := webpush.SendNotificationWithContext(ctx, payload, &sub, &opts)
	if err != nil {
		return fmt.Errorf("push delivery failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("push service returned %d: %s", resp.StatusCode, string(body))
	}
	return nil
}

// LogPusher is used without VAPID keys. It records the payload and reports delivery.
type LogPusher struct {
	Logger *slog.Logger
}

func (l LogPusher) Push(_ context.Context, token string, n PushNotification) error {
	if l.Logger != nil {
		l.Logger.Info("Push notification would be sent",
			"booking_id", n.Notification.Data.BookingID,
			"subscription_bytes", len(token))
	}
	return nil
}
