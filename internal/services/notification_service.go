package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/joshua-takyi/fasttrack/internal/models"
	"github.com/joshua-takyi/fasttrack/internal/notify"
	"golang.org/x/sync/errgroup"
)

const defaultPushConcurrency = 8

const (
	WhatsAppSent    = "sent"
	WhatsAppSkipped = "skipped"
)

// DispatchResult is the envelope returned to the webhook caller.
type DispatchResult struct {
	Success   bool         `json:"success"`
	Message   string       `json:"message,omitempty"`
	Error     string       `json:"error,omitempty"`
	BookingID int64        `json:"bookingId"`
	WhatsApp  string       `json:"whatsapp,omitempty"`
	Push      *PushSummary `json:"push,omitempty"`
}

type PushSummary struct {
	Attempted int `json:"attempted"`
	Succeeded int `json:"succeeded"`
	Failed    int `json:"failed"`
}

type NotificationService struct {
	serviceRepo      models.ServiceRepo
	subscriptionRepo models.SubscriptionRepo
	logRepo          models.NotificationLogRepo
	sender           MessageSender
	pusher           Pusher
	adminNumber      string
	pushConcurrency  int
	logger           *slog.Logger
	now              func() time.Time
}

func NewNotificationService(serviceRepo models.ServiceRepo, subscriptionRepo models.SubscriptionRepo, logRepo models.NotificationLogRepo, sender MessageSender, pusher Pusher, adminNumber string, logger *slog.Logger) *NotificationService {
	return &NotificationService{
		serviceRepo:      serviceRepo,
		subscriptionRepo: subscriptionRepo,
		logRepo:          logRepo,
		sender:           sender,
		pusher:           pusher,
		adminNumber:      adminNumber,
		pushConcurrency:  defaultPushConcurrency,
		logger:           logger,
		now:              time.Now,
	}
}

func (ns *NotificationService) WithClock(now func() time.Time) *NotificationService {
	ns.now = now
	return ns
}

// DispatchBookingCreated alerts operations about a new booking over WhatsApp and then
// pushes to every subscribed admin device. The returned result is always non-nil; a non-nil
// error means the result is a failure envelope.
func (ns *NotificationService) DispatchBookingCreated(ctx context.Context, booking *models.Booking) (*DispatchResult, error) {
	fail := func(err error) (*DispatchResult, error) {
		ns.logger.Error("Booking notification failed", "booking_id", booking.ID, "error", err)
		return &DispatchResult{Success: false, Error: err.Error(), BookingID: booking.ID}, err
	}

	subs, err := ns.subscriptionRepo.ListSubscriptions(ctx)
	if err != nil {
		ns.logger.Error("Error fetching subscriptions", "error", err)
	}

	if booking.ServiceID == nil {
		return fail(fmt.Errorf("booking %d has no service: %w", booking.ID, ErrNotFound))
	}
	svc, err := ns.serviceRepo.GetServiceByID(ctx, *booking.ServiceID)
	if err != nil {
		return fail(storeErr("failed to fetch service", err))
	}

	message := ComposeBookingAlert(booking, svc)

	sid, err := ns.sender.Send(ctx, ns.adminNumber, message)
	if errors.Is(err, notify.ErrDisabled) {
		ns.record(ctx, booking.ID, models.ChannelWhatsApp, models.DeliverySkipped, message, nil)
		return &DispatchResult{
			Success:   true,
			Message:   "Booking notification sent successfully",
			BookingID: booking.ID,
			WhatsApp:  WhatsAppSkipped,
		}, nil
	}
	if err != nil {
		ns.record(ctx, booking.ID, models.ChannelWhatsApp, models.DeliveryFailed, message, err)
		return fail(err)
	}
	ns.logger.Info("WhatsApp message sent", "booking_id", booking.ID, "sid", sid)
	ns.record(ctx, booking.ID, models.ChannelWhatsApp, models.DeliverySent, message, nil)

	summary := ns.fanOut(ctx, booking.ID, subs)
	if summary.Attempted > 0 {
		var pushErr error
		if summary.Failed > 0 {
			pushErr = fmt.Errorf("%d of %d push deliveries failed", summary.Failed, summary.Attempted)
		}
		status := models.DeliverySent
		if summary.Succeeded == 0 {
			status = models.DeliveryFailed
		}
		ns.record(ctx, booking.ID, models.ChannelPush, status, "", pushErr)
	}

	return &DispatchResult{
		Success:   true,
		Message:   "Booking notification sent successfully",
		BookingID: booking.ID,
		WhatsApp:  WhatsAppSent,
		Push:      &summary,
	}, nil
}

// fanOut attempts every subscription independently. One failure never cancels the others.
func (ns *NotificationService) fanOut(ctx context.Context, bookingID int64, subs []*models.AdminPushSubscription) PushSummary {
	results := make([]error, len(subs))
	n := notify.NewBookingPush(bookingID)

	var g errgroup.Group
	g.SetLimit(ns.pushConcurrency)
	for i, sub := range subs {
		g.Go(func() error {
			results[i] = ns.pusher.Push(ctx, sub.SubscriptionToken, n)
			return nil
		})
	}
	_ = g.Wait()

	summary := PushSummary{Attempted: len(subs)}
	for i, err := range results {
		if err != nil {
			summary.Failed++
			ns.logger.Warn("Push notification failed", "booking_id", bookingID, "user_id", subs[i].UserID, "error", err)
			continue
		}
		summary.Succeeded++
	}
	return summary
}

func (ns *NotificationService) record(ctx context.Context, bookingID int64, channel, status, message string, sendErr error) {
	entry := &models.NotificationLog{
		BookingID: bookingID,
		Kind:      models.KindBookingCreated,
		Channel:   channel,
		Message:   message,
		Status:    status,
		SentAt:    ns.now(),
	}
	if channel == models.ChannelWhatsApp {
		entry.To = ns.adminNumber
	}
	if sendErr != nil {
		entry.Error = sendErr.Error()
	}
	if err := ns.logRepo.RecordNotification(ctx, entry); err != nil {
		ns.logger.Warn("Failed to record notification log", "booking_id", bookingID, "error", err)
	}
}
