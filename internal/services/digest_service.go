package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/joshua-takyi/fasttrack/internal/helpers"
	"github.com/joshua-takyi/fasttrack/internal/models"
	"github.com/joshua-takyi/fasttrack/internal/notify"
	"github.com/robfig/cron/v3"
)

const digestTimeout = 2 * time.Minute

type DigestResult struct {
	Date     string `json:"date"`
	Bookings int    `json:"bookings"`
	Status   string `json:"status"`
}

// DigestService sends operations a morning summary of the day's open bookings.
type DigestService struct {
	bookingRepo models.BookingRepo
	logRepo     models.NotificationLogRepo
	sender      MessageSender
	adminNumber string
	locale      string
	logger      *slog.Logger
	now         func() time.Time
}

func NewDigestService(bookingRepo models.BookingRepo, logRepo models.NotificationLogRepo, sender MessageSender, adminNumber, locale string, logger *slog.Logger) *DigestService {
	return &DigestService{
		bookingRepo: bookingRepo,
		logRepo:     logRepo,
		sender:      sender,
		adminNumber: adminNumber,
		locale:      locale,
		logger:      logger,
		now:         time.Now,
	}
}

func (ds *DigestService) WithClock(now func() time.Time) *DigestService {
	ds.now = now
	return ds
}

// SendDailyDigest sends today's pending and confirmed bookings. Nothing is sent on an empty day.
func (ds *DigestService) SendDailyDigest(ctx context.Context) (*DigestResult, error) {
	day := ds.now().In(helpers.KuwaitTime)
	date := day.Format(helpers.DateLayout)

	bookings, err := ds.bookingRepo.ListBookings(ctx, models.BookingFilter{
		Statuses:      []models.BookingStatus{models.StatusPending, models.StatusConfirmed},
		PreferredDate: date,
	})
	if err != nil {
		return nil, storeErr("failed to list today's bookings", err)
	}
	result := &DigestResult{Date: date, Bookings: len(bookings)}
	if len(bookings) == 0 {
		result.Status = models.DeliverySkipped
		ds.logger.Info("No bookings today, digest not sent", "date", date)
		return result, nil
	}

	sortByEffectiveTime(bookings)
	message := ComposeDigest(day, bookings, ds.locale)

	entry := &models.NotificationLog{
		Kind:    models.KindDailyDigest,
		Channel: models.ChannelWhatsApp,
		To:      ds.adminNumber,
		Message: message,
		SentAt:  ds.now(),
	}
	_, sendErr := ds.sender.Send(ctx, ds.adminNumber, message)
	switch {
	case errors.Is(sendErr, notify.ErrDisabled):
		entry.Status = models.DeliverySkipped
	case sendErr != nil:
		entry.Status = models.DeliveryFailed
		entry.Error = sendErr.Error()
	default:
		entry.Status = models.DeliverySent
	}
	if err := ds.logRepo.RecordNotification(ctx, entry); err != nil {
		ds.logger.Warn("Failed to record digest log", "error", err)
	}

	result.Status = entry.Status
	if entry.Status == models.DeliveryFailed {
		return result, fmt.Errorf("failed to send daily digest: %w", sendErr)
	}
	ds.logger.Info("Daily digest processed", "date", date, "bookings", len(bookings), "status", entry.Status)
	return result, nil
}

// Start schedules the digest on a cron spec evaluated in Kuwait time. Stop the returned
// scheduler on shutdown.
func (ds *DigestService) Start(spec string) (*cron.Cron, error) {
	c := cron.New(cron.WithLocation(helpers.KuwaitTime))
	_, err := c.AddFunc(spec, func() {
		ctx, cancel := context.WithTimeout(context.Background(), digestTimeout)
		defer cancel()
		if _, err := ds.SendDailyDigest(ctx); err != nil {
			ds.logger.Error("Daily digest failed", "error", err)
		}
	})
	if err != nil {
		return nil, fmt.Errorf("invalid digest schedule %q: %w", spec, err)
	}
	c.Start()
	ds.logger.Info("Digest scheduler started", "schedule", spec)
	return c, nil
}

func sortByEffectiveTime(bookings []*models.Booking) {
	minutes := func(b *models.Booking) int {
		t, ok := helpers.ParseClock(b.EffectiveTime())
		if !ok {
			return 24 * 60
		}
		return t.Hour()*60 + t.Minute()
	}
	sort.SliceStable(bookings, func(i, j int) bool {
		return minutes(bookings[i]) < minutes(bookings[j])
	})
}
