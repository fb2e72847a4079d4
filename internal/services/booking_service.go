package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/joshua-takyi/fasttrack/internal/events"
	"github.com/joshua-takyi/fasttrack/internal/helpers"
	"github.com/joshua-takyi/fasttrack/internal/models"
	"github.com/joshua-takyi/fasttrack/internal/notify"
)

type BookingService struct {
	bookingRepo models.BookingRepo
	serviceRepo models.ServiceRepo
	logRepo     models.NotificationLogRepo
	changes     ChangePublisher
	queue       BookingEventPublisher
	logger      *slog.Logger
	now         func() time.Time
}

func NewBookingService(bookingRepo models.BookingRepo, serviceRepo models.ServiceRepo, logRepo models.NotificationLogRepo, changes ChangePublisher, logger *slog.Logger) *BookingService {
	return &BookingService{
		bookingRepo: bookingRepo,
		serviceRepo: serviceRepo,
		logRepo:     logRepo,
		changes:     changes,
		logger:      logger,
		now:         time.Now,
	}
}

// WithQueue makes Create publish booking.created for the notifier worker.
func (bs *BookingService) WithQueue(queue BookingEventPublisher) *BookingService {
	bs.queue = queue
	return bs
}

func (bs *BookingService) WithClock(now func() time.Time) *BookingService {
	bs.now = now
	return bs
}

// Confirmation is the result of ConfirmWithTime: the stored booking plus the
// pre-filled message the admin sends from their own WhatsApp.
type Confirmation struct {
	Booking     *models.Booking `json:"booking"`
	Message     string          `json:"message"`
	WhatsAppURL string          `json:"whatsapp_url"`
}

// Create validates a public booking request and stores it as pending.
// Any status sent by the client is ignored.
func (bs *BookingService) Create(ctx context.Context, in *models.BookingInput) (*models.Booking, error) {
	in.CustomerName = strings.TrimSpace(in.CustomerName)
	in.CarType = strings.TrimSpace(in.CarType)
	in.Area = strings.TrimSpace(in.Area)
	in.FullAddress = strings.TrimSpace(in.FullAddress)
	in.PreferredDate = strings.TrimSpace(in.PreferredDate)

	verr, err := validationErrors(models.Validate.Struct(in))
	if err != nil {
		return nil, fmt.Errorf("failed to validate booking: %w", err)
	}

	if !verr.has("preferred_date") {
		date, _ := time.ParseInLocation(helpers.DateLayout, in.PreferredDate, helpers.KuwaitTime)
		today := bs.today()
		if date.Before(today) {
			verr.add("preferred_date", "must be today or later")
		}
	}

	var service *models.Service
	if !verr.has("service_id") {
		service, err = bs.serviceRepo.GetServiceByID(ctx, *in.ServiceID)
		switch {
		case errors.Is(err, models.ErrRecordNotFound):
			verr.add("service_id", "does not reference an existing service")
		case err != nil:
			return nil, storeErr("failed to look up service", err)
		case !service.IsActive:
			verr.add("service_id", "is not currently offered")
		}
	}

	if err := verr.orNil(); err != nil {
		return nil, err
	}

	slot, _ := helpers.NormalizeTimeSlot(in.PreferredTime)
	booking := &models.Booking{
		CustomerName:   in.CustomerName,
		WhatsAppNumber: helpers.InternationalNumber(in.WhatsAppNumber),
		CarType:        in.CarType,
		Area:           in.Area,
		FullAddress:    in.FullAddress,
		PreferredDate:  in.PreferredDate,
		PreferredTime:  slot,
		Status:         models.StatusPending,
		ServiceID:      in.ServiceID,
		Latitude:       in.Latitude,
		Longitude:      in.Longitude,
	}

	created, err := bs.bookingRepo.CreateBooking(ctx, booking)
	if err != nil {
		return nil, storeErr("failed to create booking", err)
	}
	created.Service = service

	bs.logger.Info("Booking created", "booking_id", created.ID, "service_id", *in.ServiceID, "area", created.Area)
	bs.publishChange(ctx, models.BookingsTable, events.OpInsert, created.ID)
	if bs.queue != nil {
		if err := bs.queue.PublishBookingCreated(ctx, created); err != nil {
			bs.logger.Error("Failed to publish booking.created", "booking_id", created.ID, "error", err)
		}
	}
	return created, nil
}

// TransitionStatus moves a booking along the lifecycle. Requesting the current status is a no-op.
func (bs *BookingService) TransitionStatus(ctx context.Context, id int64, newStatus string) (*models.Booking, error) {
	next := models.BookingStatus(strings.ToLower(strings.TrimSpace(newStatus)))
	if !next.Valid() {
		return nil, fieldError("status", "must be one of pending, confirmed, completed, cancelled")
	}

	current, err := bs.bookingRepo.GetBookingByID(ctx, id)
	if err != nil {
		return nil, storeErr("failed to get booking", err)
	}
	if current.Status == next {
		return current, nil
	}
	if !current.Status.CanTransitionTo(next) {
		return nil, fmt.Errorf("%w: %s to %s", ErrInvalidTransition, current.Status, next)
	}

	updated, err := bs.bookingRepo.UpdateBooking(ctx, id, map[string]interface{}{
		"status": next,
	})
	if err != nil {
		return nil, storeErr("failed to update booking status", err)
	}
	keepService(updated, current)

	bs.logger.Info("Booking status changed", "booking_id", id, "from", current.Status, "to", next)
	bs.publishChange(ctx, models.BookingsTable, events.OpUpdate, id)
	return updated, nil
}

// ConfirmWithTime confirms a pending or confirmed booking at confirmedTime and prepares the
// customer's WhatsApp confirmation. Every call composes a new message.
func (bs *BookingService) ConfirmWithTime(ctx context.Context, id int64, confirmedTime, locale string) (*Confirmation, error) {
	clock, ok := helpers.ParseClock(confirmedTime)
	if strings.TrimSpace(confirmedTime) == "" {
		return nil, fieldError("confirmed_time", "is required")
	}
	if !ok {
		return nil, fieldError("confirmed_time", "must be a time such as 14:30 or 02:30 PM")
	}

	current, err := bs.bookingRepo.GetBookingByID(ctx, id)
	if err != nil {
		return nil, storeErr("failed to get booking", err)
	}
	if current.Status != models.StatusPending && current.Status != models.StatusConfirmed {
		return nil, fmt.Errorf("%w: cannot confirm a %s booking", ErrInvalidTransition, current.Status)
	}

	label := helpers.FormatClock(clock)
	updated, err := bs.bookingRepo.UpdateBooking(ctx, id, map[string]interface{}{
		"status":         models.StatusConfirmed,
		"confirmed_time": label,
	})
	if err != nil {
		return nil, storeErr("failed to confirm booking", err)
	}
	keepService(updated, current)

	message := ComposeConfirmation(updated, locale)
	link := notify.WhatsAppLink(updated.WhatsAppNumber, message)

	entry := &models.NotificationLog{
		BookingID: id,
		Kind:      models.KindBookingConfirmed,
		Channel:   models.ChannelWhatsAppLink,
		To:        helpers.InternationalNumber(updated.WhatsAppNumber),
		Message:   message,
		Status:    models.DeliveryPrepared,
		SentAt:    bs.now(),
	}
	if err := bs.logRepo.RecordNotification(ctx, entry); err != nil {
		bs.logger.Warn("Failed to record confirmation log", "booking_id", id, "error", err)
	}

	bs.logger.Info("Booking confirmed", "booking_id", id, "confirmed_time", label, "preferred_time", updated.PreferredTime)
	bs.publishChange(ctx, models.BookingsTable, events.OpUpdate, id)
	return &Confirmation{Booking: updated, Message: message, WhatsAppURL: link}, nil
}

// List returns bookings newest first, optionally narrowed to one status.
func (bs *BookingService) List(ctx context.Context, status string) ([]*models.Booking, error) {
	var filter models.BookingFilter
	if status = strings.ToLower(strings.TrimSpace(status)); status != "" {
		s := models.BookingStatus(status)
		if !s.Valid() {
			return nil, fieldError("status", "must be one of pending, confirmed, completed, cancelled")
		}
		filter.Statuses = []models.BookingStatus{s}
	}
	bookings, err := bs.bookingRepo.ListBookings(ctx, filter)
	if err != nil {
		return nil, storeErr("failed to list bookings", err)
	}
	return bookings, nil
}

func (bs *BookingService) Get(ctx context.Context, id int64) (*models.Booking, error) {
	booking, err := bs.bookingRepo.GetBookingByID(ctx, id)
	if err != nil {
		return nil, storeErr("failed to get booking", err)
	}
	return booking, nil
}

func (bs *BookingService) Notifications(ctx context.Context, id int64) ([]*models.NotificationLog, error) {
	if _, err := bs.Get(ctx, id); err != nil {
		return nil, err
	}
	logs, err := bs.logRepo.ListNotifications(ctx, id, 50)
	if err != nil {
		return nil, fmt.Errorf("failed to list notifications: %w", err)
	}
	return logs, nil
}

func (bs *BookingService) today() time.Time {
	now := bs.now().In(helpers.KuwaitTime)
	return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, helpers.KuwaitTime)
}

func (bs *BookingService) publishChange(ctx context.Context, table, op string, id int64) {
	if bs.changes == nil {
		return
	}
	c := events.Change{Table: table, Op: op, ID: id, At: bs.now().UTC()}
	if err := bs.changes.Publish(ctx, c); err != nil {
		bs.logger.Warn("Failed to publish change", "table", table, "id", id, "error", err)
	}
}

// Update responses from PostgREST carry no embedded service; reuse the one already loaded.
func keepService(updated, current *models.Booking) {
	if updated.Service == nil && updated.ServiceID != nil && current.Service != nil && current.Service.ID == *updated.ServiceID {
		updated.Service = current.Service
	}
}
