package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/joshua-takyi/fasttrack/internal/config"
	"github.com/joshua-takyi/fasttrack/internal/connect"
	"github.com/joshua-takyi/fasttrack/internal/container"
	"github.com/joshua-takyi/fasttrack/internal/events"
)

// The notifier consumes booking.created events when NOTIFY_TRIGGER=queue and sends the
// daily operations digest on DIGEST_SCHEDULE.
func main() {
	_ = godotenv.Load(".env.local")

	cfg, err := config.LoadConfig()
	if err != nil {
		slog.Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}
	logger := cfg.NewLogger().With("component", "notifier")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	res, err := connect.Open(ctx, cfg, logger)
	if err != nil {
		logger.Error("Failed to open connections", "error", err)
		os.Exit(1)
	}
	defer res.Close(logger)

	app, err := container.NewContainer(ctx, cfg, res, logger)
	if err != nil {
		logger.Error("Failed to build container", "error", err)
		os.Exit(1)
	}
	defer app.Close()

	scheduler, err := app.DigestService.Start(cfg.DigestSchedule)
	if err != nil {
		logger.Error("Failed to start digest scheduler", "error", err)
		os.Exit(1)
	}
	defer func() { <-scheduler.Stop().Done() }()

	if cfg.NotifyTrigger != "queue" {
		logger.Info("Booking alerts arrive by webhook, only the digest runs here")
		<-ctx.Done()
		return
	}

	consumer, err := events.NewConsumer(cfg.RabbitMQURL, events.BookingExchange, events.NotificationsQueue,
		[]string{events.RKBookingCreated}, 8, logger)
	if err != nil {
		logger.Error("Failed to start consumer", "error", err)
		os.Exit(1)
	}
	defer consumer.Close()

	logger.Info("Consuming booking events", "queue", events.NotificationsQueue)
	err = consumer.Run(ctx, func(ctx context.Context, ev events.BookingCreated) error {
		result, err := app.NotificationService.DispatchBookingCreated(ctx, &ev.Record)
		if err != nil {
			return err
		}
		logger.Info("Booking notification dispatched", "booking_id", result.BookingID, "whatsapp", result.WhatsApp)
		return nil
	})
	if err != nil {
		logger.Error("Consumer stopped", "error", err)
	}
	logger.Info("Notifier exited")
}
