package container

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/joshua-takyi/fasttrack/internal/config"
	"github.com/joshua-takyi/fasttrack/internal/connect"
	"github.com/joshua-takyi/fasttrack/internal/events"
	"github.com/joshua-takyi/fasttrack/internal/helpers"
	"github.com/joshua-takyi/fasttrack/internal/models"
	"github.com/joshua-takyi/fasttrack/internal/notify"
	"github.com/joshua-takyi/fasttrack/internal/services"
)

// ChangeFeed is what the booking and catalog services publish to and admin sessions stream from.
type ChangeFeed interface {
	Publish(ctx context.Context, c events.Change) error
	Subscribe(ctx context.Context) (<-chan events.Change, func(), error)
}

// Container holds all application dependencies
type Container struct {
	Logger *slog.Logger
	Config *config.Config

	Feed     ChangeFeed
	LogRepo  models.NotificationLogRepo
	Verifier *helpers.TokenValidator

	BookingService      *services.BookingService
	CatalogService      *services.CatalogService
	NotificationService *services.NotificationService
	SubscriptionService *services.SubscriptionService
	UserService         *services.UserService
	DigestService       *services.DigestService

	publisher  *events.Publisher
	streams    context.Context
	endStreams context.CancelFunc
}

type recordStore interface {
	models.ServiceRepo
	models.BookingRepo
	models.SubscriptionRepo
	models.ProfileRepo
}

// NewContainer wires repositories, gateways and services from the opened resources.
// Missing optional backends fall back to in-process or logging stand-ins.
func NewContainer(ctx context.Context, cfg *config.Config, res *connect.Resources, logger *slog.Logger) (*Container, error) {
	supa := models.SupabaseNewRepo(res.Supabase)

	var store recordStore = supa
	if res.Postgres != nil {
		g := models.GormNewRepo(res.Postgres)
		if err := g.AutoMigrate(); err != nil {
			return nil, fmt.Errorf("failed to migrate schema: %w", err)
		}
		store = g
		logger.Info("Using Postgres record store")
	}

	var feed ChangeFeed = events.NewMemoryFeed()
	if res.Redis != nil {
		feed = events.NewRedisFeed(res.Redis, cfg.Redis.Channel, logger)
	}

	var logRepo models.NotificationLogRepo = models.DiscardNotificationLog{}
	if res.Mongo != nil {
		mongoRepo := models.MongodbNewRepo(res.Mongo, cfg.MongoDBName)
		if err := mongoRepo.EnsureIndexes(ctx); err != nil {
			logger.Warn("Failed to ensure notification log indexes", "error", err)
		}
		logRepo = mongoRepo
	}

	// uploader must stay a nil interface when Cloudinary is off.
	var uploader services.ImageUploader
	if res.Cloudinary != nil {
		uploader = helpers.NewCloudinaryUploader(res.Cloudinary, helpers.ServiceImageFolder)
	}

	var sender services.MessageSender = notify.DisabledSender{Logger: logger}
	if cfg.Twilio.Configured() {
		sender = notify.NewTwilioSender(cfg.Twilio.AccountSID, cfg.Twilio.AuthToken, cfg.Twilio.WhatsAppNumber)
	} else {
		logger.Warn("Twilio credentials not configured, WhatsApp alerts will be skipped")
	}

	var pusher services.Pusher = notify.LogPusher{Logger: logger}
	if cfg.Push.Configured() {
		pusher = notify.NewWebPusher(cfg.Push.VAPIDPublicKey, cfg.Push.VAPIDPrivateKey, cfg.Push.Subscriber, cfg.Push.TTL)
	}

	verifier, err := helpers.NewTokenValidator(ctx, cfg.SupabaseURL, cfg.SupabaseJWTSecret, logger)
	if err != nil {
		return nil, err
	}

	bookingService := services.NewBookingService(store, store, logRepo, feed, logger)
	var publisher *events.Publisher
	if cfg.NotifyTrigger == "queue" {
		publisher, err = events.NewPublisher(cfg.RabbitMQURL, events.BookingExchange)
		if err != nil {
			verifier.Close()
			return nil, fmt.Errorf("failed to connect to RabbitMQ: %w", err)
		}
		bookingService.WithQueue(publisher)
		logger.Info("Booking notifications go through RabbitMQ", "exchange", events.BookingExchange)
	}

	streams, endStreams := context.WithCancel(context.Background())
	return &Container{
		Logger:   logger,
		Config:   cfg,
		Feed:     feed,
		LogRepo:  logRepo,
		Verifier: verifier,

		BookingService:      bookingService,
		CatalogService:      services.NewCatalogService(store, uploader, feed, logger),
		NotificationService: services.NewNotificationService(store, store, logRepo, sender, pusher, cfg.Twilio.AdminNumber, logger),
		SubscriptionService: services.NewSubscriptionService(store, logger),
		UserService:         services.NewUserService(supa, store, verifier, logger),
		DigestService:       services.NewDigestService(store, logRepo, sender, cfg.Twilio.AdminNumber, cfg.OperatorLocale, logger),

		publisher:  publisher,
		streams:    streams,
		endStreams: endStreams,
	}, nil
}

// StreamsDone is closed once EndStreams is called.
func (c *Container) StreamsDone() <-chan struct{} {
	return c.streams.Done()
}

// EndStreams closes every open admin change stream so that server shutdown does not wait on them.
func (c *Container) EndStreams() {
	c.endStreams()
}

func (c *Container) Close() {
	c.EndStreams()
	if c.publisher != nil {
		if err := c.publisher.Close(); err != nil {
			c.Logger.Error("Error closing RabbitMQ publisher", "error", err)
		}
	}
	if c.Verifier != nil {
		c.Verifier.Close()
	}
}
