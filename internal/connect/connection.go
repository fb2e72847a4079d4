package connect

import (
	"context"
	"crypto/tls"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/joshua-takyi/fasttrack/internal/config"
	"github.com/redis/go-redis/v9"
	"github.com/supabase-community/supabase-go"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

const connectTimeout = 10 * time.Second

// InitSupabase builds the PostgREST and Auth client. The service role key is preferred so
// that admin writes are not blocked by row level security.
func InitSupabase(cfg *config.Config) (*supabase.Client, error) {
	client, err := supabase.NewClient(cfg.SupabaseURL, cfg.ServiceKey(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize Supabase: %w", err)
	}
	return client, nil
}

// InitPostgres opens a direct connection for STORE_DRIVER=postgres.
func InitPostgres(dsn string, debug bool) (*gorm.DB, error) {
	level := gormlogger.Warn
	if debug {
		level = gormlogger.Info
	}
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: gormlogger.Default.LogMode(level),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to Postgres: %w", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get Postgres handle: %w", err)
	}
	sqlDB.SetMaxOpenConns(10)
	sqlDB.SetMaxIdleConns(5)
	sqlDB.SetConnMaxLifetime(30 * time.Minute)
	return db, nil
}

func ClosePostgres(db *gorm.DB) error {
	if db == nil {
		return nil
	}
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// InitRedis connects and pings. A nil client with a nil error means Redis is not configured.
func InitRedis(ctx context.Context, cfg config.RedisConfig) (*redis.Client, error) {
	if cfg.Addr == "" {
		return nil, nil
	}
	opts := &redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	}
	if cfg.TLS {
		opts.TLSConfig = &tls.Config{MinVersion: tls.VersionTLS12}
	}
	client := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(ctx, connectTimeout)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to ping Redis at %s: %w", cfg.Addr, err)
	}
	return client, nil
}

// MongoDBConnect connects to the notification log database. The URI may carry a
// <password> placeholder filled from MONGODB_PASSWORD.
func MongoDBConnect(ctx context.Context, uri, password string) (*mongo.Client, error) {
	fullURI := strings.Replace(uri, "<password>", password, 1)

	ctx, cancel := context.WithTimeout(ctx, connectTimeout)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(fullURI))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to MongoDB: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("failed to ping MongoDB: %w", err)
	}
	return client, nil
}

func MongoDBDisconnect(client *mongo.Client) error {
	if client == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), connectTimeout)
	defer cancel()
	if err := client.Disconnect(ctx); err != nil {
		return fmt.Errorf("failed to disconnect MongoDB: %w", err)
	}
	return nil
}

// CloudinaryCredentials returns nil without an error when Cloudinary is not configured.
func CloudinaryCredentials(cfg *config.Config) (*cloudinary.Cloudinary, error) {
	if cfg.CloudinaryCloudName == "" || cfg.CloudinaryAPIKey == "" || cfg.CloudinaryAPISecret == "" {
		return nil, nil
	}
	cld, err := cloudinary.NewFromParams(cfg.CloudinaryCloudName, cfg.CloudinaryAPIKey, cfg.CloudinaryAPISecret)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize Cloudinary: %w", err)
	}
	return cld, nil
}

// Resources holds every external connection a binary opened so they can be closed together.
type Resources struct {
	Supabase   *supabase.Client
	Postgres   *gorm.DB
	Redis      *redis.Client
	Mongo      *mongo.Client
	Cloudinary *cloudinary.Cloudinary
}

// Open connects to everything the configuration names. Supabase is required. A store the
// configuration selects must connect; optional backends that fail are logged and skipped.
func Open(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*Resources, error) {
	res := &Resources{}
	var err error

	if res.Supabase, err = InitSupabase(cfg); err != nil {
		return nil, err
	}
	logger.Info("Connected to Supabase successfully")

	if cfg.StoreDriver == "postgres" {
		if res.Postgres, err = InitPostgres(cfg.DatabaseURL, cfg.IsDevelopment()); err != nil {
			return nil, err
		}
		logger.Info("Connected to Postgres successfully")
	}

	if res.Redis, err = InitRedis(ctx, cfg.Redis); err != nil {
		logger.Warn("Redis unavailable, change feed stays in-process", "error", err)
	} else if res.Redis != nil {
		logger.Info("Connected to Redis successfully")
	}

	if cfg.MongoDBURI != "" {
		if res.Mongo, err = MongoDBConnect(ctx, cfg.MongoDBURI, cfg.MongoDBPassword); err != nil {
			logger.Warn("MongoDB unavailable, notification log disabled", "error", err)
		} else {
			logger.Info("Connected to MongoDB successfully")
		}
	}

	if res.Cloudinary, err = CloudinaryCredentials(cfg); err != nil {
		logger.Warn("Cloudinary unavailable, service images disabled", "error", err)
	}
	return res, nil
}

func (r *Resources) Close(logger *slog.Logger) {
	if err := ClosePostgres(r.Postgres); err != nil {
		logger.Error("Error closing Postgres", "error", err)
	}
	if r.Redis != nil {
		if err := r.Redis.Close(); err != nil {
			logger.Error("Error closing Redis", "error", err)
		}
	}
	if err := MongoDBDisconnect(r.Mongo); err != nil {
		logger.Error("Error disconnecting from MongoDB", "error", err)
	}
}
