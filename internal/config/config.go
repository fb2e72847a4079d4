package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
)

type Config struct {
	Port        string
	Environment string
	LogLevel    string
	CORSOrigins []string

	SupabaseURL            string
	SupabaseAnonKey        string
	SupabaseServiceRoleKey string
	SupabaseJWTSecret      string

	// StoreDriver selects the record store: "supabase" talks to PostgREST,
	// "postgres" connects straight to DatabaseURL through gorm.
	StoreDriver string
	DatabaseURL string

	Twilio TwilioConfig
	Push   PushConfig
	Redis  RedisConfig

	RabbitMQURL string
	// NotifyTrigger is "webhook" when a database webhook calls /hooks/booking-created,
	// or "queue" when the API publishes booking.created for cmd/notifier.
	NotifyTrigger string
	WebhookSecret string

	MongoDBURI      string
	MongoDBPassword string
	MongoDBName     string

	CloudinaryCloudName string
	CloudinaryAPIKey    string
	CloudinaryAPISecret string

	DigestSchedule string
	OperatorLocale string
}

type TwilioConfig struct {
	AccountSID     string
	AuthToken      string
	WhatsAppNumber string
	AdminNumber    string
}

// Configured reports whether every credential needed to send a WhatsApp message is present.
func (t TwilioConfig) Configured() bool {
	return t.AccountSID != "" && t.AuthToken != "" && t.WhatsAppNumber != "" && t.AdminNumber != ""
}

type PushConfig struct {
	VAPIDPublicKey  string
	VAPIDPrivateKey string
	Subscriber      string
	TTL             int
}

func (p PushConfig) Configured() bool {
	return p.VAPIDPublicKey != "" && p.VAPIDPrivateKey != ""
}

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
	TLS      bool
	Channel  string
}

func LoadConfig() (*Config, error) {
	cfg := &Config{
		Port:        getEnvWithDefault("PORT", "8080"),
		Environment: getEnvWithDefault("ENVIRONMENT", "development"),
		LogLevel:    getEnvWithDefault("LOG_LEVEL", "info"),
		CORSOrigins: getEnvList("CORS_ORIGINS", "http://localhost:3000"),

		SupabaseURL:            os.Getenv("SUPABASE_URL"),
		SupabaseAnonKey:        os.Getenv("SUPABASE_ANON_KEY"),
		SupabaseServiceRoleKey: os.Getenv("SUPABASE_SERVICE_ROLE_KEY"),
		SupabaseJWTSecret:      os.Getenv("SUPABASE_JWT_SECRET"),

		StoreDriver: getEnvWithDefault("STORE_DRIVER", "supabase"),
		DatabaseURL: os.Getenv("DATABASE_URL"),

		Twilio: TwilioConfig{
			AccountSID:     os.Getenv("TWILIO_ACCOUNT_SID"),
			AuthToken:      os.Getenv("TWILIO_AUTH_TOKEN"),
			WhatsAppNumber: os.Getenv("TWILIO_WHATSAPP_NUMBER"),
			AdminNumber:    os.Getenv("ADMIN_WHATSAPP_NUMBER"),
		},
		Push: PushConfig{
			VAPIDPublicKey:  os.Getenv("VAPID_PUBLIC_KEY"),
			VAPIDPrivateKey: os.Getenv("VAPID_PRIVATE_KEY"),
			Subscriber:      getEnvWithDefault("VAPID_SUBSCRIBER", "mailto:ops@fasttrackwash.com"),
			TTL:             getEnvInt("PUSH_TTL_SECONDS", 3600),
		},
		Redis: loadRedisConfig(),

		RabbitMQURL:   os.Getenv("RABBITMQ_URL"),
		NotifyTrigger: getEnvWithDefault("NOTIFY_TRIGGER", "webhook"),
		WebhookSecret: os.Getenv("WEBHOOK_SECRET"),

		MongoDBURI:      os.Getenv("MONGODB_URI"),
		MongoDBPassword: os.Getenv("MONGODB_PASSWORD"),
		MongoDBName:     getEnvWithDefault("MONGODB_DATABASE", "fasttrack"),

		CloudinaryCloudName: os.Getenv("CLOUDINARY_CLOUD_NAME"),
		CloudinaryAPIKey:    os.Getenv("CLOUDINARY_API_KEY"),
		CloudinaryAPISecret: os.Getenv("CLOUDINARY_API_SECRET"),

		DigestSchedule: getEnvWithDefault("DIGEST_SCHEDULE", "0 7 * * *"),
		OperatorLocale: getEnvWithDefault("OPERATOR_LOCALE", "en"),
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	if c.SupabaseURL == "" {
		return fmt.Errorf("SUPABASE_URL is required")
	}
	if c.SupabaseAnonKey == "" {
		return fmt.Errorf("SUPABASE_ANON_KEY is required")
	}
	switch c.StoreDriver {
	case "supabase":
	case "postgres":
		if c.DatabaseURL == "" {
			return fmt.Errorf("DATABASE_URL is required when STORE_DRIVER=postgres")
		}
	default:
		return fmt.Errorf("unsupported STORE_DRIVER %q", c.StoreDriver)
	}
	switch c.NotifyTrigger {
	case "webhook":
	case "queue":
		if c.RabbitMQURL == "" {
			return fmt.Errorf("RABBITMQ_URL is required when NOTIFY_TRIGGER=queue")
		}
	default:
		return fmt.Errorf("unsupported NOTIFY_TRIGGER %q", c.NotifyTrigger)
	}
	return nil
}

func loadRedisConfig() RedisConfig {
	addr := os.Getenv("REDIS_ADDR")
	if host, port := os.Getenv("REDIS_HOST"), os.Getenv("REDIS_PORT"); host != "" && port != "" {
		addr = host + ":" + port
	}
	tlsEnv := os.Getenv("REDIS_TLS")
	return RedisConfig{
		Addr:     addr,
		Password: os.Getenv("REDIS_PASSWORD"),
		DB:       getEnvInt("REDIS_DB", 0),
		TLS:      strings.EqualFold(tlsEnv, "true") || tlsEnv == "1",
		Channel:  getEnvWithDefault("REDIS_CHANGES_CHANNEL", "fasttrack:changes"),
	}
}

func getEnvWithDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
	}
	return defaultValue
}

func getEnvList(key, defaultCSV string) []string {
	var out []string
	for _, part := range strings.Split(getEnvWithDefault(key, defaultCSV), ",") {
		if s := strings.TrimSpace(part); s != "" {
			out = append(out, s)
		}
	}
	return out
}

func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

func (c *Config) IsDevelopment() bool {
	return c.Environment == "development"
}

// ServiceKey is the key the backend uses for store access. The service role key bypasses
// row level security; without it the anon key is used and RLS policies must allow the calls.
func (c *Config) ServiceKey() string {
	if c.SupabaseServiceRoleKey != "" {
		return c.SupabaseServiceRoleKey
	}
	return c.SupabaseAnonKey
}
