package config

import (
	"context"
	"log/slog"
	"testing"
)

func setRequired(t *testing.T) {
	t.Setenv("SUPABASE_URL", "https://example.supabase.co")
	t.Setenv("SUPABASE_ANON_KEY", "anon")
}

func TestLoadConfigDefaults(t *testing.T) {
	setRequired(t)

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Port != "8080" {
		t.Errorf("expected default port 8080, got %q", cfg.Port)
	}
	if cfg.StoreDriver != "supabase" || cfg.NotifyTrigger != "webhook" {
		t.Errorf("unexpected defaults: driver=%q trigger=%q", cfg.StoreDriver, cfg.NotifyTrigger)
	}
	if cfg.Twilio.Configured() {
		t.Errorf("twilio should not be configured without credentials")
	}
	if cfg.ServiceKey() != "anon" {
		t.Errorf("expected anon key fallback, got %q", cfg.ServiceKey())
	}
}

func TestLoadConfigRequiresSupabase(t *testing.T) {
	t.Setenv("SUPABASE_URL", "")
	t.Setenv("SUPABASE_ANON_KEY", "")
	if _, err := LoadConfig(); err == nil {
		t.Fatalf("expected error when SUPABASE_URL is missing")
	}
}

func TestLoadConfigQueueTriggerNeedsBroker(t *testing.T) {
	setRequired(t)
	t.Setenv("NOTIFY_TRIGGER", "queue")
	t.Setenv("RABBITMQ_URL", "")
	if _, err := LoadConfig(); err == nil {
		t.Fatalf("expected error for queue trigger without RABBITMQ_URL")
	}
}

func TestLoadConfigCORSList(t *testing.T) {
	setRequired(t)
	t.Setenv("CORS_ORIGINS", " https://a.example , ,https://b.example")

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(cfg.CORSOrigins) != 2 || cfg.CORSOrigins[1] != "https://b.example" {
		t.Fatalf("unexpected origins: %v", cfg.CORSOrigins)
	}
}

func TestParseLogLevel(t *testing.T) {
	tests := map[string]slog.Level{
		"debug":   slog.LevelDebug,
		"DEBUG":   slog.LevelDebug,
		"warn":    slog.LevelWarn,
		"warning": slog.LevelWarn,
		"error":   slog.LevelError,
		"info":    slog.LevelInfo,
		"":        slog.LevelInfo,
		"verbose": slog.LevelInfo,
	}
	for in, want := range tests {
		if got := ParseLogLevel(in); got != want {
			t.Errorf("ParseLogLevel(%q) = %v, want %v", in, got, want)
		}
	}
}

func TestNewLoggerHonoursLevel(t *testing.T) {
	setRequired(t)
	t.Setenv("LOG_LEVEL", "error")
	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	logger := cfg.NewLogger()
	if logger.Enabled(context.Background(), slog.LevelWarn) {
		t.Errorf("warn should be filtered at LOG_LEVEL=error")
	}
	if !logger.Enabled(context.Background(), slog.LevelError) {
		t.Errorf("error should be enabled at LOG_LEVEL=error")
	}
}
