package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/joshua-takyi/fasttrack/internal/config"
	"github.com/joshua-takyi/fasttrack/internal/connect"
	"github.com/joshua-takyi/fasttrack/internal/container"
	"github.com/joshua-takyi/fasttrack/internal/routes"
)

func main() {
	// Load environment variables
	_ = godotenv.Load(".env.local")

	cfg, err := config.LoadConfig()
	if err != nil {
		slog.Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}

	logger := cfg.NewLogger()
	logger.Info("Starting Fast Track API server", "environment", cfg.Environment, "store", cfg.StoreDriver, "notify_trigger", cfg.NotifyTrigger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	res, err := connect.Open(ctx, cfg, logger)
	if err != nil {
		logger.Error("Failed to open connections", "error", err)
		os.Exit(1)
	}
	defer res.Close(logger)

	appContainer, err := container.NewContainer(ctx, cfg, res, logger)
	if err != nil {
		logger.Error("Failed to build container", "error", err)
		os.Exit(1)
	}
	defer appContainer.Close()

	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      routes.SetupRoutes(appContainer),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
	server.RegisterOnShutdown(appContainer.EndStreams)

	go func() {
		logger.Info("Server starting", "port", cfg.Port)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("Server failed to start", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("Server is shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("Server forced to shutdown", "error", err)
	}
	logger.Info("Server exited")
}
