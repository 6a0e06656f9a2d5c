package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"

	"github.com/campusbot/course-ai-platform/cmd/mainconfig"
	"github.com/campusbot/course-ai-platform/internal/api/router"
	"github.com/campusbot/course-ai-platform/internal/app/bootstrap"
	"github.com/campusbot/course-ai-platform/internal/chat"
	appconfig "github.com/campusbot/course-ai-platform/internal/config"
	"github.com/campusbot/course-ai-platform/internal/gateway"
	"github.com/campusbot/course-ai-platform/internal/observability/metrics"
	"github.com/campusbot/course-ai-platform/pkg/logging"
)

func main() {
	// .env is optional outside local development.
	_ = godotenv.Load()

	// Load configuration
	cfg := appconfig.Load()

	// Initialize logger
	logger := logging.New(cfg.LogLevel)
	logger.Info("starting course-ai-platform gateway",
		"env", cfg.Env,
		"port", cfg.Port,
	)

	if err := cfg.ValidateLex(); err != nil {
		logger.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	ctx := context.Background()
	awsCfg, err := mainconfig.LoadAWSConfig(ctx, cfg)
	if err != nil {
		logger.Error("failed to load AWS config", "error", err)
		os.Exit(1)
	}

	metricsHandler, chatMetrics, registry := setupChatMetrics()

	redisClient := bootstrap.BuildRedisClient(ctx, cfg, logger, true)
	transcripts := setupTranscripts(redisClient, logger)

	// Initialize handlers
	botCfg := chat.Config{
		BotID:      cfg.LexBotID,
		BotAliasID: cfg.LexBotAliasID,
		LocaleID:   cfg.LexLocaleID,
	}
	chatHandler := gateway.NewHandler(
		chat.NewLexClient(awsCfg),
		botCfg,
		transcripts,
		gateway.WidgetJS,
		logger,
		gateway.WithMetrics(chatMetrics),
		gateway.WithHistoryLimit(int64(cfg.HistoryLimit)),
	)
	statsHandler := gateway.NewStatsHandler(registry, logger)

	// Setup router
	routerCfg := &router.Config{
		Logger:             logger,
		Chat:               chatHandler,
		Stats:              statsHandler,
		MetricsHandler:     metricsHandler,
		CORSAllowedOrigins: cfg.CORSAllowedOrigins,
		MessageRatePerSec:  cfg.MessageRatePerSec,
		MessageBurst:       cfg.MessageBurst,
	}
	r := router.New(routerCfg)

	// Create HTTP server
	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in a goroutine
	go func() {
		logger.Info("server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down server...")

	// Graceful shutdown with timeout
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server forced to shutdown", "error", err)
		os.Exit(1)
	}

	if redisClient != nil {
		_ = redisClient.Close()
	}

	logger.Info("server stopped")
	fmt.Println("Server exited gracefully")
}

// setupChatMetrics builds the process-local registry, the chat metrics
// recorded by the dispatcher, and the /metrics exposition handler.
func setupChatMetrics() (http.Handler, *metrics.ChatMetrics, *prometheus.Registry) {
	registry := prometheus.NewRegistry()
	chatMetrics := metrics.NewChatMetrics(registry)
	return promhttp.HandlerFor(registry, promhttp.HandlerOpts{}), chatMetrics, registry
}

// setupTranscripts wires chat history when Redis is reachable. The gateway
// runs fine without it; sessions just lose resume-after-reload.
func setupTranscripts(redisClient *redis.Client, logger *logging.Logger) *gateway.TranscriptStore {
	transcripts := bootstrap.BuildTranscriptStore(redisClient)
	if transcripts == nil {
		logger.Warn("redis unavailable; chat history disabled")
	}
	return transcripts
}
