package main

import (
	"context"
	"crypto/tls"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"

	"github.com/clinicdesk/medibot/cmd/mainconfig"
	"github.com/clinicdesk/medibot/internal/admin"
	"github.com/clinicdesk/medibot/internal/api/router"
	"github.com/clinicdesk/medibot/internal/booking"
	"github.com/clinicdesk/medibot/internal/bookings"
	appconfig "github.com/clinicdesk/medibot/internal/config"
	"github.com/clinicdesk/medibot/internal/conversation"
	"github.com/clinicdesk/medibot/internal/knowledge"
	"github.com/clinicdesk/medibot/internal/notify"
	"github.com/clinicdesk/medibot/internal/observability/metrics"
	"github.com/clinicdesk/medibot/internal/session"
	"github.com/clinicdesk/medibot/internal/webchat"
	"github.com/clinicdesk/medibot/pkg/logging"
)

func main() {
	_ = godotenv.Load()

	cfg := appconfig.Load()
	logger := logging.New(cfg.LogLevel)
	logger.Info("starting medibot API server",
		"env", cfg.Env,
		"port", cfg.Port,
	)

	ctx := context.Background()

	if cfg.DatabaseURL == "" {
		logger.Error("DATABASE_URL is required")
		os.Exit(1)
	}
	pool, err := pgxpool.New(ctx, cfg.DatabaseURL)
	if err != nil {
		logger.Error("failed to create database pool", "error", err)
		os.Exit(1)
	}
	defer pool.Close()

	redisOpts := &redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
	}
	if cfg.RedisTLS {
		redisOpts.TLSConfig = &tls.Config{MinVersion: tls.VersionTLS12}
	}
	redisClient := redis.NewClient(redisOpts)
	defer func() { _ = redisClient.Close() }()

	hours, err := booking.ParseHours(cfg.ClinicOpens, cfg.ClinicCloses)
	if err != nil {
		logger.Error("invalid clinic hours", "opens", cfg.ClinicOpens, "closes", cfg.ClinicCloses, "error", err)
		os.Exit(1)
	}

	chatMetrics := metrics.NewChatMetrics(nil)

	sender := buildEmailSender(ctx, cfg, logger)
	mailer := notify.NewConfirmationMailer(sender, cfg.ClinicName, logger)

	bookingRepo := bookings.NewRepository(pool)
	bookingService := bookings.NewService(bookingRepo, mailer, chatMetrics, logger)

	var llm conversation.LLMClient
	var retriever knowledge.Retriever
	var ingestor admin.DocumentIngestor
	if cfg.GeminiAPIKey != "" {
		geminiLLM, err := conversation.NewGeminiLLMClient(ctx, cfg.GeminiAPIKey, cfg.GeminiModelID)
		if err != nil {
			logger.Error("failed to create gemini client", "error", err)
			os.Exit(1)
		}
		defer geminiLLM.Close()
		llm = geminiLLM

		embedder, err := knowledge.NewGeminiEmbedder(ctx, cfg.GeminiAPIKey, cfg.GeminiEmbeddingModelID)
		if err != nil {
			logger.Error("failed to create gemini embedder", "error", err)
			os.Exit(1)
		}
		defer embedder.Close()

		store := knowledge.NewMemoryStore(embedder, knowledge.NewSplitter(), logger)
		retriever = store
		ingestor = store
	} else {
		logger.Warn("GEMINI_API_KEY unset, chat fallback and document retrieval are disabled")
	}

	orchestrator := conversation.NewOrchestrator(conversation.Options{
		Engine:    booking.NewEngine(hours),
		Sessions:  session.NewRedisStore(redisClient, cfg.SessionTTL),
		History:   conversation.NewRedisHistoryStore(redisClient, cfg.SessionTTL),
		Retriever: retriever,
		LLM:       llm,
		Confirmer: bookingService,
		Metrics:   chatMetrics,
		Logger:    logger,
		TopK:      cfg.RetrievalTopK,
	})

	r := router.New(&router.Config{
		Logger:             logger,
		Webchat:            webchat.NewHandler(orchestrator, logger),
		Admin:              admin.NewHandler(bookingService, ingestor, nil, logger),
		MetricsHandler:     promhttp.Handler(),
		StaffAuthSecret:    cfg.AdminJWTSecret,
		CORSAllowedOrigins: cfg.CORSAllowedOrigins,
	})

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server forced to shutdown", "error", err)
		os.Exit(1)
	}

	logger.Info("server stopped")
}

// buildEmailSender picks the delivery backend from EMAIL_PROVIDER. Anything
// unconfigured falls back to the stub so confirmations never block bookings.
func buildEmailSender(ctx context.Context, cfg *appconfig.Config, logger *logging.Logger) notify.EmailSender {
	switch cfg.EmailProvider {
	case "sendgrid":
		if sender := notify.NewSendGridSender(notify.SendGridConfig{
			APIKey:    cfg.SendGridAPIKey,
			FromEmail: cfg.SendGridFromEmail,
			FromName:  cfg.SendGridFromName,
		}, logger); sender != nil {
			return sender
		}
		logger.Warn("sendgrid selected but SENDGRID_API_KEY unset, using stub sender")
	case "ses":
		awsCfg, err := mainconfig.LoadAWSConfig(ctx, cfg)
		if err != nil {
			logger.Warn("failed to load AWS config, using stub sender", "error", err)
			break
		}
		if sender := notify.NewSESSender(mainconfig.NewSESClient(awsCfg, cfg), notify.SESConfig{
			FromEmail: cfg.SESFromEmail,
			FromName:  cfg.SESFromName,
		}, logger); sender != nil {
			return sender
		}
	}
	return notify.NewStubEmailSender(logger)
}
