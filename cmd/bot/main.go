package main

import (
	"context"
	"crypto/tls"
	"database/sql"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"

	"github.com/soutoadv/whatsapp-intake/cmd/mainconfig"
	"github.com/soutoadv/whatsapp-intake/internal/api/router"
	"github.com/soutoadv/whatsapp-intake/internal/bookings"
	appconfig "github.com/soutoadv/whatsapp-intake/internal/config"
	"github.com/soutoadv/whatsapp-intake/internal/conversation"
	"github.com/soutoadv/whatsapp-intake/internal/http/handlers"
	"github.com/soutoadv/whatsapp-intake/internal/observability/metrics"
	"github.com/soutoadv/whatsapp-intake/internal/transport/whatsapp"
	"github.com/soutoadv/whatsapp-intake/pkg/logging"
)

func main() {
	_ = godotenv.Load()

	cfg := appconfig.Load()
	logger := logging.New(cfg.LogLevel)
	logger.Info("starting whatsapp-intake bot",
		"env", cfg.Env,
		"port", cfg.Port,
		"session_backend", cfg.SessionBackend,
	)

	if err := os.MkdirAll(cfg.DataDir, 0o700); err != nil {
		logger.Error("failed to create data dir", "dir", cfg.DataDir, "error", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	conversationMetrics := metrics.NewConversationMetrics(nil)

	sessions, err := buildSessionStore(ctx, cfg, logger)
	if err != nil {
		logger.Error("failed to initialize session store", "error", err)
		os.Exit(1)
	}

	bookingLog, err := bookings.NewFileLog(cfg.BookingLogPath)
	if err != nil {
		logger.Error("failed to initialize booking log", "error", err)
		os.Exit(1)
	}

	var archive *bookings.PostgresArchive
	if cfg.DatabaseURL != "" {
		db, err := sql.Open("postgres", cfg.DatabaseURL)
		if err != nil {
			logger.Error("failed to open postgres", "error", err)
			os.Exit(1)
		}
		defer db.Close()
		archive = bookings.NewPostgresArchive(db)
		if err := archive.EnsureSchema(ctx); err != nil {
			logger.Warn("booking archive schema check failed, archive disabled", "error", err)
			archive = nil
		}
	}
	bookingSvc := bookings.NewService(bookingLog, archive, logger)

	queue, err := buildQueue(ctx, cfg, logger)
	if err != nil {
		logger.Error("failed to initialize inbound queue", "error", err)
		os.Exit(1)
	}

	publisher := conversation.NewPublisher(queue, logger, conversationMetrics)

	wa, err := whatsapp.NewClient(ctx, cfg.WhatsAppStorePath, publisher, logger)
	if err != nil {
		logger.Error("failed to initialize whatsapp transport", "error", err)
		os.Exit(1)
	}

	var typist *conversation.Typist
	if cfg.TypingEnabled {
		typist = conversation.NewTypist(wa, cfg.TypingDelay, logger)
	}

	engine := conversation.NewEngine(sessions, bookingSvc, wa, logger,
		conversation.WithTypist(typist),
		conversation.WithMetrics(conversationMetrics),
	)

	worker := conversation.NewWorker(engine, queue, logger,
		conversation.WithWorkerCount(cfg.WorkerCount),
		conversation.WithReceiveWaitSeconds(cfg.ReceiveWaitSeconds),
		conversation.WithReceiveBatchSize(cfg.ReceiveBatchSize),
	)
	worker.Start(ctx)

	// Supervised transport loop: reconnect attempts live out here, never
	// inside the conversation core.
	go func() {
		for {
			if err := wa.Run(ctx); err != nil {
				logger.Error("whatsapp transport exited", "error", err)
			}
			if ctx.Err() != nil {
				return
			}
			select {
			case <-time.After(5 * time.Second):
			case <-ctx.Done():
				return
			}
		}
	}()

	adminHandler := handlers.NewAdminHandler(bookingSvc, sessions, logger)
	r := router.New(&router.Config{
		Logger:         logger,
		AdminHandler:   adminHandler,
		MetricsHandler: promhttp.Handler(),
	})

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
	go func() {
		logger.Info("admin server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("admin server error", "error", err)
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("admin server shutdown failed", "error", err)
	}

	waitCh := make(chan struct{})
	go func() {
		worker.Wait()
		close(waitCh)
	}()
	select {
	case <-waitCh:
		logger.Info("worker stopped")
	case <-shutdownCtx.Done():
		logger.Error("worker shutdown timed out", "error", shutdownCtx.Err())
	}
}

func buildSessionStore(ctx context.Context, cfg *appconfig.Config, logger *logging.Logger) (conversation.SessionStore, error) {
	switch cfg.SessionBackend {
	case appconfig.SessionBackendRedis:
		opts := &redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
		}
		if cfg.RedisTLS {
			opts.TLSConfig = &tls.Config{MinVersion: tls.VersionTLS12}
		}
		client := redis.NewClient(opts)
		if err := client.Ping(ctx).Err(); err != nil {
			return nil, err
		}
		logger.Info("using redis session store", "addr", cfg.RedisAddr)
		return conversation.NewRedisSessionStore(client, nil), nil

	case appconfig.SessionBackendDynamo:
		awsCfg, err := mainconfig.LoadAWSConfig(ctx, cfg)
		if err != nil {
			return nil, err
		}
		logger.Info("using dynamodb session store", "table", cfg.SessionsTable)
		return conversation.NewDynamoSessionStore(dynamodb.NewFromConfig(awsCfg), cfg.SessionsTable), nil

	default:
		dir := filepath.Join(cfg.DataDir, "sessions")
		logger.Info("using file session store", "dir", dir)
		return conversation.NewFileSessionStore(dir)
	}
}

func buildQueue(ctx context.Context, cfg *appconfig.Config, logger *logging.Logger) (conversation.Queue, error) {
	if cfg.InboundQueueURL != "" {
		awsCfg, err := mainconfig.LoadAWSConfig(ctx, cfg)
		if err != nil {
			return nil, err
		}
		logger.Info("using sqs inbound queue", "url", cfg.InboundQueueURL)
		return conversation.NewSQSQueue(sqs.NewFromConfig(awsCfg), cfg.InboundQueueURL), nil
	}
	logger.Info("using in-memory inbound queue")
	return conversation.NewMemoryQueue(256), nil
}
