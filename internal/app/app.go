package app

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	emailadapter "github.com/Abdurahmanit/GroupProject/expiration-service/internal/adapter/email"
	mongoadapter "github.com/Abdurahmanit/GroupProject/expiration-service/internal/adapter/mongo"
	natsadapter "github.com/Abdurahmanit/GroupProject/expiration-service/internal/adapter/nats"
	redisadapter "github.com/Abdurahmanit/GroupProject/expiration-service/internal/adapter/redis"
	"github.com/Abdurahmanit/GroupProject/expiration-service/internal/app/config"
	"github.com/Abdurahmanit/GroupProject/expiration-service/internal/platform/logger"
	"github.com/Abdurahmanit/GroupProject/expiration-service/internal/platform/metrics"
	"github.com/Abdurahmanit/GroupProject/expiration-service/internal/platform/tracer"
	"github.com/Abdurahmanit/GroupProject/expiration-service/internal/service"
	"github.com/nats-io/nats.go"
	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/mongo"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
)

const serviceName = "expiration_service"

const shutdownTimeout = 15 * time.Second

type App struct {
	cfg            *config.Config
	log            logger.Logger
	scheduler      *service.Scheduler
	metricsServer  *http.Server
	mongoClient    *mongo.Client
	redisClient    *redis.Client
	natsConn       *nats.Conn
	tracerProvider *sdktrace.TracerProvider
}

func New(cfg *config.Config) (*App, error) {
	ctx := context.Background()

	appLogger, err := logger.NewZapLogger(logger.ZapLoggerConfig{
		Level:      cfg.Logger.Level,
		Encoding:   cfg.Logger.Encoding,
		TimeFormat: cfg.Logger.TimeFormat,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}
	appLogger.Infof("Configuration loaded: env=%s poll_interval=%s", cfg.Env, cfg.Expiration.PollInterval)

	tracerProvider, err := tracer.InitTracer(serviceName)
	if err != nil {
		appLogger.Warnf("Tracer not initialized: %v", err)
	}

	appLogger.Info("Initializing MongoDB client...")
	mongoClient, err := mongoadapter.NewClient(ctx, cfg.MongoDB)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize MongoDB client: %w", err)
	}
	appLogger.Info("MongoDB client initialized successfully")

	listingRepo := mongoadapter.NewListingRepository(mongoClient, cfg.MongoDB)
	actionRepo := mongoadapter.NewActionRepository(mongoClient, cfg.MongoDB)
	viewRepo := mongoadapter.NewViewRepository(mongoClient, cfg.MongoDB)
	notificationRepo := mongoadapter.NewNotificationRepository(mongoClient, cfg.MongoDB)
	activityRepo := mongoadapter.NewActivityRepository(mongoClient, cfg.MongoDB)

	// The settled cache is an optimization; when Redis is unreachable the
	// engine runs with the process-local cache instead of failing startup.
	var settledCache service.SettledCache
	var redisClient *redis.Client
	redisClient, err = redisadapter.NewClient(ctx, cfg.Redis)
	if err != nil {
		appLogger.Warnf("Redis unavailable, falling back to in-memory settled cache: %v", err)
		settledCache = service.NewMemorySettledCache(cfg.Expiration.CacheSize, cfg.Expiration.CacheTTL)
		redisClient = nil
	} else {
		appLogger.Info("Redis client initialized successfully")
		settledCache = redisadapter.NewSettledCache(redisClient, cfg.Expiration.CacheTTL, appLogger)
	}

	appLogger.Info("Connecting to NATS...")
	natsConn, err := natsadapter.NewConnection(cfg.NATS, appLogger)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to NATS: %w", err)
	}
	publisher, err := natsadapter.NewPublisher(natsConn)
	if err != nil {
		return nil, fmt.Errorf("failed to create NATS publisher: %w", err)
	}
	wakeSignal := natsadapter.NewWakeSignal(natsConn, cfg.NATS.WakeSubject, appLogger)
	paymentStarter := natsadapter.NewPaymentTimeoutStarter(publisher)

	var emailSender emailadapter.EmailSender
	if cfg.SMTP.Host != "" {
		emailSender, err = emailadapter.NewSMTPSender(cfg.SMTP, appLogger)
		if err != nil {
			appLogger.Warnf("SMTP sender not configured: %v", err)
			emailSender = nil
		}
	}

	engineMetrics := metrics.NewEngineMetrics(serviceName)
	metricsServer := metrics.NewMetricsServer(cfg.Metrics.Port, engineMetrics.Registry, appLogger)

	fanout := service.NewNotificationFanout(notificationRepo, viewRepo, service.FanoutConfig{
		DedupWindow:       cfg.Expiration.DedupWindow,
		ViewerDedupWindow: cfg.Expiration.ViewerDedupWindow,
	}, engineMetrics, appLogger)

	reconciler := service.NewReconciler(
		listingRepo,
		actionRepo,
		activityRepo,
		fanout,
		paymentStarter,
		publisher,
		emailSender,
		settledCache,
		cfg.Expiration,
		engineMetrics,
		appLogger,
	)

	scheduler := service.NewScheduler(reconciler, wakeSignal, cfg.Expiration, appLogger)

	return &App{
		cfg:            cfg,
		log:            appLogger,
		scheduler:      scheduler,
		metricsServer:  metricsServer,
		mongoClient:    mongoClient,
		redisClient:    redisClient,
		natsConn:       natsConn,
		tracerProvider: tracerProvider,
	}, nil
}

func (a *App) Run() {
	a.log.Info("Starting application components...")

	go func() {
		if err := a.metricsServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			a.log.Errorf("Metrics server failed: %v", err)
		}
	}()

	if err := a.scheduler.Start(); err != nil {
		a.log.Fatalf("Failed to start scheduler: %v", err)
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	receivedSignal := <-quit
	a.log.Infof("Received shutdown signal: %v. Shutting down application...", receivedSignal)

	a.scheduler.Stop()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	metrics.ShutdownMetricsServer(shutdownCtx, a.metricsServer, a.log)

	if a.natsConn != nil {
		if err := a.natsConn.Drain(); err != nil {
			a.log.Errorf("Error draining NATS connection: %v", err)
		}
	}

	if a.redisClient != nil {
		if err := a.redisClient.Close(); err != nil {
			a.log.Errorf("Error closing Redis client: %v", err)
		}
	}

	if a.mongoClient != nil {
		if err := a.mongoClient.Disconnect(shutdownCtx); err != nil {
			a.log.Errorf("Error disconnecting from MongoDB: %v", err)
		}
	}

	if a.tracerProvider != nil {
		if err := a.tracerProvider.Shutdown(shutdownCtx); err != nil {
			a.log.Errorf("Error shutting down tracer provider: %v", err)
		}
	}

	a.log.Info("Application shut down successfully")
}
