package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/RichMarin19/fast-life-sub000/api/rest"
	"github.com/RichMarin19/fast-life-sub000/internal/config"
	"github.com/RichMarin19/fast-life-sub000/internal/database"
	"github.com/RichMarin19/fast-life-sub000/internal/delivery"
	"github.com/RichMarin19/fast-life-sub000/internal/events"
	"github.com/RichMarin19/fast-life-sub000/internal/guidance"
	"github.com/RichMarin19/fast-life-sub000/internal/monitoring"
	"github.com/RichMarin19/fast-life-sub000/internal/periodic"
	"github.com/RichMarin19/fast-life-sub000/internal/settings"
	"github.com/RichMarin19/fast-life-sub000/internal/tracker"
)

func main() {
	// Initialize logger
	logger, err := zap.NewProduction()
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer logger.Sync()

	logger.Info("Starting Guidance Engine")

	// Load configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		logger.Fatal("Failed to load config", zap.Error(err))
	}

	// Initialize metrics
	metrics := monitoring.NewMetrics()
	logger.Info("Metrics initialized")

	// Connect to PostgreSQL
	postgres, err := database.NewPostgresDB(cfg.Database)
	if err != nil {
		logger.Fatal("Failed to connect to PostgreSQL", zap.Error(err))
	}
	defer postgres.Close()

	// Initialize settings schema
	if err := postgres.InitSchema(); err != nil {
		logger.Fatal("Failed to initialize database schema", zap.Error(err))
	}
	logger.Info("Database connected and schema initialized")

	// Connect to Redis
	redis, err := database.NewRedisClient(cfg.Redis)
	if err != nil {
		logger.Fatal("Failed to connect to Redis", zap.Error(err))
	}
	defer redis.Close()
	logger.Info("Redis connected")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Load persisted settings, seeding defaults on first run
	settingsStore := settings.NewStore(postgres, redis)
	if err := settingsStore.SeedDefaults(ctx); err != nil {
		logger.Fatal("Failed to seed default rules", zap.Error(err))
	}
	storedRules, err := settingsStore.LoadRules(ctx)
	if err != nil {
		logger.Fatal("Failed to load rules", zap.Error(err))
	}
	window, found, err := settingsStore.LoadQuietHours(ctx)
	if err != nil {
		logger.Fatal("Failed to load quiet hours", zap.Error(err))
	}
	if !found {
		window = guidance.QuietHoursWindow{
			Enabled:   cfg.QuietHours.Enabled,
			StartHour: cfg.QuietHours.StartHour,
			EndHour:   cfg.QuietHours.EndHour,
		}
	}

	// Tracker state lives in Redis so throttle and daily-limit decisions
	// survive restarts
	trackerStore := tracker.NewRedisStore(redis.Client)
	throttle := tracker.NewThrottle(trackerStore)
	daily := tracker.NewDailyLimit(trackerStore)

	// Delivery: FCM when credentials are configured, log-only otherwise
	var deliverer guidance.Deliverer
	if cfg.Firebase.CredentialsPath != "" {
		pushDeliverer, err := delivery.NewPushDeliverer(ctx, cfg.Firebase, cfg.Firebase.DeviceToken)
		if err != nil {
			logger.Fatal("Failed to initialize push delivery", zap.Error(err))
		}
		deliverer = pushDeliverer
		logger.Info("Push delivery initialized")
	} else {
		deliverer = delivery.NewLogDeliverer(logger)
		logger.Info("No Firebase credentials configured, using log delivery")
	}

	// Initialize the scheduler
	scheduler := guidance.NewScheduler(
		guidance.NewRuleSet(storedRules),
		window,
		throttle,
		daily,
		deliverer,
		settingsStore,
		metrics,
		logger,
	)
	logger.Info("Scheduler initialized")

	// Consume behavioral events from the tracker managers
	consumer := events.NewConsumer(cfg.Kafka, "guidance-engine")
	defer consumer.Close()
	go func() {
		logger.Info("Starting to consume behavioral events")
		err := consumer.ConsumeEvents(ctx, func(event events.BehavioralEvent) error {
			scheduler.ScheduleGuidance(ctx, event.Activity, event.Trigger, event.Context)
			metrics.RecordEventConsumed(string(event.Activity), "processed")
			return nil
		})
		if err != nil && err != context.Canceled {
			logger.Error("Consumer error", zap.Error(err))
		}
	}()

	// Periodic recurring checks
	if cfg.Periodic.Enabled {
		checker := periodic.NewChecker(ctx, scheduler, nil, logger)
		if err := checker.RegisterAll(cfg.Periodic); err != nil {
			logger.Fatal("Failed to register periodic checks", zap.Error(err))
		}
		checker.Start()
		defer checker.Stop()
	}

	// Initialize REST API handler
	handler := rest.NewHandler(scheduler, metrics, logger)
	router := handler.SetupRoutes()

	// Create HTTP server
	server := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.API.Host, cfg.API.Port),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in a goroutine
	go func() {
		logger.Info("Starting HTTP server", zap.String("addr", server.Addr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	// Start metrics server if enabled
	if cfg.Metrics.Enabled {
		metricsServer := &http.Server{
			Addr:    fmt.Sprintf(":%d", cfg.Metrics.Port),
			Handler: metrics.Handler(),
		}

		go func() {
			logger.Info("Starting metrics server", zap.Int("port", cfg.Metrics.Port))
			if err := metricsServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				logger.Error("Metrics server error", zap.Error(err))
			}
		}()
	}

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...")
	cancel()

	// Graceful shutdown
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("Server forced to shutdown", zap.Error(err))
	}

	logger.Info("Server exited")
}
