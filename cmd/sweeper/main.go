package main

import (
	"context"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"servibook-api/res/booking"
	"servibook-api/res/financial"
	"servibook-api/res/notification"
	"servibook-api/res/notification/slack"
	"servibook-api/res/recurrence"
	"servibook-api/res/store/postgresql"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

func main() {
	zapLogger, err := zap.NewProduction()
	if err != nil {
		panic(err)
	}
	defer zapLogger.Sync()
	logger := zapLogger.Sugar()

	// Load .env file in development
	if err := godotenv.Load(); err != nil {
		logger.Infof("Note: .env file not found, using system environment variables")
	}

	dbURL := readRequiredEnvVar(logger, "DATABASE_POSTGRES_URL")

	storeInstance, err := postgresql.Connect(dbURL)
	if err != nil {
		logger.Fatalf("Failed to connect to database: %v", err)
	}

	if os.Getenv("DATABASE_AUTO_MIGRATE") == "true" {
		if err := postgresql.Migrate(storeInstance); err != nil {
			logger.Fatalf("Failed to migrate database: %v", err)
		}
		logger.Infof("Database schema migrated")
	}

	var notifications notification.NotificationService
	if webhookURL := os.Getenv("SLACK_WEBHOOK_URL"); webhookURL != "" {
		notifications = slack.New(webhookURL, 10*time.Second, logger)
	} else {
		notifications = notification.NewNoop(logger)
	}

	policy := booking.NewCancellationPolicy(os.Getenv("CANCELLATION_HARD_BLOCK") != "false")

	lifecycle := booking.NewLifecycle(&booking.Config{
		Store:         storeInstance,
		Notifications: notifications,
		Financial:     financial.NewNoop(logger),
		Policy:        policy,
		Logger:        logger,
	})

	engine := recurrence.NewEngine(storeInstance, lifecycle, logger)

	sweeper := recurrence.NewSweeper(&recurrence.SweeperConfig{
		Store:         storeInstance,
		Engine:        engine,
		Notifications: notifications,
		Logger:        logger,
		HorizonDays:   readIntEnvVar(logger, "SWEEP_HORIZON_DAYS", recurrence.DefaultHorizonDays),
		Workers:       readIntEnvVar(logger, "SWEEP_WORKERS", recurrence.DefaultWorkers),
	})

	interval := time.Duration(readIntEnvVar(logger, "SWEEP_INTERVAL_MINUTES", 15)) * time.Minute

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		logger.Infow("received shutdown signal", "signal", sig)
		cancel()
	}()

	logger.Infow("starting recurrence sweeper", "interval", interval)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	runSweep(ctx, sweeper, logger)
	for {
		select {
		case <-ctx.Done():
			logger.Infof("sweeper stopped")
			return
		case <-ticker.C:
			runSweep(ctx, sweeper, logger)
		}
	}
}

func runSweep(ctx context.Context, sweeper *recurrence.Sweeper, logger *zap.SugaredLogger) {
	report, err := sweeper.Run(ctx)
	if err != nil {
		logger.Errorw("sweep failed", "error", err)
		return
	}
	logger.Infow("sweep complete",
		"due", report.RecurrencesDue,
		"generated", report.Generated,
		"reminders_sent", report.RemindersSent,
	)
}

func readRequiredEnvVar(logger *zap.SugaredLogger, name string) string {
	val, ok := os.LookupEnv(name)
	if !ok {
		logger.Fatalf("Env variable not set: %s", name)
	}
	return val
}

func readIntEnvVar(logger *zap.SugaredLogger, name string, fallback int) int {
	val, ok := os.LookupEnv(name)
	if !ok {
		return fallback
	}
	parsed, err := strconv.Atoi(val)
	if err != nil {
		logger.Fatalf("Env variable %s is not an integer: %s", name, val)
	}
	return parsed
}
