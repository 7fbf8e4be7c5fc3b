package main

import (
	"context"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"rentdesk/internal/api"
	"rentdesk/internal/config"
	"rentdesk/internal/database"
	"rentdesk/internal/domain"
	"rentdesk/internal/events"
	"rentdesk/internal/logging"
	"rentdesk/internal/metrics"
	"rentdesk/internal/models"
	"rentdesk/internal/notify"
	"rentdesk/internal/repository"
	"rentdesk/internal/service"
	"rentdesk/internal/worker"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

func main() {
	if err := run(); err != nil {
		log.Fatalf("Fatal error: %v", err)
	}
}

func run() error {
	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "configs/config.yaml"
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	baseLogger, closer, err := logging.New(cfg.Logging, cfg.App)
	if err != nil {
		return err
	}
	if closer != nil {
		defer (func(c io.Closer) { _ = c.Close() })(closer)
	}
	logger := baseLogger.With().Str("component", "api-main").Logger()

	if err := prepareDirectories(cfg); err != nil {
		logger.Error().Err(err).Msg("prepare directories")
		return err
	}

	db, err := initDatabase(cfg, &logger)
	if err != nil {
		return err
	}
	defer db.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	metrics.Register()

	redisClient, taskQueue := initTaskQueue(ctx, cfg, &logger)
	if redisClient != nil {
		defer repository.Close(redisClient)
	}

	notifier := initNotifier(cfg, &logger)

	workerCfg := cfg.Notifications.Worker
	retryPolicy := worker.RetryPolicy{
		MaxRetries:    workerCfg.MaxRetries,
		InitialDelay:  time.Duration(workerCfg.InitialDelaySeconds) * time.Second,
		MaxDelay:      time.Duration(workerCfg.MaxDelaySeconds) * time.Second,
		BackoffFactor: 2,
	}
	notifyWorker := worker.NewNotifyWorker(db, notifier, taskQueue, retryPolicy, &logger)
	notifyWorker.SetPollInterval(time.Duration(workerCfg.PollIntervalSeconds) * time.Second)
	notifyWorker.SetBatchSize(workerCfg.BatchSize)
	go notifyWorker.Start(ctx)

	eventBus := events.NewEventBus()
	subscribeBookingEvents(eventBus, &logger)

	bookingService := service.NewBookingService(db, notifyWorker, eventBus, &logger)
	vehicleService := service.NewVehicleService(db, &logger)

	exporter := api.NewExporter(cfg.Exports.Path, &logger)
	apiServer := api.NewHTTPServer(cfg.API, bookingService, vehicleService, exporter, &logger)

	errCh := make(chan error, 1)
	go func() {
		errCh <- apiServer.Start()
	}()

	if cfg.Monitoring.PrometheusEnabled {
		go startMetricsServer(cfg.Monitoring.PrometheusPort, &logger)
	}

	select {
	case <-ctx.Done():
		logger.Info().Msg("shutdown signal received")
	case err := <-errCh:
		if err != nil {
			return err
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return apiServer.Shutdown(shutdownCtx)
}

func prepareDirectories(cfg *config.Config) error {
	if err := os.MkdirAll(filepath.Dir(cfg.Database.Path), 0o755); err != nil {
		return err
	}
	return os.MkdirAll(cfg.Exports.Path, 0o755)
}

func initDatabase(cfg *config.Config, logger *zerolog.Logger) (*database.DB, error) {
	db, err := database.NewDB(cfg.Database.Path, logger)
	if err != nil {
		logger.Error().Err(err).Msg("database init error")
		return nil, err
	}

	if err := db.SyncVehicles(context.Background(), cfg.Vehicles); err != nil {
		logger.Error().Err(err).Msg("vehicle sync error")
	}
	return db, nil
}

// initTaskQueue builds the notification transport: Redis when configured
// and reachable, with an in-memory fallback behind a failover wrapper.
func initTaskQueue(ctx context.Context, cfg *config.Config, logger *zerolog.Logger) (*redis.Client, domain.TaskQueue) {
	memory := repository.NewMemoryTaskQueue(models.WorkerQueueSize)
	if cfg.Redis.Address == "" {
		logger.Info().Msg("redis not configured, using in-memory task queue")
		return nil, memory
	}

	client := repository.NewRedisClient(cfg.Redis)
	pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	if err := repository.Ping(pingCtx, client); err != nil {
		logger.Warn().Err(err).Msg("redis unavailable, starting on in-memory task queue")
	}

	return client, repository.NewFailoverTaskQueue(repository.NewRedisTaskQueue(client), memory, logger)
}

func initNotifier(cfg *config.Config, logger *zerolog.Logger) *notify.Notifier {
	var email *notify.EmailSender
	if cfg.Notifications.Email.Enabled {
		email = notify.NewEmailSender(cfg.Notifications.Email, logger)
	}

	var telegram *notify.TelegramNotifier
	if cfg.Notifications.Telegram.Enabled {
		bot, err := tgbotapi.NewBotAPI(cfg.Notifications.Telegram.BotToken)
		if err != nil {
			logger.Error().Err(err).Msg("telegram init error, staff alerts disabled")
		} else {
			telegram = notify.NewTelegramNotifier(bot, cfg.Notifications.Telegram.ChatID, logger)
		}
	}

	return notify.NewNotifier(email, telegram, logger)
}

func subscribeBookingEvents(bus *events.EventBus, logger *zerolog.Logger) {
	logEvent := func(event *events.Event) error {
		logger.Info().
			Str("event_type", event.Type).
			RawJSON("payload", event.Payload).
			Msg("booking event")
		return nil
	}
	bus.Subscribe(events.EventBookingCreated, logEvent)
	bus.Subscribe(events.EventBookingCancelled, logEvent)
}

func startMetricsServer(port int, logger *zerolog.Logger) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	addr := fmt.Sprintf(":%d", port)
	logger.Info().Str("addr", addr).Msg("metrics server listening")
	if err := http.ListenAndServe(addr, mux); err != nil {
		logger.Error().Err(err).Msg("metrics server error")
	}
}
