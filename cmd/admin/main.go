package main

import (
	"context"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"ebadmin/internal/board"
	"ebadmin/internal/config"
	"ebadmin/internal/events"
	"ebadmin/internal/gateway"
	"ebadmin/internal/knowledge"
	"ebadmin/internal/logging"
	"ebadmin/internal/metrics"
	"ebadmin/internal/notify"
	"ebadmin/internal/web"
	"ebadmin/internal/worker"

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
	cfg, logger, closer, err := loadConfigAndLogger()
	if err != nil {
		return err
	}
	if closer != nil {
		defer (func(c io.Closer) { _ = c.Close() })(closer)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	metrics.Register()

	gw := gateway.New(cfg.Backend.BaseURL, cfg.Backend.Timeout(), logger)
	if redisClient := initRedis(ctx, cfg, logger); redisClient != nil {
		defer redisClient.Close()
		gw.UseRedisCache(redisClient, cfg.Backend.CacheTTL())
	}

	eventBus := events.NewEventBus()
	if notifier := initNotifier(cfg, logger); notifier != nil {
		notifier.Subscribe(eventBus)
	}

	boardCtrl := board.NewController(gw, eventBus, logger)
	if err := boardCtrl.Load(ctx); err != nil {
		logger.Error().Err(err).Msg("initial board load failed; starting with an empty board")
	}

	docs := knowledge.NewManager(gw, eventBus, cfg.Upload.MaxSizeBytes, cfg.Upload.AllowedExtensions, logger)

	watcher := worker.NewHealthWatcher(gw, cfg.Health.Interval(), worker.RetryPolicy{
		InitialDelay:  2 * time.Second,
		MaxDelay:      cfg.Health.Interval(),
		BackoffFactor: 2,
	}, logger)
	go watcher.Start(ctx)

	if cfg.Monitoring.PrometheusEnabled {
		go startMetricsServer(cfg.Monitoring.PrometheusPort, logger)
	}

	server, err := web.NewServer(cfg.Server, boardCtrl, docs, gw, watcher, logger)
	if err != nil {
		return err
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.Start()
	}()

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
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("server shutdown error")
	}

	// Let in-flight status persistence finish before the process exits.
	boardCtrl.Wait()
	logger.Info().Msg("shutdown complete")
	return nil
}

func loadConfigAndLogger() (*config.Config, *zerolog.Logger, io.Closer, error) {
	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "configs/config.yaml"
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, nil, nil, err
	}

	logger, closer, err := logging.New(cfg.Logging, cfg.App)
	if err != nil {
		return nil, nil, nil, err
	}
	main := logging.Component(logger, "admin-main")
	return cfg, &main, closer, nil
}

// initRedis connects the optional response cache. A dead Redis downgrades to
// uncached operation instead of failing startup.
func initRedis(ctx context.Context, cfg *config.Config, logger *zerolog.Logger) *redis.Client {
	if cfg.Redis.Address == "" {
		return nil
	}

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Address,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
		PoolSize: cfg.Redis.PoolSize,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		logger.Warn().Err(err).Str("address", cfg.Redis.Address).Msg("redis unavailable, caching disabled")
		_ = client.Close()
		return nil
	}

	logger.Info().Str("address", cfg.Redis.Address).Msg("redis cache connected")
	return client
}

func initNotifier(cfg *config.Config, logger *zerolog.Logger) *notify.TelegramNotifier {
	if cfg.Telegram.BotToken == "" {
		return nil
	}

	notifier, err := notify.New(cfg.Telegram.BotToken, cfg.Telegram.StaffChatID, logger)
	if err != nil {
		logger.Warn().Err(err).Msg("telegram notifier disabled")
		return nil
	}
	logger.Info().Int64("chat_id", cfg.Telegram.StaffChatID).Msg("telegram notifications enabled")
	return notifier
}

func startMetricsServer(port int, logger *zerolog.Logger) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())

	addr := fmt.Sprintf(":%d", port)
	logger.Info().Str("addr", addr).Msg("prometheus metrics listening")
	server := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Error().Err(err).Msg("metrics server error")
	}
}
