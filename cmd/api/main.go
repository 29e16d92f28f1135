package main

import (
	"context"
	"crypto/tls"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"

	"github.com/NIKHIL-505/swiftchat-bot/internal/api/router"
	"github.com/NIKHIL-505/swiftchat-bot/internal/bot"
	appconfig "github.com/NIKHIL-505/swiftchat-bot/internal/config"
	"github.com/NIKHIL-505/swiftchat-bot/internal/delivery"
	"github.com/NIKHIL-505/swiftchat-bot/internal/http/handlers"
	"github.com/NIKHIL-505/swiftchat-bot/internal/menu"
	"github.com/NIKHIL-505/swiftchat-bot/internal/observability/metrics"
	"github.com/NIKHIL-505/swiftchat-bot/internal/registration"
	"github.com/NIKHIL-505/swiftchat-bot/internal/stats"
	"github.com/NIKHIL-505/swiftchat-bot/internal/trivia"
	"github.com/NIKHIL-505/swiftchat-bot/pkg/logging"
)

func main() {
	_ = godotenv.Load()
	cfg := appconfig.Load()

	logger := logging.New(cfg.LogLevel)
	logger.Info("starting swiftchat-bot API server",
		"env", cfg.Env,
		"port", cfg.Port,
	)

	redisOpts := &redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
	}
	if cfg.RedisTLS {
		redisOpts.TLSConfig = &tls.Config{MinVersion: tls.VersionTLS12}
	}
	rdb := redis.NewClient(redisOpts)
	if err := rdb.Ping(context.Background()).Err(); err != nil {
		logger.Error("failed to reach redis", "addr", cfg.RedisAddr, "error", err)
		os.Exit(1)
	}

	registry := prometheus.NewRegistry()
	botMetrics := metrics.NewBotMetrics(registry)

	sender, err := delivery.New(delivery.Config{
		APIURL:          cfg.KlusterAPIURL,
		BotID:           cfg.KlusterBotID,
		APIToken:        cfg.KlusterAPIToken,
		Timeout:         cfg.KlusterTimeout,
		MaxAttempts:     cfg.KlusterRetryAttempts,
		BaseDelay:       cfg.KlusterRetryBaseDelay,
		MaxIdleConns:    cfg.KlusterMaxIdleConns,
		IdleConnTimeout: cfg.KlusterIdleConnTimeout,
		Logger:          logger,
		Metrics:         botMetrics,
	})
	if err != nil {
		logger.Error("failed to configure delivery client", "error", err)
		os.Exit(1)
	}

	locks := bot.NewLockStore(rdb, cfg.ProcessingLockTTL, cfg.ValidationLockTTL, nil)
	contexts := bot.NewContextStore(rdb, nil)
	statsClient := stats.NewClient(cfg.StatsAPIURL, nil, logger)
	registrationService := registration.NewService(contexts, locks, sender, statsClient, logger)
	menuService := menu.NewService(contexts, sender, logger)

	dispatcher := bot.NewDispatcher(bot.DispatcherConfig{
		Locks:           locks,
		Contexts:        contexts,
		Sender:          sender,
		Registration:    registrationService,
		Menu:            menuService,
		Stats:           statsClient,
		DefaultMedium:   cfg.DefaultMedium,
		ExtendedButtons: registration.ExtendedButtons(),
		Logger:          logger,
		Metrics:         botMetrics,
	})

	triviaService := trivia.NewService(cfg.TriviaAPIURL, nil, rdb, sender, cfg.QuizStateTTL, logger)

	r := router.New(&router.Config{
		Logger:         logger,
		Webhook:        handlers.NewKlusterWebhookHandler(dispatcher, logger),
		Trivia:         handlers.NewTriviaHandler(triviaService, logger),
		MetricsHandler: promhttp.HandlerFor(registry, promhttp.HandlerOpts{}),
	})

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
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

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("server forced to shutdown", "error", err)
		os.Exit(1)
	}

	logger.Info("server stopped")
}
