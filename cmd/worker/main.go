package main

import (
	"context"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"

	"github.com/korattejas/beautyden-nextjs-sub001/internal/config"
	"github.com/korattejas/beautyden-nextjs-sub001/internal/handler/prometheus"
	"github.com/korattejas/beautyden-nextjs-sub001/pkg/logger"
	"github.com/korattejas/beautyden-nextjs-sub001/pkg/messaging"
	"github.com/korattejas/beautyden-nextjs-sub001/pkg/messaging/redis"
	"github.com/korattejas/beautyden-nextjs-sub001/pkg/metrics"
	"github.com/korattejas/beautyden-nextjs-sub001/pkg/worker"
)

// The worker consumes booking events published by every gateway replica over
// Redis. It is only useful with events.driver=redis.

func setupHealthCheck(addr string, promHandler *prometheus.Handler, logger *logger.Logger) *http.Server {
	mux := http.NewServeMux()
	mux.HandleFunc("/health/live", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	mux.HandleFunc("/health/ready", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	mux.Handle("/metrics", promHandler.HTTPHandler())

	srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal(err, "Health check server failed")
		}
	}()
	return srv
}

func main() {
	configPath := flag.String("config", "", "path to config.yml")
	healthAddr := flag.String("health-addr", ":8081", "address of the health and metrics server")
	flag.Parse()

	_ = godotenv.Load()

	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load config")
	}

	appLogger := logger.NewLogger(&logger.Config{
		Level:      logger.ParseLevel(cfg.Log.Level),
		TimeFormat: time.RFC3339,
		JSON:       cfg.Log.JSON,
	}).WithFields(map[string]interface{}{"component": "event_worker"})
	log.Logger = *appLogger.Zerolog()

	if cfg.Events.Driver != "redis" {
		appLogger.Fatal(nil, "event worker requires events.driver=redis")
	}

	broker, err := redis.NewRedisBroker(redis.Config{
		URL:          cfg.Redis.URL,
		MaxRetries:   cfg.Redis.MaxRetries,
		PoolSize:     cfg.Redis.PoolSize,
		MinIdleConns: cfg.Redis.MinIdleConns,
	}, appLogger.Zerolog())
	if err != nil {
		appLogger.Fatal(err, "Failed to create Redis broker")
	}
	defer broker.Close()

	promHandler := prometheus.New()
	m := metrics.NewMetrics(cfg.Monitoring.Namespace+"_worker", promHandler.Registry())

	listener := worker.NewEventListener(broker, worker.LogEvents(appLogger), worker.EventListenerConfig{
		Channels: []string{
			messaging.ChannelBookingConfirmed,
			messaging.ChannelNavigateNext,
			messaging.ChannelCartChanged,
		},
		RetryAttempts: 10,
		RetryDelay:    2 * time.Second,
	}, appLogger, m)

	health := setupHealthCheck(*healthAddr, promHandler, appLogger)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigChan
		appLogger.Info("Shutting down...")
		cancel()
	}()

	listener.Start(ctx)

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	health.Shutdown(shutdownCtx)
}
