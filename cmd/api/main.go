package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
	"golang.org/x/time/rate"

	"github.com/korattejas/beautyden-nextjs-sub001/internal/config"
	authhandler "github.com/korattejas/beautyden-nextjs-sub001/internal/handler/auth"
	beauticianhandler "github.com/korattejas/beautyden-nextjs-sub001/internal/handler/beautician"
	bookinghandler "github.com/korattejas/beautyden-nextjs-sub001/internal/handler/booking"
	carthandler "github.com/korattejas/beautyden-nextjs-sub001/internal/handler/cart"
	cityhandler "github.com/korattejas/beautyden-nextjs-sub001/internal/handler/city"
	contenthandler "github.com/korattejas/beautyden-nextjs-sub001/internal/handler/content"
	"github.com/korattejas/beautyden-nextjs-sub001/internal/handler/health"
	preferencehandler "github.com/korattejas/beautyden-nextjs-sub001/internal/handler/preference"
	"github.com/korattejas/beautyden-nextjs-sub001/internal/handler/prometheus"
	"github.com/korattejas/beautyden-nextjs-sub001/internal/middleware"
	"github.com/korattejas/beautyden-nextjs-sub001/internal/router"
	"github.com/korattejas/beautyden-nextjs-sub001/internal/service/beautician"
	"github.com/korattejas/beautyden-nextjs-sub001/internal/service/booking"
	"github.com/korattejas/beautyden-nextjs-sub001/internal/service/cart"
	"github.com/korattejas/beautyden-nextjs-sub001/internal/service/catalog"
	"github.com/korattejas/beautyden-nextjs-sub001/internal/service/city"
	"github.com/korattejas/beautyden-nextjs-sub001/internal/service/customer"
	"github.com/korattejas/beautyden-nextjs-sub001/internal/service/preference"
	"github.com/korattejas/beautyden-nextjs-sub001/internal/session"
	"github.com/korattejas/beautyden-nextjs-sub001/internal/upstream"
	internalworker "github.com/korattejas/beautyden-nextjs-sub001/internal/worker"
	"github.com/korattejas/beautyden-nextjs-sub001/pkg/logger"
	"github.com/korattejas/beautyden-nextjs-sub001/pkg/messaging"
	"github.com/korattejas/beautyden-nextjs-sub001/pkg/messaging/redis"
	"github.com/korattejas/beautyden-nextjs-sub001/pkg/metrics"
	"github.com/korattejas/beautyden-nextjs-sub001/pkg/security"
	"github.com/korattejas/beautyden-nextjs-sub001/pkg/sequence"
	"github.com/korattejas/beautyden-nextjs-sub001/pkg/validator"
	"github.com/korattejas/beautyden-nextjs-sub001/pkg/worker"
)

func main() {
	configPath := flag.String("config", "", "path to config.yml")
	flag.Parse()

	// A missing .env is normal outside local development.
	_ = godotenv.Load()

	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}

	appLogger := logger.NewLogger(&logger.Config{
		Level:      logger.ParseLevel(cfg.Log.Level),
		TimeFormat: time.RFC3339,
		JSON:       cfg.Log.JSON,
	})
	log.Logger = *appLogger.Zerolog()

	validator.RegisterGin()

	promHandler := prometheus.New()
	m := metrics.NewMetrics(cfg.Monitoring.Namespace, promHandler.Registry())

	cipher, err := security.NewEnvelopeCipher(cfg.Encryption.Key, cfg.Encryption.IV)
	if err != nil {
		appLogger.Fatal(err, "invalid encryption settings")
	}
	decoder := upstream.NewDecoder(cipher)

	api := upstream.NewAPI(
		upstream.NewClient(upstream.Config{
			Name:            "content",
			BaseURL:         cfg.Upstream.ContentBaseURL,
			Timeout:         cfg.Upstream.Timeout,
			MaxRetries:      cfg.Upstream.MaxRetries,
			BreakerFailures: cfg.Upstream.BreakerFailures,
			BreakerTimeout:  cfg.Upstream.BreakerTimeout,
		}, decoder, appLogger, m),
		upstream.NewClient(upstream.Config{
			Name:            "customer",
			BaseURL:         cfg.Upstream.CustomerBaseURL,
			Timeout:         cfg.Upstream.Timeout,
			MaxRetries:      cfg.Upstream.MaxRetries,
			RequireAuth:     true,
			BreakerFailures: cfg.Upstream.BreakerFailures,
			BreakerTimeout:  cfg.Upstream.BreakerTimeout,
		}, decoder, appLogger, m),
	)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	storage, closeStorage, err := newSessionStorage(ctx, cfg)
	if err != nil {
		appLogger.Fatal(err, "failed to initialize session storage")
	}
	defer closeStorage()

	broker, err := newBroker(cfg, appLogger)
	if err != nil {
		appLogger.Fatal(err, "failed to initialize event broker")
	}
	defer broker.Close()
	events := messaging.NewEventPublisher(broker)

	// Services
	seq := sequence.NewTracker(time.Hour)
	citySvc := city.NewService(appLogger)
	cartSvc := cart.NewService(events, appLogger, m)
	catalogSvc := catalog.NewService(api, citySvc, seq, cfg.Cache.ContentTTL, appLogger, m)
	bookingSvc := booking.NewService(api, cartSvc, citySvc, events, appLogger, m)
	beauticianSvc := beautician.NewService(api, cfg.Cache.TeamTTL, appLogger)
	customerSvc := customer.NewService(api, appLogger)
	preferenceSvc := preference.NewService()

	corsConfig := middleware.DefaultCORSConfig()
	corsConfig.AllowOrigins = cfg.Security.AllowedOrigins
	corsConfig.AllowMethods = cfg.Security.AllowedMethods
	corsConfig.AllowHeaders = cfg.Security.AllowedHeaders

	routerConfig := router.RouterConfig{
		Mode:           cfg.Server.Mode,
		RequestTimeout: cfg.Server.RequestTimeout,
		MaxBodyBytes:   cfg.Server.MaxBodyBytes,
		CORSConfig:     corsConfig,
		Session: middleware.SessionConfig{
			Tokens:  session.NewTokenManager(cfg.Session.Secret, cfg.Session.Issuer, cfg.Session.TTL),
			Storage: storage,
			Locker:  session.NewLocker(cfg.Session.LockStripes),
			TTL:     cfg.Session.TTL,
			Metrics: m,
		},
		Metrics: m,
	}
	if cfg.RateLimit.Enabled {
		routerConfig.RateLimit = rate.Limit(cfg.RateLimit.RequestsPerSecond)
		routerConfig.RateBurst = cfg.RateLimit.Burst
	}
	if cfg.Monitoring.PrometheusEnabled {
		routerConfig.MetricsPath = cfg.Monitoring.MetricsPath
		routerConfig.MetricsHandler = promHandler.Handler()
	}

	r := router.NewRouter(
		health.NewHandler(map[string]health.Checker{"sessions": storage.Ping}),
		routerConfig,
		authhandler.NewHandler(customerSvc),
		contenthandler.NewHandler(catalogSvc),
		cityhandler.NewHandler(citySvc),
		carthandler.NewHandler(cartSvc),
		bookinghandler.NewHandler(bookingSvc),
		beauticianhandler.NewHandler(beauticianSvc),
		preferencehandler.NewHandler(preferenceSvc),
	)
	r.Setup()

	// Background workers
	var wg sync.WaitGroup
	if cfg.Refresh.Enabled {
		refresher := internalworker.NewContentRefresher(catalogSvc, beauticianSvc, seq, internalworker.ContentRefresherConfig{
			Schedule: cfg.Refresh.Schedule,
		}, appLogger)
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := refresher.Start(ctx); err != nil {
				appLogger.Error(err, "content refresher stopped")
			}
		}()
	}

	// With Redis events the standalone worker consumes them instead.
	if cfg.Events.Driver == "memory" {
		listener := worker.NewEventListener(broker, worker.LogEvents(appLogger), worker.EventListenerConfig{
			Channels: []string{
				messaging.ChannelBookingConfirmed,
				messaging.ChannelNavigateNext,
				messaging.ChannelCartChanged,
			},
		}, appLogger, m)
		wg.Add(1)
		go func() {
			defer wg.Done()
			listener.Start(ctx)
		}()
	}

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      r.Engine(),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	go func() {
		appLogger.Info("starting server", "port", cfg.Server.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			appLogger.Fatal(err, "failed to start server")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	appLogger.Info("shutting down server...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		appLogger.Error(err, "server forced to shutdown")
	}

	cancel()
	wg.Wait()
	appLogger.Info("server exited properly")
}

type pingStorage interface {
	session.Storage
	session.Pinger
}

func newSessionStorage(ctx context.Context, cfg *config.Config) (pingStorage, func(), error) {
	if cfg.Session.Storage != "redis" {
		return session.NewMemoryStorage(cfg.Session.TTL, 10*time.Minute), func() {}, nil
	}

	storage, err := session.NewRedisStorage(ctx, session.RedisConfig{
		URL:          cfg.Redis.URL,
		PoolSize:     cfg.Redis.PoolSize,
		MinIdleConns: cfg.Redis.MinIdleConns,
		MaxRetries:   cfg.Redis.MaxRetries,
		KeyPrefix:    cfg.Redis.KeyPrefix,
	})
	if err != nil {
		return nil, nil, err
	}
	return storage, func() { storage.Close() }, nil
}

func newBroker(cfg *config.Config, appLogger *logger.Logger) (messaging.Broker, error) {
	if cfg.Events.Driver != "redis" {
		return messaging.NewMemoryBroker(), nil
	}
	return redis.NewRedisBroker(redis.Config{
		URL:          cfg.Redis.URL,
		MaxRetries:   cfg.Redis.MaxRetries,
		PoolSize:     cfg.Redis.PoolSize,
		MinIdleConns: cfg.Redis.MinIdleConns,
	}, appLogger.Zerolog())
}
