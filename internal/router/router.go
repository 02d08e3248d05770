package router

import (
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"

	"github.com/korattejas/beautyden-nextjs-sub001/internal/middleware"
	"github.com/korattejas/beautyden-nextjs-sub001/pkg/metrics"
)

type Handler interface {
	RegisterRoutes(*gin.RouterGroup)
}

type Router struct {
	engine   *gin.Engine
	config   RouterConfig
	health   Handler
	handlers []Handler
}

type RouterConfig struct {
	Mode           string
	RateLimit      rate.Limit
	RateBurst      int
	RequestTimeout time.Duration
	MaxBodyBytes   int64
	CORSConfig     middleware.CORSConfig
	Session        middleware.SessionConfig
	Metrics        *metrics.Metrics
	// MetricsPath is served outside /api/v1 when MetricsHandler is set.
	MetricsPath    string
	MetricsHandler gin.HandlerFunc
}

// NewRouter builds the engine and its global middleware chain. Session-bound
// handlers are registered under /api/v1 by Setup.
func NewRouter(health Handler, config RouterConfig, handlers ...Handler) *Router {
	if config.Mode != "" {
		gin.SetMode(config.Mode)
	}

	timeout := middleware.DefaultTimeoutConfig()
	if config.RequestTimeout > 0 {
		timeout.Duration = config.RequestTimeout
	}

	sizeLimit := middleware.DefaultSizeLimitConfig()
	if config.MaxBodyBytes > 0 {
		sizeLimit.MaxBodySize = config.MaxBodyBytes
	}

	engine := gin.New()
	r := &Router{
		engine:   engine,
		config:   config,
		health:   health,
		handlers: handlers,
	}

	engine.Use(
		middleware.RequestID(),
		middleware.Recovery(),
		middleware.Logger(),
		middleware.ErrorHandler(),
		middleware.SecurityHeaders(middleware.DefaultSecurityConfig()),
		middleware.CORS(config.CORSConfig),
		middleware.SizeLimit(sizeLimit),
		middleware.Timeout(timeout),
	)
	if config.Metrics != nil {
		engine.Use(middleware.Metrics(config.Metrics))
	}
	if config.RateLimit > 0 {
		rateLimiter := middleware.NewRateLimiter(middleware.RateLimiterConfig{
			Rate:  config.RateLimit,
			Burst: config.RateBurst,
		})
		engine.Use(rateLimiter.RateLimit())
	}

	return r
}

func (r *Router) Setup() {
	if r.config.MetricsHandler != nil && r.config.MetricsPath != "" {
		r.engine.GET(r.config.MetricsPath, r.config.MetricsHandler)
	}

	api := r.engine.Group("/api/v1")
	api.Use(func(c *gin.Context) {
		c.Header("X-API-Version", "1.0")
		c.Next()
	})

	if r.health != nil {
		r.health.RegisterRoutes(api)
	}

	visitor := api.Group("")
	visitor.Use(middleware.Session(r.config.Session))
	for _, h := range r.handlers {
		h.RegisterRoutes(visitor)
	}
}

func (r *Router) Engine() *gin.Engine {
	return r.engine
}
