// Package router assembles the gin engine: middleware stack and route registrars.
package router

import (
	"github.com/gin-gonic/gin"
	"github.com/taskboard/taskboard/internal/infrastructure/logger"
	"github.com/taskboard/taskboard/internal/infrastructure/telemetry"
	"github.com/taskboard/taskboard/internal/interfaces/http/middleware"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

// RouteRegistrar defines the interface for registering routes
type RouteRegistrar interface {
	RegisterRoutes(rg *gin.RouterGroup)
}

// Config describes the middleware stack
type Config struct {
	Logger         *zap.Logger
	CORS           middleware.CORSConfig
	MaxBodySize    int64
	RateLimiter    *middleware.RateLimiter
	TracingEnabled bool
	TracerProvider trace.TracerProvider
	MeterProvider  *telemetry.MeterProvider
	TrustedProxies []string
}

// Router manages HTTP route registration
type Router struct {
	engine     *gin.Engine
	registrars []RouteRegistrar
}

// NewRouter creates a new Router instance over engine
func NewRouter(engine *gin.Engine) *Router {
	return &Router{engine: engine}
}

// Register adds a RouteRegistrar to be registered by Setup
func (r *Router) Register(registrars ...RouteRegistrar) *Router {
	r.registrars = append(r.registrars, registrars...)
	return r
}

// Setup registers all routes with the engine
func (r *Router) Setup() *gin.Engine {
	for _, registrar := range r.registrars {
		registrar.RegisterRoutes(&r.engine.RouterGroup)
	}
	return r.engine
}

// NewEngine creates a gin engine with the middleware stack applied in order:
// request id, recovery, tracing, request logging, metrics, security headers,
// CORS, body limit and rate limiting.
func NewEngine(cfg Config) *gin.Engine {
	log := cfg.Logger
	if log == nil {
		log = zap.NewNop()
	}

	middleware.SetupValidator()

	engine := gin.New()
	engine.HandleMethodNotAllowed = true
	if len(cfg.TrustedProxies) > 0 {
		if err := engine.SetTrustedProxies(cfg.TrustedProxies); err != nil {
			log.Warn("Failed to set trusted proxies", zap.Error(err))
		}
	}

	engine.Use(middleware.RequestID())
	engine.Use(logger.Recovery(log))
	if cfg.TracingEnabled {
		engine.Use(middleware.TracingWithConfig(middleware.TracingConfig{
			Enabled:        true,
			ServiceName:    "taskboard",
			TracerProvider: cfg.TracerProvider,
		}))
		engine.Use(middleware.SpanEnricher())
	}
	engine.Use(logger.GinMiddleware(log))
	engine.Use(middleware.HTTPMetrics(middleware.HTTPMetricsConfig{
		Enabled:       cfg.MeterProvider != nil,
		MeterProvider: cfg.MeterProvider,
		Logger:        log,
	}))
	engine.Use(middleware.Secure())
	engine.Use(middleware.CORSWithConfig(cfg.CORS))
	engine.Use(middleware.BodyLimit(cfg.MaxBodySize))
	if cfg.RateLimiter != nil {
		engine.Use(middleware.RateLimit(cfg.RateLimiter))
		log.Info("Rate limiting enabled",
			zap.Int("requests", cfg.RateLimiter.Limit()),
		)
	}

	return engine
}

// DefaultConfig returns a Config with the default CORS policy and a 1 MiB body limit
func DefaultConfig(log *zap.Logger) Config {
	return Config{
		Logger:      log,
		CORS:        middleware.DefaultCORSConfig(),
		MaxBodySize: 1 << 20,
	}
}
