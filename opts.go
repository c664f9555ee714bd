package ioc

import (
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"
)

// Option configures a Container.
type Option func(*config)

type config struct {
	logger     *zap.Logger
	middleware []Middleware
}

func newConfig(opts []Option) *config {
	cfg := &config{logger: zap.NewNop()}
	for _, opt := range opts {
		opt(cfg)
	}

	return cfg
}

// WithLogger sets the logger used for registration and disposal events.
func WithLogger(logger *zap.Logger) Option {
	return func(c *config) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithMiddleware adds resolution middleware, called in the order given.
func WithMiddleware(middleware ...Middleware) Option {
	return func(c *config) {
		c.middleware = append(c.middleware, middleware...)
	}
}

// WithResolveLogging logs every resolution through logger.
func WithResolveLogging(logger *zap.Logger) Option {
	return WithMiddleware(NewLoggingMiddleware(logger))
}

// WithMetrics records resolution counts and latencies in reg.
// It panics if the collectors are already registered in reg.
func WithMetrics(reg prometheus.Registerer) Option {
	return WithMiddleware(NewMetricsMiddleware(reg))
}
