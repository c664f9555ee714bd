package main

import (
	"context"
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/multierr"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/xraph/ioc"
	"github.com/xraph/ioc/internal/config"
	"github.com/xraph/ioc/internal/device"
	"github.com/xraph/ioc/internal/ras"
)

// app holds what a command needs for one run.
type app struct {
	cfg       *config.Config
	logger    *zap.Logger
	container *ioc.Container
	metrics   *prometheus.Registry // nil unless metrics are enabled
}

func newApp(cfg *config.Config) (*app, error) {
	logger, err := newLogger(cfg.LogLevel)
	if err != nil {
		return nil, err
	}

	a := &app{cfg: cfg, logger: logger}
	if cfg.Metrics {
		a.metrics = prometheus.NewRegistry()
	}

	a.container, err = newContainer(cfg, logger, a.metrics)
	if err != nil {
		return nil, err
	}

	if err := a.container.Validate(); err != nil {
		return nil, fmt.Errorf("invalid service graph: %w", err)
	}

	return a, nil
}

// newContainer registers the dialer's services. reg may be nil.
func newContainer(cfg *config.Config, logger *zap.Logger, reg prometheus.Registerer) (*ioc.Container, error) {
	opts := []ioc.Option{
		ioc.WithLogger(logger),
		ioc.WithResolveLogging(logger),
	}
	if reg != nil {
		opts = append(opts, ioc.WithMetrics(reg))
	}

	c := ioc.New(opts...)

	err := multierr.Combine(
		ioc.RegisterInstance(c, cfg),
		ioc.RegisterInstance(c, logger),
		ioc.RegisterSingleton[device.Enumerator](c, device.NewStaticEnumerator),
		ioc.RegisterSingleton[*ras.MemoryAPI](c, ras.NewMemoryAPI),
		ioc.RegisterSingleton[ras.API](c, newAPI),
		ioc.RegisterPerScope[*ras.Session](c, ras.NewSession),
	)
	if err != nil {
		return nil, err
	}

	return c, nil
}

// newAPI decorates the in-memory API with call logging.
func newAPI(api *ras.MemoryAPI, logger *zap.Logger) *ras.LoggingAPI {
	return ras.NewLoggingAPI(api, logger)
}

func newLogger(level string) (*zap.Logger, error) {
	lvl, err := zapcore.ParseLevel(level)
	if err != nil {
		return nil, fmt.Errorf("invalid log level %q: %w", level, err)
	}

	zc := zap.NewDevelopmentConfig()
	zc.Level = zap.NewAtomicLevelAt(lvl)

	return zc.Build()
}

// inScope runs fn inside a fresh scope and disposes the scope afterwards.
func (a *app) inScope(ctx context.Context, fn func(ctx context.Context, s *ioc.Scope) error) (err error) {
	s := a.container.CreateScope()
	defer func() {
		err = multierr.Append(err, s.Dispose())
	}()

	return fn(ctx, s)
}

func (a *app) close() error {
	err := a.container.Dispose()
	_ = a.logger.Sync()

	return err
}
