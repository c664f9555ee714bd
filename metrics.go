package ioc

import (
	"context"

	"github.com/prometheus/client_golang/prometheus"
)

// MetricsMiddleware records resolution counts and latencies in Prometheus.
type MetricsMiddleware struct {
	// Resolutions counts resolutions by service and result ("ok" or "error").
	Resolutions *prometheus.CounterVec

	// Duration tracks how long resolutions take, including nested ones.
	Duration *prometheus.HistogramVec
}

// NewMetricsMiddleware creates the collectors and registers them with reg.
// It panics if they are already registered.
func NewMetricsMiddleware(reg prometheus.Registerer) *MetricsMiddleware {
	m := &MetricsMiddleware{
		Resolutions: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "ioc",
				Name:      "resolutions_total",
				Help:      "Total number of service resolutions.",
			},
			[]string{"service", "result"},
		),
		Duration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: "ioc",
				Name:      "resolution_duration_seconds",
				Help:      "Duration of service resolutions in seconds.",
				Buckets:   []float64{.00001, .0001, .001, .01, .1, 1},
			},
			[]string{"service"},
		),
	}

	if reg != nil {
		reg.MustRegister(m.Resolutions, m.Duration)
	}

	return m
}

// BeforeResolve implements Middleware.
func (m *MetricsMiddleware) BeforeResolve(context.Context, ServiceType) error {
	return nil
}

// AfterResolve implements Middleware.
func (m *MetricsMiddleware) AfterResolve(_ context.Context, event ResolveEvent) error {
	result := "ok"
	if event.Err != nil {
		result = "error"
	}

	service := event.Service.String()
	m.Resolutions.WithLabelValues(service, result).Inc()
	m.Duration.WithLabelValues(service).Observe(event.Duration.Seconds())

	return nil
}
