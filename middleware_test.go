package ioc

import (
	"context"
	"errors"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestMiddleware_Order(t *testing.T) {
	var events []ResolveEvent

	mw := &FuncMiddleware{
		AfterResolveFunc: func(_ context.Context, event ResolveEvent) error {
			events = append(events, event)

			return nil
		},
	}

	c := New(WithMiddleware(mw))
	require.NoError(t, RegisterSingleton[Logger](c, NewConsoleLogger))
	_, err := Register[Worker](c, NewWorker)
	require.NoError(t, err)

	_, err = Resolve[Worker](c)
	require.NoError(t, err)

	require.Len(t, events, 2)
	assert.Equal(t, TypeOf[Logger](), events[0].Service)
	assert.Equal(t, 1, events[0].Depth)
	assert.Equal(t, TypeOf[Worker](), events[1].Service)
	assert.Equal(t, 0, events[1].Depth)
}

func TestMiddleware_BeforeResolveAborts(t *testing.T) {
	denied := errors.New("denied")
	built := 0

	c := New(WithMiddleware(&FuncMiddleware{
		BeforeResolveFunc: func(_ context.Context, service ServiceType) error {
			if service == TypeOf[Logger]() {
				return denied
			}

			return nil
		},
	}))

	_, err := RegisterFactory[Logger](c, func(Resolver) (Logger, error) {
		built++

		return NewConsoleLogger(), nil
	})
	require.NoError(t, err)

	_, err = Resolve[Logger](c)
	assert.ErrorIs(t, err, denied)
	assert.Equal(t, 0, built)
}

func TestMiddleware_AfterResolveReplacesResult(t *testing.T) {
	audit := errors.New("audit failed")

	c := New(WithMiddleware(&FuncMiddleware{
		AfterResolveFunc: func(context.Context, ResolveEvent) error {
			return audit
		},
	}))
	_, err := Register[Logger](c, NewConsoleLogger)
	require.NoError(t, err)

	l, err := Resolve[Logger](c)
	assert.ErrorIs(t, err, audit)
	assert.Nil(t, l)
}

func TestMiddleware_ContextPropagates(t *testing.T) {
	type key struct{}
	var seen []any

	c := New(WithMiddleware(&FuncMiddleware{
		BeforeResolveFunc: func(ctx context.Context, _ ServiceType) error {
			seen = append(seen, ctx.Value(key{}))

			return nil
		},
	}))
	require.NoError(t, RegisterSingleton[Logger](c, NewConsoleLogger))
	_, err := Register[Worker](c, NewWorker)
	require.NoError(t, err)

	ctx := context.WithValue(context.Background(), key{}, "request-1")
	_, err = c.ResolveContext(ctx, TypeOf[Worker]())
	require.NoError(t, err)

	assert.Equal(t, []any{"request-1", "request-1"}, seen)
}

func TestLoggingMiddleware(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	c := New(WithResolveLogging(zap.New(core)))

	_, err := Register[Logger](c, NewConsoleLogger)
	require.NoError(t, err)

	_, err = Resolve[Logger](c)
	require.NoError(t, err)
	_, err = Resolve[Worker](c)
	require.Error(t, err)

	resolved := logs.FilterMessage("resolved").All()
	require.Len(t, resolved, 1)
	assert.Equal(t, "ioc", resolved[0].LoggerName)
	assert.Equal(t, "ioc.Logger", resolved[0].ContextMap()["service"])

	failed := logs.FilterMessage("resolve failed").All()
	require.Len(t, failed, 1)
	assert.Equal(t, zapcore.WarnLevel, failed[0].Level)
}

func TestContainerLogger_DisposeFailure(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	c := New(WithLogger(zap.New(core)))

	require.NoError(t, RegisterInstance[Logger](c, &disposableLogger{mockService{disposeErr: errors.New("stuck")}}))
	_ = MustResolve[Logger](c)

	assert.Error(t, c.Dispose())
	assert.Equal(t, 1, logs.FilterMessage("container disposal failed").Len())
	assert.Equal(t, 1, logs.FilterMessage("service registered").Len())
}

func TestMetricsMiddleware(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewMetricsMiddleware(reg)
	c := New(WithMiddleware(m))

	require.NoError(t, RegisterSingleton[Logger](c, NewConsoleLogger))

	_ = MustResolve[Logger](c)
	_ = MustResolve[Logger](c)
	_, err := Resolve[Worker](c)
	require.Error(t, err)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.Resolutions.WithLabelValues("ioc.Logger", "ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Resolutions.WithLabelValues("ioc.Worker", "error")))
	assert.Equal(t, 2, testutil.CollectAndCount(m.Duration))
}

func TestWithMetrics_DuplicateRegistrationPanics(t *testing.T) {
	reg := prometheus.NewRegistry()
	_ = New(WithMetrics(reg))

	assert.Panics(t, func() { _ = New(WithMetrics(reg)) })
}
