package ras

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/multierr"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/xraph/ioc/internal/config"
	"github.com/xraph/ioc/internal/device"
)

func newTestAPI(t *testing.T) *MemoryAPI {
	t.Helper()

	e, err := device.NewStaticEnumerator(&config.Config{Devices: []string{"modem0:modem", "vpn0:vpn"}})
	require.NoError(t, err)

	return NewMemoryAPI(e)
}

func TestMemoryAPI_DialAndHangUp(t *testing.T) {
	api := newTestAPI(t)
	ctx := context.Background()

	start := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	now := start
	api.now = func() time.Time { return now }

	c, err := api.Dial(ctx, "modem0", "office")
	require.NoError(t, err)
	assert.Equal(t, "conn-1", c.ID)
	assert.Equal(t, "modem", c.Device.Type)

	now = start.Add(90 * time.Second)
	s, err := api.Stats(ctx, c.ID)
	require.NoError(t, err)
	assert.True(t, s.Connected)
	assert.Equal(t, 90*time.Second, s.Duration)

	require.NoError(t, api.HangUp(ctx, c.ID))
	assert.ErrorIs(t, api.HangUp(ctx, c.ID), ErrNotConnected)

	_, err = api.Stats(ctx, c.ID)
	assert.ErrorIs(t, err, ErrNotConnected)
}

func TestMemoryAPI_DeviceBusy(t *testing.T) {
	api := newTestAPI(t)
	ctx := context.Background()

	_, err := api.Dial(ctx, "vpn0", "office")
	require.NoError(t, err)

	_, err = api.Dial(ctx, "vpn0", "home")
	assert.ErrorIs(t, err, ErrDeviceBusy)

	_, err = api.Dial(ctx, "modem0", "home")
	assert.NoError(t, err)
	assert.Equal(t, 2, api.Active())
}

func TestMemoryAPI_Errors(t *testing.T) {
	api := newTestAPI(t)

	_, err := api.Dial(context.Background(), "isdn0", "office")
	assert.ErrorIs(t, err, device.ErrUnknownDevice)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = api.Dial(ctx, "modem0", "office")
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 0, api.Active())
}

func TestLoggingAPI(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	api := NewLoggingAPI(newTestAPI(t), zap.New(core))
	ctx := context.Background()

	c, err := api.Dial(ctx, "modem0", "office")
	require.NoError(t, err)
	_, err = api.Stats(ctx, c.ID)
	require.NoError(t, err)
	require.NoError(t, api.HangUp(ctx, c.ID))
	require.Error(t, api.HangUp(ctx, c.ID))

	entries := logs.All()
	require.Len(t, entries, 4)

	assert.Equal(t, "ras", entries[0].LoggerName)
	assert.Equal(t, "dial", entries[0].ContextMap()["call"])
	assert.Equal(t, "office", entries[0].ContextMap()["entry"])
	assert.Equal(t, "conn-1", entries[0].ContextMap()["id"])

	assert.Equal(t, zapcore.WarnLevel, entries[3].Level)
	assert.Equal(t, "ras call failed", entries[3].Message)
}

func TestSession_DisposeHangsUp(t *testing.T) {
	api := newTestAPI(t)
	s := NewSession(api, nil)
	ctx := context.Background()

	first, err := s.Dial(ctx, "modem0", "office")
	require.NoError(t, err)
	second, err := s.Dial(ctx, "vpn0", "office")
	require.NoError(t, err)
	assert.Equal(t, []string{first.ID, second.ID}, s.Open())

	require.NoError(t, s.HangUp(ctx, first.ID))
	assert.Equal(t, []string{second.ID}, s.Open())

	require.NoError(t, s.Dispose())
	require.NoError(t, s.Dispose())
	assert.Empty(t, s.Open())
	assert.Equal(t, 0, api.Active())
}

type failingAPI struct {
	API
	hangUpErr error
}

func (f *failingAPI) HangUp(context.Context, string) error { return f.hangUpErr }

func TestSession_DisposeAggregatesErrors(t *testing.T) {
	api := &failingAPI{API: newTestAPI(t), hangUpErr: errors.New("line stuck")}
	s := NewSession(api, nil)
	ctx := context.Background()

	_, err := s.Dial(ctx, "modem0", "office")
	require.NoError(t, err)
	_, err = s.Dial(ctx, "vpn0", "office")
	require.NoError(t, err)

	err = s.Dispose()
	assert.Len(t, multierr.Errors(err), 2)
}
