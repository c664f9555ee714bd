// Package ras dials and tracks remote access connections.
package ras

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/xraph/ioc/internal/device"
)

var (
	// ErrNotConnected is returned for connection IDs that are not active.
	ErrNotConnected = errors.New("not connected")

	// ErrDeviceBusy is returned when dialing a device that already has a connection.
	ErrDeviceBusy = errors.New("device busy")
)

// Connection is an active connection.
type Connection struct {
	ID       string
	Device   device.Device
	Entry    string
	DialedAt time.Time
}

// Stats describes a connection.
type Stats struct {
	Connected bool
	Duration  time.Duration
}

// API is the remote access surface used by the dialer.
type API interface {
	Dial(ctx context.Context, deviceName, entry string) (Connection, error)
	HangUp(ctx context.Context, id string) error
	Stats(ctx context.Context, id string) (Stats, error)
}

// MemoryAPI is an in-process API. One device carries at most one connection.
type MemoryAPI struct {
	devices device.Enumerator
	now     func() time.Time

	mu    sync.Mutex
	conns map[string]Connection
	seq   int
}

// NewMemoryAPI creates an API that dials the devices of e.
func NewMemoryAPI(e device.Enumerator) *MemoryAPI {
	return &MemoryAPI{
		devices: e,
		now:     time.Now,
		conns:   make(map[string]Connection),
	}
}

// Dial implements API.
func (a *MemoryAPI) Dial(ctx context.Context, deviceName, entry string) (Connection, error) {
	if err := ctx.Err(); err != nil {
		return Connection{}, err
	}

	d, err := a.devices.Lookup(ctx, deviceName)
	if err != nil {
		return Connection{}, err
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	for _, c := range a.conns {
		if c.Device.Name == d.Name {
			return Connection{}, fmt.Errorf("%w: %s is connected to %s", ErrDeviceBusy, d.Name, c.Entry)
		}
	}

	a.seq++
	c := Connection{
		ID:       fmt.Sprintf("conn-%d", a.seq),
		Device:   d,
		Entry:    entry,
		DialedAt: a.now(),
	}
	a.conns[c.ID] = c

	return c, nil
}

// HangUp implements API.
func (a *MemoryAPI) HangUp(_ context.Context, id string) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if _, ok := a.conns[id]; !ok {
		return fmt.Errorf("%w: %s", ErrNotConnected, id)
	}
	delete(a.conns, id)

	return nil
}

// Stats implements API.
func (a *MemoryAPI) Stats(_ context.Context, id string) (Stats, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	c, ok := a.conns[id]
	if !ok {
		return Stats{}, fmt.Errorf("%w: %s", ErrNotConnected, id)
	}

	return Stats{Connected: true, Duration: a.now().Sub(c.DialedAt)}, nil
}

// Active returns the number of open connections.
func (a *MemoryAPI) Active() int {
	a.mu.Lock()
	defer a.mu.Unlock()

	return len(a.conns)
}
