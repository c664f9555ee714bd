// Package device enumerates the devices a connection can be dialed on.
package device

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/xraph/ioc/internal/config"
)

// Device is a dial-capable device.
type Device struct {
	Name string
	Type string
}

// String returns name:type.
func (d Device) String() string {
	return d.Name + ":" + d.Type
}

// Enumerator lists the devices available on this machine.
type Enumerator interface {
	Devices(ctx context.Context) ([]Device, error)
	Lookup(ctx context.Context, name string) (Device, error)
}

// ErrUnknownDevice is returned by Lookup for names that are not enumerated.
var ErrUnknownDevice = errors.New("unknown device")

// StaticEnumerator serves a fixed device list.
type StaticEnumerator struct {
	devices []Device
}

// NewStaticEnumerator builds the device list from cfg.Devices. Entries
// without a type default to "modem".
func NewStaticEnumerator(cfg *config.Config) (*StaticEnumerator, error) {
	e := &StaticEnumerator{}
	seen := make(map[string]bool, len(cfg.Devices))

	for _, entry := range cfg.Devices {
		name, typ, _ := strings.Cut(entry, ":")
		if name == "" {
			return nil, fmt.Errorf("invalid device entry %q", entry)
		}
		if typ == "" {
			typ = "modem"
		}
		if seen[name] {
			return nil, fmt.Errorf("duplicate device %q", name)
		}

		seen[name] = true
		e.devices = append(e.devices, Device{Name: name, Type: typ})
	}

	return e, nil
}

// Devices implements Enumerator.
func (e *StaticEnumerator) Devices(context.Context) ([]Device, error) {
	out := make([]Device, len(e.devices))
	copy(out, e.devices)
	return out, nil
}

// Lookup implements Enumerator.
func (e *StaticEnumerator) Lookup(_ context.Context, name string) (Device, error) {
	for _, d := range e.devices {
		if d.Name == name {
			return d, nil
		}
	}
	return Device{}, fmt.Errorf("%w: %s", ErrUnknownDevice, name)
}
