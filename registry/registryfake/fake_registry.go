package registryfake

import (
	"context"
	"sync"

	apperrors "github.com/jrsteele09/iotedge-devcomp/internal/errors"
	"github.com/jrsteele09/iotedge-devcomp/registry"
)

var _ registry.Registry = (*FakeRegistry)(nil)

// FakeRegistry holds devices in registry order and remembers the connection
// strings it was opened with.
type FakeRegistry struct {
	devices []registry.Device
	opened  []registry.ConnectionString
	gets    int
	lock    sync.Mutex
}

func NewFakeRegistry(devices ...registry.Device) *FakeRegistry {
	return &FakeRegistry{devices: devices}
}

// Factory returns a registry.Factory that records cs and yields fr.
func (fr *FakeRegistry) Factory() registry.Factory {
	return func(cs registry.ConnectionString) (registry.Registry, error) {
		if err := cs.Validate(); err != nil {
			return nil, err
		}
		fr.lock.Lock()
		defer fr.lock.Unlock()
		fr.opened = append(fr.opened, cs)
		return fr, nil
	}
}

// Opened returns every connection string passed to the factory.
func (fr *FakeRegistry) Opened() []registry.ConnectionString {
	fr.lock.Lock()
	defer fr.lock.Unlock()
	return append([]registry.ConnectionString(nil), fr.opened...)
}

// Gets reports how many GetDevice calls were made.
func (fr *FakeRegistry) Gets() int {
	fr.lock.Lock()
	defer fr.lock.Unlock()
	return fr.gets
}

func (fr *FakeRegistry) ListDeviceIDs(_ context.Context) ([]string, error) {
	fr.lock.Lock()
	defer fr.lock.Unlock()
	ids := make([]string, 0, len(fr.devices))
	for _, d := range fr.devices {
		ids = append(ids, d.DeviceID)
	}
	return ids, nil
}

func (fr *FakeRegistry) GetDevice(_ context.Context, deviceID string) (*registry.Device, error) {
	fr.lock.Lock()
	defer fr.lock.Unlock()
	fr.gets++
	for _, d := range fr.devices {
		if d.DeviceID == deviceID {
			device := d
			return &device, nil
		}
	}
	return nil, apperrors.Wrapf(apperrors.ErrNotFound, "device %s", deviceID)
}
