package registry

import (
	"context"

	"github.com/pkg/errors"
)

// Capabilities are the device capabilities reported by the registry.
type Capabilities struct {
	IoTEdge bool `json:"iotEdge"`
}

// Device is a device identity in an IoT hub registry.
type Device struct {
	DeviceID        string       `json:"deviceId"`
	Status          string       `json:"status,omitempty"`
	ConnectionState string       `json:"connectionState,omitempty"`
	Capabilities    Capabilities `json:"capabilities"`
}

// Registry reads device identities of one hub.
type Registry interface {
	ListDeviceIDs(ctx context.Context) ([]string, error)
	GetDevice(ctx context.Context, deviceID string) (*Device, error)
}

// Factory opens a Registry for a hub connection string.
type Factory func(cs ConnectionString) (Registry, error)

// EdgeDeviceIDs lists the hub's devices and keeps, in registry order, those
// whose capabilities report IoT Edge. Each device is fetched in turn and the
// first failure aborts the listing.
func EdgeDeviceIDs(ctx context.Context, reg Registry) ([]string, error) {
	ids, err := reg.ListDeviceIDs(ctx)
	if err != nil {
		return nil, err
	}

	edge := make([]string, 0, len(ids))
	for _, id := range ids {
		device, err := reg.GetDevice(ctx, id)
		if err != nil {
			return nil, errors.Wrapf(err, "[registry EdgeDeviceIDs] %s", id)
		}
		if device.Capabilities.IoTEdge {
			edge = append(edge, id)
		}
	}
	return edge, nil
}
