package navigator

import (
	"github.com/jrsteele09/iotedge-devcomp/cloud"
	apperrors "github.com/jrsteele09/iotedge-devcomp/internal/errors"
	"github.com/jrsteele09/iotedge-devcomp/registry"
)

// ResolveConnectionString picks the key named exactly keyName from keys and
// builds the hub's service connection string from its primary key. There is
// no fallback to another key.
func ResolveConnectionString(keys []cloud.SharedAccessKey, hub, suffix, keyName string) (registry.ConnectionString, error) {
	for _, k := range keys {
		if k.Name == keyName {
			return registry.NewConnectionString(hub, suffix, k.Name, k.Primary), nil
		}
	}
	return registry.ConnectionString{}, apperrors.Wrapf(apperrors.ErrOwnerKeyMissing, "hub %s has no %q key", hub, keyName)
}
