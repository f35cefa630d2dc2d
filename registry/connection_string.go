package registry

import (
	"fmt"
	"strings"

	apperrors "github.com/jrsteele09/iotedge-devcomp/internal/errors"
)

const (
	hostNameKey     = "HostName"
	keyNameKey      = "SharedAccessKeyName"
	sharedAccessKey = "SharedAccessKey"
)

// ConnectionString is a service connection string of an IoT hub.
type ConnectionString struct {
	HostName            string
	SharedAccessKeyName string
	SharedAccessKey     string
}

// NewConnectionString assembles the connection string for hub under suffix
// (for example azure-devices.net).
func NewConnectionString(hub, suffix, keyName, key string) ConnectionString {
	return ConnectionString{
		HostName:            hub + "." + suffix,
		SharedAccessKeyName: keyName,
		SharedAccessKey:     key,
	}
}

func (cs ConnectionString) String() string {
	return fmt.Sprintf("%s=%s;%s=%s;%s=%s",
		hostNameKey, cs.HostName,
		keyNameKey, cs.SharedAccessKeyName,
		sharedAccessKey, cs.SharedAccessKey)
}

// Validate reports a missing part as ErrInvalidConnectionString.
func (cs ConnectionString) Validate() error {
	switch {
	case cs.HostName == "":
		return apperrors.Wrapf(apperrors.ErrInvalidConnectionString, "missing %s", hostNameKey)
	case cs.SharedAccessKeyName == "":
		return apperrors.Wrapf(apperrors.ErrInvalidConnectionString, "missing %s", keyNameKey)
	case cs.SharedAccessKey == "":
		return apperrors.Wrapf(apperrors.ErrInvalidConnectionString, "missing %s", sharedAccessKey)
	}
	return nil
}

// ParseConnectionString parses "HostName=...;SharedAccessKeyName=...;SharedAccessKey=...".
// Keys are case sensitive; unknown keys are ignored. Values may contain '='.
func ParseConnectionString(s string) (ConnectionString, error) {
	var cs ConnectionString
	for _, part := range strings.Split(s, ";") {
		if strings.TrimSpace(part) == "" {
			continue
		}
		key, value, ok := strings.Cut(part, "=")
		if !ok {
			return ConnectionString{}, apperrors.Wrapf(apperrors.ErrInvalidConnectionString, "malformed segment %q", key)
		}
		switch strings.TrimSpace(key) {
		case hostNameKey:
			cs.HostName = value
		case keyNameKey:
			cs.SharedAccessKeyName = value
		case sharedAccessKey:
			cs.SharedAccessKey = value
		}
	}
	if err := cs.Validate(); err != nil {
		return ConnectionString{}, err
	}
	return cs, nil
}
