package config

import "time"

type Config interface {
	EnvConfig
	IdentityConfig
	ResourceConfig
	RegistryConfig
	StoreConfig
}

type EnvConfig interface {
	GetAppName() string
	GetEnv() string
	GetLogLevel() string
}

type IdentityConfig interface {
	GetTenant() string
	GetClientID() string
	GetAuthorityHost() string
	GetScopes() []string
	GetLoginTimeout() time.Duration
}

type ResourceConfig interface {
	GetIoTHubResourceType() string
}

type RegistryConfig interface {
	GetOwnerKeyName() string
	GetHubSuffix() string
	GetRegistryAPIVersion() string
	GetSASTokenTTL() time.Duration
	GetRegistryPageSize() int
}

type StoreConfig interface {
	GetConfigDir() string
	GetRecordFile() string
}

// Overrides carries values set on the command line. Empty fields fall through
// to the environment, then the config file, then the built-in defaults.
type Overrides struct {
	ConfigDir string
	Tenant    string
	ClientID  string
	LogLevel  string
}

type mainConfig struct {
	EnvVars
	Identity
	Resources
	Registry
	Store
}

// New resolves the configuration. The optional config.yaml is read from the
// resolved config directory.
func New(overrides Overrides) (Config, error) {
	store := Store{overrides: overrides}
	file, err := LoadFile(store.GetConfigDir())
	if err != nil {
		return nil, err
	}
	store.file = file

	return mainConfig{
		EnvVars:   EnvVars{overrides: overrides, file: file},
		Identity:  Identity{overrides: overrides, file: file},
		Resources: Resources{},
		Registry:  Registry{file: file},
		Store:     store,
	}, nil
}

// first returns the first non-empty value.
func first(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
