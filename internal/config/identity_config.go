package config

import (
	"os"
	"strings"
	"time"
)

const (
	tenantEnvVar        = "DEVCOMP_TENANT"
	clientIDEnvVar      = "DEVCOMP_CLIENT_ID"
	authorityHostEnvVar = "DEVCOMP_AUTHORITY_HOST"
	scopesEnvVar        = "DEVCOMP_SCOPES"
	loginTimeoutEnvVar  = "DEVCOMP_LOGIN_TIMEOUT"

	// Public client id of the Azure CLI, which is pre-authorized for ARM.
	defaultClientID = "04b07795-8ddb-461a-bbee-02f9e1bf7b46"
)

type Identity struct {
	overrides Overrides
	file      *File
}

var _ IdentityConfig = Identity{}

func (i Identity) GetTenant() string {
	return first(i.overrides.Tenant, os.Getenv(tenantEnvVar), i.file.Tenant, "organizations")
}

func (i Identity) GetClientID() string {
	return first(i.overrides.ClientID, os.Getenv(clientIDEnvVar), i.file.ClientID, defaultClientID)
}

func (i Identity) GetAuthorityHost() string {
	host := first(os.Getenv(authorityHostEnvVar), i.file.AuthorityHost, "https://login.microsoftonline.com")
	return strings.TrimRight(host, "/")
}

// GetScopes returns the scopes requested at login. offline_access is what
// makes the saved record resumable.
func (i Identity) GetScopes() []string {
	if v := os.Getenv(scopesEnvVar); v != "" {
		return strings.Fields(v)
	}
	if len(i.file.Scopes) > 0 {
		return i.file.Scopes
	}
	return []string{"https://management.azure.com/.default", "openid", "profile", "offline_access"}
}

// GetLoginTimeout caps the interactive login. Zero means the provider's own
// expiry is used.
func (i Identity) GetLoginTimeout() time.Duration {
	return durationOr(first(os.Getenv(loginTimeoutEnvVar), i.file.LoginTimeout), 0)
}

func durationOr(value string, defaultValue time.Duration) time.Duration {
	if value == "" {
		return defaultValue
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return defaultValue
	}
	return d
}
