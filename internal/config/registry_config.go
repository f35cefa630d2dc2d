package config

import (
	"os"
	"strconv"
	"time"
)

const (
	ownerKeyNameEnvVar = "DEVCOMP_OWNER_KEY_NAME"
	hubSuffixEnvVar    = "DEVCOMP_HUB_SUFFIX"
	apiVersionEnvVar   = "DEVCOMP_REGISTRY_API_VERSION"
	sasTTLEnvVar       = "DEVCOMP_SAS_TTL"
	pageSizeEnvVar     = "DEVCOMP_REGISTRY_PAGE_SIZE"
)

type Resources struct{}

var _ ResourceConfig = Resources{}

func (Resources) GetIoTHubResourceType() string {
	return "Microsoft.Devices/IotHubs"
}

type Registry struct {
	file *File
}

var _ RegistryConfig = Registry{}

func (r Registry) GetOwnerKeyName() string {
	return first(os.Getenv(ownerKeyNameEnvVar), r.file.OwnerKeyName, "iothubowner")
}

func (r Registry) GetHubSuffix() string {
	return first(os.Getenv(hubSuffixEnvVar), r.file.HubSuffix, "azure-devices.net")
}

func (r Registry) GetRegistryAPIVersion() string {
	return first(os.Getenv(apiVersionEnvVar), r.file.RegistryAPIVersion, "2021-04-12")
}

func (r Registry) GetSASTokenTTL() time.Duration {
	return durationOr(first(os.Getenv(sasTTLEnvVar), r.file.SASTokenTTL), time.Hour)
}

func (r Registry) GetRegistryPageSize() int {
	if v := os.Getenv(pageSizeEnvVar); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			return n
		}
	}
	if r.file.RegistryPageSize > 0 {
		return r.file.RegistryPageSize
	}
	return 1000
}
