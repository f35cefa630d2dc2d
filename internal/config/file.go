package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// FileName is the optional YAML config file inside the config directory.
const FileName = "config.yaml"

// File mirrors config.yaml. Every field is optional.
type File struct {
	Tenant             string   `yaml:"tenant,omitempty"`
	ClientID           string   `yaml:"client-id,omitempty"`
	AuthorityHost      string   `yaml:"authority-host,omitempty"`
	Scopes             []string `yaml:"scopes,omitempty"`
	LoginTimeout       string   `yaml:"login-timeout,omitempty"`
	OwnerKeyName       string   `yaml:"owner-key-name,omitempty"`
	HubSuffix          string   `yaml:"hub-suffix,omitempty"`
	RegistryAPIVersion string   `yaml:"registry-api-version,omitempty"`
	SASTokenTTL        string   `yaml:"sas-token-ttl,omitempty"`
	RegistryPageSize   int      `yaml:"registry-page-size,omitempty"`
	RecordFile         string   `yaml:"record-file,omitempty"`
	LogLevel           string   `yaml:"log-level,omitempty"`
}

// LoadFile reads <dir>/config.yaml. A missing file yields an empty File.
func LoadFile(dir string) (*File, error) {
	path := filepath.Join(dir, FileName)
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return &File{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("[config LoadFile] read %s: %w", path, err)
	}

	var f File
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("[config LoadFile] parse %s: %w", path, err)
	}
	return &f, nil
}
