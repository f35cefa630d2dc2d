package config

import (
	"os"
	"path/filepath"
)

const (
	configDirEnvVar  = "DEVCOMP_CONFIG_DIR"
	recordFileEnvVar = "DEVCOMP_RECORD_FILE"

	// AppDirName is the per-user application directory name.
	AppDirName        = "iotedge-devcomp"
	DefaultRecordFile = "record.json"
)

type Store struct {
	overrides Overrides
	file      *File
}

var _ StoreConfig = Store{}

// GetConfigDir returns the per-user configuration directory. The config file
// itself is read from here, so only flags and the environment apply.
func (s Store) GetConfigDir() string {
	return first(s.overrides.ConfigDir, os.Getenv(configDirEnvVar), DefaultConfigDir())
}

func (s Store) GetRecordFile() string {
	var fromFile string
	if s.file != nil {
		fromFile = s.file.RecordFile
	}
	return first(os.Getenv(recordFileEnvVar), fromFile, DefaultRecordFile)
}

// DefaultConfigDir is <user config dir>/iotedge-devcomp, or a dot directory in
// the working directory when no user config dir can be determined.
func DefaultConfigDir() string {
	base, err := os.UserConfigDir()
	if err != nil {
		return "." + AppDirName
	}
	return filepath.Join(base, AppDirName)
}
