package config

import (
	"os"
)

const (
	appNameVar  = "DEVCOMP_APP_NAME"
	envVar      = "DEVCOMP_ENV"
	logLevelVar = "DEVCOMP_LOG_LEVEL"
)

type EnvVars struct {
	overrides Overrides
	file      *File
}

var _ EnvConfig = EnvVars{}

func (EnvVars) GetAppName() string {
	return GetEnv(appNameVar, "IoT Edge DevComp")
}

func (EnvVars) GetEnv() string {
	return GetEnv(envVar, "PROD")
}

func (e EnvVars) GetLogLevel() string {
	return first(e.overrides.LogLevel, os.Getenv(logLevelVar), e.file.LogLevel, "info")
}

func GetEnv(envVar, defaultValue string) string {
	value := os.Getenv(envVar)
	if value == "" {
		return defaultValue
	}
	return value
}
