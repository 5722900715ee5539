package config

import (
	"os"
	"time"

	"github.com/rs/zerolog/log"
)

const (
	appNameVar  = "APP_NAME"
	dataFileVar = "FITCAMP_DATA"
	tabVar      = "FITCAMP_TAB"
	logLevelVar = "FITCAMP_LOG_LEVEL"
)

type EnvVars struct{}

var _ EnvConfig = EnvVars{}

func (EnvVars) GetAppName() string {
	return GetEnv(appNameVar, "FitCamp")
}

// GetDataFile returns the SQLite file that stands in for the origin's storage.
// Every process pointing at the same file sees the same tab directory.
func (EnvVars) GetDataFile() string {
	return GetEnv(dataFileVar, "./data/fitcamp.db")
}

// GetTabProfile names the private storage partition used by this process.
func (EnvVars) GetTabProfile() string {
	return GetEnv(tabVar, "default")
}

func (EnvVars) GetLogLevel() string {
	return GetEnv(logLevelVar, "info")
}

func (EnvVars) GetEnv() string {
	env := os.Getenv("ENV")
	if env == "" {
		return "DEV"
	}
	return env
}

func GetEnv(envVar, defaultValue string) string {
	value := os.Getenv(envVar)
	if value == "" {
		return defaultValue
	}
	return value
}

// GetDurationEnv parses envVar with time.ParseDuration, falling back to
// defaultValue when it is unset, malformed or not positive.
func GetDurationEnv(envVar string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(envVar)
	if value == "" {
		return defaultValue
	}
	d, err := time.ParseDuration(value)
	if err != nil || d <= 0 {
		log.Warn().Str("var", envVar).Str("value", value).Msg("Ignoring invalid duration")
		return defaultValue
	}
	return d
}
