package config

import (
	"os"
	"path/filepath"
)

const (
	appNameVar   = "APP_NAME"
	appURLVar    = "APP_URL"
	cachePathVar = "CACHE_PATH"
)

type EnvVars struct{}

var _ EnvConfig = EnvVars{}

func (EnvVars) GetAppName() string {
	return GetEnv(appNameVar, "Catalog Client")
}

// GetAppURL returns the application's own origin. Login messages from any
// other origin are ignored, and the OAuth redirect URI is derived from it.
func (EnvVars) GetAppURL() string {
	return GetEnv(appURLVar, "http://localhost:8080")
}

func (EnvVars) GetCachePath() string {
	return GetEnv(cachePathVar, filepath.Join(".", "data", "catalog.db"))
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
