package am

import (
	"time"

	"github.com/spf13/viper"
)

// Default values
const (
	DefaultStoreDir        = "filestore-data"
	DefaultWatchDebounceMS = 250
	DefaultExpirationCheck = 900
)

// SetDefaults configures default values for all configuration options
func SetDefaults(v *viper.Viper) {
	// Store defaults
	v.SetDefault("store.dir", DefaultStoreDir)
	v.SetDefault("store.format", FormatYAML)
	v.SetDefault("store.watch", false)
	v.SetDefault("store.watch_debounce_ms", DefaultWatchDebounceMS)
	v.SetDefault("store.load_concurrency", 0) // one goroutine per kind

	// Events defaults
	v.SetDefault("events.expiration_check_seconds", DefaultExpirationCheck) // 15 minutes

	// Log defaults
	v.SetDefault("log.json", false)
	v.SetDefault("log.verbosity", 0)
}

// BindEnvVars explicitly binds commonly overridden settings to environment variables
func BindEnvVars(v *viper.Viper) {
	v.BindEnv("store.dir", "FILESTORE_STORE_DIR")
	v.BindEnv("store.watch", "FILESTORE_STORE_WATCH")
	v.BindEnv("log.json", "FILESTORE_LOG_JSON")
	v.BindEnv("log.verbosity", "FILESTORE_LOG_VERBOSITY")
}

// GetStoreDir returns the backing-file root directory
func (c *Config) GetStoreDir() string {
	if c.Store.Dir == "" {
		return DefaultStoreDir // Fallback default
	}
	return c.Store.Dir
}

// GetWatchDebounce returns the watcher quiet period (default: 250ms)
func (c *Config) GetWatchDebounce() time.Duration {
	if c.Store.WatchDebounceMS <= 0 {
		return DefaultWatchDebounceMS * time.Millisecond
	}
	return time.Duration(c.Store.WatchDebounceMS) * time.Millisecond
}

// GetExpirationCheckInterval returns how often expired events are purged.
// Zero means the sweep is disabled.
func (c *Config) GetExpirationCheckInterval() time.Duration {
	return time.Duration(c.Events.ExpirationCheckSeconds) * time.Second
}

// GetDefaultMaxResults returns the page size applied when a query sets none
func (c *Config) GetDefaultMaxResults() (int, bool) {
	if c.Query.DefaultMaxResults == nil {
		return 0, false
	}
	return *c.Query.DefaultMaxResults, true
}
