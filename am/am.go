package am

// Config represents the filestore configuration
type Config struct {
	Store  StoreConfig  `mapstructure:"store"`
	Events EventsConfig `mapstructure:"events"`
	Query  QueryConfig  `mapstructure:"query"`
	Log    LogConfig    `mapstructure:"log"`
}

// StoreConfig configures the backing files and how they are loaded
type StoreConfig struct {
	Dir             string `mapstructure:"dir"`               // Root directory, one subdirectory per entity kind
	Format          string `mapstructure:"format"`            // File format; only "yaml" is supported
	Watch           bool   `mapstructure:"watch"`             // Reload kinds whose files change on disk
	WatchDebounceMS int    `mapstructure:"watch_debounce_ms"` // Quiet period before a reload (default: 250)
	LoadConcurrency int    `mapstructure:"load_concurrency"`  // Kinds loaded in parallel (0 = one per kind)
}

// EventsConfig configures event retention
type EventsConfig struct {
	// How often expired events are purged; 0 disables the sweep
	ExpirationCheckSeconds int `mapstructure:"expiration_check_seconds"`
}

// QueryConfig configures query defaults applied by the CLI
type QueryConfig struct {
	DefaultMaxResults *int `mapstructure:"default_max_results"` // nil = unbounded, 0 is invalid (omit instead)
}

// LogConfig configures process logging
type LogConfig struct {
	JSON      bool `mapstructure:"json"`      // Production JSON encoding instead of console
	Verbosity int  `mapstructure:"verbosity"` // Same scale as the -v flag count
}

// Supported backing-file formats
const (
	FormatYAML = "yaml"
)

// File system constants
const (
	DefaultDirPermissions  = 0755 // Standard directory permissions (rwxr-xr-x)
	DefaultFilePermissions = 0644 // Standard file permissions (rw-r--r--)
)
