package am

import "github.com/teranos/filestore/errors"

// Validate checks that the configuration is valid
func (c *Config) Validate() error {
	// Store dir is optional - empty falls back to DefaultStoreDir

	// Only one format is implemented; empty means the default
	if c.Store.Format != "" && c.Store.Format != FormatYAML {
		return errors.WithHint(
			errors.Newf("store.format %q is not supported", c.Store.Format),
			"use store.format = \"yaml\"")
	}

	// Debounce: 0 = default, negative = invalid
	if c.Store.WatchDebounceMS < 0 {
		return errors.Newf("store.watch_debounce_ms must be >= 0, got %d", c.Store.WatchDebounceMS)
	}

	// Load concurrency: 0 = one per kind, negative = invalid
	if c.Store.LoadConcurrency < 0 {
		return errors.Newf("store.load_concurrency must be >= 0, got %d", c.Store.LoadConcurrency)
	}

	// Expiration sweep: 0 = disabled, negative = invalid
	if c.Events.ExpirationCheckSeconds < 0 {
		return errors.Newf("events.expiration_check_seconds must be >= 0, got %d", c.Events.ExpirationCheckSeconds)
	}

	// Default page size: nil = unbounded, anything set must be positive
	if c.Query.DefaultMaxResults != nil && *c.Query.DefaultMaxResults <= 0 {
		return errors.Newf("query.default_max_results must be > 0, got %d (omit for unbounded)", *c.Query.DefaultMaxResults)
	}

	if c.Log.Verbosity < 0 {
		return errors.Newf("log.verbosity must be >= 0, got %d", c.Log.Verbosity)
	}

	return nil
}
