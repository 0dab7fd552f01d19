package am

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/pelletier/go-toml/v2"

	"github.com/teranos/filestore/errors"
	"github.com/teranos/filestore/logger"
)

// backupCount is the number of rotating backups kept next to a config file
const backupCount = 3

// createBackup creates rotating backups (.back1, .back2, .back3) before modifying config
func createBackup(configPath string) error {
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		return nil // No file to backup
	}

	// Rotate backups: .back3 -> delete, .back2 -> .back3, .back1 -> .back2, current -> .back1
	oldest := backupPath(configPath, backupCount)
	if err := os.Remove(oldest); err != nil && !os.IsNotExist(err) {
		// Log deletion failures (but don't fail config save)
		logger.Warnw("Failed to delete old config backup", logger.FieldFile, oldest, logger.FieldError, err)
	}

	for n := backupCount - 1; n >= 1; n-- {
		from := backupPath(configPath, n)
		if _, err := os.Stat(from); err == nil {
			if err := os.Rename(from, backupPath(configPath, n+1)); err != nil {
				return errors.Wrapf(err, "failed to rotate .back%d to .back%d", n, n+1)
			}
		}
	}

	content, err := os.ReadFile(configPath)
	if err != nil {
		return errors.Wrap(err, "failed to read config for backup")
	}

	if err := os.WriteFile(backupPath(configPath, 1), content, DefaultFilePermissions); err != nil {
		return errors.Wrap(err, "failed to create .back1")
	}

	return nil
}

func backupPath(configPath string, n int) string {
	return configPath + ".back" + strconv.Itoa(n)
}

// loadOrInitializeConfigFile reads a TOML config file into a map, or returns
// an empty map when the file doesn't exist yet
func loadOrInitializeConfigFile(configPath string) (map[string]interface{}, error) {
	if err := os.MkdirAll(filepath.Dir(configPath), DefaultDirPermissions); err != nil {
		return nil, errors.Wrap(err, "failed to create config directory")
	}

	config := make(map[string]interface{})
	data, err := os.ReadFile(configPath)
	if os.IsNotExist(err) {
		return config, nil
	}
	if err != nil {
		return nil, errors.Wrapf(err, "failed to read %s", configPath)
	}
	if err := toml.Unmarshal(data, &config); err != nil {
		return nil, errors.Wrapf(err, "failed to parse %s", configPath)
	}
	return config, nil
}

// saveConfigFile writes config to configPath with backup
func saveConfigFile(config map[string]interface{}, configPath string) error {
	if err := createBackup(configPath); err != nil {
		return errors.Wrap(err, "failed to create backup")
	}

	data, err := toml.Marshal(config)
	if err != nil {
		return errors.Wrap(err, "failed to marshal config")
	}

	// Mark this as our own write to prevent reload loops
	if w := GetGlobalWatcher(); w != nil {
		w.MarkOwnWrite()
	}

	if err := os.WriteFile(configPath, data, DefaultFilePermissions); err != nil {
		return errors.Wrapf(err, "failed to write %s", configPath)
	}

	return nil
}

// UpdateSetting sets a dotted key (e.g. "store.dir") in the TOML file at
// configPath, creating the file and intermediate tables as needed
func UpdateSetting(configPath, key string, value interface{}) error {
	parts := strings.Split(key, ".")
	for _, p := range parts {
		if p == "" {
			return errors.NewInvalidArgumentError("malformed config key %q", key)
		}
	}

	config, err := loadOrInitializeConfigFile(configPath)
	if err != nil {
		return errors.Wrap(err, "failed to load config file")
	}

	table := config
	for _, p := range parts[:len(parts)-1] {
		next, ok := table[p].(map[string]interface{})
		if !ok {
			next = make(map[string]interface{})
			table[p] = next
		}
		table = next
	}
	table[parts[len(parts)-1]] = value

	return saveConfigFile(config, configPath)
}

// MarshalTOML renders cfg as TOML using the same keys the loader reads
func MarshalTOML(cfg *Config) ([]byte, error) {
	doc := map[string]interface{}{
		"store": map[string]interface{}{
			"dir":               cfg.Store.Dir,
			"format":            cfg.Store.Format,
			"watch":             cfg.Store.Watch,
			"watch_debounce_ms": cfg.Store.WatchDebounceMS,
			"load_concurrency":  cfg.Store.LoadConcurrency,
		},
		"events": map[string]interface{}{
			"expiration_check_seconds": cfg.Events.ExpirationCheckSeconds,
		},
		"log": map[string]interface{}{
			"json":      cfg.Log.JSON,
			"verbosity": cfg.Log.Verbosity,
		},
	}
	if n, ok := cfg.GetDefaultMaxResults(); ok {
		doc["query"] = map[string]interface{}{"default_max_results": n}
	}
	data, err := toml.Marshal(doc)
	if err != nil {
		return nil, errors.Wrap(err, "failed to marshal config")
	}
	return data, nil
}
