package am

import (
	"maps"
	"os"
	"slices"
	"strings"

	"github.com/teranos/filestore/errors"
)

// ConfigSource represents where a configuration value came from
type ConfigSource string

const (
	SourceDefault     ConfigSource = "default"
	SourceSystem      ConfigSource = "system"      // /etc/filestore/am.toml
	SourceUser        ConfigSource = "user"        // ~/.filestore/am.toml
	SourceProject     ConfigSource = "project"     // project am.toml
	SourceEnvironment ConfigSource = "environment" // FILESTORE_* env vars
)

// SettingInfo contains metadata about a configuration setting
type SettingInfo struct {
	Key        string       `json:"key"`
	Value      interface{}  `json:"value"`
	Source     ConfigSource `json:"source"`
	SourcePath string       `json:"source_path,omitempty"` // File path or env var name
}

// ConfigIntrospection provides metadata about the active configuration
type ConfigIntrospection struct {
	Settings []SettingInfo `json:"settings"` // All settings with sources
}

// SourceInfo tracks where a configuration value originated
type SourceInfo struct {
	Source ConfigSource // The type of config source (default, system, user, etc.)
	Path   string       // File path; empty for defaults
}

// GetConfigIntrospection returns every effective setting with the source it
// was loaded from
func GetConfigIntrospection() (*ConfigIntrospection, error) {
	if _, err := Load(); err != nil {
		return nil, errors.Wrap(err, "failed to load config for introspection")
	}
	v := GetViper()

	introspection := &ConfigIntrospection{
		Settings: make([]SettingInfo, 0),
	}

	loadMu.Lock()
	sources := ConfigSources
	loadMu.Unlock()

	flattenSettingsWithSources(v.AllSettings(), "", introspection, sources)

	return introspection, nil
}

// flattenSettingsWithSources appends one SettingInfo per leaf of settings,
// in key order. An exported FILESTORE_* variable overrides the file source.
func flattenSettingsWithSources(settings map[string]interface{}, prefix string, introspection *ConfigIntrospection, sourceMap map[string]SourceInfo) {
	for _, name := range slices.Sorted(maps.Keys(settings)) {
		value := settings[name]
		key := name
		if prefix != "" {
			key = prefix + "." + name
		}

		if nested, ok := value.(map[string]interface{}); ok {
			flattenSettingsWithSources(nested, key, introspection, sourceMap)
			continue
		}

		info, ok := sourceMap[key]
		if !ok {
			info = SourceInfo{Source: SourceDefault}
		}
		if env := EnvKey(key); os.Getenv(env) != "" {
			info = SourceInfo{Source: SourceEnvironment, Path: env}
		}

		introspection.Settings = append(introspection.Settings, SettingInfo{
			Key:        key,
			Value:      value,
			Source:     info.Source,
			SourcePath: info.Path,
		})
	}
}

// EnvKey returns the environment variable overriding a dotted config key
func EnvKey(key string) string {
	return EnvPrefix + "_" + strings.ToUpper(strings.ReplaceAll(key, ".", "_"))
}
