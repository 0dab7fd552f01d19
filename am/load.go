package am

import (
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/spf13/viper"
	"go.uber.org/multierr"

	"github.com/teranos/filestore/errors"
	"github.com/teranos/filestore/logger"
)

// EnvPrefix is the prefix of environment variables overriding config keys
const EnvPrefix = "FILESTORE"

// SystemConfigPath is the lowest-precedence config file.
const SystemConfigPath = "/etc/filestore/am.toml"

var (
	loadMu        sync.Mutex
	globalConfig  *Config
	viperInstance *viper.Viper
	layerErr      error

	// ConfigSources records where each loaded key came from.
	// Populated by Load; read by GetConfigIntrospection.
	ConfigSources = make(map[string]SourceInfo)
)

// Load returns the merged configuration: defaults, then the system, user
// and project am.toml files, then FILESTORE_* variables. The result is
// cached until Reset. A config file that exists but cannot be read fails
// the load.
func Load() (*Config, error) {
	loadMu.Lock()
	defer loadMu.Unlock()

	if globalConfig != nil {
		return globalConfig, nil
	}

	v, err := layered()
	if err != nil {
		return nil, err
	}
	cfg, err := LoadWithViper(v)
	if err != nil {
		return nil, err
	}
	globalConfig = cfg
	return cfg, nil
}

// GetViper returns the merged Viper instance. Unreadable files are skipped
// with a warning; Load reports them as errors.
func GetViper() *viper.Viper {
	loadMu.Lock()
	defer loadMu.Unlock()

	v, err := layered()
	if err != nil {
		logger.Warnw("Skipped unreadable config files", logger.FieldError, err)
	}
	return v
}

// LoadWithViper unmarshals a prepared Viper instance.
func LoadWithViper(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, errors.Wrap(err, "failed to unmarshal config")
	}
	return &cfg, nil
}

// LoadFromFile reads one file over the defaults, ignoring environment
// variables and every other layer.
func LoadFromFile(configPath string) (*Config, error) {
	v := viper.New()
	SetDefaults(v)

	settings, err := readTOML(configPath)
	if err != nil {
		return nil, err
	}
	if err := v.MergeConfigMap(settings); err != nil {
		return nil, errors.Wrapf(err, "failed to merge %s", configPath)
	}
	cfg, err := LoadWithViper(v)
	return cfg, errors.Wrapf(err, "config from %s", configPath)
}

// Reset drops the cached configuration so the next Load rereads every layer.
func Reset() {
	loadMu.Lock()
	defer loadMu.Unlock()
	globalConfig = nil
	viperInstance = nil
	layerErr = nil
	ConfigSources = make(map[string]SourceInfo)
}

// layered builds (once) the Viper instance with every source merged.
// Callers hold loadMu. The instance is cached even when some files failed,
// so the error is returned again on each call until Reset.
func layered() (*viper.Viper, error) {
	if viperInstance != nil {
		return viperInstance, layerErr
	}

	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	BindEnvVars(v)
	SetDefaults(v)

	sources := make(map[string]SourceInfo)
	markSettingsFromSource(v.AllSettings(), "", SourceDefault, "", sources)

	var errs error
	for _, cf := range configFiles() {
		settings, err := readTOML(cf.path)
		if err != nil {
			if !errors.Is(err, os.ErrNotExist) {
				errs = multierr.Append(errs, err)
			}
			continue
		}
		if err := v.MergeConfigMap(settings); err != nil {
			errs = multierr.Append(errs, errors.Wrapf(err, "failed to merge %s", cf.path))
			continue
		}
		markSettingsFromSource(settings, "", cf.source, cf.path, sources)
	}

	ConfigSources = sources
	viperInstance = v
	layerErr = errs
	return v, errs
}

// readTOML parses one config file into a settings map.
func readTOML(path string) (map[string]interface{}, error) {
	tv := viper.New()
	tv.SetConfigFile(path)
	tv.SetConfigType("toml")
	if err := tv.ReadInConfig(); err != nil {
		if _, statErr := os.Stat(path); os.IsNotExist(statErr) {
			return nil, errors.Wrapf(statErr, "config file %s", path)
		}
		return nil, errors.WithHintf(
			errors.Wrapf(err, "failed to read config file %s", path),
			"fix the TOML syntax or remove %s", path)
	}
	return tv.AllSettings(), nil
}

// UserConfigDir returns ~/.filestore
func UserConfigDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".filestore")
}

// UserConfigPath returns ~/.filestore/am.toml
func UserConfigPath() string {
	if dir := UserConfigDir(); dir != "" {
		return filepath.Join(dir, "am.toml")
	}
	return ""
}

// findProjectConfig returns the nearest am.toml in the working directory or
// one of its parents.
func findProjectConfig() string {
	dir, err := os.Getwd()
	if err != nil {
		return ""
	}
	for {
		candidate := filepath.Join(dir, "am.toml")
		if _, err := os.Stat(candidate); err == nil {
			return candidate
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return ""
		}
		dir = parent
	}
}

type configFile struct {
	path   string
	source ConfigSource
}

// configFiles lists the config layers, lowest precedence first. A project
// file that is the user file (found by walking up from $HOME) counts once.
func configFiles() []configFile {
	files := []configFile{{path: SystemConfigPath, source: SourceSystem}}

	user := UserConfigPath()
	if user != "" {
		files = append(files, configFile{path: user, source: SourceUser})
	}
	if project := findProjectConfig(); project != "" && project != user {
		files = append(files, configFile{path: project, source: SourceProject})
	}
	return files
}

// markSettingsFromSource records source for every leaf key in settings
func markSettingsFromSource(settings map[string]interface{}, prefix string, source ConfigSource, path string, sourceMap map[string]SourceInfo) {
	for key, value := range settings {
		if prefix != "" {
			key = prefix + "." + key
		}
		if nested, ok := value.(map[string]interface{}); ok {
			markSettingsFromSource(nested, key, source, path, sourceMap)
			continue
		}
		sourceMap[key] = SourceInfo{Source: source, Path: path}
	}
}

// Get returns a configuration value using dot notation
func Get(key string) interface{} {
	return GetViper().Get(key)
}
