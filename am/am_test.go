package am

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/teranos/filestore/errors"
)

// isolate points HOME and the working directory at a fresh temp dir and
// resets the cached config around the test
func isolate(t *testing.T) string {
	t.Helper()
	Reset()
	t.Cleanup(Reset)

	dir := t.TempDir()
	t.Setenv("HOME", dir)
	t.Chdir(dir)
	return dir
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), DefaultDirPermissions))
	require.NoError(t, os.WriteFile(path, []byte(content), DefaultFilePermissions))
}

func TestLoad_Defaults(t *testing.T) {
	// Isolated viper instance without user/system config
	v := viper.New()
	SetDefaults(v)

	cfg, err := LoadWithViper(v)
	require.NoError(t, err)

	assert.Equal(t, DefaultStoreDir, cfg.Store.Dir)
	assert.Equal(t, FormatYAML, cfg.Store.Format)
	assert.False(t, cfg.Store.Watch)
	assert.Equal(t, DefaultWatchDebounceMS, cfg.Store.WatchDebounceMS)
	assert.Equal(t, DefaultExpirationCheck, cfg.Events.ExpirationCheckSeconds)
	assert.Nil(t, cfg.Query.DefaultMaxResults)
	assert.NoError(t, cfg.Validate())
}

func TestLoadFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "am.toml")
	writeFile(t, path, `
[store]
dir = "/var/lib/filestore"
watch = true

[query]
default_max_results = 50
`)

	cfg, err := LoadFromFile(path)
	require.NoError(t, err)

	assert.Equal(t, "/var/lib/filestore", cfg.Store.Dir)
	assert.True(t, cfg.Store.Watch)
	n, ok := cfg.GetDefaultMaxResults()
	require.True(t, ok)
	assert.Equal(t, 50, n)
	// Unset keys keep their defaults
	assert.Equal(t, FormatYAML, cfg.Store.Format)
}

func TestLoadFromFile_Missing(t *testing.T) {
	_, err := LoadFromFile(filepath.Join(t.TempDir(), "absent.toml"))
	assert.Error(t, err)
}

func TestLoad_Precedence(t *testing.T) {
	home := isolate(t)

	writeFile(t, filepath.Join(home, ".filestore", "am.toml"), `
[store]
dir = "user-dir"
load_concurrency = 2
`)
	project := filepath.Join(home, "work", "project")
	writeFile(t, filepath.Join(project, "am.toml"), `
[store]
dir = "project-dir"
`)
	t.Chdir(filepath.Join(project))

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "project-dir", cfg.Store.Dir, "project config wins over user config")
	assert.Equal(t, 2, cfg.Store.LoadConcurrency, "user value survives when project omits it")

	assert.Equal(t, SourceProject, ConfigSources["store.dir"].Source)
	assert.Equal(t, SourceUser, ConfigSources["store.load_concurrency"].Source)
	assert.Equal(t, SourceDefault, ConfigSources["store.format"].Source)
}

func TestLoad_EnvOverridesFiles(t *testing.T) {
	home := isolate(t)
	writeFile(t, filepath.Join(home, ".filestore", "am.toml"), `
[store]
dir = "from-file"
`)
	t.Setenv("FILESTORE_STORE_DIR", "from-env")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "from-env", cfg.Store.Dir)
}

func TestLoad_UnreadableFileFails(t *testing.T) {
	home := isolate(t)
	path := filepath.Join(home, ".filestore", "am.toml")
	writeFile(t, path, "[store\ndir = ")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), path)
	assert.NotEmpty(t, errors.GetAllHints(err))

	// introspection still sees the defaults
	assert.Equal(t, DefaultStoreDir, GetViper().GetString("store.dir"))

	writeFile(t, path, "[store]\ndir = \"fixed\"\n")
	Reset()
	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "fixed", cfg.Store.Dir)
}

func TestLoad_Cached(t *testing.T) {
	isolate(t)

	first, err := Load()
	require.NoError(t, err)
	second, err := Load()
	require.NoError(t, err)
	assert.Same(t, first, second)

	Reset()
	third, err := Load()
	require.NoError(t, err)
	assert.NotSame(t, first, third)
}

func TestValidate(t *testing.T) {
	intPtr := func(i int) *int { return &i }

	tests := []struct {
		name    string
		config  Config
		wantErr bool
	}{
		{name: "zero config is valid", config: Config{}},
		{name: "yaml format", config: Config{Store: StoreConfig{Format: "yaml"}}},
		{name: "unknown format", config: Config{Store: StoreConfig{Format: "xml"}}, wantErr: true},
		{name: "negative debounce", config: Config{Store: StoreConfig{WatchDebounceMS: -1}}, wantErr: true},
		{name: "zero load concurrency means one per kind", config: Config{Store: StoreConfig{LoadConcurrency: 0}}},
		{name: "negative load concurrency", config: Config{Store: StoreConfig{LoadConcurrency: -2}}, wantErr: true},
		{name: "zero expiration check disables sweep", config: Config{Events: EventsConfig{ExpirationCheckSeconds: 0}}},
		{name: "negative expiration check", config: Config{Events: EventsConfig{ExpirationCheckSeconds: -5}}, wantErr: true},
		{name: "positive default max results", config: Config{Query: QueryConfig{DefaultMaxResults: intPtr(10)}}},
		{name: "zero default max results", config: Config{Query: QueryConfig{DefaultMaxResults: intPtr(0)}}, wantErr: true},
		{name: "negative verbosity", config: Config{Log: LogConfig{Verbosity: -1}}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.config.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestConfigAccessors(t *testing.T) {
	var cfg Config
	assert.Equal(t, DefaultStoreDir, cfg.GetStoreDir())
	assert.Equal(t, DefaultWatchDebounceMS*time.Millisecond, cfg.GetWatchDebounce())
	assert.Zero(t, cfg.GetExpirationCheckInterval())
	_, ok := cfg.GetDefaultMaxResults()
	assert.False(t, ok)

	cfg.Store.WatchDebounceMS = 40
	cfg.Events.ExpirationCheckSeconds = 60
	assert.Equal(t, 40*time.Millisecond, cfg.GetWatchDebounce())
	assert.Equal(t, time.Minute, cfg.GetExpirationCheckInterval())
}
