package am

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMarkSettingsFromSource(t *testing.T) {
	t.Run("Flat settings", func(t *testing.T) {
		settings := map[string]interface{}{
			"dir":    "data",
			"format": "yaml",
		}

		sourceMap := make(map[string]SourceInfo)
		markSettingsFromSource(settings, "", SourceUser, "/home/user/.filestore/am.toml", sourceMap)

		assert.Len(t, sourceMap, 2)
		assert.Equal(t, SourceUser, sourceMap["dir"].Source)
		assert.Equal(t, "/home/user/.filestore/am.toml", sourceMap["dir"].Path)
	})

	t.Run("Nested settings", func(t *testing.T) {
		settings := map[string]interface{}{
			"store": map[string]interface{}{
				"dir":   "data",
				"watch": true,
			},
			"log": map[string]interface{}{
				"json": true,
			},
		}

		sourceMap := make(map[string]SourceInfo)
		markSettingsFromSource(settings, "", SourceProject, "/project/am.toml", sourceMap)

		assert.Equal(t, SourceProject, sourceMap["store.dir"].Source)
		assert.Equal(t, SourceProject, sourceMap["store.watch"].Source)
		assert.Equal(t, SourceProject, sourceMap["log.json"].Source)
		assert.Equal(t, "/project/am.toml", sourceMap["store.dir"].Path)
	})
}

func TestFlattenSettingsWithSources(t *testing.T) {
	settings := map[string]interface{}{
		"store": map[string]interface{}{
			"dir":    "data",
			"format": "yaml",
		},
	}

	t.Run("Sources assigned and keys sorted", func(t *testing.T) {
		sourceMap := map[string]SourceInfo{
			"store.dir": {Source: SourceUser, Path: "/home/user/.filestore/am.toml"},
		}

		intro := &ConfigIntrospection{}
		flattenSettingsWithSources(settings, "", intro, sourceMap)

		require.Len(t, intro.Settings, 2)
		assert.Equal(t, "store.dir", intro.Settings[0].Key)
		assert.Equal(t, SourceUser, intro.Settings[0].Source)
		assert.Equal(t, "store.format", intro.Settings[1].Key)
		assert.Equal(t, SourceDefault, intro.Settings[1].Source)
		assert.Empty(t, intro.Settings[1].SourcePath)
	})

	t.Run("Environment variable override", func(t *testing.T) {
		t.Setenv("FILESTORE_STORE_DIR", "/env/dir")

		intro := &ConfigIntrospection{}
		flattenSettingsWithSources(settings, "", intro, map[string]SourceInfo{})

		require.Len(t, intro.Settings, 2)
		assert.Equal(t, SourceEnvironment, intro.Settings[0].Source)
		assert.Equal(t, "FILESTORE_STORE_DIR", intro.Settings[0].SourcePath)
	})
}

func TestEnvKey(t *testing.T) {
	assert.Equal(t, "FILESTORE_STORE_WATCH_DEBOUNCE_MS", EnvKey("store.watch_debounce_ms"))
}

// TestIntrospectionConsistency verifies introspection matches loaded config
func TestIntrospectionConsistency(t *testing.T) {
	home := isolate(t)
	writeFile(t, filepath.Join(home, ".filestore", "am.toml"), `
[store]
dir = "introspect"

[log]
verbosity = 2
`)

	cfg, err := Load()
	require.NoError(t, err)

	intro, err := GetConfigIntrospection()
	require.NoError(t, err)

	settings := make(map[string]SettingInfo)
	for _, s := range intro.Settings {
		settings[s.Key] = s
	}

	dir, ok := settings["store.dir"]
	require.True(t, ok)
	assert.Equal(t, cfg.Store.Dir, dir.Value)
	assert.Equal(t, SourceUser, dir.Source)
	assert.Contains(t, dir.SourcePath, "am.toml")

	format, ok := settings["store.format"]
	require.True(t, ok)
	assert.Equal(t, SourceDefault, format.Source)
}
