package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfigFile(t *testing.T, path string, sections map[string]map[string]any) {
	t.Helper()
	data, err := json.MarshalIndent(map[string]any{"version": "1", "sections": sections}, "", "  ")
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(path, data, 0644))
}

func TestNewFileStore(t *testing.T) {
	t.Run("custom path", func(t *testing.T) {
		configPath := filepath.Join(t.TempDir(), "config.json")

		store, err := NewFileStore(configPath)
		require.NoError(t, err)
		assert.Equal(t, configPath, store.Path())
		assert.False(t, store.IsModified())
	})

	t.Run("default path", func(t *testing.T) {
		t.Setenv("HOME", t.TempDir())

		store, err := NewFileStore("")
		require.NoError(t, err)

		expected, err := DefaultPath()
		require.NoError(t, err)
		assert.Equal(t, expected, store.Path())
		assert.Equal(t, ".titlepanel", filepath.Base(filepath.Dir(store.Path())))
	})

	t.Run("existing file", func(t *testing.T) {
		configPath := filepath.Join(t.TempDir(), "config.json")
		writeConfigFile(t, configPath, map[string]map[string]any{
			"backend": {"base_url": "http://127.0.0.1:9000"},
		})

		store, err := NewFileStore(configPath)
		require.NoError(t, err)

		section, err := store.GetSection("backend")
		require.NoError(t, err)
		assert.Equal(t, "http://127.0.0.1:9000", section["base_url"])
	})

	t.Run("invalid file", func(t *testing.T) {
		configPath := filepath.Join(t.TempDir(), "config.json")
		require.NoError(t, os.WriteFile(configPath, []byte("{invalid json}"), 0644))

		_, err := NewFileStore(configPath)
		assert.Error(t, err)
	})
}

func TestFileStore_Load(t *testing.T) {
	t.Run("missing file is empty", func(t *testing.T) {
		store := &FileStore{path: filepath.Join(t.TempDir(), "nonexistent.json")}
		require.NoError(t, store.Load())

		all, err := store.GetAll()
		require.NoError(t, err)
		assert.Empty(t, all)
	})

	t.Run("discards unsaved changes", func(t *testing.T) {
		configPath := filepath.Join(t.TempDir(), "config.json")
		writeConfigFile(t, configPath, map[string]map[string]any{
			"tracker": {"settle_delay": "1s"},
		})

		store, err := NewFileStore(configPath)
		require.NoError(t, err)
		require.NoError(t, store.SetSection("tracker", map[string]any{"settle_delay": "5s"}))
		require.NoError(t, store.Load())

		section, _ := store.GetSection("tracker")
		assert.Equal(t, "1s", section["settle_delay"])
		assert.False(t, store.IsModified())
	})
}

func TestFileStore_Save(t *testing.T) {
	t.Run("writes versioned file", func(t *testing.T) {
		configPath := filepath.Join(t.TempDir(), "config.json")
		store, err := NewFileStore(configPath)
		require.NoError(t, err)

		require.NoError(t, store.SetSection("backend", map[string]any{"plugin": "titlepanel"}))
		assert.True(t, store.IsModified())
		require.NoError(t, store.Save())
		assert.False(t, store.IsModified())

		data, err := os.ReadFile(configPath)
		require.NoError(t, err)

		var file fileFormat
		require.NoError(t, json.Unmarshal(data, &file))
		assert.Equal(t, fileVersion, file.Version)
		assert.Equal(t, "titlepanel", file.Sections["backend"]["plugin"])

		_, err = os.Stat(configPath + ".tmp")
		assert.True(t, os.IsNotExist(err))
	})

	t.Run("creates directories", func(t *testing.T) {
		configPath := filepath.Join(t.TempDir(), "nested", "dir", "config.json")
		store, err := NewFileStore(configPath)
		require.NoError(t, err)

		require.NoError(t, store.SetSection("test", map[string]any{"key": "value"}))
		require.NoError(t, store.Save())

		_, err = os.Stat(configPath)
		assert.NoError(t, err)
	})

	t.Run("round trips through a new store", func(t *testing.T) {
		configPath := filepath.Join(t.TempDir(), "config.json")
		store, err := NewFileStore(configPath)
		require.NoError(t, err)
		require.NoError(t, store.SetSection("update", map[string]any{"enabled": false}))
		require.NoError(t, store.Save())

		reopened, err := NewFileStore(configPath)
		require.NoError(t, err)
		section, _ := reopened.GetSection("update")
		assert.Equal(t, false, section["enabled"])
	})
}

func TestFileStore_Copies(t *testing.T) {
	store := &FileStore{data: make(map[string]map[string]any)}

	input := map[string]any{"key": "value"}
	require.NoError(t, store.SetSection("test", input))
	input["key"] = "changed"

	section, _ := store.GetSection("test")
	assert.Equal(t, "value", section["key"])

	section["key"] = "changed"
	again, _ := store.GetSection("test")
	assert.Equal(t, "value", again["key"])

	all := map[string]map[string]any{"a": {"k": 1}, "b": {"k": 2}}
	require.NoError(t, store.SetAll(all))
	all["a"]["k"] = 99

	got, err := store.GetAll()
	require.NoError(t, err)
	assert.Len(t, got, 2)
	assert.Equal(t, 1, got["a"]["k"])

	got["b"]["k"] = 99
	b, _ := store.GetSection("b")
	assert.Equal(t, 2, b["k"])
}
