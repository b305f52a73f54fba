package datastore

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAddGetDelete(t *testing.T) {
	ds, err := New(filepath.Join(t.TempDir(), "store.json"))
	require.NoError(t, err)
	defer ds.Close()

	_, exists := ds.Get("missing")
	assert.False(t, exists)

	ds.Add("k1", map[string]any{"a": 1})
	v, exists := ds.Get("k1")
	assert.True(t, exists)
	assert.NotNil(t, v)

	ds.Delete("k1")
	_, exists = ds.Get("k1")
	assert.False(t, exists)
}

func TestKeys(t *testing.T) {
	ds, err := New(filepath.Join(t.TempDir(), "store.json"))
	require.NoError(t, err)
	defer ds.Close()

	ds.Add("a", 1)
	ds.Add("b", 2)
	assert.ElementsMatch(t, []string{"a", "b"}, ds.Keys())
}

func TestSaveAndReload(t *testing.T) {
	path := filepath.Join(t.TempDir(), "store.json")

	ds, err := New(path)
	require.NoError(t, err)
	ds.Add("guild", map[string]any{"greet_channel_id": "c1"})
	require.NoError(t, ds.Close())

	// the saved file is well-formed JSON
	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	var onDisk map[string]any
	require.NoError(t, json.Unmarshal(raw, &onDisk))

	reloaded, err := New(path)
	require.NoError(t, err)
	defer reloaded.Close()

	v, exists := reloaded.Get("guild")
	require.True(t, exists)
	m, ok := v.(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "c1", m["greet_channel_id"])
}

func TestCloseIsIdempotent(t *testing.T) {
	ds, err := New(filepath.Join(t.TempDir(), "store.json"))
	require.NoError(t, err)

	require.NoError(t, ds.Close())
	require.NoError(t, ds.Close())
}

func TestUnchangedDataNotRewritten(t *testing.T) {
	path := filepath.Join(t.TempDir(), "store.json")

	ds, err := NewWithConfig(&Config{FilePath: path, BackupCount: 0})
	require.NoError(t, err)
	defer ds.Close()

	ds.Add("k", "v")
	require.NoError(t, ds.SaveToFile())

	first, err := os.Stat(path)
	require.NoError(t, err)

	require.NoError(t, ds.SaveToFile())
	second, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, first.ModTime(), second.ModTime())
}

func TestNoStrayTempFileAfterSave(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "store.json")

	ds, err := NewWithConfig(&Config{FilePath: path, BackupCount: 0})
	require.NoError(t, err)
	defer ds.Close()

	ds.Add("k", "v")
	require.NoError(t, ds.SaveToFile())

	_, err = os.Stat(path + ".tmp")
	assert.True(t, os.IsNotExist(err))
}

func TestBackupRotation(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "store.json")

	ds, err := NewWithConfig(&Config{FilePath: path, BackupCount: 2})
	require.NoError(t, err)
	defer ds.Close()

	// each save with changed data rolls a backup of the previous file
	for i := 0; i < 5; i++ {
		ds.Add("k", i)
		require.NoError(t, ds.SaveToFile())
	}

	matches, err := filepath.Glob(path + ".backup.*")
	require.NoError(t, err)
	assert.LessOrEqual(t, len(matches), 2)
}

func TestNewRejectsEmptyPath(t *testing.T) {
	_, err := NewWithConfig(&Config{FilePath: ""})
	assert.Error(t, err)
}

func TestNewRejectsCorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "store.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0644))

	_, err := New(path)
	assert.Error(t, err)
}
