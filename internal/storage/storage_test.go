package storage

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/pfrederiksen/subwatch/internal/subscription"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/guregu/null.v3"
)

func sampleState() subscription.State {
	return subscription.State{
		"111": {Products: map[string]subscription.Entry{
			"Books": {MaxPrice: null.Float{}},
			"GPUs":  {MaxPrice: null.FloatFrom(499.99)},
		}},
		"222": {Products: map[string]subscription.Entry{
			"Toys": {MaxPrice: null.FloatFrom(0)},
		}},
		"333": {Products: map[string]subscription.Entry{}},
	}
}

func TestFileStore_RoundTrip(t *testing.T) {
	store, err := New(filepath.Join(t.TempDir(), "nested", "data"))
	require.NoError(t, err)

	want := sampleState()
	require.NoError(t, store.Save(want))

	got, err := store.Load()
	require.NoError(t, err)
	assert.Equal(t, want, got)

	assert.False(t, got["111"].Products["Books"].MaxPrice.Valid, "null max price survives")
	assert.True(t, got["222"].Products["Toys"].MaxPrice.Valid, "zero max price is not null")
}

func TestFileStore_LoadMissingFile(t *testing.T) {
	store, err := New(filepath.Join(t.TempDir(), "never-created"))
	require.NoError(t, err)

	state, err := store.Load()
	require.NoError(t, err)
	assert.Empty(t, state)
	assert.NotNil(t, state)
}

func TestFileStore_LoadCorrupt(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"not json", "{this is not json"},
		{"legacy object without version", `{"111": {"products": {}}}`},
		{"future version", `{"version": 99, "subscriptions": {}}`},
		{"wrong type", `{"version": 1, "subscriptions": []}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			require.NoError(t, os.WriteFile(filepath.Join(dir, StateFileName), []byte(tt.content), 0644))

			store, err := New(dir)
			require.NoError(t, err)

			_, err = store.Load()
			require.Error(t, err)
			assert.True(t, errors.Is(err, subscription.ErrCorruptState))
			assert.False(t, errors.Is(err, subscription.ErrIO))
		})
	}
}

func TestFileStore_UnknownFieldsTolerated(t *testing.T) {
	dir := t.TempDir()
	content := `{
  "version": 1,
  "schema_note": "added later",
  "subscriptions": {
    "111": {"products": {"Books": {"max_price": 12.5, "notify_channel": "dm"}}, "muted": false},
    "222": null
  }
}`
	require.NoError(t, os.WriteFile(filepath.Join(dir, StateFileName), []byte(content), 0644))

	store, err := New(dir)
	require.NoError(t, err)

	state, err := store.Load()
	require.NoError(t, err)
	assert.Equal(t, null.FloatFrom(12.5), state["111"].Products["Books"].MaxPrice)
	require.NotNil(t, state["222"])
	assert.NotNil(t, state["222"].Products)
}

func TestFileStore_SaveReplacesAtomically(t *testing.T) {
	dir := t.TempDir()
	store, err := New(dir)
	require.NoError(t, err)

	require.NoError(t, store.Save(sampleState()))
	require.NoError(t, store.Save(subscription.NewState()))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1, "no temp files left behind")
	assert.Equal(t, StateFileName, entries[0].Name())

	state, err := store.Load()
	require.NoError(t, err)
	assert.Empty(t, state)
}

func TestFileStore_SaveFailureIsIOError(t *testing.T) {
	dir := t.TempDir()
	blocker := filepath.Join(dir, "blocker")
	require.NoError(t, os.WriteFile(blocker, []byte("x"), 0644))

	// data directory path runs through a regular file, so it cannot be created
	store, err := New(filepath.Join(blocker, "data"))
	require.NoError(t, err)

	err = store.Save(sampleState())
	require.Error(t, err)
	assert.True(t, errors.Is(err, subscription.ErrIO))
}

func TestNewWithFile(t *testing.T) {
	dir := t.TempDir()

	store, err := NewWithFile(dir, "subs.json")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "subs.json"), store.Path())

	store, err = NewWithFile(dir, "")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, StateFileName), store.Path())

	_, err = NewWithFile(dir, "../escape.json")
	assert.Error(t, err)

	_, err = New("")
	assert.Error(t, err)
}

func TestExpandHome(t *testing.T) {
	home, err := os.UserHomeDir()
	require.NoError(t, err)

	got, err := ExpandHome("~/.local/share/subwatch")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(home, ".local/share/subwatch"), got)

	got, err = ExpandHome("/var/lib/subwatch")
	require.NoError(t, err)
	assert.Equal(t, "/var/lib/subwatch", got)
}
