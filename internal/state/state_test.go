package state

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStoreLoadRoundtrip(t *testing.T) {
	tracker := NewTracker(filepath.Join(t.TempDir(), "applied.json"))

	applied := Applied{
		Profile:       "docked",
		PrimaryOutput: "DP-1",
		AppliedAt:     time.Date(2026, 3, 14, 9, 30, 0, 0, time.UTC),
	}
	require.NoError(t, tracker.Store(applied))

	got := tracker.Load()
	require.NotNil(t, got)
	assert.Equal(t, applied, *got)
}

func TestLoadMissingFile(t *testing.T) {
	tracker := NewTracker(filepath.Join(t.TempDir(), "applied.json"))
	assert.Nil(t, tracker.Load())
}

func TestLoadCorruptFileTreatedAsAbsent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "applied.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o644))

	assert.Nil(t, NewTracker(path).Load())
}

func TestStoreCreatesDirectoryAndOverwrites(t *testing.T) {
	path := filepath.Join(t.TempDir(), "outputd", "applied.json")
	tracker := NewTracker(path)

	require.NoError(t, tracker.Store(Applied{Profile: "laptop", AppliedAt: time.Now()}))
	require.NoError(t, tracker.Store(Applied{Profile: "docked", PrimaryOutput: "DP-1", AppliedAt: time.Now()}))

	got := tracker.Load()
	require.NotNil(t, got)
	assert.Equal(t, "docked", got.Profile)
	assert.Equal(t, "DP-1", got.PrimaryOutput)

	// The atomic rename must not leave temp files behind.
	entries, err := os.ReadDir(filepath.Dir(path))
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "applied.json", entries[0].Name())
}
