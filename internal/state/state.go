// Package state persists the last successfully applied profile across
// process invocations, so hook dispatch can tell a genuine transition
// from a re-apply of the same layout.
package state

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"
)

const (
	stateDirName  = "outputd"
	stateFileName = "applied.json"
)

// Applied is the last-known-good record: which profile was applied and
// which output ended up primary. It is only ever written immediately
// after a successful apply.
type Applied struct {
	Profile       string    `json:"profile_name"`
	PrimaryOutput string    `json:"primary_output"`
	AppliedAt     time.Time `json:"applied_at"`
}

type Tracker struct {
	path string
}

func NewTracker(path string) *Tracker {
	return &Tracker{path: path}
}

// DefaultPath resolves the state file location under XDG_STATE_HOME,
// falling back to ~/.local/state.
func DefaultPath() (string, error) {
	dir := os.Getenv("XDG_STATE_HOME")
	if dir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("getting user home directory: %w", err)
		}
		dir = filepath.Join(home, ".local", "state")
	}

	return filepath.Join(dir, stateDirName, stateFileName), nil
}

// Load returns the persisted record, or nil if none exists. A corrupt
// file is treated the same as an absent one: the caller does a fresh
// apply and the next Store overwrites the damage.
func (t *Tracker) Load() *Applied {
	data, err := os.ReadFile(t.path)
	if err != nil {
		return nil
	}

	var a Applied
	if err := json.Unmarshal(data, &a); err != nil {
		slog.Warn("applied state file unreadable; treating as absent", "path", t.path, "error", err)
		return nil
	}

	return &a
}

// Store atomically replaces the persisted record. The new content is
// written to a temp file in the same directory and renamed over the old
// one, so a crash mid-write never leaves a corrupt record behind.
func (t *Tracker) Store(a Applied) error {
	dir := filepath.Dir(t.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating state directory: %w", err)
	}

	data, err := json.MarshalIndent(a, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling json: %w", err)
	}

	tmp, err := os.CreateTemp(dir, stateFileName+".*")
	if err != nil {
		return fmt.Errorf("creating temp state file: %w", err)
	}

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("writing temp state file: %w", err)
	}

	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("closing temp state file: %w", err)
	}

	if err := os.Rename(tmp.Name(), t.path); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("replacing state file: %w", err)
	}

	return nil
}
