package hooks

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"outputd/internal/state"
)

type call struct {
	hook string
	arg  string
}

func newRecorder(t *testing.T, hooks ...string) (*Dispatcher, *[]call) {
	t.Helper()

	dir := t.TempDir()
	for _, name := range hooks {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte("#!/bin/sh\n"), 0o755))
	}

	var calls []call
	d := NewDispatcherWithRunner(dir, func(path, arg string) error {
		calls = append(calls, call{hook: filepath.Base(path), arg: arg})
		return nil
	})
	return d, &calls
}

func TestDispatchFiresOnGenuineTransition(t *testing.T) {
	d, calls := newRecorder(t, ProfileChangeHook, PrimaryChangeHook)

	prev := &state.Applied{Profile: "laptop", PrimaryOutput: "eDP-1", AppliedAt: time.Now()}
	next := state.Applied{Profile: "docked", PrimaryOutput: "DP-1", AppliedAt: time.Now()}

	d.Dispatch(prev, next)

	require.Len(t, *calls, 2)
	assert.Equal(t, call{hook: ProfileChangeHook, arg: "docked"}, (*calls)[0])
	assert.Equal(t, call{hook: PrimaryChangeHook, arg: "DP-1"}, (*calls)[1])
}

func TestDispatchSkipsUnchangedFields(t *testing.T) {
	d, calls := newRecorder(t, ProfileChangeHook, PrimaryChangeHook)

	prev := &state.Applied{Profile: "docked", PrimaryOutput: "eDP-1", AppliedAt: time.Now()}
	next := state.Applied{Profile: "docked", PrimaryOutput: "DP-1", AppliedAt: time.Now()}

	d.Dispatch(prev, next)

	require.Len(t, *calls, 1)
	assert.Equal(t, PrimaryChangeHook, (*calls)[0].hook)
}

func TestDispatchReapplySameStateFiresNothing(t *testing.T) {
	d, calls := newRecorder(t, ProfileChangeHook, PrimaryChangeHook)

	prev := &state.Applied{Profile: "docked", PrimaryOutput: "DP-1", AppliedAt: time.Now()}
	next := state.Applied{Profile: "docked", PrimaryOutput: "DP-1", AppliedAt: time.Now()}

	d.Dispatch(prev, next)
	assert.Empty(t, *calls)
}

func TestDispatchFirstEverApplyFiresBothHooks(t *testing.T) {
	d, calls := newRecorder(t, ProfileChangeHook, PrimaryChangeHook)

	d.Dispatch(nil, state.Applied{Profile: "docked", PrimaryOutput: "DP-1", AppliedAt: time.Now()})

	require.Len(t, *calls, 2)
}

func TestDispatchEmptyFieldsNeverFire(t *testing.T) {
	d, calls := newRecorder(t, ProfileChangeHook, PrimaryChangeHook)

	// The default profile has no primary; no primary hook should fire.
	d.Dispatch(nil, state.Applied{Profile: "default", AppliedAt: time.Now()})

	require.Len(t, *calls, 1)
	assert.Equal(t, ProfileChangeHook, (*calls)[0].hook)
}

func TestDispatchMissingHookSkipped(t *testing.T) {
	d, calls := newRecorder(t) // no hook files on disk

	d.Dispatch(nil, state.Applied{Profile: "docked", PrimaryOutput: "DP-1", AppliedAt: time.Now()})
	assert.Empty(t, *calls)
}

func TestDispatchFailingHookDoesNotStopTheOther(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{ProfileChangeHook, PrimaryChangeHook} {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte("#!/bin/sh\n"), 0o755))
	}

	var invoked []string
	d := NewDispatcherWithRunner(dir, func(path, arg string) error {
		invoked = append(invoked, filepath.Base(path))
		return errors.New("exit status 1")
	})

	d.Dispatch(nil, state.Applied{Profile: "docked", PrimaryOutput: "DP-1", AppliedAt: time.Now()})

	assert.Equal(t, []string{ProfileChangeHook, PrimaryChangeHook}, invoked)
}
