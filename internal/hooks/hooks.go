// Package hooks invokes the per-machine hook executables on genuine
// profile or primary-output transitions. Hooks are optional shell-level
// customization; a missing hook is not an error and a failing one is
// only logged, since the display itself was already reconfigured.
package hooks

import (
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"

	"outputd/internal/state"
)

const (
	ProfileChangeHook = "on-output-profile-change"
	PrimaryChangeHook = "on-primary-output-change"
)

// Runner executes one hook with a single positional argument. It exists
// so tests can record invocations without spawning processes.
type Runner func(path, arg string) error

type Dispatcher struct {
	dir string
	run Runner
}

func NewDispatcher(dir string) *Dispatcher {
	return &Dispatcher{
		dir: dir,
		run: execHook,
	}
}

// NewDispatcherWithRunner is used by tests to substitute the exec call.
func NewDispatcherWithRunner(dir string, run Runner) *Dispatcher {
	return &Dispatcher{dir: dir, run: run}
}

// Dispatch compares the previously persisted record against the newly
// applied one and fires each hook at most once. With no previous record
// every non-empty field counts as a transition: a fresh session still
// wants its wallpaper and audio wired up.
func (d *Dispatcher) Dispatch(prev *state.Applied, next state.Applied) {
	if next.Profile != "" && (prev == nil || prev.Profile != next.Profile) {
		d.invoke(ProfileChangeHook, next.Profile)
	}

	if next.PrimaryOutput != "" && (prev == nil || prev.PrimaryOutput != next.PrimaryOutput) {
		d.invoke(PrimaryChangeHook, next.PrimaryOutput)
	}
}

func (d *Dispatcher) invoke(name, arg string) {
	path := filepath.Join(d.dir, name)
	if _, err := os.Stat(path); err != nil {
		slog.Debug("hook not present; skipping", "hook", name)
		return
	}

	slog.Info("invoking hook", "hook", name, "arg", arg)
	if err := d.run(path, arg); err != nil {
		slog.Warn("hook failed", "hook", name, "arg", arg, "error", err)
	}
}

func execHook(path, arg string) error {
	cmd := exec.Command(path, arg)
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("running %s: %w", filepath.Base(path), err)
	}
	return nil
}
