package app

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	"outputd/internal/pactl"
	"outputd/internal/profile"
	"outputd/internal/state"
	"outputd/internal/xrandr"
)

// ResolveOptions selects which profile the pipeline applies. The zero
// value means: match the connected topology.
type ResolveOptions struct {
	// ProfileName forces a specific profile regardless of topology.
	ProfileName string

	// UseDefault skips topology matching and applies the reserved
	// default profile directly.
	UseDefault bool
}

// Resolve runs the pipeline once: probe the topology, select a profile,
// apply it, fire hooks on genuine transitions, persist the new state.
// Only a probe failure is returned as an error; everything downstream is
// best effort and logged.
func (a *App) Resolve(opts ResolveOptions) error {
	topo, err := a.Display.Topology()
	if err != nil {
		return fmt.Errorf("probing output topology: %w", err)
	}

	connected := topo.ConnectedNames()
	slog.Info("connected outputs", "outputs", strings.Join(connected, ","))

	var (
		prof profile.Profile
		ok   bool
	)

	switch {
	case opts.ProfileName != "":
		prof, ok = a.profileByName(opts.ProfileName)
		if !ok {
			return fmt.Errorf("no profile named %q", opts.ProfileName)
		}

	case opts.UseDefault:
		prof, ok = a.defaultProfile()
		if !ok {
			slog.Warn("no default profile configured; leaving configuration untouched")
			return nil
		}

	default:
		prof, ok = profile.Match(connected, a.Cfg.Profiles)
		if !ok {
			slog.Warn("no profile matches current topology; leaving configuration untouched",
				"outputs", strings.Join(connected, ","))
			return nil
		}
	}

	return a.applyProfile(prof)
}

// applyProfile drives the display to the profile's layout and fans out
// the side effects. Partial apply failures are logged and the pipeline
// continues with whatever subset succeeded; a rollback loop risks a
// headless session, which is strictly worse.
func (a *App) applyProfile(prof profile.Profile) error {
	slog.Info("applying profile", "profile", prof.Name)
	if len(prof.Placements) == 0 {
		slog.Warn("profile has no placements; all outputs will be turned off", "profile", prof.Name)
	}

	res := a.Display.Apply(planFor(prof))
	for _, f := range res.Failures {
		slog.Error("apply failure", "output", f.Output, "error", f.Err)
	}

	prev := a.Tracker.Load()
	applied := state.Applied{
		Profile:       prof.Name,
		PrimaryOutput: appliedPrimary(prof, res, prev),
		AppliedAt:     time.Now(),
	}

	// Persist before hook dispatch: a misbehaving hook must never leave
	// the on-disk record lagging behind the actual display state.
	if err := a.Tracker.Store(applied); err != nil {
		slog.Error("persisting applied state", "error", err)
	}

	a.Hooks.Dispatch(prev, applied)
	a.routeAudio(prof)

	return nil
}

func planFor(prof profile.Profile) xrandr.Plan {
	var plan xrandr.Plan
	for _, pl := range prof.Placements {
		if !pl.Enabled() {
			continue
		}
		plan.Enable = append(plan.Enable, xrandr.Command{
			Output:  pl.Output,
			Width:   pl.Width,
			Height:  pl.Height,
			X:       pl.X,
			Y:       pl.Y,
			Primary: pl.Primary,
		})
	}
	return plan
}

// appliedPrimary records which output actually ended up primary: the
// profile's pick when it was configured successfully, otherwise
// whatever was primary before.
func appliedPrimary(prof profile.Profile, res xrandr.Result, prev *state.Applied) string {
	want := prof.PrimaryOutput()
	if want != "" && res.DidEnable(want) {
		return want
	}
	if prev != nil {
		return prev.PrimaryOutput
	}
	return ""
}

func (a *App) routeAudio(prof profile.Profile) {
	if a.Audio == nil || len(prof.AudioSinks) == 0 {
		return
	}

	sinks, err := a.Audio.Sinks()
	if err != nil {
		slog.Warn("listing audio sinks", "error", err)
		return
	}

	sink, ok := pactl.PickSink(sinks, prof.AudioSinks)
	if !ok {
		slog.Warn("no audio sink matched profile patterns", "profile", prof.Name)
		return
	}

	if err := a.Audio.SetDefaultSink(sink); err != nil {
		slog.Warn("setting default audio sink", "sink", sink, "error", err)
		return
	}
	slog.Info("default audio sink set", "sink", sink)
}

func (a *App) profileByName(name string) (profile.Profile, bool) {
	for _, p := range a.Cfg.Profiles {
		if p.Name == name {
			return p, true
		}
	}
	return profile.Profile{}, false
}

func (a *App) defaultProfile() (profile.Profile, bool) {
	for _, p := range a.Cfg.Profiles {
		if p.IsDefault() {
			return p, true
		}
	}
	return profile.Profile{}, false
}
