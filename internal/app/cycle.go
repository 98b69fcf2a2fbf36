package app

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/spf13/cobra"

	"outputd/internal/pactl"
	"outputd/internal/profile"
	"outputd/internal/state"
)

var (
	cycleProfileCmd = &cobra.Command{
		Use:   "cycle-profile",
		Short: "Switch to the next profile whose outputs are connected",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, conn, err := newApp()
			if err != nil {
				return err
			}
			defer conn.Close()

			return a.CycleProfile()
		},
	}

	cyclePrimaryCmd = &cobra.Command{
		Use:   "cycle-primary",
		Short: "Rotate the primary output among the active outputs",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, conn, err := newApp()
			if err != nil {
				return err
			}
			defer conn.Close()

			return a.CyclePrimary()
		},
	}

	cycleSinkCmd = &cobra.Command{
		Use:   "cycle-sink",
		Short: "Rotate the default audio sink among the profile's candidates",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, conn, err := newApp()
			if err != nil {
				return err
			}
			defer conn.Close()

			return a.CycleSink()
		},
	}
)

// CycleProfile applies the next profile after the current one whose
// required outputs are all connected. The current profile is taken from
// the persisted state, falling back to matching the active outputs.
func (a *App) CycleProfile() error {
	topo, err := a.Display.Topology()
	if err != nil {
		return fmt.Errorf("probing output topology: %w", err)
	}

	current := ""
	if prev := a.Tracker.Load(); prev != nil {
		current = prev.Profile
	} else if p, ok := profile.Match(topo.ActiveNames(), a.Cfg.Profiles); ok {
		current = p.Name
	}

	next, ok := profile.NextApplicable(current, topo.ConnectedNames(), a.Cfg.Profiles)
	if !ok {
		slog.Warn("no other applicable profile", "current", current)
		return nil
	}

	return a.applyProfile(next)
}

// CyclePrimary rotates the primary output. Candidates are the enabled
// placements of the matched profile, or every active output when no
// profile matches.
func (a *App) CyclePrimary() error {
	topo, err := a.Display.Topology()
	if err != nil {
		return fmt.Errorf("probing output topology: %w", err)
	}

	var candidates []string
	if prof, ok := profile.Match(topo.ConnectedNames(), a.Cfg.Profiles); ok {
		for _, pl := range prof.Placements {
			if pl.Enabled() {
				candidates = append(candidates, pl.Output)
			}
		}
	}
	if len(candidates) == 0 {
		candidates = topo.ActiveNames()
	}
	if len(candidates) == 0 {
		return fmt.Errorf("no active outputs")
	}

	current := ""
	if p, ok := topo.Primary(); ok {
		current = p.Name
	}

	next := candidates[0]
	for i, name := range candidates {
		if name == current {
			next = candidates[(i+1)%len(candidates)]
			break
		}
	}

	if err := a.Display.SetPrimary(next); err != nil {
		return fmt.Errorf("setting primary output: %w", err)
	}
	slog.Info("primary output set", "output", next)

	prev := a.Tracker.Load()
	applied := state.Applied{PrimaryOutput: next, AppliedAt: time.Now()}
	if prev != nil {
		applied.Profile = prev.Profile
	}

	if err := a.Tracker.Store(applied); err != nil {
		slog.Error("persisting applied state", "error", err)
	}
	a.Hooks.Dispatch(prev, applied)

	return nil
}

// CycleSink rotates the default audio sink among the matched profile's
// candidates, or all sinks when the profile declares none.
func (a *App) CycleSink() error {
	if a.Audio == nil {
		return fmt.Errorf("pactl not available")
	}

	sinks, err := a.Audio.Sinks()
	if err != nil {
		return fmt.Errorf("listing audio sinks: %w", err)
	}

	topo, err := a.Display.Topology()
	if err != nil {
		return fmt.Errorf("probing output topology: %w", err)
	}

	if prof, ok := profile.Match(topo.ConnectedNames(), a.Cfg.Profiles); ok && len(prof.AudioSinks) > 0 {
		if filtered := filterSinks(sinks, prof.AudioSinks); len(filtered) > 0 {
			sinks = filtered
		}
	}

	current, err := a.Audio.DefaultSink()
	if err != nil {
		slog.Warn("getting default sink", "error", err)
	}

	next, err := pactl.NextSink(sinks, current)
	if err != nil {
		return fmt.Errorf("picking next sink: %w", err)
	}

	if err := a.Audio.SetDefaultSink(next); err != nil {
		return fmt.Errorf("setting default sink: %w", err)
	}
	slog.Info("default audio sink set", "sink", next)

	return nil
}

// filterSinks keeps the sinks matched by any pattern, in pattern order,
// so the profile's preference order carries into the cycle.
func filterSinks(sinks, patterns []string) []string {
	var out []string
	taken := make(map[string]bool, len(sinks))
	for _, expr := range patterns {
		if sink, ok := pactl.PickSink(remaining(sinks, taken), []string{expr}); ok {
			out = append(out, sink)
			taken[sink] = true
		}
	}
	return out
}

func remaining(sinks []string, taken map[string]bool) []string {
	var out []string
	for _, s := range sinks {
		if !taken[s] {
			out = append(out, s)
		}
	}
	return out
}
