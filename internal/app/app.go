// Package app wires the pipeline together and exposes the CLI surface.
package app

import (
	"outputd/internal/config"
	"outputd/internal/hooks"
	"outputd/internal/pactl"
	"outputd/internal/state"
	"outputd/internal/xrandr"
)

// DisplayServer is the capability boundary to whatever configures the
// outputs. The xrandr backend implements it; tests substitute a fake.
type DisplayServer interface {
	Topology() (xrandr.Topology, error)
	Apply(plan xrandr.Plan) xrandr.Result
	SetPrimary(name string) error
}

type App struct {
	Cfg     *config.Config
	Display DisplayServer
	Tracker *state.Tracker
	Hooks   *hooks.Dispatcher

	// Audio is nil when pactl is not installed; routing is skipped.
	Audio *pactl.Client
}

func NewApp(cfg *config.Config, display DisplayServer, tracker *state.Tracker, hk *hooks.Dispatcher, audio *pactl.Client) *App {
	return &App{
		Cfg:     cfg,
		Display: display,
		Tracker: tracker,
		Hooks:   hk,
		Audio:   audio,
	}
}
