package app

import (
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"outputd/internal/config"
	"outputd/internal/hooks"
	"outputd/internal/pactl"
	"outputd/internal/state"
	"outputd/internal/xrandr"
)

var (
	cfgFile string

	rootCmd = &cobra.Command{
		Use:   "outputd",
		Short: "Display output profile manager and battery state notifier",
		Long: `outputd resolves the set of currently connected monitors against named
output profiles and applies the matching layout through RandR, firing
per-machine hooks only when the profile or primary output genuinely
changed. It also ships a battery monitor that raises desktop
notifications when charge crosses the configured thresholds.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
)

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "",
		"config file (default: $XDG_CONFIG_HOME/outputd/config.yaml)")

	rootCmd.AddCommand(resolveCmd)
	rootCmd.AddCommand(cycleProfileCmd)
	rootCmd.AddCommand(cyclePrimaryCmd)
	rootCmd.AddCommand(cycleSinkCmd)
	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(stateCmd)
	rootCmd.AddCommand(primaryResolutionCmd)
	rootCmd.AddCommand(listenCmd)
	rootCmd.AddCommand(batteryCmd)
}

// Execute runs the root command.
func Execute() error {
	if os.Getenv("DEBUG") == "true" {
		slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug})))
	}

	return rootCmd.Execute()
}

// newApp builds the full pipeline against the live display server. The
// returned Conn must be closed by the caller.
func newApp() (*App, *xrandr.Conn, error) {
	cfg, err := config.InitConfig(cfgFile)
	if err != nil {
		return nil, nil, err
	}

	conn, err := xrandr.Connect()
	if err != nil {
		return nil, nil, err
	}

	statePath, err := state.DefaultPath()
	if err != nil {
		conn.Close()
		return nil, nil, err
	}

	audio, err := pactl.NewClient()
	if err != nil {
		slog.Debug("pactl unavailable; audio routing disabled", "error", err)
		audio = nil
	}

	a := NewApp(cfg, conn, state.NewTracker(statePath), hooks.NewDispatcher(cfg.HookDir), audio)
	return a, conn, nil
}
