package app

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"outputd/internal/battery"
	"outputd/internal/config"
	"outputd/internal/notify"
)

var (
	batteryLogFile  string
	batteryLow      int
	batteryCritical int
	batteryHyst     int
	batteryInterval time.Duration

	batteryCmd = &cobra.Command{
		Use:   "battery-monitor",
		Short: "Watch the battery and notify on low and critical charge",
		Long: `battery-monitor polls UPower's display device and raises a desktop
notification each time the charge drops past the low or critical
threshold. A level is only re-armed once the charge climbs the
hysteresis margin back above it, so a battery hovering at a threshold
does not spam notifications.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.InitConfig(cfgFile)
			if err != nil {
				return err
			}

			if batteryLogFile != "" {
				f, err := os.OpenFile(batteryLogFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
				if err != nil {
					return fmt.Errorf("opening log file: %w", err)
				}
				defer f.Close()
				teeLogs(os.Stderr, f)
			}

			low := cfg.Battery.LowThreshold
			critical := cfg.Battery.CriticalThreshold
			hyst := cfg.Battery.Hysteresis
			interval := cfg.Battery.Interval
			if cmd.Flags().Changed("low-threshold") {
				low = batteryLow
			}
			if cmd.Flags().Changed("critical-threshold") {
				critical = batteryCritical
			}
			if cmd.Flags().Changed("hysteresis") {
				hyst = batteryHyst
			}
			if cmd.Flags().Changed("interval") {
				interval = batteryInterval
			}
			if critical >= low {
				return fmt.Errorf("critical threshold (%d) must be below low threshold (%d)", critical, low)
			}

			src, err := battery.NewUPowerSource()
			if err != nil {
				return fmt.Errorf("connecting to upower: %w", err)
			}
			defer src.Close()

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			slog.Info("battery monitor starting",
				"low", low, "critical", critical, "hysteresis", hyst, "interval", interval)

			mon := battery.NewMonitor(src, notify.New(), low, critical, hyst, interval)
			return mon.Run(ctx)
		},
	}
)

// teeLogs replaces the default logger with a text handler writing to
// every given writer, so the monitor's log also lands in a file the
// session's journal may not capture.
func teeLogs(writers ...io.Writer) {
	lvl := slog.LevelInfo
	if os.Getenv("DEBUG") == "true" {
		lvl = slog.LevelDebug
	}

	slog.SetDefault(slog.New(slog.NewTextHandler(io.MultiWriter(writers...),
		&slog.HandlerOptions{Level: lvl})))
}

func init() {
	batteryCmd.Flags().StringVar(&batteryLogFile, "log-file", "", "also append logs to this file")
	batteryCmd.Flags().IntVar(&batteryLow, "low-threshold", 20, "percentage at which to warn")
	batteryCmd.Flags().IntVar(&batteryCritical, "critical-threshold", 10, "percentage at which to alert")
	batteryCmd.Flags().IntVar(&batteryHyst, "hysteresis", 5, "percentage the charge must climb above a threshold to re-arm it")
	batteryCmd.Flags().DurationVar(&batteryInterval, "interval", 30*time.Second, "polling interval")
}
