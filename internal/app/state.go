package app

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"outputd/internal/config"
)

var (
	listCmd = &cobra.Command{
		Use:   "list",
		Short: "List configured profiles in match order",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.InitConfig(cfgFile)
			if err != nil {
				return err
			}

			for _, p := range cfg.Profiles {
				outputs := make([]string, 0, len(p.Placements))
				for _, pl := range p.Placements {
					outputs = append(outputs, pl.Output)
				}
				fmt.Printf("%s\t[%s]\n", p.Name, strings.Join(outputs, " "))
			}
			return nil
		},
	}

	stateCmd = &cobra.Command{
		Use:   "state",
		Short: "Print the current output topology and applied state",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, conn, err := newApp()
			if err != nil {
				return err
			}
			defer conn.Close()

			topo, err := a.Display.Topology()
			if err != nil {
				return fmt.Errorf("probing output topology: %w", err)
			}

			for _, o := range topo.Outputs {
				parts := []string{o.Name}
				if o.Connected {
					parts = append(parts, "connected")
				} else {
					parts = append(parts, "disconnected")
				}
				if o.Primary {
					parts = append(parts, "primary")
				}
				if o.Active {
					parts = append(parts, fmt.Sprintf("%dx%d+%d+%d", o.Width, o.Height, o.X, o.Y))
				}
				if o.Monitor != "" {
					parts = append(parts, "=", o.Monitor)
				}
				fmt.Println(strings.Join(parts, " "))
			}

			if applied := a.Tracker.Load(); applied != nil {
				fmt.Printf("applied: %s (primary %s) at %s\n",
					applied.Profile, applied.PrimaryOutput, applied.AppliedAt.Format("2006-01-02 15:04:05"))
			}
			return nil
		},
	}

	primaryResolutionCmd = &cobra.Command{
		Use:   "primary-resolution",
		Short: "Print the primary output's resolution as WxH",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, conn, err := newApp()
			if err != nil {
				return err
			}
			defer conn.Close()

			topo, err := a.Display.Topology()
			if err != nil {
				return fmt.Errorf("probing output topology: %w", err)
			}

			p, ok := topo.Primary()
			if !ok || !p.Active {
				return fmt.Errorf("no active primary output")
			}

			fmt.Printf("%dx%d\n", p.Width, p.Height)
			return nil
		},
	}
)
