package app

import (
	"github.com/spf13/cobra"
)

var (
	resolveProfile string
	resolveDefault bool

	resolveCmd = &cobra.Command{
		Use:   "resolve",
		Short: "Apply the profile matching the connected outputs",
		Long: `resolve probes the connected outputs, selects the matching profile and
applies it. With no match the current configuration is left untouched
and the command still exits 0; only an unreachable display server or an
invalid config is an error.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, conn, err := newApp()
			if err != nil {
				return err
			}
			defer conn.Close()

			return a.Resolve(ResolveOptions{
				ProfileName: resolveProfile,
				UseDefault:  resolveDefault,
			})
		},
	}
)

func init() {
	resolveCmd.Flags().StringVar(&resolveProfile, "profile", "", "apply a specific profile by name")
	resolveCmd.Flags().BoolVar(&resolveDefault, "default-profile", false, "apply the reserved default profile instead of matching")
	resolveCmd.MarkFlagsMutuallyExclusive("profile", "default-profile")
}
