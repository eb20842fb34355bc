// Package cli wires the cobra command tree for the vibing binary.
package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

// SetupRootCmd configures the root command with all subcommands and flags.
func SetupRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "vibing",
		Short: "Vibing - local-first desktop companion",
		Long: `Vibing is the desktop companion's data and update engine: an embedded
project store, a background auto-updater with signed releases, and a native
tray menu that follows your recent projects.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if headless {
				return RunServe()
			}
			return runApp()
		},
	}

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is config.yaml in the data dir)")
	rootCmd.Flags().BoolVar(&headless, "headless", false, "run the engine without a native window or tray")

	// --version must answer fast and offline: the updater health-checks new
	// binaries with it before swapping them in.
	rootCmd.Version = AppVersion
	rootCmd.SetVersionTemplate(fmt.Sprintf("vibing %s\n", AppVersion))

	rootCmd.AddCommand(&cobra.Command{
		Use:   "serve",
		Short: "Run the engine headless (no window, no tray)",
		RunE: func(cmd *cobra.Command, args []string) error {
			return RunServe()
		},
	})

	rootCmd.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("vibing %s\n", AppVersion)
		},
	})

	return rootCmd
}
