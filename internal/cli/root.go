package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

const (
	Version = "0.1.0"
	appName = "naco"
)

// Execute runs the root command and exits non-zero on failure.
func Execute() {
	if err := rootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   appName,
		Short: "Naco booking backend",
		Long: `Naco connects clients with local artisans. This binary serves the
booking API (lifecycle, reviews, notifications, receipts) and manages
its MySQL schema.`,
		SilenceUsage: true,
	}

	cmd.AddCommand(serveCmd(), migrateCmd())
	cmd.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("%s version %s\n", appName, Version)
		},
	})
	return cmd
}
