package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "server",
	Short: "EventEase server - event discovery and tech news backend",
	Long: `EventEase server aggregates tech events and news from external providers
and serves them through a ranked, location-aware HTTP API.

The server supports:
- Event ingestion from Ticketmaster, SearchApi.io, and RSS feeds
- Tech news aggregation with automatic topic classification
- Location-aware event ranking for signed-in users
- Capacity-guarded event registration`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return serveCmd.RunE(cmd, args)
	},
}

// Execute runs the root command. Called once from main.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(migrateCmd)
	rootCmd.AddCommand(refreshCmd)
	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(healthcheckCmd)
}
