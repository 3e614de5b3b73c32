package cmd

import (
	"fmt"
	"net/http"
	"time"

	"github.com/spf13/cobra"
)

var healthcheckURL string

var healthcheckCmd = &cobra.Command{
	Use:   "healthcheck",
	Short: "Probe a running server's health endpoint",
	Long: `Probe the /healthz endpoint and exit non-zero when the server is
unhealthy. Intended for container health checks.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		client := &http.Client{Timeout: 5 * time.Second}
		resp, err := client.Get(healthcheckURL)
		if err != nil {
			return fmt.Errorf("healthcheck: %w", err)
		}
		defer func() { _ = resp.Body.Close() }()

		if resp.StatusCode != http.StatusOK {
			return fmt.Errorf("healthcheck: status %d", resp.StatusCode)
		}
		fmt.Fprintln(cmd.OutOrStdout(), "ok")
		return nil
	},
}

func init() {
	healthcheckCmd.Flags().StringVar(&healthcheckURL, "url", "http://localhost:8080/healthz", "health endpoint to probe")
}
