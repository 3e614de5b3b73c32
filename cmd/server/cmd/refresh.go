package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/eventease/server/internal/config"
	"github.com/eventease/server/internal/storage/postgres"
)

var refreshKind string

var refreshCmd = &cobra.Command{
	Use:   "refresh",
	Short: "Run one ingestion cycle against all configured providers",
	Long: `Fetch events and news from the configured providers once and exit.
Useful from cron or a one-off shell; the same pipeline backs the
/v1/events/refresh and /v1/news/refresh endpoints.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runRefresh(cmd.Context())
	},
}

func init() {
	refreshCmd.Flags().StringVar(&refreshKind, "only", "", "restrict to one kind: events or news")
}

func runRefresh(ctx context.Context) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("config error: %w", err)
	}
	logger := config.NewLogger(cfg.Logging)

	poolCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	pool, err := postgres.NewPool(poolCtx, cfg.Database)
	cancel()
	if err != nil {
		return err
	}
	defer pool.Close()

	store, err := postgres.NewStore(pool)
	if err != nil {
		return err
	}

	ingestor := buildIngestor(store, cfg.Providers, logger)
	if len(ingestor.Providers()) == 0 {
		return fmt.Errorf("no providers configured")
	}

	var summaryErr error
	switch refreshKind {
	case "":
		_, summaryErr = ingestor.RunAll(ctx)
	case "events":
		_, summaryErr = ingestor.RunEvents(ctx)
	case "news":
		_, summaryErr = ingestor.RunNews(ctx)
	default:
		return fmt.Errorf("unknown --only value %q, want events or news", refreshKind)
	}
	return summaryErr
}
