package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/eventease/server/internal/api"
	"github.com/eventease/server/internal/api/handlers"
	"github.com/eventease/server/internal/auth"
	"github.com/eventease/server/internal/config"
	"github.com/eventease/server/internal/domain/events"
	"github.com/eventease/server/internal/domain/news"
	"github.com/eventease/server/internal/domain/registrations"
	"github.com/eventease/server/internal/domain/users"
	"github.com/eventease/server/internal/ingest"
	"github.com/eventease/server/internal/storage/postgres"
)

var (
	serverHost string
	serverPort int
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the EventEase HTTP server",
	Long: `Start the HTTP server and begin accepting API requests.

The server loads configuration from environment variables, runs pending
database migrations, seeds the admin account if ADMIN_* variables are set,
and shuts down gracefully on SIGINT/SIGTERM.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runServer()
	},
}

func init() {
	serveCmd.Flags().StringVar(&serverHost, "host", "", "server host address (default: 0.0.0.0)")
	serveCmd.Flags().IntVar(&serverPort, "port", 0, "server port (default: 8080)")
}

func runServer() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("config error: %w", err)
	}
	if serverHost != "" {
		cfg.Server.Host = serverHost
	}
	if serverPort != 0 {
		cfg.Server.Port = serverPort
	}

	logger := config.NewLogger(cfg.Logging)
	logger.Info().Str("version", Version).Msg("starting eventease server")

	if err := postgres.MigrateUp(cfg.Database.URL, postgres.DefaultMigrationsPath); err != nil {
		return fmt.Errorf("migrations: %w", err)
	}

	poolCtx, poolCancel := context.WithTimeout(context.Background(), 10*time.Second)
	pool, err := postgres.NewPool(poolCtx, cfg.Database)
	poolCancel()
	if err != nil {
		return err
	}
	defer pool.Close()

	store, err := postgres.NewStore(pool)
	if err != nil {
		return err
	}

	bootCtx, bootCancel := context.WithTimeout(context.Background(), 10*time.Second)
	if err := bootstrapAdmin(bootCtx, pool, cfg.Admin, logger); err != nil {
		logger.Error().Err(err).Msg("admin bootstrap failed")
	}
	bootCancel()

	eventsService := events.NewService(store.Events())
	newsService := news.NewService(store.News())
	usersService := users.NewService(store.Users())
	registrationsService := registrations.NewService(store.Registrations())

	jwtManager := auth.NewJWTManager(cfg.Auth.JWTSecret, cfg.Auth.JWTExpiry, cfg.Auth.Issuer)
	ingestor := buildIngestor(store, cfg.Providers, logger)

	router := api.NewRouter(api.Deps{
		Events:        handlers.NewEventsHandler(eventsService, store.Users(), ingestor),
		News:          handlers.NewNewsHandler(newsService, ingestor),
		Registrations: handlers.NewRegistrationsHandler(registrationsService),
		Users:         handlers.NewUsersHandler(usersService, jwtManager),
		Health:        handlers.NewHealthHandler(pool, Version),
		JWT:           jwtManager,
		Logger:        logger,
	})

	server := &http.Server{
		Addr:              cfg.Server.Addr(),
		Handler:           router,
		ReadTimeout:       cfg.Server.ReadTimeout,
		WriteTimeout:      cfg.Server.WriteTimeout,
		ReadHeaderTimeout: 5 * time.Second,
		MaxHeaderBytes:    1 << 20,
	}

	go func() {
		logger.Info().Str("addr", server.Addr).Msg("listening")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error().Err(err).Msg("http server error")
		}
	}()

	return waitForShutdown(server, cfg.Server.ShutdownTimeout, logger)
}

// buildIngestor registers every provider that has configuration.
func buildIngestor(store *postgres.Store, cfg config.ProvidersConfig, logger zerolog.Logger) *ingest.Ingestor {
	ingestor := ingest.NewIngestor(store.Events(), store.News(), logger).WithTimeout(cfg.FetchTimeout)

	if cfg.TicketmasterAPIKey != "" {
		ingestor.RegisterEventProvider(
			ingest.NewTicketmasterProvider(cfg.TicketmasterAPIKey, cfg.TicketmasterCity, 20, logger))
	}
	if cfg.SearchAPIKey != "" {
		ingestor.RegisterEventProvider(
			ingest.NewSearchAPIProvider(cfg.SearchAPIKey, cfg.SearchAPIQuery, cfg.SearchAPILocation, logger))
	}
	for _, feed := range cfg.EventFeeds {
		ingestor.RegisterEventProvider(ingest.NewFeedEventProvider(feed.Name, feed.URL, 50, logger))
	}
	for _, feed := range cfg.NewsFeeds {
		ingestor.RegisterNewsProvider(ingest.NewFeedNewsProvider(feed.Name, feed.URL, logger))
	}
	return ingestor
}

// bootstrapAdmin creates the admin account on first boot. An existing
// account with the same email is left untouched.
func bootstrapAdmin(ctx context.Context, pool *pgxpool.Pool, cfg config.AdminConfig, logger zerolog.Logger) error {
	if cfg.Email == "" || cfg.Password == "" {
		logger.Debug().Msg("admin bootstrap not configured; skipping")
		return nil
	}

	store, err := postgres.NewStore(pool)
	if err != nil {
		return err
	}
	service := users.NewService(store.Users())

	user, err := service.Create(ctx, users.UserParams{Email: cfg.Email, Name: cfg.Name}, cfg.Password)
	if err != nil {
		if errors.Is(err, users.ErrConflict) {
			logger.Info().Str("email", cfg.Email).Msg("admin account already exists")
			return nil
		}
		return err
	}

	_, err = pool.Exec(ctx, `UPDATE users SET is_admin = TRUE WHERE id = $1`, user.ID)
	if err != nil {
		return fmt.Errorf("promote admin: %w", err)
	}
	logger.Info().Str("email", cfg.Email).Msg("admin account created")
	return nil
}

func waitForShutdown(server *http.Server, timeout time.Duration, logger zerolog.Logger) error {
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	logger.Info().Msg("shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	logger.Info().Msg("server stopped")
	return nil
}
