// Package config loads server configuration from the environment.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	Server      ServerConfig
	Database    DatabaseConfig
	Auth        AuthConfig
	Logging     LoggingConfig
	Providers   ProvidersConfig
	Admin       AdminConfig
	Environment string
}

// AdminConfig seeds the first admin account on startup when all three
// values are set.
type AdminConfig struct {
	Email    string
	Name     string
	Password string
}

type ServerConfig struct {
	Host            string
	Port            int
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	ShutdownTimeout time.Duration
}

func (c ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

type DatabaseConfig struct {
	URL            string
	MaxConnections int
}

type AuthConfig struct {
	JWTSecret string
	JWTExpiry time.Duration
	Issuer    string
}

type LoggingConfig struct {
	Level  string
	Format string
}

// ProvidersConfig configures the upstream event and news sources.
type ProvidersConfig struct {
	TicketmasterAPIKey string
	TicketmasterCity   string
	SearchAPIKey       string
	SearchAPIQuery     string
	SearchAPILocation  string
	EventFeeds         []Feed
	NewsFeeds          []Feed
	FetchTimeout       time.Duration
}

// Feed is one RSS or Atom source.
type Feed struct {
	Name string
	URL  string
}

func Load() (Config, error) {
	eventFeeds, err := parseFeeds(getEnv("EVENT_FEEDS", ""))
	if err != nil {
		return Config{}, fmt.Errorf("EVENT_FEEDS: %w", err)
	}
	newsFeeds, err := parseFeeds(getEnv("NEWS_FEEDS", ""))
	if err != nil {
		return Config{}, fmt.Errorf("NEWS_FEEDS: %w", err)
	}

	cfg := Config{
		Server: ServerConfig{
			Host:            getEnv("SERVER_HOST", "0.0.0.0"),
			Port:            getEnvInt("SERVER_PORT", 8080),
			ReadTimeout:     time.Duration(getEnvInt("SERVER_READ_TIMEOUT_SECONDS", 15)) * time.Second,
			WriteTimeout:    time.Duration(getEnvInt("SERVER_WRITE_TIMEOUT_SECONDS", 30)) * time.Second,
			ShutdownTimeout: time.Duration(getEnvInt("SERVER_SHUTDOWN_TIMEOUT_SECONDS", 10)) * time.Second,
		},
		Database: DatabaseConfig{
			URL:            getEnv("DATABASE_URL", ""),
			MaxConnections: getEnvInt("DATABASE_MAX_CONNECTIONS", 25),
		},
		Auth: AuthConfig{
			JWTSecret: getEnv("JWT_SECRET", ""),
			JWTExpiry: time.Duration(getEnvInt("JWT_EXPIRY_HOURS", 24)) * time.Hour,
			Issuer:    getEnv("JWT_ISSUER", "eventease"),
		},
		Logging: LoggingConfig{
			Level:  getEnv("LOG_LEVEL", "info"),
			Format: getEnv("LOG_FORMAT", "json"),
		},
		Providers: ProvidersConfig{
			TicketmasterAPIKey: getEnv("TICKETMASTER_API_KEY", ""),
			TicketmasterCity:   getEnv("TICKETMASTER_CITY", ""),
			SearchAPIKey:       getEnv("SEARCHAPI_API_KEY", ""),
			SearchAPIQuery:     getEnv("SEARCHAPI_QUERY", "tech events"),
			SearchAPILocation:  getEnv("SEARCHAPI_LOCATION", ""),
			EventFeeds:         eventFeeds,
			NewsFeeds:          newsFeeds,
			FetchTimeout:       time.Duration(getEnvInt("PROVIDER_TIMEOUT_SECONDS", 30)) * time.Second,
		},
		Admin: AdminConfig{
			Email:    getEnv("ADMIN_EMAIL", ""),
			Name:     getEnv("ADMIN_NAME", "Administrator"),
			Password: getEnv("ADMIN_PASSWORD", ""),
		},
		Environment: getEnv("ENVIRONMENT", "development"),
	}

	if cfg.Database.URL == "" {
		return Config{}, fmt.Errorf("DATABASE_URL is required")
	}
	if cfg.Auth.JWTSecret == "" {
		return Config{}, fmt.Errorf("JWT_SECRET is required")
	}
	return cfg, nil
}

// parseFeeds reads a comma-separated list of name=url pairs.
func parseFeeds(raw string) ([]Feed, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}

	var feeds []Feed
	for _, entry := range strings.Split(raw, ",") {
		entry = strings.TrimSpace(entry)
		if entry == "" {
			continue
		}
		name, url, ok := strings.Cut(entry, "=")
		if !ok || strings.TrimSpace(name) == "" || strings.TrimSpace(url) == "" {
			return nil, fmt.Errorf("malformed feed entry %q, want name=url", entry)
		}
		feeds = append(feeds, Feed{Name: strings.TrimSpace(name), URL: strings.TrimSpace(url)})
	}
	return feeds, nil
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return fallback
	}
	return parsed
}
