// Package config resolves server options from .env files, the process
// environment and command line flags. Flags win over the environment, the
// environment wins over .env defaults.
package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

// Config holds every tunable of the server process.
type Config struct {
	// DBURL is the filesystem path of the place/event store.
	DBURL string
	// DBConnectionPoolSize caps the number of open database connections.
	DBConnectionPoolSize int
	// IndexDir is the directory of the on-disk search index. Empty keeps
	// the index in memory.
	IndexDir string
	// EnableCORS toggles the permissive origin header on API responses.
	EnableCORS bool
	// ListenAddr is the host:port the HTTP server binds to.
	ListenAddr string
	// BaseURL is the public URL of this instance, used in e-mail links.
	BaseURL string
	// SessionSecret signs the session cookie. Random per process when
	// unset, which invalidates sessions on restart.
	SessionSecret string

	SMTPHost     string
	SMTPPort     int
	SMTPUsername string
	SMTPPassword string
	SMTPFrom     string

	// GeocodingURL overrides the Nominatim endpoint used by the event
	// address fixer.
	GeocodingURL string
}

// Load reads .env (when present) into the process environment and builds a
// config from it. Call before AddFlags so flag defaults reflect the
// environment.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("loading .env: %w", err)
	}

	poolSize, err := envInt("DB_CONNECTION_POOL_SIZE", 8)
	if err != nil {
		return nil, err
	}
	if poolSize < 1 {
		return nil, fmt.Errorf("DB_CONNECTION_POOL_SIZE must be positive, got %d", poolSize)
	}
	enableCORS, err := envBool("ENABLE_CORS", false)
	if err != nil {
		return nil, err
	}
	smtpPort, err := envInt("SMTP_PORT", 587)
	if err != nil {
		return nil, err
	}

	return &Config{
		DBURL:                envOr("DB_URL", "placemap.sqlite"),
		DBConnectionPoolSize: poolSize,
		IndexDir:             os.Getenv("INDEX_DIR"),
		EnableCORS:           enableCORS,
		ListenAddr:           envOr("LISTEN_ADDR", ":6767"),
		BaseURL:              envOr("BASE_URL", "http://localhost:6767"),
		SessionSecret:        os.Getenv("SESSION_SECRET"),
		SMTPHost:             os.Getenv("SMTP_HOST"),
		SMTPPort:             smtpPort,
		SMTPUsername:         os.Getenv("SMTP_USERNAME"),
		SMTPPassword:         os.Getenv("SMTP_PASSWORD"),
		SMTPFrom:             os.Getenv("SMTP_FROM"),
		GeocodingURL:         os.Getenv("GEOCODING_URL"),
	}, nil
}

// AddFlags registers the config as command line flags, seeded with the
// already resolved values so a flag given on the command line overrides the
// environment.
func (c *Config) AddFlags(cmd *cobra.Command) {
	f := cmd.PersistentFlags()
	f.StringVar(&c.DBURL, "db-url", c.DBURL, "path of the place/event store")
	f.IntVar(&c.DBConnectionPoolSize, "db-connection-pool-size", c.DBConnectionPoolSize, "max open database connections")
	f.StringVar(&c.IndexDir, "index-dir", c.IndexDir, "directory of the search index (empty: in-memory)")
	f.BoolVar(&c.EnableCORS, "enable-cors", c.EnableCORS, "allow requests from any origin")
	f.StringVar(&c.ListenAddr, "listen", c.ListenAddr, "address to listen on")
	f.StringVar(&c.BaseURL, "base-url", c.BaseURL, "public URL used in e-mail links")
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("%s must be an integer, got %q", key, v)
	}
	return n, nil
}

func envBool(key string, fallback bool) (bool, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return false, fmt.Errorf("%s must be a boolean, got %q", key, v)
	}
	return b, nil
}
