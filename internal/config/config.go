package config

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	// HTTP server
	Port string

	// Record store backend: remote, sqlite or memory
	DataBackend string

	// Remote record store
	RecordStoreURL string

	// Auth
	JWTSecret string

	// SQLite backend
	SQLiteDBPath string

	// External endpoints
	RatesURL      string
	RateFallback  string // decimal USD/BRL bid used when the endpoint is down
	AdvisorURL    string
	RemoteTimeout time.Duration

	// Cache tuning
	CacheFreshFor        time.Duration
	CacheRetainFor       time.Duration
	CacheMaxEntries      int
	CacheCleanupInterval time.Duration

	// Mutation event stream
	AMQPURL      string
	AMQPExchange string
	AMQPQueue    string

	// Ledger mirror (worker)
	MirrorSpreadsheetID   string
	MirrorSheetName       string
	MirrorCredentialsFile string
	MirrorCredentialsJSON string
}

func Load() *Config {
	return &Config{
		Port:        getEnv("PORT", "8082"),
		DataBackend: getEnv("DATA_BACKEND", "memory"),

		RecordStoreURL: getEnv("RECORD_STORE_URL", ""),
		JWTSecret:      getEnv("JWT_SECRET", ""),
		SQLiteDBPath:   getEnv("SQLITE_DB_PATH", "./data/contas.db"),

		RatesURL:      getEnv("RATES_URL", "https://economia.awesomeapi.com.br/json/last/USD-BRL"),
		RateFallback:  getEnv("RATE_FALLBACK", "5.00"),
		AdvisorURL:    getEnv("ADVISOR_URL", ""),
		RemoteTimeout: getEnvDuration("REMOTE_TIMEOUT", 10*time.Second),

		CacheFreshFor:        getEnvDuration("CACHE_FRESH_FOR", 30*time.Second),
		CacheRetainFor:       getEnvDuration("CACHE_RETAIN_FOR", 5*time.Minute),
		CacheMaxEntries:      getEnvInt("CACHE_MAX_ENTRIES", 128),
		CacheCleanupInterval: getEnvDuration("CACHE_CLEANUP_INTERVAL", 10*time.Minute),

		AMQPURL:      getEnv("AMQP_URL", ""),
		AMQPExchange: getEnv("AMQP_EXCHANGE", "contas"),
		AMQPQueue:    getEnv("AMQP_QUEUE", "record_events"),

		MirrorSpreadsheetID:   getEnv("MIRROR_SPREADSHEET_ID", ""),
		MirrorSheetName:       getEnv("MIRROR_SHEET_NAME", "Ledger"),
		MirrorCredentialsFile: getEnv("MIRROR_CREDENTIALS_FILE", ""),
		MirrorCredentialsJSON: getEnv("MIRROR_CREDENTIALS_JSON", ""),
	}
}

// Validate checks the configuration and returns one error collecting
// every problem found.
func (c *Config) Validate() error {
	var errs []string

	if port, err := strconv.Atoi(c.Port); err != nil {
		errs = append(errs, fmt.Sprintf("invalid port '%s': must be a number", c.Port))
	} else if port < 1 || port > 65535 {
		errs = append(errs, fmt.Sprintf("invalid port %d: must be between 1 and 65535", port))
	}

	switch c.DataBackend {
	case "remote":
		if c.RecordStoreURL == "" {
			errs = append(errs, "RECORD_STORE_URL is required for the remote backend")
		} else if u, err := url.Parse(c.RecordStoreURL); err != nil || (u.Scheme != "http" && u.Scheme != "https") {
			errs = append(errs, fmt.Sprintf("invalid record store URL '%s'", c.RecordStoreURL))
		}
	case "sqlite":
		if c.SQLiteDBPath == "" {
			errs = append(errs, "SQLite database path cannot be empty when using the sqlite backend")
		} else if dir := filepath.Dir(c.SQLiteDBPath); dir != "." && dir != "" {
			if _, err := os.Stat(dir); os.IsNotExist(err) {
				if err := os.MkdirAll(dir, 0755); err != nil {
					errs = append(errs, fmt.Sprintf("cannot create SQLite database directory '%s': %v", dir, err))
				}
			}
		}
	case "memory":
	default:
		errs = append(errs, fmt.Sprintf("invalid data backend '%s': must be one of [remote sqlite memory]", c.DataBackend))
	}

	if c.JWTSecret == "" {
		errs = append(errs, "JWT_SECRET is required")
	}

	if c.AMQPURL != "" {
		if u, err := url.Parse(c.AMQPURL); err != nil {
			errs = append(errs, fmt.Sprintf("invalid AMQP URL '%s': %v", c.AMQPURL, err))
		} else if u.Scheme != "amqp" && u.Scheme != "amqps" {
			errs = append(errs, fmt.Sprintf("invalid AMQP URL scheme '%s': must be 'amqp' or 'amqps'", u.Scheme))
		}
		if c.AMQPExchange == "" {
			errs = append(errs, "AMQP exchange name cannot be empty when AMQP URL is provided")
		}
		if c.AMQPQueue == "" {
			errs = append(errs, "AMQP queue name cannot be empty when AMQP URL is provided")
		}
	}

	if c.CacheFreshFor <= 0 {
		errs = append(errs, fmt.Sprintf("invalid cache freshness window %v: must be positive", c.CacheFreshFor))
	}
	if c.CacheRetainFor < c.CacheFreshFor {
		errs = append(errs, fmt.Sprintf("invalid cache retention window %v: must be at least the freshness window %v", c.CacheRetainFor, c.CacheFreshFor))
	}
	if c.CacheMaxEntries < 1 {
		errs = append(errs, fmt.Sprintf("invalid cache max entries %d: must be at least 1", c.CacheMaxEntries))
	}

	if c.RateFallback != "" {
		if _, err := strconv.ParseFloat(strings.ReplaceAll(c.RateFallback, ",", "."), 64); err != nil {
			errs = append(errs, fmt.Sprintf("invalid rate fallback '%s': must be a decimal number", c.RateFallback))
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("configuration validation failed:\n- %s", strings.Join(errs, "\n- "))
	}
	return nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}
