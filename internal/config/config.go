package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/multierr"
)

type Config struct {
	Addr                string
	DBDriver            string
	DBPath              string
	DatabaseURL         string
	LogLevel            string
	DecoderPath         string
	DecoderTimeout      time.Duration
	DecoderConcurrency  int
	UploadDir           string
	LocaleFile          string
	AnalysisWorkerCount int
	AnalysisQueueSize   int
}

// Load reads configuration from a .env file (if present) and environment variables,
// applying sensible defaults when values are missing or invalid.
func Load() Config {
	// Ignore error so the app still starts when .env is absent in production.
	_ = godotenv.Load()

	return Config{
		Addr:                envOr("ADDR", ":8080"),
		DBDriver:            strings.ToLower(envOr("DB_DRIVER", "sqlite")),
		DBPath:              envOr("DB_PATH", "file:stormstats.db"),
		DatabaseURL:         envOr("DATABASE_URL", ""),
		LogLevel:            envOr("LOG_LEVEL", "INFO"),
		DecoderPath:         envOr("DECODER_PATH", "stormdecode"),
		DecoderTimeout:      envDurationOr("DECODER_TIMEOUT", 60*time.Second),
		DecoderConcurrency:  envIntOr("DECODER_CONCURRENCY", 4),
		UploadDir:           envOr("UPLOAD_DIR", os.TempDir()),
		LocaleFile:          envOr("LOCALE_FILE", ""),
		AnalysisWorkerCount: envIntOr("ANALYSIS_WORKER_COUNT", 2),
		AnalysisQueueSize:   envIntOr("ANALYSIS_QUEUE_SIZE", 32),
	}
}

// Validate checks every setting and reports all problems at once.
func (c Config) Validate() error {
	var err error
	if c.Addr == "" {
		err = multierr.Append(err, fmt.Errorf("ADDR cannot be empty"))
	}
	switch c.DBDriver {
	case "sqlite":
		if c.DBPath == "" {
			err = multierr.Append(err, fmt.Errorf("DB_PATH cannot be empty"))
		}
	case "postgres":
		if c.DatabaseURL == "" {
			err = multierr.Append(err, fmt.Errorf("DATABASE_URL cannot be empty when DB_DRIVER=postgres"))
		}
	default:
		err = multierr.Append(err, fmt.Errorf("DB_DRIVER must be sqlite or postgres, got %q", c.DBDriver))
	}
	switch strings.ToUpper(c.LogLevel) {
	case "DEBUG", "INFO", "WARN", "WARNING", "ERROR":
	default:
		err = multierr.Append(err, fmt.Errorf("LOG_LEVEL must be one of DEBUG, INFO, WARN, ERROR, got %q", c.LogLevel))
	}
	if c.DecoderPath == "" {
		err = multierr.Append(err, fmt.Errorf("DECODER_PATH cannot be empty"))
	}
	if c.DecoderTimeout <= 0 {
		err = multierr.Append(err, fmt.Errorf("DECODER_TIMEOUT must be positive, got %s", c.DecoderTimeout))
	}
	if c.DecoderConcurrency < 1 || c.DecoderConcurrency > 64 {
		err = multierr.Append(err, fmt.Errorf("DECODER_CONCURRENCY must be between 1 and 64, got %d", c.DecoderConcurrency))
	}
	if c.UploadDir == "" {
		err = multierr.Append(err, fmt.Errorf("UPLOAD_DIR cannot be empty"))
	}
	if c.AnalysisWorkerCount < 1 {
		err = multierr.Append(err, fmt.Errorf("ANALYSIS_WORKER_COUNT must be at least 1, got %d", c.AnalysisWorkerCount))
	}
	if c.AnalysisQueueSize < 1 {
		err = multierr.Append(err, fmt.Errorf("ANALYSIS_QUEUE_SIZE must be at least 1, got %d", c.AnalysisQueueSize))
	}
	return err
}

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func envIntOr(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
		log.Printf("invalid value for %s=%q, using default %d", key, v, def)
	}
	return def
}

func envDurationOr(key string, def time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
		log.Printf("invalid value for %s=%q, using default %s", key, v, def)
	}
	return def
}
