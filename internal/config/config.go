package config

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strconv"
	"time"
)

type Config struct {
	InputPath    string
	OutputPath   string
	Threshold    int
	MatchStatus  int
	MatchMessage string
	LogLevel     string
	LogFormat    string
	S3           S3Config
	Postgres     PostgresConfig
	Archive      ArchiveConfig
}

type S3Config struct {
	Bucket    string
	Region    string
	Endpoint  string
	AccessKey string
	SecretKey string
	Prefix    string
}

// Enabled reports whether reports should be uploaded after each run.
func (c S3Config) Enabled() bool {
	return c.Bucket != ""
}

type PostgresConfig struct {
	User     string
	Password string
	Host     string
	Port     string
	Database string
	SSLMode  string
}

// Enabled reports whether parsed records should be archived.
func (c PostgresConfig) Enabled() bool {
	return c.Host != ""
}

type ArchiveConfig struct {
	BatchSize     int
	BatchesPerSec float64
	Retention     time.Duration
}

const (
	DefaultInputPath    = "sample.log"
	DefaultOutputPath   = "log_analysis_output.csv"
	DefaultThreshold    = 5
	DefaultMatchStatus  = 401
	DefaultMatchMessage = "Invalid Credentials"
)

// ErrHelp is returned by Load when -h or -help was requested.
var ErrHelp = flag.ErrHelp

// Load resolves the configuration from defaults, then the environment, then
// args. The first positional argument, if any, names the input file.
func Load(args []string, usageOut io.Writer) (*Config, error) {
	cfg := &Config{
		InputPath:    getEnv("LOGANALYZER_INPUT", DefaultInputPath),
		OutputPath:   getEnv("LOGANALYZER_OUTPUT", DefaultOutputPath),
		Threshold:    getEnvInt("LOGANALYZER_THRESHOLD", DefaultThreshold),
		MatchStatus:  getEnvInt("LOGANALYZER_MATCH_STATUS", DefaultMatchStatus),
		MatchMessage: getEnv("LOGANALYZER_MATCH_MESSAGE", DefaultMatchMessage),
		LogLevel:     getEnv("LOG_LEVEL", "info"),
		LogFormat:    getEnv("LOG_FORMAT", "text"),
		S3: S3Config{
			Bucket:    getEnv("S3_BUCKET", ""),
			Region:    getEnv("AWS_REGION", "us-east-1"),
			Endpoint:  getEnv("S3_ENDPOINT", ""),
			AccessKey: getEnv("AWS_ACCESS_KEY_ID", ""),
			SecretKey: getEnv("AWS_SECRET_ACCESS_KEY", ""),
			Prefix:    getEnv("S3_PREFIX", "log-analysis"),
		},
		Postgres: PostgresConfig{
			User:     getEnv("POSTGRES_USER", "loganalyzer"),
			Password: getEnv("POSTGRES_PASSWORD", ""),
			Host:     getEnv("POSTGRES_HOST", ""),
			Port:     getEnv("POSTGRES_PORT", "5432"),
			Database: getEnv("POSTGRES_DATABASE", "loganalyzer"),
			SSLMode:  getEnv("POSTGRES_SSL_MODE", "disable"),
		},
		Archive: ArchiveConfig{
			BatchSize:     getEnvInt("ARCHIVE_BATCH_SIZE", 500),
			BatchesPerSec: getEnvFloat("ARCHIVE_BATCHES_PER_SECOND", 20),
			Retention:     getEnvDuration("ARCHIVE_RETENTION", 0),
		},
	}

	fs := flag.NewFlagSet("loganalyzer", flag.ContinueOnError)
	fs.SetOutput(usageOut)
	fs.Usage = func() {
		fmt.Fprintf(usageOut, "Usage: loganalyzer [options] [access.log]\n\nOptions:\n")
		fs.PrintDefaults()
	}
	fs.StringVar(&cfg.InputPath, "input", cfg.InputPath, "access log to analyze (.gz and .zst are decompressed)")
	fs.StringVar(&cfg.OutputPath, "output", cfg.OutputPath, "CSV summary file, overwritten on every run")
	fs.IntVar(&cfg.Threshold, "threshold", cfg.Threshold, "report IPs with more than this many failed attempts")
	fs.IntVar(&cfg.MatchStatus, "status", cfg.MatchStatus, "status code that counts as a failed attempt")
	fs.StringVar(&cfg.MatchMessage, "message", cfg.MatchMessage, "trailing message that counts as a failed attempt")
	fs.StringVar(&cfg.LogLevel, "log-level", cfg.LogLevel, "debug, info, warn or error")

	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	if fs.NArg() > 1 {
		return nil, fmt.Errorf("expected at most one input file, got %d", fs.NArg())
	}
	if fs.NArg() == 1 {
		cfg.InputPath = fs.Arg(0)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	if c.InputPath == "" {
		return errors.New("input path must not be empty")
	}
	if c.OutputPath == "" {
		return errors.New("output path must not be empty")
	}
	if c.MatchStatus < 100 || c.MatchStatus > 999 {
		return fmt.Errorf("match status must be a 3-digit code: %d", c.MatchStatus)
	}

	validLevels := map[string]bool{
		"debug": true, "info": true, "warn": true, "error": true,
	}
	if !validLevels[c.LogLevel] {
		return fmt.Errorf("invalid log level: %s", c.LogLevel)
	}

	validFormats := map[string]bool{"text": true, "json": true}
	if !validFormats[c.LogFormat] {
		return fmt.Errorf("invalid log format: %s", c.LogFormat)
	}

	if c.S3.Enabled() && c.S3.Region == "" {
		return errors.New("AWS_REGION is required when S3_BUCKET is set")
	}

	if c.Postgres.Enabled() {
		if c.Archive.BatchSize < 1 {
			return fmt.Errorf("archive batch size must be positive: %d", c.Archive.BatchSize)
		}
		if c.Archive.BatchesPerSec <= 0 {
			return fmt.Errorf("archive batch rate must be positive: %g", c.Archive.BatchesPerSec)
		}
		if c.Archive.Retention < 0 {
			return fmt.Errorf("archive retention must not be negative: %s", c.Archive.Retention)
		}
	}

	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if f, err := strconv.ParseFloat(value, 64); err == nil {
			return f
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}
