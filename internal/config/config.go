// Package config provides configuration loading from environment variables.
package config

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/sethvargo/go-envconfig"
)

// Static errors for configuration validation.
var (
	// ErrAPIURLRequired is returned when MOODIFY_API_URL is empty.
	ErrAPIURLRequired = errors.New("config: MOODIFY_API_URL is required")
	// ErrInvalidTimeout is returned when MOODIFY_TIMEOUT is not positive.
	ErrInvalidTimeout = errors.New("config: MOODIFY_TIMEOUT must be positive")
	// ErrInvalidRetries is returned when MOODIFY_MAX_RETRIES is negative.
	ErrInvalidRetries = errors.New("config: MOODIFY_MAX_RETRIES must not be negative")
	// ErrInvalidWaveformSize is returned when the waveform dimensions are not positive.
	ErrInvalidWaveformSize = errors.New("config: WAVEFORM_WIDTH and WAVEFORM_HEIGHT must be positive")
	// ErrInvalidSampleRate is returned when PREVIEW_SAMPLE_RATE is not positive.
	ErrInvalidSampleRate = errors.New("config: PREVIEW_SAMPLE_RATE must be positive")
	// ErrInvalidShareTTL is returned when SHARE_URL_TTL is negative or longer
	// than a presigned URL may live.
	ErrInvalidShareTTL = errors.New("config: SHARE_URL_TTL must be between 0 and 168h")
)

// DefaultAPIURL is the hosted processing backend.
const DefaultAPIURL = "https://moodify-backend-app-8d6fcd4a2d68.herokuapp.com"

// MaxShareURLTTL is the longest expiry S3 accepts for a SigV4 presigned URL.
const MaxShareURLTTL = 7 * 24 * time.Hour

// Config holds all configuration for the application.
type Config struct {
	// Backend settings
	APIURL     string        `env:"MOODIFY_API_URL, default=https://moodify-backend-app-8d6fcd4a2d68.herokuapp.com" json:"api_url"`
	Timeout    time.Duration `env:"MOODIFY_TIMEOUT, default=120s" json:"timeout"`
	MaxRetries int           `env:"MOODIFY_MAX_RETRIES, default=0" json:"max_retries"`

	// Storage settings
	TempDir string `env:"TEMP_DIR, default=/tmp/moodify" json:"temp_dir"`

	// Rendering settings
	WaveformWidth     int `env:"WAVEFORM_WIDTH, default=800" json:"waveform_width"`
	WaveformHeight    int `env:"WAVEFORM_HEIGHT, default=120" json:"waveform_height"`
	PreviewSampleRate int `env:"PREVIEW_SAMPLE_RATE, default=44100" json:"preview_sample_rate"`

	// Optional S3 settings used for sharing
	S3Bucket           string        `env:"S3_BUCKET" json:"s3_bucket,omitempty"`
	S3Region           string        `env:"S3_REGION" json:"s3_region,omitempty"`
	S3Endpoint         string        `env:"S3_ENDPOINT" json:"s3_endpoint,omitempty"`
	AWSAccessKeyID     string        `env:"AWS_ACCESS_KEY_ID" json:"-"`     // Masked in JSON
	AWSSecretAccessKey string        `env:"AWS_SECRET_ACCESS_KEY" json:"-"` // Masked in JSON
	ShareURLTTL        time.Duration `env:"SHARE_URL_TTL, default=24h" json:"share_url_ttl"`

	// Logging settings
	LogFormat string `env:"LOG_FORMAT, default=text" json:"log_format"` // "json" or "text"
	LogLevel  string `env:"LOG_LEVEL, default=info" json:"log_level"`   // "debug", "info", "warn", "error"
}

// S3Enabled returns true if S3 configuration is provided.
func (c *Config) S3Enabled() bool {
	return c.S3Bucket != "" && c.S3Region != ""
}

// Load reads configuration from environment variables using go-envconfig
// and validates the result.
func Load() (*Config, error) {
	cfg := &Config{}

	if err := envconfig.Process(context.Background(), cfg); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks that the configuration values are usable.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.APIURL) == "" {
		return ErrAPIURLRequired
	}
	if c.Timeout <= 0 {
		return ErrInvalidTimeout
	}
	if c.MaxRetries < 0 {
		return ErrInvalidRetries
	}
	if c.WaveformWidth <= 0 || c.WaveformHeight <= 0 {
		return ErrInvalidWaveformSize
	}
	if c.PreviewSampleRate <= 0 {
		return ErrInvalidSampleRate
	}
	if c.ShareURLTTL < 0 || c.ShareURLTTL > MaxShareURLTTL {
		return fmt.Errorf("%w: got %s", ErrInvalidShareTTL, c.ShareURLTTL)
	}
	return nil
}

// NewLogger creates a structured logger based on the configuration.
// Logs go to stderr so that command output on stdout stays clean.
func (c *Config) NewLogger() *slog.Logger {
	return c.newLogger(os.Stderr)
}

func (c *Config) newLogger(w io.Writer) *slog.Logger {
	opts := &slog.HandlerOptions{Level: parseLogLevel(c.LogLevel)}

	var handler slog.Handler
	if strings.ToLower(c.LogFormat) == "json" {
		handler = slog.NewJSONHandler(w, opts)
	} else {
		handler = slog.NewTextHandler(w, opts)
	}

	return slog.New(handler)
}

// String returns a string representation of the config with sensitive values masked.
func (c *Config) String() string {
	return fmt.Sprintf(
		"Config{APIURL: %s, Timeout: %s, MaxRetries: %d, TempDir: %s, WaveformWidth: %d, WaveformHeight: %d, PreviewSampleRate: %d, S3Bucket: %s, S3Region: %s, LogFormat: %s, LogLevel: %s}",
		c.APIURL,
		c.Timeout,
		c.MaxRetries,
		c.TempDir,
		c.WaveformWidth,
		c.WaveformHeight,
		c.PreviewSampleRate,
		c.S3Bucket,
		c.S3Region,
		c.LogFormat,
		c.LogLevel,
	)
}

// parseLogLevel converts a string log level to slog.Level.
func parseLogLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
