// Package bootstrap provides dependency initialization for the Moodify client.
package bootstrap

import (
	"fmt"
	"log/slog"

	"github.com/moodify-app/moodify/internal/api"
	"github.com/moodify-app/moodify/internal/config"
	"github.com/moodify-app/moodify/internal/preview"
	"github.com/moodify-app/moodify/internal/session"
	"github.com/moodify-app/moodify/internal/storage"
)

// Dependencies holds all initialized dependencies for the CLI.
type Dependencies struct {
	Client  *api.HTTPClient
	Storage storage.Storage

	cfg    *config.Config
	logger *slog.Logger
}

// NewDependencies creates and initializes all dependencies for the application.
func NewDependencies(cfg *config.Config, logger *slog.Logger) (*Dependencies, error) {
	if logger == nil {
		logger = slog.Default()
	}

	store, err := initStorage(cfg, logger)
	if err != nil {
		return nil, err
	}

	client, err := api.NewClient(cfg.APIURL,
		api.WithTimeout(cfg.Timeout),
		api.WithMaxRetries(cfg.MaxRetries),
		api.WithLogger(logger),
	)
	if err != nil {
		return nil, fmt.Errorf("create API client: %w", err)
	}

	return &Dependencies{
		Client:  client,
		Storage: store,
		cfg:     cfg,
		logger:  logger,
	}, nil
}

// NewSession creates a session. A nil out disables preview playback.
func (d *Dependencies) NewSession(out preview.Output, alerter session.Alerter) (*session.Session, error) {
	opts := []session.Option{
		session.WithLogger(d.logger),
		session.WithAlerter(alerter),
	}
	if out != nil {
		mixer, err := preview.NewMixer(out, d.logger)
		if err != nil {
			return nil, err
		}
		opts = append(opts, session.WithMixer(mixer))
	}
	return session.New(d.Client, d.Storage, opts...)
}

// initStorage creates the appropriate storage backend based on configuration.
func initStorage(cfg *config.Config, logger *slog.Logger) (storage.Storage, error) {
	if cfg.S3Enabled() {
		s3Cfg := storage.S3Config{
			Bucket:          cfg.S3Bucket,
			Region:          cfg.S3Region,
			Endpoint:        cfg.S3Endpoint,
			AccessKeyID:     cfg.AWSAccessKeyID,
			SecretAccessKey: cfg.AWSSecretAccessKey,
			ShareTTL:        cfg.ShareURLTTL,
		}
		s3Store, err := storage.NewS3Storage(cfg.TempDir, s3Cfg)
		if err != nil {
			return nil, fmt.Errorf("create S3 storage: %w", err)
		}
		logger.Debug("S3 storage configured",
			slog.String("bucket", cfg.S3Bucket),
			slog.String("region", cfg.S3Region),
			slog.Duration("share_ttl", cfg.ShareURLTTL),
		)
		return s3Store, nil
	}

	localStore, err := storage.NewLocalStorage(cfg.TempDir)
	if err != nil {
		return nil, fmt.Errorf("create local storage: %w", err)
	}
	logger.Debug("local storage configured",
		slog.String("temp_dir", cfg.TempDir),
	)
	return localStore, nil
}
