package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/hylla/taskboard/internal/adapters/storage/fixture"
	"github.com/hylla/taskboard/internal/adapters/storage/remote"
	"github.com/hylla/taskboard/internal/adapters/storage/sqlite"
	"github.com/hylla/taskboard/internal/app"
	"github.com/hylla/taskboard/internal/config"
	"github.com/hylla/taskboard/internal/platform"
)

// repository is one opened record backend.
type repository interface {
	app.Repository
	Close() error
}

// credentialStore holds the remote public key between runs.
type credentialStore interface {
	Get(key string) (string, error)
	Set(key, value string) error
	Delete(key string) error
}

// credentialsFactory opens the credential store for the resolved paths.
var credentialsFactory = func(paths platform.Paths) credentialStore {
	return remote.Keyring{FileDir: paths.KeyringDir}
}

// openRepository opens the configured backend. The returned probe reports
// whether the backend can currently serve requests.
func openRepository(cfg config.Config, paths platform.Paths, logger *runtimeLogger) (repository, func(context.Context) error, error) {
	switch cfg.Storage.Backend {
	case config.BackendFixture:
		latency, err := cfg.FixtureLatency()
		if err != nil {
			return nil, nil, err
		}
		seedPath := strings.TrimSpace(cfg.Fixture.SeedPath)
		if seedPath == "" && fileExists(paths.SeedPath) {
			seedPath = paths.SeedPath
		}
		logger.Info("opening fixture store", "seed_path", seedPath, "latency", latency)
		repo, err := fixture.Open(fixture.Options{Latency: latency, Path: seedPath})
		if err != nil {
			return nil, nil, fmt.Errorf("open fixture store: %w", err)
		}
		return repo, nil, nil

	case config.BackendRemote:
		timeout, err := cfg.RemoteTimeout()
		if err != nil {
			return nil, nil, err
		}
		repo := remote.NewFromEnv(remote.Config{
			Endpoint:  cfg.Remote.Endpoint,
			ProjectID: cfg.Remote.ProjectID,
			Timeout:   timeout,
		}, credentialsFactory(paths))
		if err := repo.Ready(); err != nil {
			logger.Warn("remote store not configured", "err", err)
		} else {
			logger.Info("remote store ready", "endpoint", repo.Endpoint())
		}
		return repo, func(context.Context) error { return repo.Ready() }, nil

	default:
		logger.Info("opening sqlite store", "db_path", cfg.Database.Path)
		repo, err := sqlite.Open(cfg.Database.Path)
		if err != nil {
			logger.Error("sqlite open failed", "db_path", cfg.Database.Path, "err", err)
			return nil, nil, fmt.Errorf("open sqlite store: %w", err)
		}
		logger.Info("sqlite store ready", "db_path", cfg.Database.Path)
		return repo, nil, nil
	}
}

func fileExists(path string) bool {
	if strings.TrimSpace(path) == "" {
		return false
	}
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}
