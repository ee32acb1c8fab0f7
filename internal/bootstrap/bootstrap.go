// Package bootstrap provides dependency initialization for the asset API.
package bootstrap

import (
	"fmt"
	"log/slog"

	"github.com/narrapro/asset-api/internal/asset"
	"github.com/narrapro/asset-api/internal/config"
	"github.com/narrapro/asset-api/internal/storage"
)

// Dependencies holds all initialized dependencies for the HTTP server.
type Dependencies struct {
	AssetService *asset.Service
}

// NewDependencies creates and initializes all dependencies for the application.
func NewDependencies(cfg *config.Config, logger *slog.Logger) (*Dependencies, error) {
	backend, err := initBackend(cfg, logger)
	if err != nil {
		return nil, err
	}

	selector := storage.NewSelector(backend)
	repo := asset.NewMemoryRepository()
	svc := asset.NewService(repo, selector, logger)

	return &Dependencies{
		AssetService: svc,
	}, nil
}

// initBackend creates the storage backend selected by configuration.
// The backend is resolved exactly once per process; callers receive it
// through the selector and never re-resolve it per request.
func initBackend(cfg *config.Config, logger *slog.Logger) (storage.Backend, error) {
	if cfg.SupabaseEnabled() {
		remote, err := storage.NewSupabaseBackend(
			cfg.SupabaseURL,
			cfg.SupabaseKey,
			cfg.SupabaseBucket,
			storage.WithLogger(logger),
		)
		if err != nil {
			return nil, fmt.Errorf("create supabase backend: %w", err)
		}
		logger.Info("supabase storage configured",
			slog.String("url", cfg.SupabaseURL),
			slog.String("bucket", cfg.SupabaseBucket),
		)
		return remote, nil
	}

	local, err := storage.NewLocalBackend(cfg.LocalStorageRoot, cfg.LocalPublicBaseURL)
	if err != nil {
		return nil, fmt.Errorf("create local backend: %w", err)
	}
	logger.Info("local storage configured",
		slog.String("root", local.Root()),
		slog.String("public_base_url", cfg.LocalPublicBaseURL),
	)
	return local, nil
}
