// Package repository selects the snapshot cache backend from configuration.
package repository

import (
	"context"
	"log/slog"

	"scholarvault/internal/config"
	"scholarvault/internal/domain"
	"scholarvault/internal/domain/models/library"
	"scholarvault/internal/domain/repositories"
	"scholarvault/internal/repository/postgres"
	"scholarvault/internal/repository/sqlite"
)

// OpenSnapshotRepository returns the cache configured by CACHE_DATABASE_URL:
// "off" disables it, a postgres URL selects PostgreSQL, anything else uses
// the SQLite file under the ScholarVault home.
func OpenSnapshotRepository(ctx context.Context, cfg *config.Config, logger *slog.Logger) (repositories.SnapshotRepository, error) {
	switch {
	case cfg.CacheDisabled():
		logger.Debug("snapshot cache disabled")
		return DisabledCache{}, nil
	case cfg.UsesPostgresCache():
		repo, err := postgres.Open(ctx, cfg.CacheDatabaseURL, cfg.TablePrefix, logger)
		if err != nil {
			return nil, err
		}
		return repo, nil
	default:
		path := cfg.CachePath()
		if cfg.CacheDatabaseURL != "" {
			path = cfg.CacheDatabaseURL
		}
		repo, err := sqlite.Open(ctx, path, logger)
		if err != nil {
			return nil, err
		}
		return repo, nil
	}
}

// DisabledCache stores nothing and never finds anything
type DisabledCache struct{}

func (DisabledCache) Save(context.Context, *library.Snapshot) error { return nil }

func (DisabledCache) Load(_ context.Context, userID string) (*library.Snapshot, error) {
	return nil, &domain.NotFoundError{ResourceType: "cached library", ID: userID}
}

func (DisabledCache) Delete(context.Context, string) error { return nil }

func (DisabledCache) Close() error { return nil }
