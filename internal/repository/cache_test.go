package repository

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"path/filepath"
	"testing"

	"scholarvault/internal/config"
	"scholarvault/internal/domain"
	"scholarvault/internal/repository/sqlite"
)

func TestOpenSnapshotRepository(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	ctx := context.Background()

	t.Run("off", func(t *testing.T) {
		repo, err := OpenSnapshotRepository(ctx, &config.Config{CacheDatabaseURL: "off"}, logger)
		if err != nil {
			t.Fatal(err)
		}
		if _, ok := repo.(DisabledCache); !ok {
			t.Fatalf("got %T, want DisabledCache", repo)
		}
		if _, err := repo.Load(ctx, "u"); !errors.Is(err, domain.ErrNotFound) {
			t.Errorf("expected ErrNotFound, got %v", err)
		}
	})

	t.Run("default sqlite under home", func(t *testing.T) {
		home := t.TempDir()
		repo, err := OpenSnapshotRepository(ctx, &config.Config{Home: home}, logger)
		if err != nil {
			t.Fatal(err)
		}
		defer repo.Close()
		if _, ok := repo.(*sqlite.SnapshotRepository); !ok {
			t.Fatalf("got %T, want sqlite repository", repo)
		}
	})

	t.Run("explicit sqlite path", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "other.db")
		repo, err := OpenSnapshotRepository(ctx, &config.Config{CacheDatabaseURL: path}, logger)
		if err != nil {
			t.Fatal(err)
		}
		repo.Close()
	})
}
