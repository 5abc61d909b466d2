package postgres

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"scholarvault/internal/domain"
	"scholarvault/internal/domain/models/library"
	"scholarvault/internal/domain/repositories"
)

// SnapshotRepository caches synced libraries in PostgreSQL
type SnapshotRepository struct {
	pool   *pgxpool.Pool
	tables *TableNames
	tm     repositories.TransactionManager
	logger *slog.Logger
}

// NewSnapshotRepository creates a repository over an existing pool
func NewSnapshotRepository(config *RepositoryConfig, tm repositories.TransactionManager) *SnapshotRepository {
	return &SnapshotRepository{
		pool:   config.Pool,
		tables: config.Tables,
		tm:     tm,
		logger: config.Logger,
	}
}

// Open connects, creates the schema if needed and returns the repository.
// The repository owns the pool; Close releases it.
func Open(ctx context.Context, databaseURL, tablePrefix string, logger *slog.Logger) (*SnapshotRepository, error) {
	pool, err := CreateConnectionPool(ctx, databaseURL)
	if err != nil {
		return nil, err
	}

	repo := NewSnapshotRepository(&RepositoryConfig{
		Pool:   pool,
		Tables: NewTableNames(tablePrefix),
		Logger: logger,
	}, NewTransactionManager(pool, logger))

	if err := repo.EnsureSchema(ctx); err != nil {
		pool.Close()
		return nil, err
	}
	return repo, nil
}

// EnsureSchema creates the cache tables if they do not exist
func (r *SnapshotRepository) EnsureSchema(ctx context.Context) error {
	statements := []string{
		fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS %s (
				user_id   TEXT PRIMARY KEY,
				synced_at TIMESTAMPTZ NOT NULL
			)`, r.tables.SyncState),
		fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS %s (
				user_id    TEXT NOT NULL,
				id         TEXT NOT NULL,
				name       TEXT NOT NULL,
				parent_id  TEXT,
				position   INTEGER NOT NULL,
				created_at TIMESTAMPTZ NOT NULL,
				updated_at TIMESTAMPTZ NOT NULL,
				PRIMARY KEY (user_id, id)
			)`, r.tables.Collections),
		fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS %s (
				user_id  TEXT NOT NULL,
				id       TEXT NOT NULL,
				position INTEGER NOT NULL,
				payload  JSONB NOT NULL,
				PRIMARY KEY (user_id, id)
			)`, r.tables.Documents),
		fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS %s (
				user_id       TEXT NOT NULL,
				collection_id TEXT NOT NULL,
				document_id   TEXT NOT NULL,
				PRIMARY KEY (user_id, collection_id, document_id)
			)`, r.tables.Memberships),
	}

	executor := GetExecutor(ctx, r.pool)
	for _, stmt := range statements {
		if _, err := executor.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("create cache schema: %w", err)
		}
	}
	return nil
}

// Save replaces the user's cached library in one transaction
func (r *SnapshotRepository) Save(ctx context.Context, snap *library.Snapshot) error {
	return r.tm.ExecTx(ctx, func(ctx context.Context) error {
		if err := r.delete(ctx, snap.UserID); err != nil {
			return err
		}

		executor := GetExecutor(ctx, r.pool)

		if _, err := executor.Exec(ctx,
			fmt.Sprintf(`INSERT INTO %s (user_id, synced_at) VALUES ($1, $2)`, r.tables.SyncState),
			snap.UserID, snap.SyncedAt,
		); err != nil {
			return fmt.Errorf("save sync state: %w", err)
		}

		_, err := executor.CopyFrom(ctx,
			pgx.Identifier{r.tables.Collections},
			[]string{"user_id", "id", "name", "parent_id", "position", "created_at", "updated_at"},
			pgx.CopyFromSlice(len(snap.Collections), func(i int) ([]any, error) {
				c := snap.Collections[i]
				return []any{snap.UserID, c.ID, c.Name, c.ParentID, i, c.CreatedAt, c.UpdatedAt}, nil
			}),
		)
		if err != nil {
			return fmt.Errorf("save collections: %w", err)
		}

		_, err = executor.CopyFrom(ctx,
			pgx.Identifier{r.tables.Documents},
			[]string{"user_id", "id", "position", "payload"},
			pgx.CopyFromSlice(len(snap.Documents), func(i int) ([]any, error) {
				payload, err := json.Marshal(snap.Documents[i])
				if err != nil {
					return nil, err
				}
				return []any{snap.UserID, snap.Documents[i].ID, i, payload}, nil
			}),
		)
		if err != nil {
			return fmt.Errorf("save documents: %w", err)
		}

		_, err = executor.CopyFrom(ctx,
			pgx.Identifier{r.tables.Memberships},
			[]string{"user_id", "collection_id", "document_id"},
			pgx.CopyFromSlice(len(snap.Memberships), func(i int) ([]any, error) {
				m := snap.Memberships[i]
				return []any{snap.UserID, m.CollectionID, m.DocumentID}, nil
			}),
		)
		if err != nil {
			return fmt.Errorf("save memberships: %w", err)
		}

		r.logger.Debug("snapshot saved",
			"user_id", snap.UserID,
			"collections", len(snap.Collections),
			"documents", len(snap.Documents),
			"memberships", len(snap.Memberships),
		)
		return nil
	})
}

// Load reads the user's cached library
func (r *SnapshotRepository) Load(ctx context.Context, userID string) (*library.Snapshot, error) {
	executor := GetExecutor(ctx, r.pool)
	snap := &library.Snapshot{UserID: userID}

	err := executor.QueryRow(ctx,
		fmt.Sprintf(`SELECT synced_at FROM %s WHERE user_id = $1`, r.tables.SyncState),
		userID,
	).Scan(&snap.SyncedAt)
	if IsPgNoRowsError(err) || IsPgUndefinedTableError(err) {
		return nil, &domain.NotFoundError{ResourceType: "cached library", ID: userID}
	}
	if err != nil {
		return nil, fmt.Errorf("load sync state: %w", err)
	}

	rows, err := executor.Query(ctx, fmt.Sprintf(`
		SELECT id, user_id, name, parent_id, created_at, updated_at
		FROM %s
		WHERE user_id = $1
		ORDER BY position
	`, r.tables.Collections), userID)
	if err != nil {
		return nil, fmt.Errorf("load collections: %w", err)
	}
	snap.Collections, err = pgx.CollectRows(rows, pgx.RowToStructByName[library.Collection])
	if err != nil {
		return nil, fmt.Errorf("scan collections: %w", err)
	}

	rows, err = executor.Query(ctx, fmt.Sprintf(`
		SELECT payload FROM %s WHERE user_id = $1 ORDER BY position
	`, r.tables.Documents), userID)
	if err != nil {
		return nil, fmt.Errorf("load documents: %w", err)
	}
	snap.Documents, err = pgx.CollectRows(rows, pgx.RowTo[library.Document])
	if err != nil {
		return nil, fmt.Errorf("scan documents: %w", err)
	}

	rows, err = executor.Query(ctx, fmt.Sprintf(`
		SELECT collection_id, document_id
		FROM %s
		WHERE user_id = $1
		ORDER BY collection_id, document_id
	`, r.tables.Memberships), userID)
	if err != nil {
		return nil, fmt.Errorf("load memberships: %w", err)
	}
	snap.Memberships, err = pgx.CollectRows(rows, pgx.RowToStructByName[library.Membership])
	if err != nil {
		return nil, fmt.Errorf("scan memberships: %w", err)
	}

	return snap, nil
}

// Delete drops the user's cached library
func (r *SnapshotRepository) Delete(ctx context.Context, userID string) error {
	return r.tm.ExecTx(ctx, func(ctx context.Context) error {
		return r.delete(ctx, userID)
	})
}

func (r *SnapshotRepository) delete(ctx context.Context, userID string) error {
	executor := GetExecutor(ctx, r.pool)
	for _, table := range []string{r.tables.Memberships, r.tables.Documents, r.tables.Collections, r.tables.SyncState} {
		if _, err := executor.Exec(ctx, fmt.Sprintf(`DELETE FROM %s WHERE user_id = $1`, table), userID); err != nil {
			return fmt.Errorf("clear %s: %w", table, err)
		}
	}
	return nil
}

// Close releases the pool
func (r *SnapshotRepository) Close() error {
	r.pool.Close()
	return nil
}
