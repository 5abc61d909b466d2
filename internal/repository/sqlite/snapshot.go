// Package sqlite caches synced libraries in a local SQLite file.
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"scholarvault/internal/domain"
	"scholarvault/internal/domain/models/library"

	_ "modernc.org/sqlite"
)

var migrations = []string{
	`CREATE TABLE IF NOT EXISTS sync_state (
		user_id   TEXT PRIMARY KEY,
		synced_at TEXT NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS collections (
		user_id    TEXT NOT NULL,
		id         TEXT NOT NULL,
		name       TEXT NOT NULL,
		parent_id  TEXT,
		position   INTEGER NOT NULL,
		created_at TEXT NOT NULL,
		updated_at TEXT NOT NULL,
		PRIMARY KEY (user_id, id)
	)`,
	`CREATE TABLE IF NOT EXISTS documents (
		user_id  TEXT NOT NULL,
		id       TEXT NOT NULL,
		position INTEGER NOT NULL,
		payload  TEXT NOT NULL,
		PRIMARY KEY (user_id, id)
	)`,
	`CREATE TABLE IF NOT EXISTS memberships (
		user_id       TEXT NOT NULL,
		collection_id TEXT NOT NULL,
		document_id   TEXT NOT NULL,
		PRIMARY KEY (user_id, collection_id, document_id)
	)`,
}

// SnapshotRepository implements repositories.SnapshotRepository on SQLite
type SnapshotRepository struct {
	db     *sql.DB
	logger *slog.Logger
}

// Open opens or creates the cache database at path
func Open(ctx context.Context, path string, logger *slog.Logger) (*SnapshotRepository, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return nil, fmt.Errorf("create cache dir: %w", err)
	}

	dsn := "file:" + path + "?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open cache: %w", err)
	}
	// One writer at a time; SQLite serialises anyway
	db.SetMaxOpenConns(1)

	for _, stmt := range migrations {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			db.Close()
			return nil, fmt.Errorf("create cache schema: %w", err)
		}
	}

	logger.Debug("snapshot cache opened", "path", path)
	return &SnapshotRepository{db: db, logger: logger}, nil
}

// Save replaces the user's cached library in one transaction
func (r *SnapshotRepository) Save(ctx context.Context, snap *library.Snapshot) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	if err := deleteUser(ctx, tx, snap.UserID); err != nil {
		return err
	}

	if _, err := tx.ExecContext(ctx,
		`INSERT INTO sync_state (user_id, synced_at) VALUES (?, ?)`,
		snap.UserID, formatTime(snap.SyncedAt),
	); err != nil {
		return fmt.Errorf("save sync state: %w", err)
	}

	insertCollection, err := tx.PrepareContext(ctx, `
		INSERT INTO collections (user_id, id, name, parent_id, position, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("prepare collections: %w", err)
	}
	defer insertCollection.Close()
	for i, c := range snap.Collections {
		if _, err := insertCollection.ExecContext(ctx,
			snap.UserID, c.ID, c.Name, nullString(c.ParentID), i, formatTime(c.CreatedAt), formatTime(c.UpdatedAt),
		); err != nil {
			return fmt.Errorf("save collection %s: %w", c.ID, err)
		}
	}

	insertDocument, err := tx.PrepareContext(ctx,
		`INSERT INTO documents (user_id, id, position, payload) VALUES (?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("prepare documents: %w", err)
	}
	defer insertDocument.Close()
	for i, d := range snap.Documents {
		payload, err := json.Marshal(d)
		if err != nil {
			return fmt.Errorf("encode document %s: %w", d.ID, err)
		}
		if _, err := insertDocument.ExecContext(ctx, snap.UserID, d.ID, i, string(payload)); err != nil {
			return fmt.Errorf("save document %s: %w", d.ID, err)
		}
	}

	insertMembership, err := tx.PrepareContext(ctx,
		`INSERT INTO memberships (user_id, collection_id, document_id) VALUES (?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("prepare memberships: %w", err)
	}
	defer insertMembership.Close()
	for _, m := range snap.Memberships {
		if _, err := insertMembership.ExecContext(ctx, snap.UserID, m.CollectionID, m.DocumentID); err != nil {
			return fmt.Errorf("save membership: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}

	r.logger.Debug("snapshot saved",
		"user_id", snap.UserID,
		"collections", len(snap.Collections),
		"documents", len(snap.Documents),
		"memberships", len(snap.Memberships),
	)
	return nil
}

// Load reads the user's cached library
func (r *SnapshotRepository) Load(ctx context.Context, userID string) (*library.Snapshot, error) {
	snap := &library.Snapshot{
		UserID:      userID,
		Collections: []library.Collection{},
		Documents:   []library.Document{},
		Memberships: []library.Membership{},
	}

	var syncedAt string
	err := r.db.QueryRowContext(ctx, `SELECT synced_at FROM sync_state WHERE user_id = ?`, userID).Scan(&syncedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, &domain.NotFoundError{ResourceType: "cached library", ID: userID}
	}
	if err != nil {
		return nil, fmt.Errorf("load sync state: %w", err)
	}
	if snap.SyncedAt, err = parseTime(syncedAt); err != nil {
		return nil, err
	}

	if err := r.loadCollections(ctx, snap); err != nil {
		return nil, err
	}
	if err := r.loadDocuments(ctx, snap); err != nil {
		return nil, err
	}
	if err := r.loadMemberships(ctx, snap); err != nil {
		return nil, err
	}
	return snap, nil
}

func (r *SnapshotRepository) loadCollections(ctx context.Context, snap *library.Snapshot) error {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, name, parent_id, created_at, updated_at
		FROM collections
		WHERE user_id = ?
		ORDER BY position`, snap.UserID)
	if err != nil {
		return fmt.Errorf("load collections: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		c := library.Collection{UserID: snap.UserID}
		var parentID sql.NullString
		var createdAt, updatedAt string
		if err := rows.Scan(&c.ID, &c.Name, &parentID, &createdAt, &updatedAt); err != nil {
			return fmt.Errorf("scan collection: %w", err)
		}
		if parentID.Valid {
			c.ParentID = &parentID.String
		}
		if c.CreatedAt, err = parseTime(createdAt); err != nil {
			return err
		}
		if c.UpdatedAt, err = parseTime(updatedAt); err != nil {
			return err
		}
		snap.Collections = append(snap.Collections, c)
	}
	return rows.Err()
}

func (r *SnapshotRepository) loadDocuments(ctx context.Context, snap *library.Snapshot) error {
	rows, err := r.db.QueryContext(ctx,
		`SELECT payload FROM documents WHERE user_id = ? ORDER BY position`, snap.UserID)
	if err != nil {
		return fmt.Errorf("load documents: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var payload string
		if err := rows.Scan(&payload); err != nil {
			return fmt.Errorf("scan document: %w", err)
		}
		var d library.Document
		if err := json.Unmarshal([]byte(payload), &d); err != nil {
			return fmt.Errorf("decode document: %w", err)
		}
		snap.Documents = append(snap.Documents, d)
	}
	return rows.Err()
}

func (r *SnapshotRepository) loadMemberships(ctx context.Context, snap *library.Snapshot) error {
	rows, err := r.db.QueryContext(ctx, `
		SELECT collection_id, document_id
		FROM memberships
		WHERE user_id = ?
		ORDER BY collection_id, document_id`, snap.UserID)
	if err != nil {
		return fmt.Errorf("load memberships: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var m library.Membership
		if err := rows.Scan(&m.CollectionID, &m.DocumentID); err != nil {
			return fmt.Errorf("scan membership: %w", err)
		}
		snap.Memberships = append(snap.Memberships, m)
	}
	return rows.Err()
}

// Delete drops the user's cached library
func (r *SnapshotRepository) Delete(ctx context.Context, userID string) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	if err := deleteUser(ctx, tx, userID); err != nil {
		return err
	}
	return tx.Commit()
}

func (r *SnapshotRepository) Close() error {
	return r.db.Close()
}

func deleteUser(ctx context.Context, tx *sql.Tx, userID string) error {
	for _, table := range []string{"memberships", "documents", "collections", "sync_state"} {
		if _, err := tx.ExecContext(ctx, "DELETE FROM "+table+" WHERE user_id = ?", userID); err != nil {
			return fmt.Errorf("clear %s: %w", table, err)
		}
	}
	return nil
}

func nullString(s *string) sql.NullString {
	if s == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *s, Valid: true}
}

func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}

func parseTime(s string) (time.Time, error) {
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse cached timestamp %q: %w", s, err)
	}
	return t, nil
}
