package repositories

import (
	"context"

	"scholarvault/internal/domain/models/library"
)

// SnapshotRepository persists the last synced library of each user so the
// CLI can render without reaching the API.
type SnapshotRepository interface {
	// Save replaces everything stored for snap.UserID
	Save(ctx context.Context, snap *library.Snapshot) error

	// Load returns domain.ErrNotFound when nothing is cached for the user
	Load(ctx context.Context, userID string) (*library.Snapshot, error)

	// Delete drops the user's cached library; deleting nothing is not an error
	Delete(ctx context.Context, userID string) error

	Close() error
}
