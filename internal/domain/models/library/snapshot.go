package library

import "time"

// Snapshot is a full copy of one user's library, the unit the cache
// persists and the export command writes.
type Snapshot struct {
	UserID      string       `json:"user_id" yaml:"user_id"`
	Collections []Collection `json:"collections" yaml:"collections"`
	Documents   []Document   `json:"documents" yaml:"documents"`
	Memberships []Membership `json:"memberships" yaml:"memberships"`
	SyncedAt    time.Time    `json:"synced_at" yaml:"synced_at"`
}
