package sqlite

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"path/filepath"
	"testing"
	"time"

	"scholarvault/internal/domain"
	"scholarvault/internal/domain/models/library"
)

func openTestRepo(t *testing.T) *SnapshotRepository {
	t.Helper()
	repo, err := Open(context.Background(), filepath.Join(t.TempDir(), "cache", "library.db"),
		slog.New(slog.NewTextHandler(io.Discard, nil)))
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	t.Cleanup(func() { repo.Close() })
	return repo
}

func testSnapshot(userID string) *library.Snapshot {
	at := time.Date(2024, 5, 1, 12, 30, 0, 123456789, time.UTC)
	parent := "c1"
	year := 2017
	doi := "10.48550/arXiv.1706.03762"
	return &library.Snapshot{
		UserID: userID,
		Collections: []library.Collection{
			{ID: "c2", UserID: userID, Name: "Transformers", ParentID: &parent, CreatedAt: at, UpdatedAt: at},
			{ID: "c1", UserID: userID, Name: "NLP", CreatedAt: at, UpdatedAt: at.Add(time.Hour)},
		},
		Documents: []library.Document{
			{ID: "d2", UserID: userID, Title: "BERT", CreatedAt: at, UpdatedAt: at},
			{ID: "d1", UserID: userID, Title: "Attention Is All You Need", Authors: []string{"Vaswani", "Shazeer"},
				Year: &year, DOI: &doi, Keywords: []string{"attention"}, CreatedAt: at, UpdatedAt: at},
		},
		Memberships: []library.Membership{
			{CollectionID: "c2", DocumentID: "d1"},
			{CollectionID: "c2", DocumentID: "d2"},
		},
		SyncedAt: at,
	}
}

func TestSnapshotRepository_RoundTrip(t *testing.T) {
	repo := openTestRepo(t)
	ctx := context.Background()
	want := testSnapshot("user-1")

	if err := repo.Save(ctx, want); err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	got, err := repo.Load(ctx, "user-1")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if !got.SyncedAt.Equal(want.SyncedAt) {
		t.Errorf("synced_at = %v, want %v", got.SyncedAt, want.SyncedAt)
	}
	if len(got.Collections) != 2 || got.Collections[0].ID != "c2" || got.Collections[1].ID != "c1" {
		t.Fatalf("collection order not preserved: %+v", got.Collections)
	}
	if got.Collections[0].ParentID == nil || *got.Collections[0].ParentID != "c1" || got.Collections[1].ParentID != nil {
		t.Errorf("parent ids not preserved")
	}
	if !got.Collections[1].UpdatedAt.Equal(want.Collections[1].UpdatedAt) {
		t.Errorf("updated_at = %v", got.Collections[1].UpdatedAt)
	}
	if len(got.Documents) != 2 || got.Documents[0].ID != "d2" {
		t.Fatalf("document order not preserved: %+v", got.Documents)
	}
	d1 := got.Documents[1]
	if *d1.Year != 2017 || *d1.DOI != "10.48550/arXiv.1706.03762" || len(d1.Authors) != 2 || d1.Journal != nil {
		t.Errorf("document metadata not preserved: %+v", d1)
	}
	if len(got.Memberships) != 2 {
		t.Errorf("memberships = %+v", got.Memberships)
	}
}

func TestSnapshotRepository_SaveReplaces(t *testing.T) {
	repo := openTestRepo(t)
	ctx := context.Background()

	if err := repo.Save(ctx, testSnapshot("user-1")); err != nil {
		t.Fatal(err)
	}
	if err := repo.Save(ctx, testSnapshot("user-2")); err != nil {
		t.Fatal(err)
	}

	smaller := testSnapshot("user-1")
	smaller.Collections = smaller.Collections[1:]
	smaller.Memberships = nil
	if err := repo.Save(ctx, smaller); err != nil {
		t.Fatalf("second Save failed: %v", err)
	}

	got, err := repo.Load(ctx, "user-1")
	if err != nil {
		t.Fatal(err)
	}
	if len(got.Collections) != 1 || len(got.Memberships) != 0 {
		t.Errorf("stale rows survived: %d collections, %d memberships", len(got.Collections), len(got.Memberships))
	}

	other, err := repo.Load(ctx, "user-2")
	if err != nil || len(other.Collections) != 2 {
		t.Errorf("other user's cache affected: %v", err)
	}
}

func TestSnapshotRepository_NotFoundAndDelete(t *testing.T) {
	repo := openTestRepo(t)
	ctx := context.Background()

	if _, err := repo.Load(ctx, "nobody"); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}

	if err := repo.Save(ctx, testSnapshot("user-1")); err != nil {
		t.Fatal(err)
	}
	if err := repo.Delete(ctx, "user-1"); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if _, err := repo.Load(ctx, "user-1"); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("expected ErrNotFound after delete, got %v", err)
	}
	if err := repo.Delete(ctx, "user-1"); err != nil {
		t.Errorf("deleting nothing should succeed, got %v", err)
	}
}
