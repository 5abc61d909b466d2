package library

import (
	"slices"
	"testing"

	models "scholarvault/internal/domain/models/library"
)

func TestIndex_AddRemoveIdempotent(t *testing.T) {
	x := NewIndex()

	if !x.Add("X", "D1") {
		t.Error("first Add should report a change")
	}
	once := x.All()
	if x.Add("X", "D1") {
		t.Error("second Add should be a no-op")
	}
	if !slices.Equal(once, x.All()) {
		t.Errorf("state after double add = %v, want %v", x.All(), once)
	}

	if !x.Remove("X", "D1") {
		t.Error("first Remove should report a change")
	}
	if x.Remove("X", "D1") {
		t.Error("second Remove should be a no-op")
	}
	if x.Len() != 0 {
		t.Errorf("Len = %d, want 0", x.Len())
	}
	if x.Remove("never", "there") {
		t.Error("removing a missing pair should be a no-op")
	}
}

func TestIndex_Lookups(t *testing.T) {
	x := NewIndex()
	x.Add("X", "D2")
	x.Add("X", "D1")
	x.Add("Y", "D1")

	if got := x.DocumentsIn("X"); !slices.Equal(got, []string{"D1", "D2"}) {
		t.Errorf("DocumentsIn(X) = %v", got)
	}
	if got := x.CollectionsFor("D1"); !slices.Equal(got, []string{"X", "Y"}) {
		t.Errorf("CollectionsFor(D1) = %v", got)
	}

	empty := x.DocumentsIn("unknown")
	if empty == nil || len(empty) != 0 {
		t.Errorf("DocumentsIn(unknown) = %#v, want empty non-nil slice", empty)
	}
	if !x.Contains("Y", "D1") || x.Contains("Y", "D2") {
		t.Error("Contains returned wrong result")
	}
}

func TestIndex_PurgeDocument(t *testing.T) {
	x := NewIndex()
	x.Add("X", "D1")
	x.Add("Y", "D1")
	x.Add("Y", "D2")

	if n := x.PurgeDocument("D1"); n != 2 {
		t.Errorf("PurgeDocument purged %d, want 2", n)
	}
	if slices.Contains(x.DocumentsIn("X"), "D1") || slices.Contains(x.DocumentsIn("Y"), "D1") {
		t.Error("D1 still listed after purge")
	}
	if got := x.CollectionsFor("D1"); len(got) != 0 {
		t.Errorf("CollectionsFor(D1) = %v, want empty", got)
	}
	if got := x.DocumentsIn("Y"); !slices.Equal(got, []string{"D2"}) {
		t.Errorf("unrelated membership lost: %v", got)
	}
}

func TestIndex_PurgeCollections(t *testing.T) {
	x := NewIndex()
	x.Add("A", "D1")
	x.Add("B", "D1")
	x.Add("B", "D2")
	x.Add("C", "D3")

	if n := x.PurgeCollections("A", "B"); n != 3 {
		t.Errorf("PurgeCollections purged %d, want 3", n)
	}
	want := []models.Membership{{CollectionID: "C", DocumentID: "D3"}}
	if got := x.All(); !slices.Equal(got, want) {
		t.Errorf("All = %v, want %v", got, want)
	}
	if got := x.CollectionsFor("D1"); len(got) != 0 {
		t.Errorf("CollectionsFor(D1) = %v, want empty", got)
	}
}

func TestIndex_ReplaceCollection(t *testing.T) {
	x := NewIndex()
	x.Add("A", "D1")
	x.Add("A", "D2")
	x.Add("B", "D2")

	x.ReplaceCollection("A", []string{"D2", "D3"})

	if got := x.DocumentsIn("A"); !slices.Equal(got, []string{"D2", "D3"}) {
		t.Errorf("DocumentsIn(A) = %v", got)
	}
	if got := x.CollectionsFor("D1"); len(got) != 0 {
		t.Errorf("D1 should have no collections, got %v", got)
	}
	if got := x.CollectionsFor("D2"); !slices.Equal(got, []string{"A", "B"}) {
		t.Errorf("CollectionsFor(D2) = %v", got)
	}
}
