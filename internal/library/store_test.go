package library

import (
	"errors"
	"slices"
	"testing"
	"time"

	"scholarvault/internal/domain"
	models "scholarvault/internal/domain/models/library"
)

var (
	createdAt = time.Date(2025, 1, 10, 9, 0, 0, 0, time.UTC)
	laterAt   = time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
)

func strPtr(s string) *string { return &s }

func coll(id, name string, parentID *string) models.Collection {
	return models.Collection{
		ID:        id,
		UserID:    "user-1",
		Name:      name,
		ParentID:  parentID,
		CreatedAt: createdAt,
		UpdatedAt: createdAt,
	}
}

func newTestStore(t *testing.T, collections ...models.Collection) *Store {
	t.Helper()
	s := NewStore(WithClock(func() time.Time { return laterAt }))
	for _, c := range collections {
		if err := s.Add(c); err != nil {
			t.Fatalf("Add(%s) failed: %v", c.ID, err)
		}
	}
	return s
}

// abcStore builds A (root) > B > C
func abcStore(t *testing.T) *Store {
	return newTestStore(t,
		coll("A", "Alpha", nil),
		coll("B", "Beta", strPtr("A")),
		coll("C", "Gamma", strPtr("B")),
	)
}

func collectionIDs(cs []models.Collection) []string {
	ids := make([]string, 0, len(cs))
	for _, c := range cs {
		ids = append(ids, c.ID)
	}
	return ids
}

func TestStore_Add(t *testing.T) {
	s := newTestStore(t, coll("A", "Alpha", nil))

	t.Run("duplicate id", func(t *testing.T) {
		err := s.Add(coll("A", "Other", nil))
		if !errors.Is(err, domain.ErrDuplicateID) {
			t.Fatalf("expected ErrDuplicateID, got %v", err)
		}
		var dupErr *domain.DuplicateIDError
		if !errors.As(err, &dupErr) || dupErr.ID != "A" {
			t.Errorf("expected DuplicateIDError for A, got %#v", err)
		}
	})

	t.Run("missing id", func(t *testing.T) {
		if err := s.Add(coll("", "Nameless", nil)); !errors.Is(err, domain.ErrValidation) {
			t.Errorf("expected ErrValidation, got %v", err)
		}
	})

	t.Run("child before parent", func(t *testing.T) {
		if err := s.Add(coll("Z", "Orphan for now", strPtr("Y"))); err != nil {
			t.Fatalf("expected child-first insert to succeed, got %v", err)
		}
		if err := s.Add(coll("Y", "Late parent", nil)); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if got := collectionIDs(s.ChildrenOf(strPtr("Y"))); !slices.Equal(got, []string{"Z"}) {
			t.Errorf("ChildrenOf(Y) = %v, want [Z]", got)
		}
	})

	t.Run("stored copy is isolated from caller", func(t *testing.T) {
		parent := "A"
		c := coll("D", "Delta", &parent)
		if err := s.Add(c); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		parent = "mutated"
		got, _ := s.Get("D")
		if *got.ParentID != "A" {
			t.Errorf("stored parent changed through caller pointer: %s", *got.ParentID)
		}
	})
}

func TestStore_ChildrenOfOrdering(t *testing.T) {
	s := newTestStore(t,
		coll("1", "beta", nil),
		coll("2", "Alpha", nil),
		coll("3", "alpha", nil),
		coll("4", "Gamma", nil),
		coll("5", "ALPHA", nil),
		coll("6", "child", strPtr("1")),
	)

	got := collectionIDs(s.ChildrenOf(nil))
	want := []string{"2", "3", "5", "1", "4"}
	if !slices.Equal(got, want) {
		t.Errorf("ChildrenOf(nil) = %v, want %v (case-insensitive, stable on insertion)", got, want)
	}

	if got := s.ChildrenOf(strPtr("4")); len(got) != 0 {
		t.Errorf("expected no children for leaf, got %v", collectionIDs(got))
	}
}

func TestStore_Rename(t *testing.T) {
	t.Run("same name is a no-op", func(t *testing.T) {
		s := abcStore(t)
		before := s.All()

		changed, err := s.Rename("B", "Beta")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if changed {
			t.Error("expected changed=false for identical name")
		}

		after := s.All()
		for i := range before {
			if before[i].Name != after[i].Name || !before[i].UpdatedAt.Equal(after[i].UpdatedAt) {
				t.Errorf("store changed on no-op rename: %+v -> %+v", before[i], after[i])
			}
		}
	})

	t.Run("new name stamps updated_at", func(t *testing.T) {
		s := abcStore(t)
		changed, err := s.Rename("B", "Beta Reviews")
		if err != nil || !changed {
			t.Fatalf("Rename = (%v, %v), want (true, nil)", changed, err)
		}
		got, _ := s.Get("B")
		if got.Name != "Beta Reviews" {
			t.Errorf("name = %q", got.Name)
		}
		if !got.UpdatedAt.Equal(laterAt) {
			t.Errorf("updated_at = %v, want %v", got.UpdatedAt, laterAt)
		}
	})

	t.Run("unknown id", func(t *testing.T) {
		s := abcStore(t)
		if _, err := s.Rename("nope", "x"); !errors.Is(err, domain.ErrNotFound) {
			t.Errorf("expected ErrNotFound, got %v", err)
		}
	})
}

func TestStore_Move(t *testing.T) {
	tests := []struct {
		name      string
		id        string
		newParent *string
		wantErr   error
	}{
		{name: "root under its grandchild", id: "A", newParent: strPtr("C"), wantErr: domain.ErrCycle},
		{name: "root under its child", id: "A", newParent: strPtr("B"), wantErr: domain.ErrCycle},
		{name: "into itself", id: "B", newParent: strPtr("B"), wantErr: domain.ErrCycle},
		{name: "middle under its child", id: "B", newParent: strPtr("C"), wantErr: domain.ErrCycle},
		{name: "leaf to root", id: "C", newParent: nil},
		{name: "leaf under grandparent", id: "C", newParent: strPtr("A")},
		{name: "unknown collection", id: "X", newParent: nil, wantErr: domain.ErrNotFound},
		{name: "unknown parent", id: "C", newParent: strPtr("X"), wantErr: domain.ErrNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := abcStore(t)
			before := s.All()

			err := s.Move(tt.id, tt.newParent)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("Move(%s) error = %v, want %v", tt.id, err, tt.wantErr)
				}
				if after := s.All(); !slices.EqualFunc(before, after, sameCollection) {
					t.Error("store changed after rejected move")
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}

			got, _ := s.Get(tt.id)
			if !got.HasParent(tt.newParent) {
				t.Errorf("parent not updated: %v", got.ParentID)
			}
			if !got.UpdatedAt.Equal(laterAt) {
				t.Errorf("updated_at not stamped: %v", got.UpdatedAt)
			}
			if slices.Contains(collectionIDs(s.ChildrenOf(strPtr("B"))), tt.id) {
				t.Errorf("old parent B still lists %s", tt.id)
			}
			if !slices.Contains(collectionIDs(s.ChildrenOf(tt.newParent)), tt.id) {
				t.Errorf("new parent does not list %s", tt.id)
			}
		})
	}
}

func TestStore_MoveScenario(t *testing.T) {
	s := abcStore(t)

	err := s.Move("A", strPtr("C"))
	var cycleErr *domain.CycleError
	if !errors.As(err, &cycleErr) {
		t.Fatalf("Move(A, C) = %v, want CycleError", err)
	}
	if cycleErr.ID != "A" || cycleErr.NewParentID != "C" {
		t.Errorf("CycleError = %+v", cycleErr)
	}

	if err := s.Move("C", nil); err != nil {
		t.Fatalf("Move(C, nil) failed: %v", err)
	}
	roots := collectionIDs(s.ChildrenOf(nil))
	if !slices.Contains(roots, "A") || !slices.Contains(roots, "C") {
		t.Errorf("roots = %v, want A and C", roots)
	}
}

func TestStore_MoveToSameParentIsNoop(t *testing.T) {
	s := abcStore(t)
	if err := s.Move("C", strPtr("B")); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	got, _ := s.Get("C")
	if !got.UpdatedAt.Equal(createdAt) {
		t.Errorf("updated_at changed on no-op move: %v", got.UpdatedAt)
	}
}

func TestStore_MoveRejectsLoopingAncestorChain(t *testing.T) {
	// P and Q point at each other; nothing reaches a root from them
	s := newTestStore(t,
		coll("A", "Alpha", nil),
		coll("P", "P", strPtr("Q")),
		coll("Q", "Q", strPtr("P")),
	)
	if err := s.Move("A", strPtr("P")); !errors.Is(err, domain.ErrCycle) {
		t.Errorf("expected ErrCycle for looping chain, got %v", err)
	}
}

func TestStore_Remove(t *testing.T) {
	s := newTestStore(t,
		coll("A", "Alpha", nil),
		coll("B", "Beta", strPtr("A")),
		coll("C", "Gamma", strPtr("B")),
		coll("D", "Delta", strPtr("A")),
		coll("E", "Epsilon", nil),
		coll("F", "Phi", strPtr("E")),
	)

	removed, err := s.Remove("A")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := []string{"A", "B", "D", "C"}
	if !slices.Equal(removed, want) {
		t.Errorf("removed = %v, want %v", removed, want)
	}
	for _, id := range want {
		if s.Has(id) {
			t.Errorf("%s still present", id)
		}
	}
	if got := collectionIDs(s.All()); !slices.Equal(got, []string{"E", "F"}) {
		t.Errorf("remaining = %v, want [E F]", got)
	}
	if got := collectionIDs(s.ChildrenOf(nil)); !slices.Equal(got, []string{"E"}) {
		t.Errorf("roots = %v, want [E]", got)
	}

	if _, err := s.Remove("A"); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("second Remove: expected ErrNotFound, got %v", err)
	}
}

func TestStore_RemoveTerminatesOnCorruptedCycle(t *testing.T) {
	s := newTestStore(t,
		coll("P", "P", strPtr("Q")),
		coll("Q", "Q", strPtr("P")),
		coll("R", "R", strPtr("Q")),
	)

	removed, err := s.Remove("P")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	slices.Sort(removed)
	if !slices.Equal(removed, []string{"P", "Q", "R"}) {
		t.Errorf("removed = %v, want [P Q R]", removed)
	}
	if s.Len() != 0 {
		t.Errorf("Len = %d, want 0", s.Len())
	}
}

func TestStore_RemovedNeverListed(t *testing.T) {
	s := abcStore(t)
	ops := []func() error{
		func() error { return s.Add(coll("D", "Delta", strPtr("C"))) },
		func() error { _, err := s.Remove("B"); return err },
		func() error { return s.Add(coll("E", "Eps", strPtr("A"))) },
		func() error { return s.Move("E", nil) },
		func() error { _, err := s.Remove("E"); return err },
	}

	removed := map[string]bool{}
	for i, op := range ops {
		if err := op(); err != nil {
			t.Fatalf("op %d failed: %v", i, err)
		}
		for _, id := range []string{"B", "C", "D"} {
			if i >= 1 {
				removed[id] = true
			}
		}
		if i >= 4 {
			removed["E"] = true
		}
		for _, parent := range []*string{nil, strPtr("A"), strPtr("B"), strPtr("C"), strPtr("E")} {
			for _, c := range s.ChildrenOf(parent) {
				if removed[c.ID] {
					t.Errorf("after op %d ChildrenOf listed removed %s", i, c.ID)
				}
			}
		}
	}
}

func TestStore_Replace(t *testing.T) {
	s := abcStore(t)

	updated := coll("C", "Gamma (server)", nil)
	updated.UpdatedAt = laterAt
	if err := s.Replace(updated); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	got, _ := s.Get("C")
	if got.Name != "Gamma (server)" || got.ParentID != nil {
		t.Errorf("Replace did not apply: %+v", got)
	}
	if got := collectionIDs(s.All()); !slices.Equal(got, []string{"A", "B", "C"}) {
		t.Errorf("insertion order changed: %v", got)
	}

	if err := s.Replace(coll("A", "Alpha", strPtr("B"))); !errors.Is(err, domain.ErrCycle) {
		t.Errorf("expected ErrCycle, got %v", err)
	}
	if err := s.Replace(coll("X", "X", nil)); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestStore_AncestorsDescendantsPath(t *testing.T) {
	s := abcStore(t)

	ancestors, err := s.Ancestors("C")
	if err != nil || !slices.Equal(ancestors, []string{"B", "A"}) {
		t.Errorf("Ancestors(C) = %v, %v", ancestors, err)
	}

	descendants, err := s.Descendants("A")
	if err != nil || !slices.Equal(descendants, []string{"B", "C"}) {
		t.Errorf("Descendants(A) = %v, %v", descendants, err)
	}

	path, err := s.Path("C")
	if err != nil || path != "Alpha/Beta/Gamma" {
		t.Errorf("Path(C) = %q, %v", path, err)
	}

	if _, err := s.Ancestors("nope"); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func sameCollection(a, b models.Collection) bool {
	return a.ID == b.ID && a.Name == b.Name && a.HasParent(b.ParentID) && a.UpdatedAt.Equal(b.UpdatedAt)
}

func TestStore_CheckMove(t *testing.T) {
	s := abcStore(t)
	before := s.All()

	tests := []struct {
		name        string
		id          string
		parent      *string
		wantChanged bool
		wantErr     error
	}{
		{"valid move", "C", nil, true, nil},
		{"same parent", "C", strPtr("B"), false, nil},
		{"cycle", "A", strPtr("C"), false, domain.ErrCycle},
		{"unknown", "Z", nil, false, domain.ErrNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			changed, err := s.CheckMove(tt.id, tt.parent)
			if !errors.Is(err, tt.wantErr) || (tt.wantErr == nil && err != nil) {
				t.Fatalf("err = %v, want %v", err, tt.wantErr)
			}
			if changed != tt.wantChanged {
				t.Errorf("changed = %v, want %v", changed, tt.wantChanged)
			}
		})
	}

	after := s.All()
	for i := range before {
		if !sameCollection(before[i], after[i]) {
			t.Errorf("CheckMove mutated %s", before[i].ID)
		}
	}
}
