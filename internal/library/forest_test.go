package library

import (
	"bytes"
	"strings"
	"testing"

	models "scholarvault/internal/domain/models/library"
)

func nodeNames(nodes []*models.CollectionNode) []string {
	names := make([]string, 0, len(nodes))
	for _, n := range nodes {
		names = append(names, n.Name)
	}
	return names
}

func TestForestBuilder_Build(t *testing.T) {
	s := newTestStore(t,
		coll("p", "physics", nil),
		coll("b", "Biology", nil),
		coll("o", "Optics", strPtr("p")),
		coll("q", "Quantum", strPtr("p")),
		coll("l", "Lasers", strPtr("o")),
	)
	x := NewIndex()
	x.Add("o", "doc-1")

	forest := NewForestBuilder(s, x).Build(nil)

	if got := strings.Join(nodeNames(forest), ","); got != "Biology,physics" {
		t.Fatalf("roots = %s", got)
	}
	physics := forest[1]
	if got := strings.Join(nodeNames(physics.Children), ","); got != "Optics,Quantum" {
		t.Errorf("physics children = %s", got)
	}
	optics := physics.Children[0]
	if optics.Depth != 1 || len(optics.Children) != 1 || optics.Children[0].Depth != 2 {
		t.Errorf("unexpected depths: optics=%d children=%d", optics.Depth, len(optics.Children))
	}
	if len(optics.DocumentIDs) != 1 || optics.DocumentIDs[0] != "doc-1" {
		t.Errorf("optics documents = %v", optics.DocumentIDs)
	}
	for _, n := range Visible(forest, true) {
		if n.Node.Expanded || n.Node.Selected {
			t.Errorf("%s should start collapsed and unselected", n.Node.Name)
		}
	}
	if s.Len() != 5 {
		t.Error("Build must not mutate the store")
	}
}

func TestForestBuilder_ViewFlags(t *testing.T) {
	s := abcStore(t)
	view := NewViewState()
	view.Toggle("A")
	view.Select(strPtr("B"))

	forest := NewForestBuilder(s, nil).Build(view)

	a := forest[0]
	if !a.Expanded || a.Selected {
		t.Errorf("A flags = expanded:%v selected:%v", a.Expanded, a.Selected)
	}
	b := a.Children[0]
	if b.Expanded || !b.Selected {
		t.Errorf("B flags = expanded:%v selected:%v", b.Expanded, b.Selected)
	}

	rows := Visible(forest, false)
	if len(rows) != 2 || rows[0].Node.ID != "A" || rows[1].Node.ID != "B" {
		t.Errorf("visible rows should be A, B (C hidden under collapsed B), got %d rows", len(rows))
	}
	if all := Visible(forest, true); len(all) != 3 {
		t.Errorf("expected 3 rows with all=true, got %d", len(all))
	}
}

func TestForestBuilder_TerminatesOnCycles(t *testing.T) {
	s := newTestStore(t,
		coll("A", "Alpha", nil),
		coll("P", "P", strPtr("Q")),
		coll("Q", "Q", strPtr("P")),
		coll("R", "R", strPtr("P")),
	)

	forest := NewForestBuilder(s, nil).Build(nil)

	if len(forest) != 1 || forest[0].ID != "A" {
		t.Fatalf("expected only the real root, got %v", nodeNames(forest))
	}
}

func TestForestBuilder_DepthCap(t *testing.T) {
	s := newTestStore(t,
		coll("1", "one", nil),
		coll("2", "two", strPtr("1")),
		coll("3", "three", strPtr("2")),
		coll("4", "four", strPtr("3")),
	)

	forest := NewForestBuilder(s, nil).WithMaxDepth(2).Build(nil)

	one := forest[0]
	if len(one.Children) != 1 {
		t.Fatalf("expected one child under root, got %d", len(one.Children))
	}
	two := one.Children[0]
	if !two.Truncated || len(two.Children) != 0 {
		t.Errorf("node at the depth cap should be truncated, got truncated=%v children=%d",
			two.Truncated, len(two.Children))
	}
}

func TestRender(t *testing.T) {
	s := abcStore(t)
	view := NewViewState()
	view.Toggle("A")

	var buf bytes.Buffer
	if err := Render(&buf, NewForestBuilder(s, nil).Build(view), view, false); err != nil {
		t.Fatalf("Render failed: %v", err)
	}

	out := buf.String()
	if !strings.HasPrefix(out, "* All Documents\n") {
		t.Errorf("expected All Documents selected first line, got:\n%s", out)
	}
	if !strings.Contains(out, "▼ Alpha") || !strings.Contains(out, "▶ Beta") {
		t.Errorf("expected expanded Alpha and collapsed Beta, got:\n%s", out)
	}
	if strings.Contains(out, "Gamma") {
		t.Errorf("Gamma is under a collapsed node and should be hidden:\n%s", out)
	}
}
