package library

import (
	"fmt"
	"io"
	"strings"

	"scholarvault/internal/config"
	models "scholarvault/internal/domain/models/library"
)

// ForestBuilder converts the flat store into the nested display forest.
// It only reads the store.
type ForestBuilder struct {
	store    *Store
	index    *Index // optional; attaches document ids to nodes
	maxDepth int
}

// NewForestBuilder creates a builder over store. index may be nil.
func NewForestBuilder(store *Store, index *Index) *ForestBuilder {
	return &ForestBuilder{
		store:    store,
		index:    index,
		maxDepth: config.MaxTreeDepth,
	}
}

// WithMaxDepth overrides the recursion cap
func (b *ForestBuilder) WithMaxDepth(depth int) *ForestBuilder {
	b.maxDepth = depth
	return b
}

// Build returns the root collections, each annotated with its ordered
// children to full depth. view may be nil.
//
// A collection is emitted at most once and recursion stops at maxDepth, so
// corrupted parent links cannot make this loop. Nodes whose children were
// cut are flagged Truncated.
func (b *ForestBuilder) Build(view *ViewState) []*models.CollectionNode {
	emitted := make(map[string]bool, b.store.Len())
	roots := b.store.children(nil)

	forest := make([]*models.CollectionNode, 0, len(roots))
	for _, root := range roots {
		if emitted[root.ID] {
			continue
		}
		forest = append(forest, b.node(root, 0, view, emitted))
	}
	return forest
}

func (b *ForestBuilder) node(c *models.Collection, depth int, view *ViewState, emitted map[string]bool) *models.CollectionNode {
	emitted[c.ID] = true

	node := &models.CollectionNode{
		ID:       c.ID,
		Name:     c.Name,
		ParentID: cloneString(c.ParentID),
		Depth:    depth,
		Expanded: view.IsExpanded(c.ID),
		Selected: view.IsSelected(c.ID),
		Children: []*models.CollectionNode{},
	}
	if b.index != nil {
		node.DocumentIDs = b.index.DocumentsIn(c.ID)
	}

	children := b.store.children(&c.ID)
	if len(children) == 0 {
		return node
	}
	if depth+1 >= b.maxDepth {
		node.Truncated = true
		return node
	}

	for _, child := range children {
		if emitted[child.ID] {
			node.Truncated = true
			continue
		}
		node.Children = append(node.Children, b.node(child, depth+1, view, emitted))
	}
	return node
}

// Visible returns the rows an interactive tree shows: a pre-order walk that
// only descends into expanded nodes. With all set every node is shown.
func Visible(forest []*models.CollectionNode, all bool) []models.VisibleRow {
	var rows []models.VisibleRow
	var walk func(nodes []*models.CollectionNode)
	walk = func(nodes []*models.CollectionNode) {
		for _, n := range nodes {
			rows = append(rows, models.VisibleRow{Node: n, Depth: n.Depth})
			if all || n.Expanded {
				walk(n.Children)
			}
		}
	}
	walk(forest)
	return rows
}

// Render writes the visible rows as an indented text tree. The first line is
// the All Documents pseudo-root, marked when nothing is selected.
func Render(w io.Writer, forest []*models.CollectionNode, view *ViewState, all bool) error {
	marker := " "
	if view.Selected() == nil {
		marker = "*"
	}
	if _, err := fmt.Fprintf(w, "%s All Documents\n", marker); err != nil {
		return err
	}

	for _, row := range Visible(forest, all) {
		n := row.Node
		toggle := " "
		if n.HasChildren() {
			toggle = "▶"
			if all || n.Expanded {
				toggle = "▼"
			}
		}
		marker = " "
		if n.Selected {
			marker = "*"
		}

		line := fmt.Sprintf("%s %s%s %s", marker, strings.Repeat("  ", row.Depth+1), toggle, n.Name)
		if len(n.DocumentIDs) > 0 {
			line += fmt.Sprintf(" (%d)", len(n.DocumentIDs))
		}
		if n.Truncated {
			line += " [truncated]"
		}
		line += "  " + n.ID
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	return nil
}
