package library

import "slices"

// ViewState is the ephemeral presentation state of the collection tree:
// which nodes are expanded and which collection is selected. It lives
// outside the data model and is injected into the forest builder.
//
// Every node starts collapsed. A nil *ViewState reads as "nothing expanded,
// All Documents selected".
type ViewState struct {
	expanded map[string]struct{}
	selected *string // nil = "All Documents" pseudo-root
}

func NewViewState() *ViewState {
	return &ViewState{expanded: make(map[string]struct{})}
}

// Toggle flips a node between collapsed and expanded and returns the new state
func (v *ViewState) Toggle(id string) (expanded bool) {
	if _, ok := v.expanded[id]; ok {
		delete(v.expanded, id)
		return false
	}
	v.expanded[id] = struct{}{}
	return true
}

func (v *ViewState) Expand(id string) {
	v.expanded[id] = struct{}{}
}

func (v *ViewState) Collapse(id string) {
	delete(v.expanded, id)
}

func (v *ViewState) CollapseAll() {
	clear(v.expanded)
}

func (v *ViewState) IsExpanded(id string) bool {
	if v == nil {
		return false
	}
	_, ok := v.expanded[id]
	return ok
}

// ExpandedIDs returns the expanded ids, sorted
func (v *ViewState) ExpandedIDs() []string {
	if v == nil {
		return []string{}
	}
	ids := make([]string, 0, len(v.expanded))
	for id := range v.expanded {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	return ids
}

// Select sets the selected collection; nil selects All Documents
func (v *ViewState) Select(collectionID *string) {
	v.selected = cloneString(collectionID)
}

// Selected returns the selected collection id, nil for All Documents
func (v *ViewState) Selected() *string {
	if v == nil {
		return nil
	}
	return cloneString(v.selected)
}

func (v *ViewState) IsSelected(id string) bool {
	if v == nil || v.selected == nil {
		return false
	}
	return *v.selected == id
}

// Prune forgets removed collections: their expansion flags go, and a removed
// selection falls back to All Documents.
func (v *ViewState) Prune(removedIDs []string) {
	for _, id := range removedIDs {
		delete(v.expanded, id)
		if v.selected != nil && *v.selected == id {
			v.selected = nil
		}
	}
}
