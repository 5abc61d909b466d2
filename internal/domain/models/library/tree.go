package library

// CollectionNode is a collection in the display forest with its ordered
// children and the view flags the renderer needs.
type CollectionNode struct {
	ID          string            `json:"id" yaml:"id"`
	Name        string            `json:"name" yaml:"name"`
	ParentID    *string           `json:"parent_id" yaml:"parent_id,omitempty"`
	Depth       int               `json:"depth" yaml:"-"`
	Expanded    bool              `json:"expanded" yaml:"-"`
	Selected    bool              `json:"selected" yaml:"-"`
	Truncated   bool              `json:"truncated,omitempty" yaml:"truncated,omitempty"` // children cut by cycle or depth guard
	Children    []*CollectionNode `json:"children" yaml:"children,omitempty"`
	DocumentIDs []string          `json:"document_ids,omitempty" yaml:"document_ids,omitempty"`
}

// HasChildren reports whether the node has any child collections
func (n *CollectionNode) HasChildren() bool {
	return len(n.Children) > 0
}

// VisibleRow is one line of a rendered tree: the node plus its indentation
type VisibleRow struct {
	Node  *CollectionNode
	Depth int
}
