package library

import (
	"slices"
	"strings"
	"time"

	"scholarvault/internal/domain"
	models "scholarvault/internal/domain/models/library"
)

// Clock returns the current time; injected so tests control updated_at.
type Clock func() time.Time

// Store holds the flat set of collections for one user. The store is the
// arena and parent_id is the index key: children are found by lookup, never
// by stored child pointers.
//
// A Store is not safe for concurrent use; callers serialise access.
type Store struct {
	records map[string]*models.Collection
	order   []string // insertion order, tie-break for equal names
	clock   Clock
}

// StoreOption configures a Store
type StoreOption func(*Store)

// WithClock overrides the clock used to stamp updated_at
func WithClock(clock Clock) StoreOption {
	return func(s *Store) {
		s.clock = clock
	}
}

// NewStore creates an empty collection store
func NewStore(opts ...StoreOption) *Store {
	s := &Store{
		records: make(map[string]*models.Collection),
		clock:   time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Add inserts a new collection. The parent is not required to exist yet:
// server listings may deliver children before their parents.
func (s *Store) Add(c models.Collection) error {
	if c.ID == "" {
		return &domain.ValidationError{Message: "collection id is required"}
	}
	if _, exists := s.records[c.ID]; exists {
		return &domain.DuplicateIDError{ResourceType: "collection", ID: c.ID}
	}

	s.records[c.ID] = cloneCollection(&c)
	s.order = append(s.order, c.ID)
	return nil
}

// Get returns a copy of the collection with the given id
func (s *Store) Get(id string) (models.Collection, error) {
	c, ok := s.records[id]
	if !ok {
		return models.Collection{}, collectionNotFound(id)
	}
	return *cloneCollection(c), nil
}

// Has reports whether the id is present
func (s *Store) Has(id string) bool {
	_, ok := s.records[id]
	return ok
}

// Len returns the number of collections
func (s *Store) Len() int {
	return len(s.records)
}

// All returns copies of every collection in insertion order
func (s *Store) All() []models.Collection {
	all := make([]models.Collection, 0, len(s.order))
	for _, id := range s.order {
		all = append(all, *cloneCollection(s.records[id]))
	}
	return all
}

// Rename sets a new name. Renaming to the current name is a no-op and
// leaves updated_at untouched; changed reports whether anything was written.
func (s *Store) Rename(id, newName string) (changed bool, err error) {
	c, ok := s.records[id]
	if !ok {
		return false, collectionNotFound(id)
	}
	if c.Name == newName {
		return false, nil
	}

	c.Name = newName
	c.UpdatedAt = s.clock()
	return true, nil
}

// Move reparents a collection (nil = root). Fails with CycleError when the
// new parent is the collection itself or one of its descendants.
func (s *Store) Move(id string, newParentID *string) error {
	c, ok := s.records[id]
	if !ok {
		return collectionNotFound(id)
	}
	if c.HasParent(newParentID) {
		return nil
	}
	if err := s.validateReparent(id, newParentID); err != nil {
		return err
	}

	c.ParentID = cloneString(newParentID)
	c.UpdatedAt = s.clock()
	return nil
}

// CheckMove reports whether Move(id, newParentID) would succeed without
// applying it. changed is false when the collection already has that parent.
func (s *Store) CheckMove(id string, newParentID *string) (changed bool, err error) {
	c, ok := s.records[id]
	if !ok {
		return false, collectionNotFound(id)
	}
	if c.HasParent(newParentID) {
		return false, nil
	}
	if err := s.validateReparent(id, newParentID); err != nil {
		return false, err
	}
	return true, nil
}

// Replace overwrites a collection with an authoritative record, typically
// the server's response to an update. Insertion order is kept.
func (s *Store) Replace(c models.Collection) error {
	existing, ok := s.records[c.ID]
	if !ok {
		return collectionNotFound(c.ID)
	}
	if !existing.HasParent(c.ParentID) {
		if err := s.validateReparent(c.ID, c.ParentID); err != nil {
			return err
		}
	}

	s.records[c.ID] = cloneCollection(&c)
	return nil
}

// Remove deletes the collection and, transitively, every descendant.
// Returns the removed ids, id first, then breadth-first.
func (s *Store) Remove(id string) ([]string, error) {
	if _, ok := s.records[id]; !ok {
		return nil, collectionNotFound(id)
	}

	removed := s.subtree(id)
	gone := make(map[string]struct{}, len(removed))
	for _, rid := range removed {
		gone[rid] = struct{}{}
		delete(s.records, rid)
	}
	s.order = slices.DeleteFunc(s.order, func(oid string) bool {
		_, ok := gone[oid]
		return ok
	})

	return removed, nil
}

// ChildrenOf returns the collections whose parent is parentID (nil = roots),
// ordered by case-insensitive name, ties in insertion order.
func (s *Store) ChildrenOf(parentID *string) []models.Collection {
	children := s.children(parentID)
	out := make([]models.Collection, 0, len(children))
	for _, c := range children {
		out = append(out, *cloneCollection(c))
	}
	return out
}

// Descendants returns every collection below id, breadth-first
func (s *Store) Descendants(id string) ([]string, error) {
	if _, ok := s.records[id]; !ok {
		return nil, collectionNotFound(id)
	}
	return s.subtree(id)[1:], nil
}

// Ancestors returns the parent chain of id, nearest first. The walk stops at
// a root, at a parent missing from the store, or when the chain loops.
func (s *Store) Ancestors(id string) ([]string, error) {
	c, ok := s.records[id]
	if !ok {
		return nil, collectionNotFound(id)
	}

	var chain []string
	seen := map[string]bool{id: true}
	for c.ParentID != nil {
		parentID := *c.ParentID
		if seen[parentID] {
			break
		}
		parent, ok := s.records[parentID]
		if !ok {
			break
		}
		seen[parentID] = true
		chain = append(chain, parentID)
		c = parent
	}
	return chain, nil
}

// Path returns the display path of a collection, e.g. "Physics/Optics"
func (s *Store) Path(id string) (string, error) {
	ancestors, err := s.Ancestors(id)
	if err != nil {
		return "", err
	}

	segments := make([]string, 0, len(ancestors)+1)
	for i := len(ancestors) - 1; i >= 0; i-- {
		segments = append(segments, s.records[ancestors[i]].Name)
	}
	segments = append(segments, s.records[id].Name)
	return strings.Join(segments, "/"), nil
}

// children returns the live records under parentID in display order
func (s *Store) children(parentID *string) []*models.Collection {
	var children []*models.Collection
	for _, id := range s.order {
		if c := s.records[id]; c.HasParent(parentID) {
			children = append(children, c)
		}
	}
	slices.SortStableFunc(children, func(a, b *models.Collection) int {
		return strings.Compare(strings.ToLower(a.Name), strings.ToLower(b.Name))
	})
	return children
}

// subtree returns id followed by its descendants, breadth-first. The visited
// set makes it terminate even if parent links are corrupted into a cycle.
func (s *Store) subtree(id string) []string {
	visited := map[string]bool{id: true}
	queue := []string{id}
	for i := 0; i < len(queue); i++ {
		parentID := queue[i]
		for _, child := range s.children(&parentID) {
			if visited[child.ID] {
				continue
			}
			visited[child.ID] = true
			queue = append(queue, child.ID)
		}
	}
	return queue
}

// validateReparent walks the ancestor chain of newParentID up to the root and
// rejects the move if id appears on it. A chain that loops back on itself
// without reaching a root is rejected as well.
func (s *Store) validateReparent(id string, newParentID *string) error {
	if newParentID == nil {
		return nil
	}
	if *newParentID == id {
		return &domain.CycleError{ID: id, NewParentID: id}
	}
	if _, ok := s.records[*newParentID]; !ok {
		return collectionNotFound(*newParentID)
	}

	seen := make(map[string]bool)
	currentID := *newParentID
	for {
		if currentID == id || seen[currentID] {
			return &domain.CycleError{ID: id, NewParentID: *newParentID}
		}
		seen[currentID] = true

		current, ok := s.records[currentID]
		if !ok || current.ParentID == nil {
			// Reached a root (or an orphaned chain), no circular reference
			return nil
		}
		currentID = *current.ParentID
	}
}

func collectionNotFound(id string) error {
	return &domain.NotFoundError{ResourceType: "collection", ID: id}
}

func cloneCollection(c *models.Collection) *models.Collection {
	cp := *c
	cp.ParentID = cloneString(c.ParentID)
	return &cp
}

func cloneString(s *string) *string {
	if s == nil {
		return nil
	}
	v := *s
	return &v
}
