package library

import (
	"slices"

	models "scholarvault/internal/domain/models/library"
)

type idSet map[string]struct{}

// Index is the many-to-many association between documents and collections.
// It knows nothing about either entity's lifecycle; owners call the purge
// methods when they delete something.
type Index struct {
	byCollection map[string]idSet
	byDocument   map[string]idSet
}

// NewIndex creates an empty membership index
func NewIndex() *Index {
	return &Index{
		byCollection: make(map[string]idSet),
		byDocument:   make(map[string]idSet),
	}
}

// Add records the pair. Adding an existing pair is a no-op; added reports
// whether the index changed.
func (x *Index) Add(collectionID, documentID string) (added bool) {
	if x.Contains(collectionID, documentID) {
		return false
	}
	link(x.byCollection, collectionID, documentID)
	link(x.byDocument, documentID, collectionID)
	return true
}

// Remove drops the pair. Removing a missing pair is a no-op.
func (x *Index) Remove(collectionID, documentID string) (removed bool) {
	if !x.Contains(collectionID, documentID) {
		return false
	}
	unlink(x.byCollection, collectionID, documentID)
	unlink(x.byDocument, documentID, collectionID)
	return true
}

// Contains reports whether the document is in the collection
func (x *Index) Contains(collectionID, documentID string) bool {
	_, ok := x.byCollection[collectionID][documentID]
	return ok
}

// DocumentsIn returns the document ids in a collection, sorted
func (x *Index) DocumentsIn(collectionID string) []string {
	return sortedIDs(x.byCollection[collectionID])
}

// CollectionsFor returns the collection ids containing a document, sorted
func (x *Index) CollectionsFor(documentID string) []string {
	return sortedIDs(x.byDocument[documentID])
}

// PurgeDocument removes every membership of a deleted document
func (x *Index) PurgeDocument(documentID string) int {
	collections := x.byDocument[documentID]
	for collectionID := range collections {
		unlink(x.byCollection, collectionID, documentID)
	}
	delete(x.byDocument, documentID)
	return len(collections)
}

// PurgeCollections removes every membership of the deleted collections
func (x *Index) PurgeCollections(collectionIDs ...string) int {
	purged := 0
	for _, collectionID := range collectionIDs {
		documents := x.byCollection[collectionID]
		for documentID := range documents {
			unlink(x.byDocument, documentID, collectionID)
		}
		purged += len(documents)
		delete(x.byCollection, collectionID)
	}
	return purged
}

// ReplaceCollection sets a collection's documents to exactly documentIDs,
// used when the server's list for one collection is refreshed.
func (x *Index) ReplaceCollection(collectionID string, documentIDs []string) {
	x.PurgeCollections(collectionID)
	for _, documentID := range documentIDs {
		x.Add(collectionID, documentID)
	}
}

// All returns every pair, sorted by collection then document
func (x *Index) All() []models.Membership {
	all := make([]models.Membership, 0, x.Len())
	for _, collectionID := range sortedIDs(toSet(x.byCollection)) {
		for _, documentID := range x.DocumentsIn(collectionID) {
			all = append(all, models.Membership{CollectionID: collectionID, DocumentID: documentID})
		}
	}
	return all
}

// Len returns the number of pairs
func (x *Index) Len() int {
	n := 0
	for _, documents := range x.byCollection {
		n += len(documents)
	}
	return n
}

func link(m map[string]idSet, key, value string) {
	set, ok := m[key]
	if !ok {
		set = make(idSet)
		m[key] = set
	}
	set[value] = struct{}{}
}

func unlink(m map[string]idSet, key, value string) {
	set, ok := m[key]
	if !ok {
		return
	}
	delete(set, value)
	if len(set) == 0 {
		delete(m, key)
	}
}

func toSet(m map[string]idSet) idSet {
	set := make(idSet, len(m))
	for key := range m {
		set[key] = struct{}{}
	}
	return set
}

// sortedIDs never returns nil so callers get an empty set, not a missing one
func sortedIDs(set idSet) []string {
	ids := make([]string, 0, len(set))
	for id := range set {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	return ids
}
