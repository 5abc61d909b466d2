package library

import (
	"fmt"
	"time"

	"scholarvault/internal/domain"
	models "scholarvault/internal/domain/models/library"
)

// Library keeps the collection store, the membership index and the document
// catalog consistent with each other.
type Library struct {
	Collections *Store
	Memberships *Index
	Documents   *Catalog
}

// New creates an empty library
func New(opts ...StoreOption) *Library {
	return &Library{
		Collections: NewStore(opts...),
		Memberships: NewIndex(),
		Documents:   NewCatalog(),
	}
}

// FromSnapshot rebuilds a library from a persisted snapshot
func FromSnapshot(snap *models.Snapshot, opts ...StoreOption) (*Library, error) {
	lib := New(opts...)
	for _, c := range snap.Collections {
		if err := lib.Collections.Add(c); err != nil {
			return nil, fmt.Errorf("restore collection: %w", err)
		}
	}
	for _, d := range snap.Documents {
		lib.Documents.Put(d)
	}
	for _, m := range snap.Memberships {
		lib.Memberships.Add(m.CollectionID, m.DocumentID)
	}
	return lib, nil
}

// Snapshot copies the library out for persistence or export
func (l *Library) Snapshot(userID string, syncedAt time.Time) *models.Snapshot {
	return &models.Snapshot{
		UserID:      userID,
		Collections: l.Collections.All(),
		Documents:   l.Documents.All(),
		Memberships: l.Memberships.All(),
		SyncedAt:    syncedAt,
	}
}

// DeleteCollection removes the collection and its descendants and purges
// their memberships. Documents are untouched.
func (l *Library) DeleteCollection(id string) ([]string, error) {
	removed, err := l.Collections.Remove(id)
	if err != nil {
		return nil, err
	}
	l.Memberships.PurgeCollections(removed...)
	return removed, nil
}

// DeleteDocument removes a document from the catalog and every collection
func (l *Library) DeleteDocument(id string) error {
	if !l.Documents.Remove(id) {
		return &domain.NotFoundError{ResourceType: "document", ID: id}
	}
	l.Memberships.PurgeDocument(id)
	return nil
}

// DocumentsFor resolves the document list for a tree selection: nil means
// all of the user's documents, otherwise the selected collection's members.
// Results keep catalog order; member ids missing from the catalog are skipped.
func (l *Library) DocumentsFor(selection *string) ([]models.Document, error) {
	if selection == nil {
		return l.Documents.All(), nil
	}
	if !l.Collections.Has(*selection) {
		return nil, collectionNotFound(*selection)
	}

	docs := make([]models.Document, 0)
	for _, doc := range l.Documents.All() {
		if l.Memberships.Contains(*selection, doc.ID) {
			docs = append(docs, doc)
		}
	}
	return docs, nil
}

// Forest builds the display forest with document ids attached
func (l *Library) Forest(view *ViewState) []*models.CollectionNode {
	return NewForestBuilder(l.Collections, l.Memberships).Build(view)
}
