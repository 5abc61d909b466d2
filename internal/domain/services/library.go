package services

import (
	"context"
	"time"

	"scholarvault/internal/domain/models/library"
	tree "scholarvault/internal/library"
)

// RemoteLibrary is the part of the ScholarVault API the library service
// drives. The apiclient package implements it.
type RemoteLibrary interface {
	ListCollections(ctx context.Context) ([]library.Collection, error)
	CreateCollection(ctx context.Context, name string, parentID *string) (*library.Collection, error)
	UpdateCollection(ctx context.Context, id string, patch library.CollectionPatch) (*library.Collection, error)
	DeleteCollection(ctx context.Context, id string) error
	ListCollectionDocuments(ctx context.Context, id string) ([]library.Document, error)
	AddDocumentToCollection(ctx context.Context, collectionID, documentID string) error
	RemoveDocumentFromCollection(ctx context.Context, collectionID, documentID string) error

	ListDocuments(ctx context.Context) ([]library.Document, error)
	SearchDocuments(ctx context.Context, query string) ([]library.Document, error)
	GetDocument(ctx context.Context, id string) (*library.Document, error)
	CreateDocument(ctx context.Context, input library.DocumentInput) (*library.Document, error)
	UpdateDocument(ctx context.Context, id string, input library.DocumentInput) (*library.Document, error)
	DeleteDocument(ctx context.Context, id string) error
	UploadPDF(ctx context.Context, path string, progress library.UploadProgressFunc) (*library.Document, error)
}

// LibraryService keeps the local library model in step with the API.
// Every mutation goes to the server first and is applied locally only on
// success; responses apply in arrival order.
type LibraryService interface {
	// Sync replaces the local library with the server's
	Sync(ctx context.Context) (*SyncStats, error)

	// LoadCached restores the last synced library without network access
	LoadCached(ctx context.Context) (*SyncStats, error)

	CreateCollection(ctx context.Context, req *CreateCollectionRequest) (*library.Collection, error)
	RenameCollection(ctx context.Context, id, name string) (*library.Collection, error)
	// MoveCollection reparents; nil parentID moves to root
	MoveCollection(ctx context.Context, id string, parentID *string) (*library.Collection, error)
	// DeleteCollection returns the ids removed locally (the collection and its descendants)
	DeleteCollection(ctx context.Context, id string) ([]string, error)

	AddToCollection(ctx context.Context, collectionID, documentID string) error
	RemoveFromCollection(ctx context.Context, collectionID, documentID string) error
	RefreshCollection(ctx context.Context, id string) ([]library.Document, error)

	UploadDocument(ctx context.Context, path string, progress library.UploadProgressFunc) (*library.Document, error)
	CreateDocument(ctx context.Context, input *library.DocumentInput) (*library.Document, error)
	GetDocument(ctx context.Context, id string) (*library.Document, error)
	UpdateDocument(ctx context.Context, id string, input *library.DocumentInput) (*library.Document, error)
	DeleteDocument(ctx context.Context, id string) error
	SearchDocuments(ctx context.Context, query string) ([]library.Document, error)

	// Read views over the local model
	Forest(view *tree.ViewState) []*library.CollectionNode
	DocumentsFor(selection *string) ([]library.Document, error)
	Collection(id string) (library.Collection, error)
	CollectionPath(id string) (string, error)
	Document(id string) (library.Document, error)
	CollectionsFor(documentID string) []string
	Snapshot() *library.Snapshot
}

// CreateCollectionRequest represents a collection creation request
type CreateCollectionRequest struct {
	Name     string  `json:"name"`
	ParentID *string `json:"parent_id,omitempty"` // nil for root
}

// SyncStats summarises the library after a sync or cache load
type SyncStats struct {
	Collections int       `json:"collections"`
	Documents   int       `json:"documents"`
	Memberships int       `json:"memberships"`
	SyncedAt    time.Time `json:"synced_at"`
}
