package library

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"scholarvault/internal/auth"
	"scholarvault/internal/domain"
	models "scholarvault/internal/domain/models/library"
	"scholarvault/internal/domain/repositories"
	"scholarvault/internal/domain/services"
	"scholarvault/internal/httputil"
	lib "scholarvault/internal/library"

	"golang.org/x/sync/errgroup"
)

// syncConcurrency bounds parallel per-collection fetches during Sync
const syncConcurrency = 4

type libraryService struct {
	remote services.RemoteLibrary
	cache  repositories.SnapshotRepository
	logger *slog.Logger
	now    func() time.Time

	mu       sync.RWMutex
	lib      *lib.Library
	syncedAt time.Time
}

// NewLibraryService creates a library service with an empty local model
func NewLibraryService(
	remote services.RemoteLibrary,
	cache repositories.SnapshotRepository,
	logger *slog.Logger,
) services.LibraryService {
	return &libraryService{
		remote: remote,
		cache:  cache,
		logger: logger,
		now:    time.Now,
		lib:    lib.New(),
	}
}

// Sync fetches collections, documents and every collection's membership
// list, and swaps the result in only when all requests succeed.
func (s *libraryService) Sync(ctx context.Context) (*services.SyncStats, error) {
	collections, err := s.remote.ListCollections(ctx)
	if err != nil {
		return nil, err
	}
	documents, err := s.remote.ListDocuments(ctx)
	if err != nil {
		return nil, err
	}

	members := make([][]models.Document, len(collections))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(syncConcurrency)
	for i, c := range collections {
		g.Go(func() error {
			docs, err := s.remote.ListCollectionDocuments(gctx, c.ID)
			if err != nil {
				return err
			}
			members[i] = docs
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	fresh := lib.New(lib.WithClock(s.now))
	for _, c := range collections {
		if err := fresh.Collections.Add(c); err != nil {
			return nil, fmt.Errorf("server returned inconsistent collections: %w", err)
		}
	}
	for _, d := range documents {
		fresh.Documents.Put(d)
	}
	for i, c := range collections {
		ids := make([]string, 0, len(members[i]))
		for _, d := range members[i] {
			if !fresh.Documents.Has(d.ID) {
				fresh.Documents.Put(d)
			}
			ids = append(ids, d.ID)
		}
		fresh.Memberships.ReplaceCollection(c.ID, ids)
	}

	s.mu.Lock()
	s.lib = fresh
	s.syncedAt = s.now()
	stats := s.statsLocked()
	s.mu.Unlock()

	s.logger.Info("library synced",
		"collections", stats.Collections,
		"documents", stats.Documents,
		"memberships", stats.Memberships,
		"request_id", httputil.RequestIDFrom(ctx),
	)
	s.persist(ctx)
	return stats, nil
}

// LoadCached restores the session user's last synced library
func (s *libraryService) LoadCached(ctx context.Context) (*services.SyncStats, error) {
	userID, err := sessionUserID(ctx)
	if err != nil {
		return nil, err
	}

	snap, err := s.cache.Load(ctx, userID)
	if err != nil {
		return nil, err
	}
	restored, err := lib.FromSnapshot(snap, lib.WithClock(s.now))
	if err != nil {
		return nil, fmt.Errorf("cached library is corrupt: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.lib = restored
	s.syncedAt = snap.SyncedAt

	s.logger.Debug("library loaded from cache", "user_id", userID, "synced_at", snap.SyncedAt)
	return s.statsLocked(), nil
}

func (s *libraryService) CreateCollection(ctx context.Context, req *services.CreateCollectionRequest) (*models.Collection, error) {
	s.mu.RLock()
	err := s.validateCreateCollection(req)
	s.mu.RUnlock()
	if err != nil {
		return nil, validationError(err)
	}

	created, err := s.remote.CreateCollection(ctx, req.Name, req.ParentID)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	err = s.lib.Collections.Add(*created)
	s.mu.Unlock()
	if err != nil {
		return nil, fmt.Errorf("apply created collection: %w", err)
	}

	s.logger.Info("collection created",
		"id", created.ID,
		"name", created.Name,
		"parent_id", created.ParentID,
	)
	s.persist(ctx)
	return created, nil
}

// RenameCollection is a no-op, without a request, when the name is unchanged
func (s *libraryService) RenameCollection(ctx context.Context, id, name string) (*models.Collection, error) {
	if err := validateCollectionName(name); err != nil {
		return nil, validationError(err)
	}

	current, err := s.Collection(id)
	if err != nil {
		return nil, err
	}
	if current.Name == name {
		return &current, nil
	}

	updated, err := s.remote.UpdateCollection(ctx, id, models.CollectionPatch{Name: &name})
	if err != nil {
		return nil, err
	}
	if err := s.applyCollection(updated); err != nil {
		return nil, err
	}

	s.logger.Info("collection renamed", "id", id, "old_name", current.Name, "new_name", updated.Name)
	s.persist(ctx)
	return updated, nil
}

// MoveCollection rejects cycles locally before any request is sent
func (s *libraryService) MoveCollection(ctx context.Context, id string, parentID *string) (*models.Collection, error) {
	s.mu.RLock()
	changed, err := s.lib.Collections.CheckMove(id, parentID)
	current, _ := s.lib.Collections.Get(id)
	s.mu.RUnlock()
	if err != nil {
		return nil, err
	}
	if !changed {
		return &current, nil
	}

	updated, err := s.remote.UpdateCollection(ctx, id, models.CollectionPatch{ParentID: httputil.Set(parentID)})
	if err != nil {
		return nil, err
	}
	if err := s.applyCollection(updated); err != nil {
		return nil, err
	}
	if !updated.HasParent(parentID) {
		s.logger.Warn("server ignored collection move",
			"id", id, "requested_parent_id", parentID, "parent_id", updated.ParentID)
		return nil, &domain.RemoteRequestError{
			Method:  http.MethodPut,
			Path:    "/api/collections/" + id,
			Status:  http.StatusConflict,
			Message: "server did not apply the move",
		}
	}

	s.logger.Info("collection moved", "id", id, "old_parent_id", current.ParentID, "new_parent_id", updated.ParentID)
	s.persist(ctx)
	return updated, nil
}

func (s *libraryService) DeleteCollection(ctx context.Context, id string) ([]string, error) {
	if _, err := s.Collection(id); err != nil {
		return nil, err
	}

	if err := s.remote.DeleteCollection(ctx, id); err != nil {
		return nil, err
	}

	s.mu.Lock()
	removed, err := s.lib.DeleteCollection(id)
	s.mu.Unlock()
	if errors.Is(err, domain.ErrNotFound) {
		// Deleted by a concurrent call in the meantime
		return []string{}, nil
	}
	if err != nil {
		return nil, err
	}

	s.logger.Info("collection deleted", "id", id, "removed", len(removed))
	s.persist(ctx)
	return removed, nil
}

// AddToCollection skips the request when the document is already a member
func (s *libraryService) AddToCollection(ctx context.Context, collectionID, documentID string) error {
	s.mu.RLock()
	exists := s.lib.Collections.Has(collectionID)
	member := s.lib.Memberships.Contains(collectionID, documentID)
	s.mu.RUnlock()
	if !exists {
		return &domain.NotFoundError{ResourceType: "collection", ID: collectionID}
	}
	if member {
		return nil
	}

	if err := s.remote.AddDocumentToCollection(ctx, collectionID, documentID); err != nil {
		return err
	}

	s.mu.Lock()
	s.lib.Memberships.Add(collectionID, documentID)
	s.mu.Unlock()

	s.logger.Info("document added to collection", "collection_id", collectionID, "document_id", documentID)
	s.persist(ctx)
	return nil
}

// RemoveFromCollection skips the request when the document is not a member
func (s *libraryService) RemoveFromCollection(ctx context.Context, collectionID, documentID string) error {
	s.mu.RLock()
	member := s.lib.Memberships.Contains(collectionID, documentID)
	s.mu.RUnlock()
	if !member {
		return nil
	}

	if err := s.remote.RemoveDocumentFromCollection(ctx, collectionID, documentID); err != nil {
		return err
	}

	s.mu.Lock()
	s.lib.Memberships.Remove(collectionID, documentID)
	s.mu.Unlock()

	s.logger.Info("document removed from collection", "collection_id", collectionID, "document_id", documentID)
	s.persist(ctx)
	return nil
}

// RefreshCollection re-reads one collection's documents from the server
func (s *libraryService) RefreshCollection(ctx context.Context, id string) ([]models.Document, error) {
	if _, err := s.Collection(id); err != nil {
		return nil, err
	}

	docs, err := s.remote.ListCollectionDocuments(ctx, id)
	if err != nil {
		return nil, err
	}

	ids := make([]string, 0, len(docs))
	s.mu.Lock()
	for _, d := range docs {
		s.lib.Documents.Put(d)
		ids = append(ids, d.ID)
	}
	s.lib.Memberships.ReplaceCollection(id, ids)
	s.mu.Unlock()

	s.persist(ctx)
	return docs, nil
}

func (s *libraryService) UploadDocument(ctx context.Context, path string, progress models.UploadProgressFunc) (*models.Document, error) {
	doc, err := s.remote.UploadPDF(ctx, path, progress)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	s.lib.Documents.PutFront(*doc)
	s.mu.Unlock()

	s.logger.Info("document uploaded", "id", doc.ID, "title", doc.Title)
	s.persist(ctx)
	return doc, nil
}

func (s *libraryService) CreateDocument(ctx context.Context, input *models.DocumentInput) (*models.Document, error) {
	if err := validateDocumentInput(input, true, s.now()); err != nil {
		return nil, validationError(err)
	}

	doc, err := s.remote.CreateDocument(ctx, *input)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	s.lib.Documents.PutFront(*doc)
	s.mu.Unlock()

	s.logger.Info("document created", "id", doc.ID, "title", doc.Title)
	s.persist(ctx)
	return doc, nil
}

// GetDocument fetches the server's current record and refreshes the catalog
func (s *libraryService) GetDocument(ctx context.Context, id string) (*models.Document, error) {
	doc, err := s.remote.GetDocument(ctx, id)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	s.lib.Documents.Put(*doc)
	s.mu.Unlock()
	return doc, nil
}

func (s *libraryService) UpdateDocument(ctx context.Context, id string, input *models.DocumentInput) (*models.Document, error) {
	if input.IsEmpty() {
		return nil, &domain.ValidationError{Message: "nothing to update"}
	}
	if err := validateDocumentInput(input, false, s.now()); err != nil {
		return nil, validationError(err)
	}

	doc, err := s.remote.UpdateDocument(ctx, id, *input)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	s.lib.Documents.Put(*doc)
	s.mu.Unlock()

	s.logger.Info("document updated", "id", doc.ID)
	s.persist(ctx)
	return doc, nil
}

func (s *libraryService) DeleteDocument(ctx context.Context, id string) error {
	if err := s.remote.DeleteDocument(ctx, id); err != nil {
		return err
	}

	s.mu.Lock()
	err := s.lib.DeleteDocument(id)
	s.mu.Unlock()
	if err != nil && !errors.Is(err, domain.ErrNotFound) {
		return err
	}

	s.logger.Info("document deleted", "id", id)
	s.persist(ctx)
	return nil
}

// SearchDocuments is a pass-through; results do not touch the local model
func (s *libraryService) SearchDocuments(ctx context.Context, query string) ([]models.Document, error) {
	if err := validateSearchQuery(query); err != nil {
		return nil, validationError(err)
	}
	return s.remote.SearchDocuments(ctx, query)
}

func (s *libraryService) Forest(view *lib.ViewState) []*models.CollectionNode {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.lib.Forest(view)
}

func (s *libraryService) DocumentsFor(selection *string) ([]models.Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.lib.DocumentsFor(selection)
}

func (s *libraryService) Collection(id string) (models.Collection, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.lib.Collections.Get(id)
}

func (s *libraryService) CollectionPath(id string) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.lib.Collections.Path(id)
}

func (s *libraryService) Document(id string) (models.Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.lib.Documents.Get(id)
}

func (s *libraryService) CollectionsFor(documentID string) []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.lib.Memberships.CollectionsFor(documentID)
}

// Snapshot copies the local model; the user id is left empty
func (s *libraryService) Snapshot() *models.Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.lib.Snapshot("", s.syncedAt)
}

// applyCollection installs a server record. A collection deleted locally
// while the request was in flight stays deleted.
func (s *libraryService) applyCollection(c *models.Collection) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	err := s.lib.Collections.Replace(*c)
	if errors.Is(err, domain.ErrNotFound) && !s.lib.Collections.Has(c.ID) {
		s.logger.Warn("collection vanished during update", "id", c.ID)
		return nil
	}
	if err != nil {
		return fmt.Errorf("apply updated collection: %w", err)
	}
	return nil
}

// persist writes the snapshot cache. Failures are logged, not returned:
// the cache only speeds up the next start.
func (s *libraryService) persist(ctx context.Context) {
	userID, err := sessionUserID(ctx)
	if err != nil {
		return
	}

	s.mu.RLock()
	snap := s.lib.Snapshot(userID, s.syncedAt)
	s.mu.RUnlock()

	if err := s.cache.Save(ctx, snap); err != nil {
		s.logger.Warn("failed to persist library snapshot", "user_id", userID, "error", err)
	}
}

func (s *libraryService) statsLocked() *services.SyncStats {
	return &services.SyncStats{
		Collections: s.lib.Collections.Len(),
		Documents:   s.lib.Documents.Len(),
		Memberships: s.lib.Memberships.Len(),
		SyncedAt:    s.syncedAt,
	}
}

func sessionUserID(ctx context.Context) (string, error) {
	session := auth.FromContext(ctx)
	if session == nil || session.UserID() == "" {
		return "", fmt.Errorf("%w: no session", domain.ErrUnauthorized)
	}
	return session.UserID(), nil
}
