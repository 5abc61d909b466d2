package handler

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"slices"
	"strings"
	"testing"

	"scholarvault/internal/domain"
	models "scholarvault/internal/domain/models/library"
	"scholarvault/internal/domain/services"
	"scholarvault/internal/repository"
	lib "scholarvault/internal/library"
	librarysvc "scholarvault/internal/service/library"
)

func strPtr(s string) *string { return &s }

// stubRemote serves a fixed library. Methods the browse server never calls
// fall through to the nil embedded interface.
type stubRemote struct {
	services.RemoteLibrary
	collections []models.Collection
	documents   []models.Document
	members     map[string][]string
	searchErr   error
}

func newStubRemote() *stubRemote {
	return &stubRemote{
		collections: []models.Collection{
			{ID: "A", Name: "Alpha"},
			{ID: "B", Name: "Beta", ParentID: strPtr("A")},
			{ID: "C", Name: "Gamma", ParentID: strPtr("B")},
		},
		documents: []models.Document{
			{ID: "D1", Title: "Attention"},
			{ID: "D2", Title: "Diffusion"},
		},
		members: map[string][]string{"B": {"D1"}},
	}
}

func (s *stubRemote) ListCollections(context.Context) ([]models.Collection, error) {
	return slices.Clone(s.collections), nil
}

func (s *stubRemote) ListDocuments(context.Context) ([]models.Document, error) {
	return slices.Clone(s.documents), nil
}

func (s *stubRemote) ListCollectionDocuments(_ context.Context, id string) ([]models.Document, error) {
	var docs []models.Document
	for _, d := range s.documents {
		if slices.Contains(s.members[id], d.ID) {
			docs = append(docs, d)
		}
	}
	return docs, nil
}

func (s *stubRemote) SearchDocuments(context.Context, string) ([]models.Document, error) {
	if s.searchErr != nil {
		return nil, s.searchErr
	}
	return s.documents[:1], nil
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newSyncedService(t *testing.T, remote *stubRemote) services.LibraryService {
	t.Helper()
	svc := librarysvc.NewLibraryService(remote, repository.DisabledCache{}, testLogger())
	if _, err := svc.Sync(context.Background()); err != nil {
		t.Fatalf("Sync failed: %v", err)
	}
	return svc
}

func newTestServer(t *testing.T, remote *stubRemote) http.Handler {
	t.Helper()
	return NewRouter(newSyncedService(t, remote), NewBrowseState(), testLogger())
}

// lockCheckingService counts collection lookups made while the browse
// state is unlocked
type lockCheckingService struct {
	services.LibraryService
	state    *BrowseState
	unlocked int
}

func (s *lockCheckingService) Collection(id string) (models.Collection, error) {
	if s.state.mu.TryLock() {
		s.state.mu.Unlock()
		s.unlocked++
	}
	return s.LibraryService.Collection(id)
}

func do(t *testing.T, h http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	if err := json.Unmarshal(rec.Body.Bytes(), &v); err != nil {
		t.Fatalf("decode %q: %v", rec.Body.String(), err)
	}
	return v
}

func TestHealthCheck(t *testing.T) {
	rec := do(t, newTestServer(t, newStubRemote()), http.MethodGet, "/health", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if body := decode[map[string]any](t, rec); body["status"] != "ok" {
		t.Errorf("body = %v", body)
	}
}

func TestGetTree(t *testing.T) {
	srv := newTestServer(t, newStubRemote())

	rec := do(t, srv, http.MethodGet, "/api/tree", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	tree := decode[treeResponse](t, rec)
	if tree.SelectedCollectionID != nil {
		t.Errorf("initial selection = %v", *tree.SelectedCollectionID)
	}
	if len(tree.Collections) != 1 || tree.Collections[0].ID != "A" {
		t.Fatalf("roots = %+v", tree.Collections)
	}
	beta := tree.Collections[0].Children[0]
	if beta.ID != "B" || beta.Expanded || !slices.Equal(beta.DocumentIDs, []string{"D1"}) {
		t.Errorf("B node = %+v", beta)
	}
}

func TestViewToggle(t *testing.T) {
	srv := newTestServer(t, newStubRemote())

	tests := []struct {
		name         string
		id           string
		wantStatus   int
		wantExpanded []string
	}{
		{"expand", "A", http.StatusOK, []string{"A"}},
		{"expand second", "B", http.StatusOK, []string{"A", "B"}},
		{"collapse", "A", http.StatusOK, []string{"B"}},
		{"unknown", "nope", http.StatusNotFound, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := do(t, srv, http.MethodPost, "/api/view/toggle/"+tt.id, "")
			if rec.Code != tt.wantStatus {
				t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
			}
			if tt.wantStatus != http.StatusOK {
				if ct := rec.Header().Get("Content-Type"); ct != "application/problem+json" {
					t.Errorf("Content-Type = %s", ct)
				}
				return
			}
			if got := decode[viewResponse](t, rec).ExpandedIDs; !slices.Equal(got, tt.wantExpanded) {
				t.Errorf("expanded = %v, want %v", got, tt.wantExpanded)
			}
		})
	}

	tree := decode[treeResponse](t, do(t, srv, http.MethodGet, "/api/tree", ""))
	if tree.Collections[0].Expanded || !tree.Collections[0].Children[0].Expanded {
		t.Error("tree flags do not follow the view state")
	}
}

func TestViewSelection(t *testing.T) {
	srv := newTestServer(t, newStubRemote())

	tests := []struct {
		name       string
		body       string
		wantStatus int
		wantDocs   []string
	}{
		{"select B", `{"collection_id":"B"}`, http.StatusOK, []string{"D1"}},
		{"select A, membership is not inherited", `{"collection_id":"A"}`, http.StatusOK, []string{}},
		{"unknown collection", `{"collection_id":"nope"}`, http.StatusNotFound, []string{}},
		{"unknown field", `{"collection":"B"}`, http.StatusBadRequest, []string{}},
		{"all documents", `{"collection_id":null}`, http.StatusOK, []string{"D1", "D2"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := do(t, srv, http.MethodPut, "/api/view/selection", tt.body)
			if rec.Code != tt.wantStatus {
				t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
			}
			if tt.wantStatus != http.StatusOK {
				return
			}

			docs := decode[[]models.Document](t, do(t, srv, http.MethodGet, "/api/documents", ""))
			ids := make([]string, 0, len(docs))
			for _, d := range docs {
				ids = append(ids, d.ID)
			}
			if !slices.Equal(ids, tt.wantDocs) {
				t.Errorf("documents = %v, want %v", ids, tt.wantDocs)
			}
		})
	}
}

func TestDocumentRoutes(t *testing.T) {
	remote := newStubRemote()
	remote.searchErr = &domain.RemoteRequestError{Status: http.StatusInternalServerError, Message: "Search failed"}
	srv := newTestServer(t, remote)

	tests := []struct {
		name       string
		path       string
		wantStatus int
	}{
		{"collection members", "/api/collections/B/documents", http.StatusOK},
		{"unknown collection", "/api/collections/nope/documents", http.StatusNotFound},
		{"override unknown", "/api/documents?collection_id=nope", http.StatusNotFound},
		{"document", "/api/documents/D1", http.StatusOK},
		{"unknown document", "/api/documents/D9", http.StatusNotFound},
		{"blank search", "/api/search?q=", http.StatusBadRequest},
		{"upstream failure", "/api/search?q=attention", http.StatusBadGateway},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := do(t, srv, http.MethodGet, tt.path, "")
			if rec.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d, body = %s", rec.Code, tt.wantStatus, rec.Body.String())
			}
		})
	}

	doc := decode[map[string]any](t, do(t, srv, http.MethodGet, "/api/documents/D1", ""))
	if ids, _ := doc["collection_ids"].([]any); len(ids) != 1 || ids[0] != "B" {
		t.Errorf("collection_ids = %v", doc["collection_ids"])
	}
}

func TestSyncPrunesView(t *testing.T) {
	remote := newStubRemote()
	srv := newTestServer(t, remote)

	do(t, srv, http.MethodPost, "/api/view/toggle/C", "")
	do(t, srv, http.MethodPut, "/api/view/selection", `{"collection_id":"C"}`)

	remote.collections = remote.collections[:2]
	rec := do(t, srv, http.MethodPost, "/api/sync", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}
	if stats := decode[services.SyncStats](t, rec); stats.Collections != 2 {
		t.Errorf("stats = %+v", stats)
	}

	view := decode[viewResponse](t, do(t, srv, http.MethodGet, "/api/view", ""))
	if view.SelectedCollectionID != nil || len(view.ExpandedIDs) != 0 {
		t.Errorf("view still references removed collection: %+v", view)
	}
}

func TestViewChecksCollectionUnderStateLock(t *testing.T) {
	state := NewBrowseState()
	svc := &lockCheckingService{LibraryService: newSyncedService(t, newStubRemote()), state: state}
	srv := NewRouter(svc, state, testLogger())

	for _, req := range []struct{ method, path, body string }{
		{http.MethodPost, "/api/view/toggle/A", ""},
		{http.MethodPost, "/api/view/toggle/nope", ""},
		{http.MethodPut, "/api/view/selection", `{"collection_id":"B"}`},
		{http.MethodPut, "/api/view/selection", `{"collection_id":"nope"}`},
	} {
		do(t, srv, req.method, req.path, req.body)
	}
	if svc.unlocked != 0 {
		t.Errorf("%d collection checks ran outside the state lock", svc.unlocked)
	}
}

func TestListDocumentsFallsBackWhenSelectionIsGone(t *testing.T) {
	state := NewBrowseState()
	srv := NewRouter(newSyncedService(t, newStubRemote()), state, testLogger())
	state.With(func(view *lib.ViewState) {
		view.Select(strPtr("gone"))
	})

	rec := do(t, srv, http.MethodGet, "/api/documents", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}
	if docs := decode[[]models.Document](t, rec); len(docs) != 2 {
		t.Errorf("got %d documents, want all 2", len(docs))
	}
	if view := decode[viewResponse](t, do(t, srv, http.MethodGet, "/api/view", "")); view.SelectedCollectionID != nil {
		t.Errorf("selection = %v, want All Documents", *view.SelectedCollectionID)
	}
}
