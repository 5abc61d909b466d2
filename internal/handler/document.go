package handler

import (
	"errors"
	"log/slog"
	"net/http"

	"scholarvault/internal/domain"
	models "scholarvault/internal/domain/models/library"
	"scholarvault/internal/domain/services"
	"scholarvault/internal/httputil"
	lib "scholarvault/internal/library"
)

// DocumentHandler serves document lists over the local library
type DocumentHandler struct {
	libraryService services.LibraryService
	state          *BrowseState
	logger         *slog.Logger
}

// NewDocumentHandler creates a new document handler
func NewDocumentHandler(libraryService services.LibraryService, state *BrowseState, logger *slog.Logger) *DocumentHandler {
	return &DocumentHandler{
		libraryService: libraryService,
		state:          state,
		logger:         logger,
	}
}

// ListDocuments returns the documents for the current selection.
// ?collection_id= overrides the selection without changing it.
// GET /api/documents
func (h *DocumentHandler) ListDocuments(w http.ResponseWriter, r *http.Request) {
	var docs []models.Document
	var err error
	if id := r.URL.Query().Get("collection_id"); id != "" {
		docs, err = h.libraryService.DocumentsFor(&id)
	} else {
		h.state.With(func(view *lib.ViewState) {
			selection := view.Selected()
			docs, err = h.libraryService.DocumentsFor(selection)
			if selection != nil && errors.Is(err, domain.ErrNotFound) {
				h.logger.Warn("selected collection is gone, showing all documents", "id", *selection)
				view.Select(nil)
				docs, err = h.libraryService.DocumentsFor(nil)
			}
		})
	}
	if err != nil {
		handleError(w, r, h.logger, err)
		return
	}
	httputil.RespondJSON(w, http.StatusOK, docs)
}

// ListCollectionDocuments returns the members of one collection
// GET /api/collections/{id}/documents
func (h *DocumentHandler) ListCollectionDocuments(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	docs, err := h.libraryService.DocumentsFor(&id)
	if err != nil {
		handleError(w, r, h.logger, err)
		return
	}
	httputil.RespondJSON(w, http.StatusOK, docs)
}

// GetDocument returns one document from the local catalog with the
// collections it belongs to
// GET /api/documents/{id}
func (h *DocumentHandler) GetDocument(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	doc, err := h.libraryService.Document(id)
	if err != nil {
		handleError(w, r, h.logger, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, map[string]any{
		"document":       doc,
		"collection_ids": h.libraryService.CollectionsFor(id),
	})
}

// SearchDocuments forwards a full-text query to the API
// GET /api/search?q=
func (h *DocumentHandler) SearchDocuments(w http.ResponseWriter, r *http.Request) {
	docs, err := h.libraryService.SearchDocuments(r.Context(), r.URL.Query().Get("q"))
	if err != nil {
		handleError(w, r, h.logger, err)
		return
	}
	httputil.RespondJSON(w, http.StatusOK, docs)
}
