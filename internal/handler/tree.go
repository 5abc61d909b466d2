package handler

import (
	"log/slog"
	"net/http"

	models "scholarvault/internal/domain/models/library"
	"scholarvault/internal/domain/services"
	"scholarvault/internal/httputil"
	lib "scholarvault/internal/library"
)

// TreeHandler serves the display forest
type TreeHandler struct {
	libraryService services.LibraryService
	state          *BrowseState
	logger         *slog.Logger
}

// NewTreeHandler creates a new tree handler
func NewTreeHandler(libraryService services.LibraryService, state *BrowseState, logger *slog.Logger) *TreeHandler {
	return &TreeHandler{
		libraryService: libraryService,
		state:          state,
		logger:         logger,
	}
}

type treeResponse struct {
	SelectedCollectionID *string                  `json:"selected_collection_id"`
	Collections          []*models.CollectionNode `json:"collections"`
}

// GetTree returns the nested collection forest with expand/selection flags
// GET /api/tree
func (h *TreeHandler) GetTree(w http.ResponseWriter, r *http.Request) {
	var resp treeResponse
	h.state.With(func(view *lib.ViewState) {
		resp.SelectedCollectionID = view.Selected()
		resp.Collections = h.libraryService.Forest(view)
	})
	if resp.Collections == nil {
		resp.Collections = []*models.CollectionNode{}
	}

	httputil.RespondJSON(w, http.StatusOK, resp)
}

// Sync re-reads the library from the API and forgets view state for
// collections that no longer exist
// POST /api/sync
func (h *TreeHandler) Sync(w http.ResponseWriter, r *http.Request) {
	stats, err := h.libraryService.Sync(r.Context())
	if err != nil {
		handleError(w, r, h.logger, err)
		return
	}

	h.state.With(func(view *lib.ViewState) {
		var gone []string
		for _, id := range view.ExpandedIDs() {
			if _, err := h.libraryService.Collection(id); err != nil {
				gone = append(gone, id)
			}
		}
		if sel := view.Selected(); sel != nil {
			if _, err := h.libraryService.Collection(*sel); err != nil {
				gone = append(gone, *sel)
			}
		}
		view.Prune(gone)
	})

	httputil.RespondJSON(w, http.StatusOK, stats)
}
