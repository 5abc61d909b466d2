package handler

import (
	"log/slog"
	"net/http"

	"scholarvault/internal/domain/services"
	"scholarvault/internal/httputil"
	lib "scholarvault/internal/library"
)

// ViewHandler exposes the expand/selection state
type ViewHandler struct {
	libraryService services.LibraryService
	state          *BrowseState
	logger         *slog.Logger
}

func NewViewHandler(libraryService services.LibraryService, state *BrowseState, logger *slog.Logger) *ViewHandler {
	return &ViewHandler{
		libraryService: libraryService,
		state:          state,
		logger:         logger,
	}
}

type viewResponse struct {
	SelectedCollectionID *string  `json:"selected_collection_id"`
	ExpandedIDs          []string `json:"expanded_ids"`
}

type selectRequest struct {
	CollectionID *string `json:"collection_id"`
}

// GetView returns the current view state
// GET /api/view
func (h *ViewHandler) GetView(w http.ResponseWriter, r *http.Request) {
	var resp viewResponse
	h.state.With(func(view *lib.ViewState) {
		resp = snapshotView(view)
	})
	httputil.RespondJSON(w, http.StatusOK, resp)
}

// Toggle flips a collection between expanded and collapsed. The id is
// checked under the state lock so a concurrent sync prune cannot be undone.
// POST /api/view/toggle/{id}
func (h *ViewHandler) Toggle(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	var resp viewResponse
	var err error
	h.state.With(func(view *lib.ViewState) {
		if _, err = h.libraryService.Collection(id); err != nil {
			return
		}
		view.Toggle(id)
		resp = snapshotView(view)
	})
	if err != nil {
		handleError(w, r, h.logger, err)
		return
	}
	httputil.RespondJSON(w, http.StatusOK, resp)
}

// Select changes the selected collection; null selects All Documents
// PUT /api/view/selection
func (h *ViewHandler) Select(w http.ResponseWriter, r *http.Request) {
	var req selectRequest
	if err := httputil.ParseJSON(w, r, &req); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	var resp viewResponse
	var err error
	h.state.With(func(view *lib.ViewState) {
		if req.CollectionID != nil {
			if _, err = h.libraryService.Collection(*req.CollectionID); err != nil {
				return
			}
		}
		view.Select(req.CollectionID)
		resp = snapshotView(view)
	})
	if err != nil {
		handleError(w, r, h.logger, err)
		return
	}
	httputil.RespondJSON(w, http.StatusOK, resp)
}

func snapshotView(view *lib.ViewState) viewResponse {
	return viewResponse{
		SelectedCollectionID: view.Selected(),
		ExpandedIDs:          view.ExpandedIDs(),
	}
}
