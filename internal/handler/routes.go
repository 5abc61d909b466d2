package handler

import (
	"log/slog"
	"net/http"

	"scholarvault/internal/domain/services"
)

// NewRouter registers the browse server routes on a fresh mux
func NewRouter(libraryService services.LibraryService, state *BrowseState, logger *slog.Logger) *http.ServeMux {
	treeHandler := NewTreeHandler(libraryService, state, logger)
	viewHandler := NewViewHandler(libraryService, state, logger)
	docHandler := NewDocumentHandler(libraryService, state, logger)

	mux := http.NewServeMux()

	mux.HandleFunc("GET /health", HealthCheck)

	mux.HandleFunc("GET /api/tree", treeHandler.GetTree)
	mux.HandleFunc("POST /api/sync", treeHandler.Sync)

	mux.HandleFunc("GET /api/view", viewHandler.GetView)
	mux.HandleFunc("POST /api/view/toggle/{id}", viewHandler.Toggle)
	mux.HandleFunc("PUT /api/view/selection", viewHandler.Select)

	mux.HandleFunc("GET /api/documents", docHandler.ListDocuments)
	mux.HandleFunc("GET /api/documents/{id}", docHandler.GetDocument)
	mux.HandleFunc("GET /api/search", docHandler.SearchDocuments)
	mux.HandleFunc("GET /api/collections/{id}/documents", docHandler.ListCollectionDocuments)

	return mux
}
