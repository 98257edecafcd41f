package handlers

import (
	"net/http"

	"findex/internal/contextutil"
	"findex/internal/storage"
)

// DocumentsHandler lists the documents tracked by the pipeline.
type DocumentsHandler struct {
	docRepo storage.DocumentStore
}

// NewDocumentsHandler creates a new DocumentsHandler.
func NewDocumentsHandler(docRepo storage.DocumentStore) *DocumentsHandler {
	return &DocumentsHandler{docRepo: docRepo}
}

// DocumentInfo is one tracked document in the listing.
type DocumentInfo struct {
	ID        string `json:"id"`
	Source    string `json:"source"`
	Title     string `json:"title"`
	Pages     int    `json:"pages"`
	State     string `json:"state"`
	UpdatedAt string `json:"updated_at"`
}

// DocumentsResponse represents the response from the documents endpoint.
type DocumentsResponse struct {
	Documents []DocumentInfo `json:"documents"`
}

// ServeHTTP answers GET /api/documents.
func (h *DocumentsHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := contextutil.LoggerFromContext(ctx)

	if r.Method != http.MethodGet {
		logger.WarnContext(ctx, "method not allowed", "method", r.Method)
		writeError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	docs, err := h.docRepo.List(ctx)
	if err != nil {
		logger.ErrorContext(ctx, "failed to list documents", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to list documents")
		return
	}

	infos := make([]DocumentInfo, 0, len(docs))
	for _, doc := range docs {
		infos = append(infos, DocumentInfo{
			ID:        doc.ID,
			Source:    doc.Source,
			Title:     doc.Title,
			Pages:     doc.Pages,
			State:     doc.State,
			UpdatedAt: doc.UpdatedAt.UTC().Format("2006-01-02T15:04:05Z07:00"),
		})
	}

	writeJSON(w, http.StatusOK, DocumentsResponse{Documents: infos})
}
