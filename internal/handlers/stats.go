package handlers

import (
	"net/http"

	"findex/internal/contextutil"
	"findex/internal/storage"
)

// StatsHandler reports ingestion statistics.
type StatsHandler struct {
	docRepo    storage.DocumentStore
	chunkRepo  storage.ChunkStore
	collection string
}

// NewStatsHandler creates a new StatsHandler.
func NewStatsHandler(docRepo storage.DocumentStore, chunkRepo storage.ChunkStore, collection string) *StatsHandler {
	return &StatsHandler{
		docRepo:    docRepo,
		chunkRepo:  chunkRepo,
		collection: collection,
	}
}

// StatsResponse represents the response from the stats endpoint.
type StatsResponse struct {
	Documents  int    `json:"documents"`
	Processed  int    `json:"processed"`
	Pending    int    `json:"pending"`
	Chunks     int    `json:"chunks"`
	Collection string `json:"collection"`
}

// ServeHTTP answers GET /api/stats.
func (h *StatsHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
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
		writeError(w, http.StatusInternalServerError, "failed to load stats")
		return
	}

	chunkCount, err := h.chunkRepo.Count(ctx)
	if err != nil {
		logger.ErrorContext(ctx, "failed to count chunks", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to load stats")
		return
	}

	resp := StatsResponse{
		Documents:  len(docs),
		Chunks:     chunkCount,
		Collection: h.collection,
	}
	for _, doc := range docs {
		switch doc.State {
		case storage.StateProcessed:
			resp.Processed++
		case storage.StatePending:
			resp.Pending++
		}
	}

	writeJSON(w, http.StatusOK, resp)
}
