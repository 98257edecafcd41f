package handlers

//go:generate go run go.uber.org/mock/mockgen@latest -destination=mocks/mock_searcher.go -package=mocks findex/internal/handlers Searcher

import (
	"context"
	"net/http"
	"strconv"

	"findex/internal/contextutil"
	"findex/internal/search"
)

// Searcher answers similarity queries. Implemented by search.Engine.
type Searcher interface {
	Search(ctx context.Context, req search.Request) ([]search.Hit, error)
}

// SearchHandler handles HTTP requests for similarity search.
type SearchHandler struct {
	engine Searcher
}

// NewSearchHandler creates a new SearchHandler.
func NewSearchHandler(engine Searcher) *SearchHandler {
	return &SearchHandler{engine: engine}
}

// SearchResponse represents the response from the search endpoint.
type SearchResponse struct {
	Query string       `json:"query"`
	Hits  []search.Hit `json:"hits"`
}

// ServeHTTP answers GET /api/search?q=...&k=...&source=...
func (h *SearchHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := contextutil.LoggerFromContext(ctx)

	if r.Method != http.MethodGet {
		logger.WarnContext(ctx, "method not allowed", "method", r.Method)
		writeError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	query := r.URL.Query().Get("q")
	if query == "" {
		writeError(w, http.StatusBadRequest, "query parameter q is required")
		return
	}

	req := search.Request{
		Query:  query,
		Source: r.URL.Query().Get("source"),
	}
	if kStr := r.URL.Query().Get("k"); kStr != "" {
		k, err := strconv.Atoi(kStr)
		if err != nil || k <= 0 {
			writeError(w, http.StatusBadRequest, "k must be a positive integer")
			return
		}
		req.K = k
	}

	hits, err := h.engine.Search(ctx, req)
	if err != nil {
		logger.ErrorContext(ctx, "search failed", "error", err)
		writeError(w, http.StatusInternalServerError, "search failed")
		return
	}

	if hits == nil {
		hits = []search.Hit{}
	}
	writeJSON(w, http.StatusOK, SearchResponse{Query: query, Hits: hits})
}
