package handlers

import (
	"context"
	"net/http"

	"findex/internal/contextutil"
	"findex/internal/pipeline"
)

// IngestHandler handles HTTP requests for triggering an ingestion run.
type IngestHandler struct {
	pipeline *pipeline.Pipeline
}

// NewIngestHandler creates a new IngestHandler.
func NewIngestHandler(p *pipeline.Pipeline) *IngestHandler {
	return &IngestHandler{pipeline: p}
}

// IngestResponse represents the response from the ingest endpoint.
type IngestResponse struct {
	Message string `json:"message"`
	Status  string `json:"status"`
}

// ServeHTTP triggers ingestion of the source directory. With ?force=true all
// previously indexed data is cleared first. The run happens in the
// background; the endpoint returns immediately.
func (h *IngestHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := contextutil.LoggerFromContext(ctx)

	if r.Method != http.MethodPost {
		logger.WarnContext(ctx, "method not allowed", "method", r.Method)
		writeError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	force := r.URL.Query().Get("force") == "true"
	logger.InfoContext(ctx, "ingestion triggered via API", "force", force)

	// Background context: the run must outlive the HTTP request.
	go func() {
		runCtx := context.Background()
		if force {
			if err := h.pipeline.ClearAll(runCtx); err != nil {
				logger.ErrorContext(runCtx, "failed to clear existing data", "error", err)
				return
			}
		}
		if err := h.pipeline.IngestAll(runCtx); err != nil {
			logger.ErrorContext(runCtx, "ingestion completed with errors", "error", err)
			return
		}
		logger.InfoContext(runCtx, "ingestion completed successfully")
	}()

	writeJSON(w, http.StatusAccepted, IngestResponse{
		Message: "ingestion started",
		Status:  "accepted",
	})
}
