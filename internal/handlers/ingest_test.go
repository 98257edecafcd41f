package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"go.uber.org/mock/gomock"

	"findex/internal/chunker"
	"findex/internal/pipeline"
	pipeline_mocks "findex/internal/pipeline/mocks"
	"findex/internal/source"
	storage_mocks "findex/internal/storage/mocks"
	vectorstore_mocks "findex/internal/vectorstore/mocks"
)

// emptyPipeline builds a pipeline over an empty source directory, so a
// triggered run completes without touching any collaborator.
func emptyPipeline(t *testing.T, ctrl *gomock.Controller) *pipeline.Pipeline {
	t.Helper()

	scanner, err := source.NewScanner(t.TempDir())
	if err != nil {
		t.Fatalf("NewScanner() error = %v", err)
	}

	p, err := pipeline.New(
		scanner,
		storage_mocks.NewMockDocumentStore(ctrl),
		storage_mocks.NewMockChunkStore(ctrl),
		pipeline_mocks.NewMockExtractor(ctrl),
		pipeline_mocks.NewMockEmbedder(ctrl),
		vectorstore_mocks.NewMockVectorStore(ctrl),
		"test-collection",
		chunker.DefaultConfig(),
		100,
	)
	if err != nil {
		t.Fatalf("pipeline.New() error = %v", err)
	}
	return p
}

func TestIngestHandler_ServeHTTP(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	handler := NewIngestHandler(emptyPipeline(t, ctrl))

	req := httptest.NewRequest(http.MethodPost, "/api/ingest", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusAccepted {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusAccepted)
	}

	var resp IngestResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp.Status != "accepted" {
		t.Errorf("Status = %q, want accepted", resp.Status)
	}
}

func TestIngestHandler_MethodNotAllowed(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	handler := NewIngestHandler(emptyPipeline(t, ctrl))

	req := httptest.NewRequest(http.MethodGet, "/api/ingest", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusMethodNotAllowed {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusMethodNotAllowed)
	}
}
