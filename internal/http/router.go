package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"findex/internal/handlers"
	"findex/internal/pipeline"
	"findex/internal/storage"
	"findex/internal/vectorstore"
)

// Deps holds dependencies for the HTTP router.
type Deps struct {
	Pipeline       *pipeline.Pipeline
	SearchEngine   handlers.Searcher
	DocumentRepo   storage.DocumentStore
	ChunkRepo      storage.ChunkStore
	VectorStore    vectorstore.VectorStore
	CollectionName string
}

// NewRouter creates a new HTTP router with the provided dependencies.
func NewRouter(deps *Deps) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.Recoverer)
	r.Use(LoggerMiddleware)
	r.Use(CORS)

	healthHandler := handlers.NewHealthHandler(deps.VectorStore, deps.CollectionName)
	ingestHandler := handlers.NewIngestHandler(deps.Pipeline)
	searchHandler := handlers.NewSearchHandler(deps.SearchEngine)
	documentsHandler := handlers.NewDocumentsHandler(deps.DocumentRepo)
	statsHandler := handlers.NewStatsHandler(deps.DocumentRepo, deps.ChunkRepo, deps.CollectionName)

	r.Route("/api", func(r chi.Router) {
		r.Method(http.MethodGet, "/health", healthHandler)
		r.Method(http.MethodPost, "/ingest", ingestHandler)
		r.Method(http.MethodGet, "/search", searchHandler)
		r.Method(http.MethodGet, "/documents", documentsHandler)
		r.Method(http.MethodGet, "/stats", statsHandler)
	})

	return r
}
