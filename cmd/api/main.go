// Command api runs the findex HTTP server. On startup it kicks off a
// background ingestion pass over the source directory, then serves search,
// ingestion, and status endpoints.
package main

import (
	"context"
	"log"
	"log/slog"
	nethttp "net/http"
	"os"

	"findex/internal/config"
	"findex/internal/extract"
	"findex/internal/http"
	"findex/internal/llm"
	"findex/internal/pipeline"
	"findex/internal/search"
	"findex/internal/source"
	"findex/internal/storage"
	"findex/internal/vectorstore"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	opts := &slog.HandlerOptions{Level: cfg.LogLevel}
	var handler slog.Handler
	if cfg.LogFormat == "json" {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		handler = slog.NewTextHandler(os.Stdout, opts)
	}
	slog.SetDefault(slog.New(handler))

	db, err := storage.New(cfg.DBPath)
	if err != nil {
		log.Fatalf("Failed to open database: %v", err)
	}
	defer func() {
		_ = db.Close()
	}()

	if err := storage.Migrate(db); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}
	slog.Info("Database initialized", "path", cfg.DBPath)

	docRepo := storage.NewDocumentRepo(db)
	chunkRepo := storage.NewChunkRepo(db)

	ctx := context.Background()

	vectorStore, err := vectorstore.NewQdrantStore(cfg.QdrantURL)
	if err != nil {
		log.Fatalf("Failed to create Qdrant client: %v", err)
	}
	if err := vectorStore.EnsureCollection(ctx, cfg.QdrantCollection, cfg.QdrantVectorSize); err != nil {
		log.Fatalf("Failed to ensure Qdrant collection: %v", err)
	}
	slog.Info("Qdrant collection ready", "collection", cfg.QdrantCollection, "vector_size", cfg.QdrantVectorSize)

	embedder := llm.NewEmbeddingsClient(cfg.EmbeddingBaseURL, cfg.EmbeddingAPIKey, cfg.EmbeddingModelName, cfg.QdrantVectorSize)
	embedder.BatchSize = cfg.EmbeddingBatchSize

	extractor := extract.NewClient(cfg.ExtractBaseURL, cfg.ExtractAPIKey)

	scanner, err := source.NewScanner(cfg.SourceDir)
	if err != nil {
		log.Fatalf("Failed to open source directory: %v", err)
	}

	ingestPipeline, err := pipeline.New(
		scanner,
		docRepo,
		chunkRepo,
		extractor,
		embedder,
		vectorStore,
		cfg.QdrantCollection,
		cfg.Chunking,
		cfg.IndexBatchSize,
	)
	if err != nil {
		log.Fatalf("Failed to create pipeline: %v", err)
	}

	searchEngine := search.NewEngine(embedder, vectorStore, cfg.QdrantCollection, chunkRepo)

	deps := &http.Deps{
		Pipeline:       ingestPipeline,
		SearchEngine:   searchEngine,
		DocumentRepo:   docRepo,
		ChunkRepo:      chunkRepo,
		VectorStore:    vectorStore,
		CollectionName: cfg.QdrantCollection,
	}
	router := http.NewRouter(deps)

	// Initial ingest runs in the background once the router is up.
	go func() {
		ingestCtx := context.Background()
		slog.Info("Starting background ingestion", "source_dir", cfg.SourceDir)
		if err := ingestPipeline.IngestAll(ingestCtx); err != nil {
			slog.Error("Ingestion completed with errors", "error", err)
		} else {
			slog.Info("Ingestion completed successfully")
		}
	}()

	addr := ":" + cfg.APIPort
	slog.Info("Starting API server", "addr", addr)
	if err := nethttp.ListenAndServe(addr, router); err != nil {
		log.Fatalf("API server failed to start: %v", err)
	}
}
