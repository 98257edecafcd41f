// Command ingest runs one full pipeline pass over the source directory and
// exits: extract, chunk, embed, index.
package main

import (
	"context"
	"log"
	"log/slog"
	"os"

	"findex/internal/config"
	"findex/internal/extract"
	"findex/internal/llm"
	"findex/internal/pipeline"
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

	ctx := context.Background()

	vectorStore, err := vectorstore.NewQdrantStore(cfg.QdrantURL)
	if err != nil {
		log.Fatalf("Failed to create Qdrant client: %v", err)
	}
	if err := vectorStore.EnsureCollection(ctx, cfg.QdrantCollection, cfg.QdrantVectorSize); err != nil {
		log.Fatalf("Failed to ensure Qdrant collection: %v", err)
	}

	embedder := llm.NewEmbeddingsClient(cfg.EmbeddingBaseURL, cfg.EmbeddingAPIKey, cfg.EmbeddingModelName, cfg.QdrantVectorSize)
	embedder.BatchSize = cfg.EmbeddingBatchSize

	extractor := extract.NewClient(cfg.ExtractBaseURL, cfg.ExtractAPIKey)

	scanner, err := source.NewScanner(cfg.SourceDir)
	if err != nil {
		log.Fatalf("Failed to open source directory: %v", err)
	}

	ingestPipeline, err := pipeline.New(
		scanner,
		storage.NewDocumentRepo(db),
		storage.NewChunkRepo(db),
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

	slog.Info("Starting ingestion", "source_dir", cfg.SourceDir)
	if err := ingestPipeline.IngestAll(ctx); err != nil {
		slog.Error("Ingestion completed with errors", "error", err)
		os.Exit(1)
	}
	slog.Info("Ingestion completed successfully")
}
