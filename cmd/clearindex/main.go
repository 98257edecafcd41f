// Command clearindex drops the vector collection, recreates it empty, and
// wipes the document registry, so the next ingest run starts from scratch.
package main

import (
	"context"
	"log"
	"log/slog"
	"os"

	"findex/internal/config"
	"findex/internal/storage"
	"findex/internal/vectorstore"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: cfg.LogLevel})))

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

	if err := vectorStore.DeleteCollection(ctx, cfg.QdrantCollection); err != nil {
		log.Fatalf("Failed to delete collection: %v", err)
	}
	if err := vectorStore.EnsureCollection(ctx, cfg.QdrantCollection, cfg.QdrantVectorSize); err != nil {
		log.Fatalf("Failed to recreate collection: %v", err)
	}

	if err := storage.NewDocumentRepo(db).DeleteAll(ctx); err != nil {
		log.Fatalf("Failed to clear document registry: %v", err)
	}

	slog.Info("Index cleared", "collection", cfg.QdrantCollection)
}
