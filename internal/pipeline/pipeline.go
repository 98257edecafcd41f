// Package pipeline orchestrates document ingestion: extraction, chunking,
// embedding, and indexing.
package pipeline

import (
	"context"
	"crypto/sha256"
	"fmt"
	"os"

	"github.com/google/uuid"

	"findex/internal/chunker"
	"findex/internal/contextutil"
	"findex/internal/document"
	"findex/internal/source"
	"findex/internal/storage"
	"findex/internal/vectorstore"
)

// Pipeline runs PDFs from the source directory through extraction,
// chunking, embedding, and indexing into SQLite and the vector store.
type Pipeline struct {
	scanner        *source.Scanner
	docRepo        storage.DocumentStore
	chunkRepo      storage.ChunkStore
	extractor      Extractor
	embedder       Embedder
	vectorStore    vectorstore.VectorStore
	collection     string
	chunkCfg       chunker.Config
	indexBatchSize int
}

// New creates an ingestion pipeline. indexBatchSize bounds how many points
// go into a single vector store upsert.
func New(
	scanner *source.Scanner,
	docRepo storage.DocumentStore,
	chunkRepo storage.ChunkStore,
	extractor Extractor,
	embedder Embedder,
	vectorStore vectorstore.VectorStore,
	collection string,
	chunkCfg chunker.Config,
	indexBatchSize int,
) (*Pipeline, error) {
	if err := chunkCfg.Validate(); err != nil {
		return nil, err
	}
	if indexBatchSize <= 0 {
		indexBatchSize = 100
	}
	return &Pipeline{
		scanner:        scanner,
		docRepo:        docRepo,
		chunkRepo:      chunkRepo,
		extractor:      extractor,
		embedder:       embedder,
		vectorStore:    vectorStore,
		collection:     collection,
		chunkCfg:       chunkCfg,
		indexBatchSize: indexBatchSize,
	}, nil
}

// IngestAll scans the source directory and ingests every new or changed PDF.
// Per-document failures are logged and skipped; the run continues with the
// remaining documents.
func (p *Pipeline) IngestAll(ctx context.Context) error {
	logger := contextutil.LoggerFromContext(ctx)

	files, err := p.scanner.Scan(ctx)
	if err != nil {
		return fmt.Errorf("failed to scan source directory: %w", err)
	}

	logger.InfoContext(ctx, "starting ingestion", "total_files", len(files))

	var successCount, errorCount int
	for _, file := range files {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		if err := p.IngestFile(ctx, file); err != nil {
			errorCount++
			logger.ErrorContext(ctx, "failed to ingest file", "source", file.Name, "error", err)
			continue
		}
		successCount++
	}

	logger.InfoContext(ctx, "ingestion completed", "total_files", len(files), "success", successCount, "errors", errorCount)

	if errorCount > 0 {
		return fmt.Errorf("ingestion completed with %d errors", errorCount)
	}
	return nil
}

// IngestFile ingests a single PDF. Unchanged files (by content hash) that
// were already processed are skipped. On any failure nothing is marked
// processed and no partial chunk set survives the next successful run.
func (p *Pipeline) IngestFile(ctx context.Context, file source.ScannedFile) error {
	logger := contextutil.LoggerFromContext(ctx)

	content, err := os.ReadFile(file.AbsPath)
	if err != nil {
		return fmt.Errorf("failed to read file %s: %w", file.AbsPath, err)
	}

	hash := sha256.Sum256(content)
	hashHex := fmt.Sprintf("%x", hash)

	existing, err := p.docRepo.GetBySource(ctx, file.Name)
	if err != nil && err != storage.ErrNotFound {
		return fmt.Errorf("failed to check existing document: %w", err)
	}

	if existing != nil && existing.Hash == hashHex && existing.State == storage.StateProcessed {
		logger.DebugContext(ctx, "skipping unchanged file", "source", file.Name, "hash", hashHex)
		return nil
	}

	result, err := p.extractor.AnalyzeLayout(ctx, content)
	if err != nil {
		return fmt.Errorf("failed to extract layout: %w", err)
	}

	var docID string
	if existing != nil {
		docID = existing.ID
	} else {
		docID = uuid.New().String()
	}

	doc := document.Segment(docID, file.Name, result.Markdown)
	doc.PageOffsets = result.PageOffsets

	chunks, err := chunker.Split(doc, p.chunkCfg)
	if err != nil {
		return fmt.Errorf("failed to chunk document: %w", err)
	}

	record := &storage.DocumentRecord{
		ID:     docID,
		Source: file.Name,
		Title:  doc.Title,
		Hash:   hashHex,
		Pages:  result.Pages,
		State:  storage.StatePending,
	}
	if err := p.docRepo.Upsert(ctx, record); err != nil {
		return fmt.Errorf("failed to upsert document: %w", err)
	}

	if err := p.removeOldChunks(ctx, docID); err != nil {
		return err
	}

	if len(chunks) == 0 {
		logger.WarnContext(ctx, "no chunks generated", "source", file.Name)
		return p.docRepo.SetState(ctx, docID, storage.StateProcessed)
	}

	texts := make([]string, len(chunks))
	for i, chunk := range chunks {
		texts[i] = chunk.Text
	}

	embeddings, err := p.embedder.EmbedTexts(ctx, texts)
	if err != nil {
		return fmt.Errorf("failed to generate embeddings: %w", err)
	}
	if len(embeddings) != len(chunks) {
		return fmt.Errorf("embedding count mismatch: expected %d, got %d", len(chunks), len(embeddings))
	}

	records := make([]*storage.ChunkRecord, len(chunks))
	points := make([]vectorstore.Point, len(chunks))
	for i, chunk := range chunks {
		chunkID := uuid.New().String()

		records[i] = &storage.ChunkRecord{
			ID:          chunkID,
			DocumentID:  docID,
			ChunkIndex:  chunk.Index,
			StartOffset: chunk.Start,
			EndOffset:   chunk.End,
			TableSplit:  chunk.TableSplit,
			Text:        chunk.Text,
		}

		points[i] = vectorstore.Point{
			ID:  chunkID,
			Vec: embeddings[i],
			Meta: map[string]any{
				"document_id":  docID,
				"source":       file.Name,
				"title":        doc.Title,
				"chunk_index":  chunk.Index,
				"table_split":  chunk.TableSplit,
				"start_offset": chunk.Start,
				"end_offset":   chunk.End,
			},
		}
	}

	for _, record := range records {
		if err := p.chunkRepo.Insert(ctx, record); err != nil {
			return fmt.Errorf("failed to insert chunk: %w", err)
		}
	}

	for start := 0; start < len(points); start += p.indexBatchSize {
		end := start + p.indexBatchSize
		if end > len(points) {
			end = len(points)
		}
		if err := p.vectorStore.Upsert(ctx, p.collection, points[start:end]); err != nil {
			return fmt.Errorf("failed to upsert vectors: %w", err)
		}
	}

	if err := p.docRepo.SetState(ctx, docID, storage.StateProcessed); err != nil {
		return fmt.Errorf("failed to mark document processed: %w", err)
	}

	logger.InfoContext(ctx, "ingested document", "source", file.Name, "chunks", len(chunks), "pages", result.Pages, "title", doc.Title)
	return nil
}

// removeOldChunks deletes a document's existing chunks from both stores
// before re-ingestion.
func (p *Pipeline) removeOldChunks(ctx context.Context, docID string) error {
	logger := contextutil.LoggerFromContext(ctx)

	oldIDs, err := p.chunkRepo.ListIDsByDocument(ctx, docID)
	if err != nil {
		return fmt.Errorf("failed to list old chunk IDs: %w", err)
	}
	if len(oldIDs) == 0 {
		return nil
	}

	if err := p.vectorStore.Delete(ctx, p.collection, oldIDs); err != nil {
		// New points overwrite by ID anyway; stale points are cleaned up
		// on the next successful pass.
		logger.WarnContext(ctx, "failed to delete old vectors", "error", err, "count", len(oldIDs))
	}

	if err := p.chunkRepo.DeleteByDocument(ctx, docID); err != nil {
		return fmt.Errorf("failed to delete old chunks: %w", err)
	}
	return nil
}

// ClearAll removes every indexed document: vectors first, then the
// relational rows (chunks cascade from documents).
func (p *Pipeline) ClearAll(ctx context.Context) error {
	logger := contextutil.LoggerFromContext(ctx)

	docs, err := p.docRepo.List(ctx)
	if err != nil {
		return fmt.Errorf("failed to list documents: %w", err)
	}

	for _, doc := range docs {
		ids, err := p.chunkRepo.ListIDsByDocument(ctx, doc.ID)
		if err != nil {
			return fmt.Errorf("failed to list chunk IDs for %s: %w", doc.Source, err)
		}
		if len(ids) == 0 {
			continue
		}
		if err := p.vectorStore.Delete(ctx, p.collection, ids); err != nil {
			return fmt.Errorf("failed to delete vectors for %s: %w", doc.Source, err)
		}
	}

	if err := p.docRepo.DeleteAll(ctx); err != nil {
		return fmt.Errorf("failed to delete documents: %w", err)
	}

	logger.InfoContext(ctx, "cleared all indexed data", "documents", len(docs))
	return nil
}
