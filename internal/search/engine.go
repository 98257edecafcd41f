// Package search provides retrieval over indexed document chunks.
package search

import (
	"context"
	"fmt"

	"findex/internal/contextutil"
	"findex/internal/storage"
	"findex/internal/vectorstore"
)

const (
	defaultK = 5
	maxK     = 50
)

// Embedder turns a query into a vector. Implemented by the embeddings client.
type Embedder interface {
	EmbedTexts(ctx context.Context, texts []string) ([][]float32, error)
}

// Request represents a similarity search request.
type Request struct {
	// Query is the text to search for.
	Query string `json:"query"`
	// Source optionally restricts results to one source document.
	Source string `json:"source,omitempty"`
	// K optionally specifies the desired result count (default 5, max 50).
	K int `json:"k,omitempty"`
}

// Hit is one retrieved chunk.
type Hit struct {
	ChunkID    string  `json:"chunk_id"`
	DocumentID string  `json:"document_id"`
	Source     string  `json:"source"`
	Title      string  `json:"title"`
	ChunkIndex int     `json:"chunk_index"`
	TableSplit bool    `json:"table_split"`
	Score      float32 `json:"score"`
	Text       string  `json:"text"`
}

// Engine answers similarity queries by embedding the query, searching the
// vector store, and hydrating chunk text from the relational registry.
type Engine struct {
	embedder    Embedder
	vectorStore vectorstore.VectorStore
	collection  string
	chunkRepo   storage.ChunkStore
}

// NewEngine creates a search engine.
func NewEngine(embedder Embedder, vectorStore vectorstore.VectorStore, collection string, chunkRepo storage.ChunkStore) *Engine {
	return &Engine{
		embedder:    embedder,
		vectorStore: vectorStore,
		collection:  collection,
		chunkRepo:   chunkRepo,
	}
}

// Search runs a similarity query and returns ranked hits.
func (e *Engine) Search(ctx context.Context, req Request) ([]Hit, error) {
	logger := contextutil.LoggerFromContext(ctx)

	if req.Query == "" {
		return nil, fmt.Errorf("query must not be empty")
	}

	k := req.K
	if k <= 0 {
		k = defaultK
	}
	if k > maxK {
		k = maxK
	}

	embeddings, err := e.embedder.EmbedTexts(ctx, []string{req.Query})
	if err != nil {
		return nil, fmt.Errorf("failed to embed query: %w", err)
	}
	if len(embeddings) == 0 {
		return nil, fmt.Errorf("no embedding returned for query")
	}

	var filters map[string]any
	if req.Source != "" {
		filters = map[string]any{"source": req.Source}
	}

	results, err := e.vectorStore.Search(ctx, e.collection, embeddings[0], k, filters)
	if err != nil {
		return nil, fmt.Errorf("failed to search vectors: %w", err)
	}

	hits := make([]Hit, 0, len(results))
	for _, result := range results {
		hit := Hit{
			ChunkID: result.PointID,
			Score:   result.Score,
		}

		if v, ok := result.Meta["document_id"].(string); ok {
			hit.DocumentID = v
		}
		if v, ok := result.Meta["source"].(string); ok {
			hit.Source = v
		}
		if v, ok := result.Meta["title"].(string); ok {
			hit.Title = v
		}
		if v, ok := result.Meta["chunk_index"].(int64); ok {
			hit.ChunkIndex = int(v)
		}
		if v, ok := result.Meta["table_split"].(bool); ok {
			hit.TableSplit = v
		}

		// Chunk text lives in SQLite, not the vector payload.
		chunk, err := e.chunkRepo.GetByID(ctx, result.PointID)
		if err == storage.ErrNotFound {
			logger.WarnContext(ctx, "chunk missing from registry", "chunk_id", result.PointID)
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("failed to load chunk %s: %w", result.PointID, err)
		}
		hit.Text = chunk.Text

		hits = append(hits, hit)
	}

	logger.InfoContext(ctx, "search completed", "query_len", len(req.Query), "k", k, "hits", len(hits))
	return hits, nil
}
