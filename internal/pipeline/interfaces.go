package pipeline

//go:generate go run go.uber.org/mock/mockgen@latest -destination=mocks/mock_collaborators.go -package=mocks findex/internal/pipeline Extractor,Embedder

import (
	"context"

	"findex/internal/extract"
)

// Extractor converts a PDF into layout markdown. Implemented by the
// external layout-analysis client.
type Extractor interface {
	AnalyzeLayout(ctx context.Context, pdf []byte) (*extract.Result, error)
}

// Embedder turns chunk texts into fixed-length vectors. Implemented by the
// external embeddings client.
type Embedder interface {
	EmbedTexts(ctx context.Context, texts []string) ([][]float32, error)
}
