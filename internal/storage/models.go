package storage

import (
	"errors"
	"time"
)

// ErrNotFound is returned when a requested record does not exist.
var ErrNotFound = errors.New("not found")

// Document states. A document is pending until its chunks and vectors have
// been written, then processed. This mirrors the lifecycle of source files:
// new or changed files go back to pending on the next ingest run.
const (
	StatePending   = "pending"
	StateProcessed = "processed"
)

// DocumentRecord represents a source document tracked by the pipeline.
type DocumentRecord struct {
	ID        string // UUID
	Source    string // Source file name, unique
	Title     string // Extracted from the layout markdown
	Hash      string // SHA-256 hex of the source file content
	Pages     int
	State     string
	UpdatedAt time.Time
}

// ChunkRecord represents one indexed chunk of a document. The ID doubles as
// the vector point ID in the search index, keeping the two stores joined.
type ChunkRecord struct {
	ID          string // UUID (same as the vector point ID)
	DocumentID  string
	ChunkIndex  int
	StartOffset int
	EndOffset   int
	TableSplit  bool
	Text        string
}
