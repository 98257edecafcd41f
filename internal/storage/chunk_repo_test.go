package storage

import (
	"context"
	"database/sql"
	"testing"
)

func newChunkTestDB(t *testing.T) (*sql.DB, *ChunkRepo) {
	t.Helper()

	tmpDir := t.TempDir()
	db, err := New(tmpDir + "/test.db")
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	t.Cleanup(func() {
		_ = db.Close()
	})

	if err := Migrate(db); err != nil {
		t.Fatalf("Migrate() error = %v", err)
	}

	// Chunks need a parent document.
	docRepo := NewDocumentRepo(db)
	doc := &DocumentRecord{ID: "doc-1", Source: "report.pdf", Hash: "h1", State: StatePending}
	if err := docRepo.Upsert(context.Background(), doc); err != nil {
		t.Fatalf("Upsert() error = %v", err)
	}

	return db, NewChunkRepo(db)
}

func TestChunkRepo_InsertAndGetByID(t *testing.T) {
	_, repo := newChunkTestDB(t)
	ctx := context.Background()

	chunk := &ChunkRecord{
		ID:          "chunk-1",
		DocumentID:  "doc-1",
		ChunkIndex:  0,
		StartOffset: 0,
		EndOffset:   400,
		TableSplit:  true,
		Text:        "Chunk text",
	}
	if err := repo.Insert(ctx, chunk); err != nil {
		t.Fatalf("Insert() error = %v", err)
	}

	got, err := repo.GetByID(ctx, "chunk-1")
	if err != nil {
		t.Fatalf("GetByID() error = %v", err)
	}
	if got.DocumentID != "doc-1" || got.ChunkIndex != 0 || got.Text != "Chunk text" {
		t.Errorf("GetByID() = %+v, want the inserted record", got)
	}
	if got.StartOffset != 0 || got.EndOffset != 400 {
		t.Errorf("GetByID() offsets = [%d, %d), want [0, 400)", got.StartOffset, got.EndOffset)
	}
	if !got.TableSplit {
		t.Error("GetByID() TableSplit = false, want true")
	}
}

func TestChunkRepo_GetByID_NotFound(t *testing.T) {
	_, repo := newChunkTestDB(t)

	_, err := repo.GetByID(context.Background(), "missing")
	if err != ErrNotFound {
		t.Errorf("GetByID() error = %v, want ErrNotFound", err)
	}
}

func TestChunkRepo_Insert_DuplicateIndex(t *testing.T) {
	_, repo := newChunkTestDB(t)
	ctx := context.Background()

	first := &ChunkRecord{ID: "chunk-1", DocumentID: "doc-1", ChunkIndex: 0, Text: "a"}
	if err := repo.Insert(ctx, first); err != nil {
		t.Fatalf("Insert() error = %v", err)
	}

	dup := &ChunkRecord{ID: "chunk-2", DocumentID: "doc-1", ChunkIndex: 0, Text: "b"}
	if err := repo.Insert(ctx, dup); err == nil {
		t.Error("Insert() with duplicate (document, index) should fail")
	}
}

func TestChunkRepo_ListIDsByDocument(t *testing.T) {
	_, repo := newChunkTestDB(t)
	ctx := context.Background()

	for i, id := range []string{"chunk-c", "chunk-a", "chunk-b"} {
		chunk := &ChunkRecord{ID: id, DocumentID: "doc-1", ChunkIndex: i, Text: "t"}
		if err := repo.Insert(ctx, chunk); err != nil {
			t.Fatalf("Insert() error = %v", err)
		}
	}

	ids, err := repo.ListIDsByDocument(ctx, "doc-1")
	if err != nil {
		t.Fatalf("ListIDsByDocument() error = %v", err)
	}
	// Ordered by chunk index, not by ID.
	want := []string{"chunk-c", "chunk-a", "chunk-b"}
	if len(ids) != len(want) {
		t.Fatalf("ListIDsByDocument() returned %d IDs, want %d", len(ids), len(want))
	}
	for i := range want {
		if ids[i] != want[i] {
			t.Errorf("ListIDsByDocument()[%d] = %q, want %q", i, ids[i], want[i])
		}
	}

	ids, err = repo.ListIDsByDocument(ctx, "no-such-doc")
	if err != nil {
		t.Fatalf("ListIDsByDocument() error = %v", err)
	}
	if len(ids) != 0 {
		t.Errorf("ListIDsByDocument() for unknown document returned %d IDs, want 0", len(ids))
	}
}

func TestChunkRepo_DeleteByDocument(t *testing.T) {
	_, repo := newChunkTestDB(t)
	ctx := context.Background()

	chunk := &ChunkRecord{ID: "chunk-1", DocumentID: "doc-1", ChunkIndex: 0, Text: "t"}
	if err := repo.Insert(ctx, chunk); err != nil {
		t.Fatalf("Insert() error = %v", err)
	}

	if err := repo.DeleteByDocument(ctx, "doc-1"); err != nil {
		t.Fatalf("DeleteByDocument() error = %v", err)
	}

	if _, err := repo.GetByID(ctx, "chunk-1"); err != ErrNotFound {
		t.Errorf("GetByID() after delete error = %v, want ErrNotFound", err)
	}
}

func TestChunkRepo_Count(t *testing.T) {
	_, repo := newChunkTestDB(t)
	ctx := context.Background()

	n, err := repo.Count(ctx)
	if err != nil {
		t.Fatalf("Count() error = %v", err)
	}
	if n != 0 {
		t.Errorf("Count() = %d, want 0", n)
	}

	for i := 0; i < 3; i++ {
		chunk := &ChunkRecord{ID: "chunk-" + string(rune('a'+i)), DocumentID: "doc-1", ChunkIndex: i, Text: "t"}
		if err := repo.Insert(ctx, chunk); err != nil {
			t.Fatalf("Insert() error = %v", err)
		}
	}

	n, err = repo.Count(ctx)
	if err != nil {
		t.Fatalf("Count() error = %v", err)
	}
	if n != 3 {
		t.Errorf("Count() = %d, want 3", n)
	}
}
