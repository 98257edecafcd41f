package storage

import (
	"testing"
)

func TestNew(t *testing.T) {
	tmpDir := t.TempDir()
	dbPath := tmpDir + "/test.db"

	db, err := New(dbPath)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	defer func() {
		_ = db.Close()
	}()

	if err := db.Ping(); err != nil {
		t.Errorf("Ping() error = %v", err)
	}
}

func TestMigrate(t *testing.T) {
	tmpDir := t.TempDir()
	dbPath := tmpDir + "/test.db"

	db, err := New(dbPath)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	defer func() {
		_ = db.Close()
	}()

	if err := Migrate(db); err != nil {
		t.Fatalf("Migrate() error = %v", err)
	}

	// Migrate is idempotent.
	if err := Migrate(db); err != nil {
		t.Fatalf("second Migrate() error = %v", err)
	}

	for _, table := range []string{"documents", "chunks"} {
		var name string
		err := db.QueryRow("SELECT name FROM sqlite_master WHERE type='table' AND name=?", table).Scan(&name)
		if err != nil {
			t.Errorf("table %s not created: %v", table, err)
		}
	}
}

func TestMigrate_ChunksCascadeOnDocumentDelete(t *testing.T) {
	tmpDir := t.TempDir()
	dbPath := tmpDir + "/test.db"

	db, err := New(dbPath)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	defer func() {
		_ = db.Close()
	}()

	if err := Migrate(db); err != nil {
		t.Fatalf("Migrate() error = %v", err)
	}

	_, err = db.Exec("INSERT INTO documents (id, source, hash) VALUES ('d1', 'a.pdf', 'h1')")
	if err != nil {
		t.Fatalf("insert document: %v", err)
	}
	_, err = db.Exec("INSERT INTO chunks (id, document_id, chunk_index, start_offset, end_offset, text) VALUES ('c1', 'd1', 0, 0, 10, 'chunk')")
	if err != nil {
		t.Fatalf("insert chunk: %v", err)
	}

	if _, err := db.Exec("DELETE FROM documents WHERE id = 'd1'"); err != nil {
		t.Fatalf("delete document: %v", err)
	}

	var n int
	if err := db.QueryRow("SELECT COUNT(*) FROM chunks").Scan(&n); err != nil {
		t.Fatalf("count chunks: %v", err)
	}
	if n != 0 {
		t.Errorf("chunks remaining after document delete = %d, want 0", n)
	}
}
