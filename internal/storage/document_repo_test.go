package storage

import (
	"context"
	"testing"
)

func newTestDB(t *testing.T) *DocumentRepo {
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

	return NewDocumentRepo(db)
}

func TestDocumentRepo_UpsertAndGetBySource(t *testing.T) {
	repo := newTestDB(t)
	ctx := context.Background()

	doc := &DocumentRecord{
		ID:     "doc-1",
		Source: "report.pdf",
		Title:  "Report",
		Hash:   "abc123",
		Pages:  12,
		State:  StatePending,
	}
	if err := repo.Upsert(ctx, doc); err != nil {
		t.Fatalf("Upsert() error = %v", err)
	}

	got, err := repo.GetBySource(ctx, "report.pdf")
	if err != nil {
		t.Fatalf("GetBySource() error = %v", err)
	}
	if got.ID != "doc-1" || got.Title != "Report" || got.Hash != "abc123" || got.Pages != 12 {
		t.Errorf("GetBySource() = %+v, want the inserted record", got)
	}
	if got.State != StatePending {
		t.Errorf("GetBySource() State = %q, want %q", got.State, StatePending)
	}
}

func TestDocumentRepo_UpsertUpdatesExisting(t *testing.T) {
	repo := newTestDB(t)
	ctx := context.Background()

	doc := &DocumentRecord{ID: "doc-1", Source: "report.pdf", Title: "Old", Hash: "h1", State: StatePending}
	if err := repo.Upsert(ctx, doc); err != nil {
		t.Fatalf("Upsert() error = %v", err)
	}

	// Same source, new content. The original ID is kept.
	updated := &DocumentRecord{ID: "doc-1", Source: "report.pdf", Title: "New", Hash: "h2", Pages: 3, State: StatePending}
	if err := repo.Upsert(ctx, updated); err != nil {
		t.Fatalf("second Upsert() error = %v", err)
	}

	got, err := repo.GetBySource(ctx, "report.pdf")
	if err != nil {
		t.Fatalf("GetBySource() error = %v", err)
	}
	if got.ID != "doc-1" {
		t.Errorf("ID changed on upsert: %q", got.ID)
	}
	if got.Title != "New" || got.Hash != "h2" || got.Pages != 3 {
		t.Errorf("GetBySource() = %+v, want updated fields", got)
	}
}

func TestDocumentRepo_GetBySource_NotFound(t *testing.T) {
	repo := newTestDB(t)

	_, err := repo.GetBySource(context.Background(), "missing.pdf")
	if err != ErrNotFound {
		t.Errorf("GetBySource() error = %v, want ErrNotFound", err)
	}
}

func TestDocumentRepo_SetState(t *testing.T) {
	repo := newTestDB(t)
	ctx := context.Background()

	doc := &DocumentRecord{ID: "doc-1", Source: "report.pdf", Hash: "h1", State: StatePending}
	if err := repo.Upsert(ctx, doc); err != nil {
		t.Fatalf("Upsert() error = %v", err)
	}

	if err := repo.SetState(ctx, "doc-1", StateProcessed); err != nil {
		t.Fatalf("SetState() error = %v", err)
	}

	got, err := repo.GetBySource(ctx, "report.pdf")
	if err != nil {
		t.Fatalf("GetBySource() error = %v", err)
	}
	if got.State != StateProcessed {
		t.Errorf("State = %q, want %q", got.State, StateProcessed)
	}

	if err := repo.SetState(ctx, "missing", StateProcessed); err != ErrNotFound {
		t.Errorf("SetState() on missing document error = %v, want ErrNotFound", err)
	}
}

func TestDocumentRepo_List(t *testing.T) {
	repo := newTestDB(t)
	ctx := context.Background()

	for _, d := range []*DocumentRecord{
		{ID: "doc-b", Source: "b.pdf", Hash: "h", State: StatePending},
		{ID: "doc-a", Source: "a.pdf", Hash: "h", State: StatePending},
	} {
		if err := repo.Upsert(ctx, d); err != nil {
			t.Fatalf("Upsert() error = %v", err)
		}
	}

	docs, err := repo.List(ctx)
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(docs) != 2 {
		t.Fatalf("List() returned %d documents, want 2", len(docs))
	}
	if docs[0].Source != "a.pdf" || docs[1].Source != "b.pdf" {
		t.Errorf("List() order = [%s, %s], want sorted by source", docs[0].Source, docs[1].Source)
	}
}

func TestDocumentRepo_DeleteAll(t *testing.T) {
	repo := newTestDB(t)
	ctx := context.Background()

	doc := &DocumentRecord{ID: "doc-1", Source: "report.pdf", Hash: "h1", State: StatePending}
	if err := repo.Upsert(ctx, doc); err != nil {
		t.Fatalf("Upsert() error = %v", err)
	}

	if err := repo.DeleteAll(ctx); err != nil {
		t.Fatalf("DeleteAll() error = %v", err)
	}

	docs, err := repo.List(ctx)
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(docs) != 0 {
		t.Errorf("List() returned %d documents after DeleteAll, want 0", len(docs))
	}
}
