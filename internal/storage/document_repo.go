package storage

//go:generate go run go.uber.org/mock/mockgen@latest -destination=mocks/mock_document_store.go -package=mocks findex/internal/storage DocumentStore

import (
	"context"
	"database/sql"
	"fmt"
)

// DocumentStore defines the interface for document record operations.
type DocumentStore interface {
	// GetBySource gets a document by its source name. Returns ErrNotFound if absent.
	GetBySource(ctx context.Context, source string) (*DocumentRecord, error)
	// Upsert inserts or updates a document record keyed by source.
	Upsert(ctx context.Context, doc *DocumentRecord) error
	// SetState updates a document's processing state.
	SetState(ctx context.Context, id, state string) error
	// List returns all document records ordered by source.
	List(ctx context.Context) ([]*DocumentRecord, error)
	// DeleteAll removes every document record (chunks cascade).
	DeleteAll(ctx context.Context) error
}

// DocumentRepo provides methods for document record operations.
// It implements the DocumentStore interface.
type DocumentRepo struct {
	db *sql.DB
}

// NewDocumentRepo creates a new DocumentRepo.
func NewDocumentRepo(db *sql.DB) *DocumentRepo {
	return &DocumentRepo{db: db}
}

// GetBySource gets a document by its source name. Returns ErrNotFound if absent.
func (r *DocumentRepo) GetBySource(ctx context.Context, source string) (*DocumentRecord, error) {
	var doc DocumentRecord
	err := r.db.QueryRowContext(ctx,
		"SELECT id, source, title, hash, pages, state, updated_at FROM documents WHERE source = ?",
		source,
	).Scan(&doc.ID, &doc.Source, &doc.Title, &doc.Hash, &doc.Pages, &doc.State, &doc.UpdatedAt)

	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query document: %w", err)
	}

	return &doc, nil
}

// Upsert inserts or updates a document record keyed by source.
// The doc.ID must be set (UUID) before calling this method.
func (r *DocumentRepo) Upsert(ctx context.Context, doc *DocumentRecord) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO documents (id, source, title, hash, pages, state, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, CURRENT_TIMESTAMP)
		 ON CONFLICT(source) DO UPDATE SET
			title = excluded.title,
			hash = excluded.hash,
			pages = excluded.pages,
			state = excluded.state,
			updated_at = CURRENT_TIMESTAMP`,
		doc.ID, doc.Source, doc.Title, doc.Hash, doc.Pages, doc.State,
	)
	if err != nil {
		return fmt.Errorf("failed to upsert document: %w", err)
	}
	return nil
}

// SetState updates a document's processing state.
func (r *DocumentRepo) SetState(ctx context.Context, id, state string) error {
	res, err := r.db.ExecContext(ctx,
		"UPDATE documents SET state = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?",
		state, id,
	)
	if err != nil {
		return fmt.Errorf("failed to update document state: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrNotFound
	}
	return nil
}

// List returns all document records ordered by source.
func (r *DocumentRepo) List(ctx context.Context) ([]*DocumentRecord, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT id, source, title, hash, pages, state, updated_at FROM documents ORDER BY source",
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query documents: %w", err)
	}
	defer func() {
		_ = rows.Close()
	}()

	var docs []*DocumentRecord
	for rows.Next() {
		var doc DocumentRecord
		if err := rows.Scan(&doc.ID, &doc.Source, &doc.Title, &doc.Hash, &doc.Pages, &doc.State, &doc.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan document: %w", err)
		}
		docs = append(docs, &doc)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}

	return docs, nil
}

// DeleteAll removes every document record (chunks cascade).
func (r *DocumentRepo) DeleteAll(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, "DELETE FROM documents"); err != nil {
		return fmt.Errorf("failed to delete documents: %w", err)
	}
	return nil
}
