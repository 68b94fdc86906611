package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	domain "github.com/bryanwahyu/lexilens/internal/domain/documents"
)

type DocumentRepository struct {
	db      *sql.DB
	dialect Dialect
}

func NewDocumentRepository(db *sql.DB, d Dialect) *DocumentRepository {
	return &DocumentRepository{db: db, dialect: d}
}

// Create inserts a document and fills in its generated id
func (r *DocumentRepository) Create(ctx context.Context, d *domain.Document) error {
	const q = `
INSERT INTO documents (owner_id, title, filename, content, archive_key, uploaded_at)
VALUES (?,?,?,?,?,?)`
	d.UploadedAt = timestamp(d.UploadedAt)
	id, err := insertID(ctx, r.db, r.dialect, q,
		d.OwnerID, d.Title, d.Filename, d.Content, d.ArchiveKey, d.UploadedAt)
	if err != nil {
		return fmt.Errorf("insert document: %w", err)
	}
	d.ID = id
	return nil
}

// ListByOwner returns summaries ordered by uploaded_at desc
func (r *DocumentRepository) ListByOwner(ctx context.Context, ownerID int64) ([]*domain.Summary, error) {
	const q = `
SELECT id, title, filename, uploaded_at
FROM documents
WHERE owner_id = ?
ORDER BY uploaded_at DESC, id DESC`
	rows, err := r.db.QueryContext(ctx, r.dialect.Rebind(q), ownerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]*domain.Summary, 0)
	for rows.Next() {
		var s domain.Summary
		if err := rows.Scan(&s.ID, &s.Title, &s.Filename, &s.UploadedAt); err != nil {
			return nil, err
		}
		out = append(out, &s)
	}
	return out, rows.Err()
}

// Get by ID + owner; a foreign owner looks exactly like a missing row
func (r *DocumentRepository) Get(ctx context.Context, id, ownerID int64) (*domain.Document, error) {
	const q = `
SELECT id, owner_id, title, filename, content, archive_key, uploaded_at
FROM documents
WHERE id = ? AND owner_id = ?
LIMIT 1`
	var d domain.Document
	err := r.db.QueryRowContext(ctx, r.dialect.Rebind(q), id, ownerID).Scan(
		&d.ID, &d.OwnerID, &d.Title, &d.Filename, &d.Content, &d.ArchiveKey, &d.UploadedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return &d, nil
}

// Delete removes child rows first so no analysis is ever orphaned
func (r *DocumentRepository) Delete(ctx context.Context, id, ownerID int64) error {
	return withTx(ctx, r.db, func(ctx context.Context, tx DBTX) error {
		var found int64
		err := tx.QueryRowContext(ctx,
			r.dialect.Rebind(`SELECT id FROM documents WHERE id = ? AND owner_id = ?`),
			id, ownerID,
		).Scan(&found)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return domain.ErrNotFound
			}
			return err
		}

		steps := []string{
			`DELETE FROM analysis_failures WHERE document_id = ?`,
			`DELETE FROM analyses WHERE document_id = ?`,
			`DELETE FROM documents WHERE id = ?`,
		}
		for _, q := range steps {
			if _, err := tx.ExecContext(ctx, r.dialect.Rebind(q), id); err != nil {
				return fmt.Errorf("delete document %d: %w", id, err)
			}
		}
		return nil
	})
}
