package documents

import (
	"context"
	"errors"
)

var (
	// ErrNotFound covers both missing and foreign-owned documents.
	ErrNotFound = errors.New("document not found")
	// ErrBadDocument is an upload whose text could not be extracted.
	ErrBadDocument = errors.New("could not extract text from document")
	// ErrInvalidInput is a malformed query (empty question, unknown risk level, ...).
	ErrInvalidInput = errors.New("invalid input")
)

// Repository port (interface untuk persistence)
type Repository interface {
	Create(ctx context.Context, d *Document) error
	// ListByOwner returns the owner's documents newest first.
	ListByOwner(ctx context.Context, ownerID int64) ([]*Summary, error)
	Get(ctx context.Context, id, ownerID int64) (*Document, error)
	// Delete removes the document's failures and analyses, then the document, in one transaction.
	Delete(ctx context.Context, id, ownerID int64) error
}

// ArchiveStore port (interface untuk penyimpanan file asli)
type ArchiveStore interface {
	Upload(ctx context.Context, localPath, key string) (string, error)
	Remove(ctx context.Context, key string) error
}
