package analysis

import (
	"context"
	"errors"
)

// ErrNotFound is returned when a document has no analysis yet.
var ErrNotFound = errors.New("analysis not found")

// Repository port for persisting and querying analyses
type Repository interface {
	Create(ctx context.Context, a *Analysis) error
	// Latest returns the most recently created analysis of the document or ErrNotFound.
	Latest(ctx context.Context, documentID int64) (*Analysis, error)
	ListByDocument(ctx context.Context, documentID int64) ([]*Analysis, error)
}
