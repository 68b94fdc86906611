package failures

import "context"

// Repository defines persistence for analysis failures
type Repository interface {
	Save(ctx context.Context, f *Failure) error
	ListByDocument(ctx context.Context, documentID int64, limit int) ([]*Failure, error)
}
