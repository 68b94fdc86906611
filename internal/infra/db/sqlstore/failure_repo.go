package sqlstore

import (
	"context"
	"database/sql"
	"encoding/json"
	"strings"

	domain "github.com/bryanwahyu/lexilens/internal/domain/failures"
)

type FailureRepository struct {
	db      *sql.DB
	dialect Dialect
}

func NewFailureRepository(db *sql.DB, d Dialect) *FailureRepository {
	return &FailureRepository{db: db, dialect: d}
}

func (r *FailureRepository) Save(ctx context.Context, f *domain.Failure) error {
	const q = `
INSERT INTO analysis_failures (document_id, phase, message, details_json, created_at)
VALUES (?,?,?,?,?)`
	phase := stringOrDash(f.Phase)
	msg := stringOrDash(f.Message)
	details := f.DetailsJSON
	if strings.TrimSpace(details) == "" {
		details = "{}"
	} else {
		// ensure valid json; if invalid, wrap as string field
		var js any
		if json.Unmarshal([]byte(details), &js) != nil {
			b, _ := json.Marshal(map[string]string{"raw": details})
			details = string(b)
		}
	}
	f.CreatedAt = timestamp(f.CreatedAt)

	id, err := insertID(ctx, r.db, r.dialect, q, f.DocumentID, phase, msg, details, f.CreatedAt)
	if err != nil {
		return err
	}
	f.ID = id
	return nil
}

func (r *FailureRepository) ListByDocument(ctx context.Context, documentID int64, limit int) ([]*domain.Failure, error) {
	if limit <= 0 {
		limit = 20
	}
	const q = `
SELECT id, document_id, phase, message, details_json, created_at
FROM analysis_failures
WHERE document_id = ?
ORDER BY created_at DESC, id DESC
LIMIT ?`
	rows, err := r.db.QueryContext(ctx, r.dialect.Rebind(q), documentID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*domain.Failure
	for rows.Next() {
		var f domain.Failure
		if err := rows.Scan(&f.ID, &f.DocumentID, &f.Phase, &f.Message, &f.DetailsJSON, &f.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, &f)
	}
	return out, rows.Err()
}
