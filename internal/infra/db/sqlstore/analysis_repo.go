package sqlstore

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"

	domain "github.com/bryanwahyu/lexilens/internal/domain/analysis"
)

type AnalysisRepository struct {
	db      *sql.DB
	dialect Dialect
}

func NewAnalysisRepository(db *sql.DB, d Dialect) *AnalysisRepository {
	return &AnalysisRepository{db: db, dialect: d}
}

// Create inserts an analysis record; clauses are stored as a JSON array
func (r *AnalysisRepository) Create(ctx context.Context, a *domain.Analysis) error {
	const q = `
INSERT INTO analyses
  (document_id, overall_risk_score, high_risk_clauses, simplified_summary, processing_time, created_at)
VALUES (?,?,?,?,?,?)`
	clauses := a.HighRiskClauses
	if clauses == nil {
		clauses = []domain.ClauseFinding{}
	}
	raw, err := json.Marshal(clauses)
	if err != nil {
		return fmt.Errorf("encode clauses: %w", err)
	}
	a.CreatedAt = timestamp(a.CreatedAt)

	id, err := insertID(ctx, r.db, r.dialect, q,
		a.DocumentID, a.OverallRiskScore, string(raw), a.SimplifiedSummary, a.ProcessingTime, a.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert analysis: %w", err)
	}
	a.ID = id
	a.HighRiskClauses = clauses
	return nil
}

// Latest returns the latest analysis for a given document
func (r *AnalysisRepository) Latest(ctx context.Context, documentID int64) (*domain.Analysis, error) {
	const q = `
SELECT id, document_id, overall_risk_score, high_risk_clauses, simplified_summary, processing_time, created_at
FROM analyses
WHERE document_id = ?
ORDER BY created_at DESC, id DESC
LIMIT 1`
	rows, err := r.db.QueryContext(ctx, r.dialect.Rebind(q), documentID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	if !rows.Next() {
		if err := rows.Err(); err != nil {
			return nil, err
		}
		return nil, domain.ErrNotFound
	}
	return scanAnalysis(rows)
}

// ListByDocument returns every analysis of a document ordered by created_at desc
func (r *AnalysisRepository) ListByDocument(ctx context.Context, documentID int64) ([]*domain.Analysis, error) {
	const q = `
SELECT id, document_id, overall_risk_score, high_risk_clauses, simplified_summary, processing_time, created_at
FROM analyses
WHERE document_id = ?
ORDER BY created_at DESC, id DESC`
	rows, err := r.db.QueryContext(ctx, r.dialect.Rebind(q), documentID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]*domain.Analysis, 0)
	for rows.Next() {
		a, err := scanAnalysis(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

func scanAnalysis(rows *sql.Rows) (*domain.Analysis, error) {
	var a domain.Analysis
	var raw string
	if err := rows.Scan(&a.ID, &a.DocumentID, &a.OverallRiskScore, &raw,
		&a.SimplifiedSummary, &a.ProcessingTime, &a.CreatedAt); err != nil {
		return nil, err
	}
	a.HighRiskClauses = []domain.ClauseFinding{}
	if strings.TrimSpace(raw) != "" {
		if err := json.Unmarshal([]byte(raw), &a.HighRiskClauses); err != nil {
			return nil, fmt.Errorf("decode clauses of analysis %d: %w", a.ID, err)
		}
	}
	return &a, nil
}
