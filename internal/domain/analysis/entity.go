package analysis

import (
	"math"
	"strings"
	"time"
)

// RiskLevel of a single clause finding
type RiskLevel string

const (
	RiskLow    RiskLevel = "Low"
	RiskMedium RiskLevel = "Medium"
	RiskHigh   RiskLevel = "High"
)

// ParseRiskLevel accepts any casing ("high", "HIGH", " High ").
func ParseRiskLevel(s string) (RiskLevel, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "low":
		return RiskLow, true
	case "medium", "moderate":
		return RiskMedium, true
	case "high":
		return RiskHigh, true
	}
	return "", false
}

// ClauseFinding is one model-identified clause with its risk rating
type ClauseFinding struct {
	Clause     string    `json:"clause"`
	Risk       RiskLevel `json:"risk"`
	Confidence float64   `json:"confidence"`
	Reason     string    `json:"reason"`
}

// Analysis is one AI analysis result of a document. Rows are append-only;
// readers always pick the most recently created one.
type Analysis struct {
	ID                int64           `json:"id"`
	DocumentID        int64           `json:"document_id"`
	OverallRiskScore  float64         `json:"overall_risk_score"`
	HighRiskClauses   []ClauseFinding `json:"high_risk_clauses"`
	SimplifiedSummary string          `json:"simplified_summary"`
	ProcessingTime    float64         `json:"processing_time"` // seconds
	CreatedAt         time.Time       `json:"created_at"`
}

// ClampScore keeps a model-provided score inside the 0..1 policy range.
func ClampScore(v float64) float64 {
	if math.IsNaN(v) || v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
