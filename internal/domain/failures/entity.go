package failures

import "time"

// Failure records a background analysis that ended without an analysis row.
// The document stays in "no analysis yet" state; nothing retries it.
type Failure struct {
	ID          int64     `json:"id"`
	DocumentID  int64     `json:"document_id"`
	Phase       string    `json:"phase"` // analyze | persist
	Message     string    `json:"message"`
	DetailsJSON string    `json:"details_json,omitempty"` // raw JSON string
	CreatedAt   time.Time `json:"created_at"`
}

const (
	PhaseAnalyze = "analyze"
	PhasePersist = "persist"
)
