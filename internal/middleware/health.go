package middleware

import (
	"context"
	"net/http"
	"time"
)

// Readiness is satisfied by the database bootstrapper.
type Readiness interface {
	Ready() bool
	Healthy(ctx context.Context) bool
}

// HealthStatus is the /health payload
type HealthStatus struct {
	Status       string `json:"status"`
	Message      string `json:"message"`
	APIKeyStatus string `json:"api_key_status"`
	Database     string `json:"database"`
	LLMAvailable bool   `json:"llm_available"`
}

// HealthHandler reports "healthy" only when both the store and the model are
// usable. A missing model key only degrades; an unreachable store also
// answers 503 so orchestrators hold traffic.
func HealthHandler(db Readiness, llmAvailable func() bool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
		defer cancel()

		h := HealthStatus{
			Status:       "healthy",
			Message:      "LexiLens API is running",
			APIKeyStatus: "configured",
			Database:     "ok",
			LLMAvailable: llmAvailable(),
		}
		if !h.LLMAvailable {
			h.Status = "degraded"
			h.APIKeyStatus = "not_configured"
		}

		code := http.StatusOK
		if !db.Healthy(ctx) {
			h.Status = "degraded"
			h.Database = "unavailable"
			code = http.StatusServiceUnavailable
		}
		_ = WriteJSON(w, code, h)
	}
}

// RequireReady short-circuits store-backed routes with 503 until the
// database has been reached and migrated.
func RequireReady(db Readiness) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !db.Ready() {
				w.Header().Set("Retry-After", "5")
				WriteDetail(w, http.StatusServiceUnavailable, "database not ready")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
