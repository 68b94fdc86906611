package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/bryanwahyu/lexilens/internal/domain/users"
	"github.com/bryanwahyu/lexilens/internal/infra/auth"
)

type contextKey string

const (
	userIDKey    contextKey = "user_id"
	requestIDKey contextKey = "request_id"
	slotKey      contextKey = "log_slot"
)

// TokenParser validates a bearer token and returns its claims.
type TokenParser interface {
	Parse(token string) (*auth.Claims, error)
}

// UserLookup resolves the token subject to a live account.
type UserLookup interface {
	Get(ctx context.Context, id int64) (*users.User, error)
}

// BearerAuth rejects requests without a valid `Authorization: Bearer <jwt>`.
// When lookup is non-nil the subject must still be an active user, so deleted
// or deactivated accounts lose access before their token expires.
func BearerAuth(tokens TokenParser, lookup UserLookup) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			raw, ok := bearerToken(r.Header.Get("Authorization"))
			if !ok {
				unauthorized(w, "Not authenticated")
				return
			}
			claims, err := tokens.Parse(raw)
			if err != nil {
				unauthorized(w, "Could not validate credentials")
				return
			}
			id, err := claims.UserID()
			if err != nil {
				unauthorized(w, "Could not validate credentials")
				return
			}
			if lookup != nil {
				if _, err := lookup.Get(r.Context(), id); err != nil {
					if errors.Is(err, users.ErrNotFound) {
						unauthorized(w, "Could not validate credentials")
						return
					}
					WriteDetail(w, http.StatusInternalServerError, "internal server error")
					return
				}
			}

			ctx := context.WithValue(r.Context(), userIDKey, id)
			if slot, ok := ctx.Value(slotKey).(*logSlot); ok {
				slot.userID = id
			}
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// UserIDFromContext returns the authenticated user id set by BearerAuth.
func UserIDFromContext(ctx context.Context) (int64, bool) {
	id, ok := ctx.Value(userIDKey).(int64)
	return id, ok
}

// WithUserID is used by tests and internal callers that bypass BearerAuth.
func WithUserID(ctx context.Context, id int64) context.Context {
	return context.WithValue(ctx, userIDKey, id)
}

func bearerToken(header string) (string, bool) {
	scheme, token, ok := strings.Cut(strings.TrimSpace(header), " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}

func unauthorized(w http.ResponseWriter, detail string) {
	w.Header().Set("WWW-Authenticate", "Bearer")
	WriteDetail(w, http.StatusUnauthorized, detail)
}
