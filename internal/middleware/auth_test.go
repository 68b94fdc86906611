package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bryanwahyu/lexilens/internal/domain/users"
	"github.com/bryanwahyu/lexilens/internal/infra/auth"
)

type lookupFunc func(ctx context.Context, id int64) (*users.User, error)

func (f lookupFunc) Get(ctx context.Context, id int64) (*users.User, error) { return f(ctx, id) }

func echoUser(w http.ResponseWriter, r *http.Request) {
	id, ok := UserIDFromContext(r.Context())
	if !ok {
		http.Error(w, "no user", http.StatusTeapot)
		return
	}
	_ = WriteJSON(w, http.StatusOK, map[string]int64{"user_id": id})
}

func TestBearerAuth(t *testing.T) {
	tokens := auth.NewTokens("secret", time.Minute)
	good, err := tokens.Issue(42, "a@example.com")
	require.NoError(t, err)
	foreign, err := auth.NewTokens("other-secret", time.Minute).Issue(42, "a@example.com")
	require.NoError(t, err)

	h := BearerAuth(tokens, nil)(http.HandlerFunc(echoUser))

	cases := []struct {
		name   string
		header string
		status int
	}{
		{"valid", "Bearer " + good, http.StatusOK},
		{"lowercase scheme", "bearer " + good, http.StatusOK},
		{"missing", "", http.StatusUnauthorized},
		{"no scheme", good, http.StatusUnauthorized},
		{"basic", "Basic abc", http.StatusUnauthorized},
		{"empty token", "Bearer   ", http.StatusUnauthorized},
		{"garbage", "Bearer not.a.jwt", http.StatusUnauthorized},
		{"wrong key", "Bearer " + foreign, http.StatusUnauthorized},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/user/documents", nil)
			if tc.header != "" {
				req.Header.Set("Authorization", tc.header)
			}
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)

			assert.Equal(t, tc.status, rec.Code)
			if tc.status == http.StatusOK {
				assert.JSONEq(t, `{"user_id":42}`, rec.Body.String())
			} else {
				assert.Equal(t, "Bearer", rec.Header().Get("WWW-Authenticate"))
				assert.Contains(t, rec.Body.String(), `"detail"`)
			}
		})
	}
}

func TestBearerAuth_UserLookup(t *testing.T) {
	tokens := auth.NewTokens("secret", time.Minute)
	tok, err := tokens.Issue(7, "gone@example.com")
	require.NoError(t, err)

	run := func(lookup UserLookup) int {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Authorization", "Bearer "+tok)
		rec := httptest.NewRecorder()
		BearerAuth(tokens, lookup)(http.HandlerFunc(echoUser)).ServeHTTP(rec, req)
		return rec.Code
	}

	assert.Equal(t, http.StatusOK, run(lookupFunc(func(_ context.Context, id int64) (*users.User, error) {
		return &users.User{ID: id, IsActive: true}, nil
	})))
	assert.Equal(t, http.StatusUnauthorized, run(lookupFunc(func(context.Context, int64) (*users.User, error) {
		return nil, users.ErrNotFound
	})))
	assert.Equal(t, http.StatusInternalServerError, run(lookupFunc(func(context.Context, int64) (*users.User, error) {
		return nil, errors.New("db down")
	})))
}
