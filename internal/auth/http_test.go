// ABOUTME: Tests for the HTTP bearer-token middleware
// ABOUTME: Covers missing/invalid headers, bad tokens, and principal propagation

package auth

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMiddleware(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	_, err := svc.Register(ctx, "alice", "password123", "en")
	require.NoError(t, err)
	token, err := svc.Login(ctx, "alice", "password123")
	require.NoError(t, err)

	var captured *Principal
	handler := Middleware(svc)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		captured = FromContext(r.Context())
		w.WriteHeader(http.StatusOK)
	}))

	t.Run("valid token", func(t *testing.T) {
		captured = nil
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		rec := httptest.NewRecorder()

		handler.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)
		require.NotNil(t, captured)
		assert.Equal(t, "alice", captured.Username)
		assert.Equal(t, "en", captured.Language)
	})

	t.Run("missing header", func(t *testing.T) {
		captured = nil
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		rec := httptest.NewRecorder()

		handler.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		assert.Nil(t, captured)
	})

	t.Run("malformed header", func(t *testing.T) {
		captured = nil
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Authorization", "Basic dXNlcjpwYXNz")
		rec := httptest.NewRecorder()

		handler.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("invalid token", func(t *testing.T) {
		captured = nil
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Authorization", "Bearer garbage")
		rec := httptest.NewRecorder()

		handler.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		assert.Nil(t, captured)
	})

	t.Run("expired token", func(t *testing.T) {
		expired, genErr := NewJWTVerifier([]byte("test-secret-test-secret-test-sec")).Generate("alice", -time.Minute)
		require.NoError(t, genErr)

		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Authorization", "Bearer "+expired)
		rec := httptest.NewRecorder()

		handler.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})
}

func TestContext_RoundTrip(t *testing.T) {
	p := &Principal{ID: 7, Username: "alice", Language: "en"}
	ctx := WithPrincipal(context.Background(), p)

	got := FromContext(ctx)
	require.NotNil(t, got)
	assert.Equal(t, int64(7), got.ID)

	assert.Nil(t, FromContext(context.Background()))

	assert.Panics(t, func() {
		MustFromContext(context.Background())
	})
}
