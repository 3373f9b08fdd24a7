package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dataloft-systems/dataloft-backend/pkg/tokens"
)

func testHandler(t *testing.T, wantUsername string) (http.HandlerFunc, *bool) {
	called := false
	return func(w http.ResponseWriter, r *http.Request) {
		called = true
		claims := GetClaims(r.Context())
		require.NotNil(t, claims)
		assert.Equal(t, wantUsername, claims.Username)
		w.WriteHeader(http.StatusOK)
	}, &called
}

func TestRequireAuth(t *testing.T) {
	codec := tokens.NewCodec("access-secret", "refresh-secret")
	mw := NewAuthMiddleware(codec)

	token, err := codec.IssueAccessToken("user-1", "alice", "viewer")
	require.NoError(t, err)

	t.Run("valid token", func(t *testing.T) {
		handler, called := testHandler(t, "alice")
		req := httptest.NewRequest("POST", "/auth/logout", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		rr := httptest.NewRecorder()

		mw.RequireAuth(handler).ServeHTTP(rr, req)
		assert.Equal(t, http.StatusOK, rr.Code)
		assert.True(t, *called)
	})

	t.Run("missing header", func(t *testing.T) {
		handler, called := testHandler(t, "alice")
		req := httptest.NewRequest("POST", "/auth/logout", nil)
		rr := httptest.NewRecorder()

		mw.RequireAuth(handler).ServeHTTP(rr, req)
		assert.Equal(t, http.StatusUnauthorized, rr.Code)
		assert.False(t, *called)
	})

	t.Run("malformed header", func(t *testing.T) {
		handler, called := testHandler(t, "alice")
		req := httptest.NewRequest("POST", "/auth/logout", nil)
		req.Header.Set("Authorization", "Basic dXNlcjpwYXNz")
		rr := httptest.NewRecorder()

		mw.RequireAuth(handler).ServeHTTP(rr, req)
		assert.Equal(t, http.StatusUnauthorized, rr.Code)
		assert.False(t, *called)
	})

	t.Run("refresh token rejected as access token", func(t *testing.T) {
		refresh, err := codec.IssueRefreshToken("user-1", "alice", "viewer")
		require.NoError(t, err)

		handler, called := testHandler(t, "alice")
		req := httptest.NewRequest("POST", "/auth/logout", nil)
		req.Header.Set("Authorization", "Bearer "+refresh)
		rr := httptest.NewRecorder()

		mw.RequireAuth(handler).ServeHTTP(rr, req)
		assert.Equal(t, http.StatusUnauthorized, rr.Code)
		assert.False(t, *called)
	})
}

func TestRequireAdmin(t *testing.T) {
	codec := tokens.NewCodec("access-secret", "refresh-secret")
	mw := NewAuthMiddleware(codec)

	tests := []struct {
		role string
		want int
	}{
		{role: "admin", want: http.StatusOK},
		{role: "manager", want: http.StatusForbidden},
		{role: "viewer", want: http.StatusForbidden},
	}

	for _, tt := range tests {
		t.Run(tt.role, func(t *testing.T) {
			token, err := codec.IssueAccessToken("user-1", "alice", tt.role)
			require.NoError(t, err)

			req := httptest.NewRequest("GET", "/auth/events", nil)
			req.Header.Set("Authorization", "Bearer "+token)
			rr := httptest.NewRecorder()

			mw.RequireAdmin(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusOK)
			}).ServeHTTP(rr, req)
			assert.Equal(t, tt.want, rr.Code)
		})
	}
}

func TestRequireManager(t *testing.T) {
	codec := tokens.NewCodec("access-secret", "refresh-secret")
	mw := NewAuthMiddleware(codec)

	tests := []struct {
		role string
		want int
	}{
		{role: "admin", want: http.StatusOK},
		{role: "manager", want: http.StatusOK},
		{role: "viewer", want: http.StatusForbidden},
	}

	for _, tt := range tests {
		t.Run(tt.role, func(t *testing.T) {
			token, err := codec.IssueAccessToken("user-1", "alice", tt.role)
			require.NoError(t, err)

			req := httptest.NewRequest("GET", "/datasets", nil)
			req.Header.Set("Authorization", "Bearer "+token)
			rr := httptest.NewRecorder()

			mw.RequireManager(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusOK)
			}).ServeHTTP(rr, req)
			assert.Equal(t, tt.want, rr.Code)
		})
	}
}
