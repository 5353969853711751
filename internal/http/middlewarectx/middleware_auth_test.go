package middlewarectx

import (
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vmcandles/commerce-api/internal/lib/jwt"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestJWTMiddleware(t *testing.T) {
	maker := jwt.NewJWTMaker("test-secret", time.Hour)
	token, err := maker.GenerateToken("user-1", "ana@example.com", "USER")
	require.NoError(t, err)

	tests := []struct {
		name           string
		authHeader     string
		expectedStatus int
		expectNext     bool
	}{
		{
			name:           "valid token passes identity through",
			authHeader:     "Bearer " + token,
			expectedStatus: http.StatusOK,
			expectNext:     true,
		},
		{
			name:           "missing header rejected",
			authHeader:     "",
			expectedStatus: http.StatusUnauthorized,
		},
		{
			name:           "malformed header rejected",
			authHeader:     "Token abc",
			expectedStatus: http.StatusUnauthorized,
		},
		{
			name:           "garbage token rejected",
			authHeader:     "Bearer not.a.jwt",
			expectedStatus: http.StatusUnauthorized,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			nextCalled := false
			next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				nextCalled = true
				id, ok := UserIDFromContext(r.Context())
				assert.True(t, ok)
				assert.Equal(t, "user-1", id)
			})

			req := httptest.NewRequest(http.MethodGet, "/api/v1/cart", nil)
			if tt.authHeader != "" {
				req.Header.Set("Authorization", tt.authHeader)
			}
			rr := httptest.NewRecorder()

			JWTMiddleware(maker, discardLogger())(next).ServeHTTP(rr, req)

			assert.Equal(t, tt.expectedStatus, rr.Code)
			assert.Equal(t, tt.expectNext, nextCalled)
		})
	}
}

func TestRequireAdmin(t *testing.T) {
	maker := jwt.NewJWTMaker("test-secret", time.Hour)

	adminToken, err := maker.GenerateToken("admin-1", "admin@example.com", "ADMIN")
	require.NoError(t, err)
	userToken, err := maker.GenerateToken("user-1", "ana@example.com", "USER")
	require.NoError(t, err)

	handler := JWTMiddleware(maker, discardLogger())(
		RequireAdmin(discardLogger())(
			http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusOK)
			})))

	req := httptest.NewRequest(http.MethodGet, "/api/v1/admin/analytics", nil)
	req.Header.Set("Authorization", "Bearer "+adminToken)
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)
	assert.Equal(t, http.StatusOK, rr.Code)

	req = httptest.NewRequest(http.MethodGet, "/api/v1/admin/analytics", nil)
	req.Header.Set("Authorization", "Bearer "+userToken)
	rr = httptest.NewRecorder()
	handler.ServeHTTP(rr, req)
	assert.Equal(t, http.StatusForbidden, rr.Code)
}

func TestOptionalAuth(t *testing.T) {
	maker := jwt.NewJWTMaker("test-secret", time.Hour)
	token, err := maker.GenerateToken("user-1", "ana@example.com", "USER")
	require.NoError(t, err)

	var gotID string
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotID, _ = UserIDFromContext(r.Context())
	})

	// Anonymous request still reaches the handler.
	req := httptest.NewRequest(http.MethodGet, "/api/v1/audio", nil)
	rr := httptest.NewRecorder()
	OptionalAuth(maker)(next).ServeHTTP(rr, req)
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Empty(t, gotID)

	req = httptest.NewRequest(http.MethodGet, "/api/v1/audio", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rr = httptest.NewRecorder()
	OptionalAuth(maker)(next).ServeHTTP(rr, req)
	assert.Equal(t, "user-1", gotID)
}
