package remove

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/vmcandles/commerce-api/internal/http/middlewarectx"
	"github.com/vmcandles/commerce-api/internal/services"
)

type UserServiceMock struct {
	mock.Mock
}

func (m *UserServiceMock) Delete(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func newNoopLogger() *slog.Logger {
	h := slog.NewTextHandler(io.Discard, &slog.HandlerOptions{})
	return slog.New(h)
}

func TestRemoveHandler_ServeHTTP(t *testing.T) {
	tests := []struct {
		name           string
		targetID       string
		callerID       string
		mockErr        error
		expectCall     bool
		wantStatusCode int
		wantErrorCode  string
	}{
		{
			name:           "deletes another user",
			targetID:       "user-2",
			callerID:       "admin-1",
			expectCall:     true,
			wantStatusCode: http.StatusOK,
		},
		{
			name:           "admin cannot delete own account",
			targetID:       "admin-1",
			callerID:       "admin-1",
			wantStatusCode: http.StatusBadRequest,
			wantErrorCode:  CodeCannotDeleteSelf,
		},
		{
			name:           "unknown user",
			targetID:       "missing",
			callerID:       "admin-1",
			mockErr:        services.ErrNotFound,
			expectCall:     true,
			wantStatusCode: http.StatusNotFound,
			wantErrorCode:  "NOT_FOUND",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			userMock := new(UserServiceMock)
			if tt.expectCall {
				userMock.On("Delete", mock.Anything, tt.targetID).Return(tt.mockErr).Once()
			}

			handler := New(newNoopLogger(), userMock)

			req := httptest.NewRequest(http.MethodDelete, "/api/v1/admin/users/"+tt.targetID, nil)

			rctx := chi.NewRouteContext()
			rctx.URLParams.Add("id", tt.targetID)
			ctx := context.WithValue(req.Context(), chi.RouteCtxKey, rctx)
			ctx = context.WithValue(ctx, middleware.RequestIDKey, "reqid123")
			ctx = context.WithValue(ctx, middlewarectx.UserID, tt.callerID)
			req = req.WithContext(ctx)

			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)

			assert.Equal(t, tt.wantStatusCode, rec.Code)

			var got map[string]any
			err := json.NewDecoder(rec.Body).Decode(&got)
			assert.NoError(t, err)

			if tt.wantErrorCode != "" {
				errBody, ok := got["error"].(map[string]any)
				assert.True(t, ok)
				assert.Equal(t, tt.wantErrorCode, errBody["code"])
			} else {
				assert.Equal(t, true, got["success"])
			}

			userMock.AssertExpectations(t)
		})
	}
}
