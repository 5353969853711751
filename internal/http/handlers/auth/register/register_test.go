package register

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/middleware"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/vmcandles/commerce-api/internal/models"
	"github.com/vmcandles/commerce-api/internal/services"
)

type AuthServiceMock struct {
	mock.Mock
}

func (m *AuthServiceMock) Register(ctx context.Context, req models.RegisterRequest) (*models.User, string, error) {
	args := m.Called(ctx, req)
	var user *models.User
	if args.Get(0) != nil {
		user = args.Get(0).(*models.User)
	}
	return user, args.String(1), args.Error(2)
}

func newNoopLogger() *slog.Logger {
	h := slog.NewTextHandler(io.Discard, &slog.HandlerOptions{})
	return slog.New(h)
}

func TestRegisterHandler_ServeHTTP(t *testing.T) {
	authMock := new(AuthServiceMock)
	logger := newNoopLogger()

	handler := New(logger, authMock)

	validReq := models.RegisterRequest{
		Email:     "ana@example.cl",
		Password:  "password123",
		FirstName: "Ana",
		LastName:  "Rojas",
	}

	tests := []struct {
		name           string
		requestBody    interface{}
		mockUser       *models.User
		mockToken      string
		mockErr        error
		expectCall     bool
		wantStatusCode int
		wantSuccess    bool
		wantErrorCode  string
	}{
		{
			name:        "valid registration",
			requestBody: validReq,
			mockUser: &models.User{
				ID:        "user-1",
				Email:     "ana@example.cl",
				FirstName: "Ana",
				LastName:  "Rojas",
				Role:      models.RoleUser,
			},
			mockToken:      "jwt-token",
			expectCall:     true,
			wantStatusCode: http.StatusCreated,
			wantSuccess:    true,
		},
		{
			name:           "invalid json body",
			requestBody:    "not a json",
			wantStatusCode: http.StatusBadRequest,
			wantErrorCode:  "INVALID_INPUT",
		},
		{
			name: "validation error - short password",
			requestBody: models.RegisterRequest{
				Email:     "ana@example.cl",
				Password:  "short",
				FirstName: "Ana",
				LastName:  "Rojas",
			},
			wantStatusCode: http.StatusBadRequest,
			wantErrorCode:  "VALIDATION_ERROR",
		},
		{
			name:           "email already taken",
			requestBody:    validReq,
			mockErr:        services.ErrEmailTaken,
			expectCall:     true,
			wantStatusCode: http.StatusConflict,
			wantErrorCode:  "USER_EXISTS",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			authMock.ExpectedCalls = nil
			authMock.Calls = nil

			if tt.expectCall {
				authMock.On("Register", mock.Anything, mock.Anything).
					Return(tt.mockUser, tt.mockToken, tt.mockErr).Once()
			}

			var bodyBytes []byte
			var err error
			switch v := tt.requestBody.(type) {
			case string:
				bodyBytes = []byte(v)
			default:
				bodyBytes, err = json.Marshal(tt.requestBody)
				if err != nil {
					t.Fatal(err)
				}
			}

			req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/register", bytes.NewReader(bodyBytes))
			req = req.WithContext(context.WithValue(req.Context(), middleware.RequestIDKey, "reqid123"))

			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)

			assert.Equal(t, tt.wantStatusCode, rec.Code)

			var got map[string]any
			err = json.NewDecoder(rec.Body).Decode(&got)
			assert.NoError(t, err)
			assert.Equal(t, tt.wantSuccess, got["success"])

			if tt.wantErrorCode != "" {
				errBody, ok := got["error"].(map[string]any)
				assert.True(t, ok)
				assert.Equal(t, tt.wantErrorCode, errBody["code"])
			} else {
				data, ok := got["data"].(map[string]any)
				assert.True(t, ok)
				assert.Equal(t, "jwt-token", data["token"])
				user, ok := data["user"].(map[string]any)
				assert.True(t, ok)
				assert.Equal(t, "ana@example.cl", user["email"])
			}

			authMock.AssertExpectations(t)
		})
	}
}
