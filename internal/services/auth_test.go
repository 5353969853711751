package services

import (
	"context"
	"database/sql"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/vmcandles/commerce-api/internal/lib/jwt"
	"github.com/vmcandles/commerce-api/internal/lib/password"
	"github.com/vmcandles/commerce-api/internal/models"
)

func newTestLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{}))
}

func newTestMaker() jwt.Maker {
	return jwt.NewJWTMaker("test-secret-key", time.Hour)
}

type UserRepoMock struct{ mock.Mock }

func (m *UserRepoMock) CreateUser(ctx context.Context, user models.User) (string, error) {
	args := m.Called(ctx, user)
	return args.String(0), args.Error(1)
}

func (m *UserRepoMock) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *UserRepoMock) GetUserByID(ctx context.Context, id string) (*models.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func TestAuthService_Register(t *testing.T) {
	ctx := context.Background()

	t.Run("successful registration", func(t *testing.T) {
		repo := new(UserRepoMock)
		repo.On("GetUserByEmail", ctx, "new@example.com").Return(nil, sql.ErrNoRows)
		repo.On("CreateUser", ctx, mock.MatchedBy(func(u models.User) bool {
			return u.Email == "new@example.com" && u.Role == models.RoleUser && u.PasswordHash != "secret123"
		})).Return("user-1", nil)

		svc := NewAuthService(repo, newTestMaker(), newTestLogger())
		user, token, err := svc.Register(ctx, models.RegisterRequest{
			Email:     "new@example.com",
			Password:  "secret123",
			FirstName: "Maria",
			LastName:  "Gonzalez",
		})
		require.NoError(t, err)
		assert.Equal(t, "user-1", user.ID)
		assert.NotEmpty(t, token)
		repo.AssertExpectations(t)
	})

	t.Run("duplicate email", func(t *testing.T) {
		repo := new(UserRepoMock)
		repo.On("GetUserByEmail", ctx, "taken@example.com").
			Return(&models.User{ID: "user-1"}, nil)

		svc := NewAuthService(repo, newTestMaker(), newTestLogger())
		_, _, err := svc.Register(ctx, models.RegisterRequest{
			Email:     "taken@example.com",
			Password:  "secret123",
			FirstName: "Maria",
			LastName:  "Gonzalez",
		})
		assert.ErrorIs(t, err, ErrEmailTaken)
		repo.AssertNotCalled(t, "CreateUser")
	})
}

func TestAuthService_Login(t *testing.T) {
	ctx := context.Background()
	hash, err := password.GetHash("secret123")
	require.NoError(t, err)

	stored := &models.User{
		ID:           "user-1",
		Email:        "maria@example.com",
		PasswordHash: hash,
		Role:         models.RoleUser,
	}

	tests := []struct {
		name     string
		email    string
		password string
		repoUser *models.User
		repoErr  error
		wantErr  error
	}{
		{
			name:     "successful login",
			email:    "maria@example.com",
			password: "secret123",
			repoUser: stored,
		},
		{
			name:     "wrong password",
			email:    "maria@example.com",
			password: "wrongpass",
			repoUser: stored,
			wantErr:  ErrInvalidCredentials,
		},
		{
			name:     "unknown email",
			email:    "nobody@example.com",
			password: "secret123",
			repoErr:  sql.ErrNoRows,
			wantErr:  ErrInvalidCredentials,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := new(UserRepoMock)
			repo.On("GetUserByEmail", ctx, tt.email).Return(tt.repoUser, tt.repoErr)

			svc := NewAuthService(repo, newTestMaker(), newTestLogger())
			user, token, err := svc.Login(ctx, models.LoginRequest{Email: tt.email, Password: tt.password})
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, "user-1", user.ID)

			claims, err := newTestMaker().ParseToken(token)
			require.NoError(t, err)
			assert.Equal(t, "user-1", claims.UserID())
		})
	}
}
