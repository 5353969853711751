package services

import (
	"context"
	"database/sql"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/vmcandles/commerce-api/internal/models"
)

type UserAdminRepoMock struct{ UserRepoMock }

func (m *UserAdminRepoMock) ListUsers(ctx context.Context, page, limit int) ([]models.User, int64, error) {
	args := m.Called(ctx, page, limit)
	return args.Get(0).([]models.User), args.Get(1).(int64), args.Error(2)
}

func (m *UserAdminRepoMock) UpdateUser(ctx context.Context, user models.User) error {
	return m.Called(ctx, user).Error(0)
}

func (m *UserAdminRepoMock) DeleteUser(ctx context.Context, id string) error {
	return m.Called(ctx, id).Error(0)
}

func TestUserService_Update(t *testing.T) {
	ctx := context.Background()
	existing := func() *models.User {
		return &models.User{
			ID: "user-1", Email: "ana@example.com", FirstName: "Ana", LastName: "Rojas",
			Role: models.RoleUser,
		}
	}

	t.Run("changing to a taken email is rejected", func(t *testing.T) {
		repo := new(UserAdminRepoMock)
		repo.On("GetUserByID", ctx, "user-1").Return(existing(), nil)
		repo.On("GetUserByEmail", ctx, "taken@example.com").Return(&models.User{
			ID: "user-2", Email: "taken@example.com",
		}, nil)

		svc := NewUserService(repo, newTestLogger())
		_, err := svc.Update(ctx, "user-1", models.AdminUserRequest{
			Email: "taken@example.com", FirstName: "Ana", LastName: "Rojas",
		})
		assert.ErrorIs(t, err, ErrEmailTaken)
		repo.AssertNotCalled(t, "UpdateUser", mock.Anything, mock.Anything)
	})

	t.Run("keeping the own email skips the uniqueness check", func(t *testing.T) {
		repo := new(UserAdminRepoMock)
		repo.On("GetUserByID", ctx, "user-1").Return(existing(), nil)
		repo.On("UpdateUser", ctx, mock.MatchedBy(func(u models.User) bool {
			return u.Email == "ana@example.com" && u.FirstName == "Anita"
		})).Return(nil)

		svc := NewUserService(repo, newTestLogger())
		_, err := svc.Update(ctx, "user-1", models.AdminUserRequest{
			Email: "ana@example.com", FirstName: "Anita", LastName: "Rojas",
		})
		require.NoError(t, err)
		repo.AssertNotCalled(t, "GetUserByEmail", mock.Anything, mock.Anything)
	})

	t.Run("changing to a free email succeeds", func(t *testing.T) {
		repo := new(UserAdminRepoMock)
		repo.On("GetUserByID", ctx, "user-1").Return(existing(), nil)
		repo.On("GetUserByEmail", ctx, "nueva@example.com").Return(nil, sql.ErrNoRows)
		repo.On("UpdateUser", ctx, mock.MatchedBy(func(u models.User) bool {
			return u.Email == "nueva@example.com"
		})).Return(nil)

		svc := NewUserService(repo, newTestLogger())
		_, err := svc.Update(ctx, "user-1", models.AdminUserRequest{
			Email: "nueva@example.com", FirstName: "Ana", LastName: "Rojas",
		})
		require.NoError(t, err)
		repo.AssertExpectations(t)
	})
}
