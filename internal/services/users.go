package services

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"

	"github.com/vmcandles/commerce-api/internal/lib/password"
	"github.com/vmcandles/commerce-api/internal/models"
)

type UserAdminRepository interface {
	UserRepository
	ListUsers(ctx context.Context, page, limit int) ([]models.User, int64, error)
	UpdateUser(ctx context.Context, user models.User) error
	DeleteUser(ctx context.Context, id string) error
}

// UserService implements the admin account management operations.
type UserService struct {
	users UserAdminRepository
	log   *slog.Logger
}

func NewUserService(users UserAdminRepository, log *slog.Logger) *UserService {
	return &UserService{users: users, log: log}
}

func (s *UserService) List(ctx context.Context, page, limit int) ([]models.User, int64, error) {
	return s.users.ListUsers(ctx, page, limit)
}

func (s *UserService) Get(ctx context.Context, id string) (*models.User, error) {
	user, err := s.users.GetUserByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return user, nil
}

// Create adds an account on behalf of an admin. Unlike self-service
// registration the role can be set here.
func (s *UserService) Create(ctx context.Context, req models.AdminUserRequest) (*models.User, error) {
	if req.Password == "" {
		return nil, ErrInvalidCredentials
	}
	if _, err := s.users.GetUserByEmail(ctx, req.Email); err == nil {
		return nil, ErrEmailTaken
	} else if !errors.Is(err, sql.ErrNoRows) {
		return nil, err
	}

	hashed, err := password.GetHash(req.Password)
	if err != nil {
		return nil, err
	}
	role := req.Role
	if role == "" {
		role = models.RoleUser
	}

	user := models.User{
		Email:        req.Email,
		PasswordHash: hashed,
		FirstName:    req.FirstName,
		LastName:     req.LastName,
		Role:         role,
	}
	id, err := s.users.CreateUser(ctx, user)
	if err != nil {
		return nil, err
	}
	user.ID = id

	s.log.Info("admin created user", slog.String("user_id", id), slog.String("role", role))
	return &user, nil
}

func (s *UserService) Update(ctx context.Context, id string, req models.AdminUserRequest) (*models.User, error) {
	current, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Email != current.Email {
		if _, err := s.users.GetUserByEmail(ctx, req.Email); err == nil {
			return nil, ErrEmailTaken
		} else if !errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
	}

	current.Email = req.Email
	current.FirstName = req.FirstName
	current.LastName = req.LastName
	if req.Role != "" {
		current.Role = req.Role
	}
	if req.Password != "" {
		hashed, err := password.GetHash(req.Password)
		if err != nil {
			return nil, err
		}
		current.PasswordHash = hashed
	} else {
		current.PasswordHash = ""
	}

	if err := s.users.UpdateUser(ctx, *current); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return s.Get(ctx, id)
}

func (s *UserService) Delete(ctx context.Context, id string) error {
	if err := s.users.DeleteUser(ctx, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrNotFound
		}
		return err
	}
	s.log.Info("deleted user", slog.String("user_id", id))
	return nil
}
