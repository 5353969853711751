package services

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"

	"github.com/vmcandles/commerce-api/internal/lib/jwt"
	"github.com/vmcandles/commerce-api/internal/lib/password"
	"github.com/vmcandles/commerce-api/internal/models"
)

type UserRepository interface {
	CreateUser(ctx context.Context, user models.User) (string, error)
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	GetUserByID(ctx context.Context, id string) (*models.User, error)
}

// AuthService implements registration, login and token issuing.
type AuthService struct {
	users    UserRepository
	jwtMaker jwt.Maker
	log      *slog.Logger
}

func NewAuthService(users UserRepository, jwtMaker jwt.Maker, log *slog.Logger) *AuthService {
	return &AuthService{users: users, jwtMaker: jwtMaker, log: log}
}

// Register creates a user with a hashed password and returns the new
// user together with a session token.
func (s *AuthService) Register(ctx context.Context, req models.RegisterRequest) (*models.User, string, error) {
	if _, err := s.users.GetUserByEmail(ctx, req.Email); err == nil {
		return nil, "", ErrEmailTaken
	} else if !errors.Is(err, sql.ErrNoRows) {
		return nil, "", err
	}

	hashed, err := password.GetHash(req.Password)
	if err != nil {
		return nil, "", err
	}

	user := models.User{
		Email:        req.Email,
		PasswordHash: hashed,
		FirstName:    req.FirstName,
		LastName:     req.LastName,
		Role:         models.RoleUser,
	}
	id, err := s.users.CreateUser(ctx, user)
	if err != nil {
		return nil, "", err
	}
	user.ID = id

	token, err := s.jwtMaker.GenerateToken(id, user.Email, user.Role)
	if err != nil {
		return nil, "", err
	}

	s.log.Info("registered new user", slog.String("user_id", id))
	return &user, token, nil
}

// Login verifies credentials and returns the user with a fresh token.
func (s *AuthService) Login(ctx context.Context, req models.LoginRequest) (*models.User, string, error) {
	user, err := s.users.GetUserByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, "", ErrInvalidCredentials
		}
		return nil, "", err
	}
	if err := password.CompareHash(user.PasswordHash, req.Password); err != nil {
		return nil, "", ErrInvalidCredentials
	}

	token, err := s.jwtMaker.GenerateToken(user.ID, user.Email, user.Role)
	if err != nil {
		return nil, "", err
	}
	return user, token, nil
}

// Me returns the authenticated user's account.
func (s *AuthService) Me(ctx context.Context, userID string) (*models.User, error) {
	user, err := s.users.GetUserByID(ctx, userID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return user, nil
}
