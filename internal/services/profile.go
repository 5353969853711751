package services

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"

	"github.com/vmcandles/commerce-api/internal/models"
)

type ProfileRepository interface {
	GetProfileByUserID(ctx context.Context, userID string) (*models.Profile, error)
	UpdateProfile(ctx context.Context, userID string, req models.UpdateProfileRequest) error
	ListAddresses(ctx context.Context, profileID string) ([]models.Address, error)
	GetAddress(ctx context.Context, id, profileID string) (*models.Address, error)
	CreateAddress(ctx context.Context, profileID string, req models.AddressRequest) (*models.Address, error)
	UpdateAddress(ctx context.Context, id, profileID string, req models.AddressRequest) error
	DeleteAddress(ctx context.Context, id, profileID string) error
}

// ProfileService manages the customer profile and its address book.
type ProfileService struct {
	profiles ProfileRepository
	log      *slog.Logger
}

func NewProfileService(profiles ProfileRepository, log *slog.Logger) *ProfileService {
	return &ProfileService{profiles: profiles, log: log}
}

func (s *ProfileService) Get(ctx context.Context, userID string) (*models.Profile, error) {
	profile, err := s.profiles.GetProfileByUserID(ctx, userID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return profile, nil
}

func (s *ProfileService) Update(ctx context.Context, userID string, req models.UpdateProfileRequest) (*models.Profile, error) {
	if err := s.profiles.UpdateProfile(ctx, userID, req); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return s.Get(ctx, userID)
}

func (s *ProfileService) ListAddresses(ctx context.Context, userID string) ([]models.Address, error) {
	profile, err := s.Get(ctx, userID)
	if err != nil {
		return nil, err
	}
	return s.profiles.ListAddresses(ctx, profile.ID)
}

func (s *ProfileService) CreateAddress(ctx context.Context, userID string, req models.AddressRequest) (*models.Address, error) {
	profile, err := s.Get(ctx, userID)
	if err != nil {
		return nil, err
	}
	addr, err := s.profiles.CreateAddress(ctx, profile.ID, req)
	if err != nil {
		return nil, err
	}
	s.log.Info("created address", slog.String("address_id", addr.ID))
	return addr, nil
}

func (s *ProfileService) UpdateAddress(ctx context.Context, userID, addressID string, req models.AddressRequest) (*models.Address, error) {
	profile, err := s.Get(ctx, userID)
	if err != nil {
		return nil, err
	}
	if err := s.profiles.UpdateAddress(ctx, addressID, profile.ID, req); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrAddressNotFound
		}
		return nil, err
	}
	return s.profiles.GetAddress(ctx, addressID, profile.ID)
}

func (s *ProfileService) DeleteAddress(ctx context.Context, userID, addressID string) error {
	profile, err := s.Get(ctx, userID)
	if err != nil {
		return err
	}
	if err := s.profiles.DeleteAddress(ctx, addressID, profile.ID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrAddressNotFound
		}
		return err
	}
	return nil
}
