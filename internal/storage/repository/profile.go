package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	"github.com/vmcandles/commerce-api/internal/models"
)

// GetProfileByUserID returns the profile owned by a user.
func (s *Storage) GetProfileByUserID(ctx context.Context, userID string) (*models.Profile, error) {
	const op = "storage.GetProfileByUserID"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT id, user_id, COALESCE(phone, ''), customer_type, COALESCE(company_name, ''),
			      COALESCE(tax_id, ''), preferred_language, created_at, updated_at
			  FROM profiles WHERE user_id = $1`
	p := &models.Profile{}
	row := s.DB.QueryRowContext(ctx, query, userID)
	if err := row.Scan(&p.ID, &p.UserID, &p.Phone, &p.CustomerType, &p.CompanyName,
		&p.TaxID, &p.PreferredLanguage, &p.CreatedAt, &p.UpdatedAt); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return p, nil
}

// UpdateProfile applies non-nil fields from the request.
func (s *Storage) UpdateProfile(ctx context.Context, userID string, req models.UpdateProfileRequest) error {
	const op = "storage.UpdateProfile"
	select {
	case <-ctx.Done():
		return fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `UPDATE profiles SET
			      phone = COALESCE($1, phone),
			      customer_type = COALESCE($2, customer_type),
			      company_name = COALESCE($3, company_name),
			      tax_id = COALESCE($4, tax_id),
			      preferred_language = COALESCE($5, preferred_language),
			      updated_at = now()
			  WHERE user_id = $6`
	result, err := s.DB.ExecContext(ctx, query,
		req.Phone, req.CustomerType, req.CompanyName, req.TaxID, req.PreferredLanguage, userID)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if n == 0 {
		return fmt.Errorf("%s: %w", op, sql.ErrNoRows)
	}
	return nil
}

// ListAddresses returns the addresses of a profile, defaults first.
func (s *Storage) ListAddresses(ctx context.Context, profileID string) ([]models.Address, error) {
	const op = "storage.ListAddresses"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT id, profile_id, type, street, city, region, COALESCE(postal_code, ''),
			      country, is_default, created_at
			  FROM addresses WHERE profile_id = $1
			  ORDER BY is_default DESC, created_at DESC`
	rows, err := s.DB.QueryContext(ctx, query, profileID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer func() { _ = rows.Close() }()

	var addresses []models.Address
	for rows.Next() {
		var a models.Address
		if err := rows.Scan(&a.ID, &a.ProfileID, &a.Type, &a.Street, &a.City, &a.Region,
			&a.PostalCode, &a.Country, &a.IsDefault, &a.CreatedAt); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		addresses = append(addresses, a)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return addresses, nil
}

// GetAddress returns one address only when it belongs to the profile.
func (s *Storage) GetAddress(ctx context.Context, id, profileID string) (*models.Address, error) {
	const op = "storage.GetAddress"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT id, profile_id, type, street, city, region, COALESCE(postal_code, ''),
			      country, is_default, created_at
			  FROM addresses WHERE id = $1 AND profile_id = $2`
	a := &models.Address{}
	row := s.DB.QueryRowContext(ctx, query, id, profileID)
	if err := row.Scan(&a.ID, &a.ProfileID, &a.Type, &a.Street, &a.City, &a.Region,
		&a.PostalCode, &a.Country, &a.IsDefault, &a.CreatedAt); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return a, nil
}

// CreateAddress inserts an address. A new default clears the flag on
// the profile's other addresses of the same type.
func (s *Storage) CreateAddress(ctx context.Context, profileID string, req models.AddressRequest) (*models.Address, error) {
	const op = "storage.CreateAddress"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	tx, err := s.DB.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer func() { _ = tx.Rollback() }()

	if req.IsDefault {
		unset := `UPDATE addresses SET is_default = false WHERE profile_id = $1 AND type = $2`
		if _, err := tx.ExecContext(ctx, unset, profileID, req.Type); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
	}

	newID := uuid.NewString()
	query := `INSERT INTO addresses (id, profile_id, type, street, city, region, postal_code, country, is_default)
			  VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
			  RETURNING created_at`
	a := &models.Address{
		ID: newID, ProfileID: profileID, Type: req.Type, Street: req.Street,
		City: req.City, Region: req.Region, PostalCode: req.PostalCode,
		Country: req.Country, IsDefault: req.IsDefault,
	}
	if err := tx.QueryRowContext(ctx, query, newID, profileID, req.Type, req.Street,
		req.City, req.Region, req.PostalCode, req.Country, req.IsDefault).Scan(&a.CreatedAt); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return a, nil
}

// UpdateAddress rewrites an address owned by the profile.
func (s *Storage) UpdateAddress(ctx context.Context, id, profileID string, req models.AddressRequest) error {
	const op = "storage.UpdateAddress"
	select {
	case <-ctx.Done():
		return fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	tx, err := s.DB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	defer func() { _ = tx.Rollback() }()

	if req.IsDefault {
		unset := `UPDATE addresses SET is_default = false WHERE profile_id = $1 AND type = $2 AND id <> $3`
		if _, err := tx.ExecContext(ctx, unset, profileID, req.Type, id); err != nil {
			return fmt.Errorf("%s: %w", op, err)
		}
	}

	query := `UPDATE addresses SET type = $1, street = $2, city = $3, region = $4,
			      postal_code = $5, country = $6, is_default = $7
			  WHERE id = $8 AND profile_id = $9`
	result, err := tx.ExecContext(ctx, query, req.Type, req.Street, req.City, req.Region,
		req.PostalCode, req.Country, req.IsDefault, id, profileID)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if n == 0 {
		return fmt.Errorf("%s: %w", op, sql.ErrNoRows)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// DeleteAddress removes an address owned by the profile.
func (s *Storage) DeleteAddress(ctx context.Context, id, profileID string) error {
	const op = "storage.DeleteAddress"
	select {
	case <-ctx.Done():
		return fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	result, err := s.DB.ExecContext(ctx,
		`DELETE FROM addresses WHERE id = $1 AND profile_id = $2`, id, profileID)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if n == 0 {
		return fmt.Errorf("%s: %w", op, sql.ErrNoRows)
	}
	return nil
}
