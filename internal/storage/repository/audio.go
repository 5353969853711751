package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/vmcandles/commerce-api/internal/models"
)

func scanAudio(row rowScanner) (*models.AudioContent, error) {
	a := &models.AudioContent{}
	if err := row.Scan(&a.ID, &a.Title, &a.Description, &a.Category, &a.FileURL,
		&a.Duration, &a.IsPreview, &a.RequiredPlan, &a.SortOrder, &a.CreatedAt); err != nil {
		return nil, err
	}
	return a, nil
}

const audioColumns = `id, title, COALESCE(description, ''), COALESCE(category, ''),
			      file_url, duration, is_preview, COALESCE(required_plan, ''), sort_order, created_at`

// ListAudioContent returns tracks matching the filters.
func (s *Storage) ListAudioContent(ctx context.Context, category string, isPreview *bool) ([]models.AudioContent, error) {
	const op = "storage.ListAudioContent"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	where := []string{"1=1"}
	args := []any{}
	arg := func(v any) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}
	if category != "" {
		where = append(where, "category = "+arg(category))
	}
	if isPreview != nil {
		where = append(where, "is_preview = "+arg(*isPreview))
	}

	query := `SELECT ` + audioColumns + ` FROM audio_content
			  WHERE ` + strings.Join(where, " AND ") + `
			  ORDER BY sort_order ASC, created_at ASC`
	rows, err := s.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer func() { _ = rows.Close() }()

	var tracks []models.AudioContent
	for rows.Next() {
		a, err := scanAudio(rows)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		tracks = append(tracks, *a)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return tracks, nil
}

// GetAudioContent returns one track.
func (s *Storage) GetAudioContent(ctx context.Context, id string) (*models.AudioContent, error) {
	const op = "storage.GetAudioContent"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	a, err := scanAudio(s.DB.QueryRowContext(ctx,
		`SELECT `+audioColumns+` FROM audio_content WHERE id = $1`, id))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return a, nil
}

// CreateAudioContent inserts a track.
func (s *Storage) CreateAudioContent(ctx context.Context, req models.AudioContentRequest) (string, error) {
	const op = "storage.CreateAudioContent"
	select {
	case <-ctx.Done():
		return "", fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	newID := uuid.NewString()
	query := `INSERT INTO audio_content (id, title, description, category, file_url, duration,
			      is_preview, required_plan, sort_order)
			  VALUES ($1, $2, $3, $4, $5, $6, $7, NULLIF($8, ''), $9)`
	if _, err := s.DB.ExecContext(ctx, query, newID, req.Title, req.Description,
		req.Category, req.FileURL, req.Duration, req.IsPreview, req.RequiredPlan, req.SortOrder); err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	return newID, nil
}

// UpdateAudioContent rewrites a track.
func (s *Storage) UpdateAudioContent(ctx context.Context, id string, req models.AudioContentRequest) error {
	const op = "storage.UpdateAudioContent"
	select {
	case <-ctx.Done():
		return fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `UPDATE audio_content SET title = $1, description = $2, category = $3,
			      file_url = $4, duration = $5, is_preview = $6, required_plan = NULLIF($7, ''),
			      sort_order = $8
			  WHERE id = $9`
	result, err := s.DB.ExecContext(ctx, query, req.Title, req.Description, req.Category,
		req.FileURL, req.Duration, req.IsPreview, req.RequiredPlan, req.SortOrder, id)
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

// DeleteAudioContent removes a track.
func (s *Storage) DeleteAudioContent(ctx context.Context, id string) error {
	const op = "storage.DeleteAudioContent"
	select {
	case <-ctx.Done():
		return fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	result, err := s.DB.ExecContext(ctx, `DELETE FROM audio_content WHERE id = $1`, id)
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

// CreateAccessKeys inserts a generated batch.
func (s *Storage) CreateAccessKeys(ctx context.Context, keys []models.AudioAccessKey) error {
	const op = "storage.CreateAccessKeys"
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

	query := `INSERT INTO audio_access_keys (id, key_code, plan_id, duration_months, notes)
			  VALUES ($1, $2, $3, $4, $5)`
	for _, k := range keys {
		if _, err := tx.ExecContext(ctx, query, k.ID, k.KeyCode, k.PlanID, k.DurationMonths, k.Notes); err != nil {
			return fmt.Errorf("%s: %w", op, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

func scanAccessKey(row rowScanner) (*models.AudioAccessKey, error) {
	k := &models.AudioAccessKey{}
	var redeemedBy sql.NullString
	var redeemedAt, expiresAt sql.NullTime
	if err := row.Scan(&k.ID, &k.KeyCode, &k.PlanID, &k.DurationMonths, &redeemedBy,
		&redeemedAt, &expiresAt, &k.Notes, &k.CreatedAt); err != nil {
		return nil, err
	}
	if redeemedBy.Valid {
		k.RedeemedBy = redeemedBy.String
	}
	if redeemedAt.Valid {
		k.RedeemedAt = &redeemedAt.Time
	}
	if expiresAt.Valid {
		k.ExpiresAt = &expiresAt.Time
	}
	return k, nil
}

const accessKeyColumns = `id, key_code, plan_id, duration_months, redeemed_by, redeemed_at,
			      expires_at, COALESCE(notes, ''), created_at`

// GetAccessKeyByCode looks a key up by its normalized code.
func (s *Storage) GetAccessKeyByCode(ctx context.Context, keyCode string) (*models.AudioAccessKey, error) {
	const op = "storage.GetAccessKeyByCode"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	k, err := scanAccessKey(s.DB.QueryRowContext(ctx,
		`SELECT `+accessKeyColumns+` FROM audio_access_keys WHERE key_code = $1`, keyCode))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return k, nil
}

// RedeemAccessKey marks the key as used by the caller and stamps its
// validity window.
func (s *Storage) RedeemAccessKey(ctx context.Context, id, userID string, redeemedAt, expiresAt time.Time) error {
	const op = "storage.RedeemAccessKey"
	select {
	case <-ctx.Done():
		return fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `UPDATE audio_access_keys SET redeemed_by = $1, redeemed_at = $2, expires_at = $3
			  WHERE id = $4 AND redeemed_by IS NULL`
	result, err := s.DB.ExecContext(ctx, query, userID, redeemedAt, expiresAt, id)
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

// GetValidAccessKey returns the user's redeemed key that has not
// expired, if any.
func (s *Storage) GetValidAccessKey(ctx context.Context, userID string, now time.Time) (*models.AudioAccessKey, error) {
	const op = "storage.GetValidAccessKey"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT ` + accessKeyColumns + ` FROM audio_access_keys
			  WHERE redeemed_by = $1 AND expires_at > $2
			  ORDER BY expires_at DESC LIMIT 1`
	k, err := scanAccessKey(s.DB.QueryRowContext(ctx, query, userID, now))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return k, nil
}

// ListAccessKeys returns keys, optionally filtered by redemption
// state.
func (s *Storage) ListAccessKeys(ctx context.Context, redeemed *bool) ([]models.AudioAccessKey, error) {
	const op = "storage.ListAccessKeys"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT ` + accessKeyColumns + ` FROM audio_access_keys`
	args := []any{}
	if redeemed != nil {
		if *redeemed {
			query += ` WHERE redeemed_by IS NOT NULL`
		} else {
			query += ` WHERE redeemed_by IS NULL`
		}
	}
	query += ` ORDER BY created_at DESC`

	rows, err := s.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer func() { _ = rows.Close() }()

	var keys []models.AudioAccessKey
	for rows.Next() {
		k, err := scanAccessKey(rows)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		keys = append(keys, *k)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return keys, nil
}
