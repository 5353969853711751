package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	"github.com/vmcandles/commerce-api/internal/models"
)

// ListWishlist returns the user's saved products with their localized
// catalog rows attached.
func (s *Storage) ListWishlist(ctx context.Context, userID, language string) ([]models.WishlistItem, error) {
	const op = "storage.ListWishlist"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT w.id, w.user_id, w.product_id, w.created_at
			  FROM wishlist_items w WHERE w.user_id = $1 ORDER BY w.created_at DESC`
	rows, err := s.DB.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer func() { _ = rows.Close() }()

	var items []models.WishlistItem
	for rows.Next() {
		var it models.WishlistItem
		if err := rows.Scan(&it.ID, &it.UserID, &it.ProductID, &it.CreatedAt); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		items = append(items, it)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	for i := range items {
		product, err := s.GetProduct(ctx, items[i].ProductID, language)
		if err != nil {
			continue
		}
		items[i].Product = product
	}
	return items, nil
}

// AddWishlistItem saves a product. ErrDuplicate when already saved.
func (s *Storage) AddWishlistItem(ctx context.Context, userID, productID string) (string, error) {
	const op = "storage.AddWishlistItem"
	select {
	case <-ctx.Done():
		return "", fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	newID := uuid.NewString()
	query := `INSERT INTO wishlist_items (id, user_id, product_id) VALUES ($1, $2, $3)`
	if _, err := s.DB.ExecContext(ctx, query, newID, userID, productID); err != nil {
		if isUniqueViolation(err) {
			return "", fmt.Errorf("%s: %w", op, ErrDuplicate)
		}
		return "", fmt.Errorf("%s: %w", op, err)
	}
	return newID, nil
}

// RemoveWishlistItem deletes the user's saved entry for a product.
func (s *Storage) RemoveWishlistItem(ctx context.Context, userID, productID string) error {
	const op = "storage.RemoveWishlistItem"
	select {
	case <-ctx.Done():
		return fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	result, err := s.DB.ExecContext(ctx,
		`DELETE FROM wishlist_items WHERE user_id = $1 AND product_id = $2`, userID, productID)
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

// IsInWishlist reports whether the user saved the product.
func (s *Storage) IsInWishlist(ctx context.Context, userID, productID string) (bool, error) {
	const op = "storage.IsInWishlist"
	select {
	case <-ctx.Done():
		return false, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	var exists bool
	query := `SELECT EXISTS (SELECT 1 FROM wishlist_items WHERE user_id = $1 AND product_id = $2)`
	if err := s.DB.QueryRowContext(ctx, query, userID, productID).Scan(&exists); err != nil {
		return false, fmt.Errorf("%s: %w", op, err)
	}
	return exists, nil
}
