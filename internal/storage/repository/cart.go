package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/vmcandles/commerce-api/internal/models"
)

// GetOrCreateCart returns the user's cart with items, creating the
// cart row on first access.
func (s *Storage) GetOrCreateCart(ctx context.Context, userID string) (*models.Cart, error) {
	const op = "storage.GetOrCreateCart"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	cart := &models.Cart{}
	query := `SELECT id, user_id, created_at, updated_at FROM carts WHERE user_id = $1`
	err := s.DB.QueryRowContext(ctx, query, userID).Scan(&cart.ID, &cart.UserID, &cart.CreatedAt, &cart.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		insert := `INSERT INTO carts (id, user_id) VALUES ($1, $2)
				  RETURNING id, user_id, created_at, updated_at`
		err = s.DB.QueryRowContext(ctx, insert, uuid.NewString(), userID).
			Scan(&cart.ID, &cart.UserID, &cart.CreatedAt, &cart.UpdatedAt)
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	items, err := s.listCartItems(ctx, cart.ID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	cart.Items = items
	return cart, nil
}

// GetCartByUserID returns the cart without creating it.
func (s *Storage) GetCartByUserID(ctx context.Context, userID string) (*models.Cart, error) {
	const op = "storage.GetCartByUserID"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	cart := &models.Cart{}
	query := `SELECT id, user_id, created_at, updated_at FROM carts WHERE user_id = $1`
	if err := s.DB.QueryRowContext(ctx, query, userID).
		Scan(&cart.ID, &cart.UserID, &cart.CreatedAt, &cart.UpdatedAt); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	items, err := s.listCartItems(ctx, cart.ID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	cart.Items = items
	return cart, nil
}

func (s *Storage) listCartItems(ctx context.Context, cartID string) ([]models.CartItem, error) {
	query := `SELECT id, cart_id, product_id, name, price, COALESCE(image, ''), quantity, created_at
			  FROM cart_items WHERE cart_id = $1 ORDER BY created_at`
	rows, err := s.DB.QueryContext(ctx, query, cartID)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var items []models.CartItem
	for rows.Next() {
		var it models.CartItem
		if err := rows.Scan(&it.ID, &it.CartID, &it.ProductID, &it.Name, &it.Price,
			&it.Image, &it.Quantity, &it.CreatedAt); err != nil {
			return nil, err
		}
		items = append(items, it)
	}
	return items, rows.Err()
}

// UpsertCartItem adds quantity to an existing line for the product or
// inserts a new line with the given snapshot.
func (s *Storage) UpsertCartItem(ctx context.Context, cartID string, item models.CartItem) error {
	const op = "storage.UpsertCartItem"
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

	update := `UPDATE cart_items SET quantity = quantity + $1
			  WHERE cart_id = $2 AND product_id = $3`
	result, err := tx.ExecContext(ctx, update, item.Quantity, cartID, item.ProductID)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if n == 0 {
		insert := `INSERT INTO cart_items (id, cart_id, product_id, name, price, image, quantity)
				  VALUES ($1, $2, $3, $4, $5, $6, $7)`
		if _, err := tx.ExecContext(ctx, insert, uuid.NewString(), cartID,
			item.ProductID, item.Name, item.Price, item.Image, item.Quantity); err != nil {
			return fmt.Errorf("%s: %w", op, err)
		}
	}

	touch := `UPDATE carts SET updated_at = now() WHERE id = $1`
	if _, err := tx.ExecContext(ctx, touch, cartID); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// GetCartItem returns a cart line only when it belongs to the user's
// cart.
func (s *Storage) GetCartItem(ctx context.Context, itemID, userID string) (*models.CartItem, error) {
	const op = "storage.GetCartItem"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT ci.id, ci.cart_id, ci.product_id, ci.name, ci.price, COALESCE(ci.image, ''),
			      ci.quantity, ci.created_at
			  FROM cart_items ci
			  JOIN carts c ON c.id = ci.cart_id
			  WHERE ci.id = $1 AND c.user_id = $2`
	it := &models.CartItem{}
	row := s.DB.QueryRowContext(ctx, query, itemID, userID)
	if err := row.Scan(&it.ID, &it.CartID, &it.ProductID, &it.Name, &it.Price,
		&it.Image, &it.Quantity, &it.CreatedAt); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return it, nil
}

// UpdateCartItemQuantity sets the quantity of one line.
func (s *Storage) UpdateCartItemQuantity(ctx context.Context, itemID string, quantity int) error {
	const op = "storage.UpdateCartItemQuantity"
	select {
	case <-ctx.Done():
		return fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `UPDATE cart_items SET quantity = $1 WHERE id = $2`
	result, err := s.DB.ExecContext(ctx, query, quantity, itemID)
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

// DeleteCartItem removes one line.
func (s *Storage) DeleteCartItem(ctx context.Context, itemID string) error {
	const op = "storage.DeleteCartItem"
	select {
	case <-ctx.Done():
		return fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	result, err := s.DB.ExecContext(ctx, `DELETE FROM cart_items WHERE id = $1`, itemID)
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

// ClearCart removes every line from the cart.
func (s *Storage) ClearCart(ctx context.Context, cartID string) error {
	const op = "storage.ClearCart"
	select {
	case <-ctx.Done():
		return fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	if _, err := s.DB.ExecContext(ctx, `DELETE FROM cart_items WHERE cart_id = $1`, cartID); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}
