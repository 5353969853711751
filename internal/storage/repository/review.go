package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	"github.com/vmcandles/commerce-api/internal/models"
)

// CreateReview inserts a review. ErrDuplicate is returned when the
// user already reviewed the product.
func (s *Storage) CreateReview(ctx context.Context, review models.Review) (string, error) {
	const op = "storage.CreateReview"
	select {
	case <-ctx.Done():
		return "", fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	newID := uuid.NewString()
	query := `INSERT INTO product_reviews (id, product_id, user_id, rating, title, comment, verified)
			  VALUES ($1, $2, $3, $4, $5, $6, $7)`
	if _, err := s.DB.ExecContext(ctx, query, newID, review.ProductID, review.UserID,
		review.Rating, review.Title, review.Comment, review.Verified); err != nil {
		if isUniqueViolation(err) {
			return "", fmt.Errorf("%s: %w", op, ErrDuplicate)
		}
		return "", fmt.Errorf("%s: %w", op, err)
	}
	return newID, nil
}

func scanReview(row rowScanner) (*models.Review, error) {
	r := &models.Review{}
	if err := row.Scan(&r.ID, &r.ProductID, &r.UserID, &r.UserName, &r.Rating,
		&r.Title, &r.Comment, &r.Verified, &r.CreatedAt, &r.UpdatedAt); err != nil {
		return nil, err
	}
	return r, nil
}

const reviewColumns = `r.id, r.product_id, r.user_id, u.first_name || ' ' || u.last_name,
			      r.rating, COALESCE(r.title, ''), COALESCE(r.comment, ''), r.verified,
			      r.created_at, r.updated_at`

// ListReviewsByProduct returns a product's reviews, newest first.
func (s *Storage) ListReviewsByProduct(ctx context.Context, productID string) ([]models.Review, error) {
	const op = "storage.ListReviewsByProduct"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT ` + reviewColumns + `
			  FROM product_reviews r JOIN users u ON u.id = r.user_id
			  WHERE r.product_id = $1 ORDER BY r.created_at DESC`
	rows, err := s.DB.QueryContext(ctx, query, productID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer func() { _ = rows.Close() }()

	var reviews []models.Review
	for rows.Next() {
		r, err := scanReview(rows)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		reviews = append(reviews, *r)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return reviews, nil
}

// ListReviewsByUser returns every review the user wrote.
func (s *Storage) ListReviewsByUser(ctx context.Context, userID string) ([]models.Review, error) {
	const op = "storage.ListReviewsByUser"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT ` + reviewColumns + `
			  FROM product_reviews r JOIN users u ON u.id = r.user_id
			  WHERE r.user_id = $1 ORDER BY r.created_at DESC`
	rows, err := s.DB.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer func() { _ = rows.Close() }()

	var reviews []models.Review
	for rows.Next() {
		r, err := scanReview(rows)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		reviews = append(reviews, *r)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return reviews, nil
}

// GetReview returns one review.
func (s *Storage) GetReview(ctx context.Context, id string) (*models.Review, error) {
	const op = "storage.GetReview"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT ` + reviewColumns + `
			  FROM product_reviews r JOIN users u ON u.id = r.user_id
			  WHERE r.id = $1`
	r, err := scanReview(s.DB.QueryRowContext(ctx, query, id))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return r, nil
}

// ReviewStatsByProduct aggregates the rating average and distribution.
func (s *Storage) ReviewStatsByProduct(ctx context.Context, productID string) (*models.ReviewStats, error) {
	const op = "storage.ReviewStatsByProduct"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	stats := &models.ReviewStats{Distribution: make(map[int]int)}
	query := `SELECT rating, COUNT(*) FROM product_reviews WHERE product_id = $1 GROUP BY rating`
	rows, err := s.DB.QueryContext(ctx, query, productID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer func() { _ = rows.Close() }()

	var sum, count int
	for rows.Next() {
		var rating, n int
		if err := rows.Scan(&rating, &n); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		stats.Distribution[rating] = n
		sum += rating * n
		count += n
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	stats.Count = count
	if count > 0 {
		stats.Average = float64(sum) / float64(count)
	}
	return stats, nil
}

// UpdateReview applies non-nil fields.
func (s *Storage) UpdateReview(ctx context.Context, id string, req models.UpdateReviewRequest) error {
	const op = "storage.UpdateReview"
	select {
	case <-ctx.Done():
		return fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `UPDATE product_reviews SET
			      rating = COALESCE($1, rating),
			      title = COALESCE($2, title),
			      comment = COALESCE($3, comment),
			      updated_at = now()
			  WHERE id = $4`
	result, err := s.DB.ExecContext(ctx, query, req.Rating, req.Title, req.Comment, id)
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

// DeleteReview removes a review.
func (s *Storage) DeleteReview(ctx context.Context, id string) error {
	const op = "storage.DeleteReview"
	select {
	case <-ctx.Done():
		return fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	result, err := s.DB.ExecContext(ctx, `DELETE FROM product_reviews WHERE id = $1`, id)
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

// HasPaidOrderWithProduct reports whether the user bought the product
// in a paid order. Drives the verified badge.
func (s *Storage) HasPaidOrderWithProduct(ctx context.Context, userID, productID string) (bool, error) {
	const op = "storage.HasPaidOrderWithProduct"
	select {
	case <-ctx.Done():
		return false, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	var exists bool
	query := `SELECT EXISTS (
			  SELECT 1 FROM order_items oi
			  JOIN orders o ON o.id = oi.order_id
			  WHERE o.user_id = $1 AND oi.product_id = $2 AND o.payment_status = 'PAID')`
	if err := s.DB.QueryRowContext(ctx, query, userID, productID).Scan(&exists); err != nil {
		return false, fmt.Errorf("%s: %w", op, err)
	}
	return exists, nil
}
