package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/vmcandles/commerce-api/internal/models"
)

// CreatePaymentContext records what a gateway token is paying for. The
// return callback looks the context up by token alone.
func (s *Storage) CreatePaymentContext(ctx context.Context, pc models.PaymentContext) error {
	const op = "storage.CreatePaymentContext"
	select {
	case <-ctx.Done():
		return fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `INSERT INTO payment_contexts (token, kind, user_id, order_id, subscription_id, new_plan_id, amount)
			  VALUES ($1, $2, $3, NULLIF($4, ''), NULLIF($5, ''), NULLIF($6, ''), $7)`
	if _, err := s.DB.ExecContext(ctx, query, pc.Token, pc.Kind, pc.UserID,
		pc.OrderID, pc.SubscriptionID, pc.NewPlanID, pc.Amount); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// GetPaymentContext resolves a token back to its payment flow.
func (s *Storage) GetPaymentContext(ctx context.Context, token string) (*models.PaymentContext, error) {
	const op = "storage.GetPaymentContext"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT token, kind, user_id, COALESCE(order_id, ''), COALESCE(subscription_id, ''),
			      COALESCE(new_plan_id, ''), amount, created_at
			  FROM payment_contexts WHERE token = $1`
	pc := &models.PaymentContext{}
	row := s.DB.QueryRowContext(ctx, query, token)
	if err := row.Scan(&pc.Token, &pc.Kind, &pc.UserID, &pc.OrderID, &pc.SubscriptionID,
		&pc.NewPlanID, &pc.Amount, &pc.CreatedAt); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return pc, nil
}

// DeletePaymentContext removes a settled context.
func (s *Storage) DeletePaymentContext(ctx context.Context, token string) error {
	const op = "storage.DeletePaymentContext"
	select {
	case <-ctx.Done():
		return fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	result, err := s.DB.ExecContext(ctx, `DELETE FROM payment_contexts WHERE token = $1`, token)
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
