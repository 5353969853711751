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

func scanSubscription(row rowScanner) (*models.Subscription, error) {
	sub := &models.Subscription{}
	var startedAt, expiresAt, nextRenewal, lastPayment sql.NullTime
	if err := row.Scan(&sub.ID, &sub.UserID, &sub.PlanID, &sub.Status, &sub.PaymentStatus,
		&sub.PaymentMethod, &sub.Amount, &sub.AutoRenew, &sub.WebpayToken, &sub.TransactionID,
		&startedAt, &expiresAt, &nextRenewal, &lastPayment,
		&sub.CreatedAt, &sub.UpdatedAt); err != nil {
		return nil, err
	}
	if startedAt.Valid {
		sub.StartedAt = &startedAt.Time
	}
	if expiresAt.Valid {
		sub.ExpiresAt = &expiresAt.Time
	}
	if nextRenewal.Valid {
		sub.NextRenewal = &nextRenewal.Time
	}
	if lastPayment.Valid {
		sub.LastPaymentDate = &lastPayment.Time
	}
	return sub, nil
}

const subscriptionColumns = `id, user_id, plan_id, status, payment_status,
			      COALESCE(payment_method, ''), amount, auto_renew, COALESCE(webpay_token, ''),
			      COALESCE(transaction_id, ''), started_at, expires_at, next_renewal,
			      last_payment_date, created_at, updated_at`

// CreateSubscription inserts a pending subscription shell and cancels
// any older pending shells of the same user.
func (s *Storage) CreateSubscription(ctx context.Context, sub models.Subscription) (string, error) {
	const op = "storage.CreateSubscription"
	select {
	case <-ctx.Done():
		return "", fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	tx, err := s.DB.BeginTx(ctx, nil)
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	defer func() { _ = tx.Rollback() }()

	stale := `UPDATE subscriptions SET payment_status = 'FAILED', updated_at = now()
			  WHERE user_id = $1 AND status = 'CANCELLED' AND payment_status = 'PENDING'`
	if _, err := tx.ExecContext(ctx, stale, sub.UserID); err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}

	newID := uuid.NewString()
	query := `INSERT INTO subscriptions (id, user_id, plan_id, status, payment_status, amount, auto_renew)
			  VALUES ($1, $2, $3, $4, $5, $6, $7)`
	if _, err := tx.ExecContext(ctx, query, newID, sub.UserID, sub.PlanID,
		sub.Status, sub.PaymentStatus, sub.Amount, sub.AutoRenew); err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}

	if err := tx.Commit(); err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	return newID, nil
}

// GetSubscription returns one subscription by id.
func (s *Storage) GetSubscription(ctx context.Context, id string) (*models.Subscription, error) {
	const op = "storage.GetSubscription"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	sub, err := scanSubscription(s.DB.QueryRowContext(ctx,
		`SELECT `+subscriptionColumns+` FROM subscriptions WHERE id = $1`, id))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return sub, nil
}

// GetActiveSubscription returns the user's current ACTIVE or PAUSED
// subscription, preferring the most recent.
func (s *Storage) GetActiveSubscription(ctx context.Context, userID string) (*models.Subscription, error) {
	const op = "storage.GetActiveSubscription"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT ` + subscriptionColumns + ` FROM subscriptions
			  WHERE user_id = $1 AND status IN ('ACTIVE', 'PAUSED')
			  ORDER BY created_at DESC LIMIT 1`
	sub, err := scanSubscription(s.DB.QueryRowContext(ctx, query, userID))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return sub, nil
}

// HasActiveSubscription reports whether the user holds an ACTIVE
// subscription right now.
func (s *Storage) HasActiveSubscription(ctx context.Context, userID string) (bool, error) {
	const op = "storage.HasActiveSubscription"
	select {
	case <-ctx.Done():
		return false, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	var exists bool
	query := `SELECT EXISTS (SELECT 1 FROM subscriptions WHERE user_id = $1 AND status = 'ACTIVE')`
	if err := s.DB.QueryRowContext(ctx, query, userID).Scan(&exists); err != nil {
		return false, fmt.Errorf("%s: %w", op, err)
	}
	return exists, nil
}

// GetUnexpiredSubscription returns the user's ACTIVE subscription that
// has not passed its expiry, if any.
func (s *Storage) GetUnexpiredSubscription(ctx context.Context, userID string, now time.Time) (*models.Subscription, error) {
	const op = "storage.GetUnexpiredSubscription"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT ` + subscriptionColumns + ` FROM subscriptions
			  WHERE user_id = $1 AND status = 'ACTIVE' AND expires_at > $2
			  ORDER BY created_at DESC LIMIT 1`
	sub, err := scanSubscription(s.DB.QueryRowContext(ctx, query, userID, now))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return sub, nil
}

// ListSubscriptions returns subscriptions for the admin view.
func (s *Storage) ListSubscriptions(ctx context.Context, status string, page, limit int) ([]models.Subscription, int64, error) {
	const op = "storage.ListSubscriptions"
	select {
	case <-ctx.Done():
		return nil, 0, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	where := []string{"1=1"}
	args := []any{}
	arg := func(v any) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}
	if status != "" {
		where = append(where, "status = "+arg(strings.ToUpper(status)))
	}

	var total int64
	countQuery := `SELECT COUNT(*) FROM subscriptions WHERE ` + strings.Join(where, " AND ")
	if err := s.DB.QueryRowContext(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("%s: %w", op, err)
	}

	query := `SELECT ` + subscriptionColumns + ` FROM subscriptions
			  WHERE ` + strings.Join(where, " AND ") + `
			  ORDER BY created_at DESC
			  LIMIT ` + arg(limit) + ` OFFSET ` + arg((page-1)*limit)
	rows, err := s.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("%s: %w", op, err)
	}
	defer func() { _ = rows.Close() }()

	var subs []models.Subscription
	for rows.Next() {
		sub, err := scanSubscription(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("%s: %w", op, err)
		}
		subs = append(subs, *sub)
	}
	if err = rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("%s: %w", op, err)
	}
	return subs, total, nil
}

// SetSubscriptionToken stores the gateway token for the next callback.
func (s *Storage) SetSubscriptionToken(ctx context.Context, id, token string) error {
	const op = "storage.SetSubscriptionToken"
	select {
	case <-ctx.Done():
		return fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	if _, err := s.DB.ExecContext(ctx,
		`UPDATE subscriptions SET webpay_token = $1, payment_method = 'WEBPAY', updated_at = now() WHERE id = $2`,
		token, id); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// ActivateSubscription applies a successful first payment.
func (s *Storage) ActivateSubscription(ctx context.Context, id string, startedAt, expiresAt time.Time, transactionID string) error {
	const op = "storage.ActivateSubscription"
	select {
	case <-ctx.Done():
		return fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `UPDATE subscriptions SET status = 'ACTIVE', payment_status = 'PAID',
			      started_at = $1, expires_at = $2, next_renewal = $2,
			      last_payment_date = $1, transaction_id = $3, webpay_token = NULL,
			      updated_at = now()
			  WHERE id = $4`
	if _, err := s.DB.ExecContext(ctx, query, startedAt, expiresAt, transactionID, id); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// MarkSubscriptionPaymentFailed records a declined charge.
func (s *Storage) MarkSubscriptionPaymentFailed(ctx context.Context, id string) error {
	const op = "storage.MarkSubscriptionPaymentFailed"
	select {
	case <-ctx.Done():
		return fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	if _, err := s.DB.ExecContext(ctx,
		`UPDATE subscriptions SET payment_status = 'FAILED', webpay_token = NULL, updated_at = now() WHERE id = $1`,
		id); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// UpdateSubscriptionStatus sets status and auto-renew together.
func (s *Storage) UpdateSubscriptionStatus(ctx context.Context, id, status string, autoRenew bool) error {
	const op = "storage.UpdateSubscriptionStatus"
	select {
	case <-ctx.Done():
		return fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	result, err := s.DB.ExecContext(ctx,
		`UPDATE subscriptions SET status = $1, auto_renew = $2, updated_at = now() WHERE id = $3`,
		status, autoRenew, id)
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

// SetAutoRenew toggles auto-renew only.
func (s *Storage) SetAutoRenew(ctx context.Context, id string, autoRenew bool) error {
	const op = "storage.SetAutoRenew"
	select {
	case <-ctx.Done():
		return fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	if _, err := s.DB.ExecContext(ctx,
		`UPDATE subscriptions SET auto_renew = $1, updated_at = now() WHERE id = $2`,
		autoRenew, id); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// SchedulePlanChange applies a downgrade: the plan id changes now but
// billing stays untouched until the next renewal.
func (s *Storage) SchedulePlanChange(ctx context.Context, id, newPlanID string) error {
	const op = "storage.SchedulePlanChange"
	select {
	case <-ctx.Done():
		return fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	if _, err := s.DB.ExecContext(ctx,
		`UPDATE subscriptions SET plan_id = $1, payment_status = 'PAID', updated_at = now() WHERE id = $2`,
		newPlanID, id); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// MarkUpgradePending flags the subscription while the prorated charge
// is in flight.
func (s *Storage) MarkUpgradePending(ctx context.Context, id string) error {
	const op = "storage.MarkUpgradePending"
	select {
	case <-ctx.Done():
		return fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	if _, err := s.DB.ExecContext(ctx,
		`UPDATE subscriptions SET payment_status = 'PENDING', updated_at = now() WHERE id = $1`,
		id); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// ApplyUpgrade switches the plan after an approved prorated payment
// and restarts the billing period in full.
func (s *Storage) ApplyUpgrade(ctx context.Context, id, newPlanID string, amount int, startedAt, expiresAt time.Time) error {
	const op = "storage.ApplyUpgrade"
	select {
	case <-ctx.Done():
		return fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `UPDATE subscriptions SET plan_id = $1, amount = $2, payment_status = 'PAID',
			      started_at = $3, expires_at = $4, next_renewal = $4,
			      last_payment_date = $3, webpay_token = NULL, updated_at = now()
			  WHERE id = $5`
	if _, err := s.DB.ExecContext(ctx, query, newPlanID, amount, startedAt, expiresAt, id); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// RevertUpgrade clears the in-flight charge after a decline, keeping
// the original plan paid.
func (s *Storage) RevertUpgrade(ctx context.Context, id string) error {
	const op = "storage.RevertUpgrade"
	select {
	case <-ctx.Done():
		return fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	if _, err := s.DB.ExecContext(ctx,
		`UPDATE subscriptions SET payment_status = 'PAID', webpay_token = NULL, updated_at = now() WHERE id = $1`,
		id); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// ListDueRenewals returns ACTIVE auto-renewing subscriptions whose
// next renewal is at or before now.
func (s *Storage) ListDueRenewals(ctx context.Context, now time.Time) ([]models.Subscription, error) {
	const op = "storage.ListDueRenewals"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT ` + subscriptionColumns + ` FROM subscriptions
			  WHERE status = 'ACTIVE' AND auto_renew = true AND next_renewal <= $1`
	rows, err := s.DB.QueryContext(ctx, query, now)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer func() { _ = rows.Close() }()

	var subs []models.Subscription
	for rows.Next() {
		sub, err := scanSubscription(rows)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		subs = append(subs, *sub)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return subs, nil
}

// RenewSubscription advances the billing period only if next_renewal
// still matches the value the sweep read. Returns false when another
// sweep got there first.
func (s *Storage) RenewSubscription(ctx context.Context, id string, expectedNextRenewal, newExpiry, paidAt time.Time) (bool, error) {
	const op = "storage.RenewSubscription"
	select {
	case <-ctx.Done():
		return false, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `UPDATE subscriptions SET expires_at = $1, next_renewal = $1,
			      last_payment_date = $2, updated_at = now()
			  WHERE id = $3 AND next_renewal = $4`
	result, err := s.DB.ExecContext(ctx, query, newExpiry, paidAt, id, expectedNextRenewal)
	if err != nil {
		return false, fmt.Errorf("%s: %w", op, err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("%s: %w", op, err)
	}
	return n > 0, nil
}

// ExpireSubscription marks a subscription EXPIRED and stops renewals.
func (s *Storage) ExpireSubscription(ctx context.Context, id string) error {
	const op = "storage.ExpireSubscription"
	select {
	case <-ctx.Done():
		return fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	if _, err := s.DB.ExecContext(ctx,
		`UPDATE subscriptions SET status = 'EXPIRED', auto_renew = false, updated_at = now() WHERE id = $1`,
		id); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// ExpireLapsedSubscriptions marks every ACTIVE subscription past its
// expiry as EXPIRED and returns them for notification.
func (s *Storage) ExpireLapsedSubscriptions(ctx context.Context, now time.Time) ([]models.Subscription, error) {
	const op = "storage.ExpireLapsedSubscriptions"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `UPDATE subscriptions SET status = 'EXPIRED', auto_renew = false, updated_at = now()
			  WHERE status = 'ACTIVE' AND expires_at < $1
			  RETURNING ` + subscriptionColumns
	rows, err := s.DB.QueryContext(ctx, query, now)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer func() { _ = rows.Close() }()

	var subs []models.Subscription
	for rows.Next() {
		sub, err := scanSubscription(rows)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		subs = append(subs, *sub)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return subs, nil
}

// SubscriptionStatusCounts groups subscriptions by status and by plan
// for the admin analytics.
func (s *Storage) SubscriptionStatusCounts(ctx context.Context) (map[string]int64, map[string]int64, error) {
	const op = "storage.SubscriptionStatusCounts"
	select {
	case <-ctx.Done():
		return nil, nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	byStatus := make(map[string]int64)
	rows, err := s.DB.QueryContext(ctx, `SELECT status, COUNT(*) FROM subscriptions GROUP BY status`)
	if err != nil {
		return nil, nil, fmt.Errorf("%s: %w", op, err)
	}
	defer func() { _ = rows.Close() }()
	for rows.Next() {
		var status string
		var n int64
		if err := rows.Scan(&status, &n); err != nil {
			return nil, nil, fmt.Errorf("%s: %w", op, err)
		}
		byStatus[status] = n
	}
	if err = rows.Err(); err != nil {
		return nil, nil, fmt.Errorf("%s: %w", op, err)
	}

	byPlan := make(map[string]int64)
	planRows, err := s.DB.QueryContext(ctx,
		`SELECT plan_id, COUNT(*) FROM subscriptions WHERE status = 'ACTIVE' GROUP BY plan_id`)
	if err != nil {
		return nil, nil, fmt.Errorf("%s: %w", op, err)
	}
	defer func() { _ = planRows.Close() }()
	for planRows.Next() {
		var plan string
		var n int64
		if err := planRows.Scan(&plan, &n); err != nil {
			return nil, nil, fmt.Errorf("%s: %w", op, err)
		}
		byPlan[plan] = n
	}
	if err = planRows.Err(); err != nil {
		return nil, nil, fmt.Errorf("%s: %w", op, err)
	}
	return byStatus, byPlan, nil
}
