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

// CreateOrder inserts the order with its items and clears the source
// cart in a single transaction. The sequential order id is assigned
// inside the transaction.
func (s *Storage) CreateOrder(ctx context.Context, order models.Order, cartID string) (string, error) {
	const op = "storage.CreateOrder"
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

	var count int64
	if err := tx.QueryRowContext(ctx, `SELECT COUNT(*) FROM orders`).Scan(&count); err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	orderID := fmt.Sprintf("ORD-%03d", count+1)

	query := `INSERT INTO orders (id, user_id, status, payment_status, subtotal, shipping, total,
			      customer_name, customer_email, customer_phone, shipping_address, billing_address, admin_notes)
			  VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`
	if _, err := tx.ExecContext(ctx, query, orderID, order.UserID, order.Status,
		order.PaymentStatus, order.Subtotal, order.Shipping, order.Total,
		order.CustomerName, order.CustomerEmail, order.CustomerPhone,
		order.ShippingAddress, order.BillingAddress, order.AdminNotes); err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}

	for _, it := range order.Items {
		itemQuery := `INSERT INTO order_items (id, order_id, product_id, name, price, image, quantity)
				  VALUES ($1, $2, $3, $4, $5, $6, $7)`
		if _, err := tx.ExecContext(ctx, itemQuery, uuid.NewString(), orderID,
			it.ProductID, it.Name, it.Price, it.Image, it.Quantity); err != nil {
			return "", fmt.Errorf("%s: %w", op, err)
		}
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM cart_items WHERE cart_id = $1`, cartID); err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}

	if err := tx.Commit(); err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	return orderID, nil
}

func scanOrder(row rowScanner) (*models.Order, error) {
	o := &models.Order{}
	var paymentDate, shippedAt sql.NullTime
	if err := row.Scan(&o.ID, &o.UserID, &o.Status, &o.PaymentStatus, &o.PaymentMethod,
		&paymentDate, &o.WebpayToken, &o.Subtotal, &o.Shipping, &o.Total,
		&o.CustomerName, &o.CustomerEmail, &o.CustomerPhone, &o.ShippingAddress,
		&o.BillingAddress, &o.TrackingNumber, &o.Carrier, &o.AdminNotes, &shippedAt,
		&o.CreatedAt, &o.UpdatedAt); err != nil {
		return nil, err
	}
	if paymentDate.Valid {
		o.PaymentDate = &paymentDate.Time
	}
	if shippedAt.Valid {
		o.ShippedAt = &shippedAt.Time
	}
	return o, nil
}

const orderColumns = `id, user_id, status, payment_status, COALESCE(payment_method, ''),
			      payment_date, COALESCE(webpay_token, ''), subtotal, shipping, total,
			      customer_name, customer_email, COALESCE(customer_phone, ''), shipping_address,
			      COALESCE(billing_address, ''), COALESCE(tracking_number, ''), COALESCE(carrier, ''),
			      COALESCE(admin_notes, ''), shipped_at, created_at, updated_at`

// GetOrder returns one order with items.
func (s *Storage) GetOrder(ctx context.Context, id string) (*models.Order, error) {
	const op = "storage.GetOrder"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	o, err := scanOrder(s.DB.QueryRowContext(ctx,
		`SELECT `+orderColumns+` FROM orders WHERE id = $1`, id))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	items, err := s.listOrderItems(ctx, o.ID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	o.Items = items
	return o, nil
}

// GetOrderByToken resolves an order from its gateway token.
func (s *Storage) GetOrderByToken(ctx context.Context, token string) (*models.Order, error) {
	const op = "storage.GetOrderByToken"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	o, err := scanOrder(s.DB.QueryRowContext(ctx,
		`SELECT `+orderColumns+` FROM orders WHERE webpay_token = $1`, token))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return o, nil
}

func (s *Storage) listOrderItems(ctx context.Context, orderID string) ([]models.OrderItem, error) {
	query := `SELECT id, order_id, product_id, name, price, COALESCE(image, ''), quantity
			  FROM order_items WHERE order_id = $1`
	rows, err := s.DB.QueryContext(ctx, query, orderID)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var items []models.OrderItem
	for rows.Next() {
		var it models.OrderItem
		if err := rows.Scan(&it.ID, &it.OrderID, &it.ProductID, &it.Name, &it.Price,
			&it.Image, &it.Quantity); err != nil {
			return nil, err
		}
		items = append(items, it)
	}
	return items, rows.Err()
}

// ListOrders returns orders matching the filter, newest first, with
// items attached and the total row count.
func (s *Storage) ListOrders(ctx context.Context, filter models.OrderFilter) ([]models.Order, int64, error) {
	const op = "storage.ListOrders"
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
	if filter.UserID != "" {
		where = append(where, "user_id = "+arg(filter.UserID))
	}
	if filter.Status != "" {
		where = append(where, "status = "+arg(strings.ToUpper(filter.Status)))
	}

	var total int64
	countQuery := `SELECT COUNT(*) FROM orders WHERE ` + strings.Join(where, " AND ")
	if err := s.DB.QueryRowContext(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("%s: %w", op, err)
	}

	query := `SELECT ` + orderColumns + ` FROM orders
			  WHERE ` + strings.Join(where, " AND ") + `
			  ORDER BY created_at DESC
			  LIMIT ` + arg(filter.Limit) + ` OFFSET ` + arg((filter.Page-1)*filter.Limit)
	rows, err := s.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("%s: %w", op, err)
	}
	defer func() { _ = rows.Close() }()

	var orders []models.Order
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("%s: %w", op, err)
		}
		orders = append(orders, *o)
	}
	if err = rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("%s: %w", op, err)
	}

	for i := range orders {
		items, err := s.listOrderItems(ctx, orders[i].ID)
		if err != nil {
			return nil, 0, fmt.Errorf("%s: %w", op, err)
		}
		orders[i].Items = items
	}
	return orders, total, nil
}

// UpdateOrderStatus sets the fulfillment status.
func (s *Storage) UpdateOrderStatus(ctx context.Context, id, status string) error {
	const op = "storage.UpdateOrderStatus"
	select {
	case <-ctx.Done():
		return fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	result, err := s.DB.ExecContext(ctx,
		`UPDATE orders SET status = $1, updated_at = now() WHERE id = $2`, status, id)
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

// SetOrderToken records the gateway token created for the order.
func (s *Storage) SetOrderToken(ctx context.Context, id, token string) error {
	const op = "storage.SetOrderToken"
	select {
	case <-ctx.Done():
		return fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	if _, err := s.DB.ExecContext(ctx,
		`UPDATE orders SET webpay_token = $1, payment_method = 'WEBPAY', updated_at = now() WHERE id = $2`,
		token, id); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// SettleOrderPayment applies the gateway outcome. Approved payments
// move the order to PROCESSING; declined ones only flip the payment
// status.
func (s *Storage) SettleOrderPayment(ctx context.Context, id string, approved bool, paidAt time.Time) error {
	const op = "storage.SettleOrderPayment"
	select {
	case <-ctx.Done():
		return fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	var err error
	if approved {
		query := `UPDATE orders SET payment_status = 'PAID', status = 'PROCESSING',
				  payment_date = $1, updated_at = now() WHERE id = $2`
		_, err = s.DB.ExecContext(ctx, query, paidAt, id)
	} else {
		query := `UPDATE orders SET payment_status = 'FAILED', updated_at = now() WHERE id = $1`
		_, err = s.DB.ExecContext(ctx, query, id)
	}
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// UpdateOrderTracking applies non-nil fulfillment fields. Setting a
// tracking number on an unshipped order also marks it SHIPPED.
func (s *Storage) UpdateOrderTracking(ctx context.Context, id string, req models.UpdateTrackingRequest, markShipped bool) error {
	const op = "storage.UpdateOrderTracking"
	select {
	case <-ctx.Done():
		return fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `UPDATE orders SET
			      tracking_number = COALESCE($1, tracking_number),
			      carrier = COALESCE($2, carrier),
			      admin_notes = COALESCE($3, admin_notes),
			      updated_at = now()
			  WHERE id = $4`
	result, err := s.DB.ExecContext(ctx, query, req.TrackingNumber, req.Carrier, req.AdminNotes, id)
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

	if markShipped {
		ship := `UPDATE orders SET status = 'SHIPPED', shipped_at = now() WHERE id = $1 AND shipped_at IS NULL`
		if _, err := s.DB.ExecContext(ctx, ship, id); err != nil {
			return fmt.Errorf("%s: %w", op, err)
		}
	}
	return nil
}
