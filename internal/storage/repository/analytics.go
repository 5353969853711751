package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/vmcandles/commerce-api/internal/models"
)

// RevenueSummary computes the money section of the admin dashboard.
// Only PAID orders count as revenue.
func (s *Storage) RevenueSummary(ctx context.Context, now time.Time) (*models.RevenueSummary, error) {
	const op = "storage.RevenueSummary"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	monthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
	lastMonthStart := monthStart.AddDate(0, -1, 0)
	weekStart := now.AddDate(0, 0, -7)

	summary := &models.RevenueSummary{}
	query := `SELECT
			      COALESCE(SUM(total), 0),
			      COALESCE(SUM(total) FILTER (WHERE created_at >= $1), 0),
			      COALESCE(SUM(total) FILTER (WHERE created_at >= $2 AND created_at < $1), 0),
			      COALESCE(SUM(total) FILTER (WHERE created_at >= $3), 0),
			      COALESCE(AVG(total), 0)
			  FROM orders WHERE payment_status = 'PAID'`
	if err := s.DB.QueryRowContext(ctx, query, monthStart, lastMonthStart, weekStart).Scan(
		&summary.Total, &summary.ThisMonth, &summary.LastMonth, &summary.ThisWeek,
		&summary.AvgOrderValue); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if summary.LastMonth > 0 {
		summary.Growth = (summary.ThisMonth - summary.LastMonth) / summary.LastMonth * 100
	}
	return summary, nil
}

// OrdersByStatus groups the order book by fulfillment status.
func (s *Storage) OrdersByStatus(ctx context.Context) (map[string]int64, error) {
	const op = "storage.OrdersByStatus"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	counts := make(map[string]int64)
	rows, err := s.DB.QueryContext(ctx, `SELECT status, COUNT(*) FROM orders GROUP BY status`)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer func() { _ = rows.Close() }()
	for rows.Next() {
		var status string
		var n int64
		if err := rows.Scan(&status, &n); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		counts[status] = n
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return counts, nil
}

// TopProducts returns the best sellers by unit quantity across paid
// orders.
func (s *Storage) TopProducts(ctx context.Context, limit int) ([]models.TopProduct, error) {
	const op = "storage.TopProducts"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT oi.product_id, oi.name, SUM(oi.quantity), SUM(oi.price * oi.quantity)
			  FROM order_items oi
			  JOIN orders o ON o.id = oi.order_id
			  WHERE o.payment_status = 'PAID'
			  GROUP BY oi.product_id, oi.name
			  ORDER BY SUM(oi.quantity) DESC
			  LIMIT $1`
	rows, err := s.DB.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer func() { _ = rows.Close() }()

	var top []models.TopProduct
	for rows.Next() {
		var p models.TopProduct
		if err := rows.Scan(&p.ProductID, &p.Name, &p.Quantity, &p.Revenue); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		top = append(top, p)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return top, nil
}

// RevenueByCategory groups paid revenue by product category.
func (s *Storage) RevenueByCategory(ctx context.Context) ([]models.CategoryRevenue, error) {
	const op = "storage.RevenueByCategory"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT p.category, SUM(oi.price * oi.quantity)
			  FROM order_items oi
			  JOIN orders o ON o.id = oi.order_id
			  JOIN products p ON p.id = oi.product_id
			  WHERE o.payment_status = 'PAID'
			  GROUP BY p.category
			  ORDER BY SUM(oi.price * oi.quantity) DESC`
	rows, err := s.DB.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer func() { _ = rows.Close() }()

	var revenues []models.CategoryRevenue
	for rows.Next() {
		var c models.CategoryRevenue
		if err := rows.Scan(&c.Category, &c.Revenue); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		revenues = append(revenues, c)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return revenues, nil
}

// SalesOverTime returns one bucket per day for the trailing window.
// Days without orders appear with zeros.
func (s *Storage) SalesOverTime(ctx context.Context, days int, now time.Time) ([]models.DailySales, error) {
	const op = "storage.SalesOverTime"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	start := now.AddDate(0, 0, -days+1).Truncate(24 * time.Hour)
	query := `SELECT date_trunc('day', created_at), COUNT(*), COALESCE(SUM(total), 0)
			  FROM orders
			  WHERE payment_status = 'PAID' AND created_at >= $1
			  GROUP BY 1 ORDER BY 1`
	rows, err := s.DB.QueryContext(ctx, query, start)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer func() { _ = rows.Close() }()

	byDay := make(map[string]models.DailySales)
	for rows.Next() {
		var d models.DailySales
		if err := rows.Scan(&d.Date, &d.Orders, &d.Revenue); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		byDay[d.Date.Format("2006-01-02")] = d
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	series := make([]models.DailySales, 0, days)
	for i := 0; i < days; i++ {
		day := start.AddDate(0, 0, i)
		if d, ok := byDay[day.Format("2006-01-02")]; ok {
			series = append(series, d)
		} else {
			series = append(series, models.DailySales{Date: day})
		}
	}
	return series, nil
}

// ListInventory returns every product with its derived stock status.
func (s *Storage) ListInventory(ctx context.Context) ([]models.InventoryItem, error) {
	const op = "storage.ListInventory"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT p.id, COALESCE(t.name, 'Untranslated'), p.category, p.price, p.stock,
			      p.low_stock_alert, p.in_stock
			  FROM products p
			  LEFT JOIN product_translations t ON t.product_id = p.id AND t.language = 'ES'
			  ORDER BY p.stock ASC, p.id`
	rows, err := s.DB.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer func() { _ = rows.Close() }()

	var items []models.InventoryItem
	for rows.Next() {
		var it models.InventoryItem
		if err := rows.Scan(&it.ProductID, &it.Name, &it.Category, &it.Price,
			&it.Stock, &it.LowStockAlert, &it.InStock); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		switch {
		case it.Stock == 0:
			it.StockStatus = models.StockStatusOut
		case it.Stock <= it.LowStockAlert:
			it.StockStatus = models.StockStatusLow
		default:
			it.StockStatus = models.StockStatusIn
		}
		items = append(items, it)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return items, nil
}

// ListLowStock returns tracked products at or under their alert
// threshold, lowest first.
func (s *Storage) ListLowStock(ctx context.Context) ([]models.InventoryItem, error) {
	const op = "storage.ListLowStock"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT p.id, COALESCE(t.name, 'Untranslated'), p.category, p.price, p.stock,
			      p.low_stock_alert, p.in_stock
			  FROM products p
			  LEFT JOIN product_translations t ON t.product_id = p.id AND t.language = 'ES'
			  WHERE p.track_inventory = true AND p.stock > 0 AND p.stock <= p.low_stock_alert
			  ORDER BY p.stock ASC`
	rows, err := s.DB.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer func() { _ = rows.Close() }()

	var items []models.InventoryItem
	for rows.Next() {
		var it models.InventoryItem
		if err := rows.Scan(&it.ProductID, &it.Name, &it.Category, &it.Price,
			&it.Stock, &it.LowStockAlert, &it.InStock); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		it.StockStatus = models.StockStatusLow
		items = append(items, it)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return items, nil
}

// UpdateInventory adjusts stock fields. in_stock follows the stock
// count whenever stock is set.
func (s *Storage) UpdateInventory(ctx context.Context, productID string, req models.UpdateInventoryRequest) error {
	const op = "storage.UpdateInventory"
	select {
	case <-ctx.Done():
		return fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	var inStock any
	if req.Stock != nil {
		inStock = *req.Stock > 0
	}
	query := `UPDATE products SET
			      stock = COALESCE($1, stock),
			      low_stock_alert = COALESCE($2, low_stock_alert),
			      track_inventory = COALESCE($3, track_inventory),
			      in_stock = COALESCE($4, in_stock),
			      updated_at = now()
			  WHERE id = $5`
	result, err := s.DB.ExecContext(ctx, query, req.Stock, req.LowStockAlert,
		req.TrackInventory, inStock, productID)
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

// InventoryStats summarizes stock counts and value.
func (s *Storage) InventoryStats(ctx context.Context) (*models.InventoryStats, error) {
	const op = "storage.InventoryStats"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	stats := &models.InventoryStats{ByCategory: make(map[string]int64)}
	query := `SELECT COUNT(*),
			      COUNT(*) FILTER (WHERE stock = 0),
			      COUNT(*) FILTER (WHERE track_inventory AND stock > 0 AND stock <= low_stock_alert),
			      COALESCE(SUM(price * stock), 0)
			  FROM products`
	if err := s.DB.QueryRowContext(ctx, query).Scan(&stats.TotalProducts,
		&stats.OutOfStock, &stats.LowStock, &stats.TotalStockValue); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	rows, err := s.DB.QueryContext(ctx, `SELECT category, COUNT(*) FROM products GROUP BY category`)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer func() { _ = rows.Close() }()
	for rows.Next() {
		var category string
		var n int64
		if err := rows.Scan(&category, &n); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		stats.ByCategory[category] = n
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return stats, nil
}

// ListCustomers returns users with their aggregate order history.
func (s *Storage) ListCustomers(ctx context.Context, page, limit int) ([]models.CustomerSummary, int64, error) {
	const op = "storage.ListCustomers"
	select {
	case <-ctx.Done():
		return nil, 0, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	var total int64
	if err := s.DB.QueryRowContext(ctx, `SELECT COUNT(*) FROM users WHERE role = 'USER'`).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("%s: %w", op, err)
	}

	query := `SELECT u.id, u.email, u.first_name, u.last_name, u.role, u.created_at, u.updated_at,
			      COUNT(o.id), COALESCE(SUM(o.total) FILTER (WHERE o.payment_status = 'PAID'), 0),
			      MAX(o.created_at)
			  FROM users u
			  LEFT JOIN orders o ON o.user_id = u.id
			  WHERE u.role = 'USER'
			  GROUP BY u.id
			  ORDER BY u.created_at DESC
			  LIMIT $1 OFFSET $2`
	rows, err := s.DB.QueryContext(ctx, query, limit, (page-1)*limit)
	if err != nil {
		return nil, 0, fmt.Errorf("%s: %w", op, err)
	}
	defer func() { _ = rows.Close() }()

	var customers []models.CustomerSummary
	for rows.Next() {
		var c models.CustomerSummary
		var lastOrder sql.NullTime
		if err := rows.Scan(&c.User.ID, &c.User.Email, &c.User.FirstName, &c.User.LastName,
			&c.User.Role, &c.User.CreatedAt, &c.User.UpdatedAt,
			&c.OrderCount, &c.TotalSpent, &lastOrder); err != nil {
			return nil, 0, fmt.Errorf("%s: %w", op, err)
		}
		if lastOrder.Valid {
			c.LastOrderAt = &lastOrder.Time
		}
		customers = append(customers, c)
	}
	if err = rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("%s: %w", op, err)
	}
	return customers, total, nil
}
