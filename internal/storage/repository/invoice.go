package repository

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/vmcandles/commerce-api/internal/models"
)

// CreateInvoice assigns the next sequential invoice number and inserts
// the document inside one transaction. Items are embedded as JSON.
func (s *Storage) CreateInvoice(ctx context.Context, inv models.Invoice) (string, error) {
	const op = "storage.CreateInvoice"
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
	if err := tx.QueryRowContext(ctx, `SELECT COUNT(*) FROM invoices`).Scan(&count); err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	invoiceID := fmt.Sprintf("INV-%06d", count+1)

	items, err := json.Marshal(inv.Items)
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}

	query := `INSERT INTO invoices (id, order_id, user_id, customer_type, customer_name,
			      customer_tax_id, customer_email, address, items, subtotal, shipping, total,
			      status, pdf_url)
			  VALUES ($1, $2, $3, $4, $5, NULLIF($6, ''), $7, $8, $9, $10, $11, $12, $13, $14)`
	pdfURL := fmt.Sprintf("/api/v1/invoices/%s/pdf", invoiceID)
	if _, err := tx.ExecContext(ctx, query, invoiceID, inv.OrderID, inv.UserID,
		inv.CustomerType, inv.CustomerName, inv.CustomerTaxID, inv.CustomerEmail,
		inv.Address, items, inv.Subtotal, inv.Shipping, inv.Total, "ISSUED", pdfURL); err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}

	if err := tx.Commit(); err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	return invoiceID, nil
}

func scanInvoice(row rowScanner) (*models.Invoice, error) {
	inv := &models.Invoice{}
	var items []byte
	if err := row.Scan(&inv.ID, &inv.OrderID, &inv.UserID, &inv.CustomerType,
		&inv.CustomerName, &inv.CustomerTaxID, &inv.CustomerEmail, &inv.Address,
		&items, &inv.Subtotal, &inv.Shipping, &inv.Total, &inv.Status, &inv.PDFUrl,
		&inv.IssuedAt); err != nil {
		return nil, err
	}
	if err := json.Unmarshal(items, &inv.Items); err != nil {
		return nil, err
	}
	return inv, nil
}

const invoiceColumns = `id, order_id, user_id, customer_type, customer_name,
			      COALESCE(customer_tax_id, ''), customer_email, COALESCE(address, ''),
			      items, subtotal, shipping, total, status, pdf_url, issued_at`

// GetInvoice returns one invoice by its number.
func (s *Storage) GetInvoice(ctx context.Context, id string) (*models.Invoice, error) {
	const op = "storage.GetInvoice"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	inv, err := scanInvoice(s.DB.QueryRowContext(ctx,
		`SELECT `+invoiceColumns+` FROM invoices WHERE id = $1`, id))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return inv, nil
}

// GetInvoiceByOrder returns the invoice already issued for an order,
// if any. Invoice generation is idempotent through this lookup.
func (s *Storage) GetInvoiceByOrder(ctx context.Context, orderID string) (*models.Invoice, error) {
	const op = "storage.GetInvoiceByOrder"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	inv, err := scanInvoice(s.DB.QueryRowContext(ctx,
		`SELECT `+invoiceColumns+` FROM invoices WHERE order_id = $1`, orderID))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return inv, nil
}

// ListInvoices returns every invoice, newest first, for the admin
// view.
func (s *Storage) ListInvoices(ctx context.Context, page, limit int) ([]models.Invoice, int64, error) {
	const op = "storage.ListInvoices"
	select {
	case <-ctx.Done():
		return nil, 0, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	var total int64
	if err := s.DB.QueryRowContext(ctx, `SELECT COUNT(*) FROM invoices`).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("%s: %w", op, err)
	}

	query := `SELECT ` + invoiceColumns + ` FROM invoices
			  ORDER BY issued_at DESC LIMIT $1 OFFSET $2`
	rows, err := s.DB.QueryContext(ctx, query, limit, (page-1)*limit)
	if err != nil {
		return nil, 0, fmt.Errorf("%s: %w", op, err)
	}
	defer func() { _ = rows.Close() }()

	var invoices []models.Invoice
	for rows.Next() {
		inv, err := scanInvoice(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("%s: %w", op, err)
		}
		invoices = append(invoices, *inv)
	}
	if err = rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("%s: %w", op, err)
	}
	return invoices, total, nil
}
