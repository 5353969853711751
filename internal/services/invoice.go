package services

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"

	"github.com/vmcandles/commerce-api/internal/models"
)

type InvoiceRepository interface {
	CreateInvoice(ctx context.Context, inv models.Invoice) (string, error)
	GetInvoice(ctx context.Context, id string) (*models.Invoice, error)
	GetInvoiceByOrder(ctx context.Context, orderID string) (*models.Invoice, error)
	ListInvoices(ctx context.Context, page, limit int) ([]models.Invoice, int64, error)
}

type invoiceOrderReader interface {
	GetOrder(ctx context.Context, id string) (*models.Order, error)
	GetProfileByUserID(ctx context.Context, userID string) (*models.Profile, error)
}

type InvoiceRenderer interface {
	Render(inv *models.Invoice) (string, error)
	Path(invoiceID string) string
}

// InvoiceService issues the fiscal document for paid orders and
// renders its PDF. Generation is idempotent per order.
type InvoiceService struct {
	invoices InvoiceRepository
	reader   invoiceOrderReader
	renderer InvoiceRenderer
	log      *slog.Logger
}

func NewInvoiceService(invoices InvoiceRepository, reader invoiceOrderReader, renderer InvoiceRenderer, log *slog.Logger) *InvoiceService {
	return &InvoiceService{invoices: invoices, reader: reader, renderer: renderer, log: log}
}

// Generate issues an invoice for one of the caller's paid orders. A
// second call for the same order returns the existing invoice.
func (s *InvoiceService) Generate(ctx context.Context, userID string, req models.GenerateInvoiceRequest) (*models.Invoice, error) {
	order, err := s.reader.GetOrder(ctx, req.OrderID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if order.UserID != userID {
		return nil, ErrNotFound
	}
	if order.PaymentStatus != models.PaymentPaid {
		return nil, ErrOrderNotPaid
	}

	if existing, err := s.invoices.GetInvoiceByOrder(ctx, order.ID); err == nil {
		return existing, nil
	} else if !errors.Is(err, sql.ErrNoRows) {
		return nil, err
	}

	profile, err := s.reader.GetProfileByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}

	customerName := order.CustomerName
	if profile.CustomerType == models.CustomerBusiness && profile.CompanyName != "" {
		customerName = profile.CompanyName
	}

	items := make([]models.InvoiceItem, 0, len(order.Items))
	for _, it := range order.Items {
		items = append(items, models.InvoiceItem{
			ProductName: it.Name,
			Quantity:    it.Quantity,
			UnitPrice:   it.Price,
			Total:       it.Price * float64(it.Quantity),
		})
	}

	inv := models.Invoice{
		OrderID:       order.ID,
		UserID:        userID,
		CustomerType:  profile.CustomerType,
		CustomerName:  customerName,
		CustomerTaxID: profile.TaxID,
		CustomerEmail: order.CustomerEmail,
		Address:       order.BillingAddress,
		Items:         items,
		Subtotal:      order.Subtotal,
		Shipping:      order.Shipping,
		Total:         order.Total,
	}

	id, err := s.invoices.CreateInvoice(ctx, inv)
	if err != nil {
		return nil, err
	}

	created, err := s.invoices.GetInvoice(ctx, id)
	if err != nil {
		return nil, err
	}

	if _, err := s.renderer.Render(created); err != nil {
		s.log.Error("failed to render invoice pdf",
			slog.String("invoice_id", id), slog.Any("err", err))
	} else {
		s.log.Info("issued invoice", slog.String("invoice_id", id),
			slog.String("order_id", order.ID))
	}
	return created, nil
}

// Get returns an invoice. Non-admin callers only see their own.
func (s *InvoiceService) Get(ctx context.Context, id, userID string, isAdmin bool) (*models.Invoice, error) {
	inv, err := s.invoices.GetInvoice(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if !isAdmin && inv.UserID != userID {
		return nil, ErrNotFound
	}
	return inv, nil
}

// GetByOrder returns the invoice issued for an order, if any.
func (s *InvoiceService) GetByOrder(ctx context.Context, orderID, userID string, isAdmin bool) (*models.Invoice, error) {
	inv, err := s.invoices.GetInvoiceByOrder(ctx, orderID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if !isAdmin && inv.UserID != userID {
		return nil, ErrNotFound
	}
	return inv, nil
}

// PDFPath returns the rendered document path, regenerating the file if
// it went missing.
func (s *InvoiceService) PDFPath(ctx context.Context, id, userID string, isAdmin bool) (string, error) {
	inv, err := s.Get(ctx, id, userID, isAdmin)
	if err != nil {
		return "", err
	}
	return s.renderer.Render(inv)
}

// List is the admin invoice listing.
func (s *InvoiceService) List(ctx context.Context, page, limit int) ([]models.Invoice, int64, error) {
	return s.invoices.ListInvoices(ctx, page, limit)
}
