package services

import (
	"context"
	"database/sql"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/vmcandles/commerce-api/internal/models"
)

type InvoiceRepoMock struct{ mock.Mock }

func (m *InvoiceRepoMock) CreateInvoice(ctx context.Context, inv models.Invoice) (string, error) {
	args := m.Called(ctx, inv)
	return args.String(0), args.Error(1)
}

func (m *InvoiceRepoMock) GetInvoice(ctx context.Context, id string) (*models.Invoice, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Invoice), args.Error(1)
}

func (m *InvoiceRepoMock) GetInvoiceByOrder(ctx context.Context, orderID string) (*models.Invoice, error) {
	args := m.Called(ctx, orderID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Invoice), args.Error(1)
}

func (m *InvoiceRepoMock) ListInvoices(ctx context.Context, page, limit int) ([]models.Invoice, int64, error) {
	args := m.Called(ctx, page, limit)
	return args.Get(0).([]models.Invoice), args.Get(1).(int64), args.Error(2)
}

type InvoiceReaderMock struct{ mock.Mock }

func (m *InvoiceReaderMock) GetOrder(ctx context.Context, id string) (*models.Order, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Order), args.Error(1)
}

func (m *InvoiceReaderMock) GetProfileByUserID(ctx context.Context, userID string) (*models.Profile, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Profile), args.Error(1)
}

type RendererMock struct{ mock.Mock }

func (m *RendererMock) Render(inv *models.Invoice) (string, error) {
	args := m.Called(inv)
	return args.String(0), args.Error(1)
}

func (m *RendererMock) Path(invoiceID string) string {
	return m.Called(invoiceID).String(0)
}

func paidOrder() *models.Order {
	return &models.Order{
		ID:             "ORD-001",
		UserID:         "user-1",
		Status:         models.OrderProcessing,
		PaymentStatus:  models.PaymentPaid,
		Subtotal:       36,
		Shipping:       5,
		Total:          41,
		CustomerName:   "Ana Rojas",
		CustomerEmail:  "ana@example.com",
		BillingAddress: "Av. Providencia 123, Santiago, RM, Chile",
		Items: []models.OrderItem{
			{ProductID: "lavender", Name: "Vela Lavanda", Price: 18, Quantity: 2},
		},
	}
}

func TestInvoiceService_Generate(t *testing.T) {
	ctx := context.Background()

	t.Run("issues invoice for paid order", func(t *testing.T) {
		repo := new(InvoiceRepoMock)
		reader := new(InvoiceReaderMock)
		renderer := new(RendererMock)

		reader.On("GetOrder", ctx, "ORD-001").Return(paidOrder(), nil)
		reader.On("GetProfileByUserID", ctx, "user-1").Return(&models.Profile{
			ID: "profile-1", CustomerType: models.CustomerBusiness,
			CompanyName: "Aromas del Sur SpA", TaxID: "76.543.210-K",
		}, nil)
		repo.On("GetInvoiceByOrder", ctx, "ORD-001").Return(nil, sql.ErrNoRows)
		repo.On("CreateInvoice", ctx, mock.MatchedBy(func(inv models.Invoice) bool {
			return inv.OrderID == "ORD-001" &&
				inv.CustomerName == "Aromas del Sur SpA" &&
				inv.CustomerTaxID == "76.543.210-K" &&
				inv.Total == 41 &&
				len(inv.Items) == 1 &&
				inv.Items[0].Total == 36
		})).Return("inv-1", nil)
		repo.On("GetInvoice", ctx, "inv-1").Return(&models.Invoice{ID: "inv-1", OrderID: "ORD-001"}, nil)
		renderer.On("Render", mock.Anything).Return("/data/invoices/inv-1.pdf", nil)

		svc := NewInvoiceService(repo, reader, renderer, newTestLogger())
		inv, err := svc.Generate(ctx, "user-1", models.GenerateInvoiceRequest{OrderID: "ORD-001"})
		require.NoError(t, err)
		assert.Equal(t, "inv-1", inv.ID)
		repo.AssertExpectations(t)
	})

	t.Run("second call returns existing invoice", func(t *testing.T) {
		repo := new(InvoiceRepoMock)
		reader := new(InvoiceReaderMock)

		reader.On("GetOrder", ctx, "ORD-001").Return(paidOrder(), nil)
		repo.On("GetInvoiceByOrder", ctx, "ORD-001").Return(&models.Invoice{ID: "inv-1"}, nil)

		svc := NewInvoiceService(repo, reader, new(RendererMock), newTestLogger())
		inv, err := svc.Generate(ctx, "user-1", models.GenerateInvoiceRequest{OrderID: "ORD-001"})
		require.NoError(t, err)
		assert.Equal(t, "inv-1", inv.ID)
		repo.AssertNotCalled(t, "CreateInvoice", mock.Anything, mock.Anything)
	})

	t.Run("unpaid order is rejected", func(t *testing.T) {
		reader := new(InvoiceReaderMock)
		order := paidOrder()
		order.PaymentStatus = models.PaymentPending
		reader.On("GetOrder", ctx, "ORD-001").Return(order, nil)

		svc := NewInvoiceService(new(InvoiceRepoMock), reader, new(RendererMock), newTestLogger())
		_, err := svc.Generate(ctx, "user-1", models.GenerateInvoiceRequest{OrderID: "ORD-001"})
		assert.ErrorIs(t, err, ErrOrderNotPaid)
	})

	t.Run("foreign order is invisible", func(t *testing.T) {
		reader := new(InvoiceReaderMock)
		reader.On("GetOrder", ctx, "ORD-001").Return(paidOrder(), nil)

		svc := NewInvoiceService(new(InvoiceRepoMock), reader, new(RendererMock), newTestLogger())
		_, err := svc.Generate(ctx, "user-2", models.GenerateInvoiceRequest{OrderID: "ORD-001"})
		assert.ErrorIs(t, err, ErrNotFound)
	})
}

func TestInvoiceService_Get(t *testing.T) {
	ctx := context.Background()
	repo := new(InvoiceRepoMock)
	repo.On("GetInvoice", ctx, "inv-1").Return(&models.Invoice{ID: "inv-1", UserID: "user-1"}, nil)

	svc := NewInvoiceService(repo, new(InvoiceReaderMock), new(RendererMock), newTestLogger())

	inv, err := svc.Get(ctx, "inv-1", "user-1", false)
	require.NoError(t, err)
	assert.Equal(t, "inv-1", inv.ID)

	_, err = svc.Get(ctx, "inv-1", "user-2", false)
	assert.ErrorIs(t, err, ErrNotFound)

	inv, err = svc.Get(ctx, "inv-1", "user-2", true)
	require.NoError(t, err)
	assert.Equal(t, "inv-1", inv.ID)
}
