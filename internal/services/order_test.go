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

type OrderRepoMock struct{ mock.Mock }

func (m *OrderRepoMock) CreateOrder(ctx context.Context, order models.Order, cartID string) (string, error) {
	args := m.Called(ctx, order, cartID)
	return args.String(0), args.Error(1)
}

func (m *OrderRepoMock) GetOrder(ctx context.Context, id string) (*models.Order, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Order), args.Error(1)
}

func (m *OrderRepoMock) ListOrders(ctx context.Context, filter models.OrderFilter) ([]models.Order, int64, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).([]models.Order), args.Get(1).(int64), args.Error(2)
}

func (m *OrderRepoMock) UpdateOrderStatus(ctx context.Context, id, status string) error {
	return m.Called(ctx, id, status).Error(0)
}

func (m *OrderRepoMock) UpdateOrderTracking(ctx context.Context, id string, req models.UpdateTrackingRequest, markShipped bool) error {
	return m.Called(ctx, id, req, markShipped).Error(0)
}

type CheckoutReaderMock struct{ mock.Mock }

func (m *CheckoutReaderMock) GetCartByUserID(ctx context.Context, userID string) (*models.Cart, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Cart), args.Error(1)
}

func (m *CheckoutReaderMock) GetUserByID(ctx context.Context, id string) (*models.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *CheckoutReaderMock) GetProfileByUserID(ctx context.Context, userID string) (*models.Profile, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Profile), args.Error(1)
}

func (m *CheckoutReaderMock) GetAddress(ctx context.Context, id, profileID string) (*models.Address, error) {
	args := m.Called(ctx, id, profileID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Address), args.Error(1)
}

func (m *CheckoutReaderMock) GetProduct(ctx context.Context, id, language string) (*models.Product, error) {
	args := m.Called(ctx, id, language)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Product), args.Error(1)
}

func checkoutFixtures(reader *CheckoutReaderMock, items []models.CartItem) {
	ctx := mock.Anything
	reader.On("GetCartByUserID", ctx, "user-1").Return(&models.Cart{
		ID: "cart-1", UserID: "user-1", Items: items,
	}, nil)
	reader.On("GetUserByID", ctx, "user-1").Return(&models.User{
		ID: "user-1", Email: "ana@example.com", FirstName: "Ana", LastName: "Rojas",
	}, nil)
	reader.On("GetProfileByUserID", ctx, "user-1").Return(&models.Profile{
		ID: "profile-1", UserID: "user-1", Phone: "+56911111111",
	}, nil)
	reader.On("GetAddress", ctx, "addr-1", "profile-1").Return(&models.Address{
		ID: "addr-1", Street: "Av. Providencia 123", City: "Santiago",
		Region: "RM", PostalCode: "7500000", Country: "Chile",
	}, nil)
}

func TestOrderService_Checkout(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name         string
		items        []models.CartItem
		wantShipping float64
		wantTotal    float64
	}{
		{
			name: "flat shipping below threshold",
			items: []models.CartItem{
				{ProductID: "lavender", Name: "Vela Lavanda", Price: 12.5, Quantity: 2},
			},
			wantShipping: 5,
			wantTotal:    30,
		},
		{
			name: "free shipping at threshold",
			items: []models.CartItem{
				{ProductID: "lavender", Name: "Vela Lavanda", Price: 12.5, Quantity: 4},
			},
			wantShipping: 0,
			wantTotal:    50,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			orders := new(OrderRepoMock)
			reader := new(CheckoutReaderMock)
			checkoutFixtures(reader, tt.items)
			for _, ci := range tt.items {
				reader.On("GetProduct", ctx, ci.ProductID, "ES").Return(&models.Product{
					ID: ci.ProductID, Name: ci.Name, Price: ci.Price, Image: ci.Image, InStock: true,
				}, nil)
			}

			orders.On("CreateOrder", ctx, mock.MatchedBy(func(o models.Order) bool {
				return o.Shipping == tt.wantShipping &&
					o.Total == tt.wantTotal &&
					o.Status == models.OrderPending &&
					o.PaymentStatus == models.PaymentPending &&
					o.CustomerName == "Ana Rojas" &&
					o.ShippingAddress == o.BillingAddress &&
					len(o.Items) == len(tt.items)
			}), "cart-1").Return("ORD-001", nil)
			orders.On("GetOrder", ctx, "ORD-001").Return(&models.Order{ID: "ORD-001"}, nil)

			svc := NewOrderService(orders, reader, newTestLogger())
			order, err := svc.Checkout(ctx, "user-1", models.CheckoutRequest{ShippingAddressID: "addr-1"})
			require.NoError(t, err)
			assert.Equal(t, "ORD-001", order.ID)
			orders.AssertExpectations(t)
		})
	}

	t.Run("empty cart", func(t *testing.T) {
		orders := new(OrderRepoMock)
		reader := new(CheckoutReaderMock)
		reader.On("GetCartByUserID", mock.Anything, "user-1").Return(&models.Cart{ID: "cart-1"}, nil)

		svc := NewOrderService(orders, reader, newTestLogger())
		_, err := svc.Checkout(ctx, "user-1", models.CheckoutRequest{ShippingAddressID: "addr-1"})
		assert.ErrorIs(t, err, ErrEmptyCart)
		orders.AssertNotCalled(t, "CreateOrder", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("out of stock item is rejected", func(t *testing.T) {
		orders := new(OrderRepoMock)
		reader := new(CheckoutReaderMock)
		checkoutFixtures(reader, []models.CartItem{
			{ProductID: "lavender", Name: "Vela Lavanda", Price: 12.5, Quantity: 2},
		})
		reader.On("GetProduct", ctx, "lavender", "ES").Return(&models.Product{
			ID: "lavender", Name: "Vela Lavanda", Price: 12.5, InStock: false,
		}, nil)

		svc := NewOrderService(orders, reader, newTestLogger())
		_, err := svc.Checkout(ctx, "user-1", models.CheckoutRequest{ShippingAddressID: "addr-1"})
		assert.ErrorIs(t, err, ErrOutOfStock)
		orders.AssertNotCalled(t, "CreateOrder", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("order lines carry current product price", func(t *testing.T) {
		orders := new(OrderRepoMock)
		reader := new(CheckoutReaderMock)
		checkoutFixtures(reader, []models.CartItem{
			{ProductID: "lavender", Name: "Vela Lavanda", Price: 12.5, Quantity: 2},
		})
		reader.On("GetProduct", ctx, "lavender", "ES").Return(&models.Product{
			ID: "lavender", Name: "Vela Lavanda", Price: 15, InStock: true,
		}, nil)

		orders.On("CreateOrder", ctx, mock.MatchedBy(func(o models.Order) bool {
			return len(o.Items) == 1 &&
				o.Items[0].Price == 15 &&
				o.Subtotal == 30 &&
				o.Total == 35
		}), "cart-1").Return("ORD-001", nil)
		orders.On("GetOrder", ctx, "ORD-001").Return(&models.Order{ID: "ORD-001"}, nil)

		svc := NewOrderService(orders, reader, newTestLogger())
		_, err := svc.Checkout(ctx, "user-1", models.CheckoutRequest{ShippingAddressID: "addr-1"})
		require.NoError(t, err)
		orders.AssertExpectations(t)
	})

	t.Run("unknown shipping address", func(t *testing.T) {
		orders := new(OrderRepoMock)
		reader := new(CheckoutReaderMock)
		checkoutFixtures(reader, []models.CartItem{{ProductID: "p", Price: 10, Quantity: 1}})
		reader.On("GetAddress", mock.Anything, "addr-missing", "profile-1").Return(nil, sql.ErrNoRows)

		svc := NewOrderService(orders, reader, newTestLogger())
		_, err := svc.Checkout(ctx, "user-1", models.CheckoutRequest{ShippingAddressID: "addr-missing"})
		assert.ErrorIs(t, err, ErrAddressNotFound)
	})
}

func TestOrderService_Cancel(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name    string
		order   models.Order
		wantErr error
	}{
		{
			name:  "pending unpaid order cancels",
			order: models.Order{ID: "ORD-001", UserID: "user-1", Status: models.OrderPending, PaymentStatus: models.PaymentPending},
		},
		{
			name:    "paid order cannot be cancelled",
			order:   models.Order{ID: "ORD-001", UserID: "user-1", Status: models.OrderPending, PaymentStatus: models.PaymentPaid},
			wantErr: ErrInvalidStatus,
		},
		{
			name:    "shipped order cannot be cancelled",
			order:   models.Order{ID: "ORD-001", UserID: "user-1", Status: models.OrderShipped, PaymentStatus: models.PaymentPaid},
			wantErr: ErrInvalidStatus,
		},
		{
			name:    "foreign order is invisible",
			order:   models.Order{ID: "ORD-001", UserID: "someone-else", Status: models.OrderPending},
			wantErr: ErrNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			orders := new(OrderRepoMock)
			order := tt.order
			orders.On("GetOrder", ctx, "ORD-001").Return(&order, nil)
			if tt.wantErr == nil {
				orders.On("UpdateOrderStatus", ctx, "ORD-001", models.OrderCancelled).Return(nil)
			}

			svc := NewOrderService(orders, new(CheckoutReaderMock), newTestLogger())
			_, err := svc.Cancel(ctx, "ORD-001", "user-1")
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				orders.AssertNotCalled(t, "UpdateOrderStatus", mock.Anything, mock.Anything, mock.Anything)
				return
			}
			require.NoError(t, err)
			orders.AssertExpectations(t)
		})
	}
}

func TestOrderService_UpdateTracking(t *testing.T) {
	ctx := context.Background()
	tracking := "CHX-12345"

	t.Run("first tracking number marks shipped", func(t *testing.T) {
		orders := new(OrderRepoMock)
		orders.On("GetOrder", ctx, "ORD-001").Return(&models.Order{
			ID: "ORD-001", Status: models.OrderProcessing,
		}, nil)
		req := models.UpdateTrackingRequest{TrackingNumber: &tracking}
		orders.On("UpdateOrderTracking", ctx, "ORD-001", req, true).Return(nil)

		svc := NewOrderService(orders, new(CheckoutReaderMock), newTestLogger())
		_, err := svc.UpdateTracking(ctx, "ORD-001", req)
		require.NoError(t, err)
		orders.AssertExpectations(t)
	})
}
