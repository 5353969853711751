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

type CartRepoMock struct {
	mock.Mock
}

func (m *CartRepoMock) GetOrCreateCart(ctx context.Context, userID string) (*models.Cart, error) {
	args := m.Called(ctx, userID)
	var cart *models.Cart
	if args.Get(0) != nil {
		cart = args.Get(0).(*models.Cart)
	}
	return cart, args.Error(1)
}

func (m *CartRepoMock) GetCartByUserID(ctx context.Context, userID string) (*models.Cart, error) {
	args := m.Called(ctx, userID)
	var cart *models.Cart
	if args.Get(0) != nil {
		cart = args.Get(0).(*models.Cart)
	}
	return cart, args.Error(1)
}

func (m *CartRepoMock) UpsertCartItem(ctx context.Context, cartID string, item models.CartItem) error {
	args := m.Called(ctx, cartID, item)
	return args.Error(0)
}

func (m *CartRepoMock) GetCartItem(ctx context.Context, itemID, userID string) (*models.CartItem, error) {
	args := m.Called(ctx, itemID, userID)
	var item *models.CartItem
	if args.Get(0) != nil {
		item = args.Get(0).(*models.CartItem)
	}
	return item, args.Error(1)
}

func (m *CartRepoMock) UpdateCartItemQuantity(ctx context.Context, itemID string, quantity int) error {
	args := m.Called(ctx, itemID, quantity)
	return args.Error(0)
}

func (m *CartRepoMock) DeleteCartItem(ctx context.Context, itemID string) error {
	args := m.Called(ctx, itemID)
	return args.Error(0)
}

func (m *CartRepoMock) ClearCart(ctx context.Context, cartID string) error {
	args := m.Called(ctx, cartID)
	return args.Error(0)
}

type CartProductReaderMock struct {
	mock.Mock
}

func (m *CartProductReaderMock) GetProduct(ctx context.Context, id, language string) (*models.Product, error) {
	args := m.Called(ctx, id, language)
	var p *models.Product
	if args.Get(0) != nil {
		p = args.Get(0).(*models.Product)
	}
	return p, args.Error(1)
}

func TestCartService_AddItem(t *testing.T) {
	ctx := context.Background()

	lavender := &models.Product{
		ID:      "lavender",
		Name:    "Vela Lavanda",
		Price:   18,
		Image:   "/img/lavender.jpg",
		InStock: true,
	}

	t.Run("snapshots product data into the line", func(t *testing.T) {
		repo := new(CartRepoMock)
		products := new(CartProductReaderMock)
		svc := NewCartService(repo, products, newTestLogger())

		products.On("GetProduct", ctx, "lavender", "ES").Return(lavender, nil)
		repo.On("GetOrCreateCart", ctx, "user-1").Return(&models.Cart{ID: "cart-1", UserID: "user-1"}, nil)
		repo.On("UpsertCartItem", ctx, "cart-1", mock.MatchedBy(func(item models.CartItem) bool {
			return item.ProductID == "lavender" &&
				item.Name == "Vela Lavanda" &&
				item.Price == 18 &&
				item.Quantity == 2
		})).Return(nil)
		repo.On("GetCartByUserID", ctx, "user-1").Return(&models.Cart{ID: "cart-1"}, nil)

		cart, err := svc.AddItem(ctx, "user-1", models.AddCartItemRequest{ProductID: "lavender", Quantity: 2})
		require.NoError(t, err)
		assert.Equal(t, "cart-1", cart.ID)
		repo.AssertExpectations(t)
	})

	t.Run("out of stock product is rejected", func(t *testing.T) {
		repo := new(CartRepoMock)
		products := new(CartProductReaderMock)
		svc := NewCartService(repo, products, newTestLogger())

		soldOut := *lavender
		soldOut.InStock = false
		products.On("GetProduct", ctx, "lavender", "ES").Return(&soldOut, nil)

		_, err := svc.AddItem(ctx, "user-1", models.AddCartItemRequest{ProductID: "lavender", Quantity: 1})
		assert.ErrorIs(t, err, ErrOutOfStock)
		repo.AssertNotCalled(t, "UpsertCartItem", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("unknown product", func(t *testing.T) {
		repo := new(CartRepoMock)
		products := new(CartProductReaderMock)
		svc := NewCartService(repo, products, newTestLogger())

		products.On("GetProduct", ctx, "missing", "ES").Return(nil, sql.ErrNoRows)

		_, err := svc.AddItem(ctx, "user-1", models.AddCartItemRequest{ProductID: "missing", Quantity: 1})
		assert.ErrorIs(t, err, ErrNotFound)
	})
}

func TestCartService_UpdateItem(t *testing.T) {
	ctx := context.Background()

	t.Run("foreign item looks like missing", func(t *testing.T) {
		repo := new(CartRepoMock)
		svc := NewCartService(repo, new(CartProductReaderMock), newTestLogger())

		repo.On("GetCartItem", ctx, "item-1", "intruder").Return(nil, sql.ErrNoRows)

		_, err := svc.UpdateItem(ctx, "intruder", "item-1", models.UpdateCartItemRequest{Quantity: 3})
		assert.ErrorIs(t, err, ErrNotFound)
		repo.AssertNotCalled(t, "UpdateCartItemQuantity", mock.Anything, mock.Anything, mock.Anything)
	})
}
