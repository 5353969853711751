package services

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"

	"github.com/vmcandles/commerce-api/internal/models"
)

type CartRepository interface {
	GetOrCreateCart(ctx context.Context, userID string) (*models.Cart, error)
	GetCartByUserID(ctx context.Context, userID string) (*models.Cart, error)
	UpsertCartItem(ctx context.Context, cartID string, item models.CartItem) error
	GetCartItem(ctx context.Context, itemID, userID string) (*models.CartItem, error)
	UpdateCartItemQuantity(ctx context.Context, itemID string, quantity int) error
	DeleteCartItem(ctx context.Context, itemID string) error
	ClearCart(ctx context.Context, cartID string) error
}

type cartProductReader interface {
	GetProduct(ctx context.Context, id, language string) (*models.Product, error)
}

// CartService manages the per-user shopping cart. Product name, price
// and image are snapshotted into the line at add time.
type CartService struct {
	carts    CartRepository
	products cartProductReader
	log      *slog.Logger
}

func NewCartService(carts CartRepository, products cartProductReader, log *slog.Logger) *CartService {
	return &CartService{carts: carts, products: products, log: log}
}

func (s *CartService) Get(ctx context.Context, userID string) (*models.Cart, error) {
	return s.carts.GetOrCreateCart(ctx, userID)
}

func (s *CartService) AddItem(ctx context.Context, userID string, req models.AddCartItemRequest) (*models.Cart, error) {
	product, err := s.products.GetProduct(ctx, req.ProductID, "ES")
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if !product.InStock {
		return nil, ErrOutOfStock
	}

	cart, err := s.carts.GetOrCreateCart(ctx, userID)
	if err != nil {
		return nil, err
	}

	item := models.CartItem{
		ProductID: product.ID,
		Name:      product.Name,
		Price:     product.Price,
		Image:     product.Image,
		Quantity:  req.Quantity,
	}
	if err := s.carts.UpsertCartItem(ctx, cart.ID, item); err != nil {
		return nil, err
	}

	s.log.Info("added cart item",
		slog.String("product_id", product.ID), slog.Int("quantity", req.Quantity))
	return s.carts.GetCartByUserID(ctx, userID)
}

func (s *CartService) UpdateItem(ctx context.Context, userID, itemID string, req models.UpdateCartItemRequest) (*models.Cart, error) {
	if _, err := s.carts.GetCartItem(ctx, itemID, userID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if err := s.carts.UpdateCartItemQuantity(ctx, itemID, req.Quantity); err != nil {
		return nil, err
	}
	return s.carts.GetCartByUserID(ctx, userID)
}

func (s *CartService) RemoveItem(ctx context.Context, userID, itemID string) (*models.Cart, error) {
	if _, err := s.carts.GetCartItem(ctx, itemID, userID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if err := s.carts.DeleteCartItem(ctx, itemID); err != nil {
		return nil, err
	}
	return s.carts.GetCartByUserID(ctx, userID)
}

func (s *CartService) Clear(ctx context.Context, userID string) (*models.Cart, error) {
	cart, err := s.carts.GetOrCreateCart(ctx, userID)
	if err != nil {
		return nil, err
	}
	if err := s.carts.ClearCart(ctx, cart.ID); err != nil {
		return nil, err
	}
	return s.carts.GetCartByUserID(ctx, userID)
}
