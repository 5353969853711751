package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/vmcandles/commerce-api/internal/models"
)

type OrderRepository interface {
	CreateOrder(ctx context.Context, order models.Order, cartID string) (string, error)
	GetOrder(ctx context.Context, id string) (*models.Order, error)
	ListOrders(ctx context.Context, filter models.OrderFilter) ([]models.Order, int64, error)
	UpdateOrderStatus(ctx context.Context, id, status string) error
	UpdateOrderTracking(ctx context.Context, id string, req models.UpdateTrackingRequest, markShipped bool) error
}

type checkoutReader interface {
	GetCartByUserID(ctx context.Context, userID string) (*models.Cart, error)
	GetUserByID(ctx context.Context, id string) (*models.User, error)
	GetProfileByUserID(ctx context.Context, userID string) (*models.Profile, error)
	GetAddress(ctx context.Context, id, profileID string) (*models.Address, error)
	GetProduct(ctx context.Context, id, language string) (*models.Product, error)
}

// Free shipping kicks in at this subtotal, below it a flat rate
// applies.
const (
	freeShippingThreshold = 50.0
	flatShippingRate      = 5.0
)

// OrderService turns carts into orders and manages the order
// lifecycle.
type OrderService struct {
	orders OrderRepository
	reader checkoutReader
	log    *slog.Logger
}

func NewOrderService(orders OrderRepository, reader checkoutReader, log *slog.Logger) *OrderService {
	return &OrderService{orders: orders, reader: reader, log: log}
}

func formatAddress(a *models.Address) string {
	parts := []string{a.Street, a.City, a.Region}
	if a.PostalCode != "" {
		parts = append(parts, a.PostalCode)
	}
	parts = append(parts, a.Country)
	return strings.Join(parts, ", ")
}

// Checkout places an order from the user's cart, snapshotting customer
// and address data. The cart is emptied in the same transaction that
// writes the order.
func (s *OrderService) Checkout(ctx context.Context, userID string, req models.CheckoutRequest) (*models.Order, error) {
	cart, err := s.reader.GetCartByUserID(ctx, userID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrEmptyCart
		}
		return nil, err
	}
	if len(cart.Items) == 0 {
		return nil, ErrEmptyCart
	}

	user, err := s.reader.GetUserByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	profile, err := s.reader.GetProfileByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}

	shippingAddr, err := s.reader.GetAddress(ctx, req.ShippingAddressID, profile.ID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrAddressNotFound
		}
		return nil, err
	}
	billingAddr := shippingAddr
	if req.BillingAddressID != "" && req.BillingAddressID != req.ShippingAddressID {
		billingAddr, err = s.reader.GetAddress(ctx, req.BillingAddressID, profile.ID)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return nil, ErrAddressNotFound
			}
			return nil, err
		}
	}

	// Cart lines carry add-time snapshots. Re-read every product so the
	// order captures current price and availability, not what the cart
	// remembered.
	var subtotal float64
	items := make([]models.OrderItem, 0, len(cart.Items))
	for _, ci := range cart.Items {
		product, err := s.reader.GetProduct(ctx, ci.ProductID, "ES")
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return nil, ErrNotFound
			}
			return nil, err
		}
		if !product.InStock {
			return nil, ErrOutOfStock
		}
		subtotal += product.Price * float64(ci.Quantity)
		items = append(items, models.OrderItem{
			ProductID: product.ID,
			Name:      product.Name,
			Price:     product.Price,
			Image:     product.Image,
			Quantity:  ci.Quantity,
		})
	}

	shipping := flatShippingRate
	if subtotal >= freeShippingThreshold {
		shipping = 0
	}

	order := models.Order{
		UserID:          userID,
		Status:          models.OrderPending,
		PaymentStatus:   models.PaymentPending,
		Subtotal:        subtotal,
		Shipping:        shipping,
		Total:           subtotal + shipping,
		CustomerName:    fmt.Sprintf("%s %s", user.FirstName, user.LastName),
		CustomerEmail:   user.Email,
		CustomerPhone:   profile.Phone,
		ShippingAddress: formatAddress(shippingAddr),
		BillingAddress:  formatAddress(billingAddr),
		AdminNotes:      req.Notes,
		Items:           items,
	}

	id, err := s.orders.CreateOrder(ctx, order, cart.ID)
	if err != nil {
		return nil, err
	}

	s.log.Info("placed order", slog.String("order_id", id),
		slog.Float64("total", order.Total), slog.Int("items", len(items)))
	return s.orders.GetOrder(ctx, id)
}

// Get returns an order. Non-admin callers only see their own orders.
func (s *OrderService) Get(ctx context.Context, id, userID string, isAdmin bool) (*models.Order, error) {
	order, err := s.orders.GetOrder(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if !isAdmin && order.UserID != userID {
		return nil, ErrNotFound
	}
	return order, nil
}

func (s *OrderService) ListMine(ctx context.Context, userID string, page, limit int) ([]models.Order, int64, error) {
	return s.orders.ListOrders(ctx, models.OrderFilter{UserID: userID, Page: page, Limit: limit})
}

func (s *OrderService) ListAll(ctx context.Context, filter models.OrderFilter) ([]models.Order, int64, error) {
	return s.orders.ListOrders(ctx, filter)
}

// Cancel lets a customer cancel an order that has not been paid or
// shipped yet.
func (s *OrderService) Cancel(ctx context.Context, id, userID string) (*models.Order, error) {
	order, err := s.Get(ctx, id, userID, false)
	if err != nil {
		return nil, err
	}
	if order.Status != models.OrderPending || order.PaymentStatus == models.PaymentPaid {
		return nil, ErrInvalidStatus
	}
	if err := s.orders.UpdateOrderStatus(ctx, id, models.OrderCancelled); err != nil {
		return nil, err
	}
	s.log.Info("cancelled order", slog.String("order_id", id))
	return s.orders.GetOrder(ctx, id)
}

// UpdateStatus is the admin lifecycle transition.
func (s *OrderService) UpdateStatus(ctx context.Context, id string, req models.UpdateOrderStatusRequest) (*models.Order, error) {
	if _, err := s.Get(ctx, id, "", true); err != nil {
		return nil, err
	}
	if err := s.orders.UpdateOrderStatus(ctx, id, req.Status); err != nil {
		return nil, err
	}
	s.log.Info("updated order status", slog.String("order_id", id), slog.String("status", req.Status))
	return s.orders.GetOrder(ctx, id)
}

// UpdateTracking records fulfillment data. Setting a tracking number
// on an unshipped order marks it SHIPPED.
func (s *OrderService) UpdateTracking(ctx context.Context, id string, req models.UpdateTrackingRequest) (*models.Order, error) {
	order, err := s.Get(ctx, id, "", true)
	if err != nil {
		return nil, err
	}
	markShipped := req.TrackingNumber != nil && *req.TrackingNumber != "" && order.ShippedAt == nil
	if err := s.orders.UpdateOrderTracking(ctx, id, req, markShipped); err != nil {
		return nil, err
	}
	return s.orders.GetOrder(ctx, id)
}
