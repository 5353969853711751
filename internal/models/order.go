package models

import "time"

// Order statuses.
const (
	OrderPending    = "PENDING"
	OrderProcessing = "PROCESSING"
	OrderShipped    = "SHIPPED"
	OrderDelivered  = "DELIVERED"
	OrderCancelled  = "CANCELLED"
)

// Payment statuses shared by orders and subscriptions.
const (
	PaymentPending = "PENDING"
	PaymentPaid    = "PAID"
	PaymentFailed  = "FAILED"
)

// Order is a placed order with customer and address data snapshotted
// at checkout time.
type Order struct {
	ID              string      `json:"id"`
	UserID          string      `json:"userId"`
	Status          string      `json:"status"`
	PaymentStatus   string      `json:"paymentStatus"`
	PaymentMethod   string      `json:"paymentMethod,omitempty"`
	PaymentDate     *time.Time  `json:"paymentDate,omitempty"`
	WebpayToken     string      `json:"-"`
	Subtotal        float64     `json:"subtotal"`
	Shipping        float64     `json:"shipping"`
	Total           float64     `json:"total"`
	CustomerName    string      `json:"customerName"`
	CustomerEmail   string      `json:"customerEmail"`
	CustomerPhone   string      `json:"customerPhone,omitempty"`
	ShippingAddress string      `json:"shippingAddress"`
	BillingAddress  string      `json:"billingAddress,omitempty"`
	TrackingNumber  string      `json:"trackingNumber,omitempty"`
	Carrier         string      `json:"carrier,omitempty"`
	AdminNotes      string      `json:"adminNotes,omitempty"`
	ShippedAt       *time.Time  `json:"shippedAt,omitempty"`
	Items           []OrderItem `json:"items"`
	CreatedAt       time.Time   `json:"createdAt"`
	UpdatedAt       time.Time   `json:"updatedAt"`
}

// OrderItem is a purchased line with the cart snapshot carried over.
type OrderItem struct {
	ID        string  `json:"id"`
	OrderID   string  `json:"orderId"`
	ProductID string  `json:"productId"`
	Name      string  `json:"name"`
	Price     float64 `json:"price"`
	Image     string  `json:"image,omitempty"`
	Quantity  int     `json:"quantity"`
}

// CheckoutRequest places an order from the current cart.
type CheckoutRequest struct {
	ShippingAddressID string `json:"shippingAddressId" validate:"required"`
	BillingAddressID  string `json:"billingAddressId"`
	Notes             string `json:"notes"`
}

// OrderFilter narrows order listings.
type OrderFilter struct {
	UserID string
	Status string
	Page   int
	Limit  int
}

// UpdateOrderStatusRequest is the admin status change payload.
type UpdateOrderStatusRequest struct {
	Status string `json:"status" validate:"required,oneof=PENDING PROCESSING SHIPPED DELIVERED CANCELLED"`
}

// UpdateTrackingRequest is the admin fulfillment payload.
type UpdateTrackingRequest struct {
	TrackingNumber *string `json:"trackingNumber"`
	Carrier        *string `json:"carrier"`
	AdminNotes     *string `json:"adminNotes"`
}

// Pagination is the standard list envelope metadata.
type Pagination struct {
	Page       int   `json:"page"`
	Limit      int   `json:"limit"`
	Total      int64 `json:"total"`
	TotalPages int   `json:"totalPages"`
	HasMore    bool  `json:"hasMore"`
}

// NewPagination derives page metadata from a total row count.
func NewPagination(page, limit int, total int64) Pagination {
	totalPages := int((total + int64(limit) - 1) / int64(limit))
	return Pagination{
		Page:       page,
		Limit:      limit,
		Total:      total,
		TotalPages: totalPages,
		HasMore:    page < totalPages,
	}
}
