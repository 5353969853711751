package models

import "time"

// Cart is the per-user shopping cart. One row per user, created on
// first read.
type Cart struct {
	ID        string     `json:"id"`
	UserID    string     `json:"userId"`
	Items     []CartItem `json:"items"`
	CreatedAt time.Time  `json:"createdAt"`
	UpdatedAt time.Time  `json:"updatedAt"`
}

// CartItem snapshots name, price and image at the moment the product
// was added, so cart rendering survives catalog edits.
type CartItem struct {
	ID        string    `json:"id"`
	CartID    string    `json:"cartId"`
	ProductID string    `json:"productId"`
	Name      string    `json:"name"`
	Price     float64   `json:"price"`
	Image     string    `json:"image,omitempty"`
	Quantity  int       `json:"quantity"`
	CreatedAt time.Time `json:"createdAt"`
}

// AddCartItemRequest is the add-to-cart payload.
type AddCartItemRequest struct {
	ProductID string `json:"productId" validate:"required"`
	Quantity  int    `json:"quantity" validate:"required,gte=1"`
}

// UpdateCartItemRequest changes the quantity of an existing line.
type UpdateCartItemRequest struct {
	Quantity int `json:"quantity" validate:"required,gte=1"`
}
