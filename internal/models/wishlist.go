package models

import "time"

// WishlistItem saves a product for later, unique per user+product.
type WishlistItem struct {
	ID        string    `json:"id"`
	UserID    string    `json:"userId"`
	ProductID string    `json:"productId"`
	Product   *Product  `json:"product,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}

// AddWishlistRequest is the wishlist add payload.
type AddWishlistRequest struct {
	ProductID string `json:"productId" validate:"required"`
}
