// Package services holds the business logic between the HTTP handlers
// and the storage layer. Each service declares the narrow repository
// interface it needs so tests can mock it.
package services

import (
	"errors"
	"fmt"
)

// Sentinel errors the handlers translate into API error codes.
var (
	ErrNotFound           = errors.New("not found")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrEmailTaken         = errors.New("email already registered")
	ErrOutOfStock         = errors.New("product out of stock")
	ErrEmptyCart          = errors.New("cart is empty")
	ErrAddressNotFound    = errors.New("address not found")
	ErrInvalidStatus      = errors.New("invalid status for this operation")
	ErrSubscriptionExists = errors.New("active subscription already exists")
	ErrSamePlan           = errors.New("already on this plan")
	ErrNotActive          = errors.New("subscription is not active")
	ErrOrderNotPaid       = errors.New("order is not paid")
	ErrKeyRedeemed        = errors.New("access key already redeemed")
	ErrForbidden          = errors.New("operation not allowed")
	ErrAlreadyExists      = errors.New("already exists")
	ErrUpgradeRequired    = errors.New("plan upgrade required")
)

// Narrower variants wrap the broad sentinels, so errors.Is still
// matches the category while handlers surface a precise code.
var (
	ErrProductNotFound   = fmt.Errorf("product: %w", ErrNotFound)
	ErrProductExists     = fmt.Errorf("product: %w", ErrAlreadyExists)
	ErrReviewExists      = fmt.Errorf("review: %w", ErrAlreadyExists)
	ErrAlreadyInWishlist = fmt.Errorf("wishlist item: %w", ErrAlreadyExists)
)
