package response

import (
	"errors"
	"net/http"

	"github.com/vmcandles/commerce-api/internal/services"
)

// Area-specific error codes surfaced to clients.
const (
	CodeInvalidCredentials = "INVALID_CREDENTIALS"
	CodeUserExists         = "USER_EXISTS"
	CodeOutOfStock         = "OUT_OF_STOCK"
	CodeEmptyCart          = "EMPTY_CART"
	CodeAddressNotFound    = "ADDRESS_NOT_FOUND"
	CodeInvalidOrderStatus = "INVALID_ORDER_STATUS"
	CodeSubscriptionExists = "SUBSCRIPTION_EXISTS"
	CodeSamePlan           = "SAME_PLAN"
	CodeNotActive          = "SUBSCRIPTION_NOT_ACTIVE"
	CodeOrderNotPaid       = "ORDER_NOT_PAID"
	CodeKeyRedeemed        = "KEY_ALREADY_REDEEMED"
	CodeAlreadyExists      = "ALREADY_EXISTS"
	CodeUpgradeRequired    = "UPGRADE_REQUIRED"
	CodeProductNotFound    = "PRODUCT_NOT_FOUND"
	CodeProductExists      = "PRODUCT_EXISTS"
	CodeReviewExists       = "REVIEW_EXISTS"
	CodeAlreadyInWishlist  = "ALREADY_IN_WISHLIST"
)

type mapping struct {
	status int
	code   string
	msg    string
}

var serviceErrors = []struct {
	err error
	mapping
}{
	{services.ErrInvalidCredentials, mapping{http.StatusUnauthorized, CodeInvalidCredentials, "invalid email or password"}},
	{services.ErrEmailTaken, mapping{http.StatusConflict, CodeUserExists, "a user with this email already exists"}},
	{services.ErrOutOfStock, mapping{http.StatusConflict, CodeOutOfStock, "product is out of stock"}},
	{services.ErrEmptyCart, mapping{http.StatusBadRequest, CodeEmptyCart, "cart is empty"}},
	{services.ErrAddressNotFound, mapping{http.StatusNotFound, CodeAddressNotFound, "address not found"}},
	{services.ErrInvalidStatus, mapping{http.StatusConflict, CodeInvalidOrderStatus, "order cannot change to that status"}},
	{services.ErrSubscriptionExists, mapping{http.StatusConflict, CodeSubscriptionExists, "an active subscription already exists"}},
	{services.ErrSamePlan, mapping{http.StatusBadRequest, CodeSamePlan, "already subscribed to this plan"}},
	{services.ErrNotActive, mapping{http.StatusConflict, CodeNotActive, "subscription is not active"}},
	{services.ErrOrderNotPaid, mapping{http.StatusBadRequest, CodeOrderNotPaid, "order has not been paid"}},
	{services.ErrKeyRedeemed, mapping{http.StatusConflict, CodeKeyRedeemed, "access key has already been redeemed"}},
	{services.ErrForbidden, mapping{http.StatusForbidden, CodeForbidden, "access denied"}},
	{services.ErrUpgradeRequired, mapping{http.StatusForbidden, CodeUpgradeRequired, "a higher subscription plan is required"}},
	// Wrapped variants sit before the broad sentinels they wrap so
	// errors.Is picks the precise code first.
	{services.ErrProductExists, mapping{http.StatusConflict, CodeProductExists, "a product with this id already exists"}},
	{services.ErrReviewExists, mapping{http.StatusConflict, CodeReviewExists, "you have already reviewed this product"}},
	{services.ErrAlreadyInWishlist, mapping{http.StatusConflict, CodeAlreadyInWishlist, "product is already in the wishlist"}},
	{services.ErrProductNotFound, mapping{http.StatusNotFound, CodeProductNotFound, "product not found"}},
	{services.ErrAlreadyExists, mapping{http.StatusConflict, CodeAlreadyExists, "resource already exists"}},
	{services.ErrNotFound, mapping{http.StatusNotFound, CodeNotFound, "resource not found"}},
}

// ServiceError translates a service sentinel into an HTTP status and
// envelope. Unknown errors become a generic 500.
func ServiceError(err error) (int, Response) {
	for _, m := range serviceErrors {
		if errors.Is(err, m.err) {
			return m.status, Error(m.code, m.msg)
		}
	}
	return http.StatusInternalServerError, Error(CodeServerError, "internal server error")
}
