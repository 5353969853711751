package models

import "time"

// Payment context kinds, one per gateway flow.
const (
	PaymentKindOrder        = "ORDER"
	PaymentKindSubscription = "SUBSCRIPTION"
	PaymentKindUpgrade      = "UPGRADE"
)

// PaymentContext ties a gateway token to the entity being paid for.
// The return callback only carries the token, so everything needed to
// settle the flow is recorded here when the transaction is created.
type PaymentContext struct {
	Token          string    `json:"token"`
	Kind           string    `json:"kind"`
	UserID         string    `json:"userId"`
	OrderID        string    `json:"orderId,omitempty"`
	SubscriptionID string    `json:"subscriptionId,omitempty"`
	NewPlanID      string    `json:"newPlanId,omitempty"`
	Amount         int       `json:"amount"`
	CreatedAt      time.Time `json:"createdAt"`
}

// InitPaymentRequest starts a gateway transaction for an order.
type InitPaymentRequest struct {
	OrderID string `json:"orderId" validate:"required"`
}
