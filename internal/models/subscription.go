package models

import "time"

// Subscription statuses. A freshly created subscription sits in
// CANCELLED with payment PENDING until the gateway confirms the
// charge, so abandoned checkouts never look active.
const (
	SubscriptionActive    = "ACTIVE"
	SubscriptionPaused    = "PAUSED"
	SubscriptionCancelled = "CANCELLED"
	SubscriptionExpired   = "EXPIRED"
)

// Subscription is a recurring membership on one of the fixed plans.
type Subscription struct {
	ID              string     `json:"id"`
	UserID          string     `json:"userId"`
	PlanID          string     `json:"planId"`
	Status          string     `json:"status"`
	PaymentStatus   string     `json:"paymentStatus"`
	PaymentMethod   string     `json:"paymentMethod,omitempty"`
	Amount          int        `json:"amount"`
	AutoRenew       bool       `json:"autoRenew"`
	WebpayToken     string     `json:"-"`
	TransactionID   string     `json:"transactionId,omitempty"`
	StartedAt       *time.Time `json:"startedAt,omitempty"`
	ExpiresAt       *time.Time `json:"expiresAt,omitempty"`
	NextRenewal     *time.Time `json:"nextRenewal,omitempty"`
	LastPaymentDate *time.Time `json:"lastPaymentDate,omitempty"`
	CreatedAt       time.Time  `json:"createdAt"`
	UpdatedAt       time.Time  `json:"updatedAt"`
}

// CreateSubscriptionRequest starts a pending subscription.
type CreateSubscriptionRequest struct {
	PlanID string `json:"planId" validate:"required,oneof=MONTHLY QUARTERLY ANNUAL"`
}

// UpdateSubscriptionRequest toggles renewal or switches the plan.
type UpdateSubscriptionRequest struct {
	AutoRenew *bool   `json:"autoRenew"`
	PlanID    *string `json:"planId" validate:"omitempty,oneof=MONTHLY QUARTERLY ANNUAL"`
}

// ChangePlanRequest is the upgrade/downgrade payload.
type ChangePlanRequest struct {
	NewPlanID string `json:"newPlanId" validate:"required,oneof=MONTHLY QUARTERLY ANNUAL"`
}
