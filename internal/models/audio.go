package models

import "time"

// AudioContent is a guided candle-ritual track. Preview tracks stream
// without a subscription; the rest are gated by plan tier.
type AudioContent struct {
	ID           string    `json:"id"`
	Title        string    `json:"title"`
	Description  string    `json:"description,omitempty"`
	Category     string    `json:"category,omitempty"`
	FileURL      string    `json:"fileUrl,omitempty"`
	Duration     int       `json:"duration"`
	IsPreview    bool      `json:"isPreview"`
	RequiredPlan string    `json:"requiredPlan,omitempty"`
	SortOrder    int       `json:"sortOrder"`
	CanAccess    bool      `json:"canAccess"`
	CreatedAt    time.Time `json:"createdAt"`
}

// AudioAccessKey is a one-time code granting time-boxed library access
// without a subscription. Codes look like VM-XXXXX-XXXXX.
type AudioAccessKey struct {
	ID             string     `json:"id"`
	KeyCode        string     `json:"keyCode"`
	PlanID         string     `json:"planId"`
	DurationMonths int        `json:"durationMonths"`
	RedeemedBy     string     `json:"redeemedBy,omitempty"`
	RedeemedAt     *time.Time `json:"redeemedAt,omitempty"`
	ExpiresAt      *time.Time `json:"expiresAt,omitempty"`
	Notes          string     `json:"notes,omitempty"`
	CreatedAt      time.Time  `json:"createdAt"`
}

// RedeemKeyRequest is the key redemption payload.
type RedeemKeyRequest struct {
	KeyCode string `json:"keyCode" validate:"required"`
}

// AudioContentRequest is the admin create/update payload.
type AudioContentRequest struct {
	Title        string `json:"title" validate:"required"`
	Description  string `json:"description"`
	Category     string `json:"category"`
	FileURL      string `json:"fileUrl" validate:"required"`
	Duration     int    `json:"duration" validate:"gte=0"`
	IsPreview    bool   `json:"isPreview"`
	RequiredPlan string `json:"requiredPlan" validate:"omitempty,oneof=MONTHLY QUARTERLY ANNUAL"`
	SortOrder    int    `json:"sortOrder"`
}

// GenerateKeysRequest is the admin batch key creation payload.
type GenerateKeysRequest struct {
	Count          int    `json:"count" validate:"required,gte=1,lte=100"`
	PlanID         string `json:"planId" validate:"required,oneof=MONTHLY QUARTERLY ANNUAL"`
	DurationMonths int    `json:"durationMonths" validate:"required,gte=1"`
	Notes          string `json:"notes"`
}
