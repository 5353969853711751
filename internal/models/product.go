package models

import "time"

// Product categories in the catalog.
const (
	CategoryCandle    = "CANDLE"
	CategoryAccessory = "ACCESSORY"
	CategoryGiftSet   = "GIFT_SET"
)

// Product is a catalog item. Name and Description are filled from the
// translation matching the requested language; the row itself is
// language neutral.
type Product struct {
	ID              string               `json:"id"`
	Name            string               `json:"name"`
	Description     string               `json:"description,omitempty"`
	LongDescription string               `json:"longDescription,omitempty"`
	Features        []string             `json:"features,omitempty"`
	Price           float64              `json:"price"`
	Category        string               `json:"category"`
	Image           string               `json:"image,omitempty"`
	Images          []string             `json:"images,omitempty"`
	BurnTime        string               `json:"burnTime,omitempty"`
	Size            string               `json:"size,omitempty"`
	Featured        bool                 `json:"featured"`
	InStock         bool                 `json:"inStock"`
	Stock           int                  `json:"stock"`
	LowStockAlert   int                  `json:"lowStockAlert"`
	TrackInventory  bool                 `json:"trackInventory"`
	SortOrder       int                  `json:"sortOrder"`
	AudioURL        string               `json:"audioUrl,omitempty"`
	AudioTitle      string               `json:"audioTitle,omitempty"`
	AudioDuration   int                  `json:"audioDuration,omitempty"`
	CreatedAt       time.Time            `json:"createdAt"`
	UpdatedAt       time.Time            `json:"updatedAt"`
	Translations    []ProductTranslation `json:"translations,omitempty"`
}

// ProductTranslation is the localized name and description of a
// product, unique per (product, language).
type ProductTranslation struct {
	ID              string   `json:"id"`
	ProductID       string   `json:"productId"`
	Language        string   `json:"language"`
	Name            string   `json:"name"`
	Description     string   `json:"description,omitempty"`
	LongDescription string   `json:"longDescription,omitempty"`
	Features        []string `json:"features,omitempty"`
}

// ProductFilter narrows catalog listings.
type ProductFilter struct {
	Category string
	Featured *bool
	InStock  *bool
	Language string
	SortBy   string
	Page     int
	Limit    int
}

// CreateProductRequest is the admin catalog create payload.
type CreateProductRequest struct {
	ID           string               `json:"id" validate:"required"`
	Price        float64              `json:"price" validate:"required,gt=0"`
	Category     string               `json:"category" validate:"required,oneof=CANDLE ACCESSORY GIFT_SET"`
	Image        string               `json:"image"`
	Images       []string             `json:"images"`
	BurnTime     string               `json:"burnTime"`
	Size         string               `json:"size"`
	Featured     bool                 `json:"featured"`
	InStock      *bool                `json:"inStock"`
	Stock        int                  `json:"stock" validate:"gte=0"`
	SortOrder    int                  `json:"sortOrder"`
	Translations []TranslationRequest `json:"translations" validate:"omitempty,dive"`
}

// UpdateProductRequest is the admin catalog update payload. Nil fields
// are left unchanged.
type UpdateProductRequest struct {
	Price     *float64 `json:"price" validate:"omitempty,gt=0"`
	Category  *string  `json:"category" validate:"omitempty,oneof=CANDLE ACCESSORY GIFT_SET"`
	Image     *string  `json:"image"`
	Images    []string `json:"images"`
	BurnTime  *string  `json:"burnTime"`
	Size      *string  `json:"size"`
	Featured  *bool    `json:"featured"`
	InStock   *bool    `json:"inStock"`
	SortOrder *int     `json:"sortOrder"`
}

// TranslationRequest is the translation upsert payload. Language is
// normalized to upper case before storage.
type TranslationRequest struct {
	Language        string   `json:"language" validate:"required,oneof=ES EN es en"`
	Name            string   `json:"name" validate:"required"`
	Description     string   `json:"description"`
	LongDescription string   `json:"longDescription"`
	Features        []string `json:"features"`
}

// ProductAudioRequest attaches a guided-experience track to a product.
type ProductAudioRequest struct {
	AudioURL      string `json:"audioUrl" validate:"required"`
	AudioTitle    string `json:"audioTitle" validate:"required"`
	AudioDuration int    `json:"audioDuration" validate:"gte=0"`
}
