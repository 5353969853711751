package models

import "time"

// Customer types used on profiles and invoices. BUSINESS customers
// carry a tax id (RUT) and get invoiced as companies.
const (
	CustomerIndividual = "INDIVIDUAL"
	CustomerBusiness   = "BUSINESS"
)

// Address types.
const (
	AddressShipping = "SHIPPING"
	AddressBilling  = "BILLING"
)

// Profile extends a user with billing identity and preferences.
type Profile struct {
	ID                string    `json:"id"`
	UserID            string    `json:"userId"`
	Phone             string    `json:"phone,omitempty"`
	CustomerType      string    `json:"customerType"`
	CompanyName       string    `json:"companyName,omitempty"`
	TaxID             string    `json:"taxId,omitempty"`
	PreferredLanguage string    `json:"preferredLanguage"`
	CreatedAt         time.Time `json:"createdAt"`
	UpdatedAt         time.Time `json:"updatedAt"`
}

// Address is a shipping or billing address owned by a profile.
type Address struct {
	ID         string    `json:"id"`
	ProfileID  string    `json:"profileId"`
	Type       string    `json:"type"`
	Street     string    `json:"street"`
	City       string    `json:"city"`
	Region     string    `json:"region"`
	PostalCode string    `json:"postalCode,omitempty"`
	Country    string    `json:"country"`
	IsDefault  bool      `json:"isDefault"`
	CreatedAt  time.Time `json:"createdAt"`
}

// UpdateProfileRequest is the profile edit payload.
type UpdateProfileRequest struct {
	Phone             *string `json:"phone"`
	CustomerType      *string `json:"customerType" validate:"omitempty,oneof=INDIVIDUAL BUSINESS"`
	CompanyName       *string `json:"companyName"`
	TaxID             *string `json:"taxId"`
	PreferredLanguage *string `json:"preferredLanguage" validate:"omitempty,oneof=ES EN"`
}

// AddressRequest is the address create/update payload.
type AddressRequest struct {
	Type       string `json:"type" validate:"required,oneof=SHIPPING BILLING"`
	Street     string `json:"street" validate:"required"`
	City       string `json:"city" validate:"required"`
	Region     string `json:"region" validate:"required"`
	PostalCode string `json:"postalCode"`
	Country    string `json:"country" validate:"required"`
	IsDefault  bool   `json:"isDefault"`
}
