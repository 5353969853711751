package models

import "time"

// Invoice is the fiscal document generated for a paid order. The id is
// the human-readable invoice number. Items are embedded as a JSON
// column so the document is immutable even if the order changes.
type Invoice struct {
	ID            string        `json:"id"`
	OrderID       string        `json:"orderId"`
	UserID        string        `json:"userId"`
	CustomerType  string        `json:"customerType"`
	CustomerName  string        `json:"customerName"`
	CustomerTaxID string        `json:"customerTaxId,omitempty"`
	CustomerEmail string        `json:"customerEmail"`
	Address       string        `json:"address,omitempty"`
	Items         []InvoiceItem `json:"items"`
	Subtotal      float64       `json:"subtotal"`
	Shipping      float64       `json:"shipping"`
	Total         float64       `json:"total"`
	Status        string        `json:"status"`
	PDFUrl        string        `json:"pdfUrl"`
	IssuedAt      time.Time     `json:"issuedAt"`
}

// InvoiceItem is one invoiced line.
type InvoiceItem struct {
	ProductName string  `json:"productName"`
	Quantity    int     `json:"quantity"`
	UnitPrice   float64 `json:"unitPrice"`
	Total       float64 `json:"total"`
}

// GenerateInvoiceRequest asks for an invoice for one of the caller's
// paid orders.
type GenerateInvoiceRequest struct {
	OrderID string `json:"orderId" validate:"required"`
}
