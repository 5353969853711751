package invoicepdf

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vmcandles/commerce-api/internal/models"
)

func testInvoice() *models.Invoice {
	return &models.Invoice{
		ID:            "INV-000001",
		OrderID:       "ORD-001",
		CustomerType:  "INDIVIDUAL",
		CustomerName:  "Maria Gonzalez",
		CustomerTaxID: "12.345.678-9",
		CustomerEmail: "maria@example.com",
		Address:       "Av. Providencia 1234, Santiago",
		Items: []models.InvoiceItem{
			{ProductName: "Vela Lavanda", Quantity: 2, UnitPrice: 15.0, Total: 30.0},
			{ProductName: "Vela Vainilla", Quantity: 1, UnitPrice: 18.0, Total: 18.0},
		},
		Subtotal: 48.0,
		Shipping: 5.0,
		Total:    53.0,
		IssuedAt: time.Date(2025, 3, 14, 12, 0, 0, 0, time.UTC),
	}
}

func TestWrite(t *testing.T) {
	var buf bytes.Buffer
	err := Write(testInvoice(), &buf)
	require.NoError(t, err)

	assert.True(t, bytes.HasPrefix(buf.Bytes(), []byte("%PDF")))
	assert.Greater(t, buf.Len(), 500)
}

func TestRender(t *testing.T) {
	dir := t.TempDir()
	r, err := NewRenderer(dir)
	require.NoError(t, err)

	path, err := r.Render(testInvoice())
	require.NoError(t, err)
	assert.Equal(t, r.Path("INV-000001"), path)
	assert.FileExists(t, path)

	// Re-rendering overwrites the existing file.
	_, err = r.Render(testInvoice())
	require.NoError(t, err)
}
