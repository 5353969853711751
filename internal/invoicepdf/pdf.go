// Package invoicepdf renders invoices into the fixed bilingual layout
// used for Chilean customers.
package invoicepdf

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/go-pdf/fpdf"

	"github.com/vmcandles/commerce-api/internal/models"
)

const (
	companyName    = "V&M CANDLE EXPERIENCE"
	companyTagline = "Velas Artesanales Premium"
	companyCity    = "Santiago, Chile"
	companyEmail   = "contacto@vmcandles.com"
)

// Renderer writes invoice PDFs under a base directory.
type Renderer struct {
	baseDir string
}

// NewRenderer creates the output directory if needed.
func NewRenderer(baseDir string) (*Renderer, error) {
	if err := os.MkdirAll(baseDir, 0o755); err != nil {
		return nil, fmt.Errorf("invoicepdf: %w", err)
	}
	return &Renderer{baseDir: baseDir}, nil
}

// Path returns the file path an invoice renders to.
func (r *Renderer) Path(invoiceID string) string {
	return filepath.Join(r.baseDir, invoiceID+".pdf")
}

// Render writes the PDF for an invoice and returns its path. An
// existing file is overwritten, which keeps generation idempotent.
func (r *Renderer) Render(inv *models.Invoice) (string, error) {
	path := r.Path(inv.ID)
	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("invoicepdf: %w", err)
	}
	defer func() { _ = f.Close() }()

	if err := Write(inv, f); err != nil {
		return "", err
	}
	return path, nil
}

// Write renders the document to any writer.
func Write(inv *models.Invoice, w io.Writer) error {
	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(15, 15, 15)
	pdf.AddPage()

	// Company block on the left, document identity on the right.
	pdf.SetFont("Helvetica", "B", 16)
	pdf.CellFormat(120, 8, companyName, "", 0, "L", false, 0, "")
	pdf.SetFont("Helvetica", "B", 14)
	pdf.CellFormat(0, 8, "FACTURA / INVOICE", "", 1, "R", false, 0, "")

	pdf.SetFont("Helvetica", "", 9)
	pdf.CellFormat(120, 5, companyTagline, "", 0, "L", false, 0, "")
	pdf.CellFormat(0, 5, inv.ID, "", 1, "R", false, 0, "")
	pdf.CellFormat(120, 5, companyCity, "", 0, "L", false, 0, "")
	pdf.CellFormat(0, 5, "Fecha: "+inv.IssuedAt.Format("02-01-2006"), "", 1, "R", false, 0, "")
	pdf.CellFormat(120, 5, companyEmail, "", 0, "L", false, 0, "")
	pdf.CellFormat(0, 5, "Orden: "+inv.OrderID, "", 1, "R", false, 0, "")
	pdf.Ln(8)

	// Customer block.
	pdf.SetFont("Helvetica", "B", 10)
	pdf.CellFormat(0, 6, "CLIENTE / CUSTOMER", "B", 1, "L", false, 0, "")
	pdf.SetFont("Helvetica", "", 9)
	pdf.CellFormat(0, 5, inv.CustomerName, "", 1, "L", false, 0, "")
	if inv.CustomerTaxID != "" {
		pdf.CellFormat(0, 5, "RUT: "+inv.CustomerTaxID, "", 1, "L", false, 0, "")
	}
	pdf.CellFormat(0, 5, inv.CustomerEmail, "", 1, "L", false, 0, "")
	if inv.Address != "" {
		pdf.CellFormat(0, 5, inv.Address, "", 1, "L", false, 0, "")
	}
	pdf.Ln(6)

	// Items table.
	pdf.SetFont("Helvetica", "B", 9)
	pdf.SetFillColor(240, 240, 240)
	pdf.CellFormat(90, 7, "PRODUCTO", "1", 0, "L", true, 0, "")
	pdf.CellFormat(25, 7, "CANTIDAD", "1", 0, "C", true, 0, "")
	pdf.CellFormat(30, 7, "PRECIO", "1", 0, "R", true, 0, "")
	pdf.CellFormat(35, 7, "SUBTOTAL", "1", 1, "R", true, 0, "")

	pdf.SetFont("Helvetica", "", 9)
	for _, item := range inv.Items {
		pdf.CellFormat(90, 7, item.ProductName, "1", 0, "L", false, 0, "")
		pdf.CellFormat(25, 7, fmt.Sprintf("%d", item.Quantity), "1", 0, "C", false, 0, "")
		pdf.CellFormat(30, 7, formatMoney(item.UnitPrice), "1", 0, "R", false, 0, "")
		pdf.CellFormat(35, 7, formatMoney(item.Total), "1", 1, "R", false, 0, "")
	}
	pdf.Ln(4)

	// Totals.
	pdf.SetFont("Helvetica", "", 9)
	pdf.CellFormat(145, 6, "Subtotal", "", 0, "R", false, 0, "")
	pdf.CellFormat(35, 6, formatMoney(inv.Subtotal), "", 1, "R", false, 0, "")
	pdf.CellFormat(145, 6, "Envio / Shipping", "", 0, "R", false, 0, "")
	pdf.CellFormat(35, 6, formatMoney(inv.Shipping), "", 1, "R", false, 0, "")
	pdf.SetFont("Helvetica", "B", 10)
	pdf.CellFormat(145, 7, "TOTAL", "T", 0, "R", false, 0, "")
	pdf.CellFormat(35, 7, formatMoney(inv.Total), "T", 1, "R", false, 0, "")

	pdf.Ln(12)
	pdf.SetFont("Helvetica", "I", 9)
	pdf.CellFormat(0, 6, "Gracias por su compra / Thank you for your purchase", "", 1, "C", false, 0, "")

	if err := pdf.Output(w); err != nil {
		return fmt.Errorf("invoicepdf: %w", err)
	}
	return nil
}

func formatMoney(v float64) string {
	return fmt.Sprintf("$%.2f", v)
}
