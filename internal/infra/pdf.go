package infra

// pdf.go — document generation with go-pdf/fpdf.
//   - RenderOrderReceipt: receipt attached to the order confirmation mail
//   - RenderProductsReport / RenderOrdersReport: admin catalog and order listings
//
// Everything is written to an io.Writer; nothing touches the filesystem.

import (
	"fmt"
	"io"
	"time"

	"storefront/internal/model"

	"github.com/go-pdf/fpdf"
	"github.com/shopspring/decimal"
)

const storeName = "Storefront"

// ReceiptLine is one purchased product on a receipt.
type ReceiptLine struct {
	Name     string          `json:"name"`
	Quantity int             `json:"quantity"`
	Price    decimal.Decimal `json:"price"`
}

// Receipt is everything needed to render an order receipt.
type Receipt struct {
	OrderID      uint            `json:"order_id"`
	CustomerName string          `json:"customer_name"`
	PlacedAt     time.Time       `json:"placed_at"`
	Total        decimal.Decimal `json:"total"`
	Lines        []ReceiptLine   `json:"lines"`
}

// RenderOrderReceipt writes a one-page receipt for an order.
func RenderOrderReceipt(w io.Writer, r Receipt) error {
	pdf := fpdf.New("P", "mm", "A5", "")
	pdf.SetMargins(10, 10, 10)
	pdf.AddPage()

	pageW, _ := pdf.GetPageSize()
	contentW := pageW - 20

	// ── Header ───────────────────────────────────────────────────────────────
	pdf.SetFont("Helvetica", "B", 14)
	pdf.CellFormat(contentW, 8, storeName, "", 1, "C", false, 0, "")
	pdf.SetFont("Helvetica", "", 9)
	pdf.CellFormat(contentW, 5, fmt.Sprintf("Order #%d", r.OrderID), "", 1, "C", false, 0, "")
	pdf.CellFormat(contentW, 5, r.PlacedAt.Format("2006-01-02 15:04"), "", 1, "C", false, 0, "")
	if r.CustomerName != "" {
		pdf.CellFormat(contentW, 5, r.CustomerName, "", 1, "C", false, 0, "")
	}
	pdf.Ln(3)

	// ── Lines ────────────────────────────────────────────────────────────────
	col1 := contentW * 0.50
	col2 := contentW * 0.15
	col3 := contentW * 0.35

	pdf.SetFont("Helvetica", "B", 9)
	pdf.CellFormat(col1, 6, "Product", "B", 0, "L", false, 0, "")
	pdf.CellFormat(col2, 6, "Qty", "B", 0, "C", false, 0, "")
	pdf.CellFormat(col3, 6, "Subtotal", "B", 1, "R", false, 0, "")

	pdf.SetFont("Helvetica", "", 9)
	for _, l := range r.Lines {
		subtotal := l.Price.Mul(decimal.NewFromInt(int64(l.Quantity)))
		pdf.CellFormat(col1, 6, truncate(l.Name, 40), "", 0, "L", false, 0, "")
		pdf.CellFormat(col2, 6, fmt.Sprintf("x%d", l.Quantity), "", 0, "C", false, 0, "")
		pdf.CellFormat(col3, 6, "$"+subtotal.StringFixed(2), "", 1, "R", false, 0, "")
	}

	pdf.Ln(2)
	pdf.SetFont("Helvetica", "B", 11)
	pdf.CellFormat(col1+col2, 7, "TOTAL", "T", 0, "L", false, 0, "")
	pdf.CellFormat(col3, 7, "$"+r.Total.StringFixed(2), "T", 1, "R", false, 0, "")

	pdf.Ln(4)
	pdf.SetFont("Helvetica", "I", 8)
	pdf.CellFormat(contentW, 4, "Thank you for your purchase!", "", 1, "C", false, 0, "")

	return pdf.Output(w)
}

// RenderProductsReport writes a table of every product with its pricing state.
func RenderProductsReport(w io.Writer, products []model.Product, generatedAt time.Time) error {
	pdf := newReportDocument("Products report", generatedAt)

	widths := []float64{15, 85, 30, 30, 20}
	tableHeader(pdf, widths, "ID", "Name", "Price", "Original", "Stock")

	pdf.SetFont("Helvetica", "", 9)
	for _, p := range products {
		original := "-"
		if p.OriginalPrice != nil {
			original = p.OriginalPrice.StringFixed(2)
		}
		pdf.CellFormat(widths[0], 6, fmt.Sprint(p.ID), "1", 0, "R", false, 0, "")
		pdf.CellFormat(widths[1], 6, truncate(p.Name, 48), "1", 0, "L", false, 0, "")
		pdf.CellFormat(widths[2], 6, p.Price.StringFixed(2), "1", 0, "R", false, 0, "")
		pdf.CellFormat(widths[3], 6, original, "1", 0, "R", false, 0, "")
		pdf.CellFormat(widths[4], 6, fmt.Sprint(p.Stock), "1", 1, "R", false, 0, "")
	}

	return pdf.Output(w)
}

// RenderOrdersReport writes a table of orders with their totals and statuses.
func RenderOrdersReport(w io.Writer, orders []model.Order, generatedAt time.Time) error {
	pdf := newReportDocument("Orders report", generatedAt)

	widths := []float64{15, 20, 30, 30, 20, 65}
	tableHeader(pdf, widths, "ID", "User", "Total", "Status", "Items", "Created")

	pdf.SetFont("Helvetica", "", 9)
	for _, o := range orders {
		pdf.CellFormat(widths[0], 6, fmt.Sprint(o.ID), "1", 0, "R", false, 0, "")
		pdf.CellFormat(widths[1], 6, fmt.Sprint(o.UserID), "1", 0, "R", false, 0, "")
		pdf.CellFormat(widths[2], 6, o.Total.StringFixed(2), "1", 0, "R", false, 0, "")
		pdf.CellFormat(widths[3], 6, string(o.Status), "1", 0, "L", false, 0, "")
		pdf.CellFormat(widths[4], 6, fmt.Sprint(len(o.Items)), "1", 0, "R", false, 0, "")
		pdf.CellFormat(widths[5], 6, o.CreatedAt.Format("2006-01-02 15:04:05"), "1", 1, "L", false, 0, "")
	}

	return pdf.Output(w)
}

func newReportDocument(title string, generatedAt time.Time) *fpdf.Fpdf {
	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(15, 15, 15)
	pdf.SetFooterFunc(func() {
		pdf.SetY(-12)
		pdf.SetFont("Helvetica", "I", 8)
		pdf.CellFormat(0, 5, fmt.Sprintf("Page %d", pdf.PageNo()), "", 0, "C", false, 0, "")
	})
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 16)
	pdf.CellFormat(0, 9, storeName+" - "+title, "", 1, "L", false, 0, "")
	pdf.SetFont("Helvetica", "", 9)
	pdf.CellFormat(0, 5, "Generated "+generatedAt.Format(time.RFC1123), "", 1, "L", false, 0, "")
	pdf.Ln(4)
	return pdf
}

func tableHeader(pdf *fpdf.Fpdf, widths []float64, titles ...string) {
	pdf.SetFont("Helvetica", "B", 9)
	pdf.SetFillColor(230, 230, 230)
	for i, t := range titles {
		ln := 0
		if i == len(titles)-1 {
			ln = 1
		}
		pdf.CellFormat(widths[i], 7, t, "1", ln, "C", true, 0, "")
	}
}

func truncate(s string, max int) string {
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	return string(r[:max-3]) + "..."
}
