package infra

import (
	"bytes"
	"testing"
	"time"

	"storefront/internal/model"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRenderOrderReceipt_WritesPDF(t *testing.T) {
	var buf bytes.Buffer
	err := RenderOrderReceipt(&buf, Receipt{
		OrderID:      42,
		CustomerName: "Customer User",
		PlacedAt:     time.Date(2024, 3, 1, 10, 30, 0, 0, time.UTC),
		Total:        decimal.RequireFromString("2129.97"),
		Lines: []ReceiptLine{
			{Name: "iPhone 13", Quantity: 2, Price: decimal.RequireFromString("999.99")},
			{Name: "Nike Air Max", Quantity: 1, Price: decimal.RequireFromString("129.99")},
		},
	})
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(buf.Bytes(), []byte("%PDF-")))
}

func TestRenderProductsReport_WritesPDF(t *testing.T) {
	orig := decimal.RequireFromString("10.00")
	products := []model.Product{
		{ID: 1, Name: "Widget", Price: decimal.RequireFromString("11.00"), OriginalPrice: &orig, Stock: 3},
		{ID: 2, Name: "A product with an unusually long name that needs truncating in the table", Price: decimal.Zero},
	}
	var buf bytes.Buffer
	require.NoError(t, RenderProductsReport(&buf, products, time.Now()))
	assert.True(t, bytes.HasPrefix(buf.Bytes(), []byte("%PDF-")))
}

func TestRenderOrdersReport_EmptyListStillRenders(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, RenderOrdersReport(&buf, nil, time.Now()))
	assert.True(t, bytes.HasPrefix(buf.Bytes(), []byte("%PDF-")))
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "short", truncate("short", 10))
	assert.Equal(t, "abcdefg...", truncate("abcdefghijklmnop", 10))
}
