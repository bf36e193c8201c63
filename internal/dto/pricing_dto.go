package dto

import "github.com/shopspring/decimal"

// ─── Request DTOs ────────────────────────────────────────────────────────────

// BulkPercentRequest is the body of POST /api/products/bulk-update-prices.
// Zero is rejected by the pricing service, not by a tag, so a missing field
// and an explicit 0 produce the same error.
type BulkPercentRequest struct {
	Percent decimal.Decimal `json:"percent"`
}

// BulkDiscountRequest is the body of POST /api/products/bulk-discount.
type BulkDiscountRequest struct {
	Amount decimal.Decimal `json:"amount"`
}

// ─── Response DTOs ───────────────────────────────────────────────────────────

type BulkPriceResponse struct {
	Message string `json:"message"`
	Count   int    `json:"count"`
}

// PriceHistoryEntry is one price change tagged with its product.
type PriceHistoryEntry struct {
	ProductID uint            `json:"product_id"`
	Name      string          `json:"name"`
	Old       decimal.Decimal `json:"old"`
	New       decimal.Decimal `json:"new"`
	Timestamp string          `json:"ts"`
}

type PriceHistoryResponse struct {
	History []PriceHistoryEntry `json:"history"`
}
