package dto

import "github.com/shopspring/decimal"

// ─── Request DTOs ────────────────────────────────────────────────────────────
// min=0 on decimal.Decimal fields is only enforced through the decimal type
// func registered in handler/helpers.go; removing it silently disables them.

type OrderItemRequest struct {
	ProductID uint            `json:"product_id" validate:"required"`
	Quantity  int             `json:"quantity"   validate:"required,min=1"`
	Price     decimal.Decimal `json:"price"      validate:"min=0"`
}

type PlaceOrderRequest struct {
	Total decimal.Decimal    `json:"total" validate:"min=0"`
	Items []OrderItemRequest `json:"items" validate:"required,min=1,dive"`
}

type SetOrderStatusRequest struct {
	Status string `json:"status" validate:"required"`
}

// ─── Filter / Pagination ─────────────────────────────────────────────────────

type OrderFilter struct {
	Search  string `form:"search"`
	Page    int    `form:"page,default=1"      validate:"min=1"`
	PerPage int    `form:"per_page,default=20" validate:"min=1,max=100"`
}

// ─── Response DTOs ───────────────────────────────────────────────────────────

type PlaceOrderResponse struct {
	Message string `json:"message"`
	OrderID uint   `json:"order_id"`
}

type OrderItemResponse struct {
	ID        uint            `json:"id"`
	ProductID uint            `json:"product_id"`
	Product   string          `json:"product,omitempty"`
	Quantity  int             `json:"quantity"`
	Price     decimal.Decimal `json:"price"`
	Subtotal  decimal.Decimal `json:"subtotal"`
}

type OrderResponse struct {
	ID        uint                `json:"id"`
	UserID    uint                `json:"user_id"`
	Total     decimal.Decimal     `json:"total"`
	Status    string              `json:"status"`
	CreatedAt string              `json:"created_at"`
	Items     []OrderItemResponse `json:"items,omitempty"`
}

type OrderListResponse struct {
	Items []OrderResponse `json:"items"`
	Total int64           `json:"total"`
}
