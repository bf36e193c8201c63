package dto

import "github.com/shopspring/decimal"

// ─── Request DTOs ────────────────────────────────────────────────────────────

type CreateProductRequest struct {
	Name        string          `json:"name"        validate:"required,min=1,max=200"`
	Description string          `json:"description"`
	Price       decimal.Decimal `json:"price"       validate:"min=0"`
	Stock       int             `json:"stock"       validate:"min=0"`
	CategoryID  *uint           `json:"category_id"`
	ImageURL    *string         `json:"image_url"   validate:"omitempty,url,max=300"`
}

// UpdateProductRequest carries optional fields; nil means unchanged.
// Price edits here are catalog maintenance and are not logged in the price history.
type UpdateProductRequest struct {
	Name        *string          `json:"name"        validate:"omitempty,min=1,max=200"`
	Description *string          `json:"description"`
	Price       *decimal.Decimal `json:"price"`
	Stock       *int             `json:"stock"       validate:"omitempty,min=0"`
	CategoryID  *uint            `json:"category_id"`
	ImageURL    *string          `json:"image_url"   validate:"omitempty,url,max=300"`
}

// ─── Filter / Pagination ─────────────────────────────────────────────────────

type ProductFilter struct {
	Search  string `form:"search"`
	Page    int    `form:"page,default=1"      validate:"min=1"`
	PerPage int    `form:"per_page,default=20" validate:"min=1,max=100"`
}

// ─── Response DTOs ───────────────────────────────────────────────────────────

type ProductResponse struct {
	ID            uint             `json:"id"`
	Name          string           `json:"name"`
	Description   string           `json:"description"`
	Price         decimal.Decimal  `json:"price"`
	OriginalPrice *decimal.Decimal `json:"original_price"`
	Stock         int              `json:"stock"`
	CategoryID    *uint            `json:"category_id"`
	ImageURL      *string          `json:"image_url"`
}

type ProductListResponse struct {
	Items []ProductResponse `json:"items"`
	Total int64             `json:"total"`
}

type CreatedResponse struct {
	Message string `json:"message"`
	ID      uint   `json:"id"`
}

type MessageResponse struct {
	Message string `json:"message"`
}
