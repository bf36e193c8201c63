package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Product is a catalog entry. Price, OriginalPrice and PriceHistory are
// written only by the pricing engine; Stock is decremented by order placement.
type Product struct {
	ID          uint            `gorm:"primaryKey"`
	Name        string          `gorm:"size:200;not null;index"`
	Description string          `gorm:"type:text"`
	Price       decimal.Decimal `gorm:"type:decimal(10,2);not null"`
	// OriginalPrice is captured once, the first time the product is observed,
	// and is the target of a price reset.
	OriginalPrice *decimal.Decimal `gorm:"type:decimal(10,2)"`
	Stock         int              `gorm:"not null;default:0"`
	CategoryID    *uint            `gorm:"index"`
	ImageURL      *string          `gorm:"size:300"`
	PriceHistory  PriceHistory     `gorm:"type:jsonb;not null;default:'[]'"`
	CreatedAt     time.Time
	UpdatedAt     time.Time

	Category *Category `gorm:"foreignKey:CategoryID"`
}
