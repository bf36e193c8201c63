package model

import "time"

// Stock movement kinds.
const (
	MovementOrder  = "order"
	MovementManual = "manual_adjustment"
)

// StockMovement records every change of a product's stock.
// One is written per order line, in the same transaction as the decrement.
type StockMovement struct {
	ID          uint   `gorm:"primaryKey"`
	ProductID   uint   `gorm:"not null;index"`
	Kind        string `gorm:"size:30;not null"`
	Delta       int    `gorm:"not null"` // positive = in, negative = out
	StockBefore int    `gorm:"not null"`
	StockAfter  int    `gorm:"not null"`
	Reason      string
	OrderID     *uint `gorm:"index"`
	CreatedAt   time.Time

	Product *Product `gorm:"foreignKey:ProductID"`
}

// TableName overrides GORM's default pluralization.
func (StockMovement) TableName() string { return "stock_movements" }
