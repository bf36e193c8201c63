package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Order is created together with its items by order placement.
type Order struct {
	ID        uint            `gorm:"primaryKey"`
	UserID    uint            `gorm:"not null;index"`
	Total     decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	Status    OrderStatus     `gorm:"type:varchar(20);not null;default:'pending';index"`
	CreatedAt time.Time       `gorm:"index"`

	Items []OrderItem `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE"`
	User  *User       `gorm:"foreignKey:UserID"`
}

// OrderItem is a quantity and unit-price snapshot of one product in an order.
// Immutable once created.
type OrderItem struct {
	ID        uint            `gorm:"primaryKey"`
	OrderID   uint            `gorm:"not null;index"`
	ProductID uint            `gorm:"not null;index"`
	Quantity  int             `gorm:"not null;check:quantity > 0"`
	Price     decimal.Decimal `gorm:"type:decimal(10,2);not null"`

	Product *Product `gorm:"foreignKey:ProductID"`
}

// Subtotal is the captured unit price times quantity.
func (i OrderItem) Subtotal() decimal.Decimal {
	return i.Price.Mul(decimal.NewFromInt(int64(i.Quantity)))
}
