package model

import "time"

// Roles a user may hold.
const (
	RoleAdmin    = "admin"
	RoleCustomer = "customer"
)

// User is an account that can authenticate and place orders.
type User struct {
	ID           uint   `gorm:"primaryKey"`
	Email        string `gorm:"size:120;uniqueIndex;not null"`
	PasswordHash string `gorm:"size:255;not null"`
	Name         string `gorm:"size:100;not null"`
	Role         string `gorm:"size:20;not null;default:'customer'"`
	CreatedAt    time.Time
}
