package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type Product struct {
	ID          uint            `gorm:"primaryKey;autoIncrement" json:"id"`
	Name        string          `gorm:"not null" json:"name"`
	Slug        string          `gorm:"uniqueIndex;not null" json:"slug"`
	Description string          `json:"description"`
	Price       decimal.Decimal `gorm:"not null;type:decimal(10,2)" json:"price"`
	Stock       int             `gorm:"not null;default:0" json:"stock"`
	Image       string          `json:"image"`
	IsActive    bool            `gorm:"not null;default:true" json:"is_active"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}
