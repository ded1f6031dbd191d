package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type OrderStatus string

const (
	OrderStatusPending         OrderStatus = "pending"          // order row created, stock reserved
	OrderStatusAwaitingPayment OrderStatus = "awaiting_payment" // gateway session created, user paying
	OrderStatusCompleted       OrderStatus = "completed"        // payment confirmed
	OrderStatusCancelled       OrderStatus = "cancelled"        // user dismissed the payment UI
	OrderStatusFailed          OrderStatus = "failed"           // gateway session or payment failed
)

type Order struct {
	ID              uint            `gorm:"primaryKey;autoIncrement" json:"id"`
	OrderRef        string          `gorm:"uniqueIndex;not null" json:"order_ref"`
	UserID          string          `gorm:"index;not null" json:"user_id"`
	Items           []OrderItem     `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE" json:"items"`
	TotalAmount     decimal.Decimal `gorm:"not null;type:decimal(10,2)" json:"total_amount"`
	Status          OrderStatus     `gorm:"type:VARCHAR(20);default:'pending'" json:"status"`
	CustomerName    string          `json:"customer_name"`
	CustomerEmail   string          `json:"customer_email"`
	ShippingAddress string          `json:"shipping_address"`
	GatewayOrderID  string          `gorm:"index" json:"gateway_order_id"`
	CreatedAt       time.Time       `json:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at"`
}

// OrderItem snapshots name and price at checkout time so historical orders
// survive later product edits.
type OrderItem struct {
	ID          uint            `gorm:"primaryKey;autoIncrement" json:"id"`
	OrderID     uint            `gorm:"index" json:"order_id"`
	ProductID   uint            `json:"product_id"`
	ProductName string          `json:"product_name"`
	Quantity    int             `json:"quantity"`
	Price       decimal.Decimal `gorm:"type:decimal(10,2)" json:"price"`
}
