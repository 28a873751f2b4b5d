package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Order status values
const (
	OrderPending   = "pending"
	OrderPaid      = "paid"
	OrderShipped   = "shipped"
	OrderCompleted = "completed"
	OrderCancelled = "cancelled"
)

// orderTransitions is the order state machine. completed and cancelled are
// terminal; every non-terminal status may still be cancelled.
var orderTransitions = map[string][]string{
	OrderPending: {OrderPaid, OrderCancelled},
	OrderPaid:    {OrderShipped, OrderCancelled},
	OrderShipped: {OrderCompleted, OrderCancelled},
}

// ValidOrderStatus reports whether s is one of the five known statuses
func ValidOrderStatus(s string) bool {
	switch s {
	case OrderPending, OrderPaid, OrderShipped, OrderCompleted, OrderCancelled:
		return true
	}
	return false
}

// CanTransitionOrder reports whether an order may move from -> to.
// Re-asserting the current status is treated as allowed (idempotent no-op);
// the caller decides whether any side effects apply.
func CanTransitionOrder(from, to string) bool {
	if from == to {
		return true
	}
	for _, next := range orderTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// Order is a customer purchase scoped to one branch. Line items carry a
// name/price snapshot frozen at creation time; they are never re-read from
// the live product records.
type Order struct {
	ID              uuid.UUID       `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	BranchID        uuid.UUID       `gorm:"type:uuid;not null;index" json:"branch_id"`
	Branch          *Branch         `gorm:"foreignKey:BranchID" json:"-"`
	CustomerID      string          `gorm:"type:varchar(128);not null;index" json:"customer_id"`
	Items           []OrderItem     `gorm:"foreignKey:OrderID" json:"items"`
	Subtotal        decimal.Decimal `gorm:"type:decimal(14,2);not null" json:"subtotal"`
	ShippingCost    decimal.Decimal `gorm:"type:decimal(14,2);not null" json:"shipping_cost"`
	Total           decimal.Decimal `gorm:"type:decimal(14,2);not null" json:"total"`
	Status          string          `gorm:"type:varchar(20);not null;default:'pending';index" json:"status"`
	ApprovedBy      *string         `gorm:"type:varchar(128)" json:"approved_by,omitempty"`
	PaymentProofURL string          `gorm:"type:text" json:"payment_proof_url,omitempty"`
	CreatedAt       time.Time       `gorm:"index" json:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at"`
}

// OrderItem is one ordered line with the order-time product snapshot
type OrderItem struct {
	ID           uuid.UUID       `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	OrderID      uuid.UUID       `gorm:"type:uuid;not null;index" json:"order_id"`
	ProductID    uuid.UUID       `gorm:"type:uuid;not null;index" json:"product_id"`
	ProductName  string          `gorm:"type:varchar(255);not null" json:"product_name"`
	Quantity     int             `gorm:"type:int;not null" json:"quantity"`
	PriceAtOrder decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"price_at_order"`
	ImageURL     string          `gorm:"type:text" json:"image_url,omitempty"`
}
