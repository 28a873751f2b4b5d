package model

import (
	"time"

	"github.com/google/uuid"
)

// Stock movement reference types
const (
	MovementOrderCreate  = "ORDER_CREATE"
	MovementOrderCancel  = "ORDER_CANCEL"
	MovementStockRequest = "STOCK_REQUEST"
)

// StockMovement records every stock delta the ledger applies, with the
// resulting level, so inventory history can be reconstructed per product.
// Rows are written in the same transaction as the delta itself.
type StockMovement struct {
	ID              uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	BranchID        uuid.UUID `gorm:"type:uuid;not null;index" json:"branch_id"`
	ProductID       uuid.UUID `gorm:"type:uuid;not null;index" json:"product_id"`
	ReferenceType   string    `gorm:"type:varchar(20);not null" json:"reference_type"` // ORDER_CREATE, ORDER_CANCEL, STOCK_REQUEST
	ReferenceID     uuid.UUID `gorm:"type:uuid;not null;index" json:"reference_id"`
	QuantityChanged int       `gorm:"type:int;not null" json:"quantity_changed"`
	StockAfter      int       `gorm:"type:int;not null" json:"stock_after"`
	CreatedAt       time.Time `json:"created_at"`
}
