package model

import (
	"time"

	"github.com/google/uuid"
)

// StockRequest status values. approved and rejected are terminal: a request
// is resolved exactly once.
const (
	StockRequestPending  = "pending"
	StockRequestApproved = "approved"
	StockRequestRejected = "rejected"
)

// StockRequest is an internal replenishment request raised by branch staff.
// On approval the target product's stock is increased by Quantity in the
// same transaction as the status write.
type StockRequest struct {
	ID          uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	BranchID    uuid.UUID `gorm:"type:uuid;not null;index" json:"branch_id"`
	Branch      *Branch   `gorm:"foreignKey:BranchID" json:"-"`
	ProductID   uuid.UUID `gorm:"type:uuid;not null;index" json:"product_id"`
	Product     *Product  `gorm:"foreignKey:ProductID" json:"-"`
	RequestedBy string    `gorm:"type:varchar(128);not null" json:"requested_by"`
	Quantity    int       `gorm:"type:int;not null" json:"quantity"`
	Status      string    `gorm:"type:varchar(20);not null;default:'pending';index" json:"status"`
	ApprovedBy  *string   `gorm:"type:varchar(128)" json:"approved_by,omitempty"`
	CreatedAt   time.Time `gorm:"index" json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}
