package model

import (
	"time"

	"github.com/google/uuid"
)

const (
	ActionCreateOrder        = "CREATE_ORDER"
	ActionUpdateOrderStatus  = "UPDATE_ORDER_STATUS"
	ActionCreateStockRequest = "CREATE_STOCK_REQUEST"
	ActionResolveStockReq    = "RESOLVE_STOCK_REQUEST"
	ActionCreateProduct      = "CREATE_PRODUCT"
	ActionUpdateProduct      = "UPDATE_PRODUCT"
	ActionDeleteProduct      = "DELETE_PRODUCT"
	ActionUploadProductImage = "UPLOAD_PRODUCT_IMAGE"
	ActionCreateBranch       = "CREATE_BRANCH"
	ActionUpdateBranch       = "UPDATE_BRANCH"
)

// AuditLog tracks Who, What, and When for critical system changes.
// UserID is the external principal identifier from the identity provider.
type AuditLog struct {
	ID         uuid.UUID  `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	UserID     string     `gorm:"type:varchar(128);index" json:"user_id"`
	BranchID   *uuid.UUID `gorm:"type:uuid;index" json:"branch_id,omitempty"`
	Action     string     `gorm:"type:varchar(50);not null;index" json:"action"`
	EntityID   string     `gorm:"type:varchar(50);index" json:"entity_id"`
	EntityName string     `gorm:"type:varchar(255)" json:"entity_name,omitempty"`
	Details    string     `gorm:"type:jsonb" json:"details"` // serialized JSON payload of the action
	CreatedAt  time.Time  `gorm:"index" json:"created_at"`
}
