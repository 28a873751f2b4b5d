package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Product stock status values, derived from (stock, minStock)
const (
	ProductAvailable  = "available"
	ProductLowStock   = "low_stock"
	ProductOutOfStock = "out_of_stock"
)

// Product is an item in one branch's catalog. Stock and Status are mutated
// only by the inventory ledger.
type Product struct {
	ID          uuid.UUID       `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	BranchID    uuid.UUID       `gorm:"type:uuid;not null;index" json:"branch_id"`
	Branch      *Branch         `gorm:"foreignKey:BranchID" json:"-"`
	Name        string          `gorm:"type:varchar(255);not null" json:"name"`
	Description string          `gorm:"type:text" json:"description"`
	Category    string          `gorm:"type:varchar(100);index" json:"category"`
	Price       decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"price"`
	WeightGrams int             `gorm:"type:int;default:0" json:"weight_grams"` // parcel weight for shipping quotes
	Stock       int             `gorm:"type:int;not null;default:0" json:"stock"`
	MinStock    int             `gorm:"type:int;not null;default:0" json:"min_stock"`
	Status      string          `gorm:"type:varchar(20);not null" json:"status"`
	ImageURL    string          `gorm:"type:text" json:"image_url,omitempty"`
	ImageFileID string          `gorm:"type:varchar(255)" json:"-"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
	DeletedAt   gorm.DeletedAt  `gorm:"index" json:"-"`
}

// StockStatus derives the product status from stock and minStock:
// stock == 0 -> out_of_stock; 0 < stock <= minStock -> low_stock;
// otherwise available.
func StockStatus(stock, minStock int) string {
	switch {
	case stock == 0:
		return ProductOutOfStock
	case stock <= minStock:
		return ProductLowStock
	default:
		return ProductAvailable
	}
}

// RecalcStatus refreshes the derived status after a stock change
func (p *Product) RecalcStatus() {
	p.Status = StockStatus(p.Stock, p.MinStock)
}
