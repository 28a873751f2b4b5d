package service

import (
	"context"
	"fmt"

	"backend/internal/model"
	"backend/internal/repository"
	"backend/pkg/apperror"

	"github.com/google/uuid"
)

// InventoryLedger applies atomic stock deltas to products. Both operations
// expect a row-locked product and must run inside the same transaction as
// the order or stock-request state change they accompany: stock adjustment
// and status change are one atomic unit, never two independent writes.
type InventoryLedger struct {
	products  repository.ProductRepository
	movements repository.StockMovementRepository
}

func NewInventoryLedger(products repository.ProductRepository, movements repository.StockMovementRepository) *InventoryLedger {
	return &InventoryLedger{products: products, movements: movements}
}

// Decrement applies stock -= quantity, failing with InsufficientStock when
// the product cannot cover it, and recomputes the derived status.
func (l *InventoryLedger) Decrement(txCtx context.Context, product *model.Product, quantity int, refType string, refID uuid.UUID) error {
	if product.Stock < quantity {
		return apperror.InsufficientStock(product.Name)
	}
	product.Stock -= quantity
	product.RecalcStatus()
	return l.write(txCtx, product, -quantity, refType, refID)
}

// Increment applies stock += quantity unconditionally (reversals and
// replenishments never fail on capacity) and recomputes the derived status.
func (l *InventoryLedger) Increment(txCtx context.Context, product *model.Product, quantity int, refType string, refID uuid.UUID) error {
	product.Stock += quantity
	product.RecalcStatus()
	return l.write(txCtx, product, quantity, refType, refID)
}

func (l *InventoryLedger) write(txCtx context.Context, product *model.Product, delta int, refType string, refID uuid.UUID) error {
	if err := l.products.Update(txCtx, product); err != nil {
		return fmt.Errorf("failed to update stock for product %s: %w", product.Name, err)
	}

	movement := &model.StockMovement{
		BranchID:        product.BranchID,
		ProductID:       product.ID,
		ReferenceType:   refType,
		ReferenceID:     refID,
		QuantityChanged: delta,
		StockAfter:      product.Stock,
	}
	if err := l.movements.Record(txCtx, movement); err != nil {
		return fmt.Errorf("failed to record stock movement: %w", err)
	}

	return nil
}

// StockAlert is broadcast over the websocket hub after commit when a product
// ends a transaction low on stock or out of stock.
type StockAlert struct {
	Event     string    `json:"event"` // stock.low or stock.out
	BranchID  uuid.UUID `json:"branch_id"`
	ProductID uuid.UUID `json:"product_id"`
	Name      string    `json:"name"`
	Stock     int       `json:"stock"`
	MinStock  int       `json:"min_stock"`
}

// AlertFor returns the stock alert a product's current state warrants, or
// nil when it is healthy.
func AlertFor(p *model.Product) *StockAlert {
	var event string
	switch p.Status {
	case model.ProductOutOfStock:
		event = "stock.out"
	case model.ProductLowStock:
		event = "stock.low"
	default:
		return nil
	}
	return &StockAlert{
		Event:     event,
		BranchID:  p.BranchID,
		ProductID: p.ID,
		Name:      p.Name,
		Stock:     p.Stock,
		MinStock:  p.MinStock,
	}
}
