package repository

import (
	"context"

	"backend/internal/model"
	"backend/pkg/pagination"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type StockMovementRepository interface {
	Record(ctx context.Context, movement *model.StockMovement) error
	ListByProduct(ctx context.Context, branchID, productID uuid.UUID, page, limit int) ([]model.StockMovement, int64, error)
}

type stockMovementRepository struct {
	db *gorm.DB
}

func NewStockMovementRepository(db *gorm.DB) StockMovementRepository {
	return &stockMovementRepository{db: db}
}

func (r *stockMovementRepository) Record(ctx context.Context, movement *model.StockMovement) error {
	return GetDB(ctx, r.db).Create(movement).Error
}

func (r *stockMovementRepository) ListByProduct(ctx context.Context, branchID, productID uuid.UUID, page, limit int) ([]model.StockMovement, int64, error) {
	var movements []model.StockMovement
	var total int64

	db := GetDB(ctx, r.db).Model(&model.StockMovement{}).
		Where("branch_id = ? AND product_id = ?", branchID, productID)
	if err := db.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	params := pagination.Params{Page: page, Limit: limit}
	if err := params.Scope(db.Order("created_at DESC")).Find(&movements).Error; err != nil {
		return nil, 0, err
	}

	return movements, total, nil
}
