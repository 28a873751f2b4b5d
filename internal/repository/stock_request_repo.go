package repository

import (
	"context"

	"backend/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type StockRequestRepository interface {
	Create(ctx context.Context, req *model.StockRequest) error
	Update(ctx context.Context, req *model.StockRequest) error
	FindByID(ctx context.Context, branchID, id uuid.UUID) (*model.StockRequest, error)
	// FindByIDForUpdate row-locks the request; the single-use resolution
	// guard depends on the status read under this lock.
	FindByIDForUpdate(ctx context.Context, branchID, id uuid.UUID) (*model.StockRequest, error)
	ListByBranch(ctx context.Context, branchID uuid.UUID, page, limit int) ([]model.StockRequest, int64, error)
	ListPendingByBranch(ctx context.Context, branchID uuid.UUID) ([]model.StockRequest, error)
}

type stockRequestRepository struct {
	db *gorm.DB
}

func NewStockRequestRepository(db *gorm.DB) StockRequestRepository {
	return &stockRequestRepository{db: db}
}

func (r *stockRequestRepository) Create(ctx context.Context, req *model.StockRequest) error {
	return GetDB(ctx, r.db).Create(req).Error
}

func (r *stockRequestRepository) Update(ctx context.Context, req *model.StockRequest) error {
	return GetDB(ctx, r.db).Save(req).Error
}

func (r *stockRequestRepository) FindByID(ctx context.Context, branchID, id uuid.UUID) (*model.StockRequest, error) {
	var req model.StockRequest
	if err := GetDB(ctx, r.db).
		Preload("Product").
		Where("branch_id = ?", branchID).
		First(&req, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &req, nil
}

func (r *stockRequestRepository) FindByIDForUpdate(ctx context.Context, branchID, id uuid.UUID) (*model.StockRequest, error) {
	var req model.StockRequest
	if err := GetDB(ctx, r.db).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("branch_id = ? AND id = ?", branchID, id).
		First(&req).Error; err != nil {
		return nil, err
	}
	return &req, nil
}

func (r *stockRequestRepository) ListByBranch(ctx context.Context, branchID uuid.UUID, page, limit int) ([]model.StockRequest, int64, error) {
	var requests []model.StockRequest
	var total int64

	db := GetDB(ctx, r.db).Model(&model.StockRequest{}).Where("branch_id = ?", branchID)
	if err := db.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * limit
	if err := GetDB(ctx, r.db).
		Preload("Product").
		Where("branch_id = ?", branchID).
		Order("created_at DESC").
		Offset(offset).Limit(limit).
		Find(&requests).Error; err != nil {
		return nil, 0, err
	}

	return requests, total, nil
}

func (r *stockRequestRepository) ListPendingByBranch(ctx context.Context, branchID uuid.UUID) ([]model.StockRequest, error) {
	var requests []model.StockRequest
	if err := GetDB(ctx, r.db).
		Preload("Product").
		Where("branch_id = ? AND status = ?", branchID, model.StockRequestPending).
		Order("created_at DESC").
		Find(&requests).Error; err != nil {
		return nil, err
	}
	return requests, nil
}
