package repository

import (
	"context"
	"time"

	"backend/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type OrderRepository interface {
	Create(ctx context.Context, order *model.Order) error
	Update(ctx context.Context, order *model.Order) error
	FindByID(ctx context.Context, branchID, id uuid.UUID) (*model.Order, error)
	// FindByIDForUpdate row-locks the order so concurrent status changes
	// serialize; reversal decisions depend on the status read here.
	FindByIDForUpdate(ctx context.Context, branchID, id uuid.UUID) (*model.Order, error)
	ListByBranch(ctx context.Context, branchID uuid.UUID, page, limit int) ([]model.Order, int64, error)
	ListByCustomer(ctx context.Context, branchID uuid.UUID, customerID string) ([]model.Order, error)
	// ListRevenue returns revenue-bearing orders (paid/shipped/completed)
	// within the optional creation-time range.
	ListRevenue(ctx context.Context, branchID uuid.UUID, start, end *time.Time) ([]model.Order, error)
}

type orderRepository struct {
	db *gorm.DB
}

func NewOrderRepository(db *gorm.DB) OrderRepository {
	return &orderRepository{db: db}
}

func (r *orderRepository) Create(ctx context.Context, order *model.Order) error {
	return GetDB(ctx, r.db).Create(order).Error
}

func (r *orderRepository) Update(ctx context.Context, order *model.Order) error {
	return GetDB(ctx, r.db).Save(order).Error
}

func (r *orderRepository) FindByID(ctx context.Context, branchID, id uuid.UUID) (*model.Order, error) {
	var order model.Order
	if err := GetDB(ctx, r.db).
		Preload("Items").
		Where("branch_id = ?", branchID).
		First(&order, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &order, nil
}

func (r *orderRepository) FindByIDForUpdate(ctx context.Context, branchID, id uuid.UUID) (*model.Order, error) {
	var order model.Order
	if err := GetDB(ctx, r.db).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("branch_id = ? AND id = ?", branchID, id).
		First(&order).Error; err != nil {
		return nil, err
	}
	if err := GetDB(ctx, r.db).
		Where("order_id = ?", order.ID).
		Find(&order.Items).Error; err != nil {
		return nil, err
	}
	return &order, nil
}

func (r *orderRepository) ListByBranch(ctx context.Context, branchID uuid.UUID, page, limit int) ([]model.Order, int64, error) {
	var orders []model.Order
	var total int64

	db := GetDB(ctx, r.db).Model(&model.Order{}).Where("branch_id = ?", branchID)
	if err := db.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * limit
	if err := GetDB(ctx, r.db).
		Preload("Items").
		Where("branch_id = ?", branchID).
		Order("created_at DESC").
		Offset(offset).Limit(limit).
		Find(&orders).Error; err != nil {
		return nil, 0, err
	}

	return orders, total, nil
}

func (r *orderRepository) ListByCustomer(ctx context.Context, branchID uuid.UUID, customerID string) ([]model.Order, error) {
	var orders []model.Order
	if err := GetDB(ctx, r.db).
		Preload("Items").
		Where("branch_id = ? AND customer_id = ?", branchID, customerID).
		Order("created_at DESC").
		Find(&orders).Error; err != nil {
		return nil, err
	}
	return orders, nil
}

func (r *orderRepository) ListRevenue(ctx context.Context, branchID uuid.UUID, start, end *time.Time) ([]model.Order, error) {
	db := GetDB(ctx, r.db).
		Preload("Items").
		Where("branch_id = ?", branchID).
		Where("status IN ?", []string{model.OrderPaid, model.OrderShipped, model.OrderCompleted})

	if start != nil {
		db = db.Where("created_at >= ?", *start)
	}
	if end != nil {
		db = db.Where("created_at <= ?", *end)
	}

	var orders []model.Order
	if err := db.Order("created_at DESC").Find(&orders).Error; err != nil {
		return nil, err
	}
	return orders, nil
}
