package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"

	"backend/internal/imagestore"
	"backend/internal/model"
	"backend/internal/policy"
	"backend/internal/repository"
	"backend/pkg/apperror"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// --- DTOs ---

type CreateProductRequest struct {
	BranchID    string          `json:"branch_id" binding:"required,uuid"`
	Name        string          `json:"name" binding:"required"`
	Description string          `json:"description"`
	Category    string          `json:"category"`
	Price       decimal.Decimal `json:"price"`
	WeightGrams int             `json:"weight_grams" binding:"gte=0"`
	Stock       int             `json:"stock" binding:"gte=0"`
	MinStock    int             `json:"min_stock" binding:"gte=0"`
	ImageURL    string          `json:"image_url"`
}

type UpdateProductRequest struct {
	Name        string          `json:"name" binding:"required"`
	Description string          `json:"description"`
	Category    string          `json:"category"`
	Price       decimal.Decimal `json:"price"`
	WeightGrams int             `json:"weight_grams" binding:"gte=0"`
	MinStock    int             `json:"min_stock" binding:"gte=0"`
	ImageURL    string          `json:"image_url"`
}

// --- Interface ---

type ProductService interface {
	ListByBranch(ctx context.Context, branchID uuid.UUID, page, limit int, search string) ([]model.Product, int64, error)
	GetByID(ctx context.Context, branchID, productID uuid.UUID) (*model.Product, error)
	Create(ctx context.Context, actor policy.Actor, req CreateProductRequest) (*model.Product, error)
	Update(ctx context.Context, actor policy.Actor, branchID, productID uuid.UUID, req UpdateProductRequest) (*model.Product, error)
	Delete(ctx context.Context, actor policy.Actor, branchID, productID uuid.UUID) error
	UploadImage(ctx context.Context, actor policy.Actor, branchID, productID uuid.UUID, fileName string, data []byte) (*model.Product, error)
	ListMovements(ctx context.Context, branchID, productID uuid.UUID, page, limit int) ([]model.StockMovement, int64, error)
}

type productService struct {
	branches  repository.BranchRepository
	products  repository.ProductRepository
	movements repository.StockMovementRepository
	auditRepo repository.AuditRepository
	txManager repository.TransactionManager
	images    imagestore.Client
}

func NewProductService(
	branches repository.BranchRepository,
	products repository.ProductRepository,
	movements repository.StockMovementRepository,
	auditRepo repository.AuditRepository,
	txManager repository.TransactionManager,
	images imagestore.Client,
) ProductService {
	return &productService{
		branches:  branches,
		products:  products,
		movements: movements,
		auditRepo: auditRepo,
		txManager: txManager,
		images:    images,
	}
}

// --- Implementation ---

func (s *productService) ListByBranch(ctx context.Context, branchID uuid.UUID, page, limit int, search string) ([]model.Product, int64, error) {
	if _, err := s.branches.FindByID(ctx, branchID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, 0, apperror.NotFound("branch")
		}
		return nil, 0, fmt.Errorf("failed to load branch: %w", err)
	}
	return s.products.ListByBranch(ctx, branchID, page, limit, search)
}

func (s *productService) GetByID(ctx context.Context, branchID, productID uuid.UUID) (*model.Product, error) {
	if _, err := s.branches.FindByID(ctx, branchID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.NotFound("branch")
		}
		return nil, fmt.Errorf("failed to load branch: %w", err)
	}

	product, err := s.products.FindByID(ctx, branchID, productID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.NotFound("product")
		}
		return nil, fmt.Errorf("failed to load product: %w", err)
	}
	return product, nil
}

func (s *productService) Create(ctx context.Context, actor policy.Actor, req CreateProductRequest) (*model.Product, error) {
	branchID, err := uuid.Parse(req.BranchID)
	if err != nil {
		return nil, apperror.Validation("invalid branch id")
	}
	if err := s.checkCatalogAccess(actor, branchID); err != nil {
		return nil, err
	}
	if req.Price.IsNegative() {
		return nil, apperror.Validation("price must not be negative")
	}

	if _, err := s.branches.FindByID(ctx, branchID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.NotFound("branch")
		}
		return nil, fmt.Errorf("failed to load branch: %w", err)
	}

	product := model.Product{
		BranchID:    branchID,
		Name:        req.Name,
		Description: req.Description,
		Category:    req.Category,
		Price:       req.Price,
		WeightGrams: req.WeightGrams,
		Stock:       req.Stock,
		MinStock:    req.MinStock,
		Status:      model.StockStatus(req.Stock, req.MinStock),
		ImageURL:    req.ImageURL,
	}

	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		if createErr := s.products.Create(txCtx, &product); createErr != nil {
			return fmt.Errorf("failed to create product: %w", createErr)
		}
		return s.audit(txCtx, actor, branchID, model.ActionCreateProduct, &product, req)
	})
	if err != nil {
		return nil, err
	}
	return &product, nil
}

func (s *productService) Update(ctx context.Context, actor policy.Actor, branchID, productID uuid.UUID, req UpdateProductRequest) (*model.Product, error) {
	if err := s.checkCatalogAccess(actor, branchID); err != nil {
		return nil, err
	}
	if req.Price.IsNegative() {
		return nil, apperror.Validation("price must not be negative")
	}

	var product *model.Product
	err := s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		var findErr error
		product, findErr = s.products.FindByIDForUpdate(txCtx, branchID, productID)
		if findErr != nil {
			if errors.Is(findErr, gorm.ErrRecordNotFound) {
				return apperror.NotFound("product")
			}
			return fmt.Errorf("failed to load product: %w", findErr)
		}

		product.Name = req.Name
		product.Description = req.Description
		product.Category = req.Category
		product.Price = req.Price
		product.WeightGrams = req.WeightGrams
		product.MinStock = req.MinStock
		if req.ImageURL != "" {
			product.ImageURL = req.ImageURL
		}
		// MinStock may have moved the threshold; stock itself is only
		// ever touched by the ledger.
		product.RecalcStatus()

		if updateErr := s.products.Update(txCtx, product); updateErr != nil {
			return fmt.Errorf("failed to update product: %w", updateErr)
		}
		return s.audit(txCtx, actor, branchID, model.ActionUpdateProduct, product, req)
	})
	if err != nil {
		return nil, err
	}
	return product, nil
}

func (s *productService) Delete(ctx context.Context, actor policy.Actor, branchID, productID uuid.UUID) error {
	if err := s.checkCatalogAccess(actor, branchID); err != nil {
		return err
	}

	return s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		product, findErr := s.products.FindByID(txCtx, branchID, productID)
		if findErr != nil {
			if errors.Is(findErr, gorm.ErrRecordNotFound) {
				return apperror.NotFound("product")
			}
			return fmt.Errorf("failed to load product: %w", findErr)
		}

		if deleteErr := s.products.Delete(txCtx, branchID, productID); deleteErr != nil {
			return fmt.Errorf("failed to delete product: %w", deleteErr)
		}
		return s.audit(txCtx, actor, branchID, model.ActionDeleteProduct, product, nil)
	})
}

// UploadImage relays the binary to the image store, records the returned URL
// and file id, and drops the replaced file best-effort.
func (s *productService) UploadImage(ctx context.Context, actor policy.Actor, branchID, productID uuid.UUID, fileName string, data []byte) (*model.Product, error) {
	if err := s.checkCatalogAccess(actor, branchID); err != nil {
		return nil, err
	}
	if s.images == nil {
		return nil, apperror.New(503, "image storage is not configured")
	}

	product, err := s.products.FindByID(ctx, branchID, productID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.NotFound("product")
		}
		return nil, fmt.Errorf("failed to load product: %w", err)
	}

	result, err := s.images.Upload(ctx, fileName, "products/"+branchID.String(), data)
	if err != nil {
		return nil, apperror.Wrap(502, "failed to upload image", err)
	}

	previousFileID := product.ImageFileID
	product.ImageURL = result.URL
	product.ImageFileID = result.FileID

	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		if updateErr := s.products.Update(txCtx, product); updateErr != nil {
			return fmt.Errorf("failed to save product image: %w", updateErr)
		}
		return s.audit(txCtx, actor, branchID, model.ActionUploadProductImage, product, map[string]string{"url": result.URL})
	})
	if err != nil {
		return nil, err
	}

	if previousFileID != "" {
		if deleteErr := s.images.Delete(ctx, previousFileID); deleteErr != nil {
			log.Printf("failed to delete replaced image %s: %v", previousFileID, deleteErr)
		}
	}

	return product, nil
}

// ListMovements returns the paginated ledger history for one product
func (s *productService) ListMovements(ctx context.Context, branchID, productID uuid.UUID, page, limit int) ([]model.StockMovement, int64, error) {
	if _, err := s.products.FindByID(ctx, branchID, productID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, 0, apperror.NotFound("product")
		}
		return nil, 0, fmt.Errorf("failed to load product: %w", err)
	}
	return s.movements.ListByProduct(ctx, branchID, productID, page, limit)
}

// checkCatalogAccess mirrors the branch rule for catalog writes: heads only
// manage their own branch, owner/super manage any.
func (s *productService) checkCatalogAccess(actor policy.Actor, branchID uuid.UUID) error {
	if policy.IsGlobal(actor.Role) {
		return nil
	}
	if actor.Role == policy.RoleHead && actor.BranchID == branchID {
		return nil
	}
	return apperror.Forbidden("no permission to manage products in this branch")
}

func (s *productService) audit(txCtx context.Context, actor policy.Actor, branchID uuid.UUID, action string, product *model.Product, payload interface{}) error {
	details, _ := json.Marshal(payload)
	entry := &model.AuditLog{
		UserID:     actor.ID,
		BranchID:   &branchID,
		Action:     action,
		EntityID:   product.ID.String(),
		EntityName: product.Name,
		Details:    string(details),
	}
	if err := s.auditRepo.Log(txCtx, entry); err != nil {
		return fmt.Errorf("failed to write audit log: %w", err)
	}
	return nil
}
