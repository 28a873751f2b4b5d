package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"

	"backend/internal/model"
	"backend/internal/policy"
	"backend/internal/repository"
	"backend/pkg/apperror"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"
)

// --- DTOs ---

type CreateStockRequestRequest struct {
	BranchID  string `json:"branch_id" binding:"required,uuid"`
	ProductID string `json:"product_id" binding:"required,uuid"`
	Quantity  int    `json:"quantity" binding:"required,gt=0"`
}

type ResolveStockRequestRequest struct {
	Status string `json:"status" binding:"required"`
}

// ProductSummary is the product snapshot attached to stock request reads
type ProductSummary struct {
	ID           uuid.UUID `json:"id"`
	Name         string    `json:"name"`
	ImageURL     string    `json:"image_url,omitempty"`
	CurrentStock int       `json:"current_stock"`
	MinStock     int       `json:"min_stock"`
}

// StockRequestView is a stock request with its product summary and, for
// cross-branch listings, the branch identity.
type StockRequestView struct {
	model.StockRequest
	BranchName string          `json:"branch_name,omitempty"`
	ProductRef *ProductSummary `json:"product,omitempty"`
}

// --- Interface ---

type StockRequestService interface {
	Create(ctx context.Context, requestedBy string, req CreateStockRequestRequest) (*StockRequestView, error)
	Resolve(ctx context.Context, actor policy.Actor, branchID, requestID uuid.UUID, newStatus string) (*StockRequestView, error)
	GetByID(ctx context.Context, branchID, requestID uuid.UUID) (*StockRequestView, error)
	ListByBranch(ctx context.Context, branchID uuid.UUID, page, limit int) ([]StockRequestView, int64, error)
	ListPending(ctx context.Context, actor policy.Actor) ([]StockRequestView, error)
}

type stockRequestService struct {
	branches  repository.BranchRepository
	products  repository.ProductRepository
	requests  repository.StockRequestRepository
	auditRepo repository.AuditRepository
	ledger    *InventoryLedger
	txManager repository.TransactionManager
	alerts    alertPublisher
}

func NewStockRequestService(
	branches repository.BranchRepository,
	products repository.ProductRepository,
	requests repository.StockRequestRepository,
	auditRepo repository.AuditRepository,
	ledger *InventoryLedger,
	txManager repository.TransactionManager,
	alerts alertPublisher,
) StockRequestService {
	return &stockRequestService{
		branches:  branches,
		products:  products,
		requests:  requests,
		auditRepo: auditRepo,
		ledger:    ledger,
		txManager: txManager,
		alerts:    alerts,
	}
}

// --- Implementation ---

func (s *stockRequestService) Create(ctx context.Context, requestedBy string, req CreateStockRequestRequest) (*StockRequestView, error) {
	branchID, err := uuid.Parse(req.BranchID)
	if err != nil {
		return nil, apperror.Validation("invalid branch id")
	}
	productID, err := uuid.Parse(req.ProductID)
	if err != nil {
		return nil, apperror.Validation("invalid product id")
	}

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

	request := model.StockRequest{
		BranchID:    branchID,
		ProductID:   productID,
		RequestedBy: requestedBy,
		Quantity:    req.Quantity,
		Status:      model.StockRequestPending,
	}

	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		if createErr := s.requests.Create(txCtx, &request); createErr != nil {
			return fmt.Errorf("failed to create stock request: %w", createErr)
		}

		details, _ := json.Marshal(map[string]interface{}{
			"product_id": productID,
			"quantity":   req.Quantity,
		})
		audit := &model.AuditLog{
			UserID:     requestedBy,
			BranchID:   &branchID,
			Action:     model.ActionCreateStockRequest,
			EntityID:   request.ID.String(),
			EntityName: product.Name,
			Details:    string(details),
		}
		if auditErr := s.auditRepo.Log(txCtx, audit); auditErr != nil {
			return fmt.Errorf("failed to write audit log: %w", auditErr)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	view := &StockRequestView{StockRequest: request, ProductRef: summarize(product)}
	return view, nil
}

// Resolve applies the single-use resolution: only a pending request can be
// approved or rejected, and an approval increments the product's stock in
// the same transaction as the status write.
func (s *stockRequestService) Resolve(ctx context.Context, actor policy.Actor, branchID, requestID uuid.UUID, newStatus string) (*StockRequestView, error) {
	if newStatus != model.StockRequestApproved && newStatus != model.StockRequestRejected {
		return nil, apperror.Validation("invalid stock request status: " + newStatus)
	}
	if !policy.CanResolveStockRequest(actor.Role, actor.BranchID, branchID) {
		return nil, apperror.Forbidden("no permission to resolve stock requests in this branch")
	}

	var request *model.StockRequest
	var product *model.Product

	err := s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		if _, findErr := s.branches.FindByID(txCtx, branchID); findErr != nil {
			if errors.Is(findErr, gorm.ErrRecordNotFound) {
				return apperror.NotFound("branch")
			}
			return fmt.Errorf("failed to load branch: %w", findErr)
		}

		var findErr error
		request, findErr = s.requests.FindByIDForUpdate(txCtx, branchID, requestID)
		if findErr != nil {
			if errors.Is(findErr, gorm.ErrRecordNotFound) {
				return apperror.NotFound("stock request")
			}
			return fmt.Errorf("failed to load stock request: %w", findErr)
		}

		if request.Status != model.StockRequestPending {
			return apperror.AlreadyResolved(request.Status)
		}

		product, findErr = s.products.FindByIDForUpdate(txCtx, branchID, request.ProductID)
		if findErr != nil {
			if errors.Is(findErr, gorm.ErrRecordNotFound) {
				return apperror.NotFound("product")
			}
			return fmt.Errorf("failed to load product: %w", findErr)
		}

		request.Status = newStatus
		request.ApprovedBy = &actor.ID
		if updateErr := s.requests.Update(txCtx, request); updateErr != nil {
			return fmt.Errorf("failed to update stock request: %w", updateErr)
		}

		if newStatus == model.StockRequestApproved {
			if incErr := s.ledger.Increment(txCtx, product, request.Quantity, model.MovementStockRequest, request.ID); incErr != nil {
				return incErr
			}
		}

		details, _ := json.Marshal(map[string]interface{}{
			"status":   newStatus,
			"quantity": request.Quantity,
		})
		audit := &model.AuditLog{
			UserID:     actor.ID,
			BranchID:   &branchID,
			Action:     model.ActionResolveStockReq,
			EntityID:   request.ID.String(),
			EntityName: product.Name,
			Details:    string(details),
		}
		if auditErr := s.auditRepo.Log(txCtx, audit); auditErr != nil {
			return fmt.Errorf("failed to write audit log: %w", auditErr)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	// A partial replenishment can still leave the product below its
	// threshold; surface that to connected staff.
	if s.alerts != nil {
		if alert := AlertFor(product); alert != nil {
			s.alerts.Publish(alert)
		}
	}

	view := &StockRequestView{StockRequest: *request, ProductRef: summarize(product)}
	return view, nil
}

func (s *stockRequestService) GetByID(ctx context.Context, branchID, requestID uuid.UUID) (*StockRequestView, error) {
	if _, err := s.branches.FindByID(ctx, branchID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.NotFound("branch")
		}
		return nil, fmt.Errorf("failed to load branch: %w", err)
	}

	request, err := s.requests.FindByID(ctx, branchID, requestID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.NotFound("stock request")
		}
		return nil, fmt.Errorf("failed to load stock request: %w", err)
	}

	view := &StockRequestView{StockRequest: *request, ProductRef: summarize(request.Product)}
	return view, nil
}

func (s *stockRequestService) ListByBranch(ctx context.Context, branchID uuid.UUID, page, limit int) ([]StockRequestView, int64, error) {
	if _, err := s.branches.FindByID(ctx, branchID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, 0, apperror.NotFound("branch")
		}
		return nil, 0, fmt.Errorf("failed to load branch: %w", err)
	}

	requests, total, err := s.requests.ListByBranch(ctx, branchID, page, limit)
	if err != nil {
		return nil, 0, err
	}

	views := make([]StockRequestView, 0, len(requests))
	for _, request := range requests {
		views = append(views, StockRequestView{StockRequest: request, ProductRef: summarize(request.Product)})
	}
	return views, total, nil
}

// ListPending scopes to the head's own branch, or scatter-gathers every
// branch for the global roles, annotating each request with its branch and
// merging newest first.
func (s *stockRequestService) ListPending(ctx context.Context, actor policy.Actor) ([]StockRequestView, error) {
	if actor.Role == policy.RoleHead {
		requests, err := s.requests.ListPendingByBranch(ctx, actor.BranchID)
		if err != nil {
			return nil, err
		}
		views := make([]StockRequestView, 0, len(requests))
		for _, request := range requests {
			views = append(views, StockRequestView{StockRequest: request, ProductRef: summarize(request.Product)})
		}
		return views, nil
	}

	branches, err := s.branches.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list branches: %w", err)
	}

	perBranch := make([][]StockRequestView, len(branches))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(branchFanOutLimit)

	for i, branch := range branches {
		g.Go(func() error {
			requests, listErr := s.requests.ListPendingByBranch(gctx, branch.ID)
			if listErr != nil {
				return fmt.Errorf("failed to list pending requests for branch %s: %w", branch.ID, listErr)
			}
			views := make([]StockRequestView, 0, len(requests))
			for _, request := range requests {
				views = append(views, StockRequestView{
					StockRequest: request,
					BranchName:   branch.Name,
					ProductRef:   summarize(request.Product),
				})
			}
			perBranch[i] = views
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	var all []StockRequestView
	for _, views := range perBranch {
		all = append(all, views...)
	}
	sort.Slice(all, func(i, j int) bool {
		return all[i].CreatedAt.After(all[j].CreatedAt)
	})
	return all, nil
}

func summarize(p *model.Product) *ProductSummary {
	if p == nil {
		return nil
	}
	return &ProductSummary{
		ID:           p.ID,
		Name:         p.Name,
		ImageURL:     p.ImageURL,
		CurrentStock: p.Stock,
		MinStock:     p.MinStock,
	}
}
