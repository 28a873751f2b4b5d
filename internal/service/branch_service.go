package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"backend/internal/model"
	"backend/internal/policy"
	"backend/internal/repository"
	"backend/pkg/apperror"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type BranchRequest struct {
	Name       string `json:"name" binding:"required"`
	Address    string `json:"address"`
	City       string `json:"city"`
	Province   string `json:"province"`
	Phone      string `json:"phone"`
	OriginCode string `json:"origin_code"`
}

type BranchService interface {
	List(ctx context.Context) ([]model.Branch, error)
	GetByID(ctx context.Context, branchID uuid.UUID) (*model.Branch, error)
	Create(ctx context.Context, actor policy.Actor, req BranchRequest) (*model.Branch, error)
	Update(ctx context.Context, actor policy.Actor, branchID uuid.UUID, req BranchRequest) (*model.Branch, error)
}

type branchService struct {
	branches  repository.BranchRepository
	auditRepo repository.AuditRepository
	txManager repository.TransactionManager
}

func NewBranchService(
	branches repository.BranchRepository,
	auditRepo repository.AuditRepository,
	txManager repository.TransactionManager,
) BranchService {
	return &branchService{branches: branches, auditRepo: auditRepo, txManager: txManager}
}

func (s *branchService) List(ctx context.Context) ([]model.Branch, error) {
	return s.branches.List(ctx)
}

func (s *branchService) GetByID(ctx context.Context, branchID uuid.UUID) (*model.Branch, error) {
	branch, err := s.branches.FindByID(ctx, branchID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.NotFound("branch")
		}
		return nil, fmt.Errorf("failed to load branch: %w", err)
	}
	return branch, nil
}

func (s *branchService) Create(ctx context.Context, actor policy.Actor, req BranchRequest) (*model.Branch, error) {
	if !policy.IsGlobal(actor.Role) {
		return nil, apperror.Forbidden("no permission to manage branches")
	}

	branch := model.Branch{
		Name:       req.Name,
		Address:    req.Address,
		City:       req.City,
		Province:   req.Province,
		Phone:      req.Phone,
		OriginCode: req.OriginCode,
	}

	err := s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		if createErr := s.branches.Create(txCtx, &branch); createErr != nil {
			return fmt.Errorf("failed to create branch: %w", createErr)
		}
		return s.audit(txCtx, actor, model.ActionCreateBranch, &branch, req)
	})
	if err != nil {
		return nil, err
	}
	return &branch, nil
}

func (s *branchService) Update(ctx context.Context, actor policy.Actor, branchID uuid.UUID, req BranchRequest) (*model.Branch, error) {
	if !policy.IsGlobal(actor.Role) {
		return nil, apperror.Forbidden("no permission to manage branches")
	}

	var branch *model.Branch
	err := s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		var findErr error
		branch, findErr = s.branches.FindByID(txCtx, branchID)
		if findErr != nil {
			if errors.Is(findErr, gorm.ErrRecordNotFound) {
				return apperror.NotFound("branch")
			}
			return fmt.Errorf("failed to load branch: %w", findErr)
		}

		branch.Name = req.Name
		branch.Address = req.Address
		branch.City = req.City
		branch.Province = req.Province
		branch.Phone = req.Phone
		branch.OriginCode = req.OriginCode

		if updateErr := s.branches.Update(txCtx, branch); updateErr != nil {
			return fmt.Errorf("failed to update branch: %w", updateErr)
		}
		return s.audit(txCtx, actor, model.ActionUpdateBranch, branch, req)
	})
	if err != nil {
		return nil, err
	}
	return branch, nil
}

func (s *branchService) audit(txCtx context.Context, actor policy.Actor, action string, branch *model.Branch, payload interface{}) error {
	details, _ := json.Marshal(payload)
	entry := &model.AuditLog{
		UserID:     actor.ID,
		BranchID:   &branch.ID,
		Action:     action,
		EntityID:   branch.ID.String(),
		EntityName: branch.Name,
		Details:    string(details),
	}
	if err := s.auditRepo.Log(txCtx, entry); err != nil {
		return fmt.Errorf("failed to write audit log: %w", err)
	}
	return nil
}
