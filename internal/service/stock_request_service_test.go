package service

import (
	"context"
	"testing"

	"backend/internal/model"
	"backend/internal/policy"
	"backend/pkg/apperror"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStockRequestService_Create(t *testing.T) {
	e := newEnv()
	branch := e.addBranch("Central")
	coffee := e.addProduct(branch.ID, "Coffee", 50, 2, 5)

	view, err := e.stockRequestService.Create(context.Background(), "admin-1", CreateStockRequestRequest{
		BranchID:  branch.ID.String(),
		ProductID: coffee.ID.String(),
		Quantity:  20,
	})

	require.NoError(t, err)
	assert.Equal(t, model.StockRequestPending, view.Status)
	assert.Equal(t, "admin-1", view.RequestedBy)
	require.NotNil(t, view.ProductRef)
	assert.Equal(t, "Coffee", view.ProductRef.Name)
	assert.Equal(t, 2, view.ProductRef.CurrentStock)

	// Filing a request never touches stock
	assert.Equal(t, 2, e.store.products[coffee.ID].Stock)
	assert.Empty(t, e.store.movements)
}

func TestStockRequestService_Resolve_ApproveIncrementsStock(t *testing.T) {
	e := newEnv()
	branch := e.addBranch("Central")
	coffee := e.addProduct(branch.ID, "Coffee", 50, 2, 5)

	view, err := e.stockRequestService.Create(context.Background(), "admin-1", CreateStockRequestRequest{
		BranchID:  branch.ID.String(),
		ProductID: coffee.ID.String(),
		Quantity:  20,
	})
	require.NoError(t, err)

	head := policy.Actor{ID: "head-1", Role: policy.RoleHead, BranchID: branch.ID}
	resolved, err := e.stockRequestService.Resolve(context.Background(), head, branch.ID, view.ID, model.StockRequestApproved)

	require.NoError(t, err)
	assert.Equal(t, model.StockRequestApproved, resolved.Status)
	require.NotNil(t, resolved.ApprovedBy)
	assert.Equal(t, "head-1", *resolved.ApprovedBy)

	product := e.store.products[coffee.ID]
	assert.Equal(t, 22, product.Stock)
	assert.Equal(t, model.ProductAvailable, product.Status)

	require.Len(t, e.store.movements, 1)
	assert.Equal(t, model.MovementStockRequest, e.store.movements[0].ReferenceType)
	assert.Equal(t, 20, e.store.movements[0].QuantityChanged)
	assert.Equal(t, 22, e.store.movements[0].StockAfter)
}

func TestStockRequestService_Resolve_SingleUse(t *testing.T) {
	e := newEnv()
	branch := e.addBranch("Central")
	coffee := e.addProduct(branch.ID, "Coffee", 50, 2, 5)

	view, err := e.stockRequestService.Create(context.Background(), "admin-1", CreateStockRequestRequest{
		BranchID:  branch.ID.String(),
		ProductID: coffee.ID.String(),
		Quantity:  20,
	})
	require.NoError(t, err)

	head := policy.Actor{ID: "head-1", Role: policy.RoleHead, BranchID: branch.ID}
	_, err = e.stockRequestService.Resolve(context.Background(), head, branch.ID, view.ID, model.StockRequestApproved)
	require.NoError(t, err)

	// A second resolution of any kind must fail without touching stock
	_, err = e.stockRequestService.Resolve(context.Background(), head, branch.ID, view.ID, model.StockRequestApproved)
	require.Error(t, err)
	appErr := apperror.FromError(err)
	require.NotNil(t, appErr)
	assert.Equal(t, 400, appErr.Status)
	assert.Contains(t, appErr.Message, model.StockRequestApproved)

	_, err = e.stockRequestService.Resolve(context.Background(), head, branch.ID, view.ID, model.StockRequestRejected)
	require.Error(t, err)

	assert.Equal(t, 22, e.store.products[coffee.ID].Stock)
	assert.Len(t, e.store.movements, 1)
}

func TestStockRequestService_Resolve_RejectLeavesStockAlone(t *testing.T) {
	e := newEnv()
	branch := e.addBranch("Central")
	coffee := e.addProduct(branch.ID, "Coffee", 50, 2, 5)

	view, err := e.stockRequestService.Create(context.Background(), "admin-1", CreateStockRequestRequest{
		BranchID:  branch.ID.String(),
		ProductID: coffee.ID.String(),
		Quantity:  20,
	})
	require.NoError(t, err)

	head := policy.Actor{ID: "head-1", Role: policy.RoleHead, BranchID: branch.ID}
	resolved, err := e.stockRequestService.Resolve(context.Background(), head, branch.ID, view.ID, model.StockRequestRejected)

	require.NoError(t, err)
	assert.Equal(t, model.StockRequestRejected, resolved.Status)
	assert.Equal(t, 2, e.store.products[coffee.ID].Stock)
	assert.Empty(t, e.store.movements)
}

func TestStockRequestService_Resolve_Permissions(t *testing.T) {
	e := newEnv()
	central := e.addBranch("Central")
	north := e.addBranch("North")
	coffee := e.addProduct(central.ID, "Coffee", 50, 2, 5)

	view, err := e.stockRequestService.Create(context.Background(), "admin-1", CreateStockRequestRequest{
		BranchID:  central.ID.String(),
		ProductID: coffee.ID.String(),
		Quantity:  20,
	})
	require.NoError(t, err)

	// Admins raise requests but never resolve them
	admin := policy.Actor{ID: "admin-1", Role: policy.RoleAdmin, BranchID: central.ID}
	_, err = e.stockRequestService.Resolve(context.Background(), admin, central.ID, view.ID, model.StockRequestApproved)
	require.Error(t, err)
	assert.Equal(t, 403, apperror.FromError(err).Status)

	// Heads act only on their own branch
	otherHead := policy.Actor{ID: "head-2", Role: policy.RoleHead, BranchID: north.ID}
	_, err = e.stockRequestService.Resolve(context.Background(), otherHead, central.ID, view.ID, model.StockRequestApproved)
	require.Error(t, err)
	assert.Equal(t, 403, apperror.FromError(err).Status)

	// Super acts anywhere
	super := policy.Actor{ID: "super-1", Role: policy.RoleSuper}
	_, err = e.stockRequestService.Resolve(context.Background(), super, central.ID, view.ID, model.StockRequestApproved)
	require.NoError(t, err)
}

func TestStockRequestService_Resolve_RejectsUnknownStatus(t *testing.T) {
	e := newEnv()
	branch := e.addBranch("Central")
	coffee := e.addProduct(branch.ID, "Coffee", 50, 2, 5)

	view, err := e.stockRequestService.Create(context.Background(), "admin-1", CreateStockRequestRequest{
		BranchID:  branch.ID.String(),
		ProductID: coffee.ID.String(),
		Quantity:  20,
	})
	require.NoError(t, err)

	head := policy.Actor{ID: "head-1", Role: policy.RoleHead, BranchID: branch.ID}
	_, err = e.stockRequestService.Resolve(context.Background(), head, branch.ID, view.ID, "pending")

	require.Error(t, err)
	assert.Equal(t, 400, apperror.FromError(err).Status)
}

func TestStockRequestService_ListPending_ScopesByRole(t *testing.T) {
	e := newEnv()
	central := e.addBranch("Central")
	north := e.addBranch("North")
	coffee := e.addProduct(central.ID, "Coffee", 50, 2, 5)
	tea := e.addProduct(north.ID, "Tea", 30, 1, 5)

	_, err := e.stockRequestService.Create(context.Background(), "admin-1", CreateStockRequestRequest{
		BranchID:  central.ID.String(),
		ProductID: coffee.ID.String(),
		Quantity:  10,
	})
	require.NoError(t, err)
	_, err = e.stockRequestService.Create(context.Background(), "admin-2", CreateStockRequestRequest{
		BranchID:  north.ID.String(),
		ProductID: tea.ID.String(),
		Quantity:  10,
	})
	require.NoError(t, err)

	// Head sees only their own branch
	head := policy.Actor{ID: "head-1", Role: policy.RoleHead, BranchID: central.ID}
	own, err := e.stockRequestService.ListPending(context.Background(), head)
	require.NoError(t, err)
	require.Len(t, own, 1)
	assert.Equal(t, central.ID, own[0].BranchID)

	// Owner sees every branch, annotated with branch names
	owner := policy.Actor{ID: "owner-1", Role: policy.RoleOwner}
	all, err := e.stockRequestService.ListPending(context.Background(), owner)
	require.NoError(t, err)
	require.Len(t, all, 2)
	names := []string{all[0].BranchName, all[1].BranchName}
	assert.Contains(t, names, "Central")
	assert.Contains(t, names, "North")
}
