package policy

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestIsGlobal(t *testing.T) {
	assert.True(t, IsGlobal(RoleOwner))
	assert.True(t, IsGlobal(RoleSuper))
	assert.False(t, IsGlobal(RoleAdmin))
	assert.False(t, IsGlobal(RoleHead))
	assert.False(t, IsGlobal(RoleCustomer))
}

func TestIsStaff(t *testing.T) {
	assert.True(t, IsStaff(RoleAdmin))
	assert.True(t, IsStaff(RoleHead))
	assert.True(t, IsStaff(RoleOwner))
	assert.True(t, IsStaff(RoleSuper))
	assert.False(t, IsStaff(RoleCustomer))
	assert.False(t, IsStaff("manager"))
}

func TestCanTransitionOrder(t *testing.T) {
	own := uuid.New()
	other := uuid.New()

	assert.True(t, CanTransitionOrder(RoleOwner, uuid.Nil, other))
	assert.True(t, CanTransitionOrder(RoleSuper, uuid.Nil, other))

	assert.True(t, CanTransitionOrder(RoleAdmin, own, own))
	assert.False(t, CanTransitionOrder(RoleAdmin, own, other))
	assert.True(t, CanTransitionOrder(RoleHead, own, own))
	assert.False(t, CanTransitionOrder(RoleHead, own, other))

	assert.False(t, CanTransitionOrder(RoleCustomer, own, own))
}

func TestCanResolveStockRequest(t *testing.T) {
	own := uuid.New()
	other := uuid.New()

	assert.True(t, CanResolveStockRequest(RoleOwner, uuid.Nil, other))
	assert.True(t, CanResolveStockRequest(RoleSuper, uuid.Nil, other))

	assert.True(t, CanResolveStockRequest(RoleHead, own, own))
	assert.False(t, CanResolveStockRequest(RoleHead, own, other))

	// Admins raise requests but never resolve them, even in their own branch
	assert.False(t, CanResolveStockRequest(RoleAdmin, own, own))
	assert.False(t, CanResolveStockRequest(RoleCustomer, own, own))
}
