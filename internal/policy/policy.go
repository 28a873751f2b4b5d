// Package policy holds the role/branch authorization predicates consulted by
// the order and stock-request workflows before any state transition. The
// predicates are pure: identity itself is owned by the external provider and
// arrives here as verified claims.
package policy

import "github.com/google/uuid"

// Staff tiers. admin and head are branch-scoped; owner and super act on any
// branch; customer may only create orders and read its own.
const (
	RoleCustomer = "customer"
	RoleAdmin    = "admin"
	RoleHead     = "head"
	RoleOwner    = "owner"
	RoleSuper    = "super"
)

// Actor is the verified principal a request acts as
type Actor struct {
	ID       string
	Role     string
	BranchID uuid.UUID // zero for global roles and customers
}

// IsGlobal reports whether the role may act on any branch
func IsGlobal(role string) bool {
	return role == RoleOwner || role == RoleSuper
}

// IsStaff reports whether the role belongs to the staff hierarchy
func IsStaff(role string) bool {
	switch role {
	case RoleAdmin, RoleHead, RoleOwner, RoleSuper:
		return true
	}
	return false
}

// CanTransitionOrder decides whether an actor may change order status within
// targetBranch. Branch-scoped staff only act within their own branch.
func CanTransitionOrder(actorRole string, actorBranch, targetBranch uuid.UUID) bool {
	switch actorRole {
	case RoleOwner, RoleSuper:
		return true
	case RoleAdmin, RoleHead:
		return actorBranch == targetBranch
	}
	return false
}

// CanResolveStockRequest decides whether an actor may approve or reject a
// stock request within targetBranch. Admins raise requests but never resolve
// them.
func CanResolveStockRequest(actorRole string, actorBranch, targetBranch uuid.UUID) bool {
	switch actorRole {
	case RoleOwner, RoleSuper:
		return true
	case RoleHead:
		return actorBranch == targetBranch
	}
	return false
}
