// Package auth covers authentication (JWT access/refresh tokens) and
// authorization (the role policy) for the service.
package auth

// Role values stored on user rows.
const (
	RoleOwner       = 1
	RoleAdmin       = 2
	RoleStorekeeper = 4
)

// RoleName returns a readable label for a role value.
func RoleName(role int) string {
	switch role {
	case RoleOwner:
		return "owner"
	case RoleAdmin:
		return "admin"
	case RoleStorekeeper:
		return "storekeeper"
	default:
		return "unknown"
	}
}

// IsValidRole reports whether role is one of the known role values.
func IsValidRole(role int) bool {
	return role == RoleOwner || role == RoleAdmin || role == RoleStorekeeper
}

// Action is something an actor does to a target account.
type Action string

const (
	ActionCreate Action = "create"
	ActionUpdate Action = "update"
	ActionDelete Action = "delete"
)

// grant names one permitted (actor role, target role, action) combination.
// The whole user-administration policy is this table; handlers never encode
// role comparisons themselves.
type grant struct {
	actor  int
	target int
	action Action
}

var grants = map[grant]bool{}

func allow(actor, target int, actions ...Action) {
	for _, a := range actions {
		grants[grant{actor, target, a}] = true
	}
}

func init() {
	// Owners manage everyone, including other owners.
	for _, target := range []int{RoleOwner, RoleAdmin, RoleStorekeeper} {
		allow(RoleOwner, target, ActionCreate, ActionUpdate, ActionDelete)
	}
	// Admins manage non-owners.
	for _, target := range []int{RoleAdmin, RoleStorekeeper} {
		allow(RoleAdmin, target, ActionCreate, ActionUpdate, ActionDelete)
	}
}

// Allows reports whether an actor of actorRole may perform action on an
// account of targetRole.
func Allows(actorRole, targetRole int, action Action) bool {
	return grants[grant{actorRole, targetRole, action}]
}

// AllowsSelf reports whether an actor may perform action on their own
// account regardless of role. Self-service covers updates only; accounts
// cannot delete themselves.
func AllowsSelf(action Action) bool {
	return action == ActionUpdate
}
