// Package rbac gates client actions on the current session's role.
//
// All checks are pure functions of the session value; the role is fixed when
// the session is created at login and never re-read from the server.
package rbac

import (
	"fmt"

	"github.com/NicolasHaas/badgeboard/pkg/model"
)

// Permission identifies a gated action.
type Permission int

const (
	PermAwardBadge Permission = iota + 1
	PermRemoveAward
	PermCreateBadge
	PermEditBadge
	PermDeleteBadge
	PermManageAccounts
)

// permissionMatrix maps roles to their allowed permissions.
var permissionMatrix = map[model.Role]map[Permission]bool{
	model.RoleAdmin: {
		PermAwardBadge:     true,
		PermRemoveAward:    true,
		PermCreateBadge:    true,
		PermEditBadge:      true,
		PermDeleteBadge:    true,
		PermManageAccounts: true,
	},
	model.RoleUser: {
		PermAwardBadge:  true,
		PermRemoveAward: true,
		PermCreateBadge: true,
	},
}

// Capabilities summarises what the holder of a session may see.
type Capabilities struct {
	Authenticated bool
	IsAdmin       bool
}

// CapabilitiesOf derives capabilities from s. A nil session is anonymous.
func CapabilitiesOf(s *model.Session) Capabilities {
	return Capabilities{
		Authenticated: s != nil,
		IsAdmin:       s != nil && s.Role == model.RoleAdmin,
	}
}

// RequireAdmin returns model.ErrForbidden unless s is an admin session.
func RequireAdmin(s *model.Session) error {
	if !CapabilitiesOf(s).IsAdmin {
		return model.ErrForbidden
	}
	return nil
}

// HasPermission checks if a role has a specific permission.
func HasPermission(role model.Role, perm Permission) bool {
	perms, ok := permissionMatrix[role]
	if !ok {
		return false
	}
	return perms[perm]
}

// Require returns model.ErrNotLoggedIn for a nil session and a wrapped
// model.ErrForbidden when the role lacks perm.
func Require(s *model.Session, perm Permission) error {
	if s == nil {
		return model.ErrNotLoggedIn
	}
	if HasPermission(s.Role, perm) {
		return nil
	}
	return fmt.Errorf("%w: %s requires a higher role", model.ErrForbidden, perm)
}

func (p Permission) String() string {
	switch p {
	case PermAwardBadge:
		return "award_badge"
	case PermRemoveAward:
		return "remove_award"
	case PermCreateBadge:
		return "create_badge"
	case PermEditBadge:
		return "edit_badge"
	case PermDeleteBadge:
		return "delete_badge"
	case PermManageAccounts:
		return "manage_accounts"
	default:
		return "unknown"
	}
}
