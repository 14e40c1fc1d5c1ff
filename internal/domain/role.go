package domain

import (
	"fmt"
	"strings"
)

// UserRole enumerates what a marketplace account is allowed to do.
type UserRole string

const (
	RoleSeller UserRole = "SELLER"
	RoleBidder UserRole = "BIDDER"
	RoleAdmin  UserRole = "ADMIN"
)

// roleBuyerAlias is accepted on input for accounts created before bidders were renamed.
const roleBuyerAlias = "BUYER"

// ParseUserRole converts a role name to a UserRole.
func ParseUserRole(raw string) (UserRole, error) {
	switch normalized := strings.ToUpper(strings.TrimSpace(raw)); normalized {
	case string(RoleSeller):
		return RoleSeller, nil
	case string(RoleBidder), roleBuyerAlias:
		return RoleBidder, nil
	case string(RoleAdmin):
		return RoleAdmin, nil
	default:
		return "", fmt.Errorf("unknown role %q", raw)
	}
}

// Valid reports whether r is one of the declared roles.
func (r UserRole) Valid() bool {
	switch r {
	case RoleSeller, RoleBidder, RoleAdmin:
		return true
	default:
		return false
	}
}

// CanSell reports whether the role may register product listings.
func (r UserRole) CanSell() bool {
	switch r {
	case RoleSeller:
		return true
	case RoleBidder, RoleAdmin:
		return false
	default:
		return false
	}
}

// SelfRegistrable reports whether an account with this role may be opened without an admin.
func (r UserRole) SelfRegistrable() bool {
	switch r {
	case RoleSeller, RoleBidder:
		return true
	case RoleAdmin:
		return false
	default:
		return false
	}
}

func (r UserRole) String() string {
	return string(r)
}

// UserStatus represents lifecycle states of an account.
type UserStatus string

const (
	UserStatusActive    UserStatus = "ACTIVE"
	UserStatusSuspended UserStatus = "SUSPENDED"
	UserStatusWithdrawn UserStatus = "WITHDRAWN"
)

// ParseUserStatus converts a status name to a UserStatus.
func ParseUserStatus(raw string) (UserStatus, error) {
	status := UserStatus(strings.ToUpper(strings.TrimSpace(raw)))
	if !status.Valid() {
		return "", fmt.Errorf("unknown status %q", raw)
	}
	return status, nil
}

// Valid reports whether s is one of the declared statuses.
func (s UserStatus) Valid() bool {
	switch s {
	case UserStatusActive, UserStatusSuspended, UserStatusWithdrawn:
		return true
	default:
		return false
	}
}

// CanAct reports whether an account in this status may perform marketplace actions.
func (s UserStatus) CanAct() bool {
	switch s {
	case UserStatusActive:
		return true
	case UserStatusSuspended, UserStatusWithdrawn:
		return false
	default:
		return false
	}
}

func (s UserStatus) String() string {
	return string(s)
}
