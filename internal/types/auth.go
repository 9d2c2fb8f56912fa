package types

import (
	"fmt"
)

// UserRole mirrors the roles stored on the users table
type UserRole int

const (
	UserRoleDefault           UserRole = 0
	UserRoleOrganizationAdmin UserRole = 1
	UserRoleAdmin             UserRole = 2
)

func (r UserRole) String() string {
	switch r {
	case UserRoleDefault:
		return "default"
	case UserRoleOrganizationAdmin:
		return "organization_admin"
	case UserRoleAdmin:
		return "admin"
	default:
		return fmt.Sprintf("role(%d)", int(r))
	}
}

// AuthContext is the caller identity every core operation is checked against.
// It is built by the auth middleware from the user record, never from the token alone.
type AuthContext struct {
	UserID    string
	CompanyID string
	Role      UserRole
	IsActive  bool
}

// IsAdmin reports whether the caller is a system administrator
func (a AuthContext) IsAdmin() bool {
	return a.Role == UserRoleAdmin
}

// HasRole reports whether the caller holds one of roles
func (a AuthContext) HasRole(roles ...UserRole) bool {
	for _, r := range roles {
		if a.Role == r {
			return true
		}
	}
	return false
}

// CanAccessCompany reports whether records of companyID are visible to the caller
func (a AuthContext) CanAccessCompany(companyID string) bool {
	return a.IsAdmin() || a.CompanyID == companyID
}
