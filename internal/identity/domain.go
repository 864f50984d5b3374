package identity

import (
	"errors"
	"fmt"
	"strings"
)

// Role is the coarse privilege tier assigned to a user.
type Role string

// Known roles, ordered by privilege.
const (
	RoleAdmin   Role = "ADMIN"
	RoleManager Role = "MANAGER"
	RoleUser    Role = "USER"
)

// ErrUnknownRole indicates a role string outside the closed set.
var ErrUnknownRole = errors.New("identity: unknown role")

// ParseRole maps a server-provided role string onto the closed enumeration.
func ParseRole(raw string) (Role, error) {
	switch Role(strings.TrimSpace(raw)) {
	case RoleAdmin:
		return RoleAdmin, nil
	case RoleManager:
		return RoleManager, nil
	case RoleUser:
		return RoleUser, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownRole, raw)
	}
}

// Valid reports whether the role belongs to the closed enumeration.
func (r Role) Valid() bool {
	switch r {
	case RoleAdmin, RoleManager, RoleUser:
		return true
	}
	return false
}

// GrantStatus marks a permission grant as usable or suspended.
type GrantStatus string

// Grant statuses.
const (
	GrantActive   GrantStatus = "ACTIVE"
	GrantInactive GrantStatus = "INACTIVE"
)

// PermissionGrant is a fine-grained capability assigned to a user.
// Codes are unique within a user's grant set.
type PermissionGrant struct {
	Code   string      `json:"code" validate:"required"`
	Status GrantStatus `json:"status" validate:"required,oneof=ACTIVE INACTIVE"`
}

// User is the identity the server reports for the signed-in account.
type User struct {
	ID          int64             `json:"id"`
	Username    string            `json:"username" validate:"required"`
	FullName    string            `json:"name"`
	Role        Role              `json:"role" validate:"required"`
	Permissions []PermissionGrant `json:"permissions" validate:"dive"`
}
