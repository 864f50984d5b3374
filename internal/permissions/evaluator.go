package permissions

import "github.com/opsboard/opsboard-go/internal/identity"

// IdentitySource provides the identity snapshot the evaluator reads.
// credentials.Store satisfies it.
type IdentitySource interface {
	User() identity.User
}

// Evaluator answers role and permission questions over the current
// identity. It holds no state of its own; every call re-reads the source.
type Evaluator struct {
	source IdentitySource
}

// NewEvaluator constructs an Evaluator over the given identity source.
func NewEvaluator(source IdentitySource) *Evaluator {
	return &Evaluator{source: source}
}

// HasPermission reports whether the user may exercise the given code.
// An empty code always passes. ADMIN passes unconditionally; otherwise a
// grant must match the code exactly and be ACTIVE.
func (e *Evaluator) HasPermission(code string) bool {
	if code == "" {
		return true
	}
	user := e.source.User()
	if user.Role == identity.RoleAdmin {
		return true
	}
	for _, grant := range user.Permissions {
		if grant.Code == code && grant.Status == identity.GrantActive {
			return true
		}
	}
	return false
}

// HasAnyPermission reports whether at least one code is granted.
// An empty list is vacuously true.
func (e *Evaluator) HasAnyPermission(codes ...string) bool {
	if len(codes) == 0 {
		return true
	}
	for _, code := range codes {
		if e.HasPermission(code) {
			return true
		}
	}
	return false
}

// HasAllPermissions reports whether every code is granted.
// An empty list is vacuously true.
func (e *Evaluator) HasAllPermissions(codes ...string) bool {
	for _, code := range codes {
		if !e.HasPermission(code) {
			return false
		}
	}
	return true
}

// HasRole reports exact role equality. An empty role is vacuously true.
func (e *Evaluator) HasRole(role identity.Role) bool {
	if role == "" {
		return true
	}
	return e.source.User().Role == role
}

// HasAnyRole reports membership in the given role set.
// An empty set is vacuously true.
func (e *Evaluator) HasAnyRole(roles ...identity.Role) bool {
	if len(roles) == 0 {
		return true
	}
	current := e.source.User().Role
	for _, role := range roles {
		if current == role {
			return true
		}
	}
	return false
}

// IsAdmin reports whether the current role is ADMIN.
func (e *Evaluator) IsAdmin() bool {
	return e.source.User().Role == identity.RoleAdmin
}

// IsManager reports whether the current role is MANAGER or ADMIN.
func (e *Evaluator) IsManager() bool {
	role := e.source.User().Role
	return role == identity.RoleAdmin || role == identity.RoleManager
}

// IsUser reports whether the current role is exactly USER.
func (e *Evaluator) IsUser() bool {
	return e.source.User().Role == identity.RoleUser
}
