package permissions

import (
	"slices"

	"github.com/opsboard/opsboard-go/internal/identity"
)

// Capability names a console action gated by role or permission grant.
type Capability string

// User management capabilities.
const (
	CapViewUsers        Capability = "users.view"
	CapCreateUsers      Capability = "users.create"
	CapEditUsers        Capability = "users.edit"
	CapDeleteUsers      Capability = "users.delete"
	CapImportUsers      Capability = "users.import"
	CapExportUsers      Capability = "users.export"
	CapChangeUserStatus Capability = "users.status"
	CapResetPassword    Capability = "users.password"
)

// Role management capabilities.
const (
	CapViewRoles   Capability = "roles.view"
	CapCreateRoles Capability = "roles.create"
	CapEditRoles   Capability = "roles.edit"
	CapDeleteRoles Capability = "roles.delete"
	CapAssignRoles Capability = "roles.assign"
)

// Permission management capabilities.
const (
	CapViewPermissions   Capability = "permissions.view"
	CapCreatePermissions Capability = "permissions.create"
	CapEditPermissions   Capability = "permissions.edit"
	CapDeletePermissions Capability = "permissions.delete"
)

// System management capabilities.
const (
	CapViewSystem    Capability = "system.view"
	CapMonitorSystem Capability = "system.monitor"
	CapBackupSystem  Capability = "system.backup"
)

// rule combines a role shortcut with the permission code that also grants
// the capability. Either side passing is enough.
type rule struct {
	roles []identity.Role
	code  string
}

var capabilityRules = map[Capability]rule{
	CapViewUsers:        {roles: []identity.Role{identity.RoleAdmin, identity.RoleManager}, code: "user:view"},
	CapCreateUsers:      {roles: []identity.Role{identity.RoleAdmin}, code: "user:create"},
	CapEditUsers:        {roles: []identity.Role{identity.RoleAdmin}, code: "user:edit"},
	CapDeleteUsers:      {roles: []identity.Role{identity.RoleAdmin}, code: "user:delete"},
	CapImportUsers:      {roles: []identity.Role{identity.RoleAdmin}, code: "user:import"},
	CapExportUsers:      {roles: []identity.Role{identity.RoleAdmin, identity.RoleManager}, code: "user:export"},
	CapChangeUserStatus: {roles: []identity.Role{identity.RoleAdmin}, code: "user:status"},
	CapResetPassword:    {roles: []identity.Role{identity.RoleAdmin}, code: "user:password"},

	CapViewRoles:   {roles: []identity.Role{identity.RoleAdmin}, code: "role:view"},
	CapCreateRoles: {roles: []identity.Role{identity.RoleAdmin}, code: "role:create"},
	CapEditRoles:   {roles: []identity.Role{identity.RoleAdmin}, code: "role:edit"},
	CapDeleteRoles: {roles: []identity.Role{identity.RoleAdmin}, code: "role:delete"},
	CapAssignRoles: {roles: []identity.Role{identity.RoleAdmin}, code: "role:assign"},

	CapViewPermissions:   {roles: []identity.Role{identity.RoleAdmin}, code: "permission:view"},
	CapCreatePermissions: {roles: []identity.Role{identity.RoleAdmin}, code: "permission:create"},
	CapEditPermissions:   {roles: []identity.Role{identity.RoleAdmin}, code: "permission:edit"},
	CapDeletePermissions: {roles: []identity.Role{identity.RoleAdmin}, code: "permission:delete"},

	// System capabilities carry no role shortcut; ADMIN still passes
	// through the permission check's bypass.
	CapViewSystem:    {code: "system:settings"},
	CapMonitorSystem: {code: "system:monitor"},
	CapBackupSystem:  {code: "system:backup"},
}

// Can reports whether the current identity holds the capability, either by
// role shortcut or by permission grant. Unknown capabilities are denied.
func (e *Evaluator) Can(c Capability) bool {
	r, ok := capabilityRules[c]
	if !ok {
		return false
	}
	current := e.source.User().Role
	for _, role := range r.roles {
		if current == role {
			return true
		}
	}
	return e.HasPermission(r.code)
}

// Capabilities lists every capability the current identity holds, sorted
// by name.
func (e *Evaluator) Capabilities() []Capability {
	out := make([]Capability, 0, len(capabilityRules))
	for c := range capabilityRules {
		if e.Can(c) {
			out = append(out, c)
		}
	}
	slices.Sort(out)
	return out
}
