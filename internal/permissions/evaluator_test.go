package permissions_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/opsboard/opsboard-go/internal/identity"
	"github.com/opsboard/opsboard-go/internal/permissions"
)

type stubSource struct {
	user identity.User
}

func (s *stubSource) User() identity.User { return s.user }

func evaluatorFor(role identity.Role, grants ...identity.PermissionGrant) *permissions.Evaluator {
	return permissions.NewEvaluator(&stubSource{user: identity.User{
		Username:    "someone",
		Role:        role,
		Permissions: grants,
	}})
}

func TestAdminBypassesPermissionChecks(t *testing.T) {
	eval := evaluatorFor(identity.RoleAdmin)

	for _, code := range []string{"user:view", "role:delete", "system:backup", "anything:at-all"} {
		assert.True(t, eval.HasPermission(code), "ADMIN must pass %s with an empty grant list", code)
	}
}

func TestHasPermissionRequiresActiveGrant(t *testing.T) {
	eval := evaluatorFor(identity.RoleUser,
		identity.PermissionGrant{Code: "user:view", Status: identity.GrantActive},
		identity.PermissionGrant{Code: "user:edit", Status: identity.GrantInactive},
	)

	assert.True(t, eval.HasPermission("user:view"))
	assert.False(t, eval.HasPermission("user:edit"), "inactive grants do not count")
	assert.False(t, eval.HasPermission("user:delete"))
	assert.False(t, eval.HasPermission("USER:VIEW"), "matching is case-exact")
	assert.True(t, eval.HasPermission(""), "empty code is a no-op guard clause")
}

func TestQuantifiers(t *testing.T) {
	eval := evaluatorFor(identity.RoleUser,
		identity.PermissionGrant{Code: "user:view", Status: identity.GrantActive},
	)

	assert.True(t, eval.HasAnyPermission())
	assert.True(t, eval.HasAllPermissions())
	assert.True(t, eval.HasAnyPermission("user:delete", "user:view"))
	assert.False(t, eval.HasAnyPermission("user:delete", "user:edit"))
	assert.True(t, eval.HasAllPermissions("user:view"))
	assert.False(t, eval.HasAllPermissions("user:view", "user:delete"))
}

func TestRoleChecks(t *testing.T) {
	eval := evaluatorFor(identity.RoleManager)

	assert.True(t, eval.HasRole(identity.RoleManager))
	assert.False(t, eval.HasRole(identity.RoleAdmin))
	assert.True(t, eval.HasRole(""), "absent role requirement is vacuously true")
	assert.True(t, eval.HasAnyRole())
	assert.True(t, eval.HasAnyRole(identity.RoleAdmin, identity.RoleManager))
	assert.False(t, eval.HasAnyRole(identity.RoleAdmin, identity.RoleUser))
}

func TestDerivedRoleFlags(t *testing.T) {
	admin := evaluatorFor(identity.RoleAdmin)
	assert.True(t, admin.IsAdmin())
	assert.True(t, admin.IsManager(), "ADMIN counts as manager for viewing purposes")
	assert.False(t, admin.IsUser())

	manager := evaluatorFor(identity.RoleManager)
	assert.False(t, manager.IsAdmin())
	assert.True(t, manager.IsManager())
	assert.False(t, manager.IsUser())

	user := evaluatorFor(identity.RoleUser)
	assert.False(t, user.IsAdmin())
	assert.False(t, user.IsManager())
	assert.True(t, user.IsUser())
}

func TestManagerCapabilities(t *testing.T) {
	eval := evaluatorFor(identity.RoleManager,
		identity.PermissionGrant{Code: "user:export", Status: identity.GrantActive},
	)

	// Role shortcut grants export; nothing grants role deletion.
	assert.True(t, eval.Can(permissions.CapExportUsers))
	assert.False(t, eval.Can(permissions.CapDeleteRoles))

	// MANAGER also views users by shortcut, but cannot create them.
	assert.True(t, eval.Can(permissions.CapViewUsers))
	assert.False(t, eval.Can(permissions.CapCreateUsers))
}

func TestPermissionGrantUnlocksCapability(t *testing.T) {
	eval := evaluatorFor(identity.RoleUser,
		identity.PermissionGrant{Code: "user:create", Status: identity.GrantActive},
		identity.PermissionGrant{Code: "system:settings", Status: identity.GrantActive},
	)

	assert.True(t, eval.Can(permissions.CapCreateUsers))
	assert.True(t, eval.Can(permissions.CapViewSystem))
	assert.False(t, eval.Can(permissions.CapMonitorSystem))
}

func TestSystemCapabilitiesHaveNoRoleShortcut(t *testing.T) {
	manager := evaluatorFor(identity.RoleManager)
	assert.False(t, manager.Can(permissions.CapViewSystem))

	// ADMIN still passes via the permission check's bypass.
	admin := evaluatorFor(identity.RoleAdmin)
	assert.True(t, admin.Can(permissions.CapViewSystem))
}

func TestUnknownCapabilityDenied(t *testing.T) {
	eval := evaluatorFor(identity.RoleAdmin)
	assert.False(t, eval.Can(permissions.Capability("nonsense")))
}
