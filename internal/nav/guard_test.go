package nav_test

import (
	"context"
	"encoding/base64"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/opsboard/opsboard-go/internal/credentials"
	"github.com/opsboard/opsboard-go/internal/identity"
	"github.com/opsboard/opsboard-go/internal/nav"
)

func testToken(t *testing.T, exp time.Time) string {
	t.Helper()
	header := base64.RawURLEncoding.EncodeToString([]byte(`{"alg":"HS256","typ":"JWT"}`))
	payload := base64.RawURLEncoding.EncodeToString([]byte(fmt.Sprintf(`{"sub":"admin","exp":%d}`, exp.Unix())))
	return header + "." + payload + ".sig"
}

func routeByName(t *testing.T, name string) nav.Route {
	t.Helper()
	route, ok := nav.NewTable(nav.DefaultRoutes()).Lookup(name)
	require.True(t, ok, "route %s must exist", name)
	return route
}

func signedInStore(t *testing.T, role identity.Role, exp time.Time) (*nav.Guard, *credentials.Store, *credentials.MemoryStorage) {
	t.Helper()
	storage := credentials.NewMemoryStorage()
	store := credentials.NewStore(nil, storage)
	store.SetCredential(context.Background(), credentials.Credential{
		AccessToken:  testToken(t, exp),
		RefreshToken: "R1",
	}, identity.User{ID: 1, Username: "someone", Role: role})
	return nav.NewGuard(nil, store), store, storage
}

func TestUnauthenticatedVisitorIsSentToLogin(t *testing.T) {
	ctx := context.Background()
	storage := credentials.NewMemoryStorage()

	// Stale remnants of an old session linger in storage.
	require.NoError(t, storage.Set(ctx, credentials.KeyAccessToken, "stale"))
	require.NoError(t, storage.Set(ctx, credentials.KeyRefreshToken, "stale"))

	store := credentials.NewStore(nil, storage)
	guard := nav.NewGuard(nil, store)

	decision := guard.Decide(ctx, routeByName(t, nav.RouteUsers))
	assert.False(t, decision.Allowed)
	assert.Equal(t, nav.RouteLogin, decision.RedirectTo)

	for _, key := range []string{credentials.KeyAccessToken, credentials.KeyRefreshToken} {
		val, err := storage.Get(ctx, key)
		require.NoError(t, err)
		assert.Empty(t, val, "stale %s must be removed", key)
	}
}

func TestExpiredTokenCountsAsUnauthenticated(t *testing.T) {
	guard, _, _ := signedInStore(t, identity.RoleAdmin, time.Now().Add(-time.Minute))

	decision := guard.Decide(context.Background(), routeByName(t, nav.RouteDashboard))
	assert.False(t, decision.Allowed)
	assert.Equal(t, nav.RouteLogin, decision.RedirectTo)
}

func TestMalformedTokenCountsAsUnauthenticated(t *testing.T) {
	ctx := context.Background()
	store := credentials.NewStore(nil, credentials.NewMemoryStorage())
	store.SetCredential(ctx, credentials.Credential{AccessToken: "not-a-jwt"},
		identity.User{ID: 1, Username: "someone", Role: identity.RoleUser})

	decision := nav.NewGuard(nil, store).Decide(ctx, routeByName(t, nav.RouteHome))
	assert.Equal(t, nav.RouteLogin, decision.RedirectTo)
}

func TestUnderprivilegedRoleIsSentHome(t *testing.T) {
	guard, store, _ := signedInStore(t, identity.RoleUser, time.Now().Add(time.Hour))

	decision := guard.Decide(context.Background(), routeByName(t, nav.RouteUsers))
	assert.False(t, decision.Allowed)
	assert.Equal(t, nav.RouteHome, decision.RedirectTo, "denied, not a login prompt")
	assert.True(t, store.IsAuthenticated(), "role denial must not clear credentials")
}

func TestRoleMembershipAllowsNavigation(t *testing.T) {
	guard, _, _ := signedInStore(t, identity.RoleManager, time.Now().Add(time.Hour))

	decision := guard.Decide(context.Background(), routeByName(t, nav.RouteUsers))
	assert.True(t, decision.Allowed)

	// MANAGER is not in the roles route's set.
	decision = guard.Decide(context.Background(), routeByName(t, nav.RouteRoles))
	assert.Equal(t, nav.RouteHome, decision.RedirectTo)
}

func TestAuthenticatedVisitorSkipsLoginView(t *testing.T) {
	guard, _, _ := signedInStore(t, identity.RoleUser, time.Now().Add(time.Hour))

	decision := guard.Decide(context.Background(), routeByName(t, nav.RouteLogin))
	assert.False(t, decision.Allowed)
	assert.Equal(t, nav.RouteHome, decision.RedirectTo)
}

func TestUnauthenticatedVisitorMayOpenLogin(t *testing.T) {
	store := credentials.NewStore(nil, credentials.NewMemoryStorage())

	decision := nav.NewGuard(nil, store).Decide(context.Background(), routeByName(t, nav.RouteLogin))
	assert.True(t, decision.Allowed)
}

func TestAuthenticatedVisitorOpensPlainRoute(t *testing.T) {
	guard, _, _ := signedInStore(t, identity.RoleUser, time.Now().Add(time.Hour))

	for _, name := range []string{nav.RouteHome, nav.RouteDashboard, nav.RouteSettings, nav.RouteAbout} {
		decision := guard.Decide(context.Background(), routeByName(t, name))
		assert.True(t, decision.Allowed, "route %s", name)
	}
}
