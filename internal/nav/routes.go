package nav

import "github.com/opsboard/opsboard-go/internal/identity"

// Route names known to the console.
const (
	RouteHome        = "home"
	RouteLogin       = "login"
	RouteDashboard   = "dashboard"
	RouteUsers       = "users"
	RouteRoles       = "roles"
	RoutePermissions = "permissions"
	RouteSettings    = "settings"
	RouteAbout       = "about"
)

// Requirement declares what a navigation target demands of the visitor.
type Requirement struct {
	RequiresAuth  bool
	RequiredRoles []identity.Role
}

// Route is a navigable console view and its access requirement.
type Route struct {
	Name        string
	Path        string
	Requirement Requirement
}

// DefaultRoutes returns the console's route table.
func DefaultRoutes() []Route {
	return []Route{
		{Name: RouteHome, Path: "/", Requirement: Requirement{RequiresAuth: true}},
		{Name: RouteLogin, Path: "/login"},
		{Name: RouteDashboard, Path: "/dashboard", Requirement: Requirement{RequiresAuth: true}},
		{Name: RouteUsers, Path: "/users", Requirement: Requirement{
			RequiresAuth:  true,
			RequiredRoles: []identity.Role{identity.RoleAdmin, identity.RoleManager},
		}},
		{Name: RouteRoles, Path: "/roles", Requirement: Requirement{
			RequiresAuth:  true,
			RequiredRoles: []identity.Role{identity.RoleAdmin},
		}},
		{Name: RoutePermissions, Path: "/permissions", Requirement: Requirement{
			RequiresAuth:  true,
			RequiredRoles: []identity.Role{identity.RoleAdmin},
		}},
		{Name: RouteSettings, Path: "/settings", Requirement: Requirement{RequiresAuth: true}},
		{Name: RouteAbout, Path: "/about", Requirement: Requirement{RequiresAuth: true}},
	}
}

// Table indexes routes by name.
type Table map[string]Route

// NewTable builds a Table from a route list.
func NewTable(routes []Route) Table {
	t := make(Table, len(routes))
	for _, r := range routes {
		t[r.Name] = r
	}
	return t
}

// Lookup finds a route by name.
func (t Table) Lookup(name string) (Route, bool) {
	r, ok := t[name]
	return r, ok
}
