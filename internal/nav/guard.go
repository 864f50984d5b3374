package nav

import (
	"context"
	"log/slog"
	"sync"

	"github.com/opsboard/opsboard-go/internal/credentials"
)

// Navigator tracks the current view and moves between views. Implementations
// must not block; the guard decides synchronously.
type Navigator interface {
	Current() string
	Go(name string)
}

// Decision is the guard's verdict on a navigation attempt. When Allowed is
// false, RedirectTo names the view to land on instead.
type Decision struct {
	Allowed    bool
	RedirectTo string
}

// Guard gates every navigation attempt against the credential store. It
// performs no network I/O and never returns an error; every input maps to
// an allow or a redirect.
type Guard struct {
	logger *slog.Logger
	store  *credentials.Store
}

// NewGuard constructs a Guard.
func NewGuard(logger *slog.Logger, store *credentials.Store) *Guard {
	if logger == nil {
		logger = slog.Default()
	}
	return &Guard{logger: logger, store: store}
}

// Decide evaluates the target's requirement against current auth state.
// Cases are checked in order, first match wins:
//  1. auth required, not authenticated: clear stale persisted state, go to login
//  2. auth required, role not in the required set: go home (denied, not a login prompt)
//  3. already authenticated visiting login: go home
//  4. allow
func (g *Guard) Decide(ctx context.Context, target Route) Decision {
	authenticated := g.store.IsAuthenticated()

	if target.Requirement.RequiresAuth && !authenticated {
		g.store.Clear(ctx)
		return Decision{RedirectTo: RouteLogin}
	}

	if target.Requirement.RequiresAuth && len(target.Requirement.RequiredRoles) > 0 {
		role := g.store.User().Role
		allowed := false
		for _, required := range target.Requirement.RequiredRoles {
			if role == required {
				allowed = true
				break
			}
		}
		if !allowed {
			g.logger.Warn("navigation denied",
				slog.String("route", target.Name),
				slog.String("role", string(role)))
			return Decision{RedirectTo: RouteHome}
		}
	}

	if target.Name == RouteLogin && authenticated {
		return Decision{RedirectTo: RouteHome}
	}

	return Decision{Allowed: true}
}

// History is a minimal Navigator remembering only the current view.
type History struct {
	mu      sync.RWMutex
	current string
}

// NewHistory constructs a History starting at the given view.
func NewHistory(start string) *History {
	return &History{current: start}
}

// Current returns the current view name.
func (h *History) Current() string {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.current
}

// Go moves to the named view.
func (h *History) Go(name string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.current = name
}
