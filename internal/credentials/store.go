package credentials

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"
	"time"

	"github.com/opsboard/opsboard-go/internal/identity"
)

// Persisted storage keys. The literal "true" is the only truthy encoding
// recognized for isLoggedIn.
const (
	KeyIsLoggedIn   = "isLoggedIn"
	KeyAccessToken  = "accessToken"
	KeyRefreshToken = "refreshToken"
	KeyUserRole     = "userRole"
	KeyUserName     = "userName"
	KeyUsername     = "username"
	KeyPermissions  = "userPermissions"
)

var persistedKeys = []string{
	KeyIsLoggedIn,
	KeyAccessToken,
	KeyRefreshToken,
	KeyUserRole,
	KeyUserName,
	KeyUsername,
	KeyPermissions,
}

// Credential is the token pair presented to the API.
type Credential struct {
	AccessToken  string
	RefreshToken string
}

// Store is the process-wide source of truth for sign-in state. In-memory
// state is authoritative for the current process; every mutation also
// commits a best-effort snapshot to durable storage so a later restart can
// Restore it.
type Store struct {
	logger  *slog.Logger
	storage Storage

	mu        sync.RWMutex
	loggedIn  bool
	cred      Credential
	user      identity.User
	observers []func()
}

// NewStore constructs a Store over the given durable storage.
func NewStore(logger *slog.Logger, storage Storage) *Store {
	if logger == nil {
		logger = slog.Default()
	}
	return &Store{logger: logger, storage: storage}
}

// OnChange registers an observer invoked after the store is cleared, so
// decoupled consumers (prompt, status line) can react without polling.
func (s *Store) OnChange(fn func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.observers = append(s.observers, fn)
}

// SetCredential records a completed login: flag, both tokens and identity
// move together so the logged-in flag is never held without a token.
// Persistence failures are swallowed; in-memory state stays authoritative.
func (s *Store) SetCredential(ctx context.Context, cred Credential, user identity.User) {
	s.mu.Lock()
	s.loggedIn = true
	s.cred = cred
	s.user = user
	s.user.Permissions = identity.NormalizeGrants(user.Permissions)
	s.mu.Unlock()

	s.persist(ctx, KeyIsLoggedIn, "true")
	s.persist(ctx, KeyAccessToken, cred.AccessToken)
	s.persist(ctx, KeyRefreshToken, cred.RefreshToken)
	s.persistIdentity(ctx, user)
}

// SetAccessToken swaps in a freshly minted access token after a refresh.
// The refresh token is left untouched.
func (s *Store) SetAccessToken(ctx context.Context, token string) {
	s.mu.Lock()
	s.cred.AccessToken = token
	s.mu.Unlock()

	s.persist(ctx, KeyAccessToken, token)
}

// SetUser replaces identity fields after a profile re-fetch.
func (s *Store) SetUser(ctx context.Context, user identity.User) {
	s.mu.Lock()
	s.user = user
	s.user.Permissions = identity.NormalizeGrants(user.Permissions)
	s.mu.Unlock()

	s.persistIdentity(ctx, user)
}

// Clear resets every field, removes the persisted snapshot and notifies
// observers. Clearing an already-empty store has no observable effect.
func (s *Store) Clear(ctx context.Context) {
	s.mu.Lock()
	wasEmpty := !s.loggedIn && s.cred.AccessToken == "" && s.cred.RefreshToken == ""
	s.loggedIn = false
	s.cred = Credential{}
	s.user = identity.User{}
	observers := s.observers
	s.mu.Unlock()

	if wasEmpty {
		return
	}
	if err := s.storage.Delete(ctx, persistedKeys...); err != nil {
		s.logger.Warn("clear persisted credentials", slog.Any("error", err))
	}
	for _, fn := range observers {
		fn()
	}
}

// Restore rehydrates state from durable storage. It runs once at startup,
// before any guard evaluation or pipeline use. Anything short of a "true"
// logged-in marker plus a present access token leaves the store empty.
func (s *Store) Restore(ctx context.Context) {
	loggedIn := s.read(ctx, KeyIsLoggedIn) == "true"
	accessToken := s.read(ctx, KeyAccessToken)
	if !loggedIn || accessToken == "" {
		return
	}

	user := identity.User{
		Username: s.read(ctx, KeyUsername),
		FullName: s.read(ctx, KeyUserName),
	}
	if role, err := identity.ParseRole(s.read(ctx, KeyUserRole)); err == nil {
		user.Role = role
	}
	if raw := s.read(ctx, KeyPermissions); raw != "" {
		var grants []identity.PermissionGrant
		if err := json.Unmarshal([]byte(raw), &grants); err != nil {
			s.logger.Warn("restore permissions", slog.Any("error", err))
		} else {
			user.Permissions = identity.NormalizeGrants(grants)
		}
	}

	s.mu.Lock()
	s.loggedIn = true
	s.cred = Credential{
		AccessToken:  accessToken,
		RefreshToken: s.read(ctx, KeyRefreshToken),
	}
	s.user = user
	s.mu.Unlock()
}

// Credential returns a snapshot of the current token pair.
func (s *Store) Credential() Credential {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.cred
}

// User returns a snapshot of the current identity. The permission slice is
// copied so callers cannot corrupt internal state.
func (s *Store) User() identity.User {
	s.mu.RLock()
	defer s.mu.RUnlock()
	u := s.user
	if len(s.user.Permissions) > 0 {
		u.Permissions = make([]identity.PermissionGrant, len(s.user.Permissions))
		copy(u.Permissions, s.user.Permissions)
	}
	return u
}

// IsLoggedIn reports the raw logged-in flag, ignoring token expiry.
func (s *Store) IsLoggedIn() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.loggedIn
}

// IsAuthenticated reports whether a signed-in user holds an unexpired
// access token.
func (s *Store) IsAuthenticated() bool {
	s.mu.RLock()
	loggedIn, token := s.loggedIn, s.cred.AccessToken
	s.mu.RUnlock()
	return loggedIn && identity.TokenValid(token, time.Now())
}

func (s *Store) persist(ctx context.Context, key, value string) {
	if err := s.storage.Set(ctx, key, value); err != nil {
		s.logger.Warn("persist credential key", slog.String("key", key), slog.Any("error", err))
	}
}

func (s *Store) persistIdentity(ctx context.Context, user identity.User) {
	s.persist(ctx, KeyUserRole, string(user.Role))
	s.persist(ctx, KeyUserName, user.FullName)
	s.persist(ctx, KeyUsername, user.Username)
	grants, err := json.Marshal(identity.NormalizeGrants(user.Permissions))
	if err != nil {
		s.logger.Warn("encode permissions", slog.Any("error", err))
		return
	}
	s.persist(ctx, KeyPermissions, string(grants))
}

func (s *Store) read(ctx context.Context, key string) string {
	val, err := s.storage.Get(ctx, key)
	if err != nil {
		s.logger.Warn("read credential key", slog.String("key", key), slog.Any("error", err))
		return ""
	}
	return val
}
