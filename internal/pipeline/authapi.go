package pipeline

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/opsboard/opsboard-go/internal/credentials"
	"github.com/opsboard/opsboard-go/internal/identity"
)

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type tokenGrant struct {
	AccessToken  string          `json:"accessToken"`
	RefreshToken string          `json:"refreshToken"`
	User         json.RawMessage `json:"user"`
}

// Login exchanges credentials for a token pair and identity, committing
// both to the store. A server-side rejection surfaces as an *APIError whose
// Message is suitable for display; state is left untouched on failure.
func (c *Client) Login(ctx context.Context, username, password string) (identity.User, error) {
	var grant tokenGrant
	if err := c.Post(ctx, "/auth/login", loginRequest{Username: username, Password: password}, &grant); err != nil {
		return identity.User{}, err
	}
	user, err := identity.ParseUser(grant.User)
	if err != nil {
		return identity.User{}, err
	}
	c.store.SetCredential(ctx, credentials.Credential{
		AccessToken:  grant.AccessToken,
		RefreshToken: grant.RefreshToken,
	}, user)
	return user, nil
}

// Logout invalidates the server-side session best-effort and always clears
// local state.
func (c *Client) Logout(ctx context.Context) {
	if err := c.Post(ctx, "/auth/logout", nil, nil); err != nil {
		c.logger.Warn("server logout", slog.Any("error", err))
	}
	c.store.Clear(ctx)
}

// Me fetches the current identity, role and permission grants, updating
// the store on success. It doubles as the session probe.
func (c *Client) Me(ctx context.Context) (identity.User, error) {
	var raw json.RawMessage
	if err := c.Get(ctx, "/auth/me", &raw); err != nil {
		return identity.User{}, err
	}
	user, err := identity.ParseUser(raw)
	if err != nil {
		return identity.User{}, err
	}
	c.store.SetUser(ctx, user)
	return user, nil
}
