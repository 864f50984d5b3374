package pipeline

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/singleflight"

	"github.com/opsboard/opsboard-go/internal/credentials"
	"github.com/opsboard/opsboard-go/internal/nav"
)

// Envelope is the transport wrapper every endpoint returns.
type Envelope struct {
	Success bool            `json:"success"`
	Message string          `json:"message,omitempty"`
	Data    json.RawMessage `json:"data,omitempty"`
}

// Config tunes the pipeline.
type Config struct {
	BaseURL string
	Timeout time.Duration
	// SingleFlightRefresh collapses concurrent refresh attempts into one
	// shared call. Off by default: with it off, every in-flight request
	// failing 401 at the same moment issues its own refresh.
	SingleFlightRefresh bool
}

// Client wraps every outbound API call: it attaches the bearer credential,
// unwraps the response envelope and drives the refresh protocol on 401.
type Client struct {
	logger       *slog.Logger
	http         *http.Client
	baseURL      string
	store        *credentials.Store
	nav          nav.Navigator
	refreshGroup *singleflight.Group
}

// NewClient constructs a Client. The navigator may be nil when no view
// redirects are wanted (one-shot CLI invocations).
func NewClient(logger *slog.Logger, store *credentials.Store, navigator nav.Navigator, cfg Config) *Client {
	if logger == nil {
		logger = slog.Default()
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	c := &Client{
		logger:  logger,
		http:    &http.Client{Timeout: timeout},
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		store:   store,
		nav:     navigator,
	}
	if cfg.SingleFlightRefresh {
		c.refreshGroup = &singleflight.Group{}
	}
	return c
}

// Get issues a GET through the pipeline, decoding the envelope's data field
// into out.
func (c *Client) Get(ctx context.Context, path string, out any) error {
	return c.Do(ctx, http.MethodGet, path, nil, out)
}

// Post issues a POST through the pipeline.
func (c *Client) Post(ctx context.Context, path string, body, out any) error {
	return c.Do(ctx, http.MethodPost, path, body, out)
}

// Do sends one request with the refresh-retry protocol: on a 401 it
// refreshes the access token at most once and replays the request exactly
// once with the new credential. Refresh completes strictly before the
// replay is issued. When neither refresh nor replay can recover, local
// credentials are cleared, the navigator is sent to the login view and the
// original rejection propagates to the caller.
func (c *Client) Do(ctx context.Context, method, path string, body, out any) error {
	var payload []byte
	if body != nil {
		var err error
		payload, err = json.Marshal(body)
		if err != nil {
			return fmt.Errorf("pipeline: encode %s %s: %w", method, path, err)
		}
	}

	retried := false
	for {
		status, env, err := c.send(ctx, method, path, payload)
		if err != nil {
			// Transport-level failure: transient, never clears state.
			return fmt.Errorf("pipeline: %s %s: %w", method, path, err)
		}

		if status == http.StatusUnauthorized {
			rejection := &APIError{Status: status, Message: env.Message}
			if retried || c.store.Credential().RefreshToken == "" {
				return c.unrecoverable(ctx, rejection)
			}
			retried = true
			if err := c.refreshAccessToken(ctx); err != nil {
				c.logger.Warn("token refresh failed", slog.Any("error", err))
				return c.unrecoverable(ctx, rejection)
			}
			continue
		}

		if status < 200 || status > 299 || !env.Success {
			return &APIError{Status: status, Message: env.Message}
		}
		if out != nil && len(env.Data) > 0 {
			if err := json.Unmarshal(env.Data, out); err != nil {
				return fmt.Errorf("pipeline: decode %s %s: %w", method, path, err)
			}
		}
		return nil
	}
}

func (c *Client) send(ctx context.Context, method, path string, payload []byte) (int, Envelope, error) {
	var reader io.Reader
	if payload != nil {
		reader = bytes.NewReader(payload)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return 0, Envelope{}, err
	}
	req.Header.Set("Accept", "application/json")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token := c.store.Credential().AccessToken; token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	req.Header.Set("X-Request-ID", uuid.NewString())

	resp, err := c.http.Do(req)
	if err != nil {
		return 0, Envelope{}, err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return 0, Envelope{}, err
	}

	var env Envelope
	if len(raw) > 0 {
		// Non-JSON error bodies still classify by status code.
		_ = json.Unmarshal(raw, &env)
	}
	return resp.StatusCode, env, nil
}

// refreshAccessToken trades the stored refresh token for a new access
// token and commits it to the store. With single-flight enabled, concurrent
// callers share one refresh call.
func (c *Client) refreshAccessToken(ctx context.Context) error {
	if c.refreshGroup != nil {
		_, err, _ := c.refreshGroup.Do("refresh", func() (any, error) {
			return nil, c.doRefresh(ctx)
		})
		return err
	}
	return c.doRefresh(ctx)
}

func (c *Client) doRefresh(ctx context.Context) error {
	refreshToken := c.store.Credential().RefreshToken
	if refreshToken == "" {
		return ErrRefreshFailed
	}
	payload, err := json.Marshal(map[string]string{"refreshToken": refreshToken})
	if err != nil {
		return fmt.Errorf("%w: %v", ErrRefreshFailed, err)
	}

	// Raw request on purpose: the refresh call must never recurse into the
	// retry protocol. It shares the transport timeout with every other call.
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/auth/refresh", bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("%w: %v", ErrRefreshFailed, err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Request-ID", uuid.NewString())

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrRefreshFailed, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrRefreshFailed, err)
	}
	var env Envelope
	if len(raw) > 0 {
		_ = json.Unmarshal(raw, &env)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 || !env.Success {
		return fmt.Errorf("%w: server returned %d", ErrRefreshFailed, resp.StatusCode)
	}

	var minted struct {
		AccessToken string `json:"accessToken"`
	}
	if err := json.Unmarshal(env.Data, &minted); err != nil || minted.AccessToken == "" {
		return fmt.Errorf("%w: malformed response", ErrRefreshFailed)
	}
	// Refresh token stays as-is; only the access token is reminted.
	c.store.SetAccessToken(ctx, minted.AccessToken)
	return nil
}

// unrecoverable ends the local session: clear credentials, send the
// navigator to the login view unless already there, propagate the original
// rejection so presentation code can show a message.
func (c *Client) unrecoverable(ctx context.Context, rejection error) error {
	c.store.Clear(ctx)
	if c.nav != nil && c.nav.Current() != nav.RouteLogin {
		c.nav.Go(nav.RouteLogin)
	}
	return rejection
}
