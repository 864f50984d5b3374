package pipeline

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrRefreshFailed indicates the refresh endpoint rejected the stored
// refresh token. Terminal for the session.
var ErrRefreshFailed = errors.New("pipeline: refresh failed")

// APIError is a classified non-success response from the server.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("pipeline: server returned %d: %s", e.Status, e.Message)
	}
	return fmt.Sprintf("pipeline: server returned %d", e.Status)
}

// IsAuthFailure reports whether the error is an authorization rejection
// that survived the pipeline's own refresh handling.
func IsAuthFailure(err error) bool {
	if errors.Is(err, ErrRefreshFailed) {
		return true
	}
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.Status == http.StatusUnauthorized
}

// IsTransient reports whether the error is ambiguous (connectivity, timeout,
// 5xx) and must not clear credential state.
func IsTransient(err error) bool {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Status >= http.StatusInternalServerError
	}
	return !IsAuthFailure(err)
}
