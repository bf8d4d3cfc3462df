package services

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/desertthunder/spotiverse/internal/shared"
)

// APIError is a non-2xx answer from the Web API or the proxy in front of it.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("spotify API error: status %d: %s", e.StatusCode, e.Message)
}

func (e *APIError) Unwrap() error {
	return shared.ErrAPIRequest
}

// upstream errors look like {"error":{"status":401,"message":"..."}}
// while the proxy's own transport failure is {"error":"...","message":"..."}
type errorBody struct {
	Error   json.RawMessage `json:"error"`
	Message string          `json:"message"`
}

type upstreamError struct {
	Status  int    `json:"status"`
	Message string `json:"message"`
}

// parseAPIError builds an [APIError] from a failed response body, falling back to the status text.
func parseAPIError(status int, body []byte) *APIError {
	apiErr := &APIError{StatusCode: status}

	var eb errorBody
	if err := json.Unmarshal(body, &eb); err == nil {
		var nested upstreamError
		var flat string
		switch {
		case json.Unmarshal(eb.Error, &nested) == nil && nested.Message != "":
			apiErr.Message = nested.Message
		case eb.Message != "":
			apiErr.Message = eb.Message
		case json.Unmarshal(eb.Error, &flat) == nil && flat != "":
			apiErr.Message = flat
		}
	}

	if apiErr.Message == "" {
		apiErr.Message = http.StatusText(status)
	}
	return apiErr
}

// IsAuthError reports whether err means the bearer token is no longer usable:
// a 401 or 403, an upstream message mentioning the token, or a missing or expired session.
func IsAuthError(err error) bool {
	if err == nil {
		return false
	}

	if errors.Is(err, shared.ErrNotAuthenticated) || errors.Is(err, shared.ErrTokenExpired) {
		return true
	}

	var apiErr *APIError
	if errors.As(err, &apiErr) {
		if apiErr.StatusCode == http.StatusUnauthorized || apiErr.StatusCode == http.StatusForbidden {
			return true
		}
		return strings.Contains(strings.ToLower(apiErr.Message), "token")
	}
	return false
}
