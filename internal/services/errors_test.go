package services

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/desertthunder/spotiverse/internal/shared"
)

func TestParseAPIError(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		message string
	}{
		{"Upstream Shape", 404, `{"error":{"status":404,"message":"Non existing id"}}`, "Non existing id"},
		{"Proxy Failure Shape", 500, `{"error":"Error accessing Spotify API","message":"dial tcp: refused"}`, "dial tcp: refused"},
		{"Flat Error Only", 502, `{"error":"bad gateway"}`, "bad gateway"},
		{"Not JSON", 503, `<html>down</html>`, http.StatusText(503)},
		{"Empty Body", 429, ``, http.StatusText(429)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := parseAPIError(tt.status, []byte(tt.body))
			if err.StatusCode != tt.status {
				t.Errorf("expected status %d, got %d", tt.status, err.StatusCode)
			}
			if err.Message != tt.message {
				t.Errorf("expected message %q, got %q", tt.message, err.Message)
			}
		})
	}
}

func TestIsAuthError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"Nil", nil, false},
		{"Unauthorized", &APIError{StatusCode: 401, Message: "x"}, true},
		{"Forbidden", &APIError{StatusCode: 403, Message: "x"}, true},
		{"Token Message", &APIError{StatusCode: 400, Message: "Only valid bearer authentication supported: bad Token"}, true},
		{"Not Found", &APIError{StatusCode: 404, Message: "Non existing id"}, false},
		{"Wrapped", fmt.Errorf("failed to fetch data: %w", &APIError{StatusCode: 401}), true},
		{"Not Authenticated", fmt.Errorf("get: %w", shared.ErrNotAuthenticated), true},
		{"Token Expired", shared.ErrTokenExpired, true},
		{"Transport", errors.New("connection refused"), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsAuthError(tt.err); got != tt.want {
				t.Errorf("IsAuthError(%v) = %v, want %v", tt.err, got, tt.want)
			}
		})
	}
}
