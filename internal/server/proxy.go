package server

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/spotiverse/internal/shared"
)

// ProxyErrorMessage is the fixed error string returned when the upstream cannot be reached.
const ProxyErrorMessage = "Error accessing Spotify API"

// InvalidRequestMessage is returned when an inbound request cannot be turned into an upstream one.
const InvalidRequestMessage = "Invalid proxy request"

// ProxyError is the body written when no upstream response was received.
type ProxyError struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

// ProxyHandler forwards requests under a path prefix to the upstream API.
//
// The Authorization header passes through untouched; the proxy never issues or inspects tokens.
// Any upstream status is relayed with its body. Only a transport failure produces a response of the proxy's own.
type ProxyHandler struct {
	prefix   string
	upstream string
	client   *http.Client
	logger   *log.Logger
}

// NewProxyHandler creates a proxy for requests under prefix (e.g. /api) to the upstream base URL.
func NewProxyHandler(prefix, upstream string, client *http.Client, logger *log.Logger) (*ProxyHandler, error) {
	if !strings.HasPrefix(prefix, "/") {
		return nil, fmt.Errorf("proxy prefix %q must start with /", prefix)
	}
	u, err := url.Parse(upstream)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("invalid upstream URL %q", upstream)
	}
	if client == nil {
		client = http.DefaultClient
	}

	return &ProxyHandler{
		prefix:   strings.TrimRight(prefix, "/"),
		upstream: strings.TrimRight(upstream, "/"),
		client:   client,
		logger:   logger,
	}, nil
}

// Routes returns the HTTP routes this handler serves.
func (p *ProxyHandler) Routes() []string {
	return []string{p.prefix + "/"}
}

// Target maps an inbound escaped path and raw query onto the upstream URL.
//
// The path must be in its escaped form (see [url.URL.EscapedPath]) so that %2F, %3F and %25 reach the upstream as sent.
func (p *ProxyHandler) Target(path, rawQuery string) string {
	target := p.upstream + strings.TrimPrefix(path, p.prefix)
	if rawQuery != "" {
		target += "?" + rawQuery
	}
	return target
}

// ServeHTTP forwards one request and relays the answer.
func (p *ProxyHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	target := p.Target(r.URL.EscapedPath(), r.URL.RawQuery)
	start := time.Now()

	var body io.Reader
	if r.Body != nil {
		data, err := io.ReadAll(r.Body)
		if err != nil {
			p.reject(w, r, target, fmt.Errorf("%w: failed to read request body: %v", shared.ErrInvalidInput, err))
			return
		}
		if len(data) > 0 {
			body = bytes.NewReader(data)
		}
	}

	req, err := http.NewRequestWithContext(r.Context(), r.Method, target, body)
	if err != nil {
		p.reject(w, r, target, fmt.Errorf("%w: %v", shared.ErrInvalidInput, err))
		return
	}
	if auth := r.Header.Get("Authorization"); auth != "" {
		req.Header.Set("Authorization", auth)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := p.client.Do(req)
	if err != nil {
		p.fail(w, r, target, fmt.Errorf("%w: %v", shared.ErrUpstreamUnreachable, err))
		return
	}
	defer resp.Body.Close()

	if ct := resp.Header.Get("Content-Type"); ct != "" {
		w.Header().Set("Content-Type", ct)
	} else {
		w.Header().Set("Content-Type", "application/json")
	}
	w.WriteHeader(resp.StatusCode)

	n, err := io.Copy(w, resp.Body)
	if err != nil {
		p.logger.Error("failed to relay upstream body", "upstream", target, "copied", n, "error", err)
	}

	p.logger.Debug("proxied", "method", r.Method, "upstream", target, "status", resp.StatusCode, "took", time.Since(start))
}

// reject answers 400 for requests that never left the proxy.
func (p *ProxyHandler) reject(w http.ResponseWriter, r *http.Request, target string, err error) {
	p.logger.Warn("proxy rejected request", "method", r.Method, "upstream", target, "error", err)
	writeJSON(w, http.StatusBadRequest, ProxyError{Error: InvalidRequestMessage, Message: err.Error()})
}

// fail answers 500 when the upstream gave no response.
func (p *ProxyHandler) fail(w http.ResponseWriter, r *http.Request, target string, err error) {
	p.logger.Error("proxy error", "method", r.Method, "upstream", target, "error", err)
	writeJSON(w, http.StatusInternalServerError, ProxyError{Error: ProxyErrorMessage, Message: err.Error()})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
