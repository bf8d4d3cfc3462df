package server

import (
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"

	"github.com/desertthunder/spotiverse/internal/models"
	"github.com/desertthunder/spotiverse/internal/shared"
	"github.com/desertthunder/spotiverse/internal/web"
)

// FragmentPath receives the redirect fragment posted by the relay page.
const FragmentPath = "/auth/fragment"

// Capturer stores a token parsed from a redirect fragment.
type Capturer interface {
	Capture(fragment string) (*models.Token, error)
}

// CallbackResult contains the outcome of an implicit-grant login.
type CallbackResult struct {
	Token *models.Token
	err   error
}

func (c *CallbackResult) Error() error {
	return c.err
}

// CallbackHandler completes an implicit-grant login for a CLI process.
//
// The redirect lands on the relay page, which posts location.hash to [FragmentPath]. The handler checks the state,
// hands the fragment to the [Capturer] and reports the result once through [CallbackHandler.Result].
type CallbackHandler struct {
	capturer     Capturer
	state        string
	redirectPath string
	resultChan   chan CallbackResult
	once         sync.Once
	callbackHit  bool
	mu           sync.Mutex
}

// NewCallbackHandler creates a handler for the given redirect URI and state token.
// The state token should be cryptographically random for CSRF protection.
func NewCallbackHandler(capturer Capturer, redirectURI, state string) (*CallbackHandler, error) {
	u, err := url.Parse(redirectURI)
	if err != nil {
		return nil, fmt.Errorf("invalid redirect URI %q: %w", redirectURI, err)
	}
	redirectPath := u.Path
	if redirectPath == "" {
		redirectPath = "/"
	}

	return &CallbackHandler{
		capturer:     capturer,
		state:        state,
		redirectPath: redirectPath,
		resultChan:   make(chan CallbackResult, 1),
	}, nil
}

// Routes returns the HTTP routes this handler serves.
func (h *CallbackHandler) Routes() []string {
	if h.redirectPath == "/" {
		return []string{"/", FragmentPath}
	}
	return []string{h.redirectPath, FragmentPath}
}

// ServeHTTP serves the relay page on the redirect path and consumes the posted fragment.
func (h *CallbackHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path == FragmentPath {
		h.receive(w, r)
		return
	}

	if r.Method != http.MethodGet || r.URL.Path != h.redirectPath {
		http.NotFound(w, r)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(web.CallbackPage())
}

func (h *CallbackHandler) receive(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	body, err := io.ReadAll(io.LimitReader(r.Body, 16<<10))
	if err != nil {
		http.Error(w, "Failed to read fragment", http.StatusBadRequest)
		return
	}
	fragment := strings.TrimPrefix(strings.TrimSpace(string(body)), "#")

	// A post without our state is not the redirect we are waiting for and leaves the login open.
	params, _ := url.ParseQuery(fragment)
	if params.Get("state") != h.state {
		http.Error(w, "Invalid state parameter", http.StatusBadRequest)
		return
	}

	// Only handle callback once
	h.mu.Lock()
	if h.callbackHit {
		h.mu.Unlock()
		http.Error(w, "Callback already processed", http.StatusBadRequest)
		return
	}
	h.callbackHit = true
	h.mu.Unlock()

	if errParam := params.Get("error"); errParam != "" {
		h.Send(CallbackResult{err: fmt.Errorf("authorization failed: %s", errParam)})
		http.Error(w, "Authorization failed: "+errParam, http.StatusBadRequest)
		return
	}

	token, err := h.capturer.Capture(fragment)
	if err != nil {
		h.Send(CallbackResult{err: err})
		http.Error(w, "Failed to store token", http.StatusInternalServerError)
		return
	}
	if token == nil {
		h.Send(CallbackResult{err: fmt.Errorf("%w: redirect carried no usable token", shared.ErrAuthFailed)})
		http.Error(w, "No usable token in redirect", http.StatusBadRequest)
		return
	}

	h.Send(CallbackResult{Token: token})
	w.WriteHeader(http.StatusNoContent)
}

// Send sends the callback result through the channel (only once).
func (h *CallbackHandler) Send(result CallbackResult) {
	h.once.Do(func() {
		h.resultChan <- result
		close(h.resultChan)
	})
}

// Result returns the result channel for receiving login completion.
//
// Channel will receive exactly one result and then be closed.
func (h *CallbackHandler) Result() <-chan CallbackResult {
	return h.resultChan
}
