package session

import (
	"context"
	"fmt"
	"math"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/spotiverse/internal/models"
	"github.com/desertthunder/spotiverse/internal/shared"
	"golang.org/x/oauth2"
)

// ErrInvalidated is the cancellation cause of contexts bound to a session that was invalidated.
var ErrInvalidated = fmt.Errorf("%w: session invalidated", shared.ErrNotAuthenticated)

// Session holds the current bearer token and its durable record.
type Session struct {
	store  models.Storage
	now    func() time.Time
	logger *log.Logger

	mu    sync.Mutex
	token *models.Token
	done  chan struct{}
}

// Option configures a [Session].
type Option func(*Session)

// WithClock replaces [time.Now] as the session's time source.
func WithClock(now func() time.Time) Option {
	return func(s *Session) { s.now = now }
}

// WithLogger sets the session logger.
func WithLogger(l *log.Logger) Option {
	return func(s *Session) { s.logger = l }
}

// New creates a session backed by store. No token is loaded until [Session.Start] or [Session.Load] is called.
func New(store models.Storage, opts ...Option) *Session {
	s := &Session{store: store, now: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = shared.NewLogger(nil)
	}
	return s
}

// ParseFragment extracts access_token and expires_in (seconds) from a query-string shaped fragment.
// A leading '#' is ignored. ok is false unless both are present and expires_in is a base-10 integer.
func ParseFragment(fragment string) (value string, expiresIn int64, ok bool) {
	fragment = strings.TrimPrefix(strings.TrimSpace(fragment), "#")
	if fragment == "" {
		return "", 0, false
	}

	params, err := url.ParseQuery(fragment)
	if err != nil {
		return "", 0, false
	}

	value = params.Get("access_token")
	rawExpiry := params.Get("expires_in")
	if value == "" || rawExpiry == "" {
		return "", 0, false
	}

	expiresIn, err = strconv.ParseInt(rawExpiry, 10, 64)
	if err != nil {
		return "", 0, false
	}

	return value, expiresIn, true
}

// FragmentFromURL returns the part of a redirect URL after '#', or raw itself when it has no '#'.
func FragmentFromURL(raw string) string {
	if i := strings.IndexByte(raw, '#'); i >= 0 {
		return raw[i+1:]
	}
	return raw
}

// Capture derives a token from an OAuth redirect fragment and persists it.
//
// Returns nil with a nil error when the fragment does not describe a usable token; that is the normal case on
// ordinary navigation. An error is only returned when storage fails.
func (s *Session) Capture(fragment string) (*models.Token, error) {
	value, expiresIn, ok := ParseFragment(fragment)
	if !ok {
		s.logger.Debug("fragment carries no token")
		return nil, nil
	}

	now := s.now()
	if expiresIn > (math.MaxInt64-now.UnixMilli())/1000 {
		s.logger.Debug("token lifetime out of range", "expires_in", expiresIn)
		return nil, nil
	}

	token := &models.Token{Value: value, ExpiresAt: now.UnixMilli() + expiresIn*1000}
	if !token.ValidAt(now) {
		s.logger.Debug("token from fragment is already expired", "expires_in", expiresIn)
		return nil, nil
	}

	if err := s.store.Set(models.TokenKey, token.Value); err != nil {
		return nil, fmt.Errorf("failed to persist token: %w", err)
	}
	if err := s.store.Set(models.TokenExpiryKey, strconv.FormatInt(token.ExpiresAt, 10)); err != nil {
		return nil, fmt.Errorf("failed to persist token expiry: %w", err)
	}

	s.set(token)
	s.logger.Info("captured token from redirect", "expires_at", token.Expiry().Format(time.RFC3339))
	return s.Current(), nil
}

// Load returns the persisted token when it is still valid.
//
// Anything else (missing half, unparseable or elapsed expiry) clears the durable record and returns nil.
func (s *Session) Load() (*models.Token, error) {
	value, hasValue, err := s.store.Get(models.TokenKey)
	if err != nil {
		return nil, fmt.Errorf("failed to read token: %w", err)
	}
	rawExpiry, hasExpiry, err := s.store.Get(models.TokenExpiryKey)
	if err != nil {
		return nil, fmt.Errorf("failed to read token expiry: %w", err)
	}

	if !hasValue && !hasExpiry {
		return nil, nil
	}

	expiresAt, parseErr := strconv.ParseInt(rawExpiry, 10, 64)
	token := &models.Token{Value: value, ExpiresAt: expiresAt}
	if !hasValue || !hasExpiry || parseErr != nil || !token.ValidAt(s.now()) {
		s.logger.Info("persisted token is expired or incomplete, clearing")
		if err := s.store.Delete(models.TokenKey, models.TokenExpiryKey); err != nil {
			return nil, fmt.Errorf("failed to clear expired token: %w", err)
		}
		s.clear()
		return nil, nil
	}

	s.set(token)
	return s.Current(), nil
}

// Start applies the startup precedence: a token captured from fragment wins, then a valid persisted token.
func (s *Session) Start(fragment string) (*models.Token, error) {
	if fragment != "" {
		token, err := s.Capture(fragment)
		if err != nil {
			return nil, err
		}
		if token != nil {
			return token, nil
		}
	}
	return s.Load()
}

// Invalidate clears the durable record and the in-memory token and cancels bound contexts.
//
// The in-memory state is cleared even when storage fails.
func (s *Session) Invalidate() error {
	s.clear()
	if err := s.store.Delete(models.TokenKey, models.TokenExpiryKey); err != nil {
		return fmt.Errorf("failed to clear token: %w", err)
	}
	s.logger.Info("session invalidated")
	return nil
}

// Current returns a copy of the in-memory token, or nil when logged out.
//
// The token is returned even if it expired since it was loaded; use [Session.Authenticated] to check validity.
func (s *Session) Current() *models.Token {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.token == nil {
		return nil
	}
	t := *s.token
	return &t
}

// Authenticated reports whether the in-memory token is present and unexpired.
func (s *Session) Authenticated() bool {
	return s.Current().ValidAt(s.now())
}

// Bind derives a context that is cancelled with [ErrInvalidated] when the session is invalidated.
//
// Binding a logged-out session returns an already cancelled context.
func (s *Session) Bind(parent context.Context) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancelCause(parent)

	s.mu.Lock()
	done := s.done
	s.mu.Unlock()

	if done == nil {
		cancel(ErrInvalidated)
		return ctx, func() { cancel(context.Canceled) }
	}

	go func() {
		select {
		case <-done:
			cancel(ErrInvalidated)
		case <-ctx.Done():
		}
	}()

	return ctx, func() { cancel(context.Canceled) }
}

// TokenSource exposes the session as an [oauth2.TokenSource].
//
// Each call reads the current token, so requests made after [Session.Invalidate] fail with [shared.ErrNotAuthenticated]
// instead of reusing a cached bearer.
func (s *Session) TokenSource() oauth2.TokenSource {
	return tokenSource{s}
}

type tokenSource struct{ s *Session }

func (ts tokenSource) Token() (*oauth2.Token, error) {
	t := ts.s.Current()
	if t == nil {
		return nil, shared.ErrNotAuthenticated
	}
	if !t.ValidAt(ts.s.now()) {
		return nil, shared.ErrTokenExpired
	}
	return &oauth2.Token{AccessToken: t.Value, TokenType: "Bearer", Expiry: t.Expiry()}, nil
}

func (s *Session) set(token *models.Token) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.token = token
	if s.done == nil {
		s.done = make(chan struct{})
	}
}

func (s *Session) clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.token = nil
	if s.done != nil {
		close(s.done)
		s.done = nil
	}
}
