package main

import (
	"context"
	"fmt"
	"net"
	"net/url"
	"time"

	"github.com/desertthunder/spotiverse/internal/server"
	"github.com/desertthunder/spotiverse/internal/services"
	"github.com/desertthunder/spotiverse/internal/session"
	"github.com/desertthunder/spotiverse/internal/shared"
	"github.com/urfave/cli/v3"
)

// AuthLogin runs the implicit-grant login.
//
// A temporary listener on the redirect URI serves a relay page that posts the URL fragment back, where it is
// captured into the session.
func (r *Runner) AuthLogin(ctx context.Context, cmd *cli.Command) error {
	if err := r.connect(); err != nil {
		return err
	}

	authorizer, err := services.NewAuthorizer(r.config.Credentials.Spotify)
	if err != nil {
		return err
	}

	state, err := shared.GenerateState()
	if err != nil {
		return fmt.Errorf("failed to generate state: %w", err)
	}

	handler, err := server.NewCallbackHandler(r.session, authorizer.RedirectURI(), state)
	if err != nil {
		return err
	}

	redirect, err := url.Parse(authorizer.RedirectURI())
	if err != nil || redirect.Host == "" {
		return fmt.Errorf("%w: redirect_uri %q", shared.ErrInvalidConfig, authorizer.RedirectURI())
	}

	ln, err := net.Listen("tcp", redirect.Host)
	if err != nil {
		return fmt.Errorf("failed to listen on %s (is `spotiverse serve` running?): %w", redirect.Host, err)
	}

	router := server.NewBasicRouter()
	router.Use(server.Recover(r.logger), server.Logging(r.logger))
	router.Handler(handler)

	srvCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	serveErr := make(chan error, 1)
	go func() { serveErr <- server.Serve(srvCtx, ln, router, r.logger) }()

	authURL := authorizer.AuthorizeURL(state)
	r.writePlain("Open this URL to authorize spotiverse:\n%s\n\n", authURL)
	if !cmd.Bool("no-browser") {
		if err := shared.OpenBrowser(authURL); err != nil {
			r.logger.Warn("could not open browser", "error", err)
		}
	}

	timeout := cmd.Duration("timeout")
	r.logger.Info("waiting for redirect", "redirect_uri", authorizer.RedirectURI(), "timeout", timeout)

	select {
	case result := <-handler.Result():
		cancel()
		<-serveErr
		if err := result.Error(); err != nil {
			return fmt.Errorf("login failed: %w", err)
		}
		return r.writePlain("✓ Logged in, token valid until %s\n", result.Token.Expiry().Format(time.RFC1123))
	case err := <-serveErr:
		return err
	case <-time.After(timeout):
		return fmt.Errorf("%w: no redirect received within %s", shared.ErrTimeout, timeout)
	case <-ctx.Done():
		return ctx.Err()
	}
}

// AuthCapture stores the token carried by a redirect URL (or just its fragment).
func (r *Runner) AuthCapture(ctx context.Context, cmd *cli.Command) error {
	raw := cmd.StringArg("redirect")
	if raw == "" {
		return fmt.Errorf("%w: redirect URL or fragment", shared.ErrMissingArgument)
	}

	if err := r.connect(); err != nil {
		return err
	}

	token, err := r.session.Capture(session.FragmentFromURL(raw))
	if err != nil {
		return err
	}
	if token == nil {
		return fmt.Errorf("%w: no usable access_token/expires_in in redirect", shared.ErrInvalidInput)
	}

	return r.writePlain("✓ Token stored, valid until %s\n", token.Expiry().Format(time.RFC1123))
}

type authStatus struct {
	Authenticated bool      `json:"authenticated"`
	ExpiresAt     time.Time `json:"expires_at,omitzero"`
	User          string    `json:"user,omitempty"`
}

// AuthStatus reports the stored token. With --verify the profile endpoint is called; a rejected token is cleared.
func (r *Runner) AuthStatus(ctx context.Context, cmd *cli.Command) error {
	if err := r.connect(); err != nil {
		return err
	}

	status := authStatus{Authenticated: r.session.Authenticated()}
	if token := r.session.Current(); status.Authenticated {
		status.ExpiresAt = token.Expiry()
	}

	if status.Authenticated && cmd.Bool("verify") {
		ctx, cancel := r.session.Bind(ctx)
		defer cancel()

		profile, err := r.spotify.Profile(ctx)
		switch {
		case err == nil:
			status.User = profile.DisplayName
			if status.User == "" {
				status.User = profile.ID
			}
		case services.IsAuthError(err):
			r.logger.Warn("token rejected, logging out", "error", err)
			if err := r.session.Invalidate(); err != nil {
				return err
			}
			status = authStatus{}
		default:
			return fmt.Errorf("%w: %w", shared.ErrAPIRequest, err)
		}
	}

	if cmd.Bool("json") {
		return r.writeJSON(status, false)
	}

	r.writePlainHeader("Spotify login")
	if !status.Authenticated {
		return r.writePlain("✗ Not logged in\n")
	}
	r.writePlain("✓ Logged in\n")
	if status.User != "" {
		r.writePlain("User: %s\n", status.User)
	}
	return r.writePlain("Expires: %s (in %s)\n",
		status.ExpiresAt.Format(time.RFC1123),
		time.Until(status.ExpiresAt).Truncate(time.Second),
	)
}

// AuthLogout clears the stored token.
func (r *Runner) AuthLogout(ctx context.Context, cmd *cli.Command) error {
	if err := r.connect(); err != nil {
		return err
	}
	if err := r.session.Invalidate(); err != nil {
		return err
	}
	return r.writePlain("✓ Logged out\n")
}

// AuthURL prints the authorization URL without starting a listener.
func (r *Runner) AuthURL(ctx context.Context, cmd *cli.Command) error {
	authorizer, err := services.NewAuthorizer(r.config.Credentials.Spotify)
	if err != nil {
		return err
	}
	state, err := shared.GenerateState()
	if err != nil {
		return fmt.Errorf("failed to generate state: %w", err)
	}
	return r.writePlain("%s\n", authorizer.AuthorizeURL(state))
}
