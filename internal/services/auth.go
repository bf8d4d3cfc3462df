package services

import (
	"fmt"

	"github.com/desertthunder/spotiverse/internal/shared"
	"golang.org/x/oauth2"
)

// DefaultScopes are requested when the configuration lists none.
var DefaultScopes = []string{
	"user-read-private",
	"user-read-email",
	"user-top-read",
	"user-read-recently-played",
	"user-read-playback-position",
	"user-read-playback-state",
	"user-modify-playback-state",
}

// Authorizer builds implicit-grant authorization URLs.
//
// The implicit grant has no token endpoint and no client secret: the provider redirects back with the token in
// the URL fragment, which [session.Session.Capture] consumes.
type Authorizer struct {
	config     *oauth2.Config
	showDialog bool
}

// NewAuthorizer validates the Spotify credentials section and returns an [Authorizer].
func NewAuthorizer(cfg shared.SpotifyConfig) (*Authorizer, error) {
	if cfg.ClientID == "" {
		return nil, fmt.Errorf("%w: spotify client_id", shared.ErrMissingCredentials)
	}
	if cfg.RedirectURI == "" {
		return nil, fmt.Errorf("%w: spotify redirect_uri", shared.ErrMissingCredentials)
	}

	authURL := cfg.AuthURL
	if authURL == "" {
		authURL = spotifyAuthURL
	}
	scopes := cfg.Scopes
	if len(scopes) == 0 {
		scopes = DefaultScopes
	}

	return &Authorizer{
		config: &oauth2.Config{
			ClientID:    cfg.ClientID,
			RedirectURL: cfg.RedirectURI,
			Scopes:      scopes,
			Endpoint:    oauth2.Endpoint{AuthURL: authURL},
		},
		showDialog: cfg.ShowDialog,
	}, nil
}

// AuthorizeURL returns the URL the user opens to grant access. response_type is forced to "token".
func (a *Authorizer) AuthorizeURL(state string) string {
	opts := []oauth2.AuthCodeOption{oauth2.SetAuthURLParam("response_type", "token")}
	if a.showDialog {
		opts = append(opts, oauth2.SetAuthURLParam("show_dialog", "true"))
	}
	return a.config.AuthCodeURL(state, opts...)
}

// RedirectURI returns the configured redirect target.
func (a *Authorizer) RedirectURI() string {
	return a.config.RedirectURL
}
