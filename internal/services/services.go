// package services defines the Spotify Web API client and the raw API passthrough
package services

import (
	"context"
	"net/http"

	"github.com/desertthunder/spotiverse/internal/models"
	"golang.org/x/oauth2"
)

// Service is the subset of the Spotify Web API the dashboard reads.
type Service interface {
	// Profile retrieves the current user's profile.
	Profile(ctx context.Context) (*SpotifyUser, error)

	// TopArtists retrieves the user's most listened artists over the given range.
	TopArtists(ctx context.Context, tr models.TimeRange, limit int) ([]SpotifyArtist, error)

	// TopTracks retrieves the user's most listened tracks over the given range.
	TopTracks(ctx context.Context, tr models.TimeRange, limit int) ([]SpotifyTrack, error)

	// Recommendations retrieves tracks derived from the given seeds.
	Recommendations(ctx context.Context, seeds models.Seeds, limit int) ([]SpotifyTrack, error)
}

// NewClient returns an [http.Client] that attaches the bearer token from src to every request.
//
// The token source is consulted per request. base supplies the transport and timeout and may be nil.
func NewClient(src oauth2.TokenSource, base *http.Client) *http.Client {
	if base == nil {
		base = http.DefaultClient
	}
	if src == nil {
		return base
	}
	return &http.Client{
		Transport: &oauth2.Transport{Source: src, Base: base.Transport},
		Timeout:   base.Timeout,
	}
}
