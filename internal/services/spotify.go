// Spotify Web API implementation of [Service]
//
// Spotify API response types based on https://developer.spotify.com/documentation/web-api/reference/
package services

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/spotiverse/internal/models"
	"github.com/desertthunder/spotiverse/internal/shared"
	"golang.org/x/oauth2"
	"golang.org/x/time/rate"
)

const (
	spotifyAuthURL = "https://accounts.spotify.com/authorize"
	spotifyBaseURL = "https://api.spotify.com/v1"

	maxTopLimit = 50
)

var _ Service = (*SpotifyService)(nil)

type followers struct {
	Total int `json:"total"`
}

type externalURLs struct {
	Spotify string `json:"spotify"`
}

// SpotifyUser represents a Spotify user profile.
type SpotifyUser struct {
	ID           string         `json:"id"`
	DisplayName  string         `json:"display_name"`
	Email        string         `json:"email"`
	Country      string         `json:"country"`
	Product      string         `json:"product"` // premium, free, etc.
	Followers    followers      `json:"followers"`
	Images       []SpotifyImage `json:"images"`
	ExternalURLs externalURLs   `json:"external_urls"`
}

// SpotifyImage represents an image resource.
type SpotifyImage struct {
	URL    string `json:"url"`
	Height int    `json:"height"`
	Width  int    `json:"width"`
}

// SpotifyTrack represents a Spotify track.
type SpotifyTrack struct {
	ID           string          `json:"id"`
	Name         string          `json:"name"`
	Artists      []SpotifyArtist `json:"artists"`
	Album        *SpotifyAlbum   `json:"album"`
	DurationMS   int             `json:"duration_ms"`
	Explicit     bool            `json:"explicit"`
	Popularity   int             `json:"popularity"`
	URI          string          `json:"uri"`
	ExternalURLs externalURLs    `json:"external_urls"`
}

// SpotifyArtist represents a Spotify artist. Artists nested in tracks carry only ID, Name and URI.
type SpotifyArtist struct {
	ID           string         `json:"id"`
	Name         string         `json:"name"`
	Genres       []string       `json:"genres"`
	Images       []SpotifyImage `json:"images"`
	Popularity   int            `json:"popularity"`
	Followers    followers      `json:"followers"`
	URI          string         `json:"uri"`
	ExternalURLs externalURLs   `json:"external_urls"`
}

// SpotifyAlbum represents a Spotify album.
type SpotifyAlbum struct {
	ID          string          `json:"id"`
	Name        string          `json:"name"`
	Artists     []SpotifyArtist `json:"artists"`
	ReleaseDate string          `json:"release_date"`
	TotalTracks int             `json:"total_tracks"`
	Images      []SpotifyImage  `json:"images"`
	URI         string          `json:"uri"`
}

// SpotifyPaginatedArtists is the page returned by /me/top/artists.
type SpotifyPaginatedArtists struct {
	Items    []SpotifyArtist `json:"items"`
	Total    int             `json:"total"`
	Limit    int             `json:"limit"`
	Offset   int             `json:"offset"`
	Next     *string         `json:"next"`
	Previous *string         `json:"previous"`
}

// SpotifyPaginatedTracks is the page returned by /me/top/tracks.
type SpotifyPaginatedTracks struct {
	Items    []SpotifyTrack `json:"items"`
	Total    int            `json:"total"`
	Limit    int            `json:"limit"`
	Offset   int            `json:"offset"`
	Next     *string        `json:"next"`
	Previous *string        `json:"previous"`
}

// SpotifyRecommendations is the body returned by /recommendations.
type SpotifyRecommendations struct {
	Tracks []SpotifyTrack `json:"tracks"`
}

// Normalize replaces absent lists with empty ones.
func (u *SpotifyUser) Normalize() {
	if u.Images == nil {
		u.Images = []SpotifyImage{}
	}
}

// Normalize replaces absent lists with empty ones.
func (a *SpotifyArtist) Normalize() {
	if a.Genres == nil {
		a.Genres = []string{}
	}
	if a.Images == nil {
		a.Images = []SpotifyImage{}
	}
}

// Normalize replaces absent lists with empty ones.
func (a *SpotifyAlbum) Normalize() {
	if a.Images == nil {
		a.Images = []SpotifyImage{}
	}
	if a.Artists == nil {
		a.Artists = []SpotifyArtist{}
	}
}

// Normalize fills an absent album with the zero album and absent lists with empty ones.
func (t *SpotifyTrack) Normalize() {
	if t.Artists == nil {
		t.Artists = []SpotifyArtist{}
	}
	for i := range t.Artists {
		t.Artists[i].Normalize()
	}
	if t.Album == nil {
		t.Album = &SpotifyAlbum{}
	}
	t.Album.Normalize()
}

// ArtistNames returns the names of the track's artists joined with ", ".
func (t SpotifyTrack) ArtistNames() string {
	names := make([]string, 0, len(t.Artists))
	for _, a := range t.Artists {
		names = append(names, a.Name)
	}
	return strings.Join(names, ", ")
}

// ImageURL returns the URL of images[index], or "" when index is out of range.
func ImageURL(images []SpotifyImage, index int) string {
	if index < 0 || index >= len(images) {
		return ""
	}
	return images[index].URL
}

func normalizeTracks(tracks []SpotifyTrack) []SpotifyTrack {
	if tracks == nil {
		return []SpotifyTrack{}
	}
	for i := range tracks {
		tracks[i].Normalize()
	}
	return tracks
}

// SpotifyService implements [Service] over plain HTTP.
//
// The base URL is either the Web API itself or a proxy mount such as http://localhost:5000/api.
// Bearer tokens are attached by the [oauth2.Transport] built in [NewClient].
type SpotifyService struct {
	baseURL    string
	httpClient *http.Client
	limiter    *rate.Limiter
	logger     *log.Logger
}

// SpotifyOption configures a [SpotifyService].
type SpotifyOption func(*SpotifyService)

// WithHTTPClient sets the client used for requests. It must already attach credentials.
func WithHTTPClient(c *http.Client) SpotifyOption {
	return func(s *SpotifyService) { s.httpClient = c }
}

// WithRateLimit caps outbound requests per second. Non-positive values disable the limiter.
func WithRateLimit(perSecond float64) SpotifyOption {
	return func(s *SpotifyService) {
		if perSecond <= 0 {
			s.limiter = nil
			return
		}
		s.limiter = rate.NewLimiter(rate.Limit(perSecond), 1)
	}
}

// WithServiceLogger sets the logger used for request tracing.
func WithServiceLogger(l *log.Logger) SpotifyOption {
	return func(s *SpotifyService) { s.logger = l }
}

// NewSpotifyService creates a client for baseURL authenticated by src.
func NewSpotifyService(baseURL string, src oauth2.TokenSource, opts ...SpotifyOption) *SpotifyService {
	if baseURL == "" {
		baseURL = spotifyBaseURL
	}

	s := &SpotifyService{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: NewClient(src, nil),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = shared.NewLogger(io.Discard)
	}
	return s
}

func (s *SpotifyService) Name() string {
	return "Spotify"
}

// doRequest performs a GET against the API and decodes a JSON body into result.
func (s *SpotifyService) doRequest(ctx context.Context, endpoint string, result any) error {
	if s.limiter != nil {
		if err := s.limiter.Wait(ctx); err != nil {
			return fmt.Errorf("rate limiter: %w", err)
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.baseURL+endpoint, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	start := time.Now()
	resp, err := s.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	s.logger.Debug("spotify request", "endpoint", endpoint, "status", resp.StatusCode, "took", time.Since(start))

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, err := io.ReadAll(resp.Body)
		apiErr := parseAPIError(resp.StatusCode, body)
		if err != nil {
			s.logger.Warn("failed to read error body", "endpoint", endpoint, "status", resp.StatusCode, "error", err)
			apiErr.Message = fmt.Sprintf("%s (failed to read error body: %v)", apiErr.Message, err)
		}
		return apiErr
	}

	if result != nil {
		if err := json.NewDecoder(resp.Body).Decode(result); err != nil {
			return fmt.Errorf("failed to decode response: %w", err)
		}
	}

	return nil
}

// Profile retrieves the current authenticated user's profile.
func (s *SpotifyService) Profile(ctx context.Context) (*SpotifyUser, error) {
	var user SpotifyUser
	if err := s.doRequest(ctx, "/me", &user); err != nil {
		return nil, err
	}
	user.Normalize()
	return &user, nil
}

func topQuery(tr models.TimeRange, limit int) (string, error) {
	tr, err := models.ParseTimeRange(string(tr))
	if err != nil {
		return "", fmt.Errorf("%w: %w", shared.ErrInvalidArgument, err)
	}
	if limit <= 0 {
		limit = 20
	}
	if limit > maxTopLimit {
		limit = maxTopLimit
	}
	return fmt.Sprintf("time_range=%s&limit=%d", tr, limit), nil
}

// TopArtists retrieves the user's top artists. limit is clamped to 1..50.
func (s *SpotifyService) TopArtists(ctx context.Context, tr models.TimeRange, limit int) ([]SpotifyArtist, error) {
	q, err := topQuery(tr, limit)
	if err != nil {
		return nil, err
	}

	var page SpotifyPaginatedArtists
	if err := s.doRequest(ctx, "/me/top/artists?"+q, &page); err != nil {
		return nil, err
	}

	if page.Items == nil {
		return []SpotifyArtist{}, nil
	}
	for i := range page.Items {
		page.Items[i].Normalize()
	}
	return page.Items, nil
}

// TopTracks retrieves the user's top tracks. limit is clamped to 1..50.
func (s *SpotifyService) TopTracks(ctx context.Context, tr models.TimeRange, limit int) ([]SpotifyTrack, error) {
	q, err := topQuery(tr, limit)
	if err != nil {
		return nil, err
	}

	var page SpotifyPaginatedTracks
	if err := s.doRequest(ctx, "/me/top/tracks?"+q, &page); err != nil {
		return nil, err
	}
	return normalizeTracks(page.Items), nil
}

// RecommendationsQuery encodes the query for /recommendations. Seed IDs are comma-joined without escaping the comma.
func RecommendationsQuery(seeds models.Seeds, limit int) string {
	var b strings.Builder
	fmt.Fprintf(&b, "limit=%d", limit)

	join := func(ids []string) string {
		escaped := make([]string, len(ids))
		for i, id := range ids {
			escaped[i] = url.QueryEscape(id)
		}
		return strings.Join(escaped, ",")
	}

	if len(seeds.Artists) > 0 {
		b.WriteString("&seed_artists=" + join(seeds.Artists))
	}
	if len(seeds.Tracks) > 0 {
		b.WriteString("&seed_tracks=" + join(seeds.Tracks))
	}
	return b.String()
}

// Recommendations retrieves tracks derived from seeds. At least one and at most [models.MaxSeeds] seeds are accepted.
func (s *SpotifyService) Recommendations(ctx context.Context, seeds models.Seeds, limit int) ([]SpotifyTrack, error) {
	if n := seeds.Len(); n == 0 || n > models.MaxSeeds {
		return nil, fmt.Errorf("%w: %d recommendation seeds", shared.ErrInvalidArgument, n)
	}
	if limit <= 0 {
		limit = 20
	}

	var body SpotifyRecommendations
	if err := s.doRequest(ctx, "/recommendations?"+RecommendationsQuery(seeds, limit), &body); err != nil {
		return nil, err
	}
	return normalizeTracks(body.Tracks), nil
}
