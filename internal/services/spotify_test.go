package services

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/desertthunder/spotiverse/internal/models"
	"github.com/desertthunder/spotiverse/internal/shared"
	tu "github.com/desertthunder/spotiverse/internal/testing"
)

func newTestService(t *testing.T, h http.HandlerFunc) *SpotifyService {
	t.Helper()
	server := httptest.NewServer(h)
	t.Cleanup(server.Close)
	return NewSpotifyService(server.URL, tu.StaticToken("test_token"))
}

func TestSpotifyService(t *testing.T) {
	t.Run("NewSpotifyService", func(t *testing.T) {
		t.Run("Defaults", func(t *testing.T) {
			srv := NewSpotifyService("", nil)

			if srv.baseURL != spotifyBaseURL {
				t.Errorf("expected base URL %s, got %s", spotifyBaseURL, srv.baseURL)
			}
			if srv.limiter != nil {
				t.Error("expected no limiter by default")
			}
			if srv.Name() != "Spotify" {
				t.Errorf("expected service name 'Spotify', got %s", srv.Name())
			}
		})

		t.Run("Proxy Base URL", func(t *testing.T) {
			srv := NewSpotifyService("http://localhost:5000/api/", nil, WithRateLimit(5))

			if srv.baseURL != "http://localhost:5000/api" {
				t.Errorf("unexpected base URL %s", srv.baseURL)
			}
			if srv.limiter == nil {
				t.Error("expected limiter to be configured")
			}
		})
	})

	t.Run("Profile", func(t *testing.T) {
		t.Run("Sends Bearer Token", func(t *testing.T) {
			srv := newTestService(t, func(w http.ResponseWriter, r *http.Request) {
				if r.URL.Path != "/me" {
					t.Errorf("expected /me, got %s", r.URL.Path)
				}
				if got := r.Header.Get("Authorization"); got != "Bearer test_token" {
					t.Errorf("expected bearer header, got %q", got)
				}
				w.Write([]byte(`{"id":"u1","display_name":"Test User","external_urls":{"spotify":"https://open.spotify.com/user/u1"}}`))
			})

			user, err := srv.Profile(context.Background())
			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if user.DisplayName != "Test User" {
				t.Errorf("unexpected display name %q", user.DisplayName)
			}
			if user.Images == nil || len(user.Images) != 0 {
				t.Errorf("expected empty images, got %v", user.Images)
			}
			if user.ExternalURLs.Spotify == "" {
				t.Error("expected profile link")
			}
		})

		t.Run("Unauthorized", func(t *testing.T) {
			srv := newTestService(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusUnauthorized)
				w.Write([]byte(`{"error":{"status":401,"message":"The access token expired"}}`))
			})

			_, err := srv.Profile(context.Background())

			var apiErr *APIError
			if !errors.As(err, &apiErr) {
				t.Fatalf("expected APIError, got %v", err)
			}
			if apiErr.StatusCode != http.StatusUnauthorized || apiErr.Message != "The access token expired" {
				t.Errorf("unexpected error %+v", apiErr)
			}
			if !errors.Is(err, shared.ErrAPIRequest) {
				t.Error("expected error to wrap ErrAPIRequest")
			}
			if !IsAuthError(err) {
				t.Error("expected auth error")
			}
		})

		t.Run("Unreadable Error Body", func(t *testing.T) {
			client := &http.Client{Transport: tu.NewMockRoundTripper(&http.Response{
				StatusCode: http.StatusBadGateway,
				Header:     http.Header{},
				Body:       &tu.FCloser{},
			}, nil)}
			srv := NewSpotifyService("http://spotify.test/v1", nil, WithHTTPClient(client))

			_, err := srv.Profile(context.Background())

			var apiErr *APIError
			if !errors.As(err, &apiErr) {
				t.Fatalf("expected APIError, got %v", err)
			}
			if apiErr.StatusCode != http.StatusBadGateway {
				t.Errorf("expected status 502, got %d", apiErr.StatusCode)
			}
			if !strings.Contains(apiErr.Message, "Bad Gateway") || !strings.Contains(apiErr.Message, "read failed") {
				t.Errorf("expected status text and read error in message, got %q", apiErr.Message)
			}
		})

		t.Run("Invalid JSON", func(t *testing.T) {
			srv := newTestService(t, func(w http.ResponseWriter, r *http.Request) {
				w.Write([]byte(`{`))
			})

			_, err := srv.Profile(context.Background())
			if err == nil || !strings.Contains(err.Error(), "failed to decode response") {
				t.Errorf("expected decode error, got %v", err)
			}
		})
	})

	t.Run("TopArtists", func(t *testing.T) {
		t.Run("Query And Defaults", func(t *testing.T) {
			srv := newTestService(t, func(w http.ResponseWriter, r *http.Request) {
				if r.URL.Path != "/me/top/artists" {
					t.Errorf("unexpected path %s", r.URL.Path)
				}
				if r.URL.RawQuery != "time_range=short_term&limit=10" {
					t.Errorf("unexpected query %s", r.URL.RawQuery)
				}
				w.Write([]byte(`{"items":[{"id":"a1","name":"Artist","followers":{"total":1200}},{"id":"a2","name":"Other","genres":["indie"],"popularity":40}]}`))
			})

			artists, err := srv.TopArtists(context.Background(), models.ShortTerm, 10)
			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if len(artists) != 2 {
				t.Fatalf("expected 2 artists, got %d", len(artists))
			}
			if artists[0].Genres == nil || artists[0].Images == nil {
				t.Error("expected missing lists to be normalized")
			}
			if artists[0].Followers.Total != 1200 || artists[0].Popularity != 0 {
				t.Errorf("unexpected artist %+v", artists[0])
			}
			if artists[1].Followers.Total != 0 {
				t.Errorf("expected missing followers to be 0, got %d", artists[1].Followers.Total)
			}
		})

		t.Run("Missing Items", func(t *testing.T) {
			srv := newTestService(t, func(w http.ResponseWriter, r *http.Request) {
				w.Write([]byte(`{}`))
			})

			artists, err := srv.TopArtists(context.Background(), models.LongTerm, 5)
			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if artists == nil || len(artists) != 0 {
				t.Errorf("expected empty slice, got %v", artists)
			}
		})

		t.Run("Unknown Time Range", func(t *testing.T) {
			srv := NewSpotifyService("http://example.invalid", nil)

			_, err := srv.TopArtists(context.Background(), models.TimeRange("forever"), 10)
			if !errors.Is(err, shared.ErrInvalidArgument) {
				t.Errorf("expected ErrInvalidArgument, got %v", err)
			}
		})
	})

	t.Run("TopTracks", func(t *testing.T) {
		t.Run("Empty Time Range And Limit Clamp", func(t *testing.T) {
			srv := newTestService(t, func(w http.ResponseWriter, r *http.Request) {
				if r.URL.RawQuery != "time_range=medium_term&limit=50" {
					t.Errorf("unexpected query %s", r.URL.RawQuery)
				}
				w.Write([]byte(`{"items":[{"id":"t1","name":"Song","duration_ms":215000}]}`))
			})

			tracks, err := srv.TopTracks(context.Background(), "", 500)
			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if len(tracks) != 1 {
				t.Fatalf("expected 1 track, got %d", len(tracks))
			}
			if tracks[0].Album == nil || tracks[0].Album.Images == nil {
				t.Error("expected missing album to be normalized")
			}
			if tracks[0].Artists == nil {
				t.Error("expected missing artists to be normalized")
			}
		})
	})

	t.Run("Recommendations", func(t *testing.T) {
		t.Run("Seed Query", func(t *testing.T) {
			srv := newTestService(t, func(w http.ResponseWriter, r *http.Request) {
				if r.URL.Path != "/recommendations" {
					t.Errorf("unexpected path %s", r.URL.Path)
				}
				want := "limit=20&seed_artists=a1,a2&seed_tracks=t1,t2,t3"
				if r.URL.RawQuery != want {
					t.Errorf("expected query %q, got %q", want, r.URL.RawQuery)
				}
				w.Write([]byte(`{"tracks":[{"id":"r1","name":"Rec","artists":[{"name":"A"},{"name":"B"}]}]}`))
			})

			seeds := models.Seeds{Artists: []string{"a1", "a2"}, Tracks: []string{"t1", "t2", "t3"}}
			tracks, err := srv.Recommendations(context.Background(), seeds, 20)
			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if len(tracks) != 1 || tracks[0].ArtistNames() != "A, B" {
				t.Errorf("unexpected tracks %+v", tracks)
			}
		})

		t.Run("Missing Tracks", func(t *testing.T) {
			srv := newTestService(t, func(w http.ResponseWriter, r *http.Request) {
				w.Write([]byte(`{"seeds":[]}`))
			})

			tracks, err := srv.Recommendations(context.Background(), models.Seeds{Tracks: []string{"t1"}}, 20)
			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if tracks == nil || len(tracks) != 0 {
				t.Errorf("expected empty slice, got %v", tracks)
			}
		})

		t.Run("Rejects Bad Seed Counts", func(t *testing.T) {
			var calls atomic.Int32
			srv := newTestService(t, func(w http.ResponseWriter, r *http.Request) {
				calls.Add(1)
			})

			if _, err := srv.Recommendations(context.Background(), models.Seeds{}, 20); !errors.Is(err, shared.ErrInvalidArgument) {
				t.Errorf("expected ErrInvalidArgument for no seeds, got %v", err)
			}

			tooMany := models.Seeds{Artists: []string{"a1", "a2", "a3"}, Tracks: []string{"t1", "t2", "t3"}}
			if _, err := srv.Recommendations(context.Background(), tooMany, 20); !errors.Is(err, shared.ErrInvalidArgument) {
				t.Errorf("expected ErrInvalidArgument for six seeds, got %v", err)
			}

			if calls.Load() != 0 {
				t.Errorf("expected no upstream calls, got %d", calls.Load())
			}
		})
	})

	t.Run("Rate Limit Honors Context", func(t *testing.T) {
		srv := newTestService(t, func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`{}`))
		})
		WithRateLimit(0.001)(srv)

		if _, err := srv.Profile(context.Background()); err != nil {
			t.Fatalf("first request should use the burst: %v", err)
		}

		ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
		defer cancel()
		if _, err := srv.Profile(ctx); err == nil {
			t.Error("expected limiter wait to fail")
		}
	})
}

func TestRecommendationsQuery(t *testing.T) {
	tests := []struct {
		name  string
		seeds models.Seeds
		limit int
		want  string
	}{
		{"Artists And Tracks", models.Seeds{Artists: []string{"a1", "a2"}, Tracks: []string{"t1", "t2", "t3"}}, 20, "limit=20&seed_artists=a1,a2&seed_tracks=t1,t2,t3"},
		{"Tracks Only", models.Seeds{Tracks: []string{"t1"}}, 10, "limit=10&seed_tracks=t1"},
		{"Escapes IDs", models.Seeds{Tracks: []string{"a b"}}, 1, "limit=1&seed_tracks=a+b"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := RecommendationsQuery(tt.seeds, tt.limit); got != tt.want {
				t.Errorf("expected %q, got %q", tt.want, got)
			}
		})
	}
}

func TestNormalize(t *testing.T) {
	t.Run("Track With Nil Album", func(t *testing.T) {
		track := SpotifyTrack{Name: "Song"}
		track.Normalize()

		if track.Album == nil {
			t.Fatal("expected zero album")
		}
		if track.Album.Name != "" || len(track.Album.Images) != 0 {
			t.Errorf("expected zero album, got %+v", track.Album)
		}
		if track.ArtistNames() != "" {
			t.Errorf("expected no artist names, got %q", track.ArtistNames())
		}
	})

	t.Run("ImageURL", func(t *testing.T) {
		images := []SpotifyImage{{URL: "large"}, {URL: "medium"}}

		if got := ImageURL(images, 1); got != "medium" {
			t.Errorf("expected medium, got %q", got)
		}
		if got := ImageURL(images, 2); got != "" {
			t.Errorf("expected empty for out of range, got %q", got)
		}
		if got := ImageURL(nil, 0); got != "" {
			t.Errorf("expected empty for nil, got %q", got)
		}
		if got := ImageURL(images, -1); got != "" {
			t.Errorf("expected empty for negative index, got %q", got)
		}
	})
}
