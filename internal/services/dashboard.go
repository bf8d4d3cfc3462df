package services

import (
	"time"

	"github.com/desertthunder/spotiverse/internal/models"
)

// Dashboard is everything the views render for one time range.
type Dashboard struct {
	TimeRange       models.TimeRange `json:"time_range"`
	Profile         *SpotifyUser     `json:"profile"`
	TopArtists      []SpotifyArtist  `json:"top_artists"`
	TopTracks       []SpotifyTrack   `json:"top_tracks"`
	Recommendations []SpotifyTrack   `json:"recommendations"`
	Seeds           models.Seeds     `json:"seeds"`
	FetchedAt       time.Time        `json:"fetched_at"`
}

// SelectSeeds picks up to [models.MaxArtistSeeds] artists and [models.MaxTrackSeeds] tracks, in rank order.
func SelectSeeds(artists []SpotifyArtist, tracks []SpotifyTrack) models.Seeds {
	seeds := models.Seeds{Artists: []string{}, Tracks: []string{}}
	for _, a := range artists {
		if len(seeds.Artists) == models.MaxArtistSeeds {
			break
		}
		if a.ID != "" {
			seeds.Artists = append(seeds.Artists, a.ID)
		}
	}
	for _, t := range tracks {
		if len(seeds.Tracks) == models.MaxTrackSeeds {
			break
		}
		if t.ID != "" {
			seeds.Tracks = append(seeds.Tracks, t.ID)
		}
	}
	return seeds
}
