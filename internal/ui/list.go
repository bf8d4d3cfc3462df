package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/list"
	"github.com/desertthunder/spotiverse/internal/services"
	"github.com/desertthunder/spotiverse/internal/shared"
)

var (
	_ list.Item = artistItem{}
	_ list.Item = trackItem{}
)

// artistItem wraps [services.SpotifyArtist] to implement [list.Item].
type artistItem struct {
	rank   int
	artist services.SpotifyArtist
}

func (i artistItem) FilterValue() string { return i.artist.Name }
func (i artistItem) Title() string       { return fmt.Sprintf("%d. %s", i.rank, i.artist.Name) }
func (i artistItem) Description() string {
	parts := []string{}
	if len(i.artist.Genres) > 0 {
		parts = append(parts, strings.Join(i.artist.Genres, ", "))
	}
	parts = append(parts,
		fmt.Sprintf("Popularity %d", i.artist.Popularity),
		fmt.Sprintf("%s followers", shared.FormatCount(i.artist.Followers.Total)),
	)
	return strings.Join(parts, " • ")
}

// trackItem wraps [services.SpotifyTrack] to implement [list.Item].
type trackItem struct {
	rank  int
	track services.SpotifyTrack
}

func (i trackItem) FilterValue() string { return i.track.Name + " " + i.track.ArtistNames() }
func (i trackItem) Title() string       { return fmt.Sprintf("%d. %s", i.rank, i.track.Name) }
func (i trackItem) Description() string {
	desc := i.track.ArtistNames()
	if i.track.Album != nil && i.track.Album.Name != "" {
		desc = fmt.Sprintf("%s • %s", desc, i.track.Album.Name)
	}
	return fmt.Sprintf("%s • %s • Popularity %d", desc, shared.FormatDuration(i.track.DurationMS), i.track.Popularity)
}

func artistItems(artists []services.SpotifyArtist) []list.Item {
	items := make([]list.Item, len(artists))
	for i, a := range artists {
		items[i] = artistItem{rank: i + 1, artist: a}
	}
	return items
}

func trackItems(tracks []services.SpotifyTrack) []list.Item {
	items := make([]list.Item, len(tracks))
	for i, t := range tracks {
		items[i] = trackItem{rank: i + 1, track: t}
	}
	return items
}
