package services

import (
	"testing"

	"github.com/desertthunder/spotiverse/internal/models"
	"github.com/stretchr/testify/assert"
)

func TestSelectSeeds(t *testing.T) {
	artists := func(ids ...string) []SpotifyArtist {
		out := make([]SpotifyArtist, len(ids))
		for i, id := range ids {
			out[i] = SpotifyArtist{ID: id}
		}
		return out
	}
	tracks := func(ids ...string) []SpotifyTrack {
		out := make([]SpotifyTrack, len(ids))
		for i, id := range ids {
			out[i] = SpotifyTrack{ID: id}
		}
		return out
	}

	t.Run("Caps At Two Artists And Three Tracks", func(t *testing.T) {
		seeds := SelectSeeds(artists("a1", "a2", "a3"), tracks("t1", "t2", "t3", "t4"))

		assert.Equal(t, []string{"a1", "a2"}, seeds.Artists)
		assert.Equal(t, []string{"t1", "t2", "t3"}, seeds.Tracks)
		assert.Equal(t, models.MaxSeeds, seeds.Len())
	})

	t.Run("Fewer Than The Cap", func(t *testing.T) {
		seeds := SelectSeeds(artists("a1"), tracks("t1"))

		assert.Equal(t, []string{"a1"}, seeds.Artists)
		assert.Equal(t, []string{"t1"}, seeds.Tracks)
	})

	t.Run("Nothing To Seed", func(t *testing.T) {
		seeds := SelectSeeds(nil, nil)

		assert.Empty(t, seeds.Artists)
		assert.Empty(t, seeds.Tracks)
		assert.Zero(t, seeds.Len())
	})

	t.Run("Skips Entries Without IDs", func(t *testing.T) {
		seeds := SelectSeeds(artists("", "a2"), tracks("t1", "", "t3", "t4"))

		assert.Equal(t, []string{"a2"}, seeds.Artists)
		assert.Equal(t, []string{"t1", "t3", "t4"}, seeds.Tracks)
	})
}
