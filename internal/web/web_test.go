package web

import (
	"io/fs"
	"strings"
	"testing"
)

func TestAssets(t *testing.T) {
	t.Run("Index Is Embedded", func(t *testing.T) {
		data, err := fs.ReadFile(Assets(), IndexFile)
		if err != nil {
			t.Fatalf("failed to read index: %v", err)
		}
		for _, want := range []string{"spotify_token", "spotify_token_expiry", "/config.js", "/api"} {
			if !strings.Contains(string(data), want) {
				t.Errorf("index missing %q", want)
			}
		}
	})

	t.Run("Callback Page Posts Fragment", func(t *testing.T) {
		page := string(CallbackPage())
		if !strings.Contains(page, "location.hash") || !strings.Contains(page, "/auth/fragment") {
			t.Error("callback page should relay the fragment")
		}
	})
}
