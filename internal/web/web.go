// Package web embeds the browser-side assets served by the proxy and the login relay.
//
// # Single-page Shell
//
// static/index.html is a dependency-free dashboard used when no built client is configured
// ([server] static_dir is missing). It keeps the token under spotify_token / spotify_token_expiry in
// localStorage, calls the Web API through the /api mount, and renders profile, top artists,
// top tracks and recommendations for the selected time range.
//
// # Login Relay
//
// callback.html is served at the redirect URI during `spotiverse auth login`. Fragments never reach the
// server, so the page posts location.hash back to the local listener, which hands it to the session.
package web

import (
	"embed"
	"io/fs"
)

//go:embed static
var static embed.FS

//go:embed callback.html
var callbackPage []byte

// IndexFile is the entry document served for client-side routes.
const IndexFile = "index.html"

// Assets returns the embedded single-page shell rooted at its index.
func Assets() fs.FS {
	sub, err := fs.Sub(static, "static")
	if err != nil {
		panic(err)
	}
	return sub
}

// CallbackPage returns the relay page that posts the redirect fragment to the local listener.
func CallbackPage() []byte {
	return callbackPage
}
