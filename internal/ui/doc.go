// Package ui implements an interactive terminal interface using bubbletea's Elm architecture.
//
// The TUI shows the dashboard for one time range across four tabs:
//  1. [ProfileView] : Display name, account details, avatar and profile link
//  2. [TopTracksView] : Ranked top tracks with artists, album, duration and popularity
//  3. [TopArtistsView] : Ranked top artists with genres, popularity and followers
//  4. [RecommendationsView] : Tracks recommended from the top artist and track seeds
//
// The (view) [Model] implements bubbletea/Elm's standard Init/Update/View pattern, receiving messages via the Msg union type.
// Loads run through a [Loader]; progress updates flow through a channel and are rendered next to a spinner.
// Switching the time range cancels the load in flight and starts a new one.
//
// Logging out invalidates the session, which also aborts any request still running.
//
// Keyboard navigation uses tab/shift+tab or 1-4 for views, t for the time range, x to log out and q to quit,
// with contextual help displayed via charmbracelet/bubbles/help.
package ui
