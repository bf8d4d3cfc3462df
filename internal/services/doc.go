// Package services implements the Spotify Web API client used by the CLI, the TUI and the dashboard loader.
//
// # Service Interface
//
// [Service] is the read surface the dashboard needs: profile, top artists, top tracks and recommendations.
// [SpotifyService] implements it against either the Web API or the proxy started by `spotiverse serve`.
//
// # Authentication
//
// Tokens come from the implicit grant. [Authorizer] builds the authorize URL with response_type=token;
// the token itself is owned by the session package and reaches requests through an [oauth2.TokenSource]
// wired into [NewClient]. Nothing here refreshes or issues tokens.
//
// # Typed Schema
//
// Responses decode into explicit structs. Normalize methods replace absent lists with empty slices and an
// absent album with the zero album, so renderers never branch on nil. [ImageURL] guards image indexing.
//
// # Error Handling
//
// Non-2xx responses become [*APIError] carrying the status and the upstream message, which unwraps to
// [shared.ErrAPIRequest]. [IsAuthError] classifies errors that should end the session:
//   - HTTP 401 or 403
//   - an upstream message mentioning the token
//   - [shared.ErrNotAuthenticated] or [shared.ErrTokenExpired] from the token source
//
// # Passthrough
//
// [APIService] performs raw requests and returns the status, headers and body as received. It backs `api get`.
package services
