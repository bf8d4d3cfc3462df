// Package server provides the companion HTTP server for spotiverse: an upstream API proxy, the client's static assets
// and the login relay used by the CLI.
//
// # Router Infrastructure
//
// The [Router] interface defines HTTP routing with middleware support.
//
// [Middleware] wraps handlers in reverse order (last added executes first), following the standard Go pattern.
//
// The [BasicRouter] implementation uses [http.ServeMux] internally with method filtering.
//
// # Proxy
//
// [ProxyHandler] strips its prefix and forwards the remainder of the path, the query string, the Authorization
// header and any body to the upstream base URL. Upstream answers are relayed with their status and body untouched.
// When no answer arrives the handler writes a 500 with a fixed [ProxyError] body.
//
// # Static Assets
//
// [StaticHandler] serves files from the configured directory (or the embedded shell) and answers every unknown path
// with index.html so the client can route it.
//
// # Login Relay
//
// The implicit grant returns the token in the URL fragment, which never reaches a server. [CallbackHandler] serves a
// small page on the redirect path that posts the fragment back to [FragmentPath]. The state is checked, the token is
// captured and the outcome is sent once through [CallbackHandler.Result].
//
// # Handler Interface
//
// Custom handlers implement the [Handler] interface, which wraps the stdlib handler interface and adds routes,
// allowing handlers to register multiple routes to encapsulate route definitions within the implementation.
package server
