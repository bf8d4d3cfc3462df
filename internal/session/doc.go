// Package session manages the lifecycle of the bearer token used for every Web API call.
//
// # Capture
//
// After the identity provider redirects back, the URL fragment carries access_token and expires_in.
// [Session.Capture] parses it, computes an absolute expiry in epoch milliseconds and persists both values
// under [models.TokenKey] and [models.TokenExpiryKey]. A fragment of any other shape yields no token and no write.
//
// # Load
//
// [Session.Load] reads the persisted pair back and accepts it only while the expiry is in the future.
// Expired, partial or unparseable records are cleared as a side effect.
//
// # Invalidate
//
// [Session.Invalidate] clears storage and memory. It also cancels every context derived with [Session.Bind],
// so requests issued on behalf of the session stop when the user logs out or the token is rejected.
//
// # Precedence
//
// [Session.Start] applies the startup rule: a fresh redirect token beats a persisted one, a valid persisted token
// beats nothing.
package session
