// Package models defines the session entity, request enums and the persistence interface shared by the session
// manager and its storage backends.
//
//   - [Token] : bearer token with an absolute expiry in epoch milliseconds
//   - [TimeRange] : listening-history window accepted by the top-items endpoints
//   - [Seeds] : artist and track identifiers for the recommendations endpoint
//   - [Storage] : string key/value persistence, the durable home of a [Token]
package models
