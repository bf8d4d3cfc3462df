// Package repositories implements SQLite persistence.
//
// [StorageRepository] backs [models.Storage] with the key/value storage table created by the
// shared migrations. The session package keeps the captured access token and its expiry there, so a
// login survives process restarts the way browser local storage survives page reloads.
//
// Writes are upserts and deletes accept several keys so that a token and its expiry leave together.
package repositories
