// package models defines the data model for the spotiverse client and proxy
package models

import (
	"fmt"
	"time"
)

// Storage keys holding the persisted session.
const (
	TokenKey       = "spotify_token"
	TokenExpiryKey = "spotify_token_expiry"
)

// Storage defines durable string key/value persistence.
// Implementations include the SQLite-backed repository and an in-memory map for tests.
type Storage interface {
	Get(key string) (string, bool, error) // Get returns the value for key and whether it was present
	Set(key, value string) error          // Set creates or replaces the value for key
	Delete(keys ...string) error          // Delete removes keys; missing keys are not an error
}

// Token is a bearer credential with an absolute expiry.
type Token struct {
	Value     string `json:"value"`
	ExpiresAt int64  `json:"expires_at"` // epoch milliseconds
}

// ValidAt reports whether the token is non-empty and expires strictly after now.
func (t *Token) ValidAt(now time.Time) bool {
	return t != nil && t.Value != "" && t.ExpiresAt > now.UnixMilli()
}

// Expiry returns ExpiresAt as a [time.Time].
func (t *Token) Expiry() time.Time {
	return time.UnixMilli(t.ExpiresAt)
}

// Remaining returns the time left before expiry, never negative.
func (t *Token) Remaining(now time.Time) time.Duration {
	d := t.Expiry().Sub(now)
	if d < 0 {
		return 0
	}
	return d
}

// TimeRange selects the window the top-items endpoints compute over.
type TimeRange string

const (
	ShortTerm  TimeRange = "short_term"
	MediumTerm TimeRange = "medium_term"
	LongTerm   TimeRange = "long_term"
)

// TimeRanges lists the recognized ranges in selector order.
var TimeRanges = []TimeRange{ShortTerm, MediumTerm, LongTerm}

// ParseTimeRange validates s against the recognized ranges. Empty input yields [MediumTerm].
func ParseTimeRange(s string) (TimeRange, error) {
	if s == "" {
		return MediumTerm, nil
	}
	for _, tr := range TimeRanges {
		if string(tr) == s {
			return tr, nil
		}
	}
	return "", fmt.Errorf("unknown time range %q (want short_term, medium_term or long_term)", s)
}

// Label returns the human-readable window name.
func (tr TimeRange) Label() string {
	switch tr {
	case ShortTerm:
		return "Last 4 Weeks"
	case MediumTerm:
		return "Last 6 Months"
	case LongTerm:
		return "Last 12 Months"
	default:
		return "Select Time Range"
	}
}

// Next cycles to the following range, wrapping around.
func (tr TimeRange) Next() TimeRange {
	for i, r := range TimeRanges {
		if r == tr {
			return TimeRanges[(i+1)%len(TimeRanges)]
		}
	}
	return MediumTerm
}

// Seed limits imposed by the recommendations endpoint.
const (
	MaxSeeds       = 5
	MaxArtistSeeds = 2
	MaxTrackSeeds  = 3
)

// Seeds holds identifiers used to bias generated recommendations.
type Seeds struct {
	Artists []string
	Tracks  []string
}

// Len returns the total number of seeds.
func (s Seeds) Len() int {
	return len(s.Artists) + len(s.Tracks)
}
