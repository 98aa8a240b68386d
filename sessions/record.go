// Package sessions caches the association between a login and its current
// token pair. The cache accelerates "is this login active" lookups and is
// the revocation point for logout; it is never the source of truth for
// identity or token validity.
package sessions

import (
	"encoding/json"

	"github.com/pkg/errors"

	"github.com/jrsteele09/go-session-auth/token"
	"github.com/jrsteele09/go-session-auth/users"
)

// SchemaVersion is bumped whenever the serialized Record shape changes.
// Stores treat records with an unknown version as absent, so old entries
// age out instead of failing reads after a deploy.
const SchemaVersion = 1

// Record is the cached authentication state for one login: a denormalized
// user snapshot plus the current token pair.
type Record struct {
	Version      int            `json:"version"`
	User         users.Snapshot `json:"user"`
	AccessToken  string         `json:"access_token"`
	RefreshToken string         `json:"refresh_token"`
}

// NewRecord builds a current-version Record for the snapshot and pair.
func NewRecord(snapshot users.Snapshot, pair *token.Pair) *Record {
	return &Record{
		Version:      SchemaVersion,
		User:         snapshot,
		AccessToken:  pair.AccessToken,
		RefreshToken: pair.RefreshToken,
	}
}

// Marshal serializes the record for storage.
func (r *Record) Marshal() ([]byte, error) {
	data, err := json.Marshal(r)
	if err != nil {
		return nil, errors.Wrap(err, "marshal session record")
	}
	return data, nil
}

// UnmarshalRecord parses a stored record. A record whose schema version is
// not current returns (nil, nil): callers treat it as a cache miss.
func UnmarshalRecord(data []byte) (*Record, error) {
	var rec Record
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, errors.Wrap(err, "unmarshal session record")
	}
	if rec.Version != SchemaVersion {
		return nil, nil
	}
	return &rec, nil
}
