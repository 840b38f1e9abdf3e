// Package session manages the tamper-evident local session record and the
// active-role preference.
//
// The session checksum is a non-cryptographic rolling hash. It detects
// accidental corruption and casual tampering of the persisted record; it is
// NOT a security boundary and must never be treated as one. Delegated-mode
// authentication does not touch this package.
package session

import (
	"time"

	"github.com/rulegate/rulegate/internal/principal"
)

// Storage keys. StorageKeySession holds the JSON-encoded session record,
// StorageKeyActiveRole holds a bare role string.
const (
	StorageKeySession    = "auth_session"
	StorageKeyActiveRole = "active_role"
)

// DefaultLifetime is how long a freshly created session stays valid.
const DefaultLifetime = 8 * time.Hour

// Record is the persisted proof of local authentication. A record is valid
// iff now <= ExpiresAt and Checksum matches the integrity hash recomputed
// over {token, user, expiresAt}.
type Record struct {
	Token     string              `json:"token"`
	User      principal.Principal `json:"user"`
	ExpiresAt int64               `json:"expiresAt"` // unix milliseconds
	Checksum  string              `json:"checksum"`
}

// payload is the checksum input: the record without its own checksum, in
// construction key order. Field order here is part of the wire contract.
type payload struct {
	Token     string              `json:"token"`
	User      principal.Principal `json:"user"`
	ExpiresAt int64               `json:"expiresAt"`
}

// IsExpired reports whether the record is past its expiry at the given time.
func (r *Record) IsExpired(now time.Time) bool {
	return now.UnixMilli() > r.ExpiresAt
}
