package cache

import "time"

// Entry is a cached ranking: item ids in rank order.
type Entry struct {
	Key       string    `json:"-"`
	IDs       []string  `json:"ids"`
	ExpiresAt time.Time `json:"expires_at,omitzero"` // zero = no expiry
}

// Expired reports whether the entry is past its lifetime at now.
func (e *Entry) Expired(now time.Time) bool {
	return !e.ExpiresAt.IsZero() && !now.Before(e.ExpiresAt)
}

// Status is the outcome of a cache read.
type Status int

const (
	// Miss means no live entry exists for the key.
	Miss Status = iota
	// Hit means Entry holds a live ranking.
	Hit
	// Unavailable means the backend failed; callers treat it as a miss.
	Unavailable
)

// String returns the metric label of the status.
func (s Status) String() string {
	switch s {
	case Hit:
		return "hit"
	case Unavailable:
		return "error"
	default:
		return "miss"
	}
}

// Lookup is the result of a cache read.
type Lookup struct {
	Status Status
	Entry  Entry
	Err    error // set when Status is Unavailable
}

// HitResult builds a hit.
func HitResult(e Entry) Lookup { return Lookup{Status: Hit, Entry: e} }

// MissResult builds a miss.
func MissResult() Lookup { return Lookup{Status: Miss} }

// UnavailableResult builds a backend failure.
func UnavailableResult(err error) Lookup { return Lookup{Status: Unavailable, Err: err} }
