// api/cache/store.go
package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/campuspulse/api/model"
)

// Key identifies a cached payload. It always carries the full tuple of
// operation, tenant and role: two tenants, or two roles within one tenant,
// must never observe each other's cached payload even though they hit the
// same logical endpoint. That tuple is a floor, not the whole key: anything
// else that changes the payload must be in the key too. PrincipalID is set
// for operations whose payload belongs to one individual, and Variant is
// the canonical form of the request parameters the payload depends on.
type Key struct {
	Operation   string
	TenantID    string
	Role        model.Role
	PrincipalID string
	Variant     string
}

func (k Key) String() string {
	s := fmt.Sprintf("resp:%s:%s:%s", k.Operation, k.TenantID, k.Role)
	if k.PrincipalID != "" {
		s += ":" + k.PrincipalID
	}
	if k.Variant != "" {
		s += ":" + k.Variant
	}
	return s
}

// Entry is a previously computed payload. Entries are owned exclusively by
// the store; they expire by age and have no explicit delete path.
type Entry struct {
	Payload  []byte    `json:"payload"`
	StoredAt time.Time `json:"stored_at"`
	Tier     Tier      `json:"-"`
}

// Status classifies an entry's age against its tier.
type Status int

const (
	// Fresh: age <= ttl, serve as-is.
	Fresh Status = iota
	// StaleServable: ttl < age <= ttl+stale, serve but trigger a refresh.
	StaleServable
	// Expired: beyond ttl+stale, treat as a miss.
	Expired
)

// Freshness classifies an entry at the given instant.
func Freshness(e Entry, now time.Time) Status {
	age := now.Sub(e.StoredAt)
	switch {
	case age <= e.Tier.TTL:
		return Fresh
	case age <= e.Tier.TTL+e.Tier.Stale:
		return StaleServable
	default:
		return Expired
	}
}

// Store is the shared response cache. Implementations must keep single-key
// writes atomic with respect to concurrent reads: a reader sees the old entry
// or the fully written new one, never a torn value. Concurrent misses may
// race to Set the same key; last write wins.
type Store interface {
	// Get returns the entry for key and whether one exists. Entries past
	// ttl+stale are reported as absent.
	Get(ctx context.Context, key Key) (Entry, bool, error)

	// Set stores payload under key, all-or-nothing, governed by tier.
	Set(ctx context.Context, key Key, payload []byte, tier Tier) error
}
