package cache

import (
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
)

type entry struct {
	principal string
	expiresAt time.Time
}

// PrincipalCache memoizes verified bearer token → principal id so repeated
// requests skip signature verification. Entries carry the token's own
// expiry so a cached token cannot outlive itself. This is the only
// long-lived process-wide cache; link and click data are never cached
// across requests. Safe for concurrent use.
type PrincipalCache struct {
	c *lru.Cache[string, entry]
}

func NewPrincipalCache(size int) (*PrincipalCache, error) {
	c, err := lru.New[string, entry](size)
	if err != nil {
		return nil, err
	}
	return &PrincipalCache{c: c}, nil
}

// Get returns the cached principal for a token, evicting expired entries.
func (pc *PrincipalCache) Get(token string) (string, bool) {
	e, ok := pc.c.Get(token)
	if !ok {
		return "", false
	}
	if !e.expiresAt.IsZero() && time.Now().After(e.expiresAt) {
		pc.c.Remove(token)
		return "", false
	}
	return e.principal, true
}

// Set caches a verified token. A zero expiresAt means the token never
// expires and the entry lives until LRU eviction.
func (pc *PrincipalCache) Set(token, principal string, expiresAt time.Time) {
	pc.c.Add(token, entry{principal: principal, expiresAt: expiresAt})
}
