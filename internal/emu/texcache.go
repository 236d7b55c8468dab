package emu

import "github.com/FabianRolfMatthiasNoll/RSXEmulator/internal/backend"

type cacheEntry struct {
	ea   uint32
	size int
	used uint64
	up   *backend.TextureUpload
}

// texCache remembers uploaded textures by key so clean units are not
// transcoded again. Entries die when the GPU writes over their source.
type texCache struct {
	limit   int
	tick    uint64
	entries map[backend.TextureKey]*cacheEntry
}

func newTexCache(limit int) *texCache {
	return &texCache{limit: limit, entries: make(map[backend.TextureKey]*cacheEntry)}
}

func (c *texCache) get(k backend.TextureKey) (*backend.TextureUpload, bool) {
	e, ok := c.entries[k]
	if !ok {
		return nil, false
	}
	c.tick++
	e.used = c.tick
	return e.up, true
}

func (c *texCache) put(k backend.TextureKey, ea uint32, size int, up *backend.TextureUpload) {
	if _, ok := c.entries[k]; !ok && len(c.entries) >= c.limit {
		c.evict()
	}
	c.tick++
	c.entries[k] = &cacheEntry{ea: ea, size: size, used: c.tick, up: up}
}

// evict drops the least recently used entry.
func (c *texCache) evict() {
	var (
		oldest backend.TextureKey
		least  uint64
		found  bool
	)
	for k, e := range c.entries {
		if !found || e.used < least {
			oldest, least, found = k, e.used, true
		}
	}
	if found {
		delete(c.entries, oldest)
	}
}

// invalidate drops entries whose guest source overlaps [ea, ea+n) and
// returns how many were dropped.
func (c *texCache) invalidate(ea uint32, n int) int {
	dropped := 0
	lo, hi := uint64(ea), uint64(ea)+uint64(n)
	for k, e := range c.entries {
		s := uint64(e.ea)
		if s < hi && lo < s+uint64(e.size) {
			delete(c.entries, k)
			dropped++
		}
	}
	return dropped
}

func (c *texCache) reset() { clear(c.entries) }

func (c *texCache) len() int { return len(c.entries) }
