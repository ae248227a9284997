package cache

import (
	"time"

	gocache "github.com/patrickmn/go-cache"
)

// ChunkCache holds uploaded file chunks until they are consumed during
// assembly or expire. Entries are exclusively owned by the cache.
type ChunkCache struct {
	c *gocache.Cache
}

func NewChunkCache(ttl time.Duration) *ChunkCache {
	return &ChunkCache{c: gocache.New(ttl, time.Minute)}
}

// Add inserts a chunk and reports whether the id was free. The underlying
// Add is atomic, so concurrent inserts with the same id cannot both win.
func (cc *ChunkCache) Add(id string, chunk []byte) bool {
	return cc.c.Add(id, chunk, gocache.DefaultExpiration) == nil
}

func (cc *ChunkCache) Has(id string) bool {
	_, ok := cc.c.Get(id)
	return ok
}

// Consume removes and returns a chunk. Each chunk is single-use.
func (cc *ChunkCache) Consume(id string) ([]byte, bool) {
	v, ok := cc.c.Get(id)
	if !ok {
		return nil, false
	}
	cc.c.Delete(id)
	return v.([]byte), true
}

// RateLimiter counts requests per key inside a burst window. Counting is
// best-effort under heavy concurrent bursts, not linearizable; the store's
// transactional guarantees carry correctness, this only sheds load.
type RateLimiter struct {
	c   *gocache.Cache
	max int
}

func NewRateLimiter(window time.Duration, max int) *RateLimiter {
	return &RateLimiter{c: gocache.New(window, window), max: max}
}

func (rl *RateLimiter) Allow(key string) bool {
	if err := rl.c.Add(key, 1, gocache.DefaultExpiration); err == nil {
		return rl.max >= 1
	}
	n, err := rl.c.IncrementInt(key, 1)
	if err != nil {
		// Entry expired between Add and Increment; treat as a fresh window.
		return rl.max >= 1
	}
	return n <= rl.max
}
