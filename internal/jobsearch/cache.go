package jobsearch

import (
	"time"

	"github.com/jellydator/ttlcache/v3"
)

// resultCache is a size-bounded LRU whose entries expire ttl after they were stored.
// Postings are copied on the way in and out so callers cannot mutate cached results.
type resultCache struct {
	items *ttlcache.Cache[string, []Posting]
}

func newResultCache(ttl time.Duration, size int) *resultCache {
	return &resultCache{
		items: ttlcache.New[string, []Posting](
			ttlcache.WithTTL[string, []Posting](ttl),
			ttlcache.WithCapacity[string, []Posting](uint64(size)),
			ttlcache.WithDisableTouchOnHit[string, []Posting](),
		),
	}
}

func (c *resultCache) get(key string) ([]Posting, bool) {
	item := c.items.Get(key)
	if item == nil {
		return nil, false
	}
	return clonePostings(item.Value()), true
}

func (c *resultCache) put(key string, postings []Posting) {
	c.items.Set(key, clonePostings(postings), ttlcache.DefaultTTL)
}
