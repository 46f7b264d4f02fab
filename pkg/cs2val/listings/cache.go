package listings

import "github.com/pyrrhulla/cs2val/pkg/cs2val/types"

// quoteCache remembers lookups for the lifetime of one Client. A present
// entry holding nil means the service confirmed there is no listing, which
// is distinct from a key that was never looked up. Entries are never
// overwritten. Not safe for concurrent use; each Client owns exactly one.
type quoteCache struct {
	entries map[string]*types.Quote
}

func newQuoteCache() *quoteCache {
	return &quoteCache{entries: make(map[string]*types.Quote)}
}

func (c *quoteCache) get(key string) (*types.Quote, bool) {
	q, ok := c.entries[key]
	return q, ok
}

func (c *quoteCache) put(key string, q *types.Quote) {
	if _, ok := c.entries[key]; ok {
		return
	}
	c.entries[key] = q
}
