package mempool

import "github.com/spendbench/spendbench/pkg/types"

// PotentialCache holds bundles that failed admission for a reason that
// might clear on its own — a transient error (internal/enginerr.Transient)
// or a losing conflict — so they can be retried against the next tip.
// It is a FIFO: insertion order is preserved, and the oldest entry is
// dropped once the cache is over capacity, the same "first_in" eviction
// rule as the Python dict this is grounded on.
type PotentialCache struct {
	order []types.Hash
	items map[types.Hash]types.SpendBundle
	cap   int
}

// NewPotentialCache creates an empty cache bounded at capacity entries.
func NewPotentialCache(capacity int) *PotentialCache {
	return &PotentialCache{
		items: make(map[types.Hash]types.SpendBundle),
		cap:   capacity,
	}
}

// Add inserts a bundle, evicting the oldest entry if the cache is over
// capacity. Re-adding a bundle already present is a no-op: it keeps its
// original position, never refreshed to the back.
func (c *PotentialCache) Add(hash types.Hash, bundle types.SpendBundle) {
	if _, ok := c.items[hash]; ok {
		return
	}
	c.items[hash] = bundle
	c.order = append(c.order, hash)

	for c.cap > 0 && len(c.order) > c.cap {
		oldest := c.order[0]
		c.order = c.order[1:]
		delete(c.items, oldest)
	}
}

// Remove drops a bundle from the cache, e.g. once it has been admitted.
func (c *PotentialCache) Remove(hash types.Hash) {
	if _, ok := c.items[hash]; !ok {
		return
	}
	delete(c.items, hash)
	for i, h := range c.order {
		if h == hash {
			c.order = append(c.order[:i], c.order[i+1:]...)
			break
		}
	}
}

// Has reports whether a bundle is cached.
func (c *PotentialCache) Has(hash types.Hash) bool {
	_, ok := c.items[hash]
	return ok
}

// Len returns the number of cached bundles.
func (c *PotentialCache) Len() int {
	return len(c.order)
}

// All returns every cached bundle in insertion order.
func (c *PotentialCache) All() []types.SpendBundle {
	out := make([]types.SpendBundle, 0, len(c.order))
	for _, h := range c.order {
		out = append(out, c.items[h])
	}
	return out
}
