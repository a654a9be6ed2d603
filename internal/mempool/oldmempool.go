package mempool

import (
	"sort"

	"github.com/spendbench/spendbench/pkg/types"
)

// OldMempoolCache holds items evicted by tip advance, snapshotted per
// height, so a sibling tip whose fork point is further back can replay
// them. Only the most recent window heights are kept; entries older than
// the window's earliest height are dropped outright — there is no
// per-height item limit, following spec.md's OLD_MEMPOOL_WINDOW
// definition literally rather than the source's separate (and, read
// closely, orthogonal) per-height cap of 10 items.
type OldMempoolCache struct {
	window   int
	byHeight map[types.Height]map[types.Hash]*Item
}

// NewOldMempoolCache creates an empty cache that retains at most window
// distinct heights.
func NewOldMempoolCache(window int) *OldMempoolCache {
	return &OldMempoolCache{
		window:   window,
		byHeight: make(map[types.Height]map[types.Hash]*Item),
	}
}

// Add records items evicted at height, merging into any items already
// recorded for that height, then prunes to the window.
func (c *OldMempoolCache) Add(height types.Height, items []*Item) {
	if len(items) == 0 {
		return
	}
	dict, ok := c.byHeight[height]
	if !ok {
		dict = make(map[types.Hash]*Item)
		c.byHeight[height] = dict
	}
	for _, it := range items {
		if _, exists := dict[it.Hash]; !exists {
			dict[it.Hash] = it
		}
	}
	c.prune()
}

// prune keeps only the window most recent heights.
func (c *OldMempoolCache) prune() {
	if c.window <= 0 || len(c.byHeight) <= c.window {
		return
	}
	heights := make([]types.Height, 0, len(c.byHeight))
	for h := range c.byHeight {
		heights = append(heights, h)
	}
	sort.Slice(heights, func(i, j int) bool { return heights[i] < heights[j] })

	drop := len(heights) - c.window
	for _, h := range heights[:drop] {
		delete(c.byHeight, h)
	}
}

// Above returns every item recorded at a height strictly greater than
// minHeight, for replay into a pool built from an earlier fork point.
// The result is ordered by descending fee-per-cost (hash-tiebroken),
// not by map iteration, so replay is deterministic across nodes.
func (c *OldMempoolCache) Above(minHeight types.Height) []*Item {
	var out []*Item
	for h, dict := range c.byHeight {
		if h <= minHeight {
			continue
		}
		for _, it := range dict {
			out = append(out, it)
		}
	}
	sortByFeePerCostDesc(out)
	return out
}

// Heights returns the distinct heights currently cached.
func (c *OldMempoolCache) Heights() int {
	return len(c.byHeight)
}
