// Package mempool holds one admission pool per competing chain tip (the
// Mempool Core) and the controller that keeps those pools in sync as
// tips advance, fork, or disappear (the Tip Transition Controller).
package mempool

import (
	"fmt"
	"sync"

	"github.com/spendbench/spendbench/internal/enginerr"
	"github.com/spendbench/spendbench/pkg/types"
)

// Pool holds the bundles admitted against one chain tip. Conflicts are
// resolved by fee-per-cost: a bundle only displaces another if it pays
// strictly more per unit of cost, never by arrival order alone.
type Pool struct {
	mu sync.RWMutex

	tip      types.Hash
	items    map[types.Hash]*Item
	removals map[types.CoinID]types.Hash // coin id -> item hash that removes it

	capacity  uint64
	totalCost uint64
}

// NewPool creates an empty pool for the given tip, with a fixed cost
// capacity (sum of admitted items' Cost never exceeds it).
func NewPool(tip types.Hash, capacity uint64) *Pool {
	return &Pool{
		tip:      tip,
		items:    make(map[types.Hash]*Item),
		removals: make(map[types.CoinID]types.Hash),
		capacity: capacity,
	}
}

// Tip returns the chain tip this pool is valid against.
func (p *Pool) Tip() types.Hash {
	return p.tip
}

// Has reports whether an item with the given hash is already admitted.
func (p *Pool) Has(hash types.Hash) bool {
	p.mu.RLock()
	defer p.mu.RUnlock()
	_, ok := p.items[hash]
	return ok
}

// Get returns the admitted item for hash, or nil.
func (p *Pool) Get(hash types.Hash) *Item {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.items[hash]
}

// Count returns the number of admitted items.
func (p *Pool) Count() int {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return len(p.items)
}

// TotalCost returns the sum of every admitted item's cost.
func (p *Pool) TotalCost() uint64 {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.totalCost
}

// Items returns every admitted item, ordered by descending fee-per-cost
// (hash-tiebroken) rather than map iteration order, so callers that
// replay or select from it get the same result on every node.
func (p *Pool) Items() []*Item {
	p.mu.RLock()
	defer p.mu.RUnlock()
	out := make([]*Item, 0, len(p.items))
	for _, it := range p.items {
		out = append(out, it)
	}
	sortByFeePerCostDesc(out)
	return out
}

// Admit runs the admission algorithm against an item that has already
// been run, checked, and priced:
//
//  1. an item already held by hash is a no-op, not an error.
//  2. collect every existing item that removes a coin this item also
//     removes (its conflict set).
//  3. if any conflicting item's fee-per-cost is >= this item's, reject
//     with ErrMempoolConflict: the submitter can retry with a higher
//     fee, or the conflict may clear on the next tip.
//  4. otherwise every conflicting item is evicted and returned to the
//     caller, which offers them to the potential-tx cache.
//  5. if the pool would then exceed its cost capacity, evict the
//     lowest-fee-per-cost items (cheapest first) until it fits; if the
//     new item would itself be the cheapest thing in the pool, reject
//     with ErrInvalidFeeLowFee instead and put any conflict-evicted items
//     back.
//
// Returns the items evicted to make room for it.
func (p *Pool) Admit(it *Item) (evicted []*Item, err error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if _, ok := p.items[it.Hash]; ok {
		return nil, nil
	}

	conflicts := p.conflictSetLocked(it)
	for _, c := range conflicts {
		if c.feePerCostGTE(it) {
			return nil, fmt.Errorf("%w: conflicts with %x at equal or better fee rate", enginerr.ErrMempoolConflict, c.Hash)
		}
	}
	for _, c := range conflicts {
		p.removeLocked(c.Hash)
		evicted = append(evicted, c)
	}

	if p.totalCost+it.Cost > p.capacity {
		freed, ok := p.evictForCapacityLocked(it)
		if !ok {
			for _, c := range conflicts {
				p.insertLocked(c)
			}
			return nil, enginerr.ErrInvalidFeeLowFee
		}
		evicted = append(evicted, freed...)
	}

	p.insertLocked(it)
	return evicted, nil
}

// conflictSetLocked returns every existing item that removes a coin also
// removed by it, deduplicated by item hash. Must be called with p.mu held.
func (p *Pool) conflictSetLocked(it *Item) []*Item {
	seen := make(map[types.Hash]bool)
	var out []*Item
	for _, coinID := range it.Removals {
		if h, ok := p.removals[coinID]; ok && !seen[h] {
			seen[h] = true
			out = append(out, p.items[h])
		}
	}
	return out
}

// evictForCapacityLocked evicts the lowest fee-per-cost items, cheapest
// first, until admitting it would fit within capacity. Returns ok=false
// without evicting anything if it never out-ranks the cheapest remaining
// occupant, i.e. the pool genuinely has no room for it.
func (p *Pool) evictForCapacityLocked(it *Item) (evicted []*Item, ok bool) {
	needed := p.totalCost + it.Cost - p.capacity
	var freed uint64

	for freed < needed {
		cheapest := p.cheapestLocked()
		if cheapest == nil || cheapest.feePerCostGTE(it) {
			for _, e := range evicted {
				p.insertLocked(e)
			}
			return nil, false
		}
		p.removeLocked(cheapest.Hash)
		evicted = append(evicted, cheapest)
		freed += cheapest.Cost
	}
	return evicted, true
}

// cheapestLocked returns the admitted item with the lowest fee-per-cost,
// or nil if the pool is empty. Must be called with p.mu held.
func (p *Pool) cheapestLocked() *Item {
	var lowest *Item
	for _, it := range p.items {
		if lowest == nil || lowest.feePerCostGTE(it) {
			lowest = it
		}
	}
	return lowest
}

func (p *Pool) insertLocked(it *Item) {
	p.items[it.Hash] = it
	for _, coinID := range it.Removals {
		p.removals[coinID] = it.Hash
	}
	p.totalCost += it.Cost
}

// Remove evicts an item by hash, if present.
func (p *Pool) Remove(hash types.Hash) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.removeLocked(hash)
}

func (p *Pool) removeLocked(hash types.Hash) {
	it, ok := p.items[hash]
	if !ok {
		return
	}
	for _, coinID := range it.Removals {
		if p.removals[coinID] == hash {
			delete(p.removals, coinID)
		}
	}
	delete(p.items, hash)
	p.totalCost -= it.Cost
}

// BestBundle greedily selects admitted items by descending fee-per-cost,
// breaking ties by hash for determinism. An item that would push the
// total over maxCost is skipped and the walk continues with the
// remaining items. It returns the selected items rather than a
// merged bundle: block assembly decides how to combine them.
func (p *Pool) BestBundle(maxCost uint64) []*Item {
	p.mu.RLock()
	defer p.mu.RUnlock()

	items := make([]*Item, 0, len(p.items))
	for _, it := range p.items {
		items = append(items, it)
	}
	sortByFeePerCostDesc(items)

	var out []*Item
	var used uint64
	for _, it := range items {
		if used+it.Cost > maxCost {
			continue
		}
		out = append(out, it)
		used += it.Cost
	}
	return out
}
