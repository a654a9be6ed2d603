package mempool

import (
	"sort"

	"github.com/spendbench/spendbench/internal/enginerr"
	"github.com/spendbench/spendbench/pkg/types"
)

// Tip describes one candidate chain head the controller tracks a pool
// for, and the block that produced it relative to its parent.
type Tip struct {
	Hash      types.Hash
	PrevHash  types.Hash
	Height    types.Height
	Removals  []types.CoinID // coins spent by this tip's block
	Additions []types.CoinID // coins created by this tip's block (incl. coinbase/fees)
}

// Validator re-runs, classifies, checks, and prices a bundle against a
// given tip, independent of any particular pool's bookkeeping. The
// controller uses it to re-admit replayed items (from OldMempools, the
// potential-tx cache, or sibling pools) without owning the run/check/cost
// pipeline itself.
type Validator interface {
	Validate(tip types.Hash, bundle types.SpendBundle) (*Item, error)
}

// Controller is the Tip Transition Controller (C8): it keeps one Pool
// per live tip, a seen-bundle cache, a FIFO potential-tx cache for
// bundles that may become admissible later, and a height-windowed cache
// of items evicted by tip advance for replay into forks that branch
// further back.
type Controller struct {
	capacity uint64

	pools     map[types.Hash]*Pool
	seen      map[types.Hash]bool
	potential *PotentialCache
	old       *OldMempoolCache
}

// NewController creates an empty controller. capacity bounds every
// pool's total cost; potentialCacheSize and oldMempoolWindow size the
// two replay caches.
func NewController(capacity uint64, potentialCacheSize, oldMempoolWindow int) *Controller {
	return &Controller{
		capacity:  capacity,
		pools:     make(map[types.Hash]*Pool),
		seen:      make(map[types.Hash]bool),
		potential: NewPotentialCache(potentialCacheSize),
		old:       NewOldMempoolCache(oldMempoolWindow),
	}
}

// Seen reports whether a bundle hash has ever been processed.
func (c *Controller) Seen(hash types.Hash) bool {
	return c.seen[hash]
}

// Pool returns the pool for a tip, or nil if the tip isn't tracked.
func (c *Controller) Pool(tip types.Hash) *Pool {
	return c.pools[tip]
}

// Get returns the bundle for hash from any tracked pool, or the zero
// value and false if it is admitted nowhere.
func (c *Controller) Get(hash types.Hash) (types.SpendBundle, bool) {
	for _, p := range c.pools {
		if it := p.Get(hash); it != nil {
			return it.Bundle, true
		}
	}
	return types.SpendBundle{}, false
}

// Admit validates bundle against every live tip and admits it into every
// pool it validates against, mirroring the source's "one spend bundle,
// every pool" fan-out. A bundle accepted into at least one pool is a
// success; validation failures and conflict/capacity rejections from
// individual pools are collected but don't fail the call unless every
// pool rejected it, in which case the first error encountered is
// returned.
func (c *Controller) Admit(bundle types.SpendBundle, v Validator) (accepted bool, firstErr error) {
	hash := bundleHash(bundle)
	if c.seen[hash] {
		return true, nil
	}
	c.seen[hash] = true

	if len(c.pools) == 0 {
		return false, enginerr.ErrUnknown
	}

	for tip, pool := range c.pools {
		it, err := v.Validate(tip, bundle)
		if err != nil {
			if firstErr == nil {
				firstErr = err
			}
			if enginerr.Transient(err) {
				c.potential.Add(hash, bundle)
			}
			continue
		}

		evicted, err := pool.Admit(it)
		for _, e := range evicted {
			c.potential.Add(e.Hash, e.Bundle)
		}
		if err != nil {
			if firstErr == nil {
				firstErr = err
			}
			if enginerr.Transient(err) {
				c.potential.Add(hash, bundle)
			}
			continue
		}
		accepted = true
		c.potential.Remove(hash)
	}
	if accepted {
		return true, nil
	}
	return false, firstErr
}

// NewTips reconciles tracked pools against a new set of live tips,
// following spec.md's keep/update/rebuild rule set:
//
//   - a tip that already has a pool: keep it unchanged.
//   - a tip whose parent has a pool: update that pool in place, evicting
//     items the new block confirmed or invalidated into OldMempools.
//   - any other tip: rebuild from scratch, replaying every sibling pool's
//     items and every OldMempools item recorded above this tip's height.
//
// Pools for tips that are no longer live are dropped. Finally, the
// potential-tx cache is replayed against every surviving pool.
func (c *Controller) NewTips(tips []Tip, v Validator) {
	next := make(map[types.Hash]*Pool, len(tips))

	for _, t := range tips {
		if existing, ok := c.pools[t.Hash]; ok {
			next[t.Hash] = existing
			continue
		}
		if parent, ok := c.pools[t.PrevHash]; ok {
			evicted := c.updatePool(parent, t)
			c.old.Add(t.Height, evicted)
			next[t.Hash] = parent
			continue
		}
		next[t.Hash] = c.rebuildPool(t, v)
	}

	c.pools = next
	c.replayPotential(v)
}

// updatePool removes every item the new tip's block confirmed or
// invalidated (its removals or additions intersect the block's), and
// returns the evicted items for the OldMempools cache.
func (c *Controller) updatePool(p *Pool, t Tip) []*Item {
	removed := make(map[types.CoinID]bool, len(t.Removals))
	for _, r := range t.Removals {
		removed[r] = true
	}
	added := make(map[types.CoinID]bool, len(t.Additions))
	for _, a := range t.Additions {
		added[a] = true
	}

	var evicted []*Item
	for _, it := range p.Items() {
		hit := false
		for _, r := range it.Removals {
			if removed[r] {
				hit = true
				break
			}
		}
		if !hit {
			for _, a := range it.Additions {
				if added[a] {
					hit = true
					break
				}
			}
		}
		if hit {
			p.Remove(it.Hash)
			evicted = append(evicted, it)
		}
	}
	return evicted
}

// rebuildPool creates an empty pool for a tip with no live parent, and
// replays every sibling pool's items plus every OldMempools item above
// this tip's height, attempting to re-admit each.
func (c *Controller) rebuildPool(t Tip, v Validator) *Pool {
	p := NewPool(t.Hash, c.capacity)

	siblingTips := make([]types.Hash, 0, len(c.pools))
	for tip := range c.pools {
		siblingTips = append(siblingTips, tip)
	}
	sort.Slice(siblingTips, func(i, j int) bool { return siblingTips[i].Less(siblingTips[j]) })

	tried := make(map[types.Hash]bool)
	for _, tip := range siblingTips {
		for _, it := range c.pools[tip].Items() {
			c.tryReplay(p, t.Hash, it.Bundle, v, tried)
		}
	}
	for _, it := range c.old.Above(t.Height) {
		c.tryReplay(p, t.Hash, it.Bundle, v, tried)
	}
	return p
}

// tryReplay re-validates a bundle against tip and, if still admissible,
// admits it into p. Validation failures are silently dropped: a bundle
// that no longer holds up against the new tip simply doesn't carry
// forward, mirroring the source's "attempt to re-admit" phrasing.
func (c *Controller) tryReplay(p *Pool, tip types.Hash, bundle types.SpendBundle, v Validator, tried map[types.Hash]bool) {
	hash := bundleHash(bundle)
	if tried[hash] {
		return
	}
	tried[hash] = true

	it, err := v.Validate(tip, bundle)
	if err != nil {
		return
	}
	p.Admit(it)
}

// replayPotential attempts to re-admit every bundle in the potential-tx
// cache against every surviving pool, per spec.md's OldMempools-first
// then potential-tx-second precedence: OldMempools entries are folded
// into rebuilt pools above, before this pass runs.
func (c *Controller) replayPotential(v Validator) {
	for _, bundle := range c.potential.All() {
		for tip, pool := range c.pools {
			it, err := v.Validate(tip, bundle)
			if err != nil {
				continue
			}
			if _, err := pool.Admit(it); err == nil {
				c.potential.Remove(bundleHash(bundle))
			}
		}
	}
}
