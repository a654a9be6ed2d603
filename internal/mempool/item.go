// Package mempool holds one admission pool per competing chain tip (the
// Mempool Core) and the controller that keeps those pools in sync as
// tips advance, fork, or disappear (the Tip Transition Controller).
package mempool

import (
	"github.com/spendbench/spendbench/internal/cost"
	"github.com/spendbench/spendbench/pkg/crypto"
	"github.com/spendbench/spendbench/pkg/types"
)

// Item is a bundle that has already been run, classified, checked, and
// priced: everything a pool needs to order, conflict-check, and
// eventually emit it, without re-running any of that work.
type Item struct {
	Hash      types.Hash
	Bundle    types.SpendBundle
	Removals  []types.CoinID
	Additions []types.CoinID
	Cost      uint64
	Fee       uint64
}

// feePerCostGTE reports whether item's fee-per-cost is at least other's.
func (it *Item) feePerCostGTE(other *Item) bool {
	return cost.FeePerCostGTE(it.Fee, it.Cost, other.Fee, other.Cost)
}

// bundleHash derives the content-addressed hash a bundle is tracked
// under everywhere in this package (pool items, seen-set, both replay
// caches).
func bundleHash(bundle types.SpendBundle) types.Hash {
	return crypto.BundleID(bundle)
}
