package mempool

import (
	"testing"

	"github.com/spendbench/spendbench/pkg/types"
)

func TestPotentialCacheAddAndHas(t *testing.T) {
	c := NewPotentialCache(10)
	c.Add(hashOf(1), types.SpendBundle{})
	if !c.Has(hashOf(1)) {
		t.Error("expected bundle to be cached")
	}
	if c.Len() != 1 {
		t.Errorf("len = %d, want 1", c.Len())
	}
}

func TestPotentialCacheEvictsOldestOverCapacity(t *testing.T) {
	c := NewPotentialCache(2)
	c.Add(hashOf(1), types.SpendBundle{})
	c.Add(hashOf(2), types.SpendBundle{})
	c.Add(hashOf(3), types.SpendBundle{})

	if c.Has(hashOf(1)) {
		t.Error("oldest entry should have been evicted")
	}
	if !c.Has(hashOf(2)) || !c.Has(hashOf(3)) {
		t.Error("two most recent entries should remain")
	}
	if c.Len() != 2 {
		t.Errorf("len = %d, want 2", c.Len())
	}
}

func TestPotentialCacheReAddKeepsOriginalPosition(t *testing.T) {
	c := NewPotentialCache(2)
	c.Add(hashOf(1), types.SpendBundle{})
	c.Add(hashOf(2), types.SpendBundle{})
	c.Add(hashOf(1), types.SpendBundle{}) // re-add, should be a no-op
	c.Add(hashOf(3), types.SpendBundle{})

	if c.Has(hashOf(1)) {
		t.Error("re-adding should not refresh position; entry 1 should have been evicted")
	}
}

func TestPotentialCacheRemove(t *testing.T) {
	c := NewPotentialCache(10)
	c.Add(hashOf(1), types.SpendBundle{})
	c.Remove(hashOf(1))
	if c.Has(hashOf(1)) {
		t.Error("entry should be removed")
	}
	if c.Len() != 0 {
		t.Errorf("len = %d, want 0", c.Len())
	}
}

func TestPotentialCacheAllPreservesInsertionOrder(t *testing.T) {
	c := NewPotentialCache(10)
	b1 := types.SpendBundle{Spends: []types.CoinSpend{{Coin: types.Coin{Amount: 1}}}}
	b2 := types.SpendBundle{Spends: []types.CoinSpend{{Coin: types.Coin{Amount: 2}}}}
	c.Add(hashOf(1), b1)
	c.Add(hashOf(2), b2)

	all := c.All()
	if len(all) != 2 || all[0].Spends[0].Coin.Amount != 1 || all[1].Spends[0].Coin.Amount != 2 {
		t.Errorf("unexpected order: %v", all)
	}
}
