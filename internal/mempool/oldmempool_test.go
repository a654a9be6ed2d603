package mempool

import "testing"

func TestOldMempoolCacheAddAndAbove(t *testing.T) {
	c := NewOldMempoolCache(3)
	c.Add(10, []*Item{itemOf(1, 1, 100, 10)})
	c.Add(20, []*Item{itemOf(2, 2, 100, 10)})

	above := c.Above(15)
	if len(above) != 1 || above[0].Hash != hashOf(2) {
		t.Errorf("expected only height-20 item above 15, got %v", above)
	}
}

func TestOldMempoolCachePrunesToWindow(t *testing.T) {
	c := NewOldMempoolCache(2)
	c.Add(10, []*Item{itemOf(1, 1, 100, 10)})
	c.Add(20, []*Item{itemOf(2, 2, 100, 10)})
	c.Add(30, []*Item{itemOf(3, 3, 100, 10)})

	if c.Heights() != 2 {
		t.Errorf("heights = %d, want 2", c.Heights())
	}
	above := c.Above(0)
	for _, it := range above {
		if it.Hash == hashOf(1) {
			t.Error("height-10 entry should have been pruned")
		}
	}
}

func TestOldMempoolCacheMergesWithinHeight(t *testing.T) {
	c := NewOldMempoolCache(3)
	c.Add(10, []*Item{itemOf(1, 1, 100, 10)})
	c.Add(10, []*Item{itemOf(2, 2, 100, 10)})

	above := c.Above(0)
	if len(above) != 2 {
		t.Errorf("expected both items merged at height 10, got %d", len(above))
	}
}

func TestOldMempoolCacheNoPerHeightItemCap(t *testing.T) {
	c := NewOldMempoolCache(1)
	items := make([]*Item, 0, 15)
	for i := byte(1); i <= 15; i++ {
		items = append(items, itemOf(i, i, 100, 10))
	}
	c.Add(5, items)

	above := c.Above(0)
	if len(above) != 15 {
		t.Errorf("expected all 15 items retained for the single window height, got %d", len(above))
	}
}
