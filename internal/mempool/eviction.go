package mempool

import "sort"

// sortByFeePerCostDesc orders items by descending fee-per-cost, tied
// items broken by ascending hash so selection is deterministic across
// nodes that hold the same pool contents.
func sortByFeePerCostDesc(items []*Item) {
	sort.Slice(items, func(i, j int) bool {
		if items[i].feePerCostGTE(items[j]) && items[j].feePerCostGTE(items[i]) {
			return items[i].Hash.Less(items[j].Hash)
		}
		return items[i].feePerCostGTE(items[j])
	})
}
