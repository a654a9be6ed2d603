package mempool

import (
	"fmt"

	"github.com/spendbench/spendbench/internal/cost"
	"github.com/spendbench/spendbench/internal/enginerr"
)

// Policy is a node-local admission floor, stricter than anything the
// pool's capacity-driven eviction enforces on its own. Two nodes with
// different policies can disagree on what they relay without disagreeing
// on consensus.
type Policy struct {
	// MinFeePerCostNum/Denom set the floor as a fraction; denom zero
	// means no floor.
	MinFeePerCostNum   uint64
	MinFeePerCostDenom uint64
}

// DefaultPolicy returns a policy with no extra floor beyond consensus.
func DefaultPolicy() *Policy {
	return &Policy{}
}

// Check rejects an item that doesn't clear this node's fee-per-cost
// floor. It runs before Pool.Admit, so a rejection here never touches
// pool state.
func (p *Policy) Check(it *Item) error {
	if p.MinFeePerCostDenom == 0 {
		return nil
	}
	if !cost.FeePerCostGTE(it.Fee, it.Cost, p.MinFeePerCostNum, p.MinFeePerCostDenom) {
		return fmt.Errorf("%w: fee-per-cost below node floor %d/%d", enginerr.ErrInvalidFeeLowFee, p.MinFeePerCostNum, p.MinFeePerCostDenom)
	}
	return nil
}
