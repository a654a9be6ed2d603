package cost

import (
	"errors"
	"testing"

	"github.com/spendbench/spendbench/internal/enginerr"
	"github.com/spendbench/spendbench/pkg/types"
)

func npcWith(conds ...types.Condition) types.NPC {
	grouped := make(types.ConditionsByOpcode)
	for _, c := range conds {
		grouped.Add(c)
	}
	return types.NPC{ConditionsByOpcode: grouped}
}

func TestBundleCostBasic(t *testing.T) {
	npc := npcWith(types.Condition{Opcode: types.OpCreateCoin}, types.Condition{Opcode: types.OpCreateCoin})
	c, err := BundleCost(100, []types.NPC{npc}, 50, 1, 1_000_000)
	if err != nil {
		t.Fatalf("BundleCost: %v", err)
	}
	want := uint64(100) + 2*OpcodeCost(types.OpCreateCoin) + ByteCost*50
	if c != want {
		t.Errorf("BundleCost = %d, want %d", c, want)
	}
}

func TestBundleCostClvmRatioScalesByteCost(t *testing.T) {
	npc := npcWith()
	c1, _ := BundleCost(0, []types.NPC{npc}, 10, 1, 1_000_000)
	c2, _ := BundleCost(0, []types.NPC{npc}, 10, 3, 1_000_000)
	if c2 != 3*c1 {
		t.Errorf("clvm cost ratio should scale byte cost: c1=%d c2=%d", c1, c2)
	}
}

func TestBundleCostExceedsMax(t *testing.T) {
	npc := npcWith(types.Condition{Opcode: types.OpAggSig})
	_, err := BundleCost(1_000_000, []types.NPC{npc}, 0, 1, 100)
	if !errors.Is(err, enginerr.ErrBlockCostExceedsMax) {
		t.Errorf("expected ErrBlockCostExceedsMax, got %v", err)
	}
}

func TestBundleCostZeroRejected(t *testing.T) {
	npc := npcWith()
	_, err := BundleCost(0, []types.NPC{npc}, 0, 1, 1_000_000)
	if !errors.Is(err, enginerr.ErrUnknown) {
		t.Errorf("expected ErrUnknown for zero-cost bundle, got %v", err)
	}
}

func TestFeePerCostGTE(t *testing.T) {
	// 10/2 == 20/4
	if !FeePerCostGTE(10, 2, 20, 4) {
		t.Error("10/2 should be >= 20/4")
	}
	// 10/1 > 10/2
	if !FeePerCostGTE(10, 1, 10, 2) {
		t.Error("10/1 should be >= 10/2")
	}
	if FeePerCostGTE(10, 2, 10, 1) {
		t.Error("10/2 should not be >= 10/1")
	}
}

func TestFeePerCostGTELargeValues(t *testing.T) {
	// Values large enough that fee*cost overflows 64 bits in a naive
	// comparison; the cross-multiplication must still be exact.
	huge := uint64(1) << 62
	if !FeePerCostGTE(huge, 5, huge, 5) {
		t.Error("equal fee_per_cost with huge values should compare equal")
	}
	if FeePerCostGTE(huge, 5, huge+8, 5) {
		t.Error("smaller fee over same cost should not be >=")
	}
}

func TestFeePerCostGT(t *testing.T) {
	if FeePerCostGT(10, 2, 20, 4) {
		t.Error("equal fee_per_cost should not be strictly greater")
	}
	if !FeePerCostGT(11, 2, 20, 4) {
		t.Error("11/2 should be strictly greater than 20/4 (5.0)")
	}
}
