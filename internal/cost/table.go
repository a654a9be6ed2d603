// Package cost prices a classified bundle in cost units: the Program
// Runner's own execution cost, plus a per-opcode weight for every
// condition it emitted, plus a per-byte charge for the bundle's
// serialized size. MAX_BLOCK_COST and CLVM_COST_RATIO (config.Genesis)
// bound and scale the result.
package cost

import "github.com/spendbench/spendbench/pkg/types"

// Table assigns an integer weight to each opcode, heavier for conditions
// that carry more verification work (signature checks, coin creation)
// than for simple assertions.
//
// Values for AssertCoinConsumed and AssertMyCoinId are taken directly from
// the original engine's per-opcode weights; AggSig/AggSigMe and CreateCoin
// likewise. The height/seconds/parent/puzzlehash/amount assertions,
// ReserveFee, and the announcement pair do not appear in that table (the
// original prices them implicitly inside its general condition-parsing
// cost) — here they get their own entries, set to the same weight as the
// nearest priced condition of similar work (a single comparison against
// already-loaded state).
var Table = map[types.Opcode]uint64{
	types.OpAggSig:                  20,
	types.OpAggSigMe:                20,
	types.OpCreateCoin:              200,
	types.OpAssertCoinConsumed:      5,
	types.OpAssertMyCoinID:          5,
	types.OpAssertHeightNowExceeds:  5,
	types.OpAssertHeightAgeExceeds:  5,
	types.OpAssertSecondsNowExceeds: 5,
	types.OpAssertSecondsAgeExceeds: 5,
	types.OpReserveFee:              5,
	types.OpAssertMyParentID:        5,
	types.OpAssertMyPuzzlehash:      5,
	types.OpAssertMyAmount:          5,
	types.OpCreateAnnouncement:      5,
	types.OpAssertAnnouncement:      5,
}

// Unknown conditions (non-strict mode) carry the same weight as the
// cheapest known assertion: they still cost a table lookup and a
// no-op check, nothing more.
const UnknownOpcodeCost uint64 = 5

// ByteCost is the per-byte charge for a bundle's canonical serialized
// form, before CLVM_COST_RATIO scaling.
const ByteCost uint64 = 1

// OpcodeCost returns op's table weight, or UnknownOpcodeCost if op isn't
// in the table (covers types.OpUnknown and any future opcode this build
// doesn't recognize yet).
func OpcodeCost(op types.Opcode) uint64 {
	if c, ok := Table[op]; ok {
		return c
	}
	return UnknownOpcodeCost
}
