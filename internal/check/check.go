// Package check validates a classified, cost-priced bundle against an
// already-extended unspent view: the structural rules every bundle must
// satisfy (no double spends, no minted value, correct puzzle hashes) plus
// the per-condition assertions each coin's puzzle demanded.
package check

import (
	"fmt"

	"github.com/spendbench/spendbench/internal/condition"
	"github.com/spendbench/spendbench/internal/enginerr"
	"github.com/spendbench/spendbench/internal/sigbatch"
	"github.com/spendbench/spendbench/pkg/crypto"
	"github.com/spendbench/spendbench/pkg/types"
)

// enumeratedOpcodes fixes the per-condition iteration order spec.md §7
// requires ("by coin, then by opcode in the enumerated order, then by
// occurrence"), so that "the first error" is a well-defined, reproducible
// choice rather than an artifact of map iteration.
var enumeratedOpcodes = []types.Opcode{
	types.OpAssertMyCoinID,
	types.OpAssertCoinConsumed,
	types.OpAssertHeightNowExceeds,
	types.OpAssertHeightAgeExceeds,
	types.OpAssertSecondsNowExceeds,
	types.OpAssertSecondsAgeExceeds,
	types.OpAssertMyParentID,
	types.OpAssertMyPuzzlehash,
	types.OpAssertMyAmount,
	types.OpReserveFee,
	types.OpAssertAnnouncement,
}

// Input is everything the checker needs to validate one candidate
// bundle. NPCs is parallel to Bundle.Spends: NPCs[i] is the classified
// result of running Bundle.Spends[i]'s puzzle against its solution.
// Unspent already contains every coin the bundle may legally reference,
// including synthetic records for the bundle's own ephemeral additions —
// building that extended view is the caller's job, not the checker's.
type Input struct {
	Bundle               types.SpendBundle
	NPCs                 []types.NPC
	Unspent              map[types.CoinID]*types.CoinRecord
	PeakHeight           types.Height
	NowMs                uint64
	MaxCoinAmount        uint64
	CoinbaseFreezePeriod types.Height
	Verifier             sigbatch.Verifier
}

// Result is what a bundle that passes every check is worth.
type Result struct {
	Fee uint64
}

// Check runs every structural and per-condition rule in spec.md §4.4 and
// returns the first failure in the fixed deterministic order the spec
// requires. A nil error means the bundle would itself admit.
func Check(in Input) (Result, error) {
	if len(in.NPCs) != len(in.Bundle.Spends) {
		return Result{}, fmt.Errorf("%w: npc count %d does not match spend count %d", enginerr.ErrInternalEvalError, len(in.NPCs), len(in.Bundle.Spends))
	}

	removalIDs, err := checkRemovals(in)
	if err != nil {
		return Result{}, err
	}

	additions, err := collectAdditions(in)
	if err != nil {
		return Result{}, err
	}

	if err := checkCoinbaseFreeze(in); err != nil {
		return Result{}, err
	}
	if err := checkPuzzleHashes(in); err != nil {
		return Result{}, err
	}

	fee, err := checkConservation(in, additions)
	if err != nil {
		return Result{}, err
	}

	announcements := collectAnnouncements(in)

	if err := checkConditions(in, removalIDs, announcements, fee); err != nil {
		return Result{}, err
	}

	if err := checkSignature(in); err != nil {
		return Result{}, err
	}

	return Result{Fee: fee}, nil
}

// checkSignature collects every AggSig/AggSigMe obligation across the
// bundle and verifies them in one call, per spec.md §4.6.
func checkSignature(in Input) error {
	pairs := sigbatch.Collect(in.NPCs)
	if len(pairs) == 0 {
		return nil
	}
	if in.Verifier == nil {
		return fmt.Errorf("%w: no signature verifier configured", enginerr.ErrBadAggregateSignature)
	}
	if !in.Verifier.VerifyAggregate(pairs, in.Bundle.AggregatedSignature) {
		return enginerr.ErrBadAggregateSignature
	}
	return nil
}

// checkRemovals enforces structural rules 1 and 2: every removal exists
// in the unspent view and no removal id is named twice.
func checkRemovals(in Input) ([]types.CoinID, error) {
	seen := make(map[types.CoinID]bool, len(in.Bundle.Spends))
	ids := make([]types.CoinID, 0, len(in.Bundle.Spends))
	for _, spend := range in.Bundle.Spends {
		id := crypto.CoinID(spend.Coin)
		if seen[id] {
			return nil, fmt.Errorf("%w: coin %s spent twice in bundle", enginerr.ErrDoubleSpend, id)
		}
		seen[id] = true

		record, ok := in.Unspent[id]
		if !ok || record.IsSpent() {
			return nil, fmt.Errorf("%w: coin %s", enginerr.ErrUnknownUnspent, id)
		}
		ids = append(ids, id)
	}
	return ids, nil
}

// collectAdditions enforces structural rules 3 and 4: every CreateCoin
// condition yields a valid, unique new coin.
func collectAdditions(in Input) ([]types.Coin, error) {
	var additions []types.Coin
	seen := make(map[types.CoinID]bool)
	for _, npc := range in.NPCs {
		for _, c := range npc.ConditionsByOpcode[types.OpCreateCoin] {
			ph, err := condition.DecodeHash(c.Args[0])
			if err != nil {
				return nil, err
			}
			amount, err := condition.DecodeAmount(c.Args[1])
			if err != nil {
				return nil, err
			}
			if amount > in.MaxCoinAmount {
				return nil, fmt.Errorf("%w: coin amount %d exceeds %d", enginerr.ErrCoinAmountExceedsMax, amount, in.MaxCoinAmount)
			}
			addition := types.Coin{Parent: npc.CoinID, PuzzleHash: ph, Amount: amount}
			id := crypto.CoinID(addition)
			if seen[id] {
				return nil, fmt.Errorf("%w: coin %s created twice", enginerr.ErrDuplicateOutput, id)
			}
			seen[id] = true
			additions = append(additions, addition)
		}
	}
	return additions, nil
}

// checkPuzzleHashes enforces structural rule 6.
func checkPuzzleHashes(in Input) error {
	for i, spend := range in.Bundle.Spends {
		id := crypto.CoinID(spend.Coin)
		npc := in.NPCs[i]
		if npc.PuzzleHash != spend.Coin.PuzzleHash {
			return fmt.Errorf("%w: coin %s", enginerr.ErrWrongPuzzleHash, id)
		}
	}
	return nil
}

// checkCoinbaseFreeze enforces structural rule 5.
func checkCoinbaseFreeze(in Input) error {
	for _, spend := range in.Bundle.Spends {
		id := crypto.CoinID(spend.Coin)
		record := in.Unspent[id]
		if !record.Coinbase {
			continue
		}
		if in.PeakHeight+1 <= record.ConfirmedHeight+in.CoinbaseFreezePeriod {
			return fmt.Errorf("%w: coin %s", enginerr.ErrCoinbaseNotYetSpendable, id)
		}
	}
	return nil
}

// checkConservation enforces structural rule 7 and computes the fee.
func checkConservation(in Input, additions []types.Coin) (uint64, error) {
	var removed, added uint64
	for _, spend := range in.Bundle.Spends {
		removed += spend.Coin.Amount
	}
	for _, a := range additions {
		added += a.Amount
	}
	if removed < added {
		return 0, fmt.Errorf("%w: removed %d, added %d", enginerr.ErrMintingCoin, removed, added)
	}
	return removed - added, nil
}

// collectAnnouncements builds the bundle-wide announcement set that
// AssertAnnouncement conditions are checked against. This is a separate
// pass from checkConditions because an assertion may reference an
// announcement created by any coin in the bundle, not just earlier ones
// in iteration order.
func collectAnnouncements(in Input) map[types.Hash]bool {
	set := make(map[types.Hash]bool)
	for _, npc := range in.NPCs {
		for _, c := range npc.ConditionsByOpcode[types.OpCreateAnnouncement] {
			set[crypto.AnnouncementID(npc.CoinID, c.Args[0])] = true
		}
	}
	return set
}

// checkConditions runs the per-condition assertion table in the fixed
// order spec.md §7 requires: by coin (bundle order), then by opcode
// (enumeratedOpcodes order), then by occurrence within that opcode.
func checkConditions(in Input, removalIDs []types.CoinID, announcements map[types.Hash]bool, fee uint64) error {
	removalSet := make(map[types.CoinID]bool, len(removalIDs))
	for _, id := range removalIDs {
		removalSet[id] = true
	}

	var reserved uint64
	for i, npc := range in.NPCs {
		coinID := removalIDs[i]
		record := in.Unspent[coinID]
		coin := in.Bundle.Spends[i].Coin

		for _, op := range enumeratedOpcodes {
			for _, c := range npc.ConditionsByOpcode[op] {
				switch op {
				case types.OpAssertMyCoinID:
					id, err := condition.DecodeHash(c.Args[0])
					if err != nil {
						return err
					}
					if id != coinID {
						return fmt.Errorf("%w: coin %s", enginerr.ErrAssertMyCoinIDFailed, coinID)
					}
				case types.OpAssertCoinConsumed:
					id, err := condition.DecodeHash(c.Args[0])
					if err != nil {
						return err
					}
					if !removalSet[id] {
						return fmt.Errorf("%w: coin %s expected %s consumed", enginerr.ErrAssertCoinConsumedFailed, coinID, id)
					}
				case types.OpAssertHeightNowExceeds:
					h, err := condition.DecodeInt(c.Args[0])
					if err != nil {
						return err
					}
					if !(in.PeakHeight+1 > uint64(h)) {
						return fmt.Errorf("%w: coin %s", enginerr.ErrAssertHeightNowExceedsFailed, coinID)
					}
				case types.OpAssertHeightAgeExceeds:
					dh, err := condition.DecodeInt(c.Args[0])
					if err != nil {
						return err
					}
					if !(in.PeakHeight+1 > record.ConfirmedHeight+uint64(dh)) {
						return fmt.Errorf("%w: coin %s", enginerr.ErrAssertHeightAgeExceedsFailed, coinID)
					}
				case types.OpAssertSecondsNowExceeds:
					t, err := condition.DecodeInt(c.Args[0])
					if err != nil {
						return err
					}
					if !(in.NowMs > uint64(t)) {
						return fmt.Errorf("%w: coin %s", enginerr.ErrAssertSecondsNowExceedsFailed, coinID)
					}
				case types.OpAssertSecondsAgeExceeds:
					dt, err := condition.DecodeInt(c.Args[0])
					if err != nil {
						return err
					}
					if !(in.NowMs > record.Timestamp+uint64(dt)) {
						return fmt.Errorf("%w: coin %s", enginerr.ErrAssertSecondsAgeExceedsFailed, coinID)
					}
				case types.OpAssertMyParentID:
					id, err := condition.DecodeHash(c.Args[0])
					if err != nil {
						return err
					}
					if id != coin.Parent {
						return fmt.Errorf("%w: coin %s", enginerr.ErrInvalidCondition, coinID)
					}
				case types.OpAssertMyPuzzlehash:
					ph, err := condition.DecodeHash(c.Args[0])
					if err != nil {
						return err
					}
					if ph != coin.PuzzleHash {
						return fmt.Errorf("%w: coin %s", enginerr.ErrInvalidCondition, coinID)
					}
				case types.OpAssertMyAmount:
					amount, err := condition.DecodeAmount(c.Args[0])
					if err != nil {
						return err
					}
					if amount != coin.Amount {
						return fmt.Errorf("%w: coin %s", enginerr.ErrInvalidCondition, coinID)
					}
				case types.OpReserveFee:
					amount, err := condition.DecodeAmount(c.Args[0])
					if err != nil {
						return err
					}
					reserved += amount
				case types.OpAssertAnnouncement:
					id, err := condition.DecodeHash(c.Args[0])
					if err != nil {
						return err
					}
					if !announcements[id] {
						return fmt.Errorf("%w: coin %s", enginerr.ErrAssertAnnouncementFailed, coinID)
					}
				}
			}
		}
	}

	if reserved > fee {
		return fmt.Errorf("%w: reserved %d exceeds fee %d", enginerr.ErrReserveFeeFailed, reserved, fee)
	}
	return nil
}
