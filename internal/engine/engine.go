// Package engine wires the program runner, condition classifier, cost
// accountant, unspent index, checker, and signature batcher into the
// single facade a node actually talks to: one bundle in, one
// accept/reject decision out, plus the tip-transition and rollback
// operations that keep the mempool's view of the world in sync with the
// chain.
package engine

import (
	"fmt"
	"sync"

	"github.com/spendbench/spendbench/config"
	"github.com/spendbench/spendbench/internal/check"
	"github.com/spendbench/spendbench/internal/condition"
	"github.com/spendbench/spendbench/internal/cost"
	"github.com/spendbench/spendbench/internal/enginerr"
	"github.com/spendbench/spendbench/internal/log"
	"github.com/spendbench/spendbench/internal/mempool"
	"github.com/spendbench/spendbench/internal/sigbatch"
	"github.com/spendbench/spendbench/internal/unspent"
	"github.com/spendbench/spendbench/pkg/clvm"
	"github.com/spendbench/spendbench/pkg/crypto"
	"github.com/spendbench/spendbench/pkg/types"
	"golang.org/x/sync/errgroup"
)

// Accepted is what admit() returns for a bundle that was admitted into at
// least one tip's pool.
type Accepted struct {
	Cost uint64
	Fee  uint64
}

// Engine is the top-level facade: the program runner (C1), condition
// classifier (C2), unspent index (C3), checker (C4), cost accountant
// (C5), and signature batcher (C6) feed into the mempool core (C7) and
// tip transition controller (C8) behind one lock, matching the
// single-threaded-per-instance concurrency model every public entry
// point here assumes.
type Engine struct {
	mu sync.Mutex

	genesis  *config.Genesis
	maxCost  uint64
	unspent  *unspent.Index
	verifier sigbatch.Verifier
	policy   *mempool.Policy
	ctrl     *mempool.Controller
	nowMs    uint64

	tips       map[types.Hash]mempool.Tip
	peakHeight types.Height

	// pending holds the result of a bundle's parallel pre-check (every
	// spend's puzzle run and classified, outside the lock) between Admit
	// starting it and the locked Validate call(s) that consume it. Only
	// ever read and written while e.mu is held.
	pending map[types.Hash]precheckResult
}

type precheckResult struct {
	npcs       []types.NPC
	runnerCost uint64
	err        error
}

// New builds an engine against a genesis ruleset, a durable unspent
// index, and a signature verifier. cfg may be nil, in which case the
// genesis defaults and no node-local fee floor apply.
func New(genesis *config.Genesis, idx *unspent.Index, verifier sigbatch.Verifier, cfg *config.Config) *Engine {
	maxCost := genesis.MaxBlockCost
	policy := mempool.DefaultPolicy()
	if cfg != nil {
		if cfg.MaxCost != 0 {
			maxCost = cfg.MaxCost
		}
		policy = &mempool.Policy{
			MinFeePerCostNum:   cfg.MinFeePerCostNumerator,
			MinFeePerCostDenom: cfg.MinFeePerCostDenominator,
		}
	}
	return &Engine{
		genesis:  genesis,
		maxCost:  maxCost,
		unspent:  idx,
		verifier: verifier,
		policy:   policy,
		ctrl:     mempool.NewController(genesis.MempoolCapacity(), genesis.PotentialCacheSize, genesis.OldMempoolWindow),
		tips:     make(map[types.Hash]mempool.Tip),
		pending:  make(map[types.Hash]precheckResult),
	}
}

// SetNow sets the wall-clock time (milliseconds since epoch) used to
// evaluate AssertSecondsNowExceeds/AssertSecondsAgeExceeds. Test
// harnesses drive this directly instead of reading the system clock.
func (e *Engine) SetNow(ms uint64) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.nowMs = ms
}

// Admit runs bundle through the full pipeline against every live tip and
// admits it into every pool it validates against. A bundle accepted into
// at least one tip's pool is a success; the first error encountered is
// returned when none accept it.
//
// Every spend's puzzle is run and classified in parallel before the lock
// is taken: that work is pure (depends only on the spend itself and the
// node's cost ceiling, not on any mutable engine state) and is the most
// expensive part of admission, so it's the one part spec.md §5's
// concurrency model carves out of the single exclusive lock. Everything
// that reads mutable state — the unspent view, the live tip set, the
// mempool pools themselves — still runs under the lock, in Validate.
func (e *Engine) Admit(bundle types.SpendBundle) (Accepted, error) {
	hash := crypto.BundleID(bundle)
	npcs, runnerCost, preErr := e.runSpendsParallel(bundle)

	e.mu.Lock()
	defer e.mu.Unlock()

	e.pending[hash] = precheckResult{npcs: npcs, runnerCost: runnerCost, err: preErr}
	defer delete(e.pending, hash)

	accepted, err := e.ctrl.Admit(bundle, e)
	if err != nil {
		log.Mempool.Debug().Err(err).Msg("bundle rejected")
		return Accepted{}, err
	}
	if !accepted {
		return Accepted{}, enginerr.ErrUnknown
	}
	for tipHash := range e.tips {
		if pool := e.ctrl.Pool(tipHash); pool != nil {
			if it := pool.Get(hash); it != nil {
				log.Mempool.Debug().Uint64("cost", it.Cost).Uint64("fee", it.Fee).Msg("bundle admitted")
				return Accepted{Cost: it.Cost, Fee: it.Fee}, nil
			}
		}
	}
	return Accepted{}, enginerr.ErrUnknown
}

// Seen reports whether a bundle hash has already been processed.
func (e *Engine) Seen(hash types.Hash) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.ctrl.Seen(hash)
}

// Get returns the bundle for hash from any tracked pool.
func (e *Engine) Get(hash types.Hash) (types.SpendBundle, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.ctrl.Get(hash)
}

// BestBundle assembles the highest fee-per-cost selection of admitted
// items for tip within maxCost into a single aggregated bundle, suitable
// for a block proposer. The aggregated signature is the concatenation of
// every selected item's, matching SchnorrBatchVerifier's concatenation
// scheme.
func (e *Engine) BestBundle(tip types.Hash, maxCost uint64) (types.SpendBundle, uint64, uint64) {
	e.mu.Lock()
	defer e.mu.Unlock()

	pool := e.ctrl.Pool(tip)
	if pool == nil {
		return types.SpendBundle{}, 0, 0
	}
	items := pool.BestBundle(maxCost)

	var out types.SpendBundle
	var totalCost, totalFee uint64
	for _, it := range items {
		out.Spends = append(out.Spends, it.Bundle.Spends...)
		out.AggregatedSignature = append(out.AggregatedSignature, it.Bundle.AggregatedSignature...)
		totalCost += it.Cost
		totalFee += it.Fee
	}
	return out, totalCost, totalFee
}

// NewTips reconciles tracked pools against the node's new set of live
// chain tips.
func (e *Engine) NewTips(tips []mempool.Tip) {
	e.mu.Lock()
	defer e.mu.Unlock()

	next := make(map[types.Hash]mempool.Tip, len(tips))
	var peak types.Height
	for _, t := range tips {
		next[t.Hash] = t
		if t.Height > peak {
			peak = t.Height
		}
	}
	e.tips = next
	e.peakHeight = peak

	e.ctrl.NewTips(tips, e)
	log.Mempool.Debug().Int("tips", len(tips)).Uint64("peak_height", uint64(peak)).Msg("tips updated")
}

// Rollback reverts the unspent index to its state as of height h. The
// caller is expected to follow this with NewTips once the resulting tip
// set is known, so pools get rebuilt against the rolled-back view.
func (e *Engine) Rollback(h types.Height) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if err := e.unspent.RollbackTo(h); err != nil {
		return err
	}
	log.Mempool.Info().Uint64("height", uint64(h)).Msg("unspent index rolled back")
	return nil
}

// Validate implements mempool.Validator: it re-runs every spend's
// puzzle, classifies the conditions it emits, prices the bundle, checks
// it against tip's unspent view, and applies the node-local fee floor.
// This is the per-pool re-check every admission, replay, and rebuild path
// in internal/mempool calls through, so it never mutates e.unspent
// itself (the tip transition controller owns when that happens).
func (e *Engine) Validate(tip types.Hash, bundle types.SpendBundle) (*mempool.Item, error) {
	npcs, runnerCost, err := e.runOrReuse(bundle)
	if err != nil {
		return nil, err
	}

	serialized := bundle.SigningBytes()
	bundleCost, err := cost.BundleCost(runnerCost, npcs, len(serialized), e.genesis.ClvmCostRatio, e.maxCost)
	if err != nil {
		return nil, err
	}

	unspentView, removals, additions := e.buildUnspentView(bundle, npcs)

	result, err := check.Check(check.Input{
		Bundle:               bundle,
		NPCs:                 npcs,
		Unspent:              unspentView,
		PeakHeight:           e.peakHeightForTip(tip),
		NowMs:                e.nowMs,
		MaxCoinAmount:        e.genesis.MaxCoinAmount,
		CoinbaseFreezePeriod: e.genesis.CoinbaseFreezePeriod,
		Verifier:             e.verifier,
	})
	if err != nil {
		return nil, err
	}

	it := &mempool.Item{
		Hash:      crypto.BundleID(bundle),
		Bundle:    bundle,
		Removals:  removals,
		Additions: additions,
		Cost:      bundleCost,
		Fee:       result.Fee,
	}
	if err := e.policy.Check(it); err != nil {
		return nil, err
	}
	return it, nil
}

// runOrReuse returns the result of bundle's parallel pre-check if Admit
// already ran one for this exact bundle (the replay paths inside
// internal/mempool — sibling-pool replay, OldMempools replay, potential-tx
// replay — call Validate directly without going through Admit, so they
// fall back to running serially here, still under the lock).
func (e *Engine) runOrReuse(bundle types.SpendBundle) ([]types.NPC, uint64, error) {
	if pre, ok := e.pending[crypto.BundleID(bundle)]; ok {
		return pre.npcs, pre.runnerCost, pre.err
	}
	return e.runSpends(bundle)
}

// runSpendsParallel runs every spend's puzzle independently, each bounded
// by the full cost ceiling rather than a shrinking shared remainder,
// since the spends haven't been ordered against each other yet — the
// aggregate total is checked once every spend has finished. A failing
// spend does not stop the others; g.Wait returns the first error after
// every goroutine has returned.
func (e *Engine) runSpendsParallel(bundle types.SpendBundle) ([]types.NPC, uint64, error) {
	npcs := make([]types.NPC, len(bundle.Spends))
	costs := make([]uint64, len(bundle.Spends))

	var g errgroup.Group
	for i, spend := range bundle.Spends {
		i, spend := i, spend
		g.Go(func() error {
			out, runCost, err := clvm.RunPuzzle(spend.Puzzle, spend.Solution, e.maxCost)
			if err != nil {
				return fmt.Errorf("%w: %v", enginerr.ErrInvalidProgram, err)
			}
			conds, err := condition.Classify(out, true)
			if err != nil {
				return err
			}
			npcs[i] = types.NPC{
				CoinID:             crypto.CoinID(spend.Coin),
				PuzzleHash:         crypto.Hash(spend.Puzzle),
				ConditionsByOpcode: conds,
			}
			costs[i] = runCost
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, 0, err
	}

	var total uint64
	for _, c := range costs {
		total += c
	}
	if total > e.maxCost {
		return nil, 0, fmt.Errorf("%w: runner cost %d exceeds %d", enginerr.ErrBlockCostExceedsMax, total, e.maxCost)
	}
	return npcs, total, nil
}

// runSpends runs every spend's puzzle against its solution, in bundle
// order, and classifies the conditions each one emits. The cost budget
// is shared across the whole bundle: a spend started after the budget is
// exhausted fails with ErrBlockCostExceedsMax rather than running
// unbounded. This is the serial fallback runOrReuse uses when no
// parallel pre-check result is cached for the bundle.
func (e *Engine) runSpends(bundle types.SpendBundle) ([]types.NPC, uint64, error) {
	npcs := make([]types.NPC, len(bundle.Spends))
	var totalRunnerCost uint64

	for i, spend := range bundle.Spends {
		if totalRunnerCost > e.maxCost {
			return nil, 0, fmt.Errorf("%w: runner cost exceeds maximum before spend %d", enginerr.ErrBlockCostExceedsMax, i)
		}
		remaining := e.maxCost - totalRunnerCost

		out, runCost, err := clvm.RunPuzzle(spend.Puzzle, spend.Solution, remaining)
		if err != nil {
			return nil, 0, fmt.Errorf("%w: %v", enginerr.ErrInvalidProgram, err)
		}
		totalRunnerCost += runCost

		conds, err := condition.Classify(out, true)
		if err != nil {
			return nil, 0, err
		}

		// The puzzle hash a coin commits to is checked against the hash
		// of the program actually revealed and run here, not copied from
		// the coin: that's what makes WrongPuzzleHash a real check rather
		// than a tautology.
		npcs[i] = types.NPC{
			CoinID:             crypto.CoinID(spend.Coin),
			PuzzleHash:         crypto.Hash(spend.Puzzle),
			ConditionsByOpcode: conds,
		}
	}
	return npcs, totalRunnerCost, nil
}

// buildUnspentView extends the durable unspent index with synthetic
// records for every coin the bundle itself creates, so a bundle that
// spends an ephemeral coin it also creates (a CreateCoin condition whose
// output is consumed later in the same bundle) validates against a
// complete view rather than failing ErrUnknownUnspent. checkRemovals
// still rejects any removal absent from the returned map, durable or
// synthetic. The addition ids it collects along the way are the mempool
// item's Additions, used for tip-transition conflict bookkeeping.
func (e *Engine) buildUnspentView(bundle types.SpendBundle, npcs []types.NPC) (view map[types.CoinID]*types.CoinRecord, removals, additions []types.CoinID) {
	view = make(map[types.CoinID]*types.CoinRecord, len(bundle.Spends))
	removals = make([]types.CoinID, 0, len(bundle.Spends))

	for _, spend := range bundle.Spends {
		id := crypto.CoinID(spend.Coin)
		removals = append(removals, id)
		if r, err := e.unspent.Get(id); err == nil {
			view[id] = r
		}
	}
	for _, npc := range npcs {
		for _, c := range npc.ConditionsByOpcode[types.OpCreateCoin] {
			ph, err := condition.DecodeHash(c.Args[0])
			if err != nil {
				continue
			}
			amount, err := condition.DecodeAmount(c.Args[1])
			if err != nil {
				continue
			}
			coin := types.Coin{Parent: npc.CoinID, PuzzleHash: ph, Amount: amount}
			id := crypto.CoinID(coin)
			additions = append(additions, id)
			if _, ok := view[id]; !ok {
				view[id] = &types.CoinRecord{Coin: coin}
			}
		}
	}
	return view, removals, additions
}

// peakHeightForTip looks up the chain height a tip sits at, falling back
// to the highest height among tracked tips if tip itself isn't one.
// NewTips installs the new tip set in e.tips before the controller
// replays sibling and OldMempools items, so those replays find their tip.
func (e *Engine) peakHeightForTip(tip types.Hash) types.Height {
	if t, ok := e.tips[tip]; ok {
		return t.Height
	}
	return e.peakHeight
}
