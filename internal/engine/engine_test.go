package engine

import (
	"errors"
	"testing"

	"github.com/spendbench/spendbench/config"
	"github.com/spendbench/spendbench/internal/enginerr"
	"github.com/spendbench/spendbench/internal/mempool"
	"github.com/spendbench/spendbench/internal/sigbatch"
	"github.com/spendbench/spendbench/internal/storage"
	"github.com/spendbench/spendbench/internal/unspent"
	"github.com/spendbench/spendbench/pkg/clvm"
	"github.com/spendbench/spendbench/pkg/crypto"
	"github.com/spendbench/spendbench/pkg/types"
)

func hashOf(b byte) types.Hash {
	var h types.Hash
	h[0] = b
	return h
}

func newTestEngine(t *testing.T) (*Engine, *unspent.Index) {
	t.Helper()
	idx := unspent.NewIndex(unspent.NewStore(storage.NewMemory()))
	genesis := config.TestnetGenesis()
	e := New(genesis, idx, sigbatch.SchnorrBatchVerifier{}, nil)
	return e, idx
}

// createCoinCondition builds a raw CREATE_COIN condition list entry:
// (52 puzzle_hash amount).
func createCoinCondition(puzzleHash types.Hash, amount uint64) clvm.Node {
	return clvm.SliceToList([]clvm.Node{
		clvm.Atom{byte(types.OpCreateCoin)},
		clvm.Atom(puzzleHash.Bytes()),
		clvm.Int(int64(amount)),
	})
}

// quotedConditions builds a puzzle program that, run against any
// solution, simply returns the given condition list: (q . conditions).
func quotedConditions(conditions ...clvm.Node) []byte {
	return clvm.Serialize(clvm.Cons(clvm.Atom{1}, clvm.SliceToList(conditions)))
}

// spendScenarioS1 mirrors spec.md scenario S1: a single 1_000_000 unit
// coin spend that creates a 600_000 unit coin and a 399_000 unit coin,
// leaving a fee of 1_000.
func spendScenarioS1(t *testing.T, idx *unspent.Index) types.SpendBundle {
	t.Helper()
	puzzle := quotedConditions(
		createCoinCondition(hashOf(0xB), 600_000),
		createCoinCondition(hashOf(0xA), 399_000),
	)
	coin := types.Coin{Parent: hashOf(1), PuzzleHash: crypto.Hash(puzzle), Amount: 1_000_000}

	if err := idx.Add(types.CoinRecord{Coin: coin, ConfirmedHeight: 10}); err != nil {
		t.Fatalf("seed coin: %v", err)
	}

	return types.SpendBundle{
		Spends: []types.CoinSpend{{Coin: coin, Puzzle: puzzle, Solution: clvm.Serialize(clvm.Nil)}},
	}
}

func tipFor(height types.Height) mempool.Tip {
	return mempool.Tip{Hash: hashOf(byte(height)), Height: height}
}

func TestEngineAdmitScenarioS1(t *testing.T) {
	e, idx := newTestEngine(t)
	bundle := spendScenarioS1(t, idx)

	e.NewTips([]mempool.Tip{tipFor(20)})

	accepted, err := e.Admit(bundle)
	if err != nil {
		t.Fatalf("Admit: %v", err)
	}
	if accepted.Fee != 1_000 {
		t.Errorf("fee = %d, want 1000", accepted.Fee)
	}
}

func TestEngineAdmitWithoutTipsFails(t *testing.T) {
	e, idx := newTestEngine(t)
	bundle := spendScenarioS1(t, idx)

	if _, err := e.Admit(bundle); err == nil {
		t.Error("expected admission to fail with no live tips")
	}
}

func TestEngineAdmitUnknownCoinIsTransient(t *testing.T) {
	e, idx := newTestEngine(t)
	_ = idx
	e.NewTips([]mempool.Tip{tipFor(20)})

	puzzle := quotedConditions()
	coin := types.Coin{Parent: hashOf(2), PuzzleHash: crypto.Hash(puzzle), Amount: 500}
	bundle := types.SpendBundle{
		Spends: []types.CoinSpend{{Coin: coin, Puzzle: puzzle, Solution: clvm.Serialize(clvm.Nil)}},
	}

	_, err := e.Admit(bundle)
	if !errors.Is(err, enginerr.ErrUnknownUnspent) {
		t.Errorf("expected ErrUnknownUnspent, got %v", err)
	}
}

func TestEngineAdmitWrongPuzzleHashRejected(t *testing.T) {
	e, idx := newTestEngine(t)
	puzzle := quotedConditions()
	// The coin commits to a puzzle hash that does not match the puzzle
	// actually revealed below.
	coin := types.Coin{Parent: hashOf(3), PuzzleHash: hashOf(0xFF), Amount: 500}
	if err := idx.Add(types.CoinRecord{Coin: coin, ConfirmedHeight: 1}); err != nil {
		t.Fatalf("seed coin: %v", err)
	}
	e.NewTips([]mempool.Tip{tipFor(20)})

	bundle := types.SpendBundle{
		Spends: []types.CoinSpend{{Coin: coin, Puzzle: puzzle, Solution: clvm.Serialize(clvm.Nil)}},
	}
	_, err := e.Admit(bundle)
	if !errors.Is(err, enginerr.ErrWrongPuzzleHash) {
		t.Errorf("expected ErrWrongPuzzleHash, got %v", err)
	}
}

func TestEngineAdmitDuplicateIsNoOp(t *testing.T) {
	e, idx := newTestEngine(t)
	bundle := spendScenarioS1(t, idx)
	e.NewTips([]mempool.Tip{tipFor(20)})

	if _, err := e.Admit(bundle); err != nil {
		t.Fatalf("first Admit: %v", err)
	}
	if _, err := e.Admit(bundle); err != nil {
		t.Errorf("duplicate Admit should be a no-op, got: %v", err)
	}
}

func TestEngineSeenAndGet(t *testing.T) {
	e, idx := newTestEngine(t)
	bundle := spendScenarioS1(t, idx)
	e.NewTips([]mempool.Tip{tipFor(20)})

	hash := crypto.BundleID(bundle)
	if e.Seen(hash) {
		t.Error("bundle should not be seen before admission")
	}
	if _, err := e.Admit(bundle); err != nil {
		t.Fatalf("Admit: %v", err)
	}
	if !e.Seen(hash) {
		t.Error("bundle should be seen after admission")
	}
	got, ok := e.Get(hash)
	if !ok {
		t.Fatal("expected bundle to be retrievable")
	}
	if crypto.BundleID(got) != hash {
		t.Error("retrieved bundle does not match admitted bundle")
	}
}

func TestEngineBestBundleIncludesAdmittedItem(t *testing.T) {
	e, idx := newTestEngine(t)
	bundle := spendScenarioS1(t, idx)
	tip := tipFor(20)
	e.NewTips([]mempool.Tip{tip})

	if _, err := e.Admit(bundle); err != nil {
		t.Fatalf("Admit: %v", err)
	}

	best, cost, fee := e.BestBundle(tip.Hash, 1_000_000_000)
	if len(best.Spends) != 1 {
		t.Fatalf("expected 1 spend in best bundle, got %d", len(best.Spends))
	}
	if fee != 1_000 {
		t.Errorf("fee = %d, want 1000", fee)
	}
	if cost == 0 {
		t.Error("expected nonzero cost")
	}
}

func TestEngineRollbackRevertsUnspentIndex(t *testing.T) {
	e, idx := newTestEngine(t)
	coin := types.Coin{Parent: hashOf(9), PuzzleHash: hashOf(0xC), Amount: 100}
	if err := idx.Add(types.CoinRecord{Coin: coin, ConfirmedHeight: 50}); err != nil {
		t.Fatalf("seed coin: %v", err)
	}

	if err := e.Rollback(10); err != nil {
		t.Fatalf("Rollback: %v", err)
	}
	if _, err := idx.Get(crypto.CoinID(coin)); err == nil {
		t.Error("coin confirmed after rollback height should be gone")
	}
}

// TestEngineAdmitMultiSpendBundle admits a bundle with several independent
// coin spends through Admit, whose pre-lock run goes through
// runSpendsParallel (one goroutine per spend), and checks the fee summed
// across the spends and that the pending pre-check cache is cleared.
func TestEngineAdmitMultiSpendBundle(t *testing.T) {
	e, idx := newTestEngine(t)

	const spendCount = 5
	var spends []types.CoinSpend
	var wantFee uint64
	for i := 0; i < spendCount; i++ {
		amount := uint64(1_000_000 + i)
		outAmount := amount - 100
		puzzle := quotedConditions(createCoinCondition(hashOf(byte(0x10+i)), outAmount))
		coin := types.Coin{Parent: hashOf(byte(0x20 + i)), PuzzleHash: crypto.Hash(puzzle), Amount: amount}
		if err := idx.Add(types.CoinRecord{Coin: coin, ConfirmedHeight: 1}); err != nil {
			t.Fatalf("seed coin %d: %v", i, err)
		}
		spends = append(spends, types.CoinSpend{Coin: coin, Puzzle: puzzle, Solution: clvm.Serialize(clvm.Nil)})
		wantFee += 100
	}
	bundle := types.SpendBundle{Spends: spends}

	e.NewTips([]mempool.Tip{tipFor(5)})

	accepted, err := e.Admit(bundle)
	if err != nil {
		t.Fatalf("Admit: %v", err)
	}
	if accepted.Fee != wantFee {
		t.Errorf("fee = %d, want %d", accepted.Fee, wantFee)
	}

	// The pending pre-check cache must not leak past the call that created it.
	if len(e.pending) != 0 {
		t.Errorf("pending pre-check cache not cleared: %d entries remain", len(e.pending))
	}
}

func TestEngineSetNowSetsClock(t *testing.T) {
	e, idx := newTestEngine(t)
	_ = idx
	e.SetNow(1_000_000)
	if e.nowMs != 1_000_000 {
		t.Errorf("nowMs = %d, want 1000000", e.nowMs)
	}
}
