package unspent

import (
	"errors"
	"fmt"

	"github.com/spendbench/spendbench/pkg/crypto"
	"github.com/spendbench/spendbench/pkg/types"
)

var (
	// ErrCoinAlreadyExists is returned by Add when a coin with the same id
	// is already present and unspent.
	ErrCoinAlreadyExists = errors.New("unspent: coin already exists")

	// ErrCoinNotFound is returned by operations that require a coin record
	// to already be present.
	ErrCoinNotFound = errors.New("unspent: coin not found")

	// ErrAlreadySpent is returned by MarkSpent when a coin is already
	// spent at a different height than the one given.
	ErrAlreadySpent = errors.New("unspent: coin already spent at a different height")
)

// Index is the C3 unspent-coin index: a durable CoinID-keyed map plus the
// puzzle-hash secondary index, generalized from the teacher's
// internal/utxo.Store the same way the teacher generalizes a UTXO set —
// one primary store, one or more secondary index prefixes, plus
// height-aware rollback.
type Index struct {
	store *Store
}

// NewIndex wraps a Store as an Index.
func NewIndex(store *Store) *Index {
	return &Index{store: store}
}

// Get returns a coin's record, or ErrCoinNotFound.
func (idx *Index) Get(id types.CoinID) (*types.CoinRecord, error) {
	r, err := idx.store.Get(id)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrCoinNotFound, id)
	}
	return r, nil
}

// Add inserts a new coin record. It fails if a record for the same id
// already exists and is unspent; a record that exists and is spent is
// overwritten. RollbackTo deletes records confirmed above its target
// height and clears SpentHeight in place on older records spent above it,
// so a coin whose spend was rolled back is unspent and cannot be re-added.
func (idx *Index) Add(r types.CoinRecord) error {
	id := crypto.CoinID(r.Coin)
	existing, err := idx.store.Get(id)
	if err == nil && !existing.IsSpent() {
		return fmt.Errorf("%w: %s", ErrCoinAlreadyExists, id)
	}
	if err := idx.store.Put(id, &r); err != nil {
		return err
	}
	return idx.store.appendMutation(r.ConfirmedHeight, &id, nil)
}

// MarkSpent records that a coin was spent at the given height. Calling it
// again with the same height is a no-op; calling it with a different
// height than a previously recorded spend is an error: every coin is
// spent at most once in this index's lifetime absent a rollback.
func (idx *Index) MarkSpent(id types.CoinID, height types.Height) error {
	r, err := idx.store.Get(id)
	if err != nil {
		return fmt.Errorf("%w: %s", ErrCoinNotFound, id)
	}
	if r.IsSpent() {
		if r.SpentHeight == height {
			return nil
		}
		return fmt.Errorf("%w: %s spent at %d, asked for %d", ErrAlreadySpent, id, r.SpentHeight, height)
	}
	r.SpentHeight = height
	if err := idx.store.Put(id, r); err != nil {
		return err
	}
	return idx.store.appendMutation(height, nil, &id)
}

// ByPuzzleHash returns every coin record currently locked to ph.
func (idx *Index) ByPuzzleHash(ph types.Hash) ([]*types.CoinRecord, error) {
	return idx.store.GetByPuzzleHash(ph)
}

// RollbackTo reverts the index to its state as of height h: any record
// confirmed after h is removed outright (it never existed as of h), and
// any record spent after h has its spent height cleared back to unspent.
// Replaying every addition/removal from genesis through h again must
// reproduce exactly this state.
//
// Unlike a replay from genesis, this walks only the height-ordered
// mutation log entries above h (one per height touched since then), not
// every coin the index has ever held — cost is proportional to the
// depth of the reorg, not the size of the unspent set.
func (idx *Index) RollbackTo(h types.Height) error {
	var heights []types.Height
	var toDelete []types.CoinID
	var toUnspend []types.CoinID

	err := idx.store.ForEachMutationSince(h, func(height types.Height, entry mutationLogEntry) error {
		heights = append(heights, height)
		toDelete = append(toDelete, entry.Added...)
		toUnspend = append(toUnspend, entry.Spent...)
		return nil
	})
	if err != nil {
		return fmt.Errorf("rollback scan: %w", err)
	}

	deleted := make(map[types.CoinID]bool, len(toDelete))
	for _, id := range toDelete {
		deleted[id] = true
		if err := idx.store.Delete(id); err != nil {
			return fmt.Errorf("rollback delete %s: %w", id, err)
		}
	}
	for _, id := range toUnspend {
		// A coin both created and spent after h is gone entirely, not
		// merely unspent — its creation was undone above already.
		if deleted[id] {
			continue
		}
		r, err := idx.store.Get(id)
		if err != nil {
			return fmt.Errorf("rollback unspend %s: %w", id, err)
		}
		r.SpentHeight = 0
		if err := idx.store.Put(id, r); err != nil {
			return fmt.Errorf("rollback unspend %s: %w", id, err)
		}
	}
	for _, height := range heights {
		if err := idx.store.deleteMutationLog(height); err != nil {
			return fmt.Errorf("rollback prune mutation log %d: %w", height, err)
		}
	}
	return nil
}

// FirstConfirmedHeight returns the lowest ConfirmedHeight among all
// records currently in the index, and false if the index is empty.
func (idx *Index) FirstConfirmedHeight() (types.Height, bool) {
	var (
		min   types.Height
		found bool
	)
	idx.store.ForEach(func(_ types.CoinID, r *types.CoinRecord) error {
		if !found || r.ConfirmedHeight < min {
			min = r.ConfirmedHeight
			found = true
		}
		return nil
	})
	return min, found
}

// Close releases the underlying store.
func (idx *Index) Close() error {
	return idx.store.Close()
}
