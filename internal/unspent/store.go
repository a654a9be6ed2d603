// Package unspent implements the unspent-coin index (C3): a durable,
// content-addressed record of every coin the chain currently knows about,
// plus a height-ordered mutation log that lets a tip transition roll the
// whole index back to an earlier height.
package unspent

import (
	"encoding/binary"
	"encoding/json"
	"fmt"

	"github.com/spendbench/spendbench/internal/storage"
	"github.com/spendbench/spendbench/pkg/types"
)

// Key prefixes for the coin store, mirroring the teacher's internal/utxo
// layout (primary key prefix + one prefix per secondary index) with
// CoinID replacing (txid, index) as the primary key.
var (
	prefixCoin       = []byte("c/") // c/<coin_id32> -> CoinRecord JSON
	prefixPuzzleHash = []byte("p/") // p/<puzzle_hash32><coin_id32> -> empty (index)
	prefixMutation   = []byte("m/") // m/<height_be8> -> mutationLogEntry JSON
)

// mutationLogEntry records every coin id created or spent at one height,
// the undo-data equivalent of the teacher's internal/chain.UndoData: enough
// to revert that height's effect on the index without rescanning every coin
// the store has ever held.
type mutationLogEntry struct {
	Added []types.CoinID `json:"added"`
	Spent []types.CoinID `json:"spent"`
}

func mutationKey(h types.Height) []byte {
	key := make([]byte, len(prefixMutation)+8)
	copy(key, prefixMutation)
	binary.BigEndian.PutUint64(key[len(prefixMutation):], h)
	return key
}

// Store implements the durable half of the unspent index, backed by a
// storage.DB (badger or in-memory).
type Store struct {
	db storage.DB
}

// NewStore creates a coin store backed by the given database.
func NewStore(db storage.DB) *Store {
	return &Store{db: db}
}

func coinKey(id types.CoinID) []byte {
	key := make([]byte, len(prefixCoin)+types.HashSize)
	copy(key, prefixCoin)
	copy(key[len(prefixCoin):], id[:])
	return key
}

func puzzleHashKey(ph types.Hash, id types.CoinID) []byte {
	key := make([]byte, len(prefixPuzzleHash)+2*types.HashSize)
	copy(key, prefixPuzzleHash)
	copy(key[len(prefixPuzzleHash):], ph[:])
	copy(key[len(prefixPuzzleHash)+types.HashSize:], id[:])
	return key
}

// Get retrieves a coin record by its coin id.
func (s *Store) Get(id types.CoinID) (*types.CoinRecord, error) {
	data, err := s.db.Get(coinKey(id))
	if err != nil {
		return nil, fmt.Errorf("unspent get %s: %w", id, err)
	}
	var r types.CoinRecord
	if err := json.Unmarshal(data, &r); err != nil {
		return nil, fmt.Errorf("unspent unmarshal %s: %w", id, err)
	}
	return &r, nil
}

// Put stores a coin record and updates its puzzle-hash index entry.
func (s *Store) Put(id types.CoinID, r *types.CoinRecord) error {
	data, err := json.Marshal(r)
	if err != nil {
		return fmt.Errorf("unspent marshal %s: %w", id, err)
	}
	if err := s.db.Put(coinKey(id), data); err != nil {
		return fmt.Errorf("unspent put %s: %w", id, err)
	}
	if err := s.db.Put(puzzleHashKey(r.Coin.PuzzleHash, id), []byte{}); err != nil {
		return fmt.Errorf("unspent puzzle hash index put %s: %w", id, err)
	}
	return nil
}

// Delete removes a coin record and its puzzle-hash index entry entirely.
// Used only when rolling back past the height a coin was first created at.
func (s *Store) Delete(id types.CoinID) error {
	r, err := s.Get(id)
	if err == nil {
		s.db.Delete(puzzleHashKey(r.Coin.PuzzleHash, id))
	}
	if err := s.db.Delete(coinKey(id)); err != nil {
		return fmt.Errorf("unspent delete %s: %w", id, err)
	}
	return nil
}

// Has reports whether a coin record exists, spent or not.
func (s *Store) Has(id types.CoinID) (bool, error) {
	return s.db.Has(coinKey(id))
}

// ForEach iterates over every coin record in the store.
func (s *Store) ForEach(fn func(types.CoinID, *types.CoinRecord) error) error {
	return s.db.ForEach(prefixCoin, func(key, value []byte) error {
		if len(key) < len(prefixCoin)+types.HashSize {
			return nil
		}
		var id types.CoinID
		copy(id[:], key[len(prefixCoin):])
		var r types.CoinRecord
		if err := json.Unmarshal(value, &r); err != nil {
			return fmt.Errorf("unspent unmarshal %s: %w", id, err)
		}
		return fn(id, &r)
	})
}

// GetByPuzzleHash returns every coin record locked to the given puzzle
// hash, scanning the secondary index.
func (s *Store) GetByPuzzleHash(ph types.Hash) ([]*types.CoinRecord, error) {
	prefix := make([]byte, len(prefixPuzzleHash)+types.HashSize)
	copy(prefix, prefixPuzzleHash)
	copy(prefix[len(prefixPuzzleHash):], ph[:])

	var records []*types.CoinRecord
	err := s.db.ForEach(prefix, func(key, _ []byte) error {
		off := len(prefixPuzzleHash) + types.HashSize
		if len(key) < off+types.HashSize {
			return nil
		}
		var id types.CoinID
		copy(id[:], key[off:])
		r, err := s.Get(id)
		if err != nil {
			return nil // index entry outlived the coin record; skip.
		}
		records = append(records, r)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("scan puzzle hash index: %w", err)
	}
	return records, nil
}

// appendMutation records that id was added or spent (exactly one of the
// two, never both) at height h, merging into any entry already recorded
// for that height.
func (s *Store) appendMutation(h types.Height, added, spent *types.CoinID) error {
	key := mutationKey(h)
	var entry mutationLogEntry
	if data, err := s.db.Get(key); err == nil {
		if err := json.Unmarshal(data, &entry); err != nil {
			return fmt.Errorf("unspent unmarshal mutation log %d: %w", h, err)
		}
	}
	if added != nil {
		entry.Added = append(entry.Added, *added)
	}
	if spent != nil {
		entry.Spent = append(entry.Spent, *spent)
	}
	out, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("unspent marshal mutation log %d: %w", h, err)
	}
	if err := s.db.Put(key, out); err != nil {
		return fmt.Errorf("unspent put mutation log %d: %w", h, err)
	}
	return nil
}

// ForEachMutationSince calls fn once per height strictly greater than h,
// in ascending height order, until fn returns an error or the log is
// exhausted. This is the range scan RollbackTo uses instead of walking
// every coin in the store.
func (s *Store) ForEachMutationSince(h types.Height, fn func(types.Height, mutationLogEntry) error) error {
	start := mutationKey(h + 1)
	return s.db.ForEachFrom(prefixMutation, start, func(key, value []byte) error {
		if len(key) < len(prefixMutation)+8 {
			return nil
		}
		height := types.Height(binary.BigEndian.Uint64(key[len(prefixMutation):]))
		var entry mutationLogEntry
		if err := json.Unmarshal(value, &entry); err != nil {
			return fmt.Errorf("unspent unmarshal mutation log %d: %w", height, err)
		}
		return fn(height, entry)
	})
}

// deleteMutationLog drops the recorded entry for height h, once
// RollbackTo has replayed it and a reorg past it makes it unreachable.
func (s *Store) deleteMutationLog(h types.Height) error {
	return s.db.Delete(mutationKey(h))
}

// Close releases the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}
