package types

import "encoding/binary"

// CoinSpend pairs a coin with the puzzle/solution that authorizes spending
// it. Program and Solution are opaque byte blobs; only pkg/clvm reads their
// internal structure.
type CoinSpend struct {
	Coin     Coin   `json:"coin"`
	Puzzle   []byte `json:"puzzle"`
	Solution []byte `json:"solution"`
}

// SpendBundle is an ordered list of coin spends plus one aggregated
// signature, admitted or rejected atomically. The set of coin ids named as
// removals is exactly {s.Coin's id | s in Spends}; additions are the
// CreateCoin conditions emitted by running the bundle.
type SpendBundle struct {
	Spends              []CoinSpend `json:"spends"`
	AggregatedSignature []byte      `json:"aggregated_signature"`
}

// SigningBytes returns the canonical byte representation a bundle's
// content-addressed hash is computed over. The aggregated signature is
// excluded on purpose: it signs this exact byte string, so including it
// here would make the hash depend on the signature that depends on the
// hash.
//
// Format: spend_count(4) | [parent(32) + puzzle_hash(32) + amount(8) +
// puzzle_len(4) + puzzle + solution_len(4) + solution]...
func (b SpendBundle) SigningBytes() []byte {
	var buf []byte
	buf = binary.LittleEndian.AppendUint32(buf, uint32(len(b.Spends)))
	for _, s := range b.Spends {
		buf = append(buf, s.Coin.Parent[:]...)
		buf = append(buf, s.Coin.PuzzleHash[:]...)
		buf = binary.LittleEndian.AppendUint64(buf, s.Coin.Amount)
		buf = binary.LittleEndian.AppendUint32(buf, uint32(len(s.Puzzle)))
		buf = append(buf, s.Puzzle...)
		buf = binary.LittleEndian.AppendUint32(buf, uint32(len(s.Solution)))
		buf = append(buf, s.Solution...)
	}
	return buf
}
