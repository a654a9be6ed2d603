// Package crypto provides cryptographic primitives for the coin-spend engine.
package crypto

import (
	"encoding/binary"

	"github.com/spendbench/spendbench/pkg/types"
	"github.com/zeebo/blake3"
)

// Hash computes a BLAKE3-256 hash of the input data.
func Hash(data []byte) types.Hash {
	return blake3.Sum256(data)
}

// DoubleHash computes Hash(Hash(data)).
func DoubleHash(data []byte) types.Hash {
	first := Hash(data)
	return Hash(first[:])
}

// HashConcat hashes the concatenation of two hashes.
func HashConcat(a, b types.Hash) types.Hash {
	var buf [64]byte
	copy(buf[:32], a[:])
	copy(buf[32:], b[:])
	return Hash(buf[:])
}

// CoinID derives a coin's content-addressed identifier as
// Hash(parent || puzzle_hash || amount_be64). Changing any of the three
// fields changes the id.
func CoinID(c types.Coin) types.CoinID {
	var buf [32 + 32 + 8]byte
	copy(buf[:32], c.Parent[:])
	copy(buf[32:64], c.PuzzleHash[:])
	binary.BigEndian.PutUint64(buf[64:], c.Amount)
	return Hash(buf[:])
}

// AnnouncementID derives a bundle-local announcement id as
// Hash(coin_id || msg), per the CreateAnnouncement/AssertAnnouncement
// condition pair.
func AnnouncementID(coinID types.CoinID, msg []byte) types.Hash {
	buf := make([]byte, 32+len(msg))
	copy(buf[:32], coinID[:])
	copy(buf[32:], msg)
	return Hash(buf)
}

// BundleID derives a spend bundle's content-addressed hash from its
// signing bytes, the same split pkg/tx.Transaction uses between Hash and
// SigningBytes: the signature itself is excluded so the hash never
// depends on data that depends on the hash.
func BundleID(b types.SpendBundle) types.Hash {
	return Hash(b.SigningBytes())
}

// AggSigMeMessage derives the message a verifier must check for an
// AggSigMe condition: Hash(message || coin_id).
func AggSigMeMessage(message []byte, coinID types.CoinID) []byte {
	buf := make([]byte, len(message)+32)
	copy(buf, message)
	copy(buf[len(message):], coinID[:])
	h := Hash(buf)
	return h[:]
}
