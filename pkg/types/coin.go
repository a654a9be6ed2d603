package types

import "fmt"

// CoinID is the content-addressed identifier of a coin: a hash of
// (parent coin id, puzzle hash, amount). Two coins with the same three
// fields are the same coin.
type CoinID = Hash

// Coin is a spendable value locked to a puzzle hash.
type Coin struct {
	Parent     CoinID `json:"parent"`
	PuzzleHash Hash   `json:"puzzle_hash"`
	Amount     uint64 `json:"amount"`
}

// String returns "parent/puzzle_hash:amount" in hex.
func (c Coin) String() string {
	return fmt.Sprintf("%s/%s:%d", c.Parent, c.PuzzleHash, c.Amount)
}

// Height is a block height. Zero is a valid height (genesis); callers use
// a separate bool or sentinel where "absent" must be distinguished from
// "genesis".
type Height = uint64

// CoinRecord is the unspent-index's stored view of a coin: the coin value
// plus the block lifecycle fields the checker and the index need.
type CoinRecord struct {
	Coin            Coin   `json:"coin"`
	ConfirmedHeight Height `json:"confirmed_height"`
	// SpentHeight is 0 if and only if the coin is unspent.
	SpentHeight Height `json:"spent_height"`
	Coinbase    bool   `json:"coinbase"`
	// Timestamp is the confirming block's wall-clock time in milliseconds,
	// used by AssertSecondsAgeExceeds.
	Timestamp uint64 `json:"timestamp"`
}

// IsSpent reports whether the record has been marked spent.
func (r CoinRecord) IsSpent() bool {
	return r.SpentHeight != 0
}
