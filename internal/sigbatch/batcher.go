// Package sigbatch collects the (pubkey, message) obligations a bundle's
// AggSig/AggSigMe conditions impose and hands them to a pluggable
// aggregate verifier, so the checker never has to know the signature
// scheme in use.
package sigbatch

import (
	"github.com/spendbench/spendbench/pkg/crypto"
	"github.com/spendbench/spendbench/pkg/types"
)

// Pair is one signature obligation: a message that must have been signed
// by the holder of pubkey.
type Pair struct {
	PubKey  []byte
	Message []byte
}

// Verifier checks a bundle's aggregated signature against every pair its
// conditions demanded. Implementations are free to use any aggregate
// signature scheme; the batcher is opinion-free about it.
type Verifier interface {
	VerifyAggregate(pairs []Pair, sig []byte) bool
}

// Collect walks every coin's classified conditions and builds the pair
// list a valid aggregated signature must cover. AggSigMe conditions are
// bound to their coin: the message a signer actually signed is
// hash(m || coin_id), so a signature over one coin's AggSigMe can't be
// replayed against another coin with the same message.
func Collect(npcs []types.NPC) []Pair {
	var pairs []Pair
	for _, npc := range npcs {
		for _, c := range npc.ConditionsByOpcode[types.OpAggSig] {
			pairs = append(pairs, Pair{PubKey: c.Args[0], Message: c.Args[1]})
		}
		for _, c := range npc.ConditionsByOpcode[types.OpAggSigMe] {
			pairs = append(pairs, Pair{
				PubKey:  c.Args[0],
				Message: crypto.AggSigMeMessage(c.Args[1], npc.CoinID),
			})
		}
	}
	return pairs
}
