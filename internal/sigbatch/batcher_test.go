package sigbatch

import (
	"bytes"
	"testing"

	"github.com/spendbench/spendbench/pkg/crypto"
	"github.com/spendbench/spendbench/pkg/types"
)

func TestCollectAggSig(t *testing.T) {
	pk := []byte("pubkey")
	msg := []byte("message")
	npc := types.NPC{
		ConditionsByOpcode: types.ConditionsByOpcode{
			types.OpAggSig: {{Opcode: types.OpAggSig, Args: [][]byte{pk, msg}}},
		},
	}
	pairs := Collect([]types.NPC{npc})
	if len(pairs) != 1 {
		t.Fatalf("len(pairs) = %d, want 1", len(pairs))
	}
	if !bytes.Equal(pairs[0].PubKey, pk) || !bytes.Equal(pairs[0].Message, msg) {
		t.Error("AggSig pair should carry the raw message unmodified")
	}
}

func TestCollectAggSigMeBindsCoinID(t *testing.T) {
	pk := []byte("pubkey")
	msg := []byte("message")
	var coinID types.CoinID
	coinID[0] = 0xaa

	npc := types.NPC{
		CoinID: coinID,
		ConditionsByOpcode: types.ConditionsByOpcode{
			types.OpAggSigMe: {{Opcode: types.OpAggSigMe, Args: [][]byte{pk, msg}}},
		},
	}
	pairs := Collect([]types.NPC{npc})
	if len(pairs) != 1 {
		t.Fatalf("len(pairs) = %d, want 1", len(pairs))
	}
	want := crypto.AggSigMeMessage(msg, coinID)
	if !bytes.Equal(pairs[0].Message, want) {
		t.Error("AggSigMe pair message should be hash(msg || coin_id)")
	}
}

func TestCollectPreservesOrderAcrossCoins(t *testing.T) {
	npc1 := types.NPC{ConditionsByOpcode: types.ConditionsByOpcode{
		types.OpAggSig: {{Opcode: types.OpAggSig, Args: [][]byte{[]byte("a"), make([]byte, 32)}}},
	}}
	npc2 := types.NPC{ConditionsByOpcode: types.ConditionsByOpcode{
		types.OpAggSig: {{Opcode: types.OpAggSig, Args: [][]byte{[]byte("b"), make([]byte, 32)}}},
	}}
	pairs := Collect([]types.NPC{npc1, npc2})
	if len(pairs) != 2 || string(pairs[0].PubKey) != "a" || string(pairs[1].PubKey) != "b" {
		t.Error("Collect should preserve per-coin order")
	}
}
