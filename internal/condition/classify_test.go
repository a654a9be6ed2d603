package condition

import (
	"errors"
	"testing"

	"github.com/spendbench/spendbench/internal/enginerr"
	"github.com/spendbench/spendbench/pkg/clvm"
	"github.com/spendbench/spendbench/pkg/types"
)

func entry(opcode byte, args ...[]byte) clvm.Node {
	nodes := make([]clvm.Node, 0, len(args)+1)
	nodes = append(nodes, clvm.Atom{opcode})
	for _, a := range args {
		nodes = append(nodes, clvm.Atom(a))
	}
	return clvm.SliceToList(nodes)
}

func TestClassifyGroupsByOpcodePreservingOrder(t *testing.T) {
	raw := clvm.SliceToList([]clvm.Node{
		entry(52, make([]byte, 32), []byte{0x01}),
		entry(50, []byte("pk1"), []byte("msg1")),
		entry(52, make([]byte, 32), []byte{0x02}),
	})

	got, err := Classify(raw, true)
	if err != nil {
		t.Fatalf("Classify: %v", err)
	}

	createCoins := got[types.OpCreateCoin]
	if len(createCoins) != 2 {
		t.Fatalf("got %d CREATE_COIN conditions, want 2", len(createCoins))
	}
	if createCoins[0].Args[1][0] != 0x01 || createCoins[1].Args[1][0] != 0x02 {
		t.Errorf("CREATE_COIN order not preserved")
	}
	if len(got[types.OpAggSig]) != 1 {
		t.Errorf("got %d AGG_SIG conditions, want 1", len(got[types.OpAggSig]))
	}
}

func TestClassifyRejectsWrongArity(t *testing.T) {
	raw := clvm.SliceToList([]clvm.Node{entry(52, make([]byte, 32))}) // CREATE_COIN needs 2 args
	if _, err := Classify(raw, false); !errors.Is(err, ErrInvalidCondition) {
		t.Errorf("got %v, want ErrInvalidCondition", err)
	}
}

func TestClassifyUnknownOpcodeStrictVsLenient(t *testing.T) {
	raw := clvm.SliceToList([]clvm.Node{entry(200, []byte("x"))})

	if _, err := Classify(raw, true); !errors.Is(err, enginerr.ErrUnknownOperator) {
		t.Errorf("strict: got %v, want ErrUnknownOperator", err)
	}

	got, err := Classify(raw, false)
	if err != nil {
		t.Fatalf("lenient: unexpected error %v", err)
	}
	if len(got[types.OpUnknown]) != 1 {
		t.Errorf("lenient: expected 1 unknown condition, got %d", len(got[types.OpUnknown]))
	}
}

func TestClassifyRejectsNonListEntry(t *testing.T) {
	raw := clvm.SliceToList([]clvm.Node{clvm.Atom("not-a-list")})
	if _, err := Classify(raw, false); !errors.Is(err, ErrInvalidCondition) {
		t.Errorf("got %v, want ErrInvalidCondition", err)
	}
}

func TestClassifyRejectsNonAtomHead(t *testing.T) {
	raw := clvm.SliceToList([]clvm.Node{clvm.Cons(clvm.Cons(clvm.Atom{1}, clvm.Nil), clvm.Nil)})
	if _, err := Classify(raw, false); !errors.Is(err, ErrInvalidCondition) {
		t.Errorf("got %v, want ErrInvalidCondition", err)
	}
}

func TestDecodeIntRejectsNonCanonical(t *testing.T) {
	if _, err := DecodeInt([]byte{0x00, 0x01}); !errors.Is(err, ErrInvalidCondition) {
		t.Errorf("got %v, want ErrInvalidCondition for non-canonical 0x0001", err)
	}
	v, err := DecodeInt([]byte{0x01})
	if err != nil || v != 1 {
		t.Errorf("DecodeInt(canonical 1) = %d, %v", v, err)
	}
}

func TestDecodeAmountRejectsNegative(t *testing.T) {
	neg := clvm.Int(-1)
	if _, err := DecodeAmount(neg); !errors.Is(err, ErrInvalidCondition) {
		t.Errorf("got %v, want ErrInvalidCondition for negative amount", err)
	}
}

func TestDecodeHashRequiresExactLength(t *testing.T) {
	if _, err := DecodeHash(make([]byte, 31)); !errors.Is(err, ErrInvalidCondition) {
		t.Errorf("got %v, want ErrInvalidCondition for short hash", err)
	}
	h, err := DecodeHash(make([]byte, 32))
	if err != nil || !h.IsZero() {
		t.Errorf("DecodeHash(32 zero bytes) = %v, %v, want zero hash", h, err)
	}
}
