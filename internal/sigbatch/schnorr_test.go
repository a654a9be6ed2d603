package sigbatch

import (
	"testing"

	"github.com/spendbench/spendbench/pkg/crypto"
)

func signPair(t *testing.T, msg []byte) (Pair, []byte) {
	t.Helper()
	key, err := crypto.GenerateKey()
	if err != nil {
		t.Fatalf("GenerateKey: %v", err)
	}
	sig, err := key.Sign(msg)
	if err != nil {
		t.Fatalf("Sign: %v", err)
	}
	return Pair{PubKey: key.PublicKey(), Message: msg}, sig
}

func TestSchnorrBatchVerifierSinglePair(t *testing.T) {
	msg := make([]byte, 32)
	msg[0] = 0x42
	pair, sig := signPair(t, msg)

	v := SchnorrBatchVerifier{}
	if !v.VerifyAggregate([]Pair{pair}, sig) {
		t.Error("expected valid single-pair signature to verify")
	}
}

func TestSchnorrBatchVerifierMultiplePairs(t *testing.T) {
	msg1 := make([]byte, 32)
	msg1[0] = 1
	msg2 := make([]byte, 32)
	msg2[0] = 2

	pair1, sig1 := signPair(t, msg1)
	pair2, sig2 := signPair(t, msg2)

	combined := append(append([]byte{}, sig1...), sig2...)
	v := SchnorrBatchVerifier{}
	if !v.VerifyAggregate([]Pair{pair1, pair2}, combined) {
		t.Error("expected concatenated two-pair signature to verify")
	}
}

func TestSchnorrBatchVerifierWrongLength(t *testing.T) {
	msg := make([]byte, 32)
	pair, sig := signPair(t, msg)

	v := SchnorrBatchVerifier{}
	if v.VerifyAggregate([]Pair{pair}, sig[:len(sig)-1]) {
		t.Error("truncated signature should not verify")
	}
}

func TestSchnorrBatchVerifierWrongOrder(t *testing.T) {
	msg1 := make([]byte, 32)
	msg1[0] = 1
	msg2 := make([]byte, 32)
	msg2[0] = 2

	pair1, sig1 := signPair(t, msg1)
	pair2, sig2 := signPair(t, msg2)

	// Signatures swapped relative to pair order.
	combined := append(append([]byte{}, sig2...), sig1...)
	v := SchnorrBatchVerifier{}
	if v.VerifyAggregate([]Pair{pair1, pair2}, combined) {
		t.Error("mismatched pair/signature order should not verify")
	}
}

func TestSchnorrBatchVerifierRejectsShortMessage(t *testing.T) {
	pair := Pair{PubKey: []byte("not-a-real-key"), Message: []byte("short")}
	v := SchnorrBatchVerifier{}
	if v.VerifyAggregate([]Pair{pair}, make([]byte, schnorrSigLen)) {
		t.Error("non-32-byte message should never verify")
	}
}
