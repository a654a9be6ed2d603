package sigbatch

import "github.com/spendbench/spendbench/pkg/crypto"

// SchnorrBatchVerifier is the default Verifier. The underlying scheme
// (secp256k1 Schnorr via pkg/crypto) has no native signature
// aggregation, so "aggregated signature" here means a fixed-size
// concatenation of one 64-byte signature per pair, in the same order
// Collect produced the pairs in. This is a documented limitation, not a
// real aggregate scheme: a production deployment would swap in a
// Verifier backed by BLS or a proper Schnorr aggregation protocol
// without touching any caller of this interface.
type SchnorrBatchVerifier struct{}

const schnorrSigLen = 64

// VerifyAggregate reports whether sig decomposes into exactly len(pairs)
// concatenated signatures, each valid for its pair's (pubkey, message).
// Every message must be exactly 32 bytes, the hash length pkg/crypto's
// Schnorr verifier requires.
func (SchnorrBatchVerifier) VerifyAggregate(pairs []Pair, sig []byte) bool {
	if len(sig) != len(pairs)*schnorrSigLen {
		return false
	}
	for i, p := range pairs {
		if len(p.Message) != 32 {
			return false
		}
		part := sig[i*schnorrSigLen : (i+1)*schnorrSigLen]
		if !crypto.VerifySignature(p.Message, part, p.PubKey) {
			return false
		}
	}
	return true
}
