package condition

import (
	"fmt"

	"github.com/spendbench/spendbench/pkg/clvm"
	"github.com/spendbench/spendbench/pkg/types"
)

// DecodeInt decodes a condition argument as a canonical big-endian signed
// integer. Non-canonical encodings (a redundant leading 0x00 or 0xff byte)
// are rejected: the checker must see the same value a conforming puzzle
// author would have produced, never an equivalent but differently-padded
// one.
func DecodeInt(arg []byte) (int64, error) {
	v, err := clvm.AsInt(clvm.Atom(arg))
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrInvalidCondition, err)
	}
	if string(clvm.Int(v)) != string(arg) {
		return 0, fmt.Errorf("%w: non-canonical integer encoding", ErrInvalidCondition)
	}
	return v, nil
}

// DecodeAmount decodes a condition argument as a non-negative amount.
func DecodeAmount(arg []byte) (uint64, error) {
	v, err := DecodeInt(arg)
	if err != nil {
		return 0, err
	}
	if v < 0 {
		return 0, fmt.Errorf("%w: amount must not be negative", ErrInvalidCondition)
	}
	return uint64(v), nil
}

// DecodeHash requires a condition argument to be exactly one hash's worth
// of bytes (a coin id, puzzle hash, or announcement id).
func DecodeHash(arg []byte) (types.Hash, error) {
	if len(arg) != types.HashSize {
		return types.Hash{}, fmt.Errorf("%w: expected %d-byte hash, got %d", ErrInvalidCondition, types.HashSize, len(arg))
	}
	var h types.Hash
	copy(h[:], arg)
	return h, nil
}
