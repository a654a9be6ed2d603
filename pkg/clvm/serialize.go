package clvm

import (
	"encoding/binary"
	"fmt"
)

const (
	tagAtom byte = 0x00
	tagPair byte = 0x01
)

// Serialize encodes a Node into the canonical tagged wire format: an atom
// is tagAtom + uvarint(len) + bytes, a pair is tagPair + Serialize(First)
// + Serialize(Rest). Serialize(Deserialize(b)) == b for any b Deserialize
// accepts.
func Serialize(n Node) []byte {
	var buf []byte
	return appendNode(buf, n)
}

func appendNode(buf []byte, n Node) []byte {
	switch v := n.(type) {
	case Atom:
		buf = append(buf, tagAtom)
		buf = appendUvarint(buf, uint64(len(v)))
		buf = append(buf, v...)
		return buf
	case *Pair:
		buf = append(buf, tagPair)
		buf = appendNode(buf, v.First)
		buf = appendNode(buf, v.Rest)
		return buf
	default:
		panic(fmt.Sprintf("clvm: unknown Node implementation %T", n))
	}
}

func appendUvarint(buf []byte, v uint64) []byte {
	var tmp [binary.MaxVarintLen64]byte
	n := binary.PutUvarint(tmp[:], v)
	return append(buf, tmp[:n]...)
}

// Deserialize decodes a Node from its canonical wire format, returning the
// remaining, unconsumed bytes. Structurally malformed input (truncated
// buffer, unknown tag) yields ErrInvalidProgram.
func Deserialize(b []byte) (Node, []byte, error) {
	if len(b) == 0 {
		return nil, nil, fmt.Errorf("%w: empty program", ErrInvalidProgram)
	}
	tag := b[0]
	rest := b[1:]
	switch tag {
	case tagAtom:
		length, n := binary.Uvarint(rest)
		if n <= 0 {
			return nil, nil, fmt.Errorf("%w: bad atom length varint", ErrInvalidProgram)
		}
		if n != len(appendUvarint(nil, length)) {
			return nil, nil, fmt.Errorf("%w: non-minimal atom length varint", ErrInvalidProgram)
		}
		rest = rest[n:]
		if uint64(len(rest)) < length {
			return nil, nil, fmt.Errorf("%w: truncated atom", ErrInvalidProgram)
		}
		return Atom(append([]byte(nil), rest[:length]...)), rest[length:], nil
	case tagPair:
		first, rest, err := Deserialize(rest)
		if err != nil {
			return nil, nil, err
		}
		restNode, rest, err := Deserialize(rest)
		if err != nil {
			return nil, nil, err
		}
		return &Pair{First: first, Rest: restNode}, rest, nil
	default:
		return nil, nil, fmt.Errorf("%w: unknown tag byte 0x%02x", ErrInvalidProgram, tag)
	}
}

// DeserializeFull decodes exactly one Node and requires the entire buffer
// to be consumed.
func DeserializeFull(b []byte) (Node, error) {
	n, rest, err := Deserialize(b)
	if err != nil {
		return nil, err
	}
	if len(rest) != 0 {
		return nil, fmt.Errorf("%w: %d trailing bytes after program", ErrInvalidProgram, len(rest))
	}
	return n, nil
}
