// Package clvm implements a minimal, deterministic tree-evaluator for
// coin spend programs. A program is an opaque blob to every other
// package in this module; only clvm parses and runs it.
package clvm

import (
	"encoding/binary"
	"fmt"
	"math/bits"
)

// Node is either an Atom or a Pair. The zero value of neither type is a
// valid Node on its own; use Nil for the canonical empty atom.
type Node interface {
	isNode()
}

// Atom is a leaf value: an arbitrary byte string, interpreted as an
// integer, a blob, or a boolean (nil means false, anything else true)
// depending on which operator consumes it.
type Atom []byte

func (Atom) isNode() {}

// Pair is a cons cell: First and Rest are each a Node.
type Pair struct {
	First Node
	Rest  Node
}

func (*Pair) isNode() {}

// Nil is the canonical empty atom, standing for both "false" and the
// empty list.
var Nil Node = Atom(nil)

// IsNil reports whether n is the empty atom.
func IsNil(n Node) bool {
	a, ok := n.(Atom)
	return ok && len(a) == 0
}

// IsPair reports whether n is a Pair.
func IsPair(n Node) bool {
	_, ok := n.(*Pair)
	return ok
}

// Cons builds a Pair from two nodes.
func Cons(first, rest Node) Node {
	return &Pair{First: first, Rest: rest}
}

// Int encodes an int64 as the minimal big-endian two's-complement Atom
// CLVM-style integers use: no redundant leading 0x00 or 0xff byte unless
// needed to fix the sign of the following byte.
func Int(v int64) Atom {
	if v == 0 {
		return Atom(nil)
	}
	var buf [8]byte
	binary.BigEndian.PutUint64(buf[:], uint64(v))
	i := 0
	for i < 7 {
		b := buf[i]
		next := buf[i+1]
		if b == 0x00 && next&0x80 == 0 {
			i++
			continue
		}
		if b == 0xff && next&0x80 != 0 {
			i++
			continue
		}
		break
	}
	return Atom(append([]byte(nil), buf[i:]...))
}

// AsInt decodes an Atom as a big-endian two's-complement signed integer.
// Atoms longer than 8 bytes overflow int64 and return an error.
func AsInt(a Atom) (int64, error) {
	if len(a) == 0 {
		return 0, nil
	}
	if len(a) > 8 {
		return 0, fmt.Errorf("%w: atom of %d bytes does not fit in int64", ErrInvalidProgram, len(a))
	}
	var buf [8]byte
	if a[0]&0x80 != 0 {
		for i := range buf {
			buf[i] = 0xff
		}
	}
	copy(buf[8-len(a):], a)
	return int64(binary.BigEndian.Uint64(buf[:])), nil
}

// AsUint decodes an Atom as an unsigned path index. Negative-looking
// atoms (high bit set on the leading byte) are rejected: paths are
// never negative.
func AsUint(a Atom) (uint64, error) {
	if len(a) == 0 {
		return 0, nil
	}
	if len(a) > 8 || (len(a) == 8 && a[0]&0x80 != 0) {
		return 0, fmt.Errorf("%w: path atom out of range", ErrInvalidProgram)
	}
	var buf [8]byte
	copy(buf[8-len(a):], a)
	return binary.BigEndian.Uint64(buf[:]), nil
}

// pathLookup walks env following the binary path encoded by p, MSB first,
// skipping the leading 1 bit which only marks where the path starts.
// Path 0 denotes the whole environment.
func pathLookup(env Node, p uint64) (Node, error) {
	if p == 0 {
		return env, nil
	}
	cur := env
	for i := bits.Len64(p) - 2; i >= 0; i-- {
		pair, ok := cur.(*Pair)
		if !ok {
			return nil, fmt.Errorf("%w: path indexes into an atom", ErrPathIntoAtom)
		}
		if (p>>uint(i))&1 == 0 {
			cur = pair.First
		} else {
			cur = pair.Rest
		}
	}
	return cur, nil
}

// ListToSlice converts a proper list (nested Pairs terminated by Nil)
// into a slice of its elements, in order.
func ListToSlice(n Node) ([]Node, error) {
	var out []Node
	for {
		if IsNil(n) {
			return out, nil
		}
		p, ok := n.(*Pair)
		if !ok {
			return nil, fmt.Errorf("%w: improper list", ErrInvalidProgram)
		}
		out = append(out, p.First)
		n = p.Rest
	}
}

// SliceToList builds a proper list from a slice of nodes.
func SliceToList(ns []Node) Node {
	var out Node = Nil
	for i := len(ns) - 1; i >= 0; i-- {
		out = Cons(ns[i], out)
	}
	return out
}

// AsAtom requires n to be an Atom and returns it, or an error.
func AsAtom(n Node) (Atom, error) {
	a, ok := n.(Atom)
	if !ok {
		return nil, fmt.Errorf("%w: expected atom, got pair", ErrInvalidProgram)
	}
	return a, nil
}

// AsPair requires n to be a Pair and returns it, or an error.
func AsPair(n Node) (*Pair, error) {
	p, ok := n.(*Pair)
	if !ok {
		return nil, fmt.Errorf("%w: expected pair, got atom", ErrInvalidProgram)
	}
	return p, nil
}

// Truthy reports whether n should be treated as a boolean true: anything
// other than the Nil atom.
func Truthy(n Node) bool {
	return !IsNil(n)
}

// Bool maps a Go bool to the canonical CLVM boolean atoms.
func Bool(b bool) Node {
	if b {
		return Atom{1}
	}
	return Nil
}
