package clvm

import "testing"

// FuzzDeserialize checks that Deserialize never panics on arbitrary input
// and that any Node it successfully decodes round-trips through Serialize.
func FuzzDeserialize(f *testing.F) {
	f.Add(Serialize(Nil))
	f.Add(Serialize(Int(42)))
	f.Add(Serialize(Cons(Int(1), Cons(Int(2), Nil))))
	f.Add([]byte{0x01})
	f.Add([]byte{0x00})
	f.Add([]byte{})

	f.Fuzz(func(t *testing.T, data []byte) {
		n, rest, err := Deserialize(data)
		if err != nil {
			return
		}
		got := Serialize(n)
		want := data[:len(data)-len(rest)]
		if string(got) != string(want) {
			t.Errorf("round trip mismatch: got %x, want %x", got, want)
		}
	})
}

// FuzzRunPuzzle checks that RunPuzzle never panics on arbitrary
// puzzle/solution byte input, regardless of whether the bytes decode to a
// valid program.
func FuzzRunPuzzle(f *testing.F) {
	f.Add(Serialize(quote(Int(1))), Serialize(Nil))
	f.Add(Serialize(op(OpAdd, quote(Int(1)), quote(Int(2)))), Serialize(Nil))
	f.Add([]byte{0x01}, []byte{0x00})

	f.Fuzz(func(t *testing.T, puzzle, solution []byte) {
		RunPuzzle(puzzle, solution, 1_000_000)
	})
}
