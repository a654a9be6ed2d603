package clvm

import (
	"bytes"
	"testing"
)

func TestSerializeRoundTrip(t *testing.T) {
	tests := []struct {
		name string
		n    Node
	}{
		{"nil atom", Nil},
		{"small int atom", Int(42)},
		{"negative int atom", Int(-7)},
		{"raw bytes atom", Atom{0xde, 0xad, 0xbe, 0xef}},
		{"simple pair", Cons(Int(1), Int(2))},
		{"nested list", SliceToList([]Node{Int(1), Int(2), Int(3)})},
		{"deeply nested", Cons(Cons(Int(1), Nil), Cons(Atom("x"), Nil))},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := Serialize(tt.n)
			got, err := DeserializeFull(b)
			if err != nil {
				t.Fatalf("DeserializeFull: %v", err)
			}
			b2 := Serialize(got)
			if !bytes.Equal(b, b2) {
				t.Errorf("round trip mismatch: %x != %x", b, b2)
			}
		})
	}
}

func TestDeserializeTruncated(t *testing.T) {
	full := Serialize(Cons(Int(1), Int(2)))
	for i := 0; i < len(full); i++ {
		if _, _, err := Deserialize(full[:i]); err == nil {
			t.Errorf("Deserialize(truncated to %d bytes) should have failed", i)
		}
	}
}

func TestDeserializeUnknownTag(t *testing.T) {
	if _, _, err := Deserialize([]byte{0x02}); err == nil {
		t.Error("expected error for unknown tag byte")
	}
}

func TestDeserializeFullRejectsTrailingBytes(t *testing.T) {
	b := append(Serialize(Int(1)), 0xff)
	if _, err := DeserializeFull(b); err == nil {
		t.Error("expected error for trailing bytes")
	}
}

func TestIntRoundTrip(t *testing.T) {
	for _, v := range []int64{0, 1, -1, 127, 128, -128, -129, 255, 256, 65535, -65536, 1 << 40, -(1 << 40)} {
		a := Int(v)
		got, err := AsInt(a)
		if err != nil {
			t.Fatalf("AsInt(%d): %v", v, err)
		}
		if got != v {
			t.Errorf("Int(%d) round trip = %d", v, got)
		}
	}
}

func TestListToSliceAndBack(t *testing.T) {
	items := []Node{Int(1), Atom("two"), Cons(Int(3), Nil)}
	list := SliceToList(items)
	got, err := ListToSlice(list)
	if err != nil {
		t.Fatalf("ListToSlice: %v", err)
	}
	if len(got) != len(items) {
		t.Fatalf("len = %d, want %d", len(got), len(items))
	}
}

func TestListToSliceImproperList(t *testing.T) {
	improper := Cons(Int(1), Int(2))
	if _, err := ListToSlice(improper); err == nil {
		t.Error("expected error for improper list")
	}
}
