package clvm

import (
	"crypto/sha256"
	"errors"
	"testing"
)

func quote(n Node) Node {
	return Cons(Atom{byte(OpQuote)}, n)
}

func op(o Op, args ...Node) Node {
	return Cons(Atom{byte(o)}, SliceToList(args))
}

func runPuzzle(t *testing.T, puzzle, solution Node, maxCost uint64) (Node, uint64, error) {
	t.Helper()
	return RunPuzzle(Serialize(puzzle), Serialize(solution), maxCost)
}

func TestRunPuzzleQuote(t *testing.T) {
	out, _, err := runPuzzle(t, quote(Int(5)), Nil, 10000)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	got, err := AsInt(out.(Atom))
	if err != nil || got != 5 {
		t.Errorf("got %v, want 5", out)
	}
}

func TestRunPuzzlePathLookup(t *testing.T) {
	env := Cons(Int(10), Int(20))

	out, _, err := runPuzzle(t, Atom{2}, env, 10000)
	if err != nil {
		t.Fatalf("path 2 (first): %v", err)
	}
	if v, _ := AsInt(out.(Atom)); v != 10 {
		t.Errorf("path 2 = %v, want 10", out)
	}

	out, _, err = runPuzzle(t, Atom{3}, env, 10000)
	if err != nil {
		t.Fatalf("path 3 (rest): %v", err)
	}
	if v, _ := AsInt(out.(Atom)); v != 20 {
		t.Errorf("path 3 = %v, want 20", out)
	}

	out, _, err = runPuzzle(t, Atom{1}, env, 10000)
	if err != nil {
		t.Fatalf("path 1 (whole env): %v", err)
	}
	if p, ok := out.(*Pair); !ok || string(Serialize(p)) != string(Serialize(env)) {
		t.Errorf("path 1 should return env itself")
	}
}

func TestRunPuzzlePathIntoAtom(t *testing.T) {
	_, _, err := runPuzzle(t, Atom{2}, Int(5), 10000)
	if !errors.Is(err, ErrPathIntoAtom) {
		t.Errorf("got %v, want ErrPathIntoAtom", err)
	}
}

func TestRunPuzzleArithmetic(t *testing.T) {
	puzzle := op(OpAdd, quote(Int(2)), quote(Int(3)), quote(Int(4)))
	out, _, err := runPuzzle(t, puzzle, Nil, 10000)
	if err != nil {
		t.Fatalf("add: %v", err)
	}
	if v, _ := AsInt(out.(Atom)); v != 9 {
		t.Errorf("add = %v, want 9", v)
	}

	puzzle = op(OpSub, quote(Int(10)), quote(Int(3)), quote(Int(2)))
	out, _, err = runPuzzle(t, puzzle, Nil, 10000)
	if err != nil {
		t.Fatalf("sub: %v", err)
	}
	if v, _ := AsInt(out.(Atom)); v != 5 {
		t.Errorf("sub = %v, want 5", v)
	}
}

func TestRunPuzzleIf(t *testing.T) {
	truthy := op(OpIf, quote(Int(1)), quote(Int(111)), quote(Int(222)))
	out, _, err := runPuzzle(t, truthy, Nil, 10000)
	if err != nil {
		t.Fatalf("if true: %v", err)
	}
	if v, _ := AsInt(out.(Atom)); v != 111 {
		t.Errorf("if true branch = %v, want 111", v)
	}

	falsy := op(OpIf, quote(Nil), quote(Int(111)), quote(Int(222)))
	out, _, err = runPuzzle(t, falsy, Nil, 10000)
	if err != nil {
		t.Fatalf("if false: %v", err)
	}
	if v, _ := AsInt(out.(Atom)); v != 222 {
		t.Errorf("if false branch = %v, want 222", v)
	}
}

func TestRunPuzzleConsFirstRest(t *testing.T) {
	puzzle := op(OpFirst, op(OpCons, quote(Int(7)), quote(Int(8))))
	out, _, err := runPuzzle(t, puzzle, Nil, 10000)
	if err != nil {
		t.Fatalf("first(cons): %v", err)
	}
	if v, _ := AsInt(out.(Atom)); v != 7 {
		t.Errorf("first(cons(7,8)) = %v, want 7", v)
	}
}

func TestRunPuzzleListp(t *testing.T) {
	out, _, err := runPuzzle(t, op(OpListp, quote(Cons(Int(1), Nil))), Nil, 10000)
	if err != nil || !Truthy(out) {
		t.Errorf("listp(pair) = %v, %v, want truthy", out, err)
	}
	out, _, err = runPuzzle(t, op(OpListp, quote(Int(1))), Nil, 10000)
	if err != nil || Truthy(out) {
		t.Errorf("listp(atom) = %v, %v, want falsy", out, err)
	}
}

func TestRunPuzzleEqAndNot(t *testing.T) {
	out, _, err := runPuzzle(t, op(OpEq, quote(Atom("abc")), quote(Atom("abc"))), Nil, 10000)
	if err != nil || !Truthy(out) {
		t.Errorf("eq(abc,abc) = %v, %v, want truthy", out, err)
	}
	out, _, err = runPuzzle(t, op(OpNot, quote(Nil)), Nil, 10000)
	if err != nil || !Truthy(out) {
		t.Errorf("not(nil) = %v, %v, want truthy", out, err)
	}
}

func TestRunPuzzleSha256(t *testing.T) {
	puzzle := op(OpSha256, quote(Atom("abc")))
	out, _, err := runPuzzle(t, puzzle, Nil, 10000)
	if err != nil {
		t.Fatalf("sha256: %v", err)
	}
	want := sha256.Sum256([]byte("abc"))
	got := out.(Atom)
	if string(got) != string(want[:]) {
		t.Errorf("sha256(abc) mismatch")
	}
}

func TestRunPuzzleConcatAndStrlen(t *testing.T) {
	puzzle := op(OpStrlen, op(OpConcat, quote(Atom("foo")), quote(Atom("bar"))))
	out, _, err := runPuzzle(t, puzzle, Nil, 10000)
	if err != nil {
		t.Fatalf("strlen(concat): %v", err)
	}
	if v, _ := AsInt(out.(Atom)); v != 6 {
		t.Errorf("strlen(concat(foo,bar)) = %v, want 6", v)
	}
}

func TestRunPuzzleGt(t *testing.T) {
	out, _, err := runPuzzle(t, op(OpGt, quote(Int(5)), quote(Int(3))), Nil, 10000)
	if err != nil || !Truthy(out) {
		t.Errorf("gt(5,3) = %v, %v, want truthy", out, err)
	}
}

func TestRunPuzzleRaise(t *testing.T) {
	_, _, err := runPuzzle(t, op(OpRaise), Nil, 10000)
	if !errors.Is(err, ErrRaised) {
		t.Errorf("got %v, want ErrRaised", err)
	}
}

func TestRunPuzzleCostExceeded(t *testing.T) {
	puzzle := op(OpAdd, quote(Int(2)), quote(Int(3)))
	_, _, err := runPuzzle(t, puzzle, Nil, 2)
	if !errors.Is(err, ErrCostExceeded) {
		t.Errorf("got %v, want ErrCostExceeded", err)
	}
}

func TestRunPuzzleApply(t *testing.T) {
	// (a (q . 2) (c (q . 42) (q . ()))) applies the program "return path 2"
	// against a fresh environment (42 . ()), i.e. returns 42.
	newEnv := op(OpCons, quote(Int(42)), quote(Nil))
	puzzle := op(OpApply, quote(Atom{2}), newEnv)
	out, _, err := runPuzzle(t, puzzle, Nil, 10000)
	if err != nil {
		t.Fatalf("apply: %v", err)
	}
	if v, _ := AsInt(out.(Atom)); v != 42 {
		t.Errorf("apply result = %v, want 42", v)
	}
}

func TestRunPuzzleInvalidProgram(t *testing.T) {
	_, _, err := RunPuzzle([]byte{0xff}, Serialize(Nil), 10000)
	if !errors.Is(err, ErrInvalidProgram) {
		t.Errorf("got %v, want ErrInvalidProgram", err)
	}
}

func TestRunGeneratorParsesTriples(t *testing.T) {
	triple := SliceToList([]Node{Atom("coin-id"), Atom("puzzle-hash"), SliceToList([]Node{Int(52)})})
	generator := quote(SliceToList([]Node{triple}))

	triples, _, err := RunGenerator(Serialize(generator), 10000, true)
	if err != nil {
		t.Fatalf("RunGenerator: %v", err)
	}
	if len(triples) != 1 {
		t.Fatalf("got %d triples, want 1", len(triples))
	}
	if string(triples[0].CoinID) != "coin-id" {
		t.Errorf("CoinID = %q, want coin-id", triples[0].CoinID)
	}
}

func TestRunGeneratorStrictRejectsMalformed(t *testing.T) {
	bad := SliceToList([]Node{Int(1)}) // not a 3-tuple
	generator := quote(SliceToList([]Node{bad}))

	if _, _, err := RunGenerator(Serialize(generator), 10000, true); !errors.Is(err, ErrInvalidProgram) {
		t.Errorf("strict mode: got %v, want ErrInvalidProgram", err)
	}
	triples, _, err := RunGenerator(Serialize(generator), 10000, false)
	if err != nil {
		t.Fatalf("non-strict mode should not error: %v", err)
	}
	if len(triples) != 0 {
		t.Errorf("non-strict mode should skip malformed entries, got %d", len(triples))
	}
}

func TestExtractOne(t *testing.T) {
	t1 := SliceToList([]Node{Atom("aaa"), Atom("ph1"), Nil})
	t2 := SliceToList([]Node{Atom("bbb"), Atom("ph2"), Nil})
	generator := quote(SliceToList([]Node{t1, t2}))

	found, ok, _, err := ExtractOne(Serialize(generator), 10000, []byte("bbb"))
	if err != nil {
		t.Fatalf("ExtractOne: %v", err)
	}
	if !ok {
		t.Fatal("expected to find coin bbb")
	}
	if string(found.PuzzleHash) != "ph2" {
		t.Errorf("PuzzleHash = %q, want ph2", found.PuzzleHash)
	}

	_, ok, _, err = ExtractOne(Serialize(generator), 10000, []byte("ccc"))
	if err != nil {
		t.Fatalf("ExtractOne missing coin: %v", err)
	}
	if ok {
		t.Error("should not have found coin ccc")
	}
}
