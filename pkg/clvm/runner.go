package clvm

import (
	"bytes"
	"crypto/sha256"
	"fmt"
	"math/bits"
)

// Triple is one entry of a generator's output: the coin it concerns, that
// coin's puzzle hash, and the raw (unclassified) condition list its
// puzzle produced. internal/condition turns Conditions into typed
// Condition values.
type Triple struct {
	CoinID     Atom
	PuzzleHash Atom
	Conditions Node
}

func charge(cost *uint64, maxCost uint64, amount uint64) error {
	*cost += amount
	if *cost > maxCost {
		return ErrCostExceeded
	}
	return nil
}

func chargeBytes(cost *uint64, maxCost uint64, n int) error {
	return charge(cost, maxCost, uint64(n)*costPerByte)
}

// RunPuzzle evaluates a puzzle program against a solution and returns the
// raw condition list it produces, plus the cost the evaluation consumed.
// Evaluation stops the instant cost would exceed maxCost.
func RunPuzzle(puzzle, solution []byte, maxCost uint64) (Node, uint64, error) {
	prog, err := DeserializeFull(puzzle)
	if err != nil {
		return nil, 0, err
	}
	sol, err := DeserializeFull(solution)
	if err != nil {
		return nil, 0, fmt.Errorf("%w: %v", ErrInvalidSolution, err)
	}
	var cost uint64
	out, err := eval(prog, sol, &cost, maxCost)
	return out, cost, err
}

// RunGenerator evaluates a block generator program with an empty
// environment and parses its output as a list of (coin_id, puzzle_hash,
// conditions) triples. In strict mode a malformed entry aborts the whole
// run with ErrInvalidProgram; otherwise malformed entries are skipped.
func RunGenerator(generator []byte, maxCost uint64, strict bool) ([]Triple, uint64, error) {
	prog, err := DeserializeFull(generator)
	if err != nil {
		return nil, 0, err
	}
	var cost uint64
	out, err := eval(prog, Nil, &cost, maxCost)
	if err != nil {
		return nil, cost, err
	}
	triples, err := parseTriples(out, strict)
	return triples, cost, err
}

// ExtractOne runs a generator and returns only the triple for a single
// coin id, without requiring the caller to hold the whole parsed list.
func ExtractOne(generator []byte, maxCost uint64, targetCoinID []byte) (Triple, bool, uint64, error) {
	triples, cost, err := RunGenerator(generator, maxCost, false)
	if err != nil {
		return Triple{}, false, cost, err
	}
	for _, t := range triples {
		if bytes.Equal(t.CoinID, targetCoinID) {
			return t, true, cost, nil
		}
	}
	return Triple{}, false, cost, nil
}

func parseTriples(n Node, strict bool) ([]Triple, error) {
	items, err := ListToSlice(n)
	if err != nil {
		if strict {
			return nil, err
		}
		return nil, nil
	}
	var out []Triple
	for _, item := range items {
		parts, err := ListToSlice(item)
		if err != nil || len(parts) != 3 {
			if strict {
				return nil, fmt.Errorf("%w: generator entry is not a 3-element list", ErrInvalidProgram)
			}
			continue
		}
		coinID, ok1 := parts[0].(Atom)
		puzzleHash, ok2 := parts[1].(Atom)
		if !ok1 || !ok2 {
			if strict {
				return nil, fmt.Errorf("%w: generator entry id/puzzle hash is not an atom", ErrInvalidProgram)
			}
			continue
		}
		out = append(out, Triple{CoinID: coinID, PuzzleHash: puzzleHash, Conditions: parts[2]})
	}
	return out, nil
}

// eval is the single recursive tree evaluator. Every call charges
// costBase before doing anything else, so a pathological program that
// recurses without making progress still runs out of cost.
func eval(expr Node, env Node, cost *uint64, maxCost uint64) (Node, error) {
	if err := charge(cost, maxCost, costBase); err != nil {
		return nil, err
	}
	switch e := expr.(type) {
	case Atom:
		path, err := AsUint(e)
		if err != nil {
			return nil, err
		}
		if err := charge(cost, maxCost, uint64(bits.Len64(path))*costPathBit); err != nil {
			return nil, err
		}
		return pathLookup(env, path)
	case *Pair:
		return evalForm(e, env, cost, maxCost)
	default:
		return nil, fmt.Errorf("%w: unrecognized node type %T", ErrInternal, expr)
	}
}

func evalForm(form *Pair, env Node, cost *uint64, maxCost uint64) (Node, error) {
	opAtom, ok := form.First.(Atom)
	if !ok || len(opAtom) != 1 {
		return nil, fmt.Errorf("%w: operator position must be a single byte atom", ErrUnknownOperator)
	}
	op := Op(opAtom[0])

	if op == OpQuote {
		return form.Rest, nil
	}
	if op == OpIf {
		return evalIf(form.Rest, env, cost, maxCost)
	}

	argExprs, err := ListToSlice(form.Rest)
	if err != nil {
		return nil, err
	}
	args := make([]Node, len(argExprs))
	for i, a := range argExprs {
		v, err := eval(a, env, cost, maxCost)
		if err != nil {
			return nil, err
		}
		args[i] = v
	}
	return applyOp(op, args, cost, maxCost)
}

func evalIf(argsList Node, env Node, cost *uint64, maxCost uint64) (Node, error) {
	args, err := ListToSlice(argsList)
	if err != nil {
		return nil, err
	}
	if len(args) != 3 {
		return nil, fmt.Errorf("%w: if takes exactly 3 arguments", ErrInvalidProgram)
	}
	if err := charge(cost, maxCost, costIf); err != nil {
		return nil, err
	}
	condVal, err := eval(args[0], env, cost, maxCost)
	if err != nil {
		return nil, err
	}
	if Truthy(condVal) {
		return eval(args[1], env, cost, maxCost)
	}
	return eval(args[2], env, cost, maxCost)
}

func applyOp(op Op, args []Node, cost *uint64, maxCost uint64) (Node, error) {
	switch op {
	case OpApply:
		if len(args) != 2 {
			return nil, fmt.Errorf("%w: apply takes exactly 2 arguments", ErrInvalidProgram)
		}
		if err := charge(cost, maxCost, costApply); err != nil {
			return nil, err
		}
		return eval(args[0], args[1], cost, maxCost)

	case OpCons:
		if len(args) != 2 {
			return nil, fmt.Errorf("%w: cons takes exactly 2 arguments", ErrInvalidProgram)
		}
		if err := charge(cost, maxCost, costCons); err != nil {
			return nil, err
		}
		return Cons(args[0], args[1]), nil

	case OpFirst:
		if len(args) != 1 {
			return nil, fmt.Errorf("%w: first takes exactly 1 argument", ErrInvalidProgram)
		}
		if err := charge(cost, maxCost, costFirst); err != nil {
			return nil, err
		}
		p, err := AsPair(args[0])
		if err != nil {
			return nil, err
		}
		return p.First, nil

	case OpRest:
		if len(args) != 1 {
			return nil, fmt.Errorf("%w: rest takes exactly 1 argument", ErrInvalidProgram)
		}
		if err := charge(cost, maxCost, costRest); err != nil {
			return nil, err
		}
		p, err := AsPair(args[0])
		if err != nil {
			return nil, err
		}
		return p.Rest, nil

	case OpListp:
		if len(args) != 1 {
			return nil, fmt.Errorf("%w: listp takes exactly 1 argument", ErrInvalidProgram)
		}
		if err := charge(cost, maxCost, costListp); err != nil {
			return nil, err
		}
		return Bool(IsPair(args[0])), nil

	case OpRaise:
		if err := charge(cost, maxCost, costRaise); err != nil {
			return nil, err
		}
		return nil, ErrRaised

	case OpEq:
		if len(args) != 2 {
			return nil, fmt.Errorf("%w: eq takes exactly 2 arguments", ErrInvalidProgram)
		}
		a, err := AsAtom(args[0])
		if err != nil {
			return nil, err
		}
		b, err := AsAtom(args[1])
		if err != nil {
			return nil, err
		}
		if err := charge(cost, maxCost, costEq); err != nil {
			return nil, err
		}
		if err := chargeBytes(cost, maxCost, len(a)+len(b)); err != nil {
			return nil, err
		}
		return Bool(bytes.Equal(a, b)), nil

	case OpAdd:
		if err := charge(cost, maxCost, costArith); err != nil {
			return nil, err
		}
		var sum int64
		for _, n := range args {
			a, err := AsAtom(n)
			if err != nil {
				return nil, err
			}
			if err := chargeBytes(cost, maxCost, len(a)); err != nil {
				return nil, err
			}
			v, err := AsInt(a)
			if err != nil {
				return nil, err
			}
			sum += v
		}
		return Int(sum), nil

	case OpSub:
		if len(args) == 0 {
			return nil, fmt.Errorf("%w: - takes at least 1 argument", ErrInvalidProgram)
		}
		if err := charge(cost, maxCost, costArith); err != nil {
			return nil, err
		}
		first, err := AsAtom(args[0])
		if err != nil {
			return nil, err
		}
		total, err := AsInt(first)
		if err != nil {
			return nil, err
		}
		for _, n := range args[1:] {
			a, err := AsAtom(n)
			if err != nil {
				return nil, err
			}
			if err := chargeBytes(cost, maxCost, len(a)); err != nil {
				return nil, err
			}
			v, err := AsInt(a)
			if err != nil {
				return nil, err
			}
			total -= v
		}
		return Int(total), nil

	case OpSha256:
		if err := charge(cost, maxCost, costSha256); err != nil {
			return nil, err
		}
		h := sha256.New()
		for _, n := range args {
			a, err := AsAtom(n)
			if err != nil {
				return nil, err
			}
			if err := chargeBytes(cost, maxCost, len(a)); err != nil {
				return nil, err
			}
			h.Write(a)
		}
		return Atom(h.Sum(nil)), nil

	case OpStrlen:
		if len(args) != 1 {
			return nil, fmt.Errorf("%w: strlen takes exactly 1 argument", ErrInvalidProgram)
		}
		a, err := AsAtom(args[0])
		if err != nil {
			return nil, err
		}
		if err := charge(cost, maxCost, costStrlen); err != nil {
			return nil, err
		}
		return Int(int64(len(a))), nil

	case OpConcat:
		if err := charge(cost, maxCost, costConcat); err != nil {
			return nil, err
		}
		var buf []byte
		for _, n := range args {
			a, err := AsAtom(n)
			if err != nil {
				return nil, err
			}
			if err := chargeBytes(cost, maxCost, len(a)); err != nil {
				return nil, err
			}
			buf = append(buf, a...)
		}
		return Atom(buf), nil

	case OpGt:
		if len(args) != 2 {
			return nil, fmt.Errorf("%w: > takes exactly 2 arguments", ErrInvalidProgram)
		}
		a, err := AsAtom(args[0])
		if err != nil {
			return nil, err
		}
		b, err := AsAtom(args[1])
		if err != nil {
			return nil, err
		}
		if err := charge(cost, maxCost, costGt); err != nil {
			return nil, err
		}
		av, err := AsInt(a)
		if err != nil {
			return nil, err
		}
		bv, err := AsInt(b)
		if err != nil {
			return nil, err
		}
		return Bool(av > bv), nil

	case OpNot:
		if len(args) != 1 {
			return nil, fmt.Errorf("%w: not takes exactly 1 argument", ErrInvalidProgram)
		}
		if err := charge(cost, maxCost, costNot); err != nil {
			return nil, err
		}
		return Bool(!Truthy(args[0])), nil

	default:
		return nil, fmt.Errorf("%w: op %d", ErrUnknownOperator, op)
	}
}
