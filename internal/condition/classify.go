// Package condition classifies the raw condition list a puzzle's program
// emits into typed, opcode-bucketed types.Condition values.
package condition

import (
	"errors"
	"fmt"

	"github.com/spendbench/spendbench/internal/enginerr"
	"github.com/spendbench/spendbench/pkg/clvm"
	"github.com/spendbench/spendbench/pkg/types"
)

// ErrInvalidCondition is returned for a condition list entry that isn't a
// list, whose head isn't a byte atom, or whose argument count doesn't
// match its opcode's arity.
var ErrInvalidCondition = errors.New("condition: invalid condition")

// Classify walks a coin's raw condition list (as produced by clvm.RunPuzzle
// or found inside a clvm.Triple) and groups it by opcode, preserving
// within-opcode order. In strict mode an unrecognized opcode or a
// malformed entry is an error; outside strict mode unrecognized opcodes
// land in the OpUnknown bucket and malformed entries are still rejected
// (a structurally broken condition is never silently dropped).
func Classify(raw clvm.Node, strict bool) (types.ConditionsByOpcode, error) {
	items, err := clvm.ListToSlice(raw)
	if err != nil {
		return nil, fmt.Errorf("%w: condition list: %v", ErrInvalidCondition, err)
	}

	result := make(types.ConditionsByOpcode)
	for _, item := range items {
		cond, err := decodeOne(item, strict)
		if err != nil {
			return nil, err
		}
		result.Add(cond)
	}
	return result, nil
}

func decodeOne(item clvm.Node, strict bool) (types.Condition, error) {
	parts, err := clvm.ListToSlice(item)
	if err != nil {
		return types.Condition{}, fmt.Errorf("%w: condition entry is not a list", ErrInvalidCondition)
	}
	if len(parts) == 0 {
		return types.Condition{}, fmt.Errorf("%w: empty condition entry", ErrInvalidCondition)
	}
	head, ok := parts[0].(clvm.Atom)
	if !ok || len(head) != 1 {
		return types.Condition{}, fmt.Errorf("%w: condition opcode must be a single byte", ErrInvalidCondition)
	}
	raw := head[0]
	op := types.Opcode(raw)

	wantArity, known := types.Arity(op)
	if !known {
		if strict {
			return types.Condition{}, fmt.Errorf("%w: opcode %d is not recognized", enginerr.ErrUnknownOperator, raw)
		}
		op = types.OpUnknown
	} else if len(parts)-1 != wantArity {
		return types.Condition{}, fmt.Errorf("%w: opcode %s expects %d argument(s), got %d",
			ErrInvalidCondition, types.Opcode(raw), wantArity, len(parts)-1)
	}

	args := make([][]byte, 0, len(parts)-1)
	for _, p := range parts[1:] {
		a, ok := p.(clvm.Atom)
		if !ok {
			return types.Condition{}, fmt.Errorf("%w: condition argument must be an atom", ErrInvalidCondition)
		}
		args = append(args, []byte(a))
	}

	return types.Condition{Opcode: op, Args: args, Raw: raw}, nil
}
