package clvm

import (
	"errors"
	"fmt"
)

// Sentinel errors returned by Deserialize and Eval. Wrap with fmt.Errorf
// and %w to add context; callers match with errors.Is.
var (
	// ErrInvalidProgram covers structurally malformed programs: bad
	// serialization, calling an operator with the wrong shape of
	// arguments, indexing a path into an atom.
	ErrInvalidProgram = errors.New("clvm: invalid program")

	// ErrInvalidSolution is returned when a solution cannot be paired
	// with its puzzle (currently reuses the same structural checks as
	// ErrInvalidProgram, kept distinct so callers can tell which input
	// was at fault).
	ErrInvalidSolution = errors.New("clvm: invalid solution")

	// ErrPathIntoAtom is a specific case of ErrInvalidProgram: an
	// environment path descended into an atom instead of a pair.
	ErrPathIntoAtom = fmt.Errorf("%w: path indexes into an atom", ErrInvalidProgram)

	// ErrUnknownOperator is returned whenever the head of an evaluated
	// form is not a single-byte atom naming a core operator. The
	// evaluator has no lenient mode for this check.
	ErrUnknownOperator = errors.New("clvm: unknown operator")

	// ErrCostExceeded is returned the instant a running cost total would
	// exceed the caller's max cost; evaluation stops without finishing.
	ErrCostExceeded = errors.New("clvm: cost exceeded")

	// ErrRaised is returned when a program explicitly invokes the raise
	// operator, the CLVM convention for "this spend is invalid."
	ErrRaised = errors.New("clvm: program raised")

	// ErrInternal covers evaluator bugs that should never happen given a
	// well-formed program (e.g. an operator's arity table disagreeing
	// with its implementation).
	ErrInternal = errors.New("clvm: internal evaluator error")
)
