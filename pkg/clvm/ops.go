package clvm

// Op identifies a core evaluator operator. These byte values are this
// VM's own instruction set, a namespace entirely separate from the
// condition opcodes in pkg/types (50-64): a puzzle's output is a list of
// condition opcodes, but the puzzle itself is written in these ops.
type Op byte

const (
	OpQuote  Op = 1
	OpApply  Op = 2
	OpIf     Op = 3
	OpCons   Op = 4
	OpFirst  Op = 5
	OpRest   Op = 6
	OpListp  Op = 7
	OpRaise  Op = 8
	OpEq     Op = 9
	OpAdd    Op = 10
	OpSub    Op = 11
	OpSha256 Op = 12
	OpStrlen Op = 13
	OpConcat Op = 14
	OpGt     Op = 15
	OpNot    Op = 16
)

// Cost constants. Every evaluator step charges one of these; run_puzzle
// aborts the instant the running total would exceed max_cost. Values are
// small, fixed per-op charges plus a per-byte charge for operators whose
// work scales with their argument size, mirroring CLVM_COST_RATIO scaling
// without tying this VM's own instruction costs to the protocol's
// condition-opcode cost table (that table lives in internal/cost).
const (
	costBase      uint64 = 1   // every eval() call, atom or pair
	costPathBit   uint64 = 1   // per bit walked during an env path lookup
	costQuote     uint64 = 1
	costApply     uint64 = 90
	costIf        uint64 = 30
	costCons      uint64 = 30
	costFirst     uint64 = 20
	costRest      uint64 = 20
	costListp     uint64 = 20
	costRaise     uint64 = 1
	costEq        uint64 = 10
	costArith     uint64 = 10
	costSha256    uint64 = 50
	costStrlen    uint64 = 10
	costConcat    uint64 = 20
	costGt        uint64 = 10
	costNot       uint64 = 10
	costPerByte   uint64 = 1 // additional charge per byte of atom operands
)
