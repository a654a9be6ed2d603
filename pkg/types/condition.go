package types

// Opcode identifies the kind of a parsed condition. Byte values are a
// protocol constant: implementations must match these assignments exactly
// for spend programs to stay portable.
type Opcode uint8

const (
	OpAggSig                  Opcode = 50
	OpAggSigMe                Opcode = 51
	OpCreateCoin              Opcode = 52
	OpAssertCoinConsumed      Opcode = 53
	OpAssertMyCoinID          Opcode = 54
	OpAssertHeightNowExceeds  Opcode = 55
	OpAssertHeightAgeExceeds  Opcode = 56
	OpAssertSecondsNowExceeds Opcode = 57
	OpAssertSecondsAgeExceeds Opcode = 58
	OpReserveFee              Opcode = 59
	OpAssertMyParentID        Opcode = 60
	OpAssertMyPuzzlehash      Opcode = 61
	OpAssertMyAmount          Opcode = 62
	OpCreateAnnouncement      Opcode = 63
	OpAssertAnnouncement      Opcode = 64

	// OpUnknown is never seen on the wire; it tags a Condition whose raw
	// opcode byte wasn't in the recognized set (non-strict mode only).
	OpUnknown Opcode = 0
)

// String returns a human-readable opcode name.
func (o Opcode) String() string {
	switch o {
	case OpAggSig:
		return "AGG_SIG"
	case OpAggSigMe:
		return "AGG_SIG_ME"
	case OpCreateCoin:
		return "CREATE_COIN"
	case OpAssertCoinConsumed:
		return "ASSERT_COIN_CONSUMED"
	case OpAssertMyCoinID:
		return "ASSERT_MY_COIN_ID"
	case OpAssertHeightNowExceeds:
		return "ASSERT_HEIGHT_NOW_EXCEEDS"
	case OpAssertHeightAgeExceeds:
		return "ASSERT_HEIGHT_AGE_EXCEEDS"
	case OpAssertSecondsNowExceeds:
		return "ASSERT_SECONDS_NOW_EXCEEDS"
	case OpAssertSecondsAgeExceeds:
		return "ASSERT_SECONDS_AGE_EXCEEDS"
	case OpReserveFee:
		return "RESERVE_FEE"
	case OpAssertMyParentID:
		return "ASSERT_MY_PARENT_ID"
	case OpAssertMyPuzzlehash:
		return "ASSERT_MY_PUZZLEHASH"
	case OpAssertMyAmount:
		return "ASSERT_MY_AMOUNT"
	case OpCreateAnnouncement:
		return "CREATE_ANNOUNCEMENT"
	case OpAssertAnnouncement:
		return "ASSERT_ANNOUNCEMENT"
	default:
		return "UNKNOWN"
	}
}

// arity is the number of byte-string arguments each known opcode takes.
var arity = map[Opcode]int{
	OpAggSig:                  2,
	OpAggSigMe:                2,
	OpCreateCoin:              2,
	OpAssertCoinConsumed:      1,
	OpAssertMyCoinID:          1,
	OpAssertHeightNowExceeds:  1,
	OpAssertHeightAgeExceeds:  1,
	OpAssertSecondsNowExceeds: 1,
	OpAssertSecondsAgeExceeds: 1,
	OpReserveFee:              1,
	OpAssertMyParentID:        1,
	OpAssertMyPuzzlehash:      1,
	OpAssertMyAmount:          1,
	OpCreateAnnouncement:      1,
	OpAssertAnnouncement:      1,
}

// Arity returns the expected argument count for a known opcode and whether
// the opcode is recognized at all.
func Arity(op Opcode) (int, bool) {
	n, ok := arity[op]
	return n, ok
}

// Condition is a single typed assertion or effect emitted by running a
// coin's puzzle against its solution. Args holds 0-2 raw byte-string
// arguments in wire order; integer-valued opcodes decode Args lazily via
// the accessor helpers in internal/condition.
type Condition struct {
	Opcode Opcode
	Args   [][]byte
	// Raw is the original opcode byte, preserved even for OpUnknown so
	// logs and round-trips can show what was actually on the wire.
	Raw byte
}

// ConditionsByOpcode groups a coin's conditions by opcode, preserving the
// order conditions of the same opcode occurred in within the program
// output. Downstream processing (announcements, reproducible tests) relies
// on this order being stable.
type ConditionsByOpcode map[Opcode][]Condition

// Add appends a condition to its opcode's bucket, preserving insertion order.
func (c ConditionsByOpcode) Add(cond Condition) {
	c[cond.Opcode] = append(c[cond.Opcode], cond)
}

// NPC is the per-coin result of running and classifying one coin's
// puzzle/solution pair within a bundle (Name-Puzzle-Conditions).
type NPC struct {
	CoinID             CoinID
	PuzzleHash         Hash
	ConditionsByOpcode ConditionsByOpcode
}
