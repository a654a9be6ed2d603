// Package enginerr is the single error taxonomy shared by every component
// of the coin-spend execution and mempool admission engine. Each error
// kind is a plain sentinel; callers wrap it with fmt.Errorf("%w: ...") to
// attach the specific coin id, opcode, or height involved, and unwrap it
// with errors.Is against the sentinels below.
package enginerr

import "errors"

// Permanent-structural: the bundle or program itself is malformed.
var (
	ErrInvalidProgram        = errors.New("invalid program")
	ErrInvalidSolution       = errors.New("invalid solution")
	ErrInvalidCondition      = errors.New("invalid condition")
	ErrWrongPuzzleHash       = errors.New("wrong puzzle hash")
	ErrDuplicateOutput       = errors.New("duplicate output")
	ErrCoinAmountExceedsMax  = errors.New("coin amount exceeds maximum")
	ErrBadAggregateSignature = errors.New("bad aggregate signature")
	ErrUnknownOperator       = errors.New("unknown operator")
	ErrBlockCostExceedsMax   = errors.New("block cost exceeds maximum")
)

// Permanent-semantic: the bundle is well-formed but violates a coin rule.
var (
	ErrDoubleSpend              = errors.New("double spend")
	ErrMintingCoin              = errors.New("minting coin")
	ErrAssertMyCoinIDFailed     = errors.New("assert my coin id failed")
	ErrAssertCoinConsumedFailed = errors.New("assert coin consumed failed")
	ErrCoinbaseNotYetSpendable  = errors.New("coinbase not yet spendable")
)

// Transient: the bundle may become valid later; a candidate for the
// potential-tx cache rather than permanent rejection.
var (
	ErrUnknownUnspent                = errors.New("unknown unspent coin")
	ErrAssertHeightNowExceedsFailed  = errors.New("assert height now exceeds failed")
	ErrAssertHeightAgeExceedsFailed  = errors.New("assert height age exceeds failed")
	ErrAssertSecondsNowExceedsFailed = errors.New("assert seconds now exceeds failed")
	ErrAssertSecondsAgeExceedsFailed = errors.New("assert seconds age exceeds failed")
	ErrAssertAnnouncementFailed      = errors.New("assert announcement failed")
	ErrReserveFeeFailed              = errors.New("reserve fee failed")
	ErrMempoolConflict               = errors.New("mempool conflict")
	ErrInvalidFeeLowFee              = errors.New("invalid fee: too low")
)

// Internal: something the engine itself could not complete.
var (
	ErrInternalEvalError = errors.New("internal evaluation error")
	ErrCostExceeded      = errors.New("cost exceeded")
	ErrUnknown           = errors.New("unknown")
)

// Transient reports whether kind is a transient error eligible for the
// potential-tx cache rather than permanent rejection.
func Transient(err error) bool {
	switch {
	case errors.Is(err, ErrUnknownUnspent),
		errors.Is(err, ErrAssertHeightNowExceedsFailed),
		errors.Is(err, ErrAssertHeightAgeExceedsFailed),
		errors.Is(err, ErrAssertSecondsNowExceedsFailed),
		errors.Is(err, ErrAssertSecondsAgeExceedsFailed),
		errors.Is(err, ErrAssertAnnouncementFailed),
		errors.Is(err, ErrReserveFeeFailed),
		errors.Is(err, ErrMempoolConflict),
		errors.Is(err, ErrInvalidFeeLowFee):
		return true
	default:
		return false
	}
}
