package convcode

import "errors"

// Configuration errors, returned from New or a Reinit call.
var (
	ErrBadConstraintLength = errors.New("convcode: k must be between 1 and 16")
	ErrBadPolynomialCount  = errors.New("convcode: number of polynomials must be between 1 and 16")
	ErrBadStartState       = errors.New("convcode: start state out of range")
)

// ErrCapacityExceeded is returned from DecodeStream/DecodeBlock when the
// next symbol would advance the trellis past its preallocated size.
var ErrCapacityExceeded = errors.New("convcode: decode exceeds trellis capacity")
