package core

import "errors"

// Status errors shared by every fallible operation in the tracing core.
// ErrNoMoreData is a normal iteration terminator, not a failure.
var (
	ErrAllocationFailed           = errors.New("allocation failed")
	ErrInvalidArgument            = errors.New("invalid argument")
	ErrInvalidArgumentCombination = errors.New("invalid argument combination")
	ErrArithmetic                 = errors.New("arithmetic error")
	ErrIntegerOverflow            = errors.New("integer overflow")
	ErrNoMoreData                 = errors.New("no more data")
)
