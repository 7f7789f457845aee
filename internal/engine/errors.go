package engine

import "errors"

var (
	// ErrInvalidOrder rejects malformed input before any book mutation.
	ErrInvalidOrder = errors.New("invalid order")
	// ErrOrderNotFound reports a cancel for an id not resident in the
	// book: unknown, already filled, or already canceled.
	ErrOrderNotFound = errors.New("order not found")
	// ErrUnsatisfiableFlag rejects a FILL_OR_KILL or ALL_OR_NONE order
	// whose full volume cannot be matched against current liquidity.
	ErrUnsatisfiableFlag = errors.New("flag cannot be satisfied")
	// ErrEmptyBookQuery reports a query against a side with no levels.
	ErrEmptyBookQuery = errors.New("book side is empty")
)
