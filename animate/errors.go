package animate

import "errors"

var (
	// ErrCompile is returned for an expression that does not compile.
	ErrCompile = errors.New("animate: compile error")

	// ErrEvaluate is returned when an expression fails at run time or
	// yields a value that does not fit the binding kind.
	ErrEvaluate = errors.New("animate: evaluation error")

	// ErrInvalidBinding is returned for a binding without node, identifier
	// or a kind that can be produced from an expression.
	ErrInvalidBinding = errors.New("animate: invalid binding")
)
