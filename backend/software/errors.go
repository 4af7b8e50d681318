package software

import "errors"

var (
	// ErrNoKernel is returned when a program's fragment entry point has
	// no registered kernel.
	ErrNoKernel = errors.New("software: no kernel for fragment entry point")

	// ErrDestroyed is returned when a destroyed texture or target is used.
	ErrDestroyed = errors.New("software: resource destroyed")
)
