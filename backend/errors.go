package backend

import "errors"

// Common backend errors.
var (
	// ErrBackendNotAvailable is returned when a requested backend is not
	// registered or cannot be opened.
	ErrBackendNotAvailable = errors.New("backend: not available")

	// ErrLocationNotFound is returned when a program does not declare a
	// binding identifier the graph references.
	ErrLocationNotFound = errors.New("backend: binding location not found")

	// ErrImageUnitsExhausted is returned when a draw binds more images than
	// Limits.MaxImageUnits allows.
	ErrImageUnitsExhausted = errors.New("backend: image units exhausted")

	// ErrForeignResource is returned when a handle created by another
	// backend is passed in.
	ErrForeignResource = errors.New("backend: resource belongs to another backend")

	// ErrInvalidSize is returned for zero, negative or oversized dimensions.
	ErrInvalidSize = errors.New("backend: invalid size")

	// ErrSizeMismatch is returned when copying between textures of
	// different sizes.
	ErrSizeMismatch = errors.New("backend: size mismatch")

	// ErrNoProgram is returned when drawing or binding without an active program.
	ErrNoProgram = errors.New("backend: no active program")

	// ErrClosed is returned when a closed backend is used.
	ErrClosed = errors.New("backend: closed")
)
