// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package binding

import "errors"

// Package errors.
var (
	// ErrUnsupportedKind is returned for a value whose kind is outside the
	// closed binding-kind set.
	ErrUnsupportedKind = errors.New("binding: unsupported kind")

	// ErrKindMismatch is returned when a value does not have the kind a
	// consumer declared for it.
	ErrKindMismatch = errors.New("binding: kind mismatch")

	// ErrNilImage is returned for an image value without a handle.
	ErrNilImage = errors.New("binding: nil image")
)
