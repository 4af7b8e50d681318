// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package graph

import "errors"

// Graph construction and lookup errors.
var (
	// ErrNodeNotFound is returned when a node key is not in the graph.
	ErrNodeNotFound = errors.New("graph: node not found")

	// ErrEdgeNotFound is returned when an edge key is not in the graph.
	ErrEdgeNotFound = errors.New("graph: edge not found")

	// ErrDanglingEdge is returned when an edge references a missing node.
	ErrDanglingEdge = errors.New("graph: edge references missing node")

	// ErrDuplicateKey is returned when two nodes or two edges share a key.
	ErrDuplicateKey = errors.New("graph: duplicate key")

	// ErrEmptyKey is returned for a node or edge without a key.
	ErrEmptyKey = errors.New("graph: empty key")

	// ErrNilProgram is returned for a node without a program.
	ErrNilProgram = errors.New("graph: node has no program")

	// ErrMissingInput is returned for an edge that does not name the
	// input it supplies.
	ErrMissingInput = errors.New("graph: edge has no input")

	// ErrDuplicateInput is returned when two edges supply the same
	// identifier of the same node.
	ErrDuplicateInput = errors.New("graph: input supplied twice")
)
