package resource

import "errors"

// Resource cache errors.
var (
	// ErrAllocation wraps a backend failure to create, resize, copy or
	// rebind a resource. The message names the node and the side.
	ErrAllocation = errors.New("resource: allocation failed")

	// ErrUnknownNode is returned when the cache holds no resources for a
	// node, usually because Ensure was not called for its graph.
	ErrUnknownNode = errors.New("resource: no resources for node")

	// ErrDisposed is returned when a disposed cache is used.
	ErrDisposed = errors.New("resource: cache disposed")
)
