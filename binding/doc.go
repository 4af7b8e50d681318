// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

// Package binding defines the values that flow into a node's program.
//
// A [Value] is a tagged variant over a closed set of kinds: float, vec2,
// vec3, int, mat3 and image. Backends switch on [Value.Kind] and reject
// anything else, so an unsupported payload is caught when the value is
// built or validated rather than silently coerced at draw time.
//
// A node's final bindings are produced by [Merge] over three layers:
//
//	constant := node.Constants               // baked into the graph
//	derived  := images from upstream nodes   // plus raster dimensions
//	runtime  := caller overrides for the frame
//	final    := binding.Merge(constant, derived, runtime)
//
// Later layers win on identifier collision.
package binding
