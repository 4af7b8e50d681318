// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

// Package graph holds the node graph and computes per-frame execution order.
//
// Edges point from consumer to producer: an [Edge] with Source "blur" and
// Destination "camera" says that an input of "blur" is supplied by the
// output of "camera". [Resolve] walks in that direction from the output
// node, so producers are emitted before their consumers.
//
// Cycles are allowed. An edge that would re-enter a node already on the
// resolution path is marked [StepEdge.BeginsCycle]; the executor reads the
// previous frame's output across such an edge.
package graph
