// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package graph

import (
	"fmt"
	"strings"
)

// StepEdge is an input edge of a step, annotated with whether following it
// would close a cycle.
type StepEdge struct {
	EdgeKey string

	// BeginsCycle is set when the edge's producer lies on the resolution
	// path that led to this node. The consumer must then read the
	// producer's previous-frame output.
	BeginsCycle bool
}

// Step is one node of an execution order together with its annotated
// input edges (the edges whose Source is the node).
type Step struct {
	NodeKey string
	Edges   []StepEdge
}

// String formats the step as "node[edge, edge*]" where * marks a
// cycle-beginning edge.
func (s Step) String() string {
	var sb strings.Builder
	sb.WriteString(s.NodeKey)
	sb.WriteByte('[')
	for i, e := range s.Edges {
		if i > 0 {
			sb.WriteString(", ")
		}
		sb.WriteString(e.EdgeKey)
		if e.BeginsCycle {
			sb.WriteByte('*')
		}
	}
	sb.WriteByte(']')
	return sb.String()
}

// Resolve computes the execution order that renders target.
//
// The walk is depth-first from target along consumer-to-producer edges and
// emits nodes in post-order, so every producer precedes the consumers that
// read it in the same frame. An edge whose producer is already on the
// active path is marked BeginsCycle and not followed. Every node reachable
// from target appears exactly once and target is last.
//
// The result is deterministic: edges are visited in insertion order.
func Resolve(g *Graph, target string) ([]Step, error) {
	ti, ok := g.nodeIndex[target]
	if !ok {
		return nil, fmt.Errorf("resolve %q: %w", target, ErrNodeNotFound)
	}
	r := resolution{
		g:        g,
		resolved: make([]bool, len(g.nodes)),
		onPath:   make([]bool, len(g.nodes)),
	}
	r.visit(ti)
	return r.steps, nil
}

type resolution struct {
	g        *Graph
	resolved []bool
	// onPath holds the nodes of the active recursion path. A node is added
	// on entry and removed on exit, so sibling subtrees never observe each
	// other's path membership.
	onPath []bool
	steps  []Step
}

func (r *resolution) visit(n int) {
	r.onPath[n] = true

	in := r.g.bySource[n]
	edges := make([]StepEdge, 0, len(in))
	for _, ei := range in {
		e := r.g.edges[ei]
		d := r.g.nodeIndex[e.Destination]
		beginsCycle := r.onPath[d]
		if !r.resolved[d] && !beginsCycle {
			r.visit(d)
		}
		edges = append(edges, StepEdge{EdgeKey: e.Key, BeginsCycle: beginsCycle})
	}

	r.onPath[n] = false
	r.steps = append(r.steps, Step{NodeKey: r.g.nodes[n].Key, Edges: edges})
	r.resolved[n] = true
}
