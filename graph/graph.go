// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package graph

import (
	"fmt"
	"sync/atomic"

	"github.com/gogpu/videograph/backend"
	"github.com/gogpu/videograph/binding"
)

// Node is a unit of per-frame image computation.
//
// The maps of a Node obtained from a Graph are shared with the graph and
// must be treated as read-only.
type Node struct {
	// Key uniquely identifies the node.
	Key string

	// Program is the compiled program the node draws with.
	Program backend.Program

	// Constants are the node's fixed binding values.
	Constants binding.Set

	// Inlets maps an inlet name to the binding identifier it feeds.
	// Edges may name either an inlet or an identifier directly.
	Inlets map[string]string

	// TimeIdentifier, when set, receives the frame counter as an int
	// binding every frame.
	TimeIdentifier string
}

// Edge declares that an input of Source is supplied by the output of
// Destination. Edges point from consumer to producer.
type Edge struct {
	// Key uniquely identifies the edge.
	Key string

	// Source is the consuming node.
	Source string

	// Destination is the producing node.
	Destination string

	// Input is the inlet name or binding identifier on Source that
	// receives the output image of Destination.
	Input string
}

var graphIDs atomic.Uint64

// Graph is an immutable set of nodes and edges built by a Builder.
//
// Nodes and edges live in index arenas with name tables on top. Edges are
// indexed by source and by destination at build time, so every lookup is
// O(1) or O(degree).
type Graph struct {
	id uint64

	nodes     []Node
	nodeIndex map[string]int

	edges     []Edge
	edgeIndex map[string]int

	bySource      [][]int
	byDestination [][]int
}

// ID returns a process-unique identifier for g.
func (g *Graph) ID() uint64 { return g.id }

// Len returns the number of nodes.
func (g *Graph) Len() int { return len(g.nodes) }

// EdgeCount returns the number of edges.
func (g *Graph) EdgeCount() int { return len(g.edges) }

// NodeKeys returns all node keys in insertion order.
func (g *Graph) NodeKeys() []string {
	keys := make([]string, len(g.nodes))
	for i := range g.nodes {
		keys[i] = g.nodes[i].Key
	}
	return keys
}

// EdgeKeys returns all edge keys in insertion order.
func (g *Graph) EdgeKeys() []string {
	keys := make([]string, len(g.edges))
	for i := range g.edges {
		keys[i] = g.edges[i].Key
	}
	return keys
}

// HasNode reports whether key names a node of g.
func (g *Graph) HasNode(key string) bool {
	_, ok := g.nodeIndex[key]
	return ok
}

// Node returns the node with the given key.
func (g *Graph) Node(key string) (Node, error) {
	i, ok := g.nodeIndex[key]
	if !ok {
		return Node{}, fmt.Errorf("%w: %q", ErrNodeNotFound, key)
	}
	return g.nodes[i], nil
}

// MustNode is like Node but panics if the key is missing.
func (g *Graph) MustNode(key string) Node {
	n, err := g.Node(key)
	if err != nil {
		panic(err)
	}
	return n
}

// Edge returns the edge with the given key.
func (g *Graph) Edge(key string) (Edge, error) {
	i, ok := g.edgeIndex[key]
	if !ok {
		return Edge{}, fmt.Errorf("%w: %q", ErrEdgeNotFound, key)
	}
	return g.edges[i], nil
}

// EdgesWithSource returns the edges whose Source is key, in insertion
// order. These are the edges that supply the node's inputs.
func (g *Graph) EdgesWithSource(key string) []Edge {
	i, ok := g.nodeIndex[key]
	if !ok {
		return nil
	}
	return g.collect(g.bySource[i])
}

// EdgesWithDestination returns the edges whose Destination is key, in
// insertion order. These are the edges that consume the node's output.
func (g *Graph) EdgesWithDestination(key string) []Edge {
	i, ok := g.nodeIndex[key]
	if !ok {
		return nil
	}
	return g.collect(g.byDestination[i])
}

// IsProducer reports whether some edge reads the output of key.
func (g *Graph) IsProducer(key string) bool {
	i, ok := g.nodeIndex[key]
	return ok && len(g.byDestination[i]) > 0
}

// InputIdentifier returns the binding identifier on e.Source that e
// supplies, resolving e.Input through the source node's inlets.
func (g *Graph) InputIdentifier(e Edge) string {
	if i, ok := g.nodeIndex[e.Source]; ok {
		if id, ok := g.nodes[i].Inlets[e.Input]; ok {
			return id
		}
	}
	return e.Input
}

func (g *Graph) collect(idx []int) []Edge {
	out := make([]Edge, len(idx))
	for i, ei := range idx {
		out[i] = g.edges[ei]
	}
	return out
}
