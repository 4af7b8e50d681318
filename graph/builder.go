// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package graph

import (
	"errors"
	"fmt"
	"maps"
)

// Builder assembles a Graph. The zero Builder is ready to use.
//
//	g, err := graph.NewBuilder().
//		AddNode(graph.Node{Key: "osc", Program: osc}).
//		AddNode(graph.Node{Key: "invert", Program: inv}).
//		AddEdge(graph.Edge{Key: "osc<-invert", Source: "osc", Destination: "invert", Input: "rotationTheta"}).
//		Build()
type Builder struct {
	nodes []Node
	edges []Edge
}

// NewBuilder returns an empty Builder.
func NewBuilder() *Builder {
	return &Builder{}
}

// AddNode adds a node. The node's maps are copied.
func (b *Builder) AddNode(n Node) *Builder {
	n.Constants = n.Constants.Clone()
	if n.Inlets != nil {
		n.Inlets = maps.Clone(n.Inlets)
	}
	b.nodes = append(b.nodes, n)
	return b
}

// AddEdge adds an edge.
func (b *Builder) AddEdge(e Edge) *Builder {
	b.edges = append(b.edges, e)
	return b
}

// Build validates the accumulated nodes and edges and returns an immutable
// Graph. Every violation is reported, joined into one error.
func (b *Builder) Build() (*Graph, error) {
	g := &Graph{
		nodes:     make([]Node, 0, len(b.nodes)),
		nodeIndex: make(map[string]int, len(b.nodes)),
		edges:     make([]Edge, 0, len(b.edges)),
		edgeIndex: make(map[string]int, len(b.edges)),
	}
	var errs []error

	for _, n := range b.nodes {
		if n.Key == "" {
			errs = append(errs, fmt.Errorf("node: %w", ErrEmptyKey))
			continue
		}
		if _, dup := g.nodeIndex[n.Key]; dup {
			errs = append(errs, fmt.Errorf("node %q: %w", n.Key, ErrDuplicateKey))
			continue
		}
		if n.Program == nil {
			errs = append(errs, fmt.Errorf("node %q: %w", n.Key, ErrNilProgram))
		}
		if err := n.Constants.Validate(); err != nil {
			errs = append(errs, fmt.Errorf("node %q: %w", n.Key, err))
		}
		g.nodeIndex[n.Key] = len(g.nodes)
		g.nodes = append(g.nodes, n)
	}

	g.bySource = make([][]int, len(g.nodes))
	g.byDestination = make([][]int, len(g.nodes))
	inputs := make(map[[2]string]string)

	for _, e := range b.edges {
		if e.Key == "" {
			errs = append(errs, fmt.Errorf("edge %s -> %s: %w", e.Source, e.Destination, ErrEmptyKey))
			continue
		}
		if _, dup := g.edgeIndex[e.Key]; dup {
			errs = append(errs, fmt.Errorf("edge %q: %w", e.Key, ErrDuplicateKey))
			continue
		}
		src, okSrc := g.nodeIndex[e.Source]
		dst, okDst := g.nodeIndex[e.Destination]
		if !okSrc {
			errs = append(errs, fmt.Errorf("edge %q: %w: source %q", e.Key, ErrDanglingEdge, e.Source))
		}
		if !okDst {
			errs = append(errs, fmt.Errorf("edge %q: %w: destination %q", e.Key, ErrDanglingEdge, e.Destination))
		}
		if e.Input == "" {
			errs = append(errs, fmt.Errorf("edge %q: %w", e.Key, ErrMissingInput))
		}
		if !okSrc || !okDst || e.Input == "" {
			continue
		}

		id := e.Input
		if mapped, ok := g.nodes[src].Inlets[e.Input]; ok {
			id = mapped
		}
		slot := [2]string{e.Source, id}
		if prev, taken := inputs[slot]; taken {
			errs = append(errs, fmt.Errorf("edge %q: %w: %q of node %q already fed by edge %q",
				e.Key, ErrDuplicateInput, id, e.Source, prev))
			continue
		}
		inputs[slot] = e.Key

		ei := len(g.edges)
		g.edgeIndex[e.Key] = ei
		g.edges = append(g.edges, e)
		g.bySource[src] = append(g.bySource[src], ei)
		g.byDestination[dst] = append(g.byDestination[dst], ei)
	}

	if err := errors.Join(errs...); err != nil {
		return nil, err
	}
	g.id = graphIDs.Add(1)
	return g, nil
}
