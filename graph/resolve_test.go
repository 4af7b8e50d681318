// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package graph

import (
	"errors"
	"fmt"
	"testing"
)

func order(steps []Step) []string {
	keys := make([]string, len(steps))
	for i, s := range steps {
		keys[i] = s.NodeKey
	}
	return keys
}

func cycleEdges(steps []Step) []string {
	var out []string
	for _, s := range steps {
		for _, e := range s.Edges {
			if e.BeginsCycle {
				out = append(out, e.EdgeKey)
			}
		}
	}
	return out
}

func TestResolveChain(t *testing.T) {
	// c reads b, b reads a.
	g := mustBuild(t, NewBuilder().
		AddNode(node("a")).AddNode(node("b")).AddNode(node("c")).
		AddEdge(edge("c", "b", "in")).
		AddEdge(edge("b", "a", "in")))

	steps, err := Resolve(g, "c")
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}
	if got := fmt.Sprint(order(steps)); got != "[a b c]" {
		t.Errorf("order = %s, want [a b c]", got)
	}
	if c := cycleEdges(steps); len(c) != 0 {
		t.Errorf("cycle edges = %v, want none", c)
	}
	if len(steps[0].Edges) != 0 {
		t.Errorf("a has %d edges, want 0", len(steps[0].Edges))
	}
}

func TestResolveSelfLoop(t *testing.T) {
	g := mustBuild(t, NewBuilder().
		AddNode(node("n")).
		AddEdge(edge("n", "n", "feedback")))

	steps, err := Resolve(g, "n")
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}
	if len(steps) != 1 {
		t.Fatalf("len(steps) = %d, want 1", len(steps))
	}
	if len(steps[0].Edges) != 1 || !steps[0].Edges[0].BeginsCycle {
		t.Errorf("step = %v, want the self edge marked as cycle", steps[0])
	}
}

func TestResolveMutualPair(t *testing.T) {
	// a reads b, b reads a. a is the target.
	g := mustBuild(t, NewBuilder().
		AddNode(node("a")).AddNode(node("b")).
		AddEdge(edge("a", "b", "in")).
		AddEdge(edge("b", "a", "in")))

	steps, err := Resolve(g, "a")
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}
	if got := fmt.Sprint(order(steps)); got != "[b a]" {
		t.Errorf("order = %s, want [b a]", got)
	}
	cyc := cycleEdges(steps)
	if len(cyc) != 1 || cyc[0] != "b<-a" {
		t.Errorf("cycle edges = %v, want [b<-a]", cyc)
	}
}

func TestResolveDiamondEmitsSharedProducerOnce(t *testing.T) {
	// out reads l and r, both read src.
	g := mustBuild(t, NewBuilder().
		AddNode(node("src")).AddNode(node("l")).AddNode(node("r")).AddNode(node("out")).
		AddEdge(edge("out", "l", "left")).
		AddEdge(edge("out", "r", "right")).
		AddEdge(edge("l", "src", "in")).
		AddEdge(edge("r", "src", "in")))

	steps, err := Resolve(g, "out")
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}
	if got := fmt.Sprint(order(steps)); got != "[src l r out]" {
		t.Errorf("order = %s, want [src l r out]", got)
	}
	if c := cycleEdges(steps); len(c) != 0 {
		t.Errorf("cycle edges = %v, want none", c)
	}
}

func TestResolveSiblingsDoNotSharepath(t *testing.T) {
	// out reads x and y; y also reads x. x is not on y's path when the
	// first sibling finishes, so no edge may be marked as a cycle.
	g := mustBuild(t, NewBuilder().
		AddNode(node("x")).AddNode(node("y")).AddNode(node("out")).
		AddEdge(edge("out", "x", "a")).
		AddEdge(edge("out", "y", "b")).
		AddEdge(edge("y", "x", "in")))

	steps, err := Resolve(g, "out")
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}
	if c := cycleEdges(steps); len(c) != 0 {
		t.Errorf("cycle edges = %v, want none", c)
	}
	if got := fmt.Sprint(order(steps)); got != "[x y out]" {
		t.Errorf("order = %s, want [x y out]", got)
	}
}

func TestResolveOnlyReachableNodes(t *testing.T) {
	g := mustBuild(t, NewBuilder().
		AddNode(node("a")).AddNode(node("b")).AddNode(node("unrelated")).
		AddEdge(edge("b", "a", "in")).
		AddEdge(edge("unrelated", "b", "in")))

	steps, err := Resolve(g, "b")
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}
	if got := fmt.Sprint(order(steps)); got != "[a b]" {
		t.Errorf("order = %s, want [a b]", got)
	}
}

func TestResolveAcyclicOrderProperty(t *testing.T) {
	// A layered DAG: every node in layer i reads every node in layer i-1.
	b := NewBuilder()
	layers := [][]string{{"s0", "s1"}, {"m0", "m1", "m2"}, {"out"}}
	for _, layer := range layers {
		for _, k := range layer {
			b.AddNode(node(k))
		}
	}
	for i := 1; i < len(layers); i++ {
		for _, c := range layers[i] {
			for _, p := range layers[i-1] {
				b.AddEdge(edge(c, p, "in_"+p))
			}
		}
	}
	g := mustBuild(t, b)

	steps, err := Resolve(g, "out")
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}
	pos := make(map[string]int)
	for i, s := range steps {
		if _, dup := pos[s.NodeKey]; dup {
			t.Fatalf("node %q emitted twice", s.NodeKey)
		}
		pos[s.NodeKey] = i
	}
	if len(pos) != g.Len() {
		t.Fatalf("emitted %d nodes, want %d", len(pos), g.Len())
	}
	for _, k := range g.NodeKeys() {
		for _, e := range g.EdgesWithSource(k) {
			if pos[e.Destination] >= pos[k] {
				t.Errorf("producer %q at %d not before consumer %q at %d", e.Destination, pos[e.Destination], k, pos[k])
			}
		}
	}
	if steps[len(steps)-1].NodeKey != "out" {
		t.Errorf("last step = %q, want out", steps[len(steps)-1].NodeKey)
	}
}

func TestResolveDeterministic(t *testing.T) {
	g := mustBuild(t, NewBuilder().
		AddNode(node("a")).AddNode(node("b")).AddNode(node("c")).
		AddEdge(edge("a", "b", "x")).
		AddEdge(edge("b", "c", "x")).
		AddEdge(edge("c", "a", "x")))

	first, _ := Resolve(g, "a")
	second, _ := Resolve(g, "a")
	if fmt.Sprint(first) != fmt.Sprint(second) {
		t.Errorf("Resolve() not deterministic: %v vs %v", first, second)
	}
	if c := cycleEdges(first); len(c) != 1 || c[0] != "c<-a" {
		t.Errorf("cycle edges = %v, want [c<-a]", c)
	}
}

func TestResolveMissingTarget(t *testing.T) {
	g := mustBuild(t, NewBuilder().AddNode(node("a")))
	if _, err := Resolve(g, "nope"); !errors.Is(err, ErrNodeNotFound) {
		t.Errorf("Resolve(nope) error = %v, want ErrNodeNotFound", err)
	}
}

func TestStepString(t *testing.T) {
	s := Step{NodeKey: "a", Edges: []StepEdge{{EdgeKey: "x"}, {EdgeKey: "y", BeginsCycle: true}}}
	if got := s.String(); got != "a[x, y*]" {
		t.Errorf("String() = %q, want a[x, y*]", got)
	}
}

func TestResolverMemoizes(t *testing.T) {
	g := mustBuild(t, NewBuilder().
		AddNode(node("a")).AddNode(node("b")).
		AddEdge(edge("b", "a", "in")))
	r := NewResolver(0)

	first, err := r.Resolve(g, "b")
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}
	second, _ := r.Resolve(g, "b")
	if &first[0] != &second[0] {
		t.Error("second Resolve() did not return the memoized plan")
	}
	if _, err := r.Resolve(g, "missing"); !errors.Is(err, ErrNodeNotFound) {
		t.Errorf("Resolve(missing) error = %v, want ErrNodeNotFound", err)
	}
	if r.Len() != 1 {
		t.Errorf("Len() = %d, want 1 (errors are not cached)", r.Len())
	}
	if n := r.Forget(g); n != 1 {
		t.Errorf("Forget() = %d, want 1", n)
	}
}
