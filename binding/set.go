// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package binding

import (
	"fmt"
	"maps"
	"slices"
)

// Set maps binding identifiers to values.
type Set map[string]Value

// Clone returns a shallow copy of s. A nil Set clones to an empty Set.
func (s Set) Clone() Set {
	out := make(Set, len(s))
	maps.Copy(out, s)
	return out
}

// Identifiers returns the identifiers of s in sorted order, so that
// binding happens in a deterministic sequence.
func (s Set) Identifiers() []string {
	return slices.Sorted(maps.Keys(s))
}

// Validate checks every value in s.
func (s Set) Validate() error {
	for _, id := range s.Identifiers() {
		if err := s[id].Validate(); err != nil {
			return fmt.Errorf("binding %q: %w", id, err)
		}
	}
	return nil
}

// Merge layers sets in order. On identifier collision the later layer
// wins. Nil layers are skipped. The inputs are never modified.
//
// The engine calls Merge(constant, derived, runtime).
func Merge(layers ...Set) Set {
	n := 0
	for _, l := range layers {
		n += len(l)
	}
	out := make(Set, n)
	for _, l := range layers {
		maps.Copy(out, l)
	}
	return out
}

// Runtime holds caller-supplied per-frame overrides, keyed by node key
// and then by binding identifier.
type Runtime map[string]Set

// For returns the overrides for node, or nil.
func (r Runtime) For(node string) Set {
	if r == nil {
		return nil
	}
	return r[node]
}

// Put records an override, allocating the node's Set as needed.
func (r Runtime) Put(node, identifier string, v Value) {
	s, ok := r[node]
	if !ok {
		s = make(Set)
		r[node] = s
	}
	s[identifier] = v
}

// Overlay returns a new Runtime with other layered on top of r.
func (r Runtime) Overlay(other Runtime) Runtime {
	out := make(Runtime, len(r)+len(other))
	for node, s := range r {
		out[node] = s.Clone()
	}
	for node, s := range other {
		out[node] = Merge(out[node], s)
	}
	return out
}

// Validate checks every value of every node.
func (r Runtime) Validate() error {
	for _, node := range slices.Sorted(maps.Keys(r)) {
		if err := r[node].Validate(); err != nil {
			return fmt.Errorf("runtime bindings for node %q: %w", node, err)
		}
	}
	return nil
}
