// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package graph

import (
	"github.com/gogpu/videograph/internal/cache"
)

// DefaultResolverSize is the number of (graph, target) plans a Resolver
// keeps by default.
const DefaultResolverSize = 32

type planKey struct {
	graph  uint64
	target string
}

// Resolver memoizes Resolve per (graph, target). Graphs are immutable, so a
// plan never goes stale; the cache is bounded and least-recently-used
// plans are dropped.
//
// Resolver is safe for concurrent use.
type Resolver struct {
	plans *cache.Cache[planKey, []Step]
}

// NewResolver returns a Resolver holding at most size plans.
// A size <= 0 selects DefaultResolverSize.
func NewResolver(size int) *Resolver {
	if size <= 0 {
		size = DefaultResolverSize
	}
	return &Resolver{plans: cache.New[planKey, []Step](size)}
}

// Resolve returns the execution order for target, computing it on first
// use. The returned slice is shared and must not be modified.
func (r *Resolver) Resolve(g *Graph, target string) ([]Step, error) {
	return r.plans.GetOrLoad(planKey{graph: g.id, target: target}, func() ([]Step, error) {
		return Resolve(g, target)
	})
}

// Forget drops every plan computed for g.
func (r *Resolver) Forget(g *Graph) int {
	return r.plans.DeleteFunc(func(k planKey, _ []Step) bool { return k.graph == g.id })
}

// Len returns the number of memoized plans.
func (r *Resolver) Len() int { return r.plans.Len() }
