// Package cache provides the bounded LRU cache used to memoize execution
// plans and binding-location lookups.
//
//	steps := cache.New[planKey, []graph.Step](64)
//	plan, err := steps.GetOrLoad(key, func() ([]graph.Step, error) {
//		return graph.Resolve(g, target)
//	})
//
// A loader that fails leaves nothing behind, so the next lookup retries.
// Entries are evicted strictly least-recently-used once the limit is
// exceeded; OnEvict lets owners release anything tied to an entry.
package cache
