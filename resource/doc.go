// Package resource owns the per-node GPU resources of a graph across
// frames.
//
// Each node has a read texture and a write texture. Consumers read the
// write texture of a producer drawn earlier in the same frame, and the
// read texture across feedback edges or for producers not yet drawn:
//
//	tex, _, err := cache.Source(edge.Destination, step.BeginsCycle)
//
// Lifecycle:
//
//	c := resource.New(dev)       // create
//	c.Ensure(g, out, w, h)       // every frame; allocates, resizes, prunes
//	c.BeginFrame()
//	... draw, c.MarkWritten(key) ...
//	c.Promote(g)                 // end of frame
//	c.Dispose()                  // release everything
package resource
