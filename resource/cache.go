package resource

import (
	"fmt"
	"log/slog"

	"github.com/gogpu/videograph/backend"
	"github.com/gogpu/videograph/graph"
)

// Side selects one of the two views of a node's output.
type Side uint8

const (
	// Read holds the value of the previous frame (or the value promoted at
	// the end of the last frame that wrote it).
	Read Side = iota
	// Write holds the value of the current frame.
	Write
)

func (s Side) String() string {
	if s == Read {
		return "read"
	}
	return "write"
}

type slot struct {
	tex    backend.Texture
	target backend.Target // write side only, nil for the output node
}

// Stats counts cache activity since creation.
type Stats struct {
	Textures    int // live textures
	Targets     int // live render targets
	Allocations int // textures created
	Resizes     int // in-place texture resizes
	Rebinds     int // render target rebinds
	Promotions  int // read-side refreshes at end of frame
	Releases    int // textures destroyed
}

// Cache owns the output texture of every node in two views, read and
// write, plus a render target bound to each write texture except the
// output node's.
//
// Write-side handles keep their identity across frames: a size change
// resizes them in place and rebinds their targets. The read side lags the
// write side by exactly one frame; Promote closes the gap at the end of
// each frame.
//
// A Cache is driven from one goroutine and is not safe for concurrent use.
type Cache struct {
	dev backend.Device

	read  map[string]*slot
	write map[string]*slot

	// written holds the nodes drawn in the current frame, in draw order.
	written    []string
	writtenSet map[string]bool

	output        string
	width, height int
	disposed      bool

	stats Stats
}

// New returns an empty cache allocating through dev.
func New(dev backend.Device) *Cache {
	return &Cache{
		dev:        dev,
		read:       make(map[string]*slot),
		write:      make(map[string]*slot),
		writtenSet: make(map[string]bool),
	}
}

// Size returns the raster size the cache was last ensured for.
func (c *Cache) Size() (width, height int) { return c.width, c.height }

// Output returns the node key treated as output by the last Ensure.
func (c *Cache) Output() string { return c.output }

// Stats returns activity counters.
func (c *Cache) Stats() Stats {
	s := c.stats
	s.Textures = len(c.read) + len(c.write)
	for _, w := range c.write {
		if w.target != nil {
			s.Targets++
		}
	}
	return s
}

// Ensure prepares resources for a frame of g rendered to output at
// width x height:
//
//   - every node of g gets a read and a write texture,
//   - existing textures are resized in place when the size changed,
//   - every node except output gets a render target bound to its write
//     texture; the output node draws to the display surface,
//   - resources of nodes no longer in g are released.
//
// Nodes outside the dependency closure of output are covered too, since
// edges may reference them.
func (c *Cache) Ensure(g *graph.Graph, output string, width, height int) error {
	if c.disposed {
		return ErrDisposed
	}
	if !g.HasNode(output) {
		return fmt.Errorf("ensure resources: %w: %q", graph.ErrNodeNotFound, output)
	}

	c.Prune(g)

	if width != c.width || height != c.height {
		if err := c.Resize(width, height); err != nil {
			return err
		}
	}

	for _, key := range g.NodeKeys() {
		if _, ok := c.read[key]; !ok {
			tex, err := c.allocate(key, Read)
			if err != nil {
				return err
			}
			c.read[key] = &slot{tex: tex}
		}
		if _, ok := c.write[key]; !ok {
			tex, err := c.allocate(key, Write)
			if err != nil {
				return err
			}
			c.write[key] = &slot{tex: tex}
		}

		w := c.write[key]
		switch {
		case key == output && w.target != nil:
			c.dev.DestroyTarget(w.target)
			w.target = nil
		case key != output && w.target == nil:
			rt, err := c.dev.CreateTarget(label(key, "target"), w.tex)
			if err != nil {
				return fmt.Errorf("%w: node %q target: %w", ErrAllocation, key, err)
			}
			w.target = rt
			slogger().Debug("resource: target created", slog.String("node", key))
		}
	}

	if c.output != output {
		slogger().Debug("resource: output node", slog.String("node", output))
	}
	c.output = output
	return nil
}

// Resize changes the raster size. Every texture is resized in place and
// every render target rebound to its texture before the call returns.
func (c *Cache) Resize(width, height int) error {
	if c.disposed {
		return ErrDisposed
	}
	if width == c.width && height == c.height {
		return nil
	}
	slogger().Info("resource: resize",
		slog.Int("from_width", c.width), slog.Int("from_height", c.height),
		slog.Int("width", width), slog.Int("height", height))

	c.width, c.height = width, height
	for _, side := range []Side{Read, Write} {
		for key, s := range c.slots(side) {
			if err := c.dev.ResizeTexture(s.tex, width, height); err != nil {
				return fmt.Errorf("%w: node %q %s resize: %w", ErrAllocation, key, side, err)
			}
			c.stats.Resizes++
			if s.target != nil {
				if err := c.dev.RebindTarget(s.target, s.tex); err != nil {
					return fmt.Errorf("%w: node %q target rebind: %w", ErrAllocation, key, err)
				}
				c.stats.Rebinds++
			}
		}
	}
	return nil
}

// BeginFrame clears the freshly-written set.
func (c *Cache) BeginFrame() {
	c.written = c.written[:0]
	clear(c.writtenSet)
}

// MarkWritten records that key was drawn in the current frame.
func (c *Cache) MarkWritten(key string) {
	if c.writtenSet[key] {
		return
	}
	c.writtenSet[key] = true
	c.written = append(c.written, key)
}

// Written reports whether key was drawn in the current frame.
func (c *Cache) Written(key string) bool { return c.writtenSet[key] }

// Source returns the texture a consumer reads for an edge whose producer
// is producer. The write texture (this frame) is used only when the
// producer has been drawn this frame and the edge does not begin a cycle;
// otherwise the read texture (previous frame) is used.
func (c *Cache) Source(producer string, beginsCycle bool) (backend.Texture, Side, error) {
	side := Read
	if c.writtenSet[producer] && !beginsCycle {
		side = Write
	}
	tex, err := c.Texture(producer, side)
	return tex, side, err
}

// Texture returns the texture of key on side.
func (c *Cache) Texture(key string, side Side) (backend.Texture, error) {
	s, ok := c.slots(side)[key]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownNode, key)
	}
	return s.tex, nil
}

// Target returns the render target of key. The output node has none and
// yields a nil Target, which selects the display surface.
func (c *Cache) Target(key string) (backend.Target, error) {
	s, ok := c.write[key]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownNode, key)
	}
	if key == c.output {
		return nil, nil
	}
	return s.target, nil
}

// Promote refreshes the read side of every node drawn this frame whose
// output some edge consumes, so that next frame's feedback reads see
// exactly this frame's value. Non-output nodes copy write to read; the
// output node captures the display surface it drew to.
func (c *Cache) Promote(g *graph.Graph) error {
	if c.disposed {
		return ErrDisposed
	}
	for _, key := range c.written {
		if !g.IsProducer(key) {
			continue
		}
		r, ok := c.read[key]
		if !ok {
			return fmt.Errorf("promote: %w: %q", ErrUnknownNode, key)
		}
		var err error
		if key == c.output {
			err = c.dev.CaptureSurface(r.tex)
		} else {
			err = c.dev.CopyTexture(r.tex, c.write[key].tex)
		}
		if err != nil {
			return fmt.Errorf("%w: node %q promote: %w", ErrAllocation, key, err)
		}
		c.stats.Promotions++
	}
	return nil
}

// Prune releases the resources of nodes that are not in g.
func (c *Cache) Prune(g *graph.Graph) int {
	n := 0
	for key := range c.write {
		if g.HasNode(key) {
			continue
		}
		c.release(key)
		n++
	}
	for key := range c.read {
		if !g.HasNode(key) {
			c.release(key)
		}
	}
	if n > 0 {
		slogger().Debug("resource: pruned", slog.Int("nodes", n))
	}
	return n
}

// Dispose releases every resource. The cache cannot be used afterwards.
func (c *Cache) Dispose() {
	if c.disposed {
		return
	}
	for key := range c.write {
		c.release(key)
	}
	for key := range c.read {
		c.release(key)
	}
	c.BeginFrame()
	c.disposed = true
}

func (c *Cache) release(key string) {
	if w, ok := c.write[key]; ok {
		if w.target != nil {
			c.dev.DestroyTarget(w.target)
		}
		c.dev.DestroyTexture(w.tex)
		c.stats.Releases++
		delete(c.write, key)
	}
	if r, ok := c.read[key]; ok {
		c.dev.DestroyTexture(r.tex)
		c.stats.Releases++
		delete(c.read, key)
	}
	delete(c.writtenSet, key)
}

func (c *Cache) allocate(key string, side Side) (backend.Texture, error) {
	tex, err := c.dev.CreateTexture(label(key, side.String()), c.width, c.height)
	if err != nil {
		return nil, fmt.Errorf("%w: node %q %s texture: %w", ErrAllocation, key, side, err)
	}
	c.stats.Allocations++
	slogger().Debug("resource: texture created",
		slog.String("node", key), slog.String("side", side.String()),
		slog.Int("width", c.width), slog.Int("height", c.height))
	return tex, nil
}

func (c *Cache) slots(side Side) map[string]*slot {
	if side == Read {
		return c.read
	}
	return c.write
}

func label(key, what string) string {
	return "videograph/" + key + "/" + what
}
