package videograph

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/gogpu/videograph/backend"
	"github.com/gogpu/videograph/binding"
	"github.com/gogpu/videograph/graph"
	"github.com/gogpu/videograph/internal/cache"
	"github.com/gogpu/videograph/resource"
	"github.com/gogpu/videograph/shader"
)

// FrameStats summarizes the last completed frame.
type FrameStats struct {
	Engine        uuid.UUID
	Frame         uint64
	Output        string
	Width, Height int
	Steps         int
	Draws         int
	Bindings      int
	ImageBindings int
	FeedbackReads int // images read from the previous frame
	Duration      time.Duration
}

type locationKey struct {
	program    backend.Program
	identifier string
}

// Engine executes node graphs, one frame per RenderFrame call.
//
// Each frame runs the same phases in order: resolve the execution order,
// ensure per-node resources, then bind and draw every step, and finally
// promote freshly written outputs so that feedback edges see them next
// frame.
//
// An Engine is driven from a single goroutine. It is not safe for
// concurrent use; a re-entrant call fails with ErrFrameInProgress.
type Engine struct {
	id   uuid.UUID
	be   backend.Backend
	opts options

	quad      backend.Geometry
	resources *resource.Cache
	resolver  *graph.Resolver
	locations *cache.Cache[locationKey, backend.Location]

	frame   uint64
	inFrame bool
	closed  bool
	last    FrameStats
}

// New returns an Engine drawing through b. The full-screen quad shared by
// every node is created here.
func New(b backend.Backend, opts ...Option) (*Engine, error) {
	if b == nil {
		return nil, ErrNilBackend
	}
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}

	quad, err := b.CreateGeometry("videograph/quad", shader.QuadPositions, shader.QuadTexCoords)
	if err != nil {
		return nil, fmt.Errorf("create quad: %w", err)
	}

	e := &Engine{
		id:        uuid.New(),
		be:        b,
		opts:      o,
		quad:      quad,
		resources: resource.New(b),
		resolver:  graph.NewResolver(o.stepCacheSize),
		locations: cache.New[locationKey, backend.Location](o.locationCacheSize),
	}
	attachLogger(b)
	w, h := b.SurfaceSize()
	e.logger().Info("videograph: engine created",
		slog.String("backend", b.Name()), slog.Int("width", w), slog.Int("height", h))
	return e, nil
}

// ID returns the engine instance id attached to its log records.
func (e *Engine) ID() uuid.UUID { return e.id }

// Backend returns the backend the engine draws through.
func (e *Engine) Backend() backend.Backend { return e.be }

// Frame returns the index of the next frame to render.
func (e *Engine) Frame() uint64 { return e.frame }

// LastFrame returns statistics of the last completed frame.
func (e *Engine) LastFrame() FrameStats { return e.last }

// Resources exposes the resource cache for inspection.
func (e *Engine) Resources() *resource.Cache { return e.resources }

func (e *Engine) logger() *slog.Logger {
	return Logger().With(slog.String("engine", e.id.String()))
}

// CompileProgram compiles fragmentSource against the shared quad vertex
// stage.
func (e *Engine) CompileProgram(label, fragmentSource string) (backend.Program, error) {
	if e.closed {
		return nil, ErrClosed
	}
	return e.be.CompileProgram(label, shader.QuadVertex, fragmentSource)
}

// CompileBuiltin compiles one of the built-in fragment programs by name.
func (e *Engine) CompileBuiltin(name string) (backend.Program, error) {
	src, ok := shader.Builtin(name)
	if !ok {
		return nil, fmt.Errorf("%w: no built-in program %q", shader.ErrCompile, name)
	}
	return e.CompileProgram(name, src)
}

// Resize changes the surface size. Node resources follow on the next
// frame, before any step runs.
func (e *Engine) Resize(width, height int) error {
	switch {
	case e.closed:
		return ErrClosed
	case e.inFrame:
		return ErrFrameInProgress
	}
	if err := backend.CheckSize(width, height, e.be.Limits()); err != nil {
		return err
	}
	if w, h := e.be.SurfaceSize(); w == width && h == height {
		return nil
	}
	e.logger().Info("videograph: resize", slog.Int("width", width), slog.Int("height", height))
	return e.be.ResizeSurface(width, height)
}

// RenderFrame draws one frame of g with output as the node drawn to the
// surface. runtime holds per-node overrides for this frame only and may be
// nil.
//
// The frame aborts at the first error; nothing is retried and no binding
// is skipped.
func (e *Engine) RenderFrame(g *graph.Graph, runtime binding.Runtime, output string) error {
	switch {
	case e.closed:
		return ErrClosed
	case e.inFrame:
		return ErrFrameInProgress
	}
	e.inFrame = true
	defer func() { e.inFrame = false }()

	start := time.Now()
	if err := runtime.Validate(); err != nil {
		return fmt.Errorf("frame %d: %w", e.frame, err)
	}

	steps, err := e.resolver.Resolve(g, output)
	if err != nil {
		return fmt.Errorf("frame %d: resolve order: %w", e.frame, err)
	}

	w, h := e.be.SurfaceSize()
	if err := e.resources.Ensure(g, output, w, h); err != nil {
		return fmt.Errorf("frame %d: %w", e.frame, err)
	}
	e.resources.BeginFrame()

	log := e.logger()
	if log.Enabled(context.Background(), slog.LevelDebug) {
		log.Debug("videograph: frame", slog.Uint64("frame", e.frame), slog.Any("steps", steps))
	}

	stats := FrameStats{Engine: e.id, Frame: e.frame, Output: output, Width: w, Height: h, Steps: len(steps)}
	for _, step := range steps {
		if err := e.execute(g, step, runtime.For(step.NodeKey), &stats); err != nil {
			return fmt.Errorf("frame %d: node %q: %w", e.frame, step.NodeKey, err)
		}
	}

	if err := e.resources.Promote(g); err != nil {
		return fmt.Errorf("frame %d: %w", e.frame, err)
	}

	stats.Duration = time.Since(start)
	e.last = stats
	e.frame++
	return nil
}

// execute binds and draws a single step.
func (e *Engine) execute(g *graph.Graph, step graph.Step, overrides binding.Set, stats *FrameStats) error {
	node, err := g.Node(step.NodeKey)
	if err != nil {
		return err
	}
	derived, err := e.derive(g, node, step, stats)
	if err != nil {
		return err
	}
	final := binding.Merge(node.Constants, derived, overrides)

	if err := e.be.UseProgram(node.Program); err != nil {
		return fmt.Errorf("use program %q: %w", node.Program.Name(), err)
	}
	if err := e.be.BindGeometry(e.quad); err != nil {
		return fmt.Errorf("bind quad: %w", err)
	}

	// Image units restart at zero for every draw.
	unit := 0
	maxUnits := e.be.Limits().MaxImageUnits
	for _, id := range final.Identifiers() {
		v := final[id]
		loc, err := e.location(node.Program, id)
		if err != nil {
			return err
		}
		if err := backend.CheckKind(loc, v); err != nil {
			return err
		}
		if v.Kind() != binding.KindImage {
			if err := e.be.SetUniform(loc, v); err != nil {
				return fmt.Errorf("set %q: %w", id, err)
			}
			stats.Bindings++
			continue
		}
		tex, ok := v.AsImage().(backend.Texture)
		if !ok {
			return fmt.Errorf("bind %q: %w", id, backend.ErrForeignResource)
		}
		if maxUnits > 0 && unit >= maxUnits {
			return fmt.Errorf("bind %q: %w: %d units", id, backend.ErrImageUnitsExhausted, maxUnits)
		}
		if err := e.be.BindImage(unit, loc, tex); err != nil {
			return fmt.Errorf("bind %q to unit %d: %w", id, unit, err)
		}
		unit++
		stats.Bindings++
		stats.ImageBindings++
	}

	rt, err := e.resources.Target(node.Key)
	if err != nil {
		return err
	}
	e.be.SetViewport(0, 0, stats.Width, stats.Height)
	if err := e.be.BindTarget(rt); err != nil {
		return fmt.Errorf("bind target: %w", err)
	}
	if err := e.be.DrawTriangles(0, e.quad.VertexCount()); err != nil {
		return fmt.Errorf("draw: %w", err)
	}
	e.resources.MarkWritten(node.Key)
	stats.Draws++
	return nil
}

// derive builds the edge-derived binding layer of a step: one image per
// edge, the raster dimensions when an image was bound, and the frame
// counter.
func (e *Engine) derive(g *graph.Graph, node graph.Node, step graph.Step, stats *FrameStats) (binding.Set, error) {
	derived := make(binding.Set, len(step.Edges)+2)
	for _, se := range step.Edges {
		edge, err := g.Edge(se.EdgeKey)
		if err != nil {
			return nil, err
		}
		tex, side, err := e.resources.Source(edge.Destination, se.BeginsCycle)
		if err != nil {
			return nil, fmt.Errorf("edge %q: %w", edge.Key, err)
		}
		if side == resource.Read {
			stats.FeedbackReads++
		}
		derived[g.InputIdentifier(edge)] = binding.ImageValue(tex)
	}

	if len(step.Edges) > 0 {
		if err := e.optional(node.Program, e.opts.dimensionsIdentifier, func(id string) {
			derived[id] = binding.Vec2(float32(stats.Width), float32(stats.Height))
		}); err != nil {
			return nil, err
		}
	}

	frame := binding.Int(int32(e.frame))
	if node.TimeIdentifier != "" {
		derived[node.TimeIdentifier] = frame
	} else if err := e.optional(node.Program, e.opts.timeIdentifier, func(id string) {
		derived[id] = frame
	}); err != nil {
		return nil, err
	}
	return derived, nil
}

// optional calls set if id is non-empty and the program declares it.
func (e *Engine) optional(p backend.Program, id string, set func(string)) error {
	if id == "" {
		return nil
	}
	_, err := e.location(p, id)
	switch {
	case err == nil:
		set(id)
		return nil
	case errors.Is(err, backend.ErrLocationNotFound):
		return nil
	default:
		return err
	}
}

// location resolves identifier in p, caching successful lookups.
func (e *Engine) location(p backend.Program, identifier string) (backend.Location, error) {
	return e.locations.GetOrLoad(locationKey{program: p, identifier: identifier}, func() (backend.Location, error) {
		loc, err := p.Location(identifier)
		if err != nil {
			return backend.Location{}, fmt.Errorf("program %q: %w", p.Name(), err)
		}
		return loc, nil
	})
}

// Forget drops memoized execution orders of g. Graphs are immutable, so
// this only matters for releasing memory once g is no longer rendered.
func (e *Engine) Forget(g *graph.Graph) {
	e.resolver.Forget(g)
}

// Close releases every node resource. The backend is left open; it
// belongs to the caller.
func (e *Engine) Close() error {
	switch {
	case e.closed:
		return nil
	case e.inFrame:
		return ErrFrameInProgress
	}
	e.closed = true
	e.resources.Dispose()
	e.locations.Clear()
	detachLogger(e.be)
	e.logger().Info("videograph: engine closed", slog.Uint64("frames", e.frame))
	return nil
}
