package videograph

import (
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/gogpu/gpucontext"

	"github.com/gogpu/videograph/animate"
	"github.com/gogpu/videograph/binding"
	"github.com/gogpu/videograph/graph"
)

// Player drives an Engine frame after frame. It evaluates animated
// bindings, layers caller overrides on top and applies pending resizes
// before rendering. Stopping playback means not calling Frame again.
//
// Frame must be called from a single goroutine. Resize requests may
// arrive from any goroutine, typically a window event callback.
type Player struct {
	engine   *Engine
	graph    *graph.Graph
	output   string
	animator *animate.Animator
	clock    func() time.Time

	overrides binding.Runtime
	start     time.Time
	started   bool

	mu            sync.Mutex
	pending       bool
	width, height int
}

// PlayerOption configures a Player.
type PlayerOption func(*Player)

// WithAnimator sets the animated bindings evaluated every frame.
func WithAnimator(a *animate.Animator) PlayerOption {
	return func(p *Player) {
		p.animator = a
	}
}

// WithClock replaces time.Now as the playback clock.
func WithClock(now func() time.Time) PlayerOption {
	return func(p *Player) {
		p.clock = now
	}
}

// NewPlayer returns a Player rendering g to output with e.
func NewPlayer(e *Engine, g *graph.Graph, output string, opts ...PlayerOption) *Player {
	p := &Player{
		engine:    e,
		graph:     g,
		output:    output,
		clock:     time.Now,
		overrides: make(binding.Runtime),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// SetGraph switches to another graph or output node from the next frame.
func (p *Player) SetGraph(g *graph.Graph, output string) {
	p.graph, p.output = g, output
}

// Override pins identifier on node to v for every following frame. It
// wins over animated values.
func (p *Player) Override(node, identifier string, v binding.Value) {
	p.overrides.Put(node, identifier, v)
}

// ClearOverrides removes every pinned value.
func (p *Player) ClearOverrides() {
	p.overrides = make(binding.Runtime)
}

// RequestResize schedules a surface resize before the next frame.
// It is safe to call from any goroutine.
func (p *Player) RequestResize(width, height int) {
	p.mu.Lock()
	p.pending, p.width, p.height = true, width, height
	p.mu.Unlock()
}

// Attach follows resize events of src.
func (p *Player) Attach(src gpucontext.EventSource) {
	src.OnResize(p.RequestResize)
}

// Elapsed returns the playback time since the first frame.
func (p *Player) Elapsed() time.Duration {
	if !p.started {
		return 0
	}
	return p.clock().Sub(p.start)
}

// Frame renders one frame.
func (p *Player) Frame() error {
	if err := p.applyResize(); err != nil {
		return err
	}
	if !p.started {
		p.start, p.started = p.clock(), true
	}

	w, h := p.engine.Backend().SurfaceSize()
	animated, err := p.animator.Evaluate(animate.Frame{
		Index:  p.engine.Frame(),
		Time:   p.Elapsed(),
		Width:  w,
		Height: h,
	})
	if err != nil {
		return fmt.Errorf("frame %d: %w", p.engine.Frame(), err)
	}
	return p.engine.RenderFrame(p.graph, animated.Overlay(p.overrides), p.output)
}

func (p *Player) applyResize() error {
	p.mu.Lock()
	pending, w, h := p.pending, p.width, p.height
	p.pending = false
	p.mu.Unlock()
	if !pending {
		return nil
	}
	if w <= 0 || h <= 0 {
		p.engine.logger().Warn("videograph: ignoring resize", slog.Int("width", w), slog.Int("height", h))
		return nil
	}
	return p.engine.Resize(w, h)
}
