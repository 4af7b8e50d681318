package recording

import (
	"errors"
	"fmt"
	"maps"
	"slices"

	"github.com/gogpu/videograph/backend"
	"github.com/gogpu/videograph/binding"
	"github.com/gogpu/videograph/shader"
)

// ErrDestroyed is returned when a destroyed texture or target is used.
var ErrDestroyed = errors.New("recording: resource destroyed")

func init() {
	backend.Register(backend.NameRecording, func(width, height int) (backend.Backend, error) {
		return New(width, height), nil
	})
}

// NewProgram returns a program declaring the given identifiers, without
// compiling any source. Locations are assigned in sorted identifier order.
func NewProgram(name string, declared map[string]binding.Kind) *Program {
	locs := make([]backend.Location, 0, len(declared))
	for i, id := range slices.Sorted(maps.Keys(declared)) {
		locs = append(locs, backend.Location{Identifier: id, Kind: declared[id], Binding: uint32(i)})
	}
	return &Program{name: name, LocationTable: backend.NewLocationTable(locs)}
}

// Backend records every call and simulates contents with tags.
//
// Drawing into a target sets its texture's content tag to
// "<program>#<seq>"; drawing to the surface sets the surface tag. Copies
// and captures move tags, so tests can follow which frame's output a
// consumer actually read.
type Backend struct {
	commands []Command
	draws    []Draw
	nextID   int

	width, height int
	surface       string
	limits        backend.Limits
	modules       *shader.Cache

	program  *Program
	geometry *Geometry
	target   *Target
	uniforms binding.Set
	images   map[string]string
	units    map[string]int

	failures map[Op]error
	closed   bool
}

// New returns a recording backend with a width x height surface.
func New(width, height int) *Backend {
	return &Backend{
		width:    width,
		height:   height,
		limits:   backend.DefaultLimits(),
		modules:  shader.NewCache(0),
		failures: make(map[Op]error),
	}
}

// SetLimits overrides the reported limits.
func (b *Backend) SetLimits(l backend.Limits) { b.limits = l }

// FailOn makes every later call of op fail with err. A nil err clears it.
func (b *Backend) FailOn(op Op, err error) {
	if err == nil {
		delete(b.failures, op)
		return
	}
	b.failures[op] = err
}

// Commands returns the recorded commands.
func (b *Backend) Commands() []Command { return slices.Clone(b.commands) }

// Count returns how many commands of op were recorded.
func (b *Backend) Count(op Op) int {
	n := 0
	for _, c := range b.commands {
		if c.Op == op {
			n++
		}
	}
	return n
}

// Draws returns a summary of every draw.
func (b *Backend) Draws() []Draw { return slices.Clone(b.draws) }

// SurfaceContent returns the content tag of the display surface.
func (b *Backend) SurfaceContent() string { return b.surface }

// Reset forgets recorded commands and draws, keeping resources.
func (b *Backend) Reset() {
	b.commands = b.commands[:0]
	b.draws = b.draws[:0]
}

func (b *Backend) record(c Command) error {
	if b.closed {
		return backend.ErrClosed
	}
	if err := b.failures[c.Op]; err != nil {
		return err
	}
	b.commands = append(b.commands, c)
	return nil
}

// Name implements backend.Backend.
func (b *Backend) Name() string { return backend.NameRecording }

// Limits implements backend.Backend.
func (b *Backend) Limits() backend.Limits { return b.limits }

// Close implements backend.Backend.
func (b *Backend) Close() error {
	b.closed = true
	return nil
}

func (b *Backend) texture(t backend.Texture) (*Texture, error) {
	tex, ok := t.(*Texture)
	if !ok {
		return nil, fmt.Errorf("%w: %T", backend.ErrForeignResource, t)
	}
	if tex.destroyed {
		return nil, fmt.Errorf("%w: texture #%d %s", ErrDestroyed, tex.id, tex.label)
	}
	return tex, nil
}

func (b *Backend) targetOf(t backend.Target) (*Target, error) {
	rt, ok := t.(*Target)
	if !ok {
		return nil, fmt.Errorf("%w: %T", backend.ErrForeignResource, t)
	}
	if rt.destroyed {
		return nil, fmt.Errorf("%w: target #%d", ErrDestroyed, rt.id)
	}
	return rt, nil
}

// CreateTexture implements backend.Device.
func (b *Backend) CreateTexture(label string, width, height int) (backend.Texture, error) {
	if err := backend.CheckSize(width, height, b.limits); err != nil {
		return nil, err
	}
	b.nextID++
	tex := &Texture{id: b.nextID, label: label, width: width, height: height}
	if err := b.record(Command{Op: OpCreateTexture, Label: label, Texture: tex.id, Width: width, Height: height}); err != nil {
		return nil, err
	}
	return tex, nil
}

// ResizeTexture implements backend.Device. Contents are kept.
func (b *Backend) ResizeTexture(t backend.Texture, width, height int) error {
	tex, err := b.texture(t)
	if err != nil {
		return err
	}
	if err := backend.CheckSize(width, height, b.limits); err != nil {
		return err
	}
	if err := b.record(Command{Op: OpResizeTexture, Label: tex.label, Texture: tex.id, Width: width, Height: height}); err != nil {
		return err
	}
	tex.width, tex.height = width, height
	return nil
}

// CopyTexture implements backend.Device.
func (b *Backend) CopyTexture(dst, src backend.Texture) error {
	d, err := b.texture(dst)
	if err != nil {
		return err
	}
	s, err := b.texture(src)
	if err != nil {
		return err
	}
	if d.width != s.width || d.height != s.height {
		return fmt.Errorf("%w: #%d %dx%d <- #%d %dx%d", backend.ErrSizeMismatch, d.id, d.width, d.height, s.id, s.width, s.height)
	}
	if err := b.record(Command{Op: OpCopyTexture, Texture: d.id, Source: s.id}); err != nil {
		return err
	}
	d.content = s.content
	return nil
}

// CaptureSurface implements backend.Device.
func (b *Backend) CaptureSurface(dst backend.Texture) error {
	d, err := b.texture(dst)
	if err != nil {
		return err
	}
	if d.width != b.width || d.height != b.height {
		return fmt.Errorf("%w: #%d %dx%d <- surface %dx%d", backend.ErrSizeMismatch, d.id, d.width, d.height, b.width, b.height)
	}
	if err := b.record(Command{Op: OpCaptureSurface, Texture: d.id}); err != nil {
		return err
	}
	d.content = b.surface
	return nil
}

// DestroyTexture implements backend.Device.
func (b *Backend) DestroyTexture(t backend.Texture) {
	tex, ok := t.(*Texture)
	if !ok || tex.destroyed {
		return
	}
	_ = b.record(Command{Op: OpDestroyTexture, Label: tex.label, Texture: tex.id})
	tex.destroyed = true
}

// CreateTarget implements backend.Device.
func (b *Backend) CreateTarget(label string, t backend.Texture) (backend.Target, error) {
	tex, err := b.texture(t)
	if err != nil {
		return nil, err
	}
	b.nextID++
	rt := &Target{id: b.nextID, tex: tex}
	if err := b.record(Command{Op: OpCreateTarget, Label: label, Target: rt.id, Texture: tex.id}); err != nil {
		return nil, err
	}
	return rt, nil
}

// RebindTarget implements backend.Device.
func (b *Backend) RebindTarget(t backend.Target, tex backend.Texture) error {
	rt, err := b.targetOf(t)
	if err != nil {
		return err
	}
	nt, err := b.texture(tex)
	if err != nil {
		return err
	}
	if err := b.record(Command{Op: OpRebindTarget, Target: rt.id, Texture: nt.id}); err != nil {
		return err
	}
	rt.tex = nt
	return nil
}

// DestroyTarget implements backend.Device.
func (b *Backend) DestroyTarget(t backend.Target) {
	rt, ok := t.(*Target)
	if !ok || rt.destroyed {
		return
	}
	_ = b.record(Command{Op: OpDestroyTarget, Target: rt.id})
	rt.destroyed = true
}

// CompileProgram implements backend.Compiler. The sources are compiled
// and reflected with naga, so locations match what a GPU backend sees.
func (b *Backend) CompileProgram(label, vertexSource, fragmentSource string) (backend.Program, error) {
	vs, err := b.modules.Compile(shader.StageVertex, vertexSource)
	if err != nil {
		return nil, fmt.Errorf("program %q: %w", label, err)
	}
	fs, err := b.modules.Compile(shader.StageFragment, fragmentSource)
	if err != nil {
		return nil, fmt.Errorf("program %q: %w", label, err)
	}
	layout, err := shader.Link(vs, fs)
	if err != nil {
		return nil, fmt.Errorf("program %q: %w", label, err)
	}
	if err := b.record(Command{Op: OpCompileProgram, Program: label}); err != nil {
		return nil, err
	}
	return &Program{name: label, LocationTable: backend.NewLocationTable(layout.Locations())}, nil
}

// SurfaceSize implements backend.Rasterizer.
func (b *Backend) SurfaceSize() (int, int) { return b.width, b.height }

// ResizeSurface implements backend.Rasterizer.
func (b *Backend) ResizeSurface(width, height int) error {
	if err := backend.CheckSize(width, height, b.limits); err != nil {
		return err
	}
	if err := b.record(Command{Op: OpResizeSurface, Width: width, Height: height}); err != nil {
		return err
	}
	b.width, b.height = width, height
	return nil
}

// CreateGeometry implements backend.Rasterizer.
func (b *Backend) CreateGeometry(label string, positions, texCoords []float32) (backend.Geometry, error) {
	if len(positions) != len(texCoords) || len(positions)%2 != 0 {
		return nil, fmt.Errorf("recording: geometry %q: %d positions and %d texture coordinates", label, len(positions), len(texCoords))
	}
	g := &Geometry{label: label, count: len(positions) / 2}
	if err := b.record(Command{Op: OpCreateGeometry, Label: label, Count: g.count}); err != nil {
		return nil, err
	}
	return g, nil
}

// SetViewport implements backend.Rasterizer.
func (b *Backend) SetViewport(x, y, width, height int) {
	_ = b.record(Command{Op: OpSetViewport, X: x, Y: y, Width: width, Height: height})
}

// UseProgram implements backend.Rasterizer.
func (b *Backend) UseProgram(p backend.Program) error {
	prog, ok := p.(*Program)
	if !ok {
		return fmt.Errorf("%w: %T", backend.ErrForeignResource, p)
	}
	if err := b.record(Command{Op: OpUseProgram, Program: prog.name}); err != nil {
		return err
	}
	b.program = prog
	b.uniforms = make(binding.Set)
	b.images = make(map[string]string)
	b.units = make(map[string]int)
	return nil
}

// BindGeometry implements backend.Rasterizer.
func (b *Backend) BindGeometry(g backend.Geometry) error {
	geo, ok := g.(*Geometry)
	if !ok {
		return fmt.Errorf("%w: %T", backend.ErrForeignResource, g)
	}
	if err := b.record(Command{Op: OpBindGeometry, Label: geo.label, Count: geo.count}); err != nil {
		return err
	}
	b.geometry = geo
	return nil
}

// SetUniform implements backend.Rasterizer.
func (b *Backend) SetUniform(loc backend.Location, v binding.Value) error {
	if b.program == nil {
		return backend.ErrNoProgram
	}
	if err := backend.CheckKind(loc, v); err != nil {
		return err
	}
	if v.Kind() == binding.KindImage {
		return fmt.Errorf("%w: image %q must be bound with BindImage", binding.ErrKindMismatch, loc.Identifier)
	}
	if err := b.record(Command{Op: OpSetUniform, Program: b.program.name, Location: loc, Value: v}); err != nil {
		return err
	}
	b.uniforms[loc.Identifier] = v
	return nil
}

// BindImage implements backend.Rasterizer.
func (b *Backend) BindImage(unit int, loc backend.Location, t backend.Texture) error {
	if b.program == nil {
		return backend.ErrNoProgram
	}
	if loc.Kind != binding.KindImage {
		return fmt.Errorf("%w: %q declared %s, got image", binding.ErrKindMismatch, loc.Identifier, loc.Kind)
	}
	if unit < 0 || unit >= b.limits.MaxImageUnits {
		return fmt.Errorf("%w: unit %d of %d", backend.ErrImageUnitsExhausted, unit, b.limits.MaxImageUnits)
	}
	tex, err := b.texture(t)
	if err != nil {
		return err
	}
	if err := b.record(Command{Op: OpBindImage, Program: b.program.name, Location: loc, Unit: unit, Texture: tex.id}); err != nil {
		return err
	}
	b.images[loc.Identifier] = tex.content
	b.units[loc.Identifier] = unit
	return nil
}

// BindTarget implements backend.Rasterizer.
func (b *Backend) BindTarget(t backend.Target) error {
	if t == nil {
		if err := b.record(Command{Op: OpBindTarget}); err != nil {
			return err
		}
		b.target = nil
		return nil
	}
	rt, err := b.targetOf(t)
	if err != nil {
		return err
	}
	if err := b.record(Command{Op: OpBindTarget, Target: rt.id}); err != nil {
		return err
	}
	b.target = rt
	return nil
}

// DrawTriangles implements backend.Rasterizer.
func (b *Backend) DrawTriangles(first, count int) error {
	if b.program == nil {
		return backend.ErrNoProgram
	}
	if b.geometry == nil || first+count > b.geometry.count {
		return fmt.Errorf("recording: draw %d+%d exceeds bound geometry", first, count)
	}
	if err := b.record(Command{Op: OpDrawTriangles, Program: b.program.name, First: first, Count: count}); err != nil {
		return err
	}

	seq := len(b.draws) + 1
	content := fmt.Sprintf("%s#%d", b.program.name, seq)
	d := Draw{
		Seq:      seq,
		Program:  b.program.name,
		Content:  content,
		Uniforms: b.uniforms.Clone(),
		Images:   maps.Clone(b.images),
		Units:    maps.Clone(b.units),
		Count:    count,
	}
	if b.target != nil {
		if b.target.tex.destroyed {
			return fmt.Errorf("%w: target #%d texture", ErrDestroyed, b.target.id)
		}
		d.Target = b.target.id
		b.target.tex.content = content
	} else {
		b.surface = content
	}
	b.draws = append(b.draws, d)
	return nil
}

var _ backend.Backend = (*Backend)(nil)
