package software

import (
	"fmt"
	"image"
	"log/slog"
	"sync"

	"golang.org/x/image/draw"

	"github.com/gogpu/videograph/backend"
	"github.com/gogpu/videograph/binding"
	"github.com/gogpu/videograph/internal/parallel"
	"github.com/gogpu/videograph/shader"
)

// Triangles covering fewer pixels than minParallelPixels are shaded on
// the calling goroutine. Larger ones are split into bands of at least
// minBandRows rows.
const (
	minParallelPixels = 64 * 64
	minBandRows       = 16
)

func init() {
	backend.Register(backend.NameSoftware, func(width, height int) (backend.Backend, error) {
		return New(width, height)
	})
}

// drawState is the pipeline state set between UseProgram and
// DrawTriangles.
type drawState struct {
	program  *Program
	geometry *Geometry
	target   *Target
	viewport viewport
	uniforms binding.Set
	images   map[string]*image.RGBA
}

// Backend rasterizes on the CPU.
//
// A Backend is driven from one goroutine, except SetLogger which may be
// called at any time.
type Backend struct {
	limits  backend.Limits
	modules *shader.Cache
	surface *image.RGBA
	state   drawState
	pool    *parallel.Pool
	closed  bool

	mu  sync.Mutex
	log *slog.Logger
}

// New returns a software backend with a width x height surface.
func New(width, height int) (*Backend, error) {
	limits := backend.DefaultLimits()
	if err := backend.CheckSize(width, height, limits); err != nil {
		return nil, err
	}
	return &Backend{
		limits:  limits,
		modules: shader.NewCache(0),
		surface: image.NewRGBA(image.Rect(0, 0, width, height)),
		pool:    parallel.NewPool(0),
		log:     slog.New(nopHandler{}),
	}, nil
}

// Name implements backend.Backend.
func (b *Backend) Name() string { return backend.NameSoftware }

// Limits implements backend.Backend.
func (b *Backend) Limits() backend.Limits { return b.limits }

// Close implements backend.Backend.
func (b *Backend) Close() error {
	if !b.closed {
		b.pool.Close()
	}
	b.closed = true
	b.state = drawState{}
	return nil
}

func (b *Backend) texture(t backend.Texture) (*Texture, error) {
	tex, ok := t.(*Texture)
	if !ok {
		return nil, fmt.Errorf("%w: %T", backend.ErrForeignResource, t)
	}
	if tex.destroyed {
		return nil, fmt.Errorf("%w: texture %q", ErrDestroyed, tex.label)
	}
	return tex, nil
}

func (b *Backend) check() error {
	if b.closed {
		return backend.ErrClosed
	}
	return nil
}

// CreateTexture implements backend.Device. New textures are transparent
// black.
func (b *Backend) CreateTexture(label string, width, height int) (backend.Texture, error) {
	if err := b.check(); err != nil {
		return nil, err
	}
	if err := backend.CheckSize(width, height, b.limits); err != nil {
		return nil, fmt.Errorf("texture %q: %w", label, err)
	}
	return &Texture{label: label, img: image.NewRGBA(image.Rect(0, 0, width, height))}, nil
}

// ResizeTexture implements backend.Device. The contents are rescaled, so a
// feedback loop keeps its history across a resize.
func (b *Backend) ResizeTexture(t backend.Texture, width, height int) error {
	if err := b.check(); err != nil {
		return err
	}
	tex, err := b.texture(t)
	if err != nil {
		return err
	}
	if err := backend.CheckSize(width, height, b.limits); err != nil {
		return fmt.Errorf("texture %q: %w", tex.label, err)
	}
	tex.img = rescale(tex.img, width, height)
	return nil
}

func rescale(src *image.RGBA, width, height int) *image.RGBA {
	dst := image.NewRGBA(image.Rect(0, 0, width, height))
	if !src.Rect.Empty() {
		draw.ApproxBiLinear.Scale(dst, dst.Rect, src, src.Rect, draw.Src, nil)
	}
	return dst
}

// CopyTexture implements backend.Device.
func (b *Backend) CopyTexture(dst, src backend.Texture) error {
	if err := b.check(); err != nil {
		return err
	}
	d, err := b.texture(dst)
	if err != nil {
		return err
	}
	s, err := b.texture(src)
	if err != nil {
		return err
	}
	return copyImage(d.img, s.img)
}

// CaptureSurface implements backend.Device.
func (b *Backend) CaptureSurface(dst backend.Texture) error {
	if err := b.check(); err != nil {
		return err
	}
	d, err := b.texture(dst)
	if err != nil {
		return err
	}
	return copyImage(d.img, b.surface)
}

func copyImage(dst, src *image.RGBA) error {
	if dst.Rect.Size() != src.Rect.Size() {
		return fmt.Errorf("%w: %v <- %v", backend.ErrSizeMismatch, dst.Rect.Size(), src.Rect.Size())
	}
	draw.Copy(dst, dst.Rect.Min, src, src.Rect, draw.Src, nil)
	return nil
}

// DestroyTexture implements backend.Device.
func (b *Backend) DestroyTexture(t backend.Texture) {
	if tex, ok := t.(*Texture); ok {
		tex.destroyed = true
		tex.img = &image.RGBA{}
	}
}

// CreateTarget implements backend.Device.
func (b *Backend) CreateTarget(label string, t backend.Texture) (backend.Target, error) {
	if err := b.check(); err != nil {
		return nil, err
	}
	tex, err := b.texture(t)
	if err != nil {
		return nil, err
	}
	return &Target{label: label, tex: tex}, nil
}

func (b *Backend) targetOf(t backend.Target) (*Target, error) {
	rt, ok := t.(*Target)
	if !ok {
		return nil, fmt.Errorf("%w: %T", backend.ErrForeignResource, t)
	}
	if rt.destroyed {
		return nil, fmt.Errorf("%w: target %q", ErrDestroyed, rt.label)
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
	rt.tex = nt
	return nil
}

// DestroyTarget implements backend.Device.
func (b *Backend) DestroyTarget(t backend.Target) {
	if rt, ok := t.(*Target); ok {
		rt.destroyed = true
	}
}

// CompileProgram implements backend.Compiler. Both stages go through naga;
// the fragment entry point selects the kernel.
func (b *Backend) CompileProgram(label, vertexSource, fragmentSource string) (backend.Program, error) {
	if err := b.check(); err != nil {
		return nil, err
	}
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
	k, ok := lookupKernel(fs.EntryPoint)
	if !ok {
		return nil, fmt.Errorf("program %q: %w: %q", label, ErrNoKernel, fs.EntryPoint)
	}
	b.logger().Debug("software: program compiled",
		slog.String("program", label), slog.String("entry_point", fs.EntryPoint),
		slog.Int("locations", len(layout.Locations())))
	return &Program{
		LocationTable: backend.NewLocationTable(layout.Locations()),
		name:          label,
		entryPoint:    fs.EntryPoint,
		kernel:        k,
	}, nil
}

// SurfaceSize implements backend.Rasterizer.
func (b *Backend) SurfaceSize() (int, int) {
	return b.surface.Rect.Dx(), b.surface.Rect.Dy()
}

// ResizeSurface implements backend.Rasterizer.
func (b *Backend) ResizeSurface(width, height int) error {
	if err := b.check(); err != nil {
		return err
	}
	if err := backend.CheckSize(width, height, b.limits); err != nil {
		return err
	}
	b.surface = rescale(b.surface, width, height)
	return nil
}

// CreateGeometry implements backend.Rasterizer.
func (b *Backend) CreateGeometry(label string, positions, texCoords []float32) (backend.Geometry, error) {
	if err := b.check(); err != nil {
		return nil, err
	}
	if len(positions) != len(texCoords) || len(positions)%6 != 0 {
		return nil, fmt.Errorf("software: geometry %q: %d positions and %d texture coordinates do not form triangles",
			label, len(positions), len(texCoords))
	}
	return &Geometry{
		label:     label,
		positions: append([]float32(nil), positions...),
		texCoords: append([]float32(nil), texCoords...),
	}, nil
}

// SetViewport implements backend.Rasterizer.
func (b *Backend) SetViewport(x, y, width, height int) {
	b.state.viewport = viewport{x: x, y: y, w: width, h: height}
}

// UseProgram implements backend.Rasterizer. Bindings of the previous
// program are dropped.
func (b *Backend) UseProgram(p backend.Program) error {
	if err := b.check(); err != nil {
		return err
	}
	prog, ok := p.(*Program)
	if !ok {
		return fmt.Errorf("%w: %T", backend.ErrForeignResource, p)
	}
	b.state.program = prog
	b.state.uniforms = make(binding.Set)
	b.state.images = make(map[string]*image.RGBA)
	return nil
}

// BindGeometry implements backend.Rasterizer.
func (b *Backend) BindGeometry(g backend.Geometry) error {
	geo, ok := g.(*Geometry)
	if !ok {
		return fmt.Errorf("%w: %T", backend.ErrForeignResource, g)
	}
	b.state.geometry = geo
	return nil
}

// SetUniform implements backend.Rasterizer.
func (b *Backend) SetUniform(loc backend.Location, v binding.Value) error {
	if b.state.program == nil {
		return backend.ErrNoProgram
	}
	if err := backend.CheckKind(loc, v); err != nil {
		return err
	}
	if v.Kind() == binding.KindImage {
		return fmt.Errorf("%w: image %q must be bound with BindImage", binding.ErrKindMismatch, loc.Identifier)
	}
	b.state.uniforms[loc.Identifier] = v
	return nil
}

// BindImage implements backend.Rasterizer.
func (b *Backend) BindImage(unit int, loc backend.Location, t backend.Texture) error {
	if b.state.program == nil {
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
	b.state.images[loc.Identifier] = tex.img
	return nil
}

// BindTarget implements backend.Rasterizer. A nil target selects the
// surface.
func (b *Backend) BindTarget(t backend.Target) error {
	if t == nil {
		b.state.target = nil
		return nil
	}
	rt, err := b.targetOf(t)
	if err != nil {
		return err
	}
	b.state.target = rt
	return nil
}

// DrawTriangles implements backend.Rasterizer.
func (b *Backend) DrawTriangles(first, count int) error {
	if err := b.check(); err != nil {
		return err
	}
	s := &b.state
	if s.program == nil {
		return backend.ErrNoProgram
	}
	if s.geometry == nil || first < 0 || first+count > s.geometry.VertexCount() || count%3 != 0 {
		return fmt.Errorf("software: draw %d+%d does not fit the bound geometry", first, count)
	}

	dst := b.surface
	if s.target != nil {
		if s.target.tex.destroyed {
			return fmt.Errorf("%w: target %q texture", ErrDestroyed, s.target.label)
		}
		dst = s.target.tex.img
	}

	// Reading the image being drawn is undefined on a GPU; snapshot it so
	// every fragment sees the pre-draw contents.
	for id, img := range s.images {
		if img == dst {
			snap := image.NewRGBA(img.Rect)
			copy(snap.Pix, img.Pix)
			s.images[id] = snap
		}
	}

	vp := s.viewport
	if vp.w == 0 || vp.h == 0 {
		vp = viewport{w: dst.Rect.Dx(), h: dst.Rect.Dy()}
	}
	shadeWith := func(frag *Fragment) func(x, y int, u, v float64) {
		return func(x, y int, u, v float64) {
			frag.X, frag.Y = float32(x)+0.5, float32(y)+0.5
			frag.U, frag.V = float32(u), float32(v)
			store(dst, x, y, s.program.kernel(frag))
		}
	}

	pos, tc := s.geometry.positions, s.geometry.texCoords
	clip := vp.rect().Intersect(dst.Rect)
	covered := 0
	for i := first; i < first+count; i += 3 {
		var tri [3]vertex
		for k := range tri {
			j := 2 * (i + k)
			tri[k] = vp.project(pos[j], pos[j+1], tc[j], tc[j+1])
		}
		r, area := coverage(clip, tri[0], tri[1], tri[2])
		if area == 0 || r.Empty() {
			continue
		}
		bands := parallel.Bands(r, b.pool.Workers(), minBandRows)
		if len(bands) == 1 || r.Dx()*r.Dy() < minParallelPixels {
			covered += scan(r, area, tri[0], tri[1], tri[2], shadeWith(&Fragment{state: s}))
			continue
		}
		counts := make([]int, len(bands))
		jobs := make([]func(), len(bands))
		for k, band := range bands {
			jobs[k] = func() {
				counts[k] = scan(band, area, tri[0], tri[1], tri[2], shadeWith(&Fragment{state: s}))
			}
		}
		b.pool.Run(jobs)
		for _, n := range counts {
			covered += n
		}
	}
	b.logger().Debug("software: draw",
		slog.String("program", s.program.name), slog.Int("fragments", covered))
	return nil
}

// ReadSurface implements backend.SurfaceReader.
func (b *Backend) ReadSurface() (*image.RGBA, error) {
	if err := b.check(); err != nil {
		return nil, err
	}
	return cloneRGBA(b.surface), nil
}

// ReadTexture implements backend.TextureReader.
func (b *Backend) ReadTexture(t backend.Texture) (*image.RGBA, error) {
	tex, err := b.texture(t)
	if err != nil {
		return nil, err
	}
	return cloneRGBA(tex.img), nil
}

func cloneRGBA(src *image.RGBA) *image.RGBA {
	dst := image.NewRGBA(src.Rect)
	copy(dst.Pix, src.Pix)
	return dst
}

var (
	_ backend.Backend       = (*Backend)(nil)
	_ backend.SurfaceReader = (*Backend)(nil)
	_ backend.TextureReader = (*Backend)(nil)
)
