package wgpu

import (
	"fmt"
	"log/slog"
	"sync"

	"github.com/gogpu/gpucontext"
	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"
	_ "github.com/gogpu/wgpu/hal/vulkan" // register the Vulkan HAL

	"github.com/gogpu/videograph/backend"
	"github.com/gogpu/videograph/binding"
	"github.com/gogpu/videograph/shader"
)

func init() {
	backend.Register(backend.NameWGPU, func(width, height int) (backend.Backend, error) {
		hb, err := hal.SelectBestBackend()
		if err != nil {
			return nil, fmt.Errorf("%w: %w", backend.ErrBackendNotAvailable, err)
		}
		// The empty variant is a test stand-in and produces no pixels.
		if hb.Variant() == gputypes.BackendEmpty {
			return nil, fmt.Errorf("%w: no hardware HAL backend", backend.ErrBackendNotAvailable)
		}
		return Open(hb.Variant(), width, height)
	})
}

// drawState is the pipeline state set between UseProgram and
// DrawTriangles.
type drawState struct {
	program     *Program
	geometry    *Geometry
	target      *Target
	viewport    [4]int
	hasViewport bool
	uniforms    map[string][]byte
	images      map[string]*Texture
}

// inflight is work to release once a submission completes.
type inflight struct {
	index   uint64
	release func()
}

// Backend renders with a HAL device and queue.
//
// A Backend is driven from one goroutine, except SetLogger which may be
// called at any time.
type Backend struct {
	device   hal.Device
	queue    hal.Queue
	instance hal.Instance
	owned    bool

	limits     backend.Limits
	modules    *shader.Cache
	sampler    hal.Sampler
	surface    *Texture
	blank      *Texture
	textures   map[*Texture]struct{}
	programs   []*Program
	geometries []*Geometry
	state      drawState
	inflight   []inflight
	closed     bool

	mu  sync.Mutex
	log *slog.Logger
}

// New returns a backend on an existing device and queue with a
// width x height surface. The caller keeps ownership of device and queue.
func New(device hal.Device, queue hal.Queue, width, height int) (*Backend, error) {
	if device == nil || queue == nil {
		return nil, ErrProvider
	}
	limits := backend.DefaultLimits()
	if err := backend.CheckSize(width, height, limits); err != nil {
		return nil, err
	}
	b := &Backend{
		device:   device,
		queue:    queue,
		limits:   limits,
		modules:  shader.NewCache(0),
		textures: make(map[*Texture]struct{}),
		log:      slog.New(nopHandler{}),
	}

	sampler, err := device.CreateSampler(&hal.SamplerDescriptor{
		Label:        "videograph_linear_clamp",
		AddressModeU: gputypes.AddressModeClampToEdge,
		AddressModeV: gputypes.AddressModeClampToEdge,
		AddressModeW: gputypes.AddressModeClampToEdge,
		MagFilter:    gputypes.FilterModeLinear,
		MinFilter:    gputypes.FilterModeLinear,
		MipmapFilter: gputypes.FilterModeNearest,
	})
	if err != nil {
		return nil, fmt.Errorf("wgpu: create sampler: %w", err)
	}
	b.sampler = sampler

	if b.surface, err = b.newTexture("videograph/surface", width, height); err != nil {
		b.release()
		return nil, err
	}
	// Unbound texture slots sample a 1x1 transparent texture.
	if b.blank, err = b.newTexture("videograph/blank", 1, 1); err != nil {
		b.release()
		return nil, err
	}
	return b, nil
}

// Open creates a device on the first suitable adapter of the HAL backend
// variant. Discrete and integrated GPUs are preferred. The returned
// backend owns the device and destroys it on Close.
func Open(variant gputypes.Backend, width, height int) (*Backend, error) {
	hb, ok := hal.GetBackend(variant)
	if !ok {
		return nil, fmt.Errorf("%w: HAL %s not registered", backend.ErrBackendNotAvailable, variant)
	}
	instance, err := hb.CreateInstance(&hal.InstanceDescriptor{Flags: 0})
	if err != nil {
		return nil, fmt.Errorf("wgpu: create instance: %w", err)
	}

	adapters := instance.EnumerateAdapters(nil)
	if len(adapters) == 0 {
		instance.Destroy()
		return nil, ErrNoAdapter
	}
	selected := &adapters[0]
	for i := range adapters {
		if adapters[i].Info.DeviceType == gputypes.DeviceTypeDiscreteGPU ||
			adapters[i].Info.DeviceType == gputypes.DeviceTypeIntegratedGPU {
			selected = &adapters[i]
			break
		}
	}

	od, err := selected.Adapter.Open(gputypes.Features(0), gputypes.DefaultLimits())
	if err != nil {
		instance.Destroy()
		return nil, fmt.Errorf("wgpu: open device: %w", err)
	}
	b, err := New(od.Device, od.Queue, width, height)
	if err != nil {
		od.Device.Destroy()
		instance.Destroy()
		return nil, err
	}
	b.instance = instance
	b.owned = true

	if n := selected.Capabilities.Limits.MaxTextureDimension2D; n > 0 {
		b.limits.MaxTextureDimension = int(n)
	}
	if n := selected.Capabilities.Limits.MaxSampledTexturesPerShaderStage; n > 0 {
		b.limits.MaxImageUnits = int(n)
	}
	b.logger().Info("wgpu: device opened",
		slog.String("adapter", selected.Info.Name),
		slog.String("hal", variant.String()))
	return b, nil
}

// NewFromProvider shares the device of a host application. The provider
// must expose HalDevice() any and HalQueue() any returning hal.Device and
// hal.Queue, or return them from Device and Queue directly.
func NewFromProvider(provider gpucontext.DeviceProvider, width, height int) (*Backend, error) {
	type halProvider interface {
		HalDevice() any
		HalQueue() any
	}
	var dev, q any
	if hp, ok := provider.(halProvider); ok {
		dev, q = hp.HalDevice(), hp.HalQueue()
	} else {
		dev, q = provider.Device(), provider.Queue()
	}
	device, ok := dev.(hal.Device)
	if !ok || device == nil {
		return nil, fmt.Errorf("%w: device is %T", ErrProvider, dev)
	}
	queue, ok := q.(hal.Queue)
	if !ok || queue == nil {
		return nil, fmt.Errorf("%w: queue is %T", ErrProvider, q)
	}
	b, err := New(device, queue, width, height)
	if err != nil {
		return nil, err
	}
	b.logger().Info("wgpu: using shared device",
		slog.String("adapter", provider.AdapterInfo().Name))
	return b, nil
}

// Name implements backend.Backend.
func (b *Backend) Name() string { return backend.NameWGPU }

// Limits implements backend.Backend.
func (b *Backend) Limits() backend.Limits { return b.limits }

// Close implements backend.Backend. It waits for the GPU, releases every
// resource the backend created and, when the backend was opened with
// Open, the device itself.
func (b *Backend) Close() error {
	if b.closed {
		return nil
	}
	b.closed = true
	b.state = drawState{}
	err := b.device.WaitIdle()
	b.release()
	if err != nil {
		return fmt.Errorf("wgpu: wait idle: %w", err)
	}
	return nil
}

func (b *Backend) release() {
	for _, f := range b.inflight {
		f.release()
	}
	b.inflight = nil
	for _, p := range b.programs {
		b.destroyProgram(p)
	}
	b.programs = nil
	for _, g := range b.geometries {
		b.device.DestroyBuffer(g.buf)
	}
	b.geometries = nil
	for t := range b.textures {
		b.destroyHAL(t)
	}
	clear(b.textures)
	if b.sampler != nil {
		b.device.DestroySampler(b.sampler)
		b.sampler = nil
	}
	if b.owned {
		b.device.Destroy()
		if b.instance != nil {
			b.instance.Destroy()
		}
	}
}

func (b *Backend) check() error {
	if b.closed {
		return backend.ErrClosed
	}
	return nil
}

// collect releases the work of completed submissions.
func (b *Backend) collect() {
	done := b.queue.PollCompleted()
	keep := b.inflight[:0]
	for _, f := range b.inflight {
		if f.index <= done {
			f.release()
			continue
		}
		keep = append(keep, f)
	}
	b.inflight = keep
}

func (b *Backend) encoder(label string) (hal.CommandEncoder, error) {
	enc, err := b.device.CreateCommandEncoder(&hal.CommandEncoderDescriptor{Label: label})
	if err != nil {
		return nil, fmt.Errorf("wgpu: create encoder: %w", err)
	}
	if err := enc.BeginEncoding(label); err != nil {
		return nil, fmt.Errorf("wgpu: begin encoding: %w", err)
	}
	return enc, nil
}

// submit ends enc, submits it and schedules release for when the GPU is
// done with it.
func (b *Backend) submit(enc hal.CommandEncoder, release func()) error {
	cmd, err := enc.EndEncoding()
	if err != nil {
		if release != nil {
			release()
		}
		return fmt.Errorf("wgpu: end encoding: %w", err)
	}
	index, err := b.queue.Submit([]hal.CommandBuffer{cmd})
	if err != nil {
		b.device.FreeCommandBuffer(cmd)
		if release != nil {
			release()
		}
		return fmt.Errorf("wgpu: submit: %w", err)
	}
	b.inflight = append(b.inflight, inflight{index: index, release: func() {
		b.device.FreeCommandBuffer(cmd)
		if release != nil {
			release()
		}
	}})
	b.collect()
	return nil
}

// use records a barrier moving t to usage if it is not already there.
func use(enc hal.CommandEncoder, t *Texture, usage gputypes.TextureUsage) {
	if t.usage == usage {
		return
	}
	enc.TransitionTextures([]hal.TextureBarrier{{
		Texture: t.tex,
		Range:   hal.TextureRange{Aspect: gputypes.TextureAspectAll},
		Usage:   hal.TextureUsageTransition{OldUsage: t.usage, NewUsage: usage},
	}})
	t.usage = usage
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

func (b *Backend) createHAL(label string, width, height int) (hal.Texture, hal.TextureView, error) {
	tex, err := b.device.CreateTexture(&hal.TextureDescriptor{
		Label:         label,
		Size:          hal.Extent3D{Width: uint32(width), Height: uint32(height), DepthOrArrayLayers: 1},
		MipLevelCount: 1,
		SampleCount:   1,
		Dimension:     gputypes.TextureDimension2D,
		Format:        textureFormat,
		Usage:         textureUsage,
	})
	if err != nil {
		return nil, nil, fmt.Errorf("wgpu: create texture %q: %w", label, err)
	}
	view, err := b.device.CreateTextureView(tex, &hal.TextureViewDescriptor{
		Label:           label,
		Format:          textureFormat,
		Dimension:       gputypes.TextureViewDimension2D,
		Aspect:          gputypes.TextureAspectAll,
		MipLevelCount:   1,
		ArrayLayerCount: 1,
	})
	if err != nil {
		b.device.DestroyTexture(tex)
		return nil, nil, fmt.Errorf("wgpu: create view %q: %w", label, err)
	}
	return tex, view, nil
}

func (b *Backend) destroyHAL(t *Texture) {
	if t.view != nil {
		b.device.DestroyTextureView(t.view)
		t.view = nil
	}
	if t.tex != nil {
		b.device.DestroyTexture(t.tex)
		t.tex = nil
	}
}

// newTexture creates a texture cleared to transparent black.
func (b *Backend) newTexture(label string, width, height int) (*Texture, error) {
	tex, view, err := b.createHAL(label, width, height)
	if err != nil {
		return nil, err
	}
	t := &Texture{label: label, tex: tex, view: view, width: width, height: height}
	b.textures[t] = struct{}{}

	enc, err := b.encoder(label + "_clear")
	if err != nil {
		return nil, err
	}
	clearPass(enc, t)
	if err := b.submit(enc, nil); err != nil {
		return nil, err
	}
	return t, nil
}

func clearPass(enc hal.CommandEncoder, t *Texture) {
	use(enc, t, gputypes.TextureUsageRenderAttachment)
	rp := enc.BeginRenderPass(&hal.RenderPassDescriptor{
		Label: t.label + "_clear",
		ColorAttachments: []hal.RenderPassColorAttachment{{
			View:       t.view,
			LoadOp:     gputypes.LoadOpClear,
			StoreOp:    gputypes.StoreOpStore,
			ClearValue: gputypes.Color{},
		}},
	})
	rp.End()
}

func copyRegion(enc hal.CommandEncoder, dst, src *Texture, width, height int) {
	use(enc, src, gputypes.TextureUsageCopySrc)
	use(enc, dst, gputypes.TextureUsageCopyDst)
	enc.CopyTextureToTexture(src.tex, dst.tex, []hal.TextureCopy{{
		SrcBase: hal.ImageCopyTexture{Texture: src.tex, Aspect: gputypes.TextureAspectAll},
		DstBase: hal.ImageCopyTexture{Texture: dst.tex, Aspect: gputypes.TextureAspectAll},
		Size:    hal.Extent3D{Width: uint32(width), Height: uint32(height), DepthOrArrayLayers: 1},
	}})
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
	return b.newTexture(label, width, height)
}

// ResizeTexture implements backend.Device. The region both sizes share is
// kept; the rest is transparent black.
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
	return b.resize(tex, width, height)
}

func (b *Backend) resize(t *Texture, width, height int) error {
	if t.width == width && t.height == height {
		return nil
	}
	ht, hv, err := b.createHAL(t.label, width, height)
	if err != nil {
		return err
	}
	old := &Texture{label: t.label, tex: t.tex, view: t.view, width: t.width, height: t.height, usage: t.usage}
	next := &Texture{label: t.label, tex: ht, view: hv, width: width, height: height}

	enc, err := b.encoder(t.label + "_resize")
	if err != nil {
		b.destroyHAL(next)
		return err
	}
	clearPass(enc, next)
	copyRegion(enc, next, old, min(width, old.width), min(height, old.height))

	t.tex, t.view, t.width, t.height, t.usage = next.tex, next.view, width, height, next.usage
	return b.submit(enc, func() { b.destroyHAL(old) })
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
	return b.copy(d, s)
}

func (b *Backend) copy(d, s *Texture) error {
	if d.width != s.width || d.height != s.height {
		return fmt.Errorf("%w: %dx%d <- %dx%d", backend.ErrSizeMismatch, d.width, d.height, s.width, s.height)
	}
	enc, err := b.encoder("videograph_copy")
	if err != nil {
		return err
	}
	copyRegion(enc, d, s, s.width, s.height)
	return b.submit(enc, nil)
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
	return b.copy(d, b.surface)
}

// DestroyTexture implements backend.Device.
func (b *Backend) DestroyTexture(t backend.Texture) {
	tex, ok := t.(*Texture)
	if !ok || tex.destroyed {
		return
	}
	tex.destroyed = true
	if _, owned := b.textures[tex]; !owned {
		return
	}
	delete(b.textures, tex)
	old := &Texture{tex: tex.tex, view: tex.view}
	tex.tex, tex.view = nil, nil
	// Submitted draws may still sample it.
	b.inflight = append(b.inflight, inflight{index: b.lastSubmitted(), release: func() { b.destroyHAL(old) }})
}

func (b *Backend) lastSubmitted() uint64 {
	var n uint64
	for _, f := range b.inflight {
		n = max(n, f.index)
	}
	return n
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

// SurfaceSize implements backend.Rasterizer.
func (b *Backend) SurfaceSize() (int, int) {
	return b.surface.width, b.surface.height
}

// ResizeSurface implements backend.Rasterizer.
func (b *Backend) ResizeSurface(width, height int) error {
	if err := b.check(); err != nil {
		return err
	}
	if err := backend.CheckSize(width, height, b.limits); err != nil {
		return err
	}
	return b.resize(b.surface, width, height)
}

// CreateGeometry implements backend.Rasterizer. Positions and texture
// coordinates are interleaved into one vertex buffer.
func (b *Backend) CreateGeometry(label string, positions, texCoords []float32) (backend.Geometry, error) {
	if err := b.check(); err != nil {
		return nil, err
	}
	if len(positions) != len(texCoords) || len(positions)%6 != 0 {
		return nil, fmt.Errorf("wgpu: geometry %q: %d positions and %d texture coordinates do not form triangles",
			label, len(positions), len(texCoords))
	}
	n := len(positions) / 2
	data := make([]float32, 0, 4*n)
	for i := range n {
		data = append(data, positions[2*i], positions[2*i+1], texCoords[2*i], texCoords[2*i+1])
	}
	raw := floatBytes(data)

	buf, err := b.device.CreateBuffer(&hal.BufferDescriptor{
		Label: label,
		Size:  uint64(len(raw)),
		Usage: gputypes.BufferUsageVertex | gputypes.BufferUsageCopyDst,
	})
	if err != nil {
		return nil, fmt.Errorf("wgpu: create geometry %q: %w", label, err)
	}
	if err := b.queue.WriteBuffer(buf, 0, raw); err != nil {
		b.device.DestroyBuffer(buf)
		return nil, fmt.Errorf("wgpu: upload geometry %q: %w", label, err)
	}
	g := &Geometry{label: label, buf: buf, count: n}
	b.geometries = append(b.geometries, g)
	return g, nil
}

// SetViewport implements backend.Rasterizer.
func (b *Backend) SetViewport(x, y, width, height int) {
	b.state.viewport = [4]int{x, y, width, height}
	b.state.hasViewport = width > 0 && height > 0
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
	b.state.uniforms = make(map[string][]byte)
	b.state.images = make(map[string]*Texture)
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

// SetUniform implements backend.Rasterizer. The value is uploaded when
// the next draw is recorded.
func (b *Backend) SetUniform(loc backend.Location, v binding.Value) error {
	p := b.state.program
	if p == nil {
		return backend.ErrNoProgram
	}
	if err := backend.CheckKind(loc, v); err != nil {
		return err
	}
	if v.Kind() == binding.KindImage {
		return fmt.Errorf("%w: image %q must be bound with BindImage", binding.ErrKindMismatch, loc.Identifier)
	}
	r, ok := p.layout.Resource(loc.Identifier)
	if !ok {
		return fmt.Errorf("%w: %q", backend.ErrLocationNotFound, loc.Identifier)
	}
	data, err := encodeUniform(v, r.Size)
	if err != nil {
		return fmt.Errorf("uniform %q: %w", loc.Identifier, err)
	}
	b.state.uniforms[loc.Identifier] = data
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
	b.state.images[loc.Identifier] = tex
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

var (
	_ backend.Backend       = (*Backend)(nil)
	_ backend.SurfaceReader = (*Backend)(nil)
	_ backend.TextureReader = (*Backend)(nil)
)
