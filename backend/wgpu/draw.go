package wgpu

import (
	"encoding/binary"
	"fmt"
	"image"
	"log/slog"
	"math"
	"unsafe"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"

	"github.com/gogpu/videograph/backend"
	"github.com/gogpu/videograph/binding"
)

// copyPitchAlignment is the BytesPerRow alignment of texture to buffer
// copies.
const copyPitchAlignment = 256

func floatBytes(fs []float32) []byte {
	out := make([]byte, 4*len(fs))
	for i, f := range fs {
		binary.LittleEndian.PutUint32(out[4*i:], math.Float32bits(f))
	}
	return out
}

// DrawTriangles implements backend.Rasterizer. It records one render pass
// into the bound target and submits it. Uniforms are uploaded into
// buffers owned by the submission.
func (b *Backend) DrawTriangles(first, count int) error {
	if err := b.check(); err != nil {
		return err
	}
	s := &b.state
	p := s.program
	if p == nil {
		return backend.ErrNoProgram
	}
	if s.geometry == nil || first < 0 || first+count > s.geometry.VertexCount() || count%3 != 0 {
		return fmt.Errorf("wgpu: draw %d+%d does not fit the bound geometry", first, count)
	}
	dst := b.surface
	if s.target != nil {
		if s.target.tex.destroyed {
			return fmt.Errorf("%w: target %q texture", ErrDestroyed, s.target.label)
		}
		dst = s.target.tex
	}

	enc, err := b.encoder("videograph_draw")
	if err != nil {
		return err
	}
	var owned []func()
	releaseOwned := func() {
		for _, f := range owned {
			f()
		}
	}
	fail := func(err error) error {
		enc.DiscardEncoding()
		releaseOwned()
		return err
	}

	entries := make([]gputypes.BindGroupEntry, 0, len(p.layout.Resources)+len(p.layout.Samplers))
	for _, r := range p.layout.Resources {
		if r.Kind == binding.KindImage {
			tex := s.images[r.Name]
			switch {
			case tex == nil:
				tex = b.blank
			case tex == dst:
				// A pass cannot sample its own attachment; read a copy.
				snap, err := b.snapshot(enc, dst)
				if err != nil {
					return fail(err)
				}
				owned = append(owned, func() { b.destroyHAL(snap) })
				tex = snap
			}
			use(enc, tex, gputypes.TextureUsageTextureBinding)
			entries = append(entries, gputypes.BindGroupEntry{
				Binding:  r.Binding,
				Resource: gputypes.TextureViewBinding{TextureView: tex.view.NativeHandle()},
			})
			continue
		}

		data, ok := s.uniforms[r.Name]
		if !ok {
			data = make([]byte, r.Size)
		}
		buf, err := b.device.CreateBuffer(&hal.BufferDescriptor{
			Label: p.name + "_" + r.Name,
			Size:  r.Size,
			Usage: gputypes.BufferUsageUniform | gputypes.BufferUsageCopyDst,
		})
		if err != nil {
			return fail(fmt.Errorf("wgpu: create uniform %q: %w", r.Name, err))
		}
		owned = append(owned, func() { b.device.DestroyBuffer(buf) })
		if err := b.queue.WriteBuffer(buf, 0, data); err != nil {
			return fail(fmt.Errorf("wgpu: upload uniform %q: %w", r.Name, err))
		}
		entries = append(entries, gputypes.BindGroupEntry{
			Binding:  r.Binding,
			Resource: gputypes.BufferBinding{Buffer: buf.NativeHandle(), Offset: 0, Size: r.Size},
		})
	}
	for _, sm := range p.layout.Samplers {
		entries = append(entries, gputypes.BindGroupEntry{
			Binding:  sm.Binding,
			Resource: gputypes.SamplerBinding{Sampler: b.sampler.NativeHandle()},
		})
	}

	group, err := b.device.CreateBindGroup(&hal.BindGroupDescriptor{
		Label:   p.name + "_bind",
		Layout:  p.bindLayout,
		Entries: entries,
	})
	if err != nil {
		return fail(fmt.Errorf("wgpu: create bind group: %w", err))
	}
	owned = append(owned, func() { b.device.DestroyBindGroup(group) })

	use(enc, dst, gputypes.TextureUsageRenderAttachment)
	rp := enc.BeginRenderPass(&hal.RenderPassDescriptor{
		Label: p.name,
		ColorAttachments: []hal.RenderPassColorAttachment{{
			View:    dst.view,
			LoadOp:  gputypes.LoadOpLoad,
			StoreOp: gputypes.StoreOpStore,
		}},
	})
	vp := s.viewport
	if !s.hasViewport {
		vp = [4]int{0, 0, dst.width, dst.height}
	}
	rp.SetPipeline(p.pipeline)
	rp.SetBindGroup(0, group, nil)
	rp.SetVertexBuffer(0, s.geometry.buf, 0)
	rp.SetViewport(float32(vp[0]), float32(vp[1]), float32(vp[2]), float32(vp[3]), 0, 1)
	rp.Draw(uint32(count), 1, uint32(first), 0)
	rp.End()

	if err := b.submit(enc, releaseOwned); err != nil {
		return err
	}
	b.logger().Debug("wgpu: draw",
		slog.String("program", p.name),
		slog.String("target", dst.label),
		slog.Int("vertices", count))
	return nil
}

// snapshot records a copy of t into a new texture the caller owns.
func (b *Backend) snapshot(enc hal.CommandEncoder, t *Texture) (*Texture, error) {
	tex, view, err := b.createHAL(t.label+"_snapshot", t.width, t.height)
	if err != nil {
		return nil, err
	}
	snap := &Texture{label: t.label + "_snapshot", tex: tex, view: view, width: t.width, height: t.height}
	copyRegion(enc, snap, t, t.width, t.height)
	return snap, nil
}

// ReadSurface implements backend.SurfaceReader. It blocks until the GPU
// is idle.
func (b *Backend) ReadSurface() (*image.RGBA, error) {
	if err := b.check(); err != nil {
		return nil, err
	}
	return b.read(b.surface)
}

// ReadTexture implements backend.TextureReader. It blocks until the GPU
// is idle.
func (b *Backend) ReadTexture(t backend.Texture) (*image.RGBA, error) {
	if err := b.check(); err != nil {
		return nil, err
	}
	tex, err := b.texture(t)
	if err != nil {
		return nil, err
	}
	return b.read(tex)
}

func (b *Backend) read(t *Texture) (*image.RGBA, error) {
	w, h := uint32(t.width), uint32(t.height)
	bytesPerRow := w * 4
	aligned := (bytesPerRow + copyPitchAlignment - 1) &^ (copyPitchAlignment - 1)
	size := uint64(aligned) * uint64(h)

	staging, err := b.device.CreateBuffer(&hal.BufferDescriptor{
		Label: t.label + "_readback",
		Size:  size,
		Usage: gputypes.BufferUsageMapRead | gputypes.BufferUsageCopyDst,
	})
	if err != nil {
		return nil, fmt.Errorf("wgpu: create staging buffer: %w", err)
	}
	defer b.device.DestroyBuffer(staging)

	enc, err := b.encoder(t.label + "_readback")
	if err != nil {
		return nil, err
	}
	use(enc, t, gputypes.TextureUsageCopySrc)
	enc.CopyTextureToBuffer(t.tex, staging, []hal.BufferTextureCopy{{
		BufferLayout: hal.ImageDataLayout{Offset: 0, BytesPerRow: aligned, RowsPerImage: h},
		TextureBase:  hal.ImageCopyTexture{Texture: t.tex, Aspect: gputypes.TextureAspectAll},
		Size:         hal.Extent3D{Width: w, Height: h, DepthOrArrayLayers: 1},
	}})
	if err := b.submit(enc, nil); err != nil {
		return nil, err
	}
	if err := b.device.WaitIdle(); err != nil {
		return nil, fmt.Errorf("wgpu: wait idle: %w", err)
	}
	b.collect()

	m, err := b.device.MapBuffer(staging, 0, size)
	if err != nil {
		return nil, fmt.Errorf("wgpu: map staging buffer: %w", err)
	}
	raw := unsafe.Slice((*byte)(m.Ptr), size)
	img := image.NewRGBA(image.Rect(0, 0, t.width, t.height))
	for row := range int(h) {
		src := row * int(aligned)
		copy(img.Pix[row*img.Stride:], raw[src:src+int(bytesPerRow)])
	}
	if err := b.device.UnmapBuffer(staging); err != nil {
		return nil, fmt.Errorf("wgpu: unmap staging buffer: %w", err)
	}
	return img, nil
}
