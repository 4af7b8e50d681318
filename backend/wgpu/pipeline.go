package wgpu

import (
	"fmt"
	"log/slog"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"

	"github.com/gogpu/videograph/backend"
	"github.com/gogpu/videograph/binding"
	"github.com/gogpu/videograph/shader"
)

const visibility = gputypes.ShaderStageVertex | gputypes.ShaderStageFragment

// quadVertexLayout matches the interleaved buffers of CreateGeometry:
// position at @location(0), texture coordinate at @location(1).
func quadVertexLayout() []gputypes.VertexBufferLayout {
	return []gputypes.VertexBufferLayout{{
		ArrayStride: vertexStride,
		StepMode:    gputypes.VertexStepModeVertex,
		Attributes: []gputypes.VertexAttribute{
			{Format: gputypes.VertexFormatFloat32x2, Offset: 0, ShaderLocation: 0},
			{Format: gputypes.VertexFormatFloat32x2, Offset: 8, ShaderLocation: 1},
		},
	}}
}

// layoutEntries describes every resource and sampler of l at @group(0).
func layoutEntries(l *shader.Layout) []gputypes.BindGroupLayoutEntry {
	entries := make([]gputypes.BindGroupLayoutEntry, 0, len(l.Resources)+len(l.Samplers))
	for _, r := range l.Resources {
		e := gputypes.BindGroupLayoutEntry{Binding: r.Binding, Visibility: visibility}
		if r.Kind == binding.KindImage {
			e.Texture = &gputypes.TextureBindingLayout{
				SampleType:    gputypes.TextureSampleTypeFloat,
				ViewDimension: gputypes.TextureViewDimension2D,
			}
		} else {
			e.Buffer = &gputypes.BufferBindingLayout{
				Type:           gputypes.BufferBindingTypeUniform,
				MinBindingSize: r.Size,
			}
		}
		entries = append(entries, e)
	}
	for _, s := range l.Samplers {
		entries = append(entries, gputypes.BindGroupLayoutEntry{
			Binding:    s.Binding,
			Visibility: visibility,
			Sampler:    &gputypes.SamplerBindingLayout{Type: gputypes.SamplerBindingTypeFiltering},
		})
	}
	return entries
}

// CompileProgram implements backend.Compiler. Both stages are validated
// and reflected with naga, then turned into one render pipeline writing
// RGBA8Unorm.
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

	p := &Program{
		LocationTable: backend.NewLocationTable(layout.Locations()),
		name:          label,
		layout:        layout,
	}
	if err := b.buildPipeline(p, vs, fs); err != nil {
		b.destroyProgram(p)
		return nil, fmt.Errorf("program %q: %w", label, err)
	}
	b.programs = append(b.programs, p)

	b.logger().Debug("wgpu: program compiled",
		slog.String("program", label),
		slog.String("entry_point", fs.EntryPoint),
		slog.Int("locations", len(layout.Resources)),
		slog.Int("samplers", len(layout.Samplers)))
	return p, nil
}

func (b *Backend) buildPipeline(p *Program, vs, fs *shader.Module) error {
	var err error
	p.vs, err = b.device.CreateShaderModule(&hal.ShaderModuleDescriptor{
		Label:  p.name + "_vs",
		Source: hal.ShaderSource{WGSL: vs.Source, SPIRV: vs.SPIRV},
	})
	if err != nil {
		return fmt.Errorf("create vertex module: %w", err)
	}
	p.fs, err = b.device.CreateShaderModule(&hal.ShaderModuleDescriptor{
		Label:  p.name + "_fs",
		Source: hal.ShaderSource{WGSL: fs.Source, SPIRV: fs.SPIRV},
	})
	if err != nil {
		return fmt.Errorf("create fragment module: %w", err)
	}

	p.bindLayout, err = b.device.CreateBindGroupLayout(&hal.BindGroupLayoutDescriptor{
		Label:   p.name + "_bind_layout",
		Entries: layoutEntries(p.layout),
	})
	if err != nil {
		return fmt.Errorf("create bind group layout: %w", err)
	}
	p.pipelineLayout, err = b.device.CreatePipelineLayout(&hal.PipelineLayoutDescriptor{
		Label:            p.name + "_pipe_layout",
		BindGroupLayouts: []hal.BindGroupLayout{p.bindLayout},
	})
	if err != nil {
		return fmt.Errorf("create pipeline layout: %w", err)
	}

	p.pipeline, err = b.device.CreateRenderPipeline(&hal.RenderPipelineDescriptor{
		Label:  p.name + "_pipeline",
		Layout: p.pipelineLayout,
		Vertex: hal.VertexState{
			Module:     p.vs,
			EntryPoint: vs.EntryPoint,
			Buffers:    quadVertexLayout(),
		},
		Fragment: &hal.FragmentState{
			Module:     p.fs,
			EntryPoint: fs.EntryPoint,
			Targets: []gputypes.ColorTargetState{{
				Format:    textureFormat,
				WriteMask: gputypes.ColorWriteMaskAll,
			}},
		},
		Primitive: gputypes.PrimitiveState{
			Topology: gputypes.PrimitiveTopologyTriangleList,
			CullMode: gputypes.CullModeNone,
		},
		Multisample: gputypes.MultisampleState{
			Count: 1,
			Mask:  0xFFFFFFFF,
		},
	})
	if err != nil {
		return fmt.Errorf("create render pipeline: %w", err)
	}
	return nil
}

func (b *Backend) destroyProgram(p *Program) {
	if p.pipeline != nil {
		b.device.DestroyRenderPipeline(p.pipeline)
		p.pipeline = nil
	}
	if p.pipelineLayout != nil {
		b.device.DestroyPipelineLayout(p.pipelineLayout)
		p.pipelineLayout = nil
	}
	if p.bindLayout != nil {
		b.device.DestroyBindGroupLayout(p.bindLayout)
		p.bindLayout = nil
	}
	if p.fs != nil {
		b.device.DestroyShaderModule(p.fs)
		p.fs = nil
	}
	if p.vs != nil {
		b.device.DestroyShaderModule(p.vs)
		p.vs = nil
	}
}
