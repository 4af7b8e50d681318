package wgpu

import (
	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"

	"github.com/gogpu/videograph/backend"
	"github.com/gogpu/videograph/shader"
)

// textureFormat is the format of every texture and of the surface.
const textureFormat = gputypes.TextureFormatRGBA8Unorm

const textureUsage = gputypes.TextureUsageTextureBinding |
	gputypes.TextureUsageRenderAttachment |
	gputypes.TextureUsageCopySrc |
	gputypes.TextureUsageCopyDst

// Texture is a GPU texture with its default view. Resizing replaces the
// HAL objects but keeps the *Texture.
type Texture struct {
	label         string
	tex           hal.Texture
	view          hal.TextureView
	width, height int
	usage         gputypes.TextureUsage
	destroyed     bool
}

// Label returns the debug label.
func (t *Texture) Label() string { return t.label }

// Width implements binding.Image.
func (t *Texture) Width() int { return t.width }

// Height implements binding.Image.
func (t *Texture) Height() int { return t.height }

// Format implements backend.Texture.
func (t *Texture) Format() gputypes.TextureFormat { return textureFormat }

// Target renders into a Texture.
type Target struct {
	label     string
	tex       *Texture
	destroyed bool
}

// Texture implements backend.Target.
func (t *Target) Texture() backend.Texture { return t.tex }

// vertexStride is the size of one interleaved position + texture
// coordinate vertex.
const vertexStride = 4 * 4

// Geometry is an interleaved vertex buffer.
type Geometry struct {
	label string
	buf   hal.Buffer
	count int
}

// VertexCount implements backend.Geometry.
func (g *Geometry) VertexCount() int { return g.count }

// Program is a render pipeline and the bind group layout of its resources.
type Program struct {
	backend.LocationTable
	name   string
	layout *shader.Layout

	vs, fs         hal.ShaderModule
	bindLayout     hal.BindGroupLayout
	pipelineLayout hal.PipelineLayout
	pipeline       hal.RenderPipeline
}

// Name implements backend.Program.
func (p *Program) Name() string { return p.name }
