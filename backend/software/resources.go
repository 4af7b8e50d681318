package software

import (
	"image"

	"github.com/gogpu/gputypes"

	"github.com/gogpu/videograph/backend"
)

// Texture is a CPU-resident RGBA image.
type Texture struct {
	label     string
	img       *image.RGBA
	destroyed bool
}

// Label returns the label the texture was created with.
func (t *Texture) Label() string { return t.label }

// Width implements binding.Image.
func (t *Texture) Width() int { return t.img.Rect.Dx() }

// Height implements binding.Image.
func (t *Texture) Height() int { return t.img.Rect.Dy() }

// Format implements backend.Texture.
func (t *Texture) Format() gputypes.TextureFormat { return gputypes.TextureFormatRGBA8Unorm }

// Image returns the texture's pixels. The image is replaced on resize.
func (t *Texture) Image() *image.RGBA { return t.img }

// Target renders into a Texture.
type Target struct {
	label     string
	tex       *Texture
	destroyed bool
}

// Texture implements backend.Target.
func (rt *Target) Texture() backend.Texture { return rt.tex }

// Geometry is a triangle list in clip space with texture coordinates.
type Geometry struct {
	label     string
	positions []float32
	texCoords []float32
}

// VertexCount implements backend.Geometry.
func (g *Geometry) VertexCount() int { return len(g.positions) / 2 }

// Program pairs reflected locations with the kernel of the fragment entry
// point.
type Program struct {
	backend.LocationTable
	name       string
	entryPoint string
	kernel     Kernel
}

// Name implements backend.Program.
func (p *Program) Name() string { return p.name }

// EntryPoint returns the fragment entry point the kernel was chosen for.
func (p *Program) EntryPoint() string { return p.entryPoint }
