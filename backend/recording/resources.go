package recording

import (
	"github.com/gogpu/gputypes"

	"github.com/gogpu/videograph/backend"
)

// Texture is a recorded texture. Instead of pixels it carries a content
// tag naming the draw that last produced its contents.
type Texture struct {
	id            int
	label         string
	width, height int
	content       string
	destroyed     bool
}

// ID returns the texture's serial id (1-based).
func (t *Texture) ID() int { return t.id }

// Label returns the creation label.
func (t *Texture) Label() string { return t.label }

// Width returns the width in pixels.
func (t *Texture) Width() int { return t.width }

// Height returns the height in pixels.
func (t *Texture) Height() int { return t.height }

// Format reports RGBA8.
func (t *Texture) Format() gputypes.TextureFormat { return gputypes.TextureFormatRGBA8Unorm }

// Content returns the content tag. A fresh texture has an empty tag.
func (t *Texture) Content() string { return t.content }

// Destroyed reports whether DestroyTexture was called.
func (t *Texture) Destroyed() bool { return t.destroyed }

// Target is a recorded render target.
type Target struct {
	id        int
	tex       *Texture
	destroyed bool
}

// ID returns the target's serial id (1-based).
func (rt *Target) ID() int { return rt.id }

// Texture implements backend.Target.
func (rt *Target) Texture() backend.Texture { return rt.tex }

// Geometry is recorded vertex data.
type Geometry struct {
	label string
	count int
}

// VertexCount implements backend.Geometry.
func (g *Geometry) VertexCount() int { return g.count }

// Program is a recorded program: a name plus its declared locations.
type Program struct {
	backend.LocationTable
	name string
}

// Name implements backend.Program.
func (p *Program) Name() string { return p.name }
