package backend

import (
	"image"

	"github.com/gogpu/gputypes"

	"github.com/gogpu/videograph/binding"
)

// Texture is a backend-owned image. It satisfies binding.Image so it can be
// carried directly in image bindings.
//
// A Texture handle keeps its identity for its whole life: resizing changes
// its dimensions, never the handle.
type Texture interface {
	binding.Image
	Format() gputypes.TextureFormat
}

// Target is a render destination other than the display surface.
type Target interface {
	// Texture returns the texture the target currently draws into.
	Texture() Texture
}

// Geometry is vertex data uploaded once and drawn many times.
type Geometry interface {
	VertexCount() int
}

// Location is a resolved binding point of a compiled program.
type Location struct {
	// Identifier is the name used in the program source.
	Identifier string
	// Kind is the binding kind the program declares for Identifier.
	Kind binding.Kind
	// Group and Binding are the resource binding indices.
	Group, Binding uint32
	// Index is the position of the location in the program's declaration
	// order. It is stable for the life of the program.
	Index int
}

// Program is a compiled and linked vertex + fragment program.
// Implementations must be comparable, typically pointers; engines key
// location caches on them.
type Program interface {
	// Name returns the label the program was compiled with.
	Name() string

	// Location returns the binding location for identifier, or an error
	// wrapping ErrLocationNotFound if the program does not declare it.
	Location(identifier string) (Location, error)

	// Locations returns every declared location in declaration order.
	Locations() []Location
}

// Device allocates and manages GPU-resident images and render targets.
type Device interface {
	// CreateTexture allocates a width x height RGBA texture.
	CreateTexture(label string, width, height int) (Texture, error)

	// ResizeTexture changes the size of tex in place. The handle stays valid.
	ResizeTexture(tex Texture, width, height int) error

	// CopyTexture copies the contents of src into dst. Both must have the
	// same size.
	CopyTexture(dst, src Texture) error

	// CaptureSurface copies the current display surface into dst.
	CaptureSurface(dst Texture) error

	// DestroyTexture releases tex. Destroying a destroyed texture is a no-op.
	DestroyTexture(tex Texture)

	// CreateTarget creates a render target that draws into tex.
	CreateTarget(label string, tex Texture) (Target, error)

	// RebindTarget points rt at tex, typically after tex was resized.
	RebindTarget(rt Target, tex Texture) error

	// DestroyTarget releases rt but not its texture.
	DestroyTarget(rt Target)
}

// Compiler builds programs from WGSL source.
type Compiler interface {
	// CompileProgram compiles and links a vertex and a fragment stage.
	// Compile failures wrap the compiler diagnostic verbatim.
	CompileProgram(label, vertexSource, fragmentSource string) (Program, error)
}

// Rasterizer issues draws. Calls are stateful in the way a graphics
// context is: UseProgram, BindGeometry, SetUniform, BindImage and
// BindTarget configure the next DrawTriangles.
type Rasterizer interface {
	// SurfaceSize returns the display surface size in pixels.
	SurfaceSize() (width, height int)

	// ResizeSurface changes the display surface size.
	ResizeSurface(width, height int) error

	// CreateGeometry uploads interleaved-free position (xy) and texture
	// coordinate (uv) streams.
	CreateGeometry(label string, positions, texCoords []float32) (Geometry, error)

	// SetViewport sets the pixel rectangle draws map to.
	SetViewport(x, y, width, height int)

	// UseProgram makes p the active program and clears previous bindings.
	UseProgram(p Program) error

	// BindGeometry selects the vertex data for the next draw.
	BindGeometry(g Geometry) error

	// SetUniform binds a non-image value at loc.
	SetUniform(loc Location, v binding.Value) error

	// BindImage binds tex at loc through image unit unit.
	BindImage(unit int, loc Location, tex Texture) error

	// BindTarget selects where the next draw lands. A nil target selects
	// the display surface.
	BindTarget(rt Target) error

	// DrawTriangles draws count vertices starting at first as a triangle list.
	DrawTriangles(first, count int) error
}

// Limits describes backend capabilities the engine must respect.
type Limits struct {
	// MaxImageUnits is the number of images a single draw may bind.
	MaxImageUnits int
	// MaxTextureDimension is the largest accepted texture width or height.
	MaxTextureDimension int
}

// DefaultLimits matches the minimum guaranteed by WebGPU.
func DefaultLimits() Limits {
	return Limits{MaxImageUnits: 16, MaxTextureDimension: 8192}
}

// Backend bundles every capability the engine needs.
//
// Backends are not safe for concurrent use. The engine drives them from a
// single goroutine.
type Backend interface {
	Device
	Compiler
	Rasterizer

	// Name returns the backend identifier (e.g. "software", "wgpu").
	Name() string

	// Limits returns the backend limits.
	Limits() Limits

	// Close releases all backend resources.
	// The backend should not be used after Close is called.
	Close() error
}

// SurfaceReader is implemented by backends that can read the display
// surface back into host memory.
type SurfaceReader interface {
	ReadSurface() (*image.RGBA, error)
}

// TextureReader is implemented by backends that can read a texture back
// into host memory.
type TextureReader interface {
	ReadTexture(tex Texture) (*image.RGBA, error)
}
