package recording

import (
	"fmt"

	"github.com/gogpu/videograph/backend"
	"github.com/gogpu/videograph/binding"
)

// Op identifies the backend call a Command records.
type Op uint8

const (
	// Device
	OpCreateTexture  Op = iota // CreateTexture
	OpResizeTexture            // ResizeTexture
	OpCopyTexture              // CopyTexture
	OpCaptureSurface           // CaptureSurface
	OpDestroyTexture           // DestroyTexture
	OpCreateTarget             // CreateTarget
	OpRebindTarget             // RebindTarget
	OpDestroyTarget            // DestroyTarget

	// Compiler
	OpCompileProgram // CompileProgram

	// Rasterizer
	OpResizeSurface  // ResizeSurface
	OpCreateGeometry // CreateGeometry
	OpSetViewport    // SetViewport
	OpUseProgram     // UseProgram
	OpBindGeometry   // BindGeometry
	OpSetUniform     // SetUniform
	OpBindImage      // BindImage
	OpBindTarget     // BindTarget
	OpDrawTriangles  // DrawTriangles
)

var opNames = [...]string{
	OpCreateTexture:  "CreateTexture",
	OpResizeTexture:  "ResizeTexture",
	OpCopyTexture:    "CopyTexture",
	OpCaptureSurface: "CaptureSurface",
	OpDestroyTexture: "DestroyTexture",
	OpCreateTarget:   "CreateTarget",
	OpRebindTarget:   "RebindTarget",
	OpDestroyTarget:  "DestroyTarget",
	OpCompileProgram: "CompileProgram",
	OpResizeSurface:  "ResizeSurface",
	OpCreateGeometry: "CreateGeometry",
	OpSetViewport:    "SetViewport",
	OpUseProgram:     "UseProgram",
	OpBindGeometry:   "BindGeometry",
	OpSetUniform:     "SetUniform",
	OpBindImage:      "BindImage",
	OpBindTarget:     "BindTarget",
	OpDrawTriangles:  "DrawTriangles",
}

// String returns the name of the backend method.
func (o Op) String() string {
	if int(o) < len(opNames) {
		return opNames[o]
	}
	return fmt.Sprintf("Op(%d)", uint8(o))
}

// Command is one recorded backend call. Only the fields relevant to Op
// are set.
type Command struct {
	Op    Op
	Label string

	// Texture is the id of the texture operated on (destination for
	// copies). Source is the id of the copy source.
	Texture, Source int
	// Target is the id of the render target, 0 for the display surface.
	Target int

	Program  string
	Location backend.Location
	Value    binding.Value
	Unit     int

	X, Y          int
	Width, Height int
	First, Count  int
}

// String formats the command for test failure messages.
func (c Command) String() string {
	switch c.Op {
	case OpCreateTexture, OpResizeTexture:
		return fmt.Sprintf("%s(#%d %s %dx%d)", c.Op, c.Texture, c.Label, c.Width, c.Height)
	case OpCopyTexture:
		return fmt.Sprintf("%s(#%d <- #%d)", c.Op, c.Texture, c.Source)
	case OpSetUniform:
		return fmt.Sprintf("%s(%s = %s)", c.Op, c.Location.Identifier, c.Value)
	case OpBindImage:
		return fmt.Sprintf("%s(unit %d, %s = #%d)", c.Op, c.Unit, c.Location.Identifier, c.Texture)
	case OpBindTarget:
		return fmt.Sprintf("%s(target %d)", c.Op, c.Target)
	case OpUseProgram, OpCompileProgram:
		return fmt.Sprintf("%s(%s)", c.Op, c.Program)
	case OpDrawTriangles:
		return fmt.Sprintf("%s(%d, %d)", c.Op, c.First, c.Count)
	default:
		return fmt.Sprintf("%s(#%d)", c.Op, c.Texture)
	}
}

// Draw summarizes the state a DrawTriangles call ran with.
type Draw struct {
	// Seq is the 1-based draw number.
	Seq int
	// Program is the name of the active program.
	Program string
	// Target is the render target id, 0 for the display surface.
	Target int
	// Content is the content tag the draw produced.
	Content string
	// Uniforms are the non-image values bound for the draw.
	Uniforms binding.Set
	// Images maps each bound image identifier to the content tag of the
	// texture at bind time.
	Images map[string]string
	// Units maps each bound image identifier to its image unit.
	Units map[string]int
	// Count is the number of vertices drawn.
	Count int
}
