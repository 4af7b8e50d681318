package software

import (
	"errors"
	"image/color"
	"testing"

	"github.com/gogpu/videograph/backend"
	"github.com/gogpu/videograph/binding"
	"github.com/gogpu/videograph/shader"
)

func newBackend(t *testing.T, w, h int) *Backend {
	t.Helper()
	b, err := New(w, h)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	return b
}

func compile(t *testing.T, b *Backend, name, fragment string) backend.Program {
	t.Helper()
	p, err := b.CompileProgram(name, shader.QuadVertex, fragment)
	if err != nil {
		t.Fatalf("CompileProgram(%s) error = %v", name, err)
	}
	return p
}

func quad(t *testing.T, b *Backend) backend.Geometry {
	t.Helper()
	g, err := b.CreateGeometry("quad", shader.QuadPositions, shader.QuadTexCoords)
	if err != nil {
		t.Fatalf("CreateGeometry() error = %v", err)
	}
	return g
}

func location(t *testing.T, p backend.Program, id string) backend.Location {
	t.Helper()
	loc, err := p.Location(id)
	if err != nil {
		t.Fatalf("Location(%q) error = %v", id, err)
	}
	return loc
}

// fill draws the constant program with rgb into rt (nil = surface).
func fill(t *testing.T, b *Backend, rt backend.Target, rgb [3]float32) {
	t.Helper()
	p := compile(t, b, "constant", shader.Constant)
	if err := b.UseProgram(p); err != nil {
		t.Fatal(err)
	}
	if err := b.BindGeometry(quad(t, b)); err != nil {
		t.Fatal(err)
	}
	if err := b.SetUniform(location(t, p, "value"), binding.Vec3(rgb[0], rgb[1], rgb[2])); err != nil {
		t.Fatal(err)
	}
	if err := b.BindTarget(rt); err != nil {
		t.Fatal(err)
	}
	w, h := b.SurfaceSize()
	b.SetViewport(0, 0, w, h)
	if err := b.DrawTriangles(0, shader.QuadVertexCount); err != nil {
		t.Fatalf("DrawTriangles() error = %v", err)
	}
}

func uniform(t *testing.T, tex *Texture, want color.RGBA) {
	t.Helper()
	img := tex.Image()
	for y := 0; y < img.Rect.Dy(); y++ {
		for x := 0; x < img.Rect.Dx(); x++ {
			if got := img.RGBAAt(x, y); got != want {
				t.Fatalf("%s pixel (%d, %d) = %v, want %v", tex.Label(), x, y, got, want)
			}
		}
	}
}

func TestConstantFillsTarget(t *testing.T) {
	b := newBackend(t, 7, 5)
	tex, _ := b.CreateTexture("out", 7, 5)
	rt, _ := b.CreateTarget("out", tex)

	fill(t, b, rt, [3]float32{1, 0.5, 0})
	uniform(t, tex.(*Texture), color.RGBA{255, 128, 0, 255})
}

func TestDrawToSurface(t *testing.T) {
	b := newBackend(t, 4, 4)
	fill(t, b, nil, [3]float32{0, 0, 1})

	img, err := b.ReadSurface()
	if err != nil {
		t.Fatalf("ReadSurface() error = %v", err)
	}
	if got := img.RGBAAt(3, 3); got != (color.RGBA{0, 0, 255, 255}) {
		t.Errorf("surface pixel = %v, want blue", got)
	}
}

func TestInvertReadsInput(t *testing.T) {
	b := newBackend(t, 4, 4)
	src, _ := b.CreateTexture("src", 4, 4)
	srt, _ := b.CreateTarget("src", src)
	fill(t, b, srt, [3]float32{1, 1, 0})

	dst, _ := b.CreateTexture("dst", 4, 4)
	drt, _ := b.CreateTarget("dst", dst)
	p := compile(t, b, "invert", shader.Invert)
	_ = b.UseProgram(p)
	_ = b.BindGeometry(quad(t, b))
	if err := b.BindImage(0, location(t, p, "inputTexture"), src); err != nil {
		t.Fatalf("BindImage() error = %v", err)
	}
	_ = b.SetUniform(location(t, p, "inputTextureDimensions"), binding.Vec2(4, 4))
	_ = b.BindTarget(drt)
	b.SetViewport(0, 0, 4, 4)
	if err := b.DrawTriangles(0, 6); err != nil {
		t.Fatalf("DrawTriangles() error = %v", err)
	}
	uniform(t, dst.(*Texture), color.RGBA{0, 0, 255, 255})
}

func TestViewportClipsDraw(t *testing.T) {
	b := newBackend(t, 8, 2)
	tex, _ := b.CreateTexture("half", 8, 2)
	rt, _ := b.CreateTarget("half", tex)
	p := compile(t, b, "constant", shader.Constant)
	_ = b.UseProgram(p)
	_ = b.BindGeometry(quad(t, b))
	_ = b.SetUniform(location(t, p, "value"), binding.Vec3(1, 1, 1))
	_ = b.BindTarget(rt)
	b.SetViewport(0, 0, 4, 2)
	_ = b.DrawTriangles(0, 6)

	img := tex.(*Texture).Image()
	if got := img.RGBAAt(3, 1); got.A != 255 {
		t.Errorf("pixel inside viewport = %v, want drawn", got)
	}
	if got := img.RGBAAt(4, 1); got.A != 0 {
		t.Errorf("pixel outside viewport = %v, want untouched", got)
	}
}

func TestCustomKernel(t *testing.T) {
	RegisterKernel("fs_gradient", func(f *Fragment) [4]float32 {
		w, _ := f.Dimensions("none")
		return [4]float32{f.X / 4, float32(w), 0, 1}
	})
	const src = `
@fragment
fn fs_gradient(@builtin(position) p: vec4<f32>) -> @location(0) vec4<f32> {
    return vec4<f32>(p.x / 4.0, 0.0, 0.0, 1.0);
}
`
	b := newBackend(t, 4, 1)
	p := compile(t, b, "gradient", src)
	if got := p.(*Program).EntryPoint(); got != "fs_gradient" {
		t.Errorf("EntryPoint() = %q, want fs_gradient", got)
	}
	_ = b.UseProgram(p)
	_ = b.BindGeometry(quad(t, b))
	_ = b.BindTarget(nil)
	b.SetViewport(0, 0, 4, 1)
	_ = b.DrawTriangles(0, 6)

	img, _ := b.ReadSurface()
	want := []uint8{32, 96, 159, 223}
	for x, r := range want {
		if got := img.RGBAAt(x, 0).R; got != r {
			t.Errorf("pixel %d red = %d, want %d", x, got, r)
		}
	}
}

func TestMissingKernel(t *testing.T) {
	const src = `
@fragment
fn fs_unregistered() -> @location(0) vec4<f32> {
    return vec4<f32>(1.0);
}
`
	b := newBackend(t, 4, 4)
	if _, err := b.CompileProgram("x", shader.QuadVertex, src); !errors.Is(err, ErrNoKernel) {
		t.Errorf("CompileProgram() error = %v, want ErrNoKernel", err)
	}
	if _, err := b.CompileProgram("bad", shader.QuadVertex, "fn {"); !errors.Is(err, shader.ErrCompile) {
		t.Errorf("CompileProgram() error = %v, want ErrCompile", err)
	}
}

func TestResizeKeepsContents(t *testing.T) {
	b := newBackend(t, 4, 4)
	tex, _ := b.CreateTexture("t", 4, 4)
	rt, _ := b.CreateTarget("t", tex)
	fill(t, b, rt, [3]float32{0, 1, 0})

	if err := b.ResizeTexture(tex, 8, 6); err != nil {
		t.Fatalf("ResizeTexture() error = %v", err)
	}
	if tex.Width() != 8 || tex.Height() != 6 {
		t.Fatalf("size = %dx%d, want 8x6", tex.Width(), tex.Height())
	}
	uniform(t, tex.(*Texture), color.RGBA{0, 255, 0, 255})
	if rt.Texture() != tex {
		t.Error("target lost its texture on resize")
	}
}

func TestCopyAndCapture(t *testing.T) {
	b := newBackend(t, 4, 4)
	fill(t, b, nil, [3]float32{1, 0, 0})

	dst, _ := b.CreateTexture("dst", 4, 4)
	if err := b.CaptureSurface(dst); err != nil {
		t.Fatalf("CaptureSurface() error = %v", err)
	}
	uniform(t, dst.(*Texture), color.RGBA{255, 0, 0, 255})

	cp, _ := b.CreateTexture("copy", 4, 4)
	if err := b.CopyTexture(cp, dst); err != nil {
		t.Fatalf("CopyTexture() error = %v", err)
	}
	uniform(t, cp.(*Texture), color.RGBA{255, 0, 0, 255})

	small, _ := b.CreateTexture("small", 2, 2)
	if err := b.CopyTexture(small, dst); !errors.Is(err, backend.ErrSizeMismatch) {
		t.Errorf("CopyTexture() error = %v, want ErrSizeMismatch", err)
	}
}

func TestHandleErrors(t *testing.T) {
	b := newBackend(t, 4, 4)
	if _, err := b.CreateTexture("zero", 0, 4); !errors.Is(err, backend.ErrInvalidSize) {
		t.Errorf("CreateTexture(0, 4) error = %v, want ErrInvalidSize", err)
	}
	tex, _ := b.CreateTexture("t", 4, 4)
	b.DestroyTexture(tex)
	if _, err := b.CreateTarget("t", tex); !errors.Is(err, ErrDestroyed) {
		t.Errorf("CreateTarget(destroyed) error = %v, want ErrDestroyed", err)
	}
	if err := b.DrawTriangles(0, 6); !errors.Is(err, backend.ErrNoProgram) {
		t.Errorf("DrawTriangles() without program error = %v, want ErrNoProgram", err)
	}
	_ = b.Close()
	if _, err := b.CreateTexture("t", 4, 4); !errors.Is(err, backend.ErrClosed) {
		t.Errorf("CreateTexture() after Close error = %v, want ErrClosed", err)
	}
}

func TestRegistered(t *testing.T) {
	b, err := backend.Open(backend.NameSoftware, 8, 8)
	if err != nil {
		t.Fatalf("Open(software) error = %v", err)
	}
	if b.Name() != backend.NameSoftware {
		t.Errorf("Name() = %q", b.Name())
	}
}

func TestLargeDrawShadesEveryPixelOnce(t *testing.T) {
	RegisterKernel("fs_coords", func(f *Fragment) [4]float32 {
		return [4]float32{(f.X - 0.5) / 255, (f.Y - 0.5) / 255, 0, 1}
	})
	const src = `
@fragment
fn fs_coords(@builtin(position) p: vec4<f32>) -> @location(0) vec4<f32> {
    return vec4<f32>(p.x / 255.0, p.y / 255.0, 0.0, 1.0);
}
`
	const w, h = 200, 180
	b := newBackend(t, w, h)
	defer b.Close()
	p := compile(t, b, "coords", src)
	_ = b.UseProgram(p)
	_ = b.BindGeometry(quad(t, b))
	_ = b.BindTarget(nil)
	b.SetViewport(0, 0, w, h)
	if err := b.DrawTriangles(0, shader.QuadVertexCount); err != nil {
		t.Fatalf("DrawTriangles() error = %v", err)
	}

	img, _ := b.ReadSurface()
	for y := range h {
		for x := range w {
			want := color.RGBA{uint8(x), uint8(y), 0, 255}
			if got := img.RGBAAt(x, y); got != want {
				t.Fatalf("pixel (%d, %d) = %v, want %v", x, y, got, want)
			}
		}
	}
}
