package recording

import (
	"errors"
	"testing"

	"github.com/gogpu/videograph/backend"
	"github.com/gogpu/videograph/binding"
	"github.com/gogpu/videograph/shader"
)

func TestRegistered(t *testing.T) {
	b, err := backend.Open(backend.NameRecording, 8, 8)
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	if b.Name() != backend.NameRecording {
		t.Errorf("Name() = %q", b.Name())
	}
}

func TestContentTagsFollowDraws(t *testing.T) {
	b := New(4, 4)
	tex, _ := b.CreateTexture("a", 4, 4)
	rt, _ := b.CreateTarget("a-rt", tex)
	geo, _ := b.CreateGeometry("quad", shader.QuadPositions, shader.QuadTexCoords)
	p := NewProgram("fill", nil)

	if err := b.UseProgram(p); err != nil {
		t.Fatal(err)
	}
	if err := b.BindGeometry(geo); err != nil {
		t.Fatal(err)
	}
	if err := b.BindTarget(rt); err != nil {
		t.Fatal(err)
	}
	if err := b.DrawTriangles(0, 6); err != nil {
		t.Fatalf("DrawTriangles() error = %v", err)
	}
	if got := tex.(*Texture).Content(); got != "fill#1" {
		t.Errorf("texture content = %q, want fill#1", got)
	}

	_ = b.BindTarget(nil)
	_ = b.DrawTriangles(0, 6)
	if got := b.SurfaceContent(); got != "fill#2" {
		t.Errorf("surface content = %q, want fill#2", got)
	}

	dst, _ := b.CreateTexture("copy", 4, 4)
	if err := b.CaptureSurface(dst); err != nil {
		t.Fatal(err)
	}
	if got := dst.(*Texture).Content(); got != "fill#2" {
		t.Errorf("captured content = %q, want fill#2", got)
	}
	if err := b.CopyTexture(dst, tex); err != nil {
		t.Fatal(err)
	}
	if got := dst.(*Texture).Content(); got != "fill#1" {
		t.Errorf("copied content = %q, want fill#1", got)
	}
}

func TestDrawRecordsBindings(t *testing.T) {
	b := New(2, 2)
	src, _ := b.CreateTexture("src", 2, 2)
	geo, _ := b.CreateGeometry("quad", shader.QuadPositions, shader.QuadTexCoords)
	p := NewProgram("invert", map[string]binding.Kind{
		"inputTexture":           binding.KindImage,
		"inputTextureDimensions": binding.KindVec2,
	})
	_ = b.UseProgram(p)
	_ = b.BindGeometry(geo)

	img, _ := p.Location("inputTexture")
	dims, _ := p.Location("inputTextureDimensions")
	if err := b.BindImage(0, img, src); err != nil {
		t.Fatalf("BindImage() error = %v", err)
	}
	if err := b.SetUniform(dims, binding.Vec2(2, 2)); err != nil {
		t.Fatalf("SetUniform() error = %v", err)
	}
	_ = b.BindTarget(nil)
	_ = b.DrawTriangles(0, 6)

	draws := b.Draws()
	if len(draws) != 1 {
		t.Fatalf("len(Draws()) = %d, want 1", len(draws))
	}
	d := draws[0]
	if _, ok := d.Images["inputTexture"]; !ok {
		t.Errorf("draw images = %v, missing inputTexture", d.Images)
	}
	if d.Units["inputTexture"] != 0 {
		t.Errorf("unit = %d, want 0", d.Units["inputTexture"])
	}
	if got := d.Uniforms["inputTextureDimensions"].AsVec2(); got != [2]float32{2, 2} {
		t.Errorf("dimensions = %v, want [2 2]", got)
	}
}

func TestBindingChecks(t *testing.T) {
	b := New(2, 2)
	p := NewProgram("p", map[string]binding.Kind{"f": binding.KindFloat, "img": binding.KindImage})
	f, _ := p.Location("f")
	img, _ := p.Location("img")

	if err := b.SetUniform(f, binding.Float(1)); !errors.Is(err, backend.ErrNoProgram) {
		t.Errorf("SetUniform without program = %v, want ErrNoProgram", err)
	}
	_ = b.UseProgram(p)
	if err := b.SetUniform(f, binding.Int(1)); !errors.Is(err, binding.ErrKindMismatch) {
		t.Errorf("SetUniform(int into float) = %v, want ErrKindMismatch", err)
	}
	tex, _ := b.CreateTexture("t", 2, 2)
	b.SetLimits(backend.Limits{MaxImageUnits: 1, MaxTextureDimension: 16})
	if err := b.BindImage(1, img, tex); !errors.Is(err, backend.ErrImageUnitsExhausted) {
		t.Errorf("BindImage(unit 1) = %v, want ErrImageUnitsExhausted", err)
	}
	if err := b.BindImage(0, f, tex); !errors.Is(err, binding.ErrKindMismatch) {
		t.Errorf("BindImage(at float) = %v, want ErrKindMismatch", err)
	}
}

func TestTextureLifecycle(t *testing.T) {
	b := New(4, 4)
	tex, _ := b.CreateTexture("t", 4, 4)
	if err := b.ResizeTexture(tex, 8, 2); err != nil {
		t.Fatalf("ResizeTexture() error = %v", err)
	}
	if tex.Width() != 8 || tex.Height() != 2 {
		t.Errorf("size = %dx%d, want 8x2", tex.Width(), tex.Height())
	}
	other, _ := b.CreateTexture("o", 4, 4)
	if err := b.CopyTexture(other, tex); !errors.Is(err, backend.ErrSizeMismatch) {
		t.Errorf("CopyTexture(mismatch) = %v, want ErrSizeMismatch", err)
	}
	b.DestroyTexture(tex)
	b.DestroyTexture(tex)
	if got := b.Count(OpDestroyTexture); got != 1 {
		t.Errorf("Count(DestroyTexture) = %d, want 1", got)
	}
	if err := b.ResizeTexture(tex, 1, 1); !errors.Is(err, ErrDestroyed) {
		t.Errorf("ResizeTexture(destroyed) = %v, want ErrDestroyed", err)
	}
	if _, err := b.CreateTexture("zero", 0, 4); !errors.Is(err, backend.ErrInvalidSize) {
		t.Errorf("CreateTexture(0x4) = %v, want ErrInvalidSize", err)
	}
}

func TestFailOn(t *testing.T) {
	b := New(4, 4)
	boom := errors.New("out of memory")
	b.FailOn(OpCreateTexture, boom)
	if _, err := b.CreateTexture("t", 4, 4); !errors.Is(err, boom) {
		t.Errorf("CreateTexture() = %v, want %v", err, boom)
	}
	b.FailOn(OpCreateTexture, nil)
	if _, err := b.CreateTexture("t", 4, 4); err != nil {
		t.Errorf("CreateTexture() after clear = %v", err)
	}
}

func TestCompileProgramReflects(t *testing.T) {
	b := New(4, 4)
	p, err := b.CompileProgram("constant", shader.QuadVertex, shader.Constant)
	if err != nil {
		t.Fatalf("CompileProgram() error = %v", err)
	}
	loc, err := p.Location("value")
	if err != nil {
		t.Fatalf("Location(value) error = %v", err)
	}
	if loc.Kind != binding.KindVec3 {
		t.Errorf("value kind = %v, want vec3", loc.Kind)
	}
	if _, err := b.CompileProgram("bad", shader.QuadVertex, "???"); !errors.Is(err, shader.ErrCompile) {
		t.Errorf("CompileProgram(bad) = %v, want ErrCompile", err)
	}
}

func TestClosed(t *testing.T) {
	b := New(4, 4)
	_ = b.Close()
	if _, err := b.CreateTexture("t", 4, 4); !errors.Is(err, backend.ErrClosed) {
		t.Errorf("CreateTexture after Close = %v, want ErrClosed", err)
	}
}
