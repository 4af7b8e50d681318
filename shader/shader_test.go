package shader

import (
	"errors"
	"testing"

	"github.com/gogpu/videograph/binding"
)

func mustCompile(t *testing.T, stage Stage, src string) *Module {
	t.Helper()
	m, err := Compile(stage, src)
	if err != nil {
		t.Fatalf("Compile(%s) error = %v", stage, err)
	}
	return m
}

func TestCompileQuadVertex(t *testing.T) {
	m := mustCompile(t, StageVertex, QuadVertex)
	if m.EntryPoint != "vs_main" {
		t.Errorf("EntryPoint = %q, want vs_main", m.EntryPoint)
	}
	if len(m.SPIRV) < 5 || m.SPIRV[0] != 0x07230203 {
		t.Errorf("SPIRV does not start with the SPIR-V magic number")
	}
	if len(m.Resources) != 0 || len(m.Samplers) != 0 {
		t.Errorf("vertex stage declares resources: %v %v", m.Resources, m.Samplers)
	}
}

func TestCompileBuiltinsReflect(t *testing.T) {
	tests := []struct {
		name  string
		entry string
		want  map[string]binding.Kind
	}{
		{"oscillator", "fs_oscillator", map[string]binding.Kind{
			"t":                      binding.KindInt,
			"frequency":              binding.KindFloat,
			"phaseWrap":              binding.KindFloat,
			"inputTextureDimensions": binding.KindVec2,
			"rotationTheta":          binding.KindImage,
		}},
		{"constant", "fs_constant", map[string]binding.Kind{
			"value": binding.KindVec3,
		}},
		{"invert", "fs_invert", map[string]binding.Kind{
			"inputTexture":           binding.KindImage,
			"inputTextureDimensions": binding.KindVec2,
		}},
		{"transform", "fs_transform", map[string]binding.Kind{
			"inputTexture":           binding.KindImage,
			"inputTextureDimensions": binding.KindVec2,
			"transform":              binding.KindMat3,
		}},
		{"mix", "fs_mix", map[string]binding.Kind{
			"a":                      binding.KindImage,
			"b":                      binding.KindImage,
			"amount":                 binding.KindFloat,
			"inputTextureDimensions": binding.KindVec2,
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			src, ok := Builtin(tt.name)
			if !ok {
				t.Fatalf("Builtin(%q) not found", tt.name)
			}
			m := mustCompile(t, StageFragment, src)
			if m.EntryPoint != tt.entry {
				t.Errorf("EntryPoint = %q, want %q", m.EntryPoint, tt.entry)
			}
			got := make(map[string]binding.Kind)
			for _, r := range m.Resources {
				got[r.Name] = r.Kind
			}
			if len(got) != len(tt.want) {
				t.Errorf("resources = %v, want %v", got, tt.want)
			}
			for name, kind := range tt.want {
				if got[name] != kind {
					t.Errorf("resource %q kind = %v, want %v", name, got[name], kind)
				}
			}
		})
	}
}

func TestUniformSizes(t *testing.T) {
	src, _ := Builtin("transform")
	m := mustCompile(t, StageFragment, src)
	want := map[string]uint64{"inputTextureDimensions": 16, "transform": 48, "inputTexture": 0}
	for _, r := range m.Resources {
		if r.Size != want[r.Name] {
			t.Errorf("%s Size = %d, want %d", r.Name, r.Size, want[r.Name])
		}
	}
}

func TestCompileErrors(t *testing.T) {
	tests := []struct {
		name  string
		stage Stage
		src   string
		want  error
	}{
		{"syntax", StageFragment, "fn broken( {", ErrCompile},
		{"no fragment entry", StageFragment, QuadVertex, ErrNoEntryPoint},
		{"storage buffer", StageFragment, `
@group(0) @binding(0) var<storage, read> data: array<f32>;
@fragment
fn fs_main() -> @location(0) vec4<f32> {
    return vec4<f32>(data[0], 0.0, 0.0, 1.0);
}
`, ErrUnsupportedResource},
		{"other group", StageFragment, `
@group(1) @binding(0) var<uniform> x: f32;
@fragment
fn fs_main() -> @location(0) vec4<f32> {
    return vec4<f32>(x, 0.0, 0.0, 1.0);
}
`, ErrUnsupportedResource},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Compile(tt.stage, tt.src)
			if !errors.Is(err, tt.want) {
				t.Errorf("Compile() error = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestLinkPairsSamplers(t *testing.T) {
	vs := mustCompile(t, StageVertex, QuadVertex)
	src, _ := Builtin("mix")
	fs := mustCompile(t, StageFragment, src)

	l, err := Link(vs, fs)
	if err != nil {
		t.Fatalf("Link() error = %v", err)
	}
	if l.TextureSamplers["a"] != "aSampler" || l.TextureSamplers["b"] != "bSampler" {
		t.Errorf("TextureSamplers = %v", l.TextureSamplers)
	}
	locs := l.Locations()
	for i := 1; i < len(locs); i++ {
		if locs[i-1].Binding > locs[i].Binding {
			t.Errorf("Locations() not sorted by binding: %v", locs)
		}
		if locs[i].Index != i {
			t.Errorf("Locations()[%d].Index = %d", i, locs[i].Index)
		}
	}
	if _, ok := l.Resource("amount"); !ok {
		t.Error("Resource(amount) not found")
	}
}

func TestLinkSingleSharedSampler(t *testing.T) {
	vs := mustCompile(t, StageVertex, QuadVertex)
	fs := mustCompile(t, StageFragment, `
@group(0) @binding(0) var src: texture_2d<f32>;
@group(0) @binding(1) var smp: sampler;

@fragment
fn fs_main(@builtin(position) p: vec4<f32>) -> @location(0) vec4<f32> {
    return textureSample(src, smp, p.xy);
}
`)
	l, err := Link(vs, fs)
	if err != nil {
		t.Fatalf("Link() error = %v", err)
	}
	if l.TextureSamplers["src"] != "smp" {
		t.Errorf("TextureSamplers[src] = %q, want smp", l.TextureSamplers["src"])
	}
}

func TestLinkRejectsSwappedStages(t *testing.T) {
	vs := mustCompile(t, StageVertex, QuadVertex)
	if _, err := Link(vs, vs); !errors.Is(err, ErrBindingConflict) {
		t.Errorf("Link(vs, vs) error = %v, want ErrBindingConflict", err)
	}
}

func TestCacheCompilesOnce(t *testing.T) {
	c := NewCache(0)
	a, err := c.Compile(StageVertex, QuadVertex)
	if err != nil {
		t.Fatalf("Compile() error = %v", err)
	}
	b, _ := c.Compile(StageVertex, QuadVertex)
	if a != b {
		t.Error("second Compile() returned a different module")
	}
	if _, err := c.Compile(StageFragment, "nope"); !errors.Is(err, ErrCompile) {
		t.Errorf("Compile(bad) error = %v, want ErrCompile", err)
	}
	if c.Len() != 1 {
		t.Errorf("Len() = %d, want 1", c.Len())
	}
}

func TestBuiltinNames(t *testing.T) {
	names := BuiltinNames()
	if len(names) != 5 || names[0] != "constant" {
		t.Errorf("BuiltinNames() = %v", names)
	}
}
