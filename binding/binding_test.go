// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package binding

import (
	"errors"
	"testing"
)

type fakeImage struct{ w, h int }

func (f *fakeImage) Width() int  { return f.w }
func (f *fakeImage) Height() int { return f.h }

func TestKindString(t *testing.T) {
	tests := []struct {
		kind Kind
		want string
	}{
		{KindFloat, "float"},
		{KindVec2, "vec2"},
		{KindVec3, "vec3"},
		{KindInt, "int"},
		{KindMat3, "mat3"},
		{KindImage, "image"},
		{KindInvalid, "invalid"},
		{Kind(42), "kind(42)"},
	}
	for _, tt := range tests {
		if got := tt.kind.String(); got != tt.want {
			t.Errorf("Kind(%d).String() = %q, want %q", tt.kind, got, tt.want)
		}
	}
}

func TestParseKind(t *testing.T) {
	for k := KindFloat; k <= KindImage; k++ {
		got, err := ParseKind(" " + k.String() + " ")
		if err != nil {
			t.Fatalf("ParseKind(%q) error = %v", k, err)
		}
		if got != k {
			t.Errorf("ParseKind(%q) = %v, want %v", k, got, k)
		}
	}
	if _, err := ParseKind("mat4"); !errors.Is(err, ErrUnsupportedKind) {
		t.Errorf("ParseKind(mat4) error = %v, want ErrUnsupportedKind", err)
	}
}

func TestValueAccessors(t *testing.T) {
	img := &fakeImage{w: 4, h: 2}

	if got := Float(0.5).AsFloat(); got != 0.5 {
		t.Errorf("AsFloat() = %v, want 0.5", got)
	}
	if got := Vec2(1, 2).AsVec2(); got != [2]float32{1, 2} {
		t.Errorf("AsVec2() = %v, want [1 2]", got)
	}
	if got := Vec3(1, 2, 3).AsVec3(); got != [3]float32{1, 2, 3} {
		t.Errorf("AsVec3() = %v, want [1 2 3]", got)
	}
	if got := Int(-7).AsInt(); got != -7 {
		t.Errorf("AsInt() = %v, want -7", got)
	}
	if got := Identity3().AsMat3(); got != [9]float32{1, 0, 0, 0, 1, 0, 0, 0, 1} {
		t.Errorf("AsMat3() = %v, want identity", got)
	}
	if got := ImageValue(img).AsImage(); got != img {
		t.Errorf("AsImage() = %v, want %v", got, img)
	}
}

func TestValueAccessorPanicsOnWrongKind(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("AsVec2() on a float value should panic")
		}
	}()
	_ = Float(1).AsVec2()
}

func TestValueValidate(t *testing.T) {
	if err := (Value{}).Validate(); !errors.Is(err, ErrUnsupportedKind) {
		t.Errorf("zero Value Validate() = %v, want ErrUnsupportedKind", err)
	}
	if err := ImageValue(nil).Validate(); !errors.Is(err, ErrNilImage) {
		t.Errorf("nil image Validate() = %v, want ErrNilImage", err)
	}
	if err := Vec3(0, 0, 0).Validate(); err != nil {
		t.Errorf("Vec3 Validate() = %v, want nil", err)
	}
}

func TestValueEqual(t *testing.T) {
	a, b := &fakeImage{1, 1}, &fakeImage{1, 1}
	tests := []struct {
		name string
		x, y Value
		want bool
	}{
		{"same float", Float(1), Float(1), true},
		{"different float", Float(1), Float(2), false},
		{"float vs int", Float(1), Int(1), false},
		{"same int", Int(3), Int(3), true},
		{"same image handle", ImageValue(a), ImageValue(a), true},
		{"different image handle", ImageValue(a), ImageValue(b), false},
	}
	for _, tt := range tests {
		if got := tt.x.Equal(tt.y); got != tt.want {
			t.Errorf("%s: Equal() = %v, want %v", tt.name, got, tt.want)
		}
	}
}

func TestFromAny(t *testing.T) {
	tests := []struct {
		name string
		kind Kind
		in   any
		want Value
	}{
		{"float from float64", KindFloat, 0.25, Float(0.25)},
		{"float from int", KindFloat, 3, Float(3)},
		{"int from float64", KindInt, 12.0, Int(12)},
		{"vec2 from []any", KindVec2, []any{1, 2.5}, Vec2(1, 2.5)},
		{"vec3 from []float64", KindVec3, []float64{1, 1, 0}, Vec3(1, 1, 0)},
		{"mat3 from []int", KindMat3, []int{1, 0, 0, 0, 1, 0, 0, 0, 1}, Identity3()},
	}
	for _, tt := range tests {
		got, err := FromAny(tt.kind, tt.in)
		if err != nil {
			t.Errorf("%s: FromAny() error = %v", tt.name, err)
			continue
		}
		if !got.Equal(tt.want) {
			t.Errorf("%s: FromAny() = %v, want %v", tt.name, got, tt.want)
		}
	}
}

func TestFromAnyErrors(t *testing.T) {
	if _, err := FromAny(KindVec3, []any{1, 2}); !errors.Is(err, ErrKindMismatch) {
		t.Errorf("short vec3 error = %v, want ErrKindMismatch", err)
	}
	if _, err := FromAny(KindFloat, "x"); !errors.Is(err, ErrKindMismatch) {
		t.Errorf("string float error = %v, want ErrKindMismatch", err)
	}
	if _, err := FromAny(KindImage, 1); !errors.Is(err, ErrUnsupportedKind) {
		t.Errorf("image error = %v, want ErrUnsupportedKind", err)
	}
}

func TestMergeLaterLayerWins(t *testing.T) {
	constant := Set{"frequency": Float(0.1), "phaseWrap": Float(0)}
	derived := Set{"inputTexture": ImageValue(&fakeImage{2, 2})}
	runtime := Set{"frequency": Float(200)}

	got := Merge(constant, derived, runtime)

	if len(got) != 3 {
		t.Fatalf("len(Merge()) = %d, want 3", len(got))
	}
	if f := got["frequency"].AsFloat(); f != 200 {
		t.Errorf("frequency = %v, want 200", f)
	}
	if f := got["phaseWrap"].AsFloat(); f != 0 {
		t.Errorf("phaseWrap = %v, want 0", f)
	}
	if f := constant["frequency"].AsFloat(); f != 0.1 {
		t.Errorf("constant layer mutated: frequency = %v, want 0.1", f)
	}
}

func TestMergeSkipsNilLayers(t *testing.T) {
	got := Merge(nil, Set{"a": Int(1)}, nil)
	if len(got) != 1 || got["a"].AsInt() != 1 {
		t.Errorf("Merge(nil, {a:1}, nil) = %v", got)
	}
}

func TestSetIdentifiersSorted(t *testing.T) {
	s := Set{"c": Int(1), "a": Int(2), "b": Int(3)}
	got := s.Identifiers()
	want := []string{"a", "b", "c"}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("Identifiers() = %v, want %v", got, want)
		}
	}
}

func TestRuntimePutOverlay(t *testing.T) {
	base := Runtime{}
	base.Put("osc", "frequency", Float(1))
	base.Put("osc", "t", Int(0))

	top := Runtime{}
	top.Put("osc", "frequency", Float(2))
	top.Put("invert", "gain", Float(3))

	got := base.Overlay(top)
	if f := got.For("osc")["frequency"].AsFloat(); f != 2 {
		t.Errorf("osc.frequency = %v, want 2", f)
	}
	if n := got.For("osc")["t"].AsInt(); n != 0 {
		t.Errorf("osc.t = %v, want 0", n)
	}
	if f := got.For("invert")["gain"].AsFloat(); f != 3 {
		t.Errorf("invert.gain = %v, want 3", f)
	}
	if f := base.For("osc")["frequency"].AsFloat(); f != 1 {
		t.Errorf("base mutated: osc.frequency = %v, want 1", f)
	}
	if got := Runtime(nil).For("x"); got != nil {
		t.Errorf("nil Runtime For() = %v, want nil", got)
	}
}

func TestRuntimeValidate(t *testing.T) {
	r := Runtime{"osc": Set{"bad": Value{}}}
	if err := r.Validate(); !errors.Is(err, ErrUnsupportedKind) {
		t.Errorf("Validate() = %v, want ErrUnsupportedKind", err)
	}
}
