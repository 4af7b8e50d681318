// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package binding

import (
	"fmt"
	"strings"
)

// Kind identifies the payload carried by a Value.
//
// The set is closed: every backend dispatches on exactly these kinds and
// nothing else. KindInvalid is the zero value and is never accepted.
type Kind uint8

const (
	// KindInvalid is the zero Kind. Values of this kind are rejected.
	KindInvalid Kind = iota

	// KindFloat is a single 32-bit float (WGSL f32).
	KindFloat

	// KindVec2 is a two-component float vector (WGSL vec2<f32>).
	KindVec2

	// KindVec3 is a three-component float vector (WGSL vec3<f32>).
	KindVec3

	// KindInt is a signed 32-bit integer (WGSL i32).
	KindInt

	// KindMat3 is a 3x3 float matrix in column-major order (WGSL mat3x3<f32>).
	KindMat3

	// KindImage is a sampled image. Binding it consumes an image unit.
	KindImage
)

var kindNames = [...]string{
	KindInvalid: "invalid",
	KindFloat:   "float",
	KindVec2:    "vec2",
	KindVec3:    "vec3",
	KindInt:     "int",
	KindMat3:    "mat3",
	KindImage:   "image",
}

// String returns the lower-case kind name used in configuration files.
func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return fmt.Sprintf("kind(%d)", uint8(k))
}

// Valid reports whether k is one of the supported kinds.
func (k Kind) Valid() bool {
	return k > KindInvalid && k <= KindImage
}

// ParseKind returns the Kind named s (case-insensitive).
func ParseKind(s string) (Kind, error) {
	name := strings.ToLower(strings.TrimSpace(s))
	for k := KindFloat; k <= KindImage; k++ {
		if kindNames[k] == name {
			return k, nil
		}
	}
	return KindInvalid, fmt.Errorf("%w: %q", ErrUnsupportedKind, s)
}

// Image is an opaque handle to a GPU-resident image.
// Backends define the concrete type; the engine only needs the size.
type Image interface {
	Width() int
	Height() int
}

// Value is a tagged binding payload. The zero Value is invalid.
//
// Values are small and copied by value. Matrix data is column-major.
type Value struct {
	kind Kind
	f    [9]float32
	i    int32
	img  Image
}

// Float returns a KindFloat value.
func Float(v float32) Value {
	return Value{kind: KindFloat, f: [9]float32{v}}
}

// Vec2 returns a KindVec2 value.
func Vec2(x, y float32) Value {
	return Value{kind: KindVec2, f: [9]float32{x, y}}
}

// Vec3 returns a KindVec3 value.
func Vec3(x, y, z float32) Value {
	return Value{kind: KindVec3, f: [9]float32{x, y, z}}
}

// Int returns a KindInt value.
func Int(v int32) Value {
	return Value{kind: KindInt, i: v}
}

// Mat3 returns a KindMat3 value from nine column-major components.
func Mat3(m [9]float32) Value {
	return Value{kind: KindMat3, f: m}
}

// Identity3 returns the 3x3 identity matrix.
func Identity3() Value {
	return Mat3([9]float32{1, 0, 0, 0, 1, 0, 0, 0, 1})
}

// ImageValue returns a KindImage value wrapping img.
func ImageValue(img Image) Value {
	return Value{kind: KindImage, img: img}
}

// Kind returns the payload kind.
func (v Value) Kind() Kind { return v.kind }

// Validate reports whether v carries a supported kind and a usable payload.
func (v Value) Validate() error {
	if !v.kind.Valid() {
		return fmt.Errorf("%w: %s", ErrUnsupportedKind, v.kind)
	}
	if v.kind == KindImage && v.img == nil {
		return ErrNilImage
	}
	return nil
}

func (v Value) must(k Kind) {
	if v.kind != k {
		panic(fmt.Sprintf("binding: %s accessor called on %s value", k, v.kind))
	}
}

// AsFloat returns the payload of a KindFloat value. It panics on any other kind.
func (v Value) AsFloat() float32 {
	v.must(KindFloat)
	return v.f[0]
}

// AsVec2 returns the payload of a KindVec2 value. It panics on any other kind.
func (v Value) AsVec2() [2]float32 {
	v.must(KindVec2)
	return [2]float32{v.f[0], v.f[1]}
}

// AsVec3 returns the payload of a KindVec3 value. It panics on any other kind.
func (v Value) AsVec3() [3]float32 {
	v.must(KindVec3)
	return [3]float32{v.f[0], v.f[1], v.f[2]}
}

// AsInt returns the payload of a KindInt value. It panics on any other kind.
func (v Value) AsInt() int32 {
	v.must(KindInt)
	return v.i
}

// AsMat3 returns the payload of a KindMat3 value. It panics on any other kind.
func (v Value) AsMat3() [9]float32 {
	v.must(KindMat3)
	return v.f
}

// AsImage returns the payload of a KindImage value. It panics on any other kind.
func (v Value) AsImage() Image {
	v.must(KindImage)
	return v.img
}

// Equal reports whether v and o carry the same kind and payload.
// Images compare by handle identity.
func (v Value) Equal(o Value) bool {
	if v.kind != o.kind {
		return false
	}
	switch v.kind {
	case KindInt:
		return v.i == o.i
	case KindImage:
		return v.img == o.img
	default:
		return v.f == o.f
	}
}

// String formats the value for logs.
func (v Value) String() string {
	switch v.kind {
	case KindFloat:
		return fmt.Sprintf("float(%g)", v.f[0])
	case KindVec2:
		return fmt.Sprintf("vec2(%g, %g)", v.f[0], v.f[1])
	case KindVec3:
		return fmt.Sprintf("vec3(%g, %g, %g)", v.f[0], v.f[1], v.f[2])
	case KindInt:
		return fmt.Sprintf("int(%d)", v.i)
	case KindMat3:
		return fmt.Sprintf("mat3(%g)", v.f)
	case KindImage:
		if v.img == nil {
			return "image(nil)"
		}
		return fmt.Sprintf("image(%dx%d)", v.img.Width(), v.img.Height())
	default:
		return v.kind.String()
	}
}

// FromAny converts a loosely typed value (as produced by expression
// evaluation or decoded configuration) into a Value of kind k.
//
// Accepted inputs: any Go integer or float for KindFloat and KindInt;
// a slice of 2, 3 or 9 numbers for KindVec2, KindVec3 and KindMat3.
// KindImage cannot be produced from untyped data.
func FromAny(k Kind, x any) (Value, error) {
	switch k {
	case KindFloat:
		f, err := toFloat(x)
		if err != nil {
			return Value{}, err
		}
		return Float(float32(f)), nil
	case KindInt:
		f, err := toFloat(x)
		if err != nil {
			return Value{}, err
		}
		return Int(int32(f)), nil
	case KindVec2, KindVec3, KindMat3:
		want := map[Kind]int{KindVec2: 2, KindVec3: 3, KindMat3: 9}[k]
		comps, err := toFloats(x)
		if err != nil {
			return Value{}, err
		}
		if len(comps) != want {
			return Value{}, fmt.Errorf("%w: %s needs %d components, got %d", ErrKindMismatch, k, want, len(comps))
		}
		out := Value{kind: k}
		for i, c := range comps {
			out.f[i] = float32(c)
		}
		return out, nil
	default:
		return Value{}, fmt.Errorf("%w: cannot build %s from %T", ErrUnsupportedKind, k, x)
	}
}

func toFloat(x any) (float64, error) {
	switch n := x.(type) {
	case float64:
		return n, nil
	case float32:
		return float64(n), nil
	case int:
		return float64(n), nil
	case int32:
		return float64(n), nil
	case int64:
		return float64(n), nil
	case uint:
		return float64(n), nil
	case uint32:
		return float64(n), nil
	case uint64:
		return float64(n), nil
	case bool:
		if n {
			return 1, nil
		}
		return 0, nil
	default:
		return 0, fmt.Errorf("%w: %T is not a number", ErrKindMismatch, x)
	}
}

func toFloats(x any) ([]float64, error) {
	switch s := x.(type) {
	case []float64:
		return s, nil
	case []float32:
		out := make([]float64, len(s))
		for i, f := range s {
			out[i] = float64(f)
		}
		return out, nil
	case []int:
		out := make([]float64, len(s))
		for i, n := range s {
			out[i] = float64(n)
		}
		return out, nil
	case []any:
		out := make([]float64, len(s))
		for i, e := range s {
			f, err := toFloat(e)
			if err != nil {
				return nil, fmt.Errorf("component %d: %w", i, err)
			}
			out[i] = f
		}
		return out, nil
	default:
		return nil, fmt.Errorf("%w: %T is not a list of numbers", ErrKindMismatch, x)
	}
}
