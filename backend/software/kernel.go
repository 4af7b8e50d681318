package software

import (
	"math"
	"sync"

	"github.com/gogpu/videograph/binding"
)

// Kernel shades one fragment and returns straight RGBA in [0, 1].
// Large triangles are shaded in bands on several goroutines, so a Kernel
// must not modify shared state.
type Kernel func(f *Fragment) [4]float32

var (
	kernelsMu sync.RWMutex
	kernels   = make(map[string]Kernel)
)

// RegisterKernel sets the kernel used for programs whose fragment entry
// point is entryPoint. A later registration replaces an earlier one.
func RegisterKernel(entryPoint string, k Kernel) {
	kernelsMu.Lock()
	defer kernelsMu.Unlock()
	kernels[entryPoint] = k
}

func lookupKernel(entryPoint string) (Kernel, bool) {
	kernelsMu.RLock()
	defer kernelsMu.RUnlock()
	k, ok := kernels[entryPoint]
	return k, ok
}

// Fragment is the input of a Kernel invocation. Accessors for identifiers
// that are unbound, or bound with another kind, return zero values like
// an unwritten uniform buffer on a GPU.
type Fragment struct {
	// X and Y are the framebuffer coordinates of the pixel center.
	X, Y float32
	// U and V are the interpolated texture coordinates.
	U, V float32

	state *drawState
}

func (f *Fragment) value(id string, k binding.Kind) (binding.Value, bool) {
	v, ok := f.state.uniforms[id]
	if !ok || v.Kind() != k {
		return binding.Value{}, false
	}
	return v, true
}

// Float returns the float bound to id.
func (f *Fragment) Float(id string) float32 {
	if v, ok := f.value(id, binding.KindFloat); ok {
		return v.AsFloat()
	}
	return 0
}

// Int returns the int bound to id.
func (f *Fragment) Int(id string) int32 {
	if v, ok := f.value(id, binding.KindInt); ok {
		return v.AsInt()
	}
	return 0
}

// Vec2 returns the vec2 bound to id.
func (f *Fragment) Vec2(id string) [2]float32 {
	if v, ok := f.value(id, binding.KindVec2); ok {
		return v.AsVec2()
	}
	return [2]float32{}
}

// Vec3 returns the vec3 bound to id.
func (f *Fragment) Vec3(id string) [3]float32 {
	if v, ok := f.value(id, binding.KindVec3); ok {
		return v.AsVec3()
	}
	return [3]float32{}
}

// Mat3 returns the column-major matrix bound to id.
func (f *Fragment) Mat3(id string) [9]float32 {
	if v, ok := f.value(id, binding.KindMat3); ok {
		return v.AsMat3()
	}
	return [9]float32{}
}

// Sample reads the image bound to id at normalized coordinates (u, v),
// with (0, 0) at the top-left corner. Sampling is bilinear with
// clamp-to-edge addressing. An unbound image reads transparent black.
func (f *Fragment) Sample(id string, u, v float32) [4]float32 {
	src, ok := f.state.images[id]
	if !ok {
		return [4]float32{}
	}
	return sampleBilinear(src, u, v)
}

// Dimensions returns the pixel size of the image bound to id.
func (f *Fragment) Dimensions(id string) (w, h int) {
	src, ok := f.state.images[id]
	if !ok {
		return 0, 0
	}
	return src.Rect.Dx(), src.Rect.Dy()
}

func clamp01(x float32) float32 {
	return float32(math.Min(math.Max(float64(x), 0), 1))
}
