package software

import "math"

const twoPi = 2 * math.Pi

func init() {
	RegisterKernel("fs_oscillator", oscillator)
	RegisterKernel("fs_constant", constant)
	RegisterKernel("fs_invert", invert)
	RegisterKernel("fs_transform", transform)
	RegisterKernel("fs_mix", mixKernel)
}

func luminance(c [4]float32) float64 {
	return 0.2126*float64(c[0]) + 0.7152*float64(c[1]) + 0.0722*float64(c[2])
}

func uv(f *Fragment) (float32, float32) {
	dim := f.Vec2("inputTextureDimensions")
	if dim[0] == 0 || dim[1] == 0 {
		return f.U, 1 - f.V
	}
	return f.X / dim[0], f.Y / dim[1]
}

func oscillator(f *Fragment) [4]float32 {
	res := f.Vec2("inputTextureDimensions")
	rx, ry := float64(res[0]), float64(res[1])
	count := rx * ry
	if count == 0 {
		return [4]float32{0.5, 0, 0, 1}
	}

	u, v := uv(f)
	theta := luminance(f.Sample("rotationTheta", u, v)) * twoPi
	s, c := math.Sincos(theta)
	x, y := float64(f.X), float64(f.Y)
	px, py := c*x+s*y, c*y-s*x

	index := px + py*rx + float64(f.Int("t"))*count
	phase := float64(f.Float("frequency")) / 60 * (index * twoPi / count)
	if wrap := float64(f.Float("phaseWrap")); wrap > 0 {
		phase -= wrap * math.Floor(phase/wrap)
	}
	return [4]float32{float32((math.Sin(phase) + 1) / 2), 0, 0, 1}
}

func constant(f *Fragment) [4]float32 {
	v := f.Vec3("value")
	return [4]float32{v[0], v[1], v[2], 1}
}

func invert(f *Fragment) [4]float32 {
	u, v := uv(f)
	c := f.Sample("inputTexture", u, v)
	return [4]float32{1 - c[0], 1 - c[1], 1 - c[2], 1}
}

func transform(f *Fragment) [4]float32 {
	u, v := uv(f)
	m := f.Mat3("transform")
	// Column-major: p = m * (u, v, 1).
	pu := m[0]*u + m[3]*v + m[6]
	pv := m[1]*u + m[4]*v + m[7]
	return f.Sample("inputTexture", pu, pv)
}

func mixKernel(f *Fragment) [4]float32 {
	u, v := uv(f)
	a := f.Sample("a", u, v)
	b := f.Sample("b", u, v)
	t := f.Float("amount")
	var out [4]float32
	for i := range out {
		out[i] = a[i] + (b[i]-a[i])*t
	}
	return out
}
