package software

import (
	"image"
	"math"
)

func texel(img *image.RGBA, x, y int) [4]float32 {
	b := img.Rect
	x = min(max(x, 0), b.Dx()-1)
	y = min(max(y, 0), b.Dy()-1)
	i := img.PixOffset(b.Min.X+x, b.Min.Y+y)
	p := img.Pix[i : i+4 : i+4]
	return [4]float32{
		float32(p[0]) / 255,
		float32(p[1]) / 255,
		float32(p[2]) / 255,
		float32(p[3]) / 255,
	}
}

func sampleBilinear(img *image.RGBA, u, v float32) [4]float32 {
	w, h := img.Rect.Dx(), img.Rect.Dy()
	if w == 0 || h == 0 {
		return [4]float32{}
	}
	fx := float64(u)*float64(w) - 0.5
	fy := float64(v)*float64(h) - 0.5
	x0, y0 := math.Floor(fx), math.Floor(fy)
	tx, ty := float32(fx-x0), float32(fy-y0)
	ix, iy := int(x0), int(y0)

	c00 := texel(img, ix, iy)
	c10 := texel(img, ix+1, iy)
	c01 := texel(img, ix, iy+1)
	c11 := texel(img, ix+1, iy+1)

	var out [4]float32
	for i := range out {
		top := c00[i] + (c10[i]-c00[i])*tx
		bottom := c01[i] + (c11[i]-c01[i])*tx
		out[i] = top + (bottom-top)*ty
	}
	return out
}

func store(img *image.RGBA, x, y int, c [4]float32) {
	i := img.PixOffset(x, y)
	p := img.Pix[i : i+4 : i+4]
	for k := range 4 {
		p[k] = uint8(clamp01(c[k])*255 + 0.5)
	}
}
