package software

import (
	"image"
	"math"
)

type vertex struct {
	x, y float64 // framebuffer coordinates
	u, v float64
}

type viewport struct {
	x, y, w, h int
}

// project maps a clip-space position into the viewport. Clip-space y
// points up; framebuffer y points down.
func (vp viewport) project(cx, cy, u, v float32) vertex {
	return vertex{
		x: float64(vp.x) + (float64(cx)+1)/2*float64(vp.w),
		y: float64(vp.y) + (1-float64(cy))/2*float64(vp.h),
		u: float64(u),
		v: float64(v),
	}
}

func (vp viewport) rect() image.Rectangle {
	return image.Rect(vp.x, vp.y, vp.x+vp.w, vp.y+vp.h)
}

func edge(a, b vertex, px, py float64) float64 {
	return (b.x-a.x)*(py-a.y) - (b.y-a.y)*(px-a.x)
}

// coverage returns the pixels of the bounding box of a, b, c inside clip
// and the signed doubled area of the triangle.
func coverage(clip image.Rectangle, a, b, c vertex) (image.Rectangle, float64) {
	area := edge(a, b, c.x, c.y)
	if area == 0 {
		return image.Rectangle{}, 0
	}
	minX := int(math.Floor(min(a.x, b.x, c.x)))
	maxX := int(math.Ceil(max(a.x, b.x, c.x)))
	minY := int(math.Floor(min(a.y, b.y, c.y)))
	maxY := int(math.Ceil(max(a.y, b.y, c.y)))
	return image.Rect(minX, minY, maxX, maxY).Intersect(clip), area
}

// scan shades every pixel of r whose center lies inside a, b, c and
// returns how many were shaded.
func scan(r image.Rectangle, area float64, a, b, c vertex, shade func(x, y int, u, v float64)) int {
	n := 0
	for y := r.Min.Y; y < r.Max.Y; y++ {
		py := float64(y) + 0.5
		for x := r.Min.X; x < r.Max.X; x++ {
			px := float64(x) + 0.5
			w0 := edge(b, c, px, py) / area
			w1 := edge(c, a, px, py) / area
			w2 := edge(a, b, px, py) / area
			if w0 < 0 || w1 < 0 || w2 < 0 {
				continue
			}
			shade(x, y, w0*a.u+w1*b.u+w2*c.u, w0*a.v+w1*b.v+w2*c.v)
			n++
		}
	}
	return n
}
