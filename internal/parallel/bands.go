package parallel

import "image"

// Bands splits r into at most n horizontal bands of at least minRows rows
// each. The bands cover r exactly and do not overlap. An empty r yields
// no bands.
func Bands(r image.Rectangle, n, minRows int) []image.Rectangle {
	rows := r.Dy()
	if r.Empty() {
		return nil
	}
	minRows = max(minRows, 1)
	n = min(max(n, 1), max(rows/minRows, 1))

	bands := make([]image.Rectangle, 0, n)
	y := r.Min.Y
	for i := range n {
		h := rows / n
		if i < rows%n {
			h++
		}
		bands = append(bands, image.Rect(r.Min.X, y, r.Max.X, y+h))
		y += h
	}
	return bands
}
