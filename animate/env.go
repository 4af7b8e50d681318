package animate

import (
	"math"
	"time"
)

// Frame describes the frame an Animator evaluates for.
type Frame struct {
	Index  uint64
	Time   time.Duration
	Width  int
	Height int
}

func clamp(x, lo, hi float64) float64 { return math.Min(math.Max(x, lo), hi) }

func fract(x float64) float64 { return x - math.Floor(x) }

func mix(a, b, t float64) float64 { return a + (b-a)*t }

func step(edge, x float64) float64 {
	if x < edge {
		return 0
	}
	return 1
}

// functions are shared by every environment and never modified.
var functions = map[string]any{
	"pi":    math.Pi,
	"tau":   2 * math.Pi,
	"sin":   math.Sin,
	"cos":   math.Cos,
	"tan":   math.Tan,
	"sqrt":  math.Sqrt,
	"pow":   math.Pow,
	"fract": fract,
	"clamp": clamp,
	"mix":   mix,
	"step":  step,
}

func environment(f Frame) map[string]any {
	env := make(map[string]any, len(functions)+4)
	for k, v := range functions {
		env[k] = v
	}
	env["t"] = f.Time.Seconds()
	env["frame"] = int(f.Index)
	env["width"] = f.Width
	env["height"] = f.Height
	return env
}
