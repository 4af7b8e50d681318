// Package animate produces per-frame runtime bindings from expressions.
//
// Each animated binding names a node, a binding identifier, a kind and an
// expression written in the expr language:
//
//	a, err := animate.New(
//		animate.Binding{Node: "osc", Identifier: "frequency", Kind: binding.KindFloat,
//			Expression: "0.1 + 0.05 * sin(t * tau)"},
//		animate.Binding{Node: "tint", Identifier: "value", Kind: binding.KindVec3,
//			Expression: "[fract(t), 1.0, 0.0]"},
//	)
//	rt, err := a.Evaluate(animate.Frame{Index: n, Time: elapsed, Width: w, Height: h})
//
// Expressions are compiled once. The environment exposes t (seconds),
// frame, width and height, the constants pi and tau, and the functions
// sin, cos, tan, sqrt, pow, fract, clamp, mix and step.
package animate
