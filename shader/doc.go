// Package shader compiles WGSL with naga and reflects the resources a
// program declares.
//
// Every node program is a vertex stage ([QuadVertex] for the built-in
// quad) plus a fragment stage. Module-scope resources of group 0 become
// binding locations:
//
//	var<uniform> x: f32           -> float
//	var<uniform> x: vec2<f32>     -> vec2
//	var<uniform> x: vec3<f32>     -> vec3
//	var<uniform> x: i32           -> int
//	var<uniform> x: mat3x3<f32>   -> mat3
//	var x: texture_2d<f32>        -> image
//
// Samplers are not bindings; each texture is read through the sampler
// named texture+"Sampler" (or the only sampler of the program), which the
// backend binds automatically.
//
// Compilation errors wrap [ErrCompile] and carry the naga diagnostic.
package shader
