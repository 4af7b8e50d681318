package shader

import (
	"maps"
	"slices"
)

// Built-in fragment programs. Each source declares exactly one fragment
// entry point named after the program (fs_<name>), which is also the key
// CPU backends use to find the matching kernel.
const (
	// Oscillator emits a red sine wave over the pixel index, advanced by
	// the frame counter t and rotated per pixel by the luminance of
	// rotationTheta.
	Oscillator = `
const TWO_PI: f32 = 6.28318530718;

@group(0) @binding(0) var<uniform> t: i32;
@group(0) @binding(1) var<uniform> frequency: f32;
@group(0) @binding(2) var<uniform> phaseWrap: f32;
@group(0) @binding(3) var<uniform> inputTextureDimensions: vec2<f32>;
@group(0) @binding(4) var rotationTheta: texture_2d<f32>;
@group(0) @binding(5) var rotationThetaSampler: sampler;

fn rotate(v: vec2<f32>, a: f32) -> vec2<f32> {
    let s = sin(a);
    let c = cos(a);
    return vec2<f32>(c * v.x + s * v.y, c * v.y - s * v.x);
}

fn luminance(rgb: vec3<f32>) -> f32 {
    return 0.2126 * rgb.r + 0.7152 * rgb.g + 0.0722 * rgb.b;
}

@fragment
fn fs_oscillator(@builtin(position) frag_coord: vec4<f32>) -> @location(0) vec4<f32> {
    let resolution = inputTextureDimensions;
    let pixel_count = resolution.x * resolution.y;
    let theta = luminance(textureSample(rotationTheta, rotationThetaSampler, frag_coord.xy / resolution).rgb) * TWO_PI;
    let position = rotate(frag_coord.xy, theta);
    let pixel_index = position.x + position.y * resolution.x + f32(t) * pixel_count;
    let x = pixel_index * TWO_PI / pixel_count;
    var y = (frequency / 60.0) * x;
    if (phaseWrap > 0.0) {
        y = y - phaseWrap * floor(y / phaseWrap);
    }
    return vec4<f32>((sin(y) + 1.0) / 2.0, 0.0, 0.0, 1.0);
}
`

	// Constant fills the output with a single color.
	Constant = `
@group(0) @binding(0) var<uniform> value: vec3<f32>;

@fragment
fn fs_constant() -> @location(0) vec4<f32> {
    return vec4<f32>(value, 1.0);
}
`

	// Invert outputs one minus the RGB of inputTexture with opaque alpha.
	Invert = `
@group(0) @binding(0) var inputTexture: texture_2d<f32>;
@group(0) @binding(1) var inputTextureSampler: sampler;
@group(0) @binding(2) var<uniform> inputTextureDimensions: vec2<f32>;

@fragment
fn fs_invert(@builtin(position) frag_coord: vec4<f32>) -> @location(0) vec4<f32> {
    let inverted = vec4<f32>(1.0) - textureSample(inputTexture, inputTextureSampler, frag_coord.xy / inputTextureDimensions);
    return vec4<f32>(inverted.rgb, 1.0);
}
`

	// Transform samples inputTexture at the normalized coordinate mapped
	// through the 3x3 matrix transform.
	Transform = `
@group(0) @binding(0) var inputTexture: texture_2d<f32>;
@group(0) @binding(1) var inputTextureSampler: sampler;
@group(0) @binding(2) var<uniform> inputTextureDimensions: vec2<f32>;
@group(0) @binding(3) var<uniform> transform: mat3x3<f32>;

@fragment
fn fs_transform(@builtin(position) frag_coord: vec4<f32>) -> @location(0) vec4<f32> {
    let uv = frag_coord.xy / inputTextureDimensions;
    let p = transform * vec3<f32>(uv, 1.0);
    return textureSample(inputTexture, inputTextureSampler, p.xy);
}
`

	// Mix blends textures a and b: mix(a, b, amount).
	Mix = `
@group(0) @binding(0) var a: texture_2d<f32>;
@group(0) @binding(1) var aSampler: sampler;
@group(0) @binding(2) var b: texture_2d<f32>;
@group(0) @binding(3) var bSampler: sampler;
@group(0) @binding(4) var<uniform> amount: f32;
@group(0) @binding(5) var<uniform> inputTextureDimensions: vec2<f32>;

@fragment
fn fs_mix(@builtin(position) frag_coord: vec4<f32>) -> @location(0) vec4<f32> {
    let uv = frag_coord.xy / inputTextureDimensions;
    let ca = textureSample(a, aSampler, uv);
    let cb = textureSample(b, bSampler, uv);
    return mix(ca, cb, amount);
}
`
)

var builtins = map[string]string{
	"oscillator": Oscillator,
	"constant":   Constant,
	"invert":     Invert,
	"transform":  Transform,
	"mix":        Mix,
}

// Builtin returns the fragment source of a built-in program by name.
func Builtin(name string) (string, bool) {
	src, ok := builtins[name]
	return src, ok
}

// BuiltinNames returns the built-in program names in sorted order.
func BuiltinNames() []string {
	return slices.Sorted(maps.Keys(builtins))
}
