package shader

// QuadVertexCount is the number of vertices of the full-screen quad.
const QuadVertexCount = 6

// QuadPositions are the clip-space positions of two triangles covering
// the viewport.
var QuadPositions = []float32{
	-1, -1,
	1, -1,
	-1, 1,
	-1, 1,
	1, -1,
	1, 1,
}

// QuadTexCoords are the texture coordinates matching QuadPositions.
var QuadTexCoords = []float32{
	0, 0,
	1, 0,
	0, 1,
	0, 1,
	1, 0,
	1, 1,
}

// QuadVertex is the vertex stage shared by every node program. Positions
// are read from location 0 and texture coordinates from location 1.
const QuadVertex = `
struct VertexOutput {
    @builtin(position) position: vec4<f32>,
    @location(0) tex_coord: vec2<f32>,
}

@vertex
fn vs_main(@location(0) position: vec2<f32>, @location(1) tex_coord: vec2<f32>) -> VertexOutput {
    var out: VertexOutput;
    out.position = vec4<f32>(position, 0.0, 1.0);
    out.tex_coord = tex_coord;
    return out;
}
`
