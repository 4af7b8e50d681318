// Package wgpu implements the GPU backend on the gogpu/wgpu HAL.
//
// Every texture, and the display surface, is an RGBA8Unorm texture usable
// as a render attachment, a sampled texture and a copy source or
// destination. Programs are compiled to SPIR-V with naga and turned into
// one render pipeline each; bindings are collected between UseProgram and
// DrawTriangles and flushed as a single bind group at @group(0).
//
// Each DrawTriangles records and submits one render pass. Transient HAL
// objects are released once the queue reports the submission complete.
//
// The backend renders the surface offscreen. Hosts present it by reading
// it back (ReadSurface) or by sharing the device through NewFromProvider.
//
// The backend registers itself as backend.NameWGPU, opening the first
// adapter of the default HAL backend for the platform.
package wgpu
