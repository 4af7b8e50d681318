// Package backend defines the raster capabilities the graph engine drives.
//
// The engine never talks to a graphics API directly. It allocates textures
// and render targets through [Device], compiles programs through
// [Compiler] and issues draws through [Rasterizer]. A [Backend] bundles all
// three together with its [Limits].
//
// # Backend Registration
//
// Backends register a [Factory] from init() and are selected at runtime:
//
//	import _ "github.com/gogpu/videograph/backend/software"
//
//	b, err := backend.Open(backend.NameSoftware, 640, 360)
//	if err != nil {
//		log.Fatal(err)
//	}
//	defer b.Close()
//
// [Default] opens the first backend that succeeds in priority order
// (wgpu, then software).
//
// # Available Backends
//
//   - "software": CPU rasterizer running Go fragment kernels
//   - "wgpu": GPU rendering via gogpu/wgpu hal and naga-compiled WGSL
//   - "recording": command recorder for tests and diagnostics
package backend
