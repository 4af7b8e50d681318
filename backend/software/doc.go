// Package software implements a CPU raster backend.
//
// Textures are *image.RGBA. Programs are compiled and reflected with naga
// like on the GPU, but fragments are shaded by Go kernels registered per
// fragment entry point:
//
//	software.RegisterKernel("fs_grayscale", func(f *software.Fragment) [4]float32 {
//		dim := f.Vec2("inputTextureDimensions")
//		c := f.Sample("inputTexture", f.X/dim[0], f.Y/dim[1])
//		l := 0.2126*c[0] + 0.7152*c[1] + 0.0722*c[2]
//		return [4]float32{l, l, l, 1}
//	})
//
// Kernels for the built-in programs of package shader are registered by
// default. Triangles are rasterized with edge functions at pixel centers,
// in framebuffer coordinates with the origin at the top-left corner,
// matching WGSL's @builtin(position).
//
// The backend registers itself as backend.NameSoftware.
package software
