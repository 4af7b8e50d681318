// Package recording provides a backend that records calls instead of
// rendering.
//
// Textures carry content tags rather than pixels: a draw stamps its
// target with "<program>#<seq>", copies and surface captures move the tag.
// That makes the data flow of a frame inspectable:
//
//	rec := recording.New(64, 64)
//	eng, _ := videograph.New(rec)
//	_ = eng.RenderFrame(g, nil, "out")
//	for _, d := range rec.Draws() {
//		fmt.Println(d.Program, d.Images)
//	}
//
// Programs compiled through CompileProgram are reflected with naga, so a
// graph validated against the recorder binds the same identifiers on GPU.
// NewProgram declares identifiers directly for tests that need no WGSL.
package recording
