// Package videograph renders images by executing a graph of GPU
// processing nodes once per frame.
//
// # Overview
//
// Every node owns a program and produces one image. Edges declare that a
// node's input is supplied by another node's output. Graphs may contain
// cycles: the edge that closes a cycle reads its producer's output from
// the previous frame, so a feedback loop is delayed by exactly one frame.
//
// # Quick Start
//
//	import (
//	    "github.com/gogpu/videograph"
//	    "github.com/gogpu/videograph/backend"
//	    _ "github.com/gogpu/videograph/backend/software"
//	    "github.com/gogpu/videograph/binding"
//	    "github.com/gogpu/videograph/graph"
//	)
//
//	b, _ := backend.Default(512, 512)
//	e, _ := videograph.New(b)
//	osc, _ := e.CompileBuiltin("oscillator")
//	inv, _ := e.CompileBuiltin("invert")
//
//	g, _ := graph.NewBuilder().
//	    AddNode(graph.Node{Key: "osc", Program: osc, TimeIdentifier: "t",
//	        Constants: binding.Set{"frequency": binding.Float(0.1), "phaseWrap": binding.Float(0)}}).
//	    AddNode(graph.Node{Key: "invert", Program: inv}).
//	    AddEdge(graph.Edge{Key: "invert<-osc", Source: "invert", Destination: "osc", Input: "inputTexture"}).
//	    AddEdge(graph.Edge{Key: "osc<-invert", Source: "osc", Destination: "invert", Input: "rotationTheta"}).
//	    Build()
//
//	for running {
//	    if err := e.RenderFrame(g, nil, "invert"); err != nil {
//	        log.Fatal(err)
//	    }
//	}
//
// # Bindings
//
// The bindings of a node are merged from three layers, later layers
// winning: the node's constants, the derived layer (upstream images, the
// raster dimensions and the frame counter) and the caller's runtime
// overrides for the frame. A binding the program does not declare is an
// error; the frame is aborted instead of drawing an incomplete image.
//
// # Architecture
//
//   - graph: nodes, edges and the dependency resolver
//   - binding: tagged binding values and layering
//   - resource: per-node read/write textures and render targets
//   - shader: WGSL compilation and reflection
//   - backend: device capabilities, with software, wgpu and recording
//     implementations
//   - animate: expression-driven runtime bindings
//
// # Logging
//
// videograph is silent by default. See [SetLogger].
package videograph
