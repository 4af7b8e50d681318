package wgpu_test

import (
	"testing"

	"github.com/gogpu/gputypes"
	_ "github.com/gogpu/wgpu/hal/noop"

	"github.com/gogpu/videograph"
	"github.com/gogpu/videograph/backend/wgpu"
	"github.com/gogpu/videograph/binding"
	"github.com/gogpu/videograph/graph"
)

func TestEngineFeedbackDemo(t *testing.T) {
	b, err := wgpu.Open(gputypes.BackendEmpty, 16, 16)
	if err != nil {
		t.Fatal(err)
	}
	defer b.Close()
	e, err := videograph.New(b)
	if err != nil {
		t.Fatal(err)
	}
	defer e.Close()

	osc, err := e.CompileBuiltin("oscillator")
	if err != nil {
		t.Fatal(err)
	}
	inv, err := e.CompileBuiltin("invert")
	if err != nil {
		t.Fatal(err)
	}
	g, err := graph.NewBuilder().
		AddNode(graph.Node{Key: "oscillator", Program: osc, TimeIdentifier: "t",
			Constants: binding.Set{"frequency": binding.Float(0.1), "phaseWrap": binding.Float(0)}}).
		AddNode(graph.Node{Key: "invert", Program: inv}).
		AddEdge(graph.Edge{Key: "invert.input", Source: "invert", Destination: "oscillator", Input: "inputTexture"}).
		AddEdge(graph.Edge{Key: "oscillator.theta", Source: "oscillator", Destination: "invert", Input: "rotationTheta"}).
		Build()
	if err != nil {
		t.Fatal(err)
	}

	for i := range 3 {
		if err := e.RenderFrame(g, nil, "invert"); err != nil {
			t.Fatalf("frame %d: RenderFrame() error = %v", i, err)
		}
	}
	s := e.LastFrame()
	if s.Draws != 2 || s.FeedbackReads != 1 || s.ImageBindings != 2 {
		t.Errorf("LastFrame() = %+v, want 2 draws, 2 image bindings and 1 feedback read", s)
	}
	if err := e.Resize(32, 8); err != nil {
		t.Fatalf("Resize() error = %v", err)
	}
	if err := e.RenderFrame(g, nil, "invert"); err != nil {
		t.Fatalf("RenderFrame() after Resize error = %v", err)
	}
	img, err := b.ReadSurface()
	if err != nil {
		t.Fatal(err)
	}
	if img.Rect.Dx() != 32 || img.Rect.Dy() != 8 {
		t.Errorf("surface = %v, want 32x8", img.Rect)
	}
}
