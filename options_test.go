package videograph

import (
	"testing"

	"github.com/gogpu/videograph/binding"
	"github.com/gogpu/videograph/graph"
)

func TestDefaultOptions(t *testing.T) {
	o := defaultOptions()
	if o.dimensionsIdentifier != DefaultDimensionsIdentifier {
		t.Errorf("dimensionsIdentifier = %q, want %q", o.dimensionsIdentifier, DefaultDimensionsIdentifier)
	}
	if o.timeIdentifier != "" {
		t.Errorf("timeIdentifier = %q, want empty", o.timeIdentifier)
	}
	if o.locationCacheSize <= 0 {
		t.Errorf("locationCacheSize = %d, want bounded", o.locationCacheSize)
	}
}

func TestOptionsApplyInOrder(t *testing.T) {
	o := defaultOptions()
	for _, opt := range []Option{
		WithTimeIdentifier("t"),
		WithStepCacheSize(4),
		WithLocationCacheSize(0),
		WithTimeIdentifier("frame"),
	} {
		opt(&o)
	}
	if o.timeIdentifier != "frame" || o.stepCacheSize != 4 || o.locationCacheSize != 0 {
		t.Errorf("options = %+v", o)
	}
}

func TestWithDimensionsIdentifier(t *testing.T) {
	tests := []struct {
		name   string
		id     string
		bound  string
		absent string
	}{
		{"renamed", "size", "size", DefaultDimensionsIdentifier},
		{"disabled", "", "", DefaultDimensionsIdentifier},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e, rec := newEngine(t, 6, 3, WithDimensionsIdentifier(tt.id))
			declared := map[string]binding.Kind{
				"in":                        binding.KindImage,
				"size":                      binding.KindVec2,
				DefaultDimensionsIdentifier: binding.KindVec2,
			}
			g := build(t, graph.NewBuilder().
				AddNode(graph.Node{Key: "src", Program: program("src", nil)}).
				AddNode(graph.Node{Key: "dst", Program: program("dst", declared)}).
				AddEdge(graph.Edge{Key: "dst.in", Source: "dst", Destination: "src", Input: "in"}))
			render(t, e, g, nil, "dst")

			draws := rec.Draws()
			last := draws[len(draws)-1]
			if _, ok := last.Uniforms[tt.absent]; ok {
				t.Errorf("%q bound, want unbound", tt.absent)
			}
			if tt.bound == "" {
				return
			}
			if got := last.Uniforms[tt.bound]; !got.Equal(binding.Vec2(6, 3)) {
				t.Errorf("%s = %v, want (6, 3)", tt.bound, got)
			}
		})
	}
}
