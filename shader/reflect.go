package shader

import (
	"fmt"

	"github.com/gogpu/naga/ir"

	"github.com/gogpu/videograph/binding"
)

// Resource is a uniform or texture global of a module.
type Resource struct {
	Name           string
	Kind           binding.Kind
	Group, Binding uint32
	// Size is the uniform buffer size in bytes, rounded up to 16.
	// It is 0 for textures.
	Size uint64
}

// Sampler is a sampler global of a module.
type Sampler struct {
	Name           string
	Group, Binding uint32
}

// reflect classifies the module-scope resources of m.
func reflect(m *ir.Module) ([]Resource, []Sampler, error) {
	var (
		resources []Resource
		samplers  []Sampler
	)
	for _, gv := range m.GlobalVariables {
		if gv.Binding == nil {
			continue
		}
		if int(gv.Type) >= len(m.Types) {
			return nil, nil, fmt.Errorf("%w: %q has an invalid type handle", ErrUnsupportedResource, gv.Name)
		}
		if gv.Binding.Group != 0 {
			return nil, nil, fmt.Errorf("%w: %q uses @group(%d), only group 0 is bound", ErrUnsupportedResource, gv.Name, gv.Binding.Group)
		}
		inner := m.Types[gv.Type].Inner

		switch gv.Space {
		case ir.SpaceUniform:
			kind, size, ok := uniformKind(inner)
			if !ok {
				return nil, nil, fmt.Errorf("%w: uniform %q (%T): %w", ErrUnsupportedResource, gv.Name, inner, binding.ErrUnsupportedKind)
			}
			resources = append(resources, Resource{
				Name:    gv.Name,
				Kind:    kind,
				Group:   gv.Binding.Group,
				Binding: gv.Binding.Binding,
				Size:    align16(size),
			})
		case ir.SpaceHandle:
			switch t := inner.(type) {
			case ir.SamplerType:
				if t.Comparison {
					return nil, nil, fmt.Errorf("%w: comparison sampler %q", ErrUnsupportedResource, gv.Name)
				}
				samplers = append(samplers, Sampler{Name: gv.Name, Group: gv.Binding.Group, Binding: gv.Binding.Binding})
			case ir.ImageType:
				if t.Dim != ir.Dim2D || t.Arrayed || t.Multisampled || t.Class != ir.ImageClassSampled {
					return nil, nil, fmt.Errorf("%w: texture %q must be a plain texture_2d", ErrUnsupportedResource, gv.Name)
				}
				resources = append(resources, Resource{
					Name:    gv.Name,
					Kind:    binding.KindImage,
					Group:   gv.Binding.Group,
					Binding: gv.Binding.Binding,
				})
			default:
				return nil, nil, fmt.Errorf("%w: handle %q (%T)", ErrUnsupportedResource, gv.Name, inner)
			}
		default:
			return nil, nil, fmt.Errorf("%w: %q in address space %d", ErrUnsupportedResource, gv.Name, gv.Space)
		}
	}
	return resources, samplers, nil
}

// uniformKind maps a uniform type to a binding kind and its byte size.
func uniformKind(inner ir.TypeInner) (binding.Kind, uint64, bool) {
	switch t := inner.(type) {
	case ir.ScalarType:
		switch t.Kind {
		case ir.ScalarFloat:
			if t.Width == 4 {
				return binding.KindFloat, 4, true
			}
		case ir.ScalarSint:
			if t.Width == 4 {
				return binding.KindInt, 4, true
			}
		}
	case ir.VectorType:
		if t.Scalar.Kind != ir.ScalarFloat || t.Scalar.Width != 4 {
			return binding.KindInvalid, 0, false
		}
		switch t.Size {
		case ir.Vec2:
			return binding.KindVec2, 8, true
		case ir.Vec3:
			return binding.KindVec3, 12, true
		}
	case ir.MatrixType:
		if t.Columns == ir.Vec3 && t.Rows == ir.Vec3 && t.Scalar.Kind == ir.ScalarFloat && t.Scalar.Width == 4 {
			// Each column is padded to 16 bytes.
			return binding.KindMat3, 48, true
		}
	}
	return binding.KindInvalid, 0, false
}

func align16(n uint64) uint64 {
	return (n + 15) &^ 15
}
