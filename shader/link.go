package shader

import (
	"cmp"
	"fmt"
	"slices"

	"github.com/gogpu/videograph/backend"
	"github.com/gogpu/videograph/binding"
)

// SamplerSuffix is appended to a texture identifier to name its dedicated
// sampler, e.g. inputTexture is sampled through inputTextureSampler.
const SamplerSuffix = "Sampler"

// Layout is the combined resource interface of a vertex and a fragment
// module.
type Layout struct {
	// Resources are uniforms and textures sorted by (group, binding).
	Resources []Resource
	// Samplers are sorted by (group, binding).
	Samplers []Sampler
	// TextureSamplers maps each texture identifier to the sampler it is
	// read through.
	TextureSamplers map[string]string
}

// Link merges the resources of vs and fs. A resource declared by both
// stages must agree on name, kind and slot.
//
// Each texture is paired with the sampler named texture+SamplerSuffix, or
// with the only sampler when exactly one is declared.
func Link(vs, fs *Module) (*Layout, error) {
	if vs.Stage != StageVertex || fs.Stage != StageFragment {
		return nil, fmt.Errorf("%w: link needs a vertex and a fragment module, got %s and %s", ErrBindingConflict, vs.Stage, fs.Stage)
	}

	type slot struct{ group, binding uint32 }
	bySlot := make(map[slot]string)
	claim := func(name string, s slot) error {
		if prev, ok := bySlot[s]; ok && prev != name {
			return fmt.Errorf("%w: @group(%d) @binding(%d) declared as %q and %q", ErrBindingConflict, s.group, s.binding, prev, name)
		}
		bySlot[s] = name
		return nil
	}

	l := &Layout{TextureSamplers: make(map[string]string)}
	seen := make(map[string]Resource)
	for _, m := range []*Module{vs, fs} {
		for _, r := range m.Resources {
			if prev, ok := seen[r.Name]; ok {
				if prev != r {
					return nil, fmt.Errorf("%w: %q differs between stages", ErrBindingConflict, r.Name)
				}
				continue
			}
			if err := claim(r.Name, slot{r.Group, r.Binding}); err != nil {
				return nil, err
			}
			seen[r.Name] = r
			l.Resources = append(l.Resources, r)
		}
	}
	seenSampler := make(map[string]bool)
	for _, m := range []*Module{vs, fs} {
		for _, s := range m.Samplers {
			if seenSampler[s.Name] {
				continue
			}
			if err := claim(s.Name, slot{s.Group, s.Binding}); err != nil {
				return nil, err
			}
			seenSampler[s.Name] = true
			l.Samplers = append(l.Samplers, s)
		}
	}

	bySlotOrder := func(ag, ab, bg, bb uint32) int {
		if c := cmp.Compare(ag, bg); c != 0 {
			return c
		}
		return cmp.Compare(ab, bb)
	}
	slices.SortFunc(l.Resources, func(a, b Resource) int { return bySlotOrder(a.Group, a.Binding, b.Group, b.Binding) })
	slices.SortFunc(l.Samplers, func(a, b Sampler) int { return bySlotOrder(a.Group, a.Binding, b.Group, b.Binding) })

	for _, r := range l.Resources {
		if r.Kind != binding.KindImage {
			continue
		}
		switch {
		case seenSampler[r.Name+SamplerSuffix]:
			l.TextureSamplers[r.Name] = r.Name + SamplerSuffix
		case len(l.Samplers) == 1:
			l.TextureSamplers[r.Name] = l.Samplers[0].Name
		default:
			return nil, fmt.Errorf("%w: %q", ErrMissingSampler, r.Name)
		}
	}
	return l, nil
}

// Locations returns the backend locations of the uniform and texture
// resources, indexed in (group, binding) order.
func (l *Layout) Locations() []backend.Location {
	locs := make([]backend.Location, len(l.Resources))
	for i, r := range l.Resources {
		locs[i] = backend.Location{
			Identifier: r.Name,
			Kind:       r.Kind,
			Group:      r.Group,
			Binding:    r.Binding,
			Index:      i,
		}
	}
	return locs
}

// Resource returns the resource named name.
func (l *Layout) Resource(name string) (Resource, bool) {
	for _, r := range l.Resources {
		if r.Name == name {
			return r, true
		}
	}
	return Resource{}, false
}
