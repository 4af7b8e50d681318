package backend

import (
	"fmt"

	"github.com/gogpu/videograph/binding"
)

// CheckSize validates texture dimensions against limits.
func CheckSize(width, height int, limits Limits) error {
	if width <= 0 || height <= 0 {
		return fmt.Errorf("%w: %dx%d", ErrInvalidSize, width, height)
	}
	if limits.MaxTextureDimension > 0 && (width > limits.MaxTextureDimension || height > limits.MaxTextureDimension) {
		return fmt.Errorf("%w: %dx%d exceeds %d", ErrInvalidSize, width, height, limits.MaxTextureDimension)
	}
	return nil
}

// CheckKind reports a kind mismatch between what loc declares and v.
func CheckKind(loc Location, v binding.Value) error {
	if err := v.Validate(); err != nil {
		return fmt.Errorf("binding %q: %w", loc.Identifier, err)
	}
	if loc.Kind != v.Kind() {
		return fmt.Errorf("%w: %q declared %s, got %s", binding.ErrKindMismatch, loc.Identifier, loc.Kind, v.Kind())
	}
	return nil
}

// LocationTable is a Program helper mapping identifiers to locations.
// Backends embed it in their program types.
type LocationTable struct {
	byName  map[string]int
	ordered []Location
}

// NewLocationTable builds a table from locs, assigning Index in order.
func NewLocationTable(locs []Location) LocationTable {
	t := LocationTable{
		byName:  make(map[string]int, len(locs)),
		ordered: make([]Location, len(locs)),
	}
	for i, l := range locs {
		l.Index = i
		t.ordered[i] = l
		t.byName[l.Identifier] = i
	}
	return t
}

// Location implements Program.Location.
func (t LocationTable) Location(identifier string) (Location, error) {
	i, ok := t.byName[identifier]
	if !ok {
		return Location{}, fmt.Errorf("%w: %q", ErrLocationNotFound, identifier)
	}
	return t.ordered[i], nil
}

// Locations implements Program.Locations.
func (t LocationTable) Locations() []Location {
	out := make([]Location, len(t.ordered))
	copy(out, t.ordered)
	return out
}
