package shader

import "errors"

// Shader compilation and reflection errors.
var (
	// ErrCompile wraps a WGSL parse, lowering, validation or code
	// generation failure. The compiler diagnostic is kept verbatim.
	ErrCompile = errors.New("shader: compile failed")

	// ErrNoEntryPoint is returned when the source declares no entry point
	// for the requested stage.
	ErrNoEntryPoint = errors.New("shader: no entry point for stage")

	// ErrUnsupportedResource is returned for a module-scope resource whose
	// type has no binding kind (storage buffers, cube maps, structs...).
	ErrUnsupportedResource = errors.New("shader: unsupported resource type")

	// ErrBindingConflict is returned when the vertex and fragment stages
	// disagree on a (group, binding) pair or an identifier.
	ErrBindingConflict = errors.New("shader: binding conflict")

	// ErrMissingSampler is returned for a texture no sampler can be paired with.
	ErrMissingSampler = errors.New("shader: texture has no sampler")
)
