package shader

import (
	"fmt"
	"strings"

	"github.com/gogpu/naga"
	"github.com/gogpu/naga/ir"
	"github.com/gogpu/naga/spirv"
)

// Stage selects the pipeline stage an entry point belongs to.
type Stage uint8

const (
	// StageVertex is the vertex stage.
	StageVertex Stage = iota
	// StageFragment is the fragment stage.
	StageFragment
)

// String returns the WGSL attribute name of the stage.
func (s Stage) String() string {
	switch s {
	case StageVertex:
		return "vertex"
	case StageFragment:
		return "fragment"
	default:
		return fmt.Sprintf("stage(%d)", uint8(s))
	}
}

func (s Stage) ir() ir.ShaderStage {
	if s == StageVertex {
		return ir.StageVertex
	}
	return ir.StageFragment
}

// Module is one compiled shader stage.
type Module struct {
	// Stage is the stage the module was compiled for.
	Stage Stage
	// EntryPoint is the name of the first entry point of Stage.
	EntryPoint string
	// Source is the WGSL the module was compiled from.
	Source string
	// SPIRV is the generated code as little-endian 32-bit words.
	SPIRV []uint32
	// Resources are the uniform and texture globals in declaration order.
	Resources []Resource
	// Samplers are the sampler globals in declaration order.
	Samplers []Sampler
}

// Compile compiles WGSL source for stage: parse, lower, validate, generate
// SPIR-V, then reflect the module-scope resources.
//
// Every failure wraps ErrCompile and carries the naga diagnostic.
func Compile(stage Stage, source string) (*Module, error) {
	ast, err := naga.Parse(source)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrCompile, stage, err)
	}
	module, err := naga.LowerWithSource(ast, source)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrCompile, stage, err)
	}
	verrs, err := naga.Validate(module)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrCompile, stage, err)
	}
	if len(verrs) > 0 {
		msgs := make([]string, len(verrs))
		for i := range verrs {
			msgs[i] = verrs[i].Error()
		}
		return nil, fmt.Errorf("%w: %s: %s", ErrCompile, stage, strings.Join(msgs, "; "))
	}

	entry := ""
	for _, ep := range module.EntryPoints {
		if ep.Stage == stage.ir() {
			entry = ep.Name
			break
		}
	}
	if entry == "" {
		return nil, fmt.Errorf("%w: %s", ErrNoEntryPoint, stage)
	}

	resources, samplers, err := reflect(module)
	if err != nil {
		return nil, err
	}

	code, err := naga.GenerateSPIRV(module, spirv.Options{Version: spirv.Version1_3})
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrCompile, stage, err)
	}

	return &Module{
		Stage:      stage,
		EntryPoint: entry,
		Source:     source,
		SPIRV:      words(code),
		Resources:  resources,
		Samplers:   samplers,
	}, nil
}

// words converts SPIR-V bytes to little-endian 32-bit words.
func words(b []byte) []uint32 {
	out := make([]uint32, len(b)/4)
	for i := range out {
		out[i] = uint32(b[i*4]) |
			uint32(b[i*4+1])<<8 |
			uint32(b[i*4+2])<<16 |
			uint32(b[i*4+3])<<24
	}
	return out
}
