package animate

import (
	"fmt"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"

	"github.com/gogpu/videograph/binding"
)

// Binding is one animated runtime binding.
type Binding struct {
	Node       string
	Identifier string
	Kind       binding.Kind
	Expression string
}

func (b Binding) String() string {
	return b.Node + "." + b.Identifier
}

type compiled struct {
	Binding
	program *vm.Program
}

// Animator evaluates a fixed list of animated bindings.
// An Animator is immutable and safe for concurrent use.
type Animator struct {
	entries []compiled
}

// New compiles bindings. Later bindings win when two target the same
// node and identifier.
func New(bindings ...Binding) (*Animator, error) {
	a := &Animator{entries: make([]compiled, 0, len(bindings))}
	env := environment(Frame{})
	for _, b := range bindings {
		if b.Node == "" || b.Identifier == "" {
			return nil, fmt.Errorf("%w: %q needs node and identifier", ErrInvalidBinding, b)
		}
		if !b.Kind.Valid() || b.Kind == binding.KindImage {
			return nil, fmt.Errorf("%w: %s cannot produce %s", ErrInvalidBinding, b, b.Kind)
		}
		prg, err := expr.Compile(b.Expression, expr.Env(env))
		if err != nil {
			return nil, fmt.Errorf("%w: %s: %w", ErrCompile, b, err)
		}
		a.entries = append(a.entries, compiled{Binding: b, program: prg})
	}
	return a, nil
}

// Len returns the number of animated bindings.
func (a *Animator) Len() int {
	if a == nil {
		return 0
	}
	return len(a.entries)
}

// Bindings returns the animated bindings in declaration order.
func (a *Animator) Bindings() []Binding {
	if a == nil {
		return nil
	}
	out := make([]Binding, len(a.entries))
	for i, e := range a.entries {
		out[i] = e.Binding
	}
	return out
}

// Evaluate runs every expression for f and returns the resulting runtime
// bindings. A nil Animator yields an empty Runtime.
func (a *Animator) Evaluate(f Frame) (binding.Runtime, error) {
	rt := make(binding.Runtime)
	if a == nil {
		return rt, nil
	}
	env := environment(f)
	for _, e := range a.entries {
		out, err := vm.Run(e.program, env)
		if err != nil {
			return nil, fmt.Errorf("%w: %s: %w", ErrEvaluate, e.Binding, err)
		}
		v, err := binding.FromAny(e.Kind, out)
		if err != nil {
			return nil, fmt.Errorf("%w: %s: %w", ErrEvaluate, e.Binding, err)
		}
		rt.Put(e.Node, e.Identifier, v)
	}
	return rt, nil
}
