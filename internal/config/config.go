// Package config loads the HCL configuration of the vgdemo command.
//
// A configuration file looks like this:
//
//	width   = 320
//	height  = 240
//	frames  = 120
//	backend = "software"
//	output  = "feedback.png"
//
//	log {
//	  level  = "debug"
//	  format = "json"
//	}
//
//	node "oscillator" {
//	  frequency = 0.2
//	}
//
//	animate "oscillator" "phaseWrap" {
//	  kind       = "float"
//	  expression = "mix(0, 4, fract(t / 10))"
//	}
//
// Every setting is optional. Attributes of a node block become runtime
// bindings of that node: a number is a float, a list of 2, 3 or 9 numbers
// is a vec2, vec3 or mat3.
package config

import (
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/zclconf/go-cty/cty"

	"github.com/gogpu/videograph/animate"
	"github.com/gogpu/videograph/binding"
)

// Config is the resolved demo configuration.
type Config struct {
	Width, Height int
	Frames        int
	// FrameRate converts frame indices to animation time.
	FrameRate float64
	Backend   string
	Output    string
	LogLevel  string
	LogFormat string
	// Overrides are the constant runtime bindings from node blocks.
	Overrides binding.Runtime
	// Animations are the animate blocks.
	Animations []animate.Binding
}

// Default returns the configuration used when no file is given.
func Default() *Config {
	return &Config{
		Width:     256,
		Height:    256,
		Frames:    60,
		FrameRate: 60,
		Backend:   "software",
		Output:    "vgdemo.png",
		LogLevel:  "info",
		LogFormat: "text",
		Overrides: binding.Runtime{},
	}
}

// file is the decoding target of one HCL file.
type file struct {
	Width     *int            `hcl:"width,optional"`
	Height    *int            `hcl:"height,optional"`
	Frames    *int            `hcl:"frames,optional"`
	FrameRate *float64        `hcl:"frame_rate,optional"`
	Backend   *string         `hcl:"backend,optional"`
	Output    *string         `hcl:"output,optional"`
	Log       *logBlock       `hcl:"log,block"`
	Nodes     []*nodeBlock    `hcl:"node,block"`
	Animate   []*animateBlock `hcl:"animate,block"`
}

type logBlock struct {
	Level  *string `hcl:"level,optional"`
	Format *string `hcl:"format,optional"`
}

type nodeBlock struct {
	Key  string   `hcl:"key,label"`
	Body hcl.Body `hcl:",remain"`
}

type animateBlock struct {
	Node       string `hcl:"node,label"`
	Identifier string `hcl:"identifier,label"`
	Kind       string `hcl:"kind"`
	Expression string `hcl:"expression"`
}

// Load parses and decodes the HCL file at path on top of Default.
func Load(path string) (*Config, error) {
	parser := hclparse.NewParser()
	f, diags := parser.ParseHCLFile(path)
	if diags.HasErrors() {
		return nil, fmt.Errorf("%w: %s: %s", ErrParse, path, diags.Error())
	}
	return decode(path, f.Body)
}

// Parse decodes HCL source on top of Default. filename is used in
// diagnostics only.
func Parse(src []byte, filename string) (*Config, error) {
	parser := hclparse.NewParser()
	f, diags := parser.ParseHCL(src, filename)
	if diags.HasErrors() {
		return nil, fmt.Errorf("%w: %s: %s", ErrParse, filename, diags.Error())
	}
	return decode(filename, f.Body)
}

func decode(name string, body hcl.Body) (*Config, error) {
	var raw file
	if diags := gohcl.DecodeBody(body, nil, &raw); diags.HasErrors() {
		return nil, fmt.Errorf("%w: %s: %s", ErrDecode, name, diags.Error())
	}

	c := Default()
	setIf(&c.Width, raw.Width)
	setIf(&c.Height, raw.Height)
	setIf(&c.Frames, raw.Frames)
	setIf(&c.FrameRate, raw.FrameRate)
	setIf(&c.Backend, raw.Backend)
	setIf(&c.Output, raw.Output)
	if raw.Log != nil {
		setIf(&c.LogLevel, raw.Log.Level)
		setIf(&c.LogFormat, raw.Log.Format)
	}

	for _, n := range raw.Nodes {
		attrs, diags := n.Body.JustAttributes()
		if diags.HasErrors() {
			return nil, fmt.Errorf("%w: node %q: %s", ErrDecode, n.Key, diags.Error())
		}
		for id, attr := range attrs {
			v, diags := attr.Expr.Value(nil)
			if diags.HasErrors() {
				return nil, fmt.Errorf("%w: %s.%s: %s", ErrDecode, n.Key, id, diags.Error())
			}
			bv, err := fromCty(v)
			if err != nil {
				return nil, fmt.Errorf("%w: %s.%s (%s): %w", ErrDecode, n.Key, id, attr.Range, err)
			}
			c.Overrides.Put(n.Key, id, bv)
		}
	}

	for _, a := range raw.Animate {
		kind, err := binding.ParseKind(a.Kind)
		if err != nil {
			return nil, fmt.Errorf("%w: animate %s.%s: %w", ErrDecode, a.Node, a.Identifier, err)
		}
		c.Animations = append(c.Animations, animate.Binding{
			Node:       a.Node,
			Identifier: a.Identifier,
			Kind:       kind,
			Expression: a.Expression,
		})
	}
	return c, c.Validate()
}

func setIf[T any](dst *T, src *T) {
	if src != nil {
		*dst = *src
	}
}

// fromCty converts a number or a list of numbers.
func fromCty(v cty.Value) (binding.Value, error) {
	if v.IsNull() || !v.IsWhollyKnown() {
		return binding.Value{}, fmt.Errorf("%w: value is null or unknown", binding.ErrKindMismatch)
	}
	ty := v.Type()
	if ty == cty.Number {
		f, _ := v.AsBigFloat().Float64()
		return binding.Float(float32(f)), nil
	}
	if !ty.IsTupleType() && !ty.IsListType() {
		return binding.Value{}, fmt.Errorf("%w: %s is not a number or a list", binding.ErrKindMismatch, ty.FriendlyName())
	}
	elems := v.AsValueSlice()
	comps := make([]float64, len(elems))
	for i, e := range elems {
		if e.IsNull() || e.Type() != cty.Number {
			return binding.Value{}, fmt.Errorf("%w: element %d is not a number", binding.ErrKindMismatch, i)
		}
		comps[i], _ = e.AsBigFloat().Float64()
	}
	switch len(comps) {
	case 2:
		return binding.FromAny(binding.KindVec2, comps)
	case 3:
		return binding.FromAny(binding.KindVec3, comps)
	case 9:
		return binding.FromAny(binding.KindMat3, comps)
	default:
		return binding.Value{}, fmt.Errorf("%w: %d components", binding.ErrKindMismatch, len(comps))
	}
}

// Validate checks ranges and enumerations.
func (c *Config) Validate() error {
	if c.Width <= 0 || c.Height <= 0 {
		return fmt.Errorf("%w: size %dx%d", ErrInvalid, c.Width, c.Height)
	}
	if c.Frames <= 0 {
		return fmt.Errorf("%w: frames %d", ErrInvalid, c.Frames)
	}
	if c.FrameRate <= 0 {
		return fmt.Errorf("%w: frame_rate %g", ErrInvalid, c.FrameRate)
	}
	if _, err := parseLevel(c.LogLevel); err != nil {
		return err
	}
	switch c.LogFormat {
	case "text", "json":
	default:
		return fmt.Errorf("%w: log format %q", ErrInvalid, c.LogFormat)
	}
	return nil
}

func parseLevel(s string) (slog.Level, error) {
	var l slog.Level
	if err := l.UnmarshalText([]byte(s)); err != nil {
		return 0, fmt.Errorf("%w: log level %q", ErrInvalid, s)
	}
	return l, nil
}

// NewLogger builds the slog logger described by the log settings.
func (c *Config) NewLogger(w io.Writer) *slog.Logger {
	level, err := parseLevel(c.LogLevel)
	if err != nil {
		level = slog.LevelInfo
	}
	opts := &slog.HandlerOptions{Level: level}
	if strings.EqualFold(c.LogFormat, "json") {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}
