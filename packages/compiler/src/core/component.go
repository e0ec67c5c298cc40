package core

import (
	"fmt"
	"strings"
)

// ParamType is the declared type of a component parameter
type ParamType int

const (
	ParamTypeAny ParamType = iota
	ParamTypeString
	ParamTypeInt
	ParamTypeBool
)

var paramTypeNames = map[ParamType]string{
	ParamTypeAny:    "any",
	ParamTypeString: "string",
	ParamTypeInt:    "int",
	ParamTypeBool:   "bool",
}

// String returns the config name of the type
func (t ParamType) String() string {
	if name, ok := paramTypeNames[t]; ok {
		return name
	}
	return fmt.Sprintf("ParamType(%d)", int(t))
}

// ParseParamType parses a config type name; the empty string means any
func ParseParamType(name string) (ParamType, error) {
	if name == "" {
		return ParamTypeAny, nil
	}
	for t, n := range paramTypeNames {
		if n == strings.ToLower(name) {
			return t, nil
		}
	}
	return ParamTypeAny, fmt.Errorf("unknown parameter type %q", name)
}

// Parameter is a declared parameter of a component render target
type Parameter struct {
	Name     string
	Type     ParamType
	Default  interface{}
	Required bool
}

// HasDefault reports whether the parameter declares a default value
func (p Parameter) HasDefault() bool {
	return p.Default != nil
}

// ContentMode selects how element children reach the render target
type ContentMode int

const (
	// ContentRaw hands children over as serialized markup
	ContentRaw ContentMode = iota
	// ContentStructured hands children over as a node slot
	ContentStructured
)

// ParseContentMode parses a config content mode name
func ParseContentMode(name string) (ContentMode, error) {
	switch strings.ToLower(name) {
	case "", "raw":
		return ContentRaw, nil
	case "structured":
		return ContentStructured, nil
	}
	return ContentRaw, fmt.Errorf("unknown content mode %q", name)
}

// CacheHint tells the host runtime how to cache a render call
type CacheHint int

const (
	CacheHintAuto CacheHint = iota
	CacheHintOn
	CacheHintOff
)

// String returns the wire name of the hint
func (h CacheHint) String() string {
	switch h {
	case CacheHintOn:
		return "on"
	case CacheHintOff:
		return "off"
	default:
		return "auto"
	}
}

// ParseCacheHint parses a wire name of a hint
func ParseCacheHint(name string) (CacheHint, error) {
	switch strings.ToLower(name) {
	case "", "auto":
		return CacheHintAuto, nil
	case "on":
		return CacheHintOn, nil
	case "off":
		return CacheHintOff, nil
	}
	return CacheHintAuto, fmt.Errorf("unknown cache hint %q", name)
}

// DefaultContentParam is the argument name carrying element children
const DefaultContentParam = "content"

// AttributesParam is the pseudo argument carrying the element attribute set
const AttributesParam = "__attributes"

// ComponentDescriptor describes how a tag prefix maps to a render target.
// Subtypes maps a first positional segment to an alternate handler; Inline lays
// the emitted call out like an inline element. Descriptors are registered once
// and never mutated afterwards.
type ComponentDescriptor struct {
	Name               string
	Handler            string
	TagPatterns        []string
	PositionalBindings []string
	Parameters         []Parameter
	Subtypes           map[string]string
	IsStatic           bool
	Priority           int
	Content            ContentMode
	ContentParam       string
	CacheHint          CacheHint
	Inline             bool
}

// Parameter returns the declared parameter called name
func (d *ComponentDescriptor) Parameter(name string) (Parameter, bool) {
	for _, p := range d.Parameters {
		if p.Name == name {
			return p, true
		}
	}
	return Parameter{}, false
}

// ContentParamName returns the argument name used for children
func (d *ComponentDescriptor) ContentParamName() string {
	if d.ContentParam != "" {
		return d.ContentParam
	}
	return DefaultContentParam
}

// HandlerFor returns the handler id for an optional subtype selector
func (d *ComponentDescriptor) HandlerFor(subtype string) string {
	if h, ok := d.Subtypes[subtype]; ok && subtype != "" {
		return h
	}
	if d.Handler != "" {
		return d.Handler
	}
	return d.Name
}

// EffectiveCacheHint returns the hint emitted with render calls
func (d *ComponentDescriptor) EffectiveCacheHint() CacheHint {
	if d.CacheHint == CacheHintAuto && d.IsStatic {
		return CacheHintOn
	}
	return d.CacheHint
}

// Validate checks the descriptor for configuration mistakes
func (d *ComponentDescriptor) Validate() error {
	if d.Name == "" {
		return fmt.Errorf("component without name")
	}
	if len(d.TagPatterns) == 0 {
		return fmt.Errorf("component %q: no tag patterns", d.Name)
	}
	for _, pattern := range d.TagPatterns {
		if pattern == "" || pattern != strings.ToLower(pattern) {
			return fmt.Errorf("component %q: tag pattern %q must be non-empty lowercase", d.Name, pattern)
		}
		if i := strings.IndexByte(pattern, ':'); i >= 0 && i != len(pattern)-1 {
			return fmt.Errorf("component %q: tag pattern %q may only end with ':'", d.Name, pattern)
		}
	}
	seen := map[string]bool{}
	for _, p := range d.Parameters {
		if p.Name == "" {
			return fmt.Errorf("component %q: parameter without name", d.Name)
		}
		if seen[p.Name] {
			return fmt.Errorf("component %q: duplicate parameter %q", d.Name, p.Name)
		}
		seen[p.Name] = true
	}
	for _, b := range d.PositionalBindings {
		if b == "" {
			return fmt.Errorf("component %q: empty positional binding", d.Name)
		}
	}
	return nil
}
