package output

import (
	"fmt"

	"tagc-go/packages/compiler/src/core"
	"tagc-go/packages/compiler/src/ml_parser"
	"tagc-go/packages/compiler/src/util"
)

// Origin records where an argument value came from
type Origin int

const (
	OriginExplicit Origin = iota
	OriginDefaulted
	OriginPositional
)

// String returns the name of the origin
func (o Origin) String() string {
	switch o {
	case OriginDefaulted:
		return "defaulted"
	case OriginPositional:
		return "positional"
	default:
		return "explicit"
	}
}

// Argument is one named argument of a render call. Value is a string, int,
// bool, nil, []interface{}, *ml_parser.AttributeSet, *NodeSlot or *RenderCall.
type Argument struct {
	Name   string
	Value  interface{}
	Origin Origin
}

// RenderCall is the structured descriptor emitted for a matched component
type RenderCall struct {
	Target     string
	Handler    string
	Arguments  []Argument
	CacheHint  core.CacheHint
	SourceSpan *util.ParseSourceSpan
}

// NewRenderCall creates a new RenderCall
func NewRenderCall(target, handler string, arguments []Argument, cacheHint core.CacheHint, sourceSpan *util.ParseSourceSpan) *RenderCall {
	return &RenderCall{
		Target:     target,
		Handler:    handler,
		Arguments:  arguments,
		CacheHint:  cacheHint,
		SourceSpan: sourceSpan,
	}
}

// GetSourceSpan returns the span of the matched element
func (c *RenderCall) GetSourceSpan() *util.ParseSourceSpan {
	return c.SourceSpan
}

// Argument returns the argument called name
func (c *RenderCall) Argument(name string) (Argument, bool) {
	for _, a := range c.Arguments {
		if a.Name == name {
			return a, true
		}
	}
	return Argument{}, false
}

// Values returns the arguments as a map
func (c *RenderCall) Values() map[string]interface{} {
	values := make(map[string]interface{}, len(c.Arguments))
	for _, a := range c.Arguments {
		values[a.Name] = a.Value
	}
	return values
}

// NodeSlot carries element children as a structured subtree
type NodeSlot struct {
	Nodes []ml_parser.Node
}

// NewNodeSlot creates a new NodeSlot
func NewNodeSlot(nodes []ml_parser.Node) *NodeSlot {
	return &NodeSlot{Nodes: nodes}
}

// ValueVisitor visits every argument value kind
type ValueVisitor interface {
	VisitString(value string, ctx *EmitterVisitorContext) error
	VisitInt(value int, ctx *EmitterVisitorContext) error
	VisitBool(value bool, ctx *EmitterVisitorContext) error
	VisitNull(ctx *EmitterVisitorContext) error
	VisitList(values []interface{}, ctx *EmitterVisitorContext) error
	VisitAttributes(attrs *ml_parser.AttributeSet, ctx *EmitterVisitorContext) error
	VisitNodeSlot(slot *NodeSlot, ctx *EmitterVisitorContext) error
	VisitRenderCall(call *RenderCall, ctx *EmitterVisitorContext) error
}

// VisitValue dispatches value to the matching visitor method
func VisitValue(v ValueVisitor, value interface{}, ctx *EmitterVisitorContext) error {
	switch t := value.(type) {
	case nil:
		return v.VisitNull(ctx)
	case string:
		return v.VisitString(t, ctx)
	case int:
		return v.VisitInt(t, ctx)
	case bool:
		return v.VisitBool(t, ctx)
	case []interface{}:
		return v.VisitList(t, ctx)
	case []string:
		list := make([]interface{}, len(t))
		for i, s := range t {
			list[i] = s
		}
		return v.VisitList(list, ctx)
	case *ml_parser.AttributeSet:
		return v.VisitAttributes(t, ctx)
	case *NodeSlot:
		return v.VisitNodeSlot(t, ctx)
	case *RenderCall:
		return v.VisitRenderCall(t, ctx)
	}
	return fmt.Errorf("unsupported argument value of type %T", value)
}

// Printer renders a RenderCall into the host runtime syntax
type Printer interface {
	Name() string
	Print(call *RenderCall) (string, error)
}

// PrinterByName returns the printer registered under name
func PrinterByName(name string) (Printer, error) {
	switch name {
	case "", TemplatePrinterName:
		return NewTemplatePrinter(), nil
	case JSONPrinterName:
		return NewJSONPrinter(), nil
	}
	return nil, fmt.Errorf("unknown printer %q", name)
}
