package output

import (
	"strconv"
	"strings"

	"tagc-go/packages/compiler/src/core"
	"tagc-go/packages/compiler/src/ml_parser"
	"tagc-go/packages/compiler/src/util"
)

const indentWith = "\t"

// EmittedLine represents a line being emitted
type EmittedLine struct {
	Parts    []string
	SrcSpans []*util.ParseSourceSpan
	Indent   int
}

// NewEmittedLine creates a new EmittedLine
func NewEmittedLine(indent int) *EmittedLine {
	return &EmittedLine{
		Parts:    []string{},
		SrcSpans: []*util.ParseSourceSpan{},
		Indent:   indent,
	}
}

// EmitterVisitorContext represents the context for emitting code
type EmitterVisitorContext struct {
	lines  []*EmittedLine
	indent int
}

// CreateRootEmitterVisitorContext creates a root EmitterVisitorContext
func CreateRootEmitterVisitorContext() *EmitterVisitorContext {
	return NewEmitterVisitorContext(0)
}

// NewEmitterVisitorContext creates a new EmitterVisitorContext
func NewEmitterVisitorContext(indent int) *EmitterVisitorContext {
	return &EmitterVisitorContext{
		lines:  []*EmittedLine{NewEmittedLine(indent)},
		indent: indent,
	}
}

func (ctx *EmitterVisitorContext) currentLine() *EmittedLine {
	return ctx.lines[len(ctx.lines)-1]
}

// Println prints a part and ends the line
func (ctx *EmitterVisitorContext) Println(from interface{}, lastPart string) {
	ctx.Print(from, lastPart, true)
}

// LineIsEmpty checks if the current line is empty
func (ctx *EmitterVisitorContext) LineIsEmpty() bool {
	return len(ctx.currentLine().Parts) == 0
}

// Print prints to the context. from may carry a source span through GetSourceSpan.
func (ctx *EmitterVisitorContext) Print(from interface{}, part string, newLine bool) {
	if len(part) > 0 {
		line := ctx.currentLine()
		line.Parts = append(line.Parts, part)

		var sourceSpan *util.ParseSourceSpan
		if withSpan, ok := from.(interface {
			GetSourceSpan() *util.ParseSourceSpan
		}); ok {
			sourceSpan = withSpan.GetSourceSpan()
		}
		line.SrcSpans = append(line.SrcSpans, sourceSpan)
	}
	if newLine {
		ctx.lines = append(ctx.lines, NewEmittedLine(ctx.indent))
	}
}

// IncIndent increases the indent
func (ctx *EmitterVisitorContext) IncIndent() {
	ctx.indent++
	if ctx.LineIsEmpty() {
		ctx.currentLine().Indent = ctx.indent
	}
}

// DecIndent decreases the indent
func (ctx *EmitterVisitorContext) DecIndent() {
	ctx.indent--
	if ctx.LineIsEmpty() {
		ctx.currentLine().Indent = ctx.indent
	}
}

// ToSource converts the context to source code
func (ctx *EmitterVisitorContext) ToSource() string {
	lines := ctx.sourceLines()
	result := make([]string, 0, len(lines))
	for _, line := range lines {
		if len(line.Parts) > 0 {
			result = append(result, strings.Repeat(indentWith, line.Indent)+strings.Join(line.Parts, ""))
		} else {
			result = append(result, "")
		}
	}
	return strings.Join(result, "\n")
}

// sourceLines returns the source lines (excluding empty last line)
func (ctx *EmitterVisitorContext) sourceLines() []*EmittedLine {
	if len(ctx.lines) > 0 && len(ctx.lines[len(ctx.lines)-1].Parts) == 0 {
		return ctx.lines[:len(ctx.lines)-1]
	}
	return ctx.lines
}

// TemplatePrinterName is the config name of the TemplatePrinter
const TemplatePrinterName = "template"

// TemplatePrinter prints render calls as Go text/template actions:
//
//	{{render "card" (args "subtype" "info" "level" 2)}}
//
// Nested calls print as (render ...) sub-expressions, structured content as
// (slot ...) and variable references as (expr "$name").
type TemplatePrinter struct{}

// NewTemplatePrinter creates a new TemplatePrinter
func NewTemplatePrinter() *TemplatePrinter {
	return &TemplatePrinter{}
}

// Name implements the Printer interface
func (p *TemplatePrinter) Name() string {
	return TemplatePrinterName
}

// Print implements the Printer interface
func (p *TemplatePrinter) Print(call *RenderCall) (string, error) {
	ctx := CreateRootEmitterVisitorContext()
	ctx.Print(call, "{{", false)
	if err := p.printCall(call, ctx); err != nil {
		return "", err
	}
	ctx.Print(call, "}}", false)
	return ctx.ToSource(), nil
}

func (p *TemplatePrinter) printCall(call *RenderCall, ctx *EmitterVisitorContext) error {
	handler := call.Handler
	if handler == "" {
		handler = call.Target
	}
	ctx.Print(call, "render "+strconv.Quote(handler)+" (args", false)
	for _, arg := range call.Arguments {
		ctx.Print(call, " "+strconv.Quote(arg.Name)+" ", false)
		if err := VisitValue(p, arg.Value, ctx); err != nil {
			return err
		}
	}
	ctx.Print(call, ")", false)
	if call.CacheHint != core.CacheHintAuto {
		ctx.Print(call, " "+strconv.Quote(call.CacheHint.String()), false)
	}
	return nil
}

// VisitString implements the ValueVisitor interface
func (p *TemplatePrinter) VisitString(value string, ctx *EmitterVisitorContext) error {
	ctx.Print(nil, strconv.Quote(value), false)
	return nil
}

// VisitInt implements the ValueVisitor interface
func (p *TemplatePrinter) VisitInt(value int, ctx *EmitterVisitorContext) error {
	ctx.Print(nil, strconv.Itoa(value), false)
	return nil
}

// VisitBool implements the ValueVisitor interface
func (p *TemplatePrinter) VisitBool(value bool, ctx *EmitterVisitorContext) error {
	ctx.Print(nil, strconv.FormatBool(value), false)
	return nil
}

// VisitNull implements the ValueVisitor interface
func (p *TemplatePrinter) VisitNull(ctx *EmitterVisitorContext) error {
	ctx.Print(nil, "nil", false)
	return nil
}

// VisitList implements the ValueVisitor interface
func (p *TemplatePrinter) VisitList(values []interface{}, ctx *EmitterVisitorContext) error {
	ctx.Print(nil, "(list", false)
	for _, v := range values {
		ctx.Print(nil, " ", false)
		if err := VisitValue(p, v, ctx); err != nil {
			return err
		}
	}
	ctx.Print(nil, ")", false)
	return nil
}

// VisitAttributes implements the ValueVisitor interface
func (p *TemplatePrinter) VisitAttributes(attrs *ml_parser.AttributeSet, ctx *EmitterVisitorContext) error {
	ctx.Print(nil, "(attrs", false)
	for _, name := range attrs.Names() {
		value, _ := attrs.Value(name)
		if b, ok := value.(bool); ok {
			ctx.Print(nil, " "+strconv.Quote(name)+" "+strconv.FormatBool(b), false)
			continue
		}
		s, _ := attrs.Get(name)
		ctx.Print(nil, " "+strconv.Quote(name)+" "+strconv.Quote(s), false)
	}
	ctx.Print(nil, ")", false)
	return nil
}

// VisitNodeSlot implements the ValueVisitor interface
func (p *TemplatePrinter) VisitNodeSlot(slot *NodeSlot, ctx *EmitterVisitorContext) error {
	ctx.Print(nil, "(slot", false)
	if err := p.printNodes(slot.Nodes, ctx); err != nil {
		return err
	}
	ctx.Print(nil, ")", false)
	return nil
}

// VisitRenderCall implements the ValueVisitor interface
func (p *TemplatePrinter) VisitRenderCall(call *RenderCall, ctx *EmitterVisitorContext) error {
	ctx.Print(call, "(", false)
	if err := p.printCall(call, ctx); err != nil {
		return err
	}
	ctx.Print(call, ")", false)
	return nil
}

func (p *TemplatePrinter) printNodes(nodes []ml_parser.Node, ctx *EmitterVisitorContext) error {
	v := &templateNodeVisitor{printer: p}
	for _, n := range nodes {
		ctx.Print(nil, " ", false)
		if err, _ := n.Visit(v, ctx).(error); err != nil {
			return err
		}
	}
	return nil
}

// templateNodeVisitor prints slot nodes; each Visit returns an error or nil
type templateNodeVisitor struct {
	printer *TemplatePrinter
}

func (v *templateNodeVisitor) VisitText(text *ml_parser.Text, context interface{}) interface{} {
	context.(*EmitterVisitorContext).Print(nil, strconv.Quote(text.Value), false)
	return nil
}

func (v *templateNodeVisitor) VisitElement(element *ml_parser.Element, context interface{}) interface{} {
	ctx := context.(*EmitterVisitorContext)
	ctx.Print(nil, "(el "+strconv.Quote(element.Name)+" ", false)
	if err := v.printer.VisitAttributes(element.Attrs, ctx); err != nil {
		return err
	}
	if err := v.printer.printNodes(element.Children, ctx); err != nil {
		return err
	}
	ctx.Print(nil, ")", false)
	return nil
}

func (v *templateNodeVisitor) VisitExpressionSlot(slot *ml_parser.ExpressionSlot, context interface{}) interface{} {
	context.(*EmitterVisitorContext).Print(nil, "(expr "+strconv.Quote(slot.Expr)+")", false)
	return nil
}

func (v *templateNodeVisitor) VisitPlaceholder(placeholder *ml_parser.Placeholder, context interface{}) interface{} {
	ctx := context.(*EmitterVisitorContext)
	if call, ok := placeholder.Call.(*RenderCall); ok {
		if err := v.printer.VisitRenderCall(call, ctx); err != nil {
			return err
		}
		return nil
	}
	ctx.Print(nil, strconv.Quote(placeholder.Content), false)
	return nil
}
