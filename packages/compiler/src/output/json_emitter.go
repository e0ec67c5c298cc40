package output

import (
	"encoding/json"
	"strconv"

	"tagc-go/packages/compiler/src/ml_parser"
)

// JSONPrinterName is the config name of the JSONPrinter
const JSONPrinterName = "json"

// JSONPrinter prints render calls as JSON objects with a fixed key order:
// target, handler, arguments, cacheHint. Arguments keep their call order.
type JSONPrinter struct {
	// Pretty puts each top-level key and argument on its own line
	Pretty bool
}

// NewJSONPrinter creates a new JSONPrinter
func NewJSONPrinter() *JSONPrinter {
	return &JSONPrinter{}
}

// Name implements the Printer interface
func (p *JSONPrinter) Name() string {
	return JSONPrinterName
}

// Print implements the Printer interface
func (p *JSONPrinter) Print(call *RenderCall) (string, error) {
	ctx := CreateRootEmitterVisitorContext()
	if err := p.printCall(call, ctx, p.Pretty); err != nil {
		return "", err
	}
	return ctx.ToSource(), nil
}

func (p *JSONPrinter) printCall(call *RenderCall, ctx *EmitterVisitorContext, pretty bool) error {
	handler := call.Handler
	if handler == "" {
		handler = call.Target
	}
	sep := func(last bool) {
		switch {
		case pretty && last:
			ctx.Println(call, "")
		case pretty:
			ctx.Println(call, ",")
		case !last:
			ctx.Print(call, ",", false)
		}
	}
	p.open(ctx, call, "{", pretty)
	ctx.Print(call, `"target":`+jsonString(call.Target), false)
	sep(false)
	ctx.Print(call, `"handler":`+jsonString(handler), false)
	sep(false)
	ctx.Print(call, `"arguments":`, false)
	p.open(ctx, call, "{", pretty && len(call.Arguments) > 0)
	for i, arg := range call.Arguments {
		ctx.Print(call, jsonString(arg.Name)+":", false)
		if err := VisitValue(p, arg.Value, ctx); err != nil {
			return err
		}
		if pretty {
			sep(i == len(call.Arguments)-1)
		} else if i < len(call.Arguments)-1 {
			ctx.Print(call, ",", false)
		}
	}
	p.close(ctx, call, "}", pretty && len(call.Arguments) > 0)
	sep(false)
	ctx.Print(call, `"cacheHint":`+jsonString(call.CacheHint.String()), false)
	sep(true)
	p.close(ctx, call, "}", pretty)
	return nil
}

func (p *JSONPrinter) open(ctx *EmitterVisitorContext, from interface{}, brace string, pretty bool) {
	if pretty {
		ctx.Println(from, brace)
		ctx.IncIndent()
		return
	}
	ctx.Print(from, brace, false)
}

func (p *JSONPrinter) close(ctx *EmitterVisitorContext, from interface{}, brace string, pretty bool) {
	if pretty {
		ctx.DecIndent()
	}
	ctx.Print(from, brace, false)
}

func jsonString(s string) string {
	b, err := json.Marshal(s)
	if err != nil {
		return strconv.Quote(s)
	}
	return string(b)
}

// VisitString implements the ValueVisitor interface
func (p *JSONPrinter) VisitString(value string, ctx *EmitterVisitorContext) error {
	ctx.Print(nil, jsonString(value), false)
	return nil
}

// VisitInt implements the ValueVisitor interface
func (p *JSONPrinter) VisitInt(value int, ctx *EmitterVisitorContext) error {
	ctx.Print(nil, strconv.Itoa(value), false)
	return nil
}

// VisitBool implements the ValueVisitor interface
func (p *JSONPrinter) VisitBool(value bool, ctx *EmitterVisitorContext) error {
	ctx.Print(nil, strconv.FormatBool(value), false)
	return nil
}

// VisitNull implements the ValueVisitor interface
func (p *JSONPrinter) VisitNull(ctx *EmitterVisitorContext) error {
	ctx.Print(nil, "null", false)
	return nil
}

// VisitList implements the ValueVisitor interface
func (p *JSONPrinter) VisitList(values []interface{}, ctx *EmitterVisitorContext) error {
	ctx.Print(nil, "[", false)
	for i, v := range values {
		if i > 0 {
			ctx.Print(nil, ",", false)
		}
		if err := VisitValue(p, v, ctx); err != nil {
			return err
		}
	}
	ctx.Print(nil, "]", false)
	return nil
}

// VisitAttributes implements the ValueVisitor interface
func (p *JSONPrinter) VisitAttributes(attrs *ml_parser.AttributeSet, ctx *EmitterVisitorContext) error {
	ctx.Print(nil, "{", false)
	for i, name := range attrs.Names() {
		if i > 0 {
			ctx.Print(nil, ",", false)
		}
		ctx.Print(nil, jsonString(name)+":", false)
		value, _ := attrs.Value(name)
		if b, ok := value.(bool); ok {
			ctx.Print(nil, strconv.FormatBool(b), false)
			continue
		}
		s, _ := attrs.Get(name)
		ctx.Print(nil, jsonString(s), false)
	}
	ctx.Print(nil, "}", false)
	return nil
}

// VisitNodeSlot implements the ValueVisitor interface
func (p *JSONPrinter) VisitNodeSlot(slot *NodeSlot, ctx *EmitterVisitorContext) error {
	return p.printNodes(slot.Nodes, ctx)
}

// VisitRenderCall implements the ValueVisitor interface
func (p *JSONPrinter) VisitRenderCall(call *RenderCall, ctx *EmitterVisitorContext) error {
	return p.printCall(call, ctx, false)
}

func (p *JSONPrinter) printNodes(nodes []ml_parser.Node, ctx *EmitterVisitorContext) error {
	v := &jsonNodeVisitor{printer: p}
	ctx.Print(nil, "[", false)
	for i, n := range nodes {
		if i > 0 {
			ctx.Print(nil, ",", false)
		}
		if err, _ := n.Visit(v, ctx).(error); err != nil {
			return err
		}
	}
	ctx.Print(nil, "]", false)
	return nil
}

// jsonNodeVisitor prints slot nodes; each Visit returns an error or nil
type jsonNodeVisitor struct {
	printer *JSONPrinter
}

func (v *jsonNodeVisitor) VisitText(text *ml_parser.Text, context interface{}) interface{} {
	context.(*EmitterVisitorContext).Print(nil, jsonString(text.Value), false)
	return nil
}

func (v *jsonNodeVisitor) VisitElement(element *ml_parser.Element, context interface{}) interface{} {
	ctx := context.(*EmitterVisitorContext)
	ctx.Print(nil, `{"tag":`+jsonString(element.Name)+`,"attributes":`, false)
	if err := v.printer.VisitAttributes(element.Attrs, ctx); err != nil {
		return err
	}
	ctx.Print(nil, `,"children":`, false)
	if err := v.printer.printNodes(element.Children, ctx); err != nil {
		return err
	}
	ctx.Print(nil, "}", false)
	return nil
}

func (v *jsonNodeVisitor) VisitExpressionSlot(slot *ml_parser.ExpressionSlot, context interface{}) interface{} {
	context.(*EmitterVisitorContext).Print(nil, `{"expr":`+jsonString(slot.Expr)+`}`, false)
	return nil
}

func (v *jsonNodeVisitor) VisitPlaceholder(placeholder *ml_parser.Placeholder, context interface{}) interface{} {
	ctx := context.(*EmitterVisitorContext)
	if call, ok := placeholder.Call.(*RenderCall); ok {
		if err := v.printer.VisitRenderCall(call, ctx); err != nil {
			return err
		}
		return nil
	}
	ctx.Print(nil, jsonString(placeholder.Content), false)
	return nil
}
