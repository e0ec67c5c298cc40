package render3

import (
	"io"
	"log/slog"

	"tagc-go/packages/compiler/src/ml_parser"
	"tagc-go/packages/compiler/src/output"
)

// TransformResult represents the result of a component transform
type TransformResult struct {
	Nodes []ml_parser.Node
	// Calls lists the emitted render calls, innermost first
	Calls []*output.RenderCall
	// Unmatched lists custom element names no component claimed, in first-seen order
	Unmatched []string
}

// TemplateTransformer replaces matched component elements with atomic
// placeholders holding their printed render call. Elements are processed
// bottom-up, so nested components are emitted before their parents.
type TemplateTransformer struct {
	memo      *matchMemo
	extractor *ArgumentExtractor
	printer   output.Printer
	logger    *slog.Logger
	calls     []*output.RenderCall
	unmatched []string
	seen      map[string]bool
	err       error
}

// NewTemplateTransformer creates a new TemplateTransformer for one compilation
func NewTemplateTransformer(matcher *ComponentMatcher, extractor *ArgumentExtractor, printer output.Printer, logger *slog.Logger) *TemplateTransformer {
	if printer == nil {
		printer = output.NewTemplatePrinter()
	}
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	if extractor == nil {
		extractor = NewArgumentExtractor(nil)
	}
	return &TemplateTransformer{
		memo:      newMatchMemo(matcher),
		extractor: extractor,
		printer:   printer,
		logger:    logger,
		seen:      make(map[string]bool),
	}
}

// TransformTemplate rewrites nodes in place and reports the emitted calls
func TransformTemplate(nodes []ml_parser.Node, matcher *ComponentMatcher, extractor *ArgumentExtractor, printer output.Printer, logger *slog.Logger) (*TransformResult, error) {
	return NewTemplateTransformer(matcher, extractor, printer, logger).Transform(nodes)
}

// Transform rewrites nodes in place. The first error aborts the transform.
func (t *TemplateTransformer) Transform(nodes []ml_parser.Node) (*TransformResult, error) {
	result := t.visitAll(nodes)
	if t.err != nil {
		return nil, t.err
	}
	t.logger.Debug("components transformed", "calls", len(t.calls), "unmatched", len(t.unmatched), "memo_hits", t.memo.hits)
	return &TransformResult{Nodes: result, Calls: t.calls, Unmatched: t.unmatched}, nil
}

func (t *TemplateTransformer) visitAll(nodes []ml_parser.Node) []ml_parser.Node {
	result := make([]ml_parser.Node, 0, len(nodes))
	for _, n := range nodes {
		replacement, _ := n.Visit(t, nil).(ml_parser.Node)
		if t.err != nil {
			return nil
		}
		result = append(result, replacement)
	}
	return result
}

// VisitText visits a text node
func (t *TemplateTransformer) VisitText(text *ml_parser.Text, context interface{}) interface{} {
	return text
}

// VisitExpressionSlot visits an expression slot
func (t *TemplateTransformer) VisitExpressionSlot(slot *ml_parser.ExpressionSlot, context interface{}) interface{} {
	return slot
}

// VisitPlaceholder visits a placeholder left by an earlier transform
func (t *TemplateTransformer) VisitPlaceholder(placeholder *ml_parser.Placeholder, context interface{}) interface{} {
	return placeholder
}

// VisitElement visits an element node
func (t *TemplateTransformer) VisitElement(element *ml_parser.Element, context interface{}) interface{} {
	children := t.visitAll(element.Children)
	if t.err != nil {
		return nil
	}
	element.SetChildren(children)

	desc, ok := t.memo.match(element.Name)
	if !ok {
		if !ml_parser.IsKnownElement(element.Name) && !t.seen[element.Name] {
			t.seen[element.Name] = true
			t.unmatched = append(t.unmatched, element.Name)
			t.logger.Debug("unmatched custom element", "tag", element.Name, "at", location(element))
		}
		return element
	}

	call, err := t.extractor.Extract(element, desc)
	if err != nil {
		t.err = err
		return nil
	}
	content, err := t.printer.Print(call)
	if err != nil {
		t.err = err
		return nil
	}
	t.calls = append(t.calls, call)
	t.logger.Debug("component matched", "tag", element.Name, "component", desc.Name, "handler", call.Handler, "arguments", len(call.Arguments))
	return ml_parser.NewPlaceholder(content, desc.Inline, call, element.SourceSpan())
}

func location(node ml_parser.Node) string {
	if span := node.SourceSpan(); span != nil && span.Start != nil {
		return span.Start.String()
	}
	return ""
}
