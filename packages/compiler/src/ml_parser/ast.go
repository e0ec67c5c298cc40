package ml_parser

import (
	"strings"

	"tagc-go/packages/compiler/src/util"
)

// Node represents a node in the markup AST
type Node interface {
	SourceSpan() *util.ParseSourceSpan
	// Parent returns the enclosing element, or nil at the root
	Parent() *Element
	Visit(visitor Visitor, context interface{}) interface{}
	setParent(parent *Element)
}

// Visitor visits every node kind of the AST
type Visitor interface {
	VisitText(text *Text, context interface{}) interface{}
	VisitElement(element *Element, context interface{}) interface{}
	VisitExpressionSlot(slot *ExpressionSlot, context interface{}) interface{}
	VisitPlaceholder(placeholder *Placeholder, context interface{}) interface{}
}

// nodeBase holds the span and the non-owning parent link shared by all nodes
type nodeBase struct {
	sourceSpan *util.ParseSourceSpan
	parent     *Element
}

// SourceSpan returns the source span
func (n *nodeBase) SourceSpan() *util.ParseSourceSpan {
	return n.sourceSpan
}

// Parent returns the enclosing element
func (n *nodeBase) Parent() *Element {
	return n.parent
}

func (n *nodeBase) setParent(parent *Element) {
	n.parent = parent
}

// Text represents a text node. Literal text holds a restored script, style or
// comment block and is laid out on a line of its own.
type Text struct {
	nodeBase
	Value   string
	Literal bool
}

// NewText creates a new Text node
func NewText(value string, sourceSpan *util.ParseSourceSpan) *Text {
	return &Text{
		nodeBase: nodeBase{sourceSpan: sourceSpan},
		Value:    value,
	}
}

// NewLiteralText creates a new literal Text node
func NewLiteralText(value string, sourceSpan *util.ParseSourceSpan) *Text {
	t := NewText(value, sourceSpan)
	t.Literal = true
	return t
}

// Visit implements the Node interface
func (t *Text) Visit(visitor Visitor, context interface{}) interface{} {
	return visitor.VisitText(t, context)
}

// Element represents an element node
type Element struct {
	nodeBase
	Name        string
	Attrs       *AttributeSet
	Children    []Node
	SelfClosing bool
	Override    Override
}

// NewElement creates a new Element node and adopts its children
func NewElement(name string, attrs *AttributeSet, children []Node, sourceSpan *util.ParseSourceSpan) *Element {
	if attrs == nil {
		attrs = &AttributeSet{}
	}
	el := &Element{
		nodeBase: nodeBase{sourceSpan: sourceSpan},
		Name:     strings.ToLower(name),
		Attrs:    attrs,
	}
	el.SetChildren(children)
	return el
}

// Visit implements the Node interface
func (e *Element) Visit(visitor Visitor, context interface{}) interface{} {
	return visitor.VisitElement(e, context)
}

// Definition returns the tag definition of the element
func (e *Element) Definition() TagDefinition {
	return GetHtmlTagDefinition(e.Name)
}

// Class returns the layout class of the element
func (e *Element) Class() TagClass {
	if e.SelfClosing && e.Override == OverrideNone {
		return TagClassSelfClosing
	}
	return Classify(e.Name, e.Override)
}

// AppendChild adds node as the last child
func (e *Element) AppendChild(node Node) {
	node.setParent(e)
	e.Children = append(e.Children, node)
}

// SetChildren replaces the children, adopting each of them
func (e *Element) SetChildren(children []Node) {
	e.Children = children
	for _, c := range children {
		c.setParent(e)
	}
}

// Closest returns the nearest ancestor element named tag
func (e *Element) Closest(tag string) *Element {
	for p := e.parent; p != nil; p = p.parent {
		if p.Name == tag {
			return p
		}
	}
	return nil
}

// Segments returns the ':'-separated parts of the tag name
func (e *Element) Segments() []string {
	return TagSegments(e.Name)
}

// ExpressionSlot is an opaque variable reference such as $user->name
type ExpressionSlot struct {
	nodeBase
	Expr     string
	Variable string
}

// NewExpressionSlot creates a new ExpressionSlot node
func NewExpressionSlot(expr string, sourceSpan *util.ParseSourceSpan) *ExpressionSlot {
	variable := strings.TrimPrefix(expr, "$")
	if i := strings.IndexAny(variable, ".-"); i >= 0 {
		variable = variable[:i]
	}
	return &ExpressionSlot{
		nodeBase: nodeBase{sourceSpan: sourceSpan},
		Expr:     expr,
		Variable: variable,
	}
}

// Visit implements the Node interface
func (s *ExpressionSlot) Visit(visitor Visitor, context interface{}) interface{} {
	return visitor.VisitExpressionSlot(s, context)
}

// Placeholder is an atomic leaf standing for a matched component. Content is
// written out verbatim and never re-tokenized; Call carries the structured
// render call.
type Placeholder struct {
	nodeBase
	Content string
	Inline  bool
	Call    interface{}
}

// NewPlaceholder creates a new Placeholder node
func NewPlaceholder(content string, inline bool, call interface{}, sourceSpan *util.ParseSourceSpan) *Placeholder {
	return &Placeholder{
		nodeBase: nodeBase{sourceSpan: sourceSpan},
		Content:  content,
		Inline:   inline,
		Call:     call,
	}
}

// Visit implements the Node interface
func (p *Placeholder) Visit(visitor Visitor, context interface{}) interface{} {
	return visitor.VisitPlaceholder(p, context)
}

// VisitAll visits every node and collects the non-nil results
func VisitAll(visitor Visitor, nodes []Node, context interface{}) []interface{} {
	var result []interface{}
	for _, n := range nodes {
		if r := n.Visit(visitor, context); r != nil {
			result = append(result, r)
		}
	}
	return result
}
