package ml_parser

import (
	"bytes"
	"fmt"
	"strings"

	"tagc-go/packages/compiler/src/util"
)

type itemKind int

const (
	itemOpen itemKind = iota
	itemClose
	itemText
	itemInlineLeaf
	itemBlockLeaf
	itemDoctype
)

// layoutItem is one event of the serializer: a tag boundary, a text run or
// an atomic leaf
type layoutItem struct {
	kind    itemKind
	class   TagClass
	name    string
	markup  string
	section bool
	span    *util.ParseSourceSpan
}

func (it *layoutItem) isInline() bool {
	switch it.kind {
	case itemInlineLeaf:
		return true
	case itemOpen, itemClose:
		return it.class == TagClassInline && !it.section
	}
	return false
}

// closesBlock reports whether the item leaves the buffer after a block boundary
func (it *layoutItem) closesBlock() bool {
	switch it.kind {
	case itemBlockLeaf, itemDoctype:
		return true
	case itemClose:
		return !it.isInline()
	}
	return false
}

func (it *layoutItem) isContentOpen() bool {
	return it.kind == itemOpen && !it.section && (it.class == TagClassHeading || it.class == TagClassContent)
}

var sectionRanks = map[string]int{"html": 2, "head": 3, "body": 4}

const doctypeRank = 1

// SerializerOptions represents options for serialization
type SerializerOptions struct {
	// Strict rejects doctype/html/head/body markers out of document order
	Strict bool
	// Parse supplies tag overrides to the token stream mode
	Parse *ParseOptions
}

// Serializer renders nodes or a flat token stream as tab-indented markup
type Serializer struct {
	options SerializerOptions
}

// NewSerializer creates a new Serializer
func NewSerializer(options SerializerOptions) *Serializer {
	return &Serializer{options: options}
}

// Serialize renders the tree. A nil protector skips restoration.
func (s *Serializer) Serialize(nodes []Node, protector *Protector) (string, error) {
	v := &layoutVisitor{}
	for _, n := range nodes {
		n.Visit(v, nil)
		if v.err != nil {
			return "", v.err
		}
	}
	return s.render(v.items, protector)
}

// FormatTokens renders a flat token stream without building a tree
func (s *Serializer) FormatTokens(tokens []Token, protector *Protector) (string, error) {
	items := make([]layoutItem, 0, len(tokens))
	var pre *verbatimRun
	for _, t := range tokens {
		name := t.Name()
		if pre != nil {
			if pre.add(t, name) {
				items = append(items, pre.item())
				pre = nil
			}
			continue
		}
		it := layoutItem{markup: t.Raw, span: t.SourceSpan()}
		switch t.Type {
		case TokenTypeTEXT:
			it.kind = itemText
			it.markup = util.CollapseWhitespace(t.Raw)
		case TokenTypeLITERAL:
			it.kind = itemBlockLeaf
		case TokenTypeDOC_TYPE:
			it.kind = itemDoctype
		case TokenTypeTAG_OPEN, TokenTypeTAG_SELF_CLOSE:
			override := s.options.Parse.overrideFor(name)
			it.name = name
			it.class = Classify(name, override)
			if t.Type == TokenTypeTAG_SELF_CLOSE && override == OverrideNone {
				it.class = TagClassSelfClosing
			}
			def := GetHtmlTagDefinition(name)
			switch {
			case t.Type == TokenTypeTAG_SELF_CLOSE || def.IsVoid():
				it.kind = leafKind(it.class)
			case def.PreservesWhitespace():
				pre = &verbatimRun{start: it, name: name, depth: 1}
				pre.buf.WriteString(t.Raw)
				pre.start.kind = leafKind(it.class)
				continue
			default:
				it.kind = itemOpen
				it.section = def.IsDocumentSection()
			}
		case TokenTypeTAG_CLOSE:
			def := GetHtmlTagDefinition(name)
			it.kind = itemClose
			it.name = name
			it.class = Classify(name, s.options.Parse.overrideFor(name))
			it.section = def.IsDocumentSection()
		default:
			return "", util.NewParseError(util.ErrorKindUnhandledNode, t.SourceSpan(), name,
				fmt.Sprintf("No layout rule for token %s", t))
		}
		items = append(items, it)
	}
	if pre != nil {
		items = append(items, pre.item())
	}
	return s.render(items, protector)
}

// verbatimRun collects the raw tokens of a whitespace-preserving element
type verbatimRun struct {
	start layoutItem
	name  string
	depth int
	buf   strings.Builder
}

// add appends t and reports whether it closed the element
func (r *verbatimRun) add(t Token, name string) bool {
	r.buf.WriteString(t.Raw)
	if name != r.name {
		return false
	}
	switch t.Type {
	case TokenTypeTAG_OPEN:
		r.depth++
	case TokenTypeTAG_CLOSE:
		r.depth--
	}
	return r.depth == 0
}

func (r *verbatimRun) item() layoutItem {
	it := r.start
	it.markup = r.buf.String()
	return it
}

func leafKind(class TagClass) itemKind {
	if class == TagClassInline {
		return itemInlineLeaf
	}
	return itemBlockLeaf
}

func (s *Serializer) render(items []layoutItem, protector *Protector) (string, error) {
	st := &serializeState{strict: s.options.Strict}
	for i := range items {
		if err := st.emit(&items[i]); err != nil {
			return "", err
		}
		st.prev = &items[i]
	}
	out := st.buf.String()
	if protector != nil {
		out = protector.Restore(out)
	}
	return strings.TrimRight(out, " \t\n"), nil
}

type serializeState struct {
	buf         bytes.Buffer
	depth       int
	prev        *layoutItem
	strict      bool
	sectionRank int
}

func (st *serializeState) emit(it *layoutItem) error {
	switch {
	case it.kind == itemDoctype:
		if err := st.checkOrder(doctypeRank, it); err != nil {
			return err
		}
		st.newline()
		st.buf.WriteString(it.markup)
		st.buf.WriteByte('\n')
	case it.section && it.kind == itemOpen:
		if err := st.checkOrder(sectionRanks[it.name], it); err != nil {
			return err
		}
		st.newline()
		st.buf.WriteString(it.markup)
		if it.name == "html" {
			st.depth = 1
		}
	case it.section && it.kind == itemClose:
		if it.name == "html" {
			st.depth = 0
		}
		st.newline()
		st.buf.WriteString(it.markup)
	case it.kind == itemOpen && (it.class == TagClassHeading || it.class == TagClassContent):
		st.newline()
		st.indent()
		st.buf.WriteString(it.markup)
		st.depth++
	case it.kind == itemClose && (it.class == TagClassHeading || it.class == TagClassContent):
		st.trimTrailingSpace()
		st.decrement()
		if st.endsWithNewline() {
			st.indent()
		}
		st.buf.WriteString(it.markup)
		st.buf.WriteByte('\n')
	case it.kind == itemBlockLeaf:
		st.newline()
		st.indent()
		st.buf.WriteString(it.markup)
		st.buf.WriteByte('\n')
	case it.kind == itemOpen && it.class != TagClassInline:
		st.newline()
		st.indent()
		st.buf.WriteString(it.markup)
		st.depth++
	case it.kind == itemClose && it.class != TagClassInline:
		st.decrement()
		st.newline()
		st.indent()
		st.buf.WriteString(it.markup)
	case it.kind == itemText:
		if st.prev != nil && st.prev.isContentOpen() {
			st.buf.WriteString(strings.TrimLeft(it.markup, " "))
		} else if st.prev != nil && st.prev.isInline() {
			st.buf.WriteString(it.markup)
		} else {
			st.newline()
			st.indent()
			st.buf.WriteString(strings.TrimLeft(it.markup, " "))
		}
	case it.kind == itemInlineLeaf || it.kind == itemOpen:
		if st.prev == nil || !(st.prev.kind == itemText || st.prev.isInline() || st.prev.isContentOpen()) {
			st.newline()
			st.indent()
		}
		st.buf.WriteString(it.markup)
		if it.kind == itemOpen {
			st.depth++
		}
	case it.kind == itemClose:
		st.decrement()
		if st.prev != nil && st.prev.closesBlock() {
			st.newline()
			st.indent()
		}
		st.buf.WriteString(it.markup)
	default:
		return util.NewParseError(util.ErrorKindUnhandledNode, it.span, it.name,
			fmt.Sprintf("No layout rule for %s element %q", it.class, it.name))
	}
	return nil
}

func (st *serializeState) checkOrder(rank int, it *layoutItem) error {
	if !st.strict {
		return nil
	}
	if rank <= st.sectionRank {
		name := it.name
		if it.kind == itemDoctype {
			name = "!doctype"
		}
		return util.NewParseError(util.ErrorKindMalformedDocument, it.span, name,
			fmt.Sprintf("Document section %q out of order", name))
	}
	st.sectionRank = rank
	return nil
}

func (st *serializeState) decrement() {
	if st.depth > 0 {
		st.depth--
	}
}

func (st *serializeState) endsWithNewline() bool {
	b := st.buf.Bytes()
	return len(b) == 0 || b[len(b)-1] == '\n'
}

// trimTrailingSpace drops spaces and tabs at the end of the buffer in place
func (st *serializeState) trimTrailingSpace() {
	b := st.buf.Bytes()
	n := len(b)
	for n > 0 && (b[n-1] == ' ' || b[n-1] == '\t') {
		n--
	}
	st.buf.Truncate(n)
}

// newline ends the current line unless the buffer is empty or already at a line start
func (st *serializeState) newline() {
	st.trimTrailingSpace()
	if !st.endsWithNewline() {
		st.buf.WriteByte('\n')
	}
}

func (st *serializeState) indent() {
	st.buf.WriteString(strings.Repeat("\t", st.depth))
}

// layoutVisitor flattens a tree into layout items
type layoutVisitor struct {
	items []layoutItem
	err   error
}

func (v *layoutVisitor) VisitText(text *Text, context interface{}) interface{} {
	it := layoutItem{kind: itemText, markup: text.Value, span: text.SourceSpan()}
	if text.Literal {
		it.kind = itemBlockLeaf
		if IsDoctype(text.Value) {
			it.kind = itemDoctype
		}
	}
	v.items = append(v.items, it)
	return nil
}

func (v *layoutVisitor) VisitElement(element *Element, context interface{}) interface{} {
	if v.err != nil {
		return nil
	}
	class := element.Class()
	def := element.Definition()
	span := element.SourceSpan()
	if element.SelfClosing || def.IsVoid() {
		if len(element.Children) > 0 {
			v.err = util.NewParseError(util.ErrorKindUnhandledNode, span, element.Name,
				fmt.Sprintf("Self-closing element %q has children", element.Name))
			return nil
		}
		v.items = append(v.items, layoutItem{
			kind:   leafKind(class),
			class:  class,
			name:   element.Name,
			markup: StartTag(element),
			span:   span,
		})
		return nil
	}
	if def.PreservesWhitespace() {
		var b strings.Builder
		element.Visit(verbatimVisitor{b: &b}, nil)
		v.items = append(v.items, layoutItem{
			kind:   leafKind(class),
			class:  class,
			name:   element.Name,
			markup: b.String(),
			span:   span,
		})
		return nil
	}
	section := def.IsDocumentSection()
	v.items = append(v.items, layoutItem{kind: itemOpen, class: class, name: element.Name, markup: StartTag(element), section: section, span: span})
	for _, child := range element.Children {
		child.Visit(v, context)
		if v.err != nil {
			return nil
		}
	}
	v.items = append(v.items, layoutItem{kind: itemClose, class: class, name: element.Name, markup: "</" + element.Name + ">", section: section, span: span})
	return nil
}

func (v *layoutVisitor) VisitExpressionSlot(slot *ExpressionSlot, context interface{}) interface{} {
	v.items = append(v.items, layoutItem{kind: itemInlineLeaf, class: TagClassInline, markup: slot.Expr, span: slot.SourceSpan()})
	return nil
}

func (v *layoutVisitor) VisitPlaceholder(placeholder *Placeholder, context interface{}) interface{} {
	it := layoutItem{kind: itemBlockLeaf, markup: placeholder.Content, span: placeholder.SourceSpan()}
	if placeholder.Inline {
		it.kind = itemInlineLeaf
		it.class = TagClassInline
	}
	v.items = append(v.items, it)
	return nil
}

// verbatimVisitor writes a subtree back as markup without layout
type verbatimVisitor struct {
	b *strings.Builder
}

func (v verbatimVisitor) VisitText(text *Text, context interface{}) interface{} {
	v.b.WriteString(text.Value)
	return nil
}

func (v verbatimVisitor) VisitElement(element *Element, context interface{}) interface{} {
	v.b.WriteString(StartTag(element))
	if element.SelfClosing || element.Definition().IsVoid() {
		return nil
	}
	for _, child := range element.Children {
		child.Visit(v, context)
	}
	v.b.WriteString("</" + element.Name + ">")
	return nil
}

func (v verbatimVisitor) VisitExpressionSlot(slot *ExpressionSlot, context interface{}) interface{} {
	v.b.WriteString(slot.Expr)
	return nil
}

func (v verbatimVisitor) VisitPlaceholder(placeholder *Placeholder, context interface{}) interface{} {
	v.b.WriteString(placeholder.Content)
	return nil
}

// StartTag renders the opening tag of element, with a trailing slash when it
// was written self-closing
func StartTag(element *Element) string {
	if element.SelfClosing {
		return "<" + element.Name + element.Attrs.String() + "/>"
	}
	return "<" + element.Name + element.Attrs.String() + ">"
}

// IsDoctype reports whether value is a doctype declaration
func IsDoctype(value string) bool {
	return doctypeTokenRe.MatchString(value)
}
