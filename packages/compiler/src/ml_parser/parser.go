package ml_parser

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	"tagc-go/packages/compiler/src/util"
)

var (
	attrRe       = regexp.MustCompile("([^\\s\"'=/<>]+)(?:\\s*=\\s*(?:\"([^\"]*)\"|'([^']*)'|([^\\s\"'=<>`]+)))?")
	expressionRe = regexp.MustCompile(`\$[A-Za-z_]\w*(?:(?:->|\.)[A-Za-z_]\w*)*`)
)

// ParseOptions represents options for parsing
type ParseOptions struct {
	// ForceInline and ForceBlock hold tag names (full or base) whose
	// elements get the matching Override
	ForceInline map[string]bool
	ForceBlock  map[string]bool
}

func (o *ParseOptions) overrideFor(name string) Override {
	if o == nil {
		return OverrideNone
	}
	base := BaseTag(name)
	switch {
	case o.ForceInline[name] || o.ForceInline[base]:
		return OverrideForceInline
	case o.ForceBlock[name] || o.ForceBlock[base]:
		return OverrideForceBlock
	}
	return OverrideNone
}

// ParseTreeResult represents the result of parsing a tree
type ParseTreeResult struct {
	RootNodes []Node
	Tokens    []Token
	Protector *Protector
}

// NewParseTreeResult creates a new ParseTreeResult
func NewParseTreeResult(rootNodes []Node, tokens []Token, protector *Protector) *ParseTreeResult {
	return &ParseTreeResult{
		RootNodes: rootNodes,
		Tokens:    tokens,
		Protector: protector,
	}
}

// Parser parses markup source into an AST
type Parser struct {
	GetTagDefinition func(tagName string) TagDefinition
}

// NewParser creates a new Parser
func NewParser(getTagDefinition func(tagName string) TagDefinition) *Parser {
	return &Parser{
		GetTagDefinition: getTagDefinition,
	}
}

// Parse parses source code into a ParseTreeResult. The first error aborts parsing.
func (p *Parser) Parse(source, url string, options *ParseOptions) (*ParseTreeResult, error) {
	tokenizeResult, err := Tokenize(source, url)
	if err != nil {
		return nil, err
	}
	treeBuilder := NewTreeBuilder(tokenizeResult, p.GetTagDefinition, options)
	if err := treeBuilder.Build(); err != nil {
		return nil, err
	}
	return NewParseTreeResult(treeBuilder.RootNodes(), tokenizeResult.Tokens, tokenizeResult.Protector), nil
}

// TreeBuilder folds a flat token stream into a tree
type TreeBuilder struct {
	index                 int
	peek                  *Token
	tokens                []Token
	stack                 []*Element
	rootNodes             []Node
	pendingText           []Token
	protector             *Protector
	options               *ParseOptions
	tagDefinitionResolver func(tagName string) TagDefinition

	// preformatted counts the open elements that preserve whitespace
	preformatted int
}

// NewTreeBuilder creates a new TreeBuilder
func NewTreeBuilder(result *TokenizeResult, tagDefinitionResolver func(tagName string) TagDefinition, options *ParseOptions) *TreeBuilder {
	if tagDefinitionResolver == nil {
		tagDefinitionResolver = GetHtmlTagDefinition
	}
	tb := &TreeBuilder{
		index:                 -1,
		tokens:                result.Tokens,
		protector:             result.Protector,
		options:               options,
		tagDefinitionResolver: tagDefinitionResolver,
	}
	tb.advance()
	return tb
}

// RootNodes returns the top-level nodes
func (tb *TreeBuilder) RootNodes() []Node {
	return tb.rootNodes
}

func (tb *TreeBuilder) advance() *Token {
	prev := tb.peek
	if tb.index < len(tb.tokens)-1 {
		tb.index++
		tb.peek = &tb.tokens[tb.index]
	} else {
		tb.index = len(tb.tokens)
		tb.peek = nil
	}
	return prev
}

// Build builds the tree from tokens
func (tb *TreeBuilder) Build() error {
	for tb.peek != nil {
		var err error
		switch tb.peek.Type {
		case TokenTypeTEXT:
			tb.pendingText = append(tb.pendingText, *tb.advance())
			continue
		case TokenTypeTAG_OPEN, TokenTypeTAG_SELF_CLOSE:
			tb._consumeText()
			err = tb._consumeStartTag(tb.advance())
		case TokenTypeTAG_CLOSE:
			tb._consumeText()
			err = tb._consumeEndTag(tb.advance())
		case TokenTypeLITERAL:
			tb._consumeText()
			tb._consumeLiteral(tb.advance())
		case TokenTypeDOC_TYPE:
			tb._consumeText()
			token := tb.advance()
			tb._addToParent(NewLiteralText(token.Raw, token.SourceSpan()))
		default:
			err = util.NewParseError(util.ErrorKindUnhandledNode, tb.peek.SourceSpan(), "",
				fmt.Sprintf("Unexpected token %s", tb.peek))
		}
		if err != nil {
			return err
		}
	}
	tb._consumeText()
	if n := len(tb.stack); n > 0 {
		el := tb.stack[n-1]
		return util.NewParseError(util.ErrorKindUnbalancedTag, el.SourceSpan(), el.Name,
			fmt.Sprintf("Unclosed element %q", el.Name))
	}
	return nil
}

func (tb *TreeBuilder) _consumeStartTag(token *Token) error {
	name := token.Name()
	attrs, err := tb._consumeAttributes(token)
	if err != nil {
		return err
	}
	el := NewElement(name, attrs, nil, token.SourceSpan())
	el.Override = tb.options.overrideFor(name)
	tb._addToParent(el)
	if token.Type == TokenTypeTAG_SELF_CLOSE {
		el.SelfClosing = true
		return nil
	}
	def := tb.tagDefinitionResolver(name)
	if def.IsVoid() {
		return nil
	}
	if def.PreservesWhitespace() {
		tb.preformatted++
	}
	tb.stack = append(tb.stack, el)
	return nil
}

func (tb *TreeBuilder) _consumeAttributes(token *Token) (*AttributeSet, error) {
	attrs := &AttributeSet{}
	for _, m := range attrRe.FindAllStringSubmatch(token.AttrSource(), -1) {
		var value interface{}
		if strings.Contains(m[0], "=") {
			value = tb.protector.Restore(m[2] + m[3] + m[4])
		}
		if err := attrs.Add(tb.protector.Restore(m[1]), value, OrderAppend); err != nil {
			var perr *util.ParseError
			if errors.As(err, &perr) {
				return nil, perr.WithSpan(token.SourceSpan())
			}
			return nil, err
		}
	}
	return attrs, nil
}

func (tb *TreeBuilder) _consumeEndTag(token *Token) error {
	name := token.Name()
	if tb.tagDefinitionResolver(name).IsVoid() {
		return util.NewParseError(util.ErrorKindUnbalancedTag, token.SourceSpan(), name,
			fmt.Sprintf("Void element %q cannot have a closing tag", name))
	}
	n := len(tb.stack)
	if n == 0 {
		return util.NewParseError(util.ErrorKindUnbalancedTag, token.SourceSpan(), name,
			fmt.Sprintf("Unexpected closing tag %q", name))
	}
	el := tb.stack[n-1]
	if el.Name != name {
		return util.NewParseError(util.ErrorKindUnbalancedTag, token.SourceSpan(), name,
			fmt.Sprintf("Unexpected closing tag %q, expected %q", name, el.Name))
	}
	el.sourceSpan = util.NewParseSourceSpan(el.sourceSpan.Start, token.SourceSpan().End)
	if tb.tagDefinitionResolver(name).PreservesWhitespace() {
		tb.preformatted--
	}
	tb.stack = tb.stack[:n-1]
	return nil
}

func (tb *TreeBuilder) _consumeLiteral(token *Token) {
	value, ok := tb.protector.Literal(token.Raw)
	if !ok {
		value = token.Raw
	}
	tb._addToParent(NewLiteralText(value, token.SourceSpan()))
}

// _consumeText flushes the pending text tokens as Text and ExpressionSlot nodes
func (tb *TreeBuilder) _consumeText() {
	if len(tb.pendingText) == 0 {
		return
	}
	var raw strings.Builder
	for _, t := range tb.pendingText {
		raw.WriteString(t.Raw)
	}
	first, last := tb.pendingText[0], tb.pendingText[len(tb.pendingText)-1]
	span := util.NewParseSourceSpan(first.SourceSpan().Start, last.SourceSpan().End)
	tb.pendingText = tb.pendingText[:0]

	text := tb.protector.Restore(raw.String())
	if tb.preformatted == 0 {
		text = util.CollapseWhitespace(text)
		if strings.TrimSpace(text) == "" {
			return
		}
	}
	for _, node := range SplitExpressions(text, span) {
		tb._addToParent(node)
	}
}

func (tb *TreeBuilder) _addToParent(node Node) {
	if n := len(tb.stack); n > 0 {
		tb.stack[n-1].AppendChild(node)
		return
	}
	tb.rootNodes = append(tb.rootNodes, node)
}

// SplitExpressions splits text into Text and ExpressionSlot nodes
func SplitExpressions(text string, span *util.ParseSourceSpan) []Node {
	var nodes []Node
	pos := 0
	for _, loc := range expressionRe.FindAllStringIndex(text, -1) {
		if loc[0] > pos {
			nodes = append(nodes, NewText(text[pos:loc[0]], span))
		}
		nodes = append(nodes, NewExpressionSlot(text[loc[0]:loc[1]], span))
		pos = loc[1]
	}
	if pos < len(text) {
		nodes = append(nodes, NewText(text[pos:], span))
	}
	return nodes
}
