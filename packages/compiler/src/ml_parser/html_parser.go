package ml_parser

// HtmlParser extends Parser for HTML parsing
type HtmlParser struct {
	*Parser
	Options *ParseOptions
}

// NewHtmlParser creates a new HtmlParser
func NewHtmlParser(options *ParseOptions) *HtmlParser {
	return &HtmlParser{
		Parser:  NewParser(GetHtmlTagDefinition),
		Options: options,
	}
}

// Parse parses HTML source
func (h *HtmlParser) Parse(source, url string) (*ParseTreeResult, error) {
	return h.Parser.Parse(source, url, h.Options)
}

// ParseNodes wraps an already-built node list so fragments compose without
// being serialized and parsed again
func (h *HtmlParser) ParseNodes(nodes []Node) *ParseTreeResult {
	return NewParseTreeResult(nodes, nil, NewProtector())
}
