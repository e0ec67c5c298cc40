package ml_parser

import (
	"golang.org/x/net/html/atom"
)

// HtmlTagDefinition implements TagDefinition for HTML tags
type HtmlTagDefinition struct {
	class           TagClass
	isVoid          bool
	documentSection bool
	preformatted    bool
}

// HtmlTagDefinitionOptions are options for creating an HtmlTagDefinition
type HtmlTagDefinitionOptions struct {
	Class           TagClass
	IsVoid          bool
	DocumentSection bool
	Preformatted    bool
}

// NewHtmlTagDefinition creates a new HtmlTagDefinition
func NewHtmlTagDefinition(opts HtmlTagDefinitionOptions) *HtmlTagDefinition {
	class := opts.Class
	if opts.IsVoid {
		class = TagClassSelfClosing
	}
	return &HtmlTagDefinition{
		class:           class,
		isVoid:          opts.IsVoid,
		documentSection: opts.DocumentSection,
		preformatted:    opts.Preformatted,
	}
}

// Class returns the layout class of the tag
func (h *HtmlTagDefinition) Class() TagClass {
	return h.class
}

// IsVoid returns whether this tag never has children
func (h *HtmlTagDefinition) IsVoid() bool {
	return h.isVoid
}

// IsInline returns whether this tag is laid out inline
func (h *HtmlTagDefinition) IsInline() bool {
	return h.class == TagClassInline
}

// KeepsContentInline returns whether text stays next to the opening tag
func (h *HtmlTagDefinition) KeepsContentInline() bool {
	return h.class == TagClassHeading || h.class == TagClassContent
}

// IsDocumentSection returns whether this tag is an html/head/body marker
func (h *HtmlTagDefinition) IsDocumentSection() bool {
	return h.documentSection
}

// PreservesWhitespace returns whether the content keeps its whitespace and line breaks
func (h *HtmlTagDefinition) PreservesWhitespace() bool {
	return h.preformatted
}

var (
	defaultTagDefinition = NewHtmlTagDefinition(HtmlTagDefinitionOptions{Class: TagClassBlock})
	tagDefinitions       = buildHtmlTagDefinitions()
)

// Closed vocabularies
var (
	selfClosingTags = []string{"area", "base", "br", "col", "embed", "hr", "img", "input",
		"link", "meta", "param", "source", "track", "wbr"}
	inlineTags = []string{"a", "abbr", "b", "bdi", "bdo", "cite", "code", "data", "del", "dfn",
		"em", "i", "ins", "kbd", "mark", "q", "s", "samp", "small", "span", "strong", "sub",
		"sup", "time", "u", "var"}
	headingTags = []string{"h1", "h2", "h3", "h4", "h5", "h6"}
	contentTags = []string{"title", "option", "legend", "caption", "summary"}
	sectionTags = []string{"html", "head", "body"}
	preTags     = map[string]TagClass{"pre": TagClassBlock, "textarea": TagClassContent}
	generalTags = []string{"address", "article", "aside", "blockquote", "button", "canvas",
		"colgroup", "datalist", "dd", "details", "dialog", "div", "dl", "dt", "fieldset",
		"figcaption", "figure", "footer", "form", "header", "hgroup", "iframe", "label", "li",
		"main", "map", "menu", "meter", "nav", "noscript", "object", "ol", "optgroup",
		"output", "p", "picture", "progress", "section", "select", "svg", "table",
		"tbody", "td", "template", "tfoot", "th", "thead", "tr", "ul", "video", "audio"}
)

func buildHtmlTagDefinitions() map[string]*HtmlTagDefinition {
	defs := make(map[string]*HtmlTagDefinition)
	for _, tag := range generalTags {
		defs[tag] = NewHtmlTagDefinition(HtmlTagDefinitionOptions{Class: TagClassBlock})
	}
	for _, tag := range selfClosingTags {
		defs[tag] = NewHtmlTagDefinition(HtmlTagDefinitionOptions{IsVoid: true})
	}
	for _, tag := range inlineTags {
		defs[tag] = NewHtmlTagDefinition(HtmlTagDefinitionOptions{Class: TagClassInline})
	}
	for _, tag := range headingTags {
		defs[tag] = NewHtmlTagDefinition(HtmlTagDefinitionOptions{Class: TagClassHeading})
	}
	for _, tag := range contentTags {
		defs[tag] = NewHtmlTagDefinition(HtmlTagDefinitionOptions{Class: TagClassContent})
	}
	for _, tag := range sectionTags {
		defs[tag] = NewHtmlTagDefinition(HtmlTagDefinitionOptions{Class: TagClassBlock, DocumentSection: true})
	}
	for tag, class := range preTags {
		defs[tag] = NewHtmlTagDefinition(HtmlTagDefinitionOptions{Class: class, Preformatted: true})
	}
	return defs
}

// GetHtmlTagDefinition returns the HTML tag definition for a tag name.
// Unknown tags are block, paired.
func GetHtmlTagDefinition(tagName string) TagDefinition {
	if def, exists := tagDefinitions[BaseTag(tagName)]; exists {
		return def
	}
	return defaultTagDefinition
}

// IsKnownElement reports whether the base tag is a standard HTML element
func IsKnownElement(tagName string) bool {
	return atom.Lookup([]byte(BaseTag(tagName))) != 0
}
