package ml_parser

import (
	"fmt"
	"strings"
)

// TagClass is the layout class of a tag
type TagClass int

const (
	TagClassBlock TagClass = iota
	TagClassInline
	TagClassSelfClosing
	TagClassHeading
	TagClassContent
)

var tagClassNames = [...]string{"block", "inline", "selfClosing", "heading", "content"}

// String returns the name of the class
func (c TagClass) String() string {
	if int(c) >= 0 && int(c) < len(tagClassNames) {
		return tagClassNames[c]
	}
	return fmt.Sprintf("TagClass(%d)", int(c))
}

// Override lets an element escape its default classification
type Override int

const (
	OverrideNone Override = iota
	OverrideForceInline
	OverrideForceBlock
)

// TagDefinition defines the layout behavior of a tag
type TagDefinition interface {
	Class() TagClass
	IsVoid() bool
	IsInline() bool
	// KeepsContentInline reports whether text stays on the line of the opening tag
	KeepsContentInline() bool
	IsDocumentSection() bool
	// PreservesWhitespace reports whether the content is written out as-is
	PreservesWhitespace() bool
}

// BaseTag returns the tag name before the first ':'
func BaseTag(tagName string) string {
	if i := strings.IndexByte(tagName, ':'); i >= 0 {
		return tagName[:i]
	}
	return tagName
}

// TagSegments splits a tag name into its ':'-separated segments
func TagSegments(tagName string) []string {
	return strings.Split(tagName, ":")
}

// Classify returns the class of tagName, honoring an element override.
// OverrideForceBlock only changes inline tags.
func Classify(tagName string, override Override) TagClass {
	class := GetHtmlTagDefinition(tagName).Class()
	switch override {
	case OverrideForceInline:
		return TagClassInline
	case OverrideForceBlock:
		if class == TagClassInline {
			return TagClassBlock
		}
	}
	return class
}
