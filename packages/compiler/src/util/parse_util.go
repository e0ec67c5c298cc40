package util

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
)

// ParseLocation represents a location in the source file
type ParseLocation struct {
	File   *ParseSourceFile
	Offset int
	Line   int
	Col    int
}

// NewParseLocation creates a new ParseLocation
func NewParseLocation(file *ParseSourceFile, offset, line, col int) *ParseLocation {
	return &ParseLocation{
		File:   file,
		Offset: offset,
		Line:   line,
		Col:    col,
	}
}

// String returns a string representation of the location.
// Lines and columns are stored zero-based and printed one-based.
func (p *ParseLocation) String() string {
	if p.Offset >= 0 {
		return fmt.Sprintf("%s@%d:%d", p.File.URL, p.Line+1, p.Col+1)
	}
	return p.File.URL
}

// MoveBy moves the location by delta characters
func (p *ParseLocation) MoveBy(delta int) *ParseLocation {
	source := p.File.Content
	length := len(source)
	offset := p.Offset
	line := p.Line
	col := p.Col

	for offset > 0 && delta < 0 {
		offset--
		delta++
		ch := source[offset]
		if ch == '\n' {
			line--
			priorLine := strings.LastIndex(source[:offset], "\n")
			if priorLine > 0 {
				col = offset - priorLine
			} else {
				col = offset
			}
		} else {
			col--
		}
	}

	for offset < length && delta > 0 {
		ch := source[offset]
		offset++
		delta--
		if ch == '\n' {
			line++
			col = 0
		} else {
			col++
		}
	}

	return NewParseLocation(p.File, offset, line, col)
}

// Context represents source context around a location
type Context struct {
	Before string
	After  string
}

// GetContext returns the source context around the location
func (p *ParseLocation) GetContext(maxChars, maxLines int) *Context {
	content := p.File.Content
	if p.Offset < 0 || len(content) == 0 {
		return nil
	}
	startOffset := p.Offset
	if startOffset > len(content)-1 {
		startOffset = len(content) - 1
	}

	endOffset := startOffset
	ctxChars := 0
	ctxLines := 0

	for ctxChars < maxChars && startOffset > 0 {
		startOffset--
		ctxChars++
		if content[startOffset] == '\n' {
			ctxLines++
			if ctxLines == maxLines {
				break
			}
		}
	}

	ctxChars = 0
	ctxLines = 0
	for ctxChars < maxChars && endOffset < len(content)-1 {
		endOffset++
		ctxChars++
		if content[endOffset] == '\n' {
			ctxLines++
			if ctxLines == maxLines {
				break
			}
		}
	}

	before := startOffset
	if before > p.Offset {
		before = p.Offset
	}
	after := p.Offset
	if after > len(content) {
		after = len(content)
	}
	return &Context{
		Before: content[before:after],
		After:  content[after : endOffset+1],
	}
}

// ParseSourceFile represents a source file
type ParseSourceFile struct {
	Content string
	URL     string

	linesOnce  sync.Once
	lineStarts []int
}

// NewParseSourceFile creates a new ParseSourceFile
func NewParseSourceFile(content, url string) *ParseSourceFile {
	return &ParseSourceFile{
		Content: content,
		URL:     url,
	}
}

// LocationAt returns the location of a byte offset in the file
func (f *ParseSourceFile) LocationAt(offset int) *ParseLocation {
	if offset > len(f.Content) {
		offset = len(f.Content)
	}
	if offset < 0 {
		offset = 0
	}
	starts := f.lines()
	line := sort.Search(len(starts), func(i int) bool { return starts[i] > offset }) - 1
	return NewParseLocation(f, offset, line, offset-starts[line])
}

// lines returns the offsets at which each line starts, built on first use
func (f *ParseSourceFile) lines() []int {
	f.linesOnce.Do(func() {
		f.lineStarts = append(f.lineStarts, 0)
		for i := 0; i < len(f.Content); i++ {
			if f.Content[i] == '\n' {
				f.lineStarts = append(f.lineStarts, i+1)
			}
		}
	})
	return f.lineStarts
}

// ParseSourceSpan represents a span of source code
type ParseSourceSpan struct {
	Start *ParseLocation
	End   *ParseLocation
}

// NewParseSourceSpan creates a new ParseSourceSpan
func NewParseSourceSpan(start, end *ParseLocation) *ParseSourceSpan {
	return &ParseSourceSpan{
		Start: start,
		End:   end,
	}
}

// SpanOf returns the span covering [start, end) in file
func SpanOf(file *ParseSourceFile, start, end int) *ParseSourceSpan {
	return NewParseSourceSpan(file.LocationAt(start), file.LocationAt(end))
}

// String returns the source code in this span
func (p *ParseSourceSpan) String() string {
	return p.Start.File.Content[p.Start.Offset:p.End.Offset]
}

// ErrorKind classifies compile errors
type ErrorKind int

const (
	ErrorKindMalformedDocument ErrorKind = iota
	ErrorKindUnbalancedTag
	ErrorKindAttributeType
	ErrorKindArgumentArity
	ErrorKindPropertyPromotion
	ErrorKindMissingArgument
	ErrorKindUnhandledNode
)

var (
	ErrMalformedDocument = errors.New("malformed document")
	ErrUnbalancedTag     = errors.New("unbalanced tag")
	ErrAttributeType     = errors.New("attribute type")
	ErrArgumentArity     = errors.New("argument arity")
	ErrPropertyPromotion = errors.New("property promotion")
	ErrMissingArgument   = errors.New("missing argument")
	// ErrUnhandledNode is an internal invariant violation of the serializer.
	ErrUnhandledNode = errors.New("unhandled node")
)

var kindSentinels = map[ErrorKind]error{
	ErrorKindMalformedDocument: ErrMalformedDocument,
	ErrorKindUnbalancedTag:     ErrUnbalancedTag,
	ErrorKindAttributeType:     ErrAttributeType,
	ErrorKindArgumentArity:     ErrArgumentArity,
	ErrorKindPropertyPromotion: ErrPropertyPromotion,
	ErrorKindMissingArgument:   ErrMissingArgument,
	ErrorKindUnhandledNode:     ErrUnhandledNode,
}

// String returns the sentinel message of the kind
func (k ErrorKind) String() string {
	if err, ok := kindSentinels[k]; ok {
		return err.Error()
	}
	return fmt.Sprintf("ErrorKind(%d)", int(k))
}

// ParseError represents a compile error for one template
type ParseError struct {
	Kind ErrorKind
	Span *ParseSourceSpan
	Tag  string
	Msg  string
}

// NewParseError creates a new ParseError
func NewParseError(kind ErrorKind, span *ParseSourceSpan, tag, msg string) *ParseError {
	return &ParseError{
		Kind: kind,
		Span: span,
		Tag:  tag,
		Msg:  msg,
	}
}

// Errorf creates a ParseError without a source span
func Errorf(kind ErrorKind, tag, format string, args ...interface{}) *ParseError {
	return NewParseError(kind, nil, tag, fmt.Sprintf(format, args...))
}

// Error implements the error interface
func (p *ParseError) Error() string {
	return p.String()
}

// Unwrap returns the sentinel error of the kind, so errors.Is works on kinds
func (p *ParseError) Unwrap() error {
	return kindSentinels[p.Kind]
}

// ContextualMessage returns the error message with context
func (p *ParseError) ContextualMessage() string {
	if p.Span == nil || p.Span.Start == nil {
		return p.Msg
	}
	ctx := p.Span.Start.GetContext(40, 1)
	if ctx != nil {
		return fmt.Sprintf(`%s ("%s[ERROR ->]%s")`, p.Msg, ctx.Before, ctx.After)
	}
	return p.Msg
}

// String returns a string representation of the error
func (p *ParseError) String() string {
	if p.Span == nil || p.Span.Start == nil {
		return p.Msg
	}
	return fmt.Sprintf("%s: %s", p.Span.Start, p.ContextualMessage())
}

// WithSpan returns a copy of the error located at span when it has none yet
func (p *ParseError) WithSpan(span *ParseSourceSpan) *ParseError {
	if p.Span != nil {
		return p
	}
	cp := *p
	cp.Span = span
	return &cp
}
