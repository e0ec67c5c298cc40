package ml_parser

import (
	"fmt"
	"regexp"
	"sort"
	"strings"

	"github.com/cespare/xxhash/v2"

	"tagc-go/packages/compiler/src/core"
	"tagc-go/packages/compiler/src/util"
)

// Placeholder kinds for protected literal blocks
const (
	LiteralKindCSS     = "css"
	LiteralKindJS      = "js"
	LiteralKindComment = "cmt"
)

// Private markers. Each one has the length of the text it stands for, so
// protection never shifts offsets.
const (
	arrowMarker  = "\x02\x03"
	ltMarker     = "\x04"
	gtMarker     = "\x05"
	arrowOperand = "->"
)

var (
	placeholderRe = regexp.MustCompile(`^<(css|js|cmt):\[[0-9a-f]{16}\]>$`)
	variableRe    = regexp.MustCompile(`\$[A-Za-z_][A-Za-z0-9_]*(?:->[A-Za-z_][A-Za-z0-9_]*)+`)
	markerRestore = strings.NewReplacer(arrowMarker, arrowOperand, ltMarker, "<", gtMarker, ">")
)

type literalOpener struct {
	open  string
	close string
	kind  string
}

var literalOpeners = []literalOpener{
	{open: "<script", close: "</script", kind: LiteralKindJS},
	{open: "<style", close: "</style", kind: LiteralKindCSS},
	{open: "<!--", close: "-->", kind: LiteralKindComment},
}

type protectEdit struct {
	start       int // in protected coordinates
	length      int
	originalLen int
	shift       int // sum of the length changes of the edits before this one
}

// Protector shields literal payloads and variable tokens from the tag
// tokenizer and restores them afterwards. One Protector serves one source.
type Protector struct {
	blocks   map[string]string
	order    []string
	edits    []protectEdit
	replacer *strings.Replacer
}

// NewProtector creates a new Protector
func NewProtector() *Protector {
	return &Protector{blocks: map[string]string{}}
}

// Protect returns source with literal blocks replaced by placeholders,
// variable arrows replaced by a marker and markup characters inside quoted
// attribute values masked.
func (p *Protector) Protect(file *util.ParseSourceFile) (string, error) {
	protected, err := p.protectLiterals(file)
	if err != nil {
		return "", err
	}
	protected = variableRe.ReplaceAllStringFunc(protected, func(m string) string {
		return strings.ReplaceAll(m, arrowOperand, arrowMarker)
	})
	return maskQuotedAttributes(protected), nil
}

func (p *Protector) protectLiterals(file *util.ParseSourceFile) (string, error) {
	source := file.Content
	lower := asciiLower(source)
	var b strings.Builder
	b.Grow(len(source))
	pos := 0
	for {
		start, opener := nextLiteral(lower, pos)
		if start < 0 {
			b.WriteString(source[pos:])
			return b.String(), nil
		}
		end := literalEnd(lower, start, opener)
		if end < 0 {
			return "", util.NewParseError(util.ErrorKindMalformedDocument,
				util.SpanOf(file, start, start+len(opener.open)), strings.TrimPrefix(opener.open, "<"),
				fmt.Sprintf("Unterminated literal block, missing %q", opener.close))
		}
		b.WriteString(source[pos:start])
		original := source[start:end]
		placeholder := fmt.Sprintf("<%s:[%016x]>", opener.kind, xxhash.Sum64String(original))
		if _, seen := p.blocks[placeholder]; !seen {
			p.order = append(p.order, placeholder)
		}
		p.blocks[placeholder] = original
		shift := 0
		if n := len(p.edits); n > 0 {
			last := p.edits[n-1]
			shift = last.shift + last.originalLen - last.length
		}
		p.edits = append(p.edits, protectEdit{start: b.Len(), length: len(placeholder), originalLen: len(original), shift: shift})
		b.WriteString(placeholder)
		p.replacer = nil
		pos = end
	}
}

// nextLiteral finds the earliest literal opener at or after pos
func nextLiteral(lower string, pos int) (int, literalOpener) {
	best := -1
	var found literalOpener
	for _, o := range literalOpeners {
		from := pos
		for {
			i := strings.Index(lower[from:], o.open)
			if i < 0 {
				break
			}
			i += from
			after := i + len(o.open)
			// <scripts> or <styled-box> are ordinary tags
			if o.kind == LiteralKindComment || after >= len(lower) || isTagNameEnd(lower[after]) {
				if best < 0 || i < best {
					best, found = i, o
				}
				break
			}
			from = after
		}
	}
	return best, found
}

func isTagNameEnd(ch byte) bool {
	return ch == core.CharGT || ch == core.CharSLASH || util.IsWhitespace(ch)
}

// literalEnd returns the offset just past the closing sequence, or -1
func literalEnd(lower string, start int, o literalOpener) int {
	from := start + len(o.open)
	i := strings.Index(lower[from:], o.close)
	if i < 0 {
		return -1
	}
	end := from + i + len(o.close)
	if o.kind == LiteralKindComment {
		return end
	}
	gt := strings.IndexByte(lower[end:], core.CharGT)
	if gt < 0 {
		return -1
	}
	return end + gt + 1
}

func asciiLower(s string) string {
	b := []byte(s)
	for i, c := range b {
		if c >= 'A' && c <= 'Z' {
			b[i] = c + ('a' - 'A')
		}
	}
	return string(b)
}

// maskQuotedAttributes hides '<' and '>' inside quoted values of start tags
func maskQuotedAttributes(s string) string {
	b := []byte(s)
	inTag := false
	var quote byte
	for i := 0; i < len(b); i++ {
		c := b[i]
		switch {
		case quote != 0:
			if c == quote {
				quote = 0
			} else if c == core.CharLT {
				b[i] = ltMarker[0]
			} else if c == core.CharGT {
				b[i] = gtMarker[0]
			}
		case inTag:
			if core.IsQuote(c) && i > 0 && (b[i-1] == core.CharEQ || util.IsWhitespace(b[i-1])) {
				quote = c
			} else if c == core.CharGT {
				inTag = false
			}
		case c == core.CharLT && i+1 < len(b) && core.IsAsciiLetter(b[i+1]):
			inTag = true
		}
	}
	return string(b)
}

// IsPlaceholder reports whether raw is a literal block placeholder
func IsPlaceholder(raw string) bool {
	return placeholderRe.MatchString(raw)
}

// Literal returns the original text of a placeholder
func (p *Protector) Literal(placeholder string) (string, bool) {
	s, ok := p.blocks[placeholder]
	return s, ok
}

// Restore undoes every protection in s
func (p *Protector) Restore(s string) string {
	s = markerRestore.Replace(s)
	if len(p.blocks) == 0 || !strings.Contains(s, ":[") {
		return s
	}
	if p.replacer == nil {
		pairs := make([]string, 0, 2*len(p.order))
		for _, ph := range p.order {
			pairs = append(pairs, ph, p.blocks[ph])
		}
		p.replacer = strings.NewReplacer(pairs...)
	}
	return p.replacer.Replace(s)
}

// OriginalOffset maps an offset in the protected source back to the original
func (p *Protector) OriginalOffset(offset int) int {
	i := sort.Search(len(p.edits), func(i int) bool {
		return p.edits[i].start > offset
	})
	if i == 0 {
		return offset
	}
	e := p.edits[i-1]
	if offset < e.start+e.length {
		return e.start + e.shift
	}
	return offset + e.shift + e.originalLen - e.length
}
