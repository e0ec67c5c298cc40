package ml_parser

import (
	"regexp"
	"strings"

	"tagc-go/packages/compiler/src/core"
	"tagc-go/packages/compiler/src/util"
)

var (
	doctypeTokenRe   = regexp.MustCompile(`(?i)^<!doctype(\s[^>]*)?>$`)
	closeTokenRe     = regexp.MustCompile(`^</\s*([A-Za-z][A-Za-z0-9:._-]*)\s*>$`)
	openTokenRe      = regexp.MustCompile(`^<([A-Za-z][A-Za-z0-9:._-]*)(\s[^>]*?)?(/?)>$`)
	selfCloseSpaceRe = regexp.MustCompile(`\s+/>$`)
)

// TokenizeResult represents the result of tokenization
type TokenizeResult struct {
	Tokens    []Token
	Protector *Protector
	File      *util.ParseSourceFile
}

// Tokenize protects source and splits it into a flat token stream
func Tokenize(source, url string) (*TokenizeResult, error) {
	file := util.NewParseSourceFile(source, url)
	t := newTokenizer(file)
	if err := t.tokenize(); err != nil {
		return nil, err
	}
	return &TokenizeResult{Tokens: t.tokens, Protector: t.protector, File: file}, nil
}

type tokenizer struct {
	file      *util.ParseSourceFile
	protector *Protector
	input     string
	tokens    []Token

	// preformatted counts the open pre/textarea tags; whitespace is kept inside them
	preformatted int
}

func newTokenizer(file *util.ParseSourceFile) *tokenizer {
	return &tokenizer{file: file, protector: NewProtector()}
}

func (t *tokenizer) tokenize() error {
	input, err := t.protector.Protect(t.file)
	if err != nil {
		return err
	}
	t.input = input
	start := 0
	for i := 0; i < len(input); i++ {
		switch input[i] {
		case core.CharLT:
			t.emit(start, i)
			start = i
		case core.CharGT:
			t.emit(start, i+1)
			start = i + 1
		}
	}
	t.emit(start, len(input))
	return nil
}

// emit classifies input[start:end] and appends it. Empty and
// whitespace-only chunks between tags are dropped outside preformatted tags.
func (t *tokenizer) emit(start, end int) {
	if end <= start {
		return
	}
	raw := t.input[start:end]
	if strings.TrimSpace(raw) == "" && t.preformatted == 0 {
		return
	}
	tok := classifyToken(raw)
	switch tok.Type {
	case TokenTypeTAG_OPEN:
		if GetHtmlTagDefinition(tok.Name()).PreservesWhitespace() {
			t.preformatted++
		}
	case TokenTypeTAG_CLOSE:
		if t.preformatted > 0 && GetHtmlTagDefinition(tok.Name()).PreservesWhitespace() {
			t.preformatted--
		}
	}
	tok.Offset = start
	tok.sourceSpan = util.SpanOf(t.file, t.protector.OriginalOffset(start), t.protector.OriginalOffset(end))
	t.tokens = append(t.tokens, tok)
}

func classifyToken(raw string) Token {
	if raw[0] != core.CharLT {
		return Token{Type: TokenTypeTEXT, Parts: []string{raw}, Raw: raw}
	}
	if IsPlaceholder(raw) {
		return Token{Type: TokenTypeLITERAL, Parts: []string{raw}, Raw: raw}
	}
	if doctypeTokenRe.MatchString(raw) {
		return Token{Type: TokenTypeDOC_TYPE, Parts: []string{raw}, Raw: raw}
	}
	if m := closeTokenRe.FindStringSubmatch(raw); m != nil {
		return Token{Type: TokenTypeTAG_CLOSE, Parts: []string{strings.ToLower(m[1])}, Raw: raw}
	}
	normalized := selfCloseSpaceRe.ReplaceAllString(raw, "/>")
	if m := openTokenRe.FindStringSubmatch(normalized); m != nil {
		typ := TokenTypeTAG_OPEN
		if m[3] != "" {
			typ = TokenTypeTAG_SELF_CLOSE
		}
		return Token{Type: typ, Parts: []string{strings.ToLower(m[1]), m[2]}, Raw: normalized}
	}
	return Token{Type: TokenTypeTEXT, Parts: []string{raw}, Raw: raw}
}
