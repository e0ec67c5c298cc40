package ml_parser

import (
	"fmt"

	"tagc-go/packages/compiler/src/util"
)

// TokenType represents the type of a token
type TokenType int

const (
	TokenTypeTEXT TokenType = iota
	TokenTypeTAG_OPEN
	TokenTypeTAG_CLOSE
	TokenTypeTAG_SELF_CLOSE
	TokenTypeDOC_TYPE
	TokenTypeLITERAL
)

var tokenTypeNames = [...]string{"TEXT", "TAG_OPEN", "TAG_CLOSE", "TAG_SELF_CLOSE", "DOC_TYPE", "LITERAL"}

// String returns the name of the token type
func (t TokenType) String() string {
	if int(t) >= 0 && int(t) < len(tokenTypeNames) {
		return tokenTypeNames[t]
	}
	return fmt.Sprintf("TokenType(%d)", int(t))
}

// Token is one entry of the flat token stream. Parts holds the tag name and
// the raw attribute text for tags, and the raw text otherwise. Raw is the
// token as it appears in the protected source.
type Token struct {
	Type       TokenType
	Parts      []string
	Raw        string
	Offset     int
	sourceSpan *util.ParseSourceSpan
}

// SourceSpan returns the span of the token in the original source
func (t Token) SourceSpan() *util.ParseSourceSpan {
	return t.sourceSpan
}

// Name returns the lowercase tag name of a tag token
func (t Token) Name() string {
	if t.Type == TokenTypeTEXT || t.Type == TokenTypeLITERAL || t.Type == TokenTypeDOC_TYPE || len(t.Parts) == 0 {
		return ""
	}
	return t.Parts[0]
}

// AttrSource returns the raw attribute text of an opening tag token
func (t Token) AttrSource() string {
	if (t.Type == TokenTypeTAG_OPEN || t.Type == TokenTypeTAG_SELF_CLOSE) && len(t.Parts) > 1 {
		return t.Parts[1]
	}
	return ""
}

// String returns a debug form of the token
func (t Token) String() string {
	return fmt.Sprintf("%s(%q)", t.Type, t.Raw)
}
