package util

import (
	"regexp"
	"strings"
)

var dashCaseRegexp = regexp.MustCompile(`-+([a-z0-9])`)

// DashCaseToCamelCase converts a dash-case string to camelCase
func DashCaseToCamelCase(input string) string {
	return dashCaseRegexp.ReplaceAllStringFunc(input, func(match string) string {
		parts := dashCaseRegexp.FindStringSubmatch(match)
		if len(parts) > 1 {
			return strings.ToUpper(parts[1])
		}
		return match
	})
}

// IsNumeric reports whether s is a non-empty run of ASCII digits
func IsNumeric(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}

// IsWhitespace checks if a byte is ASCII whitespace
func IsWhitespace(ch byte) bool {
	return ch == ' ' || ch == '\t' || ch == '\n' || ch == '\r' || ch == '\f' || ch == '\v'
}

// CollapseWhitespace replaces every whitespace run with a single space
func CollapseWhitespace(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	inSpace := false
	for i := 0; i < len(s); i++ {
		if IsWhitespace(s[i]) {
			if !inSpace {
				b.WriteByte(' ')
			}
			inSpace = true
			continue
		}
		inSpace = false
		b.WriteByte(s[i])
	}
	return b.String()
}
