package ml_parser_test

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"tagc-go/packages/compiler/src/ml_parser"
)

func TestClassify(t *testing.T) {
	cases := []struct {
		tag      string
		override ml_parser.Override
		expected ml_parser.TagClass
	}{
		{"div", ml_parser.OverrideNone, ml_parser.TagClassBlock},
		{"span", ml_parser.OverrideNone, ml_parser.TagClassInline},
		{"img", ml_parser.OverrideNone, ml_parser.TagClassSelfClosing},
		{"br", ml_parser.OverrideNone, ml_parser.TagClassSelfClosing},
		{"h2", ml_parser.OverrideNone, ml_parser.TagClassHeading},
		{"title", ml_parser.OverrideNone, ml_parser.TagClassContent},
		{"card:info", ml_parser.OverrideNone, ml_parser.TagClassBlock},
		{"span:x", ml_parser.OverrideNone, ml_parser.TagClassInline},
		{"div", ml_parser.OverrideForceInline, ml_parser.TagClassInline},
		{"span", ml_parser.OverrideForceBlock, ml_parser.TagClassBlock},
		{"h1", ml_parser.OverrideForceBlock, ml_parser.TagClassHeading},
	}
	for _, c := range cases {
		t.Run("should classify "+c.tag, func(t *testing.T) {
			if got := ml_parser.Classify(c.tag, c.override); got != c.expected {
				t.Errorf("Classify(%q, %d) = %s, want %s", c.tag, c.override, got, c.expected)
			}
		})
	}
}

func TestTagDefinitions(t *testing.T) {
	t.Run("should mark void elements", func(t *testing.T) {
		for _, tag := range []string{"img", "input", "meta", "hr"} {
			if !ml_parser.GetHtmlTagDefinition(tag).IsVoid() {
				t.Errorf("%s is not void", tag)
			}
		}
		if ml_parser.GetHtmlTagDefinition("div").IsVoid() {
			t.Error("div is void")
		}
	})

	t.Run("should mark document sections", func(t *testing.T) {
		for _, tag := range []string{"html", "head", "body"} {
			if !ml_parser.GetHtmlTagDefinition(tag).IsDocumentSection() {
				t.Errorf("%s is not a document section", tag)
			}
		}
	})

	t.Run("should keep heading and content text inline", func(t *testing.T) {
		for _, tag := range []string{"h1", "title", "option"} {
			if !ml_parser.GetHtmlTagDefinition(tag).KeepsContentInline() {
				t.Errorf("%s does not keep content inline", tag)
			}
		}
	})

	t.Run("should know standard elements", func(t *testing.T) {
		if !ml_parser.IsKnownElement("section") || !ml_parser.IsKnownElement("span") {
			t.Error("standard element not known")
		}
		if ml_parser.IsKnownElement("card:info") {
			t.Error("custom element reported as known")
		}
	})

	t.Run("should split tag segments", func(t *testing.T) {
		if diff := cmp.Diff([]string{"card", "info", "2"}, ml_parser.TagSegments("card:info:2")); diff != "" {
			t.Errorf("TagSegments() mismatch (-want +got):\n%s", diff)
		}
		if got := ml_parser.BaseTag("card:info:2"); got != "card" {
			t.Errorf("BaseTag() = %q", got)
		}
		if got := ml_parser.BaseTag("card"); got != "card" {
			t.Errorf("BaseTag() = %q", got)
		}
	})
}
