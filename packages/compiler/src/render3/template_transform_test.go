package render3_test

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"

	"tagc-go/packages/compiler/src/core"
	"tagc-go/packages/compiler/src/ml_parser"
	"tagc-go/packages/compiler/src/output"
	"tagc-go/packages/compiler/src/render3"
	"tagc-go/packages/compiler/src/util"
)

func newMatcher(t *testing.T) *render3.ComponentMatcher {
	t.Helper()
	m, err := render3.NewComponentMatcher(
		&core.ComponentDescriptor{
			Name:               "card",
			TagPatterns:        []string{"card:"},
			PositionalBindings: []string{"subtype", "level"},
			Content:            core.ContentStructured,
		},
		&core.ComponentDescriptor{
			Name:        "badge",
			TagPatterns: []string{"badge"},
			Inline:      true,
			CacheHint:   core.CacheHintOff,
		},
	)
	if err != nil {
		t.Fatal(err)
	}
	return m
}

func transform(t *testing.T, source string, printer output.Printer) (*render3.TransformResult, error) {
	t.Helper()
	tree, err := ml_parser.NewHtmlParser(nil).Parse(source, "test.html")
	if err != nil {
		t.Fatalf("Parse(%q) error = %v", source, err)
	}
	return render3.TransformTemplate(tree.RootNodes, newMatcher(t), nil, printer, nil)
}

func TestTemplateTransform(t *testing.T) {
	t.Run("should emit nested components innermost first", func(t *testing.T) {
		result, err := transform(t, `<section><card:info:1><badge></badge></card:info:1></section>`, nil)
		if err != nil {
			t.Fatal(err)
		}
		var targets []string
		for _, call := range result.Calls {
			targets = append(targets, call.Target)
		}
		if diff := cmp.Diff([]string{"badge", "card"}, targets); diff != "" {
			t.Errorf("Calls mismatch (-want +got):\n%s", diff)
		}

		section := result.Nodes[0].(*ml_parser.Element)
		placeholder, ok := section.Children[0].(*ml_parser.Placeholder)
		if !ok {
			t.Fatalf("card was not replaced: %T", section.Children[0])
		}
		expected := `{{render "card" (args "subtype" "info" "level" 1 "content" (slot (render "badge" (args "__attributes" (attrs)) "off")) "__attributes" (attrs))}}`
		if diff := cmp.Diff(expected, placeholder.Content); diff != "" {
			t.Errorf("Content mismatch (-want +got):\n%s", diff)
		}
		if placeholder.Inline || placeholder.Call != result.Calls[1] {
			t.Errorf("placeholder Inline = %v, Call = %v", placeholder.Inline, placeholder.Call)
		}
	})

	t.Run("should lay inline components out inline", func(t *testing.T) {
		result, err := transform(t, `<p>New <badge></badge></p>`, nil)
		if err != nil {
			t.Fatal(err)
		}
		out, err := ml_parser.NewSerializer(ml_parser.SerializerOptions{}).Serialize(result.Nodes, nil)
		if err != nil {
			t.Fatal(err)
		}
		expected := "<p>\n\tNew {{render \"badge\" (args \"__attributes\" (attrs)) \"off\"}}\n</p>"
		if diff := cmp.Diff(expected, out); diff != "" {
			t.Errorf("Serialize() mismatch (-want +got):\n%s", diff)
		}
	})

	t.Run("should pass unmatched elements through", func(t *testing.T) {
		result, err := transform(t, `<div><x-widget b="2" a="1"></x-widget><my-el></my-el><x-widget></x-widget><span></span></div>`, nil)
		if err != nil {
			t.Fatal(err)
		}
		if diff := cmp.Diff([]string{"x-widget", "my-el"}, result.Unmatched); diff != "" {
			t.Errorf("Unmatched mismatch (-want +got):\n%s", diff)
		}
		widget := result.Nodes[0].(*ml_parser.Element).Children[0].(*ml_parser.Element)
		if diff := cmp.Diff([]string{"b", "a"}, widget.Attrs.Names()); diff != "" {
			t.Errorf("attribute order mismatch (-want +got):\n%s", diff)
		}
		if len(result.Calls) != 0 {
			t.Errorf("Calls = %d, want 0", len(result.Calls))
		}
	})

	t.Run("should print with the configured printer", func(t *testing.T) {
		result, err := transform(t, `<badge></badge>`, output.NewJSONPrinter())
		if err != nil {
			t.Fatal(err)
		}
		placeholder := result.Nodes[0].(*ml_parser.Placeholder)
		expected := `{"target":"badge","handler":"badge","arguments":{"__attributes":{}},"cacheHint":"off"}`
		if diff := cmp.Diff(expected, placeholder.Content); diff != "" {
			t.Errorf("Content mismatch (-want +got):\n%s", diff)
		}
	})

	t.Run("should abort on the first error", func(t *testing.T) {
		result, err := transform(t, `<div><card:a:1:b></card:a:1:b><card:x></card:x></div>`, nil)
		if !errors.Is(err, util.ErrArgumentArity) {
			t.Errorf("TransformTemplate() error = %v, want ErrArgumentArity", err)
		}
		if result != nil {
			t.Error("TransformTemplate() returned a result with an error")
		}
	})

	t.Run("should transform without a matcher", func(t *testing.T) {
		tree, err := ml_parser.NewHtmlParser(nil).Parse(`<card:x></card:x>`, "test.html")
		if err != nil {
			t.Fatal(err)
		}
		result, err := render3.TransformTemplate(tree.RootNodes, nil, nil, nil, nil)
		if err != nil {
			t.Fatal(err)
		}
		if diff := cmp.Diff([]string{"card:x"}, result.Unmatched); diff != "" {
			t.Errorf("Unmatched mismatch (-want +got):\n%s", diff)
		}
	})
}
