package compiler_test

import (
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/google/go-cmp/cmp"

	compiler "tagc-go/packages/compiler/src"
	"tagc-go/packages/compiler/src/config"
	"tagc-go/packages/compiler/src/core"
	"tagc-go/packages/compiler/src/ml_parser"
	"tagc-go/packages/compiler/src/output"
	"tagc-go/packages/compiler/src/util"
)

var registry = []*core.ComponentDescriptor{
	{
		Name:               "card",
		TagPatterns:        []string{"card:", "card"},
		PositionalBindings: []string{"subtype", "level"},
		Parameters: []core.Parameter{
			{Name: "subtype", Type: core.ParamTypeString},
			{Name: "level", Type: core.ParamTypeInt},
		},
	},
	{Name: "badge", TagPatterns: []string{"badge"}, Inline: true},
}

func newCompiler(t *testing.T, opts ...config.CompilerConfigOption) *compiler.Compiler {
	t.Helper()
	c, err := compiler.NewCompiler(registry, opts...)
	if err != nil {
		t.Fatalf("NewCompiler() error = %v", err)
	}
	return c
}

const page = `<!DOCTYPE html><html><head><title>Home</title></head><body><section><h1>Hello $user->name</h1>` +
	`<card:info:2 class="big">Read more</card:info:2><x-widget></x-widget></section>` +
	`<script>if (a < b) {}</script></body></html>`

func TestCompile(t *testing.T) {
	t.Run("should compile a document", func(t *testing.T) {
		result, err := newCompiler(t).Compile(page, "home.tagc.html")
		if err != nil {
			t.Fatal(err)
		}
		expected := strings.Join([]string{
			"<!DOCTYPE html>",
			"<html>",
			"<head>",
			"\t<title>Home</title>",
			"</head>",
			"<body>",
			"\t<section>",
			"\t\t<h1>Hello $user->name</h1>",
			`		{{render "card" (args "subtype" "info" "level" 2 "content" "Read more" "__attributes" (attrs "class" "big"))}}`,
			"\t\t<x-widget>",
			"\t\t</x-widget>",
			"\t</section>",
			"\t<script>if (a < b) {}</script>",
			"</body>",
			"</html>",
		}, "\n")
		if diff := cmp.Diff(expected, result.Output); diff != "" {
			t.Errorf("Compile() mismatch (-want +got):\n%s", diff)
		}
		if len(result.Calls) != 1 || result.Calls[0].Target != "card" {
			t.Errorf("Calls = %v", result.Calls)
		}
		if diff := cmp.Diff([]string{"x-widget"}, result.Unmatched); diff != "" {
			t.Errorf("Unmatched mismatch (-want +got):\n%s", diff)
		}
	})

	t.Run("should keep inline components on the text line", func(t *testing.T) {
		result, err := newCompiler(t).Compile(`<li>New <badge></badge> today</li>`, "list.tagc.html")
		if err != nil {
			t.Fatal(err)
		}
		expected := "<li>\n\tNew {{render \"badge\" (args \"__attributes\" (attrs))}} today\n</li>"
		if diff := cmp.Diff(expected, result.Output); diff != "" {
			t.Errorf("Compile() mismatch (-want +got):\n%s", diff)
		}
	})

	t.Run("should keep nested components inside raw content callable", func(t *testing.T) {
		result, err := newCompiler(t).Compile(`<card:info:2><badge></badge></card:info:2>`, "nested.tagc.html")
		if err != nil {
			t.Fatal(err)
		}
		expected := `{{render "card" (args "subtype" "info" "level" 2 "content" (slot (render "badge" (args "__attributes" (attrs)))) "__attributes" (attrs))}}`
		if diff := cmp.Diff(expected, result.Output); diff != "" {
			t.Errorf("Compile() mismatch (-want +got):\n%s", diff)
		}
	})

	t.Run("should use the configured printer", func(t *testing.T) {
		result, err := newCompiler(t, config.WithPrinter(output.NewJSONPrinter())).Compile(`<badge></badge>`, "b.tagc.html")
		if err != nil {
			t.Fatal(err)
		}
		expected := `{"target":"badge","handler":"badge","arguments":{"__attributes":{}},"cacheHint":"auto"}`
		if diff := cmp.Diff(expected, result.Output); diff != "" {
			t.Errorf("Compile() mismatch (-want +got):\n%s", diff)
		}
	})

	t.Run("should report extraction errors", func(t *testing.T) {
		_, err := newCompiler(t).Compile(`<div><card:info:x></card:info:x></div>`, "bad.tagc.html")
		if !errors.Is(err, util.ErrPropertyPromotion) {
			t.Errorf("Compile() error = %v, want ErrPropertyPromotion", err)
		}
	})

	t.Run("should report parse errors", func(t *testing.T) {
		_, err := newCompiler(t).Compile(`<div><card:info:1></div>`, "bad.tagc.html")
		if !errors.Is(err, util.ErrUnbalancedTag) {
			t.Errorf("Compile() error = %v, want ErrUnbalancedTag", err)
		}
	})

	t.Run("should compile concurrently", func(t *testing.T) {
		c := newCompiler(t)
		want, err := c.Compile(page, "home.tagc.html")
		if err != nil {
			t.Fatal(err)
		}
		var wg sync.WaitGroup
		outputs := make([]string, 8)
		errs := make([]error, 8)
		for i := range outputs {
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				result, err := c.Compile(page, "home.tagc.html")
				if err != nil {
					errs[i] = err
					return
				}
				outputs[i] = result.Output
			}(i)
		}
		wg.Wait()
		for i := range outputs {
			if errs[i] != nil {
				t.Fatalf("goroutine %d: %v", i, errs[i])
			}
			if outputs[i] != want.Output {
				t.Errorf("goroutine %d produced a different output", i)
			}
		}
	})

	t.Run("should compile built nodes", func(t *testing.T) {
		nodes := []ml_parser.Node{
			ml_parser.NewElement("card:info:3", nil, []ml_parser.Node{ml_parser.NewText("x", nil)}, nil),
		}
		result, err := newCompiler(t).CompileNodes(nodes)
		if err != nil {
			t.Fatal(err)
		}
		expected := `{{render "card" (args "subtype" "info" "level" 3 "content" "x" "__attributes" (attrs))}}`
		if diff := cmp.Diff(expected, result.Output); diff != "" {
			t.Errorf("CompileNodes() mismatch (-want +got):\n%s", diff)
		}
	})

	t.Run("should reject duplicate components", func(t *testing.T) {
		_, err := compiler.NewCompiler(append(registry, &core.ComponentDescriptor{Name: "card", TagPatterns: []string{"box"}}))
		if err == nil {
			t.Error("NewCompiler() accepted a duplicate component")
		}
	})
}

func TestNewProjectCompiler(t *testing.T) {
	t.Run("should pass custom elements through without components", func(t *testing.T) {
		c, err := compiler.NewProjectCompiler(config.DefaultProject())
		if err != nil {
			t.Fatal(err)
		}
		result, err := c.Compile(`<card:info></card:info>`, "x.tagc.html")
		if err != nil {
			t.Fatal(err)
		}
		if diff := cmp.Diff("<card:info>\n</card:info>", result.Output); diff != "" {
			t.Errorf("Compile() mismatch (-want +got):\n%s", diff)
		}
		if c.Matcher().Len() != 0 {
			t.Errorf("Matcher().Len() = %d", c.Matcher().Len())
		}
	})

	t.Run("should apply project settings", func(t *testing.T) {
		project := config.DefaultProject()
		project.Compiler.Strict = true
		c, err := compiler.NewProjectCompiler(project)
		if err != nil {
			t.Fatal(err)
		}
		_, err = c.Format("<body></body><head></head>", "x.html")
		if !errors.Is(err, util.ErrMalformedDocument) {
			t.Errorf("Format() error = %v, want ErrMalformedDocument", err)
		}
	})
}

func TestFormat(t *testing.T) {
	source := "<div><h2> Title </h2><span>a</span><b>b</b></div>"
	expected := "<div>\n\t<h2>Title</h2>\n\t<span>a</span><b>b</b>\n</div>"

	t.Run("should format from the tree", func(t *testing.T) {
		result, err := newCompiler(t).Format(source, "x.html")
		if err != nil {
			t.Fatal(err)
		}
		if diff := cmp.Diff(expected, result); diff != "" {
			t.Errorf("Format() mismatch (-want +got):\n%s", diff)
		}
	})

	t.Run("should format from tokens", func(t *testing.T) {
		result, err := newCompiler(t).FormatTokens(source, "x.html")
		if err != nil {
			t.Fatal(err)
		}
		if diff := cmp.Diff(expected, result); diff != "" {
			t.Errorf("FormatTokens() mismatch (-want +got):\n%s", diff)
		}
	})

	t.Run("should leave components untouched", func(t *testing.T) {
		result, err := newCompiler(t).Format("<card:info:2>x</card:info:2>", "x.html")
		if err != nil {
			t.Fatal(err)
		}
		if diff := cmp.Diff("<card:info:2>\n\tx\n</card:info:2>", result); diff != "" {
			t.Errorf("Format() mismatch (-want +got):\n%s", diff)
		}
	})

	t.Run("should honor layout overrides", func(t *testing.T) {
		result, err := newCompiler(t, config.WithForceInline("DIV")).Format("<p><div>a</div></p>", "x.html")
		if err != nil {
			t.Fatal(err)
		}
		if diff := cmp.Diff("<p>\n\t<div>a</div>\n</p>", result); diff != "" {
			t.Errorf("Format() mismatch (-want +got):\n%s", diff)
		}
	})
}
