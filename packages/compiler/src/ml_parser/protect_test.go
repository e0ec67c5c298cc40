package ml_parser_test

import (
	"errors"
	"strings"
	"testing"

	"tagc-go/packages/compiler/src/ml_parser"
	"tagc-go/packages/compiler/src/util"
)

func protect(t *testing.T, source string) (*ml_parser.Protector, string) {
	t.Helper()
	p := ml_parser.NewProtector()
	protected, err := p.Protect(util.NewParseSourceFile(source, "test.html"))
	if err != nil {
		t.Fatalf("Protect() error = %v", err)
	}
	return p, protected
}

func TestProtector(t *testing.T) {
	t.Run("should replace literal blocks with placeholders", func(t *testing.T) {
		source := "<div><style>a > b {}</style><script>x = '<p>'</script><!-- <b> --></div>"
		p, protected := protect(t, source)

		if strings.Contains(protected, "<p>") || strings.Contains(protected, "<b>") {
			t.Fatalf("literal content leaked: %q", protected)
		}
		for _, kind := range []string{"<css:[", "<js:[", "<cmt:["} {
			if !strings.Contains(protected, kind) {
				t.Errorf("missing %s placeholder in %q", kind, protected)
			}
		}
		if got := p.Restore(protected); got != source {
			t.Errorf("Restore() = %q, want %q", got, source)
		}
	})

	t.Run("should key placeholders by content hash", func(t *testing.T) {
		p, protected := protect(t, "<script>a</script><script>a</script>")
		first := protected[:len(protected)/2]
		second := protected[len(protected)/2:]
		if first != second {
			t.Errorf("identical blocks got different placeholders: %q", protected)
		}
		if !ml_parser.IsPlaceholder(first) {
			t.Errorf("IsPlaceholder(%q) = false", first)
		}
		if literal, ok := p.Literal(first); !ok || literal != "<script>a</script>" {
			t.Errorf("Literal() = %q, %v", literal, ok)
		}
	})

	t.Run("should match literal tags case-insensitively", func(t *testing.T) {
		_, protected := protect(t, "<SCRIPT>a</Script >")
		if !ml_parser.IsPlaceholder(protected) {
			t.Errorf("Protect() = %q, want a single placeholder", protected)
		}
	})

	t.Run("should leave look-alike tags alone", func(t *testing.T) {
		source := "<scripts>a</scripts><styled-box>b</styled-box>"
		_, protected := protect(t, source)
		if protected != source {
			t.Errorf("Protect() = %q, want %q", protected, source)
		}
	})

	t.Run("should fail on an unterminated block", func(t *testing.T) {
		for _, source := range []string{"<script>x", "<style>x</style", "<!-- x"} {
			_, err := ml_parser.NewProtector().Protect(util.NewParseSourceFile(source, "test.html"))
			if !errors.Is(err, util.ErrMalformedDocument) {
				t.Errorf("Protect(%q) error = %v, want ErrMalformedDocument", source, err)
			}
		}
	})

	t.Run("should mask arrows in variable references", func(t *testing.T) {
		source := "<p>$user->name and a->b</p>"
		p, protected := protect(t, source)
		if strings.Contains(protected, "$user->") {
			t.Errorf("arrow not masked: %q", protected)
		}
		if !strings.Contains(protected, "a->b") {
			t.Errorf("plain arrow masked: %q", protected)
		}
		if len(protected) != len(source) {
			t.Errorf("masking changed the length: %d != %d", len(protected), len(source))
		}
		if got := p.Restore(protected); got != source {
			t.Errorf("Restore() = %q", got)
		}
	})

	t.Run("should mask markup inside quoted attribute values", func(t *testing.T) {
		source := `<a title="x > y" data-t='<b>'>t</a> 1 > 0`
		p, protected := protect(t, source)
		if strings.Count(protected, ">") != 3 || strings.Count(protected, "<") != 2 {
			t.Errorf("quoted markup not masked: %q", protected)
		}
		if got := p.Restore(protected); got != source {
			t.Errorf("Restore() = %q", got)
		}
	})

	t.Run("should map offsets back to the source", func(t *testing.T) {
		source := "ab<style>x</style>cd"
		p, protected := protect(t, source)
		after := strings.Index(protected, "cd")
		if got := p.OriginalOffset(after); got != strings.Index(source, "cd") {
			t.Errorf("OriginalOffset(%d) = %d, want %d", after, got, strings.Index(source, "cd"))
		}
		if got := p.OriginalOffset(5); got != 2 {
			t.Errorf("OriginalOffset inside placeholder = %d, want 2", got)
		}
		if got := p.OriginalOffset(1); got != 1 {
			t.Errorf("OriginalOffset(1) = %d, want 1", got)
		}
	})

	t.Run("should map offsets past several blocks", func(t *testing.T) {
		source := "<script>a</script>X<style>bb</style>YY<!-- ccc -->ZZZ"
		p, protected := protect(t, source)
		for _, marker := range []string{"X", "YY", "ZZZ"} {
			at := strings.Index(protected, marker)
			if got, want := p.OriginalOffset(at), strings.Index(source, marker); got != want {
				t.Errorf("OriginalOffset of %q = %d, want %d", marker, got, want)
			}
		}
	})
}
