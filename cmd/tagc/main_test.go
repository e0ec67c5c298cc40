package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/stretchr/testify/require"

	"tagc-go/packages/compiler/src/util"
)

const testProject = `
compiler:
  strict: false
components:
  - name: card
    bindings: [subtype, level]
    params:
      - name: subtype
        type: string
      - name: level
        type: int
  - name: badge
    inline: true
    cache: "off"
`

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func newTestProject(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "tagc.yaml"), testProject)
	return dir
}

func runTagc(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	a := &app{stdout: &stdout, stderr: &stderr}
	cmd := newRootCmd(a)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return stdout.String(), err
}

func TestCompileCommand(t *testing.T) {
	t.Run("should write a compiled template next to each source", func(t *testing.T) {
		dir := newTestProject(t)
		src := filepath.Join(dir, "pages", "home.tagc.html")
		writeFile(t, src, `<div class="page"><card:info:2 class="x"></card:info:2></div>`)

		_, err := runTagc(t, "--config", filepath.Join(dir, "tagc.yaml"), "compile", dir+"/...")
		require.NoError(t, err)

		out, err := os.ReadFile(filepath.Join(dir, "pages", "home.tmpl"))
		require.NoError(t, err)
		require.Contains(t, string(out), `{{render "card" (args "subtype" "info" "level" 2 "__attributes" (attrs "class" "x"))}}`)
		require.True(t, strings.HasPrefix(string(out), `<div class="page">`))
		require.True(t, strings.HasSuffix(string(out), "</div>\n"))
	})

	t.Run("should print results with --stdout", func(t *testing.T) {
		dir := newTestProject(t)
		src := filepath.Join(dir, "home.tagc.html")
		writeFile(t, src, `<p>Hello <badge></badge></p>`)

		stdout, err := runTagc(t, "--config", filepath.Join(dir, "tagc.yaml"), "compile", "--stdout", src)
		require.NoError(t, err)
		require.Contains(t, stdout, `{{render "badge" (args "__attributes" (attrs)) "off"}}`)

		_, err = os.Stat(filepath.Join(dir, "home.tmpl"))
		require.True(t, os.IsNotExist(err))
	})

	t.Run("should report every failing file", func(t *testing.T) {
		dir := newTestProject(t)
		writeFile(t, filepath.Join(dir, "a.tagc.html"), `<card:info:2:extra></card:info:2:extra>`)
		writeFile(t, filepath.Join(dir, "b.tagc.html"), `<div></span>`)
		writeFile(t, filepath.Join(dir, "c.tagc.html"), `<div>ok</div>`)

		_, err := runTagc(t, "--config", filepath.Join(dir, "tagc.yaml"), "compile", "--jobs", "2", dir)
		require.Error(t, err)
		require.ErrorIs(t, err, util.ErrArgumentArity)
		require.ErrorIs(t, err, util.ErrUnbalancedTag)
		require.Contains(t, err.Error(), "a.tagc.html")
		require.Contains(t, err.Error(), "b.tagc.html")

		_, statErr := os.Stat(filepath.Join(dir, "c.tmpl"))
		require.NoError(t, statErr)
	})

	t.Run("should write textfile metrics", func(t *testing.T) {
		dir := newTestProject(t)
		writeFile(t, filepath.Join(dir, "home.tagc.html"), `<card:info:1></card:info:1><card:warn:2></card:warn:2>`)
		writeFile(t, filepath.Join(dir, "bad.tagc.html"), `<div>`)
		metricsFile := filepath.Join(dir, "tagc.prom")

		_, err := runTagc(t, "--config", filepath.Join(dir, "tagc.yaml"), "compile", "--metrics-file", metricsFile, dir)
		require.ErrorIs(t, err, util.ErrUnbalancedTag)

		metrics, err := os.ReadFile(metricsFile)
		require.NoError(t, err)
		require.Contains(t, string(metrics), "tagc_templates_compiled_total 1")
		require.Contains(t, string(metrics), `tagc_components_matched_total{component="card"} 2`)
		require.Contains(t, string(metrics), `tagc_compile_failures_total{kind="unbalanced tag"} 1`)
		require.Contains(t, string(metrics), "tagc_compile_duration_seconds_count 1")
	})

	t.Run("should reject a file with another extension", func(t *testing.T) {
		dir := newTestProject(t)
		src := filepath.Join(dir, "home.html")
		writeFile(t, src, `<div></div>`)

		_, err := runTagc(t, "--config", filepath.Join(dir, "tagc.yaml"), "compile", src)
		require.ErrorContains(t, err, "not a .tagc.html file")
	})
}

func TestFormatCommand(t *testing.T) {
	t.Run("should print formatted markup", func(t *testing.T) {
		dir := newTestProject(t)
		src := filepath.Join(dir, "home.tagc.html")
		writeFile(t, src, "<div><h1>Hi</h1></div>")

		stdout, err := runTagc(t, "--config", filepath.Join(dir, "tagc.yaml"), "fmt", src)
		require.NoError(t, err)
		require.Equal(t, "<div>\n\t<h1>Hi</h1>\n</div>\n", stdout)
	})

	t.Run("should rewrite files with -w and then pass --check", func(t *testing.T) {
		dir := newTestProject(t)
		src := filepath.Join(dir, "home.tagc.html")
		writeFile(t, src, "<div><h1>Hi</h1></div>")
		config := filepath.Join(dir, "tagc.yaml")

		stdout, err := runTagc(t, "--config", config, "fmt", "--check", src)
		require.ErrorIs(t, err, errUnformatted)
		require.Equal(t, src+"\n", stdout)

		_, err = runTagc(t, "--config", config, "fmt", "-w", src)
		require.NoError(t, err)
		b, err := os.ReadFile(src)
		require.NoError(t, err)
		require.Equal(t, "<div>\n\t<h1>Hi</h1>\n</div>\n", string(b))

		_, err = runTagc(t, "--config", config, "fmt", "--check", src)
		require.NoError(t, err)
	})

	t.Run("should format from tokens", func(t *testing.T) {
		dir := newTestProject(t)
		src := filepath.Join(dir, "home.tagc.html")
		writeFile(t, src, "<div><h1>Hi</h1></div>")

		stdout, err := runTagc(t, "--config", filepath.Join(dir, "tagc.yaml"), "fmt", "--tokens", src)
		require.NoError(t, err)
		require.Equal(t, "<div>\n\t<h1>Hi</h1>\n</div>\n", stdout)
	})

	t.Run("should refuse -w with --check", func(t *testing.T) {
		dir := newTestProject(t)
		_, err := runTagc(t, "--config", filepath.Join(dir, "tagc.yaml"), "fmt", "-w", "--check", dir)
		require.ErrorContains(t, err, "cannot use -w with --check")
	})
}

func TestComponentsCommand(t *testing.T) {
	t.Run("should list the registry", func(t *testing.T) {
		dir := newTestProject(t)

		stdout, err := runTagc(t, "--config", filepath.Join(dir, "tagc.yaml"), "components")
		require.NoError(t, err)
		lines := strings.Split(strings.TrimSpace(stdout), "\n")
		require.Len(t, lines, 3)
		require.True(t, strings.HasPrefix(lines[0], "NAME"))
		require.Contains(t, stdout, "card:,card")
		require.Contains(t, stdout, "subtype,level")
		require.Contains(t, lines[2], "off")
	})
}

func TestRootCommand(t *testing.T) {
	t.Run("should reject an unknown log format", func(t *testing.T) {
		dir := newTestProject(t)
		_, err := runTagc(t, "--config", filepath.Join(dir, "tagc.yaml"), "--log-format", "xml", "components")
		require.ErrorContains(t, err, `invalid log format "xml"`)
	})

	t.Run("should reject an invalid project file", func(t *testing.T) {
		dir := t.TempDir()
		config := filepath.Join(dir, "tagc.yaml")
		writeFile(t, config, "components:\n  - name: card\n    colour: red\n")
		_, err := runTagc(t, "--config", config, "components")
		require.ErrorContains(t, err, "failed to parse project file")
	})
}

func TestWatcher(t *testing.T) {
	newTestWatcher := func(t *testing.T, dir string) *watcher {
		t.Helper()
		a := &app{stdout: &bytes.Buffer{}, stderr: &bytes.Buffer{}, configPath: filepath.Join(dir, "tagc.yaml"), logLevel: "error", logFormat: "text"}
		require.NoError(t, a.setup())
		c, err := a.newCompiler()
		require.NoError(t, err)
		w, err := newWatcher(a, c, time.Millisecond)
		require.NoError(t, err)
		t.Cleanup(w.close)
		return w
	}

	t.Run("should recompile a changed source on flush", func(t *testing.T) {
		dir := newTestProject(t)
		src := filepath.Join(dir, "home.tagc.html")
		writeFile(t, src, `<card:info:3></card:info:3>`)
		w := newTestWatcher(t, dir)

		require.True(t, w.handleEvent(fsnotify.Event{Name: src, Op: fsnotify.Write}))
		require.NoError(t, w.flush())

		out, err := os.ReadFile(filepath.Join(dir, "home.tmpl"))
		require.NoError(t, err)
		require.Equal(t, "{{render \"card\" (args \"subtype\" \"info\" \"level\" 3 \"__attributes\" (attrs))}}\n", string(out))
		require.Empty(t, w.pending)
	})

	t.Run("should ignore files that are not sources", func(t *testing.T) {
		dir := newTestProject(t)
		w := newTestWatcher(t, dir)

		require.False(t, w.handleEvent(fsnotify.Event{Name: filepath.Join(dir, "notes.txt"), Op: fsnotify.Write}))
		require.False(t, w.handleEvent(fsnotify.Event{Name: filepath.Join(dir, "home.tagc.html"), Op: fsnotify.Chmod}))
		require.Empty(t, w.pending)
	})

	t.Run("should remove the output of a deleted source", func(t *testing.T) {
		dir := newTestProject(t)
		src := filepath.Join(dir, "home.tagc.html")
		output := filepath.Join(dir, "home.tmpl")
		writeFile(t, output, "stale\n")
		w := newTestWatcher(t, dir)

		require.True(t, w.handleEvent(fsnotify.Event{Name: src, Op: fsnotify.Remove}))
		require.NoError(t, w.flush())

		_, err := os.Stat(output)
		require.True(t, os.IsNotExist(err))
	})

	t.Run("should pick up sources in a created directory", func(t *testing.T) {
		dir := newTestProject(t)
		w := newTestWatcher(t, dir)
		sub := filepath.Join(dir, "widgets")
		writeFile(t, filepath.Join(sub, "a.tagc.html"), `<p>a</p>`)

		require.True(t, w.handleEvent(fsnotify.Event{Name: sub, Op: fsnotify.Create}))
		require.NoError(t, w.flush())

		out, err := os.ReadFile(filepath.Join(sub, "a.tmpl"))
		require.NoError(t, err)
		require.Equal(t, "<p>a</p>\n", string(out))
	})
}
