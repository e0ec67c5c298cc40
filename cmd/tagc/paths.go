package main

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"tagc-go/packages/compiler/src/config"
)

// sourceSet selects template sources by extension and exclude globs
type sourceSet struct {
	files config.FileOptions
	root  string
}

func newSourceSet(project *config.Project) *sourceSet {
	return &sourceSet{files: project.Files, root: project.Root}
}

// isSource reports whether path names a template source
func (s *sourceSet) isSource(path string) bool {
	return strings.HasSuffix(filepath.Base(path), s.files.Extension) && !s.excluded(path)
}

func (s *sourceSet) excluded(path string) bool {
	rel := path
	if s.root != "" {
		if r, err := filepath.Rel(s.root, path); err == nil {
			rel = filepath.ToSlash(r)
		}
	}
	for _, pattern := range s.files.Exclude {
		if ok, _ := filepath.Match(pattern, filepath.Base(path)); ok {
			return true
		}
		if ok, _ := filepath.Match(pattern, rel); ok {
			return true
		}
		if strings.HasSuffix(pattern, "/**") && strings.HasPrefix(rel, strings.TrimSuffix(pattern, "**")) {
			return true
		}
	}
	return false
}

// outputPath returns the compiled file path of a source
func (s *sourceSet) outputPath(path string) string {
	return strings.TrimSuffix(path, s.files.Extension) + s.files.Output
}

func skipDir(name string) bool {
	return name == "vendor" || name == "node_modules" || strings.HasPrefix(name, ".")
}

// walk calls fn for every source in dir, descending into subdirectories
// when recursive is set
func (s *sourceSet) walk(dir string, recursive bool, fn func(string) error) error {
	return filepath.WalkDir(dir, func(path string, de fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if de.IsDir() {
			if path != dir && (!recursive || skipDir(de.Name())) {
				return filepath.SkipDir
			}
			return nil
		}
		if s.isSource(path) {
			return fn(path)
		}
		return nil
	})
}

// target is one resolved command line pattern
type target struct {
	path      string
	recursive bool
}

// resolve turns a Go-style pattern into an absolute target. "dir/..."
// recurses, "dir" lists one directory and a file path names itself.
func resolve(cwd, pattern string) (target, error) {
	recursive := pattern == "..." || strings.HasSuffix(pattern, "/...")
	if recursive {
		pattern = strings.TrimSuffix(strings.TrimSuffix(pattern, "..."), "/")
	}
	if pattern == "" {
		pattern = "."
	}
	if !filepath.IsAbs(pattern) {
		pattern = filepath.Join(cwd, pattern)
	}
	abs, err := filepath.Abs(pattern)
	return target{path: abs, recursive: recursive}, err
}

// collect resolves patterns into sorted, deduplicated absolute source paths
func (s *sourceSet) collect(cwd string, patterns []string) ([]string, error) {
	if len(patterns) == 0 {
		patterns = []string{"./..."}
	}
	seen := map[string]bool{}
	add := func(path string) error {
		seen[path] = true
		return nil
	}
	for _, raw := range patterns {
		pattern := strings.TrimSpace(raw)
		if pattern == "" {
			continue
		}
		t, err := resolve(cwd, pattern)
		if err != nil {
			return nil, err
		}
		if !t.recursive {
			st, err := os.Stat(t.path)
			if err != nil {
				return nil, err
			}
			if !st.IsDir() {
				if !strings.HasSuffix(t.path, s.files.Extension) {
					return nil, fmt.Errorf("tagc: not a %s file: %s", s.files.Extension, t.path)
				}
				seen[t.path] = true
				continue
			}
		}
		if err := s.walk(t.path, t.recursive, add); err != nil {
			return nil, err
		}
	}
	out := make([]string, 0, len(seen))
	for path := range seen {
		out = append(out, path)
	}
	sort.Strings(out)
	return out, nil
}
