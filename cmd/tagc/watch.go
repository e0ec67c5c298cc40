package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"os/signal"
	"path/filepath"
	"sort"
	"syscall"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"

	compiler "tagc-go/packages/compiler/src"
)

func newWatchCmd(a *app) *cobra.Command {
	var debounce time.Duration
	cmd := &cobra.Command{
		Use:   "watch [dir]",
		Short: "Recompile templates whenever they change",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := "."
			if len(args) == 1 {
				dir = args[0]
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return a.runWatch(ctx, dir, debounce)
		},
	}
	cmd.Flags().DurationVar(&debounce, "debounce", 100*time.Millisecond, "quiet period before recompiling")
	return cmd
}

func (a *app) runWatch(ctx context.Context, dir string, debounce time.Duration) error {
	root, err := filepath.Abs(dir)
	if err != nil {
		return err
	}
	c, err := a.newCompiler()
	if err != nil {
		return err
	}
	w, err := newWatcher(a, c, debounce)
	if err != nil {
		return err
	}
	defer w.close()

	if err := w.addRecursive(root); err != nil {
		return err
	}
	if err := w.sources.walk(root, true, func(path string) error {
		w.pending[path] = true
		return nil
	}); err != nil {
		return err
	}
	_ = w.flush()

	a.logger.Info("watching templates", "dir", root)
	return w.run(ctx)
}

// watcher recompiles changed sources after a quiet period
type watcher struct {
	app      *app
	compiler *compiler.Compiler
	sources  *sourceSet
	metrics  *compileMetrics
	debounce time.Duration
	fsw      *fsnotify.Watcher
	pending  map[string]bool
}

func newWatcher(a *app, c *compiler.Compiler, debounce time.Duration) (*watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create watcher: %w", err)
	}
	return &watcher{
		app:      a,
		compiler: c,
		sources:  newSourceSet(a.project),
		metrics:  newCompileMetrics(),
		debounce: debounce,
		fsw:      fsw,
		pending:  make(map[string]bool),
	}, nil
}

func (w *watcher) close() {
	_ = w.fsw.Close()
}

// addRecursive adds a directory and all subdirectories to the watch list
func (w *watcher) addRecursive(root string) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if !d.IsDir() {
			return nil
		}
		if path != root && skipDir(d.Name()) {
			return filepath.SkipDir
		}
		return w.fsw.Add(path)
	})
}

// handleEvent records a change and reports whether a recompilation is due
func (w *watcher) handleEvent(event fsnotify.Event) bool {
	if event.Has(fsnotify.Create) {
		if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
			if skipDir(filepath.Base(event.Name)) {
				return false
			}
			if err := w.addRecursive(event.Name); err != nil {
				w.app.logger.Warn("failed to watch directory", "dir", event.Name, "error", err)
			}
			scheduled := false
			_ = w.sources.walk(event.Name, true, func(path string) error {
				w.pending[path] = true
				scheduled = true
				return nil
			})
			return scheduled
		}
	}
	if !w.sources.isSource(event.Name) {
		return false
	}
	if event.Has(fsnotify.Create) || event.Has(fsnotify.Write) || event.Has(fsnotify.Remove) || event.Has(fsnotify.Rename) {
		w.pending[event.Name] = true
		return true
	}
	return false
}

// flush compiles every pending source. Removed sources lose their output.
func (w *watcher) flush() error {
	paths := make([]string, 0, len(w.pending))
	for path := range w.pending {
		paths = append(paths, path)
	}
	sort.Strings(paths)
	w.pending = make(map[string]bool)

	var allErr error
	for _, path := range paths {
		outPath := w.sources.outputPath(path)
		out, err := compileFile(w.compiler, path, w.metrics)
		if errors.Is(err, fs.ErrNotExist) {
			if err := os.Remove(outPath); err != nil && !errors.Is(err, fs.ErrNotExist) {
				allErr = errors.Join(allErr, err)
			}
			w.app.logger.Info("template removed", "path", path)
			continue
		}
		if err != nil {
			w.app.logger.Error("compile failed", "path", path, "error", err)
			allErr = errors.Join(allErr, err)
			continue
		}
		if err := os.WriteFile(outPath, []byte(out+"\n"), 0o644); err != nil {
			allErr = errors.Join(allErr, err)
			continue
		}
		w.app.logger.Info("template compiled", "path", path, "output", outPath)
	}
	return allErr
}

func (w *watcher) run(ctx context.Context) error {
	var timer *time.Timer
	var timerC <-chan time.Time
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-w.fsw.Events:
			if !ok {
				return nil
			}
			if !w.handleEvent(event) {
				continue
			}
			if timer == nil {
				timer = time.NewTimer(w.debounce)
				timerC = timer.C
			} else {
				timer.Reset(w.debounce)
			}
		case <-timerC:
			timer = nil
			timerC = nil
			_ = w.flush()
		case err, ok := <-w.fsw.Errors:
			if !ok {
				return nil
			}
			w.app.logger.Warn("watch error", "error", err)
		}
	}
}
