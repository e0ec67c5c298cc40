package main

import (
	"errors"
	"fmt"
	"os"
	"runtime"
	"sync"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	compiler "tagc-go/packages/compiler/src"
)

type compileOptions struct {
	stdout      bool
	jobs        int
	metricsFile string
}

func newCompileCmd(a *app) *cobra.Command {
	opts := &compileOptions{}
	cmd := &cobra.Command{
		Use:   "compile [paths...]",
		Short: "Compile templates into render-call templates",
		Long: `Compile every template source selected by the given paths and write the
result next to it. Paths behave like Go patterns:
  ./...        recurse from the current directory
  ./dir        only that directory
  ./dir/...    recurse from that directory
  ./file       only that file`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runCompile(args, opts)
		},
	}
	cmd.Flags().BoolVar(&opts.stdout, "stdout", false, "print results instead of writing files")
	cmd.Flags().IntVarP(&opts.jobs, "jobs", "j", runtime.NumCPU(), "number of templates compiled concurrently")
	cmd.Flags().StringVar(&opts.metricsFile, "metrics-file", "", "write Prometheus textfile metrics to this path")
	return cmd
}

func (a *app) runCompile(args []string, opts *compileOptions) error {
	cwd, err := os.Getwd()
	if err != nil {
		return err
	}
	sources := newSourceSet(a.project)
	paths, err := sources.collect(cwd, args)
	if err != nil {
		return err
	}
	c, err := a.newCompiler()
	if err != nil {
		return err
	}

	metrics := newCompileMetrics()
	outputs := make([]string, len(paths))
	var (
		mu     sync.Mutex
		allErr error
	)

	g := new(errgroup.Group)
	if opts.jobs > 0 {
		g.SetLimit(opts.jobs)
	}
	for i, path := range paths {
		i, path := i, path
		g.Go(func() error {
			out, err := compileFile(c, path, metrics)
			if err != nil {
				mu.Lock()
				allErr = errors.Join(allErr, err)
				mu.Unlock()
				return nil
			}
			if opts.stdout {
				outputs[i] = out
				return nil
			}
			if err := os.WriteFile(sources.outputPath(path), []byte(out+"\n"), 0o644); err != nil {
				mu.Lock()
				allErr = errors.Join(allErr, err)
				mu.Unlock()
			}
			return nil
		})
	}
	_ = g.Wait()

	if opts.stdout {
		for _, out := range outputs {
			if out != "" {
				_, _ = fmt.Fprintln(a.stdout, out)
			}
		}
	}
	if opts.metricsFile != "" {
		if err := metrics.writeTextfile(opts.metricsFile); err != nil {
			allErr = errors.Join(allErr, fmt.Errorf("failed to write metrics: %w", err))
		}
	}
	a.logger.Info("compile finished", "templates", len(paths), "failed", allErr != nil)
	return allErr
}

func compileFile(c *compiler.Compiler, path string, metrics *compileMetrics) (string, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		metrics.fail(err)
		return "", err
	}
	result, err := c.Compile(string(b), path)
	if err != nil {
		metrics.fail(err)
		return "", fmt.Errorf("%s: %w", path, err)
	}
	metrics.observe(result)
	return result.Output, nil
}
