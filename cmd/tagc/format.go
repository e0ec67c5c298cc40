package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	compiler "tagc-go/packages/compiler/src"
)

type formatOptions struct {
	write  bool
	check  bool
	tokens bool
}

// errUnformatted is returned by fmt --check when some file would change
var errUnformatted = errors.New("files are not formatted")

func newFormatCmd(a *app) *cobra.Command {
	opts := &formatOptions{}
	cmd := &cobra.Command{
		Use:   "fmt [paths...]",
		Short: "Format templates without compiling components",
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runFormat(args, opts)
		},
	}
	cmd.Flags().BoolVarP(&opts.write, "write", "w", false, "write results to the source files")
	cmd.Flags().BoolVar(&opts.check, "check", false, "list files whose formatting differs and fail")
	cmd.Flags().BoolVar(&opts.tokens, "tokens", false, "format from the flat token stream instead of the tree")
	return cmd
}

func (a *app) runFormat(args []string, opts *formatOptions) error {
	if opts.write && opts.check {
		return fmt.Errorf("tagc: cannot use -w with --check")
	}
	cwd, err := os.Getwd()
	if err != nil {
		return err
	}
	paths, err := newSourceSet(a.project).collect(cwd, args)
	if err != nil {
		return err
	}
	c, err := a.newCompiler()
	if err != nil {
		return err
	}

	var allErr error
	unformatted := 0
	for _, path := range paths {
		b, err := os.ReadFile(path)
		if err != nil {
			allErr = errors.Join(allErr, err)
			continue
		}
		out, err := formatSource(c, string(b), path, opts.tokens)
		if err != nil {
			allErr = errors.Join(allErr, fmt.Errorf("%s: %w", path, err))
			continue
		}
		formatted := out + "\n"
		switch {
		case opts.check:
			if formatted != string(b) {
				unformatted++
				_, _ = fmt.Fprintln(a.stdout, path)
			}
		case opts.write:
			if formatted == string(b) {
				continue
			}
			if err := os.WriteFile(path, []byte(formatted), 0o644); err != nil {
				allErr = errors.Join(allErr, err)
			}
		default:
			_, _ = fmt.Fprint(a.stdout, formatted)
		}
	}
	if unformatted > 0 {
		allErr = errors.Join(allErr, fmt.Errorf("%w: %d of %d", errUnformatted, unformatted, len(paths)))
	}
	return allErr
}

func formatSource(c *compiler.Compiler, source, path string, tokens bool) (string, error) {
	if tokens {
		return c.FormatTokens(source, path)
	}
	return c.Format(source, path)
}
