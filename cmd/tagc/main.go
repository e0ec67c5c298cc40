package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	compiler "tagc-go/packages/compiler/src"
	"tagc-go/packages/compiler/src/config"
)

// app holds the state shared by all subcommands
type app struct {
	stdout io.Writer
	stderr io.Writer

	configPath string
	logLevel   string
	logFormat  string

	logger  *slog.Logger
	project *config.Project
}

func main() {
	a := &app{stdout: os.Stdout, stderr: os.Stderr}
	if err := newRootCmd(a).Execute(); err != nil {
		fatal(err)
	}
}

func fatal(err error) {
	_, _ = fmt.Fprintln(os.Stderr, err)
	os.Exit(1)
}

func newRootCmd(a *app) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "tagc",
		Short: "Compile component markup templates into render calls",
		Long: `tagc formats markup templates and replaces custom component elements
with render calls resolved from the component registry of tagc.yaml.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.setup()
		},
	}
	rootCmd.SetOut(a.stdout)
	rootCmd.SetErr(a.stderr)

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&a.configPath, "config", "", "project file (defaults to the nearest "+config.ProjectFileName+")")
	flags.StringVar(&a.logLevel, "log-level", "warn", "log level (debug, info, warn, error)")
	flags.StringVar(&a.logFormat, "log-format", "text", "log format (text, json)")

	rootCmd.AddCommand(
		newCompileCmd(a),
		newFormatCmd(a),
		newWatchCmd(a),
		newComponentsCmd(a),
	)
	return rootCmd
}

// setup builds the logger and resolves the project file
func (a *app) setup() error {
	logger, err := newLogger(a.stderr, a.logLevel, a.logFormat)
	if err != nil {
		return err
	}
	a.logger = logger

	path := a.configPath
	if path == "" {
		cwd, err := os.Getwd()
		if err != nil {
			return err
		}
		found, ok := config.FindProject(cwd)
		if !ok {
			a.project = config.DefaultProject()
			a.project.Root = cwd
			a.logger.Debug("no project file found, using defaults", "dir", cwd)
			return nil
		}
		path = found
	}
	project, err := config.LoadProject(path)
	if err != nil {
		return err
	}
	a.project = project
	a.logger.Debug("project loaded", "path", path, "components", len(project.Components))
	return nil
}

func (a *app) newCompiler() (*compiler.Compiler, error) {
	return compiler.NewProjectCompiler(a.project, config.WithLogger(a.logger))
}
