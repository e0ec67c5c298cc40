package config

import (
	"io"
	"log/slog"
	"strings"

	"tagc-go/packages/compiler/src/ml_parser"
	"tagc-go/packages/compiler/src/output"
)

// CompilerConfig represents the compiler configuration
type CompilerConfig struct {
	Strict      bool
	Printer     output.Printer
	ForceInline []string
	ForceBlock  []string
	Logger      *slog.Logger
}

// NewCompilerConfig creates a new CompilerConfig with optional parameters
func NewCompilerConfig(opts ...CompilerConfigOption) *CompilerConfig {
	config := &CompilerConfig{
		Strict:  false,
		Printer: output.NewTemplatePrinter(),
		Logger:  slog.New(slog.NewTextHandler(io.Discard, nil)),
	}

	for _, opt := range opts {
		opt(config)
	}

	return config
}

// CompilerConfigOption is a function that modifies CompilerConfig
type CompilerConfigOption func(*CompilerConfig)

// WithStrict sets whether document sections must appear in order
func WithStrict(strict bool) CompilerConfigOption {
	return func(c *CompilerConfig) {
		c.Strict = strict
	}
}

// WithPrinter sets the render call printer
func WithPrinter(printer output.Printer) CompilerConfigOption {
	return func(c *CompilerConfig) {
		if printer != nil {
			c.Printer = printer
		}
	}
}

// WithForceInline lays the given tags out as inline elements
func WithForceInline(tags ...string) CompilerConfigOption {
	return func(c *CompilerConfig) {
		c.ForceInline = append(c.ForceInline, tags...)
	}
}

// WithForceBlock lays the given inline tags out as block elements
func WithForceBlock(tags ...string) CompilerConfigOption {
	return func(c *CompilerConfig) {
		c.ForceBlock = append(c.ForceBlock, tags...)
	}
}

// WithLogger sets the logger
func WithLogger(logger *slog.Logger) CompilerConfigOption {
	return func(c *CompilerConfig) {
		if logger != nil {
			c.Logger = logger
		}
	}
}

// ParseOptions returns the parser options implied by the config
func (c *CompilerConfig) ParseOptions() *ml_parser.ParseOptions {
	return &ml_parser.ParseOptions{
		ForceInline: tagSet(c.ForceInline),
		ForceBlock:  tagSet(c.ForceBlock),
	}
}

// SerializerOptions returns the serializer options implied by the config
func (c *CompilerConfig) SerializerOptions() ml_parser.SerializerOptions {
	return ml_parser.SerializerOptions{
		Strict: c.Strict,
		Parse:  c.ParseOptions(),
	}
}

func tagSet(tags []string) map[string]bool {
	if len(tags) == 0 {
		return nil
	}
	set := make(map[string]bool, len(tags))
	for _, t := range tags {
		set[strings.ToLower(t)] = true
	}
	return set
}
