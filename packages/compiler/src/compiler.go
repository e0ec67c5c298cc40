package compiler

import (
	"log/slog"
	"time"

	"tagc-go/packages/compiler/src/config"
	"tagc-go/packages/compiler/src/core"
	"tagc-go/packages/compiler/src/ml_parser"
	"tagc-go/packages/compiler/src/output"
	"tagc-go/packages/compiler/src/render3"
)

// Compiler turns markup templates into formatted markup with render calls in
// place of matched components. A Compiler is immutable and safe for
// concurrent use; every call runs an independent pipeline.
type Compiler struct {
	config     *config.CompilerConfig
	matcher    *render3.ComponentMatcher
	parser     *ml_parser.HtmlParser
	serializer *ml_parser.Serializer
	logger     *slog.Logger
}

// CompileResult represents the result of compiling one template
type CompileResult struct {
	Output    string
	Calls     []*output.RenderCall
	Unmatched []string
	Duration  time.Duration
}

// NewCompiler creates a new compiler for the given component registry
func NewCompiler(descriptors []*core.ComponentDescriptor, opts ...config.CompilerConfigOption) (*Compiler, error) {
	matcher, err := render3.NewComponentMatcher(descriptors...)
	if err != nil {
		return nil, err
	}
	return NewCompilerWithMatcher(matcher, opts...), nil
}

// NewCompilerWithMatcher creates a new compiler sharing an existing matcher
func NewCompilerWithMatcher(matcher *render3.ComponentMatcher, opts ...config.CompilerConfigOption) *Compiler {
	cfg := config.NewCompilerConfig(opts...)
	return &Compiler{
		config:     cfg,
		matcher:    matcher,
		parser:     ml_parser.NewHtmlParser(cfg.ParseOptions()),
		serializer: ml_parser.NewSerializer(cfg.SerializerOptions()),
		logger:     cfg.Logger,
	}
}

// NewProjectCompiler creates a new compiler from a project file; opts are
// applied after the project settings
func NewProjectCompiler(project *config.Project, opts ...config.CompilerConfigOption) (*Compiler, error) {
	descriptors, err := project.Descriptors()
	if err != nil {
		return nil, err
	}
	projectOpts, err := project.Options()
	if err != nil {
		return nil, err
	}
	return NewCompiler(descriptors, append(projectOpts, opts...)...)
}

// Matcher returns the component matcher
func (c *Compiler) Matcher() *render3.ComponentMatcher {
	return c.matcher
}

// Parse parses source without transforming components
func (c *Compiler) Parse(source, url string) (*ml_parser.ParseTreeResult, error) {
	return c.parser.Parse(source, url)
}

// Compile parses source, replaces matched components by render calls and
// serializes the result
func (c *Compiler) Compile(source, url string) (*CompileResult, error) {
	start := time.Now()
	tree, err := c.parser.Parse(source, url)
	if err != nil {
		return nil, err
	}
	result, err := c.compileTree(tree)
	if err != nil {
		return nil, err
	}
	result.Duration = time.Since(start)
	c.logger.Debug("template compiled", "url", url, "calls", len(result.Calls), "duration", result.Duration)
	return result, nil
}

// CompileNodes compiles an already built fragment. The nodes are rewritten in place.
func (c *Compiler) CompileNodes(nodes []ml_parser.Node) (*CompileResult, error) {
	start := time.Now()
	result, err := c.compileTree(c.parser.ParseNodes(nodes))
	if err != nil {
		return nil, err
	}
	result.Duration = time.Since(start)
	return result, nil
}

func (c *Compiler) compileTree(tree *ml_parser.ParseTreeResult) (*CompileResult, error) {
	extractor := render3.NewArgumentExtractor(ml_parser.NewSerializer(ml_parser.SerializerOptions{Parse: c.config.ParseOptions()}))
	transformed, err := render3.TransformTemplate(tree.RootNodes, c.matcher, extractor, c.config.Printer, c.logger)
	if err != nil {
		return nil, err
	}
	out, err := c.serializer.Serialize(transformed.Nodes, tree.Protector)
	if err != nil {
		return nil, err
	}
	return &CompileResult{
		Output:    out,
		Calls:     transformed.Calls,
		Unmatched: transformed.Unmatched,
	}, nil
}

// Format parses and re-serializes source without the component transform
func (c *Compiler) Format(source, url string) (string, error) {
	tree, err := c.parser.Parse(source, url)
	if err != nil {
		return "", err
	}
	return c.serializer.Serialize(tree.RootNodes, tree.Protector)
}

// FormatTokens formats source from its flat token stream, without building a tree
func (c *Compiler) FormatTokens(source, url string) (string, error) {
	tokens, err := ml_parser.Tokenize(source, url)
	if err != nil {
		return "", err
	}
	return c.serializer.FormatTokens(tokens.Tokens, tokens.Protector)
}
