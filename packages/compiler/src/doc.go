// Package compiler provides the tagc compiler APIs for formatting markup
// templates and compiling their component tags into render calls.
//
// A source goes through four stages:
//
//   - ml_parser: literal blocks (script, style, comments) are protected, the
//     markup is parsed into a node tree and serialized back as tab-indented
//     markup
//   - render3: custom tags such as <card:info:2> are matched against the
//     component registry and replaced by placeholders holding a render call
//   - output: render calls are printed as text/template actions or JSON
//   - config: compiler options and the tagc.yaml project file
//
// Format re-indents a template without touching its components; Compile
// runs the whole pipeline:
//
//	c, err := compiler.NewCompiler(descriptors)
//	if err != nil {
//		return err
//	}
//	result, err := c.Compile(source, "home.tagc.html")
//
// A Compiler is immutable and may be shared between goroutines.
package compiler
