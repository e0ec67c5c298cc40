package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"tagc-go/packages/compiler/src/core"
	"tagc-go/packages/compiler/src/output"
)

// ProjectFileName is the name of the project file looked up by FindProject
const ProjectFileName = "tagc.yaml"

// Default file name suffixes
const (
	DefaultSourceExtension = ".tagc.html"
	DefaultOutputExtension = ".tmpl"
)

// Project is the content of a tagc.yaml file
type Project struct {
	Compiler   CompilerOptions   `yaml:"compiler"`
	Files      FileOptions       `yaml:"files"`
	Components []ComponentRecord `yaml:"components"`

	// Root is the directory holding the project file
	Root string `yaml:"-"`
}

// CompilerOptions are the compiler settings of a project
type CompilerOptions struct {
	Strict      bool     `yaml:"strict"`
	Printer     string   `yaml:"printer"`
	ForceInline []string `yaml:"forceInline"`
	ForceBlock  []string `yaml:"forceBlock"`
}

// FileOptions select the sources of a project
type FileOptions struct {
	Extension string   `yaml:"extension"`
	Output    string   `yaml:"output"`
	Exclude   []string `yaml:"exclude"`
}

// ComponentRecord is one registry entry of a project
type ComponentRecord struct {
	Name         string            `yaml:"name"`
	Handler      string            `yaml:"handler"`
	Tags         []string          `yaml:"tags"`
	Bindings     []string          `yaml:"bindings"`
	Params       []ParamRecord     `yaml:"params"`
	Subtypes     map[string]string `yaml:"subtypes"`
	Static       bool              `yaml:"static"`
	Priority     int               `yaml:"priority"`
	Content      string            `yaml:"content"`
	ContentParam string            `yaml:"contentParam"`
	Cache        string            `yaml:"cache"`
	Inline       bool              `yaml:"inline"`
}

// ParamRecord declares one component parameter
type ParamRecord struct {
	Name     string      `yaml:"name"`
	Type     string      `yaml:"type"`
	Default  interface{} `yaml:"default"`
	Required bool        `yaml:"required"`
}

// DefaultProject returns the project used when no project file exists
func DefaultProject() *Project {
	return &Project{
		Compiler: CompilerOptions{Printer: output.TemplatePrinterName},
		Files: FileOptions{
			Extension: DefaultSourceExtension,
			Output:    DefaultOutputExtension,
		},
	}
}

// LoadProject reads and validates a project file. Unknown keys are rejected.
func LoadProject(path string) (*Project, error) {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve path: %w", err)
	}

	data, err := os.ReadFile(absPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read project file: %w", err)
	}

	project := DefaultProject()
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(project); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("failed to parse project file %s: %w", absPath, err)
	}
	project.Root = filepath.Dir(absPath)
	if project.Files.Extension == "" {
		project.Files.Extension = DefaultSourceExtension
	}
	if project.Files.Output == "" {
		project.Files.Output = DefaultOutputExtension
	}
	if _, err := project.Descriptors(); err != nil {
		return nil, fmt.Errorf("invalid project file %s: %w", absPath, err)
	}
	return project, nil
}

// FindProject returns the path of the nearest project file at or above dir
func FindProject(dir string) (string, bool) {
	absDir, err := filepath.Abs(dir)
	if err != nil {
		return "", false
	}
	for {
		candidate := filepath.Join(absDir, ProjectFileName)
		if info, err := os.Stat(candidate); err == nil && !info.IsDir() {
			return candidate, true
		}
		parent := filepath.Dir(absDir)
		if parent == absDir {
			return "", false
		}
		absDir = parent
	}
}

// Descriptors converts the component records into descriptors
func (p *Project) Descriptors() ([]*core.ComponentDescriptor, error) {
	descriptors := make([]*core.ComponentDescriptor, 0, len(p.Components))
	for i, rec := range p.Components {
		desc, err := rec.Descriptor()
		if err != nil {
			return nil, fmt.Errorf("component #%d (%q): %w", i+1, rec.Name, err)
		}
		descriptors = append(descriptors, desc)
	}
	return descriptors, nil
}

// Options returns the compiler options set by the project
func (p *Project) Options() ([]CompilerConfigOption, error) {
	printer, err := output.PrinterByName(p.Compiler.Printer)
	if err != nil {
		return nil, err
	}
	return []CompilerConfigOption{
		WithStrict(p.Compiler.Strict),
		WithPrinter(printer),
		WithForceInline(p.Compiler.ForceInline...),
		WithForceBlock(p.Compiler.ForceBlock...),
	}, nil
}

// Descriptor converts the record into a validated descriptor
func (r ComponentRecord) Descriptor() (*core.ComponentDescriptor, error) {
	content, err := core.ParseContentMode(r.Content)
	if err != nil {
		return nil, err
	}
	cache, err := core.ParseCacheHint(r.Cache)
	if err != nil {
		return nil, err
	}
	desc := &core.ComponentDescriptor{
		Name:               r.Name,
		Handler:            r.Handler,
		TagPatterns:        r.Tags,
		PositionalBindings: r.Bindings,
		Subtypes:           r.Subtypes,
		IsStatic:           r.Static,
		Priority:           r.Priority,
		Content:            content,
		ContentParam:       r.ContentParam,
		CacheHint:          cache,
		Inline:             r.Inline,
	}
	if len(desc.TagPatterns) == 0 && r.Name != "" {
		desc.TagPatterns = []string{r.Name + ":", r.Name}
	}
	for _, pr := range r.Params {
		param, err := pr.Parameter()
		if err != nil {
			return nil, err
		}
		desc.Parameters = append(desc.Parameters, param)
	}
	if err := desc.Validate(); err != nil {
		return nil, err
	}
	return desc, nil
}

// Parameter converts the record into a parameter
func (r ParamRecord) Parameter() (core.Parameter, error) {
	typ, err := core.ParseParamType(r.Type)
	if err != nil {
		return core.Parameter{}, fmt.Errorf("parameter %q: %w", r.Name, err)
	}
	if r.Default != nil && !defaultMatches(typ, r.Default) {
		return core.Parameter{}, fmt.Errorf("parameter %q: default %v is not of type %s", r.Name, r.Default, typ)
	}
	return core.Parameter{
		Name:     r.Name,
		Type:     typ,
		Default:  r.Default,
		Required: r.Required,
	}, nil
}

func defaultMatches(typ core.ParamType, value interface{}) bool {
	switch typ {
	case core.ParamTypeString:
		_, ok := value.(string)
		return ok
	case core.ParamTypeInt:
		_, ok := value.(int)
		return ok
	case core.ParamTypeBool:
		_, ok := value.(bool)
		return ok
	}
	switch v := value.(type) {
	case string, int, bool:
		return true
	case []interface{}:
		for _, item := range v {
			if !defaultMatches(typ, item) {
				return false
			}
		}
		return true
	}
	return false
}
