package render3

import (
	"fmt"
	"strconv"

	"tagc-go/packages/compiler/src/core"
	"tagc-go/packages/compiler/src/ml_parser"
	"tagc-go/packages/compiler/src/output"
	"tagc-go/packages/compiler/src/util"
)

// ArgumentExtractor builds the render call of a matched element from its
// positional tag segments, attributes and children
type ArgumentExtractor struct {
	serializer *ml_parser.Serializer
}

// NewArgumentExtractor creates a new ArgumentExtractor. serializer renders
// children of components that take raw content.
func NewArgumentExtractor(serializer *ml_parser.Serializer) *ArgumentExtractor {
	if serializer == nil {
		serializer = ml_parser.NewSerializer(ml_parser.SerializerOptions{})
	}
	return &ArgumentExtractor{serializer: serializer}
}

// argumentSet collects arguments by name, keeping first-seen order
type argumentSet struct {
	byName map[string]output.Argument
	order  []string
}

func newArgumentSet() *argumentSet {
	return &argumentSet{byName: make(map[string]output.Argument)}
}

func (s *argumentSet) has(name string) bool {
	_, ok := s.byName[name]
	return ok
}

func (s *argumentSet) add(arg output.Argument) {
	if !s.has(arg.Name) {
		s.order = append(s.order, arg.Name)
	}
	s.byName[arg.Name] = arg
}

// Extract returns the render call for element matched by desc
func (x *ArgumentExtractor) Extract(element *ml_parser.Element, desc *core.ComponentDescriptor) (*output.RenderCall, error) {
	span := element.SourceSpan()
	args := newArgumentSet()
	declared := len(desc.Parameters) > 0

	segments := positionalSegments(element.Segments())
	if len(segments) > len(desc.PositionalBindings) {
		return nil, util.NewParseError(util.ErrorKindArgumentArity, span, element.Name,
			fmt.Sprintf("Tag %q has %d positional segments, component %q declares %d bindings",
				element.Name, len(segments), desc.Name, len(desc.PositionalBindings)))
	}
	for i, raw := range segments {
		binding := desc.PositionalBindings[i]
		if raw == "" {
			return nil, util.NewParseError(util.ErrorKindPropertyPromotion, span, element.Name,
				fmt.Sprintf("Tag %q has an empty positional segment %d", element.Name, i+1))
		}
		value := promoteSegment(raw)
		if declared {
			param, ok := desc.Parameter(binding)
			if !ok {
				return nil, util.NewParseError(util.ErrorKindPropertyPromotion, span, element.Name,
					fmt.Sprintf("Component %q has no parameter %q for segment %d", desc.Name, binding, i+1))
			}
			coerced, ok := coerceParam(param, value)
			if !ok {
				return nil, util.NewParseError(util.ErrorKindPropertyPromotion, span, element.Name,
					fmt.Sprintf("Parameter %q of component %q rejects %s value %q", binding, desc.Name, typeName(value), raw))
			}
			value = coerced
		}
		args.add(output.Argument{Name: binding, Value: value, Origin: output.OriginPositional})
	}

	for _, name := range element.Attrs.Names() {
		argName := util.DashCaseToCamelCase(name)
		value := attributeValue(element.Attrs, name)
		if declared {
			param, ok := desc.Parameter(argName)
			if !ok {
				continue
			}
			if args.has(argName) {
				return nil, util.NewParseError(util.ErrorKindPropertyPromotion, span, element.Name,
					fmt.Sprintf("Parameter %q of component %q is given both positionally and as attribute %q", argName, desc.Name, name))
			}
			coerced, ok := coerceParam(param, value)
			if !ok {
				return nil, util.NewParseError(util.ErrorKindAttributeType, span, element.Name,
					fmt.Sprintf("Attribute %q cannot be passed to %s parameter %q", name, param.Type, argName))
			}
			value = coerced
		} else if args.has(argName) {
			continue
		}
		args.add(output.Argument{Name: argName, Value: value, Origin: output.OriginExplicit})
	}

	contentName := desc.ContentParamName()
	if len(element.Children) > 0 && !args.has(contentName) {
		var content interface{}
		switch {
		case desc.Content == core.ContentStructured, containsCall(element.Children):
			content = output.NewNodeSlot(element.Children)
		default:
			markup, err := x.serializer.Serialize(element.Children, nil)
			if err != nil {
				return nil, err
			}
			content = markup
		}
		args.add(output.Argument{Name: contentName, Value: content, Origin: output.OriginExplicit})
	}

	for _, param := range desc.Parameters {
		if args.has(param.Name) {
			continue
		}
		if param.HasDefault() {
			args.add(output.Argument{Name: param.Name, Value: param.Default, Origin: output.OriginDefaulted})
			continue
		}
		if param.Required {
			return nil, util.NewParseError(util.ErrorKindMissingArgument, span, element.Name,
				fmt.Sprintf("Component %q requires argument %q", desc.Name, param.Name))
		}
	}

	subtype := ""
	if len(segments) > 0 {
		subtype = segments[0]
	}
	return output.NewRenderCall(desc.Name, desc.HandlerFor(subtype), orderArguments(desc, args, contentName, element.Attrs.Clone()),
		desc.EffectiveCacheHint(), span), nil
}

// orderArguments lays arguments out as declared parameters, then undeclared
// ones in source order, then content, then the full attribute set
func orderArguments(desc *core.ComponentDescriptor, args *argumentSet, contentName string, attrs *ml_parser.AttributeSet) []output.Argument {
	ordered := make([]output.Argument, 0, len(args.order)+1)
	placed := make(map[string]bool, len(args.order))
	for _, param := range desc.Parameters {
		if arg, ok := args.byName[param.Name]; ok {
			ordered = append(ordered, arg)
			placed[param.Name] = true
		}
	}
	for _, name := range args.order {
		if !placed[name] && name != contentName {
			ordered = append(ordered, args.byName[name])
			placed[name] = true
		}
	}
	if arg, ok := args.byName[contentName]; ok && !placed[contentName] {
		ordered = append(ordered, arg)
	}
	return append(ordered, output.Argument{Name: core.AttributesParam, Value: attrs, Origin: output.OriginExplicit})
}

// containsCall reports whether nodes hold an already compiled component, which
// raw markup would flatten into text
func containsCall(nodes []ml_parser.Node) bool {
	for _, node := range nodes {
		switch n := node.(type) {
		case *ml_parser.Placeholder:
			if n.Call != nil {
				return true
			}
		case *ml_parser.Element:
			if containsCall(n.Children) {
				return true
			}
		}
	}
	return false
}

// positionalSegments returns the segments after the base tag, ignoring one
// trailing empty segment left by a pattern-style tag such as "card:"
func positionalSegments(segments []string) []string {
	rest := segments[1:]
	if n := len(rest); n > 0 && rest[n-1] == "" {
		rest = rest[:n-1]
	}
	return rest
}

// promoteSegment turns a fully numeric segment into an int
func promoteSegment(raw string) interface{} {
	if util.IsNumeric(raw) {
		if n, err := strconv.Atoi(raw); err == nil {
			return n
		}
	}
	return raw
}

func attributeValue(attrs *ml_parser.AttributeSet, name string) interface{} {
	if v, ok := attrs.Value(name); ok {
		if b, isBool := v.(bool); isBool {
			return b
		}
	}
	s, _ := attrs.Get(name)
	return s
}

// coerceParam converts value to the declared type of param. Ints widen to
// strings; strings holding ints or booleans narrow to them.
func coerceParam(param core.Parameter, value interface{}) (interface{}, bool) {
	switch param.Type {
	case core.ParamTypeString:
		switch v := value.(type) {
		case string:
			return v, true
		case int:
			return strconv.Itoa(v), true
		}
	case core.ParamTypeInt:
		switch v := value.(type) {
		case int:
			return v, true
		case string:
			if n, err := strconv.Atoi(v); err == nil {
				return n, true
			}
		}
	case core.ParamTypeBool:
		switch v := value.(type) {
		case bool:
			return v, true
		case string:
			if b, err := strconv.ParseBool(v); err == nil {
				return b, true
			}
		}
	default:
		return value, true
	}
	return nil, false
}

func typeName(value interface{}) string {
	switch value.(type) {
	case int:
		return "int"
	case bool:
		return "bool"
	default:
		return "string"
	}
}
