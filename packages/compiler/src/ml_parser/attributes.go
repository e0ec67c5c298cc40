package ml_parser

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"tagc-go/packages/compiler/src/util"
)

// AttributeOrder controls where Add places new class tokens and style declarations
type AttributeOrder int

const (
	OrderNone AttributeOrder = iota
	OrderAppend
	OrderPrepend
)

const (
	classAttr = "class"
	styleAttr = "style"
)

var attrNameRe = regexp.MustCompile(`[^a-z0-9-]+`)

// NormalizeAttributeName lowercases name, collapses runs outside [a-z0-9-]
// to '-' and trims leading and trailing '-'
func NormalizeAttributeName(name string) string {
	name = attrNameRe.ReplaceAllString(strings.ToLower(name), "-")
	return strings.Trim(name, "-")
}

// Attribute is a name/value pair handed to Assign
type Attribute struct {
	Name  string
	Value interface{}
}

// StyleDeclaration is one property of a style attribute
type StyleDeclaration struct {
	Property string
	Value    string
}

type attrKind int

const (
	attrScalar attrKind = iota
	attrBool
	attrClass
	attrStyle
)

type attrValue struct {
	kind   attrKind
	scalar string
	flag   bool
	tokens []string
	decls  []StyleDeclaration
}

func (v *attrValue) clone() *attrValue {
	cp := *v
	cp.tokens = append([]string(nil), v.tokens...)
	cp.decls = append([]StyleDeclaration(nil), v.decls...)
	return &cp
}

func (v *attrValue) String() string {
	switch v.kind {
	case attrBool:
		return strconv.FormatBool(v.flag)
	case attrClass:
		return strings.Join(v.tokens, " ")
	case attrStyle:
		parts := make([]string, len(v.decls))
		for i, d := range v.decls {
			parts[i] = d.Property + ":" + d.Value
		}
		return strings.Join(parts, "; ")
	default:
		return v.scalar
	}
}

// AttributeSet is an ordered attribute map with multi-value class and style fields
type AttributeSet struct {
	names  []string
	values map[string]*attrValue
}

// NewAttributeSet creates a new AttributeSet holding attrs
func NewAttributeSet(attrs ...Attribute) (*AttributeSet, error) {
	set := &AttributeSet{values: map[string]*attrValue{}}
	if err := set.Assign(attrs...); err != nil {
		return nil, err
	}
	return set, nil
}

// Assign replaces the whole set
func (s *AttributeSet) Assign(attrs ...Attribute) error {
	next := &AttributeSet{values: map[string]*attrValue{}}
	for _, a := range attrs {
		if err := next.Set(a.Name, a.Value); err != nil {
			return err
		}
	}
	s.names, s.values = next.names, next.values
	return nil
}

// Set replaces the value of name wholesale, keeping its position
func (s *AttributeSet) Set(name string, value interface{}) error {
	key := NormalizeAttributeName(name)
	if key == "" {
		return nil
	}
	v, err := toAttrValue(key, value)
	if err != nil {
		return err
	}
	s.put(key, v)
	return nil
}

// Add merges value into name. For class and style, order decides where new
// tokens or declarations go; existing ones stay in place. Other keys are
// overwritten in place.
func (s *AttributeSet) Add(name string, value interface{}, order AttributeOrder) error {
	key := NormalizeAttributeName(name)
	if key == "" {
		return nil
	}
	v, err := toAttrValue(key, value)
	if err != nil {
		return err
	}
	existing, ok := s.values[key]
	if !ok {
		if (v.kind == attrClass && len(v.tokens) == 0) || (v.kind == attrStyle && len(v.decls) == 0) {
			return nil
		}
		s.put(key, v)
		return nil
	}
	switch v.kind {
	case attrClass:
		existing.tokens = mergeTokens(existing.tokens, v.tokens, order)
	case attrStyle:
		existing.decls = mergeDeclarations(existing.decls, v.decls, order)
	default:
		s.values[key] = v
	}
	return nil
}

func (s *AttributeSet) put(key string, v *attrValue) {
	if s.values == nil {
		s.values = map[string]*attrValue{}
	}
	if _, ok := s.values[key]; !ok {
		s.names = append(s.names, key)
	}
	s.values[key] = v
}

// Remove deletes name from the set
func (s *AttributeSet) Remove(name string) bool {
	key := NormalizeAttributeName(name)
	if _, ok := s.values[key]; !ok {
		return false
	}
	delete(s.values, key)
	for i, n := range s.names {
		if n == key {
			s.names = append(s.names[:i], s.names[i+1:]...)
			break
		}
	}
	return true
}

// Has reports whether name is set
func (s *AttributeSet) Has(name string) bool {
	if s == nil {
		return false
	}
	_, ok := s.values[NormalizeAttributeName(name)]
	return ok
}

// Get returns the string form of name
func (s *AttributeSet) Get(name string) (string, bool) {
	if s == nil {
		return "", false
	}
	v, ok := s.values[NormalizeAttributeName(name)]
	if !ok {
		return "", false
	}
	return v.String(), true
}

// Value returns name as string, bool, []string (class) or []StyleDeclaration (style)
func (s *AttributeSet) Value(name string) (interface{}, bool) {
	if s == nil {
		return nil, false
	}
	v, ok := s.values[NormalizeAttributeName(name)]
	if !ok {
		return nil, false
	}
	switch v.kind {
	case attrBool:
		return v.flag, true
	case attrClass:
		return append([]string(nil), v.tokens...), true
	case attrStyle:
		return append([]StyleDeclaration(nil), v.decls...), true
	default:
		return v.scalar, true
	}
}

// Classes returns the class tokens in order
func (s *AttributeSet) Classes() []string {
	if v, ok := s.Value(classAttr); ok {
		return v.([]string)
	}
	return nil
}

// Styles returns the style declarations in order
func (s *AttributeSet) Styles() []StyleDeclaration {
	if v, ok := s.Value(styleAttr); ok {
		return v.([]StyleDeclaration)
	}
	return nil
}

// Clear removes every attribute
func (s *AttributeSet) Clear() {
	s.names = nil
	s.values = map[string]*attrValue{}
}

// Names returns the attribute names in order
func (s *AttributeSet) Names() []string {
	if s == nil {
		return nil
	}
	return append([]string(nil), s.names...)
}

// Len returns the number of attributes
func (s *AttributeSet) Len() int {
	if s == nil {
		return 0
	}
	return len(s.names)
}

// Clone returns a deep copy of the set
func (s *AttributeSet) Clone() *AttributeSet {
	cp := &AttributeSet{values: map[string]*attrValue{}}
	if s == nil {
		return cp
	}
	cp.names = append(cp.names, s.names...)
	for k, v := range s.values {
		cp.values[k] = v.clone()
	}
	return cp
}

// String renders the set as it appears inside a start tag, with a leading space
func (s *AttributeSet) String() string {
	if s == nil {
		return ""
	}
	var b strings.Builder
	for _, name := range s.names {
		v := s.values[name]
		switch {
		case v.kind == attrBool:
			if v.flag {
				b.WriteString(" " + name)
			}
		case v.kind == attrClass && len(v.tokens) == 0, v.kind == attrStyle && len(v.decls) == 0:
		default:
			b.WriteString(" " + name + `="` + escapeAttrValue(v.String()) + `"`)
		}
	}
	return b.String()
}

func escapeAttrValue(value string) string {
	return strings.ReplaceAll(value, `"`, "&quot;")
}

func toAttrValue(key string, value interface{}) (*attrValue, error) {
	multi := key == classAttr || key == styleAttr
	var list []string
	switch t := value.(type) {
	case nil:
		if multi {
			break
		}
		return &attrValue{kind: attrBool, flag: true}, nil
	case bool:
		if multi {
			return nil, attributeTypeError(key, value)
		}
		return &attrValue{kind: attrBool, flag: t}, nil
	case string:
		if !multi {
			return &attrValue{kind: attrScalar, scalar: t}, nil
		}
		list = []string{t}
	case int:
		return scalarOrError(key, strconv.Itoa(t))
	case int64:
		return scalarOrError(key, strconv.FormatInt(t, 10))
	case float64:
		return scalarOrError(key, strconv.FormatFloat(t, 'f', -1, 64))
	case []string:
		if !multi {
			return nil, attributeTypeError(key, value)
		}
		list = t
	case []interface{}:
		if !multi {
			return nil, attributeTypeError(key, value)
		}
		for _, item := range t {
			str, ok := item.(string)
			if !ok {
				return nil, attributeTypeError(key, value)
			}
			list = append(list, str)
		}
	default:
		return nil, attributeTypeError(key, value)
	}
	if key == classAttr {
		return &attrValue{kind: attrClass, tokens: parseClassTokens(list)}, nil
	}
	return &attrValue{kind: attrStyle, decls: parseStyleDeclarations(list)}, nil
}

func scalarOrError(key, value string) (*attrValue, error) {
	if key == classAttr || key == styleAttr {
		return toAttrValue(key, value)
	}
	return &attrValue{kind: attrScalar, scalar: value}, nil
}

func attributeTypeError(key string, value interface{}) error {
	return util.Errorf(util.ErrorKindAttributeType, "",
		"attribute %q cannot hold a value of type %T", key, value)
}

func parseClassTokens(values []string) []string {
	var tokens []string
	for _, v := range values {
		for _, tok := range strings.Fields(v) {
			tokens = mergeTokens(tokens, []string{strings.ToLower(tok)}, OrderAppend)
		}
	}
	return tokens
}

func parseStyleDeclarations(values []string) []StyleDeclaration {
	var decls []StyleDeclaration
	for _, v := range values {
		for _, part := range strings.Split(v, ";") {
			prop, val, ok := strings.Cut(part, ":")
			prop = strings.ToLower(strings.TrimSpace(prop))
			if !ok || prop == "" {
				continue
			}
			decls = mergeDeclarations(decls, []StyleDeclaration{{Property: prop, Value: strings.TrimSpace(val)}}, OrderAppend)
		}
	}
	return decls
}

func mergeTokens(existing, added []string, order AttributeOrder) []string {
	present := make(map[string]bool, len(existing))
	for _, t := range existing {
		present[t] = true
	}
	var fresh []string
	for _, t := range added {
		if !present[t] {
			present[t] = true
			fresh = append(fresh, t)
		}
	}
	if order == OrderPrepend {
		return append(fresh, existing...)
	}
	return append(existing, fresh...)
}

func mergeDeclarations(existing, added []StyleDeclaration, order AttributeOrder) []StyleDeclaration {
	var fresh []StyleDeclaration
	for _, d := range added {
		replaced := false
		for i := range existing {
			if existing[i].Property == d.Property {
				existing[i].Value = d.Value
				replaced = true
				break
			}
		}
		if replaced {
			continue
		}
		for i := range fresh {
			if fresh[i].Property == d.Property {
				fresh[i].Value = d.Value
				replaced = true
				break
			}
		}
		if !replaced {
			fresh = append(fresh, d)
		}
	}
	if order == OrderPrepend {
		return append(fresh, existing...)
	}
	return append(existing, fresh...)
}

// Equal reports whether both sets hold the same attributes in the same order
func (s *AttributeSet) Equal(other *AttributeSet) bool {
	if s.Len() != other.Len() {
		return false
	}
	if s.Len() == 0 {
		return true
	}
	for i, name := range s.names {
		if other.names[i] != name {
			return false
		}
		if s.values[name].kind != other.values[name].kind || s.values[name].String() != other.values[name].String() {
			return false
		}
	}
	return true
}

// GoString lets test diffs print the rendered form
func (s *AttributeSet) GoString() string {
	return fmt.Sprintf("AttributeSet(%q)", s.String())
}
