package output

import (
	"fmt"
	"text/template"
)

// RenderFunc is the host side of a render call
type RenderFunc func(target string, args map[string]interface{}, cacheHint string) (string, error)

// ExprRef is an unevaluated variable reference such as $user->name
type ExprRef string

// SlotElement is an element inside a structured content slot
type SlotElement struct {
	Name     string
	Attrs    map[string]interface{}
	Children []interface{}
}

// TemplateFuncs returns the functions TemplatePrinter output calls, so hosts
// can execute compiled templates with text/template
func TemplateFuncs(render RenderFunc) template.FuncMap {
	return template.FuncMap{
		"render": func(target string, args map[string]interface{}, hint ...string) (string, error) {
			cacheHint := "auto"
			if len(hint) > 0 {
				cacheHint = hint[0]
			}
			return render(target, args, cacheHint)
		},
		"args":  pairs,
		"attrs": pairs,
		"list": func(values ...interface{}) []interface{} {
			return values
		},
		"expr": func(s string) ExprRef {
			return ExprRef(s)
		},
		"slot": func(items ...interface{}) []interface{} {
			return items
		},
		"el": func(name string, attrs map[string]interface{}, children ...interface{}) SlotElement {
			return SlotElement{Name: name, Attrs: attrs, Children: children}
		},
	}
}

func pairs(kv ...interface{}) (map[string]interface{}, error) {
	if len(kv)%2 != 0 {
		return nil, fmt.Errorf("odd number of arguments: %d", len(kv))
	}
	m := make(map[string]interface{}, len(kv)/2)
	for i := 0; i < len(kv); i += 2 {
		key, ok := kv[i].(string)
		if !ok {
			return nil, fmt.Errorf("argument %d: key of type %T", i, kv[i])
		}
		m[key] = kv[i+1]
	}
	return m, nil
}
