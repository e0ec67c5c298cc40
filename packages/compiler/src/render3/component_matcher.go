package render3

import (
	"errors"
	"fmt"
	"strings"

	"tagc-go/packages/compiler/src/core"
)

// ErrDuplicateComponent is returned when two descriptors share a name
var ErrDuplicateComponent = errors.New("duplicate component")

// ComponentMatcher resolves tag names to component descriptors through a flat
// prefix table built once. It is read-only after construction and safe for
// concurrent use.
type ComponentMatcher struct {
	registry    map[string]*core.ComponentDescriptor
	descriptors []*core.ComponentDescriptor
}

// NewComponentMatcher creates a new ComponentMatcher. On pattern collisions the
// highest priority wins; ties keep the descriptor registered first.
func NewComponentMatcher(descriptors ...*core.ComponentDescriptor) (*ComponentMatcher, error) {
	m := &ComponentMatcher{
		registry: make(map[string]*core.ComponentDescriptor),
	}
	names := make(map[string]bool, len(descriptors))
	for _, d := range descriptors {
		if err := d.Validate(); err != nil {
			return nil, err
		}
		if names[d.Name] {
			return nil, fmt.Errorf("%w: %q", ErrDuplicateComponent, d.Name)
		}
		names[d.Name] = true
		desc := *d
		m.descriptors = append(m.descriptors, &desc)
		for _, pattern := range desc.TagPatterns {
			if existing, ok := m.registry[pattern]; !ok || desc.Priority > existing.Priority {
				m.registry[pattern] = &desc
			}
		}
	}
	return m, nil
}

// Match returns the descriptor registered for tag. A tag with a ':' is looked up
// by its prefix through the first ':', any other tag by its full name.
func (m *ComponentMatcher) Match(tag string) (*core.ComponentDescriptor, bool) {
	if m == nil {
		return nil, false
	}
	d, ok := m.registry[LookupKey(tag)]
	return d, ok
}

// Descriptors returns the registered descriptors in registration order
func (m *ComponentMatcher) Descriptors() []*core.ComponentDescriptor {
	if m == nil {
		return nil
	}
	return append([]*core.ComponentDescriptor(nil), m.descriptors...)
}

// Len returns the number of registered descriptors
func (m *ComponentMatcher) Len() int {
	if m == nil {
		return 0
	}
	return len(m.descriptors)
}

// LookupKey returns the registry key for tag
func LookupKey(tag string) string {
	if i := strings.IndexByte(tag, ':'); i >= 0 {
		return tag[:i+1]
	}
	return tag
}

// matchMemo caches lookups for one compilation
type matchMemo struct {
	matcher *ComponentMatcher
	entries map[string]*core.ComponentDescriptor
	hits    int
}

func newMatchMemo(matcher *ComponentMatcher) *matchMemo {
	return &matchMemo{matcher: matcher, entries: make(map[string]*core.ComponentDescriptor)}
}

func (mm *matchMemo) match(tag string) (*core.ComponentDescriptor, bool) {
	key := LookupKey(tag)
	if d, ok := mm.entries[key]; ok {
		mm.hits++
		return d, d != nil
	}
	d, _ := mm.matcher.Match(tag)
	mm.entries[key] = d
	return d, d != nil
}
