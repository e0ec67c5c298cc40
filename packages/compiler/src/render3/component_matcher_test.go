package render3_test

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"

	"tagc-go/packages/compiler/src/core"
	"tagc-go/packages/compiler/src/render3"
)

func TestComponentMatcher(t *testing.T) {
	card := &core.ComponentDescriptor{Name: "card", TagPatterns: []string{"card:", "card"}}
	badge := &core.ComponentDescriptor{Name: "badge", TagPatterns: []string{"badge"}}

	t.Run("should match by prefix and by full name", func(t *testing.T) {
		m, err := render3.NewComponentMatcher(card, badge)
		if err != nil {
			t.Fatal(err)
		}
		for _, tag := range []string{"card", "card:info", "card:info:2"} {
			d, ok := m.Match(tag)
			if !ok || d.Name != "card" {
				t.Errorf("Match(%q) = %v, %v", tag, d, ok)
			}
		}
		if d, ok := m.Match("badge"); !ok || d.Name != "badge" {
			t.Errorf("Match(badge) = %v, %v", d, ok)
		}
		for _, tag := range []string{"badge:new", "cards", "div"} {
			if _, ok := m.Match(tag); ok {
				t.Errorf("Match(%q) matched", tag)
			}
		}
	})

	t.Run("should prefer the higher priority on collisions", func(t *testing.T) {
		low := &core.ComponentDescriptor{Name: "low", TagPatterns: []string{"alert:"}, Priority: 1}
		high := &core.ComponentDescriptor{Name: "high", TagPatterns: []string{"alert:"}, Priority: 5}
		m, err := render3.NewComponentMatcher(low, high)
		if err != nil {
			t.Fatal(err)
		}
		if d, _ := m.Match("alert:warn"); d.Name != "high" {
			t.Errorf("Match() = %s, want high", d.Name)
		}
	})

	t.Run("should keep the first registration on priority ties", func(t *testing.T) {
		first := &core.ComponentDescriptor{Name: "first", TagPatterns: []string{"alert:"}}
		second := &core.ComponentDescriptor{Name: "second", TagPatterns: []string{"alert:"}}
		m, err := render3.NewComponentMatcher(first, second)
		if err != nil {
			t.Fatal(err)
		}
		if d, _ := m.Match("alert:warn"); d.Name != "first" {
			t.Errorf("Match() = %s, want first", d.Name)
		}
	})

	t.Run("should reject duplicate names", func(t *testing.T) {
		_, err := render3.NewComponentMatcher(card, &core.ComponentDescriptor{Name: "card", TagPatterns: []string{"box"}})
		if !errors.Is(err, render3.ErrDuplicateComponent) {
			t.Errorf("NewComponentMatcher() error = %v, want ErrDuplicateComponent", err)
		}
	})

	t.Run("should reject invalid patterns", func(t *testing.T) {
		for _, pattern := range []string{"Card:", "card:info:", ""} {
			_, err := render3.NewComponentMatcher(&core.ComponentDescriptor{Name: "x", TagPatterns: []string{pattern}})
			if err == nil {
				t.Errorf("pattern %q was accepted", pattern)
			}
		}
	})

	t.Run("should not share descriptors with the caller", func(t *testing.T) {
		desc := &core.ComponentDescriptor{Name: "box", TagPatterns: []string{"box"}}
		m, err := render3.NewComponentMatcher(desc)
		if err != nil {
			t.Fatal(err)
		}
		desc.Name = "changed"
		if d, _ := m.Match("box"); d.Name != "box" {
			t.Errorf("Match() = %s, want box", d.Name)
		}
		var names []string
		for _, d := range m.Descriptors() {
			names = append(names, d.Name)
		}
		if diff := cmp.Diff([]string{"box"}, names); diff != "" {
			t.Errorf("Descriptors() mismatch (-want +got):\n%s", diff)
		}
		if m.Len() != 1 {
			t.Errorf("Len() = %d", m.Len())
		}
	})

	t.Run("should handle a nil matcher", func(t *testing.T) {
		var m *render3.ComponentMatcher
		if _, ok := m.Match("card"); ok || m.Len() != 0 || m.Descriptors() != nil {
			t.Error("nil matcher matched")
		}
	})
}

func TestLookupKey(t *testing.T) {
	cases := map[string]string{
		"card":        "card",
		"card:":       "card:",
		"card:info":   "card:",
		"card:info:2": "card:",
	}
	for tag, expected := range cases {
		if got := render3.LookupKey(tag); got != expected {
			t.Errorf("LookupKey(%q) = %q, want %q", tag, got, expected)
		}
	}
}
