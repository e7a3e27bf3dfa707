// Package uidef loads data-driven UI definitions: small named documents in a
// local directory that describe a generic view as an ordered list of
// components bound to context keys.
//
// Definitions are validated against an embedded JSON Schema before decoding
// and cached by name. A failed load is never fatal to a resolution; callers
// log it and fall back to the static variant table.
package uidef

import (
	"strings"

	"github.com/roach88/actionroute/internal/ir"
)

// ComponentType is the kind of a view component.
type ComponentType string

const (
	ComponentHeader  ComponentType = "header"
	ComponentText    ComponentType = "text"
	ComponentField   ComponentType = "field"
	ComponentAmount  ComponentType = "amount"
	ComponentDate    ComponentType = "date"
	ComponentLink    ComponentType = "link"
	ComponentButton  ComponentType = "button"
	ComponentImage   ComponentType = "image"
	ComponentDivider ComponentType = "divider"
	ComponentList    ComponentType = "list"
)

// Definition is a decoded UI definition.
type Definition struct {
	Name       string      `json:"name"`
	Version    int         `json:"version"`
	Title      string      `json:"title,omitempty"`
	Components []Component `json:"components"`
}

// Component is one element of a definition. Bind names the context key the
// component displays; Fallback keys are tried in order when Bind is absent,
// and Value is a literal used when no key resolves.
type Component struct {
	Type     ComponentType     `json:"type"`
	Label    string            `json:"label,omitempty"`
	Bind     string            `json:"bind,omitempty"`
	Fallback []string          `json:"fallback,omitempty"`
	Value    string            `json:"value,omitempty"`
	Required bool              `json:"required,omitempty"`
	Props    map[string]string `json:"props,omitempty"`
}

// View is a definition bound against a context.
type View struct {
	Name    string       `json:"name"`
	Version int          `json:"version"`
	Title   string       `json:"title,omitempty"`
	Fields  []BoundField `json:"fields"`
	Missing []string     `json:"missing,omitempty"`
}

// BoundField is a component with its resolved value. Key is the context key
// that supplied Value, or empty for literals.
type BoundField struct {
	Type  ComponentType     `json:"type"`
	Label string            `json:"label,omitempty"`
	Key   string            `json:"key,omitempty"`
	Value string            `json:"value,omitempty"`
	Props map[string]string `json:"props,omitempty"`
}

// Bind resolves every component against ctx. Required components that
// resolve to nothing are listed in Missing by their bind key (or type when
// unbound); binding never fails.
func (d *Definition) Bind(ctx ir.Context) View {
	v := View{Name: d.Name, Version: d.Version, Title: d.Title}
	for _, c := range d.Components {
		f := BoundField{Type: c.Type, Label: c.Label, Props: c.Props}
		if c.Bind != "" {
			keys := append([]string{c.Bind}, c.Fallback...)
			if k, val, ok := ctx.FirstOf(keys...); ok {
				f.Key, f.Value = k, val
			}
		}
		if f.Value == "" && strings.TrimSpace(c.Value) != "" {
			f.Value = c.Value
		}
		if f.Value == "" && c.Required {
			name := c.Bind
			if name == "" {
				name = string(c.Type)
			}
			v.Missing = append(v.Missing, name)
		}
		v.Fields = append(v.Fields, f)
	}
	return v
}

// Keys returns the primary bind keys of the definition in component order.
func (d *Definition) Keys() []string {
	var keys []string
	for _, c := range d.Components {
		if c.Bind != "" {
			keys = append(keys, c.Bind)
		}
	}
	return keys
}
