// Package jsonschema holds the JSON Schema document model produced by
// schema.JSONSchema. Only the subset of draft-07 that target types can
// express is modelled.
package jsonschema

import json "github.com/goccy/go-json"

// Draft07 is the $schema URI stamped on root documents.
const Draft07 = "http://json-schema.org/draft-07/schema#"

// Schema is a minimal JSON Schema representation used for export.
type Schema struct {
	// Core
	Schema      string `json:"$schema,omitempty"`
	Ref         string `json:"$ref,omitempty"`
	Title       string `json:"title,omitempty"`
	Description string `json:"description,omitempty"`
	Type        string `json:"type,omitempty"`
	Format      string `json:"format,omitempty"`
	Default     any    `json:"default,omitempty"`
	Enum        []any  `json:"enum,omitempty"`
	// Const is a pointer so that a literal false, 0 or "" survives omitempty.
	Const *any `json:"const,omitempty"`

	// Object
	Properties           map[string]*Schema `json:"properties,omitempty"`
	Required             []string           `json:"required,omitempty"`
	AdditionalProperties any                `json:"additionalProperties,omitempty"`
	PropertyNames        *Schema            `json:"propertyNames,omitempty"`

	// Array. Items is a *Schema for lists and a []*Schema for tuples.
	Items    any  `json:"items,omitempty"`
	MinItems *int `json:"minItems,omitempty"`
	MaxItems *int `json:"maxItems,omitempty"`

	// Union
	AnyOf []*Schema `json:"anyOf,omitempty"`

	Definitions map[string]*Schema `json:"definitions,omitempty"`
}

// ConstOf returns a Const value for v.
func ConstOf(v any) *any { return &v }

// Marshal renders s as indented JSON. Map keys are sorted.
func Marshal(s *Schema) ([]byte, error) {
	return json.MarshalIndentWithOption(s, "", "  ", json.DisableHTMLEscape())
}
