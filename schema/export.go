package schema

import (
	"fmt"

	js "github.com/reoring/jsonish/jsonschema"
)

// JSONSchema exports target as a draft-07 document. Every class and enum
// reachable from target lands in "definitions" and is referenced by $ref, so
// recursive classes terminate.
func JSONSchema(reg *Registry, target Type) (*js.Schema, error) {
	ex := &exporter{reg: reg, defs: map[string]*js.Schema{}}
	root, err := ex.export(target)
	if err != nil {
		return nil, err
	}
	root.Schema = js.Draft07
	if len(ex.defs) > 0 {
		root.Definitions = ex.defs
	}
	return root, nil
}

type exporter struct {
	reg  *Registry
	defs map[string]*js.Schema
}

func (ex *exporter) export(t Type) (*js.Schema, error) {
	switch v := t.(type) {
	case Primitive:
		switch v {
		case String:
			return &js.Schema{Type: "string"}, nil
		case Int:
			return &js.Schema{Type: "integer"}, nil
		case Float:
			return &js.Schema{Type: "number"}, nil
		case Bool:
			return &js.Schema{Type: "boolean"}, nil
		case Null:
			return &js.Schema{Type: "null"}, nil
		case Media:
			return &js.Schema{Type: "string", Format: "uri"}, nil
		}
	case *Literal:
		return &js.Schema{Const: js.ConstOf(v.Value)}, nil
	case *Enum:
		def, ok := ex.reg.Enum(v.Name)
		if !ok {
			return nil, fmt.Errorf("%w: enum %s", ErrUnresolved, v.Name)
		}
		if _, done := ex.defs[v.Name]; !done {
			s := &js.Schema{Type: "string", Description: def.Description}
			for _, m := range def.Values {
				name := m.Name
				if m.Alias != "" {
					name = m.Alias
				}
				s.Enum = append(s.Enum, name)
			}
			ex.defs[v.Name] = s
		}
		return &js.Schema{Ref: "#/definitions/" + v.Name}, nil
	case *Class:
		if err := ex.class(v.Name); err != nil {
			return nil, err
		}
		return &js.Schema{Ref: "#/definitions/" + v.Name}, nil
	case *List:
		items, err := ex.export(v.Elem)
		if err != nil {
			return nil, err
		}
		return &js.Schema{Type: "array", Items: items}, nil
	case *Tuple:
		items := make([]*js.Schema, len(v.Items))
		for i, it := range v.Items {
			s, err := ex.export(it)
			if err != nil {
				return nil, err
			}
			items[i] = s
		}
		n := len(items)
		return &js.Schema{Type: "array", Items: items, MinItems: &n, MaxItems: &n}, nil
	case *Map:
		val, err := ex.export(v.Value)
		if err != nil {
			return nil, err
		}
		s := &js.Schema{Type: "object", AdditionalProperties: val}
		if Unwrap(v.Key) != String {
			keys, err := ex.export(v.Key)
			if err != nil {
				return nil, err
			}
			s.PropertyNames = keys
		}
		return s, nil
	case *Union:
		s := &js.Schema{}
		for _, m := range v.Variants {
			ms, err := ex.export(m)
			if err != nil {
				return nil, err
			}
			s.AnyOf = append(s.AnyOf, ms)
		}
		return s, nil
	case *Optional:
		inner, err := ex.export(v.Inner)
		if err != nil {
			return nil, err
		}
		return &js.Schema{AnyOf: []*js.Schema{inner, {Type: "null"}}}, nil
	case *Constrained:
		return ex.export(v.Base)
	}
	return nil, fmt.Errorf("schema: cannot export %v", t)
}

func (ex *exporter) class(name string) error {
	if _, done := ex.defs[name]; done {
		return nil
	}
	def, ok := ex.reg.Class(name)
	if !ok {
		return fmt.Errorf("%w: class %s", ErrUnresolved, name)
	}
	s := &js.Schema{
		Type:                 "object",
		Title:                def.Name,
		Description:          def.Description,
		Properties:           map[string]*js.Schema{},
		AdditionalProperties: false,
	}
	// Reserve the slot before descending so self-references stop here.
	ex.defs[name] = s
	for _, f := range def.Fields {
		fs, err := ex.export(f.Type)
		if err != nil {
			return fmt.Errorf("class %s field %s: %w", name, f.Name, err)
		}
		if f.Description != "" {
			if fs.Ref != "" {
				fs = &js.Schema{AnyOf: []*js.Schema{fs}}
			}
			fs.Description = f.Description
		}
		key := f.Name
		if f.Alias != "" {
			key = f.Alias
		}
		s.Properties[key] = fs
		if !IsOptional(f.Type) {
			s.Required = append(s.Required, key)
		}
	}
	return nil
}
