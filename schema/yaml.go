package schema

import (
	"bytes"
	"errors"
	"fmt"
	"io"

	"gopkg.in/yaml.v3"
)

// LoadYAML reads a registry document:
//
//	enums:
//	  Color: [RED, GREEN]
//	  Mood:
//	    description: how it feels
//	    values: [HAPPY, {name: SAD, alias: blue}]
//	classes:
//	  Person:
//	    fields:
//	      name: string
//	      age: {type: int?, alias: years}
//
// Declaration order is kept. Field types are type expressions (see
// ParseType) and may refer to any class or enum in the document.
func LoadYAML(data []byte) (*Registry, error) {
	var root yaml.Node
	dec := yaml.NewDecoder(bytes.NewReader(data))
	if err := dec.Decode(&root); err != nil {
		if errors.Is(err, io.EOF) {
			return NewRegistry(), nil
		}
		return nil, fmt.Errorf("schema: yaml: %w", err)
	}
	doc := &root
	if doc.Kind == yaml.DocumentNode && len(doc.Content) > 0 {
		doc = doc.Content[0]
	}
	if doc.Kind != yaml.MappingNode {
		return nil, yamlErr(doc, "document must be a mapping")
	}

	reg := NewRegistry()
	var classNodes []*yaml.Node
	var classDefs []*ClassDef

	// Names first so field types can refer forward.
	for i := 0; i+1 < len(doc.Content); i += 2 {
		key, val := doc.Content[i], doc.Content[i+1]
		switch key.Value {
		case "enums":
			if err := loadEnums(reg, val); err != nil {
				return nil, err
			}
		case "classes":
			if val.Kind != yaml.MappingNode {
				return nil, yamlErr(val, "classes must be a mapping")
			}
			for j := 0; j+1 < len(val.Content); j += 2 {
				def := &ClassDef{Name: val.Content[j].Value}
				if err := reg.AddClass(def); err != nil {
					return nil, err
				}
				classDefs = append(classDefs, def)
				classNodes = append(classNodes, val.Content[j+1])
			}
		default:
			return nil, yamlErr(key, "unknown section "+key.Value)
		}
	}

	for i, def := range classDefs {
		if err := loadClass(reg, def, classNodes[i]); err != nil {
			return nil, err
		}
	}
	return reg, nil
}

func loadEnums(reg *Registry, n *yaml.Node) error {
	if n.Kind != yaml.MappingNode {
		return yamlErr(n, "enums must be a mapping")
	}
	for i := 0; i+1 < len(n.Content); i += 2 {
		def := &EnumDef{Name: n.Content[i].Value}
		body := n.Content[i+1]
		values := body
		if body.Kind == yaml.MappingNode {
			values = nil
			for j := 0; j+1 < len(body.Content); j += 2 {
				switch k, v := body.Content[j], body.Content[j+1]; k.Value {
				case "description":
					def.Description = v.Value
				case "values":
					values = v
				default:
					return yamlErr(k, "unknown enum key "+k.Value)
				}
			}
		}
		if values == nil || values.Kind != yaml.SequenceNode {
			return yamlErr(body, "enum "+def.Name+" needs a list of values")
		}
		for _, item := range values.Content {
			ev, err := loadEnumValue(item)
			if err != nil {
				return err
			}
			def.Values = append(def.Values, ev)
		}
		if err := reg.AddEnum(def); err != nil {
			return err
		}
	}
	return nil
}

func loadEnumValue(n *yaml.Node) (EnumValue, error) {
	switch n.Kind {
	case yaml.ScalarNode:
		return EnumValue{Name: n.Value}, nil
	case yaml.MappingNode:
		var body struct {
			Name        string `yaml:"name"`
			Alias       string `yaml:"alias"`
			Description string `yaml:"description"`
		}
		if err := n.Decode(&body); err != nil {
			return EnumValue{}, fmt.Errorf("schema: yaml: %w", err)
		}
		ev := EnumValue{Name: body.Name, Alias: body.Alias, Description: body.Description}
		if ev.Name == "" {
			return EnumValue{}, yamlErr(n, "enum value without name")
		}
		return ev, nil
	}
	return EnumValue{}, yamlErr(n, "enum value must be a string or mapping")
}

func loadClass(reg *Registry, def *ClassDef, n *yaml.Node) error {
	if n.Kind != yaml.MappingNode {
		return yamlErr(n, "class "+def.Name+" must be a mapping")
	}
	for i := 0; i+1 < len(n.Content); i += 2 {
		k, v := n.Content[i], n.Content[i+1]
		switch k.Value {
		case "description":
			def.Description = v.Value
		case "fields":
			if v.Kind != yaml.MappingNode {
				return yamlErr(v, "fields of "+def.Name+" must be a mapping")
			}
			for j := 0; j+1 < len(v.Content); j += 2 {
				f, err := loadField(reg, v.Content[j].Value, v.Content[j+1])
				if err != nil {
					return fmt.Errorf("class %s: %w", def.Name, err)
				}
				if _, dup := def.Field(f.Name); dup {
					return fmt.Errorf("%w: field %s in class %s", ErrDuplicate, f.Name, def.Name)
				}
				def.Fields = append(def.Fields, f)
			}
		default:
			return yamlErr(k, "unknown class key "+k.Value)
		}
	}
	return nil
}

func loadField(reg *Registry, name string, n *yaml.Node) (FieldDef, error) {
	fd := FieldDef{Name: name}
	expr := n.Value
	if n.Kind == yaml.MappingNode {
		var body struct {
			Type        string `yaml:"type"`
			Alias       string `yaml:"alias"`
			Description string `yaml:"description"`
		}
		if err := n.Decode(&body); err != nil {
			return fd, fmt.Errorf("schema: yaml: %w", err)
		}
		expr, fd.Alias, fd.Description = body.Type, body.Alias, body.Description
	} else if n.Kind != yaml.ScalarNode {
		return fd, yamlErr(n, "field "+name+" must be a type expression or mapping")
	}
	if expr == "" {
		return fd, yamlErr(n, "field "+name+" has no type")
	}
	t, err := ParseType(expr, reg)
	if err != nil {
		return fd, fmt.Errorf("field %s: %w", name, err)
	}
	fd.Type = t
	return fd, nil
}

func yamlErr(n *yaml.Node, msg string) error {
	return fmt.Errorf("schema: yaml line %d: %s", n.Line, msg)
}
