package schema

import (
	"fmt"
	"sort"
	"strings"

	ijs "github.com/invopop/jsonschema"
)

// Reflect imports the Go type of v (usually a pointer to a struct) through
// JSON Schema reflection. Struct definitions become classes named after the
// Go type, `jsonschema:"enum=..."` tags become unions of literals, and
// properties outside "required" (omitempty) become Optional. The returned
// Type is the target for v itself.
func Reflect(v any) (*Registry, Type, error) {
	r := &ijs.Reflector{AllowAdditionalProperties: true}
	root := r.Reflect(v)
	if root == nil {
		return nil, nil, fmt.Errorf("schema: reflect %T: no schema", v)
	}
	imp := &importer{reg: NewRegistry(), defs: root.Definitions}

	names := make([]string, 0, len(imp.defs))
	for n := range imp.defs {
		names = append(names, n)
	}
	sort.Strings(names)
	for _, n := range names {
		if isObjectSchema(imp.defs[n]) {
			if err := imp.reg.AddClass(&ClassDef{Name: n, Description: imp.defs[n].Description}); err != nil {
				return nil, nil, err
			}
		}
	}
	for _, n := range names {
		def, ok := imp.reg.Class(n)
		if !ok {
			continue
		}
		if err := imp.fillClass(def, imp.defs[n]); err != nil {
			return nil, nil, err
		}
	}
	t, err := imp.convert(root, "Root")
	if err != nil {
		return nil, nil, err
	}
	return imp.reg, t, nil
}

type importer struct {
	reg  *Registry
	defs ijs.Definitions
}

func isObjectSchema(s *ijs.Schema) bool {
	return s != nil && s.Type == "object" && s.Properties != nil && s.Properties.Len() > 0
}

func (imp *importer) fillClass(def *ClassDef, s *ijs.Schema) error {
	required := make(map[string]struct{}, len(s.Required))
	for _, n := range s.Required {
		required[n] = struct{}{}
	}
	for el := s.Properties.Oldest(); el != nil; el = el.Next() {
		t, err := imp.convert(el.Value, def.Name+exportName(el.Key))
		if err != nil {
			return fmt.Errorf("class %s field %s: %w", def.Name, el.Key, err)
		}
		if _, ok := required[el.Key]; !ok && !IsOptional(t) {
			t = OptionalOf(t)
		}
		def.Fields = append(def.Fields, FieldDef{Name: el.Key, Description: el.Value.Description, Type: t})
	}
	return nil
}

// convert maps one schema node. hint names anonymous object classes.
func (imp *importer) convert(s *ijs.Schema, hint string) (Type, error) {
	if s == nil {
		return String, nil
	}
	if s.Ref != "" {
		name := refName(s.Ref)
		if _, ok := imp.reg.Class(name); ok {
			return ClassRef(name), nil
		}
		def, ok := imp.defs[name]
		if !ok {
			return nil, fmt.Errorf("%w: %s", ErrUnresolved, s.Ref)
		}
		return imp.convert(def, name)
	}
	if s.Const != nil {
		return literalOf(s.Const)
	}
	if len(s.Enum) > 0 {
		vs := make([]Type, 0, len(s.Enum))
		for _, e := range s.Enum {
			lt, err := literalOf(e)
			if err != nil {
				return nil, err
			}
			vs = append(vs, lt)
		}
		if len(vs) == 1 {
			return vs[0], nil
		}
		return UnionOf(vs...), nil
	}
	if alts := append(append([]*ijs.Schema(nil), s.AnyOf...), s.OneOf...); len(alts) > 0 {
		vs := make([]Type, 0, len(alts))
		for i, a := range alts {
			t, err := imp.convert(a, fmt.Sprintf("%s%d", hint, i))
			if err != nil {
				return nil, err
			}
			vs = append(vs, t)
		}
		if len(vs) == 1 {
			return vs[0], nil
		}
		return UnionOf(vs...), nil
	}

	switch s.Type {
	case "string", "":
		return String, nil
	case "integer":
		return Int, nil
	case "number":
		return Float, nil
	case "boolean":
		return Bool, nil
	case "null":
		return Null, nil
	case "array":
		if len(s.PrefixItems) > 0 {
			items := make([]Type, len(s.PrefixItems))
			for i, it := range s.PrefixItems {
				t, err := imp.convert(it, fmt.Sprintf("%sItem%d", hint, i))
				if err != nil {
					return nil, err
				}
				items[i] = t
			}
			return TupleOf(items...), nil
		}
		elem, err := imp.convert(s.Items, hint+"Item")
		if err != nil {
			return nil, err
		}
		return ListOf(elem), nil
	case "object":
		if isObjectSchema(s) {
			return imp.anonymousClass(s, hint)
		}
		val, err := imp.convert(s.AdditionalProperties, hint+"Value")
		if err != nil {
			return nil, err
		}
		return MapOf(String, val), nil
	}
	return nil, fmt.Errorf("schema: unsupported JSON Schema type %q", s.Type)
}

func (imp *importer) anonymousClass(s *ijs.Schema, hint string) (Type, error) {
	name := hint
	for i := 2; ; i++ {
		if _, taken := imp.reg.Resolve(name); !taken {
			break
		}
		name = fmt.Sprintf("%s%d", hint, i)
	}
	def := &ClassDef{Name: name, Description: s.Description}
	if err := imp.reg.AddClass(def); err != nil {
		return nil, err
	}
	if err := imp.fillClass(def, s); err != nil {
		return nil, err
	}
	return ClassRef(name), nil
}

func literalOf(v any) (Type, error) {
	switch x := v.(type) {
	case string:
		return LiteralString(x), nil
	case bool:
		return LiteralBool(x), nil
	case int:
		return LiteralInt(int64(x)), nil
	case int64:
		return LiteralInt(x), nil
	case float64:
		if x == float64(int64(x)) {
			return LiteralInt(int64(x)), nil
		}
	}
	return nil, fmt.Errorf("schema: unsupported literal %v (%T)", v, v)
}

func refName(ref string) string {
	for _, p := range []string{"#/$defs/", "#/definitions/"} {
		if strings.HasPrefix(ref, p) {
			return strings.TrimPrefix(ref, p)
		}
	}
	return ref
}

func exportName(key string) string {
	var b strings.Builder
	upper := true
	for _, r := range key {
		if r == '_' || r == '-' || r == ' ' {
			upper = true
			continue
		}
		if upper {
			b.WriteString(strings.ToUpper(string(r)))
			upper = false
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}
