package infer

import (
	"fmt"
	"strings"
	"unicode"

	"github.com/reoring/jsonish/schema"
)

// ToType materialises s as a target type. Object shapes become classes in
// reg named from name and the field path; unknown shapes become string.
func ToType(s *Shape, reg *schema.Registry, name string) (schema.Type, error) {
	if s == nil {
		return schema.String, nil
	}
	switch s.Kind {
	case Unknown, String:
		return schema.String, nil
	case Null:
		return schema.Null, nil
	case Bool:
		return schema.Bool, nil
	case Int:
		return schema.Int, nil
	case Float:
		return schema.Float, nil
	case List:
		elem, err := ToType(s.Elem, reg, name+"Item")
		if err != nil {
			return nil, err
		}
		return schema.ListOf(elem), nil
	case Optional:
		inner, err := ToType(s.Elem, reg, name)
		if err != nil {
			return nil, err
		}
		return schema.OptionalOf(inner), nil
	case Union:
		vs := make([]schema.Type, len(s.Variants))
		for i, v := range s.Variants {
			t, err := ToType(v, reg, name)
			if err != nil {
				return nil, err
			}
			vs[i] = t
		}
		return schema.UnionOf(vs...), nil
	case Object:
		return objectClass(s, reg, name)
	}
	return nil, fmt.Errorf("infer: unknown shape kind %d", s.Kind)
}

func objectClass(s *Shape, reg *schema.Registry, name string) (schema.Type, error) {
	base := pascal(name)
	if base == "" {
		base = "Object"
	}
	className := base
	for i := 2; ; i++ {
		if _, taken := reg.Resolve(className); !taken {
			break
		}
		className = fmt.Sprintf("%s%d", base, i)
	}
	def := &schema.ClassDef{Name: className}
	// Register first so nested shapes pick distinct names.
	if err := reg.AddClass(def); err != nil {
		return nil, err
	}
	for _, f := range s.Fields {
		t, err := ToType(f.Shape, reg, className+pascal(f.Name))
		if err != nil {
			return nil, err
		}
		if f.Optional && !schema.IsOptional(t) {
			t = schema.OptionalOf(t)
		}
		def.Fields = append(def.Fields, schema.FieldDef{Name: f.Name, Type: t})
	}
	return schema.ClassRef(className), nil
}

// pascal turns "best_friend" or "best friend" into "BestFriend".
func pascal(s string) string {
	var b strings.Builder
	upper := true
	for _, r := range s {
		if !unicode.IsLetter(r) && !unicode.IsDigit(r) {
			upper = true
			continue
		}
		if upper {
			r = unicode.ToUpper(r)
			upper = false
		}
		b.WriteRune(r)
	}
	out := b.String()
	if out != "" && unicode.IsDigit(rune(out[0])) {
		out = "N" + out
	}
	return out
}
