// Package infer derives structural shapes from values and joins them on a
// small type lattice. Shapes describe unmatched values in explanations and
// seed a schema when none is supplied.
package infer

import (
	"strings"

	"github.com/reoring/jsonish/value"
)

// Kind is a lattice element kind.
type Kind int

const (
	Unknown Kind = iota
	Null
	Bool
	Int
	Float
	String
	List
	Object
	Optional
	Union
)

// Shape is an inferred structural type. Shapes are immutable once built.
type Shape struct {
	Kind Kind
	// Elem is the element shape of a List and the inner shape of an Optional.
	Elem     *Shape
	Fields   []Field
	Variants []*Shape
}

// Field is one object member. Optional means the key was absent in at least
// one joined object.
type Field struct {
	Name     string
	Shape    *Shape
	Optional bool
}

var (
	unknownShape = &Shape{Kind: Unknown}
	nullShape    = &Shape{Kind: Null}
)

// Of returns the shape of v. Provenance wrappers are looked through.
func Of(v value.Value) *Shape {
	if v == nil {
		return unknownShape
	}
	switch t := value.Unwrap(v).(type) {
	case *value.Null:
		return nullShape
	case *value.Bool:
		return &Shape{Kind: Bool}
	case *value.Number:
		if t.IsInt {
			return &Shape{Kind: Int}
		}
		return &Shape{Kind: Float}
	case *value.String:
		return &Shape{Kind: String}
	case *value.Array:
		elem := unknownShape
		for _, it := range t.Items {
			elem = Join(elem, Of(it))
		}
		return &Shape{Kind: List, Elem: elem}
	case *value.Object:
		out := &Shape{Kind: Object}
		for _, k := range t.Keys() {
			fv, _ := t.Get(k)
			out.Fields = append(out.Fields, Field{Name: k, Shape: Of(fv)})
		}
		return out
	}
	return unknownShape
}

// Join returns the least shape covering both a and b.
func Join(a, b *Shape) *Shape {
	if a == nil || a.Kind == Unknown {
		return orUnknown(b)
	}
	if b == nil || b.Kind == Unknown {
		return a
	}
	if Equal(a, b) {
		return a
	}
	switch {
	case a.Kind == Null:
		return optionalOf(b)
	case b.Kind == Null:
		return optionalOf(a)
	case a.Kind == Optional:
		return optionalOf(Join(a.Elem, stripOptional(b)))
	case b.Kind == Optional:
		return optionalOf(Join(stripOptional(a), b.Elem))
	case isNumber(a.Kind) && isNumber(b.Kind):
		return &Shape{Kind: Float}
	case a.Kind == List && b.Kind == List:
		return &Shape{Kind: List, Elem: Join(a.Elem, b.Elem)}
	case a.Kind == Object && b.Kind == Object:
		return joinObjects(a, b)
	}
	vs := append([]*Shape(nil), variants(a)...)
	for _, v := range variants(b) {
		vs = addVariant(vs, v)
	}
	if len(vs) == 1 {
		return vs[0]
	}
	return &Shape{Kind: Union, Variants: vs}
}

func orUnknown(s *Shape) *Shape {
	if s == nil {
		return unknownShape
	}
	return s
}

func isNumber(k Kind) bool { return k == Int || k == Float }

func stripOptional(s *Shape) *Shape {
	if s.Kind == Optional {
		return s.Elem
	}
	return s
}

func optionalOf(s *Shape) *Shape {
	switch s.Kind {
	case Null, Optional:
		return s
	}
	return &Shape{Kind: Optional, Elem: s}
}

func variants(s *Shape) []*Shape {
	if s.Kind == Union {
		return s.Variants
	}
	return []*Shape{s}
}

// addVariant merges v into the first variant of the same family, or appends.
func addVariant(vs []*Shape, v *Shape) []*Shape {
	for i, x := range vs {
		if x.Kind == v.Kind || (isNumber(x.Kind) && isNumber(v.Kind)) {
			out := append([]*Shape(nil), vs...)
			out[i] = Join(x, v)
			return out
		}
	}
	return append(vs, v)
}

func joinObjects(a, b *Shape) *Shape {
	out := &Shape{Kind: Object}
	inB := make(map[string]Field, len(b.Fields))
	for _, f := range b.Fields {
		inB[f.Name] = f
	}
	seen := make(map[string]struct{}, len(a.Fields))
	for _, f := range a.Fields {
		seen[f.Name] = struct{}{}
		if g, ok := inB[f.Name]; ok {
			out.Fields = append(out.Fields, Field{Name: f.Name, Shape: Join(f.Shape, g.Shape), Optional: f.Optional || g.Optional})
			continue
		}
		out.Fields = append(out.Fields, Field{Name: f.Name, Shape: f.Shape, Optional: true})
	}
	for _, g := range b.Fields {
		if _, ok := seen[g.Name]; ok {
			continue
		}
		out.Fields = append(out.Fields, Field{Name: g.Name, Shape: g.Shape, Optional: true})
	}
	return out
}

// Equal reports structural equality.
func Equal(a, b *Shape) bool {
	if a == nil || b == nil {
		return a == b
	}
	if a.Kind != b.Kind {
		return false
	}
	switch a.Kind {
	case List, Optional:
		return Equal(a.Elem, b.Elem)
	case Object:
		if len(a.Fields) != len(b.Fields) {
			return false
		}
		for i := range a.Fields {
			fa, fb := a.Fields[i], b.Fields[i]
			if fa.Name != fb.Name || fa.Optional != fb.Optional || !Equal(fa.Shape, fb.Shape) {
				return false
			}
		}
	case Union:
		if len(a.Variants) != len(b.Variants) {
			return false
		}
		for i := range a.Variants {
			if !Equal(a.Variants[i], b.Variants[i]) {
				return false
			}
		}
	}
	return true
}

func (s *Shape) String() string {
	if s == nil {
		return "unknown"
	}
	switch s.Kind {
	case Null:
		return "null"
	case Bool:
		return "bool"
	case Int:
		return "int"
	case Float:
		return "float"
	case String:
		return "string"
	case List:
		return wrap(s.Elem) + "[]"
	case Optional:
		return wrap(s.Elem) + "?"
	case Object:
		var b strings.Builder
		b.WriteByte('{')
		for i, f := range s.Fields {
			if i > 0 {
				b.WriteString(", ")
			}
			b.WriteString(f.Name)
			if f.Optional {
				b.WriteByte('?')
			}
			b.WriteString(": ")
			b.WriteString(f.Shape.String())
		}
		b.WriteByte('}')
		return b.String()
	case Union:
		parts := make([]string, len(s.Variants))
		for i, v := range s.Variants {
			parts[i] = v.String()
		}
		return strings.Join(parts, " | ")
	}
	return "unknown"
}

func wrap(s *Shape) string {
	if s != nil && s.Kind == Union {
		return "(" + s.String() + ")"
	}
	return s.String()
}
