// Package schema models the target types that model output is coerced into:
// primitives, literals, named classes and enums resolved through a Registry,
// and the composite forms built from them.
package schema

import (
	"strconv"
	"strings"
)

// Type is a coercion target. The set of implementations is closed.
type Type interface {
	// String renders the type in the expression syntax accepted by ParseType.
	String() string
	isType()
}

// Primitive is a scalar target.
type Primitive int

const (
	String Primitive = iota + 1
	Int
	Float
	Bool
	Null
	Media
)

func (p Primitive) String() string {
	switch p {
	case String:
		return "string"
	case Int:
		return "int"
	case Float:
		return "float"
	case Bool:
		return "bool"
	case Null:
		return "null"
	case Media:
		return "media"
	}
	return "primitive(" + strconv.Itoa(int(p)) + ")"
}

// Literal matches exactly one string, int64 or bool value.
type Literal struct {
	Value any
}

func LiteralString(s string) *Literal { return &Literal{Value: s} }
func LiteralInt(i int64) *Literal     { return &Literal{Value: i} }
func LiteralBool(b bool) *Literal     { return &Literal{Value: b} }

func (l *Literal) String() string {
	switch v := l.Value.(type) {
	case string:
		return strconv.Quote(v)
	case int64:
		return strconv.FormatInt(v, 10)
	case bool:
		return strconv.FormatBool(v)
	}
	return "literal"
}

// Enum references an EnumDef by name.
type Enum struct{ Name string }

// Class references a ClassDef by name. Classes may refer to themselves.
type Class struct{ Name string }

func EnumRef(name string) *Enum   { return &Enum{Name: name} }
func ClassRef(name string) *Class { return &Class{Name: name} }

func (e *Enum) String() string  { return e.Name }
func (c *Class) String() string { return c.Name }

// List is a homogeneous sequence.
type List struct{ Elem Type }

// Map is a string-keyed dictionary. Key must be String, an Enum, a string
// Literal, or a Union of those.
type Map struct{ Key, Value Type }

// Union is an ordered set of alternatives; order breaks score ties.
type Union struct{ Variants []Type }

// Tuple is a fixed-arity positional sequence.
type Tuple struct{ Items []Type }

// Optional admits the absence of a value.
type Optional struct{ Inner Type }

func ListOf(elem Type) *List         { return &List{Elem: elem} }
func MapOf(key, val Type) *Map       { return &Map{Key: key, Value: val} }
func UnionOf(vs ...Type) *Union      { return &Union{Variants: vs} }
func TupleOf(items ...Type) *Tuple   { return &Tuple{Items: items} }
func OptionalOf(inner Type) *Optional { return &Optional{Inner: inner} }

func (l *List) String() string { return wrapComposite(l.Elem) + "[]" }
func (m *Map) String() string  { return "map<" + m.Key.String() + ", " + m.Value.String() + ">" }
func (o *Optional) String() string {
	return wrapComposite(o.Inner) + "?"
}

func (u *Union) String() string {
	parts := make([]string, len(u.Variants))
	for i, v := range u.Variants {
		parts[i] = v.String()
	}
	return strings.Join(parts, " | ")
}

func (t *Tuple) String() string {
	parts := make([]string, len(t.Items))
	for i, v := range t.Items {
		parts[i] = v.String()
	}
	if len(parts) == 1 {
		return "(" + parts[0] + ",)"
	}
	return "(" + strings.Join(parts, ", ") + ")"
}

// ConstraintLevel distinguishes hard assertions from soft checks. Coercion
// attaches constraints to its result without evaluating them.
type ConstraintLevel int

const (
	Check ConstraintLevel = iota
	Assert
)

func (l ConstraintLevel) String() string {
	if l == Assert {
		return "assert"
	}
	return "check"
}

// Constraint is an opaque, named predicate carried through coercion.
type Constraint struct {
	Level ConstraintLevel
	Name  string
	Expr  string
}

// Constrained decorates Base with constraints.
type Constrained struct {
	Base        Type
	Constraints []Constraint
}

func WithConstraints(base Type, cs ...Constraint) *Constrained {
	return &Constrained{Base: base, Constraints: cs}
}

func (c *Constrained) String() string { return c.Base.String() }

func (Primitive) isType()    {}
func (*Literal) isType()     {}
func (*Enum) isType()        {}
func (*Class) isType()       {}
func (*List) isType()        {}
func (*Map) isType()         {}
func (*Union) isType()       {}
func (*Tuple) isType()       {}
func (*Optional) isType()    {}
func (*Constrained) isType() {}

// wrapComposite parenthesises unions so postfix operators bind to the whole.
func wrapComposite(t Type) string {
	switch v := t.(type) {
	case *Union:
		return "(" + v.String() + ")"
	case *Constrained:
		return wrapComposite(v.Base)
	}
	return t.String()
}

// Unwrap strips Constrained decorations.
func Unwrap(t Type) Type {
	for {
		c, ok := t.(*Constrained)
		if !ok {
			return t
		}
		t = c.Base
	}
}

// IsOptional reports whether t admits the absence of a value.
func IsOptional(t Type) bool {
	switch v := Unwrap(t).(type) {
	case *Optional:
		return true
	case Primitive:
		return v == Null
	case *Union:
		for _, m := range v.Variants {
			if IsOptional(m) {
				return true
			}
		}
	}
	return false
}
