package coerce

import (
	"github.com/reoring/jsonish/schema"
	"github.com/reoring/jsonish/value"
)

// Kind tags the shape of a TypedValue.
type Kind int

const (
	KindNull Kind = iota
	KindString
	KindInt
	KindFloat
	KindBool
	KindMedia
	KindEnum
	KindLiteral
	KindClass
	KindList
	KindMap
	KindTuple
)

func (k Kind) String() string {
	switch k {
	case KindNull:
		return "null"
	case KindString:
		return "string"
	case KindInt:
		return "int"
	case KindFloat:
		return "float"
	case KindBool:
		return "bool"
	case KindMedia:
		return "media"
	case KindEnum:
		return "enum"
	case KindLiteral:
		return "literal"
	case KindClass:
		return "class"
	case KindList:
		return "list"
	case KindMap:
		return "map"
	case KindTuple:
		return "tuple"
	}
	return "unknown"
}

// TypedValue is a coerced value shaped like its target. Every node, leaf or
// composite, carries the Conditions that produced it. A TypedValue is never
// modified after Coerce returns it.
type TypedValue struct {
	Kind   Kind
	Target schema.Type

	Str   string // String; member name for Enum
	Int   int64
	Float float64
	Bool  bool
	Lit   any    // Literal: string, int64 or bool
	Name  string // class or enum name

	Items  []*TypedValue // List, Tuple
	Fields []Field       // Class (declaration order), Map (input order)

	Conditions  []Flag
	Constraints []schema.Constraint
}

// Field is a class field or map entry. Key is set for maps only.
type Field struct {
	Name  string
	Key   *TypedValue
	Value *TypedValue
}

// Score sums the flag weights of tv and all of its descendants. Lower is
// better; zero means no heuristic was needed.
func (tv *TypedValue) Score() int {
	if tv == nil {
		return 0
	}
	s := 0
	for _, f := range tv.Conditions {
		s += f.Weight()
	}
	for _, it := range tv.Items {
		s += it.Score()
	}
	for _, f := range tv.Fields {
		s += f.Key.Score() + f.Value.Score()
	}
	return s
}

// Get returns the class field or map entry named name.
func (tv *TypedValue) Get(name string) (*TypedValue, bool) {
	if tv == nil {
		return nil, false
	}
	for _, f := range tv.Fields {
		if f.Name == name {
			return f.Value, true
		}
	}
	return nil, false
}

// ToPlain projects tv to an untyped value, dropping all conditions. It never
// fails; a nil receiver projects to Null.
func (tv *TypedValue) ToPlain() value.Value {
	if tv == nil {
		return value.NewNull()
	}
	switch tv.Kind {
	case KindString, KindMedia, KindEnum:
		return value.NewString(tv.Str)
	case KindInt:
		return value.NewInt(tv.Int)
	case KindFloat:
		return value.NewFloat(tv.Float)
	case KindBool:
		return value.NewBool(tv.Bool)
	case KindLiteral:
		switch l := tv.Lit.(type) {
		case string:
			return value.NewString(l)
		case int64:
			return value.NewInt(l)
		case bool:
			return value.NewBool(l)
		}
	case KindList, KindTuple:
		items := make([]value.Value, len(tv.Items))
		for i, it := range tv.Items {
			items[i] = it.ToPlain()
		}
		return value.NewArray(items...)
	case KindClass, KindMap:
		entries := make([]value.Entry, len(tv.Fields))
		for i, f := range tv.Fields {
			entries[i] = value.E(f.Name, f.Value.ToPlain())
		}
		return value.NewObject(entries...)
	}
	return value.NewNull()
}

// FindFlag returns the first of tv's own conditions of type T.
func FindFlag[T Flag](tv *TypedValue) (T, bool) {
	var zero T
	if tv == nil {
		return zero, false
	}
	for _, f := range tv.Conditions {
		if t, ok := f.(T); ok {
			return t, true
		}
	}
	return zero, false
}

// withFlags returns a shallow copy of tv with flags appended, leaving tv
// untouched for other holders such as the memo.
func withFlags(tv *TypedValue, flags ...Flag) *TypedValue {
	out := *tv
	out.Conditions = make([]Flag, 0, len(tv.Conditions)+len(flags))
	out.Conditions = append(out.Conditions, tv.Conditions...)
	out.Conditions = append(out.Conditions, flags...)
	return &out
}
