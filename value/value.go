// Package value defines the untyped, JSON-like tree produced by the resilient
// parser. A Value is created once per input and never mutated afterwards.
//
// Three variants are provenance wrappers rather than data: Markdown (the value
// came out of a fenced code block), FixedJSON (the parser had to repair the
// syntax) and AnyOf (several interpretations of the same text). Unwrap strips
// them down to a concrete Null/Bool/Number/String/Array/Object.
package value

import (
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"
)

// Kind identifies a Value variant.
type Kind int

const (
	KindNull Kind = iota
	KindBool
	KindNumber
	KindString
	KindArray
	KindObject
	KindMarkdown
	KindFixedJSON
	KindAnyOf
)

func (k Kind) String() string {
	switch k {
	case KindNull:
		return "null"
	case KindBool:
		return "bool"
	case KindNumber:
		return "number"
	case KindString:
		return "string"
	case KindArray:
		return "array"
	case KindObject:
		return "object"
	case KindMarkdown:
		return "markdown"
	case KindFixedJSON:
		return "fixed_json"
	case KindAnyOf:
		return "any_of"
	default:
		return "unknown"
	}
}

// Value is the closed set of parsed values. All implementations are pointer
// types so a Value can be used as an identity key.
type Value interface {
	Kind() Kind
	isValue()
}

// Null is the JSON null literal.
type Null struct{}

// Bool is a JSON boolean.
type Bool struct{ V bool }

// Number is a JSON number. Raw keeps the source text so that stringification
// round-trips exactly what the model wrote.
type Number struct {
	Raw   string
	Int   int64
	Float float64
	IsInt bool
}

// String is a JSON string.
type String struct{ V string }

// Array is an ordered list of values.
type Array struct{ Items []Value }

// Entry is one key/value pair of an Object.
type Entry struct {
	Key   string
	Value Value
}

// Object keeps keys in source order and allows duplicates.
type Object struct{ Entries []Entry }

// Markdown wraps a value extracted from a fenced code block.
type Markdown struct {
	Lang  string
	Inner Value
}

// FixedJSON wraps a value whose syntax had to be repaired.
type FixedJSON struct {
	Inner Value
	Fixes []Fix
}

// AnyOf holds competing interpretations of Raw, most preferred first.
type AnyOf struct {
	Candidates []Value
	Raw        string
}

func (*Null) Kind() Kind      { return KindNull }
func (*Bool) Kind() Kind      { return KindBool }
func (*Number) Kind() Kind    { return KindNumber }
func (*String) Kind() Kind    { return KindString }
func (*Array) Kind() Kind     { return KindArray }
func (*Object) Kind() Kind    { return KindObject }
func (*Markdown) Kind() Kind  { return KindMarkdown }
func (*FixedJSON) Kind() Kind { return KindFixedJSON }
func (*AnyOf) Kind() Kind     { return KindAnyOf }

func (*Null) isValue()      {}
func (*Bool) isValue()      {}
func (*Number) isValue()    {}
func (*String) isValue()    {}
func (*Array) isValue()     {}
func (*Object) isValue()    {}
func (*Markdown) isValue()  {}
func (*FixedJSON) isValue() {}
func (*AnyOf) isValue()     {}

// ---- constructors ----

func NewNull() *Null                 { return &Null{} }
func NewBool(b bool) *Bool           { return &Bool{V: b} }
func NewString(s string) *String     { return &String{V: s} }
func NewArray(items ...Value) *Array { return &Array{Items: items} }

// NewObject builds an object from entries in order.
func NewObject(entries ...Entry) *Object { return &Object{Entries: entries} }

// E is shorthand for an object Entry.
func E(key string, v Value) Entry { return Entry{Key: key, Value: v} }

func NewInt(i int64) *Number {
	return &Number{Raw: strconv.FormatInt(i, 10), Int: i, Float: float64(i), IsInt: true}
}

func NewFloat(f float64) *Number {
	n := &Number{Raw: strconv.FormatFloat(f, 'g', -1, 64), Float: f}
	if f == math.Trunc(f) && math.Abs(f) < 1<<63 {
		n.Int = int64(f)
	}
	return n
}

// ParseNumber parses a JSON-style number literal. ok is false when raw is not
// a number.
func ParseNumber(raw string) (*Number, bool) {
	if raw == "" {
		return nil, false
	}
	if !strings.ContainsAny(raw, ".eE") {
		if i, err := strconv.ParseInt(raw, 10, 64); err == nil {
			return &Number{Raw: raw, Int: i, Float: float64(i), IsInt: true}, true
		}
	}
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return nil, false
	}
	n := &Number{Raw: raw, Float: f}
	if f == math.Trunc(f) && math.Abs(f) < 1<<63 {
		n.Int = int64(f)
	}
	return n, true
}

func NewMarkdown(lang string, inner Value) *Markdown { return &Markdown{Lang: lang, Inner: inner} }

func NewFixedJSON(inner Value, fixes []Fix) *FixedJSON {
	return &FixedJSON{Inner: inner, Fixes: fixes}
}

func NewAnyOf(raw string, candidates ...Value) *AnyOf {
	return &AnyOf{Candidates: candidates, Raw: raw}
}

// ---- accessors ----

// Get returns the last value stored under key.
func (o *Object) Get(key string) (Value, bool) {
	for i := len(o.Entries) - 1; i >= 0; i-- {
		if o.Entries[i].Key == key {
			return o.Entries[i].Value, true
		}
	}
	return nil, false
}

// Keys returns the distinct keys in first-seen order.
func (o *Object) Keys() []string {
	seen := make(map[string]struct{}, len(o.Entries))
	out := make([]string, 0, len(o.Entries))
	for _, e := range o.Entries {
		if _, ok := seen[e.Key]; ok {
			continue
		}
		seen[e.Key] = struct{}{}
		out = append(out, e.Key)
	}
	return out
}

// Unwrap strips provenance wrappers. AnyOf resolves to its first candidate.
func Unwrap(v Value) Value {
	for {
		switch t := v.(type) {
		case *Markdown:
			v = t.Inner
		case *FixedJSON:
			v = t.Inner
		case *AnyOf:
			if len(t.Candidates) == 0 {
				return NewString(t.Raw)
			}
			v = t.Candidates[0]
		default:
			return v
		}
	}
}

// IsNull reports whether v is nil or unwraps to Null.
func IsNull(v Value) bool {
	if v == nil {
		return true
	}
	_, ok := Unwrap(v).(*Null)
	return ok
}

// Equal compares two values structurally after unwrapping. Numbers compare by
// numeric value, objects by ordered entries.
func Equal(a, b Value) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	a, b = Unwrap(a), Unwrap(b)
	if a.Kind() != b.Kind() {
		return false
	}
	switch x := a.(type) {
	case *Null:
		return true
	case *Bool:
		return x.V == b.(*Bool).V
	case *Number:
		y := b.(*Number)
		if x.IsInt && y.IsInt {
			return x.Int == y.Int
		}
		return x.Float == y.Float
	case *String:
		return x.V == b.(*String).V
	case *Array:
		y := b.(*Array)
		if len(x.Items) != len(y.Items) {
			return false
		}
		for i := range x.Items {
			if !Equal(x.Items[i], y.Items[i]) {
				return false
			}
		}
		return true
	case *Object:
		y := b.(*Object)
		if len(x.Entries) != len(y.Entries) {
			return false
		}
		for i := range x.Entries {
			if x.Entries[i].Key != y.Entries[i].Key || !Equal(x.Entries[i].Value, y.Entries[i].Value) {
				return false
			}
		}
		return true
	}
	return false
}

// ToAny converts v to plain Go values: nil, bool, int64, float64, string,
// []any and map[string]any. Duplicate object keys keep the last value.
func ToAny(v Value) any {
	if v == nil {
		return nil
	}
	switch t := Unwrap(v).(type) {
	case *Bool:
		return t.V
	case *Number:
		if t.IsInt {
			return t.Int
		}
		return t.Float
	case *String:
		return t.V
	case *Array:
		out := make([]any, len(t.Items))
		for i, it := range t.Items {
			out[i] = ToAny(it)
		}
		return out
	case *Object:
		out := make(map[string]any, len(t.Entries))
		for _, e := range t.Entries {
			out[e.Key] = ToAny(e.Value)
		}
		return out
	default:
		return nil
	}
}

// FromAny converts plain Go values (as produced by encoding/json or ToAny) to
// a Value. Unsupported types become their fmt representation as a string.
func FromAny(x any) Value {
	switch t := x.(type) {
	case nil:
		return NewNull()
	case Value:
		return t
	case bool:
		return NewBool(t)
	case int:
		return NewInt(int64(t))
	case int64:
		return NewInt(t)
	case int32:
		return NewInt(int64(t))
	case float64:
		return NewFloat(t)
	case float32:
		return NewFloat(float64(t))
	case string:
		return NewString(t)
	case []any:
		items := make([]Value, len(t))
		for i := range t {
			items[i] = FromAny(t[i])
		}
		return NewArray(items...)
	case map[string]any:
		keys := make([]string, 0, len(t))
		for k := range t {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		o := &Object{Entries: make([]Entry, 0, len(t))}
		for _, k := range keys {
			o.Entries = append(o.Entries, E(k, FromAny(t[k])))
		}
		return o
	default:
		return NewString(strings.TrimSpace(fmt.Sprint(t)))
	}
}
