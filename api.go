package jsonish

import (
	"context"
	"fmt"

	"github.com/goccy/go-json"

	"github.com/reoring/jsonish/coerce"
	"github.com/reoring/jsonish/infer"
	js "github.com/reoring/jsonish/jsonschema"
	"github.com/reoring/jsonish/parser"
	"github.com/reoring/jsonish/schema"
	"github.com/reoring/jsonish/value"
)

// TypedValue is a coerced value annotated with its flags.
type TypedValue = coerce.TypedValue

// Parse recovers a value tree from text. It fails only when a size or depth
// limit is exceeded; anything else degrades to alternatives or to the text
// itself as a string.
func Parse(text string, opts ...Options) (value.Value, error) {
	o := pickOptions(opts)
	v, err := parser.Parse(text, o.parserOptions())
	if err != nil {
		return nil, parseFailure(err, o.Translator)
	}
	return v, nil
}

// Coerce parses text and coerces the result to target. reg resolves the
// classes and enums target refers to.
func Coerce(ctx context.Context, reg *schema.Registry, target schema.Type, text string, opts ...Options) (*TypedValue, error) {
	o := pickOptions(opts)
	v, err := parser.Parse(text, o.parserOptions())
	if err != nil {
		return nil, parseFailure(err, o.Translator)
	}
	tv, err := coerce.Coerce(ctx, reg, target, v, o.coerceOptions())
	if err != nil {
		if unrecovered(text, v) {
			return nil, withUnrecoverable(err, o.Translator)
		}
		return nil, err
	}
	return tv, nil
}

// CoercePartial is Coerce for a prefix of a streamed response: missing
// required fields and lists are defaulted and flagged instead of failing.
func CoercePartial(ctx context.Context, reg *schema.Registry, target schema.Type, text string, opts ...Options) (*TypedValue, error) {
	o := pickOptions(opts)
	o.Partial = true
	return Coerce(ctx, reg, target, text, o)
}

// CoerceValue coerces an already parsed value tree.
func CoerceValue(ctx context.Context, reg *schema.Registry, target schema.Type, v value.Value, opts ...Options) (*TypedValue, error) {
	o := pickOptions(opts)
	return coerce.Coerce(ctx, reg, target, v, o.coerceOptions())
}

// ToPlainValue strips the annotations from tv.
func ToPlainValue(tv *TypedValue) value.Value { return tv.ToPlain() }

// Score is the total weight of the flags in tv; 0 means an exact match.
func Score(tv *TypedValue) int { return tv.Score() }

// Explain lists every heuristic applied to produce tv, one per line.
func Explain(tv *TypedValue) string { return coerce.Explain(tv).Format() }

// JSONSchema exports target as a draft-07 JSON Schema document.
func JSONSchema(reg *schema.Registry, target schema.Type) (*js.Schema, error) {
	return schema.JSONSchema(reg, target)
}

// InferSchema derives a type from a sample response. Objects become classes
// in the returned registry, the outermost one named "Root".
func InferSchema(text string, opts ...Options) (*schema.Registry, schema.Type, error) {
	v, err := Parse(text, opts...)
	if err != nil {
		return nil, nil, err
	}
	reg := schema.NewRegistry()
	t, err := infer.ToType(infer.Of(v), reg, "Root")
	if err != nil {
		return nil, nil, err
	}
	return reg, t, nil
}

// Decode coerces text into a Go value. The target type is reflected from T
// through its json and jsonschema struct tags.
func Decode[T any](ctx context.Context, text string, opts ...Options) (T, error) {
	var out T
	reg, target, err := schema.Reflect(&out)
	if err != nil {
		return out, fmt.Errorf("jsonish: decode %T: %w", out, err)
	}
	tv, err := Coerce(ctx, reg, target, text, opts...)
	if err != nil {
		return out, err
	}
	if err := json.Unmarshal(value.AppendJSON(nil, tv.ToPlain()), &out); err != nil {
		return out, fmt.Errorf("jsonish: decode %T: %w", out, err)
	}
	return out, nil
}

// unrecovered reports whether the parser fell back to the raw text.
func unrecovered(text string, v value.Value) bool {
	s, ok := v.(*value.String)
	return ok && s.V == text
}
