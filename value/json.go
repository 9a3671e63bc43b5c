package value

import (
	"bytes"

	json "github.com/goccy/go-json"
)

// MarshalJSON implementations encode the unwrapped value with object keys in
// source order.

func (v *Null) MarshalJSON() ([]byte, error)      { return AppendJSON(nil, v), nil }
func (v *Bool) MarshalJSON() ([]byte, error)      { return AppendJSON(nil, v), nil }
func (v *Number) MarshalJSON() ([]byte, error)    { return AppendJSON(nil, v), nil }
func (v *String) MarshalJSON() ([]byte, error)    { return AppendJSON(nil, v), nil }
func (v *Array) MarshalJSON() ([]byte, error)     { return AppendJSON(nil, v), nil }
func (v *Object) MarshalJSON() ([]byte, error)    { return AppendJSON(nil, v), nil }
func (v *Markdown) MarshalJSON() ([]byte, error)  { return AppendJSON(nil, v), nil }
func (v *FixedJSON) MarshalJSON() ([]byte, error) { return AppendJSON(nil, v), nil }
func (v *AnyOf) MarshalJSON() ([]byte, error)     { return AppendJSON(nil, v), nil }

// JSON renders v as compact JSON text.
func JSON(v Value) string { return string(AppendJSON(nil, v)) }

// AppendJSON appends the compact JSON encoding of v to dst. A nil Value is
// encoded as null.
func AppendJSON(dst []byte, v Value) []byte {
	if v == nil {
		return append(dst, "null"...)
	}
	switch t := Unwrap(v).(type) {
	case *Null:
		return append(dst, "null"...)
	case *Bool:
		if t.V {
			return append(dst, "true"...)
		}
		return append(dst, "false"...)
	case *Number:
		if _, ok := ParseNumber(t.Raw); ok && json.Valid([]byte(t.Raw)) {
			return append(dst, t.Raw...)
		}
		if t.IsInt {
			return append(dst, NewInt(t.Int).Raw...)
		}
		return append(dst, NewFloat(t.Float).Raw...)
	case *String:
		return appendString(dst, t.V)
	case *Array:
		dst = append(dst, '[')
		for i, it := range t.Items {
			if i > 0 {
				dst = append(dst, ',')
			}
			dst = AppendJSON(dst, it)
		}
		return append(dst, ']')
	case *Object:
		dst = append(dst, '{')
		for i, e := range t.Entries {
			if i > 0 {
				dst = append(dst, ',')
			}
			dst = appendString(dst, e.Key)
			dst = append(dst, ':')
			dst = AppendJSON(dst, e.Value)
		}
		return append(dst, '}')
	}
	return append(dst, "null"...)
}

func appendString(dst []byte, s string) []byte {
	b, err := json.MarshalWithOption(s, json.DisableHTMLEscape())
	if err != nil {
		// strings always encode; keep the output well-formed regardless
		return append(dst, `""`...)
	}
	return append(dst, bytes.TrimSpace(b)...)
}
