package coerce

import (
	"fmt"
	"strings"

	"github.com/reoring/jsonish/infer"
	"github.com/reoring/jsonish/value"
)

// Flag records one heuristic applied while coercing a node. Weight feeds the
// score; every weight is non-negative so an untouched value scores lowest.
type Flag interface {
	// Name is the snake_case identifier, also used as the Explain code.
	Name() string
	Weight() int
	String() string
	isFlag()
}

// Attempt is the outcome of one union member or candidate.
type Attempt struct {
	Value *TypedValue
	Err   *ParsingError
}

type (
	// SingleToArray: a bare value stood in for a one-element array, or a
	// one-element array stood in for a bare value.
	SingleToArray struct{}
	// StringToBool: a boolean was read from text.
	StringToBool struct{ Raw string }
	// StringToNull: a null-like word was read as null.
	StringToNull struct{ Raw string }
	// StringToNumber: a number was read from text.
	StringToNumber struct{ Raw string }
	// FloatToInt: a fractional number was rounded.
	FloatToInt struct{ Raw string }
	// StrippedNonAlphaNumeric: matched after ignoring case and punctuation.
	StrippedNonAlphaNumeric struct{ Raw string }
	// SubstringMatch: exactly one candidate appeared inside the text.
	SubstringMatch struct{ Raw string }
	// ObjectFromMarkdown: the value came out of Count fenced code blocks.
	ObjectFromMarkdown struct{ Count int }
	// ObjectFromFixedJSON: the parser repaired the syntax.
	ObjectFromFixedJSON struct{ Fixes []value.Fix }
	// ExtraKey: an object key matched no declared field.
	ExtraKey struct {
		Key   string
		Value value.Value
	}
	// ImpliedKey: a bare value was assigned to the only field of a class.
	ImpliedKey struct{ Key string }
	// ArrayItemParseError: the item at Index was dropped.
	ArrayItemParseError struct {
		Index int
		Err   *ParsingError
	}
	// MapKeyParseError: the entry was dropped because its key failed.
	MapKeyParseError struct {
		Key string
		Err *ParsingError
	}
	// MapValueParseError: the entry was dropped because its value failed.
	MapValueParseError struct {
		Key string
		Err *ParsingError
	}
	// FirstMatch: the first successful union member was taken.
	FirstMatch struct {
		Index    int
		Attempts []Attempt
	}
	// UnionMatch: the lowest-scoring union member was taken.
	UnionMatch struct {
		Index    int
		Attempts []Attempt
	}
	// DefaultFromNoValue: a missing value was defaulted in partial mode.
	DefaultFromNoValue struct{}
	// DefaultButHadValue: a Null target discarded a value.
	DefaultButHadValue struct{ Value value.Value }
	// OptionalDefaultFromNoValue: an absent optional became null.
	OptionalDefaultFromNoValue struct{}
	// DefaultButHadUnparseableValue: an optional became null because its
	// value failed to coerce.
	DefaultButHadUnparseableValue struct{ Err *ParsingError }
	// NoFields: a class without fields was built from Value (may be nil).
	NoFields struct{ Value value.Value }
	// JSONToString: a non-string value was serialized into a string.
	JSONToString struct{ Value value.Value }
)

func (SingleToArray) Name() string                 { return "single_to_array" }
func (StringToBool) Name() string                  { return "string_to_bool" }
func (StringToNull) Name() string                  { return "string_to_null" }
func (StringToNumber) Name() string                { return "string_to_number" }
func (FloatToInt) Name() string                    { return "float_to_int" }
func (StrippedNonAlphaNumeric) Name() string       { return "stripped_non_alphanumeric" }
func (SubstringMatch) Name() string                { return "substring_match" }
func (ObjectFromMarkdown) Name() string            { return "object_from_markdown" }
func (ObjectFromFixedJSON) Name() string           { return "object_from_fixed_json" }
func (ExtraKey) Name() string                      { return "extra_key" }
func (ImpliedKey) Name() string                    { return "implied_key" }
func (ArrayItemParseError) Name() string           { return "array_item_parse_error" }
func (MapKeyParseError) Name() string              { return "map_key_parse_error" }
func (MapValueParseError) Name() string            { return "map_value_parse_error" }
func (FirstMatch) Name() string                    { return "first_match" }
func (UnionMatch) Name() string                    { return "union_match" }
func (DefaultFromNoValue) Name() string            { return "default_from_no_value" }
func (DefaultButHadValue) Name() string            { return "default_but_had_value" }
func (OptionalDefaultFromNoValue) Name() string    { return "optional_default_from_no_value" }
func (DefaultButHadUnparseableValue) Name() string { return "default_but_had_unparseable_value" }
func (NoFields) Name() string                      { return "no_fields" }
func (JSONToString) Name() string                  { return "json_to_string" }

// Weights. Provenance flags are free so that extracted or repaired input
// ranks like clean input; defaults dominate everything else.
func (SingleToArray) Weight() int                 { return 1 }
func (StringToBool) Weight() int                  { return 1 }
func (StringToNull) Weight() int                  { return 1 }
func (StringToNumber) Weight() int                { return 1 }
func (FloatToInt) Weight() int                    { return 1 }
func (StrippedNonAlphaNumeric) Weight() int       { return 3 }
func (SubstringMatch) Weight() int                { return 2 }
func (ObjectFromMarkdown) Weight() int            { return 0 }
func (ObjectFromFixedJSON) Weight() int           { return 0 }
func (ExtraKey) Weight() int                      { return 1 }
func (ImpliedKey) Weight() int                    { return 2 }
func (f ArrayItemParseError) Weight() int         { return 1 + f.Index }
func (MapKeyParseError) Weight() int              { return 1 }
func (MapValueParseError) Weight() int            { return 1 }
func (FirstMatch) Weight() int                    { return 0 }
func (UnionMatch) Weight() int                    { return 0 }
func (DefaultFromNoValue) Weight() int            { return 100 }
func (DefaultButHadValue) Weight() int            { return 110 }
func (OptionalDefaultFromNoValue) Weight() int    { return 1 }
func (DefaultButHadUnparseableValue) Weight() int { return 2 }
func (NoFields) Weight() int                      { return 1 }
func (JSONToString) Weight() int                  { return 2 }

func (SingleToArray) String() string    { return "single value and one-element array interchanged" }
func (f StringToBool) String() string   { return fmt.Sprintf("bool read from string %q", f.Raw) }
func (f StringToNull) String() string   { return fmt.Sprintf("null read from string %q", f.Raw) }
func (f StringToNumber) String() string { return fmt.Sprintf("number read from string %q", f.Raw) }
func (f FloatToInt) String() string     { return fmt.Sprintf("float %s rounded to int", f.Raw) }
func (f StrippedNonAlphaNumeric) String() string {
	return fmt.Sprintf("matched %q ignoring case and punctuation", f.Raw)
}
func (f SubstringMatch) String() string { return fmt.Sprintf("matched inside %q", f.Raw) }
func (f ObjectFromMarkdown) String() string {
	return fmt.Sprintf("extracted from %d markdown block(s)", f.Count)
}
func (f ObjectFromFixedJSON) String() string {
	names := make([]string, len(f.Fixes))
	for i, fx := range f.Fixes {
		names[i] = fx.String()
	}
	return "repaired json: " + strings.Join(names, ", ")
}
func (f ExtraKey) String() string {
	return fmt.Sprintf("extra key %q with %s", f.Key, shapeOf(f.Value))
}
func (f ImpliedKey) String() string { return fmt.Sprintf("value assigned to only field %q", f.Key) }
func (f ArrayItemParseError) String() string {
	return fmt.Sprintf("item %d dropped: %v", f.Index, f.Err)
}
func (f MapKeyParseError) String() string {
	return fmt.Sprintf("entry %q dropped, bad key: %v", f.Key, f.Err)
}
func (f MapValueParseError) String() string {
	return fmt.Sprintf("entry %q dropped, bad value: %v", f.Key, f.Err)
}
func (f FirstMatch) String() string {
	return fmt.Sprintf("first matching variant %d of %d tried", f.Index, len(f.Attempts))
}
func (f UnionMatch) String() string {
	return fmt.Sprintf("variant %d chosen among %d", f.Index, len(f.Attempts))
}
func (DefaultFromNoValue) String() string { return "defaulted, no value yet" }
func (f DefaultButHadValue) String() string {
	return fmt.Sprintf("null kept, discarded %s", shapeOf(f.Value))
}
func (OptionalDefaultFromNoValue) String() string { return "absent optional set to null" }
func (f DefaultButHadUnparseableValue) String() string {
	return fmt.Sprintf("set to null, value did not parse: %v", f.Err)
}
func (f NoFields) String() string {
	if f.Value == nil {
		return "class has no fields"
	}
	return fmt.Sprintf("class has no fields, ignored %s", shapeOf(f.Value))
}
func (f JSONToString) String() string {
	return fmt.Sprintf("%s serialized to string", shapeOf(f.Value))
}

func (SingleToArray) isFlag()                 {}
func (StringToBool) isFlag()                  {}
func (StringToNull) isFlag()                  {}
func (StringToNumber) isFlag()                {}
func (FloatToInt) isFlag()                    {}
func (StrippedNonAlphaNumeric) isFlag()       {}
func (SubstringMatch) isFlag()                {}
func (ObjectFromMarkdown) isFlag()            {}
func (ObjectFromFixedJSON) isFlag()           {}
func (ExtraKey) isFlag()                      {}
func (ImpliedKey) isFlag()                    {}
func (ArrayItemParseError) isFlag()           {}
func (MapKeyParseError) isFlag()              {}
func (MapValueParseError) isFlag()            {}
func (FirstMatch) isFlag()                    {}
func (UnionMatch) isFlag()                    {}
func (DefaultFromNoValue) isFlag()            {}
func (DefaultButHadValue) isFlag()            {}
func (OptionalDefaultFromNoValue) isFlag()    {}
func (DefaultButHadUnparseableValue) isFlag() {}
func (NoFields) isFlag()                      {}
func (JSONToString) isFlag()                  {}

// shapeOf describes v by its inferred shape, e.g. "value of shape {a: int}".
func shapeOf(v value.Value) string {
	if v == nil {
		return "no value"
	}
	return "value of shape " + infer.Of(v).String()
}
