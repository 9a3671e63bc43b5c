package coerce

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/reoring/jsonish/value"
)

// Error codes carried by ParsingError.Code.
const (
	CodeUnexpectedNull              = "unexpected_null"
	CodeUnexpectedType              = "unexpected_type"
	CodeMissingRequiredField        = "missing_required_field"
	CodeUnknownEnumValue            = "unknown_enum_value"
	CodeNoMatchingUnionVariant      = "no_matching_union_variant"
	CodeUnionAmbiguous              = "union_ambiguous"
	CodeUnsupportedMediaCoercion    = "unsupported_media_coercion"
	CodeMalformedInputUnrecoverable = "malformed_input_unrecoverable"
	CodeNotImplemented              = "not_implemented"
	// Hardening
	CodeLimitExceeded = "limit_exceeded"
	CodeCanceled      = "canceled"
)

// Segment is one step of a Path: an object key or an array index.
type Segment struct {
	Key     string
	Index   int
	IsIndex bool
}

func (s Segment) String() string {
	if s.IsIndex {
		return strconv.Itoa(s.Index)
	}
	// escape '~' -> '~0', '/' -> '~1' per RFC6901
	return strings.ReplaceAll(strings.ReplaceAll(s.Key, "~", "~0"), "/", "~1")
}

// Path locates a node from the root. Paths are never mutated in place.
type Path []Segment

// Field returns a new path extended with an object key.
func (p Path) Field(name string) Path {
	return append(append(Path(nil), p...), Segment{Key: name})
}

// Index returns a new path extended with an array index.
func (p Path) Index(i int) Path {
	return append(append(Path(nil), p...), Segment{Index: i, IsIndex: true})
}

// Pointer renders p as a JSON Pointer; the root is "/".
func (p Path) Pointer() string {
	if len(p) == 0 {
		return "/"
	}
	b := &strings.Builder{}
	for _, s := range p {
		b.WriteByte('/')
		b.WriteString(s.String())
	}
	return b.String()
}

func (p Path) String() string { return p.Pointer() }

// ParsingError describes why a value could not be coerced to its target.
type ParsingError struct {
	Path    Path
	Code    string // One of the Code* constants.
	Message string
	// Value is the offending input, when there was one.
	Value value.Value
	// Params carries the message placeholders (expected, got, key, limit).
	Params map[string]string
	// Causes are the failures of the alternatives that were tried.
	Causes []*ParsingError
	// Err is the underlying error (context cancellation), if any.
	Err error
}

func (e *ParsingError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("%s at %s", e.Code, e.Path.Pointer())
	}
	return fmt.Sprintf("%s at %s: %s", e.Code, e.Path.Pointer(), e.Message)
}

// Pointer is the JSON Pointer of the failing node.
func (e *ParsingError) Pointer() string { return e.Path.Pointer() }

func (e *ParsingError) Unwrap() []error {
	out := make([]error, 0, len(e.Causes)+1)
	for _, c := range e.Causes {
		out = append(out, c)
	}
	if e.Err != nil {
		out = append(out, e.Err)
	}
	return out
}

// ParsingErrors is a collection of ParsingError that implements error.
type ParsingErrors []*ParsingError

// Error summarizes the first few entries.
func (pe ParsingErrors) Error() string {
	if len(pe) == 0 {
		return ""
	}
	const maxShown = 3
	b := &strings.Builder{}
	lim := min(len(pe), maxShown)
	for i := 0; i < lim; i++ {
		if i > 0 {
			b.WriteString("; ")
		}
		fmt.Fprintf(b, "%s at %s", pe[i].Code, pe[i].Pointer())
	}
	if len(pe) > lim {
		fmt.Fprintf(b, "; ... (total %d)", len(pe))
	}
	return b.String()
}

// AsParsingErrors extracts ParsingErrors from err using errors.As.
func AsParsingErrors(err error) (ParsingErrors, bool) {
	if err == nil {
		return nil, false
	}
	var pe ParsingErrors
	if errors.As(err, &pe) {
		return pe, true
	}
	return nil, false
}

// AsParsingError extracts the outermost *ParsingError from err.
func AsParsingError(err error) (*ParsingError, bool) {
	if err == nil {
		return nil, false
	}
	var pe *ParsingError
	if errors.As(err, &pe) {
		return pe, true
	}
	return nil, false
}

// DeepestError returns the ParsingError with the longest path found in err
// and its causes. The first one wins on ties. It returns nil when err holds
// no ParsingError.
func DeepestError(err error) *ParsingError {
	var best *ParsingError
	var walk func(*ParsingError)
	walk = func(e *ParsingError) {
		if e == nil {
			return
		}
		if best == nil || len(e.Path) > len(best.Path) {
			best = e
		}
		for _, c := range e.Causes {
			walk(c)
		}
	}
	if pe, ok := AsParsingErrors(err); ok {
		for _, e := range pe {
			walk(e)
		}
		return best
	}
	if e, ok := AsParsingError(err); ok {
		walk(e)
	}
	return best
}

func isFatal(e *ParsingError) bool {
	return e != nil && (e.Code == CodeLimitExceeded || e.Code == CodeCanceled)
}

func deepestOf(errs []*ParsingError) *ParsingError {
	if len(errs) == 0 {
		return nil
	}
	return DeepestError(ParsingErrors(errs))
}
