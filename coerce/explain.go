package coerce

import "strings"

// Explain flattens the conditions of tv and all of its descendants into
// position-qualified entries, parents before children. Each entry's Code is
// the flag name.
func Explain(tv *TypedValue) ParsingErrors {
	var out ParsingErrors
	explain(tv, nil, &out)
	return out
}

func explain(tv *TypedValue, p Path, out *ParsingErrors) {
	if tv == nil {
		return
	}
	for _, f := range tv.Conditions {
		e := &ParsingError{Path: p, Code: f.Name(), Message: f.String()}
		switch x := f.(type) {
		case ExtraKey:
			e.Value = x.Value
		case DefaultButHadValue:
			e.Value = x.Value
		case JSONToString:
			e.Value = x.Value
		case NoFields:
			e.Value = x.Value
		case ArrayItemParseError:
			e.Causes = []*ParsingError{x.Err}
		case MapKeyParseError:
			e.Causes = []*ParsingError{x.Err}
		case MapValueParseError:
			e.Causes = []*ParsingError{x.Err}
		case DefaultButHadUnparseableValue:
			e.Causes = []*ParsingError{x.Err}
		}
		*out = append(*out, e)
	}
	for i, it := range tv.Items {
		explain(it, p.Index(i), out)
	}
	for _, f := range tv.Fields {
		fp := p.Field(f.Name)
		explain(f.Key, fp, out)
		explain(f.Value, fp, out)
	}
}

// Format renders entries one per line as "pointer: name: message".
func (pe ParsingErrors) Format() string {
	var b strings.Builder
	for _, e := range pe {
		b.WriteString(e.Pointer())
		b.WriteString(": ")
		b.WriteString(e.Code)
		b.WriteString(": ")
		b.WriteString(e.Message)
		b.WriteByte('\n')
	}
	return b.String()
}
