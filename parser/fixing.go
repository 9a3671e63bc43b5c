package parser

import (
	"fmt"
	"strconv"
	"strings"
	"unicode/utf16"
	"unicode/utf8"

	"github.com/reoring/jsonish/value"
)

// place tells a scalar where it sits so unquoted text knows where to stop.
type place int

const (
	ctxTop place = iota
	ctxObjectKey
	ctxObjectValue
	ctxArray
)

// fixer is a tolerant recursive-descent JSON reader. It never fails on
// malformed input: every deviation from JSON is repaired and recorded.
type fixer struct {
	s        string
	i        int
	depth    int
	maxDepth int
	fixes    []value.Fix
}

// repair reads every top-level value in s. The only error is a depth limit.
func repair(s string, maxDepth int) ([]value.Value, []value.Fix, error) {
	f := &fixer{s: s, maxDepth: maxDepth}
	var out []value.Value
	for {
		f.skipSpace()
		if f.eof() {
			break
		}
		switch c := f.peek(); c {
		case '}', ']', ',', ':':
			f.fix(value.FixStrayDelimiter)
			f.i++
			continue
		}
		v, err := f.value(ctxTop)
		if err != nil {
			return nil, nil, err
		}
		if v != nil {
			out = append(out, v)
		}
	}
	return out, f.fixes, nil
}

func (f *fixer) eof() bool  { return f.i >= len(f.s) }
func (f *fixer) peek() byte { return f.s[f.i] }

func (f *fixer) fix(k value.FixKind) {
	f.fixes = append(f.fixes, value.Fix{Kind: k, Offset: f.i})
}

// skipSpace skips whitespace and // or /* */ comments.
func (f *fixer) skipSpace() {
	for !f.eof() {
		switch c := f.peek(); {
		case c == ' ' || c == '\t' || c == '\n' || c == '\r':
			f.i++
		case c == '/' && f.i+1 < len(f.s) && f.s[f.i+1] == '/':
			f.fix(value.FixComment)
			end := strings.IndexByte(f.s[f.i:], '\n')
			if end < 0 {
				f.i = len(f.s)
			} else {
				f.i += end + 1
			}
		case c == '/' && f.i+1 < len(f.s) && f.s[f.i+1] == '*':
			f.fix(value.FixComment)
			end := strings.Index(f.s[f.i+2:], "*/")
			if end < 0 {
				f.i = len(f.s)
			} else {
				f.i += 2 + end + 2
			}
		default:
			return
		}
	}
}

func (f *fixer) value(ctx place) (value.Value, error) {
	switch f.peek() {
	case '{':
		return f.object()
	case '[':
		return f.array()
	case '"':
		return value.NewString(f.quoted('"', ctx)), nil
	case '\'', '`':
		f.fix(value.FixSingleQuoted)
		return value.NewString(f.quoted(f.peek(), ctx)), nil
	}
	return f.unquoted(ctx), nil
}

func (f *fixer) enter() error {
	f.depth++
	if f.maxDepth > 0 && f.depth > f.maxDepth {
		return fmt.Errorf("%w: max depth %d exceeded at offset %d", ErrLimitExceeded, f.maxDepth, f.i)
	}
	return nil
}

func (f *fixer) object() (value.Value, error) {
	if err := f.enter(); err != nil {
		return nil, err
	}
	defer func() { f.depth-- }()
	f.i++ // {
	obj := &value.Object{}
	needComma := false
	for {
		f.skipSpace()
		if f.eof() {
			f.fix(value.FixUnclosedObject)
			return obj, nil
		}
		switch f.peek() {
		case '}':
			f.i++
			return obj, nil
		case ']':
			// Mismatched closer: close this object and let the parent consume it.
			f.fix(value.FixUnclosedObject)
			return obj, nil
		case ',':
			f.i++
			if !needComma {
				f.fix(value.FixStrayDelimiter)
				continue
			}
			needComma = false
			f.skipSpace()
			if !f.eof() && f.peek() == '}' {
				f.fix(value.FixTrailingComma)
			}
			continue
		case ':':
			f.fix(value.FixStrayDelimiter)
			f.i++
			continue
		}
		if needComma {
			f.fix(value.FixMissingComma)
		}

		start := f.i
		key, ok := f.key()
		if !ok {
			// Something that cannot start a key, e.g. a nested container.
			if _, err := f.value(ctxObjectValue); err != nil {
				return nil, err
			}
			if f.i == start {
				f.i++
			}
			f.fix(value.FixStrayDelimiter)
			continue
		}

		f.skipSpace()
		if f.eof() {
			f.fix(value.FixUnclosedObject)
			return obj, nil
		}
		if f.peek() == ':' {
			f.i++
		} else {
			f.fix(value.FixMissingColon)
		}
		f.skipSpace()
		if f.eof() {
			// Truncated after the key: the entry has no value yet.
			f.fix(value.FixUnclosedObject)
			return obj, nil
		}
		switch f.peek() {
		case ',', '}', ']':
			obj.Entries = append(obj.Entries, value.E(key, value.NewNull()))
			needComma = true
			continue
		}
		v, err := f.value(ctxObjectValue)
		if err != nil {
			return nil, err
		}
		obj.Entries = append(obj.Entries, value.E(key, v))
		needComma = true
	}
}

func (f *fixer) array() (value.Value, error) {
	if err := f.enter(); err != nil {
		return nil, err
	}
	defer func() { f.depth-- }()
	f.i++ // [
	arr := &value.Array{}
	needComma := false
	for {
		f.skipSpace()
		if f.eof() {
			f.fix(value.FixUnclosedArray)
			return arr, nil
		}
		switch f.peek() {
		case ']':
			f.i++
			return arr, nil
		case '}':
			f.fix(value.FixUnclosedArray)
			return arr, nil
		case ',':
			f.i++
			if !needComma {
				f.fix(value.FixStrayDelimiter)
				continue
			}
			needComma = false
			f.skipSpace()
			if !f.eof() && f.peek() == ']' {
				f.fix(value.FixTrailingComma)
			}
			continue
		case ':':
			f.fix(value.FixStrayDelimiter)
			f.i++
			continue
		}
		if needComma {
			f.fix(value.FixMissingComma)
		}
		start := f.i
		v, err := f.value(ctxArray)
		if err != nil {
			return nil, err
		}
		if f.i == start {
			f.fix(value.FixStrayDelimiter)
			f.i++
			continue
		}
		arr.Items = append(arr.Items, v)
		needComma = true
	}
}

// key reads an object key. ok is false when the next byte cannot start one.
func (f *fixer) key() (string, bool) {
	switch c := f.peek(); c {
	case '"':
		return f.quoted('"', ctxObjectKey), true
	case '\'', '`':
		f.fix(value.FixSingleQuoted)
		return f.quoted(c, ctxObjectKey), true
	case '{', '[':
		return "", false
	}
	start := f.i
	for !f.eof() {
		c := f.peek()
		if c == ':' || c == ',' || c == '}' || c == ']' || c == '\n' || c == '{' || c == '[' {
			break
		}
		f.i++
	}
	k := strings.TrimSpace(f.s[start:f.i])
	if k == "" {
		return "", false
	}
	f.fixes = append(f.fixes, value.Fix{Kind: value.FixUnquotedKey, Offset: start})
	return k, true
}

// quoted reads a string opened by q. A closing quote only counts when what
// follows it could legally follow a string in ctx; otherwise it is content.
func (f *fixer) quoted(q byte, ctx place) string {
	f.i++ // opening quote
	var b strings.Builder
	sawNewline := false
	for {
		if f.eof() {
			f.fix(value.FixUnterminatedString)
			return b.String()
		}
		c := f.peek()
		switch {
		case c == '\\':
			f.escape(&b)
		case c == q:
			if f.closesString(ctx) {
				f.i++
				return b.String()
			}
			f.fix(value.FixUnescapedQuote)
			b.WriteByte(c)
			f.i++
		case c == '\n':
			if !sawNewline {
				f.fix(value.FixRawNewline)
				sawNewline = true
			}
			b.WriteByte(c)
			f.i++
		default:
			b.WriteByte(c)
			f.i++
		}
	}
}

// closesString reports whether the quote at f.i ends the string.
func (f *fixer) closesString(ctx place) bool {
	if ctx == ctxObjectKey {
		return true
	}
	j := f.i + 1
	for j < len(f.s) && (f.s[j] == ' ' || f.s[j] == '\t') {
		j++
	}
	if j >= len(f.s) {
		return true
	}
	switch c := f.s[j]; c {
	case '\n', '\r':
		return true
	case ',', '}', ']':
		return ctx != ctxTop
	case '"', '\'':
		// A missing comma before the next element or key.
		return ctx == ctxArray || (ctx == ctxObjectValue && f.looksLikeKey(j))
	case '/':
		return j+1 < len(f.s) && (f.s[j+1] == '/' || f.s[j+1] == '*')
	}
	return false
}

// looksLikeKey reports whether a quoted token followed by ':' starts at j.
func (f *fixer) looksLikeKey(j int) bool {
	q := f.s[j]
	k := strings.IndexByte(f.s[j+1:], q)
	if k < 0 {
		return false
	}
	m := j + 1 + k + 1
	for m < len(f.s) && (f.s[m] == ' ' || f.s[m] == '\t') {
		m++
	}
	return m < len(f.s) && f.s[m] == ':'
}

func (f *fixer) escape(b *strings.Builder) {
	f.i++ // backslash
	if f.eof() {
		f.fix(value.FixUnterminatedString)
		return
	}
	c := f.peek()
	f.i++
	switch c {
	case '"', '\\', '/', '\'', '`':
		b.WriteByte(c)
	case 'b':
		b.WriteByte('\b')
	case 'f':
		b.WriteByte('\f')
	case 'n':
		b.WriteByte('\n')
	case 'r':
		b.WriteByte('\r')
	case 't':
		b.WriteByte('\t')
	case 'u':
		r, ok := f.hex4()
		if !ok {
			b.WriteString(`\u`)
			return
		}
		if utf16.IsSurrogate(r) && strings.HasPrefix(f.s[f.i:], `\u`) {
			save := f.i
			f.i += 2
			if r2, ok := f.hex4(); ok {
				if d := utf16.DecodeRune(r, r2); d != utf8.RuneError {
					b.WriteRune(d)
					return
				}
			}
			f.i = save
		}
		b.WriteRune(r)
	default:
		b.WriteByte('\\')
		b.WriteByte(c)
	}
}

func (f *fixer) hex4() (rune, bool) {
	if f.i+4 > len(f.s) {
		return 0, false
	}
	n, err := strconv.ParseUint(f.s[f.i:f.i+4], 16, 32)
	if err != nil {
		return 0, false
	}
	f.i += 4
	return rune(n), true
}

// unquoted reads a bare scalar. JSON literals and numbers keep their type;
// anything else becomes a string.
func (f *fixer) unquoted(ctx place) value.Value {
	start := f.i
	for !f.eof() {
		c := f.peek()
		if ctx != ctxTop {
			if c == ',' || c == '\n' || c == '\r' {
				break
			}
			if ctx == ctxArray && (c == ']' || c == '}') {
				break
			}
			if ctx == ctxObjectValue && (c == '}' || c == ']') {
				break
			}
		}
		if c == '/' && f.i > start && f.i+1 < len(f.s) && f.s[f.i+1] == '/' && isSpace(f.s[f.i-1]) {
			break
		}
		f.i++
	}
	raw := strings.TrimSpace(f.s[start:f.i])
	switch raw {
	case "true":
		return value.NewBool(true)
	case "false":
		return value.NewBool(false)
	case "null":
		return value.NewNull()
	}
	if n, ok := value.ParseNumber(raw); ok && isJSONNumberish(raw) {
		return n
	}
	f.fixes = append(f.fixes, value.Fix{Kind: value.FixUnquotedValue, Offset: start})
	return value.NewString(raw)
}

func isSpace(c byte) bool { return c == ' ' || c == '\t' || c == '\n' || c == '\r' }

// isJSONNumberish rejects forms strconv accepts but no model means as a
// number, such as hex floats, Inf and underscores.
func isJSONNumberish(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		c := s[i]
		if (c >= '0' && c <= '9') || c == '-' || c == '+' || c == '.' || c == 'e' || c == 'E' {
			continue
		}
		return false
	}
	return true
}
