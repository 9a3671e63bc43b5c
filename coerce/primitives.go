package coerce

import (
	"math"
	"regexp"
	"strconv"
	"strings"
	"unicode"

	"github.com/reoring/jsonish/schema"
	"github.com/reoring/jsonish/value"
)

func (s *state) null(v value.Value) *TypedValue {
	out := &TypedValue{Kind: KindNull, Target: schema.Null}
	switch x := v.(type) {
	case nil, *value.Null:
	case *value.String:
		if isNullLike(x.V) {
			out.Conditions = []Flag{StringToNull{Raw: x.V}}
		} else {
			out.Conditions = []Flag{DefaultButHadValue{Value: v}}
		}
	default:
		out.Conditions = []Flag{DefaultButHadValue{Value: v}}
	}
	return out
}

func (s *state) str(v value.Value, p Path) (*TypedValue, *ParsingError) {
	switch x := v.(type) {
	case nil, *value.Null:
		return nil, s.fail(p, CodeUnexpectedNull, v, map[string]string{"expected": "string"})
	case *value.String:
		return &TypedValue{Kind: KindString, Target: schema.String, Str: x.V}, nil
	}
	return &TypedValue{
		Kind:       KindString,
		Target:     schema.String,
		Str:        value.JSON(v),
		Conditions: []Flag{JSONToString{Value: v}},
	}, nil
}

func (s *state) number(t schema.Primitive, v value.Value, p Path) (*TypedValue, *ParsingError) {
	switch x := v.(type) {
	case nil, *value.Null:
		return nil, s.fail(p, CodeUnexpectedNull, v, map[string]string{"expected": t.String()})
	case *value.Number:
		return s.fromNumber(t, x, x.Raw, p)
	case *value.String:
		if n, ok := parseLooseNumber(x.V); ok {
			tv, err := s.fromNumber(t, n, strings.TrimSpace(x.V), p)
			if err != nil {
				return nil, err
			}
			return withFlags(tv, StringToNumber{Raw: x.V}), nil
		}
		return nil, s.fail(p, CodeUnexpectedType, v, map[string]string{"expected": t.String(), "got": strconv.Quote(x.V)})
	case *value.Array:
		if len(x.Items) == 1 {
			return s.single(t, x, p)
		}
	}
	return nil, s.fail(p, CodeUnexpectedType, v, map[string]string{"expected": t.String(), "got": describe(v)})
}

func (s *state) fromNumber(t schema.Primitive, n *value.Number, raw string, p Path) (*TypedValue, *ParsingError) {
	if t == schema.Float {
		f := n.Float
		if n.IsInt {
			f = float64(n.Int)
		}
		return &TypedValue{Kind: KindFloat, Target: t, Float: f}, nil
	}
	if n.IsInt {
		return &TypedValue{Kind: KindInt, Target: t, Int: n.Int}, nil
	}
	if n.Float == math.Trunc(n.Float) && math.Abs(n.Float) < 1<<63 {
		return &TypedValue{Kind: KindInt, Target: t, Int: int64(n.Float)}, nil
	}
	r := math.Round(n.Float)
	if math.Abs(r) >= 1<<63 {
		return nil, s.fail(p, CodeUnexpectedType, n, map[string]string{"expected": t.String(), "got": raw})
	}
	return &TypedValue{Kind: KindInt, Target: t, Int: int64(r), Conditions: []Flag{FloatToInt{Raw: raw}}}, nil
}

var thousands = regexp.MustCompile(`^\d{1,3}(,\d{3})+(\.\d+)?$`)

// parseLooseNumber reads numbers the way models write them: surrounding
// space, a leading "$", a trailing "%" and thousands separators.
func parseLooseNumber(s string) (*value.Number, bool) {
	t := strings.TrimSpace(s)
	sign := ""
	if t != "" && (t[0] == '-' || t[0] == '+') {
		sign, t = t[:1], t[1:]
	}
	t = strings.TrimPrefix(t, "$")
	t = strings.TrimSpace(strings.TrimSuffix(t, "%"))
	if thousands.MatchString(t) {
		t = strings.ReplaceAll(t, ",", "")
	}
	if sign == "+" {
		sign = ""
	}
	return value.ParseNumber(sign + t)
}

func (s *state) boolean(v value.Value, p Path) (*TypedValue, *ParsingError) {
	switch x := v.(type) {
	case nil, *value.Null:
		return nil, s.fail(p, CodeUnexpectedNull, v, map[string]string{"expected": "bool"})
	case *value.Bool:
		return &TypedValue{Kind: KindBool, Target: schema.Bool, Bool: x.V}, nil
	case *value.String:
		switch strings.ToLower(strings.TrimSpace(x.V)) {
		case "true":
			return &TypedValue{Kind: KindBool, Target: schema.Bool, Bool: true, Conditions: []Flag{StringToBool{Raw: x.V}}}, nil
		case "false":
			return &TypedValue{Kind: KindBool, Target: schema.Bool, Bool: false, Conditions: []Flag{StringToBool{Raw: x.V}}}, nil
		}
		return nil, s.fail(p, CodeUnexpectedType, v, map[string]string{"expected": "bool", "got": strconv.Quote(x.V)})
	case *value.Array:
		if len(x.Items) == 1 {
			return s.single(schema.Bool, x, p)
		}
	}
	return nil, s.fail(p, CodeUnexpectedType, v, map[string]string{"expected": "bool", "got": describe(v)})
}

// single coerces the only item of arr against t.
func (s *state) single(t schema.Type, arr *value.Array, p Path) (*TypedValue, *ParsingError) {
	tv, err := s.coerce(t, arr.Items[0], p.Index(0))
	if err != nil {
		return nil, err
	}
	return withFlags(tv, SingleToArray{}), nil
}

// scalarText returns the text of a scalar and whether it had to be
// serialized.
func scalarText(v value.Value) (string, bool, bool) {
	switch x := v.(type) {
	case *value.String:
		return x.V, false, true
	case *value.Number:
		return x.Raw, true, true
	case *value.Bool:
		return strconv.FormatBool(x.V), true, true
	}
	return "", false, false
}

func (s *state) literal(t *schema.Literal, v value.Value, p Path) (*TypedValue, *ParsingError) {
	mismatch := func(got string) *ParsingError {
		return s.fail(p, CodeUnexpectedType, v, map[string]string{"expected": t.String(), "got": got})
	}
	switch lit := t.Value.(type) {
	case string:
		if v == nil || value.IsNull(v) {
			return nil, s.fail(p, CodeUnexpectedNull, v, map[string]string{"expected": t.String()})
		}
		if arr, ok := v.(*value.Array); ok && len(arr.Items) == 1 {
			return s.single(t, arr, p)
		}
		raw, serialized, ok := scalarText(v)
		if !ok {
			return nil, mismatch(describe(v))
		}
		var flags []Flag
		if serialized {
			flags = append(flags, JSONToString{Value: v})
		}
		switch {
		case raw == lit:
		case normalize(raw) != "" && normalize(raw) == normalize(lit):
			flags = append(flags, StrippedNonAlphaNumeric{Raw: raw})
		default:
			return nil, mismatch(strconv.Quote(raw))
		}
		return &TypedValue{Kind: KindLiteral, Target: t, Lit: lit, Conditions: flags}, nil
	case int64:
		tv, err := s.number(schema.Int, v, p)
		if err != nil {
			return nil, err
		}
		if tv.Int != lit {
			return nil, mismatch(strconv.FormatInt(tv.Int, 10))
		}
		return &TypedValue{Kind: KindLiteral, Target: t, Lit: lit, Conditions: tv.Conditions}, nil
	case bool:
		tv, err := s.boolean(v, p)
		if err != nil {
			return nil, err
		}
		if tv.Bool != lit {
			return nil, mismatch(strconv.FormatBool(tv.Bool))
		}
		return &TypedValue{Kind: KindLiteral, Target: t, Lit: lit, Conditions: tv.Conditions}, nil
	}
	return nil, s.fail(p, CodeNotImplemented, v, map[string]string{"expected": t.String()})
}

func (s *state) enum(t *schema.Enum, v value.Value, p Path) (*TypedValue, *ParsingError) {
	def, ok := s.reg.Enum(t.Name)
	if !ok {
		return nil, s.fail(p, CodeNotImplemented, v, map[string]string{"expected": "enum " + t.Name})
	}
	switch x := v.(type) {
	case nil, *value.Null:
		return nil, s.fail(p, CodeUnexpectedNull, v, map[string]string{"expected": t.Name})
	case *value.Array:
		if len(x.Items) == 1 {
			return s.single(t, x, p)
		}
	}
	raw, serialized, ok := scalarText(v)
	if !ok {
		return nil, s.fail(p, CodeUnexpectedType, v, map[string]string{"expected": t.Name, "got": describe(v)})
	}
	member, flag, ok := matchEnum(def, raw)
	if !ok {
		return nil, s.fail(p, CodeUnknownEnumValue, v, map[string]string{
			"expected": t.Name,
			"got":      strconv.Quote(raw),
			"members":  strings.Join(def.Names(), ", "),
		})
	}
	var flags []Flag
	if serialized {
		flags = append(flags, JSONToString{Value: v})
	}
	if flag != nil {
		flags = append(flags, flag)
	}
	return &TypedValue{Kind: KindEnum, Target: t, Name: def.Name, Str: member, Conditions: flags}, nil
}

// matchEnum finds the member raw refers to: exact name or alias, then the
// same ignoring case and punctuation, then the longest member whose words
// occur in raw.
func matchEnum(def *schema.EnumDef, raw string) (string, Flag, bool) {
	for _, m := range def.Values {
		if raw == m.Name || (m.Alias != "" && raw == m.Alias) {
			return m.Name, nil, true
		}
	}
	if n := normalize(raw); n != "" {
		for _, m := range def.Values {
			if normalize(m.Name) == n || (m.Alias != "" && normalize(m.Alias) == n) {
				return m.Name, StrippedNonAlphaNumeric{Raw: raw}, true
			}
		}
	}
	hay := words(raw)
	best, bestLen, unique := "", 0, false
	for _, m := range def.Values {
		for _, label := range []string{m.Name, m.Alias} {
			w := words(label)
			if len(w) == 0 || !containsSeq(hay, w) {
				continue
			}
			switch {
			case len(w) > bestLen:
				best, bestLen, unique = m.Name, len(w), true
			case len(w) == bestLen && best != m.Name:
				unique = false
			}
		}
	}
	if best != "" && unique {
		return best, SubstringMatch{Raw: raw}, true
	}
	return "", nil, false
}

// normalize keeps lower-cased letters and digits.
func normalize(s string) string {
	var b strings.Builder
	for _, r := range s {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(unicode.ToLower(r))
		}
	}
	return b.String()
}

// words splits s into lower-cased words at punctuation, spaces and
// camelCase boundaries.
func words(s string) []string {
	var (
		out  []string
		cur  []rune
		prev rune
	)
	flush := func() {
		if len(cur) > 0 {
			out = append(out, strings.ToLower(string(cur)))
			cur = cur[:0]
		}
	}
	for _, r := range s {
		switch {
		case !unicode.IsLetter(r) && !unicode.IsDigit(r):
			flush()
		case unicode.IsUpper(r) && unicode.IsLower(prev):
			flush()
			cur = append(cur, r)
		default:
			cur = append(cur, r)
		}
		prev = r
	}
	flush()
	return out
}

func containsSeq(hay, needle []string) bool {
	for i := 0; i+len(needle) <= len(hay); i++ {
		match := true
		for j := range needle {
			if hay[i+j] != needle[j] {
				match = false
				break
			}
		}
		if match {
			return true
		}
	}
	return false
}
