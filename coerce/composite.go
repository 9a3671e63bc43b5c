package coerce

import (
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/reoring/jsonish/schema"
	"github.com/reoring/jsonish/value"
)

func (s *state) class(t *schema.Class, v value.Value, p Path) (*TypedValue, *ParsingError) {
	def, ok := s.reg.Class(t.Name)
	if !ok {
		return nil, s.fail(p, CodeNotImplemented, v, map[string]string{"expected": "class " + t.Name})
	}
	switch x := v.(type) {
	case *value.Object:
		return s.object(t, def, x, p)
	case nil, *value.Null:
		return nil, s.fail(p, CodeUnexpectedNull, v, map[string]string{"expected": t.Name})
	case *value.Array:
		if len(x.Items) == 1 {
			tv, err := s.single(t, x, p)
			if err == nil || isFatal(err) {
				return tv, err
			}
		}
	}
	switch len(def.Fields) {
	case 0:
		return &TypedValue{Kind: KindClass, Target: t, Name: def.Name, Conditions: []Flag{NoFields{Value: v}}}, nil
	case 1:
		f := def.Fields[0]
		fv, err := s.coerce(f.Type, v, p.Field(f.Name))
		if err != nil {
			return nil, err
		}
		return &TypedValue{
			Kind:       KindClass,
			Target:     t,
			Name:       def.Name,
			Fields:     []Field{{Name: f.Name, Value: fv}},
			Conditions: []Flag{ImpliedKey{Key: f.Name}},
		}, nil
	}
	return nil, s.fail(p, CodeUnexpectedType, v, map[string]string{"expected": t.Name, "got": describe(v)})
}

func (s *state) object(t *schema.Class, def *schema.ClassDef, obj *value.Object, p Path) (*TypedValue, *ParsingError) {
	out := &TypedValue{Kind: KindClass, Target: t, Name: def.Name}
	used := map[string]bool{}
	var missing []string
	for _, f := range def.Fields {
		key, fv, found := lookupField(obj, f)
		if found {
			used[key] = true
		}
		fp := p.Field(f.Name)
		var (
			tv  *TypedValue
			err *ParsingError
		)
		switch {
		case found:
			tv, err = s.coerce(f.Type, fv, fp)
			if err != nil && s.opts.Partial && !isFatal(err) {
				s.log.Debug("partial field defaulted", zap.String("path", fp.Pointer()), zap.String("code", err.Code))
				tv, err = withFlags(partialDefault(f.Type), DefaultButHadUnparseableValue{Err: err}), nil
			}
		case schema.IsOptional(f.Type):
			tv, err = s.coerce(f.Type, nil, fp)
		case s.opts.Partial:
			tv = partialDefault(f.Type)
		default:
			missing = append(missing, f.Name)
			continue
		}
		if err != nil {
			return nil, err
		}
		out.Fields = append(out.Fields, Field{Name: f.Name, Value: tv})
	}
	if len(missing) > 0 {
		return nil, s.fail(p, CodeMissingRequiredField, obj, map[string]string{
			"expected": def.Name,
			"key":      strings.Join(missing, ", "),
		})
	}
	for _, k := range obj.Keys() {
		if used[k] {
			continue
		}
		ev, _ := obj.Get(k)
		out.Conditions = append(out.Conditions, ExtraKey{Key: k, Value: ev})
	}
	return out, nil
}

// lookupField finds f by name, then by alias. Duplicate keys resolve to the
// last occurrence.
func lookupField(obj *value.Object, f schema.FieldDef) (string, value.Value, bool) {
	if v, ok := obj.Get(f.Name); ok {
		return f.Name, v, true
	}
	if f.Alias != "" {
		if v, ok := obj.Get(f.Alias); ok {
			return f.Alias, v, true
		}
	}
	return "", nil, false
}

// partialDefault stands in for a required field a stream has not reached
// or has cut off mid-value.
func partialDefault(t schema.Type) *TypedValue {
	flags := []Flag{DefaultFromNoValue{}}
	if _, ok := schema.Unwrap(t).(*schema.List); ok {
		return &TypedValue{Kind: KindList, Target: t, Conditions: flags}
	}
	return &TypedValue{Kind: KindNull, Target: t, Conditions: flags}
}

func (s *state) list(t *schema.List, v value.Value, p Path) (*TypedValue, *ParsingError) {
	switch x := v.(type) {
	case nil, *value.Null:
		if s.opts.Partial {
			return &TypedValue{Kind: KindList, Target: t, Conditions: []Flag{DefaultFromNoValue{}}}, nil
		}
		return nil, s.fail(p, CodeUnexpectedNull, v, map[string]string{"expected": t.String()})
	case *value.Array:
		out := &TypedValue{Kind: KindList, Target: t, Items: make([]*TypedValue, 0, len(x.Items))}
		for i, it := range x.Items {
			if err := s.checkCtx(p); err != nil {
				return nil, err
			}
			tv, err := s.coerce(t.Elem, it, p.Index(i))
			if err != nil {
				if isFatal(err) || s.opts.ListPolicy == Abort {
					return nil, err
				}
				out.Conditions = append(out.Conditions, ArrayItemParseError{Index: i, Err: err})
				continue
			}
			out.Items = append(out.Items, tv)
		}
		return out, nil
	}
	tv, err := s.coerce(t.Elem, v, p.Index(0))
	if err != nil {
		return nil, err
	}
	return &TypedValue{Kind: KindList, Target: t, Items: []*TypedValue{tv}, Conditions: []Flag{SingleToArray{}}}, nil
}

func (s *state) mapping(t *schema.Map, v value.Value, p Path) (*TypedValue, *ParsingError) {
	if !schema.IsStringKey(t.Key) {
		return nil, s.fail(p, CodeNotImplemented, v, map[string]string{"expected": "map key " + typeName(t.Key)})
	}
	obj, ok := v.(*value.Object)
	if !ok {
		if v == nil || value.IsNull(v) {
			return nil, s.fail(p, CodeUnexpectedNull, v, map[string]string{"expected": t.String()})
		}
		return nil, s.fail(p, CodeUnexpectedType, v, map[string]string{"expected": t.String(), "got": describe(v)})
	}
	out := &TypedValue{Kind: KindMap, Target: t}
	// Keys() keeps first positions and Get the last value.
	for _, k := range obj.Keys() {
		if err := s.checkCtx(p); err != nil {
			return nil, err
		}
		ev, _ := obj.Get(k)
		kp := p.Field(k)
		kt, err := s.coerce(t.Key, value.NewString(k), kp)
		if err != nil {
			if isFatal(err) || s.opts.ListPolicy == Abort {
				return nil, err
			}
			out.Conditions = append(out.Conditions, MapKeyParseError{Key: k, Err: err})
			continue
		}
		vt, err := s.coerce(t.Value, ev, kp)
		if err != nil {
			if isFatal(err) || s.opts.ListPolicy == Abort {
				return nil, err
			}
			out.Conditions = append(out.Conditions, MapValueParseError{Key: k, Err: err})
			continue
		}
		out.Fields = append(out.Fields, Field{Name: keyText(kt, k), Key: kt, Value: vt})
	}
	return out, nil
}

// keyText is the string a coerced key projects to.
func keyText(kt *TypedValue, raw string) string {
	switch kt.Kind {
	case KindString, KindEnum:
		return kt.Str
	case KindLiteral:
		if s, ok := kt.Lit.(string); ok {
			return s
		}
	}
	return raw
}

func (s *state) tuple(t *schema.Tuple, v value.Value, p Path) (*TypedValue, *ParsingError) {
	arr, ok := v.(*value.Array)
	if !ok {
		if v == nil || value.IsNull(v) {
			return nil, s.fail(p, CodeUnexpectedNull, v, map[string]string{"expected": t.String()})
		}
		if len(t.Items) == 1 {
			tv, err := s.coerce(t.Items[0], v, p.Index(0))
			if err != nil {
				return nil, err
			}
			return &TypedValue{Kind: KindTuple, Target: t, Items: []*TypedValue{tv}, Conditions: []Flag{SingleToArray{}}}, nil
		}
		return nil, s.fail(p, CodeUnexpectedType, v, map[string]string{"expected": t.String(), "got": describe(v)})
	}
	if len(arr.Items) != len(t.Items) {
		return nil, s.fail(p, CodeUnexpectedType, v, map[string]string{
			"expected": t.String(),
			"got":      "array of " + strconv.Itoa(len(arr.Items)),
		})
	}
	out := &TypedValue{Kind: KindTuple, Target: t, Items: make([]*TypedValue, len(arr.Items))}
	for i, it := range arr.Items {
		tv, err := s.coerce(t.Items[i], it, p.Index(i))
		if err != nil {
			return nil, err
		}
		out.Items[i] = tv
	}
	return out, nil
}
