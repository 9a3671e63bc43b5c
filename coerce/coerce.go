// Package coerce reconciles untyped parser output with a target type. Every
// heuristic applied along the way is recorded as a Flag on the resulting
// TypedValue, and competing interpretations are ranked by their Score.
package coerce

import (
	"context"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/reoring/jsonish/i18n"
	"github.com/reoring/jsonish/infer"
	"github.com/reoring/jsonish/schema"
	"github.com/reoring/jsonish/value"
)

// Coerce reconciles v with target. A nil v means no value was available. reg
// resolves class and enum names and may be nil when target references none.
//
// On failure the error is a *ParsingError carrying the full path and the
// offending value.
func Coerce(ctx context.Context, reg *schema.Registry, target schema.Type, v value.Value, opts ...Options) (*TypedValue, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	if reg == nil {
		reg = schema.NewRegistry()
	}
	o := pick(opts).normalized()
	s := &state{
		ctx:  ctx,
		reg:  reg,
		opts: o,
		tr:   o.Translator,
		log:  o.Logger,
		memo: map[memoKey]memoEntry{},
	}
	if err := s.checkCtx(nil); err != nil {
		return nil, err
	}
	tv, err := s.coerce(target, v, nil)
	if err != nil {
		s.log.Debug("coercion failed",
			zap.String("code", err.Code),
			zap.String("path", err.Pointer()),
			zap.Int("attempts", s.attempts))
		return nil, err
	}
	return tv, nil
}

type memoKey struct {
	t    schema.Type
	v    value.Value
	path string
}

type memoEntry struct {
	tv  *TypedValue
	err *ParsingError
}

// state is owned by a single Coerce call.
type state struct {
	ctx      context.Context
	reg      *schema.Registry
	opts     Options
	tr       i18n.Translator
	log      *zap.Logger
	depth    int
	attempts int
	memo     map[memoKey]memoEntry
}

func (s *state) coerce(t schema.Type, v value.Value, p Path) (*TypedValue, *ParsingError) {
	if s.depth >= s.opts.MaxDepth {
		return nil, s.limit(p, v, "depth "+strconv.Itoa(s.opts.MaxDepth))
	}
	key := memoKey{t: t, v: v, path: p.Pointer()}
	if e, ok := s.memo[key]; ok {
		return e.tv, e.err
	}
	s.depth++
	tv, err := s.dispatch(t, v, p)
	s.depth--
	s.memo[key] = memoEntry{tv: tv, err: err}
	return tv, err
}

func (s *state) dispatch(t schema.Type, v value.Value, p Path) (*TypedValue, *ParsingError) {
	switch tt := t.(type) {
	case *schema.Constrained:
		tv, err := s.coerce(tt.Base, v, p)
		if err != nil {
			return nil, err
		}
		out := *tv
		out.Constraints = append(append([]schema.Constraint(nil), tv.Constraints...), tt.Constraints...)
		return &out, nil
	case *schema.Optional:
		return s.optional(tt, v, p)
	case *schema.Union:
		return s.union(tt, v, p)
	}

	switch w := v.(type) {
	case *value.Markdown:
		inner, count := w.Inner, 1
		for {
			md, ok := inner.(*value.Markdown)
			if !ok {
				break
			}
			inner, count = md.Inner, count+1
		}
		tv, err := s.coerce(t, inner, p)
		if err != nil {
			return nil, err
		}
		return withFlags(tv, ObjectFromMarkdown{Count: count}), nil
	case *value.FixedJSON:
		tv, err := s.coerce(t, w.Inner, p)
		if err != nil {
			return nil, err
		}
		return withFlags(tv, ObjectFromFixedJSON{Fixes: w.Fixes}), nil
	case *value.AnyOf:
		return s.anyOf(t, w, p)
	}

	switch tt := t.(type) {
	case schema.Primitive:
		switch tt {
		case schema.Null:
			return s.null(v), nil
		case schema.String:
			return s.str(v, p)
		case schema.Int, schema.Float:
			return s.number(tt, v, p)
		case schema.Bool:
			return s.boolean(v, p)
		case schema.Media:
			return nil, s.fail(p, CodeUnsupportedMediaCoercion, v, nil)
		}
	case *schema.Literal:
		return s.literal(tt, v, p)
	case *schema.Enum:
		return s.enum(tt, v, p)
	case *schema.Class:
		return s.class(tt, v, p)
	case *schema.List:
		return s.list(tt, v, p)
	case *schema.Map:
		return s.mapping(tt, v, p)
	case *schema.Tuple:
		return s.tuple(tt, v, p)
	}
	return nil, s.fail(p, CodeNotImplemented, v, map[string]string{"expected": typeName(t)})
}

// optional never fails except on limits and cancellation.
func (s *state) optional(t *schema.Optional, v value.Value, p Path) (*TypedValue, *ParsingError) {
	if v == nil {
		return &TypedValue{Kind: KindNull, Target: t, Conditions: []Flag{OptionalDefaultFromNoValue{}}}, nil
	}
	if value.IsNull(v) {
		return &TypedValue{Kind: KindNull, Target: t}, nil
	}
	tv, err := s.coerce(t.Inner, v, p)
	if err == nil {
		return tv, nil
	}
	if isFatal(err) {
		return nil, err
	}
	if str, ok := value.Unwrap(v).(*value.String); ok && isNullLike(str.V) {
		return &TypedValue{Kind: KindNull, Target: t, Conditions: []Flag{StringToNull{Raw: str.V}}}, nil
	}
	s.log.Debug("optional value discarded", zap.String("path", p.Pointer()), zap.String("code", err.Code))
	return &TypedValue{Kind: KindNull, Target: t, Conditions: []Flag{DefaultButHadUnparseableValue{Err: err}}}, nil
}

func (s *state) union(t *schema.Union, v value.Value, p Path) (*TypedValue, *ParsingError) {
	attempts := make([]Attempt, 0, len(t.Variants))
	best, bestScore, ties := -1, 0, 0
	for i, m := range t.Variants {
		if err := s.tick(p, v); err != nil {
			return nil, err
		}
		tv, err := s.coerce(m, v, p)
		if isFatal(err) {
			return nil, err
		}
		attempts = append(attempts, Attempt{Value: tv, Err: err})
		if err != nil {
			continue
		}
		if s.opts.Ambiguity == AmbiguityFirstMatch {
			return withFlags(tv, FirstMatch{Index: i, Attempts: attempts}), nil
		}
		switch sc := tv.Score(); {
		case best < 0 || sc < bestScore:
			best, bestScore, ties = i, sc, 0
		case sc == bestScore:
			ties++
		}
	}
	data := map[string]string{"expected": typeName(t), "got": describe(v)}
	if best < 0 {
		e := s.fail(p, CodeNoMatchingUnionVariant, v, data)
		for _, a := range attempts {
			e.Causes = append(e.Causes, a.Err)
		}
		return nil, e
	}
	if ties > 0 && s.opts.Ambiguity == AmbiguityError {
		return nil, s.fail(p, CodeUnionAmbiguous, v, data)
	}
	s.log.Debug("union variant selected",
		zap.String("path", p.Pointer()),
		zap.Int("index", best),
		zap.Int("score", bestScore))
	return withFlags(attempts[best].Value, UnionMatch{Index: best, Attempts: attempts}), nil
}

// anyOf resolves competing parses of the same text.
func (s *state) anyOf(t schema.Type, a *value.AnyOf, p Path) (*TypedValue, *ParsingError) {
	if t == schema.String {
		for _, c := range a.Candidates {
			if str, ok := c.(*value.String); ok {
				return &TypedValue{Kind: KindString, Target: t, Str: str.V}, nil
			}
		}
		return &TypedValue{Kind: KindString, Target: t, Str: a.Raw}, nil
	}
	var (
		best      *TypedValue
		bestScore int
		errs      []*ParsingError
	)
	for _, c := range a.Candidates {
		if err := s.tick(p, a); err != nil {
			return nil, err
		}
		tv, err := s.coerce(t, c, p)
		if isFatal(err) {
			return nil, err
		}
		if err != nil {
			errs = append(errs, err)
			continue
		}
		if sc := tv.Score(); best == nil || sc < bestScore {
			best, bestScore = tv, sc
		}
	}
	if best != nil {
		return best, nil
	}
	tv, err := s.coerce(t, value.NewString(a.Raw), p)
	if err == nil {
		return tv, nil
	}
	if isFatal(err) {
		return nil, err
	}
	return nil, deepestOf(append(errs, err))
}

func (s *state) fail(p Path, code string, v value.Value, data map[string]string) *ParsingError {
	return &ParsingError{Path: p, Code: code, Message: s.tr.Message(code, data), Value: v, Params: data}
}

func (s *state) limit(p Path, v value.Value, what string) *ParsingError {
	s.log.Debug("coercion limit exceeded", zap.String("path", p.Pointer()), zap.String("limit", what))
	return s.fail(p, CodeLimitExceeded, v, map[string]string{"limit": what})
}

func (s *state) checkCtx(p Path) *ParsingError {
	if err := s.ctx.Err(); err != nil {
		return &ParsingError{Path: p, Code: CodeCanceled, Message: s.tr.Message(CodeCanceled, nil), Err: err}
	}
	return nil
}

// tick charges one attempt against the budget.
func (s *state) tick(p Path, v value.Value) *ParsingError {
	if err := s.checkCtx(p); err != nil {
		return err
	}
	s.attempts++
	if s.attempts > s.opts.MaxUnionAttempts {
		return s.limit(p, v, "union attempts "+strconv.Itoa(s.opts.MaxUnionAttempts))
	}
	return nil
}

func typeName(t schema.Type) string {
	if t == nil {
		return "<nil>"
	}
	return t.String()
}

// describe names the shape of v for messages.
func describe(v value.Value) string {
	if v == nil {
		return "no value"
	}
	return infer.Of(v).String()
}

func isNullLike(s string) bool {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "null", "none", "nil", "undefined":
		return true
	}
	return false
}
