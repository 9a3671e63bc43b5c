package coerce_test

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/reoring/jsonish/coerce"
	"github.com/reoring/jsonish/i18n"
	"github.com/reoring/jsonish/parser"
	"github.com/reoring/jsonish/schema"
	"github.com/reoring/jsonish/value"
)

const registryYAML = `
enums:
  Status:
    values:
      - PENDING
      - IN_PROGRESS
      - {name: DONE, alias: finished}
classes:
  Movie:
    fields:
      year: int
      score: int
  Person:
    fields:
      name: string
      age: int?
      status: Status?
  Wrapper:
    fields:
      items: int[]
  Empty: {}
  Node:
    fields:
      value: int
      next: Node?
  Item:
    fields:
      name: string
  Summary:
    fields:
      text: string
  Report:
    fields:
      title: string
      items: Item[]
      summary: Summary
  Task:
    fields:
      title: string
      status: Status
      done: bool
      tags: string[]
`

func testRegistry(t *testing.T) *schema.Registry {
	t.Helper()
	reg, err := schema.LoadYAML([]byte(registryYAML))
	if err != nil {
		t.Fatalf("LoadYAML: %v", err)
	}
	if err := reg.Validate(); err != nil {
		t.Fatalf("Validate: %v", err)
	}
	return reg
}

// run parses text and coerces it against the type expression expr.
func run(t *testing.T, expr, text string, opts ...coerce.Options) (*coerce.TypedValue, error) {
	t.Helper()
	reg := testRegistry(t)
	typ, err := schema.ParseType(expr, reg)
	if err != nil {
		t.Fatalf("ParseType(%q): %v", expr, err)
	}
	v, err := parser.Parse(text)
	if err != nil {
		t.Fatalf("Parse(%q): %v", text, err)
	}
	return coerce.Coerce(context.Background(), reg, typ, v, opts...)
}

func mustRun(t *testing.T, expr, text string, opts ...coerce.Options) *coerce.TypedValue {
	t.Helper()
	tv, err := run(t, expr, text, opts...)
	if err != nil {
		t.Fatalf("Coerce(%s, %q): %v", expr, text, err)
	}
	return tv
}

func plain(tv *coerce.TypedValue) string { return value.JSON(tv.ToPlain()) }

func errCode(t *testing.T, err error) *coerce.ParsingError {
	t.Helper()
	pe, ok := coerce.AsParsingError(err)
	if !ok {
		t.Fatalf("expected *ParsingError, got %T: %v", err, err)
	}
	return pe
}

func TestCoerce_ExactMatchHasNoFlags(t *testing.T) {
	tv := mustRun(t, "Movie", `{"year":1950,"score":70}`)
	if got := plain(tv); got != `{"year":1950,"score":70}` {
		t.Fatalf("plain = %s", got)
	}
	if tv.Score() != 0 {
		t.Fatalf("score = %d, want 0", tv.Score())
	}
	if ex := coerce.Explain(tv); len(ex) != 0 {
		t.Fatalf("unexpected conditions:\n%s", ex.Format())
	}
}

func TestCoerce_RecoveredTextMatchesClean(t *testing.T) {
	cases := []struct {
		name, expr, in, want string
	}{
		{"markdown", "map<string, string>", "prefix\n```json\n{\"k\":\"v\"}\n```\nsuffix", `{"k":"v"}`},
		{"trailing comma array", "int[]", `[1,2,3,]`, `[1,2,3]`},
		{"trailing comma object", "map<string, string>", `{"k":"v",}`, `{"k":"v"}`},
		{"loose value", "map<string, string>", `{key: value with space}`, `{"key":"value with space"}`},
		{"single quotes and comment", "map<string, int>", "{'a': 1, // one\n 'b': 2}", `{"a":1,"b":2}`},
		{"several documents as list", "map<string, int>[]", `{"a":1} {"b":2}`, `[{"a":1},{"b":2}]`},
		{"several documents as one", "map<string, int>", `{"a":1} {"b":2}`, `{"a":1}`},
		{"truncated", "map<string, string>", `{"key": "value`, `{"key":"value"}`},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := plain(mustRun(t, tc.expr, tc.in)); got != tc.want {
				t.Fatalf("got %s, want %s", got, tc.want)
			}
		})
	}
}

func TestCoerce_ProvenanceFlags(t *testing.T) {
	md := mustRun(t, "Movie", "Sure:\n```json\n{\"year\":1950,\"score\":70}\n```")
	if f, ok := coerce.FindFlag[coerce.ObjectFromMarkdown](md); !ok || f.Count != 1 {
		t.Fatalf("want ObjectFromMarkdown, got %v", md.Conditions)
	}
	if md.Score() != 0 {
		t.Fatalf("markdown extraction should be free, score = %d", md.Score())
	}

	fixed := mustRun(t, "int[]", `[1,2,3,]`)
	f, ok := coerce.FindFlag[coerce.ObjectFromFixedJSON](fixed)
	if !ok || !value.HasFix(f.Fixes, value.FixTrailingComma) {
		t.Fatalf("want ObjectFromFixedJSON with trailing comma, got %v", fixed.Conditions)
	}
}

func TestCoerce_Primitives(t *testing.T) {
	cases := []struct {
		name, expr, in, want, flags string
	}{
		{"float string to int", "int", `"123.45"`, `123`, "float_to_int,string_to_number"},
		{"float to int rounds", "int", `2.5`, `3`, "float_to_int"},
		{"integral float", "int", `4.0`, `4`, ""},
		{"int string", "int", `"42"`, `42`, "string_to_number"},
		{"money", "float", `"$1,234.50"`, `1234.5`, "string_to_number"},
		{"percent", "int", `"45%"`, `45`, "string_to_number"},
		{"thousands", "int", `"-1,234"`, `-1234`, "string_to_number"},
		{"int to float", "float", `3`, `3`, ""},
		{"padded bool", "bool", `" True "`, `true`, "string_to_bool"},
		{"bare bool word", "bool", `FALSE`, `false`, "string_to_bool"},
		{"native bool", "bool", `true`, `true`, ""},
		{"single element", "int", `[7]`, `7`, "single_to_array"},
		{"number to string", "string", `12.50`, `"12.50"`, "json_to_string"},
		{"object to string", "string", `{"a": 1}`, `"{\"a\":1}"`, "json_to_string"},
		{"string", "string", `"hi"`, `"hi"`, ""},
		{"null from value", "null", `5`, `null`, "default_but_had_value"},
		{"null from word", "null", `"None"`, `null`, "string_to_null"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			tv := mustRun(t, tc.expr, tc.in)
			if got := plain(tv); got != tc.want {
				t.Fatalf("got %s, want %s", got, tc.want)
			}
			var names []string
			for _, f := range tv.Conditions {
				names = append(names, f.Name())
			}
			if got := strings.Join(names, ","); got != tc.flags {
				t.Fatalf("flags = [%s], want [%s]", got, tc.flags)
			}
		})
	}
}

func TestCoerce_PrimitiveErrors(t *testing.T) {
	cases := []struct {
		name, expr, in, code string
	}{
		{"words to int", "int", `"12 apples"`, coerce.CodeUnexpectedType},
		{"null to int", "int", `null`, coerce.CodeUnexpectedNull},
		{"object to bool", "bool", `{"a":1}`, coerce.CodeUnexpectedType},
		{"yes to bool", "bool", `"yes"`, coerce.CodeUnexpectedType},
		{"null to string", "string", `null`, coerce.CodeUnexpectedNull},
		{"media", "media", `"http://x/y.png"`, coerce.CodeUnsupportedMediaCoercion},
		{"two items to int", "int", `[1, 2]`, coerce.CodeUnexpectedType},
		{"int literal mismatch", "3", `4`, coerce.CodeUnexpectedType},
		{"string literal mismatch", `"yes"`, `"no"`, coerce.CodeUnexpectedType},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := run(t, tc.expr, tc.in)
			if got := errCode(t, err).Code; got != tc.code {
				t.Fatalf("code = %s, want %s (%v)", got, tc.code, err)
			}
		})
	}
}

func TestCoerce_Literals(t *testing.T) {
	tv := mustRun(t, `"yes" | "no"`, `"YES"`)
	if plain(tv) != `"yes"` {
		t.Fatalf("got %s", plain(tv))
	}
	if _, ok := coerce.FindFlag[coerce.StrippedNonAlphaNumeric](tv); !ok {
		t.Fatalf("want StrippedNonAlphaNumeric, got %v", tv.Conditions)
	}
	n := mustRun(t, "3", `"3"`)
	if n.Kind != coerce.KindLiteral || n.Lit != int64(3) {
		t.Fatalf("int literal = %+v", n)
	}
	b := mustRun(t, "true", `"true"`)
	if _, ok := coerce.FindFlag[coerce.StringToBool](b); !ok || b.Lit != true {
		t.Fatalf("bool literal = %+v", b)
	}
}

func TestCoerce_Enum(t *testing.T) {
	cases := []struct {
		in, want, flag string
	}{
		{`"PENDING"`, "PENDING", ""},
		{`"finished"`, "DONE", ""},
		{`"in-progress"`, "IN_PROGRESS", "stripped_non_alphanumeric"},
		{`"Done."`, "DONE", "stripped_non_alphanumeric"},
		{`"The task is done now"`, "DONE", "substring_match"},
		{`"It is still in progress, not pending review"`, "IN_PROGRESS", "substring_match"},
	}
	for _, tc := range cases {
		tv := mustRun(t, "Status", tc.in)
		if tv.Kind != coerce.KindEnum || tv.Str != tc.want || tv.Name != "Status" {
			t.Fatalf("%s: got %+v, want %s", tc.in, tv, tc.want)
		}
		var names []string
		for _, f := range tv.Conditions {
			names = append(names, f.Name())
		}
		if (tc.flag == "" && len(names) != 0) || (tc.flag != "" && (len(names) != 1 || names[0] != tc.flag)) {
			t.Fatalf("%s: flags = %v, want %q", tc.in, names, tc.flag)
		}
	}

	for _, in := range []string{`"maybe"`, `"pending or done"`} {
		_, err := run(t, "Status", in)
		pe := errCode(t, err)
		if pe.Code != coerce.CodeUnknownEnumValue {
			t.Fatalf("%s: code = %s", in, pe.Code)
		}
		if pe.Params["members"] != "PENDING, IN_PROGRESS, DONE" {
			t.Fatalf("%s: members = %q", in, pe.Params["members"])
		}
	}
}

func TestCoerce_ClassHeuristics(t *testing.T) {
	extra := mustRun(t, "Movie", `{"year":1,"score":2,"extra":{"a":1}}`)
	ek, ok := coerce.FindFlag[coerce.ExtraKey](extra)
	if !ok || ek.Key != "extra" {
		t.Fatalf("want ExtraKey extra, got %v", extra.Conditions)
	}
	if ex := coerce.Explain(extra); len(ex) != 1 || !strings.Contains(ex[0].Message, "{a: int}") {
		t.Fatalf("explain = %q", ex.Format())
	}

	implied := mustRun(t, "Wrapper", `[1, 2, 3]`)
	if plain(implied) != `{"items":[1,2,3]}` {
		t.Fatalf("implied = %s", plain(implied))
	}
	if _, ok := coerce.FindFlag[coerce.ImpliedKey](implied); !ok {
		t.Fatalf("want ImpliedKey, got %v", implied.Conditions)
	}

	wrapped := mustRun(t, "Movie", `[{"year":1,"score":2}]`)
	if _, ok := coerce.FindFlag[coerce.SingleToArray](wrapped); !ok || plain(wrapped) != `{"year":1,"score":2}` {
		t.Fatalf("single-element array unwrap failed: %s %v", plain(wrapped), wrapped.Conditions)
	}

	empty := mustRun(t, "Empty", `"anything"`)
	if _, ok := coerce.FindFlag[coerce.NoFields](empty); !ok || plain(empty) != `{}` {
		t.Fatalf("no fields = %s %v", plain(empty), empty.Conditions)
	}

	person := mustRun(t, "Person", `{"name": "Ada"}`)
	if plain(person) != `{"name":"Ada","age":null,"status":null}` {
		t.Fatalf("person = %s", plain(person))
	}
	age, _ := person.Get("age")
	if _, ok := coerce.FindFlag[coerce.OptionalDefaultFromNoValue](age); !ok {
		t.Fatalf("absent optional should be flagged, got %v", age.Conditions)
	}
	explicit := mustRun(t, "Person", `{"name": "Ada", "age": null}`)
	if age, _ := explicit.Get("age"); len(age.Conditions) != 0 {
		t.Fatalf("explicit null should not be flagged, got %v", age.Conditions)
	}
}

func TestCoerce_OptionalExplicitNull(t *testing.T) {
	// A null the model wrote is an exact match; only an absent value is flagged.
	tv := mustRun(t, "int?", `null`)
	if tv.Kind != coerce.KindNull || len(tv.Conditions) != 0 || tv.Score() != 0 {
		t.Fatalf("explicit null = %+v", tv)
	}
	person := mustRun(t, "Person", `{"name": "Ada", "age": null, "status": null}`)
	if person.Score() != 0 {
		t.Fatalf("explicit nulls scored %d:\n%s", person.Score(), coerce.Explain(person).Format())
	}
	absent := mustRun(t, "Person", `{"name": "Ada"}`)
	for _, name := range []string{"age", "status"} {
		f, _ := absent.Get(name)
		if _, ok := coerce.FindFlag[coerce.OptionalDefaultFromNoValue](f); !ok {
			t.Fatalf("absent %s should carry OptionalDefaultFromNoValue, got %v", name, f.Conditions)
		}
	}
	if absent.Score() <= person.Score() {
		t.Fatalf("absent fields should score above explicit nulls: %d <= %d", absent.Score(), person.Score())
	}
}

func TestCoerce_MissingRequiredField(t *testing.T) {
	_, err := run(t, "Movie", `{"year": 1}`)
	pe := errCode(t, err)
	if pe.Code != coerce.CodeMissingRequiredField || pe.Pointer() != "/" || pe.Params["key"] != "score" {
		t.Fatalf("got %+v", pe)
	}
	if pe.Value == nil {
		t.Fatalf("offending value should be attached")
	}

	_, err = run(t, "Movie[]", `[{"year": 1, "score": {"x": 1}}]`, coerce.Options{ListPolicy: coerce.Abort})
	if pe := errCode(t, err); pe.Pointer() != "/0/score" {
		t.Fatalf("nested path = %s", pe.Pointer())
	}
}

func TestCoerce_Lists(t *testing.T) {
	tv := mustRun(t, "int[]", `[1, "x", 3]`)
	if plain(tv) != `[1,3]` {
		t.Fatalf("got %s", plain(tv))
	}
	f, ok := coerce.FindFlag[coerce.ArrayItemParseError](tv)
	if !ok || f.Index != 1 || f.Err.Code != coerce.CodeUnexpectedType {
		t.Fatalf("want ArrayItemParseError at 1, got %v", tv.Conditions)
	}
	if tv.Score() != 2 {
		t.Fatalf("score = %d, want 2", tv.Score())
	}

	_, err := run(t, "int[]", `[1, "x", 3]`, coerce.Options{ListPolicy: coerce.Abort})
	if pe := errCode(t, err); pe.Pointer() != "/1" || pe.Code != coerce.CodeUnexpectedType {
		t.Fatalf("abort error = %v", err)
	}

	single := mustRun(t, "string[]", `"solo"`)
	if _, ok := coerce.FindFlag[coerce.SingleToArray](single); !ok || plain(single) != `["solo"]` {
		t.Fatalf("single = %s %v", plain(single), single.Conditions)
	}

	if _, err := run(t, "int[]", `null`); errCode(t, err).Code != coerce.CodeUnexpectedNull {
		t.Fatalf("null list should fail, got %v", err)
	}
}

func TestCoerce_Maps(t *testing.T) {
	reg := testRegistry(t)
	ctx := context.Background()
	obj := value.NewObject(
		value.E("a", value.NewInt(1)),
		value.E("b", value.NewString("nope")),
		value.E("a", value.NewInt(2)),
	)
	tv, err := coerce.Coerce(ctx, reg, schema.MustParseType("map<string, int>", reg), obj)
	if err != nil {
		t.Fatal(err)
	}
	if plain(tv) != `{"a":2}` {
		t.Fatalf("got %s", plain(tv))
	}
	if f, ok := coerce.FindFlag[coerce.MapValueParseError](tv); !ok || f.Key != "b" {
		t.Fatalf("want MapValueParseError b, got %v", tv.Conditions)
	}

	keyed := mustRun(t, "map<Status, int>", `{"PENDING": 1, "in progress": 2, "bogus": 3}`)
	if plain(keyed) != `{"PENDING":1,"IN_PROGRESS":2}` {
		t.Fatalf("got %s", plain(keyed))
	}
	if f, ok := coerce.FindFlag[coerce.MapKeyParseError](keyed); !ok || f.Key != "bogus" {
		t.Fatalf("want MapKeyParseError bogus, got %v", keyed.Conditions)
	}

	_, err = coerce.Coerce(ctx, reg, schema.MapOf(schema.Int, schema.String), value.NewObject())
	if errCode(t, err).Code != coerce.CodeNotImplemented {
		t.Fatalf("int keys should be not_implemented, got %v", err)
	}
}

func TestCoerce_Tuples(t *testing.T) {
	if got := plain(mustRun(t, "(int, string)", `[1, "a"]`)); got != `[1,"a"]` {
		t.Fatalf("got %s", got)
	}
	_, err := run(t, "(int, string)", `[1]`)
	if errCode(t, err).Code != coerce.CodeUnexpectedType {
		t.Fatalf("arity mismatch = %v", err)
	}
	_, err = run(t, "(int, string)", `[1, null]`)
	if pe := errCode(t, err); pe.Pointer() != "/1" {
		t.Fatalf("positional failure path = %s", pe.Pointer())
	}
	one := mustRun(t, "(string,)", `"x"`)
	if _, ok := coerce.FindFlag[coerce.SingleToArray](one); !ok || plain(one) != `["x"]` {
		t.Fatalf("1-tuple = %s %v", plain(one), one.Conditions)
	}
}

func TestCoerce_UnionPicksLowestScore(t *testing.T) {
	reg := testRegistry(t)
	typ := schema.MustParseType("string | int", reg)
	for i := 0; i < 20; i++ {
		tv, err := coerce.Coerce(context.Background(), reg, typ, value.NewInt(12))
		if err != nil {
			t.Fatal(err)
		}
		m, ok := coerce.FindFlag[coerce.UnionMatch](tv)
		if !ok || m.Index != 1 || len(m.Attempts) != 2 || tv.Kind != coerce.KindInt {
			t.Fatalf("run %d: got %+v", i, tv)
		}
	}
}

func TestCoerce_QuotedNumberPrefersString(t *testing.T) {
	for _, expr := range []string{"int | string", "string | int"} {
		tv := mustRun(t, expr, `"42"`)
		if tv.Kind != coerce.KindString || tv.Str != "42" {
			t.Fatalf("%s on \"42\" = %+v", expr, tv)
		}
	}
	n := mustRun(t, "int", `"42"`)
	f, ok := coerce.FindFlag[coerce.StringToNumber](n)
	if !ok || f.Raw != "42" || n.Int != 42 {
		t.Fatalf("want StringToNumber 42, got %+v", n)
	}
	if n.Score() != 1 {
		t.Fatalf("score = %d, want 1", n.Score())
	}
}

func TestCoerce_AmbiguityStrategies(t *testing.T) {
	tv := mustRun(t, "int | float", `3`)
	if m, _ := coerce.FindFlag[coerce.UnionMatch](tv); m.Index != 0 || tv.Kind != coerce.KindInt {
		t.Fatalf("ties go to the first member, got %+v", tv)
	}
	first := mustRun(t, "string | int", `3`, coerce.Options{Ambiguity: coerce.AmbiguityFirstMatch})
	if m, ok := coerce.FindFlag[coerce.FirstMatch](first); !ok || m.Index != 0 || len(m.Attempts) != 1 {
		t.Fatalf("first match = %+v", first)
	}
	_, err := run(t, "int | float", `3`, coerce.Options{Ambiguity: coerce.AmbiguityError})
	if errCode(t, err).Code != coerce.CodeUnionAmbiguous {
		t.Fatalf("want union_ambiguous, got %v", err)
	}
}

func TestCoerce_NoMatchingUnionVariant(t *testing.T) {
	_, err := run(t, "int | bool", `{"a": 1}`)
	pe := errCode(t, err)
	if pe.Code != coerce.CodeNoMatchingUnionVariant || len(pe.Causes) != 2 {
		t.Fatalf("got %+v", pe)
	}
	if !strings.Contains(pe.Message, "int | bool") {
		t.Fatalf("message should list members: %q", pe.Message)
	}
}

func TestCoerce_OptionalNeverFails(t *testing.T) {
	inputs := []string{"", "hello", "{", "[1,2", `{"year": "abc"}`, "null", "None", "```\n???\n```", `{"year":1,"score":2}`}
	for _, in := range inputs {
		tv, err := run(t, "Movie?", in)
		if err != nil {
			t.Fatalf("Movie? on %q failed: %v", in, err)
		}
		if tv == nil {
			t.Fatalf("Movie? on %q returned nil", in)
		}
	}
	tv := mustRun(t, "int?", `"nil"`)
	if _, ok := coerce.FindFlag[coerce.StringToNull](tv); !ok {
		t.Fatalf("want StringToNull, got %v", tv.Conditions)
	}
	bad := mustRun(t, "int?", `"abc"`)
	if f, ok := coerce.FindFlag[coerce.DefaultButHadUnparseableValue](bad); !ok || f.Err == nil {
		t.Fatalf("want DefaultButHadUnparseableValue, got %v", bad.Conditions)
	}
}

func TestCoerce_PartialStreaming(t *testing.T) {
	opts := coerce.Options{Partial: true}
	cases := []struct{ in, want string }{
		{`{"title": "Q3", "items": [{"name": "a"}`, `{"title":"Q3","items":[{"name":"a"}],"summary":null}`},
		{`{"title": "Q`, `{"title":"Q","items":[],"summary":null}`},
	}
	for _, tc := range cases {
		tv := mustRun(t, "Report", tc.in, opts)
		if got := plain(tv); got != tc.want {
			t.Fatalf("partial %q = %s, want %s", tc.in, got, tc.want)
		}
		summary, _ := tv.Get("summary")
		if _, ok := coerce.FindFlag[coerce.DefaultFromNoValue](summary); !ok {
			t.Fatalf("summary should be DefaultFromNoValue, got %v", summary.Conditions)
		}
	}

	_, err := run(t, "Report", cases[0].in)
	if pe := errCode(t, err); pe.Code != coerce.CodeMissingRequiredField || pe.Params["key"] != "summary" {
		t.Fatalf("non-partial should fail on summary, got %v", err)
	}

	// Fields cut off mid-value fall back to their default.
	tasks := []struct{ in, want, cut string }{
		{`{"title": "x", "status": "IN_PRO`, `{"title":"x","status":null,"done":null,"tags":[]}`, "status"},
		{`{"title": "x", "status": "DONE", "done": tr`, `{"title":"x","status":"DONE","done":null,"tags":[]}`, "done"},
		{`{"title": "x", "tags": ["a", "b`, `{"title":"x","status":null,"done":null,"tags":["a","b"]}`, ""},
	}
	for _, tc := range tasks {
		tv := mustRun(t, "Task", tc.in, opts)
		if got := plain(tv); got != tc.want {
			t.Fatalf("partial %q = %s, want %s", tc.in, got, tc.want)
		}
		if tc.cut == "" {
			continue
		}
		f, _ := tv.Get(tc.cut)
		bad, ok := coerce.FindFlag[coerce.DefaultButHadUnparseableValue](f)
		if !ok || bad.Err == nil {
			t.Fatalf("%s should carry DefaultButHadUnparseableValue, got %v", tc.cut, f.Conditions)
		}
		if _, err := run(t, "Task", tc.in); err == nil {
			t.Fatalf("non-partial %q should fail", tc.in)
		}
	}
}

func TestCoerce_AnyOfAsString(t *testing.T) {
	in := `{"a":1} {"b":2}`
	tv := mustRun(t, "string", in)
	if tv.Str != in || len(tv.Conditions) != 0 {
		t.Fatalf("string target should get raw text, got %+v", tv)
	}
}

func TestCoerce_Constraints(t *testing.T) {
	c := schema.Constraint{Level: schema.Assert, Name: "positive", Expr: "this > 0"}
	tv, err := coerce.Coerce(context.Background(), nil, schema.WithConstraints(schema.Int, c), value.NewInt(-5))
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff([]schema.Constraint{c}, tv.Constraints); diff != "" {
		t.Fatalf("constraints (-want +got):\n%s", diff)
	}
	if tv.Int != -5 {
		t.Fatalf("constraints must not be enforced, got %d", tv.Int)
	}
}

func TestCoerce_Limits(t *testing.T) {
	doc := `{"value":1}`
	for i := 0; i < 10; i++ {
		doc = `{"value":1,"next":` + doc + `}`
	}
	_, err := run(t, "Node", doc, coerce.Options{MaxDepth: 5})
	if errCode(t, err).Code != coerce.CodeLimitExceeded {
		t.Fatalf("want limit_exceeded, got %v", err)
	}
	if _, err := run(t, "Node", doc); err != nil {
		t.Fatalf("default depth should suffice: %v", err)
	}
	deep := `{"value":1}`
	for i := 0; i < 100; i++ {
		deep = `{"value":1,"next":` + deep + `}`
	}
	if _, err := run(t, "Node", deep); err != nil {
		t.Fatalf("100 levels within the parser limit should coerce: %v", err)
	}

	_, err = run(t, "int | string", `"x"`, coerce.Options{MaxUnionAttempts: 1})
	if errCode(t, err).Code != coerce.CodeLimitExceeded {
		t.Fatalf("want limit_exceeded for attempts, got %v", err)
	}

	// Optional does not swallow limits.
	_, err = run(t, "(int | string)?", `"x"`, coerce.Options{MaxUnionAttempts: 1})
	if errCode(t, err).Code != coerce.CodeLimitExceeded {
		t.Fatalf("optional swallowed limit: %v", err)
	}
}

func TestCoerce_Canceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := coerce.Coerce(ctx, nil, schema.Int, value.NewInt(1))
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("want context.Canceled, got %v", err)
	}
	if errCode(t, err).Code != coerce.CodeCanceled {
		t.Fatalf("code = %v", err)
	}
}

func TestCoerce_UnknownReference(t *testing.T) {
	_, err := coerce.Coerce(context.Background(), nil, schema.ClassRef("Ghost"), value.NewObject())
	if errCode(t, err).Code != coerce.CodeNotImplemented {
		t.Fatalf("got %v", err)
	}
}

func TestCoerce_TranslatorAndLogger(t *testing.T) {
	_, err := coerce.Coerce(context.Background(), nil, schema.Int, value.NewNull(), coerce.Options{Translator: i18n.New("ja")})
	if pe := errCode(t, err); pe.Message != "int が必要ですが値がありません" {
		t.Fatalf("message = %q", pe.Message)
	}

	core, logs := observer.New(zap.DebugLevel)
	_ = mustRun(t, "string | int", `12`, coerce.Options{Logger: zap.New(core)})
	if logs.FilterMessage("union variant selected").Len() != 1 {
		t.Fatalf("expected one union selection log, got %v", logs.All())
	}
}

func TestExplain(t *testing.T) {
	tv := mustRun(t, "Movie", `{"year": "1950", "score": 70.5}`)
	ex := coerce.Explain(tv)
	if len(ex) != 2 || ex[0].Pointer() != "/year" || ex[0].Code != "string_to_number" ||
		ex[1].Pointer() != "/score" || ex[1].Code != "float_to_int" {
		t.Fatalf("explain = %q", ex.Format())
	}
	if !strings.HasPrefix(ex.Format(), "/year: string_to_number: ") {
		t.Fatalf("format = %q", ex.Format())
	}
}

func TestDeepestError(t *testing.T) {
	_, err := run(t, "Movie | Wrapper", `{"year": "x", "score": 1}`)
	deepest := coerce.DeepestError(err)
	if deepest == nil || deepest.Pointer() != "/year" || deepest.Code != coerce.CodeUnexpectedType {
		t.Fatalf("deepest = %+v", deepest)
	}
	if coerce.DeepestError(errors.New("plain")) != nil {
		t.Fatalf("non-parsing errors have no deepest error")
	}
	list := coerce.ParsingErrors{
		{Code: coerce.CodeUnexpectedNull},
		{Code: coerce.CodeUnexpectedType, Path: coerce.Path(nil).Field("a").Index(2)},
	}
	if got := coerce.DeepestError(list).Pointer(); got != "/a/2" {
		t.Fatalf("deepest of list = %s", got)
	}
	if !strings.HasPrefix(list.Error(), "unexpected_null at /; unexpected_type at /a/2") {
		t.Fatalf("summary = %q", list.Error())
	}
}

func TestToPlain_Total(t *testing.T) {
	var nilTV *coerce.TypedValue
	if got := value.JSON(nilTV.ToPlain()); got != "null" {
		t.Fatalf("nil projects to %s", got)
	}
	if got := plain(&coerce.TypedValue{Kind: coerce.KindLiteral, Lit: "x"}); got != `"x"` {
		t.Fatalf("literal projects to %s", got)
	}
	if got := plain(&coerce.TypedValue{Kind: coerce.KindList}); got != `[]` {
		t.Fatalf("empty list projects to %s", got)
	}
}

func TestFlagWeightsNonNegative(t *testing.T) {
	flags := []coerce.Flag{
		coerce.SingleToArray{}, coerce.StringToBool{}, coerce.StringToNull{}, coerce.StringToNumber{}, coerce.FloatToInt{},
		coerce.StrippedNonAlphaNumeric{}, coerce.SubstringMatch{}, coerce.ObjectFromMarkdown{},
		coerce.ObjectFromFixedJSON{}, coerce.ExtraKey{}, coerce.ImpliedKey{}, coerce.ArrayItemParseError{},
		coerce.MapKeyParseError{}, coerce.MapValueParseError{}, coerce.FirstMatch{}, coerce.UnionMatch{},
		coerce.DefaultFromNoValue{}, coerce.DefaultButHadValue{}, coerce.OptionalDefaultFromNoValue{},
		coerce.DefaultButHadUnparseableValue{}, coerce.NoFields{}, coerce.JSONToString{},
	}
	seen := map[string]bool{}
	for _, f := range flags {
		if f.Weight() < 0 {
			t.Fatalf("%s has negative weight", f.Name())
		}
		if seen[f.Name()] {
			t.Fatalf("duplicate flag name %s", f.Name())
		}
		seen[f.Name()] = true
		_ = f.String()
	}
}
