package parser_test

import (
	"errors"
	"strings"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/reoring/jsonish/parser"
	"github.com/reoring/jsonish/value"
)

func mustParse(t *testing.T, text string, opts ...parser.Options) value.Value {
	t.Helper()
	v, err := parser.Parse(text, opts...)
	if err != nil {
		t.Fatalf("Parse(%q) error: %v", text, err)
	}
	if v == nil {
		t.Fatalf("Parse(%q) returned nil value", text)
	}
	return v
}

// findFixed returns the first FixedJSON reachable through wrappers.
func findFixed(v value.Value) *value.FixedJSON {
	switch t := v.(type) {
	case *value.FixedJSON:
		return t
	case *value.Markdown:
		return findFixed(t.Inner)
	case *value.AnyOf:
		for _, c := range t.Candidates {
			if f := findFixed(c); f != nil {
				return f
			}
		}
	}
	return nil
}

func TestParse_Recovered(t *testing.T) {
	cases := []struct {
		name string
		in   string
		want string
	}{
		{"strict object", `{"a":1,"b":[true,null]}`, `{"a":1,"b":[true,null]}`},
		{"strict scalar string", `"hello"`, `"hello"`},
		{"strict number", ` 42 `, `42`},
		{"prose around object", `The answer is {"x": 5} as requested.`, `{"x":5}`},
		{"trailing comma", `[1,2,3,]`, `[1,2,3]`},
		{"truncated string and object", `{"key": "value`, `{"key":"value"}`},
		{"unquoted key and value", `{key: value with space}`, `{"key":"value with space"}`},
		{"single quotes and comments", "{'a': 1, // note\n 'b': 'it's'}", `{"a":1,"b":"it's"}`},
		{"block comment", `{"a": /* why */ 2}`, `{"a":2}`},
		{"missing comma in array", `["a" "b"]`, `["a","b"]`},
		{"missing comma between keys", `{"a": "x" "b": 1}`, `{"a":"x","b":1}`},
		{"unclosed inner array", `{"a": [1, 2}`, `{"a":[1,2]}`},
		{"unclosed nesting", `{"a": {"b": [1, {"c": tru`, `{"a":{"b":[1,{"c":"tru"}]}}`},
		{"single-quoted scalar", `'hello'`, `"hello"`},
		{"key without value", `{"a": 1, "b": }`, `{"a":1,"b":null}`},
		{"escapes", `{"s": "line\nnext é 😀", }`, `{"s":"line\nnext é 😀"}`},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			v := mustParse(t, tc.in)
			if got := value.JSON(v); got != tc.want {
				t.Fatalf("Parse(%q) = %s, want %s", tc.in, got, tc.want)
			}
		})
	}
}

func TestParse_StrictReturnsPlainValue(t *testing.T) {
	v := mustParse(t, `{"a":[1,2]}`)
	if v.Kind() != value.KindObject {
		t.Fatalf("kind = %s, want object", v.Kind())
	}
}

func TestParse_MultipleDocuments(t *testing.T) {
	v := mustParse(t, `{"a":1} {"b":2}`)
	ao, ok := v.(*value.AnyOf)
	if !ok {
		t.Fatalf("expected AnyOf, got %T", v)
	}
	if len(ao.Candidates) != 3 {
		t.Fatalf("candidates = %d, want 3", len(ao.Candidates))
	}
	if got := value.JSON(ao.Candidates[0]); got != `[{"a":1},{"b":2}]` {
		t.Fatalf("first candidate = %s", got)
	}
	if got := value.JSON(ao.Candidates[2]); got != `{"b":2}` {
		t.Fatalf("last candidate = %s", got)
	}
}

func TestParse_SeparatorBetweenDocumentsIsNotStrict(t *testing.T) {
	v := mustParse(t, `{"a":1},{"b":2}`)
	ao, ok := v.(*value.AnyOf)
	if !ok {
		t.Fatalf("expected AnyOf, got %T", v)
	}
	if ao.Raw != `{"a":1},{"b":2}` {
		t.Fatalf("raw = %q", ao.Raw)
	}
	if got := value.JSON(v); got != `[{"a":1},{"b":2}]` {
		t.Fatalf("got %s", got)
	}
}

func TestParse_MarkdownFence(t *testing.T) {
	in := "Here you go:\n```json\n{\"k\":\"v\"}\n```\nThanks"
	v := mustParse(t, in)
	ao, ok := v.(*value.AnyOf)
	if !ok || len(ao.Candidates) != 1 {
		t.Fatalf("expected AnyOf with one candidate, got %#v", v)
	}
	md, ok := ao.Candidates[0].(*value.Markdown)
	if !ok {
		t.Fatalf("expected Markdown candidate, got %T", ao.Candidates[0])
	}
	if md.Lang != "json" {
		t.Fatalf("lang = %q", md.Lang)
	}
	if got := value.JSON(v); got != `{"k":"v"}` {
		t.Fatalf("got %s", got)
	}
	if ao.Raw != in {
		t.Fatalf("raw text not preserved")
	}
}

func TestParse_MultipleFences(t *testing.T) {
	in := "```json\n[1]\n```\ntext\n```\n{\"a\":true}\n```"
	v := mustParse(t, in)
	ao, ok := v.(*value.AnyOf)
	if !ok || len(ao.Candidates) != 3 {
		t.Fatalf("expected AnyOf with 3 candidates, got %#v", v)
	}
	if got := value.JSON(ao.Candidates[0]); got != `[[1],{"a":true}]` {
		t.Fatalf("array candidate = %s", got)
	}
	if md := ao.Candidates[2].(*value.Markdown); md.Lang != "" {
		t.Fatalf("second fence lang = %q, want empty", md.Lang)
	}
}

func TestParse_UnclosedFenceIsRepaired(t *testing.T) {
	v := mustParse(t, "```json\n{\"a\": [1, 2")
	if got := value.JSON(v); got != `{"a":[1,2]}` {
		t.Fatalf("got %s", got)
	}
	f := findFixed(v)
	if f == nil || !value.IsTruncated(f.Fixes) {
		t.Fatalf("expected truncation fixes, got %#v", f)
	}
}

func TestParse_FixesAreRecorded(t *testing.T) {
	v := mustParse(t, `[1,2,3,]`)
	f := findFixed(v)
	if f == nil {
		t.Fatalf("expected a FixedJSON in %#v", v)
	}
	if !value.HasFix(f.Fixes, value.FixTrailingComma) {
		t.Fatalf("fixes = %v, want trailing_comma", f.Fixes)
	}
	if value.IsTruncated(f.Fixes) {
		t.Fatalf("trailing comma is not truncation: %v", f.Fixes)
	}
}

func TestParse_FallsBackToString(t *testing.T) {
	for _, in := range []string{"hello world", "True", "", "42 apples", `"He said "hi" loudly`} {
		v := mustParse(t, in)
		s, ok := v.(*value.String)
		if !ok {
			t.Fatalf("Parse(%q) = %T, want *value.String", in, v)
		}
		if s.V != in {
			t.Fatalf("Parse(%q) = %q, want the raw text", in, s.V)
		}
	}
}

func TestParse_NeverFailsOnGarbage(t *testing.T) {
	inputs := []string{
		"}", "]]]", "{{{{", "[,,,]", `{"a"`, `{"a":`, `{:}`, "'", "`", "/*", "//",
		`{"a": "b\`, `[1, "two", {three: 3`, "```", "```json", "{\n}\n{",
		`{"a": [}]}`, "\\u12", `{"\u00"}`, `[tru, fals, nul]`,
	}
	for _, in := range inputs {
		v, err := parser.Parse(in)
		if err != nil {
			t.Fatalf("Parse(%q) error: %v", in, err)
		}
		if v == nil {
			t.Fatalf("Parse(%q) returned nil", in)
		}
	}
}

func TestParse_DepthLimit(t *testing.T) {
	deep := strings.Repeat("[", 200) + strings.Repeat("]", 200)
	_, err := parser.Parse(deep)
	if !errors.Is(err, parser.ErrLimitExceeded) {
		t.Fatalf("want ErrLimitExceeded, got %v", err)
	}

	// The repairing path enforces the same bound.
	_, err = parser.Parse("note: "+strings.Repeat("[", 10), parser.Options{MaxDepth: 5})
	if !errors.Is(err, parser.ErrLimitExceeded) {
		t.Fatalf("repair path: want ErrLimitExceeded, got %v", err)
	}

	if _, err := parser.Parse(strings.Repeat("[", 5)+strings.Repeat("]", 5), parser.Options{MaxDepth: 5}); err != nil {
		t.Fatalf("depth at the limit must pass: %v", err)
	}
}

func TestParse_ByteLimit(t *testing.T) {
	_, err := parser.Parse(`[1,2,3]`, parser.Options{MaxBytes: 4})
	if !errors.Is(err, parser.ErrLimitExceeded) {
		t.Fatalf("want ErrLimitExceeded, got %v", err)
	}
}

func TestParse_DisabledStrategies(t *testing.T) {
	in := "Here:\n```json\n{\"k\":\"v\"}\n```"
	v := mustParse(t, in, parser.Options{DisableMarkdown: true})
	ao, ok := v.(*value.AnyOf)
	if !ok {
		t.Fatalf("expected AnyOf, got %T", v)
	}
	if ao.Candidates[0].Kind() != value.KindObject {
		t.Fatalf("candidate kind = %s, want object", ao.Candidates[0].Kind())
	}

	v = mustParse(t, `[1,2,`, parser.Options{DisableFixes: true})
	if s, ok := v.(*value.String); !ok || s.V != `[1,2,` {
		t.Fatalf("with fixes disabled want raw string, got %#v", v)
	}
}

func TestParse_LastOptionsWin(t *testing.T) {
	_, err := parser.Parse(`[1,2,3]`, parser.Options{MaxBytes: 4}, parser.Options{})
	if err != nil {
		t.Fatalf("later options should replace earlier ones: %v", err)
	}
}

func TestParse_LogsFallbacks(t *testing.T) {
	core, logs := observer.New(zap.DebugLevel)
	mustParse(t, `{"a": 1,}`, parser.Options{Logger: zap.New(core)})
	if logs.FilterMessage("strict parse failed").Len() != 1 {
		t.Fatalf("expected one strict-failure log, got %v", logs.All())
	}
	if logs.FilterMessage("extracted embedded documents").Len() != 1 {
		t.Fatalf("expected embedded document log, got %v", logs.All())
	}
}
