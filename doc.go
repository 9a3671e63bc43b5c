// Package jsonish turns free-form model output into values of a declared
// type.
//
// - A resilient parser recovers JSON-like structure from prose, markdown
// fences, several concatenated documents and broken or truncated syntax
// (Parse).
// - A schema-directed coercer reconciles the recovered tree with a target
// type, recording every heuristic as a flag and ranking alternatives by
// score (Coerce, CoercePartial, CoerceAll).
// - Errors carry a code, a JSON Pointer and the offending value
// (ParsingError).
//
// Design policy:
// - Keep only public APIs in the root package; implementations live in
// value/, parser/, coerce/, schema/ and infer/, internals under internal/.
// - Registries are read-only after construction and can be shared by any
// number of goroutines.
//
// Typical usage:
//
//	reg, _ := schema.LoadYAML(defs)
//	target := schema.MustParseType("Resume", reg)
//	tv, err := jsonish.Coerce(ctx, reg, target, modelOutput)
//	fmt.Println(value.JSON(jsonish.ToPlainValue(tv)))
//	fmt.Print(jsonish.Explain(tv))
package jsonish
