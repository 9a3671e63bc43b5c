package i18n

import "strings"

// Translator retrieves localized messages for error codes.
// data provides optional metadata to embed in the message (for example,
// "expected", "key" or "limit"). Placeholders are written {name}.
type Translator interface {
	Message(code string, data map[string]string) string
}

// dictTranslator is the built-in dictionary-based Translator.
type dictTranslator struct{ lang string }

var messages = map[string]map[string]string{
	"en": {
		"unexpected_null":               "expected {expected}, got no value",
		"unexpected_type":               "expected {expected}, got {got}",
		"missing_required_field":        "required field {key} missing",
		"unknown_enum_value":            "unknown value {got} for enum {expected}, want one of {members}",
		"no_matching_union_variant":     "no variant of {expected} matched {got}",
		"union_ambiguous":               "several variants of {expected} matched equally well",
		"unsupported_media_coercion":    "media values cannot be coerced from text",
		"malformed_input_unrecoverable": "no structure could be recovered from the input",
		"not_implemented":               "not implemented: {expected}",
		"limit_exceeded":                "limit exceeded: {limit}",
		"canceled":                      "canceled",
	},
	"ja": {
		"unexpected_null":               "{expected} が必要ですが値がありません",
		"unexpected_type":               "{expected} が必要ですが {got} でした",
		"missing_required_field":        "必須フィールド {key} が不足しています",
		"unknown_enum_value":            "列挙型 {expected} に値 {got} は存在しません (候補: {members})",
		"no_matching_union_variant":     "{got} は {expected} のどの候補にも一致しません",
		"union_ambiguous":               "{expected} の複数の候補が同点で一致しました",
		"unsupported_media_coercion":    "メディア値はテキストから変換できません",
		"malformed_input_unrecoverable": "入力から構造を復元できませんでした",
		"not_implemented":               "未実装です: {expected}",
		"limit_exceeded":                "上限を超えました: {limit}",
		"canceled":                      "キャンセルされました",
	},
}

func (t dictTranslator) Message(code string, data map[string]string) string {
	msg, ok := messages[t.lang][code]
	if !ok {
		return code
	}
	if len(data) == 0 || !strings.Contains(msg, "{") {
		return msg
	}
	pairs := make([]string, 0, 2*len(data))
	for k, v := range data {
		pairs = append(pairs, "{"+k+"}", v)
	}
	return strings.NewReplacer(pairs...).Replace(msg)
}

// New returns the built-in Translator for lang ("en"/"ja"). Unknown
// languages fall back to English.
func New(lang string) Translator {
	if _, ok := messages[lang]; !ok {
		lang = "en"
	}
	return dictTranslator{lang: lang}
}

// Default is the English built-in Translator.
func Default() Translator { return dictTranslator{lang: "en"} }

// Or returns tr, or Default when tr is nil.
func Or(tr Translator) Translator {
	if tr == nil {
		return Default()
	}
	return tr
}
