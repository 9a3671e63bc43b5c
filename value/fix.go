package value

import "strconv"

// FixKind enumerates the syntactic repairs the parser can perform.
type FixKind int

const (
	FixTrailingComma FixKind = iota + 1
	FixUnquotedKey
	FixSingleQuoted
	FixUnquotedValue
	FixComment
	FixUnterminatedString
	FixUnclosedObject
	FixUnclosedArray
	FixMissingComma
	FixMissingColon
	FixUnescapedQuote
	FixRawNewline
	FixStrayDelimiter
)

func (k FixKind) String() string {
	switch k {
	case FixTrailingComma:
		return "trailing_comma"
	case FixUnquotedKey:
		return "unquoted_key"
	case FixSingleQuoted:
		return "single_quoted"
	case FixUnquotedValue:
		return "unquoted_value"
	case FixComment:
		return "comment"
	case FixUnterminatedString:
		return "unterminated_string"
	case FixUnclosedObject:
		return "unclosed_object"
	case FixUnclosedArray:
		return "unclosed_array"
	case FixMissingComma:
		return "missing_comma"
	case FixMissingColon:
		return "missing_colon"
	case FixUnescapedQuote:
		return "unescaped_quote"
	case FixRawNewline:
		return "raw_newline"
	case FixStrayDelimiter:
		return "stray_delimiter"
	default:
		return "fix(" + strconv.Itoa(int(k)) + ")"
	}
}

// Fix records one repair and the byte offset in the input where it applied.
type Fix struct {
	Kind   FixKind
	Offset int
}

func (f Fix) String() string { return f.Kind.String() + "@" + strconv.Itoa(f.Offset) }

// HasFix reports whether fixes contains a repair of kind k.
func HasFix(fixes []Fix, k FixKind) bool {
	for _, f := range fixes {
		if f.Kind == k {
			return true
		}
	}
	return false
}

// IsTruncated reports whether the repairs imply the input ended early.
func IsTruncated(fixes []Fix) bool {
	return HasFix(fixes, FixUnterminatedString) || HasFix(fixes, FixUnclosedObject) || HasFix(fixes, FixUnclosedArray)
}
