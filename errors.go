package jsonish

import (
	"errors"

	"github.com/reoring/jsonish/coerce"
	"github.com/reoring/jsonish/i18n"
	"github.com/reoring/jsonish/parser"
)

// Error codes (see coerce for their meaning).
const (
	CodeUnexpectedNull              = coerce.CodeUnexpectedNull
	CodeUnexpectedType              = coerce.CodeUnexpectedType
	CodeMissingRequiredField        = coerce.CodeMissingRequiredField
	CodeUnknownEnumValue            = coerce.CodeUnknownEnumValue
	CodeNoMatchingUnionVariant      = coerce.CodeNoMatchingUnionVariant
	CodeUnionAmbiguous              = coerce.CodeUnionAmbiguous
	CodeUnsupportedMediaCoercion    = coerce.CodeUnsupportedMediaCoercion
	CodeMalformedInputUnrecoverable = coerce.CodeMalformedInputUnrecoverable
	CodeNotImplemented              = coerce.CodeNotImplemented
	CodeLimitExceeded               = coerce.CodeLimitExceeded
	CodeCanceled                    = coerce.CodeCanceled
)

type (
	ParsingError  = coerce.ParsingError
	ParsingErrors = coerce.ParsingErrors
	Path          = coerce.Path
)

// ErrLimitExceeded matches (errors.Is) every size or depth limit failure.
var ErrLimitExceeded = parser.ErrLimitExceeded

// AsParsingErrors extracts ParsingErrors from an error using errors.As.
func AsParsingErrors(err error) (ParsingErrors, bool) { return coerce.AsParsingErrors(err) }

// AsParsingError extracts the outermost *ParsingError from err.
func AsParsingError(err error) (*ParsingError, bool) { return coerce.AsParsingError(err) }

// DeepestError returns the failure with the longest path inside err.
func DeepestError(err error) *ParsingError { return coerce.DeepestError(err) }

// parseFailure maps parser errors onto the ParsingError model.
func parseFailure(err error, tr i18n.Translator) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, parser.ErrLimitExceeded) {
		data := map[string]string{"limit": err.Error()}
		return &ParsingError{Code: CodeLimitExceeded, Message: tr.Message(CodeLimitExceeded, data), Params: data, Err: err}
	}
	return err
}

// withUnrecoverable notes on a coercion failure that the parser found no
// structure at all, so the whole text was tried as a string.
func withUnrecoverable(err error, tr i18n.Translator) error {
	pe, ok := AsParsingError(err)
	if !ok {
		return err
	}
	out := *pe
	out.Causes = append(append([]*ParsingError(nil), pe.Causes...), &ParsingError{
		Code:    CodeMalformedInputUnrecoverable,
		Message: tr.Message(CodeMalformedInputUnrecoverable, nil),
	})
	return &out
}
