package parser

import (
	"errors"
	"fmt"
	"io"
	"strings"

	j "github.com/goccy/go-json"

	eng "github.com/reoring/jsonish/internal/engine"
	"github.com/reoring/jsonish/source/gojson"
	"github.com/reoring/jsonish/value"
)

var errNotStrict = errors.New("parser: not strict JSON")

// parseStrict decodes text as one or more whitespace-separated JSON
// documents. The streaming tokenizer tolerates stray separators, so every
// document's byte span is validated on its own.
func parseStrict(text string, maxDepth, maxBytes int) ([]value.Value, error) {
	if strings.TrimSpace(text) == "" {
		return nil, errNotStrict
	}
	src := eng.WrapWithEnforcement(gojson.NewString(text), eng.EnforceOptions{
		MaxDepth: maxDepth,
		MaxBytes: int64(maxBytes),
	})
	var (
		docs []value.Value
		prev int
	)
	for {
		v, err := eng.DecodeValue(src)
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			var ie eng.IssueError
			if errors.As(err, &ie) {
				return nil, fmt.Errorf("%w: %s at %s", ErrLimitExceeded, ie.Message, ie.Path)
			}
			return nil, err
		}
		end := int(src.Location())
		if end < prev || end > len(text) {
			return nil, errNotStrict
		}
		if !j.Valid([]byte(text[prev:end])) {
			return nil, errNotStrict
		}
		docs = append(docs, v)
		prev = end
	}
	if len(docs) == 0 || strings.TrimSpace(text[prev:]) != "" {
		return nil, errNotStrict
	}
	return docs, nil
}

func isLimit(err error) bool { return errors.Is(err, ErrLimitExceeded) }
