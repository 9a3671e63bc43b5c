package jsonish

import (
	"context"
	"fmt"
	"io"

	"github.com/reoring/jsonish/parser"
	"github.com/reoring/jsonish/schema"
)

// Source supplies the text of one model response.
type Source interface {
	// Text returns the whole response, reading at most limit bytes.
	Text(limit int) (string, error)
}

type textSource string

func (s textSource) Text(int) (string, error) { return string(s), nil }

type readerSource struct{ r io.Reader }

func (s readerSource) Text(limit int) (string, error) {
	b, err := io.ReadAll(io.LimitReader(s.r, int64(limit)+1))
	if err != nil {
		return "", err
	}
	if len(b) > limit {
		return "", fmt.Errorf("%w: input exceeds %d bytes", ErrLimitExceeded, limit)
	}
	return string(b), nil
}

// SourceFromString wraps an in-memory response.
func SourceFromString(s string) Source { return textSource(s) }

// SourceFromBytes wraps an in-memory response.
func SourceFromBytes(b []byte) Source { return textSource(b) }

// SourceFromReader reads a response from r.
func SourceFromReader(r io.Reader) Source { return readerSource{r: r} }

// CoerceFrom reads src and coerces it like Coerce. Reading stops one byte past
// MaxBytes so oversized streams fail without being buffered whole.
func CoerceFrom(ctx context.Context, reg *schema.Registry, target schema.Type, src Source, opts ...Options) (*TypedValue, error) {
	o := pickOptions(opts)
	limit := o.MaxBytes
	if limit <= 0 {
		limit = parser.DefaultMaxBytes
	}
	text, err := src.Text(limit)
	if err != nil {
		return nil, parseFailure(err, o.Translator)
	}
	return Coerce(ctx, reg, target, text, o)
}
