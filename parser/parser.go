// Package parser turns raw model output into value.Value trees. It never
// rejects input for being malformed: it tries, in order, a strict JSON decode,
// markdown fence extraction, a scan for documents embedded in prose, and a
// repairing parse, and falls back to the whole text as a string.
package parser

import (
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/reoring/jsonish/value"
)

// Parse parses text with the last of opts (or defaults).
func Parse(text string, opts ...Options) (value.Value, error) {
	var opt Options
	if len(opts) > 0 {
		opt = opts[len(opts)-1]
	}
	p := &parser{opt: opt.normalized()}
	return p.parse(text)
}

type parser struct {
	opt Options
}

func (p *parser) parse(text string) (value.Value, error) {
	if len(text) > p.opt.MaxBytes {
		return nil, fmt.Errorf("%w: input is %d bytes, max %d", ErrLimitExceeded, len(text), p.opt.MaxBytes)
	}
	log := p.opt.Logger

	docs, err := parseStrict(text, p.opt.MaxDepth, p.opt.MaxBytes)
	if err == nil {
		return collect(text, docs), nil
	}
	if isLimit(err) {
		return nil, err
	}
	log.Debug("strict parse failed", zap.Error(err))

	if !p.opt.DisableMarkdown {
		fences := findFences(text)
		if len(fences) > 0 {
			mds := make([]value.Value, 0, len(fences))
			for _, f := range fences {
				log.Debug("markdown block", zap.String("lang", f.lang), zap.Bool("closed", f.closed))
				inner, err := p.parseFragment(f.body)
				if err != nil {
					return nil, err
				}
				mds = append(mds, value.NewMarkdown(f.lang, inner))
			}
			log.Debug("extracted markdown blocks", zap.Int("blocks", len(mds)))
			return anyOf(text, mds), nil
		}
	}

	if !p.opt.DisableMultiDocument {
		spans := scanDocuments(text)
		if len(spans) > 0 {
			found := make([]value.Value, 0, len(spans))
			for _, s := range spans {
				v, err := p.parseSpan(s)
				if err != nil {
					return nil, err
				}
				if v != nil {
					found = append(found, v)
				}
			}
			if len(found) > 0 {
				log.Debug("extracted embedded documents", zap.Int("documents", len(found)))
				return anyOf(text, found), nil
			}
		}
	}

	if !p.opt.DisableFixes {
		v, err := p.repairWhole(text)
		if err != nil {
			return nil, err
		}
		if v != nil {
			return v, nil
		}
	}

	log.Debug("no structure recovered, using raw text")
	return value.NewString(text), nil
}

// parseFragment parses the body of a markdown fence: strict first, then the
// embedded-document scan, then repair, then the body as a string.
func (p *parser) parseFragment(body string) (value.Value, error) {
	docs, err := parseStrict(body, p.opt.MaxDepth, p.opt.MaxBytes)
	if err == nil {
		return collect(body, docs), nil
	}
	if isLimit(err) {
		return nil, err
	}
	if !p.opt.DisableMultiDocument {
		if spans := scanDocuments(body); len(spans) > 0 {
			var found []value.Value
			for _, s := range spans {
				v, err := p.parseSpan(s)
				if err != nil {
					return nil, err
				}
				if v != nil {
					found = append(found, v)
				}
			}
			if len(found) == 1 && strings.TrimSpace(body) == strings.TrimSpace(spans[0]) {
				return found[0], nil
			}
			if len(found) > 0 {
				return anyOf(body, found), nil
			}
		}
	}
	if !p.opt.DisableFixes {
		v, err := p.repairWhole(body)
		if err != nil || v != nil {
			return v, err
		}
	}
	return value.NewString(strings.TrimSpace(body)), nil
}

// parseSpan parses one bracketed span found in prose. nil means the span held
// nothing usable.
func (p *parser) parseSpan(span string) (value.Value, error) {
	docs, err := parseStrict(span, p.opt.MaxDepth, p.opt.MaxBytes)
	if err == nil && len(docs) == 1 {
		return docs[0], nil
	}
	if err != nil && isLimit(err) {
		return nil, err
	}
	if p.opt.DisableFixes {
		return nil, nil
	}
	vals, fixes, err := repair(span, p.opt.MaxDepth)
	if err != nil {
		return nil, err
	}
	if len(vals) == 0 {
		return nil, nil
	}
	v := vals[0]
	if len(vals) > 1 {
		v = value.NewArray(vals...)
	}
	if len(fixes) == 0 {
		return v, nil
	}
	return value.NewFixedJSON(v, fixes), nil
}

// repairWhole runs the repairing parser over text without any brackets found
// by the scan. Only a quoted string counts as recovered structure; bare words
// are left to the raw-text fallback.
func (p *parser) repairWhole(text string) (value.Value, error) {
	vals, fixes, err := repair(text, p.opt.MaxDepth)
	if err != nil {
		return nil, err
	}
	if len(vals) != 1 || value.HasFix(fixes, value.FixUnquotedValue) || value.HasFix(fixes, value.FixUnescapedQuote) {
		return nil, nil
	}
	if len(fixes) == 0 {
		return vals[0], nil
	}
	return value.NewFixedJSON(vals[0], fixes), nil
}

// collect folds several top-level documents into an AnyOf whose preferred
// reading is the array of all of them.
func collect(raw string, docs []value.Value) value.Value {
	if len(docs) == 1 {
		return docs[0]
	}
	cands := make([]value.Value, 0, len(docs)+1)
	cands = append(cands, value.NewArray(docs...))
	cands = append(cands, docs...)
	return value.NewAnyOf(raw, cands...)
}

func anyOf(raw string, found []value.Value) value.Value {
	if len(found) == 1 {
		return value.NewAnyOf(raw, found[0])
	}
	cands := make([]value.Value, 0, len(found)+1)
	cands = append(cands, value.NewArray(found...))
	cands = append(cands, found...)
	return value.NewAnyOf(raw, cands...)
}
