package coerce

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/reoring/jsonish/i18n"
	"github.com/reoring/jsonish/parser"
)

const (
	// DefaultMaxDepth counts coercion frames; one container level costs up
	// to three (wrapper, optional or union, container).
	DefaultMaxDepth         = 3 * parser.DefaultMaxDepth
	DefaultMaxUnionAttempts = 4096
)

// ListPolicy decides what happens to a list item or map entry that fails.
type ListPolicy int

const (
	// DropAndFlag drops the element and records it on the container.
	DropAndFlag ListPolicy = iota
	// Abort fails the whole container.
	Abort
)

func (p ListPolicy) String() string {
	if p == Abort {
		return "abort"
	}
	return "drop_and_flag"
}

// ParseListPolicy accepts "drop_and_flag" (or "") and "abort".
func ParseListPolicy(s string) (ListPolicy, error) {
	switch s {
	case "", "drop_and_flag":
		return DropAndFlag, nil
	case "abort":
		return Abort, nil
	}
	return 0, fmt.Errorf("coerce: unknown list policy %q", s)
}

// AmbiguityStrategy configures how a union picks among successful members.
type AmbiguityStrategy int

const (
	// AmbiguityScoreBest picks the lowest score, earliest member on ties.
	AmbiguityScoreBest AmbiguityStrategy = iota
	// AmbiguityFirstMatch picks the first member that succeeds.
	AmbiguityFirstMatch
	// AmbiguityError fails with union_ambiguous when the best score is shared.
	AmbiguityError
)

func (a AmbiguityStrategy) String() string {
	switch a {
	case AmbiguityFirstMatch:
		return "first_match"
	case AmbiguityError:
		return "error"
	}
	return "score_best"
}

// ParseAmbiguity accepts "score_best" (or ""), "first_match" and "error".
func ParseAmbiguity(s string) (AmbiguityStrategy, error) {
	switch s {
	case "", "score_best":
		return AmbiguityScoreBest, nil
	case "first_match":
		return AmbiguityFirstMatch, nil
	case "error":
		return AmbiguityError, nil
	}
	return 0, fmt.Errorf("coerce: unknown ambiguity strategy %q", s)
}

// Options controls a coercion. The zero value is ready to use.
type Options struct {
	// Partial treats the input as a prefix of a streamed document: absent
	// required fields default instead of failing.
	Partial    bool
	ListPolicy ListPolicy
	Ambiguity  AmbiguityStrategy
	// MaxDepth bounds recursion (default 64).
	MaxDepth int
	// MaxUnionAttempts bounds union and candidate attempts per call (default 4096).
	MaxUnionAttempts int
	Logger           *zap.Logger
	// Translator renders error messages; defaults to English.
	Translator i18n.Translator
}

func (o Options) normalized() Options {
	if o.MaxDepth <= 0 {
		o.MaxDepth = DefaultMaxDepth
	}
	if o.MaxUnionAttempts <= 0 {
		o.MaxUnionAttempts = DefaultMaxUnionAttempts
	}
	if o.Logger == nil {
		o.Logger = zap.NewNop()
	}
	o.Translator = i18n.Or(o.Translator)
	return o
}

// pick returns the last supplied options (last wins).
func pick(opts []Options) Options {
	if len(opts) == 0 {
		return Options{}
	}
	return opts[len(opts)-1]
}
