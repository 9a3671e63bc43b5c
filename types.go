package jsonish

import (
	"go.uber.org/zap"

	"github.com/reoring/jsonish/coerce"
	"github.com/reoring/jsonish/i18n"
	"github.com/reoring/jsonish/parser"
)

// Options bundles parser and coercion settings. The zero value enables every
// recovery strategy with the default limits.
type Options struct {
	// Parser
	MaxBytes             int // Input size limit (default 8 MiB).
	MaxParseDepth        int // Nesting limit while parsing (default 128).
	DisableMarkdown      bool
	DisableMultiDocument bool
	DisableFixes         bool

	// Coercion
	Partial          bool
	ListPolicy       coerce.ListPolicy
	Ambiguity        coerce.AmbiguityStrategy
	MaxDepth         int // Recursion limit while coercing (default 384).
	MaxUnionAttempts int // Union attempt budget per call (default 4096).

	// Concurrency bounds CoerceAll (default GOMAXPROCS).
	Concurrency int

	// Language picks the built-in translator ("en", "ja") when Translator
	// is nil.
	Language   string
	Translator i18n.Translator
	Logger     *zap.Logger
}

func pickOptions(opts []Options) Options {
	var o Options
	if len(opts) > 0 {
		o = opts[len(opts)-1]
	}
	if o.Translator == nil && o.Language != "" {
		o.Translator = i18n.New(o.Language)
	}
	o.Translator = i18n.Or(o.Translator)
	if o.Logger == nil {
		o.Logger = zap.NewNop()
	}
	return o
}

func (o Options) parserOptions() parser.Options {
	return parser.Options{
		MaxDepth:             o.MaxParseDepth,
		MaxBytes:             o.MaxBytes,
		DisableMarkdown:      o.DisableMarkdown,
		DisableMultiDocument: o.DisableMultiDocument,
		DisableFixes:         o.DisableFixes,
		Logger:               o.Logger,
	}
}

func (o Options) coerceOptions() coerce.Options {
	return coerce.Options{
		Partial:          o.Partial,
		ListPolicy:       o.ListPolicy,
		Ambiguity:        o.Ambiguity,
		MaxDepth:         o.MaxDepth,
		MaxUnionAttempts: o.MaxUnionAttempts,
		Logger:           o.Logger,
		Translator:       o.Translator,
	}
}
