package parser

import (
	"errors"

	"go.uber.org/zap"
)

const (
	// DefaultMaxDepth bounds container nesting in both the strict and the
	// repairing paths.
	DefaultMaxDepth = 128
	// DefaultMaxBytes bounds the input size (8 MiB).
	DefaultMaxBytes = 8 << 20
)

// ErrLimitExceeded is wrapped by every error Parse returns. Parsing itself is
// total; only the configured limits can make it fail.
var ErrLimitExceeded = errors.New("parser: limit exceeded")

// Options configures Parse. The zero value enables every recovery strategy
// with the default limits.
type Options struct {
	MaxDepth int `yaml:"max_depth"`
	MaxBytes int `yaml:"max_bytes"`

	DisableMarkdown      bool `yaml:"disable_markdown"`
	DisableMultiDocument bool `yaml:"disable_multi_document"`
	DisableFixes         bool `yaml:"disable_fixes"`

	Logger *zap.Logger `yaml:"-"`
}

func (o Options) normalized() Options {
	if o.MaxDepth <= 0 {
		o.MaxDepth = DefaultMaxDepth
	}
	if o.MaxBytes <= 0 {
		o.MaxBytes = DefaultMaxBytes
	}
	if o.Logger == nil {
		o.Logger = zap.NewNop()
	}
	return o
}
