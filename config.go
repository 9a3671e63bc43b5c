package jsonish

import (
	"bytes"
	"errors"
	"io"

	"github.com/joeshaw/envdecode"
	"gopkg.in/yaml.v3"

	"github.com/reoring/jsonish/coerce"
)

// Config is the serializable form of Options, loadable from the environment
// (JSONISH_*) or from YAML.
type Config struct {
	MaxBytes             int    `yaml:"max_bytes" env:"JSONISH_MAX_BYTES"`
	MaxParseDepth        int    `yaml:"max_parse_depth" env:"JSONISH_MAX_PARSE_DEPTH"`
	DisableMarkdown      bool   `yaml:"disable_markdown" env:"JSONISH_DISABLE_MARKDOWN"`
	DisableMultiDocument bool   `yaml:"disable_multi_document" env:"JSONISH_DISABLE_MULTI_DOCUMENT"`
	DisableFixes         bool   `yaml:"disable_fixes" env:"JSONISH_DISABLE_FIXES"`
	Partial              bool   `yaml:"partial" env:"JSONISH_PARTIAL"`
	ListPolicy           string `yaml:"list_policy" env:"JSONISH_LIST_POLICY,default=drop_and_flag"`
	Ambiguity            string `yaml:"ambiguity" env:"JSONISH_AMBIGUITY,default=score_best"`
	MaxDepth             int    `yaml:"max_depth" env:"JSONISH_MAX_DEPTH"`
	MaxUnionAttempts     int    `yaml:"max_union_attempts" env:"JSONISH_MAX_UNION_ATTEMPTS"`
	Concurrency          int    `yaml:"concurrency" env:"JSONISH_CONCURRENCY"`
	Language             string `yaml:"language" env:"JSONISH_LANGUAGE,default=en"`
}

// Options validates c and converts it.
func (c Config) Options() (Options, error) {
	lp, err := coerce.ParseListPolicy(c.ListPolicy)
	if err != nil {
		return Options{}, err
	}
	amb, err := coerce.ParseAmbiguity(c.Ambiguity)
	if err != nil {
		return Options{}, err
	}
	return Options{
		MaxBytes:             c.MaxBytes,
		MaxParseDepth:        c.MaxParseDepth,
		DisableMarkdown:      c.DisableMarkdown,
		DisableMultiDocument: c.DisableMultiDocument,
		DisableFixes:         c.DisableFixes,
		Partial:              c.Partial,
		ListPolicy:           lp,
		Ambiguity:            amb,
		MaxDepth:             c.MaxDepth,
		MaxUnionAttempts:     c.MaxUnionAttempts,
		Concurrency:          c.Concurrency,
		Language:             c.Language,
	}, nil
}

// LoadOptionsFromEnv reads Options from JSONISH_* environment variables.
// Unset variables keep their defaults.
func LoadOptionsFromEnv() (Options, error) {
	var c Config
	if err := envdecode.Decode(&c); err != nil && !errors.Is(err, envdecode.ErrNoTargetFieldsAreSet) {
		return Options{}, err
	}
	return c.Options()
}

// LoadOptionsYAML reads Options from a YAML document using Config's keys.
// Unknown keys are rejected; an empty document yields the defaults.
func LoadOptionsYAML(data []byte) (Options, error) {
	var c Config
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&c); err != nil && !errors.Is(err, io.EOF) {
		return Options{}, err
	}
	return c.Options()
}
