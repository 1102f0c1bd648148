// Package config loads the redaction pattern file and compiles it into
// an immutable RuleSet. Compilation happens once, before any page is
// processed: a pattern that silently produced zero matches would be a
// correctness hazard for a redaction tool, so malformed patterns abort
// the run up front.
package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/dlclark/regexp2"
	"gopkg.in/yaml.v3"

	"github.com/wudi/pdfredact/observability"
)

// ErrNoPatterns is returned when the pattern file parses but contains no
// enabled patterns.
var ErrNoPatterns = errors.New("config: no enabled patterns")

// matchTimeout bounds a single pattern evaluation. Patterns come from a
// user-editable file and regexp2 backtracks, so runaway expressions must
// not hang a page worker forever.
const matchTimeout = 5 * time.Second

// defaultPatterns mirror the fallback set shipped with the original tool
// for when no pattern file exists next to the document.
var defaultPatterns = []string{
	`\b123456789\b`,
	`\b\d{8,17}\b`,
}

// Entry is one pattern declaration. In YAML it is either a bare regex
// string or a mapping:
//
//	patterns:
//	  - '\b\d{8,17}\b'
//	  - pattern: '\bAB\d{8}CD\b'
//	    enabled: false
//	    ignorecase: true
type Entry struct {
	Pattern    string
	Enabled    *bool
	IgnoreCase bool
}

// UnmarshalYAML accepts both the scalar and the mapping form.
func (e *Entry) UnmarshalYAML(value *yaml.Node) error {
	if value.Kind == yaml.ScalarNode {
		e.Pattern = value.Value
		return nil
	}
	var aux struct {
		Pattern    string `yaml:"pattern"`
		Enabled    *bool  `yaml:"enabled"`
		IgnoreCase bool   `yaml:"ignorecase"`
	}
	if err := value.Decode(&aux); err != nil {
		return err
	}
	e.Pattern = aux.Pattern
	e.Enabled = aux.Enabled
	e.IgnoreCase = aux.IgnoreCase
	return nil
}

func (e Entry) enabled() bool { return e.Enabled == nil || *e.Enabled }

type file struct {
	Patterns []Entry `yaml:"patterns"`
}

// Rule is one compiled pattern. Two compiled forms are kept: the pattern
// as written, and a case-folded variant used for OCR text, where the
// engine routinely misreads letter case.
type Rule struct {
	ID     string
	source string
	exact  *regexp2.Regexp
	folded *regexp2.Regexp
}

// Source returns the pattern text as written in the configuration.
func (r *Rule) Source() string { return r.source }

// Expr returns the compiled expression; foldCase selects the
// case-insensitive variant.
func (r *Rule) Expr(foldCase bool) *regexp2.Regexp {
	if foldCase {
		return r.folded
	}
	return r.exact
}

// RuleSet is the immutable compiled pattern collection handed to the
// matcher. It carries no mutable state and is safe to share across page
// workers.
type RuleSet struct {
	rules []*Rule
}

// Rules returns the compiled rules in configuration order.
func (s *RuleSet) Rules() []*Rule { return s.rules }

// Len returns the number of enabled rules.
func (s *RuleSet) Len() int { return len(s.rules) }

// Load reads and compiles the pattern file at path. A missing file falls
// back to the built-in default patterns with a logged warning, matching
// the behavior users of the original tool rely on. Any malformed enabled
// pattern is a fatal configuration error.
func Load(path string, log observability.Logger) (*RuleSet, error) {
	if log == nil {
		log = observability.NopLogger{}
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			log.Warn("pattern file not found, using built-in defaults",
				observability.String("path", path))
			return Default()
		}
		return nil, fmt.Errorf("config: read %s: %w", path, err)
	}

	var f file
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("config: parse %s: %w", path, err)
	}

	rs, err := Compile(f.Patterns)
	if err != nil {
		return nil, err
	}
	log.Info("patterns loaded",
		observability.String("path", path),
		observability.Int("count", rs.Len()))
	return rs, nil
}

// Default returns the built-in fallback rule set.
func Default() (*RuleSet, error) {
	entries := make([]Entry, len(defaultPatterns))
	for i, p := range defaultPatterns {
		entries[i] = Entry{Pattern: p}
	}
	return Compile(entries)
}

// Compile builds a RuleSet from entries, skipping disabled ones. It
// returns ErrNoPatterns when nothing remains enabled.
func Compile(entries []Entry) (*RuleSet, error) {
	var rules []*Rule
	for i, e := range entries {
		if !e.enabled() {
			continue
		}
		if e.Pattern == "" {
			return nil, fmt.Errorf("config: pattern %d is empty", i+1)
		}
		r, err := compileRule(i, e)
		if err != nil {
			return nil, err
		}
		rules = append(rules, r)
	}
	if len(rules) == 0 {
		return nil, ErrNoPatterns
	}
	return &RuleSet{rules: rules}, nil
}

func compileRule(idx int, e Entry) (*Rule, error) {
	opts := regexp2.None
	if e.IgnoreCase {
		opts |= regexp2.IgnoreCase
	}
	exact, err := regexp2.Compile(e.Pattern, opts)
	if err != nil {
		return nil, fmt.Errorf("config: pattern %d (%q): %w", idx+1, e.Pattern, err)
	}
	folded, err := regexp2.Compile(e.Pattern, opts|regexp2.IgnoreCase)
	if err != nil {
		return nil, fmt.Errorf("config: pattern %d (%q): %w", idx+1, e.Pattern, err)
	}
	exact.MatchTimeout = matchTimeout
	folded.MatchTimeout = matchTimeout
	return &Rule{
		ID:     fmt.Sprintf("pattern-%d", idx+1),
		source: e.Pattern,
		exact:  exact,
		folded: folded,
	}, nil
}
