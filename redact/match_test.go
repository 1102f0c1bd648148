package redact

import (
	"testing"

	"github.com/wudi/pdfredact/config"
)

func mustRules(t *testing.T, patterns ...string) *config.RuleSet {
	t.Helper()
	entries := make([]config.Entry, len(patterns))
	for i, p := range patterns {
		entries[i] = config.Entry{Pattern: p}
	}
	rs, err := config.Compile(entries)
	if err != nil {
		t.Fatalf("compile rules: %v", err)
	}
	return rs
}

func TestMatchWholeBuffer(t *testing.T) {
	pt := Normalize(0, lineTokens(700, "Account", "123456789", "Thank", "you"), DefaultOptions())
	spans, err := Match(pt, mustRules(t, `\b123456789\b`).Rules(), false)
	if err != nil {
		t.Fatalf("Match() error = %v", err)
	}
	if len(spans) != 1 {
		t.Fatalf("spans = %+v, want one", spans)
	}
	if got := pt.Buffer[spans[0].Start:spans[0].End]; got != "123456789" {
		t.Fatalf("span selects %q", got)
	}
}

func TestMatchResumesAfterEachMatch(t *testing.T) {
	pt := Normalize(0, lineTokens(700, "12", "34", "56"), DefaultOptions())
	spans, err := Match(pt, mustRules(t, `\d+`).Rules(), false)
	if err != nil {
		t.Fatalf("Match() error = %v", err)
	}
	if len(spans) != 3 {
		t.Fatalf("find-all should yield 3 spans, got %+v", spans)
	}
}

func TestMatchCrossesTokenSeparator(t *testing.T) {
	// OCR split "123456789" into two tokens; the pattern can still match
	// across the concatenated buffer when written without anchors, or
	// with a separator-tolerant form.
	pt := Normalize(0, lineTokens(700, "1234", "56789"), DefaultOptions())
	spans, err := Match(pt, mustRules(t, `1234\s?56789`).Rules(), false)
	if err != nil {
		t.Fatalf("Match() error = %v", err)
	}
	if len(spans) != 1 {
		t.Fatalf("spans = %+v, want one spanning both tokens", spans)
	}
	if spans[0].Start != 0 || spans[0].End != 10 {
		t.Fatalf("span = %+v, want [0,10)", spans[0])
	}
}

func TestMatchOverlappingRules(t *testing.T) {
	pt := Normalize(0, lineTokens(700, "123456789"), DefaultOptions())
	spans, err := Match(pt, mustRules(t, `\d{9}`, `3456`).Rules(), false)
	if err != nil {
		t.Fatalf("Match() error = %v", err)
	}
	if len(spans) != 2 {
		t.Fatalf("overlapping spans from distinct rules expected: %+v", spans)
	}
	if spans[0].Rule == spans[1].Rule {
		t.Fatalf("spans should carry their own rule ids: %+v", spans)
	}
}

func TestMatchFoldCase(t *testing.T) {
	pt := Normalize(0, lineTokens(700, "ACCOUNT"), DefaultOptions())
	rules := mustRules(t, `\baccount\b`).Rules()

	spans, err := Match(pt, rules, false)
	if err != nil {
		t.Fatalf("Match() error = %v", err)
	}
	if len(spans) != 0 {
		t.Fatalf("case-sensitive path should not match: %+v", spans)
	}

	spans, err = Match(pt, rules, true)
	if err != nil {
		t.Fatalf("Match() error = %v", err)
	}
	if len(spans) != 1 {
		t.Fatalf("folded path should match: %+v", spans)
	}
}

func TestMatchNoHits(t *testing.T) {
	pt := Normalize(0, lineTokens(700, "nothing", "sensitive", "here"), DefaultOptions())
	spans, err := Match(pt, mustRules(t, `\b\d{8,17}\b`).Rules(), false)
	if err != nil {
		t.Fatalf("Match() error = %v", err)
	}
	if len(spans) != 0 {
		t.Fatalf("spans = %+v, want none", spans)
	}
}

func TestMatchDropsZeroLengthMatches(t *testing.T) {
	pt := Normalize(0, lineTokens(700, "abc"), DefaultOptions())
	spans, err := Match(pt, mustRules(t, `\d*`).Rules(), false)
	if err != nil {
		t.Fatalf("Match() error = %v", err)
	}
	if len(spans) != 0 {
		t.Fatalf("zero-length matches must be discarded: %+v", spans)
	}
}
