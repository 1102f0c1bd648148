package redact

import (
	"fmt"

	"github.com/wudi/pdfredact/config"
)

// Match evaluates every rule against the full page buffer and returns
// all non-overlapping matches per rule (matching resumes after each
// match end, standard find-all semantics). Spans from different rules
// may overlap; the mapper resolves that. foldCase selects each rule's
// case-insensitive variant and is set on the OCR path, where recognized
// case is unreliable.
//
// Zero-length matches are discarded: they select no characters and
// therefore no tokens.
//
// Rule syntax errors cannot occur here (rules are compiled at load
// time); an error indicates the evaluation itself failed, for example a
// pattern exceeding its match timeout, and fails the page.
func Match(pt PageText, rules []*config.Rule, foldCase bool) ([]MatchSpan, error) {
	var spans []MatchSpan
	for _, r := range rules {
		re := r.Expr(foldCase)
		m, err := re.FindStringMatch(pt.Buffer)
		for err == nil && m != nil {
			if m.Length > 0 {
				spans = append(spans, MatchSpan{
					Start: m.Index,
					End:   m.Index + m.Length,
					Rule:  r.ID,
				})
			}
			m, err = re.FindNextMatch(m)
		}
		if err != nil {
			return nil, fmt.Errorf("redact: evaluate %s (%q) on page %d: %w", r.ID, r.Source(), pt.Page, err)
		}
	}
	return spans, nil
}
